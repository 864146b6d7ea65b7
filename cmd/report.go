package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"billing/internal/logger"
	"billing/internal/period"
	"billing/internal/report"
	"billing/internal/sheets"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the tax and profit report per period",
	Long: `Aggregate revenue, VAT, expenses and profit over consecutive periods.

Every period from the first record up to today appears, including periods
without records. Transitory invoices and invoices without an invoice date
are left out. VAT due is revenue VAT minus input VAT; profit is revenue
net minus operating expenses (tax payments are not operating expenses).

With --export the rows are appended to the Google Sheet configured by
GOOGLE_SHEET_URL (worksheet GOOGLE_SHEET_WORKSHEET).

Required environment variables for --export:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string
  GOOGLE_SHEET_URL - Google Sheets URL to write the report to`,
	Example: `  # Monthly report over all years
  billing report

  # Quarterly report for 2024 (e.g. for the VAT return)
  billing report --by quarter --year 2024

  # JSON output
  billing report --year 2024 --json

  # Append the yearly totals to Google Sheets
  billing report --by year --export`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

// ReportOutput is the JSON output of the report command.
type ReportOutput struct {
	Report    report.Report    `json:"report"`
	Dashboard report.Dashboard `json:"dashboard"`
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("by", "", "Period granularity: week, month, quarter, year (default: REPORT_GRANULARITY)")
	reportCmd.Flags().Int("year", 0, "Restrict to one calendar year")
	reportCmd.Flags().Bool("json", false, "Print JSON instead of a table")
	reportCmd.Flags().Bool("export", false, "Append the report to Google Sheets")
}

func runReport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("report")

	by, _ := cmd.Flags().GetString("by")
	year, _ := cmd.Flags().GetInt("year")
	asJSON, _ := cmd.Flags().GetBool("json")
	export, _ := cmd.Flags().GetBool("export")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	g := cfg.Granularity()
	if by != "" {
		if g, err = period.ParseGranularity(by); err != nil {
			return handleError(err, log)
		}
	}
	if export && cfg.GoogleSheetURL == "" {
		return fmt.Errorf("GOOGLE_SHEET_URL environment variable is required for --export")
	}

	ctx, cancel := createContext(cmd, cfg, log)
	defer cancel()

	snap, err := loadSnapshot(ctx, cfg, log)
	if err != nil {
		return handleError(err, log)
	}

	rep, err := report.Build(snap, report.Options{
		Granularity: g,
		Year:        year,
		Location:    cfg.Location(),
	})
	if err != nil {
		return handleError(err, log)
	}
	dash := report.NewDashboard(rep)

	log.Info().
		Str("granularity", string(g)).
		Int("year", year).
		Int("rows", len(rep.Rows)).
		Msg("Report built")

	if asJSON {
		if err := writeJSON(ReportOutput{Report: rep, Dashboard: dash}); err != nil {
			return err
		}
	} else {
		printReport(rep, dash)
	}

	if export {
		svc, err := sheets.NewSheetsService(ctx, cfg.GoogleSheetURL)
		if err != nil {
			return fmt.Errorf("failed to create Google Sheets service: %w", err)
		}
		if err := svc.WriteReport(ctx, rep, cfg.GoogleSheetWorksheet); err != nil {
			return handleError(fmt.Errorf("failed to write to Google Sheet: %w", err), log)
		}
		if !asJSON {
			fmt.Printf("\nSheet: %s\nZeilen hinzugefügt: %d\n", cfg.GoogleSheetWorksheet, len(rep.Rows)+1)
		}
	}
	return nil
}

func printReport(rep report.Report, dash report.Dashboard) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Period\tInvoices\tHours\tRevenue net\tVAT\tExpenses net\tInput VAT\tVAT due\tProfit\t")
	printRow := func(r report.Row) {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.Label, r.Invoices, r.Hours.StringFixed(2), r.RevenueNet.StringFixed(2), r.RevenueVAT.StringFixed(2),
			r.ExpenseNet.StringFixed(2), r.ExpenseVAT.StringFixed(2), r.VATDue.StringFixed(2), r.Profit.StringFixed(2))
	}
	for _, r := range rep.Rows {
		printRow(r)
	}
	fmt.Fprintln(w, strings.Repeat("-\t", 9))
	printRow(rep.Total)
	w.Flush()

	if dash.Period == "" {
		return
	}
	fmt.Println()
	fmt.Printf("Latest period %s (as of %s)\n", dash.Period, time.Now().Format("02.01.2006"))
	fmt.Printf("  Revenue net: %s EUR (%s%%)\n", dash.RevenueNet.StringFixed(2), dash.RevenueTrend.StringFixed(1))
	fmt.Printf("  Hours:       %s (%s%%)\n", dash.Hours.StringFixed(2), dash.HoursTrend.StringFixed(1))
	fmt.Printf("  Profit:      %s EUR (%s%%)\n", dash.Profit.StringFixed(2), dash.ProfitTrend.StringFixed(1))
}
