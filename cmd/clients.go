package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"billing/internal/config"
	"billing/internal/finance"
	"billing/internal/logger"
	"billing/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Summarize hours, revenue and payment behaviour per client",
	Long: `List every client with the hours worked, the net amount invoiced, the
average number of days between invoice and payment, and the number of open
and overdue invoices. An invoice is overdue when it is unpaid after the
payment term (settings payment_term_days, default 14 days).`,
	Example: `  billing clients
  billing clients --json`,
	Args: cobra.NoArgs,
	RunE: runClients,
}

// ClientSummary is one line of the clients command.
type ClientSummary struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Hours           decimal.Decimal `json:"hours"`
	Net             decimal.Decimal `json:"net"`
	AvgPaymentDelay float64         `json:"avg_payment_delay_days"`
	Open            int             `json:"open"`
	Overdue         int             `json:"overdue"`
}

func init() {
	rootCmd.AddCommand(clientsCmd)

	clientsCmd.Flags().Bool("json", false, "Print JSON instead of a table")
}

func runClients(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("clients")

	asJSON, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		return handleError(err, log)
	}
	termDays, err := settings.PaymentTermDays()
	if err != nil {
		return handleError(err, log)
	}

	ctx, cancel := createContext(cmd, cfg, log)
	defer cancel()

	snap, err := loadSnapshot(ctx, cfg, log)
	if err != nil {
		return handleError(err, log)
	}

	summaries, err := summarizeClients(snap, termDays, time.Now())
	if err != nil {
		return handleError(err, log)
	}

	if asJSON {
		return writeJSON(summaries)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tClient\tHours\tNet\tAvg. delay (days)\tOpen\tOverdue")
	for _, s := range summaries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.1f\t%d\t%d\n",
			s.ID, s.Name, s.Hours.StringFixed(2), s.Net.StringFixed(2), s.AvgPaymentDelay, s.Open, s.Overdue)
	}
	return w.Flush()
}

// summarizeClients derives the client summaries in snapshot order.
func summarizeClients(snap *models.Snapshot, termDays int, now time.Time) ([]ClientSummary, error) {
	summaries := make([]ClientSummary, 0, len(snap.Clients))
	for _, c := range snap.Clients {
		hours, err := finance.ClientHours(snap, c.ID)
		if err != nil {
			return nil, fmt.Errorf("client %d: %w", c.ID, err)
		}
		net, err := finance.ClientNet(snap, c.ID)
		if err != nil {
			return nil, fmt.Errorf("client %d: %w", c.ID, err)
		}

		s := ClientSummary{
			ID:              c.ID,
			Name:            c.DisplayName(),
			Hours:           hours,
			Net:             net,
			AvgPaymentDelay: finance.AvgPaymentDelay(snap, c.ID),
		}
		for _, p := range snap.ProjectsOf(c.ID) {
			for _, inv := range snap.InvoicesOf(p.ID) {
				if inv.InvoicedAt != nil && inv.PaidAt == nil {
					s.Open++
				}
				if finance.Overdue(inv, termDays, now) {
					s.Overdue++
				}
			}
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}
