package cmd

import (
	"fmt"
	"time"

	"billing/internal/logger"
	"billing/internal/offtime"
	"github.com/spf13/cobra"
)

var offtimeCmd = &cobra.Command{
	Use:   "offtime",
	Short: "Count the days off of a year",
	Long: `Count weekend days, planned days off (vacation, holidays) and unplanned
days off (sickness, incidents) of a calendar year.

Planned and unplanned counts are raw tallies per record day. The total
counts every distinct day off once, so overlapping records and records on
weekends make the total smaller than the sum of the parts.`,
	Example: `  # Days off this year
  billing offtime

  # Days off in 2024 as JSON
  billing offtime --year 2024 --json`,
	Args: cobra.NoArgs,
	RunE: runOfftime,
}

func init() {
	rootCmd.AddCommand(offtimeCmd)

	offtimeCmd.Flags().Int("year", 0, "Calendar year (default: current year)")
	offtimeCmd.Flags().Bool("json", false, "Print JSON instead of text")
}

func runOfftime(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("offtime")

	year, _ := cmd.Flags().GetInt("year")
	asJSON, _ := cmd.Flags().GetBool("json")
	if year == 0 {
		year = time.Now().Year()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := createContext(cmd, cfg, log)
	defer cancel()

	snap, err := loadSnapshot(ctx, cfg, log)
	if err != nil {
		return handleError(err, log)
	}

	sum, err := offtime.Count(year, snap.Offtimes)
	if err != nil {
		return handleError(err, log)
	}

	if asJSON {
		return writeJSON(sum)
	}
	fmt.Printf("Days off %d\n", sum.Year)
	fmt.Printf("  Weekends:  %d\n", sum.Weekends)
	fmt.Printf("  Planned:   %d\n", sum.Planned)
	fmt.Printf("  Unplanned: %d\n", sum.Unplanned)
	fmt.Printf("  Total:     %d\n", sum.Total)
	return nil
}
