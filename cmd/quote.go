package cmd

import (
	"fmt"

	"billing/internal/logger"
	"github.com/spf13/cobra"
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Work with quotes",
}

var quoteRenderCmd = &cobra.Command{
	Use:   "render [project-id]",
	Short: "Render the quote of a project from its estimates",
	Long: `Render a quote for a project. Each estimate of the project becomes one
line; the totals follow the project's pricing unit, VAT rate and estimate
weights. The project's due date is printed as the validity date.

Quotes are produced as PDF only; the XML format covers invoices.`,
	Example: `  # Render the quote of project 7
  billing quote render 7

  # Write it to a custom folder
  billing quote render 7 --out ./quotes`,
	Args: cobra.ExactArgs(1),
	RunE: runQuoteRender,
}

func init() {
	rootCmd.AddCommand(quoteCmd)
	quoteCmd.AddCommand(quoteRenderCmd)

	addRenderFlags(quoteRenderCmd, "pdf")
}

func runQuoteRender(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("quote")

	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := createContext(cmd, cfg, log)
	defer cancel()

	gen, formats, err := createGenerator(cmd, cfg)
	if err != nil {
		return handleError(err, log)
	}
	snap, err := loadSnapshot(ctx, cfg, log)
	if err != nil {
		return handleError(err, log)
	}

	artifacts, err := gen.Quote(ctx, snap, ids[0], formats)
	if err != nil {
		return handleError(err, log)
	}
	for _, a := range artifacts {
		fmt.Printf("✅ quote %d: %s\n", ids[0], a.Path)
	}
	return nil
}
