package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"billing/internal/config"
	"billing/internal/document"
	"billing/internal/document/pdf"
	"billing/internal/document/ubl"
	"billing/internal/logger"
	"billing/pkg/models"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Work with invoices",
}

var invoiceRenderCmd = &cobra.Command{
	Use:   "render [invoice-id...]",
	Short: "Render invoices as PDF and EN16931 XML documents",
	Long: `Render one or more invoices from the snapshot database.

Each invoice is written as {number}_{label}_{company}.{format} into the
output directory. Files are replaced atomically, so an interrupted run
never leaves a half-written document behind.

The XML format follows UBL Invoice-2 / EN16931 and needs the settings
name, street, postal_code, city, country, vat_id, iban and email. Draft
invoices without an invoice date cannot be rendered as XML.

Optional environment variables:
  BILLING_OUTPUT_DIR - Output directory (default: documents)
  RENDER_WORKERS - Number of parallel workers for --all (default: 4)`,
	Example: `  # Render invoice 42 as PDF and XML
  billing invoice render 42

  # Render only the PDF into a custom folder
  billing invoice render 42 --format pdf --out ./out

  # Render every dated invoice in parallel
  billing invoice render --all`,
	RunE: runInvoiceRender,
}

// RenderJob is one document to produce.
type RenderJob struct {
	ID    int64
	Index int
}

// RenderResult is the outcome of a RenderJob.
type RenderResult struct {
	ID        int64
	Artifacts []document.Artifact
	Error     error
	Index     int
}

func init() {
	rootCmd.AddCommand(invoiceCmd)
	invoiceCmd.AddCommand(invoiceRenderCmd)

	invoiceRenderCmd.Flags().Bool("all", false, "Render every invoice that has an invoice date")
	addRenderFlags(invoiceRenderCmd, "pdf", "xml")
}

func addRenderFlags(cmd *cobra.Command, formats ...string) {
	cmd.Flags().StringSlice("format", formats, "Output formats (pdf, xml)")
	cmd.Flags().String("out", "", "Output directory (default: BILLING_OUTPUT_DIR)")
}

func runInvoiceRender(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice")

	all, _ := cmd.Flags().GetBool("all")
	if all == (len(args) > 0) {
		return fmt.Errorf("pass invoice ids or --all, not both or neither")
	}
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
	if all {
		ids = datedInvoices(snap)
	}

	log.Info().
		Int("invoices", len(ids)).
		Strs("formats", formats).
		Int("workers", cfg.RenderWorkers).
		Msg("Starting invoice rendering")

	results := renderInParallel(ctx, ids, cfg.RenderWorkers, func(ctx context.Context, id int64) ([]document.Artifact, error) {
		return gen.Invoice(ctx, snap, id, formats)
	}, log)

	failed := 0
	for _, result := range results {
		if result.Error != nil {
			failed++
			fmt.Printf("❌ invoice %d: %v\n", result.ID, handleError(result.Error, log))
			continue
		}
		for _, a := range result.Artifacts {
			fmt.Printf("✅ invoice %d: %s\n", result.ID, a.Path)
		}
	}

	log.Info().
		Int("total", len(results)).
		Int("failed", failed).
		Msg("Invoice rendering completed")

	if failed > 0 {
		return fmt.Errorf("%d of %d invoices failed", failed, len(results))
	}
	return nil
}

// createGenerator wires the renderers, the output directory and the settings.
func createGenerator(cmd *cobra.Command, cfg *config.Config) (*document.Generator, []string, error) {
	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		return nil, nil, err
	}

	outDir, _ := cmd.Flags().GetString("out")
	if outDir == "" {
		outDir = cfg.OutputDir
	}

	formats, _ := cmd.Flags().GetStringSlice("format")
	gen := document.NewGenerator(document.NewOutput(outDir), settings, pdf.New(), ubl.New())
	for i, f := range formats {
		formats[i] = strings.ToLower(strings.TrimSpace(f))
		if !contains(gen.Formats(), formats[i]) {
			return nil, nil, models.NewValidationError("format", f, models.ErrUnsupportedKind,
				"supported formats: "+strings.Join(gen.Formats(), ", "))
		}
	}
	return gen, formats, nil
}

// renderInParallel renders documents using a worker pool. Results keep the
// order of ids.
func renderInParallel(ctx context.Context, ids []int64, numWorkers int, render func(context.Context, int64) ([]document.Artifact, error), log zerolog.Logger) []RenderResult {
	if numWorkers < 1 {
		numWorkers = 1
	}
	jobs := make(chan RenderJob, len(ids))
	results := make([]RenderResult, len(ids))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for job := range jobs {
				log.Debug().
					Int("worker", workerID).
					Int64("id", job.ID).
					Int("index", job.Index+1).
					Msg("Worker rendering document")

				result := RenderResult{ID: job.ID, Index: job.Index}
				if err := ctx.Err(); err != nil {
					result.Error = err
				} else {
					result.Artifacts, result.Error = render(ctx, job.ID)
				}
				results[job.Index] = result
			}
		}(w)
	}

	for i, id := range ids {
		jobs <- RenderJob{ID: id, Index: i}
	}
	close(jobs)

	wg.Wait()
	return results
}

// datedInvoices lists the ids of all invoices with an invoice date.
func datedInvoices(snap *models.Snapshot) []int64 {
	var ids []int64
	for _, inv := range snap.Invoices {
		if inv.InvoicedAt != nil {
			ids = append(ids, inv.ID)
		}
	}
	return ids
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid id: %s", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
