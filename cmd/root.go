package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"billing/internal/config"
	"billing/internal/logger"
	"billing/internal/store"
	"billing/pkg/models"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "billing",
	Short: "Billing CLI - invoices, quotes and tax reports for freelance work",
	Long: `Billing CLI derives invoice totals from tracked working time and renders
invoices and quotes as print-ready PDF and EN16931 XML documents.

It also builds periodic tax and profit reports, counts days off and
summarizes clients. All records are read from a local SQLite snapshot
(BILLING_DB_PATH); business details come from a YAML settings file
(BILLING_SETTINGS_PATH).`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Duration("timeout", 0, "Command timeout (default: BILLING_TIMEOUT or 5m)")
}

// loadConfig loads the environment configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// createContext creates a context with timeout and signal handling
func createContext(cmd *cobra.Command, cfg *config.Config, log zerolog.Logger) (context.Context, context.CancelFunc) {
	timeout := cfg.Timeout
	if flag, _ := cmd.Flags().GetDuration("timeout"); flag > 0 {
		timeout = flag
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// loadSnapshot reads all records from the configured database.
func loadSnapshot(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*models.Snapshot, error) {
	if _, err := os.Stat(cfg.DBPath); err != nil {
		return nil, fmt.Errorf("database %s not found, run 'billing db migrate' first: %w", cfg.DBPath, err)
	}

	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	start := time.Now()
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("db", cfg.DBPath).
		Dur("duration", time.Since(start)).
		Msg("Snapshot loaded")
	return snap, nil
}

// handleError provides user-friendly messages for billing failures
func handleError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Command failed")

	var (
		validationErr *models.ValidationError
		formatErr     *models.FormatError
		renderErr     *models.RenderError
	)

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("operation timed out. Try increasing --timeout")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("operation was canceled")
	case errors.Is(err, models.ErrMissingSetting) && errors.As(err, &validationErr):
		return fmt.Errorf("setting %q is required for this document. Add it to your settings file", validationErr.Field)
	case errors.Is(err, models.ErrNotFound):
		return fmt.Errorf("record not found: %w", err)
	case errors.Is(err, models.ErrNegativeDuration):
		return fmt.Errorf("a time entry ends before it starts or its pause is too long: %w", err)
	case errors.Is(err, models.ErrUnsupportedKind):
		return fmt.Errorf("this document kind cannot be produced in the requested format: %w", err)
	case errors.As(err, &formatErr):
		return fmt.Errorf("stored value %q in %s cannot be read (%v)", formatErr.Value, formatErr.Field, formatErr.Err)
	case errors.As(err, &renderErr):
		return fmt.Errorf("document could not be written to %s: %v", renderErr.Path, renderErr.Err)
	case errors.As(err, &validationErr):
		return fmt.Errorf("invalid input: %w", err)
	default:
		return err
	}
}

// writeJSON prints v as indented JSON to stdout.
func writeJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	return nil
}
