package cmd

import (
	"fmt"

	"billing/internal/logger"
	"billing/internal/store"
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the snapshot database",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the snapshot database schema",
	Long: `Apply the embedded schema migrations to the database at BILLING_DB_PATH.
The database file and its directory are created when missing. Running the
command on an up-to-date database does nothing.`,
	Example: `  billing db migrate
  BILLING_DB_PATH=./data/billing.db billing db migrate`,
	Args: cobra.NoArgs,
	RunE: runDBMigrate,
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbMigrateCmd)
}

func runDBMigrate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("db")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log.Info().Str("db", cfg.DBPath).Msg("Running migrations")
	if err := store.Migrate(cfg.DBPath); err != nil {
		return handleError(err, log)
	}
	fmt.Printf("Database %s is up to date\n", cfg.DBPath)
	return nil
}
