package cmd

import (
	"context"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

const migrationTable = "schema_migrations"

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run db migration files under db/migrations directory",
	}
	migrateRollback bool
	migrateStatus   bool
	migrateDir      string
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
	migrateCmd.Flags().BoolVarP(&migrateStatus, "status", "s", false, "to print applied and pending migrations")
	migrateCmd.PersistentFlags().StringVarP(&migrateDir, "dir", "d", "db/migrations", "sql migrations directory")
	migrateCmd.MarkFlagsMutuallyExclusive("rollback", "status")
}

// migrationCommand maps the flags onto a goose command.
func migrationCommand(rollback, status bool) string {
	switch {
	case rollback:
		return "down"
	case status:
		return "status"
	default:
		return "up"
	}
}

func runMigration(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(".")
	if err != nil {
		return err
	}

	db, err := goose.OpenDBWithDriver("pgx", cfg.Database.Source)
	if err != nil {
		return fmt.Errorf("goose: failed to open DB: %w", err)
	}
	defer db.Close()
	goose.SetTableName(migrationTable)

	command := migrationCommand(migrateRollback, migrateStatus)
	if err := goose.RunContext(context.Background(), command, db, migrateDir); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}

	cmd.Printf("migrate %s finished (%s)\n", command, migrateDir)
	return nil
}
