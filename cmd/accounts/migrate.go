package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/kodefactor/accounts/internal/accounts/app"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply all pending migrations to the configured sqlite or postgres database.`,
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := app.LoadDatabaseConfig()
	if err != nil {
		return err
	}

	cmd.Printf("Running %s migrations...\n", cfg.DatabaseDriver)
	db, err := app.OpenStore(cmd.Context(), cfg)
	if err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
	}
	defer func() { _ = db.Close() }()

	cmd.Println("Migrations completed successfully")
	return nil
}
