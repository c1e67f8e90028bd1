package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"signage/internal/config"
	"signage/internal/database"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(database.Migrate)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the state of every migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(database.Status)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Migrate and insert the demo template into an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *sql.DB) error {
				if err := database.Migrate(db); err != nil {
					return err
				}
				return database.Seed(db)
			})
		},
	})
	return cmd
}

// withDB connects using the environment configuration and runs fn.
func withDB(fn func(*sql.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}
