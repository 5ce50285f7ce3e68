package main

import (
	"fmt"
	"log/slog"

	"github.com/abdulachik/cadavre/internal/config"
	"github.com/abdulachik/cadavre/internal/db"
	"github.com/spf13/cobra"
)

var (
	migrateDown   bool
	migrateStatus bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Run all pending database migrations to set up or update the schema.
With --down the most recently applied migration is reverted.`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "Revert the last applied migration")
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "List migrations without applying them")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	slog.Info("connecting to database", "path", cfg.DatabasePath)
	store, err := db.NewStore(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer store.Close()

	switch {
	case migrateStatus:
		list, err := store.Migrations(ctx)
		if err != nil {
			return fmt.Errorf("list migrations: %w", err)
		}
		for _, m := range list {
			state := "pending"
			if m.Applied {
				state = "applied"
			}
			fmt.Printf("%-8s %s\n", state, m.Version)
		}
		return nil

	case migrateDown:
		version, err := store.Rollback(ctx)
		if err != nil {
			return fmt.Errorf("rollback migration: %w", err)
		}
		if version == "" {
			slog.Info("no migrations to revert")
			return nil
		}
		slog.Info("migration reverted", "version", version)
		return nil
	}

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("migrations completed successfully")
	return nil
}
