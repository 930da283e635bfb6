package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"foodstall/internal/catalog"
	"foodstall/internal/config"
	"foodstall/internal/database"
	"foodstall/internal/database/migrations"
	"foodstall/internal/livequery"
	"foodstall/internal/logger"
)

// bootDB loads config and opens the database connection.
func bootDB(ctx context.Context) (*config.Config, *database.DB, *logger.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	log := logger.New("foodstall-cli")
	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return cfg, db, log, nil
}

// foodstall migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, _, err := bootDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		applied, err := db.Migrate(cmd.Context(), migrations.FS)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to migrate.")
			return nil
		}
		for _, name := range applied {
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated: %s\n", name)
		}
		return nil
	},
}

// foodstall seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the default menu when the menu table is empty",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, db, log, err := bootDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		broker := livequery.NewBroker()
		changes, err := openChanges(ctx, cfg, broker, log)
		if err != nil {
			return err
		}
		defer changes.Close()

		seeded, err := catalog.New(database.NewStore(db), broker, changes.announcer, log).Initialize(ctx)
		if err != nil {
			return err
		}
		if seeded == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Menu already has items, nothing seeded.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d menu items.\n", seeded)
		return nil
	},
}
