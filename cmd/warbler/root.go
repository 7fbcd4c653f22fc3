package main

import (
	"database/sql"

	"github.com/spf13/cobra"

	"warbler/internal/config"
	"warbler/internal/store"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "warbler",
		Short:         "Warbler, a small Twitter clone",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newInitDBCmd(), newMessagesCmd())
	return root
}

// openDB loads the config and opens its database with the schema migrated.
func openDB() (config.Config, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, err
	}
	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return cfg, nil, err
	}
	if err := store.Migrate(db); err != nil {
		db.Close()
		return cfg, nil, err
	}
	return cfg, db, nil
}
