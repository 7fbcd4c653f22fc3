package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"warbler/internal/store"
)

func newInitDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "initdb",
		Short: "Drop and recreate every table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			if err := store.Reset(db); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized the database at %s\n", cfg.DatabasePath)
			return nil
		},
	}
}
