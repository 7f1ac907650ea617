package main

import (
	"fmt"

	"taskboard/internal/storage"

	"github.com/spf13/cobra"
)

func migrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the tasks schema in the configured database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Storage.Driver == storage.DriverMemory {
				return fmt.Errorf("memory storage has no schema to migrate")
			}
			// NewSQLiteStorage applies the schema on open
			s, err := storage.NewSQLiteStorage(a.cfg.Storage.Driver, a.cfg.Storage.Path)
			if err != nil {
				return err
			}
			defer s.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "schema ready: %s (%s)\n", a.cfg.Storage.Path, a.cfg.Storage.Driver)
			return nil
		},
	}
}
