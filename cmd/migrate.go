package main

import (
	"fmt"

	"expense_tracker/internal/repository/db"

	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	var status bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.cfg.DB.Path
			if !status {
				if err := db.RunMigrations(path); err != nil {
					return err
				}
				a.log.Infow("migrations_applied", "db", path)
			}
			version, dirty, err := db.MigrationStatus(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty=%t)\n", version, dirty)
			return nil
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "only print the current schema version")
	return cmd
}
