package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newNormalizeCmd(a *app) *cobra.Command {
	var userID int
	cmd := &cobra.Command{
		Use:   "normalize-categories",
		Short: "Title-case stored category names",
		Long:  "Rewrites stored categories to their title-cased form. Reads never do this implicitly.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := a.openDB()
			if err != nil {
				return err
			}
			defer a.closeDB(conn)

			services, _, err := a.services(conn)
			if err != nil {
				return err
			}
			n, err := services.NormalizeCategories(cmd.Context(), userID)
			if err != nil {
				return err
			}
			a.log.Infow("categories_normalized", "user_id", userID, "rows", n)
			fmt.Fprintf(cmd.OutOrStdout(), "updated %d expenses\n", n)
			return nil
		},
	}
	cmd.Flags().IntVar(&userID, "user", 0, "only this user id (0 means every user)")
	return cmd
}
