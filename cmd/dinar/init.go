package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/dinar/internal/cli"
	"github.com/Veraticus/dinar/internal/common"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database schema and default categories",
		Long: `Create the tables and indexes if they are missing and insert the default
categories. Running it again is harmless.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openStorage()
			if err != nil {
				return err
			}
			defer closeStorage(store)

			if err := store.Initialize(ctx); err != nil {
				return common.NewUserError("database initialization failed", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Database ready at %s", store.Path())))
			return nil
		},
	}
}
