package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/dinar/internal/balance"
	"github.com/Veraticus/dinar/internal/tui"
)

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Watch the running balance",
		Long:  `Open an interactive view of total income, expenses and balance. Press r to reload and q to quit.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			provider := balance.NewProvider(store)
			provider.Start(ctx)

			return tui.Run(ctx, provider)
		},
	}
}
