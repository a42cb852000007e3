package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/dinar/internal/cli"
	"github.com/Veraticus/dinar/internal/config"
	"github.com/Veraticus/dinar/internal/model"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Balances, summaries and trends",
	}

	cmd.AddCommand(balanceReportCmd())
	cmd.AddCommand(summaryReportCmd())
	cmd.AddCommand(categoryReportCmd())
	cmd.AddCommand(trendsReportCmd())

	return cmd
}

func balanceReportCmd() *cobra.Command {
	var upTo string

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show total income, expenses and balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cutoff, err := parseDateFlag(upTo, "up-to")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			totals, err := store.GetTotalBalance(ctx, cutoff)
			if err != nil {
				return fmt.Errorf("failed to compute balance: %w", err)
			}

			title := "Balance"
			if cutoff != nil {
				title = "Balance as of " + model.FormatDate(*cutoff)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox(title, cli.FormatTotals(totals.TotalIncome, totals.TotalExpense, totals.Balance)))
			return nil
		},
	}

	cmd.Flags().StringVar(&upTo, "up-to", "", "only count transactions on or before this date")
	return cmd
}

func summaryReportCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			start, end, err := requireDateRange(from, to)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			summary, err := store.GetSummaryByDateRange(ctx, start, end)
			if err != nil {
				return fmt.Errorf("failed to summarize period: %w", err)
			}

			title := fmt.Sprintf("%s to %s", model.FormatDate(start), model.FormatDate(end))
			body := cli.FormatTotals(summary.TotalIncome, summary.TotalExpense, summary.NetAmount) +
				fmt.Sprintf("\nCount:    %d", summary.TransactionCount)
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox(title, body))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "start date YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "end date YYYY-MM-DD")
	return cmd
}

func categoryReportCmd() *cobra.Command {
	var from, to, typeFlag string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Totals per category for a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			start, end, err := requireDateRange(from, to)
			if err != nil {
				return err
			}
			categoryType, err := parseTypeFlag(typeFlag)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			totals, err := store.GetCategorySummary(ctx, start, end, categoryType)
			if err != nil {
				return fmt.Errorf("failed to summarize categories: %w", err)
			}
			return cli.WriteCategoryTotals(cmd.OutOrStdout(), totals)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "start date YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "end date YYYY-MM-DD")
	cmd.Flags().StringVar(&typeFlag, "type", "", "only income or expense categories")
	return cmd
}

func trendsReportCmd() *cobra.Command {
	var months int

	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Monthly income and expense totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if !cmd.Flags().Changed("months") {
				months = viper.GetInt(config.KeyTrendMonths)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			trends, err := store.GetMonthlyTrends(ctx, months)
			if err != nil {
				return fmt.Errorf("failed to compute trends: %w", err)
			}

			if len(trends) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.InfoStyle.Render("No transactions in the selected window."))
				return nil
			}
			return cli.WriteTrends(cmd.OutOrStdout(), trends)
		},
	}

	cmd.Flags().IntVar(&months, "months", 12, "how many months back to include (default from trends.months)")
	return cmd
}
