package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/dinar/internal/cli"
	"github.com/Veraticus/dinar/internal/common"
	"github.com/Veraticus/dinar/internal/model"
	"github.com/Veraticus/dinar/internal/service"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "Record and browse transactions",
	}

	cmd.AddCommand(addTransactionCmd())
	cmd.AddCommand(listTransactionsCmd())
	cmd.AddCommand(rangeTransactionsCmd())
	cmd.AddCommand(categoryTransactionsCmd())
	cmd.AddCommand(updateTransactionCmd())
	cmd.AddCommand(deleteTransactionCmd())
	cmd.AddCommand(dayTransactionsCmd())
	cmd.AddCommand(searchTransactionsCmd())

	return cmd
}

func addTransactionCmd() *cobra.Command {
	var category, description, date string

	cmd := &cobra.Command{
		Use:   "add <amount>",
		Short: "Record a transaction",
		Long: `Record a transaction against a category, given by id or name. The
transaction takes the category's type. Without --date it is dated today.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			txDate, err := parseDateFlag(date, "date")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			cat, err := resolveCategory(ctx, store, category)
			if err != nil {
				return err
			}

			txn, err := store.CreateTransaction(ctx, model.TransactionDraft{
				Date:        txDate,
				Amount:      amount,
				Description: description,
				Type:        cat.Type,
				CategoryID:  cat.ID,
			})
			if err != nil {
				return fmt.Errorf("failed to record transaction: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Recorded %s %s in %s on %s (id %d)",
				txn.Type, cli.FormatMoney(txn.Amount), cat.Name, model.FormatDate(txn.Date), txn.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "category id or name (required)")
	cmd.Flags().StringVar(&description, "description", "", "free-form description")
	cmd.Flags().StringVar(&date, "date", "", "date YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func listTransactionsCmd() *cobra.Command {
	var page service.Page

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			txns, err := store.GetTransactions(ctx, page)
			if err != nil {
				return fmt.Errorf("failed to list transactions: %w", err)
			}
			return writeTransactions(cmd, txns)
		},
	}

	cmd.Flags().IntVar(&page.Limit, "limit", 0, "maximum rows (0 for all)")
	cmd.Flags().IntVar(&page.Offset, "offset", 0, "rows to skip")
	return cmd
}

func rangeTransactionsCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "range",
		Short: "List transactions between two dates, inclusive",
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

			txns, err := store.GetTransactionsByDateRange(ctx, start, end)
			if err != nil {
				return fmt.Errorf("failed to list transactions: %w", err)
			}
			return writeTransactions(cmd, txns)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "start date YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "end date YYYY-MM-DD")
	return cmd
}

func categoryTransactionsCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "by-category <category>",
		Short: "List a category's transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			start, err := parseDateFlag(from, "from")
			if err != nil {
				return err
			}
			end, err := parseDateFlag(to, "to")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			cat, err := resolveCategory(ctx, store, args[0])
			if err != nil {
				return err
			}

			txns, err := store.GetTransactionsByCategory(ctx, cat.ID, start, end)
			if err != nil {
				return fmt.Errorf("failed to list transactions: %w", err)
			}
			return writeTransactions(cmd, txns)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "start date YYYY-MM-DD (with --to)")
	cmd.Flags().StringVar(&to, "to", "", "end date YYYY-MM-DD (with --from)")
	return cmd
}

func updateTransactionCmd() *cobra.Command {
	var amountFlag, category, description, date string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a transaction's amount, category, description and date",
		Long: `Replace the mutable fields of a transaction. The description is cleared
when --description is omitted, and the date becomes today when --date is
omitted. The transaction type never changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount(amountFlag)
			if err != nil {
				return err
			}
			txDate, err := parseDateFlag(date, "date")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			current, err := store.GetTransactionByID(ctx, id)
			if err != nil {
				return common.NewUserError(fmt.Sprintf("transaction %d not found", id), err)
			}

			cat, err := resolveCategory(ctx, store, category)
			if err != nil {
				return err
			}
			if cat.Type != current.Type {
				return common.NewUserError(fmt.Sprintf("category %q is %s but transaction %d is %s", cat.Name, cat.Type, id, current.Type), nil)
			}

			err = store.UpdateTransaction(ctx, id, model.TransactionUpdate{
				Date:        txDate,
				Amount:      amount,
				Description: description,
				CategoryID:  cat.ID,
			})
			if err != nil {
				return fmt.Errorf("failed to update transaction: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated transaction %d", id)))
			return nil
		},
	}

	cmd.Flags().StringVar(&amountFlag, "amount", "", "amount (required)")
	cmd.Flags().StringVar(&category, "category", "", "category id or name (required)")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&date, "date", "", "date YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func deleteTransactionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			if err := store.DeleteTransaction(ctx, id); err != nil {
				return fmt.Errorf("failed to delete transaction: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted transaction %d", id)))
			return nil
		},
	}
}

func dayTransactionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "day [date]",
		Short: "List the transactions of one day (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			day := model.Today(timeNow())
			if len(args) == 1 {
				parsed, err := parseDateFlag(args[0], "date")
				if err != nil {
					return err
				}
				day = *parsed
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			txns, err := store.GetDailyTransactions(ctx, day)
			if err != nil {
				return fmt.Errorf("failed to list transactions: %w", err)
			}
			return writeTransactions(cmd, txns)
		},
	}
}

func searchTransactionsCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Find transactions by description or category name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			start, err := parseDateFlag(from, "from")
			if err != nil {
				return err
			}
			end, err := parseDateFlag(to, "to")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			txns, err := store.SearchTransactions(ctx, args[0], start, end)
			if err != nil {
				return fmt.Errorf("failed to search transactions: %w", err)
			}
			return writeTransactions(cmd, txns)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "start date YYYY-MM-DD (with --to)")
	cmd.Flags().StringVar(&to, "to", "", "end date YYYY-MM-DD (with --from)")
	return cmd
}

func writeTransactions(cmd *cobra.Command, txns []model.Transaction) error {
	if len(txns) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.InfoStyle.Render("No transactions found."))
		return nil
	}
	return cli.WriteTransactions(cmd.OutOrStdout(), txns)
}
