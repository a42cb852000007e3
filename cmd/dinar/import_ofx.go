package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/dinar/internal/cli"
	"github.com/Veraticus/dinar/internal/common"
	"github.com/Veraticus/dinar/internal/config"
	"github.com/Veraticus/dinar/internal/model"
	"github.com/Veraticus/dinar/internal/ofx"
	"github.com/Veraticus/dinar/internal/service"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import transactions from OFX or QFX files exported from your bank.

Debits are recorded as expenses and credits as income, each in the
configured import category. A line that appears in several files (same
account and FITID) is recorded once.

Examples:
  dinar import ~/Downloads/checking_jan_2024.qfx
  dinar import ~/Downloads/*.ofx --expense-category "Shopping"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().String("income-category", "", "category for credits (default from import.income_category)")
	cmd.Flags().String("expense-category", "", "category for debits (default from import.expense_category)")
	cmd.Flags().BoolP("dry-run", "d", false, "parse and report without saving")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	entries := parseFiles(ctx, files)
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("No transactions found in any file"))
		return nil
	}

	if dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(fmt.Sprintf("Dry run: %d transactions would be imported", len(entries))))
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	incomeRef := flagOrConfig(cmd, "income-category", config.KeyImportIncomeCategory)
	expenseRef := flagOrConfig(cmd, "expense-category", config.KeyImportExpenseCategory)

	income, err := resolveImportCategory(ctx, store, incomeRef, model.CategoryTypeIncome)
	if err != nil {
		return err
	}
	expense, err := resolveImportCategory(ctx, store, expenseRef, model.CategoryTypeExpense)
	if err != nil {
		return err
	}

	imported, err := importEntries(ctx, store, entries, income, expense, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Imported %d transactions", imported)))
	return nil
}

// expandFiles resolves glob patterns into existing file paths.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, common.NewUserError(fmt.Sprintf("invalid pattern %s", pattern), err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, common.NewUserError("no files found to import", nil)
	}
	return files, nil
}

// parseFiles parses every file, skipping unreadable ones, and drops
// entries already seen in an earlier file.
func parseFiles(ctx context.Context, files []string) []ofx.Entry {
	parser := ofx.NewParser()
	seen := make(map[string]bool)
	var entries []ofx.Entry

	for _, path := range files {
		f, err := os.Open(path) //nolint:gosec // user-supplied import path
		if err != nil {
			slog.Error("Failed to open file", "file", path, "error", err)
			continue
		}

		parsed, err := parser.ParseFile(ctx, f)
		_ = f.Close()
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			continue
		}

		added := 0
		for _, e := range parsed {
			key := e.AccountID + "/" + e.FITID
			if e.FITID != "" && seen[key] {
				continue
			}
			seen[key] = true
			entries = append(entries, e)
			added++
		}

		slog.Info("Processed file",
			"file", filepath.Base(path),
			"transactions_found", len(parsed),
			"added", added,
			"duplicates", len(parsed)-added)
	}

	return entries
}

func resolveImportCategory(ctx context.Context, store service.Storage, ref string, want model.CategoryType) (*model.Category, error) {
	cat, err := resolveCategory(ctx, store, ref)
	if err != nil {
		return nil, err
	}
	if cat.Type != want {
		return nil, common.NewUserError(fmt.Sprintf("category %q is %s, need an %s category", cat.Name, cat.Type, want), nil)
	}
	return cat, nil
}

// importEntries records each entry in the category matching its type and
// returns how many were written. It stops at the first failure or when ctx
// is canceled.
func importEntries(ctx context.Context, store service.Storage, entries []ofx.Entry, income, expense *model.Category, progress io.Writer) (int, error) {
	bar := cli.NewProgressBar(progress, len(entries), "Importing")

	imported := 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return imported, fmt.Errorf("import interrupted after %d transactions: %w", imported, err)
		}

		category := expense
		if e.Type == model.CategoryTypeIncome {
			category = income
		}

		if _, err := store.CreateTransaction(ctx, e.Draft(category.ID)); err != nil {
			return imported, fmt.Errorf("failed to import %s: %w", e.FITID, err)
		}
		imported++
		_ = bar.Add(1)
	}

	_ = bar.Finish()
	return imported, nil
}

func flagOrConfig(cmd *cobra.Command, flag, key string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	return viper.GetString(key)
}
