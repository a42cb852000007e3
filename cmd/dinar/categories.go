package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/dinar/internal/cli"
	"github.com/Veraticus/dinar/internal/common"
	"github.com/Veraticus/dinar/internal/model"
	"github.com/Veraticus/dinar/internal/storage"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cat"},
		Short:   "Manage income and expense categories",
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(updateCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())
	cmd.AddCommand(categoryStatsCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	var typeFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			categoryType, err := parseTypeFlag(typeFlag)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			categories, err := store.GetCategories(ctx, categoryType)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			if len(categories) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.InfoStyle.Render("No categories found. Use 'dinar categories add' to create one."))
				return nil
			}

			return cli.WriteCategories(cmd.OutOrStdout(), categories)
		},
	}

	cmd.Flags().StringVar(&typeFlag, "type", "", "only list income or expense categories")
	return cmd
}

func addCategoryCmd() *cobra.Command {
	var (
		typeFlag string
		icon     string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			categoryType, err := model.ParseCategoryType(typeFlag)
			if err != nil {
				return common.NewUserError("invalid --type", err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			category, err := store.CreateCategory(ctx, args[0], categoryType, icon)
			if err != nil {
				if storage.IsUniqueViolation(err) {
					return common.NewUserError(fmt.Sprintf("category %q already exists", args[0]), err)
				}
				return fmt.Errorf("failed to create category: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created %s category %q (id %d)", category.Type, category.Name, category.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&typeFlag, "type", "", "category type: income or expense (required)")
	cmd.Flags().StringVar(&icon, "icon", "", "icon name (default \"folder\")")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func updateCategoryCmd() *cobra.Command {
	var (
		name string
		icon string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename a category or change its icon",
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

			current, err := store.GetCategoryByID(ctx, id)
			if err != nil {
				return common.NewUserError(fmt.Sprintf("category %d not found", id), err)
			}
			if name == "" {
				name = current.Name
			}

			var iconArg *string
			if cmd.Flags().Changed("icon") {
				iconArg = &icon
			}

			if err := store.UpdateCategory(ctx, id, name, iconArg); err != nil {
				if storage.IsUniqueViolation(err) {
					return common.NewUserError(fmt.Sprintf("category %q already exists", name), err)
				}
				return fmt.Errorf("failed to update category: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated category %d", id)))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&icon, "icon", "", "new icon")
	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category that has no transactions",
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

			if err := store.DeleteCategory(ctx, id); err != nil {
				if storage.IsForeignKeyViolation(err) {
					return common.NewUserError(fmt.Sprintf("category %d still has transactions; move or delete them first", id), err)
				}
				return fmt.Errorf("failed to delete category: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted category %d", id)))
			return nil
		},
	}
}

func categoryStatsCmd() *cobra.Command {
	var typeFlag, from, to string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show totals, averages and extremes per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			categoryType, err := model.ParseCategoryType(typeFlag)
			if err != nil {
				return common.NewUserError("invalid --type", err)
			}
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

			stats, err := store.GetCategoriesWithValues(ctx, categoryType, start, end)
			if err != nil {
				if errors.Is(err, storage.ErrInvalidCategoryType) {
					return common.NewUserError("invalid --type", err)
				}
				return fmt.Errorf("failed to get category statistics: %w", err)
			}

			return cli.WriteCategoryStats(cmd.OutOrStdout(), stats)
		},
	}

	cmd.Flags().StringVar(&typeFlag, "type", "", "income or expense (required)")
	cmd.Flags().StringVar(&from, "from", "", "start date YYYY-MM-DD (with --to)")
	cmd.Flags().StringVar(&to, "to", "", "end date YYYY-MM-DD (with --from)")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}
