package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Veraticus/dinar/internal/cli"
	"github.com/Veraticus/dinar/internal/common"
	"github.com/Veraticus/dinar/internal/storage"
)

func backupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup [path]",
		Short: "Copy the database to a backup file",
		Long: `Write a consistent, integrity-checked copy of the database. Without a path
the copy goes to a timestamped file in a "backups" directory next to the
database.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			sqlite, ok := store.(*storage.SQLiteStorage)
			if !ok {
				return fmt.Errorf("backup is only supported for SQLite storage")
			}

			dest := sqlite.DefaultBackupPath()
			if len(args) == 1 {
				dest, err = filepath.Abs(args[0])
				if err != nil {
					return common.NewUserError("invalid backup path", err)
				}
			}

			info, err := sqlite.Backup(ctx, dest)
			if err != nil {
				if errors.Is(err, storage.ErrBackupExists) {
					return common.NewUserError(fmt.Sprintf("%s already exists", dest), err)
				}
				return fmt.Errorf("backup failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Backed up %d transactions and %d categories to %s",
				info.Transactions, info.Categories, info.Path)))
			return nil
		},
	}
}
