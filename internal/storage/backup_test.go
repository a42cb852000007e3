package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/dinar/internal/model"
)

func TestBackup(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	food, err := store.GetCategoryByName(ctx, "Food & Dining")
	require.NoError(t, err)
	mustTransaction(t, store, "30", food, "Groceries", "2024-01-10")

	dest := filepath.Join(t.TempDir(), "nested", "backup.db")
	info, err := store.Backup(ctx, dest)
	require.NoError(t, err)

	assert.Equal(t, dest, info.Path)
	assert.Equal(t, 1, info.Transactions)
	assert.Equal(t, len(model.DefaultCategories), info.Categories)
	assert.Equal(t, ExpectedSchemaVersion, info.SchemaVersion)
	assert.Positive(t, info.Size)

	// The copy is a working database with the same data.
	restored, err := NewSQLiteStorage(dest)
	require.NoError(t, err)
	defer func() { _ = restored.Close() }()

	totals, err := restored.GetTotalBalance(ctx, nil)
	require.NoError(t, err)
	assertDecimal(t, "30", totals.TotalExpense)
}

func TestBackupRefusesExistingFile(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	dest := filepath.Join(t.TempDir(), "backup.db")
	_, err := store.Backup(ctx, dest)
	require.NoError(t, err)

	_, err = store.Backup(ctx, dest)
	assert.True(t, errors.Is(err, ErrBackupExists))
}

func TestBackupPathValidation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	for _, bad := range []string{"", "relative.db", "/tmp/it's.db", "/tmp/a/../b.db"} {
		_, err := store.Backup(ctx, bad)
		assert.Error(t, err, "path %q", bad)
	}
}

func TestDefaultBackupPath(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	setClock(store, "2024-03-01")

	path := store.DefaultBackupPath()

	assert.Equal(t, filepath.Join(filepath.Dir(store.Path()), "backups"), filepath.Dir(path))
	assert.Equal(t, "dinar-2024-03-01-090000.db", filepath.Base(path))
}
