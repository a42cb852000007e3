// Package testutil provides fixtures for tests that need a real database.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/dinar/internal/model"
	"github.com/Veraticus/dinar/internal/service"
	"github.com/Veraticus/dinar/internal/storage"
)

// TestDB is an initialized, seeded database living in the test's temp dir.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
	Path    string
}

// SetupTestDB creates a file-backed database with the default categories.
// It is closed automatically when the test ends.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dinar.db")
	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	if err := store.Initialize(context.Background()); err != nil {
		t.Fatalf("failed to initialize test database: %v", err)
	}

	return &TestDB{Storage: store, Path: path, t: t}
}

// Category returns a seeded or previously created category by name.
func (db *TestDB) Category(name string) *model.Category {
	db.t.Helper()
	cat, err := db.Storage.GetCategoryByName(context.Background(), name)
	if err != nil {
		db.t.Fatalf("category %q: %v", name, err)
	}
	return cat
}

// AddTransaction records amount in the named category on date (YYYY-MM-DD).
func (db *TestDB) AddTransaction(categoryName, amount, date, description string) *model.Transaction {
	db.t.Helper()

	cat := db.Category(categoryName)
	d := db.date(date)
	txn, err := db.Storage.CreateTransaction(context.Background(), model.TransactionDraft{
		Date:        &d,
		Amount:      decimal.RequireFromString(amount),
		Description: description,
		Type:        cat.Type,
		CategoryID:  cat.ID,
	})
	if err != nil {
		db.t.Fatalf("failed to add transaction: %v", err)
	}
	return txn
}

// CountTransactions returns the number of stored transactions.
func (db *TestDB) CountTransactions() int {
	db.t.Helper()
	txns, err := db.Storage.GetTransactions(context.Background(), service.Page{})
	if err != nil {
		db.t.Fatalf("failed to list transactions: %v", err)
	}
	return len(txns)
}

func (db *TestDB) date(s string) time.Time {
	db.t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		db.t.Fatalf("bad fixture date: %v", err)
	}
	return d
}
