package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/dinar/internal/model"
	"github.com/Veraticus/dinar/internal/service"
)

func TestCreateTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults date to today and description to empty", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()
		setClock(store, "2024-03-14")

		food, err := store.GetCategoryByName(ctx, "Food & Dining")
		require.NoError(t, err)

		txn, err := store.CreateTransaction(ctx, model.TransactionDraft{
			Amount:     dec("12.5"),
			Type:       model.CategoryTypeExpense,
			CategoryID: food.ID,
		})
		require.NoError(t, err)

		assert.Positive(t, txn.ID)
		assertDecimal(t, "12.5", txn.Amount)
		assert.Equal(t, model.CategoryTypeExpense, txn.Type)
		assert.Equal(t, "2024-03-14", model.FormatDate(txn.Date))
		assert.Empty(t, txn.Description)
		assert.Equal(t, "Food & Dining", txn.CategoryName)
		assert.Equal(t, "utensils", txn.CategoryIcon)
		assert.False(t, txn.CreatedAt.IsZero())
		assert.False(t, txn.UpdatedAt.IsZero())
	})

	t.Run("uses the given date", func(t *testing.T) {
		store, cleanup := createBareStorage(t)
		defer cleanup()
		cat := mustCategory(t, store, "Salary", model.CategoryTypeIncome)

		txn := mustTransaction(t, store, "100", cat, "pay", "2023-12-31")
		assert.Equal(t, "2023-12-31", model.FormatDate(txn.Date))
		assert.Equal(t, "pay", txn.Description)
	})

	t.Run("non-positive amounts always fail", func(t *testing.T) {
		store, cleanup := createBareStorage(t)
		defer cleanup()
		cat := mustCategory(t, store, "Food", model.CategoryTypeExpense)

		for _, amount := range []string{"0", "-0.01", "-30"} {
			_, err := store.CreateTransaction(ctx, model.TransactionDraft{
				Amount:     dec(amount),
				Type:       model.CategoryTypeExpense,
				CategoryID: cat.ID,
			})
			require.Error(t, err, "amount %s", amount)
			assert.True(t, IsCheckViolation(err), "amount %s: unexpected error %v", amount, err)
		}
	})

	t.Run("unknown category always fails", func(t *testing.T) {
		store, cleanup := createBareStorage(t)
		defer cleanup()

		_, err := store.CreateTransaction(ctx, model.TransactionDraft{
			Amount:     dec("10"),
			Type:       model.CategoryTypeExpense,
			CategoryID: 404,
		})
		require.Error(t, err)
		assert.True(t, IsForeignKeyViolation(err), "unexpected error: %v", err)
	})

	t.Run("unknown type fails", func(t *testing.T) {
		store, cleanup := createBareStorage(t)
		defer cleanup()
		cat := mustCategory(t, store, "Food", model.CategoryTypeExpense)

		_, err := store.CreateTransaction(ctx, model.TransactionDraft{
			Amount:     dec("10"),
			Type:       model.CategoryType("refund"),
			CategoryID: cat.ID,
		})
		require.Error(t, err)
		assert.True(t, IsCheckViolation(err))
	})
}

func TestGetTransactions(t *testing.T) {
	store, cleanup := createBareStorage(t)
	defer cleanup()
	ctx := context.Background()

	cat := mustCategory(t, store, "Food", model.CategoryTypeExpense)
	mustTransaction(t, store, "1", cat, "oldest", "2024-01-01")
	mustTransaction(t, store, "2", cat, "newest", "2024-01-03")
	mustTransaction(t, store, "3", cat, "middle first", "2024-01-02")
	mustTransaction(t, store, "4", cat, "middle second", "2024-01-02")

	tests := []struct {
		name string
		want []string
		page service.Page
	}{
		{
			name: "unbounded",
			page: service.Page{},
			want: []string{"newest", "middle second", "middle first", "oldest"},
		},
		{
			name: "limit",
			page: service.Page{Limit: 2},
			want: []string{"newest", "middle second"},
		},
		{
			name: "limit and offset",
			page: service.Page{Limit: 2, Offset: 1},
			want: []string{"middle second", "middle first"},
		},
		{
			name: "offset only",
			page: service.Page{Offset: 3},
			want: []string{"oldest"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txns, err := store.GetTransactions(ctx, tt.page)
			require.NoError(t, err)
			assert.Equal(t, tt.want, descriptions(txns))
		})
	}
}

func TestGetTransactionByID(t *testing.T) {
	store, salary, _, cleanup := scenario(t)
	defer cleanup()
	ctx := context.Background()

	all, err := store.GetTransactions(ctx, service.Page{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	txn, err := store.GetTransactionByID(ctx, all[1].ID)
	require.NoError(t, err)
	assert.Equal(t, salary.ID, txn.CategoryID)
	assert.Equal(t, "Salary", txn.CategoryName)

	_, err = store.GetTransactionByID(ctx, 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetTransactionsByDateRange(t *testing.T) {
	store, _, _, cleanup := scenario(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("window between both transactions is empty", func(t *testing.T) {
		txns, err := store.GetTransactionsByDateRange(ctx, day(t, "2024-01-06"), day(t, "2024-01-09"))
		require.NoError(t, err)
		assert.Empty(t, txns)
	})

	t.Run("bounds are inclusive", func(t *testing.T) {
		txns, err := store.GetTransactionsByDateRange(ctx, day(t, "2024-01-05"), day(t, "2024-01-10"))
		require.NoError(t, err)
		assert.Equal(t, []string{"Groceries", "January pay"}, descriptions(txns))
	})

	t.Run("single day window", func(t *testing.T) {
		txns, err := store.GetTransactionsByDateRange(ctx, day(t, "2024-01-10"), day(t, "2024-01-10"))
		require.NoError(t, err)
		assert.Equal(t, []string{"Groceries"}, descriptions(txns))
	})
}

func TestGetTransactionsByCategory(t *testing.T) {
	store, cleanup := createBareStorage(t)
	defer cleanup()
	ctx := context.Background()

	food := mustCategory(t, store, "Food", model.CategoryTypeExpense)
	fun := mustCategory(t, store, "Fun", model.CategoryTypeExpense)
	mustTransaction(t, store, "10", food, "january", "2024-01-15")
	mustTransaction(t, store, "20", food, "february", "2024-02-15")
	mustTransaction(t, store, "30", fun, "movie", "2024-01-20")

	t.Run("no window", func(t *testing.T) {
		txns, err := store.GetTransactionsByCategory(ctx, food.ID, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"february", "january"}, descriptions(txns))
	})

	t.Run("full window", func(t *testing.T) {
		txns, err := store.GetTransactionsByCategory(ctx, food.ID, dayPtr(t, "2024-01-01"), dayPtr(t, "2024-01-31"))
		require.NoError(t, err)
		assert.Equal(t, []string{"january"}, descriptions(txns))
	})

	t.Run("half window is ignored", func(t *testing.T) {
		txns, err := store.GetTransactionsByCategory(ctx, food.ID, dayPtr(t, "2024-02-01"), nil)
		require.NoError(t, err)
		assert.Len(t, txns, 2)
	})
}

func TestUpdateTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("overwrites fields and refreshes updated_at", func(t *testing.T) {
		store, cleanup := createBareStorage(t)
		defer cleanup()
		food := mustCategory(t, store, "Food", model.CategoryTypeExpense)
		fun := mustCategory(t, store, "Fun", model.CategoryTypeExpense)
		txn := mustTransaction(t, store, "10", food, "lunch", "2024-01-15")

		_, err := store.db.ExecContext(ctx,
			`UPDATE transactions SET updated_at = '2000-01-01 00:00:00' WHERE id = ?`, txn.ID)
		require.NoError(t, err)

		err = store.UpdateTransaction(ctx, txn.ID, model.TransactionUpdate{
			Amount:      dec("15.25"),
			CategoryID:  fun.ID,
			Description: "cinema",
			Date:        dayPtr(t, "2024-01-16"),
		})
		require.NoError(t, err)

		got, err := store.GetTransactionByID(ctx, txn.ID)
		require.NoError(t, err)
		assertDecimal(t, "15.25", got.Amount)
		assert.Equal(t, fun.ID, got.CategoryID)
		assert.Equal(t, "cinema", got.Description)
		assert.Equal(t, "2024-01-16", model.FormatDate(got.Date))
		assert.Equal(t, model.CategoryTypeExpense, got.Type)
		assert.Greater(t, got.UpdatedAt.Year(), 2000)
	})

	t.Run("omitted date resets to today", func(t *testing.T) {
		store, cleanup := createBareStorage(t)
		defer cleanup()
		setClock(store, "2024-05-01")
		food := mustCategory(t, store, "Food", model.CategoryTypeExpense)
		txn := mustTransaction(t, store, "10", food, "lunch", "2024-01-15")

		err := store.UpdateTransaction(ctx, txn.ID, model.TransactionUpdate{
			Amount:     dec("10"),
			CategoryID: food.ID,
		})
		require.NoError(t, err)

		got, err := store.GetTransactionByID(ctx, txn.ID)
		require.NoError(t, err)
		assert.Equal(t, "2024-05-01", model.FormatDate(got.Date))
		assert.Empty(t, got.Description)
	})

	t.Run("constraints still apply", func(t *testing.T) {
		store, cleanup := createBareStorage(t)
		defer cleanup()
		food := mustCategory(t, store, "Food", model.CategoryTypeExpense)
		txn := mustTransaction(t, store, "10", food, "lunch", "2024-01-15")

		err := store.UpdateTransaction(ctx, txn.ID, model.TransactionUpdate{Amount: dec("0"), CategoryID: food.ID})
		assert.True(t, IsCheckViolation(err), "unexpected error: %v", err)

		err = store.UpdateTransaction(ctx, txn.ID, model.TransactionUpdate{Amount: dec("5"), CategoryID: 999})
		assert.True(t, IsForeignKeyViolation(err), "unexpected error: %v", err)
	})
}

func TestDeleteTransaction(t *testing.T) {
	store, _, _, cleanup := scenario(t)
	defer cleanup()
	ctx := context.Background()

	all, err := store.GetTransactions(ctx, service.Page{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	require.NoError(t, store.DeleteTransaction(ctx, all[0].ID))
	// Deleting again is harmless.
	require.NoError(t, store.DeleteTransaction(ctx, all[0].ID))

	remaining, err := store.GetTransactions(ctx, service.Page{})
	require.NoError(t, err)
	assert.Equal(t, []string{"January pay"}, descriptions(remaining))
}

func TestGetDailyTransactions(t *testing.T) {
	store, cleanup := createBareStorage(t)
	defer cleanup()
	ctx := context.Background()

	cat := mustCategory(t, store, "Food", model.CategoryTypeExpense)
	mustTransaction(t, store, "1", cat, "breakfast", "2024-02-29")
	mustTransaction(t, store, "2", cat, "dinner", "2024-02-29")
	mustTransaction(t, store, "3", cat, "next day", "2024-03-01")

	txns, err := store.GetDailyTransactions(ctx, day(t, "2024-02-29"))
	require.NoError(t, err)
	assert.Equal(t, []string{"dinner", "breakfast"}, descriptions(txns))

	txns, err = store.GetDailyTransactions(ctx, day(t, "2024-02-28"))
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestSearchTransactions(t *testing.T) {
	store, salary, _, cleanup := scenario(t)
	defer cleanup()
	ctx := context.Background()
	mustTransaction(t, store, "250", salary, "Bonus", "2024-03-01")

	tests := []struct {
		start string
		end   string
		name  string
		term  string
		want  []string
	}{
		{name: "description is case-insensitive", term: "grocer", want: []string{"Groceries"}},
		{name: "matches category name", term: "SALARY", want: []string{"Bonus", "January pay"}},
		{name: "no match is empty", term: "foo", want: nil},
		{
			name:  "window applies with both bounds",
			term:  "salary",
			start: "2024-01-01",
			end:   "2024-01-31",
			want:  []string{"January pay"},
		},
		{
			name:  "window ignored with one bound",
			term:  "salary",
			start: "2024-02-01",
			want:  []string{"Bonus", "January pay"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txns, err := store.SearchTransactions(ctx, tt.term, optDay(t, tt.start), optDay(t, tt.end))
			require.NoError(t, err)
			assert.Equal(t, tt.want, descriptions(txns))
		})
	}
}

func descriptions(txns []model.Transaction) []string {
	if len(txns) == 0 {
		return nil
	}
	out := make([]string, len(txns))
	for i, txn := range txns {
		out[i] = txn.Description
	}
	return out
}
