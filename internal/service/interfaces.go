// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/dinar/internal/model"
)

// Page limits a transaction listing. Zero values mean "no limit" and
// "start at the beginning".
type Page struct {
	Limit  int
	Offset int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Lifecycle
	Initialize(ctx context.Context) error
	Close() error

	// Category operations
	CreateCategory(ctx context.Context, name string, categoryType model.CategoryType, icon string) (*model.Category, error)
	GetCategories(ctx context.Context, categoryType *model.CategoryType) ([]model.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	UpdateCategory(ctx context.Context, id int64, name string, icon *string) error
	DeleteCategory(ctx context.Context, id int64) error

	// Transaction operations
	CreateTransaction(ctx context.Context, draft model.TransactionDraft) (*model.Transaction, error)
	GetTransactionByID(ctx context.Context, id int64) (*model.Transaction, error)
	GetTransactions(ctx context.Context, page Page) ([]model.Transaction, error)
	GetTransactionsByDateRange(ctx context.Context, start, end time.Time) ([]model.Transaction, error)
	GetTransactionsByCategory(ctx context.Context, categoryID int64, start, end *time.Time) ([]model.Transaction, error)
	UpdateTransaction(ctx context.Context, id int64, update model.TransactionUpdate) error
	DeleteTransaction(ctx context.Context, id int64) error
	GetDailyTransactions(ctx context.Context, date time.Time) ([]model.Transaction, error)
	SearchTransactions(ctx context.Context, term string, start, end *time.Time) ([]model.Transaction, error)

	// Reporting
	BalanceSource
	GetSummaryByDateRange(ctx context.Context, start, end time.Time) (*model.PeriodSummary, error)
	GetCategorySummary(ctx context.Context, start, end time.Time, categoryType *model.CategoryType) ([]model.CategoryTotal, error)
	GetCategoriesWithValues(ctx context.Context, categoryType model.CategoryType, start, end *time.Time) ([]model.CategoryStats, error)
	GetMonthlyTrends(ctx context.Context, monthsBack int) ([]model.MonthlyTrend, error)
}

// BalanceSource computes balance totals on demand.
type BalanceSource interface {
	GetTotalBalance(ctx context.Context, upTo *time.Time) (*model.Balance, error)
}
