package model

import "github.com/shopspring/decimal"

// Balance is income minus expenses over a set of transactions.
type Balance struct {
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Balance      decimal.Decimal
}

// PeriodSummary aggregates the transactions of a date window.
type PeriodSummary struct {
	TotalIncome      decimal.Decimal
	TotalExpense     decimal.Decimal
	NetAmount        decimal.Decimal
	TransactionCount int
}

// CategoryTotal is the activity of one category inside a window. Categories
// without transactions are reported with zero totals.
type CategoryTotal struct {
	Name             string
	Icon             string
	Type             CategoryType
	TotalAmount      decimal.Decimal
	CategoryID       int64
	TransactionCount int
}

// CategoryStats extends CategoryTotal with per-transaction statistics. The
// statistics are null when the category has no matching transactions.
type CategoryStats struct {
	AverageAmount decimal.NullDecimal
	MaxAmount     decimal.NullDecimal
	MinAmount     decimal.NullDecimal
	CategoryTotal
}

// MonthlyTrend holds the totals of one calendar month, keyed "YYYY-MM".
type MonthlyTrend struct {
	Month   string
	Income  decimal.Decimal
	Expense decimal.Decimal
	Net     decimal.Decimal
}
