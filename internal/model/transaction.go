package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single dated monetary event. Amount is always positive;
// Type decides whether it adds to or subtracts from the balance.
type Transaction struct {
	Date         time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Amount       decimal.Decimal
	Description  string
	Type         CategoryType
	CategoryName string // filled by joined reads
	CategoryIcon string // filled by joined reads
	ID           int64
	CategoryID   int64
}

// Signed returns the amount as it contributes to the balance.
func (t *Transaction) Signed() decimal.Decimal {
	if t.Type == CategoryTypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// TransactionDraft holds the fields needed to record a new transaction.
// A nil Date means today.
type TransactionDraft struct {
	Date        *time.Time
	Amount      decimal.Decimal
	Description string
	Type        CategoryType
	CategoryID  int64
}

// TransactionUpdate holds the mutable fields of a transaction. Type is not
// part of it. A nil Date resets the transaction to today rather than keeping
// the stored date.
type TransactionUpdate struct {
	Date        *time.Time
	Amount      decimal.Decimal
	Description string
	CategoryID  int64
}
