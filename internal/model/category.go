// Package model defines the domain records shared by storage, the balance
// provider and the CLI.
package model

import (
	"fmt"
	"strings"
	"time"
)

// CategoryType indicates whether a category groups income or expenses.
// The same type is carried by every transaction.
type CategoryType string

const (
	// CategoryTypeIncome represents money coming in.
	CategoryTypeIncome CategoryType = "income"
	// CategoryTypeExpense represents money going out.
	CategoryTypeExpense CategoryType = "expense"
)

// DefaultIcon is assigned to categories created without an icon.
const DefaultIcon = "folder"

// Valid reports whether t is one of the known category types.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}

// ParseCategoryType converts user input such as "Income" into a CategoryType.
func ParseCategoryType(s string) (CategoryType, error) {
	t := CategoryType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown category type %q (want income or expense)", s)
	}
	return t, nil
}

// Category is a named grouping for transactions.
type Category struct {
	CreatedAt time.Time
	Name      string
	Icon      string
	Type      CategoryType
	ID        int64
}

// DefaultCategories are seeded into every new database.
var DefaultCategories = []Category{
	{Name: "Salary", Type: CategoryTypeIncome, Icon: "briefcase"},
	{Name: "Freelance", Type: CategoryTypeIncome, Icon: "laptop"},
	{Name: "Investment", Type: CategoryTypeIncome, Icon: "trending-up"},
	{Name: "Other Income", Type: CategoryTypeIncome, Icon: "plus-circle"},

	{Name: "Food & Dining", Type: CategoryTypeExpense, Icon: "utensils"},
	{Name: "Transportation", Type: CategoryTypeExpense, Icon: "car"},
	{Name: "Shopping", Type: CategoryTypeExpense, Icon: "shopping-bag"},
	{Name: "Entertainment", Type: CategoryTypeExpense, Icon: "music"},
	{Name: "Bills & Utilities", Type: CategoryTypeExpense, Icon: "receipt"},
	{Name: "Healthcare", Type: CategoryTypeExpense, Icon: "heart"},
	{Name: "Education", Type: CategoryTypeExpense, Icon: "book-open"},
	{Name: "Other Expenses", Type: CategoryTypeExpense, Icon: "more-horizontal"},
}
