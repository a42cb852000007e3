package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/dinar/internal/model"
)

// FormatMoney renders an amount with two decimal places.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatSigned renders an amount colored by the side of the ledger it is on.
func FormatSigned(d decimal.Decimal, t model.CategoryType) string {
	if t == model.CategoryTypeExpense {
		return ExpenseStyle.Render("-" + FormatMoney(d))
	}
	return IncomeStyle.Render("+" + FormatMoney(d))
}

// FormatBalance renders a net amount, red when negative.
func FormatBalance(d decimal.Decimal) string {
	if d.IsNegative() {
		return ExpenseStyle.Render(FormatMoney(d))
	}
	return IncomeStyle.Render(FormatMoney(d))
}

func newTable(w io.Writer, headers ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	styled := make([]string, len(headers))
	rules := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = HeaderStyle.Render(h)
		rules[i] = strings.Repeat("-", max(len(h), 4))
	}
	fmt.Fprintln(tw, strings.Join(styled, "\t"))
	fmt.Fprintln(tw, strings.Join(rules, "\t"))
	return tw
}

// WriteCategories writes categories as a table.
func WriteCategories(w io.Writer, categories []model.Category) error {
	tw := newTable(w, "ID", "Name", "Type", "Icon")
	for _, c := range categories {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ID, c.Name, c.Type, c.Icon)
	}
	return tw.Flush()
}

// WriteTransactions writes transactions as a table.
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	tw := newTable(w, "ID", "Date", "Amount", "Category", "Description")
	for _, t := range txns {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			t.ID, model.FormatDate(t.Date), FormatSigned(t.Amount, t.Type), t.CategoryName, t.Description)
	}
	return tw.Flush()
}

// WriteCategoryTotals writes a per-category summary as a table.
func WriteCategoryTotals(w io.Writer, totals []model.CategoryTotal) error {
	tw := newTable(w, "Category", "Type", "Total", "Count")
	for _, ct := range totals {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", ct.Name, ct.Type, FormatMoney(ct.TotalAmount), ct.TransactionCount)
	}
	return tw.Flush()
}

// WriteCategoryStats writes per-category statistics as a table. Missing
// statistics are shown as "-".
func WriteCategoryStats(w io.Writer, stats []model.CategoryStats) error {
	tw := newTable(w, "Category", "Total", "Count", "Average", "Max", "Min")
	for _, cs := range stats {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			cs.Name, FormatMoney(cs.TotalAmount), cs.TransactionCount,
			formatNull(cs.AverageAmount), formatNull(cs.MaxAmount), formatNull(cs.MinAmount))
	}
	return tw.Flush()
}

// WriteTrends writes monthly trends as a table.
func WriteTrends(w io.Writer, trends []model.MonthlyTrend) error {
	tw := newTable(w, "Month", "Income", "Expense", "Net")
	for _, mt := range trends {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			mt.Month, FormatMoney(mt.Income), FormatMoney(mt.Expense), FormatBalance(mt.Net))
	}
	return tw.Flush()
}

// FormatTotals renders the lines of a balance box.
func FormatTotals(income, expense, net decimal.Decimal) string {
	return fmt.Sprintf("Income:   %s\nExpenses: %s\nBalance:  %s",
		IncomeStyle.Render(FormatMoney(income)),
		ExpenseStyle.Render(FormatMoney(expense)),
		FormatBalance(net))
}

func formatNull(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return FormatMoney(d.Decimal)
}
