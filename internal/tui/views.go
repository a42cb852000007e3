package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// View renders the model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.theme.Title.Render("Balance"),
		m.renderTotals(),
	}

	if m.snapshot.Err != nil {
		sections = append(sections, m.theme.StatusError.Render("Last refresh failed: "+m.snapshot.Err.Error()))
	}

	sections = append(sections, m.help.View(m.keymap))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTotals() string {
	if m.snapshot.Loading {
		return m.theme.RoundedBox.Render(m.spinner.View() + " " + m.theme.Muted.Render("Loading balance..."))
	}

	t := m.snapshot.Totals
	net := m.theme.Income
	if t.Balance.IsNegative() {
		net = m.theme.Expense
	}

	rows := lipgloss.JoinVertical(lipgloss.Left,
		m.row("Income", m.theme.Income, t.TotalIncome),
		m.row("Expenses", m.theme.Expense, t.TotalExpense),
		m.row("Balance", net, t.Balance),
	)
	return m.theme.RoundedBox.Render(rows)
}

func (m Model) row(label string, style lipgloss.Style, amount decimal.Decimal) string {
	return fmt.Sprintf("%s%s", m.theme.Label.Render(label), style.Render(amount.StringFixed(2)))
}
