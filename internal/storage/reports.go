package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/dinar/internal/model"
)

// DefaultTrendMonths is the window used by GetMonthlyTrends when none is given.
const DefaultTrendMonths = 12

const totalsColumns = `
	COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE -amount END), 0)`

// GetTotalBalance sums income and expenses over all transactions, or over
// those dated on or before upTo when it is non-nil.
func (s *SQLiteStorage) GetTotalBalance(ctx context.Context, upTo *time.Time) (*model.Balance, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + totalsColumns + ` FROM transactions`
	var args []any
	if upTo != nil {
		query += ` WHERE date <= ?`
		args = append(args, model.FormatDate(*upTo))
	}

	var b model.Balance
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&b.TotalIncome, &b.TotalExpense, &b.Balance)
	if err != nil {
		return nil, fmt.Errorf("failed to query total balance: %w", err)
	}

	return &b, nil
}

// GetSummaryByDateRange aggregates the transactions dated within [start, end].
func (s *SQLiteStorage) GetSummaryByDateRange(ctx context.Context, start, end time.Time) (*model.PeriodSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var summary model.PeriodSummary
	err := s.db.QueryRowContext(ctx, `
		SELECT `+totalsColumns+`, COUNT(*)
		FROM transactions
		WHERE date BETWEEN ? AND ?`,
		model.FormatDate(start), model.FormatDate(end),
	).Scan(&summary.TotalIncome, &summary.TotalExpense, &summary.NetAmount, &summary.TransactionCount)
	if err != nil {
		return nil, fmt.Errorf("failed to query summary: %w", err)
	}

	return &summary, nil
}

// GetCategorySummary returns one row per category with its total and count
// inside [start, end], largest total first. Categories without activity are
// included with zero totals. categoryType optionally restricts the rows.
func (s *SQLiteStorage) GetCategorySummary(ctx context.Context, start, end time.Time, categoryType *model.CategoryType) ([]model.CategoryTotal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString(`
		SELECT c.id, c.name, c.icon, c.type,
			COALESCE(SUM(t.amount), 0) AS total_amount,
			COUNT(t.id) AS transaction_count
		FROM categories c
		LEFT JOIN transactions t ON c.id = t.category_id
			AND t.date BETWEEN ? AND ?`)
	args := []any{model.FormatDate(start), model.FormatDate(end)}
	if categoryType != nil {
		sb.WriteString(` WHERE c.type = ?`)
		args = append(args, string(*categoryType))
	}
	sb.WriteString(` GROUP BY c.id, c.name, c.icon, c.type ORDER BY total_amount DESC, c.name ASC`)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query category summary: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var totals []model.CategoryTotal
	for rows.Next() {
		var (
			ct      model.CategoryTotal
			icon    sql.NullString
			catType string
		)
		if err := rows.Scan(&ct.CategoryID, &ct.Name, &icon, &catType, &ct.TotalAmount, &ct.TransactionCount); err != nil {
			return nil, fmt.Errorf("failed to scan category summary: %w", err)
		}
		ct.Icon = icon.String
		ct.Type = model.CategoryType(catType)
		totals = append(totals, ct)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category summary: %w", err)
	}

	slog.Debug("retrieved category summary", "categories", len(totals))
	return totals, nil
}

// GetCategoriesWithValues returns sum, count, average, max and min per
// category of categoryType, counting only transactions of the same type.
// The date window is applied only when both start and end are given.
func (s *SQLiteStorage) GetCategoriesWithValues(ctx context.Context, categoryType model.CategoryType, start, end *time.Time) ([]model.CategoryStats, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if !categoryType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategoryType, categoryType)
	}

	var sb strings.Builder
	sb.WriteString(`
		SELECT c.id, c.name, c.icon, c.type,
			COALESCE(SUM(t.amount), 0) AS total_amount,
			COUNT(t.id) AS transaction_count,
			AVG(t.amount) AS average_amount,
			MAX(t.amount) AS max_amount,
			MIN(t.amount) AS min_amount
		FROM categories c
		LEFT JOIN transactions t ON c.id = t.category_id AND t.type = c.type`)
	var args []any
	args = appendWindow(&sb, args, start, end)
	sb.WriteString(` WHERE c.type = ?
		GROUP BY c.id, c.name, c.icon, c.type
		ORDER BY total_amount DESC, c.name ASC`)
	args = append(args, string(categoryType))

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query category values: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats []model.CategoryStats
	for rows.Next() {
		var (
			cs      model.CategoryStats
			icon    sql.NullString
			catType string
		)
		err := rows.Scan(
			&cs.CategoryID, &cs.Name, &icon, &catType,
			&cs.TotalAmount, &cs.TransactionCount,
			&cs.AverageAmount, &cs.MaxAmount, &cs.MinAmount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category values: %w", err)
		}
		cs.Icon = icon.String
		cs.Type = model.CategoryType(catType)
		stats = append(stats, cs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category values: %w", err)
	}

	return stats, nil
}

// GetMonthlyTrends returns income, expense and net per calendar month for
// transactions dated within the last monthsBack months, most recent month
// first. monthsBack <= 0 uses DefaultTrendMonths.
func (s *SQLiteStorage) GetMonthlyTrends(ctx context.Context, monthsBack int) ([]model.MonthlyTrend, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if monthsBack <= 0 {
		monthsBack = DefaultTrendMonths
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT strftime('%Y-%m', date) AS month, `+totalsColumns+`
		FROM transactions
		WHERE date >= date(?, '-' || ? || ' months')
		GROUP BY strftime('%Y-%m', date)
		ORDER BY month DESC`,
		s.today(), monthsBack)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly trends: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var trends []model.MonthlyTrend
	for rows.Next() {
		var mt model.MonthlyTrend
		if err := rows.Scan(&mt.Month, &mt.Income, &mt.Expense, &mt.Net); err != nil {
			return nil, fmt.Errorf("failed to scan monthly trend: %w", err)
		}
		trends = append(trends, mt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly trends: %w", err)
	}

	return trends, nil
}
