package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/dinar/internal/model"
	"github.com/Veraticus/dinar/internal/service"
)

const transactionSelect = `
	SELECT t.id, t.amount, t.type, t.category_id, t.description, t.date,
		t.created_at, t.updated_at, c.name, c.icon
	FROM transactions t
	LEFT JOIN categories c ON t.category_id = c.id`

const newestFirst = ` ORDER BY t.date DESC, t.created_at DESC, t.id DESC`

// CreateTransaction records a new transaction. A nil draft.Date means today
// and the description defaults to empty. Positive amounts, valid types and
// existing categories are enforced by the database.
func (s *SQLiteStorage) CreateTransaction(ctx context.Context, draft model.TransactionDraft) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	date := s.dateOrToday(draft.Date)
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (amount, type, category_id, description, date)
		VALUES (?, ?, ?, ?, ?)`,
		draft.Amount.InexactFloat64(),
		string(draft.Type),
		draft.CategoryID,
		draft.Description,
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction ID: %w", err)
	}

	slog.Info("created transaction",
		"id", id,
		"type", draft.Type,
		"amount", draft.Amount.String(),
		"category_id", draft.CategoryID,
		"date", date)

	return s.GetTransactionByID(ctx, id)
}

// GetTransactionByID returns a single transaction with its category details.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	txn, err := scanTransaction(s.db.QueryRowContext(ctx, transactionSelect+` WHERE t.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// GetTransactions lists transactions newest first. Limit and Offset are only
// applied when positive.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, page service.Page) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := transactionSelect + newestFirst
	var args []any
	switch {
	case page.Limit > 0 && page.Offset > 0:
		query += ` LIMIT ? OFFSET ?`
		args = append(args, page.Limit, page.Offset)
	case page.Limit > 0:
		query += ` LIMIT ?`
		args = append(args, page.Limit)
	case page.Offset > 0:
		// SQLite only accepts OFFSET after a LIMIT; -1 means no limit.
		query += ` LIMIT -1 OFFSET ?`
		args = append(args, page.Offset)
	}

	return s.queryTransactions(ctx, query, args...)
}

// GetTransactionsByDateRange returns transactions dated within [start, end].
func (s *SQLiteStorage) GetTransactionsByDateRange(ctx context.Context, start, end time.Time) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	return s.queryTransactions(ctx,
		transactionSelect+` WHERE t.date BETWEEN ? AND ?`+newestFirst,
		model.FormatDate(start), model.FormatDate(end))
}

// GetTransactionsByCategory returns the transactions of one category. The
// date window is applied only when both start and end are given.
func (s *SQLiteStorage) GetTransactionsByCategory(ctx context.Context, categoryID int64, start, end *time.Time) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString(transactionSelect)
	sb.WriteString(` WHERE t.category_id = ?`)
	args := []any{categoryID}
	args = appendWindow(&sb, args, start, end)
	sb.WriteString(newestFirst)

	return s.queryTransactions(ctx, sb.String(), args...)
}

// UpdateTransaction overwrites amount, category, description and date and
// refreshes updated_at. A nil update.Date resets the date to today; it does
// not keep the stored date.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, id int64, update model.TransactionUpdate) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	date := s.dateOrToday(update.Date)
	result, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET amount = ?, category_id = ?, description = ?, date = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		update.Amount.InexactFloat64(),
		update.CategoryID,
		update.Description,
		date,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction %d: %w", id, err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		slog.Debug("update matched no transaction", "id", id)
		return nil
	}

	slog.Info("updated transaction", "id", id, "date", date)
	return nil
}

// DeleteTransaction permanently removes a transaction.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete transaction %d: %w", id, err)
	}

	slog.Info("deleted transaction", "id", id)
	return nil
}

// GetDailyTransactions returns the transactions of a single day, most
// recently recorded first.
func (s *SQLiteStorage) GetDailyTransactions(ctx context.Context, date time.Time) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	return s.queryTransactions(ctx,
		transactionSelect+` WHERE t.date = ? ORDER BY t.created_at DESC, t.id DESC`,
		model.FormatDate(date))
}

// SearchTransactions matches term as a case-insensitive substring of the
// description or the category name. The date window is applied only when
// both start and end are given.
func (s *SQLiteStorage) SearchTransactions(ctx context.Context, term string, start, end *time.Time) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	pattern := "%" + term + "%"
	var sb strings.Builder
	sb.WriteString(transactionSelect)
	sb.WriteString(` WHERE (t.description LIKE ? OR c.name LIKE ?)`)
	args := []any{pattern, pattern}
	args = appendWindow(&sb, args, start, end)
	sb.WriteString(newestFirst)

	return s.queryTransactions(ctx, sb.String(), args...)
}

func (s *SQLiteStorage) queryTransactions(ctx context.Context, query string, args ...any) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	slog.Debug("retrieved transactions", "count", len(transactions))
	return transactions, nil
}

func (s *SQLiteStorage) dateOrToday(date *time.Time) string {
	if date == nil {
		return s.today()
	}
	return model.FormatDate(*date)
}

// appendWindow adds an inclusive date filter when both bounds are present.
func appendWindow(sb *strings.Builder, args []any, start, end *time.Time) []any {
	if start == nil || end == nil {
		return args
	}
	sb.WriteString(` AND t.date BETWEEN ? AND ?`)
	return append(args, model.FormatDate(*start), model.FormatDate(*end))
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var (
		txn          model.Transaction
		txnType      string
		description  sql.NullString
		createdAt    sql.NullTime
		updatedAt    sql.NullTime
		categoryName sql.NullString
		categoryIcon sql.NullString
	)
	err := row.Scan(
		&txn.ID,
		&txn.Amount,
		&txnType,
		&txn.CategoryID,
		&description,
		&txn.Date,
		&createdAt,
		&updatedAt,
		&categoryName,
		&categoryIcon,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}

	txn.Type = model.CategoryType(txnType)
	txn.Description = description.String
	txn.CreatedAt = createdAt.Time
	txn.UpdatedAt = updatedAt.Time
	txn.CategoryName = categoryName.String
	txn.CategoryIcon = categoryIcon.String
	return &txn, nil
}
