package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/dinar/internal/model"
)

const categoryColumns = `id, name, type, icon, created_at`

// GetCategories returns all categories ordered by type descending (income
// before expense) then name, or only those of categoryType ordered by name
// when it is non-nil.
func (s *SQLiteStorage) GetCategories(ctx context.Context, categoryType *model.CategoryType) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var (
		rows *sql.Rows
		err  error
	)
	if categoryType != nil {
		rows, err = s.db.QueryContext(ctx, `
			SELECT `+categoryColumns+`
			FROM categories
			WHERE type = ?
			ORDER BY name ASC`, string(*categoryType))
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT `+categoryColumns+`
			FROM categories
			ORDER BY type DESC, name ASC`)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// GetCategoryByID returns a category by its ID. A missing category yields an
// error wrapping ErrNotFound.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE id = ?`, id)

	cat, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// GetCategoryByName returns a category by its exact name.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE name = ?`, name)

	cat, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// CreateCategory inserts a category. An empty icon becomes
// model.DefaultIcon. Duplicate names and unknown types are rejected by the
// database; see IsUniqueViolation and IsCheckViolation.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, name string, categoryType model.CategoryType, icon string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	if icon == "" {
		icon = model.DefaultIcon
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (name, type, icon)
		VALUES (?, ?, ?)`, name, string(categoryType), icon)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category ID: %w", err)
	}

	slog.Info("created new category", "name", name, "type", categoryType, "id", id)
	return s.GetCategoryByID(ctx, id)
}

// UpdateCategory renames a category. The icon is only replaced when icon is
// non-nil and non-empty; otherwise the stored icon is kept. The type never
// changes.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, id int64, name string, icon *string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}

	var iconArg any
	if icon != nil && *icon != "" {
		iconArg = *icon
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE categories
		SET name = ?, icon = COALESCE(?, icon)
		WHERE id = ?`, name, iconArg, id)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		slog.Debug("update matched no category", "id", id)
		return nil
	}

	slog.Info("updated category", "id", id, "name", name)
	return nil
}

// DeleteCategory removes a category. The database refuses while any
// transaction still references it; see IsForeignKeyViolation.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete category %d: %w", id, err)
	}

	slog.Info("deleted category", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (*model.Category, error) {
	var (
		cat       model.Category
		catType   string
		icon      sql.NullString
		createdAt sql.NullTime
	)
	if err := row.Scan(&cat.ID, &cat.Name, &catType, &icon, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan category: %w", err)
	}
	cat.Type = model.CategoryType(catType)
	cat.Icon = icon.String
	cat.CreatedAt = createdAt.Time
	return &cat, nil
}
