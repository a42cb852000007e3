package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/Veraticus/dinar/internal/common"
	"github.com/Veraticus/dinar/internal/config"
	"github.com/Veraticus/dinar/internal/model"
	"github.com/Veraticus/dinar/internal/service"
	"github.com/Veraticus/dinar/internal/storage"
)

// timeNow is replaced in tests.
var timeNow = time.Now

// openStorage opens the configured database without touching its schema.
func openStorage() (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString(config.KeyDatabasePath)
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath
	}

	store, err := storage.NewSQLiteStorage(config.ExpandPath(dbPath))
	if err != nil {
		return nil, common.NewUserError("could not open the database", err)
	}
	return store, nil
}

// initStorage opens the database and initializes it. An initialization
// failure is logged and the store is still returned; the command then fails
// on its first query if the schema is unusable.
func initStorage(ctx context.Context) (service.Storage, error) {
	store, err := openStorage()
	if err != nil {
		return nil, err
	}

	if err := store.Initialize(ctx); err != nil {
		slog.Warn("Database initialization failed, continuing", "path", store.Path(), "error", err)
	}

	return store, nil
}

func closeStorage(store service.Storage) {
	if err := store.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

// parseDateFlag parses an optional YYYY-MM-DD flag value.
func parseDateFlag(value, name string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	d, err := model.ParseDate(value)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("invalid --%s", name), err)
	}
	return &d, nil
}

// requireDateRange parses a mandatory --from/--to pair.
func requireDateRange(from, to string) (time.Time, time.Time, error) {
	if from == "" || to == "" {
		return time.Time{}, time.Time{}, common.NewUserError("both --from and --to are required", nil)
	}
	start, err := parseDateFlag(from, "from")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDateFlag(to, "to")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return *start, *end, nil
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, common.NewUserError(fmt.Sprintf("invalid id %q", value), err)
	}
	return id, nil
}

func parseAmount(value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, common.NewUserError(fmt.Sprintf("invalid amount %q", value), err)
	}
	if !amount.IsPositive() {
		return decimal.Zero, common.NewUserError("amount must be greater than zero", nil)
	}
	return amount, nil
}

func parseTypeFlag(value string) (*model.CategoryType, error) {
	if value == "" {
		return nil, nil
	}
	t, err := model.ParseCategoryType(value)
	if err != nil {
		return nil, common.NewUserError("invalid --type", err)
	}
	return &t, nil
}

// resolveCategory accepts a category id or name.
func resolveCategory(ctx context.Context, store service.Storage, ref string) (*model.Category, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		category, err := store.GetCategoryByID(ctx, id)
		if err != nil {
			return nil, common.NewUserError(fmt.Sprintf("category %d not found", id), err)
		}
		return category, nil
	}

	category, err := store.GetCategoryByName(ctx, ref)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("category %q not found", ref), err)
	}
	return category, nil
}
