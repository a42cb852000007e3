// Package config loads application settings from the config file, the
// environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyDatabasePath          = "database.path"
	KeyLogLevel              = "logging.level"
	KeyLogFormat             = "logging.format"
	KeyTrendMonths           = "trends.months"
	KeyImportIncomeCategory  = "import.income_category"
	KeyImportExpenseCategory = "import.expense_category"
)

// EnvPrefix is prepended to environment overrides, e.g. DINAR_DATABASE_PATH.
const EnvPrefix = "DINAR"

// DefaultDatabasePath is used when database.path is not set.
const DefaultDatabasePath = "$HOME/.local/share/dinar/dinar.db"

// Config holds the resolved settings.
type Config struct {
	DatabasePath          string
	LogLevel              string
	LogFormat             string
	ImportIncomeCategory  string
	ImportExpenseCategory string
	TrendMonths           int
}

// SetDefaults registers default values and environment binding on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyTrendMonths, 12)
	v.SetDefault(KeyImportIncomeCategory, "Other Income")
	v.SetDefault(KeyImportExpenseCategory, "Other Expenses")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load resolves a Config from v, expanding the database path.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabasePath:          ExpandPath(v.GetString(KeyDatabasePath)),
		LogLevel:              strings.ToLower(v.GetString(KeyLogLevel)),
		LogFormat:             strings.ToLower(v.GetString(KeyLogFormat)),
		TrendMonths:           v.GetInt(KeyTrendMonths),
		ImportIncomeCategory:  v.GetString(KeyImportIncomeCategory),
		ImportExpenseCategory: v.GetString(KeyImportExpenseCategory),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("%s must not be empty", KeyDatabasePath)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format: %s", c.LogFormat)
	}
	if c.TrendMonths <= 0 {
		return fmt.Errorf("%s must be positive, got %d", KeyTrendMonths, c.TrendMonths)
	}
	return nil
}

// LoadDotEnv loads variables from the given .env files (".env" when none are
// given) without overriding the existing environment. Missing files are
// ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ExpandPath expands a leading ~ and $VAR references in path.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return os.ExpandEnv(path)
}
