package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrBackupExists is returned when the backup destination is already taken.
var ErrBackupExists = errors.New("backup file already exists")

// BackupInfo describes a finished backup.
type BackupInfo struct {
	CreatedAt     time.Time
	Path          string
	Size          int64
	Transactions  int
	Categories    int
	SchemaVersion int
}

// DefaultBackupPath returns a timestamped path in a "backups" directory next
// to the database.
func (s *SQLiteStorage) DefaultBackupPath() string {
	name := fmt.Sprintf("dinar-%s.db", s.now().UTC().Format("2006-01-02-150405"))
	return filepath.Join(filepath.Dir(s.dbPath), "backups", name)
}

// Backup writes a consistent copy of the database to destPath and checks
// its integrity. destPath must be absolute and must not exist yet.
func (s *SQLiteStorage) Backup(ctx context.Context, destPath string) (*BackupInfo, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateBackupPath(destPath); err != nil {
		return nil, err
	}
	if _, err := os.Stat(destPath); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrBackupExists, destPath)
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	// Flush the WAL so the copy sees every committed write.
	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return nil, fmt.Errorf("failed to checkpoint WAL: %w", err)
	}

	// #nosec G201 - destPath is validated above
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", destPath)); err != nil {
		return nil, fmt.Errorf("failed to write backup: %w", err)
	}

	if err := verifyIntegrity(ctx, destPath); err != nil {
		if removeErr := os.Remove(destPath); removeErr != nil {
			slog.Error("Failed to remove corrupt backup", "path", destPath, "error", removeErr)
		}
		return nil, err
	}

	info := &BackupInfo{
		Path:      destPath,
		CreatedAt: s.now(),
	}
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&info.SchemaVersion); err != nil {
		return nil, fmt.Errorf("failed to read schema version: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions").Scan(&info.Transactions); err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&info.Categories); err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}
	if stat, err := os.Stat(destPath); err == nil {
		info.Size = stat.Size()
	}

	slog.Info("Database backed up",
		"path", destPath,
		"size", info.Size,
		"transactions", info.Transactions,
		"categories", info.Categories)

	return info, nil
}

func validateBackupPath(path string) error {
	if err := validateString(path, "destPath"); err != nil {
		return err
	}
	if strings.ContainsAny(path, "'\";") {
		return fmt.Errorf("invalid backup path %q: contains forbidden characters", path)
	}
	if !filepath.IsAbs(path) || filepath.Clean(path) != path {
		return fmt.Errorf("invalid backup path %q: must be absolute and clean", path)
	}
	return nil
}

func verifyIntegrity(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("failed to open backup: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("failed to close backup database", "error", err)
		}
	}()

	var result string
	if err := db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("failed to check backup integrity: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("backup integrity check failed: %s", result)
	}
	return nil
}
