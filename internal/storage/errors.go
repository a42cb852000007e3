package storage

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// Constraint checks are left to SQLite. These helpers let callers tell the
// resulting failures apart without the storage layer rewriting them.

// IsUniqueViolation reports whether err came from a UNIQUE constraint,
// such as creating a category whose name already exists.
func IsUniqueViolation(err error) bool {
	return hasExtendedCode(err, sqlite3.ErrConstraintUnique)
}

// IsForeignKeyViolation reports whether err came from a foreign key, such as
// deleting a category that still has transactions or referencing a missing
// category.
func IsForeignKeyViolation(err error) bool {
	return hasExtendedCode(err, sqlite3.ErrConstraintForeignKey)
}

// IsCheckViolation reports whether err came from a CHECK constraint, such as
// a non-positive amount or an unknown type.
func IsCheckViolation(err error) bool {
	return hasExtendedCode(err, sqlite3.ErrConstraintCheck)
}

func hasExtendedCode(err error, code sqlite3.ErrNoExtended) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == code
}
