package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Driver-specific message fragments for constraint violations. gorm only
// raises its own Err* sentinels when TranslateError is enabled, so the raw
// driver text is matched as a fallback.
var (
	duplicateKeyFragments = []string{
		"duplicate key value violates unique constraint", // postgres 23505
		"Error 1062",               // mysql
		"UNIQUE constraint failed", // sqlite
	}
	foreignKeyFragments = []string{
		"violates foreign key constraint", // postgres 23503
		"Error 1451",                      // mysql, row is still referenced
		"Error 1452",                      // mysql, referenced row missing
		"FOREIGN KEY constraint failed",   // sqlite
	}
)

// IsDuplicateKeyErr reports whether err is a unique-constraint violation.
func IsDuplicateKeyErr(err error) bool {
	return matchesConstraint(err, gorm.ErrDuplicatedKey, duplicateKeyFragments)
}

// IsForeignKeyErr reports whether err is a foreign-key violation.
func IsForeignKeyErr(err error) bool {
	return matchesConstraint(err, gorm.ErrForeignKeyViolated, foreignKeyFragments)
}

func matchesConstraint(err error, sentinel error, fragments []string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sentinel) {
		return true
	}

	msg := err.Error()
	for _, fragment := range fragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
