package db

import (
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

const (
	sqlStateUniqueViolation     = "23505"
	sqlStateForeignKeyViolation = "23503"
	sqlStateCheckViolation      = "23514"
)

// IsUniqueViolation reports whether err is a unique constraint failure. When
// constraintName is set, only that constraint matches.
func IsUniqueViolation(err error, constraintName string) bool {
	return matchesState(err, sqlStateUniqueViolation, constraintName, "duplicate key value", "UNIQUE constraint failed")
}

// IsForeignKeyViolation reports whether err is a foreign key failure, such as
// deleting a category that products still reference.
func IsForeignKeyViolation(err error, constraintName string) bool {
	return matchesState(err, sqlStateForeignKeyViolation, constraintName, "violates foreign key constraint", "FOREIGN KEY constraint failed")
}

// IsCheckViolation reports whether err is a CHECK constraint failure.
func IsCheckViolation(err error, constraintName string) bool {
	return matchesState(err, sqlStateCheckViolation, constraintName, "violates check constraint", "CHECK constraint failed")
}

func matchesState(err error, state, constraintName string, fallbacks ...string) bool {
	if err == nil {
		return false
	}
	if pg, ok := pkgerrors.AsPG(err); ok {
		if pg.Code != state {
			return false
		}
		return constraintName == "" || pg.Constraint == constraintName
	}

	// sqlite and wrapped driver errors only expose text
	msg := err.Error()
	if constraintName != "" && !strings.Contains(msg, constraintName) {
		return false
	}
	for _, fb := range fallbacks {
		if strings.Contains(msg, fb) {
			return true
		}
	}
	return false
}
