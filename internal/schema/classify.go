package schema

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/catalog/internal/catalog"
)

// Classify converts a driver error into a *catalog.Error whose Kind reflects
// what the store rejected. Trigger aborts, key and CHECK violations become
// KindConstraint; file access failures become KindIO; sql.ErrNoRows becomes
// KindNotFound. Errors that are already classified pass through unchanged.
// Anything else is wrapped with op.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *catalog.Error
	if errors.As(err, &ce) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.NewError(catalog.KindNotFound, op, "no such row", err)
	}

	var se sqlite3.Error
	if errors.As(err, &se) {
		switch se.Code {
		case sqlite3.ErrConstraint:
			return catalog.NewError(catalog.KindConstraint, op, constraintMessage(se), err)
		case sqlite3.ErrCantOpen, sqlite3.ErrIoErr, sqlite3.ErrPerm, sqlite3.ErrReadonly,
			sqlite3.ErrNotADB, sqlite3.ErrCorrupt, sqlite3.ErrFull:
			return catalog.NewError(catalog.KindIO, op, "", err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// constraintMessage names the violated rule for key and CHECK failures.
// Trigger aborts carry their own message in the wrapped error, so they get
// none here.
func constraintMessage(se sqlite3.Error) string {
	switch se.ExtendedCode {
	case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
		return "duplicate key"
	case sqlite3.ErrConstraintForeignKey:
		return "missing parent"
	case sqlite3.ErrConstraintCheck:
		return "check failed"
	}
	return ""
}
