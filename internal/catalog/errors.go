package catalog

import (
	"errors"
	"fmt"
)

// Kind categorizes recoverable engine errors.
type Kind string

const (
	// KindIO indicates the store could not be opened or created.
	KindIO Kind = "IO"

	// KindSchema indicates schema creation or migration failed and was rolled back.
	KindSchema Kind = "SCHEMA"

	// KindValidation indicates caller-supplied values failed a precondition.
	// No statement was issued.
	KindValidation Kind = "VALIDATION"

	// KindConstraint indicates the store rejected a statement: a trigger abort,
	// a primary/foreign key or CHECK violation, or an equivalent application
	// precondition evaluated inside the transaction.
	KindConstraint Kind = "CONSTRAINT_VIOLATION"

	// KindNotFound indicates a referenced row does not exist.
	KindNotFound Kind = "NOT_FOUND"
)

// Error is the typed error returned by every engine operation.
type Error struct {
	// Kind identifies the error category.
	Kind Kind

	// Op names the operation that failed, e.g. "insert media".
	Op string

	// Message is a human-readable description.
	Message string

	// Err is the underlying driver or library error, if any.
	Err error
}

// NewError creates an Error.
func NewError(kind Kind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %s: %v", e.Op, e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err, or any error it wraps, is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsConstraintViolation reports whether err is a constraint violation.
func IsConstraintViolation(err error) bool { return IsKind(err, KindConstraint) }

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return IsKind(err, KindValidation) }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }

// IsIO reports whether err is an I/O error.
func IsIO(err error) bool { return IsKind(err, KindIO) }

// IsSchema reports whether err is a schema-creation error.
func IsSchema(err error) bool { return IsKind(err, KindSchema) }

// InvariantError reports a broken caller contract: a position set that is not
// {0..n-1} after a batch reorder, a migration with no accepted candidate, or a
// nested transaction. It is raised with panic, never returned.
type InvariantError struct {
	// Invariant names the violated contract.
	Invariant string

	// Message is a human-readable description.
	Message string
}

// Invariant names.
const (
	InvariantPositions         = "contiguous-positions"
	InvariantMigrationTarget   = "migration-target"
	InvariantNestedTransaction = "no-nested-transactions"
)

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant %s violated: %s", e.Invariant, e.Message)
}

// Invariantf builds an InvariantError with a formatted message.
func Invariantf(invariant, format string, args ...any) *InvariantError {
	return &InvariantError{Invariant: invariant, Message: fmt.Sprintf(format, args...)}
}
