package table

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrMissingModelID   = errors.New("table has no ModelID column")
	ErrDuplicateModelID = errors.New("duplicate ModelID row")
	ErrNoCommonModels   = errors.New("no overlapping ModelID rows")
	ErrEmptyTable       = errors.New("table has no data rows")
	ErrColumnNotFound   = errors.New("column not found")
)

// SchemaError reports a table whose layout cannot be used.
type SchemaError struct {
	Table  string // source file or logical table name
	Column string // offending column, if any
	Cause  error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("table %s (column %s): %v", e.Table, e.Column, e.Cause)
	}
	return fmt.Sprintf("table %s: %v", e.Table, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *SchemaError) Unwrap() error {
	return e.Cause
}
