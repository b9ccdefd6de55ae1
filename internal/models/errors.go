package models

import (
	"errors"
	"fmt"
	"strings"
)

// Custom errors
var (
	ErrFeedUnavailable     = errors.New("odds feed unavailable")
	ErrAnalysisUnavailable = errors.New("analysis service unavailable")
	ErrNotFound            = errors.New("record not found")
)

// ValidationError reports a bet entry field that violates its constraints
type ValidationError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// ReconciliationConflict reports a row with a terminal result whose numeric
// fields cannot be parsed. The row is left without settlement values.
type ReconciliationConflict struct {
	Position int
	Result   BetResult
	Fields   []string
}

func (e *ReconciliationConflict) Error() string {
	return fmt.Sprintf("ledger row %d has result %s but unparsable fields: %s",
		e.Position, e.Result, strings.Join(e.Fields, ", "))
}

// PersistenceError wraps a failure reported by the ledger store
type PersistenceError struct {
	Op    string
	Cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("ledger %s failed: %v", e.Op, e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// NewPersistenceError creates a new persistence error
func NewPersistenceError(op string, cause error) *PersistenceError {
	return &PersistenceError{Op: op, Cause: cause}
}
