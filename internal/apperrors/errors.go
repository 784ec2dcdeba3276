// Package apperrors defines the error taxonomy shared by the
// reconciliation and statistics components. Kinds distinguish
// structural errors, which abort a whole reconciliation, from
// per-statistic errors, which are scoped to the statistic that raised
// them.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an analysis error.
type Kind string

const (
	// KindMergeConflict: two response rows produced the same student
	// identifier. Fatal for the reconciliation.
	KindMergeConflict Kind = "merge_conflict"
	// KindSchemaMismatch: a table's item columns disagree with the
	// item definition set. Fatal for the reconciliation.
	KindSchemaMismatch Kind = "schema_mismatch"
	// KindInsufficientItems: too few items for the requested
	// statistic. Fatal for that statistic only.
	KindInsufficientItems Kind = "insufficient_items"
	// KindInsufficientStudents: too few students for the requested
	// statistic. Fatal for that statistic only.
	KindInsufficientStudents Kind = "insufficient_students"
	// KindEmptyColumn: an item column with no responses.
	KindEmptyColumn Kind = "empty_column"
	// KindZeroVariance: total-score variance is zero, so KR-20 is
	// undefined.
	KindZeroVariance Kind = "zero_variance"
	// KindBandCoverage: a score fell below the lowest configured band
	// bound.
	KindBandCoverage Kind = "band_coverage"
	// KindInvalidInput: a request or configuration failed validation.
	KindInvalidInput Kind = "invalid_input"
)

// Error is a kinded analysis error carrying the context needed to act
// on it: which table, which student, which item.
type Error struct {
	Kind      Kind
	Message   string
	Table     string
	StudentID int
	Item      int
	Err       error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes a wrapped cause to errors.Is/As.
func (e *Error) Unwrap() error { return e.Err }

// Is matches errors by kind so callers can test against the sentinel
// constructors without comparing messages.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// New creates an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind from an error chain, or "" if the chain
// holds no analysis error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// MergeConflict builds the duplicate student identifier error, naming
// both tables that produced the identifier.
func MergeConflict(studentID int, firstTable, secondTable string) *Error {
	return &Error{
		Kind:      KindMergeConflict,
		Message:   fmt.Sprintf("duplicate student_id %d produced by tables %s and %s", studentID, firstTable, secondTable),
		Table:     secondTable,
		StudentID: studentID,
	}
}

// SchemaMismatch builds the item-layout disagreement error.
func SchemaMismatch(table string, got, want int) *Error {
	return &Error{
		Kind:    KindSchemaMismatch,
		Message: fmt.Sprintf("table %s has %d item columns, item definitions declare %d", table, got, want),
		Table:   table,
	}
}

// InsufficientItems builds the too-few-items error.
func InsufficientItems(got, want int) *Error {
	return New(KindInsufficientItems, "%d items, need at least %d", got, want)
}

// InsufficientStudents builds the too-few-students error.
func InsufficientStudents(got, want int) *Error {
	return New(KindInsufficientStudents, "%d students, need at least %d", got, want)
}

// EmptyColumn builds the no-responses error for one item.
func EmptyColumn(item int) *Error {
	return &Error{
		Kind:    KindEmptyColumn,
		Message: fmt.Sprintf("item %d has no responses", item),
		Item:    item,
	}
}

// ZeroVariance builds the undefined-reliability error.
func ZeroVariance() *Error {
	return New(KindZeroVariance, "total-score variance is zero, reliability is undefined")
}

// BandCoverage builds the uncovered-score error.
func BandCoverage(studentID int, score, floor float64) *Error {
	return &Error{
		Kind:      KindBandCoverage,
		Message:   fmt.Sprintf("student %d score %.1f is below the lowest band bound %.1f", studentID, score, floor),
		StudentID: studentID,
	}
}

// InvalidInput builds a request/configuration validation error.
func InvalidInput(format string, args ...any) *Error {
	return New(KindInvalidInput, format, args...)
}
