package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		kind Kind
		msg  string
	}{
		{"merge conflict", MergeConflict(107, "class-1", "class-1b"), KindMergeConflict, "duplicate student_id 107"},
		{"schema mismatch", SchemaMismatch("class-2", 15, 16), KindSchemaMismatch, "15 item columns"},
		{"insufficient items", InsufficientItems(1, 2), KindInsufficientItems, "1 items"},
		{"insufficient students", InsufficientStudents(0, 2), KindInsufficientStudents, "0 students"},
		{"empty column", EmptyColumn(4), KindEmptyColumn, "item 4"},
		{"zero variance", ZeroVariance(), KindZeroVariance, "variance"},
		{"band coverage", BandCoverage(101, -5, 0), KindBandCoverage, "below the lowest band"},
		{"invalid input", InvalidInput("bad %s", "request"), KindInvalidInput, "bad request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.Equal(t, tt.kind, KindOf(tt.err))
			assert.True(t, IsKind(tt.err, tt.kind))
			assert.Contains(t, tt.err.Error(), tt.msg)
		})
	}
}

func TestKindMatchingThroughWrapping(t *testing.T) {
	err := fmt.Errorf("reconcile: %w", MergeConflict(205, "a", "b"))

	assert.True(t, IsKind(err, KindMergeConflict))
	assert.False(t, IsKind(err, KindSchemaMismatch))
	assert.True(t, errors.Is(err, &Error{Kind: KindMergeConflict}))

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, 205, e.StudentID)
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.False(t, IsKind(nil, KindMergeConflict))
}
