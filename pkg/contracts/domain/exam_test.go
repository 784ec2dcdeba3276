package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentIDRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		class  int
		roster int
		want   int
	}{
		{"class 1 roster 1", 1, 1, 101},
		{"class 3 roster 15", 3, 15, 315},
		{"double-digit class", 12, 4, 1204},
		{"roster 99", 2, 99, 299},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := StudentID(tt.class, tt.roster)
			assert.Equal(t, tt.want, id)

			class, roster := SplitStudentID(id)
			assert.Equal(t, tt.class, class)
			assert.Equal(t, tt.roster, roster)
		})
	}
}

func TestCanonicalStudentRecordValidate(t *testing.T) {
	valid := CanonicalStudentRecord{
		StudentID: 101,
		Name:      "김철수",
		Correct:   []int{1, 0, 1},
	}
	assert.NoError(t, valid.Validate(3))

	tests := []struct {
		name    string
		mutate  func(r *CanonicalStudentRecord)
		wantErr string
	}{
		{
			name:    "wrong vector length",
			mutate:  func(r *CanonicalStudentRecord) { r.Correct = []int{1, 0} },
			wantErr: "correctness vector",
		},
		{
			name:    "non-binary entry",
			mutate:  func(r *CanonicalStudentRecord) { r.Correct = []int{1, 2, 0} },
			wantErr: "not binary",
		},
		{
			name:    "non-positive student id",
			mutate:  func(r *CanonicalStudentRecord) { r.StudentID = 0 },
			wantErr: "student_id",
		},
		{
			name:    "empty name",
			mutate:  func(r *CanonicalStudentRecord) { r.Name = "  " },
			wantErr: "empty name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := valid
			rec.Correct = append([]int(nil), valid.Correct...)
			tt.mutate(&rec)
			err := rec.Validate(3)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBinaryResponseMatrix(t *testing.T) {
	rows := [][]int{
		{1, 1, 0},
		{1, 0, 0},
		{0, 1, 1},
		{0, 0, 1},
	}
	matrix, err := MatrixFromRows(rows, 3)
	require.NoError(t, err)

	assert.Equal(t, 4, matrix.Students())
	assert.Equal(t, 3, matrix.Items())
	assert.Equal(t, []int{1, 1, 0, 0}, matrix.Column(0))
	assert.Equal(t, []int{2, 1, 2, 1}, matrix.RowSums())
	assert.Equal(t, 1, matrix.At(2, 2))

	t.Run("ragged rows rejected", func(t *testing.T) {
		_, err := MatrixFromRows([][]int{{1, 0}, {1}}, 2)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "entries")
	})

	t.Run("non-binary values rejected", func(t *testing.T) {
		_, err := MatrixFromRows([][]int{{1, 3}}, 2)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not binary")
	})
}
