package domain

import "fmt"

// BinaryResponseMatrix is the column-wise view over the canonical
// dataset's correctness vectors: rows are students in canonical order,
// columns are items in definition order. The matrix does not copy the
// underlying vectors; callers must treat it as an immutable snapshot.
type BinaryResponseMatrix struct {
	rows  [][]int
	items int
}

// NewBinaryResponseMatrix builds the matrix view over a reconciled
// dataset. Every record must already satisfy the canonical invariants
// (exactly itemCount binary entries).
func NewBinaryResponseMatrix(records []CanonicalStudentRecord, itemCount int) (*BinaryResponseMatrix, error) {
	rows := make([][]int, len(records))
	for i := range records {
		if err := records[i].Validate(itemCount); err != nil {
			return nil, fmt.Errorf("build response matrix: %w", err)
		}
		rows[i] = records[i].Correct
	}
	return &BinaryResponseMatrix{rows: rows, items: itemCount}, nil
}

// MatrixFromRows builds a matrix directly from binary rows. Intended
// for statistics over pre-assembled data and for tests.
func MatrixFromRows(rows [][]int, itemCount int) (*BinaryResponseMatrix, error) {
	for i, row := range rows {
		if len(row) != itemCount {
			return nil, fmt.Errorf("build response matrix: row %d has %d entries, want %d", i, len(row), itemCount)
		}
		for j, v := range row {
			if v != 0 && v != 1 {
				return nil, fmt.Errorf("build response matrix: row %d item %d value %d is not binary", i, j+1, v)
			}
		}
	}
	return &BinaryResponseMatrix{rows: rows, items: itemCount}, nil
}

// Students returns the number of rows.
func (m *BinaryResponseMatrix) Students() int { return len(m.rows) }

// Items returns the number of columns.
func (m *BinaryResponseMatrix) Items() int { return m.items }

// At returns the correctness flag for student row r and item column c.
func (m *BinaryResponseMatrix) At(r, c int) int { return m.rows[r][c] }

// Row returns one student's correctness vector.
func (m *BinaryResponseMatrix) Row(r int) []int { return m.rows[r] }

// Column copies out one item's correctness column.
func (m *BinaryResponseMatrix) Column(c int) []int {
	col := make([]int, len(m.rows))
	for i, row := range m.rows {
		col[i] = row[c]
	}
	return col
}

// RowSums returns each student's number of correct answers.
func (m *BinaryResponseMatrix) RowSums() []int {
	sums := make([]int, len(m.rows))
	for i, row := range m.rows {
		for _, v := range row {
			sums[i] += v
		}
	}
	return sums
}
