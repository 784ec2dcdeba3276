package domain

import (
	"fmt"
	"strings"
)

// ItemDifficulty is the expected difficulty declared in the item
// information sheet, not the measured correct rate.
type ItemDifficulty string

const (
	DifficultyHard   ItemDifficulty = "hard"
	DifficultyMedium ItemDifficulty = "medium"
	DifficultyEasy   ItemDifficulty = "easy"
)

// ItemDefinition describes one exam item as declared in the item
// information sheet. Definitions are loaded once per analysis run and
// never mutated; item numbering is 1..N and fixed exam-wide.
type ItemDefinition struct {
	Number        int            `json:"number" validate:"required,min=1"`
	Standard      string         `json:"standard,omitempty"`
	Points        float64        `json:"points" validate:"min=0"`
	Difficulty    ItemDifficulty `json:"difficulty,omitempty"`
	CorrectAnswer string         `json:"correct_answer,omitempty"`
}

// MarkScheme declares how a response table encodes per-item correctness.
type MarkScheme string

const (
	// SchemeBinary is a plain 0/1 flag per item.
	SchemeBinary MarkScheme = "binary"
	// SchemeCorrectMark is the school-system export convention: the
	// correct answer is marked "." and an incorrect answer is recorded
	// as the choice the student actually picked.
	SchemeCorrectMark MarkScheme = "correct_mark"
)

// RawResponseRecord is one row of one class's correctness export.
// Flags holds the raw cell tokens in item order; coercion to binary
// happens during reconciliation so that every non-exact token can be
// surfaced as a data-quality warning.
type RawResponseRecord struct {
	// Class may be zero when the enclosing table's class number
	// applies.
	Class  int      `json:"class,omitempty"`
	Roster int      `json:"roster" validate:"required,min=1"`
	Name   string   `json:"name" validate:"required"`
	Flags  []string `json:"flags" validate:"required"`
	// Total is the externally supplied total score, if the export
	// carried one. Nil means the total is recomputed from the flags.
	Total *float64 `json:"total,omitempty"`
}

// ResponseTable groups the rows of a single class export together with
// the class number the table belongs to and its marking scheme.
type ResponseTable struct {
	Label  string              `json:"label,omitempty"`
	Class  int                 `json:"class" validate:"required,min=1"`
	Scheme MarkScheme          `json:"scheme" validate:"required,oneof=binary correct_mark"`
	Rows   []RawResponseRecord `json:"rows"`
}

// RawGradeRecord is one row of a grade summary export. Class and Roster
// are zero when the export omitted them; the join key is the name.
type RawGradeRecord struct {
	Name   string   `json:"name" validate:"required"`
	Class  int      `json:"class,omitempty"`
	Roster int      `json:"roster,omitempty"`
	Total  *float64 `json:"total,omitempty"`
	Level  string   `json:"level" validate:"required"`
}

// StudentID derives the canonical student identifier from a class and
// roster number. The identifier is unique within one exam dataset and
// decomposes back into its pair.
func StudentID(class, roster int) int {
	return class*100 + roster
}

// SplitStudentID decomposes a canonical student identifier into its
// class and roster numbers.
func SplitStudentID(id int) (class, roster int) {
	return id / 100, id % 100
}

// CanonicalStudentRecord is the reconciled unit of truth: one student,
// one binary correctness vector aligned to the ItemDefinition order,
// and an optional externally assigned achievement level.
type CanonicalStudentRecord struct {
	StudentID int    `json:"student_id"`
	Name      string `json:"name"`
	// Correct has exactly one 0/1 entry per item.
	Correct []int `json:"correct"`
	// Responses preserves the raw per-item tokens for choice
	// distribution reporting. Same length as Correct.
	Responses  []string `json:"responses,omitempty"`
	TotalScore float64  `json:"total_score"`
	// Level is the externally assigned achievement level, present only
	// under grade-table mode. Nil under cut-score mode.
	Level *string `json:"level,omitempty"`
}

// Class returns the class number encoded in the student identifier.
func (r *CanonicalStudentRecord) Class() int {
	class, _ := SplitStudentID(r.StudentID)
	return class
}

// Roster returns the roster number encoded in the student identifier.
func (r *CanonicalStudentRecord) Roster() int {
	_, roster := SplitStudentID(r.StudentID)
	return roster
}

// Validate checks the record invariants against an expected item count.
func (r *CanonicalStudentRecord) Validate(itemCount int) error {
	if r.StudentID <= 0 {
		return fmt.Errorf("student %q: non-positive student_id %d", r.Name, r.StudentID)
	}
	if len(r.Correct) != itemCount {
		return fmt.Errorf("student %d: correctness vector has %d entries, want %d",
			r.StudentID, len(r.Correct), itemCount)
	}
	for i, v := range r.Correct {
		if v != 0 && v != 1 {
			return fmt.Errorf("student %d: item %d correctness %d is not binary", r.StudentID, i+1, v)
		}
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("student %d: empty name", r.StudentID)
	}
	return nil
}
