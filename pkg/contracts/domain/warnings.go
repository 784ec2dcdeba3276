package domain

import "fmt"

// WarningCode classifies a non-fatal data-quality finding.
type WarningCode string

const (
	WarnCoercedValue  WarningCode = "coerced_value"
	WarnUnmatchedName WarningCode = "unmatched_name"
	WarnAmbiguousName WarningCode = "ambiguous_name"
	WarnMissingLevel  WarningCode = "missing_level"
	WarnUnknownLevel  WarningCode = "unknown_level"
	WarnEmptyClass    WarningCode = "empty_class"
	WarnScoreMismatch WarningCode = "score_mismatch"
)

// Warning records one data-quality finding with enough context to act
// on it without re-deriving it from the raw exports. Warnings never
// abort a computation; they accompany the result.
type Warning struct {
	Code      WarningCode `json:"code"`
	Message   string      `json:"message"`
	Table     string      `json:"table,omitempty"`
	StudentID int         `json:"student_id,omitempty"`
	Name      string      `json:"name,omitempty"`
	Item      int         `json:"item,omitempty"`
	Raw       string      `json:"raw,omitempty"`
}

// String renders the warning for log output.
func (w Warning) String() string {
	s := fmt.Sprintf("[%s] %s", w.Code, w.Message)
	if w.Table != "" {
		s += fmt.Sprintf(" (table %s)", w.Table)
	}
	return s
}
