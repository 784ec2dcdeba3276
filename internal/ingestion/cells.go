package ingestion

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	classRosterRe = regexp.MustCompile(`^(\d+)[/\-](\d+)$`)
	classroomRe   = regexp.MustCompile(`(\d+)\s*강의실|강의실\s*(\d+)`)
)

// cellInt parses an integer cell, tolerating the float rendering Excel
// applies to numeric cells ("3.0").
func cellInt(raw string) (int, bool) {
	token := strings.TrimSuffix(strings.TrimSpace(raw), ".0")
	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, false
	}
	return n, true
}

// cellFloat parses a numeric cell.
func cellFloat(raw string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// looksLikeKoreanName reports whether a cell plausibly holds a Korean
// student name: two to five Hangul syllables and nothing else.
func looksLikeKoreanName(raw string) bool {
	s := []rune(strings.TrimSpace(raw))
	if len(s) < 2 || len(s) > 5 {
		return false
	}
	for _, r := range s {
		if r < '가' || r > '힣' {
			return false
		}
	}
	return true
}

// parseClassRoster parses the "class/roster" cell convention ("1/1",
// "3-15") into its numeric pair.
func parseClassRoster(raw string) (class, roster int, ok bool) {
	m := classRosterRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, 0, false
	}
	class, _ = strconv.Atoi(m[1])
	roster, _ = strconv.Atoi(m[2])
	if class < 1 || roster < 1 {
		return 0, 0, false
	}
	return class, roster, true
}

// extractClassroom scans preview rows for the exam-room label ("4
// 강의실", "강의실 1") and returns the number, or "" when absent.
func extractClassroom(preview [][]string) string {
	limit := len(preview)
	if limit > 10 {
		limit = 10
	}
	for _, row := range preview[:limit] {
		joined := strings.Join(row, " ")
		if m := classroomRe.FindStringSubmatch(joined); m != nil {
			if m[1] != "" {
				return m[1]
			}
			return m[2]
		}
	}
	return ""
}

// cellAt returns row[col] or "" when the row is shorter than col,
// since excelize trims trailing empty cells.
func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}
