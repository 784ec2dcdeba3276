package ingestion

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"examstats/pkg/contracts/domain"
)

// gradePreviewRows bounds the header scan of a grade summary sheet.
const gradePreviewRows = 30

// LoadGradeReport parses one grade summary export into raw grade
// records. The sheet is located by its "성명"/"이름" (name) and
// "성취도"/"등급" (achievement) header cells.
func LoadGradeReport(path string, logger *slog.Logger) ([]domain.RawGradeRecord, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open grade report %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("grade report %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read grade report %s: %w", path, err)
	}

	nameRow, nameCol, gradeRow, gradeCol := -1, -1, -1, -1
	limit := len(rows)
	if limit > gradePreviewRows {
		limit = gradePreviewRows
	}
	for ri := 0; ri < limit; ri++ {
		for ci, cell := range rows[ri] {
			if nameCol == -1 && (strings.Contains(cell, "성명") || strings.Contains(cell, "이름")) {
				nameRow, nameCol = ri, ci
			}
			if gradeCol == -1 && (strings.Contains(cell, "성취도") || strings.Contains(cell, "등급")) {
				gradeRow, gradeCol = ri, ci
			}
		}
	}
	if nameCol == -1 || gradeCol == -1 {
		return nil, fmt.Errorf("grade report %s: name and achievement header cells not found", path)
	}

	dataStart := nameRow + 1
	if gradeRow > nameRow {
		dataStart = gradeRow + 1
	}
	if dataStart >= len(rows) {
		return nil, fmt.Errorf("grade report %s has no rows below its headers", path)
	}
	data := rows[dataStart:]

	// Merged header cells can leave the header one column left of the
	// data; re-anchor on actual name-looking values.
	if picked := pickColumn(data, nameCol, looksLikeKoreanName); picked == -1 {
		for offset := 1; offset <= 3; offset++ {
			if pickColumn(data, nameCol+offset, looksLikeKoreanName) != -1 {
				nameCol += offset
				break
			}
		}
	}

	classCol := -1
	if nameCol > 0 {
		classCol = pickColumn(data, nameCol-1, func(s string) bool {
			_, _, ok := parseClassRoster(s)
			return ok
		})
	}

	var records []domain.RawGradeRecord
	for _, row := range data {
		name := strings.TrimSpace(cellAt(row, nameCol))
		level := strings.TrimSpace(cellAt(row, gradeCol))
		if name == "" || level == "" {
			continue
		}
		rec := domain.RawGradeRecord{Name: name, Level: level}
		if classCol != -1 {
			if class, roster, ok := parseClassRoster(cellAt(row, classCol)); ok {
				rec.Class, rec.Roster = class, roster
			}
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("grade report %s yielded no grade rows", path)
	}

	logger.Info("loaded grade report",
		slog.String("file", path),
		slog.Int("rows", len(records)),
	)
	return records, nil
}
