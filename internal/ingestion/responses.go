package ingestion

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"examstats/pkg/contracts/domain"
)

// previewRows bounds the header scan; real exports place the item
// number header within the first dozen rows.
const previewRows = 20

// headerGap separates the item number header from the first student
// row (the header is followed by the answer-key and points rows).
const headerGap = 3

// summary row labels that appear in the name column below the student
// block and must not become students.
var summaryRowNames = map[string]struct{}{
	"정답": {}, "배점": {}, "합계": {}, "평균": {},
}

// responseLayout is the detected geometry of one correctness sheet.
type responseLayout struct {
	headerRow   int
	itemCols    map[int]int // item number -> column index
	firstItem   int         // column of item 1
	nameCol     int
	classCol    int
	totalCol    int // -1 when the sheet has no total column
	classroomNo string
}

// LoadResponseTable parses one class correctness export into a raw
// response table. itemCount is the exam-wide item count from the item
// information sheet; a sheet whose item header disagrees fails here
// rather than deep inside reconciliation.
func LoadResponseTable(path string, itemCount int, logger *slog.Logger) (*domain.ResponseTable, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open response table %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("response table %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read response table %s: %w", path, err)
	}

	layout, err := detectResponseLayout(rows, itemCount)
	if err != nil {
		return nil, fmt.Errorf("response table %s: %w", path, err)
	}

	logger.Debug("detected response sheet layout",
		slog.String("file", path),
		slog.Int("header_row", layout.headerRow),
		slog.Int("name_col", layout.nameCol),
		slog.Int("class_col", layout.classCol),
		slog.Int("total_col", layout.totalCol),
		slog.String("classroom", layout.classroomNo),
	)

	table := &domain.ResponseTable{
		Label:  filepath.Base(path),
		Scheme: domain.SchemeCorrectMark,
	}

	dataStart := layout.headerRow + headerGap
	for ri := dataStart; ri < len(rows); ri++ {
		row := rows[ri]
		name := strings.TrimSpace(cellAt(row, layout.nameCol))
		if name == "" {
			continue
		}
		if _, skip := summaryRowNames[name]; skip {
			continue
		}

		class, roster, ok := parseClassRoster(cellAt(row, layout.classCol))
		if !ok {
			continue // ruler rows and footer junk have no class/roster cell
		}

		flags := make([]string, itemCount)
		for item := 1; item <= itemCount; item++ {
			col, mapped := layout.itemCols[item]
			if !mapped {
				col = layout.firstItem + item - 1
			}
			flags[item-1] = cellAt(row, col)
		}

		var total *float64
		if layout.totalCol != -1 {
			if v, ok := cellFloat(cellAt(row, layout.totalCol)); ok {
				total = &v
			}
		}

		table.Rows = append(table.Rows, domain.RawResponseRecord{
			Class:  class,
			Roster: roster,
			Name:   name,
			Flags:  flags,
			Total:  total,
		})
		if table.Class == 0 {
			table.Class = class
		}
	}

	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("response table %s yielded no student rows", path)
	}

	logger.Info("loaded response table",
		slog.String("file", path),
		slog.Int("class", table.Class),
		slog.Int("students", len(table.Rows)),
	)
	return table, nil
}

// detectResponseLayout locates the item number header run and, from
// it, the name and class/roster columns.
func detectResponseLayout(rows [][]string, itemCount int) (*responseLayout, error) {
	layout := &responseLayout{
		headerRow: -1,
		firstItem: -1,
		nameCol:   -1,
		classCol:  -1,
		itemCols:  make(map[int]int),
	}

	limit := len(rows)
	if limit > previewRows {
		limit = previewRows
	}
	layout.classroomNo = extractClassroom(rows[:limit])

	// The header row is the one carrying a run of item numbers; four
	// distinct numbers is enough to rule out stray numeric cells.
	for ri := 0; ri < limit; ri++ {
		found := map[int]int{}
		for ci, cell := range rows[ri] {
			if n, ok := cellInt(cell); ok && n >= 1 && n <= itemCount {
				if _, dup := found[n]; !dup {
					found[n] = ci
				}
			}
		}
		if len(found) >= 4 || len(found) == itemCount {
			layout.headerRow = ri
			layout.itemCols = found
			if col, ok := found[1]; ok {
				layout.firstItem = col
			}
			break
		}
	}
	if layout.headerRow == -1 || layout.firstItem == -1 {
		return nil, fmt.Errorf("no item number header found in the first %d rows", limit)
	}

	dataStart := layout.headerRow + headerGap
	if dataStart >= len(rows) {
		return nil, fmt.Errorf("no data rows below the item header")
	}

	// The name column sits just left of the item block; verify with a
	// sample of rows and fall back one column when the export squeezes
	// the layout.
	layout.nameCol = pickColumn(rows[dataStart:], layout.firstItem-2, looksLikeKoreanName)
	if layout.nameCol == -1 {
		layout.nameCol = pickColumn(rows[dataStart:], layout.firstItem-1, looksLikeKoreanName)
	}
	if layout.nameCol == -1 {
		return nil, fmt.Errorf("no student name column found left of the item block")
	}

	// The class/roster column is somewhere left of the name.
	for offset := 1; offset <= 3; offset++ {
		col := layout.nameCol - offset
		if col < 0 {
			break
		}
		if pickColumn(rows[dataStart:], col, func(s string) bool {
			_, _, ok := parseClassRoster(s)
			return ok
		}) != -1 {
			layout.classCol = col
			break
		}
	}
	if layout.classCol == -1 {
		return nil, fmt.Errorf("no class/roster column found left of the name column")
	}

	// The total column is fixed sheet-wide: the labelled "총점" header
	// cell when present, else the sheet's right edge when it extends
	// past the item block. Reading each row's own last cell instead
	// would misread the final item flag as a total on rows whose total
	// cell is empty.
	lastItemCol := layout.firstItem + itemCount - 1
	for _, col := range layout.itemCols {
		if col > lastItemCol {
			lastItemCol = col
		}
	}
	layout.totalCol = -1
	for ri := 0; ri < limit && layout.totalCol == -1; ri++ {
		for ci, cell := range rows[ri] {
			if strings.Contains(cell, "총점") && ci > lastItemCol {
				layout.totalCol = ci
				break
			}
		}
	}
	if layout.totalCol == -1 {
		maxCols := 0
		for _, row := range rows {
			if len(row) > maxCols {
				maxCols = len(row)
			}
		}
		if maxCols-1 > lastItemCol {
			layout.totalCol = maxCols - 1
		}
	}

	return layout, nil
}

// pickColumn returns col when at least three of the first ten data
// rows satisfy the predicate there, else -1.
func pickColumn(rows [][]string, col int, pred func(string) bool) int {
	if col < 0 {
		return -1
	}
	matches := 0
	limit := len(rows)
	if limit > 10 {
		limit = 10
	}
	for _, row := range rows[:limit] {
		if pred(cellAt(row, col)) {
			matches++
		}
	}
	if matches >= 3 {
		return col
	}
	return -1
}
