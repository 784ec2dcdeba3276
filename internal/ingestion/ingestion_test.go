package ingestion

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"examstats/pkg/contracts/domain"
)

func TestParseClassRoster(t *testing.T) {
	tests := []struct {
		raw    string
		class  int
		roster int
		ok     bool
	}{
		{"1/1", 1, 1, true},
		{"3-15", 3, 15, true},
		{" 2/07 ", 2, 7, true},
		{"홍길동", 0, 0, false},
		{"1/", 0, 0, false},
		{"0/3", 0, 0, false},
		{"", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			class, roster, ok := parseClassRoster(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.class, class)
				assert.Equal(t, tt.roster, roster)
			}
		})
	}
}

func TestLooksLikeKoreanName(t *testing.T) {
	assert.True(t, looksLikeKoreanName("홍길동"))
	assert.True(t, looksLikeKoreanName(" 김하늘 "))
	assert.False(t, looksLikeKoreanName("홍"))
	assert.False(t, looksLikeKoreanName("123"))
	assert.False(t, looksLikeKoreanName("John"))
	assert.False(t, looksLikeKoreanName("김철수입니다요"))
}

func TestExtractClassroom(t *testing.T) {
	assert.Equal(t, "4", extractClassroom([][]string{{"중간고사", "4 강의실"}}))
	assert.Equal(t, "1", extractClassroom([][]string{{}, {"강의실 1"}}))
	assert.Equal(t, "", extractClassroom([][]string{{"중간고사 결과"}}))
}

func TestDetectResponseLayout(t *testing.T) {
	rows := [][]string{
		{"2학년 중간고사", "1 강의실"},
		{},
		{"", "반/번호", "성명", "1", "2", "3", "총점"},
		{"", "", "", "정답", "정답", "정답"},
		{"", "", "", "3", "3", "4"},
		{"", "1/1", "김철수", ".", "1", ".", "2"},
		{"", "1/2", "이민준", ".", ".", "4", "2"},
		{"", "1/3", "박영희", "2", ".", ".", "2"},
		{"", "1/4", "정지우", ".", ".", ".", "3"},
	}

	layout, err := detectResponseLayout(rows, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, layout.headerRow)
	assert.Equal(t, 3, layout.firstItem)
	assert.Equal(t, 2, layout.nameCol)
	assert.Equal(t, 1, layout.classCol)
	assert.Equal(t, 6, layout.totalCol)
	assert.Equal(t, "1", layout.classroomNo)
}

func TestDetectResponseLayoutNoTotalColumn(t *testing.T) {
	rows := [][]string{
		{"", "반/번호", "성명", "1", "2", "3"},
		{"", "", "", "정답", "정답", "정답"},
		{"", "", "", "3", "3", "4"},
		{"", "1/1", "김철수", ".", "1", "."},
		{"", "1/2", "이민준", ".", ".", "4"},
		{"", "1/3", "박영희", "2", ".", "."},
	}

	layout, err := detectResponseLayout(rows, 3)
	require.NoError(t, err)
	assert.Equal(t, -1, layout.totalCol, "a sheet ending at the item block has no total column")
}

func TestDetectResponseLayoutMissingHeader(t *testing.T) {
	rows := [][]string{
		{"제목"},
		{"", "성명"},
	}
	_, err := detectResponseLayout(rows, 16)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no item number header")
}

// writeSheet writes a row-major cell grid to a temporary xlsx file.
func writeSheet(t *testing.T, name string, grid [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for ri, row := range grid {
		for ci, val := range row {
			if val == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(ci+1, ri+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, val))
		}
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadResponseTableRoundTrip(t *testing.T) {
	grid := [][]interface{}{
		{"2학년 중간고사", "1 강의실"},
		{},
		{nil, "반/번호", "성명", 1, 2, 3, "총점"},
		{nil, nil, nil, "정답", "정답", "정답"},
		{nil, nil, nil, 3, 3, 4},
		{nil, "1/1", "김철수", ".", 1, ".", 2},
		{nil, "1/2", "이민준", ".", ".", 4, 2},
		{nil, "1/3", "박영희", 2, ".", ".", 2},
		{nil, "1/4", "정지우", ".", ".", ".", 3},
		{nil, nil, "평균", nil, nil, nil, 2.25},
	}
	path := writeSheet(t, "responses.xlsx", grid)

	table, err := LoadResponseTable(path, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Class)
	assert.Equal(t, domain.SchemeCorrectMark, table.Scheme)
	require.Len(t, table.Rows, 4, "the average footer row must be skipped")

	first := table.Rows[0]
	assert.Equal(t, 1, first.Class)
	assert.Equal(t, 1, first.Roster)
	assert.Equal(t, "김철수", first.Name)
	assert.Equal(t, []string{".", "1", "."}, first.Flags)
	require.NotNil(t, first.Total)
	assert.Equal(t, 2.0, *first.Total)
}

func TestLoadResponseTableEmptyTotalCell(t *testing.T) {
	// 이민준's total cell is empty, so the row ends at the item-3 flag
	// "4". That digit is a wrong-answer choice, not a total.
	grid := [][]interface{}{
		{"2학년 중간고사", "1 강의실"},
		{},
		{nil, "반/번호", "성명", 1, 2, 3, "총점"},
		{nil, nil, nil, "정답", "정답", "정답"},
		{nil, nil, nil, 3, 3, 4},
		{nil, "1/1", "김철수", ".", 1, ".", 2},
		{nil, "1/2", "이민준", ".", ".", 4},
		{nil, "1/3", "박영희", 2, ".", ".", 2},
	}
	path := writeSheet(t, "responses.xlsx", grid)

	table, err := LoadResponseTable(path, 3, nil)
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)

	second := table.Rows[1]
	assert.Equal(t, "이민준", second.Name)
	assert.Equal(t, []string{".", ".", "4"}, second.Flags)
	assert.Nil(t, second.Total, "the item-3 flag must not be read as an external total")

	require.NotNil(t, table.Rows[0].Total)
	assert.Equal(t, 2.0, *table.Rows[0].Total)
}

func TestLoadGradeReportRoundTrip(t *testing.T) {
	grid := [][]interface{}{
		{"성적일람표"},
		{nil, "반/번호", "성명", "성취도"},
		{nil, "1/1", "김철수", "A"},
		{nil, "1/2", "이민준", "B"},
		{nil, "1/3", "박영희", "B"},
		{nil, nil, nil, nil},
	}
	path := writeSheet(t, "grades.xlsx", grid)

	records, err := LoadGradeReport(path, nil)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "김철수", records[0].Name)
	assert.Equal(t, "A", records[0].Level)
	assert.Equal(t, 1, records[0].Class)
	assert.Equal(t, 1, records[0].Roster)
}

func TestLoadItemInfoRoundTrip(t *testing.T) {
	grid := make([][]interface{}, 0, 14)
	for i := 0; i < 10; i++ {
		grid = append(grid, []interface{}{"문항정보표"})
	}
	itemRow := func(no int, standard string, hard, medium bool, points float64, answer string) []interface{} {
		row := make([]interface{}, 22)
		row[itemNumberCol] = no
		row[itemStandardCol] = standard
		if hard {
			row[itemHardCol] = difficultyMark
		}
		if medium {
			row[itemMediumCol] = difficultyMark
		}
		row[itemPointsCol] = points
		row[itemAnswerCol] = answer
		return row
	}
	grid = append(grid,
		itemRow(1, "[9수01-01]", true, false, 4, "3"),
		itemRow(2, "[9수01-02]", false, true, 3.5, "1"),
		itemRow(3, "[9수02-01]", false, false, 2.5, "5"),
		[]interface{}{nil, "합계"},
	)
	path := writeSheet(t, "items.xlsx", grid)

	items, err := LoadItemInfo(path, nil)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, 1, items[0].Number)
	assert.Equal(t, "[9수01-01]", items[0].Standard)
	assert.Equal(t, domain.DifficultyHard, items[0].Difficulty)
	assert.Equal(t, 4.0, items[0].Points)
	assert.Equal(t, "3", items[0].CorrectAnswer)
	assert.Equal(t, domain.DifficultyMedium, items[1].Difficulty)
	assert.Equal(t, domain.DifficultyEasy, items[2].Difficulty)
}

func TestLoaderLoadAll(t *testing.T) {
	itemGrid := make([][]interface{}, 0, 12)
	for i := 0; i < 10; i++ {
		itemGrid = append(itemGrid, []interface{}{"문항정보표"})
	}
	for no := 1; no <= 2; no++ {
		row := make([]interface{}, 22)
		row[itemNumberCol] = no
		row[itemPointsCol] = 5
		itemGrid = append(itemGrid, row)
	}
	itemPath := writeSheet(t, "items.xlsx", itemGrid)

	responseGrid := [][]interface{}{
		{"1 강의실"},
		{nil, "반/번호", "성명", 1, 2},
		{nil, nil, nil, "정답", "정답"},
		{nil, nil, nil, 3, 4},
		{nil, "1/1", "김철수", ".", ".", 10},
		{nil, "1/2", "이민준", ".", 2, 5},
		{nil, "1/3", "박영희", 4, ".", 5},
	}
	responsePath := writeSheet(t, "class1.xlsx", responseGrid)

	loader := NewLoader(nil)
	items, tables, grades, err := loader.LoadAll(context.Background(), itemPath, []string{responsePath}, nil)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	require.Len(t, tables, 1)
	assert.Len(t, tables[0].Rows, 3)
	assert.Empty(t, grades)
}
