package ingestion

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"examstats/pkg/contracts/domain"
)

// Item information sheet layout: a ten-row title block, then one row
// per item with fixed column positions.
const (
	itemInfoHeaderRows = 10
	itemNumberCol      = 1
	itemStandardCol    = 3
	itemHardCol        = 14
	itemMediumCol      = 16
	itemEasyCol        = 18
	itemPointsCol      = 19
	itemAnswerCol      = 21
	difficultyMark     = "○"
)

// LoadItemInfo parses the item information sheet into the fixed,
// exam-wide item definition set.
func LoadItemInfo(path string, logger *slog.Logger) ([]domain.ItemDefinition, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open item info %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("item info %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read item info %s: %w", path, err)
	}
	if len(rows) <= itemInfoHeaderRows {
		return nil, fmt.Errorf("item info %s has no rows below the header block", path)
	}

	var items []domain.ItemDefinition
	for _, row := range rows[itemInfoHeaderRows:] {
		number, ok := cellInt(cellAt(row, itemNumberCol))
		if !ok || number < 1 {
			continue // title, subtotal or blank row
		}
		points, _ := cellFloat(cellAt(row, itemPointsCol))
		items = append(items, domain.ItemDefinition{
			Number:        number,
			Standard:      strings.TrimSpace(cellAt(row, itemStandardCol)),
			Points:        points,
			Difficulty:    rowDifficulty(row),
			CorrectAnswer: strings.TrimSpace(cellAt(row, itemAnswerCol)),
		})
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("item info %s yielded no item rows", path)
	}

	logger.Info("loaded item definitions",
		slog.String("file", path),
		slog.Int("items", len(items)),
	)
	return items, nil
}

// rowDifficulty reads the three mutually exclusive difficulty mark
// columns. An unmarked row defaults to easy, matching the export's own
// summary convention.
func rowDifficulty(row []string) domain.ItemDifficulty {
	switch {
	case strings.TrimSpace(cellAt(row, itemHardCol)) == difficultyMark:
		return domain.DifficultyHard
	case strings.TrimSpace(cellAt(row, itemMediumCol)) == difficultyMark:
		return domain.DifficultyMedium
	default:
		return domain.DifficultyEasy
	}
}
