package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"examstats/pkg/contracts/domain"
)

// Loader reads a full exam's worth of exports: one item information
// sheet, one correctness sheet per class, and any number of grade
// summary sheets.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger falls back to slog.Default().
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// LoadAll parses every export for one analysis run. The per-class and
// grade files are independent of each other, so they are parsed
// concurrently once the item definitions have fixed the item count.
func (l *Loader) LoadAll(
	ctx context.Context,
	itemPath string,
	responsePaths []string,
	gradePaths []string,
) ([]domain.ItemDefinition, []domain.ResponseTable, [][]domain.RawGradeRecord, error) {
	items, err := LoadItemInfo(itemPath, l.logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load item info: %w", err)
	}
	if len(responsePaths) == 0 {
		return nil, nil, nil, fmt.Errorf("no response files supplied")
	}

	tables := make([]domain.ResponseTable, len(responsePaths))
	grades := make([][]domain.RawGradeRecord, len(gradePaths))

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range responsePaths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			table, err := LoadResponseTable(path, len(items), l.logger)
			if err != nil {
				return err
			}
			tables[i] = *table
			return nil
		})
	}
	for i, path := range gradePaths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records, err := LoadGradeReport(path, l.logger)
			if err != nil {
				return err
			}
			grades[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}

	l.logger.InfoContext(ctx, "loaded exam exports",
		slog.Int("items", len(items)),
		slog.Int("response_tables", len(tables)),
		slog.Int("grade_tables", len(grades)),
	)
	return items, tables, grades, nil
}
