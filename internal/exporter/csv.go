// Package exporter writes analysis results to disk as plain CSV and
// JSON files. Rendering beyond that (HTML tables, charts) is a
// downstream concern and deliberately absent.
package exporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"examstats/pkg/contracts/domain"
)

// utf8BOM makes Excel reopen the CSV files with the correct encoding,
// which matters for the Korean name column.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Writer exports one analysis result into a directory.
type Writer struct {
	dir    string
	bom    bool
	logger *slog.Logger
}

// NewWriter creates a writer rooted at dir. BOM prefixing is on by
// default; the exports are meant to be reopened in Excel.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{dir: dir, bom: true, logger: logger}
}

// SetBOM toggles the UTF-8 BOM prefix on CSV files.
func (w *Writer) SetBOM(enabled bool) { w.bom = enabled }

// WriteAll writes the full result set: the canonical dataset, the
// per-item statistics, the band distribution (when present), and a
// JSON summary document.
func (w *Writer) WriteAll(result *domain.AnalysisResult) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if err := w.writeCanonical(result); err != nil {
		return err
	}
	if err := w.writeItems(result); err != nil {
		return err
	}
	if result.Distribution != nil {
		if err := w.writeBands(result.Distribution); err != nil {
			return err
		}
	}
	if err := w.writeSummary(result); err != nil {
		return err
	}

	w.logger.Info("exported analysis result",
		slog.String("dir", w.dir),
		slog.String("analysis_id", result.AnalysisID),
	)
	return nil
}

// WriteSummaryOnly writes just the JSON summary document, skipping the
// CSV files.
func (w *Writer) WriteSummaryOnly(result *domain.AnalysisResult) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := w.writeSummary(result); err != nil {
		return err
	}
	w.logger.Info("exported analysis summary",
		slog.String("dir", w.dir),
		slog.String("analysis_id", result.AnalysisID),
	)
	return nil
}

func (w *Writer) writeCanonical(result *domain.AnalysisResult) error {
	headers := []string{"student_id", "class", "roster", "name", "total_score", "level"}
	for _, item := range result.Items {
		headers = append(headers, fmt.Sprintf("item_%d", item.Number))
	}

	rows := make([][]string, 0, len(result.Records))
	for _, rec := range result.Records {
		level := ""
		if rec.Level != nil {
			level = *rec.Level
		}
		row := []string{
			strconv.Itoa(rec.StudentID),
			strconv.Itoa(rec.Class()),
			strconv.Itoa(rec.Roster()),
			rec.Name,
			formatFloat(rec.TotalScore),
			level,
		}
		for _, v := range rec.Correct {
			row = append(row, strconv.Itoa(v))
		}
		rows = append(rows, row)
	}
	return w.writeCSV("canonical.csv", headers, rows)
}

func (w *Writer) writeItems(result *domain.AnalysisResult) error {
	headers := []string{"item", "standard", "points", "correct_rate", "discrimination", "error"}
	rows := make([][]string, 0, len(result.ItemStatistics))
	for _, stat := range result.ItemStatistics {
		discrimination := ""
		if stat.Discrimination != nil {
			discrimination = formatFloat(*stat.Discrimination)
		}
		rows = append(rows, []string{
			strconv.Itoa(stat.Item),
			stat.Standard,
			formatFloat(stat.Points),
			formatFloat(stat.CorrectRate),
			discrimination,
			stat.Error,
		})
	}
	return w.writeCSV("items.csv", headers, rows)
}

func (w *Writer) writeBands(dist *domain.AchievementDistribution) error {
	headers := []string{"band", "count", "percentage", "mean_score", "score_stddev", "mean_converted"}
	rows := make([][]string, 0, len(dist.Bands))
	for _, band := range dist.Bands {
		rows = append(rows, []string{
			band.Label,
			strconv.Itoa(band.Count),
			formatFloat(band.Percentage),
			formatFloat(band.MeanScore),
			formatFloat(band.ScoreStdDev),
			formatFloat(band.MeanConverted),
		})
	}
	return w.writeCSV("bands.csv", headers, rows)
}

func (w *Writer) writeSummary(result *domain.AnalysisResult) error {
	path := filepath.Join(w.dir, "summary.json")
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (w *Writer) writeCSV(name string, headers []string, rows [][]string) error {
	path := filepath.Join(w.dir, name)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	if w.bom {
		if _, err := file.Write(utf8BOM); err != nil {
			return fmt.Errorf("write BOM to %s: %w", path, err)
		}
	}

	cw := csv.NewWriter(file)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("write headers to %s: %w", path, err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row to %s: %w", path, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}

	w.logger.Debug("wrote CSV file",
		slog.String("file", path),
		slog.Int("rows", len(rows)),
	)
	return nil
}

// formatFloat renders numeric cells without trailing float noise.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
