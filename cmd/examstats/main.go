// Command examstats runs one exam analysis from the command line: it
// parses the item information sheet, the per-class correctness sheets,
// and any grade summary sheets, reconciles them into the canonical
// dataset, computes the statistics battery, and writes the result
// files to the output directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"examstats/internal/analysis"
	"examstats/internal/config"
	"examstats/internal/exporter"
	"examstats/internal/ingestion"
	"examstats/pkg/contracts/domain"
)

// pathList collects a repeatable flag; each value may be a literal path
// or a glob pattern.
type pathList []string

func (p *pathList) String() string { return strings.Join(*p, ",") }

func (p *pathList) Set(value string) error {
	*p = append(*p, value)
	return nil
}

func main() {
	var responses, grades pathList
	itemPath := flag.String("items", "", "item information sheet (.xlsx)")
	flag.Var(&responses, "responses", "per-class correctness sheet (.xlsx); repeatable, glob patterns allowed")
	flag.Var(&grades, "grades", "grade summary sheet (.xlsx); repeatable, glob patterns allowed")
	mode := flag.String("mode", "cutscore", "analysis mode: cutscore or gradetable")
	configPath := flag.String("config", "", "configuration file (.yaml)")
	outDir := flag.String("out", "out", "output directory for result files")
	format := flag.String("format", "csv", "output format: csv (full export) or json (summary only)")
	flag.Parse()

	if *itemPath == "" {
		fmt.Fprintln(os.Stderr, "examstats: -items is required")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	responsePaths, err := expand(responses)
	if err != nil {
		logger.Error("Failed to resolve response files", slog.String("error", err.Error()))
		os.Exit(1)
	}
	gradePaths, err := expand(grades)
	if err != nil {
		logger.Error("Failed to resolve grade files", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if len(responsePaths) == 0 {
		logger.Error("No response files matched -responses")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *itemPath, responsePaths, gradePaths, *mode, *outDir, *format); err != nil {
		logger.Error("Analysis failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	itemPath string,
	responsePaths, gradePaths []string,
	mode, outDir, format string,
) error {
	loader := ingestion.NewLoader(logger)
	items, tables, gradeTables, err := loader.LoadAll(ctx, itemPath, responsePaths, gradePaths)
	if err != nil {
		return fmt.Errorf("load exports: %w", err)
	}

	service := analysis.NewService(logger)
	result, err := service.Run(ctx, analysis.Request{
		Mode:           domain.AnalysisMode(mode),
		Items:          items,
		ResponseTables: tables,
		GradeTables:    gradeTables,
		Bands:          cfg.BandSet(),
		Percentile:     cfg.Analysis.Percentile,
		Ratio:          cfg.Analysis.Ratio,
	})
	if err != nil {
		return fmt.Errorf("run analysis: %w", err)
	}

	for _, warning := range result.Warnings {
		logger.Warn("data quality warning",
			slog.String("code", string(warning.Code)),
			slog.String("message", warning.Message),
		)
	}

	writer := exporter.NewWriter(outDir, logger)
	switch format {
	case "csv":
		if err := writer.WriteAll(result); err != nil {
			return fmt.Errorf("write results: %w", err)
		}
	case "json":
		if err := writer.WriteSummaryOnly(result); err != nil {
			return fmt.Errorf("write results: %w", err)
		}
	default:
		return fmt.Errorf("unknown format %q (want csv or json)", format)
	}

	logger.Info("analysis complete",
		slog.String("analysis_id", result.AnalysisID),
		slog.Int("students", len(result.Records)),
		slog.Int("items", len(result.Items)),
		slog.Int("warnings", len(result.Warnings)),
		slog.String("out", outDir),
	)
	return nil
}

// expand resolves glob patterns and literal paths into a sorted,
// de-duplicated file list.
func expand(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			// A literal path with no glob metacharacters must exist.
			if _, statErr := os.Stat(pattern); statErr != nil {
				return nil, fmt.Errorf("no files match %q", pattern)
			}
			matches = []string{pattern}
		}
		for _, match := range matches {
			if !seen[match] {
				seen[match] = true
				paths = append(paths, match)
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}
