// Package analysis orchestrates one end-to-end analysis run:
// reconciliation, matrix construction, and the statistics battery. The
// pipeline is a single synchronous computation; per-statistic failures
// are recorded on the result instead of aborting the run, while
// structural reconciliation errors abort it with no partial output.
package analysis

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"examstats/internal/apperrors"
	"examstats/internal/psychometrics"
	"examstats/internal/reconcile"
	"examstats/pkg/contracts/domain"
)

// Request is one analysis request: the raw tables plus the per-request
// configuration. Each request carries its own band set and thresholds;
// nothing is shared between concurrent requests.
type Request struct {
	Mode           domain.AnalysisMode       `json:"mode" validate:"required,oneof=cutscore gradetable"`
	Items          []domain.ItemDefinition   `json:"items" validate:"required,min=1,dive"`
	ResponseTables []domain.ResponseTable    `json:"response_tables" validate:"required,min=1,dive"`
	GradeTables    [][]domain.RawGradeRecord `json:"grade_tables,omitempty"`
	Bands          domain.BandSet            `json:"bands,omitempty"`
	// Percentile is the upper/lower split for discrimination; zero
	// selects the default of 0.25.
	Percentile float64 `json:"percentile,omitempty" validate:"omitempty,gt=0,lte=0.5"`
	// Ratio is the exam's weight in the term grade, (0, 1]; zero
	// selects 1.
	Ratio float64 `json:"ratio,omitempty" validate:"omitempty,gt=0,lte=1"`
}

// Service runs analysis requests. It is stateless and safe for
// concurrent use.
type Service struct {
	reconciler *reconcile.Reconciler
	calc       *psychometrics.Calculator
	logger     *slog.Logger
}

// NewService creates the analysis service. A nil logger falls back to
// slog.Default().
func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		reconciler: reconcile.NewReconciler(logger),
		calc:       psychometrics.NewCalculator(logger),
		logger:     logger,
	}
}

// Run executes one request to completion and returns the full result
// document. Reconciliation errors abort the run; statistic-level
// errors are scoped onto the result.
func (s *Service) Run(ctx context.Context, req Request) (*domain.AnalysisResult, error) {
	analysisID := uuid.NewString()
	logger := s.logger.With(slog.String("analysis_id", analysisID))

	if req.Mode != domain.ModeCutScore && req.Mode != domain.ModeGradeTable {
		return nil, apperrors.InvalidInput("unknown analysis mode %q", req.Mode)
	}
	bands := req.Bands
	if len(bands) == 0 {
		bands = domain.DefaultBandSet()
	}
	percentile := req.Percentile
	if percentile == 0 {
		percentile = psychometrics.DefaultPercentile
	}
	ratio := req.Ratio
	if ratio == 0 {
		ratio = 1
	}

	var gradeTables [][]domain.RawGradeRecord
	if req.Mode == domain.ModeGradeTable {
		gradeTables = req.GradeTables
	} else if len(req.GradeTables) > 0 {
		return nil, apperrors.InvalidInput("cut-score mode does not accept grade tables")
	}

	records, warnings, err := s.reconciler.Reconcile(ctx, req.Items, req.ResponseTables, gradeTables)
	if err != nil {
		return nil, err
	}

	matrix, err := domain.NewBinaryResponseMatrix(records, len(req.Items))
	if err != nil {
		return nil, apperrors.InvalidInput("canonical dataset violates matrix invariants: %v", err)
	}

	totals := make([]float64, len(records))
	for i := range records {
		totals[i] = records[i].TotalScore
	}

	result := &domain.AnalysisResult{
		AnalysisID: analysisID,
		Mode:       req.Mode,
		Items:      req.Items,
		Records:    records,
		Warnings:   warnings,
	}

	if summary, err := s.calc.Describe(totals); err == nil {
		result.Summary = summary
	}

	if kr20, err := s.calc.Reliability(matrix); err != nil {
		logger.WarnContext(ctx, "reliability not computable", slog.String("error", err.Error()))
		result.ReliabilityError = err.Error()
	} else {
		result.Reliability = &kr20
	}

	result.ItemStatistics = s.itemStatistics(ctx, logger, matrix, records, totals, percentile, req.Items)
	if req.Mode == domain.ModeGradeTable {
		s.attachLevelRates(ctx, logger, matrix, records, bands, result.ItemStatistics)
	}

	dist, distWarnings, err := s.calc.AchievementStatistics(records, req.Mode, bands, ratio)
	if err != nil {
		logger.WarnContext(ctx, "achievement distribution not computable", slog.String("error", err.Error()))
		result.DistributionError = err.Error()
	} else {
		result.Distribution = dist
		result.Warnings = append(result.Warnings, distWarnings...)
	}

	logger.InfoContext(ctx, "analysis completed",
		slog.Int("students", len(records)),
		slog.Int("items", len(req.Items)),
		slog.Int("warnings", len(result.Warnings)),
	)

	return result, nil
}

// itemStatistics assembles the per-item table, keeping correct-rate and
// discrimination failures scoped to the statistic that raised them.
func (s *Service) itemStatistics(
	ctx context.Context,
	logger *slog.Logger,
	matrix *domain.BinaryResponseMatrix,
	records []domain.CanonicalStudentRecord,
	totals []float64,
	percentile float64,
	items []domain.ItemDefinition,
) []domain.ItemStatistic {
	stats := make([]domain.ItemStatistic, len(items))
	for i, item := range items {
		stats[i] = domain.ItemStatistic{
			Item:     item.Number,
			Standard: item.Standard,
			Points:   item.Points,
		}
		if counts, err := s.calc.ResponseDistribution(records, item.Number, item.CorrectAnswer); err == nil {
			stats[i].ResponseCounts = counts
		}
	}

	rates, err := s.calc.CorrectRate(matrix)
	if err != nil {
		logger.WarnContext(ctx, "correct rates not computable", slog.String("error", err.Error()))
		for i := range stats {
			stats[i].Error = err.Error()
		}
		return stats
	}
	for i := range stats {
		stats[i].CorrectRate = rates[i]
	}

	discrimination, err := s.calc.Discrimination(matrix, totals, percentile)
	if err != nil {
		logger.WarnContext(ctx, "discrimination not computable", slog.String("error", err.Error()))
		for i := range stats {
			stats[i].Error = err.Error()
		}
		return stats
	}
	for i := range stats {
		d := discrimination[i]
		stats[i].Discrimination = &d
	}

	return stats
}

// attachLevelRates adds the per-band correct rate to each item; only
// meaningful once records carry achievement levels.
func (s *Service) attachLevelRates(
	ctx context.Context,
	logger *slog.Logger,
	matrix *domain.BinaryResponseMatrix,
	records []domain.CanonicalStudentRecord,
	bands domain.BandSet,
	stats []domain.ItemStatistic,
) {
	for i := range stats {
		rates, err := s.calc.LevelCorrectRate(matrix, records, stats[i].Item, bands)
		if err != nil {
			logger.WarnContext(ctx, "per-level correct rate not computable",
				slog.Int("item", stats[i].Item),
				slog.String("error", err.Error()),
			)
			return
		}
		stats[i].LevelCorrectRates = rates
	}
}
