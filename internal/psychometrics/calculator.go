package psychometrics

import (
	"log/slog"
	"math"
	"sort"

	"examstats/internal/apperrors"
	"examstats/pkg/contracts/domain"
)

// DefaultPercentile is the upper/lower split used when a request does
// not supply its own.
const DefaultPercentile = 0.25

// Calculator computes psychometric statistics over a binary response
// matrix. It holds no per-request state; one instance is safe to share
// across concurrent analyses.
type Calculator struct {
	logger *slog.Logger
}

// NewCalculator creates a calculator. A nil logger falls back to
// slog.Default().
func NewCalculator(logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{logger: logger}
}

// Reliability computes the KR-20 internal-consistency coefficient:
//
//	KR20 = (k / (k-1)) * (1 - Σ(p_i*q_i) / σ²)
//
// where k is the item count, p_i the per-item proportion correct, and
// σ² the population variance (divisor N) of the number-correct totals.
// The result is not clamped: negative coefficients are valid and
// indicate inconsistent items. A single item or a zero-variance score
// distribution makes the coefficient undefined and fails explicitly
// instead of propagating NaN or infinity.
func (c *Calculator) Reliability(matrix *domain.BinaryResponseMatrix) (float64, error) {
	k := matrix.Items()
	if k < 2 {
		return 0, apperrors.InsufficientItems(k, 2)
	}
	n := matrix.Students()
	if n < 2 {
		return 0, apperrors.InsufficientStudents(n, 2)
	}

	sumPQ := 0.0
	for col := 0; col < k; col++ {
		correct := 0
		for row := 0; row < n; row++ {
			correct += matrix.At(row, col)
		}
		p := float64(correct) / float64(n)
		sumPQ += p * (1 - p)
	}

	totals := make([]float64, n)
	for i, sum := range matrix.RowSums() {
		totals[i] = float64(sum)
	}
	variance := popVariance(totals)
	if variance == 0 {
		return 0, apperrors.ZeroVariance()
	}

	kr20 := (float64(k) / float64(k-1)) * (1 - sumPQ/variance)

	c.logger.Debug("computed reliability",
		slog.Int("items", k),
		slog.Int("students", n),
		slog.Float64("kr20", kr20),
	)

	return kr20, nil
}

// CorrectRate computes the column-wise proportion correct for every
// item, aligned to the item definition order.
func (c *Calculator) CorrectRate(matrix *domain.BinaryResponseMatrix) ([]float64, error) {
	n := matrix.Students()
	rates := make([]float64, matrix.Items())
	for col := range rates {
		if n == 0 {
			return nil, apperrors.EmptyColumn(col + 1)
		}
		correct := 0
		for row := 0; row < n; row++ {
			correct += matrix.At(row, col)
		}
		rates[col] = float64(correct) / float64(n)
	}
	return rates, nil
}

// Discrimination computes the per-item upper/lower discrimination
// index: the correct-rate difference between the top and bottom score
// groups. Group size is round(percentile*N) with a floor of one student
// when N >= 2.
//
// Ranking is a single stable sort by total score; students with equal
// totals keep their canonical record order. Psychometric references
// leave the tie-break open, so this ordering is the documented policy.
func (c *Calculator) Discrimination(matrix *domain.BinaryResponseMatrix, totals []float64, percentile float64) ([]float64, error) {
	if matrix.Items() == 0 {
		return nil, apperrors.InsufficientItems(0, 1)
	}
	n := matrix.Students()
	if len(totals) != n {
		return nil, apperrors.InvalidInput("totals length %d does not match %d matrix rows", len(totals), n)
	}
	if percentile <= 0 || percentile > 0.5 {
		return nil, apperrors.InvalidInput("percentile %.3f outside (0, 0.5]", percentile)
	}
	if n < 2 {
		return nil, apperrors.InsufficientStudents(n, 2)
	}

	size := int(math.Round(percentile * float64(n)))
	if size < 1 {
		size = 1
	}

	ranked := make([]int, n)
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return totals[ranked[i]] > totals[ranked[j]]
	})

	upper := ranked[:size]
	lower := make([]int, n)
	for i := range lower {
		lower[i] = i
	}
	sort.SliceStable(lower, func(i, j int) bool {
		return totals[lower[i]] < totals[lower[j]]
	})
	lower = lower[:size]

	indices := func(group []int, col int) float64 {
		correct := 0
		for _, row := range group {
			correct += matrix.At(row, col)
		}
		return float64(correct) / float64(len(group))
	}

	result := make([]float64, matrix.Items())
	for col := range result {
		result[col] = indices(upper, col) - indices(lower, col)
	}

	c.logger.Debug("computed discrimination",
		slog.Int("students", n),
		slog.Int("group_size", size),
		slog.Float64("percentile", percentile),
	)

	return result, nil
}
