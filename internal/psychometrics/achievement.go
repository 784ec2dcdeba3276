package psychometrics

import (
	"fmt"
	"log/slog"
	"strings"

	"examstats/internal/apperrors"
	"examstats/pkg/contracts/domain"
)

// AchievementStatistics computes the achievement-band distribution and
// per-band score averages over the canonical dataset.
//
// In cut-score mode every record must arrive without a pre-assigned
// level; the band is assigned from the configured cut points and a
// score below the lowest bound is a configuration error. In grade-table
// mode each record's joined level is used; a record with no level (or a
// level the band set does not declare) yields a warning and is excluded
// from band aggregates while still counting toward the overall total.
//
// Bands are emitted in their configured order with zero-member bands
// included, so downstream rendering sees the full ordered set. Ratio is
// the score-conversion factor (the exam's weight in the term grade);
// values outside (0, 1] fall back to 1.
func (c *Calculator) AchievementStatistics(
	records []domain.CanonicalStudentRecord,
	mode domain.AnalysisMode,
	bands domain.BandSet,
	ratio float64,
) (*domain.AchievementDistribution, []domain.Warning, error) {
	if len(records) == 0 {
		return nil, nil, apperrors.InsufficientStudents(0, 1)
	}
	if len(bands) == 0 {
		return nil, nil, apperrors.InvalidInput("no achievement bands configured")
	}
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}

	var warnings []domain.Warning
	byBand := make(map[string][]float64, len(bands))

	switch mode {
	case domain.ModeCutScore:
		if err := bands.Validate(0); err != nil {
			return nil, nil, apperrors.InvalidInput("band configuration: %v", err)
		}
		for i := range records {
			if records[i].Level != nil {
				return nil, nil, apperrors.InvalidInput(
					"cut-score mode but student %d already carries level %q",
					records[i].StudentID, *records[i].Level)
			}
			label, err := bands.Assign(records[i].TotalScore)
			if err != nil {
				return nil, nil, apperrors.BandCoverage(
					records[i].StudentID, records[i].TotalScore, bands[len(bands)-1].LowerBound)
			}
			byBand[label] = append(byBand[label], records[i].TotalScore)
		}

	case domain.ModeGradeTable:
		for i := range records {
			if records[i].Level == nil {
				warnings = append(warnings, domain.Warning{
					Code:      domain.WarnMissingLevel,
					Message:   fmt.Sprintf("student %d has no achievement level", records[i].StudentID),
					StudentID: records[i].StudentID,
					Name:      records[i].Name,
				})
				continue
			}
			label := strings.TrimSpace(*records[i].Level)
			if !bands.Contains(label) {
				warnings = append(warnings, domain.Warning{
					Code:      domain.WarnUnknownLevel,
					Message:   fmt.Sprintf("student %d level %q is not a configured band", records[i].StudentID, label),
					StudentID: records[i].StudentID,
					Name:      records[i].Name,
					Raw:       label,
				})
				continue
			}
			byBand[label] = append(byBand[label], records[i].TotalScore)
		}

	default:
		return nil, nil, apperrors.InvalidInput("unknown analysis mode %q", mode)
	}

	leveled := 0
	for _, scores := range byBand {
		leveled += len(scores)
	}

	dist := &domain.AchievementDistribution{
		Mode:         mode,
		Bands:        make([]domain.BandStatistic, 0, len(bands)),
		TotalRecords: len(records),
		Leveled:      leveled,
	}
	for _, band := range bands {
		scores := byBand[band.Label]
		stat := domain.BandStatistic{Label: band.Label, Count: len(scores)}
		if len(scores) > 0 {
			stat.Percentage = float64(len(scores)) / float64(leveled) * 100
			stat.MeanScore = mean(scores)
			stat.ScoreStdDev = popStdDev(scores)
			converted := make([]float64, len(scores))
			for i, s := range scores {
				converted[i] = s * ratio
			}
			stat.MeanConverted = mean(converted)
			stat.ConvertedStdDev = popStdDev(converted)
		}
		dist.Bands = append(dist.Bands, stat)
	}

	c.logger.Debug("computed achievement distribution",
		slog.String("mode", string(mode)),
		slog.Int("records", len(records)),
		slog.Int("leveled", leveled),
		slog.Int("warnings", len(warnings)),
	)

	return dist, warnings, nil
}

// LevelCorrectRate computes one item's correct rate within each
// achievement band, keyed by band label. Records without a level are
// skipped; a band with no leveled students reports zero.
func (c *Calculator) LevelCorrectRate(
	matrix *domain.BinaryResponseMatrix,
	records []domain.CanonicalStudentRecord,
	item int,
	bands domain.BandSet,
) (map[string]float64, error) {
	if item < 1 || item > matrix.Items() {
		return nil, apperrors.InvalidInput("item %d outside 1..%d", item, matrix.Items())
	}
	if len(records) != matrix.Students() {
		return nil, apperrors.InvalidInput("record count %d does not match %d matrix rows", len(records), matrix.Students())
	}

	correct := make(map[string]int, len(bands))
	total := make(map[string]int, len(bands))
	for i := range records {
		if records[i].Level == nil {
			continue
		}
		label := strings.TrimSpace(*records[i].Level)
		total[label]++
		correct[label] += matrix.At(i, item-1)
	}

	rates := make(map[string]float64, len(bands))
	for _, band := range bands {
		if total[band.Label] == 0 {
			rates[band.Label] = 0
			continue
		}
		rates[band.Label] = float64(correct[band.Label]) / float64(total[band.Label])
	}
	return rates, nil
}

// noResponseChoice is the bucket for empty cells in a choice
// distribution.
const noResponseChoice = "no_response"

// ResponseDistribution counts how often each answer choice was picked
// for one item of a correct-mark export. The correct-mark count is
// folded into the declared correct answer's bucket, since those
// students picked that choice; empty cells land in the no-response
// bucket.
func (c *Calculator) ResponseDistribution(
	records []domain.CanonicalStudentRecord,
	item int,
	correctAnswer string,
) ([]domain.ResponseCount, error) {
	if item < 1 {
		return nil, apperrors.InvalidInput("item %d outside 1..N", item)
	}

	counts := map[string]int{}
	for i := range records {
		if len(records[i].Responses) < item {
			return nil, apperrors.InvalidInput(
				"student %d carries %d raw responses, item %d requested",
				records[i].StudentID, len(records[i].Responses), item)
		}
		token := strings.TrimSpace(records[i].Responses[item-1])
		switch {
		case token == "" || token == "-":
			counts[noResponseChoice]++
		case token == ".":
			if correctAnswer != "" {
				counts[correctAnswer]++
			} else {
				counts["."]++
			}
		default:
			counts[token]++
		}
	}

	out := make([]domain.ResponseCount, 0, 6)
	for choice := 1; choice <= 5; choice++ {
		key := fmt.Sprintf("%d", choice)
		out = append(out, domain.ResponseCount{Choice: key, Count: counts[key]})
	}
	out = append(out, domain.ResponseCount{Choice: noResponseChoice, Count: counts[noResponseChoice]})
	return out, nil
}

// Describe summarizes the total-score distribution.
func (c *Calculator) Describe(totals []float64) (domain.ScoreSummary, error) {
	if len(totals) == 0 {
		return domain.ScoreSummary{}, apperrors.InsufficientStudents(0, 1)
	}
	min, max := totals[0], totals[0]
	for _, v := range totals {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return domain.ScoreSummary{
		Students: len(totals),
		Mean:     mean(totals),
		Median:   median(totals),
		StdDev:   popStdDev(totals),
		Min:      min,
		Max:      max,
	}, nil
}
