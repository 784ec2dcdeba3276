package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"examstats/internal/apperrors"
	"examstats/pkg/contracts/domain"
)

func referenceItems(n int) []domain.ItemDefinition {
	items := make([]domain.ItemDefinition, n)
	for i := range items {
		items[i] = domain.ItemDefinition{Number: i + 1, Points: 1}
	}
	return items
}

// referenceRequest reproduces the 4-student, 3-item reference scenario:
// matrix [[1,1,0],[1,0,0],[0,1,1],[0,0,1]], unit points, totals
// [2,1,2,1].
func referenceRequest() Request {
	return Request{
		Mode:  domain.ModeCutScore,
		Items: referenceItems(3),
		ResponseTables: []domain.ResponseTable{{
			Class:  1,
			Scheme: domain.SchemeBinary,
			Rows: []domain.RawResponseRecord{
				{Roster: 1, Name: "김철수", Flags: []string{"1", "1", "0"}},
				{Roster: 2, Name: "이민준", Flags: []string{"1", "0", "0"}},
				{Roster: 3, Name: "박영희", Flags: []string{"0", "1", "1"}},
				{Roster: 4, Name: "정지우", Flags: []string{"0", "0", "1"}},
			},
		}},
		Bands: domain.BandSet{
			{Label: "A", LowerBound: 2},
			{Label: "B", LowerBound: 1},
			{Label: "C", LowerBound: 0},
		},
		Percentile: 0.25,
	}
}

func TestServiceRunCutScore(t *testing.T) {
	svc := NewService(nil)

	result, err := svc.Run(context.Background(), referenceRequest())
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.NotEmpty(t, result.AnalysisID)

	require.Len(t, result.Records, 4)
	assert.Equal(t, []float64{2, 1, 2, 1}, []float64{
		result.Records[0].TotalScore,
		result.Records[1].TotalScore,
		result.Records[2].TotalScore,
		result.Records[3].TotalScore,
	})

	require.NotNil(t, result.Reliability)
	assert.InDelta(t, -3.0, *result.Reliability, 1e-9)
	assert.Empty(t, result.ReliabilityError)

	require.Len(t, result.ItemStatistics, 3)
	for i, stat := range result.ItemStatistics {
		assert.Equal(t, i+1, stat.Item)
		assert.InDelta(t, 0.5, stat.CorrectRate, 1e-9)
		require.NotNil(t, stat.Discrimination)
	}
	assert.InDelta(t, 0.0, *result.ItemStatistics[0].Discrimination, 1e-9)
	assert.InDelta(t, 1.0, *result.ItemStatistics[1].Discrimination, 1e-9)
	assert.InDelta(t, 0.0, *result.ItemStatistics[2].Discrimination, 1e-9)

	require.NotNil(t, result.Distribution)
	assert.Equal(t, domain.ModeCutScore, result.Distribution.Mode)
	assert.Equal(t, 2, result.Distribution.Bands[0].Count)
	assert.Equal(t, 2, result.Distribution.Bands[1].Count)
	assert.Equal(t, 0, result.Distribution.Bands[2].Count)

	assert.Equal(t, 4, result.Summary.Students)
	assert.InDelta(t, 1.5, result.Summary.Mean, 1e-9)
}

func TestServiceRunGradeTable(t *testing.T) {
	svc := NewService(nil)

	req := referenceRequest()
	req.Mode = domain.ModeGradeTable
	req.Bands = domain.DefaultBandSet()
	req.GradeTables = [][]domain.RawGradeRecord{{
		{Name: "김철수", Level: "A"},
		{Name: "이민준", Level: "B"},
		{Name: "박영희", Level: "A"},
		// 정지우 has no grade row: MissingLevel, kept in overall count.
	}}

	result, err := svc.Run(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result.Distribution)
	assert.Equal(t, 4, result.Distribution.TotalRecords)
	assert.Equal(t, 3, result.Distribution.Leveled)

	// Item 1 is answered correctly by one of the two A students and by
	// the single B student.
	require.Len(t, result.ItemStatistics, 3)
	rates := result.ItemStatistics[0].LevelCorrectRates
	require.NotNil(t, rates)
	assert.InDelta(t, 0.5, rates["A"], 1e-9)
	assert.InDelta(t, 1.0, rates["B"], 1e-9)

	var missing int
	for _, w := range result.Warnings {
		if w.Code == domain.WarnMissingLevel {
			missing++
			assert.Equal(t, 104, w.StudentID)
		}
	}
	assert.Equal(t, 1, missing)
}

func TestServiceRunDegenerateStatisticsAreScoped(t *testing.T) {
	svc := NewService(nil)

	// Every student answers identically: zero variance. Reliability
	// fails but the rest of the result is still produced.
	req := Request{
		Mode:  domain.ModeCutScore,
		Items: referenceItems(2),
		ResponseTables: []domain.ResponseTable{{
			Class:  1,
			Scheme: domain.SchemeBinary,
			Rows: []domain.RawResponseRecord{
				{Roster: 1, Name: "김철수", Flags: []string{"1", "0"}},
				{Roster: 2, Name: "이민준", Flags: []string{"1", "0"}},
			},
		}},
		Bands: domain.BandSet{{Label: "P", LowerBound: 0}},
	}

	result, err := svc.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, result.Reliability)
	assert.Contains(t, result.ReliabilityError, "zero_variance")

	require.Len(t, result.ItemStatistics, 2)
	assert.InDelta(t, 1.0, result.ItemStatistics[0].CorrectRate, 1e-9)
	require.NotNil(t, result.Distribution)
	assert.Equal(t, 2, result.Distribution.Bands[0].Count)
}

func TestServiceRunRequestValidation(t *testing.T) {
	svc := NewService(nil)

	t.Run("unknown mode", func(t *testing.T) {
		req := referenceRequest()
		req.Mode = "quartile"
		_, err := svc.Run(context.Background(), req)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
	})

	t.Run("grade tables rejected in cut-score mode", func(t *testing.T) {
		req := referenceRequest()
		req.GradeTables = [][]domain.RawGradeRecord{{{Name: "김철수", Level: "A"}}}
		_, err := svc.Run(context.Background(), req)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
	})

	t.Run("merge conflict aborts the run", func(t *testing.T) {
		req := referenceRequest()
		req.ResponseTables[0].Rows[1].Roster = 1
		result, err := svc.Run(context.Background(), req)
		assert.Nil(t, result)
		assert.True(t, apperrors.IsKind(err, apperrors.KindMergeConflict))
	})
}
