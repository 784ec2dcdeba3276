package domain

// AnalysisMode selects how achievement levels are obtained.
type AnalysisMode string

const (
	// ModeCutScore assigns bands from score cut points; input records
	// must not carry pre-assigned levels.
	ModeCutScore AnalysisMode = "cutscore"
	// ModeGradeTable uses the levels joined in from grade summary
	// exports.
	ModeGradeTable AnalysisMode = "gradetable"
)

// ItemStatistic carries the per-item figures, aligned to the
// ItemDefinition order. Discrimination is nil when its computation
// failed for this item or dataset; Error says why.
type ItemStatistic struct {
	Item           int      `json:"item"`
	Standard       string   `json:"standard,omitempty"`
	Points         float64  `json:"points"`
	CorrectRate    float64  `json:"correct_rate"`
	Discrimination *float64 `json:"discrimination,omitempty"`
	// ResponseCounts is the per-choice pick distribution, present when
	// the source tables carried raw choice tokens.
	ResponseCounts []ResponseCount `json:"response_counts,omitempty"`
	// LevelCorrectRates keys the item's correct rate by achievement
	// band; present in grade-table mode.
	LevelCorrectRates map[string]float64 `json:"level_correct_rates,omitempty"`
	Error             string             `json:"error,omitempty"`
}

// BandStatistic is one row of the achievement distribution table.
// Percentage is taken over records with a known band. Converted values
// apply the configured score ratio.
type BandStatistic struct {
	Label           string  `json:"label"`
	Count           int     `json:"count"`
	Percentage      float64 `json:"percentage"`
	MeanScore       float64 `json:"mean_score"`
	ScoreStdDev     float64 `json:"score_stddev"`
	MeanConverted   float64 `json:"mean_converted"`
	ConvertedStdDev float64 `json:"converted_stddev"`
}

// AchievementDistribution is the full ordered band table plus the
// overall counts the percentages were computed against.
type AchievementDistribution struct {
	Mode         AnalysisMode    `json:"mode"`
	Bands        []BandStatistic `json:"bands"`
	TotalRecords int             `json:"total_records"`
	Leveled      int             `json:"leveled_records"`
}

// ScoreSummary describes the total-score distribution.
type ScoreSummary struct {
	Students int     `json:"students"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	StdDev   float64 `json:"stddev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// ResponseCount is one bucket of an item's choice distribution.
type ResponseCount struct {
	Choice string `json:"choice"`
	Count  int    `json:"count"`
}

// AnalysisResult is the complete output of one analysis run: the
// canonical dataset, the computed statistics, and every data-quality
// warning gathered along the way. All values are plain structured data;
// rendering is a downstream concern.
type AnalysisResult struct {
	AnalysisID string                   `json:"analysis_id"`
	Mode       AnalysisMode             `json:"mode"`
	Items      []ItemDefinition         `json:"items"`
	Records    []CanonicalStudentRecord `json:"records"`
	Summary    ScoreSummary             `json:"summary"`
	// Reliability is the KR-20 coefficient; nil when it could not be
	// computed, with the reason in ReliabilityError.
	Reliability      *float64                 `json:"reliability,omitempty"`
	ReliabilityError string                   `json:"reliability_error,omitempty"`
	ItemStatistics   []ItemStatistic          `json:"item_statistics"`
	Distribution     *AchievementDistribution `json:"distribution,omitempty"`
	// DistributionError carries the reason the achievement
	// distribution could not be computed; nil Distribution plus an
	// empty error means it was not requested.
	DistributionError string    `json:"distribution_error,omitempty"`
	Warnings          []Warning `json:"warnings"`
}
