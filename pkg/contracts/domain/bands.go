package domain

import "fmt"

// AchievementBand is one ordinal performance category with the lowest
// total score (inclusive) that still earns it.
type AchievementBand struct {
	Label      string  `json:"label" yaml:"label" validate:"required"`
	LowerBound float64 `json:"lower_bound" yaml:"lower_bound" validate:"min=0"`
}

// BandSet is the ordered achievement band configuration, highest band
// first. Bounds must be strictly descending so the set covers the score
// range with no gaps or overlaps; the last band's bound is the minimum
// score the configuration accepts.
type BandSet []AchievementBand

// DefaultBandSet mirrors the five-level school grading convention.
func DefaultBandSet() BandSet {
	return BandSet{
		{Label: "A", LowerBound: 90},
		{Label: "B", LowerBound: 80},
		{Label: "C", LowerBound: 70},
		{Label: "D", LowerBound: 60},
		{Label: "E", LowerBound: 0},
	}
}

// DefaultBandSetWithFloor is the five-level convention extended with a
// "not reached" band below the E cut, used by exams that distinguish
// minimal achievement from non-achievement.
func DefaultBandSetWithFloor() BandSet {
	return BandSet{
		{Label: "A", LowerBound: 90},
		{Label: "B", LowerBound: 80},
		{Label: "C", LowerBound: 70},
		{Label: "D", LowerBound: 60},
		{Label: "E", LowerBound: 40},
		{Label: "I", LowerBound: 0},
	}
}

// Validate checks the structural invariants: at least one band, unique
// labels, strictly descending bounds, and coverage down to minScore.
func (b BandSet) Validate(minScore float64) error {
	if len(b) == 0 {
		return fmt.Errorf("band set is empty")
	}
	seen := make(map[string]struct{}, len(b))
	for i, band := range b {
		if band.Label == "" {
			return fmt.Errorf("band %d has an empty label", i)
		}
		if _, dup := seen[band.Label]; dup {
			return fmt.Errorf("duplicate band label %q", band.Label)
		}
		seen[band.Label] = struct{}{}
		if i > 0 && band.LowerBound >= b[i-1].LowerBound {
			return fmt.Errorf("band %q bound %.1f does not descend below band %q bound %.1f",
				band.Label, band.LowerBound, b[i-1].Label, b[i-1].LowerBound)
		}
	}
	if floor := b[len(b)-1].LowerBound; floor > minScore {
		return fmt.Errorf("lowest band %q bound %.1f does not cover minimum score %.1f",
			b[len(b)-1].Label, floor, minScore)
	}
	return nil
}

// Labels returns the band labels in configured order.
func (b BandSet) Labels() []string {
	labels := make([]string, len(b))
	for i, band := range b {
		labels[i] = band.Label
	}
	return labels
}

// Contains reports whether the set declares the given label.
func (b BandSet) Contains(label string) bool {
	for _, band := range b {
		if band.Label == label {
			return true
		}
	}
	return false
}

// Assign maps a total score to the highest band whose lower bound the
// score reaches. A score below every bound means the configuration does
// not cover the score domain.
func (b BandSet) Assign(score float64) (string, error) {
	for _, band := range b {
		if score >= band.LowerBound {
			return band.Label, nil
		}
	}
	return "", fmt.Errorf("score %.1f is below the lowest band bound %.1f", score, b[len(b)-1].LowerBound)
}
