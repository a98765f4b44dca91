// internal/correlation/types.go
package correlation

import "github.com/vitalgraph/vitalgraph/internal/series"

// Effect types
const (
	EffectDoseDependent = "dose_dependent"
	EffectThreshold     = "threshold"
)

// Directions
const (
	DirectionPositive = "positive"
	DirectionNegative = "negative"
)

// EvidenceTier labels the methodological strength of every finding this
// engine produces: personal-data-derived, not literature-derived.
const EvidenceTier = "4"

// Fixed significance policy. These were calibrated together with the
// tertile index selection; change one and the others drift.
const (
	SignificanceThreshold = 0.35
	MinPairCount          = 5
	MinTertileSample      = 3
	MinTimingBuckets      = 2
)

// StratumSummary summarizes the pairs that landed in one stratum.
type StratumSummary struct {
	AvgDose     float64 `json:"avg_dose"`
	AvgOutcome  float64 `json:"avg_outcome"`
	SampleCount int     `json:"sample_count"`
}

// DoseResponseFinding reports a significant relationship between an
// exposure's magnitude and an outcome within one temporal window.
type DoseResponseFinding struct {
	IndependentName string                     `json:"independent_name"`
	DependentName   string                     `json:"dependent_name"`
	Window          series.TemporalWindow      `json:"window"`
	EffectType      string                     `json:"effect_type"`
	EffectSize      float64                    `json:"effect_size"`
	Direction       string                     `json:"direction"`
	Tertiles        map[Tertile]StratumSummary `json:"tertiles"`
	OptimalDose     Tertile                    `json:"optimal_dose,omitempty"`
	EvidenceTier    string                     `json:"evidence_tier"`
}

// TimingFinding reports that an outcome depends on when in the day the
// exposure happened.
type TimingFinding struct {
	IndependentName string                              `json:"independent_name"`
	DependentName   string                              `json:"dependent_name"`
	Window          series.TemporalWindow               `json:"window"`
	EffectSize      float64                             `json:"effect_size"`
	Direction       string                              `json:"direction"`
	Buckets         map[series.TimeOfDay]StratumSummary `json:"buckets"`
	OptimalTiming   series.TimeOfDay                    `json:"optimal_timing,omitempty"`
	EvidenceTier    string                              `json:"evidence_tier"`
}
