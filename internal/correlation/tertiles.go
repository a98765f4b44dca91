// internal/correlation/tertiles.go
package correlation

import (
	"errors"
	"sort"
)

// ErrInsufficientSample is returned when a dose sample is too small to
// segment into tertiles. Callers must treat this as a hard precondition
// violation, distinct from the analyzers' soft "no finding" outcome.
var ErrInsufficientSample = errors.New("correlation: need at least 3 dose values to compute tertiles")

// Tertile names one of three equal-count dose strata.
type Tertile string

const (
	TertileLow    Tertile = "low"
	TertileMedium Tertile = "medium"
	TertileHigh   Tertile = "high"
)

// TertileThresholds are cut points derived from a sorted dose sample.
type TertileThresholds struct {
	Low    float64 `json:"low"`
	Medium float64 `json:"medium"`
	High   float64 `json:"high"`
}

// ComputeTertiles sorts the sample ascending and takes the values at the
// floor(n/3) and floor(2n/3) indexes as the low and medium cut points,
// and the maximum as the high cut. The integer-index selection is
// slightly asymmetric versus interpolated percentiles; downstream
// significance thresholds were calibrated against it, so it stays.
func ComputeTertiles(amounts []float64) (TertileThresholds, error) {
	if len(amounts) < 3 {
		return TertileThresholds{}, ErrInsufficientSample
	}

	sorted := make([]float64, len(amounts))
	copy(sorted, amounts)
	sort.Float64s(sorted)

	distinct := 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1] {
			distinct++
		}
	}
	if distinct < 3 {
		return TertileThresholds{}, ErrInsufficientSample
	}

	n := len(sorted)
	return TertileThresholds{
		Low:    sorted[n/3],
		Medium: sorted[2*n/3],
		High:   sorted[n-1],
	}, nil
}

// Classify maps any dose to exactly one tertile. Total over all reals:
// values below the training minimum classify low, values at or above
// the medium cut classify high.
func Classify(amount float64, t TertileThresholds) Tertile {
	switch {
	case amount < t.Low:
		return TertileLow
	case amount < t.Medium:
		return TertileMedium
	default:
		return TertileHigh
	}
}
