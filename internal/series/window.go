// internal/series/window.go
package series

import "time"

// TemporalWindow is a named day-lag range used to test whether an
// outcome responds to an exposure within that horizon.
type TemporalWindow struct {
	Name       string `json:"name"`
	MinLagDays int    `json:"min_lag_days"`
	MaxLagDays int    `json:"max_lag_days"`
}

// The three canonical windows. Boundaries are inclusive.
var (
	WindowAcute      = TemporalWindow{Name: "acute", MinLagDays: 0, MaxLagDays: 2}
	WindowSubAcute   = TemporalWindow{Name: "sub-acute", MinLagDays: 3, MaxLagDays: 10}
	WindowCumulative = TemporalWindow{Name: "cumulative", MinLagDays: 11, MaxLagDays: 90}
)

// CanonicalWindows lists the analysis windows in ascending lag order.
var CanonicalWindows = []TemporalWindow{WindowAcute, WindowSubAcute, WindowCumulative}

// Contains reports whether a lag falls inside the window.
func (w TemporalWindow) Contains(lagDays int) bool {
	return lagDays >= w.MinLagDays && lagDays <= w.MaxLagDays
}

// Pair couples one exposure with one outcome observed within a window.
// The exposure's amount, bucket and date ride along for the analyzers.
type Pair struct {
	Dose       float64
	Outcome    float64
	TimeOfDay  TimeOfDay
	ExposedOn  time.Time
	ObservedOn time.Time
	LagDays    int
}

// ExtractPairs produces every (exposure, outcome) pair whose whole-day
// lag falls inside the window. Output preserves exposure-then-outcome
// iteration order. Pure function.
func ExtractPairs(exposures []ExposureEvent, outcomes []OutcomeObservation, window TemporalWindow) []Pair {
	var pairs []Pair
	for _, e := range exposures {
		for _, o := range outcomes {
			lag := LagDays(e.OccurredOn, o.ObservedOn)
			if !window.Contains(lag) {
				continue
			}
			pairs = append(pairs, Pair{
				Dose:       e.Amount,
				Outcome:    o.Value,
				TimeOfDay:  e.TimeOfDay,
				ExposedOn:  e.OccurredOn,
				ObservedOn: o.ObservedOn,
				LagDays:    lag,
			})
		}
	}
	return pairs
}
