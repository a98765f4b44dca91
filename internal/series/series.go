// internal/series/series.go
package series

import "time"

// TimeOfDay buckets an event by when in the day it happened.
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Evening   TimeOfDay = "evening"
	Night     TimeOfDay = "night"

	// TimeOfDayUnknown marks events logged without a time-of-day.
	TimeOfDayUnknown TimeOfDay = ""
)

// Buckets lists the four known time-of-day buckets in stable order.
var Buckets = []TimeOfDay{Morning, Afternoon, Evening, Night}

// ExposureEvent is a logged independent-variable event: a dose taken,
// a behavior performed, an exposure recorded. Immutable once recorded.
type ExposureEvent struct {
	OccurredOn time.Time `json:"occurred_on"`
	Amount     float64   `json:"amount"`
	TimeOfDay  TimeOfDay `json:"time_of_day,omitempty"`
}

// OutcomeObservation is a dependent-variable measurement.
type OutcomeObservation struct {
	ObservedOn time.Time `json:"observed_on"`
	Value      float64   `json:"value"`
}

// BucketForHour maps an hour-of-day to its time-of-day bucket.
func BucketForHour(hour int) TimeOfDay {
	switch {
	case hour >= 5 && hour < 12:
		return Morning
	case hour >= 12 && hour < 17:
		return Afternoon
	case hour >= 17 && hour < 22:
		return Evening
	default:
		return Night
	}
}

// dateOf truncates a timestamp to its UTC calendar date.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LagDays returns the whole-day difference between an outcome timestamp
// and an exposure timestamp. Time-of-day within a day is ignored.
func LagDays(exposure, outcome time.Time) int {
	return int(dateOf(outcome).Sub(dateOf(exposure)).Hours() / 24)
}
