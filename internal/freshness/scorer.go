// internal/freshness/scorer.go
package freshness

import (
	"math"
	"time"
)

// Category is the three-tier staleness classification.
type Category string

const (
	CategoryGreen  Category = "green"
	CategoryYellow Category = "yellow"
	CategoryRed    Category = "red"
)

// Decay and category constants. These are calibrated together so green
// lines up with "measured within ~3 months", yellow with "3-9 months"
// and red with "9+ months". Not tunable defaults.
const (
	decayRatePerMonth = 0.15
	daysPerMonth      = 30.44

	greenFloor  = 0.64
	yellowFloor = 0.26
)

// Score converts time since last measurement into an exponentially
// decayed confidence in [0, 1]. Zero elapsed time scores exactly 1.
func Score(lastMeasuredAt, now time.Time) float64 {
	daysElapsed := now.Sub(lastMeasuredAt).Hours() / 24
	monthsElapsed := daysElapsed / daysPerMonth
	score := math.Exp(-decayRatePerMonth * monthsElapsed)
	return math.Min(1, math.Max(0, score))
}

// Categorize maps a freshness score to its tier.
func Categorize(score float64) Category {
	switch {
	case score >= greenFloor:
		return CategoryGreen
	case score >= yellowFloor:
		return CategoryYellow
	default:
		return CategoryRed
	}
}
