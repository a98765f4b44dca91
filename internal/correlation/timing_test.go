// internal/correlation/timing_test.go
package correlation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalgraph/vitalgraph/internal/series"
)

// bucketedSeries builds one same-day exposure/outcome pair per entry,
// spaced so no cross-day pairing occurs in the acute window.
func bucketedSeries(entries []struct {
	bucket  series.TimeOfDay
	outcome float64
}) ([]series.ExposureEvent, []series.OutcomeObservation) {
	var exposures []series.ExposureEvent
	var outcomes []series.OutcomeObservation
	for i, e := range entries {
		exposures = append(exposures, series.ExposureEvent{OccurredOn: day(i * 5), Amount: 1, TimeOfDay: e.bucket})
		outcomes = append(outcomes, series.OutcomeObservation{ObservedOn: day(i * 5), Value: e.outcome})
	}
	return exposures, outcomes
}

func TestAnalyzeTiming(t *testing.T) {
	t.Run("separated buckets produce a finding", func(t *testing.T) {
		exposures, outcomes := bucketedSeries([]struct {
			bucket  series.TimeOfDay
			outcome float64
		}{
			{series.Morning, 8.0},
			{series.Morning, 8.5},
			{series.Morning, 9.0},
			{series.Evening, 4.0},
			{series.Evening, 4.5},
			{series.Evening, 5.0},
		})

		finding := AnalyzeTiming(exposures, outcomes, "workout", "sleep_hours", series.WindowAcute)
		require.NotNil(t, finding)

		assert.Equal(t, series.Morning, finding.OptimalTiming)
		assert.Equal(t, DirectionPositive, finding.Direction)
		assert.Equal(t, 1.0, finding.EffectSize)
		assert.Equal(t, 3, finding.Buckets[series.Morning].SampleCount)
		assert.Equal(t, 3, finding.Buckets[series.Evening].SampleCount)
		assert.Equal(t, EvidenceTier, finding.EvidenceTier)
	})

	t.Run("fewer than five pairs is absent", func(t *testing.T) {
		exposures, outcomes := bucketedSeries([]struct {
			bucket  series.TimeOfDay
			outcome float64
		}{
			{series.Morning, 9},
			{series.Morning, 8},
			{series.Evening, 2},
			{series.Evening, 1},
		})
		assert.Nil(t, AnalyzeTiming(exposures, outcomes, "workout", "sleep_hours", series.WindowAcute))
	})

	t.Run("single bucket is absent", func(t *testing.T) {
		exposures, outcomes := bucketedSeries([]struct {
			bucket  series.TimeOfDay
			outcome float64
		}{
			{series.Night, 1},
			{series.Night, 2},
			{series.Night, 3},
			{series.Night, 4},
			{series.Night, 5},
		})
		assert.Nil(t, AnalyzeTiming(exposures, outcomes, "snack", "glucose", series.WindowAcute))
	})

	t.Run("unbucketed exposures do not count toward grouping", func(t *testing.T) {
		exposures, outcomes := bucketedSeries([]struct {
			bucket  series.TimeOfDay
			outcome float64
		}{
			{series.TimeOfDayUnknown, 9},
			{series.TimeOfDayUnknown, 8},
			{series.Morning, 7},
			{series.Morning, 6},
			{series.Morning, 5},
		})
		assert.Nil(t, AnalyzeTiming(exposures, outcomes, "walk", "mood", series.WindowAcute))
	})

	t.Run("overlapping buckets below threshold are absent", func(t *testing.T) {
		exposures, outcomes := bucketedSeries([]struct {
			bucket  series.TimeOfDay
			outcome float64
		}{
			{series.Morning, 5.0},
			{series.Morning, 5.2},
			{series.Morning, 4.8},
			{series.Evening, 5.1},
			{series.Evening, 4.9},
			{series.Evening, 5.0},
		})
		assert.Nil(t, AnalyzeTiming(exposures, outcomes, "meditation", "hrv_ms", series.WindowAcute))
	})
}
