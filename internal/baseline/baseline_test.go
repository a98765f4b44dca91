// internal/baseline/baseline_test.go
package baseline

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitalgraph/vitalgraph/internal/series"
)

type fakeStore struct {
	observations map[string][]series.OutcomeObservation // userID/metricKey
	baselines    map[string]Record                      // userID/metricKey
	readErr      error
	upserts      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		observations: map[string][]series.OutcomeObservation{},
		baselines:    map[string]Record{},
	}
}

func seriesKey(userID, metricKey string) string { return userID + "/" + metricKey }

func (f *fakeStore) ReadObservations(_ context.Context, userID, metricKey string, from, to time.Time) ([]series.OutcomeObservation, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	var out []series.OutcomeObservation
	for _, o := range f.observations[seriesKey(userID, metricKey)] {
		if !o.ObservedOn.Before(from) && !o.ObservedOn.After(to) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeStore) UpsertBaseline(_ context.Context, rec Record) error {
	f.upserts++
	f.baselines[seriesKey(rec.UserID, rec.MetricKey)] = rec
	return nil
}

func (f *fakeStore) Baselines(_ context.Context, userID string) ([]Record, error) {
	var out []Record
	for _, rec := range f.baselines {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

var testNow = time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)

func seed(store *fakeStore, userID, metricKey string, values []float64) {
	for i, v := range values {
		store.observations[seriesKey(userID, metricKey)] = append(store.observations[seriesKey(userID, metricKey)],
			series.OutcomeObservation{ObservedOn: testNow.AddDate(0, 0, -(i + 1)), Value: v})
	}
}

func newCalculator(store *fakeStore) *Calculator {
	return NewCalculator(store, zap.NewNop()).WithClock(func() time.Time { return testNow })
}

func TestCalculator_Update(t *testing.T) {
	t.Run("round trip with enough samples", func(t *testing.T) {
		store := newFakeStore()
		seed(store, "u1", "sleep_hours", []float64{7, 8, 6, 7.5, 7})
		calc := newCalculator(store)

		rec, stored, err := calc.Update(context.Background(), "u1", "sleep_hours")
		require.NoError(t, err)
		require.True(t, stored)
		assert.Equal(t, 5, rec.SampleCount)
		assert.InDelta(t, 7.1, rec.Value, 1e-9)
		assert.Equal(t, WindowDays, rec.WindowDays)

		got, err := store.Baselines(context.Background(), "u1")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, rec, got[0])
	})

	t.Run("below sample gate returns fallback and writes nothing", func(t *testing.T) {
		store := newFakeStore()
		seed(store, "u1", "resting_hr", []float64{58, 61})
		calc := newCalculator(store)

		rec, stored, err := calc.Update(context.Background(), "u1", "resting_hr")
		require.NoError(t, err)
		assert.False(t, stored)
		assert.Equal(t, 60.0, rec.Value)
		assert.Equal(t, 2, rec.SampleCount)
		assert.Zero(t, store.upserts)
	})

	t.Run("missing readings do not count as samples", func(t *testing.T) {
		store := newFakeStore()
		seed(store, "u1", "hrv_ms", []float64{40, math.NaN(), 50, math.NaN(), 45, 55})
		calc := newCalculator(store)

		rec, stored, err := calc.Update(context.Background(), "u1", "hrv_ms")
		require.NoError(t, err)
		assert.False(t, stored)
		assert.Equal(t, 4, rec.SampleCount)
		assert.Equal(t, 50.0, rec.Value) // hrv fallback
	})

	t.Run("observations outside the window are ignored", func(t *testing.T) {
		store := newFakeStore()
		key := seriesKey("u1", "steps")
		for i := 0; i < 10; i++ {
			store.observations[key] = append(store.observations[key],
				series.OutcomeObservation{ObservedOn: testNow.AddDate(0, 0, -(WindowDays + i + 1)), Value: 10000})
		}
		calc := newCalculator(store)

		_, stored, err := calc.Update(context.Background(), "u1", "steps")
		require.NoError(t, err)
		assert.False(t, stored)
	})

	t.Run("idempotent with unchanged upstream data", func(t *testing.T) {
		store := newFakeStore()
		seed(store, "u1", "sleep_hours", []float64{7, 8, 6, 7.5, 7, 6.5})
		calc := newCalculator(store)

		first, stored, err := calc.Update(context.Background(), "u1", "sleep_hours")
		require.NoError(t, err)
		require.True(t, stored)

		second, stored, err := calc.Update(context.Background(), "u1", "sleep_hours")
		require.NoError(t, err)
		require.True(t, stored)

		assert.Equal(t, first.Value, second.Value)
		assert.Equal(t, first.SampleCount, second.SampleCount)
		assert.Equal(t, 2, store.upserts)
	})

	t.Run("store read failure propagates", func(t *testing.T) {
		store := newFakeStore()
		store.readErr = errors.New("connection reset")
		calc := newCalculator(store)

		_, _, err := calc.Update(context.Background(), "u1", "sleep_hours")
		assert.Error(t, err)
	})
}

func TestCalculator_Extended(t *testing.T) {
	store := newFakeStore()
	seed(store, "u1", "fasting_glucose", []float64{88, 92, 90, 94, 86})
	calc := newCalculator(store)

	stats, ok, err := calc.Extended(context.Background(), "u1", "fasting_glucose")
	require.NoError(t, err)
	require.True(t, ok)

	assert.InDelta(t, 90.0, stats.Mean, 1e-9)
	assert.InDelta(t, 90.0, stats.Median, 1e-9)
	assert.InDelta(t, 2.828, stats.StdDev, 0.01)
	assert.Equal(t, 5, stats.Count)
}

func TestComputeStats(t *testing.T) {
	t.Run("even count medians the middle pair", func(t *testing.T) {
		stats := ComputeStats([]float64{4, 1, 3, 2})
		assert.Equal(t, 2.5, stats.Median)
	})

	t.Run("empty sample is all zero", func(t *testing.T) {
		assert.Equal(t, Stats{}, ComputeStats(nil))
	})
}

func TestFallbackValue(t *testing.T) {
	v, ok := FallbackValue("sleep_hours")
	assert.True(t, ok)
	assert.Equal(t, 7.0, v)

	_, ok = FallbackValue("unheard_of_metric")
	assert.False(t, ok)
}
