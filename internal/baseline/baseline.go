// internal/baseline/baseline.go
package baseline

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/vitalgraph/vitalgraph/internal/series"
)

// Policy constants for the rolling baseline.
const (
	WindowDays = 30
	MinSamples = 5
)

// Record is one user's rolling baseline for one metric. Identity is the
// (UserID, MetricKey) pair; recomputed and overwritten, never appended.
type Record struct {
	UserID           string    `json:"user_id"`
	MetricKey        string    `json:"metric_key"`
	WindowDays       int       `json:"window_days"`
	Value            float64   `json:"value"`
	SampleCount      int       `json:"sample_count"`
	LastCalculatedAt time.Time `json:"last_calculated_at"`
}

// Stats is the richer baseline variant used for deviation detection.
type Stats struct {
	Mean   float64
	Median float64
	StdDev float64
	Count  int
}

// Store is what the calculator needs from the storage collaborator.
type Store interface {
	ReadObservations(ctx context.Context, userID, metricKey string, from, to time.Time) ([]series.OutcomeObservation, error)
	UpsertBaseline(ctx context.Context, rec Record) error
	Baselines(ctx context.Context, userID string) ([]Record, error)
}

// Calculator maintains rolling per-user, per-metric baselines.
type Calculator struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

func NewCalculator(store Store, logger *zap.Logger) *Calculator {
	return &Calculator{store: store, logger: logger, now: time.Now}
}

// WithClock replaces the wall clock, for tests.
func (c *Calculator) WithClock(now func() time.Time) *Calculator {
	c.now = now
	return c
}

// Update recomputes the 30-day rolling mean for one metric and upserts
// it. With fewer than five usable samples nothing is written: the
// returned record carries the metric's fallback value and stored is
// false. Callers must treat that as common and recoverable, not as a
// failure.
func (c *Calculator) Update(ctx context.Context, userID, metricKey string) (rec Record, stored bool, err error) {
	now := c.now().UTC()
	from := now.AddDate(0, 0, -WindowDays)

	obs, err := c.store.ReadObservations(ctx, userID, metricKey, from, now)
	if err != nil {
		return Record{}, false, fmt.Errorf("reading %s for user %s: %w", metricKey, userID, err)
	}

	values := usable(obs)
	if len(values) < MinSamples {
		fallback, _ := FallbackValue(metricKey)
		return Record{
			UserID:      userID,
			MetricKey:   metricKey,
			WindowDays:  WindowDays,
			Value:       fallback,
			SampleCount: len(values),
		}, false, nil
	}

	rec = Record{
		UserID:           userID,
		MetricKey:        metricKey,
		WindowDays:       WindowDays,
		Value:            ComputeStats(values).Mean,
		SampleCount:      len(values),
		LastCalculatedAt: now,
	}
	if err := c.store.UpsertBaseline(ctx, rec); err != nil {
		return Record{}, false, fmt.Errorf("upserting baseline %s/%s: %w", userID, metricKey, err)
	}

	c.logger.Debug("baseline updated",
		zap.String("user_id", userID),
		zap.String("metric", metricKey),
		zap.Float64("value", rec.Value),
		zap.Int("samples", rec.SampleCount))
	return rec, true, nil
}

// Extended computes the mean/median/stddev variant over the same
// trailing window without persisting anything. ok is false below the
// minimum sample gate.
func (c *Calculator) Extended(ctx context.Context, userID, metricKey string) (Stats, bool, error) {
	now := c.now().UTC()
	from := now.AddDate(0, 0, -WindowDays)

	obs, err := c.store.ReadObservations(ctx, userID, metricKey, from, now)
	if err != nil {
		return Stats{}, false, fmt.Errorf("reading %s for user %s: %w", metricKey, userID, err)
	}

	values := usable(obs)
	if len(values) < MinSamples {
		return Stats{}, false, nil
	}
	return ComputeStats(values), true, nil
}

// usable drops NaN samples, which upstream uses for missing readings.
func usable(obs []series.OutcomeObservation) []float64 {
	values := make([]float64, 0, len(obs))
	for _, o := range obs {
		if math.IsNaN(o.Value) {
			continue
		}
		values = append(values, o.Value)
	}
	return values
}

// ComputeStats summarizes a sample with mean, median and population
// standard deviation.
func ComputeStats(values []float64) Stats {
	n := len(values)
	if n == 0 {
		return Stats{}
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	median := sorted[n/2]
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	return Stats{
		Mean:   mean,
		Median: median,
		StdDev: math.Sqrt(sq / float64(n)),
		Count:  n,
	}
}
