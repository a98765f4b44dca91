// internal/anomaly/detector.go
package anomaly

import (
	"math"
	"time"

	"github.com/vitalgraph/vitalgraph/internal/baseline"
	"github.com/vitalgraph/vitalgraph/internal/series"
)

// Default detection policy: a reading is anomalous when it sits more
// than three baseline standard deviations from the baseline mean.
const (
	DefaultThreshold  = 3.0
	DefaultMinSamples = baseline.MinSamples
)

// Anomaly is one observation that deviates from the user's baseline.
type Anomaly struct {
	MetricKey    string    `json:"metric_key"`
	ObservedOn   time.Time `json:"observed_on"`
	Value        float64   `json:"value"`
	BaselineMean float64   `json:"baseline_mean"`
	ZScore       float64   `json:"z_score"`
}

// Detector flags observations that deviate from baseline statistics.
type Detector struct {
	Threshold  float64
	MinSamples int
}

func NewDetector() *Detector {
	return &Detector{Threshold: DefaultThreshold, MinSamples: DefaultMinSamples}
}

// Detect scores each observation against the baseline stats. A baseline
// below the sample gate, or one with zero spread, flags nothing.
func (d *Detector) Detect(metricKey string, obs []series.OutcomeObservation, stats baseline.Stats) []Anomaly {
	if stats.Count < d.MinSamples || stats.StdDev == 0 {
		return nil
	}

	var out []Anomaly
	for _, o := range obs {
		if math.IsNaN(o.Value) {
			continue
		}
		z := (o.Value - stats.Mean) / stats.StdDev
		if math.Abs(z) <= d.Threshold {
			continue
		}
		out = append(out, Anomaly{
			MetricKey:    metricKey,
			ObservedOn:   o.ObservedOn,
			Value:        o.Value,
			BaselineMean: stats.Mean,
			ZScore:       z,
		})
	}
	return out
}
