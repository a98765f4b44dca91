// internal/insights/insights.go
package insights

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vitalgraph/vitalgraph/internal/anomaly"
	"github.com/vitalgraph/vitalgraph/internal/baseline"
	"github.com/vitalgraph/vitalgraph/internal/correlation"
	"github.com/vitalgraph/vitalgraph/internal/freshness"
)

// BaselineDelta gives the text layer the context of how far a metric's
// recent level sits from the user's rolling baseline.
type BaselineDelta struct {
	MetricKey    string  `json:"metric_key"`
	Baseline     float64 `json:"baseline"`
	Current      float64 `json:"current"`
	DeltaPercent float64 `json:"delta_percent"`
}

// Envelope is what the engine hands to the external text-generation
// service: structured findings plus the contextual summaries the text
// layer needs. The engine never formats prose.
type Envelope struct {
	ID           string                            `json:"id"`
	UserID       string                            `json:"user_id"`
	GeneratedAt  time.Time                         `json:"generated_at"`
	EvidenceTier string                            `json:"evidence_tier"`
	DoseResponse []correlation.DoseResponseFinding `json:"dose_response,omitempty"`
	Timing       []correlation.TimingFinding       `json:"timing,omitempty"`
	Anomalies    []anomaly.Anomaly                 `json:"anomalies,omitempty"`
	Deltas       []BaselineDelta                   `json:"baseline_deltas,omitempty"`
	Freshness    []freshness.Record                `json:"freshness,omitempty"`
}

// NewEnvelope starts an envelope for one user.
func NewEnvelope(userID string, generatedAt time.Time) *Envelope {
	return &Envelope{
		ID:           uuid.New().String(),
		UserID:       userID,
		GeneratedAt:  generatedAt,
		EvidenceTier: correlation.EvidenceTier,
	}
}

// Empty reports whether the envelope carries nothing worth publishing.
func (e *Envelope) Empty() bool {
	return len(e.DoseResponse) == 0 && len(e.Timing) == 0 && len(e.Anomalies) == 0
}

// AddDelta records how a current value compares to a stored baseline.
func (e *Envelope) AddDelta(rec baseline.Record, current float64) {
	delta := BaselineDelta{MetricKey: rec.MetricKey, Baseline: rec.Value, Current: current}
	if rec.Value != 0 {
		delta.DeltaPercent = (current - rec.Value) / rec.Value * 100
	}
	e.Deltas = append(e.Deltas, delta)
}

// Publisher delivers envelopes to the text-generation collaborator.
type Publisher interface {
	Publish(ctx context.Context, env *Envelope) error
}
