// internal/store/store.go
package store

import (
	"context"
	"time"

	"github.com/vitalgraph/vitalgraph/internal/baseline"
	"github.com/vitalgraph/vitalgraph/internal/freshness"
	"github.com/vitalgraph/vitalgraph/internal/series"
)

// Store is the storage collaborator the engine reads time series from
// and writes baselines to. Implementations must tolerate concurrent
// reads and writes across different users.
type Store interface {
	// ActiveUsers returns the user population for a processing run.
	ActiveUsers(ctx context.Context) ([]string, error)

	// ReadExposures returns a user's independent-variable events for
	// one metric over an inclusive date range.
	ReadExposures(ctx context.Context, userID, metricKey string, from, to time.Time) ([]series.ExposureEvent, error)

	// ReadObservations returns a user's dependent-variable measurements
	// for one metric over an inclusive date range.
	ReadObservations(ctx context.Context, userID, metricKey string, from, to time.Time) ([]series.OutcomeObservation, error)

	// LastMeasured returns the most recent measurement timestamp per
	// signal, restricted to the named signals when any are given.
	LastMeasured(ctx context.Context, userID string, signals []string) ([]freshness.Signal, error)

	// UpsertBaseline writes a baseline record keyed by (user, metric).
	UpsertBaseline(ctx context.Context, rec baseline.Record) error

	// Baselines returns whatever baseline records exist for a user,
	// with no fallback substitution.
	Baselines(ctx context.Context, userID string) ([]baseline.Record, error)

	// Ping probes the collaborator; used by the orchestrator warm-up.
	Ping(ctx context.Context) error
}
