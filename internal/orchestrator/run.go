// internal/orchestrator/run.go
package orchestrator

import "time"

// State of one named window's lifecycle.
type State string

const (
	StateIdle      State = "idle"
	StateScheduled State = "scheduled"
	StateRunning   State = "running"
)

// RunRecord tracks one window execution. Mutated only by the run's own
// sequential execution; appended to the bounded history on completion.
type RunRecord struct {
	WindowName        string    `json:"window_name"`
	StartedAt         time.Time `json:"started_at"`
	CompletedAt       time.Time `json:"completed_at"`
	UsersProcessed    int       `json:"users_processed"`
	AnomaliesDetected int       `json:"anomalies_detected"`
	FindingsGenerated int       `json:"findings_generated"`
	BaselineRefreshed bool      `json:"baseline_refreshed"`
	ErrorCount        int       `json:"error_count"`
}

// DailyStats aggregates runs across one UTC calendar day and resets
// when a run starts on a different day.
type DailyStats struct {
	Date              time.Time `json:"date"`
	RunsCompleted     int       `json:"runs_completed"`
	UsersProcessed    int       `json:"users_processed"`
	AnomaliesDetected int       `json:"anomalies_detected"`
	FindingsGenerated int       `json:"findings_generated"`
	Errors            int       `json:"errors"`
}

func utcDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
