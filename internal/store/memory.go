// internal/store/memory.go
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vitalgraph/vitalgraph/internal/baseline"
	"github.com/vitalgraph/vitalgraph/internal/freshness"
	"github.com/vitalgraph/vitalgraph/internal/series"
)

// Memory is an in-memory Store for development and tests. Safe for
// concurrent use. FailUser makes every read for one user error, which
// exercises the orchestrator's per-user isolation.
type Memory struct {
	mu           sync.RWMutex
	users        []string
	exposures    map[string][]series.ExposureEvent
	observations map[string][]series.OutcomeObservation
	baselines    map[string]baseline.Record
	failUsers    map[string]bool
	pingErr      error
	usersErr     error
}

func NewMemory() *Memory {
	return &Memory{
		exposures:    map[string][]series.ExposureEvent{},
		observations: map[string][]series.OutcomeObservation{},
		baselines:    map[string]baseline.Record{},
		failUsers:    map[string]bool{},
	}
}

func memKey(userID, metricKey string) string { return userID + "/" + metricKey }

// AddUser registers an active user.
func (m *Memory) AddUser(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append(m.users, userID)
}

// AddExposure appends an exposure event to a user's series.
func (m *Memory) AddExposure(userID, metricKey string, e series.ExposureEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memKey(userID, metricKey)
	m.exposures[k] = append(m.exposures[k], e)
}

// AddObservation appends an outcome observation to a user's series.
func (m *Memory) AddObservation(userID, metricKey string, o series.OutcomeObservation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memKey(userID, metricKey)
	m.observations[k] = append(m.observations[k], o)
}

// FailUser makes every subsequent read for the user fail.
func (m *Memory) FailUser(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failUsers[userID] = true
}

// FailPing makes warm-up probes fail with the given error.
func (m *Memory) FailPing(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingErr = err
}

// FailActiveUsers makes the population query fail with the given error.
func (m *Memory) FailActiveUsers(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usersErr = err
}

func (m *Memory) ActiveUsers(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.usersErr != nil {
		return nil, m.usersErr
	}
	out := make([]string, len(m.users))
	copy(out, m.users)
	return out, nil
}

func (m *Memory) userErr(userID string) error {
	if m.failUsers[userID] {
		return fmt.Errorf("store: injected failure for user %s", userID)
	}
	return nil
}

func (m *Memory) ReadExposures(_ context.Context, userID, metricKey string, from, to time.Time) ([]series.ExposureEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.userErr(userID); err != nil {
		return nil, err
	}
	var out []series.ExposureEvent
	for _, e := range m.exposures[memKey(userID, metricKey)] {
		if !e.OccurredOn.Before(from) && !e.OccurredOn.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) ReadObservations(_ context.Context, userID, metricKey string, from, to time.Time) ([]series.OutcomeObservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.userErr(userID); err != nil {
		return nil, err
	}
	var out []series.OutcomeObservation
	for _, o := range m.observations[memKey(userID, metricKey)] {
		if !o.ObservedOn.Before(from) && !o.ObservedOn.After(to) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *Memory) LastMeasured(_ context.Context, userID string, signals []string) ([]freshness.Signal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.userErr(userID); err != nil {
		return nil, err
	}

	wanted := map[string]bool{}
	for _, s := range signals {
		wanted[s] = true
	}

	latest := map[string]time.Time{}
	for key, obs := range m.observations {
		var uid, metric string
		for i := 0; i < len(key); i++ {
			if key[i] == '/' {
				uid, metric = key[:i], key[i+1:]
				break
			}
		}
		if uid != userID {
			continue
		}
		if len(wanted) > 0 && !wanted[metric] {
			continue
		}
		for _, o := range obs {
			if o.ObservedOn.After(latest[metric]) {
				latest[metric] = o.ObservedOn
			}
		}
	}

	var out []freshness.Signal
	for metric, at := range latest {
		out = append(out, freshness.Signal{Name: metric, LastMeasuredAt: at})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) UpsertBaseline(_ context.Context, rec baseline.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baselines[memKey(rec.UserID, rec.MetricKey)] = rec
	return nil
}

func (m *Memory) Baselines(_ context.Context, userID string) ([]baseline.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []baseline.Record
	for _, rec := range m.baselines {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MetricKey < out[j].MetricKey })
	return out, nil
}

func (m *Memory) Ping(_ context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingErr
}
