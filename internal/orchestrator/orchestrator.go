// internal/orchestrator/orchestrator.go
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vitalgraph/vitalgraph/internal/anomaly"
	"github.com/vitalgraph/vitalgraph/internal/baseline"
	"github.com/vitalgraph/vitalgraph/internal/config"
	"github.com/vitalgraph/vitalgraph/internal/correlation"
	"github.com/vitalgraph/vitalgraph/internal/freshness"
	"github.com/vitalgraph/vitalgraph/internal/insights"
	"github.com/vitalgraph/vitalgraph/internal/series"
	"github.com/vitalgraph/vitalgraph/internal/store"
)

// Analysis horizons: the designated daily window sweeps six months of
// history, the other windows a rolling quarter.
const (
	sweepHorizonDays   = 182
	defaultHorizonDays = 90
)

// Orchestrator runs baseline refresh and correlation analysis for the
// active user population on the fixed daily window schedule. Users are
// processed strictly sequentially within a run; a single user's failure
// is isolated, counted and logged, never propagated.
type Orchestrator struct {
	store     store.Store
	calc      *baseline.Calculator
	detector  *anomaly.Detector
	publisher insights.Publisher
	logger    *zap.Logger
	clock     Clock
	metrics   *Metrics

	windows     []WindowSpec
	pairs       []config.MetricPair
	baselineKey []string
	signals     []string
	historyCap  int

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
	states  map[string]State
	history []RunRecord
	daily   DailyStats
}

// New wires an orchestrator. publisher may be nil; findings are then
// counted and logged but not delivered.
func New(st store.Store, calc *baseline.Calculator, detector *anomaly.Detector,
	publisher insights.Publisher, cfg config.EngineConfig, logger *zap.Logger) *Orchestrator {

	windows := DefaultWindows(cfg.AnchorHours)
	states := make(map[string]State, len(windows))
	for _, w := range windows {
		states[w.Name] = StateIdle
	}

	return &Orchestrator{
		store:       st,
		calc:        calc,
		detector:    detector,
		publisher:   publisher,
		logger:      logger,
		clock:       RealClock,
		metrics:     NewMetrics(),
		windows:     windows,
		pairs:       cfg.MetricPairs,
		baselineKey: cfg.BaselineMetrics,
		signals:     cfg.FreshnessSignals,
		historyCap:  cfg.RunHistory,
		states:      states,
	}
}

// WithClock replaces the wall clock, for tests.
func (o *Orchestrator) WithClock(clock Clock) *Orchestrator {
	o.clock = clock
	return o
}

// Metrics exposes the orchestrator's Prometheus metrics.
func (o *Orchestrator) Metrics() *Metrics { return o.metrics }

// Windows lists the configured window specs.
func (o *Orchestrator) Windows() []WindowSpec { return o.windows }

// Start launches one scheduling loop per window. Re-entrant calls are
// no-ops.
func (o *Orchestrator) Start() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return
	}
	o.running = true
	o.stopCh = make(chan struct{})

	for _, spec := range o.windows {
		o.wg.Add(1)
		go o.loop(spec)
	}
	o.logger.Info("orchestrator started", zap.Int("windows", len(o.windows)))
}

// Stop halts scheduling and waits for in-flight runs. Re-entrant calls
// are no-ops.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	o.running = false
	close(o.stopCh)
	o.mu.Unlock()

	o.wg.Wait()
	o.logger.Info("orchestrator stopped")
}

func (o *Orchestrator) loop(spec WindowSpec) {
	defer o.wg.Done()
	for {
		next := NextOccurrence(o.clock.Now(), spec.AnchorHour)
		o.setState(spec.Name, StateScheduled)

		timer := time.NewTimer(next.Sub(o.clock.Now()))
		select {
		case <-o.stopCh:
			timer.Stop()
			return
		case <-timer.C:
		}

		o.runWindow(context.Background(), spec)
	}
}

// TriggerWindow runs one named window immediately, without touching
// the automatic schedule.
func (o *Orchestrator) TriggerWindow(ctx context.Context, name string) (RunRecord, error) {
	for _, spec := range o.windows {
		if spec.Name == name {
			return o.runWindow(ctx, spec), nil
		}
	}
	return RunRecord{}, fmt.Errorf("orchestrator: unknown window %q", name)
}

// History returns the bounded run history, most recent first.
func (o *Orchestrator) History() []RunRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]RunRecord, len(o.history))
	copy(out, o.history)
	return out
}

// Daily returns the current UTC-day aggregate counters.
func (o *Orchestrator) Daily() DailyStats {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.daily
}

// States returns each window's current lifecycle state.
func (o *Orchestrator) States() map[string]State {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[string]State, len(o.states))
	for k, v := range o.states {
		out[k] = v
	}
	return out
}

func (o *Orchestrator) setState(window string, s State) {
	o.mu.Lock()
	o.states[window] = s
	o.mu.Unlock()
}

func (o *Orchestrator) runWindow(ctx context.Context, spec WindowSpec) RunRecord {
	o.setState(spec.Name, StateRunning)
	rec := RunRecord{WindowName: spec.Name, StartedAt: o.clock.Now().UTC()}

	o.logger.Info("processing window started",
		zap.String("window", spec.Name),
		zap.Bool("baseline_refresh", spec.BaselineRefresh))

	// Warm-up is best-effort; a failed probe never blocks the run.
	if err := o.store.Ping(ctx); err != nil {
		o.logger.Warn("warm-up probe failed", zap.String("window", spec.Name), zap.Error(err))
	}

	users, err := o.store.ActiveUsers(ctx)
	if err != nil {
		// Load-bearing step: abandon this run, leave the schedule alone.
		o.logger.Error("active user query failed, abandoning run",
			zap.String("window", spec.Name), zap.Error(err))
		rec.ErrorCount++
		return o.finishRun(rec)
	}

	if spec.BaselineRefresh {
		rec.BaselineRefreshed = true
		for _, uid := range users {
			if err := o.refreshUserBaselines(ctx, uid); err != nil {
				rec.ErrorCount++
				o.metrics.UserErrors.Inc()
				o.logger.Warn("baseline refresh failed",
					zap.String("window", spec.Name), zap.String("user_id", uid), zap.Error(err))
			}
		}
	}

	horizon := defaultHorizonDays
	if spec.BaselineRefresh {
		horizon = sweepHorizonDays
	}

	for _, uid := range users {
		res, err := o.analyzeUser(ctx, uid, horizon)
		if err != nil {
			rec.ErrorCount++
			o.metrics.UserErrors.Inc()
			o.logger.Warn("user analysis failed",
				zap.String("window", spec.Name), zap.String("user_id", uid), zap.Error(err))
			continue
		}
		rec.UsersProcessed++
		rec.AnomaliesDetected += res.anomalies
		rec.FindingsGenerated += res.findings
	}

	return o.finishRun(rec)
}

// finishRun stamps completion, folds the record into the daily stats
// and the bounded history, and returns the window to idle.
func (o *Orchestrator) finishRun(rec RunRecord) RunRecord {
	rec.CompletedAt = o.clock.Now().UTC()

	o.metrics.RunsTotal.WithLabelValues(rec.WindowName).Inc()
	o.metrics.UsersProcessed.Add(float64(rec.UsersProcessed))
	o.metrics.Anomalies.Add(float64(rec.AnomaliesDetected))
	o.metrics.Findings.Add(float64(rec.FindingsGenerated))
	o.metrics.RunDuration.Observe(rec.CompletedAt.Sub(rec.StartedAt).Seconds())

	o.mu.Lock()
	if !utcDay(rec.StartedAt).Equal(o.daily.Date) {
		o.daily = DailyStats{Date: utcDay(rec.StartedAt)}
	}
	o.daily.RunsCompleted++
	o.daily.UsersProcessed += rec.UsersProcessed
	o.daily.AnomaliesDetected += rec.AnomaliesDetected
	o.daily.FindingsGenerated += rec.FindingsGenerated
	o.daily.Errors += rec.ErrorCount

	o.history = append([]RunRecord{rec}, o.history...)
	if len(o.history) > o.historyCap {
		o.history = o.history[:o.historyCap]
	}
	o.states[rec.WindowName] = StateIdle
	o.mu.Unlock()

	o.logger.Info("processing window completed",
		zap.String("window", rec.WindowName),
		zap.Int("users_processed", rec.UsersProcessed),
		zap.Int("anomalies", rec.AnomaliesDetected),
		zap.Int("findings", rec.FindingsGenerated),
		zap.Int("errors", rec.ErrorCount))
	return rec
}

func (o *Orchestrator) refreshUserBaselines(ctx context.Context, userID string) error {
	for _, metric := range o.baselineKey {
		if _, _, err := o.calc.Update(ctx, userID, metric); err != nil {
			return err
		}
	}
	return nil
}

type userResult struct {
	findings  int
	anomalies int
}

// analyzeUser runs deviation detection, the correlation sweep and the
// freshness report for one user, and hands the envelope to the text
// layer. Any error aborts this user only.
func (o *Orchestrator) analyzeUser(ctx context.Context, userID string, horizonDays int) (userResult, error) {
	now := o.clock.Now().UTC()
	from := now.AddDate(0, 0, -horizonDays)
	env := insights.NewEnvelope(userID, now)

	baselines, err := o.store.Baselines(ctx, userID)
	if err != nil {
		return userResult{}, err
	}
	baselineByMetric := make(map[string]baseline.Record, len(baselines))
	for _, b := range baselines {
		baselineByMetric[b.MetricKey] = b
	}

	// Deviation detection against each tracked metric's baseline.
	for _, metric := range o.baselineKey {
		stats, ok, err := o.calc.Extended(ctx, userID, metric)
		if err != nil {
			return userResult{}, err
		}
		if !ok {
			continue
		}

		recent, err := o.store.ReadObservations(ctx, userID, metric, now.AddDate(0, 0, -1), now)
		if err != nil {
			return userResult{}, err
		}
		env.Anomalies = append(env.Anomalies, o.detector.Detect(metric, recent, stats)...)

		if rec, exists := baselineByMetric[metric]; exists && len(recent) > 0 {
			env.AddDelta(rec, recent[len(recent)-1].Value)
		}
	}

	// Correlation sweep across every configured pair and canonical
	// temporal window.
	for _, pair := range o.pairs {
		exposures, err := o.store.ReadExposures(ctx, userID, pair.Exposure, from, now)
		if err != nil {
			return userResult{}, err
		}
		outcomes, err := o.store.ReadObservations(ctx, userID, pair.Outcome, from, now)
		if err != nil {
			return userResult{}, err
		}

		for _, window := range series.CanonicalWindows {
			finding, err := correlation.AnalyzeDoseResponse(exposures, outcomes, pair.Exposure, pair.Outcome, window)
			if err != nil {
				// Includes the segmenter's hard precondition violation;
				// it counts against this user, not the run.
				return userResult{}, err
			}
			if finding != nil {
				env.DoseResponse = append(env.DoseResponse, *finding)
			}

			if timing := correlation.AnalyzeTiming(exposures, outcomes, pair.Exposure, pair.Outcome, window); timing != nil {
				env.Timing = append(env.Timing, *timing)
			}
		}
	}

	// Freshness report rides along for the text layer's context.
	signals, err := o.store.LastMeasured(ctx, userID, o.signals)
	if err != nil {
		return userResult{}, err
	}
	env.Freshness = freshness.AssessAll(signals, now)

	if o.publisher != nil {
		// Delivery is best-effort; findings were already generated.
		if err := o.publisher.Publish(ctx, env); err != nil {
			o.logger.Warn("insight delivery failed",
				zap.String("user_id", userID), zap.Error(err))
		}
	}

	return userResult{
		findings:  len(env.DoseResponse) + len(env.Timing),
		anomalies: len(env.Anomalies),
	}, nil
}
