// internal/api/server_test.go
package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitalgraph/vitalgraph/internal/anomaly"
	"github.com/vitalgraph/vitalgraph/internal/baseline"
	"github.com/vitalgraph/vitalgraph/internal/config"
	"github.com/vitalgraph/vitalgraph/internal/orchestrator"
	"github.com/vitalgraph/vitalgraph/internal/series"
	"github.com/vitalgraph/vitalgraph/internal/store"
)

func newTestServer(t *testing.T, mem *store.Memory) *Server {
	t.Helper()
	cfg := config.Default()
	calc := baseline.NewCalculator(mem, zap.NewNop())
	orch := orchestrator.New(mem, calc, anomaly.NewDetector(), nil, cfg.Engine, zap.NewNop())
	return NewServer(cfg, zap.NewNop(), orch, mem)
}

func TestServer_Health(t *testing.T) {
	t.Run("healthy store", func(t *testing.T) {
		srv := newTestServer(t, store.NewMemory())

		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("degraded when store unreachable", func(t *testing.T) {
		mem := store.NewMemory()
		mem.FailPing(assert.AnError)
		srv := newTestServer(t, mem)

		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestServer_TriggerWindow(t *testing.T) {
	mem := store.NewMemory()
	mem.AddUser("u1")
	srv := newTestServer(t, mem)

	t.Run("known window runs and reports", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, httptest.NewRequest("POST", "/v1/windows/utc-0600/trigger", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var run orchestrator.RunRecord
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
		assert.Equal(t, "utc-0600", run.WindowName)
		assert.Equal(t, 1, run.UsersProcessed)
	})

	t.Run("unknown window is 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, httptest.NewRequest("POST", "/v1/windows/nope/trigger", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("run shows up in history", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/v1/runs", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var runs []orchestrator.RunRecord
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
		assert.NotEmpty(t, runs)
	})
}

func TestServer_Freshness(t *testing.T) {
	mem := store.NewMemory()
	now := time.Now().UTC()
	mem.AddObservation("u1", "vitamin_d", series.OutcomeObservation{ObservedOn: now.AddDate(0, 0, -400), Value: 28})
	mem.AddObservation("u1", "hba1c", series.OutcomeObservation{ObservedOn: now.AddDate(0, 0, -10), Value: 5.2})
	srv := newTestServer(t, mem)

	t.Run("all signals sorted stalest first", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/v1/users/u1/freshness", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var records []map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
		require.Len(t, records, 2)
		assert.Equal(t, "vitamin_d", records[0]["signal_name"])
	})

	t.Run("attention filter drops green", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/v1/users/u1/freshness?filter=attention", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var records []map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
		require.Len(t, records, 1)
		assert.Equal(t, "vitamin_d", records[0]["signal_name"])
	})
}

func TestServer_Metrics(t *testing.T) {
	srv := newTestServer(t, store.NewMemory())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
