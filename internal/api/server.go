// internal/api/server.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vitalgraph/vitalgraph/internal/config"
	"github.com/vitalgraph/vitalgraph/internal/freshness"
	"github.com/vitalgraph/vitalgraph/internal/orchestrator"
	"github.com/vitalgraph/vitalgraph/internal/store"
)

// Server is the engine's operational HTTP surface: health, metrics,
// run history and manual triggers. It is not a user-facing API and
// carries no auth; that lives outside this engine.
type Server struct {
	config       *config.Config
	logger       *zap.Logger
	router       *mux.Router
	httpServer   *http.Server
	orchestrator *orchestrator.Orchestrator
	store        store.Store
	startTime    time.Time
}

func NewServer(cfg *config.Config, logger *zap.Logger, orch *orchestrator.Orchestrator, st store.Store) *Server {
	s := &Server{
		config:       cfg,
		logger:       logger,
		router:       mux.NewRouter(),
		orchestrator: orch,
		store:        st,
		startTime:    time.Now(),
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", promhttp.HandlerFor(
		s.orchestrator.Metrics().Registry(), promhttp.HandlerOpts{})).Methods("GET")

	v1 := s.router.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/runs", s.handleRuns).Methods("GET")
	v1.HandleFunc("/runs/daily", s.handleDaily).Methods("GET")
	v1.HandleFunc("/windows", s.handleWindows).Methods("GET")
	v1.HandleFunc("/windows/{name}/trigger", s.handleTrigger).Methods("POST")
	v1.HandleFunc("/users/{id}/freshness", s.handleFreshness).Methods("GET")
	v1.HandleFunc("/users/{id}/baselines", s.handleBaselines).Methods("GET")
}

// Start begins serving; blocks until the listener stops.
func (s *Server) Start() error {
	s.logger.Info("http server listening", zap.Int("port", s.config.Server.Port))
	return s.httpServer.ListenAndServe()
}

// Shutdown drains connections gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler { return s.router }

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK
	if err := s.store.Ping(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
		s.logger.Warn("health probe: store unreachable", zap.Error(err))
	}

	s.writeJSON(w, code, map[string]interface{}{
		"status":         status,
		"uptime_seconds": int(time.Since(s.startTime).Seconds()),
		"windows":        s.orchestrator.States(),
	})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.orchestrator.History())
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.orchestrator.Daily())
}

func (s *Server) handleWindows(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.orchestrator.Windows())
}

func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	rec, err := s.orchestrator.TriggerWindow(r.Context(), name)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleFreshness(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	signals, err := s.store.LastMeasured(r.Context(), userID, s.config.Engine.FreshnessSignals)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "reading measurements")
		s.logger.Error("freshness lookup failed", zap.String("user_id", userID), zap.Error(err))
		return
	}

	records := freshness.AssessAll(signals, time.Now().UTC())
	switch r.URL.Query().Get("filter") {
	case "attention":
		records = freshness.NeedsAttention(records)
	case "overdue":
		records = freshness.OverdueOnly(records)
	}

	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleBaselines(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	records, err := s.store.Baselines(r.Context(), userID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "reading baselines")
		s.logger.Error("baseline lookup failed", zap.String("user_id", userID), zap.Error(err))
		return
	}
	s.writeJSON(w, http.StatusOK, records)
}
