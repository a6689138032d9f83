// Boardsync - Game Leaderboard Synchronization Service
// Copyright 2026 Skelwatch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skelwatch/boardsync

// Package api exposes the operational HTTP surface: liveness, readiness,
// Prometheus metrics, last-cycle status and a manual sync trigger.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skelwatch/boardsync/internal/config"
	"github.com/skelwatch/boardsync/internal/logging"
	syncengine "github.com/skelwatch/boardsync/internal/sync"
)

// Pinger is the readiness dependency, satisfied by store.DB.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Syncer exposes cycle status and manual triggering, satisfied by
// sync.Service plus sync.Controller.
type Syncer interface {
	TriggerSync(ctx context.Context) []syncengine.CycleOutcome
}

// StatusSource reports the most recent outcome per family.
type StatusSource interface {
	LastOutcomes() map[syncengine.Family]syncengine.CycleOutcome
}

// Server holds the ops HTTP handler dependencies.
type Server struct {
	db     Pinger
	syncer Syncer
	status StatusSource
}

// NewServer builds the ops API facade.
func NewServer(db Pinger, syncer Syncer, status StatusSource) *Server {
	return &Server{db: db, syncer: syncer, status: status}
}

// Router assembles the chi routing tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/sync", s.handleTriggerSync)
	})

	return r
}

// HTTPServer builds the http.Server the supervisor runs.
func (s *Server) HTTPServer(cfg *config.ServerConfig) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.Router(),
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
		IdleTimeout:  2 * cfg.Timeout,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Debug().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadyz reports ready only when the store answers a ping.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleStatus returns the last cycle outcome per leaderboard family.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.status.LastOutcomes())
}

// handleTriggerSync runs one cycle synchronously and returns its outcomes.
// The sync service serializes cycles, so a trigger during a periodic cycle
// simply waits its turn.
func (s *Server) handleTriggerSync(w http.ResponseWriter, r *http.Request) {
	outcomes := s.syncer.TriggerSync(r.Context())
	if outcomes == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "canceled",
		})
		return
	}
	writeJSON(w, http.StatusOK, outcomes)
}
