// Package server provides the thin HTTP surface over the aggregator.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/openthreatiq/threatiq/internal/aggregator"
	"github.com/openthreatiq/threatiq/internal/model"
)

// refreshTimeout bounds a client-triggered refresh cycle.
const refreshTimeout = 5 * time.Minute

// Server is the HTTP server.
type Server struct {
	agg    *aggregator.Aggregator
	router chi.Router
}

// New creates a server over the aggregator.
func New(agg *aggregator.Aggregator) *Server {
	s := &Server{agg: agg}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/entries", s.handleListEntries)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/mark-read", s.handleMarkRead)
		r.Get("/settings", s.handleGetSettings)
		r.Post("/settings", s.handleSaveSettings)
		r.Get("/sources", s.handleListSources)
		r.Post("/sources", s.handleAddSource)
	})

	s.router = r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start(addr string) error {
	log.Printf("server starting on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// --- Handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.agg.ListAll()
	if err != nil {
		http.Error(w, "Failed to list entries", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []model.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), refreshTimeout)
	defer cancel()

	force := r.URL.Query().Get("force") == "1"
	entries, err := s.agg.Refresh(ctx, force)
	if err != nil {
		http.Error(w, fmt.Sprintf("Refresh error: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"entries": len(entries),
	})
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := s.agg.MarkRead(req.ID); err != nil {
		http.Error(w, "Failed to mark read", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	interval, err := s.agg.Interval()
	if err != nil {
		http.Error(w, "Failed to read settings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"refresh_interval_minutes": interval,
	})
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshIntervalMinutes int `json:"refresh_interval_minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := s.agg.SetInterval(req.RefreshIntervalMinutes); err != nil {
		http.Error(w, fmt.Sprintf("Invalid interval: %v", err), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":                   "ok",
		"refresh_interval_minutes": req.RefreshIntervalMinutes,
	})
}

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.agg.Sources())
}

func (s *Server) handleAddSource(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL      string `json:"url"`
		Source   string `json:"source"`
		Category string `json:"category"`
		Format   string `json:"format"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Format == "" {
		req.Format = string(model.FormatRSS)
	}
	src := model.Source{
		URL:      req.URL,
		Source:   req.Source,
		Category: req.Category,
		Format:   model.Format(req.Format),
	}

	ctx, cancel := context.WithTimeout(r.Context(), refreshTimeout)
	defer cancel()
	if err := s.agg.AddSource(ctx, src); err != nil {
		http.Error(w, fmt.Sprintf("Failed to add source: %v", err), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
