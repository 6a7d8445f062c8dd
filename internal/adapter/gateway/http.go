// Package gateway exposes the query pipeline over HTTP.
package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"krishi-ai/internal/domain"
	"krishi-ai/internal/infra/config"
	"krishi-ai/internal/infra/middleware"
	"krishi-ai/internal/usecase"
)

// Server is the HTTP gateway over the pipeline and registry.
type Server struct {
	pipeline *usecase.Pipeline
	registry *usecase.Registry
	logger   *slog.Logger
	http     *http.Server
}

// New builds the gateway with routing, CORS, security headers, and per-IP
// rate limiting. ctx bounds the rate limiter's cleanup goroutine.
func New(ctx context.Context, cfg config.ServerConfig, pipeline *usecase.Pipeline, registry *usecase.Registry, logger *slog.Logger) *Server {
	s := &Server{pipeline: pipeline, registry: registry, logger: logger}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.SecurityHeaders)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	rpm, burst := cfg.RequestsPerMin, cfg.BurstSize
	if rpm <= 0 {
		rpm = 100
	}
	if burst <= 0 {
		burst = 20
	}
	r.Use(middleware.RateLimit(ctx, rpm, burst))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/query", s.handleQuery)
		r.Get("/health", s.handleHealth)
		r.Get("/capabilities", s.handleCapabilities)
	})

	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// ListenAndServe runs the HTTP server until Shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http gateway listening", "addr", s.http.Addr)
	return s.http.ListenAndServe()
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

type queryRequest struct {
	UserID    string                   `json:"user_id"`
	SessionID string                   `json:"session_id"`
	Query     string                   `json:"query"`
	Context   *domain.ContextOverrides `json:"context,omitempty"`
}

type queryResponse struct {
	Agent            string         `json:"agent"`
	Response         string         `json:"response"`
	Confidence       float64        `json:"confidence"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	Citations        []string       `json:"citations,omitempty"`
	RequiresFollowup bool           `json:"requires_followup"`
	SessionID        string         `json:"session_id"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	resp := s.pipeline.Process(r.Context(), domain.Query{
		UserID:    req.UserID,
		SessionID: req.SessionID,
		Text:      req.Query,
		Overrides: req.Context,
	})

	writeJSON(w, http.StatusOK, queryResponse{
		Agent:            resp.AgentName,
		Response:         resp.Response,
		Confidence:       resp.Confidence,
		Metadata:         resp.Metadata,
		Citations:        resp.Citations,
		RequiresFollowup: resp.RequiresFollowup,
		SessionID:        req.SessionID,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.registry.HealthCheck(r.Context())
	status := http.StatusOK
	overall := "healthy"
	for _, v := range health {
		if v != "healthy" {
			overall = "degraded"
			status = http.StatusServiceUnavailable
			break
		}
	}
	writeJSON(w, status, map[string]any{
		"status":     overall,
		"responders": health,
	})
}

func (s *Server) handleCapabilities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"responders": s.registry.List(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
