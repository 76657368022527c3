// Package api serves the screening REST API.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/sanctions-cli/internal/config"
	"github.com/sells-group/sanctions-cli/internal/screen"
)

// entriesTable is reported by the health endpoint so callers can tell which
// table a deployment screens against.
const entriesTable = "sanctions.sdn_entries"

// Server exposes name, document, and entry lookups over HTTP. Build the
// handler with Router and run it from an http.Server.
type Server struct {
	svc         *screen.Service
	corsOrigins []string
	defaults    config.ScreeningConfig
}

// New builds a Server around the screening service.
func New(svc *screen.Service, cfg *config.Config) *Server {
	return &Server{
		svc:         svc,
		corsOrigins: cfg.Server.CORSOrigins,
		defaults:    cfg.Screening,
	}
}

// Router assembles the route table and middleware chain.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/screen", s.handleScreen)
	r.Post("/screen/document", s.handleScreenDocument)
	r.Get("/entry/{id}", s.handleGetEntry)

	return r
}

// HealthResponse is the health endpoint payload.
type HealthResponse struct {
	Status string `json:"status"`
	Table  string `json:"table"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Table: entriesTable})
}

func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "name query parameter is required")
		return
	}

	threshold, err := intQuery(r, "threshold", s.defaults.DefaultThreshold)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := intQuery(r, "limit", s.defaults.DefaultLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := s.svc.ScreenName(r.Context(), name, threshold, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "screening failed")
		zap.L().Error("screen request failed", zap.String("name", name), zap.Error(err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// DocumentRequest is the document screening request body. Threshold and
// LimitPerEntity fall back to the configured defaults when omitted.
type DocumentRequest struct {
	Text           string `json:"text"`
	Threshold      *int   `json:"threshold,omitempty"`
	LimitPerEntity *int   `json:"limit_per_entity,omitempty"`
}

func (s *Server) handleScreenDocument(w http.ResponseWriter, r *http.Request) {
	var req DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	threshold := s.defaults.DefaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	limit := screen.DefaultLimitPerEntity
	if req.LimitPerEntity != nil {
		limit = *req.LimitPerEntity
	}

	resp, err := s.svc.ScreenDocument(r.Context(), req.Text, threshold, limit)
	switch {
	case errors.Is(err, screen.ErrEmptyDocument):
		writeError(w, http.StatusBadRequest, "text is required")
		return
	case errors.Is(err, screen.ErrNoExtractor):
		writeError(w, http.StatusServiceUnavailable, "document screening is not configured")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "document screening failed")
		zap.L().Error("document screen request failed", zap.Error(err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "entry id must be an integer")
		return
	}

	party, err := s.svc.GetEntry(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "entry lookup failed")
		zap.L().Error("entry lookup failed", zap.Int("entry_id", id), zap.Error(err))
		return
	}
	if party == nil {
		writeError(w, http.StatusNotFound, "Entry not found")
		return
	}
	writeJSON(w, http.StatusOK, party)
}

// requestLogger logs one line per request after it completes.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func intQuery(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(key + " must be an integer")
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
