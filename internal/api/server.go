// Package api exposes summon and memory operations over HTTP.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ajitpratap0/chops/internal/chaos"
	"github.com/ajitpratap0/chops/internal/generator"
	"github.com/ajitpratap0/chops/internal/memory"
	"github.com/ajitpratap0/chops/internal/metrics"
	"github.com/ajitpratap0/chops/internal/models"
)

// Server is an HTTP API server that exposes summon and memory operations.
type Server struct {
	summoner  *generator.Summoner
	store     *memory.Store
	logger    *slog.Logger
	authToken string // empty = no auth required
}

// NewServer creates a new Server with the given dependencies.
func NewServer(summoner *generator.Summoner, store *memory.Store, logger *slog.Logger, authToken string) *Server {
	return &Server{
		summoner:  summoner,
		store:     store,
		logger:    logger,
		authToken: authToken,
	}
}

// Handler returns an http.Handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check — no auth required.
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	mux.HandleFunc("POST /v1/summon", s.auth(s.handleSummon))
	mux.HandleFunc("GET /v1/recall", s.auth(s.handleRecall))
	mux.HandleFunc("GET /v1/recommend", s.auth(s.handleRecommend))
	mux.HandleFunc("POST /v1/feedback", s.auth(s.handleFeedback))
	mux.HandleFunc("GET /v1/stats", s.auth(s.handleStats))

	return mux
}

// --- middleware ---

// auth wraps a handler with Bearer token authentication when authToken is set.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.authToken == "" {
			next(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

// --- handlers ---

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// summonRequest is the body accepted by POST /v1/summon.
type summonRequest struct {
	Persona string `json:"persona"`
	Domain  string `json:"domain"`
	Level   int    `json:"level"`
}

func (s *Server) handleSummon(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	var req summonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	persona, err := models.ParsePersona(req.Persona)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Domain == "" {
		s.writeError(w, http.StatusBadRequest, "domain is required")
		return
	}

	result, err := s.summoner.Summon(r.Context(), persona, req.Domain, req.Level)
	if err != nil {
		if errors.Is(err, chaos.ErrInvalidChaosLevel) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("summon failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to generate idea")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

// recallResponse is returned by GET /v1/recall.
type recallResponse struct {
	Found bool         `json:"found"`
	Idea  *models.Idea `json:"idea,omitempty"`
}

func (s *Server) handleRecall(w http.ResponseWriter, r *http.Request) {
	tag := r.URL.Query().Get("tag")
	if tag == "" {
		s.writeError(w, http.StatusBadRequest, "tag is required")
		return
	}

	metrics.Inc(metrics.RecallTotal)
	idea, ok := s.store.Recall(tag)
	if !ok {
		s.writeJSON(w, http.StatusOK, recallResponse{Found: false})
		return
	}
	s.writeJSON(w, http.StatusOK, recallResponse{Found: true, Idea: &idea})
}

// recommendResponse is returned by GET /v1/recommend.
type recommendResponse struct {
	Domain   string               `json:"domain"`
	Rankings []models.PersonaRank `json:"rankings"`
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	domain := r.URL.Query().Get("domain")
	if domain == "" {
		s.writeError(w, http.StatusBadRequest, "domain is required")
		return
	}

	metrics.Inc(metrics.RecommendTotal)
	s.writeJSON(w, http.StatusOK, recommendResponse{
		Domain:   domain,
		Rankings: s.store.Recommend(domain),
	})
}

// feedbackRequest is the body accepted by POST /v1/feedback.
type feedbackRequest struct {
	Persona string  `json:"persona"`
	Rating  float64 `json:"rating"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	persona, err := models.ParsePersona(req.Persona)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Rating < 0 || req.Rating > 1 {
		s.writeError(w, http.StatusBadRequest, "rating must be between 0 and 1")
		return
	}

	s.store.RecordFeedback(persona, req.Rating)
	s.writeJSON(w, http.StatusOK, map[string]bool{"recorded": true})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.Stats())
}

// --- helpers ---

// writeJSON encodes v as JSON and writes it to w with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(v); encErr != nil {
		s.logger.Error("failed to encode response", "error", encErr)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// Shutdown gracefully shuts down an http.Server with the given timeout.
// This is a convenience helper used by the serve command.
func Shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
