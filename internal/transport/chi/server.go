// Package chi exposes the discovery engine over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/spotive-cloud/discovery/internal/domain"
	"github.com/spotive-cloud/discovery/internal/domain/category"
	domdisc "github.com/spotive-cloud/discovery/internal/domain/discover"
	"github.com/spotive-cloud/discovery/internal/domain/guest"
	discoveruc "github.com/spotive-cloud/discovery/internal/usecase/discover"
	healthuc "github.com/spotive-cloud/discovery/internal/usecase/health"
	preferenceuc "github.com/spotive-cloud/discovery/internal/usecase/preference"
)

// sentinelMapping ties a domain sentinel to its HTTP representation.
type sentinelMapping struct {
	sentinel error
	status   int
	code     errorCode
}

// Backlog serves stored result envelopes for a guest.
type Backlog interface {
	Recent(ctx context.Context, identity string, limit int) ([]domdisc.Envelope, error)
}

// Server holds the HTTP handlers for the discovery API.
type Server struct {
	discovery   *discoveruc.Service
	preferences *preferenceuc.Service
	backlog     Backlog
	health      *healthuc.Service
	logger      *zap.Logger
	mappings    []sentinelMapping
}

// NewServer creates an HTTP API server.
func NewServer(
	discovery *discoveruc.Service,
	preferences *preferenceuc.Service,
	backlog Backlog,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		discovery:   discovery,
		preferences: preferences,
		backlog:     backlog,
		health:      health,
		logger:      logger,
	}
	s.mappings = []sentinelMapping{
		{domain.ErrValidation, http.StatusBadRequest, codeValidationFailed},
		{domain.ErrVenueNotFound, http.StatusBadRequest, codeVenueNotFound},
		{domain.ErrNoCategoryMatch, http.StatusUnprocessableEntity, codeNoCategoryMatch},
		{domain.ErrEmptyResultSet, http.StatusNotFound, codeEmptyResultSet},
		{domain.ErrGuestNotFound, http.StatusNotFound, codeGuestNotFound},
		{domain.ErrClassifierUnavailable, http.StatusBadGateway, codeClassifierUnavailable},
	}
	return s
}

// Mount registers all API routes on the router.
func (s *Server) Mount(r chi.Router) {
	r.Post("/api/discover", s.Discover)
	r.Get("/api/guests/{identity}/preferences", s.GetPreferences)
	r.Put("/api/guests/{identity}/preferences", s.UpdatePreferences)
	r.Get("/api/guests/{identity}/results", s.RecentResults)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Discover handles POST /api/discover.
func (s *Server) Discover(w http.ResponseWriter, r *http.Request) {
	var req discoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	resp, err := s.discovery.Discover(r.Context(), discoveruc.Request{
		Identity: req.Identity,
		Interest: req.Interest,
		VenueID:  req.VenueID,
	})
	if err != nil {
		s.handleDiscoverError(w, err, req.Interest)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetPreferences handles GET /api/guests/{identity}/preferences.
func (s *Server) GetPreferences(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")

	record, err := s.preferences.Profile(r.Context(), identity)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// UpdatePreferences handles PUT /api/guests/{identity}/preferences.
func (s *Server) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")

	var patch guest.Overrides
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	updated, err := s.preferences.UpdateOverrides(r.Context(), identity, &patch)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// RecentResults handles GET /api/guests/{identity}/results. Displays
// use it to catch up on envelopes published while they were offline.
func (s *Server) RecentResults(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")
	if err := guest.ValidateIdentity(identity); err != nil {
		s.handleDomainError(w, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	envelopes, err := s.backlog.Recent(r.Context(), identity, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, backlogResponse{Identity: identity, Envelopes: envelopes})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client
// without exposing internals.
func (s *Server) safeDomainMessage(err error) string {
	for _, m := range s.mappings {
		if errors.Is(err, m.sentinel) {
			return m.sentinel.Error()
		}
	}
	return "internal error"
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	for _, m := range s.mappings {
		if errors.Is(err, m.sentinel) {
			writeError(w, m.status, m.code, s.safeDomainMessage(err))
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

// handleDiscoverError is handleDomainError with the interest text and
// any resolved categories echoed back so displays can show what failed
// to match.
func (s *Server) handleDiscoverError(w http.ResponseWriter, err error, interest string) {
	var categories []category.Tag
	var serr *domdisc.SearchError
	if errors.As(err, &serr) {
		categories = serr.Categories
	}
	s.logger.Warn("discover error", zap.String("interest", interest), zap.Error(err))
	for _, m := range s.mappings {
		if errors.Is(err, m.sentinel) {
			writeJSON(w, m.status, errorResponse{
				Code:       m.code,
				Message:    s.safeDomainMessage(err),
				Interest:   interest,
				Categories: categories,
			})
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
