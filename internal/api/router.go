package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/topology-publisher/internal/audit"
	"github.com/nerrad567/topology-publisher/internal/publisher"
)

// Handler returns the router with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/audit", s.handleListAudit)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "not found")
	})
	return r
}

type healthResponse struct {
	Status  string `json:"status"`
	State   string `json:"state"`
	Topic   string `json:"topic"`
	Version string `json:"version"`
}

// handleHealth reports 200 only while the session is connected.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	state := s.session.State()
	resp := healthResponse{
		Status:  "ok",
		State:   state.String(),
		Topic:   s.session.TopicName(),
		Version: s.version,
	}
	status := http.StatusOK
	if state != publisher.StateConnected {
		resp.Status = ErrCodeUnavailable
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// handleListAudit returns recent publish attempts.
//
// Query parameters:
//   - topic: filter by topic
//   - status: ok or error
//   - limit: max results (default 50, max 200)
//   - offset: pagination offset
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "publish audit not enabled")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Topic:  q.Get("topic"),
		Status: q.Get("status"),
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = n
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil {
		filter.Offset = n
	}

	result, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list publish audit", "error", err)
		writeInternalError(w, "failed to list publish audit")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
