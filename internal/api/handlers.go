package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/harbour/internal/audit"
	"github.com/nerrad567/harbour/internal/boat"
	"github.com/nerrad567/harbour/internal/logbook"
	"github.com/nerrad567/harbour/internal/metrics"
)

// RowResponse is returned by POST /row on success.
type RowResponse struct {
	Status string `json:"status"`
}

// TowerResponse is returned by GET /tower.
type TowerResponse struct {
	ID      string `json:"id"`
	BuiltAt string `json:"built_at"`
}

// LogbookResponse is returned by GET /logbook/{boat}.
type LogbookResponse struct {
	Boat    string          `json:"boat"`
	Count   int             `json:"count"`
	Entries []logbook.Entry `json:"entries"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"version":     s.version,
		"rowing_boat": s.captain.HasRowingBoat(),
	})
}

// handleRow gives the captain a single row order.
func (s *Server) handleRow(w http.ResponseWriter, r *http.Request) {
	err := s.row()

	if s.metrics != nil {
		s.metrics.ObserveRow(err)
	}
	s.auditRow(r, err)

	if err != nil {
		if !errors.Is(err, boat.ErrNoRowingBoat) {
			s.logger.Error("row failed", "error", err, "request_id", requestIDFrom(r.Context()))
		}
		writeRowError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RowResponse{Status: "rowed"})
}

// auditRow records the order. A failed audit write is logged, not returned.
func (s *Server) auditRow(r *http.Request, rowErr error) {
	if s.audit == nil {
		return
	}

	order := &audit.Order{
		Source:    audit.SourceAPI,
		Boat:      s.boatName,
		Result:    metrics.RowResult(rowErr),
		RequestID: requestIDFrom(r.Context()),
	}
	if rowErr != nil {
		order.Error = rowErr.Error()
	}

	if err := s.audit.Create(r.Context(), order); err != nil {
		s.logger.Warn("recording row order failed", "error", err, "request_id", order.RequestID)
	}
}

func (s *Server) row() error {
	s.rowMu.Lock()
	defer s.rowMu.Unlock()
	return s.captain.Row()
}

func (s *Server) handleTower(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, TowerResponse{
		ID:      s.tower.ID().String(),
		BuiltAt: s.tower.BuiltAt().Format(time.RFC3339Nano),
	})
}

// handleLogbook lists recent sails of one boat, newest first.
func (s *Server) handleLogbook(w http.ResponseWriter, r *http.Request) {
	if s.logbook == nil {
		writeNotFound(w, r, "logbook is not enabled")
		return
	}

	boatName := chi.URLParam(r, "boat")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeBadRequest(w, r, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.logbook.List(r.Context(), boatName, limit)
	if err != nil {
		s.logger.Error("listing logbook failed", "boat", boatName, "error", err)
		writeInternalError(w, r, "failed to read logbook")
		return
	}

	count, err := s.logbook.Count(r.Context(), boatName)
	if err != nil {
		s.logger.Error("counting logbook failed", "boat", boatName, "error", err)
		writeInternalError(w, r, "failed to read logbook")
		return
	}

	writeJSON(w, http.StatusOK, LogbookResponse{
		Boat:    boatName,
		Count:   count,
		Entries: entries,
	})
}

// handleAudit lists row orders, newest first.
// Query parameters: source, boat, result, limit, offset.
func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeNotFound(w, r, "audit trail is not enabled")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Source: q.Get("source"),
		Boat:   q.Get("boat"),
		Result: q.Get("result"),
	}

	var ok bool
	if filter.Limit, ok = queryInt(q.Get("limit")); !ok {
		writeBadRequest(w, r, "limit must be a non-negative integer")
		return
	}
	if filter.Offset, ok = queryInt(q.Get("offset")); !ok {
		writeBadRequest(w, r, "offset must be a non-negative integer")
		return
	}

	result, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing row orders failed", "error", err)
		writeInternalError(w, r, "failed to read audit trail")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// queryInt parses an optional non-negative integer; "" yields 0.
func queryInt(raw string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.metrics == nil {
		writeNotFound(w, r, "metrics are not enabled")
		return
	}
	s.metrics.Handler().ServeHTTP(w, r)
}
