package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/harbour/internal/boat"
)

// Error is the body of every non-2xx response.
//
// RequestID echoes X-Request-ID so a failed order can be found in the
// logs and in GET /audit.
type Error struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// Error codes.
const (
	ErrCodeBadRequest     = "bad_request"
	ErrCodeNotFound       = "not_found"
	ErrCodeNoRowingBoat   = "no_rowing_boat"
	ErrCodeInternal       = "internal_error"
	ErrCodeMethodNotAllow = "method_not_allowed"
)

// writeJSON writes v as JSON with the given status code. A nil v writes
// headers only.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes an Error tagged with the request's ID.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: requestIDFrom(r.Context()),
	})
}

func writeBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, message)
}

func writeNotFound(w http.ResponseWriter, r *http.Request, message string) {
	writeError(w, r, http.StatusNotFound, ErrCodeNotFound, message)
}

func writeInternalError(w http.ResponseWriter, r *http.Request, message string) {
	writeError(w, r, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeRowError maps a failed row order to a response.
//
// An unbound captain is the caller's problem (409); anything the boat or
// its recorders return is ours (500) and its text stays in the logs.
func writeRowError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, boat.ErrNoRowingBoat) {
		writeError(w, r, http.StatusConflict, ErrCodeNoRowingBoat, "captain has no rowing boat")
		return
	}
	writeInternalError(w, r, "row failed")
}
