package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sadopc/punchclock/internal/tracking"
)

// ErrorResp is the body of every non-2xx JSON response.
type ErrorResp struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// errBadRequest marks malformed input from the client.
var errBadRequest = errors.New("bad request")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, ErrorResp{Code: status, Message: msg, RequestID: requestIDFrom(r.Context())})
}

// fail maps err onto a status code. Expected conditions echo their message;
// anything else is logged and answered with a generic one.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, tracking.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, tracking.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, tracking.ErrInvalidRange), errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, tracking.ErrConflict):
		status = http.StatusConflict
	}

	if status != http.StatusInternalServerError {
		writeErr(w, r, status, err.Error())
		return
	}
	s.log.Error("request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("request_id", requestIDFrom(r.Context())),
		slog.String("error", err.Error()),
	)
	msg := "internal error"
	if errors.Is(err, tracking.ErrInternalExport) {
		msg = tracking.ErrInternalExport.Error()
	}
	writeErr(w, r, status, msg)
}
