package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/sadopc/punchclock/internal/export"
	"github.com/sadopc/punchclock/internal/tracking"
)

// Server exposes tracking.Service over HTTP.
type Server struct {
	svc    *tracking.Service
	log    *slog.Logger
	secret []byte
}

func New(svc *tracking.Service, log *slog.Logger, secret []byte) *Server {
	return &Server{svc: svc, log: log, secret: secret}
}

// Handler returns the routed handler wrapped in request id, recovery and
// logging middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET /time-entries/summary", s.authenticate(s.handleSummary))
	mux.HandleFunc("GET /time-entries/me", s.authenticate(s.handleMine))
	mux.HandleFunc("GET /time-entries/me/current", s.authenticate(s.handleCurrent))
	mux.HandleFunc("POST /time-entries/control", s.authenticate(s.handleControl))
	mux.HandleFunc("GET /time-entries/user/{id}", s.authenticate(s.handleUserEntries))
	mux.HandleFunc("GET /time-entries/user/{id}/export", s.authenticate(s.handleExport))
	mux.HandleFunc("PATCH /time-entries/{id}", s.authenticate(s.handleEdit))

	return requestID(recovery(s.log, logging(s.log, mux)))
}

// HTTPServer returns a configured http.Server. Call ListenAndServe on it in
// a goroutine and Shutdown it on exit.
func (s *Server) HTTPServer(addr string) *http.Server {
	s.log.Info("http server configured", slog.String("addr", addr))
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	win, err := s.window(r, "start", "end", false)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rows, err := s.svc.Summary(r.Context(), callerFrom(r.Context()), win)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTOs(rows))
}

func (s *Server) handleMine(w http.ResponseWriter, r *http.Request) {
	win, err := s.window(r, "start", "end", false)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	entries, err := s.svc.MyEntries(r.Context(), callerFrom(r.Context()), win)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTOs(entries))
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.Current(r.Context(), callerFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if e == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTO(e))
}

// handleControl starts (start=true, the default) or stops (start=false) the
// caller's timer.
func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	start := true
	if raw := r.URL.Query().Get("start"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			s.fail(w, r, fmt.Errorf("start must be true or false: %w", errBadRequest))
			return
		}
		start = v
	}
	c := callerFrom(r.Context())
	if start {
		e, err := s.svc.StartTimer(r.Context(), c)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toEntryDTO(e))
		return
	}
	e, err := s.svc.StopTimer(r.Context(), c)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTO(e))
}

func (s *Server) handleUserEntries(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	win, err := s.window(r, "start", "end", false)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	entries, err := s.svc.UserEntries(r.Context(), callerFrom(r.Context()), id, win)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTOs(entries))
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req editRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		s.fail(w, r, fmt.Errorf("invalid body: %w", errBadRequest))
		return
	}
	start, err := s.timestamp("startedAt", req.StartedAt)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	end, err := s.timestamp("endedAt", req.EndedAt)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	e, err := s.svc.EditEntry(r.Context(), callerFrom(r.Context()), id, start, end)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTO(e))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	win, err := s.window(r, "from", "to", true)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.fail(w, r, fmt.Errorf("%s: %w", err.Error(), errBadRequest))
		return
	}
	file, err := s.svc.Export(r.Context(), callerFrom(r.Context()), id, win, format)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}

// window reads optional (or, with required, mandatory) bounds from the query.
func (s *Server) window(r *http.Request, fromKey, toKey string, required bool) (tracking.Window, error) {
	q := r.URL.Query()
	var from, to *time.Time
	for _, b := range []struct {
		key string
		dst **time.Time
	}{{fromKey, &from}, {toKey, &to}} {
		raw := q.Get(b.key)
		if raw == "" {
			if required {
				return tracking.Window{}, fmt.Errorf("%s is required: %w", b.key, errBadRequest)
			}
			continue
		}
		t, err := s.timestamp(b.key, raw)
		if err != nil {
			return tracking.Window{}, err
		}
		*b.dst = &t
	}
	return s.svc.Window(from, to), nil
}

func (s *Server) timestamp(name, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s is required: %w", name, errBadRequest)
	}
	t, err := tracking.ParseTimestamp(raw, s.svc.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %s: %w", name, err.Error(), errBadRequest)
	}
	return t, nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: %w", r.PathValue("id"), errBadRequest)
	}
	return id, nil
}
