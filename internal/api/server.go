// Package api exposes the HTTP surface consumed by the live dashboard: a
// per-frame landmark ingest endpoint plus session, repetition, and report
// queries. The pose-estimation model runs client-side; this server only ever
// sees landmark arrays.
package api

import (
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/formsense/repform/internal/db"
	"github.com/formsense/repform/internal/exercise"
	"github.com/formsense/repform/internal/session"
)

// ANSI escape codes for request logging
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

type Server struct {
	registry *exercise.Registry
	db       *db.DB

	mu       sync.Mutex
	trackers map[string]*session.Tracker
}

// NewServer builds the API server. The registry must already be validated;
// the db may be nil for ephemeral (no-persistence) runs.
func NewServer(registry *exercise.Registry, database *db.DB) *Server {
	return &Server{
		registry: registry,
		db:       database,
		trackers: make(map[string]*session.Tracker),
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, status, and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// ServeMux returns the API route table.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /exercises", s.listExercises)
	mux.HandleFunc("GET /sessions", s.listSessions)
	mux.HandleFunc("POST /sessions", s.createSession)
	mux.HandleFunc("GET /sessions/{id}", s.getSession)
	mux.HandleFunc("POST /sessions/{id}/frames", s.postFrame)
	mux.HandleFunc("POST /sessions/{id}/end", s.endSession)
	mux.HandleFunc("GET /sessions/{id}/reps", s.listReps)
	mux.HandleFunc("GET /sessions/{id}/report", s.getReport)
	return mux
}

// tracker returns the live tracker for a session ID, if any.
func (s *Server) tracker(id string) (*session.Tracker, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trackers[id]
	return t, ok
}
