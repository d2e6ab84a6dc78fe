package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/formsense/repform/internal/exercise"
	"github.com/formsense/repform/internal/pose"
	"github.com/formsense/repform/internal/report"
	"github.com/formsense/repform/internal/session"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write JSON response: %v", err)
	}
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// listExercises returns the configured exercises with their thresholds,
// metric metadata, and setup instructions.
func (s *Server) listExercises(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.registry.Configs())
}

type createSessionRequest struct {
	Exercise exercise.Kind `json:"exercise"`
}

// createSession starts a new tracking session for one exercise. Selecting an
// exercise always constructs fresh state; there is no way to resume or share
// state across exercises.
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	analyzer, err := s.registry.Get(req.Exercise)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	t := session.NewTracker(analyzer, nil)
	s.mu.Lock()
	s.trackers[t.ID] = t
	s.mu.Unlock()

	if s.db != nil {
		if err := s.db.CreateSession(t.ID, t.Exercise, t.StartedAt); err != nil {
			log.Printf("failed to persist session %s: %v", t.ID, err)
		}
	}

	log.Printf("session created: id=%s exercise=%s", t.ID, t.Exercise)
	s.writeJSON(w, http.StatusCreated, t.Status())
}

type frameResponse struct {
	Snapshot exercise.MetricSnapshot `json:"snapshot"`
	RepCount int                     `json:"rep_count"`
	Event    string                  `json:"event,omitempty"`
	Record   *session.Record         `json:"record,omitempty"`
}

// postFrame ingests one landmark frame and returns the live metric snapshot
// plus any repetition transition it caused. A frame with missing or
// low-confidence landmarks yields the sentinel snapshot and no transition;
// counting resumes when the landmarks come back.
func (s *Server) postFrame(w http.ResponseWriter, r *http.Request) {
	t, ok := s.tracker(r.PathValue("id"))
	if !ok {
		s.writeJSONError(w, http.StatusNotFound, "unknown or ended session")
		return
	}

	var frame pose.Frame
	if err := json.NewDecoder(r.Body).Decode(&frame); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid frame body: %v", err))
		return
	}

	snap, ev := t.ProcessFrame(frame)

	resp := frameResponse{Snapshot: snap, RepCount: t.Status().RepCount}
	if ev != nil {
		resp.Event = string(ev.Type)
		resp.Record = ev.Record
		if ev.Type == session.EventRepCompleted && s.db != nil {
			driving := ev.Record.Extremal.Value(t.Analyzer().Config().DrivingMetric)
			if err := s.db.RecordRep(t.ID, *ev.Record, driving); err != nil {
				log.Printf("failed to persist rep %d for session %s: %v", ev.Record.RepNumber, t.ID, err)
			}
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// getSession returns the live status of an active session, falling back to
// the stored row for ended sessions.
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if t, ok := s.tracker(id); ok {
		s.writeJSON(w, http.StatusOK, t.Status())
		return
	}
	if s.db == nil {
		s.writeJSONError(w, http.StatusNotFound, "unknown session")
		return
	}
	row, err := s.db.GetSession(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.writeJSONError(w, http.StatusNotFound, "unknown session")
			return
		}
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load session: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, row)
}

// endSession closes a live session: the tracker is dropped and the stored
// row is stamped. Any repetition still in progress is discarded uncounted.
func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	t, ok := s.tracker(id)
	if !ok {
		s.writeJSONError(w, http.StatusNotFound, "unknown or already ended session")
		return
	}

	s.mu.Lock()
	delete(s.trackers, id)
	s.mu.Unlock()

	status := t.Status()
	if s.db != nil {
		if err := s.db.EndSession(id, time.Now().UTC(), status.RepCount); err != nil {
			log.Printf("failed to end session %s: %v", id, err)
		}
	}
	log.Printf("session ended: id=%s exercise=%s reps=%d", id, t.Exercise, status.RepCount)
	s.writeJSON(w, http.StatusOK, status)
}

// listSessions returns recent stored sessions.
func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.writeJSON(w, http.StatusOK, []any{})
		return
	}
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		fmt.Sscanf(l, "%d", &limit)
	}
	rows, err := s.db.ListSessions(limit)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list sessions: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, rows)
}

// listReps returns the completed repetition records of a session. Live
// sessions answer from memory so the dashboard sees records even when
// persistence is disabled.
func (s *Server) listReps(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if t, ok := s.tracker(id); ok {
		s.writeJSON(w, http.StatusOK, t.Records())
		return
	}
	if s.db == nil {
		s.writeJSONError(w, http.StatusNotFound, "unknown session")
		return
	}
	rows, err := s.db.ListReps(id)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list reps: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, rows)
}

// getReport renders the HTML session report: per-rep depth chart plus
// distribution stats.
func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var kind exercise.Kind
	var reps []report.Rep

	if t, ok := s.tracker(id); ok {
		kind = t.Exercise
		cfg := t.Analyzer().Config()
		for _, rec := range t.Records() {
			reps = append(reps, report.Rep{
				Number:   rec.RepNumber,
				Depth:    rec.Extremal.Value(cfg.DrivingMetric),
				Feedback: rec.Feedback,
			})
		}
	} else if s.db != nil {
		row, err := s.db.GetSession(id)
		if err != nil {
			s.writeJSONError(w, http.StatusNotFound, "unknown session")
			return
		}
		kind = exercise.Kind(row.Exercise)
		stored, err := s.db.ListReps(id)
		if err != nil {
			s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list reps: %v", err))
			return
		}
		for _, rr := range stored {
			reps = append(reps, report.Rep{Number: rr.RepNumber, Depth: rr.DrivingMetric, Feedback: rr.Feedback})
		}
	} else {
		s.writeJSONError(w, http.StatusNotFound, "unknown session")
		return
	}

	analyzer, err := s.registry.Get(kind)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.RenderHTML(w, analyzer.Config(), reps); err != nil {
		log.Printf("failed to render report for session %s: %v", id, err)
	}
}
