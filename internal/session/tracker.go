package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/formsense/repform/internal/exercise"
	"github.com/formsense/repform/internal/pose"
)

// MetricSink receives every computed snapshot for diagnostics. Optional: the
// core contract does not depend on it.
type MetricSink func(kind exercise.Kind, snap exercise.MetricSnapshot)

// Tracker binds one analyzer to one session's state. The underlying state
// machine is single-threaded and frame-synchronous; the mutex exists only
// because the HTTP ingest path and the status queries can race in the
// server. A Tracker is created per exercise selection and never switched in
// place: choosing a different exercise constructs a fresh Tracker, which
// guarantees no cross-exercise state reuse.
type Tracker struct {
	ID        string
	Exercise  exercise.Kind
	StartedAt time.Time

	analyzer exercise.Analyzer
	sink     MetricSink

	mu       sync.Mutex
	state    State
	records  []Record
	lastSnap exercise.MetricSnapshot
}

// NewTracker builds a tracker with a fresh uuid session ID.
func NewTracker(a exercise.Analyzer, sink MetricSink) *Tracker {
	return &Tracker{
		ID:        uuid.NewString(),
		Exercise:  a.Kind(),
		StartedAt: time.Now().UTC(),
		analyzer:  a,
		sink:      sink,
		state:     NewState(),
	}
}

// Analyzer returns the bound analyzer.
func (t *Tracker) Analyzer() exercise.Analyzer { return t.analyzer }

// ProcessFrame computes metrics for one landmark frame and advances the
// state machine. It returns the per-frame snapshot (the live display output)
// and the transition event, if any. One frame at a time: the caller awaits
// completion before delivering the next frame.
func (t *Tracker) ProcessFrame(f pose.Frame) (exercise.MetricSnapshot, *Event) {
	snap := t.analyzer.ComputeMetrics(f)
	if t.sink != nil {
		t.sink(t.Exercise, snap)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	next, ev := Advance(t.analyzer, t.state, snap)
	t.state = next
	t.lastSnap = snap
	if ev != nil && ev.Type == EventRepCompleted {
		t.records = append(t.records, *ev.Record)
	}
	return snap, ev
}

// Status is a point-in-time view of the session for API consumers.
type Status struct {
	SessionID    string                  `json:"session_id"`
	Exercise     exercise.Kind           `json:"exercise"`
	StartedAt    time.Time               `json:"started_at"`
	RepCount     int                     `json:"rep_count"`
	InExercise   bool                    `json:"in_exercise"`
	LastSnapshot exercise.MetricSnapshot `json:"last_snapshot"`
	LastFeedback string                  `json:"last_feedback,omitempty"`
}

// Status returns the current session status.
func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := Status{
		SessionID:    t.ID,
		Exercise:     t.Exercise,
		StartedAt:    t.StartedAt,
		RepCount:     t.state.RepCount,
		InExercise:   t.state.InExercise(),
		LastSnapshot: t.lastSnap,
	}
	if n := len(t.records); n > 0 {
		st.LastFeedback = t.records[n-1].Feedback
	}
	return st
}

// Records returns a copy of the completed repetition history.
func (t *Tracker) Records() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}
