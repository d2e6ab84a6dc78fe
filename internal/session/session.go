// Package session owns the exercise-agnostic repetition state machine. It
// consumes metric snapshots one frame at a time, tracks the deepest posture
// reached inside the current repetition, and emits a record with qualitative
// feedback when the repetition completes.
package session

import (
	"time"

	"github.com/formsense/repform/internal/exercise"
)

// Phase is the single state variable of the machine. There is no terminal
// phase; the machine runs for as long as frames arrive.
type Phase string

const (
	// PhaseStanding is the initial phase, outside any repetition.
	PhaseStanding Phase = "standing"
	// PhaseInRepetition is active while the driving metric sits on the
	// entry side of its threshold.
	PhaseInRepetition Phase = "in_repetition"
)

// State is the full mutable state of one exercise session. It is passed by
// value through Advance, which returns the successor state; callers own the
// lifetime and apply the result. Switching exercise type starts from a fresh
// zero State rather than reusing an old one.
type State struct {
	Phase    Phase
	RepCount int
	// Extremal holds the worst value seen per tracked metric since entering
	// the current repetition. Only meaningful while Phase is
	// PhaseInRepetition; it is reset to the entry snapshot exactly once per
	// entry transition.
	Extremal exercise.MetricSnapshot
	// buffer accumulates in-progress snapshots for the current repetition.
	// Kept for later analysis only; counting does not depend on it.
	buffer []exercise.MetricSnapshot
}

// NewState returns the initial standing state.
func NewState() State {
	return State{Phase: PhaseStanding}
}

// InExercise reports whether the state is mid-repetition.
func (s State) InExercise() bool { return s.Phase == PhaseInRepetition }

// Buffer returns the in-progress snapshots of the current repetition.
func (s State) Buffer() []exercise.MetricSnapshot { return s.buffer }

// Record is an immutable completed repetition.
type Record struct {
	RepNumber   int                     `json:"rep_number"`
	Feedback    string                  `json:"feedback"`
	Extremal    exercise.MetricSnapshot `json:"extremal"`
	CompletedAt time.Time               `json:"completed_at"`
}

// EventType classifies what an Advance call observed.
type EventType string

const (
	EventRepStarted   EventType = "rep_started"
	EventRepCompleted EventType = "rep_completed"
)

// Event is emitted on repetition entry and exit transitions. Frames that
// cause no transition produce no event.
type Event struct {
	Type   EventType
	Record *Record // set for EventRepCompleted
}

// Advance feeds one metric snapshot through the state machine and returns
// the successor state plus any transition event. Pure apart from reading the
// clock for completion timestamps: it never mutates its arguments, so it can
// be exercised in tests without any frame-delivery harness.
//
// Rules, evaluated once per snapshot:
//  1. An invalid (sentinel) snapshot is a no-op. Occluded landmarks must
//     not fake an entry or exit; counting just pauses until they return.
//  2. Standing -> in-repetition when the driving metric drops below the
//     entry threshold. The extremal snapshot resets to this entry snapshot
//     and the in-progress buffer clears.
//  3. While in-repetition, each metric's extremal value is updated by its
//     declared comparator and the snapshot is appended to the buffer.
//  4. In-repetition -> standing when the driving metric reaches the exit
//     threshold: the rep count increments by exactly one and a completed
//     record with generated feedback is emitted.
//
// Exercises set ExitThreshold >= EntryThreshold by convention so noise near
// a single boundary cannot rapid-fire transitions. With equal thresholds a
// metric oscillating exactly at the boundary can double-count; that is a
// documented property of the configuration, not corrected here.
func Advance(a exercise.Analyzer, state State, snap exercise.MetricSnapshot) (State, *Event) {
	if !snap.Valid {
		return state, nil
	}

	cfg := a.Config()
	driving := snap.Value(cfg.DrivingMetric)

	switch state.Phase {
	case PhaseInRepetition:
		state.Extremal = updateExtremal(cfg, state.Extremal, snap)
		state.buffer = append(state.buffer, snap.Clone())

		if driving >= cfg.ExitThreshold {
			state.Phase = PhaseStanding
			state.RepCount++
			rec := &Record{
				RepNumber:   state.RepCount,
				Feedback:    a.GenerateFeedback(state.Extremal),
				Extremal:    state.Extremal.Clone(),
				CompletedAt: time.Now().UTC(),
			}
			state.buffer = nil
			return state, &Event{Type: EventRepCompleted, Record: rec}
		}
		return state, nil

	default: // PhaseStanding
		if driving < cfg.EntryThreshold {
			state.Phase = PhaseInRepetition
			state.Extremal = snap.Clone()
			state.buffer = []exercise.MetricSnapshot{snap.Clone()}
			return state, &Event{Type: EventRepStarted}
		}
		return state, nil
	}
}

// updateExtremal keeps the worse value per declared metric. Categorical
// status values follow the snapshot that held the worse driving metric.
func updateExtremal(cfg exercise.Config, extremal, snap exercise.MetricSnapshot) exercise.MetricSnapshot {
	out := extremal.Clone()
	for _, spec := range cfg.Metrics {
		cur := out.Value(spec.Name)
		cand := snap.Value(spec.Name)
		if spec.Compare.Worse(cur, cand) {
			if out.Values == nil {
				out.Values = make(map[string]float64)
			}
			out.Values[spec.Name] = cand
			if spec.Name == cfg.DrivingMetric {
				for k, v := range snap.Status {
					if out.Status == nil {
						out.Status = make(map[string]string)
					}
					out.Status[k] = v
				}
			}
		}
	}
	return out
}
