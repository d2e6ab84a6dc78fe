package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formsense/repform/internal/exercise"
	"github.com/formsense/repform/internal/pose"
)

func squatSnap(knee, torso float64) exercise.MetricSnapshot {
	status := pose.BelowParallel
	if knee > 100 {
		status = pose.AboveParallel
	}
	return exercise.MetricSnapshot{
		Valid: true,
		Values: map[string]float64{
			exercise.MetricKneeAngle:  knee,
			exercise.MetricTorsoAngle: torso,
		},
		Status: map[string]string{exercise.StatusDepth: status},
	}
}

func deadliftSnap(hip, knee float64) exercise.MetricSnapshot {
	return exercise.MetricSnapshot{
		Valid: true,
		Values: map[string]float64{
			exercise.MetricHipAngle:    hip,
			exercise.MetricDLKneeAngle: knee,
		},
	}
}

// Full squat descent and recovery: exactly one rep, counted on the way back
// up, with feedback reflecting the deepest knee angle reached.
func TestAdvance_FullSquatRepetition(t *testing.T) {
	a := exercise.NewSquat()
	state := NewState()

	kneeSeq := []float64{178, 150, 120, 95, 65, 95, 150, 178}
	var completed []*Record
	var started int
	for _, knee := range kneeSeq {
		var ev *Event
		state, ev = Advance(a, state, squatSnap(knee, 40))
		if ev == nil {
			continue
		}
		switch ev.Type {
		case EventRepStarted:
			started++
		case EventRepCompleted:
			completed = append(completed, ev.Record)
		}
	}

	assert.Equal(t, 1, started)
	require.Len(t, completed, 1)
	assert.Equal(t, 1, state.RepCount)
	assert.Equal(t, PhaseStanding, state.Phase)

	rec := completed[0]
	assert.Equal(t, 1, rec.RepNumber)
	assert.Equal(t, 65.0, rec.Extremal.Value(exercise.MetricKneeAngle))
	assert.Equal(t, "Very deep - be careful | Good torso position", rec.Feedback)
	assert.False(t, rec.CompletedAt.IsZero())
}

// A single frame just under the entry threshold still counts as one full
// (shallow) rep once the lifter stands back up.
func TestAdvance_ShallowRepetition(t *testing.T) {
	a := exercise.NewSquat()
	state := NewState()

	var rec *Record
	for _, knee := range []float64{178, 138, 178} {
		var ev *Event
		state, ev = Advance(a, state, squatSnap(knee, 35))
		if ev != nil && ev.Type == EventRepCompleted {
			rec = ev.Record
		}
	}

	assert.Equal(t, 1, state.RepCount)
	require.NotNil(t, rec)
	assert.Equal(t, "Shallow squat - try for more depth | Good torso position", rec.Feedback)
}

// Sentinel snapshots pause the machine: no entry, no exit, no extremal drift,
// whether standing or mid-repetition.
func TestAdvance_SentinelIsNoOp(t *testing.T) {
	a := exercise.NewSquat()
	state := NewState()

	next, ev := Advance(a, state, exercise.Sentinel())
	assert.Nil(t, ev)
	assert.Equal(t, state, next)

	// Enter a rep, then lose the landmarks.
	state, ev = Advance(a, state, squatSnap(100, 40))
	require.NotNil(t, ev)
	require.Equal(t, EventRepStarted, ev.Type)

	mid := state
	state, ev = Advance(a, state, exercise.Sentinel())
	assert.Nil(t, ev)
	assert.Equal(t, PhaseInRepetition, state.Phase)
	assert.Equal(t, mid.RepCount, state.RepCount)
	assert.Equal(t, mid.Extremal, state.Extremal)

	// Landmarks return; the rep finishes normally.
	state, ev = Advance(a, state, squatSnap(170, 40))
	require.NotNil(t, ev)
	assert.Equal(t, EventRepCompleted, ev.Type)
	assert.Equal(t, 1, state.RepCount)
}

// Deadlift hysteresis: entry below 120, exit at 160 or above. A partial
// lockout at 155 does not finish the rep.
func TestAdvance_DeadliftHysteresis(t *testing.T) {
	a := exercise.NewDeadlift()
	state := NewState()

	step := func(hip float64) *Event {
		var ev *Event
		state, ev = Advance(a, state, deadliftSnap(hip, 130))
		return ev
	}

	assert.Nil(t, step(180))
	ev := step(110)
	require.NotNil(t, ev)
	assert.Equal(t, EventRepStarted, ev.Type)
	ev = step(170)
	require.NotNil(t, ev)
	assert.Equal(t, EventRepCompleted, ev.Type)
	assert.Equal(t, 1, state.RepCount)

	// Second rep stalls at 155 and only completes at full lockout.
	require.NotNil(t, step(110))
	assert.Nil(t, step(155))
	assert.Equal(t, PhaseInRepetition, state.Phase)
	ev = step(180)
	require.NotNil(t, ev)
	assert.Equal(t, EventRepCompleted, ev.Type)
	assert.Equal(t, 2, state.RepCount)
}

// With equal entry and exit thresholds (squat: 140/140) a value oscillating
// across the boundary completes a rep on every crossing pair. That is the
// documented behavior of a zero-hysteresis config, asserted here so a future
// threshold change shows up as a test diff.
func TestAdvance_EqualThresholdsDoubleCount(t *testing.T) {
	a := exercise.NewSquat()
	state := NewState()

	for _, knee := range []float64{139, 140, 139, 140} {
		state, _ = Advance(a, state, squatSnap(knee, 40))
	}
	assert.Equal(t, 2, state.RepCount)
}

// Rep count never decreases, and each completion event raises it by exactly
// one.
func TestAdvance_RepCountMonotonic(t *testing.T) {
	a := exercise.NewSquat()
	state := NewState()

	seq := []float64{178, 120, 90, 150, 178, 130, 178, 100, 60, 100, 160, 178}
	prev := 0
	for _, knee := range seq {
		var ev *Event
		state, ev = Advance(a, state, squatSnap(knee, 40))
		assert.GreaterOrEqual(t, state.RepCount, prev)
		if ev != nil && ev.Type == EventRepCompleted {
			assert.Equal(t, prev+1, state.RepCount)
			assert.Equal(t, state.RepCount, ev.Record.RepNumber)
		}
		prev = state.RepCount
	}
	assert.Equal(t, 3, state.RepCount)
}

// Each metric tracks its own extremal under its declared comparator: the
// deepest knee angle and the largest torso lean can come from different
// frames.
func TestAdvance_ExtremalPerMetric(t *testing.T) {
	a := exercise.NewSquat()
	state := NewState()

	frames := []struct{ knee, torso float64 }{
		{120, 35},
		{80, 55},
		{100, 20},
	}
	for _, f := range frames {
		state, _ = Advance(a, state, squatSnap(f.knee, f.torso))
	}

	require.Equal(t, PhaseInRepetition, state.Phase)
	assert.Equal(t, 80.0, state.Extremal.Value(exercise.MetricKneeAngle))
	assert.Equal(t, 55.0, state.Extremal.Value(exercise.MetricTorsoAngle))
	assert.Len(t, state.Buffer(), 3)
}

// The extremal snapshot resets on every entry; depth from a previous rep
// cannot leak into the next rep's feedback.
func TestAdvance_ExtremalResetsPerRep(t *testing.T) {
	a := exercise.NewSquat()
	state := NewState()

	var feedback []string
	for _, knee := range []float64{178, 65, 178, 115, 178} {
		var ev *Event
		state, ev = Advance(a, state, squatSnap(knee, 40))
		if ev != nil && ev.Type == EventRepCompleted {
			feedback = append(feedback, ev.Record.Feedback)
		}
	}

	require.Len(t, feedback, 2)
	assert.Contains(t, feedback[0], "Very deep - be careful")
	assert.Contains(t, feedback[1], "Perfect depth!")
}

func TestAdvance_DoesNotMutateInput(t *testing.T) {
	a := exercise.NewSquat()
	state := NewState()
	state, _ = Advance(a, state, squatSnap(120, 40))

	snap := squatSnap(80, 40)
	before := state
	next, _ := Advance(a, state, snap)

	assert.Equal(t, 120.0, before.Extremal.Value(exercise.MetricKneeAngle))
	assert.Equal(t, 80.0, next.Extremal.Value(exercise.MetricKneeAngle))
	assert.Equal(t, 80.0, snap.Value(exercise.MetricKneeAngle))
}
