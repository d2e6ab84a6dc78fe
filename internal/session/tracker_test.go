package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formsense/repform/internal/exercise"
	"github.com/formsense/repform/internal/pose"
	"github.com/formsense/repform/internal/testutil"
)

func TestTracker_FullRepFromFrames(t *testing.T) {
	var sunk int
	sink := func(kind exercise.Kind, snap exercise.MetricSnapshot) { sunk++ }
	tr := NewTracker(exercise.NewSquat(), sink)

	assert.NotEmpty(t, tr.ID)
	assert.Equal(t, exercise.Squat, tr.Exercise)

	var completed *Event
	for _, knee := range []float64{175, 150, 100, 75, 100, 150, 175} {
		snap, ev := tr.ProcessFrame(testutil.SquatFrame(knee, 40))
		require.True(t, snap.Valid)
		assert.InDelta(t, knee, snap.Value(exercise.MetricKneeAngle), 0.5)
		if ev != nil && ev.Type == EventRepCompleted {
			completed = ev
		}
	}

	require.NotNil(t, completed)
	assert.Equal(t, 7, sunk)

	st := tr.Status()
	assert.Equal(t, tr.ID, st.SessionID)
	assert.Equal(t, 1, st.RepCount)
	assert.False(t, st.InExercise)
	assert.Equal(t, completed.Record.Feedback, st.LastFeedback)

	recs := tr.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, 1, recs[0].RepNumber)
	assert.InDelta(t, 75, recs[0].Extremal.Value(exercise.MetricKneeAngle), 0.5)
}

func TestTracker_OccludedFrameDoesNotAdvance(t *testing.T) {
	tr := NewTracker(exercise.NewSquat(), nil)

	// Descend into a rep, then occlude the knee below the confidence floor.
	_, ev := tr.ProcessFrame(testutil.SquatFrame(100, 40))
	require.NotNil(t, ev)
	require.Equal(t, EventRepStarted, ev.Type)

	snap, ev := tr.ProcessFrame(testutil.Occlude(testutil.SquatFrame(175, 40), pose.RightKnee, 0.2))
	assert.False(t, snap.Valid)
	assert.Nil(t, ev)

	st := tr.Status()
	assert.True(t, st.InExercise)
	assert.Equal(t, 0, st.RepCount)
	assert.False(t, st.LastSnapshot.Valid)
}

func TestTracker_FreshTrackerPerExercise(t *testing.T) {
	a := NewTracker(exercise.NewSquat(), nil)
	b := NewTracker(exercise.NewDeadlift(), nil)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 0, a.Status().RepCount)
	assert.Equal(t, 0, b.Status().RepCount)
}
