package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formsense/repform/internal/exercise"
)

func squatReps() []Rep {
	return []Rep{
		{Number: 1, Depth: 95, Feedback: "Good depth"},
		{Number: 2, Depth: 80, Feedback: "Parallel depth achieved"},
		{Number: 3, Depth: 112, Feedback: "Perfect depth!"},
		{Number: 4, Depth: 95, Feedback: "Good depth"},
	}
}

func TestSummarize(t *testing.T) {
	cfg := exercise.NewSquat().Config()
	s := Summarize(cfg, squatReps())

	assert.Equal(t, exercise.Squat, s.Exercise)
	assert.Equal(t, exercise.MetricKneeAngle, s.Metric)
	assert.Equal(t, 4, s.RepCount)
	assert.InDelta(t, 95.5, s.MeanDepth, 1e-9)
	assert.Equal(t, 80.0, s.MinDepth)
	assert.Equal(t, 112.0, s.MaxDepth)
	assert.Greater(t, s.StdDev, 0.0)
	assert.GreaterOrEqual(t, s.P85Depth, s.P50Depth)
	assert.Equal(t, 2, s.FeedbackBy["Good depth"])
	assert.Equal(t, 1, s.FeedbackBy["Perfect depth!"])
}

func TestSummarize_Deterministic(t *testing.T) {
	cfg := exercise.NewSquat().Config()
	a := Summarize(cfg, squatReps())
	b := Summarize(cfg, squatReps())
	assert.Equal(t, a, b)
}

func TestSummarize_Empty(t *testing.T) {
	cfg := exercise.NewDeadlift().Config()
	s := Summarize(cfg, nil)
	assert.Equal(t, exercise.Deadlift, s.Exercise)
	assert.Equal(t, exercise.MetricHipAngle, s.Metric)
	assert.Equal(t, 0, s.RepCount)
	assert.Zero(t, s.MeanDepth)
	assert.Zero(t, s.StdDev)
}

func TestSummarize_SingleRep(t *testing.T) {
	cfg := exercise.NewSquat().Config()
	s := Summarize(cfg, []Rep{{Number: 1, Depth: 100, Feedback: "Good depth"}})
	assert.Equal(t, 100.0, s.MeanDepth)
	assert.Zero(t, s.StdDev)
	assert.Equal(t, 100.0, s.P50Depth)
}

func TestRenderHTML(t *testing.T) {
	cfg := exercise.NewSquat().Config()
	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, cfg, squatReps()))

	html := buf.String()
	assert.Contains(t, html, "Squat depth per repetition")
	assert.Contains(t, html, "entry threshold")
	assert.Contains(t, html, "reps=4")
}

func TestRenderHTML_Empty(t *testing.T) {
	cfg := exercise.NewSquat().Config()
	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, cfg, nil))
	assert.True(t, strings.Contains(buf.String(), "reps=0"))
}
