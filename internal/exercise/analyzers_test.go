package exercise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formsense/repform/internal/pose"
	"github.com/formsense/repform/internal/testutil"
)

func TestDeadlift_AsymmetricThresholds(t *testing.T) {
	cfg := NewDeadlift().Config()
	assert.Equal(t, float64(120), cfg.EntryThreshold)
	assert.Equal(t, float64(160), cfg.ExitThreshold)
	assert.Greater(t, cfg.ExitThreshold, cfg.EntryThreshold,
		"deadlift keeps asymmetric thresholds for hysteresis")
}

func TestDeadlift_ComputeMetrics(t *testing.T) {
	a := NewDeadlift()
	snap := a.ComputeMetrics(testutil.DeadliftFrame(110, 150))

	require.True(t, snap.Valid)
	assert.InDelta(t, 110, snap.Value(MetricHipAngle), 0.5)
	assert.InDelta(t, 150, snap.Value(MetricDLKneeAngle), 0.5)
}

func TestDeadlift_Feedback(t *testing.T) {
	a := NewDeadlift()
	extremal := MetricSnapshot{
		Valid:  true,
		Values: map[string]float64{MetricHipAngle: 105, MetricDLKneeAngle: 130},
	}
	got := a.GenerateFeedback(extremal)
	assert.Equal(t, "Strong hinge depth | Good knee bend", got)
}

func TestPushup_ComputeMetrics(t *testing.T) {
	a := NewPushup()
	snap := a.ComputeMetrics(testutil.PushupFrame(95, 175))

	require.True(t, snap.Valid)
	assert.InDelta(t, 95, snap.Value(MetricElbowAngle), 0.5)
	assert.InDelta(t, 175, snap.Value(MetricBodyLineAngle), 0.5)
}

func TestPushup_Feedback(t *testing.T) {
	a := NewPushup()

	extremal := MetricSnapshot{
		Valid:  true,
		Values: map[string]float64{MetricElbowAngle: 95, MetricBodyLineAngle: 170},
	}
	assert.Equal(t, "Good depth | Straight body line", a.GenerateFeedback(extremal))

	sagging := MetricSnapshot{
		Valid:  true,
		Values: map[string]float64{MetricElbowAngle: 130, MetricBodyLineAngle: 145},
	}
	assert.Equal(t, "Shallow push-up - lower your chest | Hips drifting - brace your core",
		a.GenerateFeedback(sagging))
}

func TestBicepCurl_ComputeMetrics(t *testing.T) {
	a := NewBicepCurl()
	snap := a.ComputeMetrics(testutil.CurlFrame(50, 10))

	require.True(t, snap.Valid)
	assert.InDelta(t, 50, snap.Value(MetricCurlElbowAngle), 0.5)
	assert.InDelta(t, 10, snap.Value(MetricUpperArmAngle), 0.5)
}

func TestBicepCurl_Feedback(t *testing.T) {
	a := NewBicepCurl()

	tight := MetricSnapshot{
		Valid:  true,
		Values: map[string]float64{MetricCurlElbowAngle: 35, MetricUpperArmAngle: 12},
	}
	assert.Equal(t, "Full contraction! | Upper arm stayed pinned", a.GenerateFeedback(tight))

	swinging := MetricSnapshot{
		Valid:  true,
		Values: map[string]float64{MetricCurlElbowAngle: 70, MetricUpperArmAngle: 30},
	}
	assert.Equal(t, "Partial curl - more range | Elbow drifting forward", a.GenerateFeedback(swinging))
}

func TestAllAnalyzers_SentinelOnInvalidFrame(t *testing.T) {
	analyzers := []Analyzer{NewSquat(), NewDeadlift(), NewPushup(), NewBicepCurl()}
	for _, a := range analyzers {
		t.Run(string(a.Kind()), func(t *testing.T) {
			snap := a.ComputeMetrics(make(pose.Frame, pose.FrameSize))
			assert.False(t, snap.Valid, "all-zero frame must produce the sentinel")
			assert.Equal(t, UnknownStatus, snap.StatusOf("depth_status"))
		})
	}
}

func TestComparator_Worse(t *testing.T) {
	assert.True(t, Min.Worse(100, 90))
	assert.False(t, Min.Worse(90, 100))
	assert.True(t, Max.Worse(40, 50))
	assert.False(t, Max.Worse(50, 40))
	assert.False(t, Min.Worse(90, 90), "equal values are not worse")
}

func TestMetricSnapshot_Clone(t *testing.T) {
	orig := MetricSnapshot{
		Valid:  true,
		Values: map[string]float64{"a": 1},
		Status: map[string]string{"s": "x"},
	}
	clone := orig.Clone()
	clone.Values["a"] = 2
	clone.Status["s"] = "y"
	assert.Equal(t, float64(1), orig.Values["a"])
	assert.Equal(t, "x", orig.Status["s"])
}
