package exercise

import (
	"math"

	"github.com/formsense/repform/internal/pose"
)

// Squat metric names.
const (
	MetricKneeAngle   = "knee_angle"
	MetricTorsoAngle  = "torso_angle"
	StatusDepth       = "depth_status"
	squatEntryDegrees = 140
)

// NewSquat builds the squat analyzer. The knee angle (hip-knee-ankle) drives
// repetition entry and exit; the torso angle (shoulder-hip-knee) is tracked
// as the secondary posture metric, and the hip-vs-knee depth status is a
// categorical extra. Entry and exit share the 140 degree threshold, so there
// is no hysteresis margin on this exercise.
func NewSquat(opts ...Option) Analyzer {
	cfg := Config{
		Kind: Squat,
		Name: "Squat",
		Joints: []pose.Joint{
			pose.RightShoulder, pose.RightHip, pose.RightKnee, pose.RightAnkle,
		},
		Metrics: []MetricSpec{
			{Name: MetricKneeAngle, Label: "Knee Angle", Compare: Min},
			{Name: MetricTorsoAngle, Label: "Torso Angle", Compare: Max},
		},
		DrivingMetric:  MetricKneeAngle,
		EntryThreshold: squatEntryDegrees,
		ExitThreshold:  squatEntryDegrees,
		MinVisibility:  pose.DefaultMinVisibility,
		Instructions:   "Stand side-on to the camera with shoulder, hip, knee and ankle visible.",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &analyzer{
		cfg:      cfg,
		produces: []string{MetricKneeAngle, MetricTorsoAngle, StatusDepth},
		compute:  computeSquat,
		feedback: map[string][]Band{
			MetricKneeAngle: {
				{At: 170, Incl: true, Text: "Too shallow - go deeper", Severity: SeverityWarn},
				{At: 135, Text: "Shallow squat - try for more depth", Severity: SeverityWarn},
				{At: 110, Incl: true, Text: "Perfect depth!", Severity: SeverityGood},
				{At: 90, Incl: true, Text: "Good depth", Severity: SeverityGood},
				{At: 70, Incl: true, Text: "Parallel depth achieved", Severity: SeverityGood},
				{At: math.Inf(-1), Incl: true, Text: "Very deep - be careful", Severity: SeverityAlert},
			},
			MetricTorsoAngle: {
				{At: 60, Text: "Too much forward lean", Severity: SeverityAlert},
				{At: 45, Text: "Slight forward lean", Severity: SeverityWarn},
				{At: 30, Incl: true, Text: "Good torso position", Severity: SeverityGood},
				{At: math.Inf(-1), Incl: true, Text: "Torso too upright", Severity: SeverityWarn},
			},
		},
		live: map[string][]Band{
			MetricKneeAngle: {
				{At: 170, Incl: true, Text: "Standing position", Severity: SeverityNeutral},
				{At: 135, Text: "Shallow squat", Severity: SeverityWarn},
				{At: 110, Incl: true, Text: "Perfect depth!", Severity: SeverityGood},
				{At: 90, Incl: true, Text: "Good depth", Severity: SeverityGood},
				{At: 70, Incl: true, Text: "Parallel squat", Severity: SeverityGood},
				{At: math.Inf(-1), Incl: true, Text: "Very deep squat", Severity: SeverityAlert},
			},
			MetricTorsoAngle: {
				{At: 60, Text: "Too much forward lean", Severity: SeverityAlert},
				{At: 45, Text: "Slight forward lean", Severity: SeverityWarn},
				{At: 30, Incl: true, Text: "Good torso angle", Severity: SeverityGood},
				{At: 20, Incl: true, Text: "Too upright", Severity: SeverityWarn},
				{At: math.Inf(-1), Incl: true, Text: "Very upright", Severity: SeverityWarn},
			},
		},
	}
}

func computeSquat(f pose.Frame) MetricSnapshot {
	shoulder := f.Get(pose.RightShoulder)
	hip := f.Get(pose.RightHip)
	knee := f.Get(pose.RightKnee)
	ankle := f.Get(pose.RightAnkle)

	return MetricSnapshot{
		Valid: true,
		Values: map[string]float64{
			MetricKneeAngle:  pose.Angle(hip, knee, ankle),
			MetricTorsoAngle: pose.Angle(shoulder, hip, knee),
		},
		Status: map[string]string{
			StatusDepth: pose.DepthStatus(hip, knee),
		},
	}
}
