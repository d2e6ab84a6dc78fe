package exercise

import (
	"math"

	"github.com/formsense/repform/internal/pose"
)

// Deadlift metric names.
const (
	MetricHipAngle     = "hip_angle"
	MetricDLKneeAngle  = "knee_angle"
	StatusHip          = "hip_status"
	deadliftEntryAngle = 120
	deadliftExitAngle  = 160
)

// NewDeadlift builds the deadlift analyzer. The hip angle (shoulder-hip-knee)
// drives the repetition: the lifter hinges below 120 degrees to start a rep
// and must reopen to at least 160 degrees to finish it. The asymmetric
// thresholds give hysteresis so a near-lockout wobble around a single
// boundary cannot re-trigger a rep.
func NewDeadlift(opts ...Option) Analyzer {
	cfg := Config{
		Kind: Deadlift,
		Name: "Deadlift",
		Joints: []pose.Joint{
			pose.RightShoulder, pose.RightHip, pose.RightKnee, pose.RightAnkle,
		},
		Metrics: []MetricSpec{
			{Name: MetricHipAngle, Label: "Hip Angle", Compare: Min},
			{Name: MetricDLKneeAngle, Label: "Knee Angle", Compare: Min},
		},
		DrivingMetric:  MetricHipAngle,
		EntryThreshold: deadliftEntryAngle,
		ExitThreshold:  deadliftExitAngle,
		MinVisibility:  pose.DefaultMinVisibility,
		Instructions:   "Stand side-on to the camera; keep shoulder, hip, knee and ankle in frame through the full hinge.",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &analyzer{
		cfg:      cfg,
		produces: []string{MetricHipAngle, MetricDLKneeAngle, StatusHip},
		compute:  computeDeadlift,
		feedback: map[string][]Band{
			MetricHipAngle: {
				{At: 160, Incl: true, Text: "Barely hinged - sit back further", Severity: SeverityWarn},
				{At: 130, Text: "Shallow hinge - more hip travel", Severity: SeverityWarn},
				{At: 100, Incl: true, Text: "Strong hinge depth", Severity: SeverityGood},
				{At: 80, Incl: true, Text: "Deep hinge", Severity: SeverityGood},
				{At: math.Inf(-1), Incl: true, Text: "Over-folding - watch your back", Severity: SeverityAlert},
			},
			MetricDLKneeAngle: {
				{At: 150, Text: "Stiff-legged pull", Severity: SeverityWarn},
				{At: 120, Incl: true, Text: "Good knee bend", Severity: SeverityGood},
				{At: 100, Incl: true, Text: "Knees bending too much", Severity: SeverityWarn},
				{At: math.Inf(-1), Incl: true, Text: "Squatting the pull", Severity: SeverityAlert},
			},
		},
		live: map[string][]Band{
			MetricHipAngle: {
				{At: 160, Incl: true, Text: "Locked out", Severity: SeverityNeutral},
				{At: 130, Text: "Setting the hinge", Severity: SeverityNeutral},
				{At: 100, Incl: true, Text: "Strong hinge", Severity: SeverityGood},
				{At: 80, Incl: true, Text: "Deep hinge", Severity: SeverityGood},
				{At: math.Inf(-1), Incl: true, Text: "Over-folded", Severity: SeverityAlert},
			},
			MetricDLKneeAngle: {
				{At: 150, Text: "Legs straight", Severity: SeverityWarn},
				{At: 120, Incl: true, Text: "Good knee bend", Severity: SeverityGood},
				{At: math.Inf(-1), Incl: true, Text: "Too much knee bend", Severity: SeverityWarn},
			},
		},
	}
}

func computeDeadlift(f pose.Frame) MetricSnapshot {
	shoulder := f.Get(pose.RightShoulder)
	hip := f.Get(pose.RightHip)
	knee := f.Get(pose.RightKnee)
	ankle := f.Get(pose.RightAnkle)

	return MetricSnapshot{
		Valid: true,
		Values: map[string]float64{
			MetricHipAngle:    pose.Angle(shoulder, hip, knee),
			MetricDLKneeAngle: pose.Angle(hip, knee, ankle),
		},
		Status: map[string]string{
			StatusHip: pose.DepthStatus(hip, knee),
		},
	}
}
