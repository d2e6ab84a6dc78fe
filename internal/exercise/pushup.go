package exercise

import (
	"math"

	"github.com/formsense/repform/internal/pose"
)

// Pushup metric names.
const (
	MetricElbowAngle    = "elbow_angle"
	MetricBodyLineAngle = "body_line_angle"
	StatusChest         = "chest_status"
	pushupEntryAngle    = 120
)

// NewPushup builds the push-up analyzer. The elbow angle (shoulder-elbow-
// wrist) drives the repetition; the body-line angle (shoulder-hip-ankle,
// 180 degrees when the trunk is straight) is the secondary posture metric,
// tracked with a Min comparator because sagging hips shrink it. Entry and
// exit share the 120 degree threshold.
func NewPushup(opts ...Option) Analyzer {
	cfg := Config{
		Kind: Pushup,
		Name: "Push-up",
		Joints: []pose.Joint{
			pose.RightShoulder, pose.RightElbow, pose.RightWrist,
			pose.RightHip, pose.RightAnkle,
		},
		Metrics: []MetricSpec{
			{Name: MetricElbowAngle, Label: "Elbow Angle", Compare: Min},
			{Name: MetricBodyLineAngle, Label: "Body Line", Compare: Min},
		},
		DrivingMetric:  MetricElbowAngle,
		EntryThreshold: pushupEntryAngle,
		ExitThreshold:  pushupEntryAngle,
		MinVisibility:  pose.DefaultMinVisibility,
		Instructions:   "Plank side-on to the camera with shoulder, elbow, wrist, hip and ankle visible.",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &analyzer{
		cfg:      cfg,
		produces: []string{MetricElbowAngle, MetricBodyLineAngle, StatusChest},
		compute:  computePushup,
		feedback: map[string][]Band{
			MetricElbowAngle: {
				{At: 150, Incl: true, Text: "Too shallow - bend further", Severity: SeverityWarn},
				{At: 120, Text: "Shallow push-up - lower your chest", Severity: SeverityWarn},
				{At: 90, Incl: true, Text: "Good depth", Severity: SeverityGood},
				{At: 70, Incl: true, Text: "Full depth - chest to floor", Severity: SeverityGood},
				{At: math.Inf(-1), Incl: true, Text: "Collapsed bottom - control the descent", Severity: SeverityAlert},
			},
			MetricBodyLineAngle: {
				{At: 160, Incl: true, Text: "Straight body line", Severity: SeverityGood},
				{At: 140, Incl: true, Text: "Hips drifting - brace your core", Severity: SeverityWarn},
				{At: math.Inf(-1), Incl: true, Text: "Body line broken", Severity: SeverityAlert},
			},
		},
		live: map[string][]Band{
			MetricElbowAngle: {
				{At: 150, Incl: true, Text: "Top position", Severity: SeverityNeutral},
				{At: 120, Text: "Shallow", Severity: SeverityWarn},
				{At: 90, Incl: true, Text: "Good depth", Severity: SeverityGood},
				{At: 70, Incl: true, Text: "Full depth", Severity: SeverityGood},
				{At: math.Inf(-1), Incl: true, Text: "Very deep", Severity: SeverityAlert},
			},
			MetricBodyLineAngle: {
				{At: 160, Incl: true, Text: "Straight line", Severity: SeverityGood},
				{At: 140, Incl: true, Text: "Hips drifting", Severity: SeverityWarn},
				{At: math.Inf(-1), Incl: true, Text: "Line broken", Severity: SeverityAlert},
			},
		},
	}
}

func computePushup(f pose.Frame) MetricSnapshot {
	shoulder := f.Get(pose.RightShoulder)
	elbow := f.Get(pose.RightElbow)
	wrist := f.Get(pose.RightWrist)
	hip := f.Get(pose.RightHip)
	ankle := f.Get(pose.RightAnkle)

	return MetricSnapshot{
		Valid: true,
		Values: map[string]float64{
			MetricElbowAngle:    pose.Angle(shoulder, elbow, wrist),
			MetricBodyLineAngle: pose.Angle(shoulder, hip, ankle),
		},
		Status: map[string]string{
			StatusChest: pose.DepthStatus(shoulder, elbow),
		},
	}
}
