package exercise

import (
	"math"

	"github.com/formsense/repform/internal/pose"
)

// Bicep curl metric names.
const (
	MetricCurlElbowAngle = "elbow_angle"
	MetricUpperArmAngle  = "upper_arm_angle"
	StatusWrist          = "wrist_status"
	curlEntryAngle       = 90
)

// NewBicepCurl builds the bicep curl analyzer. The elbow angle (shoulder-
// elbow-wrist) drives the repetition, closing below 90 degrees on the way up
// and reopening past 90 on the way down. The upper-arm angle (hip-shoulder-
// elbow) tracks elbow drift away from the torso with a Max comparator: the
// further the elbow swings forward, the worse the rep. Entry and exit share
// the 90 degree threshold.
func NewBicepCurl(opts ...Option) Analyzer {
	cfg := Config{
		Kind: BicepCurl,
		Name: "Bicep Curl",
		Joints: []pose.Joint{
			pose.RightHip, pose.RightShoulder, pose.RightElbow, pose.RightWrist,
		},
		Metrics: []MetricSpec{
			{Name: MetricCurlElbowAngle, Label: "Elbow Angle", Compare: Min},
			{Name: MetricUpperArmAngle, Label: "Upper Arm Drift", Compare: Max},
		},
		DrivingMetric:  MetricCurlElbowAngle,
		EntryThreshold: curlEntryAngle,
		ExitThreshold:  curlEntryAngle,
		MinVisibility:  pose.DefaultMinVisibility,
		Instructions:   "Stand side-on to the camera with hip, shoulder, elbow and wrist visible; keep the upper arm pinned.",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &analyzer{
		cfg:      cfg,
		produces: []string{MetricCurlElbowAngle, MetricUpperArmAngle, StatusWrist},
		compute:  computeBicepCurl,
		feedback: map[string][]Band{
			MetricCurlElbowAngle: {
				{At: 80, Incl: true, Text: "Barely curled - squeeze higher", Severity: SeverityWarn},
				{At: 60, Incl: true, Text: "Partial curl - more range", Severity: SeverityWarn},
				{At: 40, Incl: true, Text: "Good contraction", Severity: SeverityGood},
				{At: math.Inf(-1), Incl: true, Text: "Full contraction!", Severity: SeverityGood},
			},
			MetricUpperArmAngle: {
				{At: 40, Text: "Heavy elbow swing - drop the weight", Severity: SeverityAlert},
				{At: 25, Text: "Elbow drifting forward", Severity: SeverityWarn},
				{At: math.Inf(-1), Incl: true, Text: "Upper arm stayed pinned", Severity: SeverityGood},
			},
		},
		live: map[string][]Band{
			MetricCurlElbowAngle: {
				{At: 150, Incl: true, Text: "Arm extended", Severity: SeverityNeutral},
				{At: 90, Incl: true, Text: "Curling", Severity: SeverityNeutral},
				{At: 60, Incl: true, Text: "Good curl", Severity: SeverityGood},
				{At: math.Inf(-1), Incl: true, Text: "Full squeeze", Severity: SeverityGood},
			},
			MetricUpperArmAngle: {
				{At: 40, Text: "Elbow swinging", Severity: SeverityAlert},
				{At: 25, Text: "Elbow drifting", Severity: SeverityWarn},
				{At: math.Inf(-1), Incl: true, Text: "Elbow pinned", Severity: SeverityGood},
			},
		},
	}
}

func computeBicepCurl(f pose.Frame) MetricSnapshot {
	hip := f.Get(pose.RightHip)
	shoulder := f.Get(pose.RightShoulder)
	elbow := f.Get(pose.RightElbow)
	wrist := f.Get(pose.RightWrist)

	return MetricSnapshot{
		Valid: true,
		Values: map[string]float64{
			MetricCurlElbowAngle: pose.Angle(shoulder, elbow, wrist),
			MetricUpperArmAngle:  pose.Angle(hip, shoulder, elbow),
		},
		Status: map[string]string{
			StatusWrist: pose.DepthStatus(wrist, elbow),
		},
	}
}
