// Package testutil builds synthetic landmark frames with exact joint angles
// for analyzer and pipeline tests.
package testutil

import (
	"math"

	"github.com/formsense/repform/internal/pose"
)

const segment = 0.15 // limb length in normalized image units

// rotate rotates unit vector (x, y) by deg degrees.
func rotate(x, y, deg float64) (float64, float64) {
	rad := deg * math.Pi / 180
	return x*math.Cos(rad) - y*math.Sin(rad), x*math.Sin(rad) + y*math.Cos(rad)
}

func newFrame() pose.Frame {
	return make(pose.Frame, pose.FrameSize)
}

func set(f pose.Frame, j pose.Joint, x, y float64) {
	f[j] = pose.Landmark{X: x, Y: y, Visibility: 1}
}

// SquatFrame builds a frame whose knee angle (hip-knee-ankle) and torso
// angle (shoulder-hip-knee) are exactly the given values. All four required
// joints are fully visible and inside the image.
func SquatFrame(kneeDeg, torsoDeg float64) pose.Frame {
	f := newFrame()

	ankleX, ankleY := 0.5, 0.85
	kneeX, kneeY := 0.5, ankleY-segment
	set(f, pose.RightAnkle, ankleX, ankleY)
	set(f, pose.RightKnee, kneeX, kneeY)

	// hip sits at kneeDeg from the knee->ankle ray
	dx, dy := rotate(0, 1, kneeDeg) // knee->ankle direction is straight down
	hipX, hipY := kneeX+segment*dx, kneeY+segment*dy
	set(f, pose.RightHip, hipX, hipY)

	// shoulder sits at torsoDeg from the hip->knee ray
	kx, ky := (kneeX-hipX)/segment, (kneeY-hipY)/segment
	sx, sy := rotate(kx, ky, torsoDeg)
	set(f, pose.RightShoulder, hipX+segment*sx, hipY+segment*sy)

	return f
}

// DeadliftFrame builds a frame with the given hip angle (shoulder-hip-knee)
// and knee angle (hip-knee-ankle).
func DeadliftFrame(hipDeg, kneeDeg float64) pose.Frame {
	f := SquatFrame(kneeDeg, hipDeg)
	return f
}

// PushupFrame builds a frame with the given elbow angle (shoulder-elbow-
// wrist) and body-line angle (shoulder-hip-ankle).
func PushupFrame(elbowDeg, bodyDeg float64) pose.Frame {
	f := newFrame()

	shoulderX, shoulderY := 0.3, 0.5
	set(f, pose.RightShoulder, shoulderX, shoulderY)

	// arm: elbow below shoulder, wrist at elbowDeg from the elbow->shoulder ray
	elbowX, elbowY := shoulderX, shoulderY+segment
	set(f, pose.RightElbow, elbowX, elbowY)
	wx, wy := rotate(0, -1, elbowDeg) // elbow->shoulder direction is straight up
	set(f, pose.RightWrist, elbowX+segment*wx, elbowY+segment*wy)

	// trunk: hip to the right of the shoulder, ankle at bodyDeg from the
	// hip->shoulder ray
	hipX, hipY := shoulderX+2*segment, shoulderY
	set(f, pose.RightHip, hipX, hipY)
	ax, ay := rotate((shoulderX-hipX)/(2*segment), 0, bodyDeg)
	set(f, pose.RightAnkle, hipX+2*segment*ax, hipY+2*segment*ay)

	return f
}

// CurlFrame builds a frame with the given elbow angle (shoulder-elbow-wrist)
// and upper-arm drift angle (hip-shoulder-elbow).
func CurlFrame(elbowDeg, driftDeg float64) pose.Frame {
	f := newFrame()

	hipX, hipY := 0.5, 0.7
	shoulderX, shoulderY := 0.5, 0.4
	set(f, pose.RightHip, hipX, hipY)
	set(f, pose.RightShoulder, shoulderX, shoulderY)

	// upper arm at driftDeg from the shoulder->hip ray
	ex, ey := rotate(0, 1, driftDeg) // shoulder->hip direction is straight down
	elbowX, elbowY := shoulderX+segment*ex, shoulderY+segment*ey
	set(f, pose.RightElbow, elbowX, elbowY)

	// forearm at elbowDeg from the elbow->shoulder ray
	ux, uy := (shoulderX-elbowX)/segment, (shoulderY-elbowY)/segment
	wx, wy := rotate(ux, uy, elbowDeg)
	set(f, pose.RightWrist, elbowX+segment*wx, elbowY+segment*wy)

	return f
}

// Occlude drops the visibility of one joint below any sane floor,
// simulating a landmark the pose model lost.
func Occlude(f pose.Frame, j pose.Joint, visibility float64) pose.Frame {
	out := make(pose.Frame, len(f))
	copy(out, f)
	lm := out[j]
	lm.Visibility = visibility
	out[j] = lm
	return out
}
