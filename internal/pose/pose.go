// Package pose defines the landmark frame format delivered by the external
// pose-estimation model and the geometry helpers the analyzers build on.
package pose

// Joint indexes a landmark within a Frame. The numbering follows the
// 33-point enumeration used by the upstream pose model, so frames can be
// forwarded to the ingest API without remapping.
type Joint int

// Right-side joints used by the side-view analyzers. The left-side and face
// landmarks exist in every frame but nothing here reads them.
const (
	RightShoulder Joint = 12
	RightElbow    Joint = 14
	RightWrist    Joint = 16
	RightHip      Joint = 24
	RightKnee     Joint = 26
	RightAnkle    Joint = 28
)

// FrameSize is the number of landmarks in a full pose frame.
const FrameSize = 33

// DefaultMinVisibility is the confidence floor below which a landmark is
// treated as missing.
const DefaultMinVisibility = 0.5

// Landmark is a single tracked body joint. X and Y are normalized to [0,1]
// relative to the image; larger Y is lower on screen. Visibility is the
// model's confidence in [0,1].
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Frame is one full set of landmarks for a single video frame, indexed by
// Joint. Frames are immutable once received.
type Frame []Landmark

// Get returns the landmark for the given joint, or a zero landmark if the
// frame is short. A zero landmark always fails the visibility gate.
func (f Frame) Get(j Joint) Landmark {
	if int(j) < 0 || int(j) >= len(f) {
		return Landmark{}
	}
	return f[j]
}

// Valid reports whether every listed joint is usable: present in the frame,
// visibility at or above minVisibility, and both image coordinates inside
// [0,1]. Analyzers must gate on this before computing any angle; geometry on
// invalid landmarks is not trustworthy.
func (f Frame) Valid(joints []Joint, minVisibility float64) bool {
	for _, j := range joints {
		if int(j) < 0 || int(j) >= len(f) {
			return false
		}
		lm := f[j]
		if lm.Visibility < minVisibility {
			return false
		}
		if lm.X < 0 || lm.X > 1 || lm.Y < 0 || lm.Y > 1 {
			return false
		}
	}
	return true
}
