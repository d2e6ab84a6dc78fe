package pose

import "math"

// Depth status labels returned by DepthStatus.
const (
	BelowParallel = "Below Parallel"
	AboveParallel = "Above Parallel"
)

// Angle returns the angle in degrees at vertex b formed by the rays b->a and
// b->c, normalized into [0,180]. Computed from the difference of two atan2
// results; a raw magnitude above 180 wraps to 360 minus the magnitude.
//
// Coincident points produce atan2(0,0)=0 and therefore a deterministic but
// meaningless result. Callers gate on Frame.Valid first and never feed
// degenerate input into a repetition transition.
func Angle(a, b, c Landmark) float64 {
	rad := math.Atan2(c.Y-b.Y, c.X-b.X) - math.Atan2(a.Y-b.Y, a.X-b.X)
	deg := math.Abs(rad * 180 / math.Pi)
	if deg > 180 {
		deg = 360 - deg
	}
	return deg
}

// Distance returns the euclidean distance between two landmarks in the
// normalized image plane.
func Distance(a, b Landmark) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// DepthStatus compares the vertical position of two landmarks and reports
// whether the upper joint has dropped past the lower one. Larger Y is lower
// on screen, so a hip below the knee reads as BelowParallel. Binary, no
// hysteresis.
func DepthStatus(upper, lower Landmark) string {
	if upper.Y > lower.Y {
		return BelowParallel
	}
	return AboveParallel
}
