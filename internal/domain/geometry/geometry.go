// Package geometry provides pure joint-angle computations over pose landmarks.
//
// All angles use the unsigned dot-product formulation: results live in
// [0, 180] degrees and swapping the two non-vertex points does not change
// the value. Callers that need tilt direction must derive it separately;
// nothing downstream does today.
package geometry

import (
	"math"

	"github.com/flexflow/flexflow/internal/domain/pose"
)

// VisibilityThreshold is the minimum landmark confidence for an angle input.
// Landmarks at or above it are usable; below it the reading is unavailable.
const VisibilityThreshold = 0.6

// degenerateRay is the squared-length floor below which a ray is treated as
// zero and the angle collapses to 0.
const degenerateRay = 1e-6

// upReferenceOffset is how far above the shoulder midpoint the synthetic
// upright reference sits, in normalized image units. Image y grows downward,
// so "above" subtracts.
const upReferenceOffset = 0.1

// Point is a position in the estimator's normalized 3D space.
type Point struct {
	X float64
	Y float64
	Z float64
}

// Reading is an angle in degrees. Valid is false when the landmarks backing
// it were not visible enough to trust the value.
type Reading struct {
	Degrees float64
	Valid   bool
}

// unavailable is the zero Reading returned for low-visibility inputs.
var unavailable = Reading{}

// PointOf projects a landmark onto its position, discarding visibility.
func PointOf(l pose.Landmark) Point {
	return Point{X: l.X, Y: l.Y, Z: l.Z}
}

// Angle returns the angle at vertex between the rays toward a and c.
// Range [0, 180]. Either ray shorter than 1e-6 yields 0.
func Angle(a, vertex, c Point) float64 {
	bax, bay, baz := a.X-vertex.X, a.Y-vertex.Y, a.Z-vertex.Z
	bcx, bcy, bcz := c.X-vertex.X, c.Y-vertex.Y, c.Z-vertex.Z

	magBA := math.Sqrt(bax*bax + bay*bay + baz*baz)
	magBC := math.Sqrt(bcx*bcx + bcy*bcy + bcz*bcz)
	if magBA < degenerateRay || magBC < degenerateRay {
		return 0
	}

	dot := bax*bcx + bay*bcy + baz*bcz
	cos := dot / (magBA * magBC)
	// Floating error can push the cosine a hair outside [-1, 1].
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

// NeckTilt computes the head tilt off vertical: the angle at the shoulder
// midpoint between the nose and a synthetic upright reference directly above
// the midpoint. Unavailable when any input landmark is below the visibility
// threshold.
func NeckTilt(nose, leftShoulder, rightShoulder pose.Landmark) Reading {
	if !visible(nose, leftShoulder, rightShoulder) {
		return unavailable
	}

	mid := Point{
		X: (leftShoulder.X + rightShoulder.X) / 2,
		Y: (leftShoulder.Y + rightShoulder.Y) / 2,
		Z: (leftShoulder.Z + rightShoulder.Z) / 2,
	}
	up := Point{X: mid.X, Y: mid.Y - upReferenceOffset, Z: mid.Z}

	return Reading{Degrees: Angle(up, mid, PointOf(nose)), Valid: true}
}

// ElbowFlexion computes the angle at the elbow between the shoulder and the
// wrist. Unavailable when any input landmark is below the visibility
// threshold.
func ElbowFlexion(shoulder, elbow, wrist pose.Landmark) Reading {
	if !visible(shoulder, elbow, wrist) {
		return unavailable
	}
	return Reading{
		Degrees: Angle(PointOf(shoulder), PointOf(elbow), PointOf(wrist)),
		Valid:   true,
	}
}

// PlanarDistance returns the (x, y) distance between two landmarks, ignoring
// depth. Pointing classification works in the image plane.
func PlanarDistance(a, b pose.Landmark) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// visible reports whether every landmark clears the visibility threshold.
func visible(landmarks ...pose.Landmark) bool {
	for _, l := range landmarks {
		if l.Visibility < VisibilityThreshold {
			return false
		}
	}
	return true
}
