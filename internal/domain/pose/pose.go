// Package pose contains the landmark model produced by pose estimators.
package pose

// LandmarkCount is the fixed number of landmarks in one estimate.
const LandmarkCount = 33

// Anatomical landmark indices. The ordering is fixed by the estimator model;
// every estimate carries exactly one landmark per index.
const (
	Nose           = 0
	LeftEyeInner   = 1
	LeftEye        = 2
	LeftEyeOuter   = 3
	RightEyeInner  = 4
	RightEye       = 5
	RightEyeOuter  = 6
	LeftEar        = 7
	RightEar       = 8
	MouthLeft      = 9
	MouthRight     = 10
	LeftShoulder   = 11
	RightShoulder  = 12
	LeftElbow      = 13
	RightElbow     = 14
	LeftWrist      = 15
	RightWrist     = 16
	LeftPinky      = 17
	RightPinky     = 18
	LeftIndex      = 19
	RightIndex     = 20
	LeftThumb      = 21
	RightThumb     = 22
	LeftHip        = 23
	RightHip       = 24
	LeftKnee       = 25
	RightKnee      = 26
	LeftAnkle      = 27
	RightAnkle     = 28
	LeftHeel       = 29
	RightHeel      = 30
	LeftFootIndex  = 31
	RightFootIndex = 32
)

// LowerBody lists the indices checked by the upper-body-only classification:
// knees, ankles, heels and foot indices. Hips are excluded on purpose; they
// stay visible when the subject is seated.
var LowerBody = []int{
	LeftKnee, RightKnee,
	LeftAnkle, RightAnkle,
	LeftHeel, RightHeel,
	LeftFootIndex, RightFootIndex,
}

// Landmark is one labeled anatomical point in frame-relative coordinates.
// X and Y are normalized to [0,1]; Z is depth relative to the hip midline.
// Visibility is the estimator's confidence in [0,1].
type Landmark struct {
	X          float64
	Y          float64
	Z          float64
	Visibility float64
}

// Estimate is the full landmark set for one detected subject in one frame.
// It is created per processed frame, consumed synchronously and never retained.
type Estimate struct {
	Landmarks [LandmarkCount]Landmark
}

// At returns the landmark at the given anatomical index.
func (e *Estimate) At(index int) Landmark {
	return e.Landmarks[index]
}
