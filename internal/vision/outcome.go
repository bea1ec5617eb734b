package vision

import (
	"github.com/flexflow/flexflow/internal/domain/geometry"
	"github.com/flexflow/flexflow/internal/domain/types"
)

// OutcomeKind tags the result of processing one frame.
type OutcomeKind int

const (
	// KindNoSubject means no pose was detected. Nothing to update.
	KindNoSubject OutcomeKind = iota
	// KindCameraCovered means a pose came back but every landmark is
	// near invisible. The lens is blocked.
	KindCameraCovered
	// KindReading is a normal measurement.
	KindReading
)

// String returns the label used for outcome metrics.
func (k OutcomeKind) String() string {
	switch k {
	case KindNoSubject:
		return "no_subject"
	case KindCameraCovered:
		return "camera_covered"
	case KindReading:
		return "reading"
	default:
		return "unknown"
	}
}

// Reading bundles one frame's raw measurements before smoothing.
type Reading struct {
	UpperBodyOnly bool
	Neck          geometry.Reading
	LeftElbow     geometry.Reading
	RightElbow    geometry.Reading
	PointedPart   string
	Landmarks     []types.LandmarkPoint
}

// Outcome is the result of processing one frame. Exactly one variant
// applies; Reading carries data only when Kind is KindReading.
type Outcome struct {
	Kind    OutcomeKind
	Reading Reading
}

// NoSubject returns the outcome for a frame without a detected pose.
func NoSubject() Outcome { return Outcome{Kind: KindNoSubject} }

// CameraCovered returns the outcome for a blocked lens.
func CameraCovered() Outcome { return Outcome{Kind: KindCameraCovered} }

// NewReading wraps a normal measurement.
func NewReading(r Reading) Outcome { return Outcome{Kind: KindReading, Reading: r} }
