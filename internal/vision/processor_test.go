package vision_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/flexflow/flexflow/internal/domain/pose"
	"github.com/flexflow/flexflow/internal/vision"
)

// uniformPose returns an estimate with every landmark stacked at (0.5, 0.5)
// with the given visibility.
func uniformPose(vis float64) *pose.Estimate {
	est := &pose.Estimate{}
	for i := range est.Landmarks {
		est.Landmarks[i] = pose.Landmark{X: 0.5, Y: 0.5, Visibility: vis}
	}
	return est
}

func place(est *pose.Estimate, idx int, x, y, vis float64) {
	est.Landmarks[idx] = pose.Landmark{X: x, Y: y, Visibility: vis}
}

// subjectPose returns a fully visible subject facing the camera, arms
// hanging down, fingertips away from every pointing target.
func subjectPose() *pose.Estimate {
	est := uniformPose(0.9)
	place(est, pose.Nose, 0.50, 0.10, 0.9)
	place(est, pose.LeftShoulder, 0.60, 0.25, 0.9)
	place(est, pose.RightShoulder, 0.40, 0.25, 0.9)
	place(est, pose.LeftElbow, 0.62, 0.40, 0.9)
	place(est, pose.RightElbow, 0.38, 0.40, 0.9)
	place(est, pose.LeftWrist, 0.63, 0.55, 0.9)
	place(est, pose.RightWrist, 0.37, 0.55, 0.9)
	place(est, pose.LeftIndex, 0.64, 0.58, 0.9)
	place(est, pose.RightIndex, 0.36, 0.58, 0.9)
	place(est, pose.LeftHip, 0.57, 0.55, 0.9)
	place(est, pose.RightHip, 0.43, 0.55, 0.9)
	place(est, pose.LeftKnee, 0.57, 0.75, 0.9)
	place(est, pose.RightKnee, 0.43, 0.75, 0.9)
	place(est, pose.LeftAnkle, 0.57, 0.92, 0.9)
	place(est, pose.RightAnkle, 0.43, 0.92, 0.9)
	place(est, pose.LeftHeel, 0.57, 0.95, 0.9)
	place(est, pose.RightHeel, 0.43, 0.95, 0.9)
	place(est, pose.LeftFootIndex, 0.58, 0.97, 0.9)
	place(est, pose.RightFootIndex, 0.42, 0.97, 0.9)
	return est
}

func dimLowerBody(est *pose.Estimate, vis float64) {
	for _, i := range pose.LowerBody {
		lm := est.Landmarks[i]
		est.Landmarks[i] = pose.Landmark{X: lm.X, Y: lm.Y, Z: lm.Z, Visibility: vis}
	}
}

func TestProcessOutcomes(t *testing.T) {
	Convey("Given frame processing", t, func() {
		Convey("When no pose was detected", func() {
			outcome := vision.Process(nil)

			Convey("Then there is nothing to update", func() {
				So(outcome.Kind, ShouldEqual, vision.KindNoSubject)
			})
		})

		Convey("When every landmark is near invisible", func() {
			outcome := vision.Process(uniformPose(0.05))

			Convey("Then the camera counts as covered", func() {
				So(outcome.Kind, ShouldEqual, vision.KindCameraCovered)
			})
		})

		Convey("When a single landmark reaches the visibility floor", func() {
			est := uniformPose(0.05)
			place(est, pose.Nose, 0.5, 0.5, 0.1)
			outcome := vision.Process(est)

			Convey("Then the frame is a normal reading", func() {
				So(outcome.Kind, ShouldEqual, vision.KindReading)
			})
		})

		Convey("When the subject is fully visible", func() {
			outcome := vision.Process(subjectPose())

			Convey("Then the reading carries measurements", func() {
				So(outcome.Kind, ShouldEqual, vision.KindReading)
				So(outcome.Reading.Landmarks, ShouldHaveLength, pose.LandmarkCount)
			})
		})
	})
}

func TestLowerBodyClassification(t *testing.T) {
	Convey("Given a fully visible subject", t, func() {
		est := subjectPose()

		Convey("When the legs are visible", func() {
			outcome := vision.Process(est)

			Convey("Then the subject is not upper-body-only", func() {
				So(outcome.Reading.UpperBodyOnly, ShouldBeFalse)
			})
		})

		Convey("When every leg landmark is dim", func() {
			dimLowerBody(est, 0.3)
			outcome := vision.Process(est)

			Convey("Then the subject is upper-body-only even with visible hips", func() {
				So(outcome.Reading.UpperBodyOnly, ShouldBeTrue)
				So(est.At(pose.LeftHip).Visibility, ShouldBeGreaterThan, 0.5)
			})
		})

		Convey("When a single knee sits exactly at the confidence bar", func() {
			dimLowerBody(est, 0.3)
			place(est, pose.RightKnee, 0.43, 0.75, 0.5)
			outcome := vision.Process(est)

			Convey("Then the legs count as visible", func() {
				So(outcome.Reading.UpperBodyOnly, ShouldBeFalse)
			})
		})
	})
}

func TestPointingDetection(t *testing.T) {
	Convey("Given a visible subject", t, func() {
		Convey("When a fingertip touches the right elbow", func() {
			est := subjectPose()
			place(est, pose.LeftIndex, 0.41, 0.43, 0.9)
			outcome := vision.Process(est)

			Convey("Then that part is reported", func() {
				So(outcome.Reading.PointedPart, ShouldEqual, "Right Elbow")
			})
		})

		Convey("When two targets are within reach", func() {
			est := subjectPose()
			// 0.080 to the right shoulder, 0.073 to the right elbow.
			place(est, pose.LeftIndex, 0.40, 0.33, 0.9)
			outcome := vision.Process(est)

			Convey("Then the nearest one wins regardless of checking order", func() {
				So(outcome.Reading.PointedPart, ShouldEqual, "Right Elbow")
			})
		})

		Convey("When both hands point at once", func() {
			est := subjectPose()
			place(est, pose.LeftIndex, 0.62, 0.28, 0.9)
			place(est, pose.RightIndex, 0.44, 0.73, 0.9)
			outcome := vision.Process(est)

			Convey("Then the left hand is honored first", func() {
				So(outcome.Reading.PointedPart, ShouldEqual, "Left Shoulder")
			})
		})

		Convey("When the fingertip confidence is too low", func() {
			est := subjectPose()
			place(est, pose.LeftIndex, 0.41, 0.43, 0.4)
			outcome := vision.Process(est)

			Convey("Then no pointing is reported", func() {
				So(outcome.Reading.PointedPart, ShouldBeEmpty)
			})
		})

		Convey("When the target confidence is too low", func() {
			est := subjectPose()
			place(est, pose.LeftIndex, 0.41, 0.43, 0.9)
			place(est, pose.RightElbow, 0.38, 0.40, 0.4)
			outcome := vision.Process(est)

			Convey("Then that target is ignored", func() {
				So(outcome.Reading.PointedPart, ShouldBeEmpty)
			})
		})

		Convey("When the fingertip hovers outside the touch distance", func() {
			est := subjectPose()
			place(est, pose.LeftIndex, 0.725, 0.25, 0.9)
			outcome := vision.Process(est)

			Convey("Then no pointing is reported", func() {
				So(outcome.Reading.PointedPart, ShouldBeEmpty)
			})
		})
	})
}

func TestReadingAngles(t *testing.T) {
	Convey("Given a subject with a straight right arm", t, func() {
		est := subjectPose()
		place(est, pose.RightShoulder, 0.40, 0.25, 0.9)
		place(est, pose.RightElbow, 0.40, 0.45, 0.9)
		place(est, pose.RightWrist, 0.40, 0.65, 0.9)

		Convey("When processed", func() {
			outcome := vision.Process(est)

			Convey("Then the right elbow reads fully extended", func() {
				So(outcome.Reading.RightElbow.Valid, ShouldBeTrue)
				So(outcome.Reading.RightElbow.Degrees, ShouldAlmostEqual, 180.0, 0.001)
			})

			Convey("And the level head reads no tilt", func() {
				So(outcome.Reading.Neck.Valid, ShouldBeTrue)
				So(outcome.Reading.Neck.Degrees, ShouldAlmostEqual, 0.0, 0.001)
			})
		})

		Convey("When the wrist is barely visible", func() {
			place(est, pose.RightWrist, 0.40, 0.65, 0.5)
			outcome := vision.Process(est)

			Convey("Then the elbow reading is unavailable", func() {
				So(outcome.Reading.RightElbow.Valid, ShouldBeFalse)
			})
		})
	})
}

func TestLandmarkRounding(t *testing.T) {
	Convey("Given landmark coordinates with excess precision", t, func() {
		est := subjectPose()
		est.Landmarks[pose.Nose] = pose.Landmark{X: 0.512345, Y: 0.25, Z: -0.098765, Visibility: 0.966}

		Convey("When processed", func() {
			outcome := vision.Process(est)
			nose := outcome.Reading.Landmarks[pose.Nose]

			Convey("Then positions carry four decimals and visibility two", func() {
				So(nose.X, ShouldEqual, 0.5123)
				So(nose.Z, ShouldEqual, -0.0988)
				So(nose.V, ShouldEqual, 0.97)
			})
		})
	})
}
