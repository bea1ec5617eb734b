package geometry_test

import (
	"testing"

	geometry "github.com/flexflow/flexflow/internal/domain/geometry"
	pose "github.com/flexflow/flexflow/internal/domain/pose"
	. "github.com/smartystreets/goconvey/convey"
)

func lm(x, y, z, vis float64) pose.Landmark {
	return pose.Landmark{X: x, Y: y, Z: z, Visibility: vis}
}

func TestAngle(t *testing.T) {
	Convey("Given the unsigned angle function", t, func() {
		Convey("When the rays are perpendicular", func() {
			got := geometry.Angle(
				geometry.Point{X: 1, Y: 0, Z: 0},
				geometry.Point{},
				geometry.Point{X: 0, Y: 1, Z: 0},
			)

			Convey("Then the angle should be 90 degrees", func() {
				So(got, ShouldAlmostEqual, 90, 1e-9)
			})
		})

		Convey("When the rays are opposite", func() {
			got := geometry.Angle(
				geometry.Point{X: -1, Y: 0, Z: 0},
				geometry.Point{},
				geometry.Point{X: 1, Y: 0, Z: 0},
			)

			Convey("Then the angle should be 180 degrees", func() {
				So(got, ShouldAlmostEqual, 180, 1e-9)
			})
		})

		Convey("When the rays are parallel", func() {
			got := geometry.Angle(
				geometry.Point{X: 0.5, Y: 0.5, Z: 0.5},
				geometry.Point{},
				geometry.Point{X: 1, Y: 1, Z: 1},
			)

			Convey("Then the angle should be 0 degrees", func() {
				So(got, ShouldAlmostEqual, 0, 1e-9)
			})
		})

		Convey("When the non-vertex points are swapped", func() {
			a := geometry.Point{X: 0.3, Y: 0.9, Z: 0.1}
			b := geometry.Point{X: 0.5, Y: 0.5, Z: 0.2}
			c := geometry.Point{X: 0.8, Y: 0.4, Z: 0.7}

			Convey("Then the result should be unchanged", func() {
				So(geometry.Angle(a, b, c), ShouldAlmostEqual, geometry.Angle(c, b, a), 1e-9)
			})
		})

		Convey("When one ray is degenerate", func() {
			vertex := geometry.Point{X: 0.5, Y: 0.5, Z: 0}
			near := geometry.Point{X: 0.5 + 1e-9, Y: 0.5, Z: 0}
			far := geometry.Point{X: 1, Y: 1, Z: 0}

			Convey("Then the angle should collapse to 0", func() {
				So(geometry.Angle(near, vertex, far), ShouldEqual, 0)
				So(geometry.Angle(far, vertex, near), ShouldEqual, 0)
				So(geometry.Angle(vertex, vertex, far), ShouldEqual, 0)
			})
		})

		Convey("When sampling arbitrary triples", func() {
			triples := []struct{ a, b, c geometry.Point }{
				{geometry.Point{X: 0.1}, geometry.Point{Y: 0.9}, geometry.Point{Z: 0.4}},
				{geometry.Point{X: 0.2, Y: 0.7}, geometry.Point{X: 0.9, Z: 0.3}, geometry.Point{Y: 0.1, Z: 0.8}},
				{geometry.Point{X: 1, Y: 1, Z: 1}, geometry.Point{}, geometry.Point{X: -1, Y: 2, Z: 0.5}},
			}

			Convey("Then every result should stay inside [0, 180]", func() {
				for _, tr := range triples {
					got := geometry.Angle(tr.a, tr.b, tr.c)
					So(got, ShouldBeGreaterThanOrEqualTo, 0)
					So(got, ShouldBeLessThanOrEqualTo, 180)
				}
			})
		})
	})
}

func TestNeckTilt(t *testing.T) {
	Convey("Given a subject facing the camera", t, func() {
		leftShoulder := lm(0.4, 0.5, 0, 0.9)
		rightShoulder := lm(0.6, 0.5, 0, 0.9)

		Convey("When the nose sits directly above the shoulder midpoint", func() {
			nose := lm(0.5, 0.35, 0, 0.9)
			got := geometry.NeckTilt(nose, leftShoulder, rightShoulder)

			Convey("Then the tilt should be 0 degrees", func() {
				So(got.Valid, ShouldBeTrue)
				So(got.Degrees, ShouldAlmostEqual, 0, 1e-9)
			})
		})

		Convey("When the nose leans sideways by the reference offset", func() {
			nose := lm(0.6, 0.4, 0, 0.9)
			got := geometry.NeckTilt(nose, leftShoulder, rightShoulder)

			Convey("Then the tilt should be 45 degrees", func() {
				So(got.Valid, ShouldBeTrue)
				So(got.Degrees, ShouldAlmostEqual, 45, 1e-9)
			})
		})

		Convey("When any landmark visibility is below the threshold", func() {
			nose := lm(0.5, 0.35, 0, 0.59)
			got := geometry.NeckTilt(nose, leftShoulder, rightShoulder)

			Convey("Then the reading should be unavailable", func() {
				So(got.Valid, ShouldBeFalse)
				So(got.Degrees, ShouldEqual, 0)
			})

			Convey("And a dim shoulder should also make it unavailable", func() {
				dim := lm(0.4, 0.5, 0, 0.3)
				So(geometry.NeckTilt(lm(0.5, 0.35, 0, 0.9), dim, rightShoulder).Valid, ShouldBeFalse)
			})
		})

		Convey("When visibility sits exactly at the threshold", func() {
			nose := lm(0.5, 0.35, 0, geometry.VisibilityThreshold)
			got := geometry.NeckTilt(nose, leftShoulder, rightShoulder)

			Convey("Then the landmark should still be usable", func() {
				So(got.Valid, ShouldBeTrue)
			})
		})
	})
}

func TestElbowFlexion(t *testing.T) {
	Convey("Given an arm bent at a right angle", t, func() {
		shoulder := lm(0.5, 0.3, 0, 0.9)
		elbow := lm(0.5, 0.5, 0, 0.9)
		wrist := lm(0.7, 0.5, 0, 0.9)

		Convey("When computing the flexion", func() {
			got := geometry.ElbowFlexion(shoulder, elbow, wrist)

			Convey("Then the angle should be 90 degrees", func() {
				So(got.Valid, ShouldBeTrue)
				So(got.Degrees, ShouldAlmostEqual, 90, 1e-9)
			})
		})

		Convey("When the arm is fully extended", func() {
			straightWrist := lm(0.5, 0.7, 0, 0.9)
			got := geometry.ElbowFlexion(shoulder, elbow, straightWrist)

			Convey("Then the angle should be 180 degrees", func() {
				So(got.Valid, ShouldBeTrue)
				So(got.Degrees, ShouldAlmostEqual, 180, 1e-9)
			})
		})

		Convey("When the wrist is barely visible", func() {
			got := geometry.ElbowFlexion(shoulder, elbow, lm(0.7, 0.5, 0, 0.1))

			Convey("Then the reading should be unavailable", func() {
				So(got.Valid, ShouldBeFalse)
			})
		})
	})
}

func TestPlanarDistance(t *testing.T) {
	Convey("Given two landmarks at different depths", t, func() {
		a := lm(0.3, 0.4, 0.9, 1)
		b := lm(0.6, 0.8, -0.2, 1)

		Convey("When measuring the planar distance", func() {
			got := geometry.PlanarDistance(a, b)

			Convey("Then depth should be ignored", func() {
				So(got, ShouldAlmostEqual, 0.5, 1e-9)
			})
		})
	})
}
