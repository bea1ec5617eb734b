package exercise_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/flexflow/flexflow/internal/exercise"
)

func TestLookupResource(t *testing.T) {
	Convey("Given the curated stretch table", t, func() {
		Convey("When looking up a known stretch ID", func() {
			r, ok := exercise.LookupResource("shoulder_cross_body")

			Convey("Then the resource comes back with a derived thumbnail", func() {
				So(ok, ShouldBeTrue)
				So(r.Title, ShouldEqual, "Shoulder Cross-Body Stretch")
				So(r.BodyPart, ShouldEqual, "Shoulder")
				So(r.YouTubeEmbedURL, ShouldEqual, "https://www.youtube.com/embed/Rl4Zudadpc8")
				So(r.ThumbnailURL, ShouldEqual, "https://img.youtube.com/vi/Rl4Zudadpc8/hqdefault.jpg")
				So(r.Description, ShouldContainSubstring, "Hold 20-30 seconds")
			})
		})

		Convey("When looking up an unknown ID", func() {
			_, ok := exercise.LookupResource("does_not_exist")

			Convey("Then nothing is found", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestSearchResources(t *testing.T) {
	Convey("Given the curated stretch table", t, func() {
		Convey("When the query appears in a title", func() {
			r, ok := exercise.SearchResources("cat-cow")

			Convey("Then that stretch is returned", func() {
				So(ok, ShouldBeTrue)
				So(r.ID, ShouldEqual, "cat_cow")
			})
		})

		Convey("When the query matches a body part", func() {
			r, ok := exercise.SearchResources("spine")

			Convey("Then the first stretch for that area is returned", func() {
				So(ok, ShouldBeTrue)
				So(r.ID, ShouldEqual, "cat_cow")
			})
		})

		Convey("When only a single word overlaps a title", func() {
			r, ok := exercise.SearchResources("trapezius release")

			Convey("Then the word-overlap pass finds it", func() {
				So(ok, ShouldBeTrue)
				So(r.ID, ShouldEqual, "upper_trap_stretch")
			})
		})

		Convey("When nothing matches", func() {
			_, ok := exercise.SearchResources("quadricep")

			Convey("Then no resource is returned", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestResourceIDs(t *testing.T) {
	Convey("Given the curated stretch table", t, func() {
		ids := exercise.ResourceIDs()

		Convey("Then every ID resolves and order is stable", func() {
			So(len(ids), ShouldEqual, 10)
			So(ids[0], ShouldEqual, "neck_lateral_flexion")
			for _, id := range ids {
				_, ok := exercise.LookupResource(id)
				So(ok, ShouldBeTrue)
			}
		})
	})
}
