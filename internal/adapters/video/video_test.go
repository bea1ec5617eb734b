package video_test

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/flexflow/flexflow/internal/adapters/video"
	"github.com/flexflow/flexflow/internal/domain/model"
	"github.com/flexflow/flexflow/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestSyntheticSource(t *testing.T) {
	Convey("Given a synthetic source with a frame limit", t, func() {
		src := video.NewSynthetic(
			video.WithFPS(200),
			video.WithDimensions(8, 6),
			video.WithFrameLimit(3),
		)

		Convey("When the stream is consumed", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			frames, err := src.Frames(ctx)
			So(err, ShouldBeNil)

			var got []model.Frame
			for f := range frames {
				got = append(got, f)
			}

			Convey("Then it delivers complete frames with increasing sequence numbers", func() {
				So(got, ShouldHaveLength, 3)
				for i, f := range got {
					So(f.Complete(), ShouldBeTrue)
					So(f.Width, ShouldEqual, 8)
					So(f.Height, ShouldEqual, 6)
					So(f.Seq, ShouldEqual, uint64(i+1))
				}
				So(got[1].TimestampUS, ShouldBeGreaterThan, got[0].TimestampUS)
				So(got[2].TimestampUS, ShouldBeGreaterThan, got[1].TimestampUS)
			})
		})

		Convey("When Frames is called twice", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			_, err := src.Frames(ctx)
			So(err, ShouldBeNil)
			_, err = src.Frames(ctx)

			Convey("Then the second stream is rejected", func() {
				So(err, ShouldEqual, video.ErrAlreadyStreaming)
			})
		})
	})

	Convey("Given a running synthetic source", t, func() {
		src := video.NewSynthetic(video.WithFPS(200), video.WithDimensions(8, 6))
		ctx := context.Background()

		frames, err := src.Frames(ctx)
		So(err, ShouldBeNil)

		Convey("When the source is closed", func() {
			<-frames
			So(src.Close(), ShouldBeNil)

			Convey("Then the channel drains and closing again is harmless", func() {
				for range frames {
				}
				So(src.Close(), ShouldBeNil)
			})
		})
	})
}

func TestDownscale(t *testing.T) {
	Convey("Given a 64x48 frame", t, func() {
		frame := model.Frame{
			Data:        make([]byte, 64*48*3),
			Width:       64,
			Height:      48,
			TimestampUS: 1_000_000,
			Seq:         7,
		}
		for i := range frame.Data {
			frame.Data[i] = byte(i % 251)
		}

		Convey("When scaled to a 32 pixel limit", func() {
			out := video.Downscale(frame, 32)

			Convey("Then the aspect ratio and metadata survive", func() {
				So(out.Width, ShouldEqual, 32)
				So(out.Height, ShouldEqual, 24)
				So(out.Complete(), ShouldBeTrue)
				So(out.TimestampUS, ShouldEqual, frame.TimestampUS)
				So(out.Seq, ShouldEqual, frame.Seq)
			})
		})

		Convey("When the frame is already within the limit", func() {
			out := video.Downscale(frame, 64)

			Convey("Then it passes through untouched", func() {
				So(out.Width, ShouldEqual, 64)
				So(out.Height, ShouldEqual, 48)
				So(&out.Data[0], ShouldEqual, &frame.Data[0])
			})
		})

		Convey("When the limit is disabled", func() {
			out := video.Downscale(frame, 0)

			Convey("Then it passes through untouched", func() {
				So(out.Width, ShouldEqual, 64)
			})
		})
	})
}
