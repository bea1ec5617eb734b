package framecell_test

import (
	"context"
	"sync"
	"testing"

	framecell "github.com/flexflow/flexflow/internal/adapters/framecell"
	model "github.com/flexflow/flexflow/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func frame(seq uint64) model.Frame {
	return model.Frame{Seq: seq, Width: 2, Height: 2, Data: make([]byte, 12), TimestampUS: int64(seq) * 33_000}
}

func TestCellPutTake(t *testing.T) {
	Convey("Given an empty cell", t, func() {
		cell := framecell.NewInMemoryCell()
		ctx := context.Background()

		Convey("When taking from it", func() {
			_, ok := cell.Take(ctx)

			Convey("Then nothing should be pending", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When putting one frame and taking it", func() {
			So(cell.Put(ctx, frame(1)), ShouldBeTrue)
			got, ok := cell.Take(ctx)

			Convey("Then the same frame should come back", func() {
				So(ok, ShouldBeTrue)
				So(got.Seq, ShouldEqual, 1)
			})

			Convey("And the cell should be empty again", func() {
				_, again := cell.Take(ctx)
				So(again, ShouldBeFalse)
			})
		})
	})
}

func TestCellOverwrite(t *testing.T) {
	Convey("Given a cell with an unconsumed frame", t, func() {
		cell := framecell.NewInMemoryCell()
		ctx := context.Background()
		So(cell.Put(ctx, frame(1)), ShouldBeTrue)

		Convey("When newer frames arrive before the consumer catches up", func() {
			So(cell.Put(ctx, frame(2)), ShouldBeTrue)
			So(cell.Put(ctx, frame(3)), ShouldBeTrue)

			Convey("Then only the most recent frame should be taken", func() {
				got, ok := cell.Take(ctx)
				So(ok, ShouldBeTrue)
				So(got.Seq, ShouldEqual, 3)
			})

			Convey("And the displaced frames should be counted as drops", func() {
				stats := cell.Stats()
				So(stats.Delivered, ShouldEqual, 3)
				So(stats.Dropped, ShouldEqual, 2)
				So(stats.ConsecutiveDrops, ShouldEqual, 2)
			})

			Convey("And a take should reset the consecutive counter", func() {
				_, _ = cell.Take(ctx)
				stats := cell.Stats()
				So(stats.Consumed, ShouldEqual, 1)
				So(stats.ConsecutiveDrops, ShouldEqual, 0)
				So(stats.LastConsumedSeq, ShouldEqual, 3)
			})
		})
	})
}

func TestCellClose(t *testing.T) {
	Convey("Given a cell holding a frame", t, func() {
		cell := framecell.NewInMemoryCell()
		ctx := context.Background()
		So(cell.Put(ctx, frame(9)), ShouldBeTrue)

		Convey("When closing it", func() {
			So(cell.Close(), ShouldBeNil)

			Convey("Then new frames should be rejected", func() {
				So(cell.Put(ctx, frame(10)), ShouldBeFalse)
				So(cell.IsClosed(), ShouldBeTrue)
			})

			Convey("And the pending frame should still drain", func() {
				got, ok := cell.Take(ctx)
				So(ok, ShouldBeTrue)
				So(got.Seq, ShouldEqual, 9)
			})

			Convey("And closing again should be a no-op", func() {
				So(cell.Close(), ShouldBeNil)
			})
		})
	})
}

func TestCellConcurrency(t *testing.T) {
	Convey("Given a producer racing a consumer", t, func() {
		cell := framecell.NewInMemoryCell()
		ctx := context.Background()
		const total = 500

		var wg sync.WaitGroup
		wg.Add(2)

		var consumed []uint64
		go func() {
			defer wg.Done()
			for i := 1; i <= total; i++ {
				cell.Put(ctx, frame(uint64(i)))
			}
		}()
		go func() {
			defer wg.Done()
			for {
				f, ok := cell.Take(ctx)
				if ok {
					consumed = append(consumed, f.Seq)
					if f.Seq == total {
						return
					}
				}
			}
		}()
		wg.Wait()

		Convey("When both finish", func() {
			stats := cell.Stats()

			Convey("Then accounting should balance", func() {
				So(stats.Delivered, ShouldEqual, total)
				// The consumer exits on the final frame, so nothing is pending.
				So(stats.Consumed+stats.Dropped, ShouldEqual, stats.Delivered)
			})

			Convey("And consumed sequence numbers should be strictly increasing", func() {
				for i := 1; i < len(consumed); i++ {
					So(consumed[i], ShouldBeGreaterThan, consumed[i-1])
				}
			})

			Convey("And the final consumed frame should be the most recent", func() {
				So(consumed[len(consumed)-1], ShouldEqual, total)
			})
		})
	})
}
