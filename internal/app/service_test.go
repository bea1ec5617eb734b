package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/flexflow/flexflow/internal/app"
	"github.com/flexflow/flexflow/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// waitUntil polls cond until it holds or the deadline passes.
func waitUntil(cond func() bool) bool {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return false
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithSmoothingWindow(8),
			service.WithSyntheticFPS(60),
			service.WithIdlePoll(time.Millisecond),
			service.WithPublishInterval(10*time.Millisecond),
			service.WithFrameMaxWidth(320),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
		})
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
			})

			Convey("And it should be marked as started", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
			})
		})
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When stopping the service", func() {
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, false)
			})

			Convey("And new sessions should be rejected", func() {
				_, err := svc.StartSession(ctx, "after-stop")
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})
	})
}

func TestService_SessionLifecycle(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(
			service.WithIdlePoll(time.Millisecond),
			service.WithPublishInterval(5*time.Millisecond),
		)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When starting a session without an ID", func() {
			id, err := svc.StartSession(ctx, "")

			Convey("Then a UUID is generated for it", func() {
				So(err, ShouldBeNil)
				So(id, ShouldNotBeEmpty)
				So(svc.Sessions(ctx), ShouldContain, id)
			})
		})

		Convey("When starting a session with an explicit ID", func() {
			id, err := svc.StartSession(ctx, "pt-demo")

			Convey("Then that ID is used", func() {
				So(err, ShouldBeNil)
				So(id, ShouldEqual, "pt-demo")
			})

			Convey("And its metrics snapshot is readable", func() {
				So(err, ShouldBeNil)
				_, merr := svc.Metrics(ctx, "pt-demo")
				So(merr, ShouldBeNil)
			})

			Convey("And its hub is reachable", func() {
				So(err, ShouldBeNil)
				hub, herr := svc.Hub(ctx, "pt-demo")
				So(herr, ShouldBeNil)
				So(hub, ShouldNotBeNil)
				So(hub.Subscribers(), ShouldEqual, 0)
			})
		})

		Convey("When stopping a running session", func() {
			_, err := svc.StartSession(ctx, "to-stop")
			So(err, ShouldBeNil)

			serr := svc.StopSession(ctx, "to-stop")

			Convey("Then it disappears from the registry", func() {
				So(serr, ShouldBeNil)
				So(svc.Sessions(ctx), ShouldNotContain, "to-stop")
			})

			Convey("And its metrics are no longer served", func() {
				So(serr, ShouldBeNil)
				_, merr := svc.Metrics(ctx, "to-stop")
				So(errors.Is(merr, service.ErrSessionNotFound), ShouldBeTrue)
			})
		})

		Convey("When stopping an unknown session", func() {
			err := svc.StopSession(ctx, "never-started")

			Convey("Then it reports not found", func() {
				So(errors.Is(err, service.ErrSessionNotFound), ShouldBeTrue)
			})
		})

		Convey("When reading metrics for an unknown session", func() {
			_, err := svc.Metrics(ctx, "never-started")

			Convey("Then it reports not found", func() {
				So(errors.Is(err, service.ErrSessionNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestService_SessionReplacement(t *testing.T) {
	Convey("Given a service with a running session", t, func() {
		svc := service.New(
			service.WithIdlePoll(time.Millisecond),
			service.WithPublishInterval(5*time.Millisecond),
		)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		_, err := svc.StartSession(ctx, "replace-me")
		So(err, ShouldBeNil)

		Convey("When the same ID is started again", func() {
			id, rerr := svc.StartSession(ctx, "replace-me")

			Convey("Then the successor runs under the same ID", func() {
				So(rerr, ShouldBeNil)
				So(id, ShouldEqual, "replace-me")
				So(len(svc.Sessions(ctx)), ShouldEqual, 1)
			})

			Convey("And the fresh pipeline starts from the default snapshot", func() {
				So(rerr, ShouldBeNil)
				// The successor's board is new; it converges again from scratch.
				ok := waitUntil(func() bool {
					snap, merr := svc.Metrics(ctx, "replace-me")
					return merr == nil && !snap.IsUpperBodyOnly
				})
				So(ok, ShouldBeTrue)
			})
		})
	})
}

func TestService_GetStats(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()

		Convey("When getting stats before starting", func() {
			stats := svc.GetStats()

			Convey("Then it should return basic stats", func() {
				So(stats, ShouldNotBeNil)
				So(stats["started"], ShouldEqual, false)
				So(stats["active_sessions"], ShouldEqual, 0)
			})
		})
	})
}
