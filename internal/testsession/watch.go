package testsession

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

// watchLandmarks subscribes to every session's landmark feed for the watch
// window, counting events and checking the wire shape. The feed is lossy by
// design; the check is that events arrive, carry 33 points, and respect the
// publish throttle, not that every frame shows up.
func watchLandmarks(ctx context.Context, config *Config, ids []string, stats *Stats) error {
	log.Printf("👀 Watching %d landmark feeds for %s...", len(ids), config.Watch)

	wsBase := strings.Replace(config.BaseURL, "http", "ws", 1)
	maxExpected := int(config.Watch/PublishInterval) + ThrottleSlack

	var total int64
	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			count, err := watchSingleFeed(gctx, wsBase, id, config.Watch)
			if err != nil {
				return fmt.Errorf("feed %s: %w", id, err)
			}
			if count == 0 {
				return fmt.Errorf("feed %s: no landmark events during watch window", id)
			}
			if count > maxExpected {
				log.Printf("⚠️  Feed %s delivered %d events; throttle allows about %d", id, count, maxExpected)
			}
			if config.Verbose {
				log.Printf("📡 Feed %s: %d events", id, count)
			}
			atomic.AddInt64(&total, int64(count))
			return nil
		})
	}
	err := g.Wait()

	stats.LandmarkEvents = int(atomic.LoadInt64(&total))
	if err != nil {
		return err
	}

	log.Printf("✅ Landmark feeds delivered %d events", stats.LandmarkEvents)
	return nil
}

// watchSingleFeed reads one session's feed until the window elapses and
// returns how many well-formed events arrived.
func watchSingleFeed(ctx context.Context, wsBase, id string, window time.Duration) (int, error) {
	url := fmt.Sprintf("%s/ws/landmarks/%s", wsBase, id)
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return 0, fmt.Errorf("dial failed: %w", err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	defer func() { _ = conn.Close() }()

	deadline := time.Now().Add(window)
	count := 0
	for {
		if err := conn.SetReadDeadline(deadline); err != nil {
			return count, fmt.Errorf("setting read deadline: %w", err)
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			// The deadline ends the watch; anything read so far counts.
			if time.Now().After(deadline) {
				return count, nil
			}
			return count, fmt.Errorf("read failed: %w", err)
		}

		var ev landmarkEvent
		if err := unmarshalJSON(data, &ev); err != nil {
			return count, fmt.Errorf("malformed event: %w", err)
		}
		if len(ev.Landmarks) != ExpectedLandmarks {
			return count, fmt.Errorf("event carried %d landmarks, want %d", len(ev.Landmarks), ExpectedLandmarks)
		}
		if ev.SessionID != id {
			return count, fmt.Errorf("event for session %s on feed %s", ev.SessionID, id)
		}
		count++
	}
}
