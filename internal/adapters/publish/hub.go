package publish

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/flexflow/flexflow/pkg/logger"
	"github.com/flexflow/flexflow/pkg/metrics"
)

const (
	defaultSendBuffer = 8
	defaultWriteWait  = 5 * time.Second
	pingPeriod        = 30 * time.Second
	maxInboundBytes   = 512
)

// totalSubscribers counts observers across every hub; the subscriber gauge
// is process-wide while hubs are per session.
var totalSubscribers atomic.Int64

// subscriber is one attached observer connection with its outbound queue.
type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans events out to attached WebSocket observers. A slow subscriber
// drops events rather than stalling the publisher.
type Hub struct {
	mu         sync.Mutex
	subs       map[*subscriber]struct{}
	sendBuffer int
	writeWait  time.Duration
	closed     bool
	log        logger.Logger
}

// NewHub creates an empty hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		subs:       make(map[*subscriber]struct{}),
		sendBuffer: defaultSendBuffer,
		writeWait:  defaultWriteWait,
		log:        logger.Get().Named("publish"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Attach registers an upgraded connection and starts its read/write pumps.
// The hub owns the connection from here on.
func (h *Hub) Attach(conn *websocket.Conn) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrClosed
	}
	sub := &subscriber{conn: conn, send: make(chan []byte, h.sendBuffer)}
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	metrics.UpdateObserverSubscribers(int(totalSubscribers.Add(1)))
	go h.writePump(sub)
	go h.readPump(sub)
	return nil
}

// Publish implements Publisher. Events are queued per subscriber without
// blocking; a full queue drops the event for that subscriber only.
func (h *Hub) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrClosed
	}
	dropped := 0
	for sub := range h.subs {
		select {
		case sub.send <- data:
		default:
			dropped++
		}
	}
	h.mu.Unlock()

	if dropped > 0 {
		metrics.RecordErrorByComponent("publish", "slow_subscriber")
		h.log.Debug(ctx, "dropped event for slow subscribers",
			logger.String("session", ev.SessionID),
			logger.Int("subscribers", dropped))
	}
	return nil
}

// Close implements Publisher. Attached connections are closed; attaching
// afterwards is rejected.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	subs := make([]*subscriber, 0, len(h.subs))
	for sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		h.detach(sub)
	}
	return nil
}

// Subscribers reports the number of attached observers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// detach removes sub from the hub and closes its queue. Idempotent; the
// pumps close the network connection themselves.
func (h *Hub) detach(sub *subscriber) {
	h.mu.Lock()
	if _, ok := h.subs[sub]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.subs, sub)
	close(sub.send)
	h.mu.Unlock()

	metrics.UpdateObserverSubscribers(int(totalSubscribers.Add(-1)))
}

func (h *Hub) writePump(sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.detach(sub)
		_ = sub.conn.Close()
	}()

	for {
		select {
		case data, ok := <-sub.send:
			if !ok {
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
				_ = sub.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(h.writeWait))
				return
			}
			_ = sub.conn.SetWriteDeadline(time.Now().Add(h.writeWait))
			if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(h.writeWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound data; it exists to process control frames and
// to notice when the peer goes away.
func (h *Hub) readPump(sub *subscriber) {
	defer func() {
		h.detach(sub)
		_ = sub.conn.Close()
	}()

	sub.conn.SetReadLimit(maxInboundBytes)
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}
