package publish

import "time"

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithSendBuffer sets the per-subscriber queue depth.
func WithSendBuffer(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.sendBuffer = n
		}
	}
}

// WithWriteWait sets the per-message write deadline.
func WithWriteWait(d time.Duration) HubOption {
	return func(h *Hub) {
		if d > 0 {
			h.writeWait = d
		}
	}
}

// MQTTOption configures an MQTT publisher.
type MQTTOption func(*MQTT)

// WithClientID overrides the generated MQTT client identifier.
func WithClientID(id string) MQTTOption {
	return func(p *MQTT) {
		if id != "" {
			p.clientID = id
		}
	}
}

// WithConnectTimeout sets how long Connect waits for the broker.
func WithConnectTimeout(d time.Duration) MQTTOption {
	return func(p *MQTT) {
		if d > 0 {
			p.connectTimeout = d
		}
	}
}

// WithPublishTimeout sets how long Publish waits for the broker ack.
func WithPublishTimeout(d time.Duration) MQTTOption {
	return func(p *MQTT) {
		if d > 0 {
			p.publishTimeout = d
		}
	}
}
