package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/flexflow/flexflow/pkg/logger"
	"github.com/flexflow/flexflow/pkg/metrics"
)

const (
	defaultConnectTimeout = 5 * time.Second
	defaultPublishTimeout = 2 * time.Second
	disconnectGraceMS     = 250
)

// MQTT publishes events to an MQTT broker, one topic per session
// (<topic>/<session_id>). Used when an external system consumes landmarks
// outside the process, e.g. a recording sink.
type MQTT struct {
	broker         string
	topic          string
	clientID       string
	connectTimeout time.Duration
	publishTimeout time.Duration

	mu        sync.RWMutex
	client    mqtt.Client
	connected bool
	log       logger.Logger
}

// NewMQTT creates an MQTT publisher. Call Connect before publishing.
func NewMQTT(broker, topic string, opts ...MQTTOption) *MQTT {
	p := &MQTT{
		broker:         broker,
		topic:          topic,
		clientID:       "flexflow-" + uuid.NewString(),
		connectTimeout: defaultConnectTimeout,
		publishTimeout: defaultPublishTimeout,
		log:            logger.Get().Named("mqtt"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Connect establishes the broker connection with automatic reconnects.
func (p *MQTT) Connect(ctx context.Context) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", p.broker))
	opts.SetClientID(p.clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = func(mqtt.Client) {
		p.mu.Lock()
		p.connected = true
		p.mu.Unlock()
		p.log.Info(context.Background(), "mqtt connection established",
			logger.String("broker", p.broker),
			logger.String("clientID", p.clientID))
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		p.mu.Lock()
		p.connected = false
		p.mu.Unlock()
		metrics.RecordErrorByComponent("publish", "mqtt_connection_lost")
		p.log.Warn(context.Background(), "mqtt connection lost, will auto-reconnect",
			logger.Error(err),
			logger.String("broker", p.broker))
	}

	p.mu.Lock()
	p.client = mqtt.NewClient(opts)
	client := p.client
	p.mu.Unlock()

	p.log.Info(ctx, "connecting to mqtt broker", logger.String("broker", p.broker))

	token := client.Connect()
	if !token.WaitTimeout(p.connectTimeout) {
		return fmt.Errorf("mqtt connect: %w", ErrPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}

	p.mu.Lock()
	p.connected = true
	p.mu.Unlock()
	return nil
}

// Publish implements Publisher.
func (p *MQTT) Publish(ctx context.Context, ev Event) error {
	p.mu.RLock()
	client, connected := p.client, p.connected
	p.mu.RUnlock()

	if client == nil || !connected {
		return ErrNotConnected
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	topic := fmt.Sprintf("%s/%s", p.topic, ev.SessionID)
	token := client.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(p.publishTimeout) {
		return ErrPublishTimeout
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish: %w", err)
	}

	p.log.Debug(ctx, "event published",
		logger.String("topic", topic),
		logger.Int("size", len(payload)))
	return nil
}

// Close implements Publisher.
func (p *MQTT) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(disconnectGraceMS)
		p.log.Info(context.Background(), "mqtt disconnected")
	}
	p.connected = false
	return nil
}
