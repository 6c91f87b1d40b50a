package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/taxifare/core/display"
	"github.com/kilianp07/taxifare/core/events"
	"github.com/kilianp07/taxifare/core/features"
	coremon "github.com/kilianp07/taxifare/core/monitoring"
	coremqtt "github.com/kilianp07/taxifare/core/mqtt"
	"github.com/kilianp07/taxifare/infra/logger"
	"github.com/kilianp07/taxifare/internal/eventbus"
)

// FarePublisher publishes successful fare predictions on
// <topic_prefix>/<session_id>/fare.
type FarePublisher struct {
	cli        pahoClient
	prefix     string
	qos        byte
	retain     bool
	maxRetries int
	backoff    time.Duration
	timeout    time.Duration
	logger     logger.Logger
}

// FareMessage is the JSON payload sent for each prediction.
type FareMessage struct {
	SessionID    string          `json:"session_id"`
	Fare         float64         `json:"fare"`
	FareText     string          `json:"fare_text"`
	Features     features.Record `json:"features"`
	ModelVersion string          `json:"model_version,omitempty"`
	Timestamp    int64           `json:"timestamp"`
}

// NewFarePublisher connects to the broker.
func NewFarePublisher(cfg Config) (*FarePublisher, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	p := &FarePublisher{
		prefix:     cfg.TopicPrefix,
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		timeout:    time.Duration(cfg.TimeoutMS) * time.Millisecond,
		logger:     log,
	}
	if p.prefix == "" {
		p.prefix = "taxifare"
	}
	if p.maxRetries <= 0 {
		p.maxRetries = 3
	}
	if p.backoff <= 0 {
		p.backoff = 100 * time.Millisecond
	}
	if p.timeout <= 0 {
		p.timeout = 5 * time.Second
	}
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected")
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	p.cli = c
	return p, nil
}

// Topic returns the fare topic of a session.
func Topic(prefix, sessionID string) string {
	return fmt.Sprintf("%s/%s/fare", prefix, sessionID)
}

// PublishFare sends the event, retrying with exponential backoff. The final
// error is reported to the monitor.
func (p *FarePublisher) PublishFare(ev events.PredictionEvent) error {
	if ev.SessionID == "" {
		return coremqtt.ErrNoSession
	}
	fare := ev.Fare
	msg := FareMessage{
		SessionID:    ev.SessionID,
		Fare:         fare,
		FareText:     display.FareText(&fare),
		Features:     ev.Features,
		ModelVersion: ev.ModelVersion,
		Timestamp:    ev.Time.UnixMilli(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	topic := Topic(p.prefix, ev.SessionID)

	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qos, p.retain, payload)
		if !token.WaitTimeout(p.timeout) {
			publishErr = coremqtt.ErrPublishTimeout
		} else {
			publishErr = token.Error()
		}
		if publishErr == nil {
			p.logger.Debugf("published fare for session %s", ev.SessionID)
			return nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	coremon.CaptureException(publishErr, map[string]string{
		"module":     "mqtt",
		"session_id": ev.SessionID,
		"topic":      topic,
	})
	return publishErr
}

// Start subscribes to the bus and publishes every successful prediction
// until ctx is canceled or the bus is closed.
func (p *FarePublisher) Start(ctx context.Context, bus eventbus.EventBus) {
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				pe, ok := ev.(events.PredictionEvent)
				if !ok || pe.Outcome != events.OutcomeOK {
					continue
				}
				if err := p.PublishFare(pe); err != nil {
					p.logger.Warnf("fare not published: %v", err)
				}
			}
		}
	}()
}

// Disconnect gracefully closes the MQTT connection.
func (p *FarePublisher) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}

var _ coremqtt.Publisher = (*FarePublisher)(nil)
