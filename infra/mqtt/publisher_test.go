package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/taxifare/core/events"
	"github.com/kilianp07/taxifare/core/features"
	coremqtt "github.com/kilianp07/taxifare/core/mqtt"
	"github.com/kilianp07/taxifare/internal/eventbus"
)

type publishedMsg struct {
	topic   string
	qos     byte
	retain  bool
	payload []byte
}

// mockClient implements pahoClient for tests
type mockClient struct {
	mu          sync.Mutex
	opts        *paho.ClientOptions
	published   []publishedMsg
	publishErrs []error
	timeouts    int
	connectErr  error
}

func (m *mockClient) IsConnected() bool { return true }
func (m *mockClient) Connect() paho.Token {
	if m.connectErr != nil {
		return &dummyToken{err: m.connectErr}
	}
	if m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(nil)
	}
	return &dummyToken{}
}
func (m *mockClient) Disconnect(uint) {}
func (m *mockClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, _ := payload.([]byte)
	m.published = append(m.published, publishedMsg{topic, qos, retained, b})
	if m.timeouts > 0 {
		m.timeouts--
		return &dummyToken{timeout: true}
	}
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &dummyToken{err: err}
	}
	return &dummyToken{}
}

func (m *mockClient) messages() []publishedMsg {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]publishedMsg(nil), m.published...)
}

type dummyToken struct {
	err     error
	timeout bool
}

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return !d.timeout }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }

func withMockClient(t *testing.T, mc *mockClient) {
	t.Helper()
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() {
		newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) }
	})
}

func okEvent() events.PredictionEvent {
	return events.PredictionEvent{
		SessionID:    "s1",
		Features:     features.Record{PassengerCount: 1, Hour: 14, DistanceKm: 14.84},
		Fare:         24.57,
		Outcome:      events.OutcomeOK,
		ModelVersion: "v1",
		Time:         time.UnixMilli(1700000000000),
	}
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "taxifare/abc/fare", Topic("taxifare", "abc"))
}

func TestPublishFare(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	pub, err := NewFarePublisher(Config{Broker: "tcp://localhost:1883", ClientID: "id", TopicPrefix: "fares", QoS: 1, Retain: true})
	require.NoError(t, err)
	defer pub.Disconnect()

	require.NoError(t, pub.PublishFare(okEvent()))
	msgs := mc.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "fares/s1/fare", msgs[0].topic)
	assert.Equal(t, byte(1), msgs[0].qos)
	assert.True(t, msgs[0].retain)

	var got FareMessage
	require.NoError(t, json.Unmarshal(msgs[0].payload, &got))
	assert.Equal(t, "s1", got.SessionID)
	assert.Equal(t, 24.57, got.Fare)
	assert.Equal(t, "Estimated Fare: $24.57", got.FareText)
	assert.Equal(t, 14.84, got.Features.DistanceKm)
	assert.Equal(t, int64(1700000000000), got.Timestamp)
}

func TestPublishFare_DefaultPrefix(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	pub, err := NewFarePublisher(Config{Broker: "tcp://localhost:1883"})
	require.NoError(t, err)
	require.NoError(t, pub.PublishFare(okEvent()))
	assert.Equal(t, "taxifare/s1/fare", mc.messages()[0].topic)
}

func TestPublishFare_NoSession(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	pub, err := NewFarePublisher(Config{Broker: "tcp://localhost:1883"})
	require.NoError(t, err)
	ev := okEvent()
	ev.SessionID = ""
	assert.ErrorIs(t, pub.PublishFare(ev), coremqtt.ErrNoSession)
	assert.Empty(t, mc.messages())
}

func TestPublishFare_Retry(t *testing.T) {
	mc := &mockClient{publishErrs: []error{errors.New("net fail"), nil}}
	withMockClient(t, mc)
	pub, err := NewFarePublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1})
	require.NoError(t, err)
	require.NoError(t, pub.PublishFare(okEvent()))
	assert.Len(t, mc.messages(), 2)
}

func TestPublishFare_Timeout(t *testing.T) {
	mc := &mockClient{timeouts: 2}
	withMockClient(t, mc)
	pub, err := NewFarePublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1, TimeoutMS: 1})
	require.NoError(t, err)
	assert.ErrorIs(t, pub.PublishFare(okEvent()), coremqtt.ErrPublishTimeout)
	assert.Len(t, mc.messages(), 2)
}

func TestNewFarePublisher_ConnectError(t *testing.T) {
	mc := &mockClient{connectErr: errors.New("refused")}
	withMockClient(t, mc)
	_, err := NewFarePublisher(Config{Broker: "tcp://localhost:1883"})
	assert.EqualError(t, err, "refused")
}

func TestFarePublisher_StartPublishesOnlySuccessfulPredictions(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	pub, err := NewFarePublisher(Config{Broker: "tcp://localhost:1883"})
	require.NoError(t, err)

	bus := eventbus.New()
	defer bus.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pub.Start(ctx, bus)

	failed := okEvent()
	failed.Outcome = events.OutcomeInferenceError
	bus.Publish(failed)
	bus.Publish(events.RenderEvent{SessionID: "s1"})
	bus.Publish(okEvent())

	require.Eventually(t, func() bool { return len(mc.messages()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, mc.messages(), 1)
}
