package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/taxifare/core/events"
	"github.com/kilianp07/taxifare/infra/logger"
	"github.com/kilianp07/taxifare/internal/eventbus"
)

type captureSink struct {
	mu          sync.Mutex
	predictions []events.PredictionEvent
	renders     int
	loads       int
}

func (c *captureSink) RecordPrediction(ev events.PredictionEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.predictions = append(c.predictions, ev)
	return nil
}

func (c *captureSink) RecordRender(events.RenderEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renders++
	return nil
}

func (c *captureSink) RecordModelLoad(events.ModelLoadEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loads++
	return nil
}

func (c *captureSink) counts() (int, int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.predictions), c.renders, c.loads
}

func TestStartEventCollector(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	sink := &captureSink{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartEventCollector(ctx, bus, sink, logger.NopLogger{})
	bus.Publish(events.ModelLoadEvent{State: "loaded"})
	bus.Publish(events.RenderEvent{SessionID: "s1", PredictRequested: true})
	bus.Publish(events.PredictionEvent{SessionID: "s1", Fare: 12.5, Outcome: events.OutcomeOK})
	bus.Publish("ignored")

	require.Eventually(t, func() bool {
		p, r, l := sink.counts()
		return p == 1 && r == 1 && l == 1
	}, time.Second, 10*time.Millisecond)
	sink.mu.Lock()
	assert.Equal(t, 12.5, sink.predictions[0].Fare)
	sink.mu.Unlock()
}

func TestStartEventCollector_NilArgs(t *testing.T) {
	StartEventCollector(context.Background(), nil, &captureSink{}, nil)
	StartEventCollector(context.Background(), eventbus.New(), nil, nil)
}
