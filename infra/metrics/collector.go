package metrics

import (
	"context"

	"github.com/kilianp07/taxifare/core/events"
	coremetrics "github.com/kilianp07/taxifare/core/metrics"
	"github.com/kilianp07/taxifare/infra/logger"
	"github.com/kilianp07/taxifare/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and forwards fare events
// to sink. It returns once the subscription is registered; the collector
// stops when ctx is canceled or the bus is closed. Sink errors are logged.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink, log logger.Logger) {
	if bus == nil || sink == nil {
		return
	}
	if log == nil {
		log = logger.NopLogger{}
	}
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
				if err := dispatch(sink, ev); err != nil {
					log.Warnf("metrics sink: %v", err)
				}
			}
		}
	}()
}

func dispatch(sink coremetrics.MetricsSink, ev eventbus.Event) error {
	switch e := ev.(type) {
	case events.PredictionEvent:
		return sink.RecordPrediction(e)
	case events.RenderEvent:
		if r, ok := sink.(coremetrics.RenderRecorder); ok {
			return r.RecordRender(e)
		}
	case events.ModelLoadEvent:
		if r, ok := sink.(coremetrics.ModelLoadRecorder); ok {
			return r.RecordModelLoad(e)
		}
	}
	return nil
}
