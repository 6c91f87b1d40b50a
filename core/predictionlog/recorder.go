package predictionlog

import (
	"context"

	"github.com/kilianp07/taxifare/core/events"
	"github.com/kilianp07/taxifare/core/logger"
	"github.com/kilianp07/taxifare/internal/eventbus"
)

// StartRecorder appends every prediction event seen on bus to store until
// ctx is canceled or the bus is closed. Append failures are logged only.
func StartRecorder(ctx context.Context, bus eventbus.EventBus, store LogStore, log logger.Logger) {
	if bus == nil || store == nil {
		return
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
				pe, ok := ev.(events.PredictionEvent)
				if !ok {
					continue
				}
				if err := store.Append(ctx, FromEvent(pe)); err != nil && log != nil {
					log.Warnf("prediction log append: %v", err)
				}
			}
		}
	}()
}
