package predictionlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kilianp07/taxifare/core/events"
	"github.com/kilianp07/taxifare/internal/eventbus"
)

func TestStartRecorder(t *testing.T) {
	store, err := NewJSONLStore(filepath.Join(t.TempDir(), "p.jsonl"))
	require.NoError(t, err)
	bus := eventbus.New()
	defer bus.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartRecorder(ctx, bus, store, nil)
	bus.Publish(events.RenderEvent{SessionID: "s1"})
	bus.Publish(events.PredictionEvent{ID: "p1", SessionID: "s1", Outcome: events.OutcomeOK, Fare: 24.57, Time: time.Now()})

	require.Eventually(t, func() bool {
		out, err := store.Query(context.Background(), LogQuery{})
		return err == nil && len(out) == 1 && out[0].ID == "p1"
	}, time.Second, 10*time.Millisecond)
}
