package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/taxifare/core/events"
	"github.com/kilianp07/taxifare/core/features"
)

type lineRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (l *lineRecorder) handler(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	l.mu.Lock()
	l.lines = append(l.lines, strings.TrimSpace(string(data)))
	l.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (l *lineRecorder) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

func TestInfluxSink_RecordPrediction(t *testing.T) {
	rec := &lineRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()
	now := time.Now()
	ev := events.PredictionEvent{
		SessionID:    "s1",
		Features:     features.Record{PassengerCount: 2, Hour: 14, DayOfWeek: 5, IsWeekend: true, DistanceKm: 14.8398},
		Fare:         24.5712,
		Outcome:      events.OutcomeOK,
		ModelVersion: "v1",
		Latency:      1500 * time.Microsecond,
		Time:         now,
	}
	require.NoError(t, sink.RecordPrediction(ev))

	lines := rec.all()
	require.Len(t, lines, 1)
	line := lines[0]
	assert.True(t, strings.HasPrefix(line, "fare_prediction,"), line)
	assert.Contains(t, line, "outcome=ok")
	assert.Contains(t, line, "weekend=true")
	assert.Contains(t, line, "model_version=v1")
	assert.Contains(t, line, "fare=24.571")
	assert.Contains(t, line, "distance_km=14.84")
	assert.Contains(t, line, "passenger_count=2i")
	assert.Contains(t, line, "latency_ms=1.5")
	assert.NotContains(t, line, "error=")
	assert.True(t, strings.HasSuffix(line, " "+strconv.FormatInt(now.UnixNano(), 10)), line)
}

func TestInfluxSink_RecordPredictionError(t *testing.T) {
	rec := &lineRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()
	ev := events.PredictionEvent{
		Outcome: events.OutcomeInferenceError,
		Error:   "width mismatch",
		Time:    time.Now(),
	}
	require.NoError(t, sink.RecordPrediction(ev))
	lines := rec.all()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "outcome=inference_error")
	assert.Contains(t, lines[0], `error="width mismatch"`)
	assert.NotContains(t, lines[0], "model_version=")
}

func TestInfluxSink_RecordModelLoad(t *testing.T) {
	rec := &lineRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()
	require.NoError(t, sink.RecordModelLoad(events.ModelLoadEvent{
		Path: "data/model.yaml", Type: "linear", Version: "v1", State: "loaded", Time: time.Now(),
	}))
	lines := rec.all()
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "fare_model_load,"), lines[0])
	assert.Contains(t, lines[0], "state=loaded")
	assert.Contains(t, lines[0], `type="linear"`)
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(InfluxConfig{
		URL:    srv.URL + "/api/v2/write",
		Token:  "tok",
		Org:    "org",
		Bucket: "bucket",
	})
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
