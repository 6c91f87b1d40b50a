package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/taxifare/core/events"
	"github.com/kilianp07/taxifare/core/logger"
	"github.com/kilianp07/taxifare/core/model"
	"github.com/kilianp07/taxifare/core/monitoring"
	"github.com/kilianp07/taxifare/core/prediction"
	"github.com/kilianp07/taxifare/internal/eventbus"
)

// Manager renders sessions on behalf of many users.
type Manager struct {
	handle *prediction.Handle
	store  Store
	bus    eventbus.EventBus
	log    logger.Logger
	now    func() time.Time
	locks  keyedMutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithBus publishes render and prediction events on bus.
func WithBus(bus eventbus.EventBus) Option {
	return func(m *Manager) { m.bus = bus }
}

// WithLogger sets the manager logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager returns a Manager sharing h across all sessions. A nil store
// defaults to a MemoryStore and a nil handle behaves as an unavailable model.
func NewManager(h *prediction.Handle, store Store, opts ...Option) *Manager {
	if store == nil {
		store = NewMemoryStore()
	}
	if h == nil {
		h = prediction.NewHandle(nil, prediction.Artifact{})
	}
	m := &Manager{
		handle: h,
		store:  store,
		log:    nopLogger{},
		now:    time.Now,
		locks:  keyedMutex{locks: map[string]*lockEntry{}},
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Handle returns the shared model handle.
func (m *Manager) Handle() *prediction.Handle { return m.handle }

// NewSessionID returns a fresh random session identifier.
func (m *Manager) NewSessionID() string { return uuid.NewString() }

// Render loads the session cache, runs one render cycle and saves the cache
// back. Calls for the same sessionID are serialized. Inference errors are
// reported to the monitor and returned unchanged.
func (m *Manager) Render(ctx context.Context, sessionID string, req model.TripRequest, predictNow bool) (View, error) {
	if sessionID == "" {
		return View{}, fmt.Errorf("session id required")
	}
	unlock := m.locks.lock(sessionID)
	defer unlock()

	snap, _, err := m.store.Load(ctx, sessionID)
	if err != nil {
		return View{}, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	s := Restore(sessionID, m.handle, snap)
	s.now = m.now

	view, renderErr := s.Render(ctx, req, predictNow)

	// Every render saves so store expiry counts from the last render.
	if err := m.store.Save(ctx, sessionID, s.Snapshot()); err != nil {
		m.log.Errorf("save session %s: %v", sessionID, err)
		monitoring.CaptureException(err, map[string]string{"module": "session", "session_id": sessionID})
	}

	m.publish(events.RenderEvent{
		SessionID:        sessionID,
		PredictRequested: predictNow,
		HasResult:        view.LastFare != nil,
		DistanceKm:       view.DistanceKm,
		Time:             m.now(),
	})
	if view.Attempt != nil {
		m.publish(m.predictionEvent(view))
	}

	if renderErr != nil {
		if prediction.IsInferenceError(renderErr) {
			m.log.Errorf("session %s: %v", sessionID, renderErr)
			monitoring.CaptureException(renderErr, map[string]string{
				"module":     "session",
				"session_id": sessionID,
				"model":      m.handle.Artifact().Type,
			})
		}
		return view, renderErr
	}
	return view, nil
}

// Close closes the underlying store.
func (m *Manager) Close() error { return m.store.Close() }

func (m *Manager) predictionEvent(v View) events.PredictionEvent {
	a := v.Attempt
	ev := events.PredictionEvent{
		ID:           uuid.NewString(),
		SessionID:    v.SessionID,
		Request:      v.Request,
		Features:     v.Features,
		Latency:      a.Latency,
		ModelVersion: m.handle.Artifact().Version,
		Time:         m.now(),
	}
	switch {
	case a.Err == nil:
		ev.Outcome = events.OutcomeOK
		ev.Fare = a.Fare
	case IsModelUnavailable(a.Err):
		ev.Outcome = events.OutcomeModelUnavailable
		ev.Error = a.Err.Error()
	default:
		ev.Outcome = events.OutcomeInferenceError
		ev.Error = a.Err.Error()
	}
	return ev
}

func (m *Manager) publish(ev eventbus.Event) {
	if m.bus != nil {
		m.bus.Publish(ev)
	}
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// keyedMutex hands out one mutex per key and forgets it once unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &lockEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
