package session

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/taxifare/core/display"
	"github.com/kilianp07/taxifare/core/features"
	"github.com/kilianp07/taxifare/core/geo"
	"github.com/kilianp07/taxifare/core/model"
	"github.com/kilianp07/taxifare/core/prediction"
)

// CacheState reports whether a session holds a cached fare.
type CacheState int

const (
	Idle CacheState = iota
	HasResult
)

func (c CacheState) String() string {
	if c == HasResult {
		return "has_result"
	}
	return "idle"
}

// Attempt describes the explicit predict action of one render.
type Attempt struct {
	Fare    float64
	Latency time.Duration
	Err     error
}

// Succeeded reports whether the attempt produced a fare.
func (a *Attempt) Succeeded() bool { return a != nil && a.Err == nil }

// View is everything a display sink needs after one render cycle.
type View struct {
	SessionID  string            `json:"session_id"`
	Request    model.TripRequest `json:"request"`
	DistanceKm float64           `json:"distance_km"`
	Features   features.Record   `json:"features"`
	LastFare   *float64          `json:"fare"`
	FareText   string            `json:"fare_text"`
	Map        display.MapView   `json:"map"`
	// ModelErr is set when the model is unavailable. It is display-only:
	// the rest of the view is still valid.
	ModelErr error    `json:"-"`
	Attempt  *Attempt `json:"-"`
}

// Session holds the prediction cache of one user. It is not safe for
// concurrent use; Manager serializes access per session ID.
type Session struct {
	id       string
	handle   *prediction.Handle
	lastFare *float64
	updated  time.Time
	count    int
	now      func() time.Time
}

// New returns a session in the Idle state.
func New(id string, h *prediction.Handle) *Session {
	return &Session{id: id, handle: h, now: time.Now}
}

// Restore rebuilds a session from its persisted snapshot.
func Restore(id string, h *prediction.Handle, snap Snapshot) *Session {
	s := New(id, h)
	if snap.LastFare != nil {
		f := *snap.LastFare
		s.lastFare = &f
	}
	s.updated = snap.UpdatedAt
	s.count = snap.Predictions
	return s
}

func (s *Session) ID() string { return s.id }

// State returns Idle until the first successful prediction.
func (s *Session) State() CacheState {
	if s.lastFare == nil {
		return Idle
	}
	return HasResult
}

// LastFare returns a copy of the cached fare, or nil.
func (s *Session) LastFare() *float64 {
	if s.lastFare == nil {
		return nil
	}
	f := *s.lastFare
	return &f
}

// Snapshot returns the persisted form of the cache.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{LastFare: s.LastFare(), UpdatedAt: s.updated, Predictions: s.count}
}

// Predict runs the model on rec. A successful result overwrites the cache;
// a failure leaves it untouched. Without a loaded model it returns the load
// error, which wraps prediction.ErrModelNotFound.
func (s *Session) Predict(ctx context.Context, rec features.Record) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	fare, err := s.handle.Predict(rec)
	if err != nil {
		return 0, err
	}
	s.lastFare = &fare
	s.updated = s.now()
	s.count++
	return fare, nil
}

// Render runs one render cycle. Distance and features are always computed;
// the model is only invoked when predictNow is set. An unavailable model is
// reported in View.ModelErr and is not an error. Inference failures are
// returned unchanged together with the view built so far.
func (s *Session) Render(ctx context.Context, req model.TripRequest, predictNow bool) (View, error) {
	dist := geo.DistanceKm(req.Pickup, req.Dropoff)
	rec := features.Build(req, dist)
	v := View{
		SessionID:  s.id,
		Request:    req,
		DistanceKm: dist,
		Features:   rec,
		Map:        display.NewMapView(req.Pickup, req.Dropoff),
	}
	if !s.handle.Available() {
		v.ModelErr = s.modelErr()
	}

	var err error
	if predictNow {
		start := s.now()
		a := &Attempt{}
		if v.ModelErr != nil {
			a.Err = v.ModelErr
		} else {
			a.Fare, a.Err = s.Predict(ctx, rec)
			if a.Err != nil {
				err = a.Err
			}
		}
		a.Latency = s.now().Sub(start)
		v.Attempt = a
	}

	v.LastFare = s.LastFare()
	v.FareText = display.FareText(v.LastFare)
	return v, err
}

func (s *Session) modelErr() error {
	if s.handle != nil && s.handle.Err() != nil {
		return s.handle.Err()
	}
	return prediction.ErrModelNotFound
}

// IsModelUnavailable reports whether err means no model could be loaded.
func IsModelUnavailable(err error) bool {
	return errors.Is(err, prediction.ErrModelNotFound)
}
