// Package predictionlog keeps an audit trail of explicit fare predictions.
// Records are appended by a bus subscriber and can be queried by time range,
// session and outcome. Backends: plain JSONL, rotating JSONL and SQLite.
package predictionlog

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/taxifare/core/events"
	"github.com/kilianp07/taxifare/core/features"
)

// LogRecord captures one prediction attempt.
type LogRecord struct {
	ID           string          `json:"id"`
	Timestamp    time.Time       `json:"timestamp"`
	SessionID    string          `json:"session_id"`
	Outcome      events.Outcome  `json:"outcome"`
	Fare         float64         `json:"fare"`
	Features     features.Record `json:"features"`
	ModelVersion string          `json:"model_version,omitempty"`
	LatencyMS    float64         `json:"latency_ms"`
	Error        string          `json:"error,omitempty"`
}

// FromEvent converts a prediction event to a log record.
func FromEvent(ev events.PredictionEvent) LogRecord {
	return LogRecord{
		ID:           ev.ID,
		Timestamp:    ev.Time,
		SessionID:    ev.SessionID,
		Outcome:      ev.Outcome,
		Fare:         ev.Fare,
		Features:     ev.Features,
		ModelVersion: ev.ModelVersion,
		LatencyMS:    float64(ev.Latency.Microseconds()) / 1000,
		Error:        ev.Error,
	}
}

// LogQuery defines filters for retrieving records. Zero values match all.
type LogQuery struct {
	Start     time.Time
	End       time.Time
	SessionID string
	Outcome   events.Outcome
}

// Match reports whether r satisfies every filter of q.
func (q LogQuery) Match(r LogRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.SessionID != "" && r.SessionID != q.SessionID {
		return false
	}
	if q.Outcome != "" && r.Outcome != q.Outcome {
		return false
	}
	return true
}

// LogStore persists LogRecords and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec LogRecord) error
	Query(ctx context.Context, q LogQuery) ([]LogRecord, error)
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend    string
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Open returns the store for opts.Backend. The "none" backend returns a nil
// store and no error. JSONL files rotate when MaxSizeMB is positive.
func Open(opts Options) (LogStore, error) {
	switch opts.Backend {
	case "", "none":
		return nil, nil
	case "jsonl":
		if opts.MaxSizeMB > 0 {
			return NewRotatingJSONLStore(opts.Path, opts.MaxSizeMB, opts.MaxBackups, opts.MaxAgeDays)
		}
		return NewJSONLStore(opts.Path)
	case "sqlite":
		return NewSQLiteStore(opts.Path)
	default:
		return nil, fmt.Errorf("unknown prediction log backend %q", opts.Backend)
	}
}
