package predictionlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kilianp07/taxifare/core/events"
)

func TestSQLiteStore_PersistQuery(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "predictions.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()
	base := time.Now()
	for _, r := range sampleRecords(base) {
		if err := store.Append(context.Background(), r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	out, err := store.Query(context.Background(), LogQuery{SessionID: "alice", Outcome: events.OutcomeOK})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 2 || out[0].ID != "1" || out[1].ID != "3" {
		t.Fatalf("unexpected records: %v", ids(out))
	}
	out, err = store.Query(context.Background(), LogQuery{Start: base.Add(30 * time.Second), End: base.Add(90 * time.Second)})
	if err != nil {
		t.Fatalf("query window: %v", err)
	}
	if len(out) != 1 || out[0].Error != "bad row" {
		t.Fatalf("unexpected window records: %v", ids(out))
	}
}

func TestSQLiteStore_ReopenKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions.db")
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.Append(context.Background(), LogRecord{ID: "x", Timestamp: time.Now(), SessionID: "s", Outcome: events.OutcomeOK}); err != nil {
		t.Fatalf("append: %v", err)
	}
	_ = store.Close()

	store, err = NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = store.Close() }()
	out, err := store.Query(context.Background(), LogQuery{})
	if err != nil || len(out) != 1 {
		t.Fatalf("expected 1 record after reopen, got %d (%v)", len(out), err)
	}
}
