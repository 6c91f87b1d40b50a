package predictionlog

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRotatingJSONLStore_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")
	store, err := NewRotatingJSONLStore(path, 1, 2, 1)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()

	big := strings.Repeat("x", 600*1024)
	now := time.Now()
	for i, id := range []string{"a", "b"} {
		rec := LogRecord{ID: id, Timestamp: now.Add(time.Duration(i) * time.Second), SessionID: "s1", Error: big}
		if err := store.Append(context.Background(), rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	files, err := store.files()
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected active file and one backup, got %v", files)
	}
	out, err := store.Query(context.Background(), LogQuery{SessionID: "s1"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 2 || out[0].ID != "a" || out[1].ID != "b" {
		t.Fatalf("expected records from both files in order, got %d", len(out))
	}
}

func TestRotatingJSONLStore_Query(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")
	store, err := NewRotatingJSONLStore(path, 1, 2, 1)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	_ = store.Append(context.Background(), LogRecord{ID: "1", Timestamp: time.Now(), SessionID: "s1"})
	_ = store.Append(context.Background(), LogRecord{ID: "2", Timestamp: time.Now(), SessionID: "s2"})
	out, err := store.Query(context.Background(), LogQuery{SessionID: "s2"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 1 || out[0].ID != "2" {
		t.Fatalf("unexpected records: %+v", out)
	}
}
