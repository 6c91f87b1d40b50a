package session

import (
	"context"
	"sync"
	"time"
)

// Snapshot is the persisted form of one session's cache.
type Snapshot struct {
	LastFare    *float64  `json:"last_fare,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
	Predictions int       `json:"predictions"`
}

// Store persists session snapshots. Implementations must be safe for
// concurrent use.
type Store interface {
	Load(ctx context.Context, id string) (Snapshot, bool, error)
	Save(ctx context.Context, id string, snap Snapshot) error
	Close() error
}

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]Snapshot{}}
}

func (s *MemoryStore) Load(_ context.Context, id string) (Snapshot, bool, error) {
	s.mu.RLock()
	snap, ok := s.data[id]
	s.mu.RUnlock()
	return snap.clone(), ok, nil
}

func (s *MemoryStore) Save(_ context.Context, id string, snap Snapshot) error {
	s.mu.Lock()
	s.data[id] = snap.clone()
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *MemoryStore) Close() error { return nil }

func (s Snapshot) clone() Snapshot {
	if s.LastFare != nil {
		f := *s.LastFare
		s.LastFare = &f
	}
	return s
}
