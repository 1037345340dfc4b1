package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store, for tests and ephemeral use.
type MemoryStore struct {
	mu      sync.RWMutex
	streams map[string][]*Event
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{streams: make(map[string][]*Event)}
}

// Append adds events to a stream with optimistic concurrency.
func (s *MemoryStore) Append(ctx context.Context, stream string, expectedVersion int, events []*Event) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.streams[stream]
	current := len(existing) - 1
	if current != expectedVersion {
		return 0, ErrConcurrencyConflict
	}

	for _, event := range events {
		copied := *event
		copied.Stream = stream
		copied.Version = len(existing)
		existing = append(existing, &copied)
	}
	s.streams[stream] = existing
	return len(existing) - 1, nil
}

// Read returns the stream's events from fromVersion onward.
func (s *MemoryStore) Read(ctx context.Context, stream string, fromVersion int) ([]*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	existing := s.streams[stream]
	var out []*Event
	for _, event := range existing {
		if event.Version >= fromVersion {
			copied := *event
			out = append(out, &copied)
		}
	}
	return out, nil
}

// StreamVersion returns the current version of a stream, -1 if absent.
func (s *MemoryStore) StreamVersion(ctx context.Context, stream string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.streams[stream]) - 1, nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
