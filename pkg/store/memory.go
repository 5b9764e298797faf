package store

import (
	"context"
	"sort"
	"sync"

	"github.com/yunchaoli/cablerig/pkg/scene"
)

// MemoryStore keeps batches in a map. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	batches map[string]*scene.Batch
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{batches: make(map[string]*scene.Batch)}
}

// Put stores a batch.
func (s *MemoryStore) Put(ctx context.Context, b *scene.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[b.ID] = b
	return nil
}

// Get retrieves a batch by ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (*scene.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.batches[id]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

// Delete removes a batch.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.batches[id]; !ok {
		return ErrNotFound
	}
	delete(s.batches, id)
	return nil
}

// List returns summaries, newest first.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Summary, 0, len(s.batches))
	for _, b := range s.batches {
		out = append(out, summarize(b))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
