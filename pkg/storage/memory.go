package storage

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/matzehuels/jobtimeline/pkg/graph"
)

type memoryEntry struct {
	layout  graph.Layout
	savedAt time.Time
}

// MemoryStore keeps layouts in a map. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	layouts map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{layouts: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) SaveLayout(ctx context.Context, l graph.Layout) error {
	if err := checkHash(l); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layouts[l.Hash] = memoryEntry{layout: l, savedAt: s.now()}
	return nil
}

func (s *MemoryStore) GetLayout(ctx context.Context, hash string) (graph.Layout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.layouts[hash]
	if !ok {
		return graph.Layout{}, ErrNotFound
	}
	return e.layout, nil
}

func (s *MemoryStore) DeleteLayout(ctx context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.layouts, hash)
	return nil
}

func (s *MemoryStore) ListLayouts(ctx context.Context, limit int) ([]Summary, error) {
	s.mu.RLock()
	out := make([]Summary, 0, len(s.layouts))
	for _, e := range s.layouts {
		out = append(out, summarize(e.layout, e.savedAt))
	}
	s.mu.RUnlock()
	return newestFirst(out, limit), nil
}

func (s *MemoryStore) Close() error { return nil }

// newestFirst sorts by save time descending, then hash, and truncates.
func newestFirst(out []Summary, limit int) []Summary {
	slices.SortFunc(out, func(a, b Summary) int {
		if c := b.SavedAt.Compare(a.SavedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Hash, b.Hash)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

var _ Store = (*MemoryStore)(nil)
