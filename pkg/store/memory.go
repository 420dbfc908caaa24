package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps calculations in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	calcs map[string]Calculation
	now   func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{calcs: make(map[string]Calculation), now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, c Calculation) (Calculation, error) {
	c, err := prepare(c, s.now)
	if err != nil {
		return Calculation{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, old := range s.calcs {
		if old.Name == c.Name {
			delete(s.calcs, id)
		}
	}
	s.calcs[c.ID] = c
	return c, nil
}

func (s *MemoryStore) List(_ context.Context) ([]Calculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Calculation, 0, len(s.calcs))
	for _, c := range s.calcs {
		out = append(out, c)
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Calculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.calcs[id]
	if !ok {
		return Calculation{}, notFound(id)
	}
	return c, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.calcs[id]; !ok {
		return notFound(id)
	}
	delete(s.calcs, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
