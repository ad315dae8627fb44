package catalog

import (
	"context"
	"sync"
)

// MemStore is a Store without persistence, used for development and tests.
type MemStore struct {
	mu    sync.RWMutex
	items []Item
}

func NewMemStore(items ...Item) *MemStore {
	return &MemStore{items: cloneItems(items)}
}

// NewSampleStore returns a MemStore seeded with a few demo items.
func NewSampleStore() *MemStore {
	return NewMemStore(
		Item{ID: 1, Name: "Laptop Pro", Category: "Electronics", Price: 2499},
		Item{ID: 2, Name: "Noise Cancelling Headphones", Category: "Electronics", Price: 399},
		Item{ID: 3, Name: "Ultra-Wide Monitor", Category: "Electronics", Price: 999},
		Item{ID: 4, Name: "Ergonomic Chair", Category: "Furniture", Price: 799},
		Item{ID: 5, Name: "Standing Desk", Category: "Furniture", Price: 1199},
	)
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) Load(ctx context.Context) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.items), nil
}

func (s *MemStore) Save(ctx context.Context, items []Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = cloneItems(items)
	return nil
}

func cloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
