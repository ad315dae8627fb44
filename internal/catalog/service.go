package catalog

import (
	"context"
	"math"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// NewItem is the caller-supplied part of an item.
type NewItem struct {
	Name     string
	Category string
	Price    float64
}

func (n NewItem) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return invalid("name", "is required and must be a non-empty string")
	}
	if strings.TrimSpace(n.Category) == "" {
		return invalid("category", "is required and must be a non-empty string")
	}
	if math.IsNaN(n.Price) || math.IsInf(n.Price, 0) || n.Price < 0 {
		return invalid("price", "is required and must be a non-negative number")
	}
	return nil
}

type Service struct {
	store Store
	stats *StatsCache
	log   *zap.Logger

	// serialises the read-modify-write of Create within this process
	createMu sync.Mutex
}

func NewService(store Store, stats *StatsCache, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if stats == nil {
		stats = NewStatsCache(store, WithLogger(log))
	}
	return &Service{store: store, stats: stats, log: log}
}

// StatsCache exposes the cache so collaborators such as file watchers can
// deliver invalidations.
func (s *Service) StatsCache() *StatsCache { return s.stats }

func (s *Service) Ping(ctx context.Context) error { return s.store.Ping(ctx) }

func (s *Service) List(ctx context.Context, p ListParams) (Page, error) {
	items, err := s.store.Load(ctx)
	if err != nil {
		return Page{}, storageErr("load", err)
	}
	return Query(items, p), nil
}

func (s *Service) Get(ctx context.Context, id int64) (Item, error) {
	if id < 0 {
		return Item{}, invalid("id", "must be a non-negative integer")
	}

	items, err := s.store.Load(ctx)
	if err != nil {
		return Item{}, storageErr("load", err)
	}
	for _, it := range items {
		if it.ID == id {
			return it, nil
		}
	}
	return Item{}, &NotFoundError{ID: id}
}

func (s *Service) Create(ctx context.Context, n NewItem) (Item, error) {
	if err := n.Validate(); err != nil {
		return Item{}, err
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	items, err := s.store.Load(ctx)
	if err != nil {
		return Item{}, storageErr("load", err)
	}

	it := Item{
		ID:       nextID(items),
		Name:     strings.TrimSpace(n.Name),
		Category: strings.TrimSpace(n.Category),
		Price:    n.Price,
	}
	if err := s.store.Save(ctx, append(items, it)); err != nil {
		return Item{}, storageErr("save", err)
	}

	s.stats.OnExternalChange()
	s.log.Info("item created", zap.Int64("id", it.ID), zap.String("name", it.Name))
	return it, nil
}

func (s *Service) Stats(ctx context.Context) (StatsSnapshot, error) {
	return s.stats.Get(ctx)
}
