package catalog

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const DefaultStatsTTL = 10 * time.Second

type CacheState int

const (
	StateEmpty CacheState = iota
	StateFresh
	StateStale
)

func (s CacheState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateFresh:
		return "fresh"
	case StateStale:
		return "stale"
	default:
		return "unknown"
	}
}

// Invalidator receives notifications that the backing store changed outside
// the request path.
type Invalidator interface {
	OnExternalChange()
}

// StatsCache serves aggregate statistics computed from a Store and recomputes
// them when the TTL elapses or after OnExternalChange.
//
// Only the bookkeeping is locked. Concurrent callers that find the cache stale
// may each recompute; the results are equivalent.
type StatsCache struct {
	store   Store
	ttl     time.Duration
	now     func() time.Time
	log     *zap.Logger
	metrics *CacheMetrics

	mu         sync.Mutex
	state      CacheState
	snapshot   StatsSnapshot
	computedAt time.Time
	generation uint64
}

type StatsOption func(*StatsCache)

func WithTTL(ttl time.Duration) StatsOption {
	return func(c *StatsCache) { c.ttl = ttl }
}

func WithClock(now func() time.Time) StatsOption {
	return func(c *StatsCache) { c.now = now }
}

func WithLogger(log *zap.Logger) StatsOption {
	return func(c *StatsCache) { c.log = log }
}

func WithCacheMetrics(m *CacheMetrics) StatsOption {
	return func(c *StatsCache) { c.metrics = m }
}

func NewStatsCache(store Store, opts ...StatsOption) *StatsCache {
	c := &StatsCache{
		store: store,
		ttl:   DefaultStatsTTL,
		now:   time.Now,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State reports the cache state as of now, applying TTL expiry.
func (c *StatsCache) State() CacheState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked(c.now())
}

func (c *StatsCache) stateLocked(now time.Time) CacheState {
	if c.state == StateFresh && now.Sub(c.computedAt) >= c.ttl {
		return StateStale
	}
	return c.state
}

func (c *StatsCache) Get(ctx context.Context) (StatsSnapshot, error) {
	now := c.now()

	c.mu.Lock()
	if c.stateLocked(now) == StateFresh {
		snap, age := c.snapshot, now.Sub(c.computedAt)
		c.mu.Unlock()

		c.metrics.hit()
		c.log.Debug("stats cache hit", zap.Duration("age", age))
		return snap, nil
	}
	gen := c.generation
	c.mu.Unlock()

	c.metrics.miss()
	c.log.Debug("stats cache miss, recomputing")

	items, err := c.store.Load(ctx)
	if err != nil {
		return StatsSnapshot{}, storageErr("load", err)
	}
	snap := computeStats(items)

	c.mu.Lock()
	// An invalidation that raced with the load keeps the cache stale.
	if c.generation == gen {
		c.snapshot = snap
		c.computedAt = c.now()
		c.state = StateFresh
	}
	c.mu.Unlock()

	return snap, nil
}

// OnExternalChange marks any cached snapshot stale.
func (c *StatsCache) OnExternalChange() {
	c.mu.Lock()
	c.generation++
	if c.state == StateFresh {
		c.state = StateStale
	}
	c.mu.Unlock()

	c.metrics.invalidated()
	c.log.Info("stats cache invalidated")
}
