package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a read-through cache over a Store. Every failure of the store
// is logged and treated as a miss; the cache never fails a read.
type Cache struct {
	store  Store
	logger *slog.Logger
	group  singleflight.Group

	// mu guards pending and is held across the write of a finished load,
	// so an invalidation either sees the load in flight or runs after its
	// write has landed.
	mu      sync.Mutex
	pending map[string]map[*pendingLoad]struct{}
}

// pendingLoad is a load in flight for one key. It goes stale when the key
// is invalidated before the load finishes, and its result is then not
// written back.
type pendingLoad struct {
	stale bool
}

// New creates a cache over store.
func New(store Store, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		store:   store,
		logger:  logger,
		pending: make(map[string]map[*pendingLoad]struct{}),
	}
}

// ReadThrough returns the cached value under key, or loads it, caches it
// for ttl and returns it. A cached value for which accept returns false is
// treated as a miss. Concurrent misses for one key share a single load.
func ReadThrough[T any](
	ctx context.Context,
	c *Cache,
	kind Kind,
	key string,
	ttl time.Duration,
	accept func(T) bool,
	load func(ctx context.Context) (T, error),
) (T, error) {
	if v, ok := lookup[T](ctx, c, kind, key); ok {
		if accept == nil || accept(v) {
			lookupsTotal.WithLabelValues(string(kind), "hit").Inc()
			return v, nil
		}
		lookupsTotal.WithLabelValues(string(kind), "rejected").Inc()
		c.logger.Warn("cache entry rejected",
			slog.String("kind", string(kind)),
			slog.String("key", key),
		)
	} else {
		lookupsTotal.WithLabelValues(string(kind), "miss").Inc()
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// The load is shared by every waiter, so it must outlive any one of them.
		p := c.beginLoad(key)
		v, err := load(context.WithoutCancel(ctx))
		if err != nil {
			c.finishLoad(key, p, nil)
			return nil, err
		}
		c.finishLoad(key, p, func() {
			c.put(context.WithoutCancel(ctx), kind, key, v, ttl)
		})
		return v, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func (c *Cache) beginLoad(key string) *pendingLoad {
	p := &pendingLoad{}
	c.mu.Lock()
	defer c.mu.Unlock()
	loads, ok := c.pending[key]
	if !ok {
		loads = make(map[*pendingLoad]struct{})
		c.pending[key] = loads
	}
	loads[p] = struct{}{}
	return p
}

// finishLoad retires p and runs write unless p went stale.
func (c *Cache) finishLoad(key string, p *pendingLoad, write func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if loads, ok := c.pending[key]; ok {
		delete(loads, p)
		if len(loads) == 0 {
			delete(c.pending, key)
		}
	}
	if write == nil {
		return
	}
	if p.stale {
		c.logger.Debug("stale load not cached", slog.String("key", key))
		return
	}
	write()
}

// markStale flags every load in flight for keys.
func (c *Cache) markStale(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		for p := range c.pending[key] {
			p.stale = true
		}
	}
}

// markStalePrefix flags every load in flight for a key starting with prefix.
func (c *Cache) markStalePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, loads := range c.pending {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		for p := range loads {
			p.stale = true
		}
	}
}

func lookup[T any](ctx context.Context, c *Cache, kind Kind, key string) (T, bool) {
	var v T
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		errorsTotal.WithLabelValues(string(kind), "get").Inc()
		c.logger.Warn("cache read failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return v, false
	}
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		errorsTotal.WithLabelValues(string(kind), "decode").Inc()
		c.logger.Warn("cache entry undecodable",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return v, false
	}
	return v, true
}

func (c *Cache) put(ctx context.Context, kind Kind, key string, v any, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		errorsTotal.WithLabelValues(string(kind), "encode").Inc()
		c.logger.Warn("cache entry unencodable",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return
	}
	payloadBytes.WithLabelValues(string(kind)).Observe(float64(len(raw)))

	if err := c.store.Set(ctx, key, raw, ttl); err != nil {
		errorsTotal.WithLabelValues(string(kind), "set").Inc()
		c.logger.Warn("cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
