// Package cache memoizes evaluation results by the content of the evaluated pair.
//
// The in-process level is FIFO: when the cache is full the oldest inserted entry
// is evicted regardless of how recently it was read. An optional Remote level is
// shared between processes; anything it returns that cannot be decoded is
// treated as a miss and removed.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const DefaultMaxEntries = 100

// Remote is a second-level store holding encoded values.
type Remote interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]V
	order   []string
	max     int

	group  singleflight.Group
	remote Remote
	logger *zap.Logger
}

type Option[V any] func(*Cache[V])

func WithRemote[V any](r Remote) Option[V] {
	return func(c *Cache[V]) {
		c.remote = r
	}
}

func WithLogger[V any](l *zap.Logger) Option[V] {
	return func(c *Cache[V]) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a cache holding at most maxEntries values. A non-positive size
// selects DefaultMaxEntries.
func New[V any](maxEntries int, opts ...Option[V]) *Cache[V] {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	c := &Cache[V]{
		entries: make(map[string]V, maxEntries),
		order:   make([]string, 0, maxEntries),
		max:     maxEntries,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Key hashes resumeText + "|" + jobDescription with a 31-multiplier rolling hash
// truncated to 32 bits. Collisions are possible and accepted.
func Key(resumeText, jobDescription string) string {
	var h int32
	for _, r := range resumeText + "|" + jobDescription {
		h = h*31 + int32(r)
	}

	v := int64(h)
	if v < 0 {
		v = -v
	}
	return strconv.FormatInt(v, 36)
}

// GetOrCompute returns the cached value for the pair or calls compute and stores
// its result. Concurrent misses for one key share a single compute call. The
// boolean reports whether compute was skipped. Errors from compute are returned
// and nothing is stored.
//
// The shared call is detached from the cancellation of whichever caller
// started it; every caller stops waiting when its own ctx is done.
func (c *Cache[V]) GetOrCompute(ctx context.Context, resumeText, jobDescription string, compute func(context.Context) (V, error)) (V, bool, error) {
	var zero V
	key := Key(resumeText, jobDescription)

	if v, ok := c.Get(key); ok {
		return v, true, nil
	}

	type outcome struct {
		value V
		hit   bool
	}

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		if v, ok := c.Get(key); ok {
			return outcome{value: v, hit: true}, nil
		}

		if v, ok := c.remoteGet(shared, key); ok {
			c.Put(key, v)
			return outcome{value: v, hit: true}, nil
		}

		v, err := compute(shared)
		if err != nil {
			return nil, err
		}

		c.Put(key, v)
		c.remoteSet(shared, key, v)

		return outcome{value: v}, nil
	})

	select {
	case <-ctx.Done():
		return zero, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, false, res.Err
		}
		o := res.Val.(outcome)
		return o.value, o.hit, nil
	}
}

// Get reads the in-process level only.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.entries[key]
	return v, ok
}

// Put stores v. Replacing an existing key keeps its original insertion position.
func (c *Cache[V]) Put(key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = v

	for len(c.order) > c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
		c.logger.Debug("evicted cache entry", zap.String("key", oldest))
	}
}

func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Purge drops every in-process entry.
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]V, c.max)
	c.order = make([]string, 0, c.max)
}

func (c *Cache[V]) remoteGet(ctx context.Context, key string) (V, bool) {
	var v V
	if c.remote == nil {
		return v, false
	}

	data, ok, err := c.remote.Get(ctx, key)
	if err != nil {
		c.logger.Warn("reading remote cache", zap.String("key", key), zap.Error(err))
		return v, false
	}
	if !ok {
		return v, false
	}

	if err := json.Unmarshal(data, &v); err != nil {
		c.logger.Warn("dropping corrupted cache entry", zap.String("key", key), zap.Error(err))
		if err := c.remote.Delete(ctx, key); err != nil {
			c.logger.Warn("deleting corrupted cache entry", zap.String("key", key), zap.Error(err))
		}
		var zero V
		return zero, false
	}

	return v, true
}

func (c *Cache[V]) remoteSet(ctx context.Context, key string, v V) {
	if c.remote == nil {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("encoding cache entry", zap.String("key", key), zap.Error(fmt.Errorf("marshal: %w", err)))
		return
	}

	if err := c.remote.Set(ctx, key, data); err != nil {
		c.logger.Warn("writing remote cache", zap.String("key", key), zap.Error(err))
	}
}
