package recordstore

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultDedupeInterval = 5 * time.Second
	DefaultFetchTimeout   = 15 * time.Second
)

// Fetcher loads a whole collection from the remote store.
type Fetcher[T any] func(ctx context.Context) ([]T, error)

// Collection caches one remote collection as an immutable snapshot.
//
// Fetches are shared: callers that arrive while a fetch for the same
// generation is running wait for it instead of starting another. A mutation
// bumps the generation through Revalidate, so its follow-up fetch never joins
// a fetch that started before the write, and a snapshot from an older
// generation never replaces a newer one.
type Collection[T any] struct {
	name     string
	fetch    Fetcher[T]
	group    *singleflight.Group
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time
	logger   *zap.Logger

	mu        sync.Mutex
	items     []T
	loaded    bool
	fetchedAt time.Time
	gen       uint64
	storedGen uint64
	closed    bool
}

func newCollection[T any](name string, fetch Fetcher[T], group *singleflight.Group, o options) *Collection[T] {
	return &Collection[T]{
		name:     name,
		fetch:    fetch,
		group:    group,
		interval: o.dedupeInterval,
		timeout:  o.fetchTimeout,
		now:      o.now,
		logger:   o.logger.With(zap.String("collection", name)),
	}
}

// List returns the cached snapshot, loading it first if nothing has been
// fetched yet. A loaded snapshot is returned as is, however old.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	if err := requireIdentity(ctx); err != nil {
		return nil, err
	}
	if items, ok := c.Snapshot(); ok {
		return items, nil
	}
	return c.Refresh(ctx)
}

// Snapshot returns the cached records without fetching. ok is false until
// the first fetch lands.
func (c *Collection[T]) Snapshot() (items []T, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		return nil, false
	}
	return slices.Clone(c.items), true
}

// Refresh fetches the collection unless a fetch of the current generation
// finished within the dedupe interval, in which case that result is reused.
func (c *Collection[T]) Refresh(ctx context.Context) ([]T, error) {
	if err := requireIdentity(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if c.loaded && c.storedGen == c.gen && c.now().Sub(c.fetchedAt) < c.interval {
		items := slices.Clone(c.items)
		c.mu.Unlock()
		return items, nil
	}
	gen := c.gen
	c.mu.Unlock()

	return c.fetchShared(ctx, gen)
}

// Revalidate forces a fetch that reflects every write completed before the call.
func (c *Collection[T]) Revalidate(ctx context.Context) ([]T, error) {
	if err := requireIdentity(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	return c.fetchShared(ctx, gen)
}

func (c *Collection[T]) fetchShared(ctx context.Context, gen uint64) ([]T, error) {
	key := c.name + "#" + strconv.FormatUint(gen, 10)

	ch := c.group.DoChan(key, func() (any, error) {
		// one caller giving up must not fail the others
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		start := c.now()
		items, err := c.fetch(fetchCtx)
		if err != nil {
			c.logger.Debug("fetch failed", zap.Uint64("generation", gen), zap.Error(err))
			return nil, asRemote(err)
		}
		c.store(gen, items)
		c.logger.Debug("fetched",
			zap.Uint64("generation", gen),
			zap.Int("records", len(items)),
			zap.Duration("took", c.now().Sub(start)),
		)
		return nil, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			return nil, ErrClosed
		}
		return slices.Clone(c.items), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Collection[T]) store(gen uint64, items []T) {
	if items == nil {
		items = []T{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.loaded && gen < c.storedGen {
		c.logger.Debug("dropping stale snapshot", zap.Uint64("generation", gen), zap.Uint64("current", c.storedGen))
		return
	}
	c.items = items
	c.loaded = true
	c.storedGen = gen
	c.fetchedAt = c.now()
}

func (c *Collection[T]) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}
