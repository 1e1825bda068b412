// Package memo implements the in-process single-flight resolution cache.
// Concurrent requests for the same source share one handle and therefore at
// most one loader invocation; loads across distinct keys are additionally
// serialized through a single lock to bound concurrent expensive fetches.
package memo

import (
	"context"
	"sync"

	"github.com/jonboulle/clockwork"
	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/stash/internal/core/ports"
	"go.trai.ch/zerr"
)

// Cache is the single-flight memo cache. Completed handles, including failed
// ones, stay registered until a caller purges them with RemoveIfMatches;
// there is no automatic expiry or retry.
type Cache struct {
	mu      sync.Mutex
	handles map[string]*Handle

	// loadMu serializes every loader invocation in this cache instance,
	// across distinct keys. Callers still get their handle immediately;
	// pending loads simply queue behind the lock.
	loadMu sync.Mutex

	loaders []ports.Loader
	store   ports.ContentStore
	pool    ports.Pool
	tracer  ports.Tracer
	clock   clockwork.Clock
	log     ports.Logger
}

// New creates a memo cache backed by the given loader chain. Loaders are
// consulted in order; the first one to return a result wins.
func New(loaders []ports.Loader, store ports.ContentStore, pool ports.Pool, tracer ports.Tracer, clock clockwork.Clock, log ports.Logger) *Cache {
	return &Cache{
		handles: make(map[string]*Handle),
		loaders: loaders,
		store:   store,
		pool:    pool,
		tracer:  tracer,
		clock:   clock,
		log:     log,
	}
}

// GetOrLoad returns the handle for the source's dedup key, registering a new
// one and scheduling its load when none exists. It never blocks on the load
// itself; hit reports whether an existing handle (pending or completed) was
// found.
func (c *Cache) GetOrLoad(ctx context.Context, source domain.ResolveSource) (handle *Handle, hit bool) {
	key := source.Key()

	c.mu.Lock()
	if h, ok := c.handles[key]; ok {
		c.mu.Unlock()
		c.log.Debug("memo cache hit", "key", domain.KeyFingerprint(key))
		return h, true
	}
	h := newHandle(key, c.clock.Now())
	c.handles[key] = h
	c.mu.Unlock()

	// The load is shared by every caller of this key, so it must not die
	// with the first caller's context.
	loadCtx := context.WithoutCancel(ctx)
	c.pool.Go(func() {
		c.load(loadCtx, source, h)
	})
	return h, false
}

// RemoveIfMatches removes the mapping for key only when it still holds
// expected, so a stale removal never clobbers a newer registration. This is
// the only eviction mechanism of the memo tier.
func (c *Cache) RemoveIfMatches(key string, expected *Handle) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if current, ok := c.handles[key]; ok && current == expected {
		delete(c.handles, key)
		return true
	}
	return false
}

// Prime inserts an already-known result under its source's key, bypassing
// the loader. It is a no-op when any handle, pending or completed, already
// exists for the key; inserted reports whether the result was taken.
func (c *Cache) Prime(result *domain.ResolveResult) (handle *Handle, inserted bool) {
	key := result.Source.Key()

	c.mu.Lock()
	defer c.mu.Unlock()

	if h, ok := c.handles[key]; ok {
		return h, false
	}
	h := newCompletedHandle(key, result, c.clock.Now())
	c.handles[key] = h
	return h, true
}

// PrimeAll primes a batch of known results and returns how many were taken.
func (c *Cache) PrimeAll(results []*domain.ResolveResult) int {
	var inserted int
	for _, result := range results {
		if _, ok := c.Prime(result); ok {
			inserted++
		}
	}
	return inserted
}

// Len returns the number of registered handles.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handles)
}

func (c *Cache) load(ctx context.Context, source domain.ResolveSource, h *Handle) {
	ctx, span := c.tracer.Start(ctx, "resolve "+source.Path)
	defer span.End()

	c.loadMu.Lock()
	result, err := c.doLoad(ctx, source, span)
	c.loadMu.Unlock()

	if err != nil {
		span.RecordError(err)
		c.log.Warn("resolution failed", "key", domain.KeyFingerprint(h.Key()), "path", source.Path, "error", err)
	}
	h.complete(result, err, c.clock.Now())

	// Population runs after the waiters are released, on the same worker,
	// so a slow copy into the persistent tier never delays the resolution.
	if err == nil && result != nil {
		c.populate(ctx, result)
	}
}

func (c *Cache) doLoad(ctx context.Context, source domain.ResolveSource, span ports.Span) (*domain.ResolveResult, error) {
	if key, ok := c.persistentKey(source); ok {
		result, err := c.store.Lookup(ctx, source, key)
		if err != nil {
			// A broken persistent tier must not fail the resolution.
			c.log.Warn("persistent cache lookup failed", "key", key.Checksum.Encode(), "error", err)
		} else if result != nil {
			span.SetAttribute("cache", "persistent")
			return result, nil
		}
	}

	for _, loader := range c.loaders {
		result, err := loader.Load(ctx, source)
		if err != nil {
			return nil, err
		}
		if result == nil {
			continue
		}
		return result, nil
	}
	return nil, zerr.With(domain.ErrNoResult, "path", source.Path)
}

// persistentKey builds the content-addressed key for sources that opt into
// the shared disk cache and declare their expected checksum up front.
func (c *Cache) persistentKey(source domain.ResolveSource) (domain.CacheKey, bool) {
	if !source.UsePersistentCache() {
		return domain.CacheKey{}, false
	}
	hex := source.Param(domain.ParamChecksum)
	if hex == "" {
		return domain.CacheKey{}, false
	}
	algorithm := domain.ChecksumSHA256
	if a := source.Param(domain.ParamChecksumAlgorithm); a != "" {
		algorithm = domain.ChecksumAlgorithm(a)
	}
	key := domain.NewCacheKey(source, domain.Checksum{Algorithm: algorithm, Hex: hex})
	if err := key.Validate(); err != nil {
		c.log.Warn("ignoring malformed persistent cache key", "path", source.Path, "error", err)
		return domain.CacheKey{}, false
	}
	return key, true
}

// populate writes a fresh result into the persistent tier. Population
// failures only cost a future hit, so they are logged and dropped.
func (c *Cache) populate(ctx context.Context, result *domain.ResolveResult) {
	if !result.Source.UsePersistentCache() {
		return
	}
	for _, file := range result.Files {
		if file.Checksum == nil {
			continue
		}
		key := domain.NewCacheKey(result.Source, *file.Checksum)
		if err := c.store.Populate(ctx, key, file.Path); err != nil {
			c.log.Warn("persistent cache population failed", "key", key.Checksum.Encode(), "error", err)
		}
	}
}
