// Package app implements the application layer for stash.
package app

import (
	"context"
	"errors"

	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/stash/internal/core/ports"
	"go.trai.ch/stash/internal/engine/memo"
	"go.trai.ch/stash/internal/engine/sweep"
	"go.trai.ch/zerr"
)

// App wires the resolution cache and the size governor behind the CLI.
type App struct {
	cache    *memo.Cache
	governor *sweep.Governor
	pool     ports.Pool
	log      ports.Logger
}

// New creates a new App instance.
func New(cache *memo.Cache, governor *sweep.Governor, pool ports.Pool, log ports.Logger) *App {
	return &App{
		cache:    cache,
		governor: governor,
		pool:     pool,
		log:      log,
	}
}

// Resolve materializes every source and returns the results in request
// order. All sources are registered up front so they share in-flight
// resolutions, then awaited. A failed resolution is purged from the memo
// tier so a later invocation retries it; the first failure is returned
// after every source has settled.
func (a *App) Resolve(ctx context.Context, sources []domain.ResolveSource) ([]*domain.ResolveResult, error) {
	handles := make([]*memo.Handle, len(sources))
	for i, source := range sources {
		handles[i], _ = a.cache.GetOrLoad(ctx, source)
	}

	results := make([]*domain.ResolveResult, len(sources))
	var firstErr error
	for i, handle := range handles {
		result, err := handle.Wait(ctx)
		if err != nil {
			if _, loadErr, done := handle.Peek(); done && loadErr != nil {
				// The load itself failed; free the key for retries. A wait
				// cut short by ctx leaves the pending load alone.
				a.cache.RemoveIfMatches(handle.Key(), handle)
			}
			if firstErr == nil {
				firstErr = zerr.With(zerr.Wrap(err, "resolution failed"), "path", sources[i].Path)
			}
			continue
		}
		results[i] = result
	}

	// Flush persistent-tier populations before returning.
	a.pool.Wait()

	if firstErr != nil {
		return results, firstErr
	}
	return results, nil
}

// GC runs one governance cycle against the shared cache and waits for the
// dispatched evictions to finish.
func (a *App) GC(ctx context.Context) error {
	a.governor.RunCycle(ctx)
	a.pool.Wait()
	return nil
}

// Daemon cycles the governor at the configured interval until ctx is done.
func (a *App) Daemon(ctx context.Context) error {
	a.log.Info("cache governor daemon started")
	err := a.governor.Run(ctx)
	a.pool.Wait()
	if errors.Is(err, context.Canceled) {
		a.log.Info("cache governor daemon stopped")
		return nil
	}
	return err
}
