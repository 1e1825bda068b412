package ports

import (
	"context"

	"go.trai.ch/stash/internal/core/domain"
)

// ContentStore is the persistent, cross-process content-addressable cache.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type ContentStore interface {
	// Lookup consults the store for the keyed entry. On a hit the payload
	// is materialized into the source's target directory, the entry's
	// last-access time is refreshed, and the result is returned.
	// Returns nil, nil on a miss.
	Lookup(ctx context.Context, source domain.ResolveSource, key domain.CacheKey) (*domain.ResolveResult, error)

	// Populate copies the file at srcPath into the keyed entry. It is a
	// no-op when the entry already exists or another process is writing it.
	Populate(ctx context.Context, key domain.CacheKey, srcPath string) error
}
