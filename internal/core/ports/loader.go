// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/stash/internal/core/domain"
)

// Loader is the narrow contract the cache depends on to actually resolve a
// source. Protocol-specific fetchers (local filesystem, object storage)
// implement it. It may block and must be safe to call serially; the memo
// cache never calls it concurrently.
//
//go:generate go run go.uber.org/mock/mockgen -source=loader.go -destination=mocks/mock_loader.go -package=mocks
type Loader interface {
	// Load resolves the source and materializes its files under the
	// source's target directory. It returns nil, nil when this loader
	// cannot handle the source.
	Load(ctx context.Context, source domain.ResolveSource) (*domain.ResolveResult, error)
}
