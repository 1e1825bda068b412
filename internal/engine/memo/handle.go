package memo

import (
	"context"
	"time"

	"go.trai.ch/stash/internal/core/domain"
)

// Handle is the shared asynchronous result of one resolution. Every caller
// requesting the same key while the resolution is pending or completed holds
// the same handle. A handle completes exactly once and is immutable after.
type Handle struct {
	key          string
	registeredAt time.Time

	done        chan struct{}
	result      *domain.ResolveResult
	err         error
	completedAt time.Time
}

func newHandle(key string, now time.Time) *Handle {
	return &Handle{
		key:          key,
		registeredAt: now,
		done:         make(chan struct{}),
	}
}

func newCompletedHandle(key string, result *domain.ResolveResult, now time.Time) *Handle {
	h := newHandle(key, now)
	h.complete(result, nil, now)
	return h
}

// complete publishes the outcome and wakes every waiter. Must be called at
// most once.
func (h *Handle) complete(result *domain.ResolveResult, err error, now time.Time) {
	h.result = result
	h.err = err
	h.completedAt = now
	close(h.done)
}

// Key returns the dedup key this handle is registered under.
func (h *Handle) Key() string { return h.key }

// RegisteredAt returns when the handle was first registered.
func (h *Handle) RegisteredAt() time.Time { return h.registeredAt }

// Done returns a channel closed when the resolution has completed.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the resolution completes or ctx is cancelled. Timeouts
// are the caller's responsibility: a caller that gives up should purge the
// handle with Cache.RemoveIfMatches so the next request retries.
func (h *Handle) Wait(ctx context.Context) (*domain.ResolveResult, error) {
	select {
	case <-h.done:
		return h.result, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Peek returns the outcome without blocking. ok is false while the
// resolution is still pending.
func (h *Handle) Peek() (result *domain.ResolveResult, err error, ok bool) {
	select {
	case <-h.done:
		return h.result, h.err, true
	default:
		return nil, nil, false
	}
}

// CompletedAt returns when the resolution completed, zero while pending.
func (h *Handle) CompletedAt() time.Time {
	if _, _, ok := h.Peek(); !ok {
		return time.Time{}
	}
	return h.completedAt
}
