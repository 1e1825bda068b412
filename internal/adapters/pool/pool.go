// Package pool implements a bounded worker pool on top of
// golang.org/x/sync/errgroup.
package pool

import (
	"fmt"
	"sync"

	"go.trai.ch/stash/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

var _ ports.Pool = (*WorkerPool)(nil)

// WorkerPool implements ports.Pool. At most limit tasks run concurrently.
// Go never blocks the caller: when the pool is saturated the task is handed
// to a submitter goroutine that waits for a free slot, so dispatchers keep
// registering work while loads are parked behind their own serialization.
type WorkerPool struct {
	group   *errgroup.Group
	pending sync.WaitGroup
	log     ports.Logger
}

// New creates a WorkerPool running at most limit concurrent tasks.
func New(limit int, log ports.Logger) *WorkerPool {
	g := &errgroup.Group{}
	g.SetLimit(limit)
	return &WorkerPool{group: g, log: log}
}

// Go schedules fn on the pool without blocking. A panicking task is
// contained and logged so one bad load or eviction cannot take the process
// down.
func (p *WorkerPool) Go(fn func()) {
	task := func() error {
		defer func() {
			if r := recover(); r != nil {
				p.log.Error("worker task panicked", "panic", fmt.Sprintf("%v", r))
			}
		}()
		fn()
		return nil
	}
	if p.group.TryGo(task) {
		return
	}
	p.pending.Add(1)
	go func() {
		defer p.pending.Done()
		p.group.Go(task)
	}()
}

// Wait blocks until all scheduled tasks have finished, including tasks
// still queued behind a saturated pool.
func (p *WorkerPool) Wait() {
	p.pending.Wait()
	_ = p.group.Wait()
}
