package sweep

import (
	"errors"
	"io/fs"
	"os"

	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/stash/internal/core/ports"
)

// Evictor deletes selected entries from the shared cache. Deletions are
// dispatched to the worker pool and not awaited; an entry whose advisory
// lock is held anywhere on the host is never touched.
type Evictor struct {
	locker ports.EntryLocker
	pool   ports.Pool
	log    ports.Logger
}

// NewEvictor creates a new Evictor.
func NewEvictor(locker ports.EntryLocker, pool ports.Pool, log ports.Logger) *Evictor {
	return &Evictor{locker: locker, pool: pool, log: log}
}

// Evict schedules the deletion of each victim. Failures are isolated per
// entry: a victim that cannot be deleted this cycle is reconsidered by the
// next one.
func (e *Evictor) Evict(victims []domain.CacheEntry) {
	for _, victim := range victims {
		e.pool.Go(func() {
			e.evictOne(victim)
		})
	}
}

// evictOne runs the per-entry deletion protocol. Data and metadata are
// removed while the exclusive lock is held, so a reader probing for
// metadata never observes a half-deleted entry as valid. The directory
// itself is removed after release, and only if the metadata is still
// absent: a writer may legitimately recreate the entry in between.
func (e *Evictor) evictOne(entry domain.CacheEntry) {
	unlock, ok, err := e.locker.TryLock(entry.LockPath())
	if err != nil {
		e.log.Warn("failed to lock entry for eviction", "dir", entry.Dir, "error", err)
		return
	}
	if !ok {
		e.log.Debug("entry in use, skipping eviction", "dir", entry.Dir)
		return
	}

	dataErr := removeIfPresent(entry.DataPath())
	metaErr := removeIfPresent(entry.MetadataPath())

	if err := unlock.Unlock(); err != nil {
		e.log.Warn("failed to release entry lock", "dir", entry.Dir, "error", err)
		return
	}
	if dataErr != nil || metaErr != nil {
		e.log.Warn("failed to delete entry files", "dir", entry.Dir,
			"data_error", dataErr, "metadata_error", metaErr)
		return
	}

	// Abort the cleanup when a writer repopulated the entry after the
	// release.
	if _, err := os.Stat(entry.MetadataPath()); err == nil {
		e.log.Debug("entry repopulated during eviction, keeping directory", "dir", entry.Dir)
		return
	}

	if err := removeIfPresent(entry.LockPath()); err != nil {
		e.log.Warn("failed to delete entry lock file", "dir", entry.Dir, "error", err)
		return
	}
	if err := os.Remove(entry.Dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
		e.log.Warn("failed to remove entry directory", "dir", entry.Dir, "error", err)
		return
	}
	e.log.Info("evicted cache entry", "dir", entry.Dir, "size", entry.Size)
}

func removeIfPresent(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
