// Package flock implements advisory file locking for cache entries using
// github.com/gofrs/flock.
package flock

import (
	"github.com/gofrs/flock"
	"go.trai.ch/stash/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.EntryLocker = (*Locker)(nil)

// Locker implements ports.EntryLocker with OS advisory locks. Locks are only
// honored by cooperating processes, which is exactly the contract the cache
// relies on: every reader, writer, and evictor of the shared cache root goes
// through the same lock files.
type Locker struct{}

// New creates a new Locker.
func New() *Locker {
	return &Locker{}
}

// TryLock attempts the exclusive lock on lockPath without blocking.
func (l *Locker) TryLock(lockPath string) (ports.Unlocker, bool, error) {
	fl := flock.New(lockPath)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, false, zerr.With(zerr.Wrap(err, "failed to acquire entry lock"), "lock_path", lockPath)
	}
	if !ok {
		return nil, false, nil
	}
	return &unlocker{fl: fl}, true, nil
}

// TryRLock attempts the shared lock on lockPath without blocking.
func (l *Locker) TryRLock(lockPath string) (ports.Unlocker, bool, error) {
	fl := flock.New(lockPath)
	ok, err := fl.TryRLock()
	if err != nil {
		return nil, false, zerr.With(zerr.Wrap(err, "failed to acquire shared entry lock"), "lock_path", lockPath)
	}
	if !ok {
		return nil, false, nil
	}
	return &unlocker{fl: fl}, true, nil
}

type unlocker struct {
	fl *flock.Flock
}

// Unlock releases the lock and closes the underlying file handle.
func (u *unlocker) Unlock() error {
	if err := u.fl.Unlock(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to release entry lock"), "lock_path", u.fl.Path())
	}
	return nil
}
