package ports

// EntryLocker grants advisory file locks on cache entry lock files.
// Cross-process safety of the shared disk cache rests entirely on these
// locks, so they are only ever taken in non-blocking mode: contention means
// "entry in use, back off", never "wait".
//
//go:generate go run go.uber.org/mock/mockgen -source=locker.go -destination=mocks/mock_locker.go -package=mocks
type EntryLocker interface {
	// TryLock attempts the exclusive advisory lock on lockPath without
	// blocking, creating the file if needed. ok is false when the lock is
	// held elsewhere (this or another process).
	TryLock(lockPath string) (unlock Unlocker, ok bool, err error)

	// TryRLock attempts the shared advisory lock on lockPath without
	// blocking. Readers take it to keep the evictor away while they copy
	// an entry out.
	TryRLock(lockPath string) (unlock Unlocker, ok bool, err error)
}

// Unlocker releases a held advisory lock.
type Unlocker interface {
	Unlock() error
}
