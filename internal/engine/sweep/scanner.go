// Package sweep implements the size governance of the shared persistent
// cache: scanning the entry tree, selecting least-recently-accessed victims,
// and evicting them under per-entry advisory locks.
package sweep

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/stash/internal/core/ports"
)

// Scanner walks the cache root and produces the flat list of valid entries.
// Incomplete entries are healed on sight: a directory at the entry depth
// missing any of its three files is a leftover of a crashed write and is
// deleted, under the entry lock so a writer still building it is left alone.
type Scanner struct {
	locker ports.EntryLocker
	log    ports.Logger
}

// NewScanner creates a new Scanner.
func NewScanner(locker ports.EntryLocker, log ports.Logger) *Scanner {
	return &Scanner{locker: locker, log: log}
}

// Scan returns every valid entry below root. Per-entry I/O failures are
// logged and the entry skipped; under-counting is preferred over aborting
// the scan.
func (s *Scanner) Scan(root string) ([]domain.CacheEntry, error) {
	var entries []domain.CacheEntry

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipAll
			}
			s.log.Warn("cache scan failed to read path", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() || entryDepth(root, path) != domain.EntryDepth {
			return nil
		}

		// This directory is one entry; never descend into it.
		if entry, ok := s.inspect(path); ok {
			entries = append(entries, entry)
		}
		return filepath.SkipDir
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// inspect classifies one entry directory, healing it when incomplete.
func (s *Scanner) inspect(dir string) (domain.CacheEntry, bool) {
	entry := domain.CacheEntry{Dir: dir}

	metaInfo, metaErr := os.Stat(entry.MetadataPath())
	_, dataErr := os.Stat(entry.DataPath())
	_, lockErr := os.Stat(entry.LockPath())
	if metaErr != nil || dataErr != nil || lockErr != nil {
		s.heal(entry)
		return domain.CacheEntry{}, false
	}

	size, err := dirSize(dir)
	if err != nil {
		s.log.Warn("failed to size cache entry", "dir", dir, "error", err)
		return domain.CacheEntry{}, false
	}

	entry.Size = size
	entry.LastAccess = metaInfo.ModTime()
	return entry, true
}

// heal deletes an incomplete entry. The entry lock is still honored: an
// entry that looks incomplete because a writer is mid-population holds the
// lock, and is skipped for this cycle.
func (s *Scanner) heal(entry domain.CacheEntry) {
	unlock, ok, err := s.locker.TryLock(entry.LockPath())
	if err != nil {
		s.log.Warn("failed to lock corrupt entry", "dir", entry.Dir, "error", err)
		return
	}
	if !ok {
		s.log.Debug("corrupt-looking entry is locked, leaving it alone", "dir", entry.Dir)
		return
	}
	defer func() {
		if err := unlock.Unlock(); err != nil {
			s.log.Warn("failed to release entry lock", "dir", entry.Dir, "error", err)
		}
	}()

	if err := os.RemoveAll(entry.Dir); err != nil {
		s.log.Warn("failed to delete corrupt entry", "dir", entry.Dir, "error", err)
		return
	}
	s.log.Info("deleted corrupt cache entry", "dir", entry.Dir)
}

func entryDepth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

func dirSize(dir string) (int64, error) {
	var total int64
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	return total, err
}
