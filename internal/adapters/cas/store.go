// Package cas implements the persistent content-addressable cache shared
// across processes on one host. Entries live under
// <root>/<team>/<algorithm>/<checksum>/ and consist of a payload file, a
// metadata file whose mtime tracks last access, and an advisory lock file
// guarding the entry against concurrent eviction.
package cas

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jonboulle/clockwork"
	localfs "go.trai.ch/stash/internal/adapters/fs"
	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/stash/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ContentStore = (*Store)(nil)

// Store implements ports.ContentStore on the local filesystem.
type Store struct {
	root   string
	locker ports.EntryLocker
	hasher *localfs.Hasher
	clock  clockwork.Clock
	log    ports.Logger
}

// NewStore creates a content store rooted at the given directory.
func NewStore(root string, locker ports.EntryLocker, hasher *localfs.Hasher, clock clockwork.Clock, log ports.Logger) *Store {
	return &Store{
		root:   filepath.Clean(root),
		locker: locker,
		hasher: hasher,
		clock:  clock,
		log:    log,
	}
}

// Lookup consults the store for the keyed entry. The metadata file is the
// entry's commit marker: its absence means miss, no matter what else is in
// the directory. A hit holds the shared lock for the whole copy-out so the
// evictor cannot pull the payload out from under the reader.
func (s *Store) Lookup(ctx context.Context, source domain.ResolveSource, key domain.CacheKey) (*domain.ResolveResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := key.Validate(); err != nil {
		return nil, err
	}

	dir := filepath.Join(s.root, key.RelativePath())
	if !fileExists(filepath.Join(dir, domain.MetadataFileName)) {
		return nil, nil
	}

	result, invalid, err := s.lookupLocked(source, dir, key)
	if invalid {
		// The payload no longer matches its checksum. Clear the entry
		// rather than leaving a stale hit in place; needs the exclusive
		// lock, so it happens after the read lock is released.
		s.clear(dir)
	}
	return result, err
}

func (s *Store) lookupLocked(source domain.ResolveSource, dir string, key domain.CacheKey) (result *domain.ResolveResult, invalid bool, err error) {
	unlock, ok, err := s.locker.TryRLock(filepath.Join(dir, domain.LockFileName))
	if err != nil {
		return nil, false, zerr.With(zerr.Wrap(err, "failed to acquire shared entry lock"), "dir", dir)
	}
	if !ok {
		// An evictor holds the entry exclusively; it is on its way out.
		s.log.Debug("cache entry locked, treating as miss", "dir", dir)
		return nil, false, nil
	}
	defer func() {
		if err := unlock.Unlock(); err != nil {
			s.log.Warn("failed to release entry lock", "dir", dir, "error", err)
		}
	}()

	// The entry may have been evicted between the existence check and the
	// lock acquisition.
	meta, err := s.readMetadata(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}

	dataPath := filepath.Join(dir, domain.DataFileName)
	if err := s.hasher.Verify(dataPath, key.Checksum); err != nil {
		s.log.Warn("cache entry failed checksum verification", "dir", dir, "error", err)
		return nil, true, nil
	}

	target := filepath.Join(source.TargetDir, meta.FileName)
	if err := localfs.CopyFile(dataPath, target); err != nil {
		return nil, false, zerr.With(zerr.Wrap(err, "failed to materialize cache entry"), "dir", dir)
	}

	s.touch(dir)
	s.log.Debug("persistent cache hit", "key", key.Checksum.Encode(), "target", target)

	checksum := key.Checksum
	return &domain.ResolveResult{
		Files: []domain.ResolvedFile{{Path: target, Checksum: &checksum}},
		Metadata: map[string]string{
			"cache":    "persistent",
			"checksum": checksum.Encode(),
		},
		Source: source,
	}, false, nil
}

// clear deletes an entry whose payload failed verification. Removing the
// payload and metadata makes the entry incomplete; the scanner finishes the
// directory cleanup on its next pass.
func (s *Store) clear(dir string) {
	lockPath := filepath.Join(dir, domain.LockFileName)
	unlock, ok, err := s.locker.TryLock(lockPath)
	if err != nil || !ok {
		s.log.Debug("could not clear invalid entry, leaving it to the scanner", "dir", dir)
		return
	}
	defer func() {
		if err := unlock.Unlock(); err != nil {
			s.log.Warn("failed to release entry lock", "dir", dir, "error", err)
		}
	}()

	if err := os.Remove(filepath.Join(dir, domain.DataFileName)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Warn("failed to clear invalid entry payload", "dir", dir, "error", err)
	}
	if err := os.Remove(filepath.Join(dir, domain.MetadataFileName)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Warn("failed to clear invalid entry metadata", "dir", dir, "error", err)
	}
	s.log.Info("cleared invalid cache entry", "dir", dir)
}

// Populate copies the file at srcPath into the keyed entry. The write order
// is the crux: payload first, metadata last, so that a crash mid-write never
// leaves a committed entry with a partial payload.
func (s *Store) Populate(ctx context.Context, key domain.CacheKey, srcPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := key.Validate(); err != nil {
		return err
	}

	dir := filepath.Join(s.root, key.RelativePath())
	metaPath := filepath.Join(dir, domain.MetadataFileName)
	if fileExists(metaPath) {
		return nil
	}

	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create cache entry directory"), "dir", dir)
	}

	unlock, ok, err := s.locker.TryLock(filepath.Join(dir, domain.LockFileName))
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to acquire exclusive entry lock"), "dir", dir)
	}
	if !ok {
		// Another process is writing or evicting this entry. Either way the
		// population is redundant.
		s.log.Debug("cache entry locked, skipping population", "dir", dir)
		return nil
	}
	defer func() {
		if err := unlock.Unlock(); err != nil {
			s.log.Warn("failed to release entry lock", "dir", dir, "error", err)
		}
	}()

	if fileExists(metaPath) {
		return nil
	}

	if err := localfs.CopyFile(srcPath, filepath.Join(dir, domain.DataFileName)); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write cache payload"), "dir", dir)
	}

	meta := domain.EntryMetadata{
		FileName:  filepath.Base(srcPath),
		Checksum:  key.Checksum,
		SourceKey: key.SourceKey,
		CreatedAt: s.clock.Now(),
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return zerr.Wrap(err, "failed to marshal entry metadata")
	}
	//nolint:gosec // Path is derived from a validated cache key
	if err := os.WriteFile(metaPath, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write entry metadata"), "dir", dir)
	}

	s.log.Debug("populated persistent cache", "key", key.Checksum.Encode(), "dir", dir)
	return nil
}

func (s *Store) readMetadata(dir string) (domain.EntryMetadata, error) {
	//nolint:gosec // Path is derived from a validated cache key
	data, err := os.ReadFile(filepath.Join(dir, domain.MetadataFileName))
	if err != nil {
		return domain.EntryMetadata{}, err
	}
	var meta domain.EntryMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return domain.EntryMetadata{}, zerr.With(zerr.Wrap(err, "failed to unmarshal entry metadata"), "dir", dir)
	}
	return meta, nil
}

// touch refreshes the metadata mtime, which is the entry's last-access time.
// Failure only ages the entry early, so it is logged and swallowed.
func (s *Store) touch(dir string) {
	now := s.clock.Now()
	if err := os.Chtimes(filepath.Join(dir, domain.MetadataFileName), now, now); err != nil {
		s.log.Warn("failed to refresh entry last-access time", "dir", dir, "error", err)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
