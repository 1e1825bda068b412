package domain

import (
	"path/filepath"
	"time"
)

// CacheEntry describes one on-disk entry of the persistent cache, as seen by
// the scanner. A valid entry has all three of data, metadata, and lock files
// present in its directory.
type CacheEntry struct {
	// Dir is the entry directory (at EntryDepth below the cache root).
	Dir string

	// Size is the total on-disk size of the entry in bytes.
	Size int64

	// LastAccess is the metadata file's modification time, refreshed on
	// every cache hit.
	LastAccess time.Time
}

// DataPath returns the path of the entry's payload file.
func (e CacheEntry) DataPath() string { return filepath.Join(e.Dir, DataFileName) }

// MetadataPath returns the path of the entry's metadata file.
func (e CacheEntry) MetadataPath() string { return filepath.Join(e.Dir, MetadataFileName) }

// LockPath returns the path of the entry's advisory lock file.
func (e CacheEntry) LockPath() string { return filepath.Join(e.Dir, LockFileName) }

// TotalSize sums the sizes of a set of entries.
func TotalSize(entries []CacheEntry) int64 {
	var total int64
	for _, e := range entries {
		total += e.Size
	}
	return total
}

// EntryMetadata is the JSON document stored in an entry's metadata file.
type EntryMetadata struct {
	// FileName is the original artifact file name, used when materializing
	// a hit into a caller's target directory.
	FileName string `json:"file_name"`

	// Checksum addresses and verifies the payload.
	Checksum Checksum `json:"checksum"`

	// SourceKey records the dedup key of the source that populated the entry.
	SourceKey string `json:"source_key,omitzero"`

	// CreatedAt is when the entry was populated.
	CreatedAt time.Time `json:"created_at"`
}
