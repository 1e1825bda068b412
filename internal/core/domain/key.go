package domain

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"
)

// KeyFingerprint returns a short stable fingerprint of a dedup key, used for
// log correlation without spilling full parameter maps into log lines.
func KeyFingerprint(key string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(key))
}

// ChecksumAlgorithm identifies a supported content checksum algorithm.
type ChecksumAlgorithm string

const (
	// ChecksumSHA256 is the default content-addressing algorithm.
	ChecksumSHA256 ChecksumAlgorithm = "sha256"

	// ChecksumXXH64 is a fast non-cryptographic alternative for trusted stores.
	ChecksumXXH64 ChecksumAlgorithm = "xxh64"
)

var hexPattern = regexp.MustCompile(`^[0-9a-f]+$`)

// Checksum is an algorithm-tagged content digest, hex encoded.
type Checksum struct {
	Algorithm ChecksumAlgorithm `json:"algorithm"`
	Hex       string            `json:"hex"`
}

// Validate checks that the checksum is well formed.
func (c Checksum) Validate() error {
	switch c.Algorithm {
	case ChecksumSHA256, ChecksumXXH64:
	default:
		return zerr.With(ErrUnknownChecksumAlgorithm, "algorithm", string(c.Algorithm))
	}
	if c.Hex == "" || !hexPattern.MatchString(c.Hex) {
		return zerr.With(ErrMalformedChecksum, "checksum", c.Hex)
	}
	return nil
}

// Encode returns the canonical "<algorithm>:<hex>" form.
func (c Checksum) Encode() string {
	return fmt.Sprintf("%s:%s", c.Algorithm, c.Hex)
}

// String implements fmt.Stringer.
func (c Checksum) String() string { return c.Encode() }

// CacheKey addresses one entry in the persistent content cache.
// It is content-addressed: the same path with changed content yields a
// different key and therefore a miss.
type CacheKey struct {
	// SourceKey is the dedup key of the originating ResolveSource.
	SourceKey string

	// Team is the tenant label scoping the entry.
	Team string

	// Checksum addresses the content itself.
	Checksum Checksum
}

// NewCacheKey builds a CacheKey for a source and its content checksum,
// applying the default team when the source carries none.
func NewCacheKey(source ResolveSource, checksum Checksum) CacheKey {
	return CacheKey{
		SourceKey: source.Key(),
		Team:      source.Team(),
		Checksum:  checksum,
	}
}

// Validate checks that the key can be mapped onto the disk layout.
func (k CacheKey) Validate() error {
	if k.Team == "" {
		return ErrMissingTeam
	}
	return k.Checksum.Validate()
}

// RelativePath returns the entry directory path below the cache root:
// <team>/<algorithm>/<checksum>. The three levels pin the entry boundary at
// the fixed scan depth.
func (k CacheKey) RelativePath() string {
	return filepath.Join(k.Team, string(k.Checksum.Algorithm), k.Checksum.Hex)
}
