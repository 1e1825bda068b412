// Package fs implements filesystem-backed resolution: content checksums and
// the local-path loader.
package fs

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/zerr"
)

// Hasher computes content checksums for cache keys and validation.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// ComputeFileChecksum hashes the file at path with the given algorithm.
func (h *Hasher) ComputeFileChecksum(path string, algorithm domain.ChecksumAlgorithm) (domain.Checksum, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return domain.Checksum{}, zerr.With(zerr.Wrap(err, "failed to open file for checksum"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	digest, err := newDigest(algorithm)
	if err != nil {
		return domain.Checksum{}, err
	}
	if _, err := io.Copy(digest, f); err != nil {
		return domain.Checksum{}, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}

	return domain.Checksum{
		Algorithm: algorithm,
		Hex:       hex.EncodeToString(digest.Sum(nil)),
	}, nil
}

// Verify recomputes the checksum of path and compares it to want.
func (h *Hasher) Verify(path string, want domain.Checksum) error {
	got, err := h.ComputeFileChecksum(path, want.Algorithm)
	if err != nil {
		return err
	}
	if got.Hex != want.Hex {
		return zerr.With(zerr.With(domain.ErrChecksumMismatch, "want", want.Encode()), "got", got.Encode())
	}
	return nil
}

func newDigest(algorithm domain.ChecksumAlgorithm) (hash.Hash, error) {
	switch algorithm {
	case domain.ChecksumSHA256:
		return sha256.New(), nil
	case domain.ChecksumXXH64:
		return xxhash.New(), nil
	default:
		return nil, zerr.With(domain.ErrUnknownChecksumAlgorithm, "algorithm", string(algorithm))
	}
}
