package domain

import "errors"

var (
	// ErrUnknownChecksumAlgorithm is returned for a checksum algorithm the cache does not support.
	ErrUnknownChecksumAlgorithm = errors.New("unknown checksum algorithm")

	// ErrMalformedChecksum is returned when a checksum is empty or not lowercase hex.
	ErrMalformedChecksum = errors.New("malformed checksum")

	// ErrMissingTeam is returned when a cache key carries no tenant label.
	ErrMissingTeam = errors.New("cache key has no team")

	// ErrChecksumMismatch is returned when stored content no longer matches its checksum.
	ErrChecksumMismatch = errors.New("content checksum mismatch")

	// ErrNoResult is returned when a loader cannot produce a result for a source.
	ErrNoResult = errors.New("no loader produced a result")

	// ErrInvalidSettings is returned when cache settings fail validation.
	ErrInvalidSettings = errors.New("invalid cache settings")
)
