package domain

import (
	"time"

	"go.trai.ch/zerr"
)

const (
	// DefaultTrimToRatio trims the cache to 80% of the limit, leaving
	// headroom so the next governor cycle stays on the cheap path.
	DefaultTrimToRatio = 0.8

	// DefaultScanInterval is how often the governor runs when daemonized.
	DefaultScanInterval = 10 * time.Minute

	// DefaultWorkers bounds the worker pool when the settings carry none.
	DefaultWorkers = 4
)

// Settings holds the configuration of the cache engine.
type Settings struct {
	// RootDir is the shared persistent cache root directory.
	RootDir string

	// MaxSizeBytes is the hard size limit of the persistent cache.
	MaxSizeBytes int64

	// TrimToRatio sets the eviction target as a fraction of MaxSizeBytes.
	// Must be in (0, 1).
	TrimToRatio float64

	// ScanInterval is the governor's cycle period in daemon mode.
	ScanInterval time.Duration

	// Team is the default tenant label for persistent cache entries.
	Team string

	// Workers bounds the shared worker pool.
	Workers int
}

// Validate checks the settings and returns ErrInvalidSettings with metadata
// on the first violation.
func (s Settings) Validate() error {
	if s.RootDir == "" {
		return zerr.With(ErrInvalidSettings, "field", "root_dir")
	}
	if s.MaxSizeBytes <= 0 {
		return zerr.With(zerr.With(ErrInvalidSettings, "field", "max_size_bytes"), "value", s.MaxSizeBytes)
	}
	if s.TrimToRatio <= 0 || s.TrimToRatio >= 1 {
		return zerr.With(zerr.With(ErrInvalidSettings, "field", "trim_to_ratio"), "value", s.TrimToRatio)
	}
	if s.ScanInterval <= 0 {
		return zerr.With(ErrInvalidSettings, "field", "scan_interval")
	}
	if s.Workers <= 0 {
		return zerr.With(ErrInvalidSettings, "field", "workers")
	}
	return nil
}
