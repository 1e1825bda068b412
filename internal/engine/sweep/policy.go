package sweep

import (
	"sort"

	"go.trai.ch/stash/internal/core/domain"
)

// Select picks the entries to evict so the cache returns below its limit.
// It is pure: no I/O, no clock.
//
// When the total size is within maxSize it selects nothing. Otherwise it
// targets maxSize*trimToRatio and returns the oldest-first prefix of entries
// whose cumulative size covers the excess. Trimming below the limit rather
// than exactly to it keeps the next governor cycle on the cheap path.
//
// Equal last-access times are ordered by entry directory path, so eviction
// order is deterministic and reproducible.
func Select(entries []domain.CacheEntry, maxSize int64, trimToRatio float64) []domain.CacheEntry {
	total := domain.TotalSize(entries)
	if total <= maxSize {
		return nil
	}

	target := int64(float64(maxSize) * trimToRatio)
	toEvict := total - target

	sorted := make([]domain.CacheEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].LastAccess.Equal(sorted[j].LastAccess) {
			return sorted[i].Dir < sorted[j].Dir
		}
		return sorted[i].LastAccess.Before(sorted[j].LastAccess)
	})

	var cumulative int64
	for i, entry := range sorted {
		cumulative += entry.Size
		if cumulative >= toEvict {
			return sorted[:i+1]
		}
	}
	return sorted
}
