package sweep

import (
	"context"
	"errors"
	"io/fs"

	"github.com/jonboulle/clockwork"
	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/stash/internal/core/ports"
)

// Governor keeps the shared cache within its size budget. Each cycle runs a
// cheap aggregate size pre-check and only falls through to the expensive
// scan/select/evict path when over budget. A cycle never returns an error:
// it must be safe to run unattended forever, and an under-evicting cycle is
// simply corrected by the next one.
type Governor struct {
	settings *domain.Settings
	scanner  *Scanner
	evictor  *Evictor
	tracer   ports.Tracer
	clock    clockwork.Clock
	log      ports.Logger
}

// NewGovernor creates a new Governor.
func NewGovernor(settings *domain.Settings, scanner *Scanner, evictor *Evictor, tracer ports.Tracer, clock clockwork.Clock, log ports.Logger) *Governor {
	return &Governor{
		settings: settings,
		scanner:  scanner,
		evictor:  evictor,
		tracer:   tracer,
		clock:    clock,
		log:      log,
	}
}

// RunCycle runs one governance cycle.
func (g *Governor) RunCycle(ctx context.Context) {
	_, span := g.tracer.Start(ctx, "governor cycle")
	defer span.End()

	size, err := aggregateSize(g.settings.RootDir)
	if err != nil {
		g.log.Warn("failed to measure cache size", "root", g.settings.RootDir, "error", err)
		return
	}
	span.SetAttribute("size_bytes", size)
	if size <= g.settings.MaxSizeBytes {
		g.log.Debug("cache within budget", "size", size, "max", g.settings.MaxSizeBytes)
		return
	}

	entries, err := g.scanner.Scan(g.settings.RootDir)
	if err != nil {
		span.RecordError(err)
		g.log.Warn("cache scan failed", "root", g.settings.RootDir, "error", err)
		return
	}

	victims := Select(entries, g.settings.MaxSizeBytes, g.settings.TrimToRatio)
	g.log.Info("cache over budget, evicting",
		"size", size, "max", g.settings.MaxSizeBytes,
		"entries", len(entries), "victims", len(victims))
	g.evictor.Evict(victims)
}

// Run cycles the governor at the configured interval until ctx is done. The
// first cycle runs immediately.
func (g *Governor) Run(ctx context.Context) error {
	g.RunCycle(ctx)

	ticker := g.clock.NewTicker(g.settings.ScanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			g.RunCycle(ctx)
		}
	}
}

// aggregateSize sums every file below root without classifying entries.
// There is no cheaper aggregate query on a plain filesystem, but skipping
// the per-entry stat and metadata reads keeps the common case light. A
// missing root is an empty cache, not an error.
func aggregateSize(root string) (int64, error) {
	size, err := dirSize(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	return size, nil
}
