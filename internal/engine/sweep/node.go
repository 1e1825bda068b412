package sweep

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/jonboulle/clockwork"
	"go.trai.ch/stash/internal/adapters/clock"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/stash/internal/adapters/config" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/stash/internal/adapters/flock"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/stash/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/stash/internal/adapters/pool"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/stash/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/stash/internal/core/ports"
)

// NodeID is the unique identifier for the governor Graft node.
const NodeID graft.ID = "engine.governor"

func init() {
	graft.Register(graft.Node[*Governor]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			flock.NodeID,
			pool.NodeID,
			progrock.NodeID,
			clock.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Governor, error) {
			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}

			locker, err := graft.Dep[ports.EntryLocker](ctx)
			if err != nil {
				return nil, err
			}

			workers, err := graft.Dep[ports.Pool](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			clk, err := graft.Dep[clockwork.Clock](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			scanner := NewScanner(locker, log)
			evictor := NewEvictor(locker, workers, log)
			return NewGovernor(settings, scanner, evictor, tracer, clk, log), nil
		},
	})
}
