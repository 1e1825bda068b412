package memo

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/jonboulle/clockwork"
	"go.trai.ch/stash/internal/adapters/cas"      //nolint:depguard // Wired in engine wiring
	"go.trai.ch/stash/internal/adapters/clock"    //nolint:depguard // Wired in engine wiring
	localfs "go.trai.ch/stash/internal/adapters/fs" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/stash/internal/adapters/logger"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/stash/internal/adapters/pool"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/stash/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/stash/internal/core/ports"
)

// NodeID is the unique identifier for the memo cache Graft node.
const NodeID graft.ID = "engine.memo"

func init() {
	graft.Register(graft.Node[*Cache]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			localfs.LoaderNodeID,
			cas.NodeID,
			pool.NodeID,
			progrock.NodeID,
			clock.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Cache, error) {
			loader, err := graft.Dep[ports.Loader](ctx)
			if err != nil {
				return nil, err
			}

			store, err := graft.Dep[ports.ContentStore](ctx)
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

			return New([]ports.Loader{loader}, store, workers, tracer, clk, log), nil
		},
	})
}
