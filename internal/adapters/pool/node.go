package pool

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/stash/internal/adapters/config"
	"go.trai.ch/stash/internal/adapters/logger"
	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/stash/internal/core/ports"
)

// NodeID is the unique identifier for the worker pool adapter Graft node.
const NodeID graft.ID = "adapter.worker_pool"

func init() {
	graft.Register(graft.Node[ports.Pool]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID, config.NodeID},
		Run: func(ctx context.Context) (ports.Pool, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			return New(settings.Workers, log), nil
		},
	})
}
