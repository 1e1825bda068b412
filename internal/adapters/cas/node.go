package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/jonboulle/clockwork"
	"go.trai.ch/stash/internal/adapters/clock"
	"go.trai.ch/stash/internal/adapters/config"
	"go.trai.ch/stash/internal/adapters/flock"
	localfs "go.trai.ch/stash/internal/adapters/fs"
	"go.trai.ch/stash/internal/adapters/logger"
	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/stash/internal/core/ports"
)

// NodeID is the unique identifier for the content store Graft node.
const NodeID graft.ID = "adapter.content_store"

func init() {
	graft.Register(graft.Node[ports.ContentStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID, flock.NodeID, localfs.HasherNodeID, clock.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.ContentStore, error) {
			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			locker, err := graft.Dep[ports.EntryLocker](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[*localfs.Hasher](ctx)
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
			return NewStore(settings.RootDir, locker, hasher, clk, log), nil
		},
	})
}
