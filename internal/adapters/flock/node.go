package flock

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/stash/internal/core/ports"
)

// NodeID is the unique identifier for the entry locker adapter Graft node.
const NodeID graft.ID = "adapter.entry_locker"

func init() {
	graft.Register(graft.Node[ports.EntryLocker]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.EntryLocker, error) {
			return New(), nil
		},
	})
}
