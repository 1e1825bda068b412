package config

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/stash/internal/core/domain"
)

// NodeID is the unique identifier for the settings Graft node.
const NodeID graft.ID = "adapter.settings"

func init() {
	graft.Register(graft.Node[*domain.Settings]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*domain.Settings, error) {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, err
			}
			loader := &FileLoader{}
			return loader.Load(cwd)
		},
	})
}
