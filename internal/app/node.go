package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/stash/internal/adapters/config" //nolint:depguard // Wired in app layer
	"go.trai.ch/stash/internal/adapters/logger" //nolint:depguard // Wired in app layer
	"go.trai.ch/stash/internal/adapters/pool"   //nolint:depguard // Wired in app layer
	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/stash/internal/core/ports"
	"go.trai.ch/stash/internal/engine/memo"
	"go.trai.ch/stash/internal/engine/sweep"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components bundles what the process entry point needs from the graph.
type Components struct {
	App      *App
	Logger   ports.Logger
	Settings *domain.Settings
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			memo.NodeID,
			sweep.NodeID,
			pool.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			cache, err := graft.Dep[*memo.Cache](ctx)
			if err != nil {
				return nil, err
			}

			governor, err := graft.Dep[*sweep.Governor](ctx)
			if err != nil {
				return nil, err
			}

			workers, err := graft.Dep[ports.Pool](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(cache, governor, workers, log), nil
		},
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			config.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			application, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{
				App:      application,
				Logger:   log,
				Settings: settings,
			}, nil
		},
	})
}
