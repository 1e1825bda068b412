// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/stash/internal/adapters/cas"
	_ "go.trai.ch/stash/internal/adapters/clock"
	_ "go.trai.ch/stash/internal/adapters/config"
	_ "go.trai.ch/stash/internal/adapters/flock"
	_ "go.trai.ch/stash/internal/adapters/fs"
	_ "go.trai.ch/stash/internal/adapters/logger"
	_ "go.trai.ch/stash/internal/adapters/pool"
	_ "go.trai.ch/stash/internal/adapters/telemetry/progrock"
	// Register app and engine nodes.
	_ "go.trai.ch/stash/internal/app"
	_ "go.trai.ch/stash/internal/engine/memo"
	_ "go.trai.ch/stash/internal/engine/sweep"
)
