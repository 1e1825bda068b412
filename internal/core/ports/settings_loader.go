package ports

import "go.trai.ch/stash/internal/core/domain"

// SettingsLoader defines the interface for loading the cache configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=settings_loader.go -destination=mocks/mock_settings_loader.go -package=mocks
type SettingsLoader interface {
	// Load reads the configuration from the given working directory and
	// returns validated settings.
	Load(cwd string) (*domain.Settings, error)
}
