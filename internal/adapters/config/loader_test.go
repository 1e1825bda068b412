package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stash/internal/adapters/config"
	"go.trai.ch/stash/internal/core/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, config.DefaultFileName), []byte(content), 0o600)
	require.NoError(t, err)
	return dir
}

func TestFileLoader_Load(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, `
version: "1"
cache:
  root_dir: /var/cache/stash
  max_size_mb: 100
  trim_to_ratio: 0.75
  scan_interval: 5m
  team: android-infra
  workers: 8
`)

	loader := &config.FileLoader{}
	settings, err := loader.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "/var/cache/stash", settings.RootDir)
	assert.Equal(t, int64(100<<20), settings.MaxSizeBytes)
	assert.InDelta(t, 0.75, settings.TrimToRatio, 1e-9)
	assert.Equal(t, 5*time.Minute, settings.ScanInterval)
	assert.Equal(t, "android-infra", settings.Team)
	assert.Equal(t, 8, settings.Workers)
}

func TestFileLoader_Defaults(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, `
version: "1"
cache:
  root_dir: /var/cache/stash
  max_size_mb: 1
`)

	loader := &config.FileLoader{}
	settings, err := loader.Load(dir)
	require.NoError(t, err)

	assert.InDelta(t, domain.DefaultTrimToRatio, settings.TrimToRatio, 1e-9)
	assert.Equal(t, domain.DefaultScanInterval, settings.ScanInterval)
	assert.Equal(t, domain.DefaultTeam, settings.Team)
	assert.Equal(t, domain.DefaultWorkers, settings.Workers)
}

func TestFileLoader_PartialFileFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	// A file that only overrides some fields gets the same defaults a
	// missing file would for the rest.
	dir := writeConfig(t, `
version: "1"
cache:
  team: android-infra
`)

	loader := &config.FileLoader{}
	settings, err := loader.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "android-infra", settings.Team)
	assert.NotEmpty(t, settings.RootDir)
	assert.Positive(t, settings.MaxSizeBytes)
	require.NoError(t, settings.Validate())
}

func TestFileLoader_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	loader := &config.FileLoader{}
	settings, err := loader.Load(t.TempDir())
	require.NoError(t, err)

	assert.NotEmpty(t, settings.RootDir)
	require.NoError(t, settings.Validate())
}

func TestFileLoader_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{
			name: "bad ratio",
			content: `
cache:
  root_dir: /var/cache/stash
  max_size_mb: 1
  trim_to_ratio: 1.5
`,
		},
		{
			name: "bad interval",
			content: `
cache:
  root_dir: /var/cache/stash
  max_size_mb: 1
  scan_interval: often
`,
		},
		{
			name:    "not yaml",
			content: "{ definitely not yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := writeConfig(t, tt.content)
			loader := &config.FileLoader{}
			_, err := loader.Load(dir)
			require.Error(t, err)
		})
	}
}

func TestFileLoader_InvalidSurfacesSentinel(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, `
cache:
  root_dir: /var/cache/stash
  max_size_mb: 1
  trim_to_ratio: 1.5
`)
	loader := &config.FileLoader{}
	_, err := loader.Load(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidSettings))
}
