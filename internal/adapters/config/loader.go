// Package config provides the configuration loader for stash.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/stash/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the configuration file looked up in the working directory.
const DefaultFileName = "stash.yaml"

// defaultMaxSizeBytes caps the cache at 10 GiB when the file sets no limit.
const defaultMaxSizeBytes = int64(10) << 30

var _ ports.SettingsLoader = (*FileLoader)(nil)

// FileLoader implements ports.SettingsLoader using a YAML file.
type FileLoader struct {
	// Filename overrides DefaultFileName when set.
	Filename string
}

// Load reads the configuration from the given working directory. A missing
// file is not an error: defaults apply, with the cache root placed under the
// user cache directory.
func (l *FileLoader) Load(cwd string) (*domain.Settings, error) {
	name := l.Filename
	if name == "" {
		name = DefaultFileName
	}
	path := filepath.Join(cwd, name)

	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return defaultSettings()
		}
		return nil, zerr.Wrap(err, "failed to read config file")
	}

	var file stashFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.Wrap(err, "failed to parse config file")
	}

	settings, err := file.Cache.toSettings()
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// stashFile represents the structure of the stash.yaml configuration file.
type stashFile struct {
	Version string   `yaml:"version"`
	Cache   cacheDTO `yaml:"cache"`
}

// cacheDTO represents the cache section of the configuration.
type cacheDTO struct {
	RootDir      string  `yaml:"root_dir"`
	MaxSizeMB    int64   `yaml:"max_size_mb"`
	TrimToRatio  float64 `yaml:"trim_to_ratio"`
	ScanInterval string  `yaml:"scan_interval"`
	Team         string  `yaml:"team"`
	Workers      int     `yaml:"workers"`
}

// toSettings overlays the configured fields onto the defaults; any field
// the file omits keeps its default value.
func (d cacheDTO) toSettings() (*domain.Settings, error) {
	s := &domain.Settings{
		RootDir:      d.RootDir,
		MaxSizeBytes: d.MaxSizeMB * 1024 * 1024,
		TrimToRatio:  d.TrimToRatio,
		ScanInterval: domain.DefaultScanInterval,
		Team:         d.Team,
		Workers:      d.Workers,
	}
	if s.RootDir == "" {
		userCache, err := os.UserCacheDir()
		if err != nil {
			return nil, zerr.Wrap(err, "failed to locate user cache directory")
		}
		s.RootDir = filepath.Join(userCache, "stash")
	}
	if s.MaxSizeBytes == 0 {
		s.MaxSizeBytes = defaultMaxSizeBytes
	}
	if s.TrimToRatio == 0 {
		s.TrimToRatio = domain.DefaultTrimToRatio
	}
	if s.Team == "" {
		s.Team = domain.DefaultTeam
	}
	if s.Workers == 0 {
		s.Workers = domain.DefaultWorkers
	}
	if d.ScanInterval != "" {
		interval, err := time.ParseDuration(d.ScanInterval)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to parse scan_interval"), "scan_interval", d.ScanInterval)
		}
		s.ScanInterval = interval
	}
	return s, nil
}

func defaultSettings() (*domain.Settings, error) {
	return cacheDTO{}.toSettings()
}
