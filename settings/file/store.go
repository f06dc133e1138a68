// Package file stores settings in a configuration file read through viper,
// with environment variables overriding the file content.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mwantia/dualcli/settings"
	"github.com/spf13/viper"
)

const (
	keyLogLevel     = "log_level"
	keyDetailedLogs = "detailed_logs"
)

// Store reads and writes a single settings file. The format follows the file
// extension (yaml, json, toml); files without extension are written as yaml.
type Store struct {
	mu         sync.Mutex
	path       string
	configType string
	envPrefix  string
}

// NewStore creates a store for path. With a non-empty envPrefix, variables such as
// <PREFIX>_LOG_LEVEL and <PREFIX>_DETAILED_LOGS override the file.
func NewStore(path, envPrefix string) *Store {
	configType := strings.TrimPrefix(filepath.Ext(path), ".")
	if configType == "" {
		configType = "yaml"
	}

	return &Store{
		path:       path,
		configType: configType,
		envPrefix:  envPrefix,
	}
}

// DefaultPath returns <user config dir>/<app>/settings.yaml.
func DefaultPath(app string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, app, "settings.yaml"), nil
}

func (s *Store) newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType(s.configType)

	if s.envPrefix != "" {
		v.SetEnvPrefix(s.envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
		v.AutomaticEnv()
	}
	return v
}

func (s *Store) Load(ctx context.Context) (*settings.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.newViper()
	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("settings: read %s: %w", s.path, err)
		}
		if !v.IsSet(keyLogLevel) && !v.IsSet(keyDetailedLogs) {
			return nil, settings.ErrNotFound
		}
	}

	return &settings.Settings{
		LogLevel:     v.GetString(keyLogLevel),
		DetailedLogs: v.GetBool(keyDetailedLogs),
	}, nil
}

func (s *Store) Save(ctx context.Context, value settings.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("settings: create directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType(s.configType)
	v.Set(keyLogLevel, value.LogLevel)
	v.Set(keyDetailedLogs, value.DetailedLogs)

	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("settings: write %s: %w", s.path, err)
	}
	return nil
}
