// Package settings defines the user-adjustable runtime settings of an application
// and the Store contract used to persist them between runs.
package settings

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("settings: no stored settings")
)

// Settings is the persisted form of the logger configuration.
type Settings struct {
	LogLevel     string `json:"log_level" mapstructure:"log_level"`
	DetailedLogs bool   `json:"detailed_logs" mapstructure:"detailed_logs"`
}

// Store loads and saves Settings. Load returns ErrNotFound when nothing was stored yet.
type Store interface {
	Load(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, s Settings) error
}
