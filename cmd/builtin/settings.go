package builtin

import (
	"context"
	"fmt"

	"github.com/mwantia/dualcli/cmd"
	"github.com/mwantia/dualcli/log"
	"github.com/mwantia/dualcli/settings"
)

const (
	OptionLogLevel     = "log-level"
	OptionDetailedLogs = "detailed-logs"
)

// SettingsConfig is the typed configuration of the settings command.
type SettingsConfig struct {
	Level    log.LogLevel
	Detailed bool
}

// SettingsCommand changes the logging behavior of the running application.
// It is only offered by interactive front-ends.
type SettingsCommand struct {
	cmd.Base
}

func NewSettings() *SettingsCommand {
	return &SettingsCommand{
		Base: cmd.Base{
			Use:   "settings",
			Short: "Change log level and log detail",
			Label: "Settings",
			NoCLI: true,
			Flags: cmd.OptionSchema{
				{
					Name:            OptionLogLevel,
					Label:           "Log level",
					Description:     "Minimum level of written log messages",
					Enum:            log.LevelNames(),
					Default:         log.Info.Name(),
					CaseInsensitive: true,
					Order:           1,
				},
				{
					Name:        OptionDetailedLogs,
					Label:       "Detailed logs",
					Description: "Prefix log messages with timestamp and logger name",
					Type:        cmd.TypeBoolean,
					Default:     false,
					Order:       2,
				},
			},
		},
	}
}

// BuildConfig maps the level name to a log level. Unknown names fall back to info.
func (s *SettingsCommand) BuildConfig(ctx context.Context, values cmd.OptionValues) (any, error) {
	return SettingsConfig{
		Level:    log.Parse(values.String(OptionLogLevel)),
		Detailed: values.Bool(OptionDetailedLogs),
	}, nil
}

func (s *SettingsCommand) Execute(ctx context.Context, config any, ec *cmd.ExecutionContext) (cmd.Result, error) {
	cfg, ok := config.(SettingsConfig)
	if !ok {
		built, _ := s.BuildConfig(ctx, ec.Values)
		cfg = built.(SettingsConfig)
	}

	logger := ec.Logger()
	logger.SetMinLevel(cfg.Level)
	logger.SetDetailed(cfg.Detailed)

	if ec.App != nil && ec.App.Store != nil {
		err := ec.App.Store.Save(ctx, settings.Settings{
			LogLevel:     cfg.Level.Name(),
			DetailedLogs: cfg.Detailed,
		})
		if err != nil {
			return cmd.Result{}, fmt.Errorf("failed to save settings: %w", err)
		}
	}

	detail := "off"
	if cfg.Detailed {
		detail = "on"
	}
	message := fmt.Sprintf("Log level set to %s, detailed logs %s", cfg.Level.Name(), detail)
	logger.Debug("%s", message)

	return cmd.Result{
		Success: true,
		Data:    cfg,
		Message: message,
	}, nil
}

// OnConfigChange proposes detailed logs when the level is lowered to debug.
func (s *SettingsCommand) OnConfigChange(key string, value any, values cmd.OptionValues) cmd.OptionValues {
	if key != OptionLogLevel {
		return nil
	}
	if level, ok := value.(string); ok && log.Parse(level) == log.Debug {
		return cmd.OptionValues{OptionDetailedLogs: true}
	}
	return nil
}
