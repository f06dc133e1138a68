package dualcli

import (
	"fmt"
	"strings"

	"github.com/mwantia/dualcli/cmd"
	"github.com/mwantia/dualcli/log"
)

const (
	GlobalMode         = "mode"
	GlobalLogLevel     = "log-level"
	GlobalDetailedLogs = "detailed-logs"
)

// Globals holds the global options found on the command line. Nil fields were not given.
type Globals struct {
	Mode     Mode
	LogLevel *log.LogLevel
	Detailed *bool
}

// ExtractGlobals removes the global options from tokens wherever they appear and
// returns them together with the remaining tokens. Tokens after "--" are left alone.
func ExtractGlobals(tokens []string) (Globals, []string, error) {
	var globals Globals
	rest := make([]string, 0, len(tokens))

	for i := 0; i < len(tokens); i++ {
		token := tokens[i]
		if token == "--" {
			rest = append(rest, tokens[i:]...)
			break
		}

		name, found := strings.CutPrefix(token, "--")
		if !found {
			rest = append(rest, token)
			continue
		}
		key, value, hasValue := strings.Cut(name, "=")

		switch key {
		case GlobalMode, GlobalLogLevel:
			if !hasValue {
				if i+1 >= len(tokens) || strings.HasPrefix(tokens[i+1], "-") {
					return Globals{}, nil, &cmd.ValidationError{Option: key, Token: token, Reason: "requires a value"}
				}
				value = tokens[i+1]
				i++
			}
			if value == "" {
				return Globals{}, nil, &cmd.ValidationError{Option: key, Token: token, Reason: "requires a value"}
			}

			if key == GlobalMode {
				globals.Mode = Mode(value)
				continue
			}
			level, ok := log.ParseLevel(value)
			if !ok {
				return Globals{}, nil, &cmd.ValidationError{
					Option: key,
					Token:  value,
					Reason: fmt.Sprintf("unknown log level %q (expected one of %s)", value, strings.Join(log.LevelNames(), ", ")),
				}
			}
			globals.LogLevel = &level

		case GlobalDetailedLogs:
			detailed := true
			if hasValue {
				switch strings.ToLower(value) {
				case "true", "1", "yes":
				case "false", "0", "no":
					detailed = false
				default:
					return Globals{}, nil, &cmd.ValidationError{Option: key, Token: value, Reason: fmt.Sprintf("invalid boolean %q", value)}
				}
			}
			globals.Detailed = &detailed

		case "no-" + GlobalDetailedLogs:
			if hasValue {
				rest = append(rest, token)
				continue
			}
			detailed := false
			globals.Detailed = &detailed

		default:
			rest = append(rest, token)
		}
	}

	return globals, rest, nil
}

// GlobalOptions describes the global options for help output.
func (a *Application) GlobalOptions() cmd.OptionSchema {
	modes := make([]string, 0, len(a.modes)+1)
	for _, mode := range a.modes {
		modes = append(modes, string(mode))
	}
	modes = append(modes, string(ModeDefault))

	return cmd.OptionSchema{
		{
			Name:        GlobalMode,
			Description: "Presentation mode",
			Enum:        modes,
			Default:     string(a.defaultMode),
		},
		{
			Name:            GlobalLogLevel,
			Description:     "Minimum log level",
			Enum:            log.LevelNames(),
			CaseInsensitive: true,
		},
		{
			Name:        GlobalDetailedLogs,
			Type:        cmd.TypeBoolean,
			Description: "Include timestamps and logger names in log output",
		},
	}
}
