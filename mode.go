package dualcli

import (
	"fmt"
	"slices"
)

// ResolveMode maps a requested mode to the mode a run uses. An empty request and
// "default" resolve to the default mode.
func (a *Application) ResolveMode(requested Mode) (Mode, error) {
	if requested == "" || requested == ModeDefault {
		return a.defaultMode, nil
	}
	if !slices.Contains(a.modes, requested) {
		return "", &ModeError{
			Requested: requested,
			Supported: slices.Clone(a.modes),
		}
	}
	return requested, nil
}

// SupportedModes returns the supported modes in declaration order.
func (a *Application) SupportedModes() []Mode {
	return slices.Clone(a.modes)
}

func (a *Application) DefaultMode() Mode {
	return a.defaultMode
}

func checkModes(modes []Mode, defaultMode Mode) error {
	seen := make(map[Mode]bool, len(modes))
	for _, mode := range modes {
		if mode == "" || mode == ModeDefault {
			return fmt.Errorf("%w: %q cannot be used as a supported mode", ErrInvalidConfig, mode)
		}
		if seen[mode] {
			return fmt.Errorf("%w: mode %q listed twice", ErrInvalidConfig, mode)
		}
		seen[mode] = true
	}
	if !seen[defaultMode] {
		return fmt.Errorf("%w: default mode %q is not supported", ErrInvalidConfig, defaultMode)
	}
	return nil
}
