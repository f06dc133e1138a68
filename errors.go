package dualcli

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Construction errors
	ErrInvalidConfig = errors.New("dualcli: invalid configuration")

	// Run errors
	ErrUnsupportedMode = errors.New("dualcli: unsupported mode")
)

// ModeError reports a requested mode the application does not support.
type ModeError struct {
	Requested Mode
	Supported []Mode
}

func (e *ModeError) Error() string {
	supported := make([]string, 0, len(e.Supported))
	for _, mode := range e.Supported {
		supported = append(supported, string(mode))
	}
	return fmt.Sprintf("unsupported mode %q (supported modes: %s)", e.Requested, strings.Join(supported, ", "))
}

func (e *ModeError) Is(target error) bool {
	return target == ErrUnsupportedMode
}

// ConfigBuildError wraps an error returned by a command's BuildConfig.
// Its message is the message of the wrapped error.
type ConfigBuildError struct {
	Path []string
	Err  error
}

func (e *ConfigBuildError) Error() string {
	return e.Err.Error()
}

func (e *ConfigBuildError) Unwrap() error {
	return e.Err
}

// ExecutionError wraps an error returned by a command's Execute.
// Its message is the message of the wrapped error; Path names the command.
type ExecutionError struct {
	Path []string
	Err  error
}

func (e *ExecutionError) Error() string {
	return e.Err.Error()
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
