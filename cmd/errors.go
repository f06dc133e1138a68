package cmd

import (
	"errors"
	"fmt"
)

var (
	// Construction errors
	ErrInvalidCommand = errors.New("cmd: invalid command")
	ErrInvalidSchema  = errors.New("cmd: invalid option schema")
	ErrDuplicateName  = errors.New("cmd: command already registered")
	ErrReservedName   = errors.New("cmd: command name is reserved")
	ErrHelpConflict   = errors.New("cmd: sub-command conflicts with auto-injected help")

	// Parse errors
	ErrValidation = errors.New("cmd: validation failed")
)

// ValidationError is returned by the parser before any command code runs.
// Option names the offending option when known, Token the offending argument.
type ValidationError struct {
	Option string
	Token  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Option != "" {
		return fmt.Sprintf("option --%s: %s", e.Option, e.Reason)
	}
	return fmt.Sprintf("%s: %q", e.Reason, e.Token)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
