// Package appctx holds the context of the currently active application: its
// identity, the logger every command writes to, and the optional settings store.
//
// The context is passed explicitly to commands through their execution context.
// Current exists for code that has no such handle. It is a single pointer that
// the most recently constructed application replaces; running two applications
// in one process is not supported.
package appctx

import (
	"slices"
	"sync/atomic"

	"github.com/mwantia/dualcli/log"
	"github.com/mwantia/dualcli/settings"
)

// Mode names the presentation backend an application runs under.
type Mode string

const (
	ModeCLI Mode = "cli"
	ModeTUI Mode = "tui"

	// ModeDefault is a placeholder resolving to the application's default mode
	ModeDefault Mode = "default"
)

// Info describes the application owning a Context.
type Info struct {
	Name           string
	Version        string
	DefaultMode    Mode
	SupportedModes []Mode
}

func (i Info) Supports(mode Mode) bool {
	return slices.Contains(i.SupportedModes, mode)
}

type Context struct {
	Info   Info
	Logger *log.Logger

	// Store persists settings changes; nil when the application keeps them in memory only
	Store settings.Store
}

var current atomic.Pointer[Context]

// Set replaces the process-wide context.
func Set(ctx *Context) {
	current.Store(ctx)
}

// Current returns the process-wide context, or nil before any application was constructed.
func Current() *Context {
	return current.Load()
}

// CurrentLogger returns the logger of the current context, or a discarding logger.
func CurrentLogger() *log.Logger {
	if ctx := Current(); ctx != nil && ctx.Logger != nil {
		return ctx.Logger
	}
	return log.Discard()
}
