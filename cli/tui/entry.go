package tui

import (
	"github.com/mwantia/dualcli/cmd"
)

// Entry represents a command in the TUI list
type Entry struct {
	Node        *cmd.Node
	Name        string
	Label       string
	Description string
	IsGroup     bool
	Options     int
}

func newEntry(node *cmd.Node) *Entry {
	return &Entry{
		Node:        node,
		Name:        node.Name(),
		Label:       node.Command.DisplayName(),
		Description: node.Command.Description(),
		IsGroup:     node.IsContainer() && !node.IsExecutable(),
		Options:     len(node.Command.Options()),
	}
}

// DisplayName returns the label with a trailing slash for groups
func (e *Entry) DisplayName() string {
	if e.IsGroup {
		return e.Label + "/"
	}
	return e.Label
}

// Icon returns a marker for the kind of command
func (e *Entry) Icon() string {
	switch {
	case e.IsGroup:
		return "▸"
	case e.Node.Injected():
		return "?"
	case e.Options > 0:
		return "…"
	default:
		return "•"
	}
}
