package cmd

import (
	"fmt"
	"slices"
)

// HelpName is the name of the help command injected into every container.
const HelpName = "help"

const maxDepth = 32

// Node is one command within the assembled, read-only command tree.
type Node struct {
	Command  Command
	Parent   *Node
	Children []*Node

	injected bool
}

func (n *Node) Name() string {
	return n.Command.Name()
}

// Path returns the command names from the root down to n.
func (n *Node) Path() []string {
	var path []string
	for cur := n; cur != nil; cur = cur.Parent {
		path = append(path, cur.Name())
	}
	slices.Reverse(path)
	return path
}

func (n *Node) Child(name string) (*Node, bool) {
	return Find(n.Children, name)
}

// Injected reports whether the node was added during assembly instead of declared.
func (n *Node) Injected() bool {
	return n.injected
}

// IsContainer reports whether the command declares sub-commands.
func (n *Node) IsContainer() bool {
	return HasSubCommands(n.Command)
}

func (n *Node) IsExecutable() bool {
	return IsExecutable(n.Command)
}

// CheckTree validates commands and all of their descendants without modifying them.
// Top-level names must not be reserved; nested names must be neither reserved nor help.
func CheckTree(commands []Command, reserved []string) error {
	return checkLevel(commands, reserved, nil, 0)
}

func checkLevel(commands []Command, reserved []string, parent []string, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("%w: nesting below %v exceeds %d levels", ErrInvalidCommand, parent, maxDepth)
	}

	seen := make(map[string]bool, len(commands))
	for _, c := range commands {
		if c == nil || c.Name() == "" {
			return fmt.Errorf("%w: nil or unnamed command below %v", ErrInvalidCommand, parent)
		}

		name := c.Name()
		path := append(slices.Clone(parent), name)
		switch {
		case depth > 0 && name == HelpName:
			return fmt.Errorf("%w: %v", ErrHelpConflict, path)
		case slices.Contains(reserved, name):
			return fmt.Errorf("%w: %v", ErrReservedName, path)
		case seen[name]:
			return fmt.Errorf("%w: %v", ErrDuplicateName, path)
		}
		seen[name] = true

		if err := c.Options().Validate(); err != nil {
			return fmt.Errorf("command %v: %w", path, err)
		}
		if err := checkLevel(c.SubCommands(), reserved, path, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Assemble builds the command tree. Every node with declared sub-commands receives
// exactly one extra child created by helpFor, which renders help for that node.
func Assemble(commands []Command, helpFor func(parent *Node) Command) []*Node {
	return assembleLevel(commands, nil, helpFor)
}

func assembleLevel(commands []Command, parent *Node, helpFor func(*Node) Command) []*Node {
	nodes := make([]*Node, 0, len(commands))
	for _, c := range commands {
		node := &Node{Command: c, Parent: parent}
		node.Children = assembleLevel(c.SubCommands(), node, helpFor)
		if HasSubCommands(c) && helpFor != nil {
			node.Children = append(node.Children, &Node{
				Command:  helpFor(node),
				Parent:   node,
				injected: true,
			})
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// Find returns the node named name among nodes.
func Find(nodes []*Node, name string) (*Node, bool) {
	for _, n := range nodes {
		if n.Name() == name {
			return n, true
		}
	}
	return nil, false
}

// Resolve walks tokens down the tree and returns the deepest matching node together
// with the remaining tokens. Nodes for which visible returns false never match.
// A nil node means not even the first token matched.
func Resolve(roots []*Node, tokens []string, visible func(Command) bool) (*Node, []string) {
	var matched *Node
	level := roots
	rest := tokens

	for len(rest) > 0 {
		next, ok := Find(level, rest[0])
		if !ok || (visible != nil && !visible(next.Command)) {
			break
		}
		matched = next
		level = next.Children
		rest = rest[1:]
	}
	return matched, rest
}
