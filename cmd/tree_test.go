package cmd

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var reserved = []string{"help", "version", "settings"}

func noop(name string) Command {
	return Func(name, name+" command", nil, func(context.Context, OptionValues, *ExecutionContext) (Result, error) {
		return Result{Success: true}, nil
	})
}

func helpStub(parent *Node) Command {
	return Base{Use: HelpName, Short: "help for " + parent.Name()}
}

func TestCheckTree(t *testing.T) {
	tests := []struct {
		name     string
		commands []Command
		want     error
	}{
		{name: "Valid", commands: []Command{NewGroup("math", "", noop("add")), noop("greet")}},
		{name: "ReservedTopLevel", commands: []Command{noop("version")}, want: ErrReservedName},
		{name: "HelpTopLevel", commands: []Command{noop("help")}, want: ErrReservedName},
		{name: "ReservedNested", commands: []Command{NewGroup("math", "", noop("settings"))}, want: ErrReservedName},
		{name: "HelpNested", commands: []Command{NewGroup("a", "", NewGroup("b", "", noop("help")))}, want: ErrHelpConflict},
		{name: "DuplicateSiblings", commands: []Command{noop("greet"), noop("greet")}, want: ErrDuplicateName},
		{name: "Nil", commands: []Command{nil}, want: ErrInvalidCommand},
		{
			name:     "InvalidSchema",
			commands: []Command{Func("x", "", OptionSchema{{Name: "a", Enum: []string{"b"}, Default: "c"}}, nil)},
			want:     ErrInvalidSchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTree(tt.commands, reserved)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCheckTree_ReservedAtAnyDepthProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		depth := rapid.IntRange(0, 6).Draw(t, "depth")
		name := rapid.SampledFrom(reserved).Draw(t, "name")

		command := noop(name)
		for i := depth; i > 0; i-- {
			command = NewGroup(fmt.Sprintf("group%d", i), "", command)
		}

		want := ErrReservedName
		if depth > 0 && name == HelpName {
			want = ErrHelpConflict
		}

		err := CheckTree([]Command{noop("ok"), command}, reserved)
		if !errors.Is(err, want) {
			t.Fatalf("%q at depth %d: got %v, want %v", name, depth, err, want)
		}
	})
}

func TestAssemble_InjectsHelpOnce(t *testing.T) {
	math := NewGroup("math", "arithmetic", noop("add"), NewGroup("trig", "", noop("sin")))
	roots := Assemble([]Command{math, noop("greet")}, helpStub)

	require.Len(t, roots, 2)
	assert.Empty(t, roots[1].Children)

	mathNode := roots[0]
	require.Len(t, mathNode.Children, 3)
	assert.Equal(t, []string{"add", "trig", HelpName}, childNames(mathNode))
	assert.True(t, mathNode.Children[2].Injected())
	assert.False(t, mathNode.Children[0].Injected())

	trig, ok := mathNode.Child("trig")
	require.True(t, ok)
	assert.Equal(t, []string{"sin", HelpName}, childNames(trig))
	assert.Equal(t, []string{"math", "trig", HelpName}, trig.Children[1].Path())

	// declared commands stay untouched
	assert.Len(t, math.SubCommands(), 2)
}

func TestAssemble_HelpCountProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		commands := genCommands(t, 3, "c")
		roots := Assemble(commands, helpStub)

		var walk func(nodes []*Node)
		walk = func(nodes []*Node) {
			for _, n := range nodes {
				injected := 0
				for _, child := range n.Children {
					if child.Injected() {
						injected++
					}
				}
				want := 0
				if HasSubCommands(n.Command) {
					want = 1
				}
				if injected != want {
					t.Fatalf("%v has %d injected help nodes, want %d", n.Path(), injected, want)
				}
				walk(n.Children)
			}
		}
		walk(roots)
	})
}

func genCommands(t *rapid.T, depth int, prefix string) []Command {
	count := rapid.IntRange(0, 3).Draw(t, prefix+"count")
	commands := make([]Command, 0, count)
	for i := range count {
		name := fmt.Sprintf("%s%d", prefix, i)
		if depth > 0 && rapid.Bool().Draw(t, name+"group") {
			commands = append(commands, NewGroup(name, "", genCommands(t, depth-1, name+"_")...))
			continue
		}
		commands = append(commands, noop(name))
	}
	return commands
}

func TestResolve(t *testing.T) {
	hidden := Func("secret", "", nil, nil)
	hidden.NoCLI = true

	roots := Assemble([]Command{
		NewGroup("math", "", noop("add"), hidden),
		noop("greet"),
	}, helpStub)
	cliVisible := func(c Command) bool { return c.SupportsCLI() }

	tests := []struct {
		name     string
		tokens   []string
		wantPath []string
		wantRest []string
	}{
		{name: "Leaf", tokens: []string{"math", "add", "--x", "1"}, wantPath: []string{"math", "add"}, wantRest: []string{"--x", "1"}},
		{name: "Container", tokens: []string{"math"}, wantPath: []string{"math"}, wantRest: []string{}},
		{name: "InjectedHelp", tokens: []string{"math", "help"}, wantPath: []string{"math", "help"}, wantRest: []string{}},
		{name: "StopsAtUnknown", tokens: []string{"math", "mul", "2"}, wantPath: []string{"math"}, wantRest: []string{"mul", "2"}},
		{name: "Hidden", tokens: []string{"math", "secret"}, wantPath: []string{"math"}, wantRest: []string{"secret"}},
		{name: "Unknown", tokens: []string{"nope"}, wantRest: []string{"nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, rest := Resolve(roots, tt.tokens, cliVisible)
			if tt.wantPath == nil {
				assert.Nil(t, node)
			} else {
				require.NotNil(t, node)
				assert.Equal(t, tt.wantPath, node.Path())
			}
			assert.Equal(t, tt.wantRest, rest)
		})
	}
}

func childNames(n *Node) []string {
	names := make([]string, 0, len(n.Children))
	for _, child := range n.Children {
		names = append(names, child.Name())
	}
	return names
}
