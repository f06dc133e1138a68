package cmd

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tidwall/btree"
)

// Registry maps command names to commands and remembers registration order.
type Registry struct {
	mu    sync.RWMutex
	order []string
	cmds  map[string]Command
	index *btree.Map[string, Command]
}

func NewRegistry() *Registry {
	return &Registry{
		cmds:  make(map[string]Command),
		index: btree.NewMap[string, Command](0),
	}
}

// Register adds c under its name. Registering a name twice fails with ErrDuplicateName.
func (r *Registry) Register(c Command) error {
	if c == nil {
		return fmt.Errorf("%w: command cannot be nil", ErrInvalidCommand)
	}

	name := c.Name()
	if name == "" {
		return fmt.Errorf("%w: command name cannot be empty", ErrInvalidCommand)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cmds[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}

	r.cmds[name] = c
	r.order = append(r.order, name)
	r.index.Set(name, c)
	return nil
}

func (r *Registry) Get(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.cmds[name]
	return c, exists
}

func (r *Registry) Has(name string) bool {
	_, exists := r.Get(name)
	return exists
}

// List returns all commands in registration order.
func (r *Registry) List() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	commands := make([]Command, 0, len(r.order))
	for _, name := range r.order {
		commands = append(commands, r.cmds[name])
	}
	return commands
}

// Names returns all command names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.order...)
}

// Complete returns the sorted names starting with prefix.
func (r *Registry) Complete(prefix string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	r.index.Ascend(prefix, func(name string, _ Command) bool {
		if !strings.HasPrefix(name, prefix) {
			return false
		}
		names = append(names, name)
		return true
	})
	return names
}

// Suggest returns the registered name sharing the longest prefix with name.
// It returns false when no name shares even the first character.
func (r *Registry) Suggest(name string) (string, bool) {
	if name == "" {
		return "", false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	best, bestLen := "", 0
	r.index.Ascend(name[:1], func(candidate string, _ Command) bool {
		if candidate[0] != name[0] {
			return false
		}
		if n := commonPrefix(candidate, name); n > bestLen {
			best, bestLen = candidate, n
		}
		return true
	})
	return best, bestLen > 0
}

func commonPrefix(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
