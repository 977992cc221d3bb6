package command

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrConflict is returned by NewRegistry when two commands claim one word.
var ErrConflict = errors.New("command word already registered")

// Registry resolves typed words (names and aliases) to commands.
type Registry struct {
	byWord map[string]*Command
	sorted []*Command
}

// NewRegistry indexes cmds by name and alias.
//
// Postcondition: Returns an ErrConflict error if any word is claimed twice.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{byWord: make(map[string]*Command, 2*len(cmds))}
	for i := range cmds {
		cmd := &cmds[i]
		for _, word := range append([]string{cmd.Name}, cmd.Aliases...) {
			if prev, ok := r.byWord[word]; ok {
				return nil, fmt.Errorf("%w: %q (%s and %s)", ErrConflict, word, prev.Name, cmd.Name)
			}
			r.byWord[word] = cmd
		}
		r.sorted = append(r.sorted, cmd)
	}
	sort.Slice(r.sorted, func(i, j int) bool { return r.sorted[i].Name < r.sorted[j].Name })
	return r, nil
}

// DefaultRegistry returns a Registry of BuiltinCommands.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}

// Resolve looks up a command by name or alias.
func (r *Registry) Resolve(word string) (*Command, bool) {
	cmd, ok := r.byWord[word]
	return cmd, ok
}

// Suggest returns the single command whose name starts with prefix.
// It reports false when no command or more than one matches.
func (r *Registry) Suggest(prefix string) (*Command, bool) {
	if prefix == "" {
		return nil, false
	}
	var found *Command
	for _, cmd := range r.sorted {
		if !strings.HasPrefix(cmd.Name, prefix) {
			continue
		}
		if found != nil {
			return nil, false
		}
		found = cmd
	}
	return found, found != nil
}

// Commands returns every command sorted by name.
func (r *Registry) Commands() []*Command {
	return append([]*Command(nil), r.sorted...)
}

// CommandsByCategory groups Commands by category, keeping name order.
func (r *Registry) CommandsByCategory() map[string][]*Command {
	groups := make(map[string][]*Command)
	for _, cmd := range r.sorted {
		groups[cmd.Category] = append(groups[cmd.Category], cmd)
	}
	return groups
}

// CategoryOrder lists categories in the order help output shows them.
var CategoryOrder = []string{CategoryTable, CategoryLobby, CategorySetup, CategoryPlay, CategorySystem}
