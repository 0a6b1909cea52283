package command

import (
	"fmt"
	"slices"
	"strings"
)

// Registry resolves shell verbs and their aliases to Command definitions and
// renders help in registration order.
type Registry struct {
	byName  map[string]*Command
	aliasOf map[string]string
	order   []*Command
}

// NewRegistry returns a Registry holding cmds.
//
// Precondition: No two commands may share a name or alias.
// Postcondition: Returns a Registry or the first collision found.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{
		byName:  make(map[string]*Command, len(cmds)),
		aliasOf: make(map[string]string),
	}
	if err := r.Register(cmds...); err != nil {
		return nil, err
	}
	return r, nil
}

// DefaultRegistry returns a Registry with only the built-in shell verbs.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}

// Register appends cmds after the commands already present.
//
// Postcondition: On error the registry is unchanged.
func (r *Registry) Register(cmds ...Command) error {
	taken := func(word string) bool {
		_, n := r.byName[word]
		_, a := r.aliasOf[word]
		return n || a
	}
	pending := make(map[string]string)
	for _, c := range cmds {
		if c.Name == "" || c.Handler == "" {
			return fmt.Errorf("command %q: name and handler are required", c.Name)
		}
		for _, word := range append([]string{c.Name}, c.Aliases...) {
			if taken(word) {
				return fmt.Errorf("duplicate command name or alias %q (%s)", word, c.Name)
			}
			if owner, ok := pending[word]; ok {
				return fmt.Errorf("duplicate command name or alias %q: used by %q and %q", word, owner, c.Name)
			}
			pending[word] = c.Name
		}
	}
	for i := range cmds {
		c := cmds[i]
		r.byName[c.Name] = &c
		r.order = append(r.order, &c)
		for _, a := range c.Aliases {
			r.aliasOf[a] = c.Name
		}
	}
	return nil
}

// Resolve looks up a command by name or alias.
func (r *Registry) Resolve(word string) (*Command, bool) {
	if c, ok := r.byName[word]; ok {
		return c, true
	}
	if name, ok := r.aliasOf[word]; ok {
		return r.byName[name], true
	}
	return nil, false
}

// Commands returns every command in registration order.
func (r *Registry) Commands() []*Command {
	return slices.Clone(r.order)
}

// Words returns every name and alias, sorted.
func (r *Registry) Words() []string {
	words := make([]string, 0, len(r.byName)+len(r.aliasOf))
	for name := range r.byName {
		words = append(words, name)
	}
	for alias := range r.aliasOf {
		words = append(words, alias)
	}
	slices.Sort(words)
	return words
}

// CommandsByCategory groups commands by category, each group in registration
// order.
func (r *Registry) CommandsByCategory() map[string][]*Command {
	categories := make(map[string][]*Command)
	for _, c := range r.order {
		categories[c.Category] = append(categories[c.Category], c)
	}
	return categories
}

// Help renders the "Available commands:" listing.
func (r *Registry) Help() string {
	var b strings.Builder
	b.WriteString("Available commands:")
	for _, c := range r.order {
		fmt.Fprintf(&b, "\n  %s - %s", c.Synopsis(), c.Help)
	}
	return b.String()
}
