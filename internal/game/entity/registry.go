package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/statengine/internal/game/property"
	"github.com/cory-johannsen/statengine/internal/game/tag"
)

// Registry holds entity types keyed by ID.
type Registry struct {
	types map[string]*Type
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*Type)}
}

// Register adds t.
// Precondition: t must not be nil.
// Postcondition: returns an error if t.ID is empty or already registered.
func (r *Registry) Register(t *Type) error {
	if t.ID == "" {
		return fmt.Errorf("entity: type %q has no id", t.Name)
	}
	if _, dup := r.types[t.ID]; dup {
		return fmt.Errorf("entity: type %q already registered", t.ID)
	}
	r.types[t.ID] = t
	return nil
}

// Get returns the type registered under id.
func (r *Registry) Get(id string) (*Type, bool) {
	t, ok := r.types[id]
	return t, ok
}

// Remove deletes the type registered under id.
func (r *Registry) Remove(id string) bool {
	if _, ok := r.types[id]; !ok {
		return false
	}
	delete(r.types, id)
	return true
}

// Len returns the number of registered types.
func (r *Registry) Len() int { return len(r.types) }

// All returns every registered type ordered by id.
func (r *Registry) All() []*Type {
	ids := slices.Sorted(maps.Keys(r.types))
	out := make([]*Type, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.types[id])
	}
	return out
}

// MarshalJSON encodes the registry as an array ordered by id.
func (r *Registry) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.All())
}

// UnmarshalJSON decodes the array form written by MarshalJSON.
func (r *Registry) UnmarshalJSON(data []byte) error {
	var types []*Type
	if err := json.Unmarshal(data, &types); err != nil {
		return fmt.Errorf("entity: decoding registry: %w", err)
	}
	out := NewRegistry()
	for _, t := range types {
		if err := out.Register(t); err != nil {
			return err
		}
	}
	*r = *out
	return nil
}

// Def is the content-file form of an entity type. Tags are named; every
// name must already exist in the tag collection used to load it.
type Def struct {
	ID          string              `yaml:"id"`
	Name        string              `yaml:"name"`
	Description string              `yaml:"description"`
	Category    string              `yaml:"category"`
	Tags        []string            `yaml:"tags"`
	Attributes  map[string]string   `yaml:"attributes"`
	Properties  []property.Property `yaml:"properties"`
}

// Build resolves d against c.
// Postcondition: returns an error naming the first unknown tag.
func (d Def) Build(c *tag.Collection) (*Type, error) {
	t := New(d.ID, d.Name).WithDescription(d.Description).WithCategory(d.Category)
	for _, name := range d.Tags {
		id, ok := c.ID(name)
		if !ok {
			return nil, fmt.Errorf("entity: type %q references unknown tag %q", d.ID, name)
		}
		t.WithTagID(id)
	}
	for _, key := range slices.Sorted(maps.Keys(d.Attributes)) {
		t.WithTextProperty(key, d.Attributes[key])
	}
	for _, p := range d.Properties {
		t.WithProperty(p)
	}
	return t, nil
}

// LoadDirectory reads every *.yaml file in dir, builds each as an entity
// type against c, and returns a populated Registry.
// Precondition: dir must be a readable directory; c must already hold every
// referenced tag.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to
// parse, references an unknown tag, or repeats an id.
func LoadDirectory(dir string, c *tag.Collection) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading entity dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def Def
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		t, err := def.Build(c)
		if err != nil {
			return nil, fmt.Errorf("building %q: %w", path, err)
		}
		if err := reg.Register(t); err != nil {
			return nil, fmt.Errorf("registering %q: %w", path, err)
		}
	}
	return reg, nil
}
