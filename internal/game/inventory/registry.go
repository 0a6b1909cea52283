package inventory

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/statengine/internal/game/stat"
)

// Kind constants for ItemDef.Kind.
const (
	KindWeapon = "weapon"
	KindArmor  = "armor"
	KindPotion = "potion"
	KindMisc   = "misc"
)

var validKinds = map[string]bool{
	KindWeapon: true,
	KindArmor:  true,
	KindPotion: true,
	KindMisc:   true,
}

// ItemDef is an item template loaded from YAML.
type ItemDef struct {
	ID          string                `yaml:"id"`
	Name        string                `yaml:"name"`
	Description string                `yaml:"description"`
	Kind        string                `yaml:"kind"`
	Damage      int32                 `yaml:"damage"`
	Defense     int32                 `yaml:"defense"`
	Healing     int32                 `yaml:"healing"`
	Properties  map[string]stat.Value `yaml:"properties"`
}

// Validate checks that the ItemDef satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (d *ItemDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if !validKinds[d.Kind] {
		errs = append(errs, fmt.Errorf("Kind must be one of weapon, armor, potion, misc; got %q", d.Kind))
	}
	if d.Kind == KindWeapon && d.Damage <= 0 {
		errs = append(errs, errors.New("Damage must be > 0 when Kind is weapon"))
	}
	if d.Kind == KindArmor && d.Defense <= 0 {
		errs = append(errs, errors.New("Defense must be > 0 when Kind is armor"))
	}
	if d.Kind == KindPotion && d.Healing <= 0 {
		errs = append(errs, errors.New("Healing must be > 0 when Kind is potion"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("item validation failed: %v", errs)
	}
	return nil
}

// New builds an item instance from d under the given instance id.
//
// Postcondition: the item carries the kind as its "type" property, any
// non-zero damage/defense/healing, and every extra property.
func (d *ItemDef) New(id string) *Item {
	it := NewItem(id, d.Name)
	it.SetString(KeyType, d.Kind)
	it.SetString(KeyTemplate, d.ID)
	for key, v := range map[string]int32{KeyDamage: d.Damage, KeyDefense: d.Defense, KeyHealing: d.Healing} {
		if v != 0 {
			it.SetInt(key, v)
		}
	}
	for key, v := range d.Properties {
		it.Set(key, v)
	}
	return it
}

// Registry holds item templates indexed by ID.
type Registry struct {
	items map[string]*ItemDef
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[string]*ItemDef)}
}

// Register adds d to the registry.
//
// Precondition:  d must not be nil.
// Postcondition: Item(d.ID) returns d; returns error if d.ID already registered.
func (r *Registry) Register(d *ItemDef) error {
	if _, exists := r.items[d.ID]; exists {
		return fmt.Errorf("inventory: Registry.Register: item ID %q already registered", d.ID)
	}
	r.items[d.ID] = d
	return nil
}

// Item returns the ItemDef for id.
func (r *Registry) Item(id string) (*ItemDef, bool) {
	d, ok := r.items[id]
	return d, ok
}

// All returns every ItemDef ordered by ID.
func (r *Registry) All() []*ItemDef {
	out := make([]*ItemDef, 0, len(r.items))
	for _, id := range slices.Sorted(maps.Keys(r.items)) {
		out = append(out, r.items[id])
	}
	return out
}

// Len returns the number of registered templates.
func (r *Registry) Len() int { return len(r.items) }

// LoadItems reads all *.yaml and *.yml files from dir, parses each as an
// ItemDef, validates it, and returns a populated Registry.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid ItemDefs or the first encountered error.
func LoadItems(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadItems: cannot read directory %q: %w", dir, err)
	}

	reg := NewRegistry()
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadItems: cannot read file %q: %w", path, err)
		}
		var d ItemDef
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("LoadItems: cannot parse file %q: %w", path, err)
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("LoadItems: invalid item in %q: %w", path, err)
		}
		if err := reg.Register(&d); err != nil {
			return nil, fmt.Errorf("LoadItems: %q: %w", path, err)
		}
	}
	return reg, nil
}
