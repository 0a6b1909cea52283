// Package inventory provides flat key-value items and the container that
// holds them. Inventories satisfy modifier.Inventory so equipped items can
// feed a character's stat modifiers.
package inventory

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/cory-johannsen/statengine/internal/game/stat"
)

// Well-known item property keys.
const (
	KeyType     = "type"
	KeyEquipped = "equipped"
	KeyDamage   = "damage"
	KeyDefense  = "defense"
	KeyHealing  = "healing"
	KeyTemplate = "template"
)

// Item is a named bag of typed properties. A property holds either a scalar
// stat.Value or a nested stat block; setting one kind under a key replaces
// the other.
type Item struct {
	id     string
	name   string
	values map[string]stat.Value
	stats  map[string]*stat.Stats
}

// NewItem returns an item with no properties.
func NewItem(id, name string) *Item {
	return &Item{
		id:     id,
		name:   name,
		values: make(map[string]stat.Value),
		stats:  make(map[string]*stat.Stats),
	}
}

// ID returns the item id.
func (i *Item) ID() string { return i.id }

// Name returns the display name.
func (i *Item) Name() string { return i.name }

// SetName renames the item.
func (i *Item) SetName(name string) { i.name = name }

// Get returns the scalar stored under key.
func (i *Item) Get(key string) (stat.Value, bool) {
	v, ok := i.values[key]
	return v, ok
}

// Int returns the integer stored under key.
func (i *Item) Int(key string) (int32, bool) { return i.values[key].AsInt() }

// Float returns the float stored under key.
func (i *Item) Float(key string) (float32, bool) { return i.values[key].AsFloat() }

// Bool returns the boolean stored under key.
func (i *Item) Bool(key string) (bool, bool) { return i.values[key].AsBool() }

// String returns the string stored under key.
func (i *Item) String(key string) (string, bool) { return i.values[key].AsString() }

// Stats returns the nested stat block stored under key.
func (i *Item) Stats(key string) (*stat.Stats, bool) {
	s, ok := i.stats[key]
	return s, ok
}

// Set stores a scalar under key.
func (i *Item) Set(key string, v stat.Value) {
	delete(i.stats, key)
	i.values[key] = v
}

// SetInt stores an integer under key.
func (i *Item) SetInt(key string, v int32) { i.Set(key, stat.Int(v)) }

// SetFloat stores a float under key.
func (i *Item) SetFloat(key string, v float32) { i.Set(key, stat.Float(v)) }

// SetBool stores a boolean under key.
func (i *Item) SetBool(key string, v bool) { i.Set(key, stat.Bool(v)) }

// SetString stores a string under key.
func (i *Item) SetString(key string, v string) { i.Set(key, stat.String(v)) }

// SetStats stores a nested stat block under key.
func (i *Item) SetStats(key string, s *stat.Stats) {
	delete(i.values, key)
	i.stats[key] = s
}

// Has reports whether any property is stored under key.
func (i *Item) Has(key string) bool {
	_, scalar := i.values[key]
	_, nested := i.stats[key]
	return scalar || nested
}

// Remove deletes the property under key and reports whether one existed.
func (i *Item) Remove(key string) bool {
	had := i.Has(key)
	delete(i.values, key)
	delete(i.stats, key)
	return had
}

// Keys returns every property key in sorted order.
func (i *Item) Keys() []string {
	keys := slices.Collect(maps.Keys(i.values))
	keys = slices.AppendSeq(keys, maps.Keys(i.stats))
	slices.Sort(keys)
	return keys
}

// Equipped reports whether the item is flagged as equipped.
func (i *Item) Equipped() bool {
	b, _ := i.Bool(KeyEquipped)
	return b
}

// Clone returns a deep copy of i.
func (i *Item) Clone() *Item {
	out := NewItem(i.id, i.name)
	maps.Copy(out.values, i.values)
	for k, s := range i.stats {
		out.stats[k] = s.Clone()
	}
	return out
}

type itemJSON struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	Properties map[string]stat.Value  `json:"properties"`
	Stats      map[string]*stat.Stats `json:"stats,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (i *Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(itemJSON{ID: i.id, Name: i.name, Properties: i.values, Stats: i.stats})
}

// UnmarshalJSON implements json.Unmarshaler.
func (i *Item) UnmarshalJSON(data []byte) error {
	var raw itemJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("inventory: decoding item: %w", err)
	}
	out := NewItem(raw.ID, raw.Name)
	maps.Copy(out.values, raw.Properties)
	for k, s := range raw.Stats {
		if s != nil {
			out.stats[k] = s
		}
	}
	*i = *out
	return nil
}

// NewWeapon returns an item of type "weapon" carrying damage.
func NewWeapon(id, name string, damage int32) *Item {
	it := NewItem(id, name)
	it.SetString(KeyType, "weapon")
	it.SetInt(KeyDamage, damage)
	return it
}

// NewArmor returns an item of type "armor" carrying defense.
func NewArmor(id, name string, defense int32) *Item {
	it := NewItem(id, name)
	it.SetString(KeyType, "armor")
	it.SetInt(KeyDefense, defense)
	return it
}

// NewPotion returns an item of type "potion" carrying healing.
func NewPotion(id, name string, healing int32) *Item {
	it := NewItem(id, name)
	it.SetString(KeyType, "potion")
	it.SetInt(KeyHealing, healing)
	return it
}
