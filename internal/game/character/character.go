// Package character defines the player character: a position, an inventory,
// and one modifier stack kept in sync with equipped items.
package character

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/cory-johannsen/statengine/internal/game/coords"
	"github.com/cory-johannsen/statengine/internal/game/inventory"
	"github.com/cory-johannsen/statengine/internal/game/modifier"
	"github.com/cory-johannsen/statengine/internal/game/stat"
)

// Character is the player-controlled entity.
//
// Character is not safe for concurrent use.
type Character struct {
	Position  *coords.Coordinates
	Inventory *inventory.Inventory

	stats *modifier.Stack
	buffs map[string]float32 // remaining seconds of timed buffs
	sync  equipmentSync
}

// equipmentSync records the inputs and result of the last equipment sync.
type equipmentSync struct {
	done      bool
	inventory uint64 // modifier.EquipmentFingerprint of Inventory
	stack     uint64 // stats.Fingerprint after the sync
}

// New returns a character at the 2D origin with an empty inventory and no
// base stats.
func New() *Character {
	return build(coords.New2D(0, 0), inventory.New(), stat.NewStats())
}

// WithDimensions returns a character at the origin of an n-dimensional space.
// Two and three dimensions get the usual axis labels.
func WithDimensions(n int) *Character {
	var pos *coords.Coordinates
	switch n {
	case 2:
		pos = coords.New2D(0, 0)
	case 3:
		pos = coords.New3D(0, 0, 0)
	default:
		pos = coords.New(n)
	}
	return build(pos, inventory.New(), stat.NewStats())
}

// WithStats returns a 2D character over the given base stats.
func WithStats(base *stat.Stats) *Character {
	return build(coords.New2D(0, 0), inventory.New(), base)
}

// WithInventory returns a 2D character carrying inv, with equipment
// modifiers already applied.
func WithInventory(inv *inventory.Inventory) *Character {
	c := build(coords.New2D(0, 0), inv, stat.NewStats())
	c.UpdateStatsFromInventory()
	return c
}

func build(pos *coords.Coordinates, inv *inventory.Inventory, base *stat.Stats) *Character {
	return &Character{
		Position:  pos,
		Inventory: inv,
		stats:     modifier.WithBase(base),
		buffs:     make(map[string]float32),
	}
}

// X returns the first position axis.
func (c *Character) X() float32 {
	x, _ := c.Position.XY()
	return x
}

// Y returns the second position axis.
func (c *Character) Y() float32 {
	_, y := c.Position.XY()
	return y
}

// SetPositionValues moves the character to vs.
//
// Postcondition: returns false without moving when len(vs) differs from the
// position's dimension count.
func (c *Character) SetPositionValues(vs ...float32) bool {
	if len(vs) != c.Position.Dimensions() {
		return false
	}
	for i, v := range vs {
		c.Position.Set(i, v)
	}
	return true
}

// MoveToward steps up to distance units toward target.
func (c *Character) MoveToward(target *coords.Coordinates, distance float32) bool {
	return c.Position.MoveToward(target, distance)
}

// DistanceTo returns the distance between c and o.
func (c *Character) DistanceTo(o *Character) float32 {
	return c.Position.Distance(o.Position)
}

// Stats exposes the character's modifier stack.
func (c *Character) Stats() *modifier.Stack { return c.stats }

// BaseStats returns a copy of the base stats.
func (c *Character) BaseStats() *stat.Stats { return c.stats.Base() }

// SetBaseStat overwrites a base stat.
func (c *Character) SetBaseStat(key string, v stat.Value) { c.stats.SetBase(key, v) }

// Stat resolves key through the modifier stack.
func (c *Character) Stat(key string) (stat.Value, bool) { return c.stats.Resolve(key) }

// IntStat resolves key as an integer.
func (c *Character) IntStat(key string) (int32, bool) { return c.stats.Int(key) }

// FloatStat resolves key as a float.
func (c *Character) FloatStat(key string) (float32, bool) { return c.stats.Float(key) }

// BoolStat resolves key as a boolean.
func (c *Character) BoolStat(key string) (bool, bool) { return c.stats.Bool(key) }

// StringStat resolves key as a string.
func (c *Character) StringStat(key string) (string, bool) { return c.stats.String(key) }

// UpdateStatsFromInventory rebuilds equipment modifiers from the inventory.
// The rebuild is skipped when neither the equipped items nor the modifier
// stack changed since the last one.
//
// Postcondition: returns true when the modifiers were rebuilt.
func (c *Character) UpdateStatsFromInventory() bool {
	inv := modifier.EquipmentFingerprint(c.Inventory)
	if c.sync.done && c.sync.inventory == inv && c.sync.stack == c.stats.Fingerprint() {
		return false
	}
	c.stats.UpdateFromInventory(c.Inventory)
	c.sync = equipmentSync{done: true, inventory: inv, stack: c.stats.Fingerprint()}
	return true
}

// AddItem stores item and resyncs equipment modifiers.
func (c *Character) AddItem(item *inventory.Item) bool {
	if !c.Inventory.Add(item) {
		return false
	}
	c.UpdateStatsFromInventory()
	return true
}

// RemoveItem drops the item with id and resyncs equipment modifiers.
func (c *Character) RemoveItem(id string) (*inventory.Item, bool) {
	it, ok := c.Inventory.Remove(id)
	if ok {
		c.UpdateStatsFromInventory()
	}
	return it, ok
}

// EquipItem flags the item with id as equipped.
func (c *Character) EquipItem(id string) bool { return c.setEquipped(id, true) }

// UnequipItem clears the equipped flag on the item with id.
func (c *Character) UnequipItem(id string) bool { return c.setEquipped(id, false) }

func (c *Character) setEquipped(id string, equipped bool) bool {
	if !c.Inventory.SetEquipped(id, equipped) {
		return false
	}
	c.UpdateStatsFromInventory()
	return true
}

// AddBuff adds an additive buff to statName. A positive duration in seconds
// makes the buff expire during Tick; zero or less keeps it until removed.
func (c *Character) AddBuff(name, statName string, v stat.Value, duration float32) {
	c.stats.AddBuff(name, statName, v)
	if duration > 0 {
		c.buffs[name] = duration
	} else {
		delete(c.buffs, name)
	}
}

// RemoveBuff removes every modifier of the named buff and returns how many
// were removed.
func (c *Character) RemoveBuff(name string) int {
	delete(c.buffs, name)
	return c.stats.RemoveBuff(name)
}

// Tick advances timed buffs by dt seconds and removes the ones that ran out.
//
// Postcondition: returns the names of expired buffs in sorted order.
func (c *Character) Tick(dt float32) []string {
	var expired []string
	for _, name := range slices.Sorted(maps.Keys(c.buffs)) {
		c.buffs[name] -= dt
		if c.buffs[name] <= 0 {
			expired = append(expired, name)
			c.RemoveBuff(name)
		}
	}
	return expired
}

// InvalidateStatCache forces every stat to be recomputed on next access.
func (c *Character) InvalidateStatCache() { c.stats.InvalidateCache() }

type characterJSON struct {
	Position  *coords.Coordinates  `json:"position"`
	Inventory *inventory.Inventory `json:"inventory"`
	BaseStats *stat.Stats          `json:"base_stats"`
}

// MarshalJSON encodes position, inventory, and base stats. Modifiers and
// buff timers are runtime state.
func (c *Character) MarshalJSON() ([]byte, error) {
	return json.Marshal(characterJSON{Position: c.Position, Inventory: c.Inventory, BaseStats: c.stats.Base()})
}

// UnmarshalJSON decodes the form written by MarshalJSON and re-derives
// equipment modifiers from the restored inventory.
func (c *Character) UnmarshalJSON(data []byte) error {
	var raw characterJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("character: decoding: %w", err)
	}
	if raw.Position == nil {
		raw.Position = coords.New2D(0, 0)
	}
	if raw.Inventory == nil {
		raw.Inventory = inventory.New()
	}
	out := build(raw.Position, raw.Inventory, raw.BaseStats)
	out.UpdateStatsFromInventory()
	*c = *out
	return nil
}
