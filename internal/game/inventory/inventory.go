package inventory

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/cory-johannsen/statengine/internal/game/modifier"
	"github.com/cory-johannsen/statengine/internal/game/stat"
)

// Inventory holds items keyed by id with an optional capacity.
type Inventory struct {
	items    map[string]*Item
	capacity int
	bounded  bool
}

// New returns an unbounded inventory.
func New() *Inventory {
	return &Inventory{items: make(map[string]*Item)}
}

// WithCapacity returns an inventory that holds at most n items.
//
// Precondition: n >= 0.
func WithCapacity(n int) *Inventory {
	inv := New()
	inv.SetCapacity(n)
	return inv
}

// Capacity returns the item limit, or false when unbounded.
func (inv *Inventory) Capacity() (int, bool) { return inv.capacity, inv.bounded }

// SetCapacity bounds the inventory to n items. Items already held are kept
// even if they exceed n.
func (inv *Inventory) SetCapacity(n int) {
	inv.capacity, inv.bounded = n, true
}

// ClearCapacity removes the item limit.
func (inv *Inventory) ClearCapacity() {
	inv.capacity, inv.bounded = 0, false
}

// Count returns the number of items held.
func (inv *Inventory) Count() int { return len(inv.items) }

// IsFull reports whether the capacity has been reached.
func (inv *Inventory) IsFull() bool {
	return inv.bounded && len(inv.items) >= inv.capacity
}

// Add stores item, replacing any item with the same id.
//
// Postcondition: returns false without modifying inv when it is full.
func (inv *Inventory) Add(item *Item) bool {
	if inv.IsFull() {
		return false
	}
	inv.items[item.ID()] = item
	return true
}

// Remove takes the item with id out of the inventory.
func (inv *Inventory) Remove(id string) (*Item, bool) {
	it, ok := inv.items[id]
	if ok {
		delete(inv.items, id)
	}
	return it, ok
}

// Has reports whether an item with id is held.
func (inv *Inventory) Has(id string) bool {
	_, ok := inv.items[id]
	return ok
}

// Item returns the item with id. The pointer may be used to mutate it.
func (inv *Inventory) Item(id string) (*Item, bool) {
	it, ok := inv.items[id]
	return it, ok
}

// ItemIDs returns every item id in sorted order.
func (inv *Inventory) ItemIDs() []string {
	return slices.Sorted(maps.Keys(inv.items))
}

// Items returns every item ordered by id.
func (inv *Inventory) Items() []*Item {
	return inv.Filter(func(*Item) bool { return true })
}

// Filter returns the items for which keep reports true, ordered by id.
func (inv *Inventory) Filter(keep func(*Item) bool) []*Item {
	var out []*Item
	for _, id := range inv.ItemIDs() {
		if it := inv.items[id]; keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// FilterByProperty returns the items whose scalar under key equals v.
// Values of different kinds never match.
func (inv *Inventory) FilterByProperty(key string, v stat.Value) []*Item {
	return inv.Filter(func(it *Item) bool {
		got, ok := it.Get(key)
		return ok && got == v
	})
}

// ItemsByType returns the items whose "type" property equals t.
func (inv *Inventory) ItemsByType(t string) []*Item {
	return inv.FilterByProperty(KeyType, stat.String(t))
}

// Equipped returns the items flagged as equipped, ordered by id.
func (inv *Inventory) Equipped() []*Item {
	return inv.Filter((*Item).Equipped)
}

// SetEquipped flags the item with id as equipped or not.
func (inv *Inventory) SetEquipped(id string, equipped bool) bool {
	it, ok := inv.items[id]
	if !ok {
		return false
	}
	it.SetBool(KeyEquipped, equipped)
	return true
}

// Lookup implements modifier.Inventory.
func (inv *Inventory) Lookup(id string) (modifier.Item, bool) {
	it, ok := inv.items[id]
	if !ok {
		return nil, false
	}
	return it, true
}

// Clone returns a deep copy of inv.
func (inv *Inventory) Clone() *Inventory {
	out := &Inventory{items: make(map[string]*Item, len(inv.items)), capacity: inv.capacity, bounded: inv.bounded}
	for id, it := range inv.items {
		out.items[id] = it.Clone()
	}
	return out
}

type inventoryJSON struct {
	Items    []*Item `json:"items"`
	Capacity *int    `json:"capacity"`
}

// MarshalJSON encodes items ordered by id and a null capacity when unbounded.
func (inv *Inventory) MarshalJSON() ([]byte, error) {
	raw := inventoryJSON{Items: inv.Items()}
	if raw.Items == nil {
		raw.Items = []*Item{}
	}
	if inv.bounded {
		c := inv.capacity
		raw.Capacity = &c
	}
	return json.Marshal(raw)
}

// UnmarshalJSON decodes the form written by MarshalJSON. The capacity is
// applied after the items so a snapshot never loses items.
func (inv *Inventory) UnmarshalJSON(data []byte) error {
	var raw inventoryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("inventory: decoding inventory: %w", err)
	}
	out := New()
	for _, it := range raw.Items {
		if it != nil {
			out.Add(it)
		}
	}
	if raw.Capacity != nil {
		out.SetCapacity(*raw.Capacity)
	}
	*inv = *out
	return nil
}

var _ modifier.Inventory = (*Inventory)(nil)
