package modifier

import (
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/cory-johannsen/statengine/internal/game/stat"
)

// Item is the read-only view of an inventory item needed for equipment sync.
type Item interface {
	ID() string
	Bool(key string) (bool, bool)
	Int(key string) (int32, bool)
}

// Inventory is the read-only view of an item container needed for equipment
// sync. The Stack never mutates it.
type Inventory interface {
	ItemIDs() []string
	Lookup(id string) (Item, bool)
}

// equipmentStats maps an item's integer property to the stat it raises.
var equipmentStats = []struct {
	itemKey string
	stat    string
}{
	{itemKey: "damage", stat: "attack"},
	{itemKey: "defense", stat: "defense"},
}

// UpdateFromInventory replaces every equipment-derived modifier with a fresh
// set computed from the equipped items in inv. Items are visited in
// lexicographic id order, so repeated calls over an unchanged inventory yield
// identical modifier lists.
func (s *Stack) UpdateFromInventory(inv Inventory) {
	s.RemoveModifiersBySource(SourceEquipment)
	s.RemoveModifiersBySourcePrefix(SourceEquipmentPrefix)
	if inv == nil {
		return
	}

	ids := inv.ItemIDs()
	sort.Strings(ids)
	for _, id := range ids {
		item, ok := inv.Lookup(id)
		if !ok {
			continue
		}
		if equipped, _ := item.Bool("equipped"); !equipped {
			continue
		}
		s.applyItemModifiers(item)
	}
}

// EquipmentFingerprint hashes everything UpdateFromInventory reads from inv:
// the ids of equipped items in lexicographic order and their equipment
// values. A nil inventory hashes like an empty one.
func EquipmentFingerprint(inv Inventory) uint64 {
	d := xxhash.New()
	if inv == nil {
		return d.Sum64()
	}
	ids := inv.ItemIDs()
	sort.Strings(ids)
	for _, id := range ids {
		item, ok := inv.Lookup(id)
		if !ok {
			continue
		}
		if equipped, _ := item.Bool("equipped"); !equipped {
			continue
		}
		_, _ = d.WriteString(id)
		_, _ = d.WriteString("\x1f")
		for _, es := range equipmentStats {
			if v, ok := item.Int(es.itemKey); ok {
				_, _ = d.WriteString(es.itemKey)
				_, _ = d.WriteString("=")
				_, _ = d.WriteString(strconv.FormatInt(int64(v), 10))
				_, _ = d.WriteString("\x1f")
			}
		}
		_, _ = d.WriteString("\x1e")
	}
	return d.Sum64()
}

func (s *Stack) applyItemModifiers(item Item) {
	for _, es := range equipmentStats {
		v, ok := item.Int(es.itemKey)
		if !ok {
			continue
		}
		s.AddModifier(es.stat, Modifier{
			Source:   EquipmentSource(item.ID()),
			Type:     Additive,
			Value:    stat.Int(v),
			Priority: PriorityEquipment,
		})
	}
}
