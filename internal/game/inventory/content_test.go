// Package inventory_test contains content completeness tests for the item
// library.
package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/statengine/internal/game/inventory"
)

// TestContent_AllItemsLoad verifies every item YAML loads and validates.
func TestContent_AllItemsLoad(t *testing.T) {
	reg, err := inventory.LoadItems("../../../content/items")
	require.NoError(t, err, "content/items should load without error")
	require.NotZero(t, reg.Len(), "at least one item should exist")
	for _, d := range reg.All() {
		assert.NoError(t, d.Validate(), "item %q", d.ID)
	}
}

// TestContent_InstancesCarryKind verifies that any library item, instantiated
// under any id, keeps its kind and starts unequipped.
func TestContent_InstancesCarryKind(t *testing.T) {
	reg, err := inventory.LoadItems("../../../content/items")
	require.NoError(t, err)
	defs := reg.All()
	rapid.Check(t, func(rt *rapid.T) {
		d := defs[rapid.IntRange(0, len(defs)-1).Draw(rt, "def")]
		id := rapid.StringMatching(`[a-z]{1,8}-[0-9]{1,3}`).Draw(rt, "id")
		it := d.New(id)
		kind, _ := it.String(inventory.KeyType)
		if kind != d.Kind {
			rt.Fatalf("item %q: kind %q, want %q", d.ID, kind, d.Kind)
		}
		if it.ID() != id || it.Equipped() {
			rt.Fatalf("item %q: bad instance %q equipped=%v", d.ID, it.ID(), it.Equipped())
		}
	})
}
