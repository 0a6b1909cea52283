package inventory_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/statengine/internal/game/inventory"
	"github.com/cory-johannsen/statengine/internal/game/modifier"
	"github.com/cory-johannsen/statengine/internal/game/stat"
)

func TestInventory_CapacityEnforced(t *testing.T) {
	inv := inventory.WithCapacity(2)
	assert.True(t, inv.Add(inventory.NewWeapon("a", "A", 1)))
	assert.True(t, inv.Add(inventory.NewWeapon("b", "B", 1)))
	assert.True(t, inv.IsFull())
	assert.False(t, inv.Add(inventory.NewWeapon("c", "C", 1)))
	assert.Equal(t, 2, inv.Count())

	inv.ClearCapacity()
	assert.True(t, inv.Add(inventory.NewWeapon("c", "C", 1)))
	_, bounded := inv.Capacity()
	assert.False(t, bounded)
}

func TestInventory_ZeroCapacityAlwaysFull(t *testing.T) {
	inv := inventory.WithCapacity(0)
	assert.True(t, inv.IsFull())
	assert.False(t, inv.Add(inventory.NewItem("x", "X")))
}

func TestInventory_RemoveAndHas(t *testing.T) {
	inv := inventory.New()
	inv.Add(inventory.NewArmor("mail", "Mail", 3))
	require.True(t, inv.Has("mail"))
	it, ok := inv.Remove("mail")
	require.True(t, ok)
	assert.Equal(t, "Mail", it.Name())
	_, ok = inv.Remove("mail")
	assert.False(t, ok)
}

func TestInventory_FilterByPropertyAndType(t *testing.T) {
	inv := inventory.New()
	inv.Add(inventory.NewWeapon("w2", "Axe", 7))
	inv.Add(inventory.NewWeapon("w1", "Sword", 5))
	inv.Add(inventory.NewPotion("p1", "Potion", 10))

	weapons := inv.ItemsByType("weapon")
	require.Len(t, weapons, 2)
	assert.Equal(t, "w1", weapons[0].ID(), "results are ordered by id")

	assert.Len(t, inv.FilterByProperty(inventory.KeyDamage, stat.Int(7)), 1)
	assert.Empty(t, inv.FilterByProperty(inventory.KeyDamage, stat.Float(7)), "kinds never coerce")
}

func TestInventory_SetEquipped(t *testing.T) {
	inv := inventory.New()
	inv.Add(inventory.NewWeapon("w", "Sword", 5))
	assert.True(t, inv.SetEquipped("w", true))
	assert.False(t, inv.SetEquipped("missing", true))
	eq := inv.Equipped()
	require.Len(t, eq, 1)
	assert.Equal(t, "w", eq[0].ID())
}

func TestInventory_FeedsModifierStack(t *testing.T) {
	inv := inventory.New()
	inv.Add(inventory.NewWeapon("sword", "Sword", 5))
	inv.Add(inventory.NewArmor("mail", "Mail", 3))
	inv.SetEquipped("sword", true)

	s := modifier.WithBase(stat.ExampleRPGStats())
	s.UpdateFromInventory(inv)
	atk, _ := s.Int("attack")
	def, _ := s.Int("defense")
	assert.Equal(t, int32(15), atk)
	assert.Equal(t, int32(5), def, "unequipped armor contributes nothing")

	inv.SetEquipped("mail", true)
	s.UpdateFromInventory(inv)
	def, _ = s.Int("defense")
	assert.Equal(t, int32(8), def)
}

func TestInventory_CloneIsIndependent(t *testing.T) {
	inv := inventory.WithCapacity(5)
	inv.Add(inventory.NewWeapon("w", "Sword", 5))
	cp := inv.Clone()
	it, _ := cp.Item("w")
	it.SetInt(inventory.KeyDamage, 99)

	orig, _ := inv.Item("w")
	dmg, _ := orig.Int(inventory.KeyDamage)
	assert.Equal(t, int32(5), dmg)
	c, bounded := cp.Capacity()
	assert.True(t, bounded)
	assert.Equal(t, 5, c)
}

func TestInventory_JSONRoundTrip(t *testing.T) {
	inv := inventory.WithCapacity(1)
	sword := inventory.NewWeapon("w", "Sword", 5)
	sword.SetBool(inventory.KeyEquipped, true)
	sword.SetStats("bonus", stat.ExampleRPGStats())
	inv.Add(sword)

	data, err := json.Marshal(inv)
	require.NoError(t, err)

	out := inventory.New()
	require.NoError(t, json.Unmarshal(data, out))
	assert.True(t, out.IsFull())
	got, ok := out.Item("w")
	require.True(t, ok)
	assert.True(t, got.Equipped())
	dmg, _ := got.Int(inventory.KeyDamage)
	assert.Equal(t, int32(5), dmg)
	bonus, ok := got.Stats("bonus")
	require.True(t, ok)
	assert.True(t, bonus.Equal(stat.ExampleRPGStats()))
}

func TestInventory_JSONUnbounded(t *testing.T) {
	data, err := json.Marshal(inventory.New())
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[],"capacity":null}`, string(data))
}
