package character_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/statengine/internal/game/character"
	"github.com/cory-johannsen/statengine/internal/game/coords"
	"github.com/cory-johannsen/statengine/internal/game/inventory"
	"github.com/cory-johannsen/statengine/internal/game/modifier"
	"github.com/cory-johannsen/statengine/internal/game/stat"
)

func hero() *character.Character {
	return character.WithStats(stat.ExampleRPGStats())
}

func TestCharacter_New_AtOrigin(t *testing.T) {
	c := character.New()
	assert.Equal(t, 2, c.Position.Dimensions())
	assert.Zero(t, c.X())
	assert.Zero(t, c.Y())
	assert.Equal(t, 0, c.Inventory.Count())
}

func TestCharacter_WithDimensions(t *testing.T) {
	c := character.WithDimensions(3)
	assert.True(t, c.Position.HasDimension("z"))
	assert.Equal(t, 5, character.WithDimensions(5).Position.Dimensions())
}

func TestCharacter_EquipUnequip_UpdatesAttack(t *testing.T) {
	c := hero()
	require.True(t, c.AddItem(inventory.NewWeapon("sword", "Sword", 5)))
	atk, _ := c.IntStat("attack")
	assert.Equal(t, int32(10), atk, "unequipped items contribute nothing")

	require.True(t, c.EquipItem("sword"))
	atk, _ = c.IntStat("attack")
	assert.Equal(t, int32(15), atk)

	require.True(t, c.UnequipItem("sword"))
	atk, _ = c.IntStat("attack")
	assert.Equal(t, int32(10), atk)

	assert.False(t, c.EquipItem("missing"))
}

func TestCharacter_RemoveEquippedItem_DropsModifier(t *testing.T) {
	c := hero()
	armor := inventory.NewArmor("mail", "Mail", 3)
	armor.SetBool(inventory.KeyEquipped, true)
	require.True(t, c.AddItem(armor))
	def, _ := c.IntStat("defense")
	assert.Equal(t, int32(8), def)

	_, ok := c.RemoveItem("mail")
	require.True(t, ok)
	def, _ = c.IntStat("defense")
	assert.Equal(t, int32(5), def)
}

func TestCharacter_RepeatedEquip_NoDuplicateModifiers(t *testing.T) {
	c := hero()
	c.AddItem(inventory.NewWeapon("sword", "Sword", 5))
	c.EquipItem("sword")
	first := c.Stats().Modifiers("attack")
	c.EquipItem("sword")
	c.UpdateStatsFromInventory()
	assert.Equal(t, first, c.Stats().Modifiers("attack"))
}

func TestCharacter_UpdateStatsFromInventory_SkipsUnchanged(t *testing.T) {
	c := hero()
	require.True(t, c.AddItem(inventory.NewWeapon("sword", "Sword", 5)))
	require.True(t, c.EquipItem("sword"))
	assert.False(t, c.UpdateStatsFromInventory(), "nothing changed since equip")

	sword, ok := c.Inventory.Item("sword")
	require.True(t, ok)
	sword.SetInt(inventory.KeyDamage, 8)
	assert.True(t, c.UpdateStatsFromInventory(), "item value changed")
	atk, _ := c.IntStat("attack")
	assert.Equal(t, int32(18), atk)

	c.Stats().RemoveModifiersBySourcePrefix(modifier.SourceEquipmentPrefix)
	assert.True(t, c.UpdateStatsFromInventory(), "stack lost its equipment modifiers")
	atk, _ = c.IntStat("attack")
	assert.Equal(t, int32(18), atk)
	assert.False(t, c.UpdateStatsFromInventory())
}

func TestCharacter_WithInventory_AppliesEquipment(t *testing.T) {
	inv := inventory.New()
	w := inventory.NewWeapon("axe", "Axe", 4)
	w.SetBool(inventory.KeyEquipped, true)
	inv.Add(w)
	c := character.WithInventory(inv)
	c.SetBaseStat("attack", stat.Int(1))
	atk, _ := c.IntStat("attack")
	assert.Equal(t, int32(5), atk)
}

func TestCharacter_TimedBuffExpires(t *testing.T) {
	c := hero()
	c.AddBuff("haste", "speed", stat.Float(2), 1.0)
	c.AddBuff("blessing", "attack", stat.Int(3), 0)

	speed, _ := c.FloatStat("speed")
	assert.Equal(t, float32(7), speed)

	assert.Empty(t, c.Tick(0.5))
	assert.Equal(t, []string{"haste"}, c.Tick(0.5))
	speed, _ = c.FloatStat("speed")
	assert.Equal(t, float32(5), speed)

	atk, _ := c.IntStat("attack")
	assert.Equal(t, int32(13), atk, "permanent buffs survive ticking")
	assert.Equal(t, 1, c.RemoveBuff("blessing"))
}

func TestCharacter_BuffsResolveAfterEquipment(t *testing.T) {
	c := hero()
	c.AddBuff("rage", "attack", stat.Int(1), 0)
	c.AddItem(inventory.NewWeapon("sword", "Sword", 5))
	c.EquipItem("sword")
	mods := c.Stats().Modifiers("attack")
	require.Len(t, mods, 2)
	assert.Equal(t, modifier.EquipmentSource("sword"), mods[0].Source)
	assert.Equal(t, modifier.BuffSource("rage"), mods[1].Source)
}

func TestCharacter_SetPositionValues(t *testing.T) {
	c := character.New()
	assert.False(t, c.SetPositionValues(1, 2, 3))
	assert.True(t, c.SetPositionValues(1, 2))
	assert.Equal(t, float32(1), c.X())
	assert.Equal(t, float32(2), c.Y())

	other := character.New()
	assert.InDelta(t, 2.236, c.DistanceTo(other), 1e-3)
	require.True(t, other.MoveToward(c.Position, 100))
	assert.Zero(t, c.DistanceTo(other))
}

func TestCharacter_JSONRoundTrip_RederivesEquipment(t *testing.T) {
	c := hero()
	c.Position = coords.New2D(3, 4)
	c.AddItem(inventory.NewWeapon("sword", "Sword", 5))
	c.EquipItem("sword")
	c.AddBuff("rage", "attack", stat.Int(1), 0)

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var out character.Character
	require.NoError(t, json.Unmarshal(data, &out))
	assert.True(t, c.BaseStats().Equal(out.BaseStats()))
	assert.True(t, c.Position.Equal(out.Position))
	atk, _ := out.IntStat("attack")
	assert.Equal(t, int32(15), atk, "equipment is re-derived; buffs are not persisted")
}

func TestPropertyCharacter_EquipSyncIsIdempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := hero()
		n := rapid.IntRange(0, 6).Draw(rt, "items")
		var want int32 = 10
		for i := range n {
			id := string(rune('a' + i))
			dmg := rapid.Int32Range(-5, 20).Draw(rt, "dmg")
			c.AddItem(inventory.NewWeapon(id, id, dmg))
			if rapid.Bool().Draw(rt, "equip") {
				c.EquipItem(id)
				want += dmg
			}
		}
		before := c.Stats().Fingerprint()
		c.UpdateStatsFromInventory()
		assert.Equal(rt, before, c.Stats().Fingerprint())
		atk, _ := c.IntStat("attack")
		assert.Equal(rt, want, atk)
	})
}
