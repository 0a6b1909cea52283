package command_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/statengine/internal/game/command"
	"github.com/cory-johannsen/statengine/internal/game/inventory"
	"github.com/cory-johannsen/statengine/internal/game/stat"
	"github.com/cory-johannsen/statengine/internal/game/state"
)

func newItemProcessor(t *testing.T) (*command.Processor, *state.GameState) {
	t.Helper()
	reg := inventory.NewRegistry()
	require.NoError(t, reg.Register(&inventory.ItemDef{ID: "sword", Name: "Sword", Kind: inventory.KindWeapon, Damage: 5}))
	require.NoError(t, reg.Register(&inventory.ItemDef{ID: "shield", Name: "Shield", Kind: inventory.KindArmor, Defense: 3}))
	g := state.New()
	g.Player.SetBaseStat("attack", stat.Int(10))
	g.Player.SetBaseStat("defense", stat.Int(2))
	return command.NewProcessor(g, command.WithItems(reg)), g
}

func TestGive(t *testing.T) {
	p, g := newItemProcessor(t)
	assert.Equal(t, "Added Sword (sword-1) to inventory", p.Process("give sword"))
	assert.Equal(t, "Added Sword (sword-2) to inventory", p.Process("give sword"))
	assert.Equal(t, 2, g.Player.Inventory.Count())
	assert.Equal(t, "Unknown item: axe", p.Process("give axe"))
	assert.Equal(t, "Not enough arguments. Usage: give <item>", p.Process("give"))
}

func TestGive_FullInventory(t *testing.T) {
	p, g := newItemProcessor(t)
	g.Player.Inventory.SetCapacity(1)
	p.Process("give sword")
	assert.Equal(t, "Inventory is full", p.Process("give shield"))
}

func TestEquipUnequip_RebuildsEquipmentModifiers(t *testing.T) {
	p, g := newItemProcessor(t)
	p.Process("give sword")
	p.Process("give shield")

	assert.Equal(t, "Equipped Sword", p.Process("equip sword-1"))
	assert.Equal(t, "Sword is already equipped", p.Process("equip sword-1"))
	assert.Equal(t, "player attack: 15", p.Process("stat player attack"))

	assert.Equal(t, "Equipped Shield", p.Process("equip shield-2"))
	def, _ := g.Player.IntStat("defense")
	assert.Equal(t, int32(5), def)

	assert.Equal(t, "Unequipped Sword", p.Process("unequip sword-1"))
	assert.Equal(t, "Sword is not equipped", p.Process("unequip sword-1"))
	assert.Equal(t, "player attack: 10", p.Process("stat player attack"))
}

func TestEquip_Errors(t *testing.T) {
	p, _ := newItemProcessor(t)
	assert.Equal(t, "Item 'ghost' not in inventory", p.Process("equip ghost"))
	assert.Equal(t, "Item 'ghost' not in inventory", p.Process("unequip ghost"))
	assert.Equal(t, "Not enough arguments. Usage: equip <item>", p.Process("equip"))
	assert.Equal(t, "Not enough arguments. Usage: unequip <item>", p.Process("unequip"))
}

func TestItemCommands_WithoutWorldCommands(t *testing.T) {
	p, _ := newItemProcessor(t)
	assert.Contains(t, p.Process("help"), "\n  give <item> - Add an item from a template to the inventory")
	assert.NotContains(t, p.Process("help"), "spawn")
	assert.Contains(t, p.Process("help"), "\n  stat <npc|player> <stat> - Show a resolved stat")
}
