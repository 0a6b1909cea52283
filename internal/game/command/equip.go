package command

import (
	"fmt"

	"github.com/cory-johannsen/statengine/internal/game/state"
)

// handleGive instantiates an item template into the player's inventory.
//
// Precondition: pr.Args[0] names a template in the processor's item registry.
// Postcondition: On success the item is stored unequipped under a fresh
// instance id "<template>-<n>" and equipment modifiers are resynced.
func (p *Processor) handleGive(g *state.GameState, pr ParseResult) string {
	if !pr.HasArgs(1) {
		return "Not enough arguments. Usage: give <item>"
	}
	if p.items == nil {
		return "No item templates loaded"
	}
	def, ok := p.items.Item(pr.Args[0])
	if !ok {
		return fmt.Sprintf("Unknown item: %s", pr.Args[0])
	}
	var id string
	for {
		p.itemSeq++
		id = fmt.Sprintf("%s-%d", def.ID, p.itemSeq)
		if !g.Player.Inventory.Has(id) {
			break
		}
	}
	if !g.Player.AddItem(def.New(id)) {
		return "Inventory is full"
	}
	return fmt.Sprintf("Added %s (%s) to inventory", def.Name, id)
}

// handleEquip flags an inventory item as equipped.
//
// Postcondition: On success the player's equipment modifiers are rebuilt.
func handleEquip(g *state.GameState, pr ParseResult) string {
	if !pr.HasArgs(1) {
		return "Not enough arguments. Usage: equip <item>"
	}
	id := pr.Args[0]
	it, ok := g.Player.Inventory.Item(id)
	if !ok {
		return fmt.Sprintf("Item '%s' not in inventory", id)
	}
	if it.Equipped() {
		return fmt.Sprintf("%s is already equipped", it.Name())
	}
	g.Player.EquipItem(id)
	return fmt.Sprintf("Equipped %s", it.Name())
}

func handleUnequip(g *state.GameState, pr ParseResult) string {
	if !pr.HasArgs(1) {
		return "Not enough arguments. Usage: unequip <item>"
	}
	id := pr.Args[0]
	it, ok := g.Player.Inventory.Item(id)
	if !ok {
		return fmt.Sprintf("Item '%s' not in inventory", id)
	}
	if !it.Equipped() {
		return fmt.Sprintf("%s is not equipped", it.Name())
	}
	g.Player.UnequipItem(id)
	return fmt.Sprintf("Unequipped %s", it.Name())
}
