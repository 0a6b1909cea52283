package command

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/statengine/internal/game/inventory"
	"github.com/cory-johannsen/statengine/internal/game/state"
)

// handleInventory lists the player's items ordered by id, marking equipped
// ones.
func handleInventory(g *state.GameState, _ ParseResult) string {
	items := g.Player.Inventory.Items()
	if len(items) == 0 {
		return "Inventory is empty"
	}
	var b strings.Builder
	b.WriteString("Inventory:")
	for _, it := range items {
		kind, _ := it.String(inventory.KeyType)
		fmt.Fprintf(&b, "\n  %s - %s", it.ID(), it.Name())
		if kind != "" {
			fmt.Fprintf(&b, " [%s]", kind)
		}
		if it.Equipped() {
			b.WriteString(" (equipped)")
		}
	}
	return b.String()
}
