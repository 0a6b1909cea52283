// Package command provides the shell command registry, parser, and the
// Processor that applies commands to a GameState.
package command

// Categories for organizing commands.
const (
	CategoryMovement = "movement"
	CategoryWorld    = "world"
	CategoryItems    = "items"
	CategorySystem   = "system"
)

// Handler identifiers mapping commands to Processor handlers.
const (
	HandlerMove   = "move"
	HandlerStatus = "status"
	HandlerSet    = "set"
	HandlerGet    = "get"
	HandlerJSON   = "json"
	HandlerHelp   = "help"
	HandlerQuit   = "quit"
	HandlerSpawn  = "spawn"
	HandlerNPCs   = "npcs"
	HandlerStat   = "stat"
	HandlerApply  = "apply"

	HandlerGive      = "give"
	HandlerEquip     = "equip"
	HandlerUnequip   = "unequip"
	HandlerInventory = "inventory"
)

// Command defines a shell command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage is the argument synopsis shown by help, e.g. "<x> <y>".
	Usage string
	// Help is the short help text.
	Help string
	// Category groups the command.
	Category string
	// Handler maps to the Processor handler.
	Handler string
}

// BuiltinCommands returns the built-in shell commands in help order.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "move", Usage: "<x> <y>", Help: "Move player to coordinates", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "status", Help: "Show game status", Category: CategoryWorld, Handler: HandlerStatus},
		{Name: "set", Usage: "<key> <value>", Help: "Set a game property", Category: CategoryWorld, Handler: HandlerSet},
		{Name: "get", Usage: "<key>", Help: "Show a game property", Category: CategoryWorld, Handler: HandlerGet},
		{Name: "json", Help: "Get game state as JSON", Category: CategorySystem, Handler: HandlerJSON},
		{Name: "quit", Aliases: []string{"exit"}, Help: "Exit the game", Category: CategorySystem, Handler: HandlerQuit},
		{Name: "help", Help: "Show this help", Category: CategorySystem, Handler: HandlerHelp},
	}
}

// WorldCommands returns the NPC commands enabled when a Processor is given
// NPC templates or a condition evaluator.
func WorldCommands() []Command {
	return []Command{
		{Name: "spawn", Usage: "<template> [x] [y]", Help: "Spawn an NPC from a template", Category: CategoryWorld, Handler: HandlerSpawn},
		{Name: "npcs", Help: "List live NPCs", Category: CategoryWorld, Handler: HandlerNPCs},
		{Name: "apply", Usage: "<npc> <context>", Help: "Apply tag modifiers for a context", Category: CategoryWorld, Handler: HandlerApply},
	}
}

// InspectCommands returns the stat inspection commands enabled alongside the
// world or item commands.
func InspectCommands() []Command {
	return []Command{
		{Name: "stat", Usage: "<npc|player> <stat>", Help: "Show a resolved stat", Category: CategoryWorld, Handler: HandlerStat},
	}
}

// ItemCommands returns the player inventory commands enabled when a Processor
// is given an item registry.
func ItemCommands() []Command {
	return []Command{
		{Name: "give", Usage: "<item>", Help: "Add an item from a template to the inventory", Category: CategoryItems, Handler: HandlerGive},
		{Name: "inventory", Aliases: []string{"inv"}, Help: "List inventory items", Category: CategoryItems, Handler: HandlerInventory},
		{Name: "equip", Usage: "<item>", Help: "Equip an inventory item", Category: CategoryItems, Handler: HandlerEquip},
		{Name: "unequip", Usage: "<item>", Help: "Unequip an inventory item", Category: CategoryItems, Handler: HandlerUnequip},
	}
}

// Synopsis renders the command as it appears in help output.
func (c *Command) Synopsis() string {
	s := c.Name
	for _, a := range c.Aliases {
		s += "/" + a
	}
	if c.Usage != "" {
		s += " " + c.Usage
	}
	return s
}
