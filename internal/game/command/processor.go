package command

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/statengine/internal/game/coords"
	"github.com/cory-johannsen/statengine/internal/game/inventory"
	"github.com/cory-johannsen/statengine/internal/game/npc"
	"github.com/cory-johannsen/statengine/internal/game/property"
	"github.com/cory-johannsen/statengine/internal/game/stat"
	"github.com/cory-johannsen/statengine/internal/game/state"
)

// PlayerTarget names the player in commands that otherwise take an NPC id.
const PlayerTarget = state.PlayerTarget

// HandlerFunc applies a parsed command to a game state and returns the
// plain-text response.
type HandlerFunc func(g *state.GameState, pr ParseResult) string

// Processor resolves shell lines against a Registry and dispatches them to
// handlers operating on one GameState.
//
// Processor is not safe for concurrent use; it must run on the goroutine
// that owns the GameState.
type Processor struct {
	game      *state.GameState
	registry  *Registry
	handlers  map[string]HandlerFunc
	templates map[string]*npc.Template
	evaluator property.Evaluator
	items     *inventory.Registry
	itemSeq   int
}

// Option configures a Processor.
type Option func(*Processor)

// WithTemplates makes the given NPC templates spawnable by id.
func WithTemplates(templates []*npc.Template) Option {
	return func(p *Processor) {
		for _, t := range templates {
			p.templates[t.ID] = t
		}
	}
}

// WithItems makes the item templates in reg available to give.
func WithItems(reg *inventory.Registry) Option {
	return func(p *Processor) { p.items = reg }
}

// WithEvaluator sets the evaluator used for conditional tag modifiers.
func WithEvaluator(ev property.Evaluator) Option {
	return func(p *Processor) { p.evaluator = ev }
}

// NewProcessor returns a Processor over g with the built-in commands. The
// world commands are added when templates or an evaluator are supplied, and
// the item commands when an item registry is.
//
// Precondition: g must not be nil.
func NewProcessor(g *state.GameState, opts ...Option) *Processor {
	p := &Processor{
		game:      g,
		templates: make(map[string]*npc.Template),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.registry = DefaultRegistry()
	extended := len(p.templates) > 0 || p.evaluator != nil || p.items != nil
	if len(p.templates) > 0 || p.evaluator != nil {
		p.mustRegister(WorldCommands())
	}
	if p.items != nil {
		p.mustRegister(ItemCommands())
	}
	if extended {
		p.mustRegister(InspectCommands())
	}
	p.handlers = map[string]HandlerFunc{
		HandlerMove:   handleMove,
		HandlerStatus: handleStatus,
		HandlerSet:    handleSet,
		HandlerGet:    handleGet,
		HandlerJSON:   handleJSON,
		HandlerHelp:   p.handleHelp,
		HandlerQuit:   handleQuit,
		HandlerSpawn:  p.handleSpawn,
		HandlerNPCs:   handleNPCs,
		HandlerStat:   handleStat,
		HandlerApply:  p.handleApply,

		HandlerGive:      p.handleGive,
		HandlerEquip:     handleEquip,
		HandlerUnequip:   handleUnequip,
		HandlerInventory: handleInventory,
	}
	return p
}

func (p *Processor) mustRegister(cmds []Command) {
	if err := p.registry.Register(cmds...); err != nil {
		panic(fmt.Sprintf("building command registry: %v", err))
	}
}

// Registry returns the command registry used by p.
func (p *Processor) Registry() *Registry { return p.registry }

// Process parses line and applies it to the game state.
//
// Postcondition: Always returns a response; unknown or empty input yields an
// explanatory message rather than an error.
func (p *Processor) Process(line string) string {
	pr := Parse(line)
	if pr.Command == "" {
		return "No command provided"
	}
	cmd, ok := p.registry.Resolve(pr.Command)
	if !ok {
		return fmt.Sprintf("Unknown command: %s. Type 'help' for available commands.", pr.Word)
	}
	h, ok := p.handlers[cmd.Handler]
	if !ok {
		return fmt.Sprintf("Command %s has no handler", cmd.Name)
	}
	return h(p.game, pr)
}

func handleMove(g *state.GameState, pr ParseResult) string {
	if !pr.HasArgs(2) {
		return "Not enough arguments. Usage: move <x> <y>"
	}
	xy, ok := pr.Float32s(0, 2)
	if !ok {
		return "Invalid coordinates. Usage: move <x> <y>"
	}
	if !g.Player.Position.Set(0, xy[0]) || !g.Player.Position.Set(1, xy[1]) {
		return "Invalid coordinates. Usage: move <x> <y>"
	}
	return fmt.Sprintf("Player moved to %s", g.Player.Position)
}

func handleStatus(g *state.GameState, _ ParseResult) string {
	return g.Status()
}

func handleSet(g *state.GameState, pr ParseResult) string {
	if !pr.HasArgs(2) {
		return "Not enough arguments. Usage: set <key> <value>"
	}
	key, value := pr.Args[0], pr.Joined(1)
	g.Properties[key] = value
	return fmt.Sprintf("Property '%s' set to '%s'", key, value)
}

func handleGet(g *state.GameState, pr ParseResult) string {
	if !pr.HasArgs(1) {
		return "Not enough arguments. Usage: get <key>"
	}
	key := pr.Args[0]
	value, ok := g.Properties[key]
	if !ok {
		return fmt.Sprintf("Property '%s' not found", key)
	}
	return fmt.Sprintf("%s: %s", key, value)
}

func handleJSON(g *state.GameState, _ ParseResult) string {
	data, err := state.EncodeIndent(g)
	if err != nil {
		return fmt.Sprintf("Error serializing to JSON: %v", err)
	}
	return string(data)
}

func handleQuit(g *state.GameState, _ ParseResult) string {
	g.Stop()
	return "Shutting down..."
}

func (p *Processor) handleHelp(_ *state.GameState, _ ParseResult) string {
	return p.registry.Help()
}

func (p *Processor) handleSpawn(g *state.GameState, pr ParseResult) string {
	if !pr.HasArgs(1) {
		return "Not enough arguments. Usage: spawn <template> [x] [y]"
	}
	tmpl, ok := p.templates[pr.Args[0]]
	if !ok {
		return fmt.Sprintf("Unknown NPC template: %s", pr.Args[0])
	}
	var pos *coords.Coordinates
	if pr.HasArgs(3) {
		xy, ok := pr.Float32s(1, 2)
		if !ok {
			return "Invalid coordinates. Usage: spawn <template> [x] [y]"
		}
		pos = coords.New2D(xy[0], xy[1])
	}
	n, err := g.NPCs.Spawn(tmpl, g.EntityTypes, pos)
	if err != nil {
		return fmt.Sprintf("Spawn failed: %v", err)
	}
	return fmt.Sprintf("Spawned %s at %s", n.ID, n.Position)
}

func handleNPCs(g *state.GameState, _ ParseResult) string {
	all := g.NPCs.All()
	if len(all) == 0 {
		return "No NPCs"
	}
	var b strings.Builder
	b.WriteString("NPCs:")
	for _, n := range all {
		typeID := "untyped"
		if n.Type != nil {
			typeID = n.Type.ID
		}
		fmt.Fprintf(&b, "\n  %s (%s) at %s", n.ID, typeID, n.Position)
	}
	return b.String()
}

func handleStat(g *state.GameState, pr ParseResult) string {
	if !pr.HasArgs(2) {
		return "Not enough arguments. Usage: stat <npc|player> <stat>"
	}
	who, name := pr.Args[0], pr.Args[1]
	var (
		v  stat.Value
		ok bool
	)
	if who == PlayerTarget {
		v, ok = g.Player.Stat(name)
	} else {
		n, found := g.NPCs.Get(who)
		if !found {
			return fmt.Sprintf("NPC '%s' not found", who)
		}
		v, ok = n.Stat(name)
	}
	if !ok {
		return fmt.Sprintf("Stat '%s' not found on %s", name, who)
	}
	return fmt.Sprintf("%s %s: %s", who, name, v)
}

func (p *Processor) handleApply(g *state.GameState, pr ParseResult) string {
	if !pr.HasArgs(2) {
		return "Not enough arguments. Usage: apply <npc> <context>"
	}
	n, ok := g.NPCs.Get(pr.Args[0])
	if !ok {
		return fmt.Sprintf("NPC '%s' not found", pr.Args[0])
	}
	ctx := pr.Args[1]
	added, err := g.ApplyTagModifiers(n, ctx, p.evaluator)
	msg := fmt.Sprintf("Applied %d modifiers to %s in context '%s'", added, n.ID, ctx)
	if err != nil {
		msg += fmt.Sprintf(" (errors: %v)", err)
	}
	return msg
}
