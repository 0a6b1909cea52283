package command_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/statengine/internal/game/command"
	"github.com/cory-johannsen/statengine/internal/game/coords"
	"github.com/cory-johannsen/statengine/internal/game/state"
)

func newProcessor() (*command.Processor, *state.GameState) {
	g := state.New()
	return command.NewProcessor(g), g
}

func TestProcessor_Empty(t *testing.T) {
	p, _ := newProcessor()
	assert.Equal(t, "No command provided", p.Process("   "))
}

func TestProcessor_Unknown_KeepsTypedCase(t *testing.T) {
	p, _ := newProcessor()
	assert.Equal(t, "Unknown command: Dance. Type 'help' for available commands.", p.Process("Dance now"))
}

func TestProcessor_Move(t *testing.T) {
	p, g := newProcessor()
	assert.Equal(t, "Player moved to (x:3, y:-4.5)", p.Process("MOVE 3 -4.5"))
	assert.True(t, g.Player.Position.Equal(coords.New2D(3, -4.5)))
}

func TestProcessor_Move_Errors(t *testing.T) {
	p, g := newProcessor()
	assert.Equal(t, "Not enough arguments. Usage: move <x> <y>", p.Process("move 1"))
	assert.Equal(t, "Invalid coordinates. Usage: move <x> <y>", p.Process("move one 2"))
	assert.True(t, g.Player.Position.Equal(coords.New2D(0, 0)))
}

func TestProcessor_Move_NonFiniteKeepsSnapshotEncodable(t *testing.T) {
	p, g := newProcessor()
	assert.Equal(t, "Invalid coordinates. Usage: move <x> <y>", p.Process("move nan inf"))
	assert.True(t, g.Player.Position.Equal(coords.New2D(0, 0)))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(p.Process("json")), &decoded))
}

func TestProcessor_Status(t *testing.T) {
	p, g := newProcessor()
	g.Update(0.1)
	assert.Equal(t, "Game status - Tick: 1\nPlayer position: (x:0, y:0)\nNPCs: 0", p.Process("status"))
}

func TestProcessor_SetGet(t *testing.T) {
	p, g := newProcessor()
	assert.Equal(t, "Property 'motd' set to 'hello big world'", p.Process("set motd hello big   world"))
	assert.Equal(t, "hello big world", g.Properties["motd"], "values are rejoined with single spaces")
	assert.Equal(t, "motd: hello big world", p.Process("get motd"))
	assert.Equal(t, "Property 'nope' not found", p.Process("get nope"))
}

func TestProcessor_SetGet_NotEnoughArguments(t *testing.T) {
	p, _ := newProcessor()
	assert.Equal(t, "Not enough arguments. Usage: set <key> <value>", p.Process("set key"))
	assert.Equal(t, "Not enough arguments. Usage: get <key>", p.Process("get"))
}

func TestProcessor_JSON(t *testing.T) {
	p, g := newProcessor()
	out := p.Process("json")
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, g.ID, decoded["id"])
}

func TestProcessor_QuitAndExit(t *testing.T) {
	for _, verb := range []string{"quit", "exit", "EXIT"} {
		p, g := newProcessor()
		assert.Equal(t, "Shutting down...", p.Process(verb))
		assert.False(t, g.Running(), verb)
	}
}

func TestProcessor_Help(t *testing.T) {
	p, _ := newProcessor()
	want := "Available commands:\n" +
		"  move <x> <y> - Move player to coordinates\n" +
		"  status - Show game status\n" +
		"  set <key> <value> - Set a game property\n" +
		"  get <key> - Show a game property\n" +
		"  json - Get game state as JSON\n" +
		"  quit/exit - Exit the game\n" +
		"  help - Show this help"
	assert.Equal(t, want, p.Process("help"))
}

func TestPropertyProcessor_NeverPanicsAndAlwaysResponds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p, _ := newProcessor()
		line := rapid.String().Draw(rt, "line")
		if p.Process(line) == "" {
			rt.Fatalf("empty response for %q", line)
		}
	})
}
