package state_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/statengine/internal/game/coords"
	"github.com/cory-johannsen/statengine/internal/game/entity"
	"github.com/cory-johannsen/statengine/internal/game/inventory"
	"github.com/cory-johannsen/statengine/internal/game/npc"
	"github.com/cory-johannsen/statengine/internal/game/property"
	"github.com/cory-johannsen/statengine/internal/game/stat"
	"github.com/cory-johannsen/statengine/internal/game/state"
)

func TestGameState_ConditionEnv(t *testing.T) {
	g := state.New()
	g.GameTime = 25 * state.SecondsPerHour
	def := &inventory.ItemDef{ID: "potion", Name: "Potion", Kind: inventory.KindPotion, Healing: 3}
	require.True(t, g.Player.AddItem(def.New("potion-2")))
	g.Player.Position = coords.New2D(0, 0)

	n := npc.WithPosition("n1", entity.New("orc", "Orc"), coords.New2D(6, 8))
	env := g.ConditionEnv(n)

	assert.Equal(t, stat.Float(1), env[property.HourEnvKey], "hours wrap at 24")
	assert.Equal(t, stat.Float(10), env[property.DistanceEnvKey(state.PlayerTarget)])
	assert.Equal(t, stat.Bool(true), env[property.ItemEnvKey("potion")])
	assert.Equal(t, stat.Bool(true), env[property.ItemEnvKey("potion-2")])
	assert.Equal(t, stat.String(npc.DefaultBehaviorState), env["behavior_state"])
}

func TestGameState_ConditionEnv_DimensionMismatchOmitsDistance(t *testing.T) {
	g := state.New(state.WithPlayerDimensions(3))
	n := npc.WithPosition("n1", entity.New("orc", "Orc"), coords.New2D(1, 1))
	_, ok := g.ConditionEnv(n)[property.DistanceEnvKey(state.PlayerTarget)]
	assert.False(t, ok)
}

func TestPropertyHourStaysInDay(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := state.New()
		g.GameTime = rapid.Float32Range(-1e6, 1e6).Draw(t, "game_time")
		if h := g.Hour(); h < 0 || h >= state.HoursPerDay {
			t.Fatalf("GameTime %v gave hour %v", g.GameTime, h)
		}
	})
}
