package state

import (
	"math"

	"github.com/cory-johannsen/statengine/internal/game/inventory"
	"github.com/cory-johannsen/statengine/internal/game/npc"
	"github.com/cory-johannsen/statengine/internal/game/property"
	"github.com/cory-johannsen/statengine/internal/game/stat"
)

// Game clock: one in-game hour passes every SecondsPerHour of GameTime.
const (
	SecondsPerHour = 60
	HoursPerDay    = 24
)

// PlayerTarget is the distance target naming the player.
const PlayerTarget = "player"

// Hour returns the in-game hour of day in [0, HoursPerDay).
func (g *GameState) Hour() float32 {
	h := math.Mod(float64(g.GameTime)/SecondsPerHour, HoursPerDay)
	if h < 0 {
		h += HoursPerDay
	}
	if f := float32(h); f < HoursPerDay {
		return f
	}
	return 0
}

// ConditionEnv returns the environment conditions on n are evaluated
// against: n.EnvWithTags plus the hour of day, the distance to the player,
// and a true Boolean for every item the player carries, keyed by instance id
// and by template.
//
// Postcondition: the distance key is absent when n and the player live in
// spaces of different dimension.
func (g *GameState) ConditionEnv(n *npc.NPC) property.Env {
	env := n.EnvWithTags(g.Tags)
	env[property.HourEnvKey] = stat.Float(g.Hour())
	if n.Position != nil {
		if d := n.Position.Distance(g.Player.Position); !math.IsNaN(float64(d)) {
			env[property.DistanceEnvKey(PlayerTarget)] = stat.Float(d)
		}
	}
	for _, it := range g.Player.Inventory.Items() {
		env[property.ItemEnvKey(it.ID())] = stat.Bool(true)
		if tmpl, ok := it.String(inventory.KeyTemplate); ok {
			env[property.ItemEnvKey(tmpl)] = stat.Bool(true)
		}
	}
	return env
}

// ApplyTagModifiers injects n's tag modifiers for ctx, evaluating conditions
// against g.ConditionEnv(n).
func (g *GameState) ApplyTagModifiers(n *npc.NPC, ctx string, ev property.Evaluator) (int, error) {
	return n.ApplyTagModifiersWithEnv(g.Tags, ctx, ev, g.ConditionEnv(n))
}
