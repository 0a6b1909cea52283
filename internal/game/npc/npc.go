// Package npc provides non-player entities built on entity types, their
// YAML templates, and live instance management.
package npc

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"

	"github.com/cory-johannsen/statengine/internal/game/coords"
	"github.com/cory-johannsen/statengine/internal/game/entity"
	"github.com/cory-johannsen/statengine/internal/game/modifier"
	"github.com/cory-johannsen/statengine/internal/game/property"
	"github.com/cory-johannsen/statengine/internal/game/stat"
	"github.com/cory-johannsen/statengine/internal/game/tag"
)

// DefaultBehaviorState is the behavior state of a freshly created NPC.
const DefaultBehaviorState = "idle"

// Well-known stat and property keys used by the built-in behaviors.
const (
	StatHP             = "hp"
	StatMaxHP          = "max_hp"
	StatSpeed          = "speed"
	StatAttack         = "attack"
	StatAttackCooldown = "attack_cooldown"
	StatAdoration      = "adoration"
	StatMaxAdoration   = "max_adoration"
	StatAttentionSpan  = "attention_span"
	StatFandomLevel    = "fandom_level"

	PropLastAttackTime = "last_attack_time"
)

// NPC is a live non-player entity.
//
// NPC is not safe for concurrent use.
type NPC struct {
	ID            string
	Type          *entity.Type
	Position      *coords.Coordinates
	BehaviorState string
	StatusEffects []string

	properties map[string]stat.Value
	stats      *modifier.Stack
}

// New returns an idle NPC of type t at the 2D origin. An empty id is
// replaced with a random UUID.
//
// Precondition: t must not be nil.
func New(id string, t *entity.Type) *NPC {
	return WithPosition(id, t, coords.New2D(0, 0))
}

// WithPosition returns an idle NPC of type t at pos.
func WithPosition(id string, t *entity.Type, pos *coords.Coordinates) *NPC {
	if id == "" {
		id = uuid.NewString()
	}
	return &NPC{
		ID:            id,
		Type:          t,
		Position:      pos,
		BehaviorState: DefaultBehaviorState,
		properties:    make(map[string]stat.Value),
		stats:         modifier.NewStack(),
	}
}

// NewCombat returns an NPC with health-based combat stats.
func NewCombat(id string, t *entity.Type, hp int32, speed float32, attack int32) *NPC {
	n := New(id, t)
	n.SetBaseStat(StatHP, stat.Int(hp))
	n.SetBaseStat(StatMaxHP, stat.Int(hp))
	n.SetBaseStat(StatSpeed, stat.Float(speed))
	n.SetBaseStat(StatAttack, stat.Int(attack))
	n.SetBaseStat(StatAttackCooldown, stat.Float(1.0))
	return n
}

// NewFan returns an NPC with adoration-based stats.
func NewFan(id string, t *entity.Type, adoration int32, attentionSpan float32) *NPC {
	n := New(id, t)
	n.SetBaseStat(StatAdoration, stat.Int(adoration))
	n.SetBaseStat(StatMaxAdoration, stat.Int(100))
	n.SetBaseStat(StatAttentionSpan, stat.Float(attentionSpan))
	n.SetBaseStat(StatFandomLevel, stat.Int(1))
	return n
}

// SetProperty stores a free-form runtime property.
func (n *NPC) SetProperty(key string, v stat.Value) { n.properties[key] = v }

// Property returns the runtime property under key.
func (n *NPC) Property(key string) (stat.Value, bool) {
	v, ok := n.properties[key]
	return v, ok
}

// IntProperty returns the integer property under key.
func (n *NPC) IntProperty(key string) (int32, bool) { return n.properties[key].AsInt() }

// FloatProperty returns the float property under key.
func (n *NPC) FloatProperty(key string) (float32, bool) { return n.properties[key].AsFloat() }

// Stats exposes the NPC's modifier stack.
func (n *NPC) Stats() *modifier.Stack { return n.stats }

// BaseStats returns a copy of the base stats.
func (n *NPC) BaseStats() *stat.Stats { return n.stats.Base() }

// SetBaseStat overwrites a base stat.
func (n *NPC) SetBaseStat(key string, v stat.Value) { n.stats.SetBase(key, v) }

// Stat resolves key through the modifier stack.
func (n *NPC) Stat(key string) (stat.Value, bool) { return n.stats.Resolve(key) }

// IntStat resolves key as an integer.
func (n *NPC) IntStat(key string) (int32, bool) { return n.stats.Int(key) }

// FloatStat resolves key as a float.
func (n *NPC) FloatStat(key string) (float32, bool) { return n.stats.Float(key) }

// AddStatModifier adds a modifier to statName.
func (n *NPC) AddStatModifier(statName, source string, t modifier.Type, v stat.Value, priority int) {
	n.stats.AddModifier(statName, modifier.Modifier{Source: source, Type: t, Value: v, Priority: priority})
}

// AddStatusEffect records effect once.
func (n *NPC) AddStatusEffect(effect string) {
	if !n.HasStatusEffect(effect) {
		n.StatusEffects = append(n.StatusEffects, effect)
	}
}

// RemoveStatusEffect drops effect.
func (n *NPC) RemoveStatusEffect(effect string) {
	n.StatusEffects = slices.DeleteFunc(n.StatusEffects, func(e string) bool { return e == effect })
}

// HasStatusEffect reports whether effect is active.
func (n *NPC) HasStatusEffect(effect string) bool { return slices.Contains(n.StatusEffects, effect) }

// SetBehaviorState replaces the behavior state label.
func (n *NPC) SetBehaviorState(s string) { n.BehaviorState = s }

// SetPosition sets the first two axes. It does nothing on points with fewer
// than two dimensions.
func (n *NPC) SetPosition(x, y float32) {
	if n.Position.Dimensions() >= 2 {
		n.Position.Set(0, x)
		n.Position.Set(1, y)
	}
}

// MoveToward steps toward target at the resolved "speed" stat (1.0 when
// absent) for dt seconds.
func (n *NPC) MoveToward(target *coords.Coordinates, dt float32) bool {
	speed, ok := n.FloatStat(StatSpeed)
	if !ok {
		speed = 1.0
	}
	return n.Position.MoveToward(target, speed*dt)
}

// DistanceTo returns the distance between n and o.
func (n *NPC) DistanceTo(o *NPC) float32 { return n.Position.Distance(o.Position) }

// TakeDamage lowers hp by amount, flooring at zero. The new value is written
// to the base stat computed from the resolved hp.
//
// Postcondition: returns true when hp reached zero; false when the NPC has
// no integer hp stat.
func (n *NPC) TakeDamage(amount int32) bool {
	hp, ok := n.IntStat(StatHP)
	if !ok {
		return false
	}
	hp = max(hp-amount, 0)
	n.SetBaseStat(StatHP, stat.Int(hp))
	return hp <= 0
}

// ReceiveAdoration raises adoration by amount, capped at max_adoration
// (100 when absent).
//
// Postcondition: returns true when the cap was reached; false when the NPC
// has no integer adoration stat.
func (n *NPC) ReceiveAdoration(amount int32) bool {
	cur, ok := n.IntStat(StatAdoration)
	if !ok {
		return false
	}
	limit, ok := n.IntStat(StatMaxAdoration)
	if !ok {
		limit = 100
	}
	cur = min(cur+amount, limit)
	n.SetBaseStat(StatAdoration, stat.Int(cur))
	return cur >= limit
}

// CanAttack reports whether the attack cooldown has elapsed at game time
// now, recording now as the last attack time when it has. An NPC that has
// never attacked, or has no cooldown stat, may always attack.
func (n *NPC) CanAttack(now float32) bool {
	last, hasLast := n.FloatProperty(PropLastAttackTime)
	cooldown, hasCooldown := n.FloatStat(StatAttackCooldown)
	if hasLast && hasCooldown && now-last < cooldown {
		return false
	}
	n.SetProperty(PropLastAttackTime, stat.Float(now))
	return true
}

// Env returns the evaluation environment for conditions on n: every base stat
// key resolved through the modifier stack, every runtime property, and
// "behavior_state". Stats shadow properties of the same name.
func (n *NPC) Env() property.Env {
	env := make(property.Env, len(n.properties)+n.stats.Base().Len()+1)
	maps.Copy(env, n.properties)
	for _, key := range n.stats.Base().Keys() {
		if v, ok := n.stats.Resolve(key); ok {
			env[key] = v
		}
	}
	env["behavior_state"] = stat.String(n.BehaviorState)
	return env
}

// EnvWithTags extends Env with a true Boolean under property.TagEnvKey for
// every tag of n's type resolvable in c.
func (n *NPC) EnvWithTags(c *tag.Collection) property.Env {
	env := n.Env()
	if n.Type == nil {
		return env
	}
	for _, tg := range n.Type.Tags(c) {
		env[property.TagEnvKey(tg.Name)] = stat.Bool(true)
	}
	return env
}

// ApplyTagModifiers is ApplyTagModifiersWithEnv evaluated against
// n.EnvWithTags(c).
func (n *NPC) ApplyTagModifiers(c *tag.Collection, ctx string, ev property.Evaluator) (int, error) {
	return n.ApplyTagModifiersWithEnv(c, ctx, ev, n.EnvWithTags(c))
}

// ApplyTagModifiersWithEnv replaces the modifiers previously injected for ctx
// with one Additive modifier per stat-modifier property of n's type applying
// in ctx, tag-derived first. Properties with conditions are injected only
// when ev reports that all of them hold against env; with a nil ev they are
// skipped.
//
// Postcondition: returns the number of modifiers injected. Evaluation errors
// are returned joined; properties that evaluated cleanly are still applied.
func (n *NPC) ApplyTagModifiersWithEnv(c *tag.Collection, ctx string, ev property.Evaluator, env property.Env) (int, error) {
	source := modifier.PropertySource(ctx)
	n.stats.RemoveModifiersBySource(source)
	if n.Type == nil {
		return 0, nil
	}

	var candidates []*property.Property
	for _, p := range n.Type.AllPropertiesInContext(c, ctx) {
		if p.Type != property.TypeStatModifier {
			continue
		}
		if len(p.Conditions) > 0 && ev == nil {
			continue
		}
		candidates = append(candidates, p)
	}

	var err error
	if ev != nil {
		candidates, err = property.FilterActive(candidates, ev, env)
	}
	added := 0
	for _, p := range candidates {
		name, v, ok := p.Value.AsStat()
		if !ok {
			continue
		}
		n.stats.AddModifier(name, modifier.Modifier{
			Source:   source,
			Type:     modifier.Additive,
			Value:    v,
			Priority: modifier.PriorityProperty,
		})
		added++
	}
	return added, err
}

type npcJSON struct {
	ID            string                `json:"id"`
	Type          *entity.Type          `json:"type"`
	Position      *coords.Coordinates   `json:"position"`
	Properties    map[string]stat.Value `json:"properties"`
	BaseStats     *stat.Stats           `json:"base_stats"`
	BehaviorState string                `json:"behavior_state"`
	StatusEffects []string              `json:"status_effects"`
}

// MarshalJSON encodes n without its modifiers.
func (n *NPC) MarshalJSON() ([]byte, error) {
	effects := n.StatusEffects
	if effects == nil {
		effects = []string{}
	}
	return json.Marshal(npcJSON{
		ID:            n.ID,
		Type:          n.Type,
		Position:      n.Position,
		Properties:    n.properties,
		BaseStats:     n.stats.Base(),
		BehaviorState: n.BehaviorState,
		StatusEffects: effects,
	})
}

// UnmarshalJSON decodes the form written by MarshalJSON. Modifiers start
// empty and are re-derived by their owners.
func (n *NPC) UnmarshalJSON(data []byte) error {
	var raw npcJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("npc: decoding: %w", err)
	}
	if raw.ID == "" {
		return fmt.Errorf("npc: decoding: missing id")
	}
	if raw.Position == nil {
		raw.Position = coords.New2D(0, 0)
	}
	out := WithPosition(raw.ID, raw.Type, raw.Position)
	out.stats = modifier.WithBase(raw.BaseStats)
	maps.Copy(out.properties, raw.Properties)
	if raw.BehaviorState != "" {
		out.BehaviorState = raw.BehaviorState
	}
	out.StatusEffects = raw.StatusEffects
	*n = *out
	return nil
}
