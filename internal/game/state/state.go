// Package state holds the GameState aggregate: the player, live NPCs, the
// tag collection and entity types, and game-level clocks and properties.
package state

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/statengine/internal/game/character"
	"github.com/cory-johannsen/statengine/internal/game/entity"
	"github.com/cory-johannsen/statengine/internal/game/npc"
	"github.com/cory-johannsen/statengine/internal/game/tag"
)

// DefaultVersion is stamped on states created without WithVersion.
const DefaultVersion = "0.1.0"

// GameState is the root of the world object graph.
//
// GameState is not safe for concurrent mutation; only Running and Stop may be
// called from other goroutines.
type GameState struct {
	ID          string
	Version     string
	Tick        uint64
	LastUpdated time.Time
	Player      *character.Character
	NPCs        *npc.Manager
	Tags        *tag.Collection
	EntityTypes *entity.Registry
	GameTime    float32
	Properties  map[string]string

	running atomic.Bool
	now     func() time.Time
}

// Option configures a GameState built by New.
type Option func(*GameState)

// WithVersion sets the version label.
func WithVersion(v string) Option { return func(g *GameState) { g.Version = v } }

// WithID sets the game id instead of generating one.
func WithID(id string) Option { return func(g *GameState) { g.ID = id } }

// WithPlayerDimensions places the player in an n-dimensional space.
func WithPlayerDimensions(n int) Option {
	return func(g *GameState) { g.Player = character.WithDimensions(n) }
}

// WithClock replaces time.Now for LastUpdated stamps.
func WithClock(now func() time.Time) Option { return func(g *GameState) { g.now = now } }

// New returns a running GameState at tick zero with a 2D player, no NPCs,
// and empty tag and entity registries.
func New(opts ...Option) *GameState {
	g := &GameState{
		ID:          uuid.NewString(),
		Version:     DefaultVersion,
		Player:      character.New(),
		NPCs:        npc.NewManager(),
		Tags:        tag.NewCollection(),
		EntityTypes: entity.NewRegistry(),
		Properties:  make(map[string]string),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.LastUpdated = g.now().UTC()
	g.running.Store(true)
	return g
}

// Running reports whether the game loop should keep going.
func (g *GameState) Running() bool { return g.running.Load() }

// Stop marks the game as no longer running.
func (g *GameState) Stop() { g.running.Store(false) }

// Update advances the game by dt seconds.
//
// Postcondition: Tick is incremented, GameTime grows by dt, LastUpdated is
// refreshed, and the names of player buffs that expired are returned.
func (g *GameState) Update(dt float32) []string {
	g.Tick++
	g.GameTime += dt
	g.LastUpdated = g.now().UTC()
	return g.Player.Tick(dt)
}

// Status renders the one-line-per-field summary used by the status command.
func (g *GameState) Status() string {
	return fmt.Sprintf("Game status - Tick: %d\nPlayer position: %s\nNPCs: %d", g.Tick, g.Player.Position, g.NPCs.Len())
}

type snapshotJSON struct {
	ID          string               `json:"id"`
	Version     string               `json:"version"`
	Tick        uint64               `json:"tick"`
	LastUpdated time.Time            `json:"last_updated"`
	Player      *character.Character `json:"player"`
	NPCs        *npc.Manager         `json:"npcs"`
	Tags        *tag.Collection      `json:"tag_collection"`
	EntityTypes *entity.Registry     `json:"entity_types"`
	GameTime    float32              `json:"game_time"`
	Properties  map[string]string    `json:"properties"`
}

// MarshalJSON encodes the persistent fields of g. The running flag, modifier
// lists, and resolved-value caches are not part of the snapshot.
func (g *GameState) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshotJSON{
		ID:          g.ID,
		Version:     g.Version,
		Tick:        g.Tick,
		LastUpdated: g.LastUpdated,
		Player:      g.Player,
		NPCs:        g.NPCs,
		Tags:        g.Tags,
		EntityTypes: g.EntityTypes,
		GameTime:    g.GameTime,
		Properties:  g.Properties,
	})
}

// UnmarshalJSON restores a snapshot. The decoded state is running, and
// resolved stat values are recomputed on first access.
func (g *GameState) UnmarshalJSON(data []byte) error {
	raw := snapshotJSON{
		Player:      character.New(),
		NPCs:        npc.NewManager(),
		Tags:        tag.NewCollection(),
		EntityTypes: entity.NewRegistry(),
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("state: decoding snapshot: %w", err)
	}
	if raw.ID == "" {
		return fmt.Errorf("state: decoding snapshot: missing id")
	}
	if raw.Properties == nil {
		raw.Properties = make(map[string]string)
	}
	g.ID = raw.ID
	g.Version = raw.Version
	g.Tick = raw.Tick
	g.LastUpdated = raw.LastUpdated
	g.Player = raw.Player
	g.NPCs = raw.NPCs
	g.Tags = raw.Tags
	g.EntityTypes = raw.EntityTypes
	g.GameTime = raw.GameTime
	g.Properties = raw.Properties
	if g.now == nil {
		g.now = time.Now
	}
	g.running.Store(true)
	return nil
}

// Decode restores a GameState from a snapshot produced by json.Marshal.
func Decode(data []byte) (*GameState, error) {
	g := &GameState{now: time.Now}
	if err := json.Unmarshal(data, g); err != nil {
		return nil, err
	}
	return g, nil
}

// EncodeIndent renders g as indented JSON for human inspection.
func EncodeIndent(g *GameState) ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}
