package npc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/statengine/internal/game/coords"
	"github.com/cory-johannsen/statengine/internal/game/entity"
	"github.com/cory-johannsen/statengine/internal/game/stat"
)

// Archetype constants for Template.Archetype.
const (
	ArchetypeCombat = "combat"
	ArchetypeFan    = "fan"
	ArchetypePlain  = "plain"
)

// Template defines a reusable NPC archetype loaded from YAML.
type Template struct {
	ID            string `yaml:"id"`
	EntityType    string `yaml:"entity_type"`
	Archetype     string `yaml:"archetype"` // combat | fan | plain; empty means plain
	BehaviorState string `yaml:"behavior_state"`

	// Combat archetype.
	HP     int32   `yaml:"hp"`
	Speed  float32 `yaml:"speed"`
	Attack int32   `yaml:"attack"`

	// Fan archetype.
	Adoration     int32   `yaml:"adoration"`
	AttentionSpan float32 `yaml:"attention_span"`

	// Stats are extra base stats applied after the archetype's.
	Stats map[string]stat.Value `yaml:"stats"`
	// StatusEffects start active on every spawned NPC.
	StatusEffects []string `yaml:"status_effects"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and EntityType are non-empty, Archetype is
// known, and the archetype's required stats are positive; returns an error on
// the first violation otherwise.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("npc template: id must not be empty")
	}
	if t.EntityType == "" {
		return fmt.Errorf("npc template %q: entity_type must not be empty", t.ID)
	}
	switch t.Archetype {
	case ArchetypeCombat:
		if t.HP < 1 {
			return fmt.Errorf("npc template %q: hp must be >= 1", t.ID)
		}
		if t.Speed < 0 {
			return fmt.Errorf("npc template %q: speed must be >= 0", t.ID)
		}
	case ArchetypeFan:
		if t.AttentionSpan <= 0 {
			return fmt.Errorf("npc template %q: attention_span must be > 0", t.ID)
		}
	case ArchetypePlain, "":
	default:
		return fmt.Errorf("npc template %q: unknown archetype %q", t.ID, t.Archetype)
	}
	return nil
}

// Spawn builds an NPC from the template at pos, resolving its entity type in
// types. An empty id gets a random UUID.
//
// Postcondition: returns an error if the entity type is not registered.
func (t *Template) Spawn(id string, types *entity.Registry, pos *coords.Coordinates) (*NPC, error) {
	et, ok := types.Get(t.EntityType)
	if !ok {
		return nil, fmt.Errorf("npc template %q: unknown entity type %q", t.ID, t.EntityType)
	}
	var n *NPC
	switch t.Archetype {
	case ArchetypeCombat:
		n = NewCombat(id, et, t.HP, t.Speed, t.Attack)
	case ArchetypeFan:
		n = NewFan(id, et, t.Adoration, t.AttentionSpan)
	default:
		n = New(id, et)
	}
	if pos != nil {
		n.Position = pos
	}
	for key, v := range t.Stats {
		n.SetBaseStat(key, v)
	}
	if t.BehaviorState != "" {
		n.BehaviorState = t.BehaviorState
	}
	for _, e := range t.StatusEffects {
		n.AddStatusEffect(e)
	}
	return n, nil
}

// LoadTemplateFromBytes parses a single NPC template from raw YAML bytes.
//
// Precondition: data must be valid YAML for a single Template.
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed templates.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or validate
// failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading npc dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
