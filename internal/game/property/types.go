// Package property defines context-scoped, conditionally gated units of data
// or behavior that tags and entity types grant to entities.
package property

import (
	"fmt"
	"strings"
)

const customPrefix = "custom:"

// Kind enumerates the built-in property types.
type Kind uint8

// Property kinds.
const (
	KindStatModifier Kind = iota + 1
	KindAbility
	KindBehavior
	KindReaction
	KindTrigger
	KindRequirement
	KindVisual
	KindAudio
	KindCustom
)

var kindNames = map[Kind]string{
	KindStatModifier: "stat_modifier",
	KindAbility:      "ability",
	KindBehavior:     "behavior",
	KindReaction:     "reaction",
	KindTrigger:      "trigger",
	KindRequirement:  "requirement",
	KindVisual:       "visual",
	KindAudio:        "audio",
}

// Type is a property type: one of the built-in kinds, or a named custom type.
// Types are comparable with ==.
type Type struct {
	Kind Kind
	Name string // set only for KindCustom
}

// Built-in property types.
var (
	TypeStatModifier = Type{Kind: KindStatModifier}
	TypeAbility      = Type{Kind: KindAbility}
	TypeBehavior     = Type{Kind: KindBehavior}
	TypeReaction     = Type{Kind: KindReaction}
	TypeTrigger      = Type{Kind: KindTrigger}
	TypeRequirement  = Type{Kind: KindRequirement}
	TypeVisual       = Type{Kind: KindVisual}
	TypeAudio        = Type{Kind: KindAudio}
)

// CustomType returns the game-specific property type called name. An empty
// name yields a type that is not Valid.
func CustomType(name string) Type {
	return Type{Kind: KindCustom, Name: name}
}

// Valid reports whether t is a built-in kind or a custom type with a name.
func (t Type) Valid() bool {
	if t.Kind == KindCustom {
		return t.Name != ""
	}
	_, ok := kindNames[t.Kind]
	return ok
}

// String renders t in its wire form, e.g. "ability" or "custom:damage_type".
func (t Type) String() string {
	if t.Kind == KindCustom {
		return customPrefix + t.Name
	}
	if name, ok := kindNames[t.Kind]; ok {
		return name
	}
	return "invalid"
}

// ParseType parses the wire form produced by Type.String.
func ParseType(s string) (Type, error) {
	if name, ok := strings.CutPrefix(s, customPrefix); ok {
		if name == "" {
			return Type{}, fmt.Errorf("property: custom type %q has no name", s)
		}
		return CustomType(name), nil
	}
	for k, name := range kindNames {
		if name == s {
			return Type{Kind: k}, nil
		}
	}
	return Type{}, fmt.Errorf("property: unknown type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("property: cannot marshal invalid type %q", t.String())
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(b []byte) error {
	parsed, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
