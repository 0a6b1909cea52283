package property

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/cory-johannsen/statengine/internal/game/stat"
)

// ConditionKind enumerates the built-in condition types.
type ConditionKind uint8

// Condition kinds.
const (
	ConditionStatThreshold ConditionKind = iota + 1
	ConditionHasTag
	ConditionInState
	ConditionTimeOfDay
	ConditionProximity
	ConditionInventoryContains
	ConditionCustom
)

var conditionKindNames = map[ConditionKind]string{
	ConditionStatThreshold:     "stat_threshold",
	ConditionHasTag:            "has_tag",
	ConditionInState:           "in_state",
	ConditionTimeOfDay:         "time_of_day",
	ConditionProximity:         "proximity",
	ConditionInventoryContains: "inventory_contains",
}

// ConditionType is a built-in condition kind or a named custom condition.
type ConditionType struct {
	Kind ConditionKind
	Name string // set only for ConditionCustom
}

// CustomCondition returns the game-specific condition type called name.
func CustomCondition(name string) ConditionType {
	return ConditionType{Kind: ConditionCustom, Name: name}
}

// Valid reports whether t is a built-in kind or a custom condition with a
// name.
func (t ConditionType) Valid() bool {
	if t.Kind == ConditionCustom {
		return t.Name != ""
	}
	_, ok := conditionKindNames[t.Kind]
	return ok
}

// String renders t in its wire form, e.g. "has_tag" or "custom:raining".
func (t ConditionType) String() string {
	if t.Kind == ConditionCustom {
		return customPrefix + t.Name
	}
	if name, ok := conditionKindNames[t.Kind]; ok {
		return name
	}
	return "invalid"
}

// ParseConditionType parses the wire form produced by ConditionType.String.
func ParseConditionType(s string) (ConditionType, error) {
	if name, ok := strings.CutPrefix(s, customPrefix); ok {
		if name == "" {
			return ConditionType{}, fmt.Errorf("property: custom condition %q has no name", s)
		}
		return CustomCondition(name), nil
	}
	for k, name := range conditionKindNames {
		if name == s {
			return ConditionType{Kind: k}, nil
		}
	}
	return ConditionType{}, fmt.Errorf("property: unknown condition type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t ConditionType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("property: cannot marshal invalid condition type %q", t.String())
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ConditionType) UnmarshalText(b []byte) error {
	parsed, err := ParseConditionType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Condition is pure data describing when a property is active. Nothing in
// this package evaluates it; see Evaluator.
type Condition struct {
	Type       ConditionType         `json:"type"`
	Parameters map[string]stat.Value `json:"parameters"`
}

// Equal reports whether c and o have the same type and parameters.
func (c Condition) Equal(o Condition) bool {
	return c.Type == o.Type && maps.Equal(c.Parameters, o.Parameters)
}

// Clone returns c with its own copy of Parameters.
func (c Condition) Clone() Condition {
	c.Parameters = maps.Clone(c.Parameters)
	return c
}

// StatThreshold builds a condition that holds when stat is above (greater)
// or below threshold. Interpretation is left to the Evaluator.
func StatThreshold(statName string, threshold stat.Value, greater bool) Condition {
	return Condition{
		Type: ConditionType{Kind: ConditionStatThreshold},
		Parameters: map[string]stat.Value{
			"stat":            stat.String(statName),
			"threshold":       threshold,
			"is_greater_than": stat.Bool(greater),
		},
	}
}

// HasTag builds a condition that holds when the entity carries tag.
func HasTag(tag string) Condition {
	return Condition{
		Type:       ConditionType{Kind: ConditionHasTag},
		Parameters: map[string]stat.Value{"tag": stat.String(tag)},
	}
}

// Env is the externally supplied state a condition is evaluated against.
type Env map[string]stat.Value

// TagEnvKey is the Env key marking that the evaluated entity carries tag.
func TagEnvKey(tag string) string { return "tag:" + tag }

// HourEnvKey holds the in-game hour of day, a Float in [0, 24).
const HourEnvKey = "hour"

// DistanceEnvKey holds the distance from the evaluated entity to target.
func DistanceEnvKey(target string) string { return "distance:" + target }

// ItemEnvKey marks that the player carries item, by instance id or template.
func ItemEnvKey(item string) string { return "item:" + item }

// Evaluator decides whether a condition holds in a given environment. The
// engine ships no default implementation; gameplay systems provide one.
type Evaluator interface {
	Holds(c Condition, env Env) (bool, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(c Condition, env Env) (bool, error)

// Holds calls f.
func (f EvaluatorFunc) Holds(c Condition, env Env) (bool, error) { return f(c, env) }

// Active reports whether every condition on p holds under ev. A property
// without conditions is always active.
//
// Postcondition: on error, active is false and the error names the failing condition.
func Active(p *Property, ev Evaluator, env Env) (bool, error) {
	for i, c := range p.Conditions {
		ok, err := ev.Holds(c, env)
		if err != nil {
			return false, fmt.Errorf("property: condition %d (%s): %w", i, c.Type, err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// FilterActive returns the subset of props whose conditions all hold,
// preserving order. Evaluation errors are joined and returned alongside the
// properties that were successfully judged active.
func FilterActive(props []*Property, ev Evaluator, env Env) ([]*Property, error) {
	var (
		out  []*Property
		errs []error
	)
	for _, p := range props {
		ok, err := Active(p, ev, env)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			out = append(out, p)
		}
	}
	return out, errors.Join(errs...)
}
