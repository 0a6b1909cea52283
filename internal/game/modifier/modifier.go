// Package modifier resolves effective stat values from a base stat store and
// an ordered, sourced, prioritized stack of adjustments.
package modifier

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/cory-johannsen/statengine/internal/game/stat"
)

// Type selects how a modifier combines with the running value.
type Type uint8

// Modifier types.
const (
	Additive Type = iota + 1
	Multiplicative
	Override
)

// String returns the wire name of the type.
func (t Type) String() string {
	switch t {
	case Additive:
		return "additive"
	case Multiplicative:
		return "multiplicative"
	case Override:
		return "override"
	default:
		return "invalid"
	}
}

// ParseType converts a wire name into a Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "additive":
		return Additive, nil
	case "multiplicative":
		return Multiplicative, nil
	case "override":
		return Override, nil
	default:
		return 0, fmt.Errorf("modifier: unknown type %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if t < Additive || t > Override {
		return nil, fmt.Errorf("modifier: cannot marshal type %d", t)
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

// Priority bands used by the built-in sources. Lower priorities apply first.
const (
	PriorityEquipment = 10
	PriorityProperty  = 15
	PriorityBuff      = 20
)

// Source prefixes for the built-in provenance tags.
const (
	SourceEquipment       = "equipment"
	SourceEquipmentPrefix = SourceEquipment + ":"
	SourceBuffPrefix      = "buff:"
	SourcePropertyPrefix  = "property:"
)

// EquipmentSource returns the provenance tag for modifiers derived from itemID.
func EquipmentSource(itemID string) string {
	return SourceEquipmentPrefix + itemID
}

// PropertySource returns the provenance tag for modifiers injected from
// stat-modifier properties applying in ctx.
func PropertySource(ctx string) string {
	return SourcePropertyPrefix + ctx
}

// BuffSource returns the provenance tag for the named buff.
func BuffSource(name string) string {
	return SourceBuffPrefix + name
}

// Modifier is one sourced, prioritized adjustment to a stat. Modifiers are
// treated as immutable once added to a Stack.
type Modifier struct {
	Source   string     `json:"source"`
	Type     Type       `json:"type"`
	Value    stat.Value `json:"value"`
	Priority int        `json:"priority"`
}

// apply folds m over the running value. Variant combinations without a
// defined rule leave running unchanged. Integer addition saturates at the
// int32 bounds at each step.
func (m Modifier) apply(running stat.Value) stat.Value {
	switch m.Type {
	case Additive:
		switch running.Kind() {
		case stat.KindInteger:
			if mv, ok := m.Value.AsInt(); ok {
				base, _ := running.AsInt()
				return stat.Int(addSaturating(base, mv))
			}
		case stat.KindFloat:
			if mv, ok := m.Value.AsFloat(); ok {
				base, _ := running.AsFloat()
				return stat.Float(base + mv)
			}
		}
	case Multiplicative:
		mv, ok := m.Value.AsFloat()
		if !ok {
			return running
		}
		switch running.Kind() {
		case stat.KindInteger:
			base, _ := running.AsInt()
			return stat.Int(stat.RoundToInt(float32(base) * mv))
		case stat.KindFloat:
			base, _ := running.AsFloat()
			return stat.Float(base * mv)
		}
	case Override:
		return m.Value
	}
	return running
}

func addSaturating(a, b int32) int32 {
	sum := int64(a) + int64(b)
	switch {
	case sum > math.MaxInt32:
		return math.MaxInt32
	case sum < math.MinInt32:
		return math.MinInt32
	}
	return int32(sum)
}

// String renders m for logs and the status command.
func (m Modifier) String() string {
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Sprintf("%s %s %s @%d", m.Source, m.Type, m.Value, m.Priority)
	}
	return string(b)
}
