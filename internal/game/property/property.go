package property

import (
	"maps"
	"slices"

	"github.com/cory-johannsen/statengine/internal/game/stat"
)

// DefaultContext is the wildcard context label: a property carrying it
// applies in every context.
const DefaultContext = "default"

// Property is one typed, context-scoped, conditionally gated unit of data or
// behavior.
type Property struct {
	Type       Type              `json:"type"`
	Value      Value             `json:"value"`
	Context    []string          `json:"context"`
	Conditions []Condition       `json:"conditions"`
	Metadata   map[string]string `json:"metadata"`
}

// New returns a property with the given type and value and no context.
func New(t Type, v Value) Property {
	return Property{
		Type:     t,
		Value:    v,
		Metadata: map[string]string{},
	}
}

// StatModifier builds a stat-modifier property scoped to the default context.
func StatModifier(statName string, v stat.Value) Property {
	p := New(TypeStatModifier, StatValue(statName, v))
	p.Context = []string{DefaultContext}
	return p
}

// Ability builds an ability property scoped to the default context.
func Ability(abilityID string) Property {
	p := New(TypeAbility, FunctionValue(abilityID))
	p.Context = []string{DefaultContext}
	return p
}

// WithContext returns p with ctx added to its context set. Adding a label
// already present is a no-op.
func (p Property) WithContext(ctx string) Property {
	if slices.Contains(p.Context, ctx) {
		return p
	}
	p.Context = append(slices.Clone(p.Context), ctx)
	return p
}

// WithCondition returns p with c appended to its conditions.
func (p Property) WithCondition(c Condition) Property {
	p.Conditions = append(slices.Clone(p.Conditions), c)
	return p
}

// WithMetadata returns p with key set to value in its metadata.
func (p Property) WithMetadata(key, value string) Property {
	md := maps.Clone(p.Metadata)
	if md == nil {
		md = map[string]string{}
	}
	md[key] = value
	p.Metadata = md
	return p
}

// Clone returns a copy of p sharing no slices or maps with it.
func (p Property) Clone() Property {
	p.Context = slices.Clone(p.Context)
	p.Metadata = maps.Clone(p.Metadata)
	if p.Conditions != nil {
		conds := make([]Condition, len(p.Conditions))
		for i, c := range p.Conditions {
			conds[i] = c.Clone()
		}
		p.Conditions = conds
	}
	return p
}

// AppliesInContext reports whether ctx is in p's context set or p carries
// the DefaultContext wildcard.
func (p *Property) AppliesInContext(ctx string) bool {
	return slices.Contains(p.Context, ctx) || slices.Contains(p.Context, DefaultContext)
}

// Equal reports whether p and o are structurally identical.
func (p *Property) Equal(o *Property) bool {
	if p.Type != o.Type || !p.Value.Equal(o.Value) {
		return false
	}
	if !slices.Equal(p.Context, o.Context) || !maps.Equal(p.Metadata, o.Metadata) {
		return false
	}
	return slices.EqualFunc(p.Conditions, o.Conditions, Condition.Equal)
}

// InContext returns pointers to the elements of props that apply in ctx,
// preserving order.
func InContext(props []Property, ctx string) []*Property {
	var out []*Property
	for i := range props {
		if props[i].AppliesInContext(ctx) {
			out = append(out, &props[i])
		}
	}
	return out
}

// OfType returns pointers to the elements of props whose type equals t.
func OfType(props []Property, t Type) []*Property {
	var out []*Property
	for i := range props {
		if props[i].Type == t {
			out = append(out, &props[i])
		}
	}
	return out
}
