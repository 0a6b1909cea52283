// Package tag implements named, id-addressed bundles of properties and the
// collection that owns them.
package tag

import (
	"maps"
	"slices"

	"github.com/cory-johannsen/statengine/internal/game/property"
)

// Tag is a reusable bundle of context-scoped properties. Tags are owned by
// exactly one Collection; entity types refer to them by ID only.
type Tag struct {
	ID         int                 `json:"id"`
	Name       string              `json:"name"`
	Properties []property.Property `json:"properties"`
	Metadata   map[string]string   `json:"metadata"`
}

// New returns an empty tag.
func New(id int, name string) *Tag {
	return &Tag{ID: id, Name: name, Metadata: map[string]string{}}
}

// WithProperty appends p and returns t for chaining.
func (t *Tag) WithProperty(p property.Property) *Tag {
	t.Properties = append(t.Properties, p)
	return t
}

// WithProperties appends ps in order and returns t for chaining.
func (t *Tag) WithProperties(ps ...property.Property) *Tag {
	t.Properties = append(t.Properties, ps...)
	return t
}

// WithMetadata sets key to value and returns t for chaining.
func (t *Tag) WithMetadata(key, value string) *Tag {
	if t.Metadata == nil {
		t.Metadata = map[string]string{}
	}
	t.Metadata[key] = value
	return t
}

// PropertiesByType returns the tag's properties of type pt, in order.
func (t *Tag) PropertiesByType(pt property.Type) []*property.Property {
	return property.OfType(t.Properties, pt)
}

// PropertiesInContext returns the tag's properties that apply in ctx, in order.
func (t *Tag) PropertiesInContext(ctx string) []*property.Property {
	return property.InContext(t.Properties, ctx)
}

// HasPropertyType reports whether any property on t has type pt.
func (t *Tag) HasPropertyType(pt property.Type) bool {
	return slices.ContainsFunc(t.Properties, func(p property.Property) bool { return p.Type == pt })
}

// AppliesInContext reports whether any property on t applies in ctx.
func (t *Tag) AppliesInContext(ctx string) bool {
	return slices.ContainsFunc(t.Properties, func(p property.Property) bool { return p.AppliesInContext(ctx) })
}

// Clone returns a deep copy of t. Property values are immutable and may be
// shared; every slice and map is copied.
func (t *Tag) Clone() *Tag {
	out := &Tag{ID: t.ID, Name: t.Name, Metadata: maps.Clone(t.Metadata)}
	if t.Properties != nil {
		out.Properties = make([]property.Property, len(t.Properties))
		for i, p := range t.Properties {
			out.Properties[i] = p.Clone()
		}
	}
	return out
}

// Equal reports whether t and o are structurally identical.
func (t *Tag) Equal(o *Tag) bool {
	if t.ID != o.ID || t.Name != o.Name || !maps.Equal(t.Metadata, o.Metadata) {
		return false
	}
	return slices.EqualFunc(t.Properties, o.Properties, func(a, b property.Property) bool {
		return a.Equal(&b)
	})
}
