// Package entity defines entity type templates: a category and description,
// a weak set of tag ids, and properties local to the type.
package entity

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/cory-johannsen/statengine/internal/game/property"
	"github.com/cory-johannsen/statengine/internal/game/tag"
)

// EntityContext is the context label given to text properties set with
// WithTextProperty.
const EntityContext = "entity"

// Type is a template describing a class of entities.
//
// Tag ids are lookup keys into an externally owned tag.Collection. An id
// whose tag has been removed is not an error; it simply resolves to nothing.
type Type struct {
	ID          string
	Name        string
	Description string // empty means none
	Category    string // empty means none
	Properties  []property.Property

	tagIDs map[int]struct{}
}

// New returns an entity type with no tags or properties.
func New(id, name string) *Type {
	return &Type{ID: id, Name: name, tagIDs: make(map[int]struct{})}
}

// WithDescription sets the description and returns t for chaining.
func (t *Type) WithDescription(d string) *Type {
	t.Description = d
	return t
}

// WithCategory sets the category and returns t for chaining.
func (t *Type) WithCategory(c string) *Type {
	t.Category = c
	return t
}

// WithTagID adds id to the tag set and returns t for chaining.
func (t *Type) WithTagID(id int) *Type {
	if t.tagIDs == nil {
		t.tagIDs = make(map[int]struct{})
	}
	t.tagIDs[id] = struct{}{}
	return t
}

// WithTagIDs adds every id to the tag set.
func (t *Type) WithTagIDs(ids ...int) *Type {
	for _, id := range ids {
		t.WithTagID(id)
	}
	return t
}

// WithTagByName adds the tag called name, registering it in c first if it
// does not exist yet.
func (t *Type) WithTagByName(name string, c *tag.Collection) *Type {
	id, ok := c.ID(name)
	if !ok {
		id = c.AddTag(name)
	}
	return t.WithTagID(id)
}

// RemoveTagID drops id from the tag set.
func (t *Type) RemoveTagID(id int) bool {
	if _, ok := t.tagIDs[id]; !ok {
		return false
	}
	delete(t.tagIDs, id)
	return true
}

// WithTextProperty attaches a free-text attribute under key, scoped to the
// entity context. An empty key is ignored.
func (t *Type) WithTextProperty(key, value string) *Type {
	if key == "" {
		return t
	}
	p := property.New(property.CustomType(key), property.TextValue(value)).WithContext(EntityContext)
	t.Properties = append(t.Properties, p)
	return t
}

// WithProperty appends p to the local properties.
func (t *Type) WithProperty(p property.Property) *Type {
	t.Properties = append(t.Properties, p)
	return t
}

// Property returns the first local property whose custom type name is key.
func (t *Type) Property(key string) (*property.Property, bool) {
	for i := range t.Properties {
		pt := t.Properties[i].Type
		if pt.Kind == property.KindCustom && pt.Name == key {
			return &t.Properties[i], true
		}
	}
	return nil, false
}

// PropertyText returns the text value stored under key.
func (t *Type) PropertyText(key string) (string, bool) {
	p, ok := t.Property(key)
	if !ok {
		return "", false
	}
	return p.Value.AsText()
}

// HasTagID reports whether id is in the tag set.
func (t *Type) HasTagID(id int) bool {
	_, ok := t.tagIDs[id]
	return ok
}

// TagIDs returns the tag set in ascending order.
func (t *Type) TagIDs() []int {
	ids := slices.Collect(maps.Keys(t.tagIDs))
	slices.Sort(ids)
	return ids
}

// Tags resolves the tag set against c in ascending id order. Ids with no
// tag in c are skipped.
func (t *Type) Tags(c *tag.Collection) []*tag.Tag {
	var out []*tag.Tag
	for _, id := range t.TagIDs() {
		if tg, ok := c.Tag(id); ok {
			out = append(out, tg)
		}
	}
	return out
}

// TagPropertiesInContext flattens the in-context properties of every
// resolvable tag, tags in ascending id order.
func (t *Type) TagPropertiesInContext(c *tag.Collection, ctx string) []*property.Property {
	var out []*property.Property
	for _, tg := range t.Tags(c) {
		out = append(out, tg.PropertiesInContext(ctx)...)
	}
	return out
}

// PropertiesInContext returns the local properties that apply in ctx.
func (t *Type) PropertiesInContext(ctx string) []*property.Property {
	return property.InContext(t.Properties, ctx)
}

// AllPropertiesInContext returns tag-derived properties followed by local
// properties. Consumers that let the last entry win rely on this order.
func (t *Type) AllPropertiesInContext(c *tag.Collection, ctx string) []*property.Property {
	return append(t.TagPropertiesInContext(c, ctx), t.PropertiesInContext(ctx)...)
}

// Equal reports whether t and o are structurally identical.
func (t *Type) Equal(o *Type) bool {
	if t.ID != o.ID || t.Name != o.Name || t.Description != o.Description || t.Category != o.Category {
		return false
	}
	if !slices.Equal(t.TagIDs(), o.TagIDs()) {
		return false
	}
	return slices.EqualFunc(t.Properties, o.Properties, func(a, b property.Property) bool {
		return a.Equal(&b)
	})
}

type typeJSON struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Category    string              `json:"category,omitempty"`
	TagIDs      []int               `json:"tag_ids"`
	Properties  []property.Property `json:"properties"`
}

// MarshalJSON encodes t with its tag ids as a sorted array.
func (t *Type) MarshalJSON() ([]byte, error) {
	ids := t.TagIDs()
	if ids == nil {
		ids = []int{}
	}
	return json.Marshal(typeJSON{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Category:    t.Category,
		TagIDs:      ids,
		Properties:  t.Properties,
	})
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (t *Type) UnmarshalJSON(data []byte) error {
	var raw typeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("entity: decoding type: %w", err)
	}
	out := New(raw.ID, raw.Name).WithDescription(raw.Description).WithCategory(raw.Category).WithTagIDs(raw.TagIDs...)
	out.Properties = raw.Properties
	*t = *out
	return nil
}
