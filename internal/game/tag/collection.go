package tag

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/cory-johannsen/statengine/internal/game/property"
)

// Collection owns a set of tags with a bijective id/name index. IDs are
// positive, allocated sequentially from 1, and never reused by AddTag.
//
// A Collection is not safe for concurrent mutation.
type Collection struct {
	tags   map[int]*Tag
	byName map[string]int
	nextID int
}

// NewCollection returns an empty collection whose first allocated id is 1.
func NewCollection() *Collection {
	return &Collection{
		tags:   make(map[int]*Tag),
		byName: make(map[string]int),
		nextID: 1,
	}
}

// AddTag registers a new tag called name under the next free id.
//
// Postcondition: returns the new id, or 0 if name is already registered.
// A failed call consumes no id.
func (c *Collection) AddTag(name string) int {
	if _, dup := c.byName[name]; dup {
		return 0
	}
	id := c.nextID
	for c.tags[id] != nil {
		id++
	}
	c.insert(New(id, name))
	c.nextID = id + 1
	return id
}

// AddTagWithID registers a tag under an explicit id.
//
// Precondition: id > 0.
// Postcondition: returns false without modifying c if id or name is taken;
// on success, later AddTag calls allocate ids above id.
func (c *Collection) AddTagWithID(id int, name string) bool {
	if id <= 0 {
		return false
	}
	if _, dup := c.tags[id]; dup {
		return false
	}
	if _, dup := c.byName[name]; dup {
		return false
	}
	c.insert(New(id, name))
	if id >= c.nextID {
		c.nextID = id + 1
	}
	return true
}

func (c *Collection) insert(t *Tag) {
	c.tags[t.ID] = t
	c.byName[t.Name] = t.ID
}

// Tag returns the tag registered under id. The returned pointer may be used
// to add properties; renaming through it is not supported.
func (c *Collection) Tag(id int) (*Tag, bool) {
	t, ok := c.tags[id]
	return t, ok
}

// TagByName returns the tag registered under name.
func (c *Collection) TagByName(name string) (*Tag, bool) {
	id, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	return c.Tag(id)
}

// ID returns the id registered for name.
func (c *Collection) ID(name string) (int, bool) {
	id, ok := c.byName[name]
	return id, ok
}

// RemoveTag deletes the tag with id from both indices. Entity types holding
// id simply stop resolving it.
func (c *Collection) RemoveTag(id int) bool {
	t, ok := c.tags[id]
	if !ok {
		return false
	}
	delete(c.tags, id)
	delete(c.byName, t.Name)
	return true
}

// Len returns the number of registered tags.
func (c *Collection) Len() int { return len(c.tags) }

// NextID returns the id the next AddTag call will try first.
func (c *Collection) NextID() int { return c.nextID }

// All returns every tag ordered by ascending id.
func (c *Collection) All() []*Tag {
	return c.Filter(func(*Tag) bool { return true })
}

// Filter returns the tags for which keep reports true, ordered by id.
func (c *Collection) Filter(keep func(*Tag) bool) []*Tag {
	ids := make([]int, 0, len(c.tags))
	for id := range c.tags {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	var out []*Tag
	for _, id := range ids {
		if t := c.tags[id]; keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// TagsWithPropertyType returns tags carrying at least one property of type pt.
func (c *Collection) TagsWithPropertyType(pt property.Type) []*Tag {
	return c.Filter(func(t *Tag) bool { return t.HasPropertyType(pt) })
}

// TagsInContext returns tags with at least one property applying in ctx.
func (c *Collection) TagsInContext(ctx string) []*Tag {
	return c.Filter(func(t *Tag) bool { return t.AppliesInContext(ctx) })
}

type collectionJSON struct {
	Tags   []*Tag `json:"tags"`
	NextID int    `json:"next_id"`
}

// MarshalJSON encodes the tags ordered by id together with the id counter.
func (c *Collection) MarshalJSON() ([]byte, error) {
	tags := c.All()
	if tags == nil {
		tags = []*Tag{}
	}
	return json.Marshal(collectionJSON{Tags: tags, NextID: c.nextID})
}

// UnmarshalJSON rebuilds the collection and its name index.
//
// Postcondition: fails if two tags share an id or a name.
func (c *Collection) UnmarshalJSON(data []byte) error {
	var raw collectionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("tag: decoding collection: %w", err)
	}
	out := NewCollection()
	for _, t := range raw.Tags {
		if t == nil {
			continue
		}
		if !out.AddTagWithID(t.ID, t.Name) {
			return fmt.Errorf("tag: duplicate or invalid tag %d %q", t.ID, t.Name)
		}
		stored := out.tags[t.ID]
		stored.Properties = t.Properties
		if t.Metadata != nil {
			stored.Metadata = t.Metadata
		}
	}
	if raw.NextID > out.nextID {
		out.nextID = raw.NextID
	}
	*c = *out
	return nil
}
