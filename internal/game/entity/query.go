package entity

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cory-johannsen/statengine/internal/game/property"
	"github.com/cory-johannsen/statengine/internal/game/tag"
)

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

// Format renders t and its resolvable tags as a multi-line summary.
func Format(t *Type, c *tag.Collection) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", t.Name, t.ID)
	fmt.Fprintf(&b, "Description: %s\n", orNone(t.Description))
	fmt.Fprintf(&b, "Category: %s\n", orNone(t.Category))
	b.WriteString("Tags:\n")
	for _, tg := range t.Tags(c) {
		fmt.Fprintf(&b, "- %s (ID: %d)\n", tg.Name, tg.ID)
		if v, ok := tg.Metadata["element"]; ok {
			fmt.Fprintf(&b, "  * Element: %s\n", v)
		}
		if v, ok := tg.Metadata["color"]; ok {
			fmt.Fprintf(&b, "  * Color: %s\n", v)
		}
	}
	b.WriteString("Properties:\n")
	for _, p := range t.Properties {
		if p.Type.Kind != property.KindCustom {
			continue
		}
		if text, ok := p.Value.AsText(); ok {
			fmt.Fprintf(&b, "- %s: %s\n", p.Type.Name, text)
		}
	}
	return b.String()
}

// HasAnyTag reports whether t carries at least one of ids.
func HasAnyTag(t *Type, ids ...int) bool {
	return slices.ContainsFunc(ids, t.HasTagID)
}

// FindWithTag returns the types carrying tag id, preserving order.
func FindWithTag(types []*Type, id int) []*Type {
	var out []*Type
	for _, t := range types {
		if t.HasTagID(id) {
			out = append(out, t)
		}
	}
	return out
}

// FindWithProperty returns the types with a text property key equal to value.
func FindWithProperty(types []*Type, key, value string) []*Type {
	var out []*Type
	for _, t := range types {
		for _, p := range t.Properties {
			if p.Type.Kind != property.KindCustom || p.Type.Name != key {
				continue
			}
			if text, ok := p.Value.AsText(); ok && text == value {
				out = append(out, t)
				break
			}
		}
	}
	return out
}
