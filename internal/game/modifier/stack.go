package modifier

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/cory-johannsen/statengine/internal/game/stat"
)

// Stack owns a base Stats and, per stat name, a list of modifiers kept in
// ascending priority order with ties broken by insertion order. Resolved
// values are cached per stat; any write to a stat's base value or modifier
// list is visible on the next Resolve of that stat.
//
// Stack is not safe for concurrent use; the caller must serialise access.
type Stack struct {
	base      *stat.Stats
	modifiers map[string][]Modifier
	cache     map[string]stat.Value
}

// NewStack returns a Stack with an empty base and no modifiers.
func NewStack() *Stack {
	return WithBase(stat.NewStats())
}

// WithBase returns a Stack that takes ownership of base.
//
// Precondition: the caller must not mutate base after the call.
func WithBase(base *stat.Stats) *Stack {
	if base == nil {
		base = stat.NewStats()
	}
	return &Stack{
		base:      base,
		modifiers: make(map[string][]Modifier),
		cache:     make(map[string]stat.Value),
	}
}

// Base returns a copy of the base stats.
func (s *Stack) Base() *stat.Stats {
	return s.base.Clone()
}

// BaseModificationCount returns the base store's write counter.
func (s *Stack) BaseModificationCount() uint64 {
	return s.base.ModificationCount()
}

// SetBase overwrites the base value of key.
//
// Postcondition: the next Resolve(key) reflects v.
func (s *Stack) SetBase(key string, v stat.Value) {
	s.base.Set(key, v)
	delete(s.cache, key)
}

// RemoveBase deletes the base value of key. A stat without a base value no
// longer resolves, whatever modifiers remain attached to it.
func (s *Stack) RemoveBase(key string) (stat.Value, bool) {
	v, ok := s.base.Remove(key)
	if ok {
		delete(s.cache, key)
	}
	return v, ok
}

// UpdateBase runs fn against the base store and drops every cached result.
func (s *Stack) UpdateBase(fn func(base *stat.Stats)) {
	fn(s.base)
	s.InvalidateCache()
}

// AddModifier appends m to the modifier list of statName and restores
// ascending priority order. Equal priorities keep insertion order.
func (s *Stack) AddModifier(statName string, m Modifier) {
	list := append(s.modifiers[statName], m)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Priority < list[j].Priority
	})
	s.modifiers[statName] = list
	delete(s.cache, statName)
}

// RemoveModifiersBySource removes every modifier whose source equals source,
// across all stats, and drops the whole cache.
//
// Postcondition: returns the number of modifiers removed.
func (s *Stack) RemoveModifiersBySource(source string) int {
	return s.removeWhere(func(m Modifier) bool { return m.Source == source })
}

// RemoveModifiersBySourcePrefix removes every modifier whose source starts
// with prefix, across all stats, and drops the whole cache.
func (s *Stack) RemoveModifiersBySourcePrefix(prefix string) int {
	return s.removeWhere(func(m Modifier) bool { return strings.HasPrefix(m.Source, prefix) })
}

func (s *Stack) removeWhere(match func(Modifier) bool) int {
	removed := 0
	for name, list := range s.modifiers {
		kept := list[:0]
		for _, m := range list {
			if match(m) {
				removed++
				continue
			}
			kept = append(kept, m)
		}
		if len(kept) == 0 {
			delete(s.modifiers, name)
			continue
		}
		s.modifiers[name] = kept
	}
	s.InvalidateCache()
	return removed
}

// Modifiers returns a copy of the ordered modifier list for statName.
func (s *Stack) Modifiers(statName string) []Modifier {
	list := s.modifiers[statName]
	if len(list) == 0 {
		return nil
	}
	out := make([]Modifier, len(list))
	copy(out, list)
	return out
}

// ModifiedStats returns the names of stats carrying at least one modifier,
// sorted lexicographically.
func (s *Stack) ModifiedStats() []string {
	names := make([]string, 0, len(s.modifiers))
	for name := range s.modifiers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InvalidateCache drops every cached result.
func (s *Stack) InvalidateCache() {
	clear(s.cache)
}

// Resolve returns the effective value of statName: its base value folded
// through its modifiers in ascending priority order.
//
// Postcondition: ok is false iff statName has no base value.
func (s *Stack) Resolve(statName string) (stat.Value, bool) {
	if v, ok := s.cache[statName]; ok {
		return v, true
	}
	running, ok := s.base.Get(statName)
	if !ok {
		return stat.Value{}, false
	}
	for _, m := range s.modifiers[statName] {
		running = m.apply(running)
	}
	s.cache[statName] = running
	return running, true
}

// Int resolves statName and returns it when it is an Integer.
func (s *Stack) Int(statName string) (int32, bool) {
	v, ok := s.Resolve(statName)
	if !ok {
		return 0, false
	}
	return v.AsInt()
}

// Float resolves statName and returns it when it is a Float.
func (s *Stack) Float(statName string) (float32, bool) {
	v, ok := s.Resolve(statName)
	if !ok {
		return 0, false
	}
	return v.AsFloat()
}

// Bool resolves statName and returns it when it is a Boolean.
func (s *Stack) Bool(statName string) (bool, bool) {
	v, ok := s.Resolve(statName)
	if !ok {
		return false, false
	}
	return v.AsBool()
}

// String resolves statName and returns it when it is a String.
func (s *Stack) String(statName string) (string, bool) {
	v, ok := s.Resolve(statName)
	if !ok {
		return "", false
	}
	return v.AsString()
}

// AddBuff attaches an Additive modifier sourced "buff:<name>" at buff
// priority, so buffs fold after equipment.
func (s *Stack) AddBuff(name, statName string, v stat.Value) {
	s.AddModifier(statName, Modifier{
		Source:   BuffSource(name),
		Type:     Additive,
		Value:    v,
		Priority: PriorityBuff,
	})
}

// RemoveBuff removes every modifier sourced "buff:<name>".
func (s *Stack) RemoveBuff(name string) int {
	return s.RemoveModifiersBySource(BuffSource(name))
}

// Fingerprint hashes the complete modifier set. Two stacks with the same
// modifiers in the same order produce the same fingerprint.
func (s *Stack) Fingerprint() uint64 {
	d := xxhash.New()
	for _, name := range s.ModifiedStats() {
		_, _ = d.WriteString(name)
		_, _ = d.WriteString("\x00")
		for _, m := range s.modifiers[name] {
			_, _ = d.WriteString(m.Source)
			_, _ = d.WriteString("\x1f")
			_, _ = d.WriteString(m.Type.String())
			_, _ = d.WriteString("\x1f")
			_, _ = d.WriteString(m.Value.Kind().String())
			_, _ = d.WriteString(m.Value.String())
			_, _ = d.WriteString("\x1f")
			_, _ = d.WriteString(strconv.Itoa(m.Priority))
			_, _ = d.WriteString("\x1e")
		}
	}
	return d.Sum64()
}

// MarshalJSON encodes only the base stats. Modifier lists and cached values
// are runtime state and are rebuilt by their owners after loading.
func (s *Stack) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.base)
}

// UnmarshalJSON replaces s with a fresh Stack over the decoded base stats.
func (s *Stack) UnmarshalJSON(data []byte) error {
	base := stat.NewStats()
	if err := json.Unmarshal(data, base); err != nil {
		return fmt.Errorf("modifier: decoding stack base: %w", err)
	}
	*s = *WithBase(base)
	return nil
}
