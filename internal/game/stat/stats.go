package stat

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Stats maps stat names to values and counts every successful write.
//
// Stats is not safe for concurrent use; the caller must serialise access.
type Stats struct {
	values            map[string]Value
	modificationCount uint64
}

// NewStats returns an empty Stats.
func NewStats() *Stats {
	return &Stats{values: make(map[string]Value)}
}

// ExampleRPGStats returns a small stat block used by demos and tests.
func ExampleRPGStats() *Stats {
	s := NewStats()
	s.SetInt("health", 100)
	s.SetInt("attack", 10)
	s.SetInt("defense", 5)
	s.SetFloat("speed", 5.0)
	return s
}

// Get returns the value stored under key.
func (s *Stats) Get(key string) (Value, bool) {
	v, ok := s.values[key]
	return v, ok
}

// GetInt returns the Integer stored under key.
//
// Postcondition: ok is false when key is absent or holds another variant.
func (s *Stats) GetInt(key string) (int32, bool) {
	return s.values[key].AsInt()
}

// GetFloat returns the Float stored under key.
func (s *Stats) GetFloat(key string) (float32, bool) {
	return s.values[key].AsFloat()
}

// GetBool returns the Boolean stored under key.
func (s *Stats) GetBool(key string) (bool, bool) {
	return s.values[key].AsBool()
}

// GetString returns the String stored under key.
func (s *Stats) GetString(key string) (string, bool) {
	return s.values[key].AsString()
}

// ModificationCount returns the number of writes applied so far.
func (s *Stats) ModificationCount() uint64 {
	return s.modificationCount
}

// Set stores v under key, overwriting any previous value.
//
// Postcondition: ModificationCount is incremented by one.
func (s *Stats) Set(key string, v Value) {
	if s.values == nil {
		s.values = make(map[string]Value)
	}
	s.values[key] = v
	s.modificationCount++
}

// SetInt stores an Integer under key.
func (s *Stats) SetInt(key string, v int32) { s.Set(key, Int(v)) }

// SetFloat stores a Float under key.
func (s *Stats) SetFloat(key string, v float32) { s.Set(key, Float(v)) }

// SetBool stores a Boolean under key.
func (s *Stats) SetBool(key string, v bool) { s.Set(key, Bool(v)) }

// SetString stores a String under key.
func (s *Stats) SetString(key string, v string) { s.Set(key, String(v)) }

// Has reports whether key has a value.
func (s *Stats) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Remove deletes key and returns the removed value.
//
// Postcondition: ModificationCount is incremented only when a value was removed.
func (s *Stats) Remove(key string) (Value, bool) {
	v, ok := s.values[key]
	if !ok {
		return Value{}, false
	}
	delete(s.values, key)
	s.modificationCount++
	return v, true
}

// Keys returns all stat names in lexicographic order.
func (s *Stats) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored stats.
func (s *Stats) Len() int {
	return len(s.values)
}

// Clone returns an independent copy holding the same values. The copy's
// modification counter counts the writes used to populate it.
func (s *Stats) Clone() *Stats {
	out := NewStats()
	for _, k := range s.Keys() {
		out.Set(k, s.values[k])
	}
	return out
}

// Equal reports whether s and other hold the same values. Modification
// counters are ignored.
func (s *Stats) Equal(other *Stats) bool {
	if s.Len() != other.Len() {
		return false
	}
	for k, v := range s.values {
		if ov, ok := other.values[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// ApplyMultiplier scales a numeric stat in place. Integers are rounded half
// away from zero; non-numeric or absent stats are left untouched.
func (s *Stats) ApplyMultiplier(key string, factor float32) {
	v, ok := s.values[key]
	if !ok {
		return
	}
	switch v.kind {
	case KindInteger:
		s.SetInt(key, RoundToInt(float32(v.i)*factor))
	case KindFloat:
		s.SetFloat(key, v.f*factor)
	}
}

// RoundToInt rounds half away from zero and truncates to int32, saturating
// at the int32 bounds. NaN rounds to zero.
func RoundToInt(f float32) int32 {
	r := math.Round(float64(f))
	switch {
	case math.IsNaN(r):
		return 0
	case r >= math.MaxInt32:
		return math.MaxInt32
	case r <= math.MinInt32:
		return math.MinInt32
	}
	return int32(r)
}

type statsJSON struct {
	Values            map[string]Value `json:"values"`
	ModificationCount uint64           `json:"modification_count"`
}

// MarshalJSON encodes the values and the modification counter.
func (s *Stats) MarshalJSON() ([]byte, error) {
	values := s.values
	if values == nil {
		values = map[string]Value{}
	}
	return json.Marshal(statsJSON{Values: values, ModificationCount: s.modificationCount})
}

// UnmarshalJSON restores values and the modification counter verbatim.
func (s *Stats) UnmarshalJSON(data []byte) error {
	var raw statsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("stat: decoding stats: %w", err)
	}
	s.values = raw.Values
	if s.values == nil {
		s.values = make(map[string]Value)
	}
	s.modificationCount = raw.ModificationCount
	return nil
}
