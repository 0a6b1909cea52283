// Package stat provides the typed stat value union and the base stat store.
package stat

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Kind identifies which variant a Value holds.
type Kind uint8

// Value variants.
const (
	KindInteger Kind = iota + 1
	KindFloat
	KindBoolean
	KindString
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	case KindString:
		return "string"
	default:
		return "invalid"
	}
}

// Value is an immutable tagged union over Integer, Float, Boolean and String.
// The zero Value holds no variant and is never produced by the constructors.
type Value struct {
	kind Kind
	i    int32
	f    float32
	b    bool
	s    string
}

// Int constructs an Integer value.
func Int(v int32) Value { return Value{kind: KindInteger, i: v} }

// Float constructs a Float value.
func Float(v float32) Value { return Value{kind: KindFloat, f: v} }

// Bool constructs a Boolean value.
func Bool(v bool) Value { return Value{kind: KindBoolean, b: v} }

// String constructs a String value.
func String(v string) Value { return Value{kind: KindString, s: v} }

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v holds a variant.
func (v Value) IsValid() bool { return v.kind != 0 }

// AsInt returns the Integer payload.
//
// Postcondition: ok is true iff v is an Integer.
func (v Value) AsInt() (int32, bool) {
	if v.kind != KindInteger {
		return 0, false
	}
	return v.i, true
}

// AsFloat returns the Float payload.
//
// Postcondition: ok is true iff v is a Float.
func (v Value) AsFloat() (float32, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return v.f, true
}

// AsBool returns the Boolean payload.
//
// Postcondition: ok is true iff v is a Boolean.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBoolean {
		return false, false
	}
	return v.b, true
}

// AsString returns the String payload.
//
// Postcondition: ok is true iff v is a String.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// String renders the payload for display.
func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(int64(v.i), 10)
	case KindFloat:
		return strconv.FormatFloat(float64(v.f), 'g', -1, 32)
	case KindBoolean:
		return strconv.FormatBool(v.b)
	case KindString:
		return v.s
	default:
		return "<invalid>"
	}
}

// MarshalJSON encodes v as a single-key object, e.g. {"integer":5}.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInteger:
		return json.Marshal(map[string]int32{"integer": v.i})
	case KindFloat:
		return json.Marshal(map[string]float32{"float": v.f})
	case KindBoolean:
		return json.Marshal(map[string]bool{"boolean": v.b})
	case KindString:
		return json.Marshal(map[string]string{"string": v.s})
	default:
		return nil, fmt.Errorf("stat: cannot marshal invalid value")
	}
}

// UnmarshalJSON decodes the single-key object form written by MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("stat: decoding value: %w", err)
	}
	if len(raw) != 1 {
		return fmt.Errorf("stat: value must have exactly one variant key, got %d", len(raw))
	}
	for key, payload := range raw {
		switch key {
		case "integer":
			var i int32
			if err := json.Unmarshal(payload, &i); err != nil {
				return fmt.Errorf("stat: decoding integer: %w", err)
			}
			*v = Int(i)
		case "float":
			var f float32
			if err := json.Unmarshal(payload, &f); err != nil {
				return fmt.Errorf("stat: decoding float: %w", err)
			}
			*v = Float(f)
		case "boolean":
			var b bool
			if err := json.Unmarshal(payload, &b); err != nil {
				return fmt.Errorf("stat: decoding boolean: %w", err)
			}
			*v = Bool(b)
		case "string":
			var s string
			if err := json.Unmarshal(payload, &s); err != nil {
				return fmt.Errorf("stat: decoding string: %w", err)
			}
			*v = String(s)
		default:
			return fmt.Errorf("stat: unknown value variant %q", key)
		}
	}
	return nil
}

// UnmarshalYAML decodes the content-file form, a single-key mapping such as
// `{integer: 5}` or `{float: 0.5}`.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return fmt.Errorf("stat: line %d: value must be a single-key mapping", node.Line)
	}
	key, payload := node.Content[0].Value, node.Content[1]
	switch key {
	case "integer":
		var i int32
		if err := payload.Decode(&i); err != nil {
			return fmt.Errorf("stat: line %d: decoding integer: %w", node.Line, err)
		}
		*v = Int(i)
	case "float":
		var f float32
		if err := payload.Decode(&f); err != nil {
			return fmt.Errorf("stat: line %d: decoding float: %w", node.Line, err)
		}
		*v = Float(f)
	case "boolean":
		var b bool
		if err := payload.Decode(&b); err != nil {
			return fmt.Errorf("stat: line %d: decoding boolean: %w", node.Line, err)
		}
		*v = Bool(b)
	case "string":
		var s string
		if err := payload.Decode(&s); err != nil {
			return fmt.Errorf("stat: line %d: decoding string: %w", node.Line, err)
		}
		*v = String(s)
	default:
		return fmt.Errorf("stat: line %d: unknown value variant %q", node.Line, key)
	}
	return nil
}
