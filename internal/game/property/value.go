package property

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/cory-johannsen/statengine/internal/game/stat"
)

// ValueKind enumerates the payload shapes a property can carry.
type ValueKind uint8

// Value kinds.
const (
	ValueStat ValueKind = iota + 1
	ValueFunction
	ValueScript
	ValueAsset
	ValueData
	ValueFlag
	ValueText
	ValueCustom
)

var valueKindNames = map[ValueKind]string{
	ValueStat:     "stat",
	ValueFunction: "function",
	ValueScript:   "script",
	ValueAsset:    "asset",
	ValueData:     "data",
	ValueFlag:     "flag",
	ValueText:     "text",
	ValueCustom:   "custom",
}

// String returns the wire name of k.
func (k ValueKind) String() string {
	if name, ok := valueKindNames[k]; ok {
		return name
	}
	return "invalid"
}

func parseValueKind(s string) (ValueKind, error) {
	for k, name := range valueKindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("property: unknown value kind %q", s)
}

// Value is the payload of a property. Build values with the constructors;
// read them with the As* accessors, which report false on kind mismatch.
type Value struct {
	kind ValueKind
	key  string // stat name, function id, script id, asset path, text, custom key
	stat stat.Value
	data map[string]stat.Value
	flag bool
	text string // custom value
}

// StatValue carries a stat name and the value it contributes.
func StatValue(name string, v stat.Value) Value {
	return Value{kind: ValueStat, key: name, stat: v}
}

// FunctionValue names a function id to invoke.
func FunctionValue(id string) Value { return Value{kind: ValueFunction, key: id} }

// ScriptValue names a script id to execute.
func ScriptValue(id string) Value { return Value{kind: ValueScript, key: id} }

// AssetValue carries an asset path.
func AssetValue(path string) Value { return Value{kind: ValueAsset, key: path} }

// DataValue carries structured data. The map is copied.
func DataValue(data map[string]stat.Value) Value {
	return Value{kind: ValueData, data: maps.Clone(data)}
}

// FlagValue carries a boolean flag.
func FlagValue(b bool) Value { return Value{kind: ValueFlag, flag: b} }

// TextValue carries free text.
func TextValue(s string) Value { return Value{kind: ValueText, key: s} }

// CustomValue carries a game-specific key/value pair.
func CustomValue(key, value string) Value {
	return Value{kind: ValueCustom, key: key, text: value}
}

// Kind reports the payload shape.
func (v Value) Kind() ValueKind { return v.kind }

// AsStat returns the stat name and value of a Stat payload.
func (v Value) AsStat() (string, stat.Value, bool) {
	if v.kind != ValueStat {
		return "", stat.Value{}, false
	}
	return v.key, v.stat, true
}

// AsFunction returns the function id of a Function payload.
func (v Value) AsFunction() (string, bool) { return v.keyIf(ValueFunction) }

// AsScript returns the script id of a Script payload.
func (v Value) AsScript() (string, bool) { return v.keyIf(ValueScript) }

// AsAsset returns the path of an Asset payload.
func (v Value) AsAsset() (string, bool) { return v.keyIf(ValueAsset) }

// AsText returns the text of a Text payload.
func (v Value) AsText() (string, bool) { return v.keyIf(ValueText) }

// AsData returns a copy of a Data payload.
func (v Value) AsData() (map[string]stat.Value, bool) {
	if v.kind != ValueData {
		return nil, false
	}
	return maps.Clone(v.data), true
}

// AsFlag returns the flag of a Flag payload.
func (v Value) AsFlag() (bool, bool) {
	if v.kind != ValueFlag {
		return false, false
	}
	return v.flag, true
}

// AsCustom returns the key and value of a Custom payload.
func (v Value) AsCustom() (string, string, bool) {
	if v.kind != ValueCustom {
		return "", "", false
	}
	return v.key, v.text, true
}

func (v Value) keyIf(k ValueKind) (string, bool) {
	if v.kind != k {
		return "", false
	}
	return v.key, true
}

// Equal reports whether v and o carry the same payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind || v.key != o.key || v.stat != o.stat || v.flag != o.flag || v.text != o.text {
		return false
	}
	return maps.Equal(v.data, o.data)
}

type valueJSON struct {
	Kind  string                `json:"kind"`
	Key   string                `json:"key,omitempty"`
	Stat  *stat.Value           `json:"stat,omitempty"`
	Data  map[string]stat.Value `json:"data,omitempty"`
	Flag  bool                  `json:"flag,omitempty"`
	Value string                `json:"value,omitempty"`
}

// MarshalJSON encodes v with an explicit kind discriminator.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == 0 {
		return nil, fmt.Errorf("property: cannot marshal empty value")
	}
	out := valueJSON{Kind: v.kind.String(), Key: v.key, Data: v.data, Flag: v.flag, Value: v.text}
	if v.kind == ValueStat {
		s := v.stat
		out.Stat = &s
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw valueJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("property: decoding value: %w", err)
	}
	kind, err := parseValueKind(raw.Kind)
	if err != nil {
		return err
	}
	out := Value{kind: kind, key: raw.Key, data: raw.Data, flag: raw.Flag, text: raw.Value}
	if kind == ValueStat {
		if raw.Stat == nil {
			return fmt.Errorf("property: stat value %q has no stat payload", raw.Key)
		}
		out.stat = *raw.Stat
	}
	*v = out
	return nil
}
