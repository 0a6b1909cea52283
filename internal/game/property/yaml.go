package property

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/statengine/internal/game/stat"
)

type yamlValue struct {
	Kind  string                `yaml:"kind"`
	Key   string                `yaml:"key"`
	Stat  *stat.Value           `yaml:"stat"`
	Data  map[string]stat.Value `yaml:"data"`
	Flag  bool                  `yaml:"flag"`
	Value string                `yaml:"value"`
}

type yamlCondition struct {
	Type       string                `yaml:"type"`
	Parameters map[string]stat.Value `yaml:"parameters"`
}

type yamlProperty struct {
	Type       string            `yaml:"type"`
	Value      yamlValue         `yaml:"value"`
	Context    []string          `yaml:"context"`
	Conditions []yamlCondition   `yaml:"conditions"`
	Metadata   map[string]string `yaml:"metadata"`
}

// UnmarshalYAML decodes the content-file form of a property:
//
//	type: stat_modifier
//	value: {kind: stat, key: attack, stat: {integer: 5}}
//	context: [combat]
//	conditions:
//	  - type: has_tag
//	    parameters: {tag: {string: enraged}}
//
// A property with no context applies nowhere; content files that want the
// wildcard must list "default" explicitly.
func (p *Property) UnmarshalYAML(node *yaml.Node) error {
	var raw yamlProperty
	if err := node.Decode(&raw); err != nil {
		return err
	}
	t, err := ParseType(raw.Type)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	v, err := raw.Value.toValue()
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	out := Property{
		Type:     t,
		Value:    v,
		Context:  raw.Context,
		Metadata: raw.Metadata,
	}
	if out.Metadata == nil {
		out.Metadata = map[string]string{}
	}
	for _, rc := range raw.Conditions {
		ct, err := ParseConditionType(rc.Type)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		out.Conditions = append(out.Conditions, Condition{Type: ct, Parameters: rc.Parameters})
	}
	*p = out
	return nil
}

func (raw yamlValue) toValue() (Value, error) {
	kind, err := parseValueKind(raw.Kind)
	if err != nil {
		return Value{}, err
	}
	switch kind {
	case ValueStat:
		if raw.Stat == nil {
			return Value{}, fmt.Errorf("property: stat value %q has no stat payload", raw.Key)
		}
		return StatValue(raw.Key, *raw.Stat), nil
	case ValueFunction:
		return FunctionValue(raw.Key), nil
	case ValueScript:
		return ScriptValue(raw.Key), nil
	case ValueAsset:
		return AssetValue(raw.Key), nil
	case ValueData:
		return DataValue(raw.Data), nil
	case ValueFlag:
		return FlagValue(raw.Flag), nil
	case ValueText:
		return TextValue(raw.Key), nil
	default:
		return CustomValue(raw.Key, raw.Value), nil
	}
}
