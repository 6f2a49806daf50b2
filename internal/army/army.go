// Package army parses battle construction input: structured unit-spec
// records, the legacy positional form, and YAML roster files used by the
// headless simulator.
package army

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"warhex/internal/battle"
)

// legacy positional order: name, max_hp, damage, range, count, then the
// optional single-ability shorthand numbers.
var legacyFields = []string{"armor", "heal", "sunder", "push", "ramp", "amplify"}

// Spec wraps battle.UnitSpec so a roster entry may be either a structured
// mapping or a legacy positional sequence.
type Spec struct {
	battle.UnitSpec
}

// UnmarshalYAML accepts both record shapes:
//
//   - {name: Knight, max_hp: 10, damage: 3, range: 1, count: 4, abilities: [...]}
//   - [Knight, 10, 3, 1, 4, 1, 0, 0, 0, 2, 0]
func (s *Spec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		return node.Decode(&s.UnitSpec)
	case yaml.SequenceNode:
		var raw []any
		if err := node.Decode(&raw); err != nil {
			return err
		}
		spec, err := FromLegacy(raw)
		if err != nil {
			return err
		}
		s.UnitSpec = spec
		return nil
	default:
		return fmt.Errorf("unit spec must be a mapping or a sequence")
	}
}

// FromLegacy converts the positional tuple form into a structured spec,
// turning each trailing non-zero shorthand number into one ability record.
func FromLegacy(raw []any) (battle.UnitSpec, error) {
	var spec battle.UnitSpec
	if len(raw) < 5 {
		return spec, fmt.Errorf("legacy unit spec needs at least 5 fields, got %d", len(raw))
	}
	name, ok := raw[0].(string)
	if !ok {
		return spec, fmt.Errorf("legacy unit spec: first field must be the unit name")
	}
	nums := make([]int, 0, len(raw)-1)
	for i, v := range raw[1:] {
		n, err := asInt(v)
		if err != nil {
			return spec, fmt.Errorf("legacy unit spec %q field %d: %w", name, i+1, err)
		}
		nums = append(nums, n)
	}
	spec.Name = name
	spec.MaxHP = nums[0]
	spec.Damage = nums[1]
	spec.Range = nums[2]
	spec.Count = nums[3]

	for i, field := range legacyFields {
		idx := 4 + i
		if idx >= len(nums) || nums[idx] == 0 {
			continue
		}
		val := nums[idx]
		switch field {
		case "armor":
			spec.Armor = val
		case "heal":
			spec.Abilities = append(spec.Abilities, battle.Ability{
				Trigger: battle.TriggerPeriodic, Effect: battle.EffectHeal,
				Target: battle.TargetRandom, Value: val,
			})
		case "sunder":
			spec.Abilities = append(spec.Abilities, battle.Ability{
				Trigger: battle.TriggerOnHit, Effect: battle.EffectSunder,
				Target: battle.TargetTarget, Value: val,
			})
		case "push":
			spec.Abilities = append(spec.Abilities, battle.Ability{
				Trigger: battle.TriggerOnHit, Effect: battle.EffectPush,
				Target: battle.TargetTarget, Value: val,
			})
		case "ramp":
			spec.Abilities = append(spec.Abilities, battle.Ability{
				Trigger: battle.TriggerOnHit, Effect: battle.EffectRamp, Value: val,
			})
		case "amplify":
			spec.Abilities = append(spec.Abilities, battle.Ability{
				Trigger: battle.TriggerPassive, Effect: battle.EffectAmplify,
				Value: val, Aura: battle.AuraSelfRange,
			})
		}
	}
	return spec, nil
}

func asInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

// Roster is a YAML battle scenario: two armies and optional battle rules.
type Roster struct {
	Army1 []Spec          `yaml:"army1"`
	Army2 []Spec          `yaml:"army2"`
	Rules *battle.Options `yaml:"rules,omitempty"`
}

// Specs returns the plain unit-spec slices for both sides.
func (r Roster) Specs() (army1, army2 []battle.UnitSpec) {
	for _, s := range r.Army1 {
		army1 = append(army1, s.UnitSpec)
	}
	for _, s := range r.Army2 {
		army2 = append(army2, s.UnitSpec)
	}
	return army1, army2
}

// LoadRoster reads and validates a YAML roster file.
func LoadRoster(path string) (*Roster, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster %s: %w", path, err)
	}
	var r Roster
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("failed to parse roster %s: %w", path, err)
	}
	for _, side := range [][]Spec{r.Army1, r.Army2} {
		for _, s := range side {
			if err := s.Validate(); err != nil {
				return nil, fmt.Errorf("roster %s: %w", path, err)
			}
		}
	}
	return &r, nil
}
