package battle

import (
	"errors"
	"fmt"
)

// UnitSpec describes one unit type in an army roster. Count copies of the
// unit are spawned at setup. Specs are validated before any unit enters
// the turn loop: a malformed spec fails battle construction fast instead
// of surfacing mid-simulation.
type UnitSpec struct {
	Name      string    `json:"name" yaml:"name"`
	MaxHP     int       `json:"max_hp" yaml:"max_hp"`
	Damage    int       `json:"damage" yaml:"damage"`
	Range     int       `json:"range" yaml:"range"`
	Count     int       `json:"count" yaml:"count"`
	Armor     int       `json:"armor,omitempty" yaml:"armor,omitempty"`
	Abilities []Ability `json:"abilities,omitempty" yaml:"abilities,omitempty"`
}

var (
	ErrEmptyName = errors.New("unit spec missing name")
	ErrBadStats  = errors.New("unit spec has invalid hp, range or count")
)

// Validate checks the spec and all of its ability records. A zero Count is
// legal: the spec then contributes no units and an empty side simply loses
// on the first step.
func (s UnitSpec) Validate() error {
	if s.Name == "" {
		return ErrEmptyName
	}
	if s.MaxHP <= 0 || s.Range <= 0 || s.Count < 0 {
		return fmt.Errorf("%w: %q hp=%d range=%d count=%d", ErrBadStats, s.Name, s.MaxHP, s.Range, s.Count)
	}
	if s.Damage < 0 || s.Armor < 0 {
		return fmt.Errorf("unit spec %q: damage and armor must not be negative", s.Name)
	}
	for i, a := range s.Abilities {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("unit spec %q ability %d: %w", s.Name, i, err)
		}
	}
	return nil
}

// bladeSpec is the fixed stat line for summoned units.
var bladeSpec = UnitSpec{Name: "Blade", MaxHP: 1, Damage: 2, Range: 1, Count: 1}

// minRange returns the smallest attack range in an army; the units at that
// tier form the army's frontline.
func minRange(specs []UnitSpec) int {
	m := 0
	for _, s := range specs {
		if s.Count == 0 {
			continue
		}
		if m == 0 || s.Range < m {
			m = s.Range
		}
	}
	return m
}

// frontlineCount returns how many individual units sit at the army's
// minimum-range tier. The grid height is sized so the denser side's
// frontline fits one unit per row.
func frontlineCount(specs []UnitSpec) int {
	front := minRange(specs)
	n := 0
	for _, s := range specs {
		if s.Range == front {
			n += s.Count
		}
	}
	return n
}
