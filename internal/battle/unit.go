package battle

import "warhex/internal/hexgrid"

// Unit is a mutable combatant. Units are created during army setup or by
// summon effects and are never removed from the battle's unit list: dead
// units keep their slot (and ID) so history, undo and event lookups stay
// unambiguous after death.
type Unit struct {
	ID          int           `json:"id"`
	Name        string        `json:"name"`
	Player      int           `json:"player"`
	MaxHP       int           `json:"max_hp"`
	HP          int           `json:"hp"`
	Damage      int           `json:"damage"`
	AttackRange int           `json:"attack_range"`
	Armor       int           `json:"armor"`
	Abilities   []Ability     `json:"abilities,omitempty"`
	Pos         hexgrid.Coord `json:"pos"`
	HasActed    bool          `json:"has_acted"`

	// BonusDamage tracks accumulated ramp/lament gains for display; the
	// authoritative attack value is Damage itself.
	BonusDamage int  `json:"bonus_damage,omitempty"`
	FrozenTurns int  `json:"frozen_turns,omitempty"`
	Silenced    bool `json:"silenced,omitempty"`

	charges map[chargeKey]int
}

// Alive reports whether the unit is still in the fight.
func (u *Unit) Alive() bool { return u.HP > 0 }

// Ready reports whether the unit still has its action this round.
func (u *Unit) Ready() bool { return u.Alive() && !u.HasActed && u.FrozenTurns == 0 }

func (b *Battle) newUnit(spec UnitSpec, player int, pos hexgrid.Coord) *Unit {
	u := &Unit{
		ID:          b.nextID,
		Name:        spec.Name,
		Player:      player,
		MaxHP:       spec.MaxHP,
		HP:          spec.MaxHP,
		Damage:      spec.Damage,
		AttackRange: spec.Range,
		Armor:       spec.Armor,
		Abilities:   spec.Abilities,
		Pos:         pos,
		charges:     make(map[chargeKey]int),
	}
	b.nextID++
	b.Units = append(b.Units, u)
	return u
}

// UnitByID returns the unit with the given ID, or nil.
func (b *Battle) UnitByID(id int) *Unit {
	for _, u := range b.Units {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// enemiesWithin returns living enemies of u within the given hex distance,
// in stable unit-list order.
func (b *Battle) enemiesWithin(u *Unit, dist int) []*Unit {
	var out []*Unit
	for _, v := range b.Units {
		if !v.Alive() || v.Player == u.Player {
			continue
		}
		if hexgrid.Distance(u.Pos, v.Pos) <= dist {
			out = append(out, v)
		}
	}
	return out
}

// livingEnemies returns every living enemy of u in unit-list order.
func (b *Battle) livingEnemies(u *Unit) []*Unit {
	var out []*Unit
	for _, v := range b.Units {
		if v.Alive() && v.Player != u.Player {
			out = append(out, v)
		}
	}
	return out
}

// occupiedExcept returns the set of hexes held by living units other than u.
func (b *Battle) occupiedExcept(u *Unit) map[hexgrid.Coord]bool {
	occ := make(map[hexgrid.Coord]bool)
	for _, v := range b.Units {
		if v != u && v.Alive() {
			occ[v.Pos] = true
		}
	}
	return occ
}

// unitAt returns the living unit on the given hex, or nil.
func (b *Battle) unitAt(pos hexgrid.Coord) *Unit {
	for _, v := range b.Units {
		if v.Alive() && v.Pos == pos {
			return v
		}
	}
	return nil
}
