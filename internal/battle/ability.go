package battle

import (
	"fmt"

	"warhex/internal/hexgrid"
)

// Trigger names the moment an ability fires.
type Trigger string

const (
	TriggerPassive   Trigger = "passive"
	TriggerOnHit     Trigger = "onhit"
	TriggerOnKill    Trigger = "onkill"
	TriggerWounded   Trigger = "wounded"
	TriggerPeriodic  Trigger = "periodic" // end of the unit's turn
	TriggerTurnStart Trigger = "turnstart"
	TriggerLament    Trigger = "lament"  // an ally died in range
	TriggerHarvest   Trigger = "harvest" // an enemy died in range
)

// Effect names what an ability does when it fires.
type Effect string

const (
	EffectArmor      Effect = "armor"
	EffectAmplify    Effect = "amplify"
	EffectBoost      Effect = "boost"
	EffectUndying    Effect = "undying"
	EffectLamentAura Effect = "lament_aura"
	EffectRamp       Effect = "ramp"
	EffectPush       Effect = "push"
	EffectRetreat    Effect = "retreat"
	EffectFreeze     Effect = "freeze"
	EffectSplash     Effect = "splash"
	EffectHeal       Effect = "heal"
	EffectFortify    Effect = "fortify"
	EffectRepair     Effect = "repair"
	EffectSunder     Effect = "sunder"
	EffectStrike     Effect = "strike"
	EffectSummon     Effect = "summon"
	EffectShadowstep Effect = "shadowstep"
	EffectBlock      Effect = "block"
	EffectSilence    Effect = "silence"
	EffectExecute    Effect = "execute"
	EffectReady      Effect = "ready"
	EffectBombard    Effect = "bombardment"
)

// TargetKind selects which units an ability applies to.
type TargetKind string

const (
	TargetSelf   TargetKind = "self"
	TargetTarget TargetKind = "target"
	TargetGlobal TargetKind = "global"
	TargetRandom TargetKind = "random"
	TargetArea   TargetKind = "area"
)

// AuraSelfRange marks an aura whose radius follows the unit's attack range.
const AuraSelfRange = -1

// Ability is an immutable declarative record. Zero Range means "use the
// unit's attack range"; zero Charge means the ability fires every time.
type Ability struct {
	Trigger   Trigger    `json:"trigger" yaml:"trigger"`
	Effect    Effect     `json:"effect" yaml:"effect"`
	Target    TargetKind `json:"target,omitempty" yaml:"target,omitempty"`
	Value     int        `json:"value,omitempty" yaml:"value,omitempty"`
	Range     int        `json:"range,omitempty" yaml:"range,omitempty"`
	Aura      int        `json:"aura,omitempty" yaml:"aura,omitempty"`
	Count     int        `json:"count,omitempty" yaml:"count,omitempty"`
	Charge    int        `json:"charge,omitempty" yaml:"charge,omitempty"`
	NoAmplify bool       `json:"no_amplify,omitempty" yaml:"no_amplify,omitempty"`
}

var validTriggers = map[Trigger]bool{
	TriggerPassive: true, TriggerOnHit: true, TriggerOnKill: true,
	TriggerWounded: true, TriggerPeriodic: true, TriggerTurnStart: true,
	TriggerLament: true, TriggerHarvest: true,
}

var validEffects = map[Effect]bool{
	EffectArmor: true, EffectAmplify: true, EffectBoost: true,
	EffectUndying: true, EffectLamentAura: true, EffectRamp: true,
	EffectPush: true, EffectRetreat: true, EffectFreeze: true,
	EffectSplash: true, EffectHeal: true, EffectFortify: true,
	EffectRepair: true, EffectSunder: true, EffectStrike: true,
	EffectSummon: true, EffectShadowstep: true, EffectBlock: true,
	EffectSilence: true, EffectExecute: true, EffectReady: true,
	EffectBombard: true,
}

var validTargets = map[TargetKind]bool{
	TargetSelf: true, TargetTarget: true, TargetGlobal: true,
	TargetRandom: true, TargetArea: true,
}

// Validate checks the record against the fixed schema at load time so a
// malformed ability never reaches the turn loop.
func (a Ability) Validate() error {
	if !validTriggers[a.Trigger] {
		return fmt.Errorf("unknown trigger %q", a.Trigger)
	}
	if !validEffects[a.Effect] {
		return fmt.Errorf("unknown effect %q", a.Effect)
	}
	if a.Target != "" && !validTargets[a.Target] {
		return fmt.Errorf("unknown target selector %q", a.Target)
	}
	if a.Effect == EffectSummon && a.Count <= 0 {
		return fmt.Errorf("summon ability requires a positive count")
	}
	if a.Charge < 0 {
		return fmt.Errorf("charge must not be negative")
	}
	if a.Range < 0 {
		return fmt.Errorf("range must not be negative")
	}
	if a.Aura < AuraSelfRange {
		return fmt.Errorf("aura radius %d is invalid", a.Aura)
	}
	return nil
}

// TargetOrSelf returns the explicit target selector, defaulting to self.
func (a Ability) TargetOrSelf() TargetKind {
	if a.Target == "" {
		return TargetSelf
	}
	return a.Target
}

// effectiveRange returns the ability's own range, falling back to the
// owning unit's attack range.
func (a Ability) effectiveRange(owner *Unit) int {
	if a.Range > 0 {
		return a.Range
	}
	return owner.AttackRange
}

// auraRadius resolves the aura field for the owning unit; AuraSelfRange
// follows the unit's attack range.
func (a Ability) auraRadius(owner *Unit) int {
	if a.Aura == AuraSelfRange {
		return owner.AttackRange
	}
	return a.Aura
}

// auraCovers reports whether the aura of this ability, carried by owner,
// reaches pos. A zero-radius aura covers only the owner's own hex.
func (a Ability) auraCovers(owner *Unit, pos hexgrid.Coord) bool {
	return hexgrid.Distance(owner.Pos, pos) <= a.auraRadius(owner)
}

// offensive effects target enemies when building selector pools; friendly
// ones target allies.
var offensiveEffects = map[Effect]bool{
	EffectStrike: true, EffectSplash: true, EffectSunder: true,
	EffectPush: true, EffectRetreat: true, EffectFreeze: true,
	EffectBlock: true, EffectSilence: true, EffectExecute: true,
	EffectBombard: true,
}

// ComputeValue resolves an ability's magnitude for the given unit,
// including amplify auras from living allies. Amplifier sources always
// contribute their literal value so amplification can never recurse.
func (b *Battle) ComputeValue(u *Unit, a Ability) int {
	if a.Value == 0 {
		return 0
	}
	if a.NoAmplify {
		return a.Value
	}
	total := a.Value
	for _, ally := range b.Units {
		if ally == u || !ally.Alive() || ally.Player != u.Player || ally.Silenced {
			continue
		}
		for _, aa := range ally.Abilities {
			if aa.Trigger != TriggerPassive || aa.Effect != EffectAmplify {
				continue
			}
			if aa.auraCovers(ally, u.Pos) {
				total += aa.Value
			}
		}
	}
	return total
}

// EffectiveArmor returns a unit's base armor plus its own passive armor
// abilities and any ally armor auras covering its position. Auras are
// recomputed on every query, never cached.
func (b *Battle) EffectiveArmor(u *Unit) int {
	armor := u.Armor
	if !u.Silenced {
		for _, a := range u.Abilities {
			if a.Trigger == TriggerPassive && a.Effect == EffectArmor && a.Aura == 0 {
				armor += b.ComputeValue(u, a)
			}
		}
	}
	for _, ally := range b.Units {
		if ally == u || !ally.Alive() || ally.Player != u.Player || ally.Silenced {
			continue
		}
		for _, a := range ally.Abilities {
			if a.Trigger != TriggerPassive || a.Effect != EffectArmor || a.Aura == 0 {
				continue
			}
			if a.auraCovers(ally, u.Pos) {
				armor += b.ComputeValue(ally, a)
			}
		}
	}
	return armor
}

// abilityContext carries the situational target for trigger resolution,
// e.g. the attacked unit for onhit or the damage source for wounded.
type abilityContext struct {
	target *Unit
}

// SelectTargets resolves the ability's target selector into concrete
// units. A selector with no eligible pool returns an empty list and the
// caller skips the effect.
func (b *Battle) SelectTargets(u *Unit, a Ability, ctx abilityContext) []*Unit {
	switch a.TargetOrSelf() {
	case TargetSelf:
		return []*Unit{u}
	case TargetTarget:
		if ctx.target != nil && ctx.target.Alive() {
			return []*Unit{ctx.target}
		}
		return nil
	case TargetGlobal:
		var out []*Unit
		for _, v := range b.Units {
			if v.Alive() && v.Player == u.Player {
				out = append(out, v)
			}
		}
		return out
	}

	// random and area draw from a range-limited pool: enemies for
	// offensive effects, allies otherwise. Bombardment ignores range.
	rng := a.effectiveRange(u)
	wantEnemy := offensiveEffects[a.Effect]
	var pool []*Unit
	for _, v := range b.Units {
		if !v.Alive() {
			continue
		}
		if wantEnemy == (v.Player == u.Player) {
			continue
		}
		if a.Effect != EffectBombard && hexgrid.Distance(u.Pos, v.Pos) > rng {
			continue
		}
		pool = append(pool, v)
	}
	if len(pool) == 0 {
		return nil
	}
	if a.TargetOrSelf() == TargetRandom {
		return []*Unit{pool[b.rng.IntN(len(pool))]}
	}
	return pool
}

// chargeKey identifies a per-unit charge counter.
type chargeKey struct {
	index   int
	trigger Trigger
}

// chargeReady gates abilities that fire only every Nth occurrence. It
// mutates the unit's counter: call it once per qualifying occurrence.
func (u *Unit) chargeReady(index int, a Ability) bool {
	if a.Charge <= 0 {
		return true
	}
	key := chargeKey{index: index, trigger: a.Trigger}
	u.charges[key]++
	if u.charges[key] >= a.Charge {
		u.charges[key] = 0
		return true
	}
	return false
}
