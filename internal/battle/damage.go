package battle

import "warhex/internal/hexgrid"

// ApplyDamage resolves one damage instance against target: armor
// mitigation, the undying death save, wounded triggers and the death
// cascade. It returns the damage actually dealt after armor.
func (b *Battle) ApplyDamage(target *Unit, amount int, source *Unit) int {
	dmg := amount - b.EffectiveArmor(target)
	if dmg <= 0 {
		return 0
	}

	// Undying save: a covering ally (or the unit itself) may spend the
	// target's accumulated bonus damage to avert the killing blow. Only
	// the first qualifying source in unit-list order triggers.
	if dmg >= target.HP && target.Damage > 0 {
		if saved := b.tryUndying(target); saved {
			return 0
		}
	}

	target.HP -= dmg
	if target.HP < 0 {
		target.HP = 0
	}
	if target.Alive() {
		b.triggerAbilities(target, TriggerWounded, abilityContext{target: source})
	} else {
		b.handleDeath(target, source)
	}
	return dmg
}

func (b *Battle) tryUndying(target *Unit) bool {
	for _, ally := range b.Units {
		if !ally.Alive() || ally.Player != target.Player || ally.Silenced {
			continue
		}
		for _, a := range ally.Abilities {
			if a.Trigger != TriggerPassive || a.Effect != EffectUndying {
				continue
			}
			if !a.auraCovers(ally, target.Pos) {
				continue
			}
			val := b.ComputeValue(ally, a)
			if val <= 0 || val > target.Damage {
				continue
			}
			target.Damage -= val
			if target.BonusDamage > val {
				target.BonusDamage -= val
			} else {
				target.BonusDamage = 0
			}
			b.logf("%s #%d cheats death, spending %d attack", target.Name, target.ID, val)
			return true
		}
	}
	return false
}

// handleDeath runs the kill cascade: onkill for the killer, lament and
// harvest for units in range, and lament_aura damage grants to the fallen
// unit's nearby allies. Liveness is re-checked at every point of use since
// earlier triggers in the cascade may cause further deaths.
func (b *Battle) handleDeath(dead *Unit, source *Unit) {
	b.logf("%s #%d dies", dead.Name, dead.ID)

	if source != nil && source != dead && source.Alive() {
		b.triggerAbilities(source, TriggerOnKill, abilityContext{target: dead})
	}

	for _, v := range b.Units {
		if v == dead || !v.Alive() || v.Silenced {
			continue
		}
		trigger := TriggerHarvest
		if v.Player == dead.Player {
			trigger = TriggerLament
		}
		for i, a := range v.Abilities {
			if a.Trigger != trigger {
				continue
			}
			if hexgrid.Distance(v.Pos, dead.Pos) > a.effectiveRange(v) {
				continue
			}
			if !v.chargeReady(i, a) {
				continue
			}
			b.executeEffect(v, a, abilityContext{target: dead})
		}
	}

	// lament_aura: mourners whose aura reaches the fallen grant its
	// covered allies a permanent damage bonus.
	for _, v := range b.Units {
		if !v.Alive() || v.Silenced || v.Player != dead.Player {
			continue
		}
		for _, a := range v.Abilities {
			if a.Trigger != TriggerPassive || a.Effect != EffectLamentAura {
				continue
			}
			if !a.auraCovers(v, dead.Pos) {
				continue
			}
			val := b.ComputeValue(v, a)
			if val <= 0 {
				continue
			}
			for _, w := range b.Units {
				if !w.Alive() || w.Player != dead.Player {
					continue
				}
				if !a.auraCovers(v, w.Pos) {
					continue
				}
				w.Damage += val
				w.BonusDamage += val
				b.logf("%s #%d mourns %s #%d and gains %d attack", w.Name, w.ID, dead.Name, dead.ID, val)
			}
		}
	}
}
