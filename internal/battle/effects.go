package battle

import "warhex/internal/hexgrid"

// triggerAbilities fires every charge-ready ability of u with the given
// trigger. Silenced units never fire; a shadowstep with a periodic trigger
// is handled by the movement decision instead.
func (b *Battle) triggerAbilities(u *Unit, tr Trigger, ctx abilityContext) {
	if !u.Alive() || u.Silenced {
		return
	}
	for i, a := range u.Abilities {
		if a.Trigger != tr {
			continue
		}
		if tr == TriggerPeriodic && a.Effect == EffectShadowstep {
			continue
		}
		if !u.chargeReady(i, a) {
			continue
		}
		b.executeEffect(u, a, ctx)
	}
}

// executeEffect dispatches on the effect name. Effects that need no
// external animation are applied synchronously; visible ones (heal,
// fortify, repair, sunder, strike, splash, bombardment) are queued as
// effect-events so a renderer can animate them before the state change.
func (b *Battle) executeEffect(u *Unit, a Ability, ctx abilityContext) {
	value := b.ComputeValue(u, a)
	switch a.Effect {
	case EffectRamp, EffectBoost:
		for _, t := range b.SelectTargets(u, a, ctx) {
			t.Damage += value
			t.BonusDamage += value
			b.logf("%s #%d gains %d attack", t.Name, t.ID, value)
		}
	case EffectPush:
		for _, t := range b.SelectTargets(u, a, ctx) {
			b.applyPush(u, t, value)
		}
	case EffectRetreat:
		b.applyRetreat(u, ctx)
	case EffectFreeze:
		b.applyFreeze(u, value)
	case EffectSummon:
		b.applySummon(u, a)
	case EffectShadowstep:
		// Fired outside the periodic movement path: treat as a plain
		// teleport opportunity.
		b.shadowstep(u, b.livingEnemies(u), b.occupiedExcept(u))
	case EffectBlock:
		turns := value
		if turns < 1 {
			turns = 1
		}
		for _, t := range b.SelectTargets(u, a, ctx) {
			if t.FrozenTurns < turns {
				t.FrozenTurns = turns
			}
			b.logf("%s #%d is blocked for %d turns", t.Name, t.ID, turns)
		}
	case EffectSilence:
		for _, t := range b.SelectTargets(u, a, ctx) {
			t.Silenced = true
			b.logf("%s #%d is silenced", t.Name, t.ID)
		}
	case EffectExecute:
		for _, t := range b.SelectTargets(u, a, ctx) {
			if t.HP > value {
				continue
			}
			t.HP = 0
			b.logf("%s #%d executes %s #%d", u.Name, u.ID, t.Name, t.ID)
			b.handleDeath(t, u)
		}
	case EffectReady:
		for _, t := range b.SelectTargets(u, a, ctx) {
			t.FrozenTurns = 0
			if t.HasActed {
				t.HasActed = false
				b.turnOrder = append(b.turnOrder, t.ID)
			}
			b.logf("%s #%d is readied", t.Name, t.ID)
		}
	case EffectHeal, EffectRepair, EffectFortify, EffectSunder,
		EffectStrike, EffectSplash, EffectBombard:
		for _, t := range b.SelectTargets(u, a, ctx) {
			b.queueEvent(EffectEvent{
				Type:     a.Effect,
				SourceID: u.ID,
				TargetID: t.ID,
				Amount:   value,
				Pos:      t.Pos,
			})
		}
	default:
		// Passive effects (armor, amplify, undying, lament_aura) are
		// consulted where they matter and never "fire".
	}
}

// applyPush shoves the target up to n hexes column-wise away from the
// attacker, stopping at the grid edge or the first occupied hex.
func (b *Battle) applyPush(from, target *Unit, n int) {
	dir := 0
	switch {
	case target.Pos.Col > from.Pos.Col:
		dir = 1
	case target.Pos.Col < from.Pos.Col:
		dir = -1
	default:
		return
	}
	moved := 0
	for i := 0; i < n; i++ {
		next := hexgrid.Coord{Col: target.Pos.Col + dir, Row: target.Pos.Row}
		if next.Col < 0 || next.Col >= b.Cols {
			break
		}
		if b.unitAt(next) != nil {
			break
		}
		target.Pos = next
		moved++
	}
	if moved > 0 {
		b.logf("%s #%d is pushed %d hexes", target.Name, target.ID, moved)
	}
}

// applyRetreat moves the acting unit one hex to the unoccupied neighbor
// that maximizes distance from the reference target. Ties keep the first
// neighbor found, never the RNG.
func (b *Battle) applyRetreat(u *Unit, ctx abilityContext) {
	ref := ctx.target
	if ref == nil || !ref.Alive() {
		return
	}
	bestDist := -1
	var best hexgrid.Coord
	for _, n := range hexgrid.Neighbors(u.Pos, b.Cols, b.Rows) {
		if b.unitAt(n) != nil {
			continue
		}
		if d := hexgrid.Distance(n, ref.Pos); d > bestDist {
			bestDist = d
			best = n
		}
	}
	if bestDist < 0 {
		return
	}
	u.Pos = best
	b.logf("%s #%d retreats to %d,%d", u.Name, u.ID, best.Col, best.Row)
}

// applyFreeze picks up to n random ready enemies within the actor's attack
// range and makes them skip their next turn.
func (b *Battle) applyFreeze(u *Unit, n int) {
	var pool []*Unit
	for _, v := range b.Units {
		if !v.Ready() || v.Player == u.Player {
			continue
		}
		if hexgrid.Distance(u.Pos, v.Pos) <= u.AttackRange {
			pool = append(pool, v)
		}
	}
	for i := 0; i < n && len(pool) > 0; i++ {
		k := b.rng.IntN(len(pool))
		t := pool[k]
		pool = append(pool[:k], pool[k+1:]...)
		t.FrozenTurns = 1
		b.logf("%s #%d freezes %s #%d", u.Name, u.ID, t.Name, t.ID)
	}
}

// applySummon spawns Blade units on empty hexes adjacent to the anchor:
// the summoner, or the highest-HP ally in range when configured.
func (b *Battle) applySummon(u *Unit, a Ability) {
	anchor := u
	if b.Opts.SummonToStrongest {
		rng := a.effectiveRange(u)
		for _, v := range b.Units {
			if !v.Alive() || v.Player != u.Player {
				continue
			}
			if hexgrid.Distance(u.Pos, v.Pos) > rng {
				continue
			}
			if v.HP > anchor.HP {
				anchor = v
			}
		}
	}
	spawned := 0
	for _, n := range hexgrid.Neighbors(anchor.Pos, b.Cols, b.Rows) {
		if spawned >= a.Count {
			break
		}
		if b.unitAt(n) != nil {
			continue
		}
		blade := b.newUnit(bladeSpec, u.Player, n)
		blade.HasActed = !b.Opts.SummonReady
		if b.Opts.SummonReady {
			b.turnOrder = append(b.turnOrder, blade.ID)
		}
		spawned++
	}
	if spawned > 0 {
		b.logf("%s #%d summons %d blades", u.Name, u.ID, spawned)
	}
}
