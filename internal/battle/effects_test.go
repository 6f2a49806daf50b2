package battle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warhex/internal/hexgrid"
)

func TestApplyPush(t *testing.T) {
	b, knight, orc := duel(t,
		UnitSpec{Name: "Knight", MaxHP: 10, Damage: 2, Range: 1},
		UnitSpec{Name: "Orc", MaxHP: 10, Damage: 2, Range: 1},
	)
	knight.Pos = hexgrid.Coord{Col: 4, Row: 2}
	orc.Pos = hexgrid.Coord{Col: 5, Row: 2}

	b.applyPush(knight, orc, 2)
	assert.Equal(t, hexgrid.Coord{Col: 7, Row: 2}, orc.Pos)

	// Pushing stops at the grid edge.
	b.applyPush(knight, orc, 50)
	assert.Equal(t, hexgrid.Coord{Col: b.Cols - 1, Row: 2}, orc.Pos)
}

func TestApplyPush_BlockedByUnit(t *testing.T) {
	army1 := []UnitSpec{{Name: "Knight", MaxHP: 10, Damage: 2, Range: 1, Count: 1}}
	army2 := []UnitSpec{
		{Name: "Orc", MaxHP: 10, Damage: 2, Range: 1, Count: 1},
		{Name: "Wall", MaxHP: 10, Damage: 1, Range: 1, Count: 1},
	}
	b := testBattle(t, army1, army2, 1)
	knight := unitNamed(t, b, "Knight")
	orc := unitNamed(t, b, "Orc")
	wall := unitNamed(t, b, "Wall")
	knight.Pos = hexgrid.Coord{Col: 4, Row: 2}
	orc.Pos = hexgrid.Coord{Col: 5, Row: 2}
	wall.Pos = hexgrid.Coord{Col: 7, Row: 2}

	b.applyPush(knight, orc, 3)
	assert.Equal(t, hexgrid.Coord{Col: 6, Row: 2}, orc.Pos, "push stops before an occupied hex")
}

func TestApplyFreeze(t *testing.T) {
	army1 := []UnitSpec{{Name: "Witch", MaxHP: 5, Damage: 1, Range: 1, Count: 1}}
	army2 := []UnitSpec{{Name: "Orc", MaxHP: 5, Damage: 1, Range: 1, Count: 3}}
	b := testBattle(t, army1, army2, 1)
	witch := unitNamed(t, b, "Witch")

	// Put all three orcs adjacent to the witch.
	witch.Pos = hexgrid.Coord{Col: 5, Row: 2}
	spots := []hexgrid.Coord{{Col: 6, Row: 2}, {Col: 4, Row: 2}, {Col: 5, Row: 1}}
	i := 0
	for _, u := range b.Units {
		if u.Player == 2 {
			u.Pos = spots[i]
			i++
		}
	}

	b.applyFreeze(witch, 2)
	frozen := 0
	for _, u := range b.Units {
		if u.Player == 2 && u.FrozenTurns > 0 {
			frozen++
		}
	}
	assert.Equal(t, 2, frozen)
}

func TestApplySummon(t *testing.T) {
	army1 := []UnitSpec{{Name: "Necromancer", MaxHP: 5, Damage: 1, Range: 2, Count: 1,
		Abilities: []Ability{{Trigger: TriggerPeriodic, Effect: EffectSummon, Count: 2}}}}
	army2 := []UnitSpec{{Name: "Orc", MaxHP: 5, Damage: 1, Range: 1, Count: 1}}
	b := testBattle(t, army1, army2, 1)
	necro := unitNamed(t, b, "Necromancer")
	before := len(b.Units)

	b.applySummon(necro, necro.Abilities[0])
	require.Len(t, b.Units, before+2)

	for _, u := range b.Units[before:] {
		assert.Equal(t, "Blade", u.Name)
		assert.Equal(t, 1, u.Player)
		assert.Equal(t, 1, hexgrid.Distance(necro.Pos, u.Pos))
		assert.True(t, u.HasActed, "summons wait a round by default")
	}
}

func TestApplySummon_ReadyOption(t *testing.T) {
	opts := DefaultOptions()
	opts.SummonReady = true
	army1 := []UnitSpec{{Name: "Necromancer", MaxHP: 5, Damage: 1, Range: 2, Count: 1,
		Abilities: []Ability{{Trigger: TriggerPeriodic, Effect: EffectSummon, Count: 1}}}}
	army2 := []UnitSpec{{Name: "Orc", MaxHP: 5, Damage: 1, Range: 1, Count: 1}}
	b, err := New(army1, army2, 1, opts)
	require.NoError(t, err)
	necro := unitNamed(t, b, "Necromancer")

	b.applySummon(necro, necro.Abilities[0])
	blade := b.Units[len(b.Units)-1]
	assert.False(t, blade.HasActed)
	assert.Contains(t, b.turnOrder, blade.ID, "ready summons join the current round")
}

func TestExecuteEffect_Execute(t *testing.T) {
	b, assassin, orc := duel(t,
		UnitSpec{Name: "Assassin", MaxHP: 5, Damage: 1, Range: 1},
		UnitSpec{Name: "Orc", MaxHP: 10, Damage: 1, Range: 1},
	)
	exec := Ability{Trigger: TriggerOnHit, Effect: EffectExecute, Target: TargetTarget, Value: 3}

	orc.HP = 4
	b.executeEffect(assassin, exec, abilityContext{target: orc})
	assert.True(t, orc.Alive(), "execute threshold not met")

	orc.HP = 3
	b.executeEffect(assassin, exec, abilityContext{target: orc})
	assert.False(t, orc.Alive(), "execute kills at or below the threshold, armor notwithstanding")
}

func TestExecuteEffect_BlockAndReady(t *testing.T) {
	b, captain, orc := duel(t,
		UnitSpec{Name: "Captain", MaxHP: 5, Damage: 1, Range: 1},
		UnitSpec{Name: "Orc", MaxHP: 10, Damage: 1, Range: 1},
	)

	block := Ability{Trigger: TriggerOnHit, Effect: EffectBlock, Target: TargetTarget, Value: 2}
	b.executeEffect(captain, block, abilityContext{target: orc})
	assert.Equal(t, 2, orc.FrozenTurns)

	captain.HasActed = true
	captain.FrozenTurns = 1
	ready := Ability{Trigger: TriggerPeriodic, Effect: EffectReady, Target: TargetSelf}
	b.executeEffect(captain, ready, abilityContext{})
	assert.Equal(t, 0, captain.FrozenTurns)
	assert.False(t, captain.HasActed)
	assert.Contains(t, b.turnOrder, captain.ID)
}

func TestExecuteEffect_Silence(t *testing.T) {
	b, bard, orc := duel(t,
		UnitSpec{Name: "Bard", MaxHP: 5, Damage: 1, Range: 1},
		UnitSpec{Name: "Orc", MaxHP: 10, Damage: 2, Range: 1,
			Abilities: []Ability{{Trigger: TriggerOnHit, Effect: EffectRamp, Value: 1}}},
	)

	silence := Ability{Trigger: TriggerOnHit, Effect: EffectSilence, Target: TargetTarget}
	b.executeEffect(bard, silence, abilityContext{target: orc})
	require.True(t, orc.Silenced)

	// A silenced unit's triggers never fire.
	b.triggerAbilities(orc, TriggerOnHit, abilityContext{target: bard})
	assert.Equal(t, 2, orc.Damage)
}

func TestEffectEvents_QueueAndApply(t *testing.T) {
	b, cleric, orc := duel(t,
		UnitSpec{Name: "Cleric", MaxHP: 10, Damage: 1, Range: 2},
		UnitSpec{Name: "Orc", MaxHP: 10, Damage: 2, Range: 1, Armor: 1},
	)

	heal := Ability{Trigger: TriggerPeriodic, Effect: EffectHeal, Target: TargetSelf, Value: 4}
	cleric.HP = 8
	b.executeEffect(cleric, heal, abilityContext{})

	// The state change is deferred until the event is applied.
	assert.Equal(t, 8, cleric.HP)
	events := b.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EffectHeal, events[0].Type)
	assert.Equal(t, 4, events[0].Amount)

	applied := b.DrainEvents()
	require.Len(t, applied, 1)
	assert.Equal(t, 10, cleric.HP, "heal clamps at max hp")
	assert.Empty(t, b.PendingEvents())

	// Sunder floors armor at zero.
	b.ApplyEffectEvent(EffectEvent{Type: EffectSunder, SourceID: cleric.ID, TargetID: orc.ID, Amount: 5})
	assert.Equal(t, 0, orc.Armor)

	// Events aimed at units that died in the meantime are dropped.
	orc.HP = 0
	hpBefore := orc.HP
	b.ApplyEffectEvent(EffectEvent{Type: EffectHeal, SourceID: cleric.ID, TargetID: orc.ID, Amount: 5})
	assert.Equal(t, hpBefore, orc.HP)
}

func TestEffectEvents_StrikeGoesThroughDamagePipeline(t *testing.T) {
	b, mage, orc := duel(t,
		UnitSpec{Name: "Mage", MaxHP: 5, Damage: 1, Range: 3},
		UnitSpec{Name: "Orc", MaxHP: 10, Damage: 2, Range: 1, Armor: 2},
	)

	b.ApplyEffectEvent(EffectEvent{Type: EffectStrike, SourceID: mage.ID, TargetID: orc.ID, Amount: 5})
	assert.Equal(t, 7, orc.HP, "strike damage is armor-mitigated")
}

func TestOnHitChargeGating(t *testing.T) {
	// A charge-3 onhit sunder fires on every third landed hit.
	b, knight, orc := duel(t,
		UnitSpec{Name: "Knight", MaxHP: 10, Damage: 2, Range: 1,
			Abilities: []Ability{{Trigger: TriggerOnHit, Effect: EffectSunder, Target: TargetTarget, Value: 1, Charge: 3}}},
		UnitSpec{Name: "Orc", MaxHP: 30, Damage: 1, Range: 1, Armor: 0},
	)
	orc.Armor = 2

	for i := 0; i < 3; i++ {
		b.triggerAbilities(knight, TriggerOnHit, abilityContext{target: orc})
	}
	b.DrainEvents()
	assert.Equal(t, 1, orc.Armor, "only the third hit sunders")

	for i := 0; i < 3; i++ {
		b.triggerAbilities(knight, TriggerOnHit, abilityContext{target: orc})
	}
	b.DrainEvents()
	assert.Equal(t, 0, orc.Armor)
}
