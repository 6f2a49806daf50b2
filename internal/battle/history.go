package battle

import "warhex/internal/hexgrid"

// unitState is the immutable per-unit snapshot. Abilities are static for a
// unit's lifetime and shared by reference.
type unitState struct {
	hp          int
	damage      int
	armor       int
	pos         hexgrid.Coord
	hasActed    bool
	bonusDamage int
	frozenTurns int
	silenced    bool
	charges     map[chargeKey]int
}

// snapshot captures everything Step may mutate, including the RNG stream
// state, so undo is bit-exact.
type snapshot struct {
	units        []unitState
	nextID       int
	turnOrder    []int
	currentIndex int
	roundNum     int
	winner       int
	lastMover    int
	staleRepr    string
	staleRounds  int
	logLen       int
	lastAction   *Action
	pending      []EffectEvent
	rngState     []byte
}

func (b *Battle) pushSnapshot() {
	snap := snapshot{
		units:        make([]unitState, len(b.Units)),
		nextID:       b.nextID,
		turnOrder:    append([]int(nil), b.turnOrder...),
		currentIndex: b.currentIndex,
		roundNum:     b.RoundNum,
		winner:       b.Winner,
		lastMover:    b.lastMover,
		staleRepr:    b.staleRepr,
		staleRounds:  b.staleRounds,
		logLen:       len(b.Log),
		lastAction:   copyAction(b.LastAction),
		pending:      append([]EffectEvent(nil), b.pending...),
	}
	for i, u := range b.Units {
		charges := make(map[chargeKey]int, len(u.charges))
		for k, v := range u.charges {
			charges[k] = v
		}
		snap.units[i] = unitState{
			hp:          u.HP,
			damage:      u.Damage,
			armor:       u.Armor,
			pos:         u.Pos,
			hasActed:    u.HasActed,
			bonusDamage: u.BonusDamage,
			frozenTurns: u.FrozenTurns,
			silenced:    u.Silenced,
			charges:     charges,
		}
	}
	state, _ := b.src.MarshalBinary()
	snap.rngState = state
	b.history = append(b.history, snap)
}

// HistoryLen reports how many steps can be undone.
func (b *Battle) HistoryLen() int { return len(b.history) }

// Undo restores the battle to the state before the most recent Step,
// removing any units summoned during it. It returns false when there is
// nothing to undo.
func (b *Battle) Undo() bool {
	if len(b.history) == 0 {
		return false
	}
	snap := b.history[len(b.history)-1]
	b.history = b.history[:len(b.history)-1]

	// Units are only ever appended, so truncating removes exactly the
	// units summoned after the snapshot.
	b.Units = b.Units[:len(snap.units)]
	for i, u := range b.Units {
		st := snap.units[i]
		u.HP = st.hp
		u.Damage = st.damage
		u.Armor = st.armor
		u.Pos = st.pos
		u.HasActed = st.hasActed
		u.BonusDamage = st.bonusDamage
		u.FrozenTurns = st.frozenTurns
		u.Silenced = st.silenced
		u.charges = make(map[chargeKey]int, len(st.charges))
		for k, v := range st.charges {
			u.charges[k] = v
		}
	}
	b.nextID = snap.nextID
	b.turnOrder = append([]int(nil), snap.turnOrder...)
	b.currentIndex = snap.currentIndex
	b.RoundNum = snap.roundNum
	b.Winner = snap.winner
	b.lastMover = snap.lastMover
	b.staleRepr = snap.staleRepr
	b.staleRounds = snap.staleRounds
	b.Log = b.Log[:snap.logLen]
	b.LastAction = copyAction(snap.lastAction)
	b.pending = append([]EffectEvent(nil), snap.pending...)
	_ = b.src.UnmarshalBinary(snap.rngState)
	return true
}

func copyAction(a *Action) *Action {
	if a == nil {
		return nil
	}
	out := *a
	out.AttackerPos = copyCoord(a.AttackerPos)
	out.From = copyCoord(a.From)
	out.To = copyCoord(a.To)
	out.TargetPos = copyCoord(a.TargetPos)
	return &out
}

func copyCoord(c *hexgrid.Coord) *hexgrid.Coord {
	if c == nil {
		return nil
	}
	v := *c
	return &v
}
