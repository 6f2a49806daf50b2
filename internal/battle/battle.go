// Package battle implements the deterministic hex-grid battle simulation:
// units, declarative abilities, the turn/round state machine, damage and
// status resolution, and snapshot-based undo. Two battles constructed from
// the same unit specs and seed produce byte-identical logs and outcomes.
package battle

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"warhex/internal/hexgrid"
)

// Grid dimensions. Columns are fixed; rows grow with the denser army's
// frontline so its shortest-range units fit one per row in their starting
// column.
const (
	Cols    = 12
	MinRows = 4
	MaxRows = 10
)

// staleRoundLimit is the number of consecutive identical round snapshots
// that force a draw.
const staleRoundLimit = 3

// Winner values. The battle is terminal as soon as Winner leaves
// WinnerNone; further steps never mutate state.
const (
	WinnerNone = -1
	WinnerDraw = 0
)

// Options are the battle rule knobs that vary by deployment.
type Options struct {
	// ApplyEventsImmediately drains queued effect-events at the end of
	// every step. Interactive consumers set it false and drain at their
	// own pace between steps.
	ApplyEventsImmediately bool `json:"apply_events_immediately" yaml:"apply_events_immediately"`
	// SummonReady lets summoned units act in the round they appear.
	SummonReady bool `json:"summon_ready" yaml:"summon_ready"`
	// SummonToStrongest places summons next to the highest-HP ally in
	// range instead of next to the summoner.
	SummonToStrongest bool `json:"summon_to_strongest" yaml:"summon_to_strongest"`
}

// DefaultOptions returns the headless-simulation defaults.
func DefaultOptions() Options {
	return Options{ApplyEventsImmediately: true}
}

// ActionType tags a step's LastAction descriptor.
type ActionType string

const (
	ActionAttack     ActionType = "attack"
	ActionMove       ActionType = "move"
	ActionMoveAttack ActionType = "move_attack"
)

// Action describes what the acting unit did during the last step, for an
// external renderer. It carries no game logic.
type Action struct {
	Type        ActionType     `json:"type"`
	AttackerPos *hexgrid.Coord `json:"attacker_pos,omitempty"`
	From        *hexgrid.Coord `json:"from,omitempty"`
	To          *hexgrid.Coord `json:"to,omitempty"`
	TargetPos   *hexgrid.Coord `json:"target_pos,omitempty"`
	Ranged      bool           `json:"ranged,omitempty"`
	Killed      bool           `json:"killed,omitempty"`
}

// Battle is the aggregate root. It owns all units (alive and dead), the
// turn order, the RNG stream that is the sole source of randomness, the
// action log and the undo history.
type Battle struct {
	Cols int `json:"cols"`
	Rows int `json:"rows"`

	Units    []*Unit  `json:"units"`
	RoundNum int      `json:"round"`
	Winner   int      `json:"winner"`
	Log      []string `json:"log"`

	// LastAction describes the most recent step for the renderer; nil
	// once the battle has ended.
	LastAction *Action `json:"last_action,omitempty"`

	Opts Options `json:"options"`

	turnOrder    []int // unit IDs, reshuffled each round
	currentIndex int
	nextID       int
	lastMover    int

	staleRepr   string
	staleRounds int

	pending []EffectEvent
	history []snapshot

	src *rand.PCG
	rng *rand.Rand
}

// New constructs a battle from two army spec lists and a seed. Specs are
// validated up front; a malformed spec is the only construction error.
func New(army1, army2 []UnitSpec, seed int64, opts Options) (*Battle, error) {
	for _, side := range [][]UnitSpec{army1, army2} {
		for _, s := range side {
			if err := s.Validate(); err != nil {
				return nil, err
			}
		}
	}

	front := frontlineCount(army1)
	if f2 := frontlineCount(army2); f2 > front {
		front = f2
	}
	rows := front
	if rows < MinRows {
		rows = MinRows
	}
	if rows > MaxRows {
		rows = MaxRows
	}

	src := rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)
	b := &Battle{
		Cols:      Cols,
		Rows:      rows,
		Winner:    WinnerNone,
		RoundNum:  1,
		Opts:      opts,
		nextID:    1,
		lastMover: 1,
		src:       src,
		rng:       rand.New(src),
	}
	if err := b.placeArmy(army1, 1); err != nil {
		return nil, err
	}
	if err := b.placeArmy(army2, 2); err != nil {
		return nil, err
	}
	b.turnOrder = b.shuffledLivingIDs()
	b.logf("Round 1 begins with %d vs %d units", b.countLiving(1), b.countLiving(2))
	return b, nil
}

// placeArmy spawns an army's units. The frontline (shortest-range) tier
// fills the column facing the enemy one unit per row; longer-range tiers
// fill the columns behind, spilling forward only when the back is full.
// Each side stays in its own half of the grid, so an army that would spill
// past the midline is rejected rather than stacked onto the other side.
func (b *Battle) placeArmy(specs []UnitSpec, player int) error {
	ordered := make([]UnitSpec, len(specs))
	copy(ordered, specs)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Range < ordered[j].Range })

	mid := b.Cols / 2
	var colSeq []int
	if player == 1 {
		colSeq = append(colSeq, 1, 0)
		for c := 2; c < mid; c++ {
			colSeq = append(colSeq, c)
		}
	} else {
		colSeq = append(colSeq, b.Cols-2, b.Cols-1)
		for c := b.Cols - 3; c >= mid; c-- {
			colSeq = append(colSeq, c)
		}
	}

	slot := 0
	for _, s := range ordered {
		for i := 0; i < s.Count; i++ {
			if slot/b.Rows >= len(colSeq) {
				return fmt.Errorf("army for player %d does not fit on a %dx%d grid", player, b.Cols, b.Rows)
			}
			pos := hexgrid.Coord{Col: colSeq[slot/b.Rows], Row: slot % b.Rows}
			b.newUnit(s, player, pos)
			slot++
		}
	}
	return nil
}

func (b *Battle) countLiving(player int) int {
	n := 0
	for _, u := range b.Units {
		if u.Alive() && u.Player == player {
			n++
		}
	}
	return n
}

// Survivors returns the name→count mapping of a side's living units, the
// final output the overworld layer consumes.
func (b *Battle) Survivors(player int) map[string]int {
	out := make(map[string]int)
	for _, u := range b.Units {
		if u.Alive() && u.Player == player {
			out[u.Name]++
		}
	}
	return out
}

// Decided reports whether a terminal condition has been reached.
func (b *Battle) Decided() bool { return b.Winner != WinnerNone }

func (b *Battle) logf(format string, args ...any) {
	b.Log = append(b.Log, fmt.Sprintf(format, args...))
}

func (b *Battle) shuffledLivingIDs() []int {
	var ids []int
	for _, u := range b.Units {
		if u.Alive() {
			ids = append(ids, u.ID)
		}
	}
	b.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	return ids
}

// snapshotRepr builds the canonical stalemate fingerprint of all living
// units: positions and combat stats, in ID order.
func (b *Battle) snapshotRepr() string {
	var sb strings.Builder
	n := 0
	for _, u := range b.Units {
		if !u.Alive() {
			continue
		}
		n++
		fmt.Fprintf(&sb, "%d:%d:%d,%d:%d:%d;", u.ID, u.HP, u.Pos.Col, u.Pos.Row, u.Armor, u.Damage)
	}
	fmt.Fprintf(&sb, "#%d", n)
	return sb.String()
}

// Step simulates one unit-turn. It returns false once the battle has
// reached a terminal state; calling it again is a no-op.
func (b *Battle) Step() bool {
	if b.Decided() {
		b.LastAction = nil
		return false
	}
	b.pushSnapshot()

	if b.checkVictory() {
		b.LastAction = nil
		return false
	}

	u := b.nextActor()
	if u == nil {
		// Stalemate draw declared while advancing rounds.
		b.LastAction = nil
		return false
	}
	b.lastMover = u.Player

	b.triggerAbilities(u, TriggerTurnStart, abilityContext{})
	if u.Alive() {
		b.act(u)
	}
	if u.Alive() {
		b.triggerAbilities(u, TriggerPeriodic, abilityContext{})
	}
	if b.Opts.ApplyEventsImmediately {
		b.DrainEvents()
	}

	u.HasActed = true
	b.currentIndex++
	return true
}

// checkVictory sets the winner when a side has no living units left. When
// both sides are empty (simultaneous-death effects) the mover's side wins.
func (b *Battle) checkVictory() bool {
	p1, p2 := b.countLiving(1), b.countLiving(2)
	switch {
	case p1 == 0 && p2 == 0:
		b.Winner = b.lastMover
	case p1 == 0:
		b.Winner = 2
	case p2 == 0:
		b.Winner = 1
	default:
		return false
	}
	b.logf("Player %d wins the battle", b.Winner)
	return true
}

// nextActor advances the turn pointer past dead and frozen units, rolling
// into a fresh round whenever the order is exhausted. It returns nil when
// stalemate detection declares a draw.
func (b *Battle) nextActor() *Unit {
	for {
		if b.currentIndex >= len(b.turnOrder) {
			if b.endRound() {
				return nil
			}
			continue
		}
		u := b.UnitByID(b.turnOrder[b.currentIndex])
		if u == nil || !u.Alive() {
			b.currentIndex++
			continue
		}
		if u.FrozenTurns > 0 {
			u.FrozenTurns--
			u.HasActed = true
			b.logf("%s #%d is frozen and skips a turn", u.Name, u.ID)
			b.currentIndex++
			continue
		}
		return u
	}
}

// endRound runs stalemate detection and starts the next round. It returns
// true when the battle ends in a draw.
func (b *Battle) endRound() bool {
	repr := b.snapshotRepr()
	if repr == b.staleRepr {
		b.staleRounds++
	} else {
		b.staleRepr = repr
		b.staleRounds = 1
	}
	if b.staleRounds >= staleRoundLimit {
		b.Winner = WinnerDraw
		b.logf("Stalemate after %d identical rounds: draw", staleRoundLimit)
		return true
	}

	for _, u := range b.Units {
		if u.Alive() {
			u.HasActed = false
		}
	}
	b.turnOrder = b.shuffledLivingIDs()
	b.currentIndex = 0
	b.RoundNum++
	b.logf("Round %d begins", b.RoundNum)
	return false
}

// act performs the unit's attack / move / move+attack decision.
func (b *Battle) act(u *Unit) {
	if in := b.enemiesWithin(u, u.AttackRange); len(in) > 0 {
		tgt := in[b.rng.IntN(len(in))]
		b.resolveAttack(u, tgt, nil)
		return
	}

	from := u.Pos
	moved := b.moveToward(u)
	if !moved {
		// Boxed in: nothing to animate beyond holding position.
		pos := u.Pos
		b.LastAction = &Action{Type: ActionMove, From: &pos, To: &pos}
		return
	}
	if in := b.enemiesWithin(u, u.AttackRange); len(in) > 0 {
		tgt := in[b.rng.IntN(len(in))]
		b.resolveAttack(u, tgt, &from)
		return
	}
	to := u.Pos
	b.LastAction = &Action{Type: ActionMove, From: &from, To: &to}
	b.logf("%s #%d moves to %d,%d", u.Name, u.ID, to.Col, to.Row)
}

// resolveAttack applies the attacker's damage, records the action
// descriptor and fires onhit triggers when the blow landed.
func (b *Battle) resolveAttack(u, tgt *Unit, movedFrom *hexgrid.Coord) {
	tgtPos := tgt.Pos
	dealt := b.ApplyDamage(tgt, u.Damage, u)
	killed := !tgt.Alive()
	ranged := u.AttackRange > 1

	if killed {
		b.logf("%s #%d attacks %s #%d for %d and kills it", u.Name, u.ID, tgt.Name, tgt.ID, dealt)
	} else {
		b.logf("%s #%d attacks %s #%d for %d", u.Name, u.ID, tgt.Name, tgt.ID, dealt)
	}

	attackerPos := u.Pos
	if movedFrom != nil {
		to := u.Pos
		b.LastAction = &Action{Type: ActionMoveAttack, From: movedFrom, To: &to, TargetPos: &tgtPos, Ranged: ranged, Killed: killed}
	} else {
		b.LastAction = &Action{Type: ActionAttack, AttackerPos: &attackerPos, TargetPos: &tgtPos, Ranged: ranged, Killed: killed}
	}

	if dealt > 0 {
		b.triggerAbilities(u, TriggerOnHit, abilityContext{target: tgt})
	}
}

// moveToward walks the unit one step toward its nearest enemy by true path
// length, or teleports it via a ready shadowstep. Returns false when the
// unit held position.
func (b *Battle) moveToward(u *Unit) bool {
	enemies := b.livingEnemies(u)
	if len(enemies) == 0 {
		return false
	}
	occ := b.occupiedExcept(u)

	best := hexgrid.Unreachable + 1
	var nearest []*Unit
	for _, e := range enemies {
		d := hexgrid.PathLength(u.Pos, e.Pos, occ, b.Cols, b.Rows)
		if d < best {
			best = d
			nearest = nearest[:0]
			nearest = append(nearest, e)
		} else if d == best {
			nearest = append(nearest, e)
		}
	}
	goal := nearest[b.rng.IntN(len(nearest))]

	if !u.Silenced {
		for i, a := range u.Abilities {
			if a.Trigger == TriggerPeriodic && a.Effect == EffectShadowstep {
				if u.chargeReady(i, a) && b.shadowstep(u, enemies, occ) {
					return true
				}
				break
			}
		}
	}

	to := hexgrid.NextStep(u.Pos, goal.Pos, occ, b.Cols, b.Rows)
	if to == u.Pos || b.unitAt(to) != nil {
		return false
	}
	u.Pos = to
	return true
}

// shadowstep teleports the unit next to its furthest path-reachable enemy,
// the assassin's opening move. Returns false when no enemy has a free
// adjacent hex.
func (b *Battle) shadowstep(u *Unit, enemies []*Unit, occ map[hexgrid.Coord]bool) bool {
	best := -1
	var furthest []*Unit
	for _, e := range enemies {
		d := hexgrid.PathLength(u.Pos, e.Pos, occ, b.Cols, b.Rows)
		if d >= hexgrid.Unreachable {
			continue
		}
		if d > best {
			best = d
			furthest = furthest[:0]
			furthest = append(furthest, e)
		} else if d == best {
			furthest = append(furthest, e)
		}
	}
	if len(furthest) == 0 {
		return false
	}
	tgt := furthest[b.rng.IntN(len(furthest))]

	var free []hexgrid.Coord
	for _, n := range hexgrid.Neighbors(tgt.Pos, b.Cols, b.Rows) {
		if !occ[n] {
			free = append(free, n)
		}
	}
	if len(free) == 0 {
		return false
	}
	dest := free[b.rng.IntN(len(free))]
	b.logf("%s #%d shadowsteps to %d,%d", u.Name, u.ID, dest.Col, dest.Row)
	u.Pos = dest
	return true
}
