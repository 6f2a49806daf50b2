package hexgrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance_KnownPairs(t *testing.T) {
	cases := []struct {
		a, b Coord
		want int
	}{
		{Coord{0, 0}, Coord{0, 0}, 0},
		{Coord{0, 0}, Coord{1, 0}, 1},
		{Coord{0, 0}, Coord{5, 0}, 5},
		{Coord{0, 0}, Coord{0, 2}, 2},
		{Coord{2, 2}, Coord{2, 3}, 1},
		{Coord{1, 1}, Coord{1, 0}, 1},
		{Coord{0, 0}, Coord{3, 3}, 5},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Distance(c.a, c.b), "distance %v -> %v", c.a, c.b)
		assert.Equal(t, c.want, Distance(c.b, c.a), "distance must be symmetric")
	}
}

func TestDistance_NeighborsAreAdjacent(t *testing.T) {
	// Every neighbor on either row parity sits at distance exactly 1.
	for _, c := range []Coord{{5, 4}, {5, 5}} {
		for _, n := range Neighbors(c, 12, 10) {
			assert.Equal(t, 1, Distance(c, n), "neighbor %v of %v", n, c)
		}
	}
}

func TestNeighbors_Bounds(t *testing.T) {
	assert.Len(t, Neighbors(Coord{5, 4}, 12, 10), 6)
	// The origin corner keeps only in-bounds hexes.
	for _, n := range Neighbors(Coord{0, 0}, 12, 10) {
		assert.True(t, n.Col >= 0 && n.Row >= 0)
	}
	assert.Len(t, Neighbors(Coord{0, 0}, 12, 10), 2)
}

func TestNextStep_StraightLine(t *testing.T) {
	occ := map[Coord]bool{}
	step := NextStep(Coord{0, 0}, Coord{3, 0}, occ, 12, 10)
	assert.Equal(t, Coord{1, 0}, step)
}

func TestNextStep_AroundBlockedHex(t *testing.T) {
	occ := map[Coord]bool{{Col: 1, Row: 0}: true}
	step := NextStep(Coord{0, 0}, Coord{3, 0}, occ, 12, 10)
	assert.Equal(t, Coord{0, 1}, step)
}

func TestNextStep_OccupiedGoalIsEnterable(t *testing.T) {
	// Pathing toward an enemy's hex must succeed even though the hex is
	// occupied; the caller decides whether to actually enter it.
	occ := map[Coord]bool{{Col: 1, Row: 0}: true}
	step := NextStep(Coord{0, 0}, Coord{1, 0}, occ, 12, 10)
	assert.Equal(t, Coord{1, 0}, step)
}

func TestNextStep_BoxedInHoldsPosition(t *testing.T) {
	occ := map[Coord]bool{{Col: 1, Row: 0}: true, {Col: 0, Row: 1}: true}
	step := NextStep(Coord{0, 0}, Coord{5, 5}, occ, 12, 10)
	assert.Equal(t, Coord{0, 0}, step)
}

func TestNextStep_NoPathFallsBackToNeighbor(t *testing.T) {
	// Wall off column 1 completely; the goal beyond it is unreachable and
	// NextStep degrades to the best free neighbor instead of erroring.
	occ := map[Coord]bool{}
	for r := 0; r < 10; r++ {
		occ[Coord{Col: 1, Row: r}] = true
	}
	require.Equal(t, Unreachable, PathLength(Coord{0, 0}, Coord{3, 0}, occ, 12, 10))

	step := NextStep(Coord{0, 0}, Coord{3, 0}, occ, 12, 10)
	assert.Equal(t, Coord{0, 1}, step)
}

func TestNextStep_Deterministic(t *testing.T) {
	occ := map[Coord]bool{
		{Col: 3, Row: 2}: true,
		{Col: 3, Row: 3}: true,
		{Col: 4, Row: 2}: true,
	}
	first := NextStep(Coord{2, 2}, Coord{7, 3}, occ, 12, 10)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, NextStep(Coord{2, 2}, Coord{7, 3}, occ, 12, 10))
	}
}

func TestPathLength_MatchesDistanceOnEmptyGrid(t *testing.T) {
	start := Coord{2, 3}
	for _, goal := range []Coord{{2, 3}, {3, 3}, {8, 1}, {0, 9}, {11, 0}} {
		assert.Equal(t, Distance(start, goal), PathLength(start, goal, nil, 12, 10), "goal %v", goal)
	}
}

func TestReachable(t *testing.T) {
	got := Reachable(Coord{5, 4}, 1, 12, 10, nil)
	assert.Len(t, got, 6)
	_, hasStart := got[Coord{5, 4}]
	assert.False(t, hasStart, "start must be excluded")

	occ := map[Coord]bool{{Col: 6, Row: 4}: true}
	got = Reachable(Coord{5, 4}, 1, 12, 10, occ)
	assert.Len(t, got, 5)
	_, hasOcc := got[Coord{6, 4}]
	assert.False(t, hasOcc, "occupied hexes are excluded")

	// Two steps reach strictly more than one.
	assert.Greater(t, len(Reachable(Coord{5, 4}, 2, 12, 10, nil)), 6)
}
