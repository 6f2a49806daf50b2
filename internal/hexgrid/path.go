package hexgrid

import "sort"

// orderedNeighbors returns the in-bounds neighbors of c sorted by the
// priority used during pathfinding: closer to the goal first, horizontal
// moves (same row) before vertical ones, then a fixed coordinate order so
// ties never depend on map iteration.
func orderedNeighbors(c, goal Coord, cols, rows int) []Coord {
	ns := Neighbors(c, cols, rows)
	sort.Slice(ns, func(i, j int) bool {
		di, dj := Distance(ns[i], goal), Distance(ns[j], goal)
		if di != dj {
			return di < dj
		}
		hi, hj := 0, 0
		if ns[i].Row != c.Row {
			hi = 1
		}
		if ns[j].Row != c.Row {
			hj = 1
		}
		if hi != hj {
			return hi < hj
		}
		if ns[i].Col != ns[j].Col {
			return ns[i].Col < ns[j].Col
		}
		return ns[i].Row < ns[j].Row
	})
	return ns
}

// NextStep returns the first hex on a shortest path from start toward goal,
// avoiding occupied hexes. The goal itself is always a legal terminal node
// even when occupied, so a unit can path "to" an enemy it intends to fight.
// When no full path exists the best unoccupied neighbor of start is
// returned, and when the unit is completely boxed in, start itself: the
// caller always receives a hex, never an error.
func NextStep(start, goal Coord, occupied map[Coord]bool, cols, rows int) Coord {
	if start == goal {
		return start
	}
	parent := map[Coord]Coord{start: start}
	queue := []Coord{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range orderedNeighbors(cur, goal, cols, rows) {
			if _, seen := parent[n]; seen {
				continue
			}
			if occupied[n] && n != goal {
				continue
			}
			parent[n] = cur
			if n == goal {
				// Walk back to the hex right after start.
				step := n
				for parent[step] != start {
					step = parent[step]
				}
				return step
			}
			queue = append(queue, n)
		}
	}
	// No path: fall back to the unoccupied neighbor that makes the most
	// progress, holding position if every neighbor is taken.
	for _, n := range orderedNeighbors(start, goal, cols, rows) {
		if !occupied[n] {
			return n
		}
	}
	return start
}

// PathLength returns the number of steps on a shortest path from start to
// goal, treating the goal as enterable even when occupied. It returns
// Unreachable instead of failing when no path exists.
func PathLength(start, goal Coord, occupied map[Coord]bool, cols, rows int) int {
	if start == goal {
		return 0
	}
	dist := map[Coord]int{start: 0}
	queue := []Coord{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range Neighbors(cur, cols, rows) {
			if _, seen := dist[n]; seen {
				continue
			}
			if occupied[n] && n != goal {
				continue
			}
			dist[n] = dist[cur] + 1
			if n == goal {
				return dist[n]
			}
			queue = append(queue, n)
		}
	}
	return Unreachable
}

// Reachable returns every hex reachable from start within the given number
// of steps, excluding occupied hexes and start itself.
func Reachable(start Coord, steps, cols, rows int, occupied map[Coord]bool) map[Coord]struct{} {
	out := make(map[Coord]struct{})
	dist := map[Coord]int{start: 0}
	queue := []Coord{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if dist[cur] >= steps {
			continue
		}
		for _, n := range Neighbors(cur, cols, rows) {
			if _, seen := dist[n]; seen {
				continue
			}
			if occupied[n] {
				continue
			}
			dist[n] = dist[cur] + 1
			out[n] = struct{}{}
			queue = append(queue, n)
		}
	}
	return out
}
