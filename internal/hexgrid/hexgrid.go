// Package hexgrid implements geometry and pathfinding over an even-row
// offset hex grid. Offset coordinates are converted to cube coordinates
// for distance math; neighbor direction sets depend on row parity.
package hexgrid

// Coord is a (column, row) position on an even-row offset hex grid.
type Coord struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// Unreachable is the sentinel returned by PathLength when no path exists.
const Unreachable = 9999

type cube struct {
	x, y, z int
}

func toCube(c Coord) cube {
	x := c.Col - floorDiv(c.Row, 2)
	z := c.Row
	return cube{x: x, y: -x - z, z: z}
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Distance returns the hex distance between two offset coordinates.
func Distance(a, b Coord) int {
	ac := toCube(a)
	bc := toCube(b)
	d := abs(ac.x - bc.x)
	if dy := abs(ac.y - bc.y); dy > d {
		d = dy
	}
	if dz := abs(ac.z - bc.z); dz > d {
		d = dz
	}
	return d
}

// Direction sets for even-row offset layout. Even rows and odd rows shift
// their diagonal neighbors in opposite column directions.
var (
	evenRowDirs = [6][2]int{{1, 0}, {-1, 0}, {0, -1}, {-1, -1}, {0, 1}, {-1, 1}}
	oddRowDirs  = [6][2]int{{1, 0}, {-1, 0}, {1, -1}, {0, -1}, {1, 1}, {0, 1}}
)

// Neighbors returns the in-bounds neighbors of (col, row) on a cols×rows grid.
func Neighbors(c Coord, cols, rows int) []Coord {
	dirs := evenRowDirs
	if c.Row%2 != 0 {
		dirs = oddRowDirs
	}
	out := make([]Coord, 0, 6)
	for _, d := range dirs {
		n := Coord{Col: c.Col + d[0], Row: c.Row + d[1]}
		if n.Col < 0 || n.Col >= cols || n.Row < 0 || n.Row >= rows {
			continue
		}
		out = append(out, n)
	}
	return out
}
