// Package battle contains the turn-based tactical combat core: the tile grid,
// reservations, path and range queries, planning, the turn system, executors
// and the enemy AI.
//
// A Battle is not safe for concurrent use. All calls into one battle must come
// from a single goroutine; the server runs each battle on its own session loop.
package battle

import "math"

// MaxClimb is the elevation difference at which two tiles stop being
// neighbors.
const MaxClimb = 1.0

// Coord is an integer grid coordinate.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the coordinate offset by dx, dy.
func (c Coord) Add(dx, dy int) Coord {
	return Coord{X: c.X + dx, Y: c.Y + dy}
}

// ManhattanDistance returns |dx| + |dy| between two coordinates.
func ManhattanDistance(a, b Coord) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// ChebyshevDistance returns max(|dx|, |dy|) between two coordinates.
func ChebyshevDistance(a, b Coord) int {
	dx, dy := abs(a.X-b.X), abs(a.Y-b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// IsAdjacent reports whether b is one of the 8 tiles surrounding a.
// A coordinate is never adjacent to itself.
func IsAdjacent(a, b Coord) bool {
	return ChebyshevDistance(a, b) == 1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Tile is one addressable grid cell.
// Occupancy and reservation flags are written only through Reservations.
type Tile struct {
	Coord            Coord   `json:"coord"`
	Elevation        float64 `json:"elevation"`
	PlayerDeployZone bool    `json:"playerDeployZone"`
	EnemyDeployZone  bool    `json:"enemyDeployZone"`

	occupied     bool // a unit stands here
	tempReserved bool // a plan targets this tile during planning
	turnReserved bool // locked for the rest of the round
}

// Occupied reports whether a unit currently stands on the tile.
func (t *Tile) Occupied() bool { return t.occupied }

// TempReserved reports whether a plan in progress targets the tile.
func (t *Tile) TempReserved() bool { return t.tempReserved }

// TurnReserved reports whether the tile is locked for the whole round.
func (t *Tile) TurnReserved() bool { return t.turnReserved }

// Blocked reports whether searches must skip the tile.
// Temporarily reserved tiles are not blocked.
func (t *Tile) Blocked() bool {
	return t.occupied || t.turnReserved
}

// Grid is the battlefield: at most one Tile per coordinate.
type Grid struct {
	tiles map[Coord]*Tile
	order []*Tile // insertion order, keeps iteration deterministic
}

// NewGrid creates an empty grid.
func NewGrid() *Grid {
	return &Grid{tiles: make(map[Coord]*Tile)}
}

// AddTile adds a tile at c. If a tile already exists there it is returned
// unchanged.
func (g *Grid) AddTile(c Coord, elevation float64) *Tile {
	if t, ok := g.tiles[c]; ok {
		return t
	}
	t := &Tile{Coord: c, Elevation: elevation}
	g.tiles[c] = t
	g.order = append(g.order, t)
	return t
}

// TileAt returns the tile at c, or nil if the grid has none there.
func (g *Grid) TileAt(c Coord) *Tile {
	return g.tiles[c]
}

// Len returns the number of tiles.
func (g *Grid) Len() int {
	return len(g.order)
}

// Tiles returns every tile in insertion order.
func (g *Grid) Tiles() []*Tile {
	out := make([]*Tile, len(g.order))
	copy(out, g.order)
	return out
}

// Neighbors4 returns the orthogonal neighbors of c that exist and sit within
// the elevation tolerance. Order is +x, -x, +y, -y.
func (g *Grid) Neighbors4(c Coord) []*Tile {
	origin := g.tiles[c]
	if origin == nil {
		return nil
	}
	dirs := [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	out := make([]*Tile, 0, 4)
	for _, d := range dirs {
		if n := g.neighbor(origin, d[0], d[1]); n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Neighbors8 returns all 8 surrounding tiles of c that exist and sit within
// the elevation tolerance, row by row from the lowest y.
func (g *Grid) Neighbors8(c Coord) []*Tile {
	origin := g.tiles[c]
	if origin == nil {
		return nil
	}
	out := make([]*Tile, 0, 8)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if n := g.neighbor(origin, dx, dy); n != nil {
				out = append(out, n)
			}
		}
	}
	return out
}

// Adjacent reports whether b is one of the Neighbors8 of a, so a cliff
// between two touching tiles breaks adjacency.
func (g *Grid) Adjacent(a, b Coord) bool {
	for _, n := range g.Neighbors8(a) {
		if n.Coord == b {
			return true
		}
	}
	return false
}

func (g *Grid) neighbor(origin *Tile, dx, dy int) *Tile {
	n := g.tiles[origin.Coord.Add(dx, dy)]
	if n == nil {
		return nil
	}
	if !Walkable(origin.Elevation, n.Elevation) {
		return nil
	}
	return n
}

// Walkable reports whether a unit can step between two elevations.
func Walkable(from, to float64) bool {
	return math.Abs(to-from) < MaxClimb
}

// DeployZone returns the tiles flagged as deploy zone for a team,
// in insertion order.
func (g *Grid) DeployZone(team Team) []*Tile {
	var out []*Tile
	for _, t := range g.order {
		if (team == TeamPlayer && t.PlayerDeployZone) || (team == TeamEnemy && t.EnemyDeployZone) {
			out = append(out, t)
		}
	}
	return out
}
