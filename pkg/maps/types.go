// Package maps handles arena loading, processing, and generation.
package maps

import "grid-tactics/internal/battle"

// RawMap is the format stored in JSON files.
type RawMap struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	Rows      []string    `json:"rows"`                // One string per row, see CellKind
	Elevation [][]float64 `json:"elevation,omitempty"` // Optional, same shape as rows
}

// Map is the processed, runtime arena data.
type Map struct {
	ID     string
	Name   string
	Width  int
	Height int

	// Cells[y][x] is the kind of each cell
	Cells [][]CellKind

	// Elevation[y][x], 0 when the file has none
	Elevation [][]float64

	// Region[y][x] is the walkable region a cell belongs to (0 for void)
	Region [][]int

	// Regions indexed by ID (1+)
	Regions map[int]*Region
}

// Region is a set of walkable cells connected through orthogonal steps
// within the elevation limit.
type Region struct {
	ID          int
	Cells       [][2]int // List of [x,y] coordinates
	PlayerCells int      // Player deploy cells in the region
	EnemyCells  int      // Enemy deploy cells in the region
}

// CellAt returns the cell kind at the given coordinates.
// Returns CellVoid if out of bounds.
func (m *Map) CellAt(x, y int) CellKind {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return CellVoid
	}
	return m.Cells[y][x]
}

// ElevationAt returns the elevation at the given coordinates.
func (m *Map) ElevationAt(x, y int) float64 {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return 0
	}
	return m.Elevation[y][x]
}

// TileCount returns the number of walkable cells.
func (m *Map) TileCount() int {
	n := 0
	for _, row := range m.Cells {
		for _, c := range row {
			if c.Walkable() {
				n++
			}
		}
	}
	return n
}

// ZoneCount returns the number of deploy cells for a team.
func (m *Map) ZoneCount(team battle.Team) int {
	want := CellPlayerZone
	if team == battle.TeamEnemy {
		want = CellEnemyZone
	}
	n := 0
	for _, row := range m.Cells {
		for _, c := range row {
			if c == want {
				n++
			}
		}
	}
	return n
}

// Contested reports whether some region holds deploy cells of both teams,
// so the two sides can actually reach each other.
func (m *Map) Contested() bool {
	for _, r := range m.Regions {
		if r.PlayerCells > 0 && r.EnemyCells > 0 {
			return true
		}
	}
	return false
}

// BuildGrid creates a fresh battlefield from the map. Every call returns a
// new grid, so each battle gets its own tile state.
func (m *Map) BuildGrid() *battle.Grid {
	g := battle.NewGrid()
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			c := m.Cells[y][x]
			if !c.Walkable() {
				continue
			}
			t := g.AddTile(battle.Coord{X: x, Y: y}, m.Elevation[y][x])
			t.PlayerDeployZone = c == CellPlayerZone
			t.EnemyDeployZone = c == CellEnemyZone
		}
	}
	return g
}
