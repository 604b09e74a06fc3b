package maps

import "grid-tactics/internal/battle"

// Process takes a validated raw map and computes all derived data.
func Process(raw *RawMap) *Map {
	m := &Map{
		ID:      raw.ID,
		Name:    raw.Name,
		Width:   raw.Width,
		Height:  raw.Height,
		Regions: make(map[int]*Region),
	}

	// Step 1: Parse cells
	m.Cells = make([][]CellKind, m.Height)
	for y, row := range raw.Rows {
		m.Cells[y] = make([]CellKind, m.Width)
		for x, r := range []rune(row) {
			kind, _ := ParseCell(r)
			m.Cells[y][x] = kind
		}
	}

	// Step 2: Copy elevation, flat when absent
	m.Elevation = make([][]float64, m.Height)
	for y := range m.Elevation {
		m.Elevation[y] = make([]float64, m.Width)
		if len(raw.Elevation) == m.Height {
			copy(m.Elevation[y], raw.Elevation[y])
		}
	}

	// Step 3: Flood fill walkable regions
	floodFillRegions(m)

	return m
}

// floodFillRegions identifies and numbers connected walkable regions.
func floodFillRegions(m *Map) {
	m.Region = make([][]int, m.Height)
	for y := range m.Region {
		m.Region[y] = make([]int, m.Width)
	}

	regionID := 1
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if !m.Cells[y][x].Walkable() || m.Region[y][x] != 0 {
				continue
			}

			r := &Region{ID: regionID, Cells: floodFill(m, x, y, regionID)}
			for _, cell := range r.Cells {
				switch m.Cells[cell[1]][cell[0]] {
				case CellPlayerZone:
					r.PlayerCells++
				case CellEnemyZone:
					r.EnemyCells++
				}
			}
			m.Regions[regionID] = r
			regionID++
		}
	}
}

// floodFill does a flood fill from a starting point, returning all cells
// reachable from it and marking them with id.
func floodFill(m *Map, startX, startY, id int) [][2]int {
	cells := make([][2]int, 0)
	queue := [][2]int{{startX, startY}}
	m.Region[startY][startX] = id

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		x, y := current[0], current[1]

		cells = append(cells, [2]int{x, y})

		// Same neighbor order as the battle grid
		dirs := [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
		for _, d := range dirs {
			nx, ny := x+d[0], y+d[1]
			if m.CellAt(nx, ny).Walkable() && m.Region[ny][nx] == 0 &&
				battle.Walkable(m.Elevation[y][x], m.Elevation[ny][nx]) {
				m.Region[ny][nx] = id
				queue = append(queue, [2]int{nx, ny})
			}
		}
	}

	return cells
}
