package maps

import (
	"fmt"
	"strings"
)

// Debug returns a string visualization of the map.
func (m *Map) Debug() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Map: %s (%s)\n", m.Name, m.ID))
	sb.WriteString(fmt.Sprintf("Size: %dx%d\n", m.Width, m.Height))
	sb.WriteString(fmt.Sprintf("Tiles: %d\n", m.TileCount()))
	sb.WriteString(fmt.Sprintf("Regions: %d\n\n", len(m.Regions)))

	// Print cell grid
	sb.WriteString("Cells:\n")
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			sb.WriteRune(m.Cells[y][x].Rune())
		}
		sb.WriteString("\n")
	}

	// Print region details
	sb.WriteString("\nRegions:\n")
	for id := 1; id <= len(m.Regions); id++ {
		r := m.Regions[id]
		if r == nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %d. %d cells\n", r.ID, len(r.Cells)))
		sb.WriteString(fmt.Sprintf("     Player deploy: %d\n", r.PlayerCells))
		sb.WriteString(fmt.Sprintf("     Enemy deploy: %d\n", r.EnemyCells))
	}

	return sb.String()
}

// ElevationMap prints the elevation of each walkable cell, rounded.
func (m *Map) ElevationMap() string {
	var sb strings.Builder

	sb.WriteString("Elevation:\n")
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if !m.Cells[y][x].Walkable() {
				sb.WriteString("  #")
				continue
			}
			sb.WriteString(fmt.Sprintf("%3.0f", m.Elevation[y][x]))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
