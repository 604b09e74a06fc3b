package maps

import "fmt"

// CellKind is one character of a map row.
type CellKind int

const (
	CellVoid       CellKind = iota // '#' or ' '
	CellFloor                      // '.'
	CellPlayerZone                 // 'P'
	CellEnemyZone                  // 'E'
)

// Walkable reports whether the cell becomes a tile.
func (c CellKind) Walkable() bool {
	return c != CellVoid
}

// Rune returns the map file character for the cell.
func (c CellKind) Rune() rune {
	switch c {
	case CellFloor:
		return '.'
	case CellPlayerZone:
		return 'P'
	case CellEnemyZone:
		return 'E'
	default:
		return '#'
	}
}

// ParseCell converts a map file character to a CellKind.
func ParseCell(r rune) (CellKind, error) {
	switch r {
	case '.':
		return CellFloor, nil
	case 'P', 'p':
		return CellPlayerZone, nil
	case 'E', 'e':
		return CellEnemyZone, nil
	case '#', ' ':
		return CellVoid, nil
	}
	return CellVoid, fmt.Errorf("unknown cell %q", r)
}
