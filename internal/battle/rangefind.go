package battle

// RangeFinder enumerates the tiles a unit can reach.
type RangeFinder struct {
	grid *Grid
}

// NewRangeFinder creates a range finder over a grid.
func NewRangeFinder(grid *Grid) RangeFinder {
	return RangeFinder{grid: grid}
}

// RangeFor returns the step budget a unit has in a planner mode. Attacking
// keeps one resource point back for the strike itself.
func RangeFor(u *Unit, mode PlannerMode) int {
	if mode == ModeAttack {
		if u.ResourcePoints-1 < 0 {
			return 0
		}
		return u.ResourcePoints - 1
	}
	return u.ResourcePoints
}

// TilesInRange expands breadth-first from origin for exactly steps rounds of
// orthogonal moves. Blocked tiles are never entered or returned; temporarily
// reserved tiles are. The result is distinct tiles in discovery order.
func (rf RangeFinder) TilesInRange(origin Coord, steps int) []*Tile {
	start := rf.grid.TileAt(origin)
	if start == nil {
		return nil
	}

	seen := map[Coord]bool{origin: true}
	inRange := []*Tile{start}
	frontier := []*Tile{start}

	for step := 0; step < steps && len(frontier) > 0; step++ {
		var next []*Tile
		for _, t := range frontier {
			for _, n := range rf.grid.Neighbors4(t.Coord) {
				if seen[n.Coord] || n.Blocked() {
					continue
				}
				seen[n.Coord] = true
				next = append(next, n)
			}
		}
		inRange = append(inRange, next...)
		frontier = next
	}

	out := inRange[:0]
	for _, t := range inRange {
		if !t.Blocked() {
			out = append(out, t)
		}
	}
	return out
}

// TilesForUnit returns the reachable tiles for a unit in a planner mode.
func (rf RangeFinder) TilesForUnit(u *Unit, mode PlannerMode) []*Tile {
	if u.Tile == nil {
		return nil
	}
	return rf.TilesInRange(u.Tile.Coord, RangeFor(u, mode))
}

// FilterAdjacent keeps the tiles with at least one of their 8 neighbors
// accepted by hasFoe.
func (rf RangeFinder) FilterAdjacent(tiles []*Tile, hasFoe func(Coord) bool) []*Tile {
	var out []*Tile
	for _, t := range tiles {
		for _, n := range rf.grid.Neighbors8(t.Coord) {
			if hasFoe(n.Coord) {
				out = append(out, t)
				break
			}
		}
	}
	return out
}
