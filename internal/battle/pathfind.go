package battle

// PathFinder runs A* searches over the grid.
type PathFinder struct {
	grid *Grid
}

// NewPathFinder creates a path finder over a grid.
func NewPathFinder(grid *Grid) PathFinder {
	return PathFinder{grid: grid}
}

// pathNode is per-search scratch state for one tile.
type pathNode struct {
	tile *Tile
	g, h int
	prev *pathNode
	open bool
}

func (n *pathNode) f() int { return n.g + n.h }

// FindPath returns the shortest orthogonal path from start to end, excluding
// start and including end. When candidates is non-empty the search may only
// step onto those tiles; otherwise the whole grid is searchable. Blocked tiles
// are never entered. The result is empty if end is unreachable or equals start.
func (pf PathFinder) FindPath(start, end *Tile, candidates []*Tile) []*Tile {
	if start == nil || end == nil || start.Coord == end.Coord {
		return nil
	}

	var searchable map[Coord]bool
	if len(candidates) > 0 {
		searchable = make(map[Coord]bool, len(candidates))
		for _, t := range candidates {
			if pf.grid.TileAt(t.Coord) != nil {
				searchable[t.Coord] = true
			}
		}
	}

	nodes := map[Coord]*pathNode{
		start.Coord: {tile: start, h: ManhattanDistance(start.Coord, end.Coord), open: true},
	}
	open := []*pathNode{nodes[start.Coord]}
	closed := map[Coord]bool{}

	for len(open) > 0 {
		// Lowest F wins; ties go to the earliest inserted node.
		best := 0
		for i := 1; i < len(open); i++ {
			if open[i].f() < open[best].f() {
				best = i
			}
		}
		current := open[best]
		open = append(open[:best], open[best+1:]...)
		current.open = false
		closed[current.tile.Coord] = true

		if current.tile.Coord == end.Coord {
			return buildPath(current)
		}

		for _, n := range pf.grid.Neighbors4(current.tile.Coord) {
			if closed[n.Coord] || n.Blocked() {
				continue
			}
			if searchable != nil && !searchable[n.Coord] {
				continue
			}

			g := current.g + 1
			node, ok := nodes[n.Coord]
			if !ok {
				node = &pathNode{tile: n, g: g, h: ManhattanDistance(n.Coord, end.Coord), prev: current, open: true}
				nodes[n.Coord] = node
				open = append(open, node)
				continue
			}
			if node.open && g < node.g {
				node.g = g
				node.prev = current
			}
		}
	}

	return nil
}

// buildPath follows back-pointers from the end node, dropping the start tile.
func buildPath(end *pathNode) []*Tile {
	var path []*Tile
	for n := end; n.prev != nil; n = n.prev {
		path = append(path, n.tile)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
