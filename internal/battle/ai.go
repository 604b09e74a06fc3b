package battle

import "log"

// EnemyAI plans enemy units one at a time with a greedy, non-backtracking
// heuristic: strike the nearest player if a tile next to it is reachable,
// otherwise close the distance, otherwise defend.
type EnemyAI struct {
	battle *Battle

	// reserved holds destinations claimed by earlier enemy plans this phase.
	reserved map[Coord]bool
}

func newEnemyAI(b *Battle) *EnemyAI {
	return &EnemyAI{battle: b, reserved: make(map[Coord]bool)}
}

// BeginPhase forgets the destinations claimed last enemy phase.
func (ai *EnemyAI) BeginPhase() {
	ai.reserved = make(map[Coord]bool)
}

// Reserved reports whether c has been claimed by an enemy plan this phase.
func (ai *EnemyAI) Reserved(c Coord) bool {
	return ai.reserved[c]
}

// Plan writes a plan into u.
func (ai *EnemyAI) Plan(u *Unit) {
	u.ClearPlan()
	if u.Tile == nil {
		log.Printf("[EnemyAI] %s has no tile, defending", u.Name)
		u.PlannedAction = ActionDefend
		return
	}

	target := ai.nearestPlayer(u)
	if target == nil {
		log.Printf("[EnemyAI] %s found no target, defending", u.Name)
		u.PlannedAction = ActionDefend
		return
	}

	if ai.planAttack(u, target) || ai.planMove(u, target) {
		return
	}
	log.Printf("[EnemyAI] %s cannot reach %s, defending", u.Name, target.Name)
	u.PlannedAction = ActionDefend
}

func (ai *EnemyAI) planAttack(u, target *Unit) bool {
	b := ai.battle
	if b.grid.Adjacent(u.Coord(), target.Coord()) && u.ResourcePoints >= 1 {
		u.PlannedAction = ActionAttack
		u.Target = target
		log.Printf("[EnemyAI] %s attacks %s in place", u.Name, target.Name)
		return true
	}

	candidates := ai.unclaimed(b.ranges.TilesForUnit(u, ModeAttack))
	for _, t := range candidates {
		if !b.grid.Adjacent(t.Coord, target.Coord()) {
			continue
		}
		path := b.paths.FindPath(u.Tile, t, candidates)
		if len(path) == 0 {
			continue
		}
		ai.reserved[t.Coord] = true
		u.PlannedPath = path
		u.PlannedAction = ActionAttack
		u.Target = target
		log.Printf("[EnemyAI] %s moves to %v to attack %s", u.Name, t.Coord, target.Name)
		return true
	}
	return false
}

func (ai *EnemyAI) planMove(u, target *Unit) bool {
	b := ai.battle
	var candidates []*Tile
	for _, t := range ai.unclaimed(b.ranges.TilesForUnit(u, ModeMove)) {
		if t.TempReserved() || t.TurnReserved() || t.Occupied() {
			continue
		}
		candidates = append(candidates, t)
	}

	var best []*Tile
	bestDist := -1
	for _, t := range candidates {
		d := ManhattanDistance(t.Coord, target.Coord())
		if bestDist >= 0 && d >= bestDist {
			continue
		}
		path := b.paths.FindPath(u.Tile, t, candidates)
		if len(path) == 0 {
			continue
		}
		best, bestDist = path, d
	}
	if best == nil {
		return false
	}

	dest := best[len(best)-1]
	ai.reserved[dest.Coord] = true
	u.PlannedPath = best
	log.Printf("[EnemyAI] %s advances to %v toward %s", u.Name, dest.Coord, target.Name)
	return true
}

// nearestPlayer returns the live player unit closest to u by Manhattan
// distance. Ties go to roster order.
func (ai *EnemyAI) nearestPlayer(u *Unit) *Unit {
	var nearest *Unit
	best := 0
	for _, p := range ai.battle.players.Units() {
		if !p.Alive() || p.Tile == nil {
			continue
		}
		d := ManhattanDistance(u.Coord(), p.Coord())
		if nearest == nil || d < best {
			nearest, best = p, d
		}
	}
	return nearest
}

func (ai *EnemyAI) unclaimed(tiles []*Tile) []*Tile {
	var out []*Tile
	for _, t := range tiles {
		if !ai.reserved[t.Coord] {
			out = append(out, t)
		}
	}
	return out
}
