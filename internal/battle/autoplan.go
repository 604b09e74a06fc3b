package battle

import "log"

// AutoPlan plans every player unit that has not acted yet, driving the
// planner the same way a player would. Each unit attacks an adjacent enemy
// in place if it can, otherwise moves next to one and attacks, otherwise
// advances toward the nearest enemy, otherwise defends.
func AutoPlan(b *Battle) error {
	p := b.planner
	defer p.Deselect()

	for _, u := range b.players.Units() {
		if u.Finished || !u.Alive() {
			continue
		}
		if err := p.SelectUnit(u); err != nil {
			return err
		}
		if autoAttack(b, u) || autoMove(b, u) {
			continue
		}
		if err := p.SetMode(ModeDefend); err != nil {
			return err
		}
	}
	return nil
}

func autoAttack(b *Battle, u *Unit) bool {
	p := b.planner
	for _, n := range b.grid.Neighbors8(u.Coord()) {
		if b.enemyOf(u, n.Coord) == nil || u.ResourcePoints < 1 {
			continue
		}
		if p.SetMode(ModeAttack) == nil && p.Click(n.Coord) == nil {
			return true
		}
	}

	if err := p.SetMode(ModeAttack); err != nil {
		return false
	}
	for _, prep := range p.AttackTiles() {
		if prep.TempReserved() {
			continue
		}
		if err := p.Click(prep.Coord); err != nil {
			continue
		}
		for _, n := range b.grid.Neighbors8(prep.Coord) {
			if b.enemyOf(u, n.Coord) == nil {
				continue
			}
			if err := p.Click(n.Coord); err == nil {
				return true
			}
			break
		}
		// The target click failed and dropped the mode; start over.
		if err := p.SetMode(ModeAttack); err != nil {
			return false
		}
	}
	p.SetMode(ModeNone)
	return false
}

func autoMove(b *Battle, u *Unit) bool {
	p := b.planner
	target := nearestUnit(u.Coord(), b.enemies.Units())
	if target == nil {
		return false
	}
	if err := p.SetMode(ModeMove); err != nil {
		return false
	}

	var best *Tile
	bestDist := ManhattanDistance(u.Coord(), target.Coord())
	for _, t := range p.Highlighted() {
		if t.TempReserved() {
			continue
		}
		if d := ManhattanDistance(t.Coord, target.Coord()); d < bestDist {
			best, bestDist = t, d
		}
	}
	if best == nil || p.Click(best.Coord) != nil {
		p.SetMode(ModeNone)
		return false
	}
	log.Printf("[AutoPlan] %s advances to %v", u.Name, best.Coord)
	return true
}

func nearestUnit(from Coord, units []*Unit) *Unit {
	var nearest *Unit
	best := 0
	for _, u := range units {
		if u.Tile == nil {
			continue
		}
		d := ManhattanDistance(from, u.Coord())
		if nearest == nil || d < best {
			nearest, best = u, d
		}
	}
	return nearest
}
