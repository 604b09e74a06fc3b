package battle

import (
	"fmt"
	"log"
)

// PlannerMode is the kind of plan the player is building for the selected unit.
type PlannerMode int

const (
	ModeNone PlannerMode = iota
	ModeMove
	ModeAttack
	ModeDefend
)

// String returns the mode name.
func (m PlannerMode) String() string {
	switch m {
	case ModeMove:
		return "Move"
	case ModeAttack:
		return "Attack"
	case ModeDefend:
		return "Defend"
	default:
		return "None"
	}
}

// ParseMode converts a mode name back into a PlannerMode.
func ParseMode(s string) (PlannerMode, error) {
	switch s {
	case "none", "None", "":
		return ModeNone, nil
	case "move", "Move":
		return ModeMove, nil
	case "attack", "Attack":
		return ModeAttack, nil
	case "defend", "Defend":
		return ModeDefend, nil
	}
	return ModeNone, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Planner turns player input into unit plans during the planning phase.
//
// Highlights are what the player is shown; reservations are claims on tiles.
// Clearing one never touches the other.
type Planner struct {
	battle *Battle

	mode        PlannerMode
	selected    *Unit
	highlighted []*Tile
	prepTile    *Tile // attack step 2 when set
}

func newPlanner(b *Battle) *Planner {
	return &Planner{battle: b}
}

// Mode returns the current planner mode.
func (p *Planner) Mode() PlannerMode { return p.mode }

// Selected returns the selected unit, or nil.
func (p *Planner) Selected() *Unit { return p.selected }

// PrepTile returns the attack preparation tile chosen so far, or nil.
func (p *Planner) PrepTile() *Tile { return p.prepTile }

// Highlighted returns the tiles currently shown as reachable.
func (p *Planner) Highlighted() []*Tile {
	out := make([]*Tile, len(p.highlighted))
	copy(out, p.highlighted)
	return out
}

// AttackTiles returns the highlighted tiles that are next to a live enemy of
// the selected unit. It is empty outside ModeAttack.
func (p *Planner) AttackTiles() []*Tile {
	if p.mode != ModeAttack || p.selected == nil {
		return nil
	}
	return p.prepTiles(p.selected)
}

// ClearHighlights hides the reachable set. Reservations are untouched.
func (p *Planner) ClearHighlights() {
	p.highlighted = nil
}

// SelectAt selects the player unit standing on c. A tile with no selectable
// unit clears the selection.
func (p *Planner) SelectAt(c Coord) error {
	if err := p.canPlan(); err != nil {
		return err
	}
	u := p.battle.players.At(c)
	if u == nil || u.Finished {
		p.deselect()
		log.Printf("[Planner] No selectable unit at %v, selection cleared", c)
		return ErrNotSelectable
	}
	return p.SelectUnit(u)
}

// SelectUnit selects a live player unit.
func (p *Planner) SelectUnit(u *Unit) error {
	if err := p.canPlan(); err != nil {
		return err
	}
	if u == nil || !u.Alive() || u.Team != TeamPlayer || u.Finished {
		return ErrNotSelectable
	}
	p.deselect()
	p.selected = u
	log.Printf("[Planner] Selected %s at %v", u.Name, u.Coord())
	return nil
}

// Deselect drops the selection. An attack whose target has not been chosen
// yet is abandoned and its tile released.
func (p *Planner) Deselect() {
	p.deselect()
}

func (p *Planner) deselect() {
	p.abandonPrep()
	p.ClearHighlights()
	p.mode = ModeNone
	p.selected = nil
}

// abandonPrep undoes attack step 1 for the selected unit.
func (p *Planner) abandonPrep() {
	if p.prepTile == nil {
		return
	}
	p.battle.res.ReleaseTemp(p.prepTile.Coord)
	if p.selected != nil {
		p.selected.ClearPlan()
	}
	p.prepTile = nil
}

// SetMode switches the planner mode for the selected unit. Entering Move or
// Attack shows the reachable tiles; entering Defend commits a defend plan at
// once and returns to ModeNone. ModeNone is always accepted.
func (p *Planner) SetMode(mode PlannerMode) error {
	if mode == ModeNone {
		p.abandonPrep()
		p.ClearHighlights()
		p.mode = ModeNone
		return nil
	}
	if err := p.canPlan(); err != nil {
		return err
	}
	if p.selected == nil {
		log.Printf("[Planner] No unit selected")
		return ErrNoUnitSelected
	}

	p.abandonPrep()
	p.ClearHighlights()

	switch mode {
	case ModeMove, ModeAttack:
		p.mode = mode
		p.highlighted = p.battle.ranges.TilesForUnit(p.selected, mode)
		log.Printf("[Planner] Mode set to %s, %d tiles in range", mode, len(p.highlighted))
		return nil
	case ModeDefend:
		return p.planDefend()
	default:
		return ErrUnknownMode
	}
}

// Click handles a confirmed click on a grid coordinate in the current mode.
func (p *Planner) Click(c Coord) error {
	if err := p.canPlan(); err != nil {
		return err
	}
	if p.selected == nil {
		return ErrNoUnitSelected
	}
	t := p.battle.grid.TileAt(c)
	if t == nil {
		log.Printf("[Planner] No tile at %v", c)
		return ErrNoTile
	}

	switch p.mode {
	case ModeMove:
		return p.planMove(t)
	case ModeAttack:
		if p.prepTile == nil {
			if ok, err := p.tryDirectAttack(t); ok || err != nil {
				return err
			}
			return p.choosePrepTile(t)
		}
		return p.chooseTarget(t)
	case ModeDefend:
		return p.planDefend()
	default:
		return nil
	}
}

// CancelPlan drops the selected unit's plan and releases its reservation.
func (p *Planner) CancelPlan() error {
	if err := p.canPlan(); err != nil {
		return err
	}
	if p.selected == nil {
		return ErrNoUnitSelected
	}
	p.prepTile = nil
	p.releasePlan(p.selected)
	p.selected.ClearPlan()
	p.ClearHighlights()
	p.mode = ModeNone
	log.Printf("[Planner] Plan cancelled for %s", p.selected.Name)
	return nil
}

func (p *Planner) planMove(t *Tile) error {
	u := p.selected
	if !containsCoord(p.highlighted, t.Coord) {
		return ErrOutOfRange
	}
	if t.TempReserved() {
		return ErrTileReserved
	}
	path := p.battle.paths.FindPath(u.Tile, t, p.highlighted)
	if len(path) == 0 {
		return ErrNoPath
	}

	p.releasePlan(u)
	u.PlannedPath = path
	u.PlannedAction = ActionNone
	u.Target = nil
	p.battle.res.AcquireTemp(t.Coord)

	p.ClearHighlights()
	p.mode = ModeNone
	log.Printf("[Planner] Move planned for %s to %v", u.Name, t.Coord)
	return nil
}

// tryDirectAttack plans an attack in place when the clicked tile holds an
// adjacent enemy. It reports false when the click is not a direct attack.
func (p *Planner) tryDirectAttack(t *Tile) (bool, error) {
	u := p.selected
	enemy := p.battle.enemyOf(u, t.Coord)
	if enemy == nil || !p.battle.grid.Adjacent(u.Coord(), t.Coord) {
		return false, nil
	}
	if u.ResourcePoints < 1 {
		log.Printf("[Planner] %s lacks resource points for a direct attack", u.Name)
		return false, nil
	}

	p.releasePlan(u)
	u.PlannedPath = []*Tile{u.Tile}
	p.battle.res.acquireTempOwn(u.Tile.Coord)
	u.PlannedAction = ActionAttack
	u.Target = enemy

	p.ClearHighlights()
	p.mode = ModeNone
	log.Printf("[Planner] Direct attack planned: %s -> %s", u.Name, enemy.Name)
	return true, nil
}

func (p *Planner) choosePrepTile(t *Tile) error {
	u := p.selected
	valid := p.prepTiles(u)
	if !containsCoord(valid, t.Coord) {
		log.Printf("[Planner] %v is not a valid attack prep tile", t.Coord)
		return ErrOutOfRange
	}
	if t.TempReserved() {
		return ErrTileReserved
	}
	path := p.battle.paths.FindPath(u.Tile, t, p.highlighted)
	if len(path) == 0 {
		return ErrNoPath
	}

	p.releasePlan(u)
	u.PlannedPath = path
	u.PlannedAction = ActionNone
	u.Target = nil
	p.battle.res.AcquireTemp(t.Coord)
	p.prepTile = t
	log.Printf("[Planner] Prep tile %v chosen for %s, awaiting target", t.Coord, u.Name)
	return nil
}

// chooseTarget completes attack step 2. Any click that is not an adjacent
// enemy abandons the attack and returns to ModeNone.
func (p *Planner) chooseTarget(t *Tile) error {
	u := p.selected
	var err error
	var enemy *Unit
	if !p.battle.grid.Adjacent(p.prepTile.Coord, t.Coord) {
		err = ErrNotAdjacent
	} else if enemy = p.battle.enemyOf(u, t.Coord); enemy == nil {
		err = ErrInvalidTarget
	}
	if err != nil {
		log.Printf("[Planner] Attack cancelled for %s: %v", u.Name, err)
		p.abandonPrep()
		p.ClearHighlights()
		p.mode = ModeNone
		return err
	}

	u.PlannedAction = ActionAttack
	u.Target = enemy
	p.prepTile = nil
	p.ClearHighlights()
	p.mode = ModeNone
	log.Printf("[Planner] Attack planned: %s -> %s", u.Name, enemy.Name)
	return nil
}

func (p *Planner) planDefend() error {
	u := p.selected
	if u.Finished {
		log.Printf("[Planner] %s has already completed an action", u.Name)
		return ErrAlreadyActed
	}
	p.releasePlan(u)
	u.ClearPlan()
	u.PlannedAction = ActionDefend
	p.battle.res.acquireTempOwn(u.Tile.Coord)

	p.ClearHighlights()
	p.mode = ModeNone
	log.Printf("[Planner] %s plans to defend at %v", u.Name, u.Coord())
	return nil
}

// prepTiles returns the attack-reachable tiles next to a live enemy.
func (p *Planner) prepTiles(u *Unit) []*Tile {
	return p.battle.ranges.FilterAdjacent(p.highlighted, func(c Coord) bool {
		return p.battle.enemyOf(u, c) != nil
	})
}

// releasePlan releases the temporary reservation held by u's current plan.
func (p *Planner) releasePlan(u *Unit) {
	if t := u.reservedTile(); t != nil {
		p.battle.res.ReleaseTemp(t.Coord)
	}
}

// reset returns the planner to its idle state at a phase boundary.
func (p *Planner) reset() {
	p.deselect()
}

func (p *Planner) canPlan() error {
	if !p.battle.started {
		return ErrBattleNotStarted
	}
	if p.battle.turns.Resolved() {
		return ErrBattleOver
	}
	if !p.battle.turns.IsPlanningPhase() {
		log.Printf("[Planner] Not in planning phase")
		return ErrNotPlanningPhase
	}
	return nil
}

func containsCoord(tiles []*Tile, c Coord) bool {
	for _, t := range tiles {
		if t.Coord == c {
			return true
		}
	}
	return false
}
