package battle

import (
	"context"
	"log"
)

// Executor walks one team's units through their plans, strictly one unit at a
// time. A unit's move, action and cleanup all finish before the next starts.
type Executor struct {
	battle      *Battle
	team        Team
	defendBonus int

	// planFunc, when set, plans each unit right before it executes.
	planFunc func(u *Unit)
	// beforePass runs once at the start of every pass.
	beforePass func()
}

func newExecutor(b *Battle, team Team, defendBonus int) *Executor {
	return &Executor{battle: b, team: team, defendBonus: defendBonus}
}

// Run executes the given units in order. Units removed earlier in the pass
// are skipped.
func (e *Executor) Run(ctx context.Context, units []*Unit) error {
	if e.beforePass != nil {
		e.beforePass()
	}
	log.Printf("[Executor] %s executing %d units", e.team, len(units))

	for _, u := range units {
		if !u.Alive() {
			continue
		}
		if e.team == TeamEnemy {
			// An enemy's guard lasts until it acts again.
			u.RetractDefenseBonus()
		}
		if e.planFunc != nil {
			e.planFunc(u)
		}
		if err := e.runUnit(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) runUnit(ctx context.Context, u *Unit) error {
	if err := e.move(ctx, u); err != nil {
		return err
	}

	switch u.PlannedAction {
	case ActionDefend:
		u.GrantDefenseBonus(e.defendBonus)
		e.battle.emit(Event{Type: EventUnitDefended, UnitID: u.ID, Health: u.Health})
		log.Printf("[Executor] %s defends (defense %d)", u.Name, u.DefensePower)
	case ActionAttack:
		if err := e.attack(ctx, u, u.Target); err != nil {
			return err
		}
	}

	u.Finished = true
	u.ClearPlan()
	return nil
}

// move steps u along its planned path. Movement stops early if the next tile
// has been taken.
func (e *Executor) move(ctx context.Context, u *Unit) error {
	b := e.battle
	for _, next := range u.PlannedPath {
		if u.Tile != nil && next.Coord == u.Tile.Coord {
			continue
		}
		if next.Occupied() {
			log.Printf("[Executor] %s stopped at %v, %v is occupied", u.Name, u.Coord(), next.Coord)
			return nil
		}
		if err := b.animator.MoveStep(ctx, u, next); err != nil {
			return err
		}

		from := u.Coord()
		b.res.Vacate(from)
		b.res.Occupy(next.Coord)
		u.Tile = next
		u.Position = tilePosition(next)
		b.emit(Event{Type: EventUnitMoved, UnitID: u.ID, From: coordPtr(from), To: coordPtr(next.Coord)})
	}
	return nil
}

func (e *Executor) attack(ctx context.Context, u, target *Unit) error {
	if target == nil || !target.Alive() {
		log.Printf("[Executor] %s has no target left", u.Name)
		return nil
	}
	b := e.battle
	if err := b.animator.PlayAttack(ctx, u, target); err != nil {
		return err
	}

	dmg := Damage(u, target)
	target.Health -= dmg
	b.emit(Event{
		Type:     EventUnitAttacked,
		UnitID:   u.ID,
		TargetID: target.ID,
		Damage:   dmg,
		Health:   target.Health,
	})
	log.Printf("[Executor] %s hits %s for %d (%d/%d)", u.Name, target.Name, dmg, target.Health, target.MaxHealth)

	if target.Health <= 0 {
		return b.removeUnit(ctx, target)
	}
	return nil
}
