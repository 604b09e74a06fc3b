package battle

import (
	"context"
	"log"
)

// Phase is a step of the battle round.
type Phase int

const (
	PhaseDeployment Phase = iota
	PhasePlayerPlanning
	PhasePlayerExecuting
	PhaseEnemyTurn
	PhaseEnded
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseDeployment:
		return "Deployment"
	case PhasePlayerPlanning:
		return "PlayerPlanning"
	case PhasePlayerExecuting:
		return "PlayerExecuting"
	case PhaseEnemyTurn:
		return "EnemyTurn"
	case PhaseEnded:
		return "Ended"
	default:
		return "Unknown"
	}
}

// TurnSystem sequences the round and decides when the battle is over. It is
// the only component that promotes or clears reservations.
type TurnSystem struct {
	battle *Battle

	phase    Phase
	round    int
	resolved bool
	result   Result
}

func newTurnSystem(b *Battle) *TurnSystem {
	return &TurnSystem{battle: b}
}

// Phase returns the current phase.
func (ts *TurnSystem) Phase() Phase { return ts.phase }

// Round returns the round number, starting at 1 once the battle starts.
func (ts *TurnSystem) Round() int { return ts.round }

// IsPlanningPhase reports whether the player may plan.
func (ts *TurnSystem) IsPlanningPhase() bool {
	return ts.phase == PhasePlayerPlanning && !ts.resolved
}

// Resolved reports whether a result has been reported.
func (ts *TurnSystem) Resolved() bool { return ts.resolved }

// Result returns the reported result. ok is false while the battle is on.
func (ts *TurnSystem) Result() (r Result, ok bool) {
	return ts.result, ts.resolved
}

func (ts *TurnSystem) begin() {
	ts.round = 1
	ts.setPhase(PhasePlayerPlanning)
	ts.battle.emit(Event{Type: EventRoundStarted})
}

// NextPhase ends player planning and plays the rest of the round: player
// execution, then the enemy turn. It returns when planning reopens or the
// battle is over.
func (ts *TurnSystem) NextPhase(ctx context.Context) error {
	if ts.resolved {
		return ErrBattleOver
	}
	if ts.phase != PhasePlayerPlanning {
		return ErrNotPlanningPhase
	}

	for {
		if err := ts.step(ctx); err != nil {
			return err
		}
		if ts.resolved || ts.phase == PhasePlayerPlanning {
			return nil
		}
	}
}

// step performs one phase transition.
func (ts *TurnSystem) step(ctx context.Context) error {
	b := ts.battle

	switch ts.phase {
	case PhasePlayerPlanning:
		ts.leavePlanning()
		ts.setPhase(PhasePlayerExecuting)
		return b.playerExec.Run(ctx, b.players.Units())

	case PhasePlayerExecuting:
		if ts.CheckOutcome() {
			return nil
		}
		ts.setPhase(PhaseEnemyTurn)
		return b.enemyExec.Run(ctx, b.enemies.Units())

	case PhaseEnemyTurn:
		if ts.CheckOutcome() {
			return nil
		}
		ts.leaveEnemyTurn()
		ts.setPhase(PhasePlayerPlanning)
		b.emit(Event{Type: EventRoundStarted})
		return nil
	}
	return ErrNotPlanningPhase
}

// leavePlanning locks every player unit's final tile for the round and drops
// all other temporary reservations.
func (ts *TurnSystem) leavePlanning() {
	b := ts.battle
	b.planner.reset()

	for _, u := range b.players.Units() {
		if t := u.FinalTile(); t != nil {
			b.res.PromoteToTurn(t.Coord)
		}
	}
	if n := b.res.ReleaseAllTemp(); n > 0 {
		log.Printf("[Turn] Released %d stale temporary reservations", n)
	}
	ts.checkInvariant()
}

// leaveEnemyTurn rebuilds the baseline for the next planning phase.
func (ts *TurnSystem) leaveEnemyTurn() {
	b := ts.battle
	b.res.ClearAll()

	for _, u := range append(b.players.Units(), b.enemies.Units()...) {
		t := b.grid.TileAt(u.Coord())
		u.Tile = t
		if t != nil {
			b.res.ReserveTurn(t.Coord)
		}
		u.Finished = false
		if u.Team == TeamPlayer {
			u.ClearPlan()
			u.RetractDefenseBonus()
		}
	}

	ts.round++
	ts.checkInvariant()
	log.Printf("[Turn] Round %d begins", ts.round)
}

// CheckOutcome reports a result if either side has no units left. The result
// is handed to the consumer only the first time; later calls just report
// that the battle is over.
func (ts *TurnSystem) CheckOutcome() bool {
	if ts.resolved {
		return true
	}
	b := ts.battle
	players, enemies := b.players.Len(), b.enemies.Len()
	if players > 0 && enemies > 0 {
		return false
	}

	outcome := OutcomeVictory
	if players == 0 {
		outcome = OutcomeDefeat
	}
	ts.result = Result{
		BattleID:        b.ID,
		ContextID:       b.ContextID,
		Outcome:         outcome,
		PlayerUnitsLost: b.initialPlayers - players,
		EnemyUnitsLost:  b.initialEnemies - enemies,
		Rounds:          ts.round,
	}
	ts.resolved = true
	ts.setPhase(PhaseEnded)
	b.emit(Event{Type: EventBattleEnded, Message: outcome.String()})
	log.Printf("[Turn] Battle %s ended: %s (player lost %d, enemy lost %d)",
		b.ID, outcome, ts.result.PlayerUnitsLost, ts.result.EnemyUnitsLost)

	if b.results != nil {
		b.results.OnBattleResult(ts.result)
	}
	return true
}

func (ts *TurnSystem) setPhase(p Phase) {
	if ts.phase == p {
		return
	}
	ts.phase = p
	ts.battle.emit(Event{Type: EventPhaseChanged})
}

func (ts *TurnSystem) checkInvariant() {
	if err := ts.battle.res.CheckInvariant(); err != nil {
		log.Printf("[Turn] Reservation invariant violated: %v", err)
	}
}
