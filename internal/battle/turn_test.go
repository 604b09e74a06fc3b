package battle

import (
	"context"
	"errors"
	"testing"
)

func TestStart_NeedsBothSides(t *testing.T) {
	b := New(openGrid(3, 3), Options{})
	b.DeployPlayer(NewUnit("P1", TeamPlayer, DefaultStats()), Coord{X: 0, Y: 0})

	if err := b.Start(); !errors.Is(err, ErrEmptyRoster) {
		t.Errorf("Expected ErrEmptyRoster, got %v", err)
	}
}

func TestDeploy_Rules(t *testing.T) {
	g := openGrid(3, 1)
	g.TileAt(Coord{X: 2, Y: 0}).PlayerDeployZone = false
	b := New(g, Options{})

	if err := b.DeployPlayer(NewUnit("P1", TeamPlayer, DefaultStats()), Coord{X: 2, Y: 0}); !errors.Is(err, ErrNotDeployZone) {
		t.Errorf("Expected ErrNotDeployZone, got %v", err)
	}
	if err := b.DeployPlayer(NewUnit("P1", TeamPlayer, DefaultStats()), Coord{X: 0, Y: 0}); err != nil {
		t.Fatalf("DeployPlayer: %v", err)
	}
	if err := b.DeployPlayer(NewUnit("P2", TeamPlayer, DefaultStats()), Coord{X: 0, Y: 0}); !errors.Is(err, ErrTileOccupied) {
		t.Errorf("Expected ErrTileOccupied, got %v", err)
	}

	tile := g.TileAt(Coord{X: 0, Y: 0})
	if !tile.Occupied() || !tile.TurnReserved() {
		t.Error("Expected a deployed tile to be occupied and turn reserved")
	}

	b.ResetDeployment()
	if tile.Blocked() || len(b.Players()) != 0 {
		t.Error("Expected ResetDeployment to clear units and tiles")
	}
}

func TestAutoDeployEnemies(t *testing.T) {
	g := openGrid(4, 4)
	b := New(g, Options{})

	units := b.AutoDeployEnemies(5, func(i int) *Unit {
		return NewUnit("E", TeamEnemy, DefaultStats())
	})
	if len(units) != 5 || len(b.Enemies()) != 5 {
		t.Fatalf("Expected 5 enemies, got %d", len(units))
	}
	seen := map[Coord]bool{}
	for _, u := range units {
		if seen[u.Coord()] {
			t.Errorf("Two enemies deployed on %v", u.Coord())
		}
		seen[u.Coord()] = true
		if !u.Tile.Occupied() {
			t.Errorf("Expected %v to be occupied", u.Coord())
		}
	}
}

func TestAutoDeployEnemies_LimitedByZone(t *testing.T) {
	g := openGrid(2, 1)
	b := New(g, Options{})

	units := b.AutoDeployEnemies(5, func(i int) *Unit {
		return NewUnit("E", TeamEnemy, DefaultStats())
	})
	if len(units) != 2 {
		t.Errorf("Expected 2 enemies on a 2-tile zone, got %d", len(units))
	}
}

func TestNextPhase_RoundReset(t *testing.T) {
	b, ps, es := startBattle(t, openGrid(6, 6), []Coord{{0, 0}}, []Coord{{5, 5}})
	p := b.Planner()
	ctx := context.Background()

	if b.Turns().Phase() != PhasePlayerPlanning || b.Turns().Round() != 1 {
		t.Fatalf("Expected round 1 planning, got round %d %s", b.Turns().Round(), b.Turns().Phase())
	}

	p.SelectUnit(ps[0])
	p.SetMode(ModeMove)
	if err := p.Click(Coord{X: 2, Y: 0}); err != nil {
		t.Fatalf("Click: %v", err)
	}
	if err := b.NextPhase(ctx); err != nil {
		t.Fatalf("NextPhase: %v", err)
	}

	if b.Turns().Phase() != PhasePlayerPlanning || b.Turns().Round() != 2 {
		t.Errorf("Expected round 2 planning, got round %d %s", b.Turns().Round(), b.Turns().Phase())
	}
	if ps[0].Coord() != (Coord{X: 2, Y: 0}) {
		t.Errorf("Expected player at (2,0), got %v", ps[0].Coord())
	}
	if g := b.Grid(); g.TileAt(Coord{X: 0, Y: 0}).Blocked() {
		t.Error("Expected the vacated tile to be free")
	}

	for _, u := range append(ps, es...) {
		if u.Finished {
			t.Errorf("Expected %s to be reset", u.Name)
		}
		if !u.Tile.TurnReserved() || !u.Tile.Occupied() {
			t.Errorf("Expected %s's tile %v to be occupied and turn reserved", u.Name, u.Coord())
		}
		if b.Grid().TileAt(u.Coord()) != u.Tile {
			t.Errorf("Expected %s's tile to be the grid's tile", u.Name)
		}
	}
	for _, tile := range b.Grid().Tiles() {
		if tile.TempReserved() {
			t.Errorf("Expected no temporary reservations, found %v", tile.Coord)
		}
	}
	if err := b.Reservations().CheckInvariant(); err != nil {
		t.Error(err)
	}
}

func TestNextPhase_PromotesFinalTiles(t *testing.T) {
	b, ps, _ := startBattle(t, openGrid(6, 6), []Coord{{0, 0}}, []Coord{{5, 5}})
	p := b.Planner()

	p.SelectUnit(ps[0])
	p.SetMode(ModeMove)
	p.Click(Coord{X: 0, Y: 3})

	// Run only the planning transition.
	b.turns.leavePlanning()
	dest := b.Grid().TileAt(Coord{X: 0, Y: 3})
	if dest.TempReserved() || !dest.TurnReserved() {
		t.Error("Expected the destination to be promoted to a turn reservation")
	}
}

func TestCheckOutcome_Idempotent(t *testing.T) {
	b, _, es := startBattle(t, openGrid(4, 4), []Coord{{0, 0}}, []Coord{{3, 3}})
	reported := 0
	var got Result
	b.results = ResultFunc(func(r Result) {
		reported++
		got = r
	})

	if b.Turns().CheckOutcome() {
		t.Fatal("Expected the battle to be undecided")
	}
	b.removeUnit(context.Background(), es[0])

	if !b.Turns().CheckOutcome() || !b.Turns().CheckOutcome() {
		t.Error("Expected the battle to be decided")
	}
	if reported != 1 {
		t.Errorf("Expected exactly one report, got %d", reported)
	}
	if got.Outcome != OutcomeVictory || got.EnemyUnitsLost != 1 || got.PlayerUnitsLost != 0 {
		t.Errorf("Unexpected result %+v", got)
	}
	if got.BattleID != b.ID {
		t.Errorf("Expected battle id %q, got %q", b.ID, got.BattleID)
	}
	if err := b.NextPhase(context.Background()); !errors.Is(err, ErrBattleOver) {
		t.Errorf("Expected ErrBattleOver, got %v", err)
	}
}

func TestCheckOutcome_DefeatTakesPrecedence(t *testing.T) {
	b, ps, es := startBattle(t, openGrid(4, 4), []Coord{{0, 0}}, []Coord{{3, 3}})
	ctx := context.Background()
	b.removeUnit(ctx, ps[0])
	b.removeUnit(ctx, es[0])

	b.Turns().CheckOutcome()
	r, ok := b.Turns().Result()
	if !ok || r.Outcome != OutcomeDefeat {
		t.Errorf("Expected Defeat, got %+v", r)
	}
}

func TestNextPhase_OnlyFromPlanning(t *testing.T) {
	b := New(openGrid(3, 3), Options{})
	if err := b.NextPhase(context.Background()); !errors.Is(err, ErrBattleNotStarted) {
		t.Errorf("Expected ErrBattleNotStarted, got %v", err)
	}
}

func TestClose(t *testing.T) {
	b, _, _ := startBattle(t, openGrid(4, 4), []Coord{{0, 0}}, []Coord{{3, 3}})
	b.Close()

	if err := b.NextPhase(context.Background()); !errors.Is(err, ErrBattleClosed) {
		t.Errorf("Expected ErrBattleClosed, got %v", err)
	}
}

func TestAutoPlan_FullBattle(t *testing.T) {
	res := NewResultChan()
	var events []Event
	b := New(openGrid(5, 5), Options{
		ContextID: "quest-1",
		Results:   res,
		Events:    EventFunc(func(ev Event) { events = append(events, ev) }),
	})
	b.DeployPlayer(NewUnit("P1", TeamPlayer, DefaultStats()), Coord{X: 0, Y: 1})
	b.DeployPlayer(NewUnit("P2", TeamPlayer, DefaultStats()), Coord{X: 0, Y: 3})
	b.DeployEnemy(NewUnit("E1", TeamEnemy, DefaultStats()), Coord{X: 4, Y: 2})
	if err := b.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 50 && !b.Turns().Resolved(); i++ {
		if err := AutoPlan(b); err != nil {
			t.Fatalf("AutoPlan: %v", err)
		}
		if err := b.NextPhase(ctx); err != nil {
			t.Fatalf("NextPhase: %v", err)
		}
		if err := b.Reservations().CheckInvariant(); err != nil {
			t.Fatalf("Round %d: %v", b.Turns().Round(), err)
		}
	}

	select {
	case r := <-res:
		if r.Outcome != OutcomeVictory {
			t.Errorf("Expected Victory, got %s", r.Outcome)
		}
		if r.EnemyUnitsLost != 1 {
			t.Errorf("Expected 1 enemy lost, got %d", r.EnemyUnitsLost)
		}
		if r.ContextID != "quest-1" {
			t.Errorf("Expected context id to be carried, got %q", r.ContextID)
		}
	default:
		t.Fatal("Expected a result within 50 rounds")
	}

	if len(events) == 0 || events[len(events)-1].Type != EventBattleEnded {
		t.Error("Expected the event stream to end with battle_ended")
	}
}
