package battle

import (
	"errors"
	"testing"
)

// Helper to deploy units and start a battle. Coordinates in players and
// enemies are deployed in order.
func startBattle(t *testing.T, g *Grid, players, enemies []Coord) (*Battle, []*Unit, []*Unit) {
	t.Helper()
	b := New(g, Options{})

	var ps, es []*Unit
	for i, c := range players {
		u := NewUnit("P"+string(rune('1'+i)), TeamPlayer, DefaultStats())
		if err := b.DeployPlayer(u, c); err != nil {
			t.Fatalf("DeployPlayer(%v): %v", c, err)
		}
		ps = append(ps, u)
	}
	for i, c := range enemies {
		u := NewUnit("E"+string(rune('1'+i)), TeamEnemy, DefaultStats())
		if err := b.DeployEnemy(u, c); err != nil {
			t.Fatalf("DeployEnemy(%v): %v", c, err)
		}
		es = append(es, u)
	}
	if err := b.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return b, ps, es
}

func TestPlanner_RequiresStartedBattle(t *testing.T) {
	b := New(openGrid(3, 3), Options{})
	p := b.Planner()

	if err := p.SelectAt(Coord{X: 0, Y: 0}); !errors.Is(err, ErrBattleNotStarted) {
		t.Errorf("Expected ErrBattleNotStarted, got %v", err)
	}
}

func TestPlanner_SetModeNeedsSelection(t *testing.T) {
	b, _, _ := startBattle(t, openGrid(5, 5), []Coord{{0, 0}}, []Coord{{4, 4}})
	p := b.Planner()

	if err := p.SetMode(ModeMove); !errors.Is(err, ErrNoUnitSelected) {
		t.Errorf("Expected ErrNoUnitSelected, got %v", err)
	}
	if err := p.SetMode(ModeNone); err != nil {
		t.Errorf("Expected ModeNone to always be accepted, got %v", err)
	}
}

func TestPlanner_SelectEmptyTileClearsSelection(t *testing.T) {
	b, _, _ := startBattle(t, openGrid(5, 5), []Coord{{0, 0}}, []Coord{{4, 4}})
	p := b.Planner()

	if err := p.SelectAt(Coord{X: 0, Y: 0}); err != nil {
		t.Fatalf("SelectAt: %v", err)
	}
	if err := p.SelectAt(Coord{X: 2, Y: 2}); !errors.Is(err, ErrNotSelectable) {
		t.Errorf("Expected ErrNotSelectable, got %v", err)
	}
	if p.Selected() != nil {
		t.Error("Expected selection to be cleared")
	}
	if err := p.SelectAt(Coord{X: 4, Y: 4}); !errors.Is(err, ErrNotSelectable) {
		t.Errorf("Expected enemy units to be unselectable, got %v", err)
	}
}

func TestPlanner_Move(t *testing.T) {
	b, ps, _ := startBattle(t, openGrid(5, 5), []Coord{{0, 0}}, []Coord{{4, 4}})
	p := b.Planner()
	a := ps[0]

	p.SelectAt(a.Coord())
	if err := p.SetMode(ModeMove); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if n := len(p.Highlighted()); n != 9 {
		t.Errorf("Expected 9 reachable tiles from the corner, got %d", n)
	}

	dest := Coord{X: 2, Y: 0}
	if err := p.Click(dest); err != nil {
		t.Fatalf("Click: %v", err)
	}
	if len(a.PlannedPath) != 2 || a.FinalTile().Coord != dest {
		t.Errorf("Expected a 2-step path to %v, got %v", dest, a.PlannedPath)
	}
	if !b.Grid().TileAt(dest).TempReserved() {
		t.Error("Expected destination to be temporarily reserved")
	}
	if p.Mode() != ModeNone {
		t.Errorf("Expected ModeNone after planning, got %s", p.Mode())
	}
	if len(p.Highlighted()) != 0 {
		t.Error("Expected highlights to be cleared")
	}
}

func TestPlanner_RevisingMoveReleasesOldTile(t *testing.T) {
	b, ps, _ := startBattle(t, openGrid(5, 5), []Coord{{0, 0}}, []Coord{{4, 4}})
	p := b.Planner()

	p.SelectUnit(ps[0])
	p.SetMode(ModeMove)
	p.Click(Coord{X: 2, Y: 0})
	p.SetMode(ModeMove)
	if err := p.Click(Coord{X: 0, Y: 2}); err != nil {
		t.Fatalf("Click: %v", err)
	}

	if b.Grid().TileAt(Coord{X: 2, Y: 0}).TempReserved() {
		t.Error("Expected the first destination to be released")
	}
	if !b.Grid().TileAt(Coord{X: 0, Y: 2}).TempReserved() {
		t.Error("Expected the new destination to be reserved")
	}
}

func TestPlanner_TwoUnitsCannotShareDestination(t *testing.T) {
	b, ps, _ := startBattle(t, openGrid(5, 5), []Coord{{0, 0}, {0, 1}}, []Coord{{4, 4}})
	p := b.Planner()

	p.SelectUnit(ps[0])
	p.SetMode(ModeMove)
	if err := p.Click(Coord{X: 1, Y: 1}); err != nil {
		t.Fatalf("Click: %v", err)
	}

	p.SelectUnit(ps[1])
	p.SetMode(ModeMove)
	if err := p.Click(Coord{X: 1, Y: 1}); !errors.Is(err, ErrTileReserved) {
		t.Errorf("Expected ErrTileReserved, got %v", err)
	}
	if len(ps[1].PlannedPath) != 0 {
		t.Error("Expected rejected plan to leave the unit unplanned")
	}
	if ps[0].FinalTile().Coord != (Coord{X: 1, Y: 1}) {
		t.Error("Expected the first unit's plan to survive a selection change")
	}
}

func TestPlanner_MoveOutOfRange(t *testing.T) {
	b, ps, _ := startBattle(t, openGrid(5, 5), []Coord{{0, 0}}, []Coord{{4, 4}})
	p := b.Planner()

	p.SelectUnit(ps[0])
	p.SetMode(ModeMove)
	if err := p.Click(Coord{X: 3, Y: 3}); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Expected ErrOutOfRange, got %v", err)
	}
	if p.Mode() != ModeMove {
		t.Error("Expected the mode to survive a rejected click")
	}
}

func TestPlanner_AttackTwoStep(t *testing.T) {
	b, ps, es := startBattle(t, openGrid(5, 5), []Coord{{0, 0}}, []Coord{{3, 0}})
	p := b.Planner()
	a, e := ps[0], es[0]

	p.SelectUnit(a)
	if err := p.SetMode(ModeAttack); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	prep := p.AttackTiles()
	if len(prep) != 1 || prep[0].Coord != (Coord{X: 2, Y: 0}) {
		t.Fatalf("Expected (2,0) as the only prep tile, got %v", prep)
	}

	if err := p.Click(Coord{X: 2, Y: 0}); err != nil {
		t.Fatalf("Click prep: %v", err)
	}
	if p.PrepTile() == nil || !p.PrepTile().TempReserved() {
		t.Fatal("Expected a reserved prep tile")
	}
	if err := p.Click(e.Coord()); err != nil {
		t.Fatalf("Click target: %v", err)
	}

	if a.PlannedAction != ActionAttack || a.Target != e {
		t.Errorf("Expected attack on %s, got %s on %v", e.Name, a.PlannedAction, a.Target)
	}
	if a.FinalTile().Coord != (Coord{X: 2, Y: 0}) {
		t.Errorf("Expected to strike from (2,0), got %v", a.FinalTile().Coord)
	}
	if p.Mode() != ModeNone || p.PrepTile() != nil {
		t.Error("Expected the planner to reset after committing")
	}
}

func TestPlanner_SwitchSelectionReleasesPrepTile(t *testing.T) {
	b, ps, _ := startBattle(t, openGrid(5, 5), []Coord{{0, 0}, {0, 4}}, []Coord{{3, 0}})
	p := b.Planner()
	a := ps[0]
	prep := Coord{X: 2, Y: 0}

	p.SelectUnit(a)
	p.SetMode(ModeAttack)
	if err := p.Click(prep); err != nil {
		t.Fatalf("Click prep: %v", err)
	}
	if !b.Grid().TileAt(prep).TempReserved() {
		t.Fatal("Expected the prep tile to be reserved")
	}

	if err := p.SelectUnit(ps[1]); err != nil {
		t.Fatalf("SelectUnit: %v", err)
	}
	if b.Grid().TileAt(prep).TempReserved() {
		t.Error("Expected switching units to release the prep tile")
	}
	if p.PrepTile() != nil {
		t.Error("Expected no pending prep tile after switching units")
	}
	if len(a.PlannedPath) != 0 || a.PlannedAction != ActionNone {
		t.Errorf("Expected %s's half-built attack to be dropped, got %s via %v", a.Name, a.PlannedAction, a.PlannedPath)
	}
	if p.Selected() != ps[1] || p.Mode() != ModeNone {
		t.Errorf("Expected %s selected in ModeNone, got %v in %s", ps[1].Name, p.Selected(), p.Mode())
	}

	// Re-selecting through a tile click behaves the same way
	p.SelectUnit(a)
	p.SetMode(ModeAttack)
	p.Click(prep)
	p.SelectAt(ps[1].Coord())
	if b.Grid().TileAt(prep).TempReserved() {
		t.Error("Expected SelectAt to release the prep tile")
	}
}

func TestPlanner_ClearHighlightsKeepsReservation(t *testing.T) {
	b, ps, _ := startBattle(t, openGrid(5, 5), []Coord{{0, 0}, {0, 4}}, []Coord{{3, 0}})
	p := b.Planner()
	a, c := ps[0], ps[1]
	prep := Coord{X: 2, Y: 0}
	dest := Coord{X: 1, Y: 4}

	p.SelectUnit(c)
	p.SetMode(ModeMove)
	if err := p.Click(dest); err != nil {
		t.Fatalf("Click move: %v", err)
	}

	p.SelectUnit(a)
	p.SetMode(ModeAttack)
	if err := p.Click(prep); err != nil {
		t.Fatalf("Click prep: %v", err)
	}

	p.ClearHighlights()
	if len(p.Highlighted()) != 0 {
		t.Error("Expected highlights to be cleared")
	}
	if !b.Grid().TileAt(dest).TempReserved() {
		t.Error("Expected the planned destination to stay reserved")
	}
	if !b.Grid().TileAt(prep).TempReserved() || p.PrepTile() == nil {
		t.Error("Expected the pending prep tile to stay reserved")
	}
	if c.FinalTile().Coord != dest {
		t.Errorf("Expected %s's move plan to survive, got %v", c.Name, c.FinalTile().Coord)
	}
}

func TestPlanner_AttackTargetAcrossCliffCancels(t *testing.T) {
	g := NewGrid()
	for x, elev := range []float64{0, 0, 0, 2} {
		tile := g.AddTile(Coord{X: x}, elev)
		tile.PlayerDeployZone = true
		tile.EnemyDeployZone = true
	}
	g.AddTile(Coord{X: 3, Y: 1}, 0).EnemyDeployZone = true
	b, ps, es := startBattle(t, g, []Coord{{0, 0}}, []Coord{{3, 1}, {3, 0}})
	p := b.Planner()

	p.SelectUnit(ps[0])
	p.SetMode(ModeAttack)
	if err := p.Click(Coord{X: 2, Y: 0}); err != nil {
		t.Fatalf("Click prep: %v", err)
	}
	if err := p.Click(es[1].Coord()); !errors.Is(err, ErrNotAdjacent) {
		t.Errorf("Expected ErrNotAdjacent for a target up a cliff, got %v", err)
	}
	if ps[0].PlannedAction == ActionAttack {
		t.Error("Expected no attack plan across the cliff")
	}
}

func TestPlanner_AttackInvalidTargetCancels(t *testing.T) {
	b, ps, _ := startBattle(t, openGrid(5, 5), []Coord{{0, 0}}, []Coord{{3, 0}})
	p := b.Planner()
	a := ps[0]

	p.SelectUnit(a)
	p.SetMode(ModeAttack)
	p.Click(Coord{X: 2, Y: 0})

	if err := p.Click(Coord{X: 4, Y: 4}); !errors.Is(err, ErrNotAdjacent) {
		t.Errorf("Expected ErrNotAdjacent, got %v", err)
	}
	if b.Grid().TileAt(Coord{X: 2, Y: 0}).TempReserved() {
		t.Error("Expected the prep tile to be released")
	}
	if a.PlannedAction != ActionNone || len(a.PlannedPath) != 0 {
		t.Error("Expected no plan to be committed")
	}
	if p.Mode() != ModeNone {
		t.Errorf("Expected ModeNone, got %s", p.Mode())
	}
}

func TestPlanner_OneResourcePointUsesDirectAttack(t *testing.T) {
	b, ps, es := startBattle(t, openGrid(5, 5), []Coord{{0, 0}}, []Coord{{1, 0}})
	p := b.Planner()
	a, e := ps[0], es[0]
	a.ResourcePoints = 1

	p.SelectUnit(a)
	p.SetMode(ModeAttack)
	if n := len(p.Highlighted()); n != 0 {
		t.Errorf("Expected an empty attack range, got %d tiles", n)
	}
	if err := p.Click(e.Coord()); err != nil {
		t.Fatalf("Direct attack: %v", err)
	}
	if a.PlannedAction != ActionAttack || a.Target != e {
		t.Error("Expected a direct attack plan")
	}
	if len(a.PlannedPath) != 1 || a.PlannedPath[0] != a.Tile {
		t.Errorf("Expected a single-tile path on the unit's own tile, got %v", a.PlannedPath)
	}
}

func TestPlanner_OneResourcePointCannotReachDistantEnemy(t *testing.T) {
	b, ps, _ := startBattle(t, openGrid(5, 5), []Coord{{0, 0}}, []Coord{{2, 0}})
	p := b.Planner()
	a := ps[0]
	a.ResourcePoints = 1

	p.SelectUnit(a)
	p.SetMode(ModeAttack)
	if err := p.Click(Coord{X: 2, Y: 0}); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Expected ErrOutOfRange, got %v", err)
	}
	if a.PlannedAction != ActionNone {
		t.Error("Expected no plan")
	}
}

func TestPlanner_Defend(t *testing.T) {
	b, ps, _ := startBattle(t, openGrid(5, 5), []Coord{{0, 0}}, []Coord{{4, 4}})
	p := b.Planner()
	a := ps[0]

	p.SelectUnit(a)
	p.SetMode(ModeMove)
	p.Click(Coord{X: 1, Y: 0})
	if err := p.SetMode(ModeDefend); err != nil {
		t.Fatalf("SetMode(Defend): %v", err)
	}

	if a.PlannedAction != ActionDefend || len(a.PlannedPath) != 0 {
		t.Error("Expected a defend plan in place")
	}
	if b.Grid().TileAt(Coord{X: 1, Y: 0}).TempReserved() {
		t.Error("Expected the earlier move destination to be released")
	}
	if !a.Tile.TempReserved() {
		t.Error("Expected the unit's own tile to be reserved")
	}
	if p.Mode() != ModeNone {
		t.Errorf("Expected ModeNone, got %s", p.Mode())
	}
}

func TestPlanner_CancelPlan(t *testing.T) {
	b, ps, _ := startBattle(t, openGrid(5, 5), []Coord{{0, 0}}, []Coord{{4, 4}})
	p := b.Planner()
	a := ps[0]

	p.SelectUnit(a)
	p.SetMode(ModeMove)
	p.Click(Coord{X: 0, Y: 2})
	if err := p.CancelPlan(); err != nil {
		t.Fatalf("CancelPlan: %v", err)
	}

	if len(a.PlannedPath) != 0 {
		t.Error("Expected the plan to be dropped")
	}
	if b.Grid().TileAt(Coord{X: 0, Y: 2}).TempReserved() {
		t.Error("Expected the destination to be released")
	}
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"move", "Attack", "defend", "none"} {
		if _, err := ParseMode(s); err != nil {
			t.Errorf("ParseMode(%q): %v", s, err)
		}
	}
	if _, err := ParseMode("fly"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("Expected ErrUnknownMode, got %v", err)
	}
}
