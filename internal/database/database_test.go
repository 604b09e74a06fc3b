package database

import (
	"errors"
	"path/filepath"
	"testing"

	"grid-tactics/internal/battle"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "nested", "battles.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNew_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "battles.db")
	db, err := New(path)
	if err != nil {
		t.Fatalf("First open failed: %v", err)
	}
	db.Close()

	db, err = New(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM migrations`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != len(migrations) {
		t.Errorf("Expected %d applied migrations, got %d", len(migrations), count)
	}
}

func TestRecordResult(t *testing.T) {
	db := newTestDB(t)

	if err := db.CreateBattle("b1", "ctx-9", "", "crossroads", 7); err != nil {
		t.Fatalf("CreateBattle failed: %v", err)
	}

	rec, err := db.GetBattle("b1")
	if err != nil {
		t.Fatalf("GetBattle failed: %v", err)
	}
	if rec.Status != BattleStatusRunning || rec.EndedAt != nil {
		t.Errorf("Expected running battle without end time, got %s", rec.Status)
	}

	err = db.RecordResult(battle.Result{
		BattleID:        "b1",
		ContextID:       "ctx-9",
		Outcome:         battle.OutcomeDefeat,
		PlayerUnitsLost: 3,
		EnemyUnitsLost:  1,
		Rounds:          4,
	})
	if err != nil {
		t.Fatalf("RecordResult failed: %v", err)
	}

	rec, err = db.GetBattle("b1")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != BattleStatusFinished {
		t.Errorf("Expected finished, got %s", rec.Status)
	}
	if rec.Outcome != "Defeat" || rec.PlayerUnitsLost != 3 || rec.EnemyUnitsLost != 1 || rec.Rounds != 4 {
		t.Errorf("Unexpected record: %+v", rec)
	}
	if rec.ContextID != "ctx-9" || rec.Seed != 7 {
		t.Errorf("Expected context and seed to round-trip, got %q %d", rec.ContextID, rec.Seed)
	}
	if rec.EndedAt == nil {
		t.Error("Expected end time to be set")
	}

	// A second result for the same battle is refused
	if err := db.RecordResult(battle.Result{BattleID: "b1"}); !errors.Is(err, ErrBattleNotFound) {
		t.Errorf("Expected ErrBattleNotFound for repeat result, got %v", err)
	}
}

func TestGetBattle_NotFound(t *testing.T) {
	db := newTestDB(t)
	if _, err := db.GetBattle("missing"); !errors.Is(err, ErrBattleNotFound) {
		t.Errorf("Expected ErrBattleNotFound, got %v", err)
	}
}

func TestListResults_OnlyFinished(t *testing.T) {
	db := newTestDB(t)

	for _, id := range []string{"a", "b", "c"} {
		if err := db.CreateBattle(id, "", "", "ridge", 1); err != nil {
			t.Fatal(err)
		}
	}
	db.RecordResult(battle.Result{BattleID: "a", Outcome: battle.OutcomeVictory, Rounds: 2})
	db.AbandonBattle("b")

	results, err := db.ListResults(10)
	if err != nil {
		t.Fatalf("ListResults failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != "a" {
		t.Fatalf("Expected only battle a, got %d results", len(results))
	}

	rec, _ := db.GetBattle("b")
	if rec.Status != BattleStatusAbandoned {
		t.Errorf("Expected abandoned, got %s", rec.Status)
	}

	total, finished, err := db.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || finished != 1 {
		t.Errorf("Expected 3 battles with 1 finished, got %d/%d", total, finished)
	}
}

func TestBattleEvents(t *testing.T) {
	db := newTestDB(t)
	db.CreateBattle("b1", "", "", "crossroads", 0)

	db.AddEvent("b1", battle.Event{Type: battle.EventBattleStarted, Round: 1, Phase: "PlayerPlanning"})
	db.AddEvent("b1", battle.Event{Type: battle.EventUnitAttacked, Round: 1, Phase: "PlayerExecuting",
		UnitID: "u1", TargetID: "u2", Damage: 20})

	events, err := db.GetBattleEvents("b1")
	if err != nil {
		t.Fatalf("GetBattleEvents failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[1].EventType != "unit_attacked" || events[1].Damage != 20 || events[1].TargetID != "u2" {
		t.Errorf("Unexpected event: %+v", events[1])
	}
	if events[0].UnitID != "" {
		t.Errorf("Expected empty unit ID, got %q", events[0].UnitID)
	}

	since, err := db.GetBattleEventsSince("b1", events[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(since) != 1 {
		t.Errorf("Expected 1 event since first, got %d", len(since))
	}
}

func TestCommanders(t *testing.T) {
	db := newTestDB(t)

	c, err := db.CreateCommander("Ada")
	if err != nil {
		t.Fatalf("CreateCommander failed: %v", err)
	}
	if len(c.Token) != 64 {
		t.Errorf("Expected 64-char token, got %d", len(c.Token))
	}

	got, err := db.GetCommanderByToken(c.Token)
	if err != nil {
		t.Fatalf("GetCommanderByToken failed: %v", err)
	}
	if got.ID != c.ID || got.Name != "Ada" {
		t.Errorf("Expected %s/Ada, got %s/%s", c.ID, got.ID, got.Name)
	}
	if err := db.TouchCommander(c.ID); err != nil {
		t.Errorf("TouchCommander failed: %v", err)
	}

	if _, err := db.GetCommanderByToken("nope"); !errors.Is(err, ErrCommanderNotFound) {
		t.Errorf("Expected ErrCommanderNotFound, got %v", err)
	}
}

func TestRecorder_FullBattle(t *testing.T) {
	db := newTestDB(t)

	g := battle.NewGrid()
	for x := 0; x < 3; x++ {
		tile := g.AddTile(battle.Coord{X: x}, 0)
		tile.PlayerDeployZone = x == 0
		tile.EnemyDeployZone = x == 2
	}

	rec, err := db.NewRecorder("rec-1", "ctx", "", "strip", 0)
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}
	b := battle.New(g, battle.Options{ID: "rec-1", ContextID: "ctx", Events: rec, Results: rec})

	strong := battle.DefaultStats()
	strong.Attack = 200
	if err := b.DeployPlayer(battle.NewUnit("P", battle.TeamPlayer, strong), battle.Coord{X: 0}); err != nil {
		t.Fatal(err)
	}
	if err := b.DeployEnemy(battle.NewUnit("E", battle.TeamEnemy, battle.DefaultStats()), battle.Coord{X: 2}); err != nil {
		t.Fatal(err)
	}
	if err := b.Start(); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5 && !b.Turns().Resolved(); i++ {
		if err := battle.AutoPlan(b); err != nil {
			t.Fatalf("AutoPlan failed: %v", err)
		}
		if err := b.NextPhase(t.Context()); err != nil {
			t.Fatalf("NextPhase failed: %v", err)
		}
	}

	got, err := db.GetBattle("rec-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != BattleStatusFinished || got.Outcome != "Victory" {
		t.Fatalf("Expected finished Victory, got %s %s", got.Status, got.Outcome)
	}

	events, _ := db.GetBattleEvents("rec-1")
	if len(events) == 0 || events[len(events)-1].EventType != string(battle.EventBattleEnded) {
		t.Errorf("Expected history to end with battle_ended, got %d events", len(events))
	}
	for _, e := range events {
		if e.EventType == string(battle.EventPhaseChanged) {
			t.Error("Expected phase changes to be skipped")
		}
	}

	// Abandoning a finished battle leaves it alone
	rec.Abandon()
	got, _ = db.GetBattle("rec-1")
	if got.Status != BattleStatusFinished {
		t.Errorf("Expected finished to stick, got %s", got.Status)
	}
}
