package database

import (
	"log"

	"grid-tactics/internal/battle"
)

// Recorder logs one battle's events and result. It satisfies
// battle.EventSink and battle.ResultConsumer. Write failures are logged and
// never interrupt the battle.
type Recorder struct {
	db       *DB
	battleID string
}

// NewRecorder registers a running battle and returns a recorder for it.
func (db *DB) NewRecorder(battleID, contextID, commanderID, mapID string, seed int64) (*Recorder, error) {
	if err := db.CreateBattle(battleID, contextID, commanderID, mapID, seed); err != nil {
		return nil, err
	}
	return &Recorder{db: db, battleID: battleID}, nil
}

// Emit appends the event to the battle history. Phase changes are skipped;
// they are implied by the round and phase of the surrounding events.
func (r *Recorder) Emit(ev battle.Event) {
	if ev.Type == battle.EventPhaseChanged {
		return
	}
	if err := r.db.AddEvent(r.battleID, ev); err != nil {
		log.Printf("[Recorder] Failed to record %s for battle %s: %v", ev.Type, r.battleID, err)
	}
}

// OnBattleResult stores the final result.
func (r *Recorder) OnBattleResult(res battle.Result) {
	if err := r.db.RecordResult(res); err != nil {
		log.Printf("[Recorder] Failed to record result for battle %s: %v", r.battleID, err)
		return
	}
	log.Printf("[Recorder] Battle %s: %s after %d rounds", r.battleID, res.Outcome, res.Rounds)
}

// Abandon marks the battle abandoned if it never finished.
func (r *Recorder) Abandon() {
	if err := r.db.AbandonBattle(r.battleID); err != nil {
		log.Printf("[Recorder] Failed to abandon battle %s: %v", r.battleID, err)
	}
}
