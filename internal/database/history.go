package database

import (
	"database/sql"
	"time"

	"grid-tactics/internal/battle"
)

// EventRecord is a single battle event in the history log.
type EventRecord struct {
	ID        int64
	BattleID  string
	Round     int
	Phase     string
	EventType string
	UnitID    string
	TargetID  string
	Damage    int
	Message   string
	CreatedAt time.Time
}

// AddEvent appends a battle event to the history.
func (db *DB) AddEvent(battleID string, ev battle.Event) error {
	_, err := db.conn.Exec(`
		INSERT INTO battle_events (battle_id, round, phase, event_type, unit_id, target_id, damage, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, battleID, ev.Round, ev.Phase, string(ev.Type), nullString(ev.UnitID), nullString(ev.TargetID),
		ev.Damage, ev.Message, time.Now())
	return err
}

// GetBattleEvents retrieves all events for a battle, ordered chronologically.
func (db *DB) GetBattleEvents(battleID string) ([]*EventRecord, error) {
	return db.GetBattleEventsSince(battleID, 0)
}

// GetBattleEventsSince retrieves events after a given ID (for incremental updates).
func (db *DB) GetBattleEventsSince(battleID string, afterID int64) ([]*EventRecord, error) {
	rows, err := db.conn.Query(`
		SELECT id, battle_id, round, phase, event_type, unit_id, target_id, damage, message, created_at
		FROM battle_events
		WHERE battle_id = ? AND id > ?
		ORDER BY id ASC
	`, battleID, afterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*EventRecord
	for rows.Next() {
		e := &EventRecord{}
		var unitID, targetID, message sql.NullString
		if err := rows.Scan(&e.ID, &e.BattleID, &e.Round, &e.Phase, &e.EventType,
			&unitID, &targetID, &e.Damage, &message, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.UnitID = unitID.String
		e.TargetID = targetID.String
		e.Message = message.String
		events = append(events, e)
	}
	return events, rows.Err()
}
