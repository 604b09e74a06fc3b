package database

import (
	"database/sql"
	"errors"
	"time"

	"grid-tactics/internal/battle"
)

// BattleStatus represents the current status of a battle.
type BattleStatus string

const (
	BattleStatusRunning   BattleStatus = "running"   // Fight in progress
	BattleStatusFinished  BattleStatus = "finished"  // Result reported
	BattleStatusAbandoned BattleStatus = "abandoned" // Session closed first
)

// BattleRecord is one logged battle.
type BattleRecord struct {
	ID              string
	ContextID       string
	CommanderID     string
	MapID           string
	Seed            int64
	Status          BattleStatus
	Outcome         string
	PlayerUnitsLost int
	EnemyUnitsLost  int
	Rounds          int
	StartedAt       time.Time
	EndedAt         *time.Time
}

// ErrBattleNotFound is returned when a battle is not found.
var ErrBattleNotFound = errors.New("battle not found")

// CreateBattle logs a new running battle.
func (db *DB) CreateBattle(id, contextID, commanderID, mapID string, seed int64) error {
	_, err := db.conn.Exec(`
		INSERT INTO battles (id, context_id, commander_id, map_id, seed, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, nullString(contextID), nullString(commanderID), mapID, seed, BattleStatusRunning, time.Now())
	return err
}

// RecordResult stores the outcome of a battle and marks it finished.
func (db *DB) RecordResult(r battle.Result) error {
	res, err := db.conn.Exec(`
		UPDATE battles
		SET status = ?, outcome = ?, player_units_lost = ?, enemy_units_lost = ?, rounds = ?, ended_at = ?
		WHERE id = ? AND status = ?
	`, BattleStatusFinished, r.Outcome.String(), r.PlayerUnitsLost, r.EnemyUnitsLost, r.Rounds, time.Now(),
		r.BattleID, BattleStatusRunning)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBattleNotFound
	}
	return nil
}

// AbandonBattle marks a running battle as abandoned.
func (db *DB) AbandonBattle(id string) error {
	_, err := db.conn.Exec(`
		UPDATE battles SET status = ?, ended_at = ? WHERE id = ? AND status = ?
	`, BattleStatusAbandoned, time.Now(), id, BattleStatusRunning)
	return err
}

// GetBattle retrieves a battle by ID.
func (db *DB) GetBattle(id string) (*BattleRecord, error) {
	row := db.conn.QueryRow(`
		SELECT id, context_id, commander_id, map_id, seed, status, outcome,
		       player_units_lost, enemy_units_lost, rounds, started_at, ended_at
		FROM battles WHERE id = ?
	`, id)

	b, err := scanBattle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBattleNotFound
	}
	return b, err
}

// ListResults returns the most recently finished battles, newest first.
func (db *DB) ListResults(limit int) ([]*BattleRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.Query(`
		SELECT id, context_id, commander_id, map_id, seed, status, outcome,
		       player_units_lost, enemy_units_lost, rounds, started_at, ended_at
		FROM battles
		WHERE status = ?
		ORDER BY ended_at DESC, id DESC
		LIMIT ?
	`, BattleStatusFinished, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var battles []*BattleRecord
	for rows.Next() {
		b, err := scanBattle(rows)
		if err != nil {
			return nil, err
		}
		battles = append(battles, b)
	}
	return battles, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanBattle(s scanner) (*BattleRecord, error) {
	var b BattleRecord
	var contextID, commanderID, outcome sql.NullString
	var endedAt sql.NullTime

	err := s.Scan(&b.ID, &contextID, &commanderID, &b.MapID, &b.Seed, &b.Status, &outcome,
		&b.PlayerUnitsLost, &b.EnemyUnitsLost, &b.Rounds, &b.StartedAt, &endedAt)
	if err != nil {
		return nil, err
	}

	b.ContextID = contextID.String
	b.CommanderID = commanderID.String
	b.Outcome = outcome.String
	if endedAt.Valid {
		b.EndedAt = &endedAt.Time
	}
	return &b, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
