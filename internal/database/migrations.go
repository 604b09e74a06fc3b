package database

import "fmt"

type migration struct {
	id   int
	name string
	sql  string
}

var migrations = []migration{
	{
		id:   1,
		name: "initial_schema",
		sql: `
			-- Commanders: whoever plays the player side, identified by token
			CREATE TABLE commanders (
				id TEXT PRIMARY KEY,
				token TEXT UNIQUE NOT NULL,
				name TEXT NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				last_seen_at DATETIME DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX idx_commanders_token ON commanders(token);

			-- Battles: one row per fight, filled in when it ends
			CREATE TABLE battles (
				id TEXT PRIMARY KEY,
				context_id TEXT,
				commander_id TEXT,
				map_id TEXT NOT NULL,
				seed INTEGER NOT NULL DEFAULT 0,
				status TEXT NOT NULL DEFAULT 'running',
				outcome TEXT,
				player_units_lost INTEGER DEFAULT 0,
				enemy_units_lost INTEGER DEFAULT 0,
				rounds INTEGER DEFAULT 0,
				started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				ended_at DATETIME,
				FOREIGN KEY (commander_id) REFERENCES commanders(id)
			);
			CREATE INDEX idx_battles_status ON battles(status, ended_at);
			CREATE INDEX idx_battles_commander ON battles(commander_id);
		`,
	},
	{
		id:   2,
		name: "add_battle_events",
		sql: `
			-- Battle events: execution log for replay/debugging
			CREATE TABLE battle_events (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				battle_id TEXT NOT NULL,
				round INTEGER NOT NULL,
				phase TEXT NOT NULL,
				event_type TEXT NOT NULL,
				unit_id TEXT,
				target_id TEXT,
				damage INTEGER DEFAULT 0,
				message TEXT,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (battle_id) REFERENCES battles(id) ON DELETE CASCADE
			);
			CREATE INDEX idx_battle_events_battle ON battle_events(battle_id);
		`,
	},
}

// migrate runs all database migrations that have not been applied yet.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	applied := make(map[int]bool)
	rows, err := db.conn.Query(`SELECT id FROM migrations`)
	if err != nil {
		return err
	}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		applied[id] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.id] {
			continue
		}
		if err := db.runMigration(m); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.id, m.name, err)
		}
	}
	return nil
}

func (db *DB) runMigration(m migration) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.sql); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO migrations (id, name) VALUES (?, ?)", m.id, m.name); err != nil {
		return err
	}
	return tx.Commit()
}
