package database

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Commander is whoever plays the player side of a battle.
type Commander struct {
	ID         string
	Token      string
	Name       string
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// ErrCommanderNotFound is returned when a commander is not found.
var ErrCommanderNotFound = errors.New("commander not found")

// CreateCommander creates a new commander with a generated token.
func (db *DB) CreateCommander(name string) (*Commander, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	c := &Commander{
		ID:        uuid.New().String(),
		Token:     token,
		Name:      name,
		CreatedAt: time.Now(),
	}
	c.LastSeenAt = c.CreatedAt

	_, err = db.conn.Exec(`
		INSERT INTO commanders (id, token, name, created_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.Token, c.Name, c.CreatedAt, c.LastSeenAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetCommanderByToken retrieves a commander by their token.
func (db *DB) GetCommanderByToken(token string) (*Commander, error) {
	var c Commander
	err := db.conn.QueryRow(`
		SELECT id, token, name, created_at, last_seen_at
		FROM commanders WHERE token = ?
	`, token).Scan(&c.ID, &c.Token, &c.Name, &c.CreatedAt, &c.LastSeenAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCommanderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// TouchCommander updates the commander's last seen timestamp.
func (db *DB) TouchCommander(id string) error {
	_, err := db.conn.Exec(`UPDATE commanders SET last_seen_at = ? WHERE id = ?`, time.Now(), id)
	return err
}

// generateToken creates a random 32-byte hex token.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
