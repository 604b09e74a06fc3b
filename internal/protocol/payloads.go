package protocol

// ==================== Session Payloads ====================

// WelcomePayload is sent when a client connects.
type WelcomePayload struct {
	ClientID    string    `json:"client_id"`
	CommanderID string    `json:"commander_id,omitempty"`
	Token       string    `json:"token,omitempty"` // Reconnect with ?token=
	Maps        []MapInfo `json:"maps"`
}

// MapInfo describes one arena the server can host.
type MapInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// StartBattlePayload is sent to start a battle in this session. Empty fields
// fall back to the server's scenario.
type StartBattlePayload struct {
	MapID     string `json:"map_id,omitempty"`
	Seed      int64  `json:"seed,omitempty"`
	ContextID string `json:"context_id,omitempty"` // Echoed in the result
	Animate   bool   `json:"animate,omitempty"`    // Stream movement frames
}

// ==================== Planning Payloads ====================

// TilePayload carries a grid coordinate already resolved by the client.
type TilePayload struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// SetModePayload switches the planner mode (none, move, attack, defend).
type SetModePayload struct {
	Mode string `json:"mode"`
}

// ==================== Battle Payloads ====================

// BattleStatePayload is a full snapshot of the battle.
type BattleStatePayload struct {
	BattleID string `json:"battle_id"`
	MapID    string `json:"map_id"`
	Round    int    `json:"round"`
	Phase    string `json:"phase"`

	// Planner state
	Mode        string        `json:"mode"`
	SelectedID  string        `json:"selected_id,omitempty"`
	PrepTile    *TilePayload  `json:"prep_tile,omitempty"`
	Highlighted []TilePayload `json:"highlighted,omitempty"`

	Tiles  []TileInfo     `json:"tiles"`
	Units  []UnitInfo     `json:"units"`
	Result *ResultPayload `json:"result,omitempty"`
}

// TileInfo is the state of one tile.
type TileInfo struct {
	X            int     `json:"x"`
	Y            int     `json:"y"`
	Elevation    float64 `json:"elevation,omitempty"`
	PlayerZone   bool    `json:"player_zone,omitempty"`
	EnemyZone    bool    `json:"enemy_zone,omitempty"`
	Occupied     bool    `json:"occupied,omitempty"`
	TempReserved bool    `json:"temp_reserved,omitempty"`
	TurnReserved bool    `json:"turn_reserved,omitempty"`
}

// UnitInfo is the state of one unit.
type UnitInfo struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Team           string        `json:"team"`
	Type           string        `json:"type"`
	X              int           `json:"x"`
	Y              int           `json:"y"`
	PosX           float64       `json:"pos_x"`
	PosY           float64       `json:"pos_y"`
	Health         int           `json:"health"`
	MaxHealth      int           `json:"max_health"`
	Attack         int           `json:"attack"`
	Defense        int           `json:"defense"`
	ResourcePoints int           `json:"resource_points"`
	PlannedAction  string        `json:"planned_action"`
	PlannedPath    []TilePayload `json:"planned_path,omitempty"`
	TargetID       string        `json:"target_id,omitempty"`
	Finished       bool          `json:"finished"`
}

// BattleEventPayload reports one step of execution.
type BattleEventPayload struct {
	Type     string       `json:"type"`
	Round    int          `json:"round"`
	Phase    string       `json:"phase"`
	UnitID   string       `json:"unit_id,omitempty"`
	TargetID string       `json:"target_id,omitempty"`
	From     *TilePayload `json:"from,omitempty"`
	To       *TilePayload `json:"to,omitempty"`
	Damage   int          `json:"damage,omitempty"`
	Health   int          `json:"health,omitempty"`
	Message  string       `json:"message,omitempty"`
}

// UnitFramePayload is an interpolated unit position during movement.
type UnitFramePayload struct {
	UnitID string  `json:"unit_id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// ResultPayload is sent once when the battle ends.
type ResultPayload struct {
	BattleID        string `json:"battle_id"`
	ContextID       string `json:"context_id,omitempty"`
	Outcome         string `json:"outcome"` // Victory or Defeat
	PlayerUnitsLost int    `json:"player_units_lost"`
	EnemyUnitsLost  int    `json:"enemy_units_lost"`
	Rounds          int    `json:"rounds"`
}

// LeftBattlePayload acknowledges leave_battle.
type LeftBattlePayload struct {
	BattleID string `json:"battle_id"`
}

// EventLogPayload is the recorded history of one battle, served over HTTP.
type EventLogPayload struct {
	BattleID string            `json:"battle_id"`
	MapID    string            `json:"map_id"`
	Status   string            `json:"status"`
	Outcome  string            `json:"outcome,omitempty"`
	Events   []LoggedEventInfo `json:"events"`
}

// LoggedEventInfo is one stored battle event. ID orders events and can be
// passed back as ?since= to fetch only newer ones.
type LoggedEventInfo struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Round     int    `json:"round"`
	Phase     string `json:"phase"`
	UnitID    string `json:"unit_id,omitempty"`
	TargetID  string `json:"target_id,omitempty"`
	Damage    int    `json:"damage,omitempty"`
	Message   string `json:"message,omitempty"`
	CreatedAt int64  `json:"created_at"` // unix millis
}
