package battle

import "github.com/google/uuid"

// Team is the side a unit fights for.
type Team int

const (
	TeamPlayer Team = iota
	TeamEnemy
)

// String returns the team name.
func (t Team) String() string {
	switch t {
	case TeamPlayer:
		return "Player"
	case TeamEnemy:
		return "Enemy"
	default:
		return "Unknown"
	}
}

// Opponent returns the opposing team.
func (t Team) Opponent() Team {
	if t == TeamPlayer {
		return TeamEnemy
	}
	return TeamPlayer
}

// PlannedAction is what a unit does after moving.
type PlannedAction int

const (
	ActionNone PlannedAction = iota
	ActionAttack
	ActionDefend
)

// String returns the action name.
func (a PlannedAction) String() string {
	switch a {
	case ActionAttack:
		return "Attack"
	case ActionDefend:
		return "Defend"
	default:
		return "None"
	}
}

// UnitStats are the combat stats a unit is created with.
type UnitStats struct {
	Type           string
	MaxHealth      int
	Attack         int
	Defense        int
	ResourcePoints int
}

// DefaultStats returns the stats of a basic infantry unit.
func DefaultStats() UnitStats {
	return UnitStats{
		Type:           "Infantry",
		MaxHealth:      100,
		Attack:         30,
		Defense:        10,
		ResourcePoints: 3,
	}
}

// Position is a unit's continuous on-screen location, in tile units.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Unit is one combatant on the grid.
type Unit struct {
	ID   string
	Name string
	Team Team
	Type string

	Health           int
	MaxHealth        int
	AttackPower      int
	DefensePower     int
	TempDefenseBonus int
	ResourcePoints   int

	Tile     *Tile
	Position Position

	PlannedPath   []*Tile
	PlannedAction PlannedAction
	Target        *Unit
	Finished      bool

	removed bool
}

// NewUnit creates a unit with full health.
func NewUnit(name string, team Team, stats UnitStats) *Unit {
	return &Unit{
		ID:             uuid.New().String(),
		Name:           name,
		Team:           team,
		Type:           stats.Type,
		Health:         stats.MaxHealth,
		MaxHealth:      stats.MaxHealth,
		AttackPower:    stats.Attack,
		DefensePower:   stats.Defense,
		ResourcePoints: stats.ResourcePoints,
	}
}

// Coord returns the coordinate of the unit's current tile.
func (u *Unit) Coord() Coord {
	if u.Tile == nil {
		return Coord{}
	}
	return u.Tile.Coord
}

// Alive reports whether the unit is still on the battlefield.
func (u *Unit) Alive() bool {
	return !u.removed
}

// FinalTile is where the unit ends the round: the last tile of its planned
// path, or its current tile when it stays.
func (u *Unit) FinalTile() *Tile {
	if n := len(u.PlannedPath); n > 0 {
		return u.PlannedPath[n-1]
	}
	return u.Tile
}

// reservedTile is the tile the unit's current plan holds a temporary
// reservation on, or nil when it has no plan.
func (u *Unit) reservedTile() *Tile {
	if n := len(u.PlannedPath); n > 0 {
		return u.PlannedPath[n-1]
	}
	if u.PlannedAction == ActionDefend {
		return u.Tile
	}
	return nil
}

// ClearPlan drops the planned path, action and target.
func (u *Unit) ClearPlan() {
	u.PlannedPath = nil
	u.PlannedAction = ActionNone
	u.Target = nil
}

// GrantDefenseBonus applies a temporary defense bonus. Any earlier bonus is
// retracted first so bonuses never stack.
func (u *Unit) GrantDefenseBonus(amount int) {
	u.RetractDefenseBonus()
	u.DefensePower += amount
	u.TempDefenseBonus = amount
}

// RetractDefenseBonus removes the temporary defense bonus, if any.
func (u *Unit) RetractDefenseBonus() {
	u.DefensePower -= u.TempDefenseBonus
	u.TempDefenseBonus = 0
}

// Damage returns how much health an attack from attacker takes off target.
// Every hit deals at least 1.
func Damage(attacker, target *Unit) int {
	d := attacker.AttackPower - target.DefensePower
	if d < 1 {
		return 1
	}
	return d
}

// Roster is the ordered list of live units for one team.
type Roster struct {
	units []*Unit
}

// Add appends a unit to the roster.
func (r *Roster) Add(u *Unit) {
	r.units = append(r.units, u)
}

// Remove drops a unit from the roster. It reports whether the unit was found.
func (r *Roster) Remove(u *Unit) bool {
	for i, x := range r.units {
		if x == u {
			r.units = append(r.units[:i], r.units[i+1:]...)
			return true
		}
	}
	return false
}

// Units returns a copy of the roster in order.
func (r *Roster) Units() []*Unit {
	out := make([]*Unit, len(r.units))
	copy(out, r.units)
	return out
}

// Len returns the number of live units.
func (r *Roster) Len() int {
	return len(r.units)
}

// At returns the unit standing on c, or nil.
func (r *Roster) At(c Coord) *Unit {
	for _, u := range r.units {
		if u.Tile != nil && u.Tile.Coord == c {
			return u
		}
	}
	return nil
}

// Clear empties the roster.
func (r *Roster) Clear() {
	r.units = nil
}
