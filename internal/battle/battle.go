package battle

import (
	"context"
	"log"
	"math/rand"

	"github.com/google/uuid"
)

// DefaultDefendBonus is the defense granted by a Defend action.
const DefaultDefendBonus = 5

// DefaultMaxEnemies caps automatic enemy deployment.
const DefaultMaxEnemies = 5

// Options configures a battle.
type Options struct {
	ID          string // generated when empty
	ContextID   string // caller's context, echoed in the result
	DefendBonus int
	Animator    Animator
	Events      EventSink
	Results     ResultConsumer
	Rand        *rand.Rand
}

// Battle owns every piece of one fight: the grid, both rosters, the turn
// system, the planner and the executors. It is created before deployment,
// started once both sides are placed and closed when the fight is over.
type Battle struct {
	ID        string
	ContextID string

	grid   *Grid
	res    *Reservations
	ranges RangeFinder
	paths  PathFinder

	players *Roster
	enemies *Roster

	initialPlayers int
	initialEnemies int

	turns      *TurnSystem
	planner    *Planner
	playerExec *Executor
	enemyExec  *Executor
	ai         *EnemyAI

	animator Animator
	events   EventSink
	results  ResultConsumer
	rng      *rand.Rand

	started bool
	closed  bool
}

// New creates a battle on a grid. The grid must not be shared with another
// battle.
func New(grid *Grid, opts Options) *Battle {
	if opts.ID == "" {
		opts.ID = uuid.New().String()
	}
	if opts.DefendBonus <= 0 {
		opts.DefendBonus = DefaultDefendBonus
	}
	if opts.Animator == nil {
		opts.Animator = InstantAnimator{}
	}
	if opts.Events == nil {
		opts.Events = discardSink{}
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(rand.Int63()))
	}

	b := &Battle{
		ID:        opts.ID,
		ContextID: opts.ContextID,
		grid:      grid,
		res:       NewReservations(grid),
		ranges:    NewRangeFinder(grid),
		paths:     NewPathFinder(grid),
		players:   &Roster{},
		enemies:   &Roster{},
		animator:  opts.Animator,
		events:    opts.Events,
		results:   opts.Results,
		rng:       opts.Rand,
	}
	b.turns = newTurnSystem(b)
	b.planner = newPlanner(b)
	b.ai = newEnemyAI(b)
	b.playerExec = newExecutor(b, TeamPlayer, opts.DefendBonus)
	b.enemyExec = newExecutor(b, TeamEnemy, opts.DefendBonus)
	b.enemyExec.planFunc = b.ai.Plan
	b.enemyExec.beforePass = b.ai.BeginPhase
	return b
}

// Grid returns the battlefield.
func (b *Battle) Grid() *Grid { return b.grid }

// Reservations returns the reservation manager.
func (b *Battle) Reservations() *Reservations { return b.res }

// Ranges returns the range finder.
func (b *Battle) Ranges() RangeFinder { return b.ranges }

// Paths returns the path finder.
func (b *Battle) Paths() PathFinder { return b.paths }

// Planner returns the player planner.
func (b *Battle) Planner() *Planner { return b.planner }

// Turns returns the turn system.
func (b *Battle) Turns() *TurnSystem { return b.turns }

// Players returns the live player units in roster order.
func (b *Battle) Players() []*Unit { return b.players.Units() }

// Enemies returns the live enemy units in roster order.
func (b *Battle) Enemies() []*Unit { return b.enemies.Units() }

// Started reports whether deployment is over.
func (b *Battle) Started() bool { return b.started }

// Roster returns the roster for a team.
func (b *Battle) roster(team Team) *Roster {
	if team == TeamPlayer {
		return b.players
	}
	return b.enemies
}

// UnitAt returns the live unit standing on c, or nil.
func (b *Battle) UnitAt(c Coord) *Unit {
	if u := b.players.At(c); u != nil {
		return u
	}
	return b.enemies.At(c)
}

// enemyOf returns the live unit on c that fights against u, or nil.
func (b *Battle) enemyOf(u *Unit, c Coord) *Unit {
	return b.roster(u.Team.Opponent()).At(c)
}

// DeployPlayer places a player unit on a free tile of the player deploy zone.
func (b *Battle) DeployPlayer(u *Unit, c Coord) error {
	u.Team = TeamPlayer
	return b.deploy(u, c, func(t *Tile) bool { return t.PlayerDeployZone })
}

// DeployEnemy places an enemy unit on a free tile of the enemy deploy zone.
func (b *Battle) DeployEnemy(u *Unit, c Coord) error {
	u.Team = TeamEnemy
	return b.deploy(u, c, func(t *Tile) bool { return t.EnemyDeployZone })
}

func (b *Battle) deploy(u *Unit, c Coord, inZone func(*Tile) bool) error {
	if b.closed {
		return ErrBattleClosed
	}
	if b.started {
		return ErrAlreadyStarted
	}
	t := b.grid.TileAt(c)
	if t == nil {
		return ErrNoTile
	}
	if !inZone(t) {
		log.Printf("[Deploy] %v is not a valid deployment tile for %s", c, u.Team)
		return ErrNotDeployZone
	}
	if t.Blocked() {
		log.Printf("[Deploy] %v is already occupied", c)
		return ErrTileOccupied
	}

	b.res.Occupy(c)
	b.res.ReserveTurn(c)
	u.Tile = t
	u.Position = tilePosition(t)
	u.removed = false
	b.roster(u.Team).Add(u)
	log.Printf("[Deploy] %s unit %s deployed at %v", u.Team, u.Name, c)
	return nil
}

// AutoDeployEnemies fills up to max random free tiles of the enemy deploy
// zone with units created by newUnit. It returns the deployed units.
func (b *Battle) AutoDeployEnemies(max int, newUnit func(i int) *Unit) []*Unit {
	if max <= 0 {
		max = DefaultMaxEnemies
	}
	var candidates []*Tile
	for _, t := range b.grid.DeployZone(TeamEnemy) {
		if !t.Blocked() {
			candidates = append(candidates, t)
		}
	}

	var deployed []*Unit
	for i := 0; i < max && len(candidates) > 0; i++ {
		idx := b.rng.Intn(len(candidates))
		t := candidates[idx]
		candidates = append(candidates[:idx], candidates[idx+1:]...)

		u := newUnit(i)
		if err := b.DeployEnemy(u, t.Coord); err != nil {
			log.Printf("[Deploy] Auto-deploy at %v failed: %v", t.Coord, err)
			continue
		}
		deployed = append(deployed, u)
	}
	log.Printf("[Deploy] Auto-deployed %d enemy units", len(deployed))
	return deployed
}

// ResetDeployment removes every deployed unit and clears all tile flags.
func (b *Battle) ResetDeployment() error {
	if b.started {
		return ErrAlreadyStarted
	}
	b.players.Clear()
	b.enemies.Clear()
	b.res.Reset()
	log.Printf("[Deploy] All deployed units cleared")
	return nil
}

// Start ends deployment and opens the first planning phase.
func (b *Battle) Start() error {
	if b.closed {
		return ErrBattleClosed
	}
	if b.started {
		return ErrAlreadyStarted
	}
	if b.players.Len() == 0 || b.enemies.Len() == 0 {
		return ErrEmptyRoster
	}
	b.initialPlayers = b.players.Len()
	b.initialEnemies = b.enemies.Len()
	b.started = true
	b.turns.begin()
	b.emit(Event{Type: EventBattleStarted, Message: b.ID})
	log.Printf("[Battle] %s started: %d player units vs %d enemy units", b.ID, b.initialPlayers, b.initialEnemies)
	return nil
}

// NextPhase ends the planning phase and runs the round until the next
// planning phase or the end of the battle.
func (b *Battle) NextPhase(ctx context.Context) error {
	if b.closed {
		return ErrBattleClosed
	}
	if !b.started {
		return ErrBattleNotStarted
	}
	return b.turns.NextPhase(ctx)
}

// Close tears the battle down. Later commands fail with ErrBattleClosed.
func (b *Battle) Close() {
	if b.closed {
		return
	}
	b.closed = true
	b.planner.reset()
	log.Printf("[Battle] %s closed", b.ID)
}

// removeUnit plays the unit's death, releases its tile and drops it from the
// rosters. It returns once the unit is fully gone.
func (b *Battle) removeUnit(ctx context.Context, u *Unit) error {
	if u.removed {
		return nil
	}
	if err := b.animator.PlayDeath(ctx, u); err != nil {
		return err
	}
	if u.Tile != nil {
		b.res.ReleaseTile(u.Tile.Coord)
	}
	u.removed = true
	b.players.Remove(u)
	b.enemies.Remove(u)
	b.emit(Event{Type: EventUnitDied, UnitID: u.ID, To: coordPtr(u.Coord())})
	log.Printf("[Battle] %s removed from the battlefield", u.Name)
	return nil
}

func (b *Battle) emit(ev Event) {
	ev.Round = b.turns.Round()
	ev.Phase = b.turns.Phase().String()
	b.events.Emit(ev)
}

func coordPtr(c Coord) *Coord {
	return &c
}
