package battle

import "errors"

// Planning errors. The planner rejects the command and keeps its state.
var (
	ErrNotPlanningPhase = errors.New("not in planning phase")
	ErrBattleNotStarted = errors.New("battle has not started")
	ErrNoUnitSelected   = errors.New("no unit selected")
	ErrNotSelectable    = errors.New("no selectable unit on tile")
	ErrAlreadyActed     = errors.New("unit has already acted this round")
	ErrOutOfRange       = errors.New("tile is not in range")
	ErrTileReserved     = errors.New("tile is already reserved")
	ErrNoPath           = errors.New("no path to tile")
	ErrNotAdjacent      = errors.New("target is not adjacent")
	ErrInvalidTarget    = errors.New("no enemy unit on tile")
	ErrUnknownMode      = errors.New("unknown planner mode")
)

// Battle lifecycle errors.
var (
	ErrBattleOver     = errors.New("battle is over")
	ErrAlreadyStarted = errors.New("battle already started")
	ErrNotDeployZone  = errors.New("tile is not in the team's deploy zone")
	ErrTileOccupied   = errors.New("tile is already occupied")
	ErrNoTile         = errors.New("no tile at coordinate")
	ErrEmptyRoster    = errors.New("each side needs at least one unit")
	ErrBattleClosed   = errors.New("battle is closed")
)
