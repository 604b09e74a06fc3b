package battle

import "fmt"

// Reservations is the single writer of tile occupancy and reservation flags.
//
// The planner only acquires and releases temporary reservations. The turn
// system promotes temporary reservations to full-turn ones and clears them at
// phase boundaries. Deployment, movement and death change occupancy.
type Reservations struct {
	grid *Grid
}

// NewReservations creates a reservation manager for a grid.
func NewReservations(grid *Grid) *Reservations {
	return &Reservations{grid: grid}
}

// AcquireTemp marks c as temporarily reserved. It fails if the tile is
// missing or already temporarily reserved.
func (r *Reservations) AcquireTemp(c Coord) bool {
	t := r.grid.TileAt(c)
	if t == nil || t.tempReserved {
		return false
	}
	t.tempReserved = true
	return true
}

// acquireTempOwn marks a tile the unit already stands on. Unlike AcquireTemp
// it accepts occupied and turn-reserved tiles.
func (r *Reservations) acquireTempOwn(c Coord) bool {
	t := r.grid.TileAt(c)
	if t == nil {
		return false
	}
	t.tempReserved = true
	return true
}

// ReleaseTemp clears a temporary reservation on c.
func (r *Reservations) ReleaseTemp(c Coord) {
	if t := r.grid.TileAt(c); t != nil {
		t.tempReserved = false
	}
}

// PromoteToTurn converts the tile's temporary reservation into a full-turn
// reservation. Tiles with no temporary reservation are locked all the same.
func (r *Reservations) PromoteToTurn(c Coord) {
	if t := r.grid.TileAt(c); t != nil {
		t.tempReserved = false
		t.turnReserved = true
	}
}

// ReserveTurn marks c as reserved for the whole round.
func (r *Reservations) ReserveTurn(c Coord) {
	if t := r.grid.TileAt(c); t != nil {
		t.turnReserved = true
	}
}

// ReleaseAllTemp clears every temporary reservation on the grid and returns
// how many were cleared.
func (r *Reservations) ReleaseAllTemp() int {
	n := 0
	for _, t := range r.grid.order {
		if t.tempReserved {
			t.tempReserved = false
			n++
		}
	}
	return n
}

// ClearAll drops every temporary and full-turn reservation. Occupancy stays.
func (r *Reservations) ClearAll() {
	for _, t := range r.grid.order {
		t.tempReserved = false
		t.turnReserved = false
	}
}

// Occupy marks c as standing ground for a unit. It fails if another unit is
// already there.
func (r *Reservations) Occupy(c Coord) bool {
	t := r.grid.TileAt(c)
	if t == nil || t.occupied {
		return false
	}
	t.occupied = true
	return true
}

// Vacate clears occupancy on c.
func (r *Reservations) Vacate(c Coord) {
	if t := r.grid.TileAt(c); t != nil {
		t.occupied = false
	}
}

// ReleaseTile drops every flag on c. Used when the unit standing there dies
// or is withdrawn.
func (r *Reservations) ReleaseTile(c Coord) {
	if t := r.grid.TileAt(c); t != nil {
		t.occupied = false
		t.tempReserved = false
		t.turnReserved = false
	}
}

// Reset clears all flags on every tile.
func (r *Reservations) Reset() {
	for _, t := range r.grid.order {
		t.occupied = false
		t.tempReserved = false
		t.turnReserved = false
	}
}

// CheckInvariant returns an error naming the first tile that is free yet holds
// both a temporary and a full-turn reservation.
func (r *Reservations) CheckInvariant() error {
	for _, t := range r.grid.order {
		if !t.occupied && t.tempReserved && t.turnReserved {
			return fmt.Errorf("tile %v holds temporary and full-turn reservations", t.Coord)
		}
	}
	return nil
}
