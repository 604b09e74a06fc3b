package battle

import (
	"context"
	"math"
	"time"
)

// Animator plays the visual side of battle steps. Each call returns once the
// step has finished; executors wait on it before moving on.
type Animator interface {
	// MoveStep carries u from its current tile to the adjacent tile to.
	MoveStep(ctx context.Context, u *Unit, to *Tile) error
	// PlayAttack plays u striking target.
	PlayAttack(ctx context.Context, u, target *Unit) error
	// PlayDeath plays u's death before it is removed.
	PlayDeath(ctx context.Context, u *Unit) error
}

// InstantAnimator completes every step immediately.
type InstantAnimator struct{}

// MoveStep snaps the unit onto the tile.
func (InstantAnimator) MoveStep(ctx context.Context, u *Unit, to *Tile) error {
	u.Position = tilePosition(to)
	return ctx.Err()
}

// PlayAttack returns immediately.
func (InstantAnimator) PlayAttack(ctx context.Context, u, target *Unit) error {
	return ctx.Err()
}

// PlayDeath returns immediately.
func (InstantAnimator) PlayDeath(ctx context.Context, u *Unit) error {
	return ctx.Err()
}

// TickAnimator interpolates movement on a fixed tick and holds attack and
// death steps for a set duration.
type TickAnimator struct {
	MoveSpeed  float64       // tiles per second
	Epsilon    float64       // convergence distance
	Tick       time.Duration // frame length
	AttackTime time.Duration
	DeathTime  time.Duration
	OnFrame    func(u *Unit) // optional, called after each frame
}

// NewTickAnimator returns a TickAnimator with the stock timings.
func NewTickAnimator() *TickAnimator {
	return &TickAnimator{
		MoveSpeed:  2,
		Epsilon:    0.01,
		Tick:       16 * time.Millisecond,
		AttackTime: 300 * time.Millisecond,
		DeathTime:  500 * time.Millisecond,
	}
}

// MoveStep moves the unit toward the tile frame by frame until it is within
// Epsilon, then snaps it onto the tile.
func (a *TickAnimator) MoveStep(ctx context.Context, u *Unit, to *Tile) error {
	target := tilePosition(to)
	maxStep := a.MoveSpeed * a.Tick.Seconds()
	if maxStep <= 0 {
		u.Position = target
		return ctx.Err()
	}

	ticker := time.NewTicker(a.Tick)
	defer ticker.Stop()

	for distance(u.Position, target) > a.Epsilon {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		u.Position = moveTowards(u.Position, target, maxStep)
		if a.OnFrame != nil {
			a.OnFrame(u)
		}
	}
	u.Position = target
	return nil
}

// PlayAttack waits for AttackTime.
func (a *TickAnimator) PlayAttack(ctx context.Context, u, target *Unit) error {
	return wait(ctx, a.AttackTime)
}

// PlayDeath waits for DeathTime.
func (a *TickAnimator) PlayDeath(ctx context.Context, u *Unit) error {
	return wait(ctx, a.DeathTime)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func tilePosition(t *Tile) Position {
	return Position{X: float64(t.Coord.X), Y: float64(t.Coord.Y)}
}

func distance(a, b Position) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// moveTowards advances from current toward target by at most maxStep.
func moveTowards(current, target Position, maxStep float64) Position {
	d := distance(current, target)
	if d <= maxStep || d == 0 {
		return target
	}
	return Position{
		X: current.X + (target.X-current.X)/d*maxStep,
		Y: current.Y + (target.Y-current.Y)/d*maxStep,
	}
}
