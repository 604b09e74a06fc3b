package maps

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// GeneratorOptions contains settings for arena generation.
type GeneratorOptions struct {
	Width     int   // Arena width: 8-40
	Height    int   // Arena height: 6-30
	ZoneDepth int   // Columns of deploy zone on each side: 1-4
	Obstacles int   // Void percentage in the middle columns: 0-40
	Hills     int   // Number of raised patches: 0-6
	Seed      int64 // 0 picks a time-based seed
}

// DefaultOptions returns generator settings for a mid-sized arena.
func DefaultOptions() GeneratorOptions {
	return GeneratorOptions{
		Width:     12,
		Height:    8,
		ZoneDepth: 2,
		Obstacles: 15,
		Hills:     2,
	}
}

// maxAttempts bounds how many layouts are rolled before obstacles are dropped.
const maxAttempts = 20

// Generator handles procedural arena generation.
type Generator struct {
	options GeneratorOptions
	rng     *rand.Rand
	width   int
	height  int
}

// NewGenerator creates a new arena generator.
func NewGenerator(opts GeneratorOptions) *Generator {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	opts.ZoneDepth = clamp(opts.ZoneDepth, 1, 4)
	opts.Obstacles = clamp(opts.Obstacles, 0, 40)
	opts.Hills = clamp(opts.Hills, 0, 6)

	return &Generator{
		options: opts,
		rng:     rand.New(rand.NewSource(seed)),
		width:   clamp(opts.Width, 8, 40),
		height:  clamp(opts.Height, 6, 30),
	}
}

// clamp restricts a value to a range
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Generate creates an arena where both deploy zones share a region. If no
// random layout connects them, the obstacles are dropped.
func (g *Generator) Generate() (*Map, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		raw := g.layout(g.options.Obstacles)
		m, err := g.finish(raw, attempt)
		if err != nil {
			return nil, err
		}
		if m.Contested() {
			return m, nil
		}
	}
	return g.finish(g.layout(0), maxAttempts)
}

func (g *Generator) finish(raw *RawMap, attempt int) (*Map, error) {
	if err := validate(raw); err != nil {
		return nil, fmt.Errorf("generated map attempt %d: %w", attempt, err)
	}
	return Process(raw), nil
}

// layout rolls one arena.
func (g *Generator) layout(obstacles int) *RawMap {
	depth := g.options.ZoneDepth
	rows := make([]string, g.height)
	for y := 0; y < g.height; y++ {
		var sb strings.Builder
		for x := 0; x < g.width; x++ {
			switch {
			case x < depth:
				sb.WriteRune(CellPlayerZone.Rune())
			case x >= g.width-depth:
				sb.WriteRune(CellEnemyZone.Rune())
			case g.rng.Intn(100) < obstacles:
				sb.WriteRune(CellVoid.Rune())
			default:
				sb.WriteRune(CellFloor.Rune())
			}
		}
		rows[y] = sb.String()
	}

	return &RawMap{
		ID:        fmt.Sprintf("generated-%dx%d", g.width, g.height),
		Name:      "Generated Arena",
		Width:     g.width,
		Height:    g.height,
		Rows:      rows,
		Elevation: g.hills(),
	}
}

// hills raises a few square patches in half steps so every slope stays
// walkable.
func (g *Generator) hills() [][]float64 {
	elev := make([][]float64, g.height)
	for y := range elev {
		elev[y] = make([]float64, g.width)
	}

	for i := 0; i < g.options.Hills; i++ {
		cx, cy := g.rng.Intn(g.width), g.rng.Intn(g.height)
		for y := cy - 2; y <= cy+2; y++ {
			for x := cx - 2; x <= cx+2; x++ {
				if x < 0 || x >= g.width || y < 0 || y >= g.height {
					continue
				}
				ring := max(abs(x-cx), abs(y-cy))
				if h := float64(3-ring) * 0.5; h > elev[y][x] {
					elev[y][x] = h
				}
			}
		}
	}
	return elev
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
