package config

import (
	_ "embed"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"grid-tactics/internal/battle"
)

//go:embed default.yaml
var defaultScenario []byte

func loadYAML(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, out)
}

// Load reads a scenario file.
func Load(path string) (*Scenario, error) {
	var s Scenario
	if err := loadYAML(path, &s); err != nil {
		return nil, fmt.Errorf("failed to load scenario %s: %w", path, err)
	}
	return finish(&s)
}

// Parse decodes a scenario from YAML bytes.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	return finish(&s)
}

// Default returns the built-in scenario.
func Default() *Scenario {
	s, err := Parse(defaultScenario)
	if err != nil {
		panic("config: built-in scenario is invalid: " + err.Error())
	}
	return s
}

func finish(s *Scenario) (*Scenario, error) {
	applyDefaults(s)
	if err := validate(s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return s, nil
}

func applyDefaults(s *Scenario) {
	if s.DefendBonus <= 0 {
		s.DefendBonus = battle.DefaultDefendBonus
	}
	if s.MaxEnemies <= 0 {
		s.MaxEnemies = battle.DefaultMaxEnemies
	}
	if len(s.Enemies) == 0 {
		s.AutoDeploy = true
	}

	base := battle.DefaultStats()
	for name, def := range s.Units {
		if def.Type == "" {
			def.Type = base.Type
		}
		if def.MaxHP <= 0 {
			def.MaxHP = base.MaxHealth
		}
		s.Units[name] = def
	}

	a := &s.Animation
	if a.MoveSpeed <= 0 {
		a.MoveSpeed = 2
	}
	if a.Epsilon <= 0 {
		a.Epsilon = 0.01
	}
	if a.TickMS <= 0 {
		a.TickMS = 16
	}
	if a.AttackMS < 0 {
		a.AttackMS = 0
	}
	if a.DeathMS < 0 {
		a.DeathMS = 0
	}
}

// validate checks the scenario for errors.
func validate(s *Scenario) error {
	if s.ID == "" {
		return fmt.Errorf("scenario ID is required")
	}
	if s.Map == "" {
		return fmt.Errorf("map is required")
	}
	if len(s.Players) == 0 {
		return fmt.Errorf("at least one player unit is required")
	}
	for i, p := range append(append([]Placement{}, s.Players...), s.Enemies...) {
		if p.Unit != "" {
			if _, ok := s.Units[p.Unit]; !ok {
				return fmt.Errorf("placement %d (%s): unknown unit template %q", i, p.Name, p.Unit)
			}
		}
	}
	for name, def := range s.Units {
		if negative(def.Attack) || negative(def.Defense) || negative(def.ResourcePoints) {
			return fmt.Errorf("unit template %q: stats must not be negative", name)
		}
	}
	if s.EnemyUnit != "" {
		if _, ok := s.Units[s.EnemyUnit]; !ok {
			return fmt.Errorf("unknown enemy unit template %q", s.EnemyUnit)
		}
	}
	return nil
}

func negative(v *int) bool {
	return v != nil && *v < 0
}

// Deploy places the scenario's units on a battle that has not started yet.
// Enemies are auto-deployed when the scenario asks for it.
func (s *Scenario) Deploy(b *battle.Battle) error {
	for _, p := range s.Players {
		u := battle.NewUnit(p.Name, battle.TeamPlayer, s.Stats(p.Unit))
		if err := b.DeployPlayer(u, battle.Coord{X: p.X, Y: p.Y}); err != nil {
			return fmt.Errorf("deploy %s at (%d,%d): %w", p.Name, p.X, p.Y, err)
		}
	}
	for _, p := range s.Enemies {
		u := battle.NewUnit(p.Name, battle.TeamEnemy, s.Stats(p.Unit))
		if err := b.DeployEnemy(u, battle.Coord{X: p.X, Y: p.Y}); err != nil {
			return fmt.Errorf("deploy %s at (%d,%d): %w", p.Name, p.X, p.Y, err)
		}
	}

	if s.AutoDeploy {
		remaining := s.MaxEnemies - len(s.Enemies)
		if remaining > 0 {
			b.AutoDeployEnemies(remaining, func(i int) *battle.Unit {
				name := fmt.Sprintf("Enemy %d", len(s.Enemies)+i+1)
				return battle.NewUnit(name, battle.TeamEnemy, s.Stats(s.EnemyUnit))
			})
		}
	}

	log.Printf("[Config] Scenario %s deployed: %d players, %d enemies", s.ID, len(b.Players()), len(b.Enemies()))
	return nil
}

// DeployInZones places the scenario's player templates on the first free
// tiles of the player deploy zone, ignoring their fixed coordinates, and
// auto-deploys enemies up to MaxEnemies. It is used when the battle runs on
// a different map than the scenario names.
func (s *Scenario) DeployInZones(b *battle.Battle) error {
	zone := b.Grid().DeployZone(battle.TeamPlayer)
	next := 0
	for _, p := range s.Players {
		for next < len(zone) && zone[next].Blocked() {
			next++
		}
		if next == len(zone) {
			log.Printf("[Config] Player zone full, %s not deployed", p.Name)
			break
		}
		u := battle.NewUnit(p.Name, battle.TeamPlayer, s.Stats(p.Unit))
		if err := b.DeployPlayer(u, zone[next].Coord); err != nil {
			return fmt.Errorf("deploy %s: %w", p.Name, err)
		}
	}

	b.AutoDeployEnemies(s.MaxEnemies, func(i int) *battle.Unit {
		return battle.NewUnit(fmt.Sprintf("Enemy %d", i+1), battle.TeamEnemy, s.Stats(s.EnemyUnit))
	})

	log.Printf("[Config] Scenario %s deployed by zone: %d players, %d enemies", s.ID, len(b.Players()), len(b.Enemies()))
	return nil
}
