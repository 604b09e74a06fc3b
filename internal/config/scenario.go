// Package config loads battle scenarios from YAML.
package config

import (
	"time"

	"grid-tactics/internal/battle"
)

// Scenario describes one battle setup: the arena, the unit templates and
// where each side starts.
type Scenario struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	Map         string             `yaml:"map"`
	Seed        int64              `yaml:"seed"`
	DefendBonus int                `yaml:"defend_bonus"`
	MaxEnemies  int                `yaml:"max_enemies"`
	AutoDeploy  bool               `yaml:"auto_deploy_enemies"`
	Units       map[string]UnitDef `yaml:"units"`
	Players     []Placement        `yaml:"players"`
	Enemies     []Placement        `yaml:"enemies"`
	EnemyUnit   string             `yaml:"enemy_unit"` // template for auto-deployed enemies
	Animation   AnimationDef       `yaml:"animation"`
}

// UnitDef is a unit template. Attack, Defense and ResourcePoints are
// pointers so an explicit 0 can be told apart from a missing key.
type UnitDef struct {
	Type           string `yaml:"type"`
	MaxHP          int    `yaml:"max_hp"`
	Attack         *int   `yaml:"attack"`
	Defense        *int   `yaml:"defense"`
	ResourcePoints *int   `yaml:"resource_points"`
}

// Placement puts one unit from a template on a tile.
type Placement struct {
	Name string `yaml:"name"`
	Unit string `yaml:"unit"`
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
}

// AnimationDef holds movement and effect timings.
type AnimationDef struct {
	MoveSpeed float64 `yaml:"move_speed"` // tiles per second
	Epsilon   float64 `yaml:"epsilon"`
	TickMS    int     `yaml:"tick_ms"`
	AttackMS  int     `yaml:"attack_ms"`
	DeathMS   int     `yaml:"death_ms"`
}

// Stats returns the battle stats for a template. Unknown templates fall back
// to the default infantry stats.
func (s *Scenario) Stats(name string) battle.UnitStats {
	def, ok := s.Units[name]
	if !ok {
		return battle.DefaultStats()
	}
	base := battle.DefaultStats()
	return battle.UnitStats{
		Type:           def.Type,
		MaxHealth:      def.MaxHP,
		Attack:         valueOr(def.Attack, base.Attack),
		Defense:        valueOr(def.Defense, base.Defense),
		ResourcePoints: valueOr(def.ResourcePoints, base.ResourcePoints),
	}
}

func valueOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

// Animator builds a tick animator from the animation timings.
func (s *Scenario) Animator() *battle.TickAnimator {
	a := s.Animation
	return &battle.TickAnimator{
		MoveSpeed:  a.MoveSpeed,
		Epsilon:    a.Epsilon,
		Tick:       time.Duration(a.TickMS) * time.Millisecond,
		AttackTime: time.Duration(a.AttackMS) * time.Millisecond,
		DeathTime:  time.Duration(a.DeathMS) * time.Millisecond,
	}
}
