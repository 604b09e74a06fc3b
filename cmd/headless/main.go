// Command headless plays a battle with both sides on autopilot and prints
// the result as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"grid-tactics/internal/battle"
	"grid-tactics/internal/config"
	"grid-tactics/internal/database"
	"grid-tactics/pkg/maps"
)

func main() {
	scenarioPath := flag.String("scenario", "", "Scenario YAML file (built-in scenario if empty)")
	mapID := flag.String("map", "", "Map ID (scenario map if empty)")
	dbPath := flag.String("db", "", "Database path for recording the battle (none if empty)")
	seed := flag.Int64("seed", 0, "Random seed (scenario seed if 0)")
	maxRounds := flag.Int("max-rounds", 50, "Give up after this many rounds")
	generate := flag.Bool("generate", false, "Play on a generated arena")
	showMap := flag.Bool("show-map", false, "Print the arena before playing")
	flag.Parse()

	if err := run(*scenarioPath, *mapID, *dbPath, *seed, *maxRounds, *generate, *showMap); err != nil {
		log.Fatalf("Battle failed: %v", err)
	}
}

func run(scenarioPath, mapID, dbPath string, seed int64, maxRounds int, generate, showMap bool) error {
	sc := config.Default()
	if scenarioPath != "" {
		var err error
		if sc, err = config.Load(scenarioPath); err != nil {
			return err
		}
	}

	if seed == 0 {
		seed = sc.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	if err := maps.LoadAll(); err != nil {
		return fmt.Errorf("failed to load maps: %w", err)
	}

	var m *maps.Map
	if generate {
		opts := maps.DefaultOptions()
		opts.Seed = seed
		generated, err := maps.NewGenerator(opts).Generate()
		if err != nil {
			return err
		}
		maps.Register(generated)
		m = generated
	} else {
		if mapID == "" {
			mapID = sc.Map
		}
		if m = maps.Get(mapID); m == nil {
			return fmt.Errorf("unknown map %q", mapID)
		}
	}
	if showMap {
		fmt.Fprintln(os.Stderr, m.Debug())
	}

	results := battle.NewResultChan()
	opts := battle.Options{
		DefendBonus: sc.DefendBonus,
		Results:     results,
		Rand:        rand.New(rand.NewSource(seed)),
	}

	var rec *database.Recorder
	if dbPath != "" {
		db, err := database.New(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		opts.ID = fmt.Sprintf("headless-%d", time.Now().UnixNano())
		if rec, err = db.NewRecorder(opts.ID, "", "", m.ID, seed); err != nil {
			return err
		}
		opts.Events = rec
		opts.Results = battle.ResultFunc(func(r battle.Result) {
			rec.OnBattleResult(r)
			results.OnBattleResult(r)
		})
	}

	b := battle.New(m.BuildGrid(), opts)
	defer b.Close()

	var err error
	if m.ID == sc.Map {
		err = sc.Deploy(b)
	} else {
		err = sc.DeployInZones(b)
	}
	if err != nil {
		return err
	}
	if err := b.Start(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Printf("[Battle] %s on %s, seed %d", b.ID, m.ID, seed)
	for b.Turns().Round() <= maxRounds && !b.Turns().Resolved() {
		if err := battle.AutoPlan(b); err != nil {
			return err
		}
		if err := b.NextPhase(ctx); err != nil {
			return err
		}
	}

	select {
	case r := <-results:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	default:
		if rec != nil {
			rec.Abandon()
		}
		return fmt.Errorf("no result after %d rounds", maxRounds)
	}
}
