// Command combatsim plays a scripted duel between one knight and one
// creature and renders the fighter's combat timeline to a PNG.
//
// The script walks the whole block loop: hold block until it breaks, sit out
// the stun and fatigue, catch a single hit to store kinetic charge, release
// it as a kinetic strike, then chain combo tiers until the creature dies.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"field-fighter/internal/combat"
	"field-fighter/internal/config"
	"field-fighter/internal/game"
	"field-fighter/internal/timeline"
)

func main() {
	_ = godotenv.Load(".env")
	defaults := config.Load()

	seed := flag.Int64("seed", 1, "simulation seed")
	events := flag.String("events", "", "JSONL event log path (empty disables)")
	out := flag.String("timeline", filepath.Join(defaults.Paths.TimelineDir, "combatsim.png"), "timeline PNG path")
	maxSeconds := flag.Float64("max", 90, "simulated seconds before giving up")
	flag.Parse()

	res, err := run(scenarioConfig{
		App:        defaults,
		Seed:       *seed,
		EventLog:   *events,
		Timeline:   *out,
		MaxSeconds: *maxSeconds,
	})
	if err != nil {
		log.Printf("❌ %v", err)
		os.Exit(1)
	}

	log.Printf("🛡️ Block broke at %.2fs after %d absorbed hits", res.BrokeAt, res.Absorbed)
	log.Printf("⚡ Kinetic strike x%.2f at %.2fs", res.KineticEffectiveness, res.KineticAt)
	log.Printf("⚔️ Finishers: %v", res.Finishers)
	if res.KilledAt > 0 {
		log.Printf("☠️ Creature down at %.2fs", res.KilledAt)
	} else {
		log.Printf("⏱️ Creature survived %.0fs", *maxSeconds)
	}
	if *out != "" {
		log.Printf("📈 Timeline written to %s", *out)
	}
}

type scenarioConfig struct {
	App        config.AppConfig
	Seed       int64
	EventLog   string
	Timeline   string
	MaxSeconds float64
}

type scenarioResult struct {
	Absorbed             int
	BrokeAt              float64
	KineticAt            float64
	KineticEffectiveness float64
	Finishers            []string
	KilledAt             float64
	Samples              int
}

// phase is one step of the script. It runs once per tick before Step and
// reports true when the script should advance.
type phase struct {
	name string
	run  func(f game.FighterSnapshot, c *game.CreatureSnapshot) bool
}

func run(cfg scenarioConfig) (scenarioResult, error) {
	var res scenarioResult

	app := cfg.App
	app.Sim.CreatureCount = 0
	rules, err := config.DefaultArchetypeRules()
	if err != nil {
		return res, err
	}

	engine := game.NewEngine(app, rules, nil,
		game.WithSeed(cfg.Seed),
		game.WithEventLog(game.NewEventLog(game.WithoutRateLimit())))
	if err := engine.StartEventLog(cfg.EventLog); err != nil {
		return res, fmt.Errorf("event log: %w", err)
	}
	defer engine.StopEventLog()

	fighter, err := engine.AddFighter("sim-knight", "knight")
	if err != nil {
		return res, err
	}
	cx, cy := app.Sim.ArenaWidth/2, app.Sim.ArenaHeight/2
	if _, err := engine.SpawnCreature(cx, cy); err != nil {
		return res, err
	}

	rec := timeline.NewRecorder(fighter.ID)
	now := 0.0
	killed := false

	engine.AddHooks(game.Hooks{
		OnHit: func(f *game.Fighter, out combat.HitOutcome) {
			if f.ID == fighter.ID && out.Absorbed {
				res.Absorbed++
			}
		},
		OnBlockBreak: func(f *game.Fighter) {
			res.BrokeAt = now
			rec.Mark(now, "BROKEN", "#e74c3c")
		},
		OnKineticStrike: func(f *game.Fighter, k combat.KineticStrikeResult) {
			res.KineticAt = now
			res.KineticEffectiveness = k.Effectiveness
			rec.Mark(now, fmt.Sprintf("KINETIC x%.2f", k.Effectiveness), "#f1c40f")
		},
		OnStrike: func(f *game.Fighter, out combat.StrikeOutcome) {
			if out.Finisher {
				res.Finishers = append(res.Finishers, out.Tier.String())
				rec.Mark(now, out.Tier.String(), "#3498db")
			}
		},
		OnKill: func(f *game.Fighter, c *game.Creature) {
			killed = true
			res.KilledAt = now
			rec.Mark(now, "KILL", "#2ecc71")
		},
	})

	submit := func(kind game.InputKind, x, y float64) {
		if err := engine.Submit(game.Input{FighterID: fighter.ID, Kind: kind, X: x, Y: y}); err != nil {
			log.Printf("⚠️ %s input dropped: %v", kind, err)
		}
	}

	// Stand beside the creature so it attacks from its first tick.
	submit(game.InputMove, cx-40, cy)

	lastStrike := uint64(0)
	phases := []phase{
		{"hold block until it breaks", func(f game.FighterSnapshot, _ *game.CreatureSnapshot) bool {
			if f.BlockBroken {
				return true
			}
			if !f.BlockActive {
				submit(game.InputBlockPress, 0, 0)
			}
			return false
		}},
		{"recover", func(f game.FighterSnapshot, _ *game.CreatureSnapshot) bool {
			if f.BlockHeld {
				submit(game.InputBlockRelease, 0, 0)
			}
			return !f.BlockBroken && !f.StunLocked && !f.Fatigued
		}},
		{"store charge", func(f game.FighterSnapshot, _ *game.CreatureSnapshot) bool {
			if f.KineticIntake >= 1 {
				return true
			}
			if !f.BlockActive {
				submit(game.InputBlockPress, 0, 0)
			}
			return false
		}},
		{"kinetic strike", func(f game.FighterSnapshot, _ *game.CreatureSnapshot) bool {
			if res.KineticAt > 0 {
				submit(game.InputBlockRelease, 0, 0)
				return true
			}
			submit(game.InputKinetic, 0, 0)
			return false
		}},
		{"combo", func(f game.FighterSnapshot, c *game.CreatureSnapshot) bool {
			if c == nil {
				return killed
			}
			if dx, dy := f.X-c.X, f.Y-c.Y; dx*dx+dy*dy > 60*60 {
				submit(game.InputMove, c.X-40, c.Y)
			}
			tick := engine.TickCount()
			if tick-lastStrike < 3 || f.ComboRest || f.MeleeCooldown > 0 {
				return false
			}
			if f.ComboHits >= tierHits(f.ComboTier) {
				return false
			}
			lastStrike = tick
			submit(game.InputStrike, 0, 0)
			return false
		}},
	}

	current := 0
	for current < len(phases) && !killed {
		snap := engine.Snapshot()
		if snap.SimTime > cfg.MaxSeconds {
			log.Printf("⏱️ Stopped during %q", phases[current].name)
			break
		}
		f, ok := snap.Fighter(fighter.ID)
		if !ok {
			return res, fmt.Errorf("fighter %s vanished", fighter.ID)
		}
		var c *game.CreatureSnapshot
		if len(snap.Creatures) > 0 {
			c = &snap.Creatures[0]
		}

		if phases[current].run(f, c) {
			log.Printf("✅ %s done at %.2fs", phases[current].name, snap.SimTime)
			current++
			continue
		}

		now = engine.Now()
		engine.Step()
		rec.Record(engine.Snapshot())
	}

	engine.FlushEventLog()
	res.Samples = len(rec.Samples())

	if cfg.Timeline != "" {
		title := fmt.Sprintf("combatsim seed %d", cfg.Seed)
		if err := rec.SavePNG(cfg.Timeline, title); err != nil {
			return res, fmt.Errorf("timeline: %w", err)
		}
	}
	return res, nil
}

// tierHits maps a snapshot tier name to its accepted hit count
func tierHits(name string) int {
	for _, t := range []combat.ComboTier{combat.TierTwoHit, combat.TierThreeHit, combat.TierFiveHit} {
		if t.String() == name {
			return t.Spec().AcceptedHits
		}
	}
	return 0
}
