package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"field-fighter/internal/api"
	"field-fighter/internal/audio"
	"field-fighter/internal/combat"
	"field-fighter/internal/config"
	"field-fighter/internal/game"
	"field-fighter/internal/telemetry"
)

func main() {
	// Load .env file from parent directory
	if err := godotenv.Load("../.env"); err != nil {
		// Try current directory as fallback
		if err := godotenv.Load(".env"); err != nil {
			log.Println("💡 No .env file found, using environment variables only")
		}
	} else {
		log.Println("✅ Loaded environment from ../.env")
	}

	log.Println("⚔️ ================================")
	log.Println("⚔️  FIELD FIGHTER - COMBAT SERVER")
	log.Println("⚔️ ================================")

	appConfig := config.Load()
	simCfg := appConfig.Sim
	serverCfg := appConfig.Server

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, appConfig.Telemetry)
	if err != nil {
		log.Printf("⚠️ Tracing disabled: %v", err)
		shutdownTracing = func(context.Context) error { return nil }
	} else if appConfig.Telemetry.Enabled {
		log.Printf("🔭 Tracing to %s as %s", appConfig.Telemetry.Endpoint, appConfig.Telemetry.ServiceName)
	}

	rules := loadRules(appConfig.Paths.ArchetypeFile)

	mixer := audio.NewMixer(audio.Config{
		Enabled:     appConfig.Audio.Enabled,
		Volume:      appConfig.Audio.Volume,
		SampleRate:  appConfig.Audio.SampleRate,
		MusicPath:   appConfig.Audio.MusicPath,
		MusicVolume: appConfig.Audio.MusicVolume,
	})
	defer mixer.Close()
	api.InstrumentMixer(mixer)
	go pumpAudio(ctx, mixer, appConfig.Audio.PCMOut)

	engine := game.NewEngine(appConfig, rules, mixer)
	engine.AddHooks(api.MetricsHooks())
	log.Printf("🎮 Config: %d TPS, %.0fx%.0f arena, %d creatures, %d block points",
		simCfg.TickRate, simCfg.ArenaWidth, simCfg.ArenaHeight, simCfg.CreatureCount, appConfig.Combat.MaxBlockCount)
	log.Printf("🛡️ Resource limits: %d fighters, %d creatures, %d orbs, %d texts",
		appConfig.Limits.MaxFighters, appConfig.Limits.MaxCreatures, appConfig.Limits.MaxOrbs, appConfig.Limits.MaxTexts)

	if err := engine.StartEventLog(appConfig.Paths.EventLog); err != nil {
		log.Printf("⚠️ Event log disabled: %v", err)
	} else if appConfig.Paths.EventLog != "" {
		log.Printf("📝 Event log: %s", appConfig.Paths.EventLog)
	}

	if appConfig.Paths.ArchetypeFile != "" {
		watcher, err := config.WatchArchetypes(appConfig.Paths.ArchetypeFile, engine.SetRules)
		if err != nil {
			log.Printf("⚠️ Archetype hot reload disabled: %v", err)
		} else {
			defer watcher.Close()
			log.Printf("👀 Watching %s for archetype changes", appConfig.Paths.ArchetypeFile)
		}
	}

	debugServer := api.StartDebugServer(api.DebugConfig(serverCfg.DebugPort))

	server := api.NewServer(engine, serverCfg)

	engine.Start()

	addr := ":" + strconv.Itoa(serverCfg.Port)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start(addr)
	}()

	log.Println("✅ Server ready! Press Ctrl+C to stop.")

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("❌ API server failed: %v", err)
		}
	}

	log.Println("🛑 Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		log.Printf("⚠️ API shutdown: %v", err)
	}
	if debugServer != nil {
		debugServer.Shutdown(shutdownCtx)
	}
	engine.Stop()
	engine.StopEventLog()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("⚠️ Tracing shutdown: %v", err)
	}
	log.Println("👋 Goodbye!")
}

// loadRules reads the archetype override file, falling back to the embedded
// table when it is unset or invalid.
func loadRules(path string) combat.RuleTable {
	if path != "" {
		rules, err := config.LoadArchetypes(path)
		if err == nil {
			log.Printf("📜 Archetype rules loaded from %s", path)
			return rules
		}
		log.Printf("⚠️ %v; using built-in archetypes", err)
	}

	rules, err := config.DefaultArchetypeRules()
	if err != nil {
		log.Fatalf("❌ Embedded archetype rules are invalid: %v", err)
	}
	return rules
}

// pumpAudio drains the effect mixer, optionally dumping raw PCM to path.
func pumpAudio(ctx context.Context, mixer *audio.Mixer, path string) {
	var out io.Writer = io.Discard
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			log.Printf("⚠️ PCM dump disabled: %v", err)
		} else {
			defer f.Close()
			out = f
			log.Printf("🔊 Dumping s16le stereo PCM to %s", path)
		}
	}
	if err := mixer.Pump(ctx, out); err != nil {
		log.Printf("⚠️ Audio pump stopped: %v", err)
	}
}
