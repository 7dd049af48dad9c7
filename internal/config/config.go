// Package config provides centralized configuration management.
// Every tunable of the simulation host lives here; other packages take the
// values they need as plain structs.
package config

import (
	"os"
	"strconv"
	"strings"
)

// =============================================================================
// SIMULATION CONFIGURATION
// =============================================================================

// SimConfig holds tick loop and arena settings.
type SimConfig struct {
	TickRate      int     // Ticks per second
	ArenaWidth    float64 // World units
	ArenaHeight   float64
	CreatureCount int // Creatures spawned at start
	StartPaused   bool
}

// DefaultSim returns the default simulation configuration.
func DefaultSim() SimConfig {
	return SimConfig{
		TickRate:      60,
		ArenaWidth:    1600,
		ArenaHeight:   900,
		CreatureCount: 4,
	}
}

// SimFromEnv returns simulation configuration with environment overrides.
func SimFromEnv() SimConfig {
	cfg := DefaultSim()

	if tr := getEnvInt("TICK_RATE", 0); tr > 0 {
		cfg.TickRate = tr
	}
	if w := getEnvFloat("ARENA_WIDTH", 0); w > 0 {
		cfg.ArenaWidth = w
	}
	if h := getEnvFloat("ARENA_HEIGHT", 0); h > 0 {
		cfg.ArenaHeight = h
	}
	if n := getEnvInt("CREATURE_COUNT", -1); n >= 0 {
		cfg.CreatureCount = n
	}
	cfg.StartPaused = getEnvBool("START_PAUSED", cfg.StartPaused)

	return cfg
}

// =============================================================================
// COMBAT CONFIGURATION
// =============================================================================

// CombatConfig holds fighter and creature balance numbers.
type CombatConfig struct {
	MaxBlockCount    int     // Block points per fighter
	FighterHP        float64 // Fighter max HP
	MeleeDamage      float64 // Fighter base melee damage
	MeleeRange       float64 // Reach of a fighter strike
	CreatureHP       float64
	CreatureDamage   float64 // Creature melee damage
	CreatureReach    float64
	CreatureSpeed    float64 // World units per second
	CreatureCooldown float64 // Seconds between creature melee attacks
	OrbDamage        float64
	OrbSpeed         float64
	DefaultArchetype string
}

// DefaultCombat returns the default combat configuration.
func DefaultCombat() CombatConfig {
	return CombatConfig{
		MaxBlockCount:    10,
		FighterHP:        200,
		MeleeDamage:      12,
		MeleeRange:       70,
		CreatureHP:       150,
		CreatureDamage:   8,
		CreatureReach:    55,
		CreatureSpeed:    90,
		CreatureCooldown: 1.2,
		OrbDamage:        10,
		OrbSpeed:         260,
		DefaultArchetype: "knight",
	}
}

// CombatFromEnv returns combat configuration with environment overrides.
func CombatFromEnv() CombatConfig {
	cfg := DefaultCombat()

	if n := getEnvInt("MAX_BLOCK_COUNT", -1); n >= 0 {
		cfg.MaxBlockCount = n
	}
	if v := getEnvFloat("FIGHTER_HP", 0); v > 0 {
		cfg.FighterHP = v
	}
	if v := getEnvFloat("MELEE_DAMAGE", 0); v > 0 {
		cfg.MeleeDamage = v
	}
	if v := getEnvFloat("CREATURE_HP", 0); v > 0 {
		cfg.CreatureHP = v
	}
	if v := getEnvFloat("CREATURE_DAMAGE", 0); v > 0 {
		cfg.CreatureDamage = v
	}
	if a := os.Getenv("DEFAULT_ARCHETYPE"); a != "" {
		cfg.DefaultArchetype = strings.ToLower(a)
	}

	return cfg
}

// =============================================================================
// RESOURCE LIMITS
// =============================================================================

// ResourceLimits bounds what API clients can make the engine allocate.
type ResourceLimits struct {
	MaxFighters  int
	MaxCreatures int
	MaxOrbs      int
	MaxTexts     int // Floating damage texts kept alive
	MaxInputs    int // Queued fighter inputs per tick
}

// DefaultLimits returns the default resource limits.
func DefaultLimits() ResourceLimits {
	return ResourceLimits{
		MaxFighters:  8,
		MaxCreatures: 64,
		MaxOrbs:      64,
		MaxTexts:     60,
		MaxInputs:    256,
	}
}

// =============================================================================
// AUDIO CONFIGURATION
// =============================================================================

// AudioConfig holds sound effect mixer settings.
type AudioConfig struct {
	SampleRate  int
	Volume      float64 // Effect volume (0.0 to 1.0)
	Enabled     bool
	MusicPath   string // Optional OGG arena track
	MusicVolume float64
	PCMOut      string // Optional raw s16le stereo dump of the mix
}

// DefaultAudio returns the default audio configuration.
func DefaultAudio() AudioConfig {
	return AudioConfig{
		SampleRate:  44100,
		Volume:      0.8,
		Enabled:     true,
		MusicVolume: 0.15,
	}
}

// AudioFromEnv returns audio configuration with environment overrides.
func AudioFromEnv() AudioConfig {
	cfg := DefaultAudio()

	if v := getEnvFloat("SFX_VOLUME", -1); v >= 0 {
		cfg.Volume = v
	}
	if v := getEnvFloat("MUSIC_VOLUME", -1); v >= 0 {
		cfg.MusicVolume = v
	}
	cfg.MusicPath = os.Getenv("MUSIC_PATH")
	cfg.PCMOut = os.Getenv("AUDIO_PCM_OUT")
	if os.Getenv("AUDIO_ENABLED") == "false" {
		cfg.Enabled = false
	}

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int
	DebugPort   int      // pprof + /metrics, 0 disables
	CORSOrigins []string // Allowed origins for the API
	RateLimit   float64  // Requests per second per client IP
	RateBurst   int
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:        3000,
		DebugPort:   6060,
		CORSOrigins: []string{"*"},
		RateLimit:   20,
		RateBurst:   40,
	}
}

// ServerFromEnv returns server configuration with environment overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if p := getEnvInt("DEBUG_PORT", -1); p >= 0 {
		cfg.DebugPort = p
	}
	if o := os.Getenv("CORS_ORIGINS"); o != "" {
		cfg.CORSOrigins = splitList(o)
	}
	if r := getEnvFloat("RATE_LIMIT", 0); r > 0 {
		cfg.RateLimit = r
	}
	if b := getEnvInt("RATE_BURST", 0); b > 0 {
		cfg.RateBurst = b
	}

	return cfg
}

// =============================================================================
// SPATIAL CONFIGURATION
// =============================================================================

// SpatialConfig holds spatial indexing settings.
type SpatialConfig struct {
	GridCellSize int // Cell size of the proximity grid
}

// DefaultSpatial returns the default spatial configuration.
func DefaultSpatial() SpatialConfig {
	return SpatialConfig{
		GridCellSize: 100,
	}
}

// =============================================================================
// TELEMETRY CONFIGURATION
// =============================================================================

// TelemetryConfig holds OpenTelemetry exporter settings.
type TelemetryConfig struct {
	Enabled     bool
	Endpoint    string // OTLP/HTTP host:port
	ServiceName string
}

// DefaultTelemetry returns tracing disabled.
func DefaultTelemetry() TelemetryConfig {
	return TelemetryConfig{
		Endpoint:    "localhost:4318",
		ServiceName: "field-fighter",
	}
}

// TelemetryFromEnv enables tracing when OTEL_EXPORTER_OTLP_ENDPOINT is set.
func TelemetryFromEnv() TelemetryConfig {
	cfg := DefaultTelemetry()

	if ep := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); ep != "" {
		cfg.Enabled = true
		cfg.Endpoint = ep
	}
	if name := os.Getenv("OTEL_SERVICE_NAME"); name != "" {
		cfg.ServiceName = name
	}
	cfg.Enabled = getEnvBool("TELEMETRY_ENABLED", cfg.Enabled)

	return cfg
}

// =============================================================================
// PATHS
// =============================================================================

// PathsConfig holds file locations.
type PathsConfig struct {
	ArchetypeFile string // Optional archetype rule override, hot-reloaded
	EventLog      string // JSONL combat event log
	TimelineDir   string // Rendered timeline charts
}

// DefaultPaths returns the default file locations.
func DefaultPaths() PathsConfig {
	return PathsConfig{
		EventLog:    "combat_events.jsonl",
		TimelineDir: "timelines",
	}
}

// PathsFromEnv returns paths with environment overrides.
func PathsFromEnv() PathsConfig {
	cfg := DefaultPaths()

	if p := os.Getenv("ARCHETYPE_FILE"); p != "" {
		cfg.ArchetypeFile = p
	}
	if p := os.Getenv("EVENT_LOG"); p != "" {
		cfg.EventLog = p
	}
	if p := os.Getenv("TIMELINE_DIR"); p != "" {
		cfg.TimelineDir = p
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Sim       SimConfig
	Combat    CombatConfig
	Audio     AudioConfig
	Server    ServerConfig
	Limits    ResourceLimits
	Spatial   SpatialConfig
	Telemetry TelemetryConfig
	Paths     PathsConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Sim:       SimFromEnv(),
		Combat:    CombatFromEnv(),
		Audio:     AudioFromEnv(),
		Server:    ServerFromEnv(),
		Limits:    DefaultLimits(),
		Spatial:   DefaultSpatial(),
		Telemetry: TelemetryFromEnv(),
		Paths:     PathsFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
