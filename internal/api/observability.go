package api

import (
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"field-fighter/internal/audio"
	"field-fighter/internal/combat"
	"field-fighter/internal/game"
)

// Metrics with bounded cardinality (no per-fighter labels)
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "combat_tick_duration_seconds",
		Help:    "Time spent in one simulation tick",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025},
	})

	fighterCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "combat_fighters",
		Help: "Current number of fighters",
	})

	creatureCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "combat_creatures",
		Help: "Current number of creatures",
	})

	strikesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "combat_strikes_total",
		Help: "Melee strikes landed by fighters",
	})

	finishersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "combat_finishers_total",
		Help: "Combo finishers landed",
	}, []string{"tier"}) // Bounded: two_hit, three_hit, five_hit

	hitsTaken = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "combat_hits_taken_total",
		Help: "Attacks resolved against fighters",
	}, []string{"result"}) // Bounded: absorbed, damaged, ignored

	blockBreaks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "combat_block_breaks_total",
		Help: "Blocks broken",
	})

	kineticStrikes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "combat_kinetic_strikes_total",
		Help: "Kinetic strikes released",
	})

	kineticEffectiveness = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "combat_kinetic_effectiveness",
		Help:    "Effectiveness multiplier of released kinetic strikes",
		Buckets: []float64{1.15, 1.5, 2, 3, 4, 5, 5.75},
	})

	creatureKills = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "combat_creature_kills_total",
		Help: "Creatures killed",
	}, []string{"credited"})

	fighterDeaths = promauto.NewCounter(prometheus.CounterOpts{
		Name: "combat_fighter_deaths_total",
		Help: "Fighters killed",
	})

	soundsPlayed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audio_effects_played_total",
		Help: "Sound effects mixed",
	}, []string{"effect"}) // Bounded by the synth table

	soundsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audio_effects_dropped_total",
		Help: "Sound effects debounced or over the voice limit",
	})

	// Event log counters are mirrored as gauges; the log owns the totals
	eventLogTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "event_log_events",
		Help: "Events accepted by the event log",
	})

	eventLogDropped = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "event_log_dropped",
		Help: "Events dropped due to rate limiting or buffer full",
	})

	eventLogPending = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "event_log_pending",
		Help: "Events buffered but not yet written",
	})

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter or origin check",
	}, []string{"reason"}) // Bounded: rate_limit, origin, ws_total_limit, ws_ip_limit

	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"}) // endpoint is the route pattern, not the URL

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "Total WebSocket messages sent",
	})
)

// MetricsHooks returns engine hooks that feed the combat metrics.
func MetricsHooks() game.Hooks {
	return game.Hooks{
		OnTick: RecordTick,
		OnStrike: func(_ *game.Fighter, out combat.StrikeOutcome) {
			strikesTotal.Inc()
			if out.Finisher {
				finishersTotal.WithLabelValues(out.Tier.String()).Inc()
			}
		},
		OnHit: func(_ *game.Fighter, out combat.HitOutcome) {
			switch {
			case out.Ignored:
				hitsTaken.WithLabelValues("ignored").Inc()
			case out.Absorbed:
				hitsTaken.WithLabelValues("absorbed").Inc()
			default:
				hitsTaken.WithLabelValues("damaged").Inc()
			}
		},
		OnBlockBreak: func(*game.Fighter) { blockBreaks.Inc() },
		OnKineticStrike: func(_ *game.Fighter, res combat.KineticStrikeResult) {
			kineticStrikes.Inc()
			kineticEffectiveness.Observe(res.Effectiveness)
		},
		OnKill: func(f *game.Fighter, _ *game.Creature) {
			creatureKills.WithLabelValues(strconv.FormatBool(f != nil)).Inc()
		},
		OnDeath: func(*game.Fighter) { fighterDeaths.Inc() },
	}
}

// InstrumentMixer counts mixed and dropped sound effects.
func InstrumentMixer(m *audio.Mixer) {
	m.OnPlayed(
		func(name string) { soundsPlayed.WithLabelValues(name).Inc() },
		func(string) { soundsDropped.Inc() },
	)
}

// ObservabilityConfig configures the debug server
type ObservabilityConfig struct {
	Enabled    bool
	ListenAddr string
}

// DebugConfig binds the debug server to localhost on port. Port 0 disables it.
func DebugConfig(port int) ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:    port > 0,
		ListenAddr: fmt.Sprintf("127.0.0.1:%d", port),
	}
}

// DebugHandler serves pprof, Prometheus metrics and a health check.
func DebugHandler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return mux
}

// StartDebugServer starts the internal observability server. It must stay on
// localhost: pprof endpoints are expensive to serve. The returned server is
// nil when disabled.
func StartDebugServer(cfg ObservabilityConfig) *http.Server {
	if !cfg.Enabled {
		log.Println("📊 Debug server disabled")
		return nil
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           DebugHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("📊 Debug server starting on %s", cfg.ListenAddr)
		log.Printf("   - pprof:   http://%s/debug/pprof/", cfg.ListenAddr)
		log.Printf("   - metrics: http://%s/metrics", cfg.ListenAddr)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("⚠️ Debug server error: %v", err)
		}
	}()

	return srv
}

// requestMetrics records latency and status per route pattern.
func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				endpoint = p
			}
		}
		RecordRequest(r.Method, endpoint, ww.Status(), time.Since(start))
	})
}

// RecordTick records tick timing for metrics
func RecordTick(duration time.Duration) {
	tickDuration.Observe(duration.Seconds())
}

// UpdateSnapshotGauges mirrors population counts from a snapshot.
func UpdateSnapshotGauges(snap *game.GameSnapshot) {
	fighterCount.Set(float64(snap.FighterCount))
	creatureCount.Set(float64(snap.CreatureCount))
}

// UpdateEventLogStats mirrors the event log counters.
func UpdateEventLogStats(stats game.EventLogStats) {
	eventLogTotal.Set(float64(stats.Total))
	eventLogDropped.Set(float64(stats.Dropped))
	eventLogPending.Set(float64(stats.Pending))
}

// RecordConnectionRejected increments the rejection counter
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// RecordRequest records HTTP request metrics
func RecordRequest(method, endpoint string, status int, duration time.Duration) {
	if status == 0 {
		status = http.StatusOK
	}
	requestLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	requestTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
}

// UpdateWSConnections updates WebSocket connection count
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// IncrementWSMessages increments WebSocket message counter
func IncrementWSMessages() {
	wsMessagesTotal.Inc()
}
