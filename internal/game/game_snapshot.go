package game

import (
	"sync"
	"sync/atomic"
	"time"
)

// MaxFlashes caps live impact flashes
const MaxFlashes = 16

// FighterSnapshot is an immutable copy of fighter state for API reads.
// Uses value types (not pointers) to ensure immutability
type FighterSnapshot struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Archetype string  `json:"archetype"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	HP        float64 `json:"hp"`
	MaxHP     float64 `json:"maxHp"`
	Dead      bool    `json:"dead"`
	Mounted   bool    `json:"mounted"`
	Level     int     `json:"level"`
	XP        int     `json:"xp"`
	Kills     int     `json:"kills"`

	Invincible bool `json:"invincible"`

	// Block loop
	BlockActive   bool    `json:"blockActive"`
	BlockHeld     bool    `json:"blockHeld"`
	BlockCount    int     `json:"blockCount"`
	MaxBlockCount int     `json:"maxBlockCount"`
	BlockBroken   bool    `json:"blockBroken"`
	StunLocked    bool    `json:"stunLocked"`
	Vulnerable    bool    `json:"vulnerable"`
	Fatigued      bool    `json:"fatigued"`
	KineticIntake int     `json:"kineticIntake"`
	KineticGlow   bool    `json:"kineticGlow"`
	RegenTimer    float64 `json:"regenTimer"`

	// Combo
	ComboTier     string  `json:"comboTier"`
	ComboTimer    float64 `json:"comboTimer"`
	ComboHits     int     `json:"comboHits"`
	ComboRest     bool    `json:"comboRest"`
	ComboStrike   bool    `json:"comboStrike"`
	MeleeCooldown float64 `json:"meleeCooldown"`
	IntakeFactor  float64 `json:"intakeFactor"`
}

// CreatureSnapshot is an immutable creature for API reads
type CreatureSnapshot struct {
	ID            string  `json:"id"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	HP            float64 `json:"hp"`
	MaxHP         float64 `json:"maxHp"`
	Stunned       bool    `json:"stunned"`
	Bleeding      bool    `json:"bleeding"`
	TeleportReady bool    `json:"teleportReady"`
	OrbReady      bool    `json:"orbReady"`
}

// OrbSnapshot is an immutable orb in flight
type OrbSnapshot struct {
	ID       string  `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
}

// TextSnapshot is an immutable floating text
type TextSnapshot struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Text  string  `json:"text"`
	Color string  `json:"color"`
	Alpha float64 `json:"alpha"`
}

// FlashSnapshot is an immutable impact flash
type FlashSnapshot struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Radius    float64 `json:"radius"`
	Color     string  `json:"color"`
	Intensity float64 `json:"intensity"`
}

// GameSnapshot is a complete immutable simulation state.
// All slices are pre-allocated and capped by the resource limits.
type GameSnapshot struct {
	Sequence   uint64    `json:"sequence"` // Monotonic sequence for ordering
	Timestamp  time.Time `json:"timestamp"`
	TickNumber uint64    `json:"tick"`
	SimTime    float64   `json:"simTime"` // Seconds of simulated time
	Paused     bool      `json:"paused"`

	Fighters  []FighterSnapshot  `json:"fighters"`
	Creatures []CreatureSnapshot `json:"creatures"`
	Orbs      []OrbSnapshot      `json:"orbs"`
	Texts     []TextSnapshot     `json:"texts"`
	Flashes   []FlashSnapshot    `json:"flashes"`

	// Aggregate stats
	FighterCount  int `json:"fighterCount"`
	CreatureCount int `json:"creatureCount"`
	TotalKills    int `json:"totalKills"`
}

// Clone deep-copies the snapshot so it survives buffer reuse
func (s *GameSnapshot) Clone() GameSnapshot {
	c := *s
	c.Fighters = append([]FighterSnapshot(nil), s.Fighters...)
	c.Creatures = append([]CreatureSnapshot(nil), s.Creatures...)
	c.Orbs = append([]OrbSnapshot(nil), s.Orbs...)
	c.Texts = append([]TextSnapshot(nil), s.Texts...)
	c.Flashes = append([]FlashSnapshot(nil), s.Flashes...)
	return c
}

// Fighter finds a fighter snapshot by ID
func (s *GameSnapshot) Fighter(id string) (FighterSnapshot, bool) {
	for _, f := range s.Fighters {
		if f.ID == id {
			return f, true
		}
	}
	return FighterSnapshot{}, false
}

// SnapshotPool pre-allocates snapshots to avoid GC pressure.
// Triple buffering lets the tick goroutine fill one slot while readers copy
// the last published one.
type SnapshotPool struct {
	snapshots [3]GameSnapshot
	writeIdx  uint32 // atomic - producer index
	readIdx   uint32 // guarded by mu
	sequence  uint64 // atomic - monotonic sequence
	mu        sync.RWMutex
}

// NewSnapshotPool creates a pool with pre-allocated slices
func NewSnapshotPool(maxFighters, maxCreatures, maxOrbs, maxTexts int) *SnapshotPool {
	pool := &SnapshotPool{}
	for i := 0; i < 3; i++ {
		pool.snapshots[i] = GameSnapshot{
			Fighters:  make([]FighterSnapshot, 0, maxFighters),
			Creatures: make([]CreatureSnapshot, 0, maxCreatures),
			Orbs:      make([]OrbSnapshot, 0, maxOrbs),
			Texts:     make([]TextSnapshot, 0, maxTexts),
			Flashes:   make([]FlashSnapshot, 0, MaxFlashes),
		}
	}
	return pool
}

// AcquireWrite gets the next write slot (producer only, called from tick).
// Returns a snapshot with reset slices but preserved capacity
func (p *SnapshotPool) AcquireWrite() *GameSnapshot {
	idx := atomic.AddUint32(&p.writeIdx, 1) % 3
	snap := &p.snapshots[idx]

	snap.Fighters = snap.Fighters[:0]
	snap.Creatures = snap.Creatures[:0]
	snap.Orbs = snap.Orbs[:0]
	snap.Texts = snap.Texts[:0]
	snap.Flashes = snap.Flashes[:0]

	snap.Sequence = atomic.AddUint64(&p.sequence, 1)
	snap.Timestamp = time.Now()

	return snap
}

// PublishWrite marks the write complete and makes it the read slot
func (p *SnapshotPool) PublishWrite() {
	p.mu.Lock()
	p.readIdx = atomic.LoadUint32(&p.writeIdx) % 3
	p.mu.Unlock()
}

// Latest returns a copy of the last published snapshot
func (p *SnapshotPool) Latest() GameSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshots[p.readIdx].Clone()
}
