package combat

import "math"

// MountState tells whether a fighter is riding a vehicle.
type MountState int

const (
	OnFoot MountState = iota
	OnVehicle
)

func (m MountState) String() string {
	if m == OnVehicle {
		return "on_vehicle"
	}
	return "on_foot"
}

// Actor is the fighter performing a block or kinetic strike.
type Actor interface {
	Position() (x, y float64)
	MeleeDamage() float64
	MountState() MountState
	// GrantInvincibility raises the invincible timer to at least d seconds.
	GrantInvincibility(d float64)
}

// Target is a CPU combat entity. The core reads and writes only these fields;
// removing dead targets is the caller's job.
type Target interface {
	Position() (x, y float64)
	HP() float64
	SetHP(hp float64)
	IsDead() bool
	ApplyKnockback(sourceX, sourceY, force float64)
	StunTimer() float64
	SetStunTimer(t float64)
	Bleed() *BleedEffect
	SetBleed(b *BleedEffect)
}

// SoundPlayer plays named sound effects. Failures are logged by the caller
// and never retried.
type SoundPlayer interface {
	PlaySoundEffect(name string) error
}

// DamageText is a floating combat text record.
type DamageText struct {
	Text     string
	X, Y     float64
	Color    string
	Lifetime float64
}

// TextSink receives damage text records.
type TextSink interface {
	AddDamageText(t DamageText)
}

// StrikeVisual is a transient slash effect anchored at a point.
type StrikeVisual interface {
	Trigger(x, y float64)
}

// BleedEffect is damage over time left by a five-hit finisher.
type BleedEffect struct {
	RemainingDamage float64
	TickTimer       float64
	TickRate        float64
	DamagePerTick   float64
}

// NewBleedEffect spreads total damage over duration in ticks of tickRate seconds.
func NewBleedEffect(total, duration, tickRate float64) *BleedEffect {
	ticks := math.Max(1, math.Round(duration/tickRate))
	return &BleedEffect{
		RemainingDamage: total,
		TickTimer:       tickRate,
		TickRate:        tickRate,
		DamagePerTick:   total / ticks,
	}
}

// Tick advances the effect and returns the damage due this step.
func (b *BleedEffect) Tick(dt float64) float64 {
	if b.Done() {
		return 0
	}
	b.TickTimer -= dt
	dealt := 0.0
	for b.TickTimer <= timeEpsilon && b.RemainingDamage > timeEpsilon {
		d := math.Min(b.DamagePerTick, b.RemainingDamage)
		b.RemainingDamage -= d
		dealt += d
		b.TickTimer += b.TickRate
	}
	return dealt
}

// Done reports whether all damage has been dealt.
func (b *BleedEffect) Done() bool {
	return b.RemainingDamage <= timeEpsilon
}

// Fighter is a player-controlled combatant owning one block and one combo system.
type Fighter struct {
	X, Y            float64
	HP              float64
	MaxHP           float64
	Melee           float64
	InvincibleTimer float64
	Mount           MountState
	Archetype       Archetype
	Rules           ArchetypeRules

	Block *BlockSystem
	Combo *ComboSystem
}

// NewFighter creates a fighter at full health with a full block meter.
func NewFighter(archetype Archetype, rules ArchetypeRules, maxHP, melee float64, maxBlock int, sounds SoundPlayer) *Fighter {
	return &Fighter{
		HP:        maxHP,
		MaxHP:     maxHP,
		Melee:     melee,
		Archetype: archetype,
		Rules:     rules,
		Block:     NewBlockSystem(maxBlock, sounds),
		Combo:     NewComboSystem(),
	}
}

func (f *Fighter) Position() (float64, float64) { return f.X, f.Y }
func (f *Fighter) MeleeDamage() float64         { return f.Melee }
func (f *Fighter) MountState() MountState       { return f.Mount }
func (f *Fighter) IsDead() bool                 { return f.HP <= 0 }

func (f *Fighter) GrantInvincibility(d float64) {
	if d > f.InvincibleTimer {
		f.InvincibleTimer = d
	}
}

// IsImmune reports whether incoming hits are ignored entirely.
func (f *Fighter) IsImmune() bool {
	return f.InvincibleTimer > 0 || f.Block.IsImmuneToDamage()
}

// Update advances every per-fighter timer. Call once per tick before events.
func (f *Fighter) Update(dt float64) {
	f.Block.Update(dt)
	f.Combo.Update(dt)
	if f.InvincibleTimer > 0 {
		f.InvincibleTimer = math.Max(0, f.InvincibleTimer-dt)
	}
}

// SetMount updates the mount state. Dismount requests raised by a block
// break are read with Block.ConsumeDismount.
func (f *Fighter) SetMount(m MountState) {
	f.Mount = m
}
