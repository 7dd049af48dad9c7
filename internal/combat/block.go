package combat

import (
	"log"
	"math"
)

// kineticEffectiveness is the damage / knockback multiplier indexed by charge-1.
var kineticEffectiveness = [MaxKineticCharge]float64{
	1.15, 1.30, 1.45, 1.60, 1.75,
	1.90, 2.05, 2.20, 2.40, 2.60,
	2.80, 3.00, 3.25, 3.50, 3.75,
	4.00, 4.40, 4.80, 5.25, 5.75,
}

// KineticEffectiveness returns the multiplier for a charge, or 0 outside 1..20.
func KineticEffectiveness(charge int) float64 {
	if charge < 1 || charge > MaxKineticCharge {
		return 0
	}
	return kineticEffectiveness[charge-1]
}

// KineticRadius returns the strike radius for a charge.
func KineticRadius(charge int) float64 {
	switch {
	case charge <= 10:
		return CollisionThreshold
	case charge <= 17:
		return CollisionThreshold * 3
	default:
		return CollisionThreshold * 5
	}
}

// KineticHit is one target struck by a kinetic strike.
type KineticHit struct {
	Target Target
	Damage float64
	Killed bool
}

// KineticStrikeResult summarizes a performed kinetic strike.
type KineticStrikeResult struct {
	Charge        int
	Effectiveness float64
	Radius        float64
	Damage        float64 // per target
	Knockback     float64
	Hits          []KineticHit
}

// BlockSystem is the block resource of one fighter: block points spent by
// absorbing hits, the break -> stun -> vulnerability -> fatigue cycle, passive
// regeneration and the kinetic strike fueled by spent points.
type BlockSystem struct {
	active  bool
	rmbHeld bool

	blockCount      int
	blockCountFloat float64
	maxBlockCount   int

	regenTimer             float64
	stunLockTimer          float64
	vulnerabilityTimer     float64
	fatigueTimer           float64
	blockSoundTimer        float64
	immunityTimer          float64
	lastKineticStrikeTimer float64

	blockBroken  bool
	blockFatigue bool
	// intake reads 0 from a block break until fatigue ends
	intakeDrained bool

	lastConsumption float64
	needsDismount   bool

	sounds SoundPlayer
}

// NewBlockSystem creates a full, idle block meter. sounds may be nil.
func NewBlockSystem(maxBlockCount int, sounds SoundPlayer) *BlockSystem {
	if maxBlockCount < 0 {
		maxBlockCount = 0
	}
	return &BlockSystem{
		blockCount:      maxBlockCount,
		blockCountFloat: float64(maxBlockCount),
		maxBlockCount:   maxBlockCount,
		lastConsumption: math.Inf(-1),
		sounds:          sounds,
	}
}

// Activate starts blocking. Returns false while fatigued, broken or stun-locked.
func (b *BlockSystem) Activate() bool {
	if b.blockFatigue || b.blockBroken || b.IsStunLocked() {
		return false
	}
	b.active = true
	b.rmbHeld = true
	b.regenTimer = 0
	b.blockCountFloat = float64(b.blockCount)
	b.play(SoundBlockActivate)
	return true
}

// Press handles the block button going down. The button stays held when
// activation is refused, so passive regeneration waits for the release.
func (b *BlockSystem) Press() bool {
	b.rmbHeld = true
	return b.Activate()
}

// Deactivate releases block. Safe to call at any time.
func (b *BlockSystem) Deactivate() {
	wasActive := b.active
	b.active = false
	b.rmbHeld = false
	if wasActive && !b.blockBroken && !b.blockFatigue && b.blockCount < b.maxBlockCount {
		b.regenTimer = BlockRegenDelay
	}
}

// ProcessAttack handles a melee hit landing while blocking. It returns true
// if the hit was absorbed and false if it gets through (not blocking, or the
// block broke on this hit).
func (b *BlockSystem) ProcessAttack(holder Actor, now float64) bool {
	return b.absorb(holder, now)
}

// ProcessProjectileBlock handles a projectile landing while blocking.
func (b *BlockSystem) ProcessProjectileBlock(holder Actor, now float64) bool {
	return b.absorb(holder, now)
}

func (b *BlockSystem) absorb(holder Actor, now float64) bool {
	if !b.active || b.blockBroken || b.blockFatigue {
		return false
	}

	if now-b.lastConsumption >= MinTimeBetweenBlocks-timeEpsilon {
		b.lastConsumption = now
		b.blockCount--
		b.blockCountFloat = math.Max(float64(b.blockCount), 0)

		if b.blockCount < 0 {
			b.breakBlock(holder)
			return false
		}
	}

	// impact sound has its own throttle, debounced hits included
	if b.blockSoundTimer <= 0 {
		b.play(SoundBlockHit)
		b.blockSoundTimer = BlockSoundCooldown
	}
	return true
}

func (b *BlockSystem) breakBlock(holder Actor) {
	b.blockCount = 0
	b.blockCountFloat = 0
	b.intakeDrained = true
	b.blockBroken = true
	b.active = false
	b.rmbHeld = false
	b.stunLockTimer = BlockStunLockDuration
	b.vulnerabilityTimer = b.stunLockTimer + BlockVulnerabilityExtra
	b.fatigueTimer = BlockFatigueDuration
	b.regenTimer = BlockRegenDelay
	if holder != nil && holder.MountState() == OnVehicle {
		b.needsDismount = true
	}
	b.play(SoundBlockBreak)
}

// Update advances all block timers by dt seconds.
func (b *BlockSystem) Update(dt float64) {
	b.blockSoundTimer = decay(b.blockSoundTimer, dt)
	b.lastKineticStrikeTimer = decay(b.lastKineticStrikeTimer, dt)
	b.immunityTimer = decay(b.immunityTimer, dt)

	switch {
	case b.blockBroken:
		if b.stunLockTimer > 0 {
			b.stunLockTimer -= dt
		}
		b.vulnerabilityTimer -= dt
		if b.vulnerabilityTimer <= 0 {
			b.vulnerabilityTimer = 0
			b.stunLockTimer = math.Max(b.stunLockTimer, 0)
			b.blockBroken = false
			b.blockFatigue = true
		}

	case b.blockFatigue:
		b.fatigueTimer -= dt
		if b.fatigueTimer <= 0 {
			b.fatigueTimer = 0
			b.blockFatigue = false
			b.intakeDrained = false
			b.blockCount = b.maxBlockCount
			b.blockCountFloat = float64(b.maxBlockCount)
			b.regenTimer = 0
		}

	default:
		if b.rmbHeld || b.blockCount >= b.maxBlockCount {
			return
		}
		if b.regenTimer > 0 {
			b.regenTimer = decay(b.regenTimer, dt)
			return
		}
		b.blockCountFloat = math.Min(b.blockCountFloat+BlockRegenRate*dt, float64(b.maxBlockCount))
		if n := int(math.Floor(b.blockCountFloat)); n != b.blockCount {
			b.blockCount = n
		}
	}
}

// PerformKineticStrike spends the stored charge on an area strike around
// (originX, originY). It is a no-op returning false when there is no charge or
// the block is stun-locked, broken or fatigued.
func (b *BlockSystem) PerformKineticStrike(originX, originY float64, actor Actor, targets []Target, combo *ComboSystem) (KineticStrikeResult, bool) {
	charge := b.KineticIntake()
	if charge == 0 || b.IsStunLocked() || b.blockFatigue || b.blockBroken {
		return KineticStrikeResult{}, false
	}

	lookup := min(charge, MaxKineticCharge)
	eff := KineticEffectiveness(lookup)
	res := KineticStrikeResult{
		Charge:        charge,
		Effectiveness: eff,
		Radius:        KineticRadius(charge),
		Knockback:     KineticKnockbackBase * eff,
	}
	if actor != nil {
		res.Damage = actor.MeleeDamage() * eff
		actor.GrantInvincibility(KineticImmunityDuration)
	}
	b.immunityTimer = KineticImmunityDuration

	for _, t := range targets {
		if t == nil || t.IsDead() {
			continue
		}
		tx, ty := t.Position()
		if math.Hypot(tx-originX, ty-originY) > res.Radius {
			continue
		}
		hp := t.HP() - res.Damage
		hit := KineticHit{Target: t, Damage: res.Damage}
		if hp <= 0 {
			t.SetHP(0)
			hit.Killed = true
		} else {
			t.SetHP(hp)
			t.ApplyKnockback(originX, originY, res.Knockback)
		}
		res.Hits = append(res.Hits, hit)
	}

	b.lastKineticStrikeTimer = KineticImmunityDuration
	if combo != nil {
		combo.OnExternalFinisherChain()
	}

	// The spent meter is zeroed, so KineticIntake reads max again while the
	// fighter sits out the fatigue window. Kept as the charge readout players see.
	b.blockCount = 0
	b.blockCountFloat = 0
	b.active = false
	b.rmbHeld = false
	b.blockFatigue = true
	b.fatigueTimer = BlockFatigueDuration
	b.regenTimer = BlockRegenDelay

	b.play(SoundKineticStrike)
	return res, true
}

// KineticIntake is the charge available to a kinetic strike.
func (b *BlockSystem) KineticIntake() int {
	if b.intakeDrained {
		return 0
	}
	n := b.maxBlockCount - b.blockCount
	if n < 0 {
		return 0
	}
	if n > b.maxBlockCount {
		return b.maxBlockCount
	}
	return n
}

// IsStunLocked reports the stun phase of a block break.
func (b *BlockSystem) IsStunLocked() bool {
	return b.blockBroken && b.stunLockTimer > 0
}

// IsVulnerable reports the post-stun phase of a block break.
func (b *BlockSystem) IsVulnerable() bool {
	return b.blockBroken && b.stunLockTimer <= 0 && b.vulnerabilityTimer > 0
}

// DamageMultiplier applies to damage received by the block holder.
func (b *BlockSystem) DamageMultiplier() float64 {
	if b.IsVulnerable() {
		return VulnerableDamageMultiplier
	}
	return 1.0
}

// IsImmuneToDamage reports the post-kinetic-strike immunity window.
func (b *BlockSystem) IsImmuneToDamage() bool {
	return b.immunityTimer > 0
}

// IsKineticStrikeGlowing drives the UI glow after a kinetic strike.
func (b *BlockSystem) IsKineticStrikeGlowing() bool {
	return b.lastKineticStrikeTimer > 0
}

// ConsumeDismount returns and clears the dismount request raised by a block
// break while mounted.
func (b *BlockSystem) ConsumeDismount() bool {
	v := b.needsDismount
	b.needsDismount = false
	return v
}

// CanKineticStrike reports whether PerformKineticStrike would act.
func (b *BlockSystem) CanKineticStrike() bool {
	return b.KineticIntake() > 0 && !b.blockBroken && !b.blockFatigue
}

func (b *BlockSystem) IsActive() bool                  { return b.active }
func (b *BlockSystem) IsHeld() bool                    { return b.rmbHeld }
func (b *BlockSystem) IsBroken() bool                  { return b.blockBroken }
func (b *BlockSystem) IsFatigued() bool                { return b.blockFatigue }
func (b *BlockSystem) Count() int                      { return b.blockCount }
func (b *BlockSystem) CountFloat() float64             { return b.blockCountFloat }
func (b *BlockSystem) MaxCount() int                   { return b.maxBlockCount }
func (b *BlockSystem) RegenTimer() float64             { return b.regenTimer }
func (b *BlockSystem) StunLockTimer() float64          { return b.stunLockTimer }
func (b *BlockSystem) VulnerabilityTimer() float64     { return b.vulnerabilityTimer }
func (b *BlockSystem) FatigueTimer() float64           { return b.fatigueTimer }
func (b *BlockSystem) ImmunityTimer() float64          { return b.immunityTimer }
func (b *BlockSystem) LastKineticStrikeTimer() float64 { return b.lastKineticStrikeTimer }

func (b *BlockSystem) play(name string) {
	if b.sounds == nil {
		return
	}
	if err := b.sounds.PlaySoundEffect(name); err != nil {
		log.Printf("⚠️ sound effect %s: %v", name, err)
	}
}

func decay(t, dt float64) float64 {
	if t <= 0 {
		return t
	}
	t -= dt
	if t < 0 {
		return 0
	}
	return t
}
