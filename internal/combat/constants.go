// Package combat implements the fighter combat core: the block / kinetic
// strike resource loop, the strike-combo timer, CPU skill cooldowns and the
// glue that resolves hits between fighters and CPU targets.
//
// Everything here is frame-stepped. Callers advance every system with
// Update(dt) once per tick BEFORE feeding that tick's events (strikes,
// incoming attacks, kinetic strikes), so timers always reflect the current
// frame when a new event is evaluated.
package combat

// Combo timing and effects
const (
	// StrikeTimerDuration is the shared decision window of every combo tier (seconds)
	StrikeTimerDuration = 0.65

	// ComboWrapCooldown is the melee lockout applied when the five-hit tier completes
	ComboWrapCooldown = 0.25

	// ComboStrikeVisualDuration drives IsComboStrikeActive after a finisher
	ComboStrikeVisualDuration = 0.25

	// FinisherKnockbackBase is the knockback force of the three-hit finisher
	FinisherKnockbackBase = 1000.0

	// FinisherStunDuration is applied to a target stunned by a three-hit finisher
	FinisherStunDuration = 1.0

	// BleedShare is the fraction of a five-hit finisher's damage dealt again as bleed
	BleedShare = 0.40
	// BleedDuration is how long a finisher bleed lasts
	BleedDuration = 2.0
	// BleedTickRate is the interval between bleed ticks
	BleedTickRate = 0.5
)

// Block timing
const (
	// BlockRegenDelay is the pause after releasing block before passive regeneration
	BlockRegenDelay = 1.25

	// BlockRegenRate is block points regenerated per second
	BlockRegenRate = 5.0

	// BlockStunLockDuration is the stun after a block breaks
	BlockStunLockDuration = 1.25

	// BlockVulnerabilityExtra is added on top of the stun to form the vulnerability window
	BlockVulnerabilityExtra = 2.5

	// BlockFatigueDuration is how long block stays unusable after vulnerability or a kinetic strike
	BlockFatigueDuration = 2.5

	// MinTimeBetweenBlocks debounces point consumption from one continuous attack
	MinTimeBetweenBlocks = 0.1

	// BlockSoundCooldown throttles the block-impact sound
	BlockSoundCooldown = 0.1

	// VulnerableDamageMultiplier applies to damage received while vulnerable
	VulnerableDamageMultiplier = 1.5

	// timeEpsilon absorbs float drift when comparing event timestamps
	timeEpsilon = 1e-9
)

// Kinetic strike
const (
	// KineticImmunityDuration is the damage immunity granted to the striker
	KineticImmunityDuration = 0.25

	// KineticKnockbackBase is scaled by the effectiveness multiplier
	KineticKnockbackBase = 1000.0

	// CollisionThreshold is the base strike radius (world units)
	CollisionThreshold = 50.0

	// MaxKineticCharge is the largest charge the effectiveness table covers
	MaxKineticCharge = 20
)

// Sound effect names played by the combat core
const (
	SoundBlockActivate = "block_activate"
	SoundBlockHit      = "block_hit"
	SoundBlockBreak    = "block_break"
	SoundKineticStrike = "kinetic_strike"
)

// Damage text colors
const (
	ColorDamageDealt     = "#ffd23e"
	ColorDamageTaken     = "#ff3e3e"
	ColorFinisher        = "#ff8c1a"
	ColorBlock           = "#4fc3f7"
	ColorBlockBroken     = "#b388ff"
	ColorKineticStrike   = "#00e5ff"
	DamageTextLifetime   = 0.8
	FinisherTextLifetime = 1.2
)
