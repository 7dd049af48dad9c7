package combat

// ComboTier is the current tier of the strike combo.
type ComboTier int

const (
	TierTwoHit   ComboTier = iota // Timer1
	TierThreeHit                  // Timer2
	TierFiveHit                   // Timer3

	comboTierCount
)

// String returns a human-readable tier name.
func (t ComboTier) String() string {
	switch t {
	case TierTwoHit:
		return "two_hit"
	case TierThreeHit:
		return "three_hit"
	case TierFiveHit:
		return "five_hit"
	default:
		return "unknown"
	}
}

// next returns the tier reached once t completes.
func (t ComboTier) next() ComboTier {
	if t == TierFiveHit {
		return TierTwoHit
	}
	return t + 1
}

// TierSpec defines the timing and multipliers of one combo tier.
type TierSpec struct {
	StrikeZone         float64 // Seconds after the tier timer starts during which hits count
	AcceptedHits       int     // Hits required to finish the tier
	BasicMultiplier    float64 // Outgoing damage multiplier of non-finishing hits
	FinisherMultiplier float64 // Outgoing damage multiplier of the finishing hit
	IntakeReduction    float64 // Incoming damage reduction while the tier runs
	KnockbackForce     float64 // Finisher knockback force
	FinisherStuns      bool    // Finisher stuns unless the one-shot gate is armed
	SlashCount         int     // Finisher slash visuals
}

var tierSpecs = [comboTierCount]TierSpec{
	TierTwoHit: {
		StrikeZone:         0.20,
		AcceptedHits:       2,
		BasicMultiplier:    1.0,
		FinisherMultiplier: 1.25,
		IntakeReduction:    0.50,
		KnockbackForce:     250,
		SlashCount:         1,
	},
	TierThreeHit: {
		StrikeZone:         0.40,
		AcceptedHits:       3,
		BasicMultiplier:    1.25,
		FinisherMultiplier: 1.75,
		IntakeReduction:    0.75,
		KnockbackForce:     FinisherKnockbackBase,
		FinisherStuns:      true,
		SlashCount:         2,
	},
	TierFiveHit: {
		StrikeZone:         1.25,
		AcceptedHits:       5,
		BasicMultiplier:    2.0,
		FinisherMultiplier: 2.50,
		IntakeReduction:    0.95,
		KnockbackForce:     FinisherKnockbackBase * 2.25,
		SlashCount:         3,
	},
}

// Spec returns the timing table entry of a tier.
func (t ComboTier) Spec() TierSpec {
	return tierSpecs[t]
}

// StrikeResult describes an accepted strike.
type StrikeResult struct {
	Tier             ComboTier
	DamageMultiplier float64
	Finisher         bool
	Knockback        bool
	KnockbackForce   float64
	ApplyStun        bool
	SlashCount       int
	HitCount         int // Accepted hit count of the finished tier, 0 for non-finishers
}

// ComboSystem tracks the rolling strike-combo timer of one fighter.
type ComboSystem struct {
	state             ComboTier
	timer             float64
	strikeCount       int
	inRestPeriod      bool
	meleeCooldown     float64
	comboStrikeTimer  float64
	combo3StunDisable bool
}

// NewComboSystem creates an idle combo in the two-hit tier.
func NewComboSystem() *ComboSystem {
	return &ComboSystem{state: TierTwoHit}
}

// Tier returns the current tier.
func (c *ComboSystem) Tier() ComboTier { return c.state }

// Timer returns the remaining decision window.
func (c *ComboSystem) Timer() float64 { return c.timer }

// StrikeCount returns hits landed in the current window.
func (c *ComboSystem) StrikeCount() int { return c.strikeCount }

// InRestPeriod reports whether the tier is finished and waiting to expire.
func (c *ComboSystem) InRestPeriod() bool { return c.inRestPeriod }

// MeleeCooldown returns the remaining lockout after a full cycle.
func (c *ComboSystem) MeleeCooldown() float64 { return c.meleeCooldown }

// IsIdle reports a fully idle combo.
func (c *ComboSystem) IsIdle() bool { return c.timer <= 0 && !c.inRestPeriod }

// IsComboStrikeActive drives the transient finisher visual.
func (c *ComboSystem) IsComboStrikeActive() bool { return c.comboStrikeTimer > 0 }

// SuppressNextFinisherStun arms the one-shot gate consumed by the next
// three-hit finisher.
func (c *ComboSystem) SuppressNextFinisherStun() { c.combo3StunDisable = true }

// IsFinisherStunSuppressed reports whether the gate is armed.
func (c *ComboSystem) IsFinisherStunSuppressed() bool { return c.combo3StunDisable }

// HandleStrike registers a strike. It returns false while the melee
// cooldown runs; the caller must not register the hit in that case.
func (c *ComboSystem) HandleStrike() (StrikeResult, bool) {
	if c.meleeCooldown > 0 {
		return StrikeResult{}, false
	}

	if c.timer <= 0 {
		c.timer = StrikeTimerDuration
		c.strikeCount = 1
		c.inRestPeriod = false
		return c.basicResult(), true
	}

	spec := tierSpecs[c.state]
	elapsed := StrikeTimerDuration - c.timer
	if elapsed > spec.StrikeZone+timeEpsilon {
		// swung into the rest zone of this tier
		c.restart()
		return c.basicResult(), true
	}

	c.strikeCount++
	switch {
	case c.strikeCount > spec.AcceptedHits:
		c.restart()
		return c.basicResult(), true
	case c.strikeCount == spec.AcceptedHits:
		c.inRestPeriod = true
		c.comboStrikeTimer = ComboStrikeVisualDuration
		return c.finisherResult(spec), true
	default:
		return c.basicResult(), true
	}
}

// HandleStrikeFor registers a strike for a fighter bound by rules. A strike
// made while the combo sits in a forbidden tier restarts the two-hit tier.
func (c *ComboSystem) HandleStrikeFor(rules ArchetypeRules) (StrikeResult, bool) {
	if c.meleeCooldown > 0 {
		return StrikeResult{}, false
	}

	var (
		res StrikeResult
		ok  bool
	)
	if rules.Forbidden.Has(c.state) {
		c.restart()
		res, ok = c.basicResult(), true
	} else {
		res, ok = c.HandleStrike()
	}
	if ok && rules.AlwaysTripleSlash {
		res.SlashCount = 3
	}
	return res, ok
}

// Update advances the combo timers. When the decision window runs out the
// tier either completes (rest period reached) or the combo fails back to the
// two-hit tier.
func (c *ComboSystem) Update(dt float64) {
	if c.meleeCooldown > 0 {
		c.meleeCooldown -= dt
		if c.meleeCooldown < 0 {
			c.meleeCooldown = 0
		}
	}
	if c.comboStrikeTimer > 0 {
		c.comboStrikeTimer -= dt
		if c.comboStrikeTimer < 0 {
			c.comboStrikeTimer = 0
		}
	}

	if c.timer <= 0 {
		return
	}
	c.timer -= dt
	if c.timer > 0 {
		return
	}
	c.timer = 0
	c.strikeCount = 0

	if !c.inRestPeriod {
		c.state = TierTwoHit
		c.combo3StunDisable = false
		return
	}

	c.inRestPeriod = false
	if c.state == TierFiveHit {
		c.meleeCooldown = ComboWrapCooldown
	}
	if c.state == TierThreeHit {
		c.combo3StunDisable = false
	}
	c.state = c.state.next()
}

// OnExternalFinisherChain puts the combo in the state of a just-finished
// two-hit tier so the next expiry promotes into the three-hit tier. Used by
// the kinetic strike, which is not itself a hit.
func (c *ComboSystem) OnExternalFinisherChain() {
	c.state = TierTwoHit
	c.timer = StrikeTimerDuration
	c.strikeCount = tierSpecs[TierTwoHit].AcceptedHits
	c.inRestPeriod = true
	c.meleeCooldown = 0
}

// DamageIntakeMultiplier is applied to damage received by the combo holder.
func (c *ComboSystem) DamageIntakeMultiplier() float64 {
	if c.timer <= 0 || c.inRestPeriod {
		return 1.0
	}
	return 1.0 - tierSpecs[c.state].IntakeReduction
}

// restart opens a fresh one-hit window in the two-hit tier. The stun gate
// belongs to the abandoned chain and is dropped.
func (c *ComboSystem) restart() {
	c.state = TierTwoHit
	c.combo3StunDisable = false
	c.timer = StrikeTimerDuration
	c.strikeCount = 1
	c.inRestPeriod = false
}

func (c *ComboSystem) basicResult() StrikeResult {
	return StrikeResult{
		Tier:             c.state,
		DamageMultiplier: tierSpecs[c.state].BasicMultiplier,
		SlashCount:       1,
	}
}

func (c *ComboSystem) finisherResult(spec TierSpec) StrikeResult {
	res := StrikeResult{
		Tier:             c.state,
		DamageMultiplier: spec.FinisherMultiplier,
		Finisher:         true,
		Knockback:        true,
		KnockbackForce:   spec.KnockbackForce,
		SlashCount:       spec.SlashCount,
		HitCount:         spec.AcceptedHits,
	}
	if spec.FinisherStuns {
		res.ApplyStun = !c.combo3StunDisable
		c.combo3StunDisable = false
	}
	return res
}
