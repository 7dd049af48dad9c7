package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBlockSystemStartsFull(t *testing.T) {
	b := NewBlockSystem(10, nil)
	assert.Equal(t, 10, b.Count())
	assert.Equal(t, 10.0, b.CountFloat())
	assert.Equal(t, 0, b.KineticIntake())
	assert.False(t, b.IsActive())
	assert.Equal(t, 1.0, b.DamageMultiplier())
}

func TestBlockActivateAndDeactivate(t *testing.T) {
	sounds := &soundRecorder{}
	b := NewBlockSystem(10, sounds)

	require.True(t, b.Activate())
	assert.True(t, b.IsActive())
	assert.True(t, b.IsHeld())
	assert.Equal(t, 1, sounds.count(SoundBlockActivate))

	b.Deactivate()
	assert.False(t, b.IsActive())
	assert.Equal(t, 0.0, b.RegenTimer(), "full meter does not start regen delay")

	b.Activate()
	b.ProcessAttack(nil, 0)
	b.Deactivate()
	assert.Equal(t, BlockRegenDelay, b.RegenTimer())
}

func TestBlockDeactivateIsIdempotent(t *testing.T) {
	b := NewBlockSystem(5, nil)
	b.Activate()
	drain(b, nil, 0, 2)

	b.Deactivate()
	once := *b
	b.Deactivate()
	assert.Equal(t, once, *b)
}

func TestBlockBreakSequencing(t *testing.T) {
	sounds := &soundRecorder{}
	b := NewBlockSystem(1, sounds)
	require.True(t, b.Activate())

	assert.True(t, b.ProcessAttack(nil, 0))
	assert.Equal(t, 0, b.Count())

	assert.False(t, b.ProcessAttack(nil, 0.1))
	assert.True(t, b.IsBroken())
	assert.False(t, b.IsFatigued())
	assert.False(t, b.IsActive())
	assert.False(t, b.IsHeld())
	assert.Equal(t, 0, b.Count())
	assert.Equal(t, 0, b.KineticIntake())
	assert.Equal(t, 1.25, b.StunLockTimer())
	assert.Equal(t, 3.75, b.VulnerabilityTimer())
	assert.Equal(t, BlockFatigueDuration, b.FatigueTimer())
	assert.True(t, b.IsStunLocked())
	assert.Equal(t, 1, sounds.count(SoundBlockBreak))

	assert.False(t, b.Activate(), "cannot block while broken")
	assert.False(t, b.ProcessAttack(nil, 0.2))
}

func TestBlockRecoveryChain(t *testing.T) {
	b := NewBlockSystem(3, nil)
	b.Activate()
	drain(b, nil, 0, 4)
	require.True(t, b.IsBroken())

	b.Update(1.3)
	assert.False(t, b.IsStunLocked())
	assert.True(t, b.IsVulnerable())
	assert.Equal(t, VulnerableDamageMultiplier, b.DamageMultiplier())

	b.Update(2.5)
	assert.False(t, b.IsBroken())
	assert.True(t, b.IsFatigued())
	assert.Equal(t, 1.0, b.DamageMultiplier())
	assert.False(t, b.Activate(), "cannot block while fatigued")
	assert.Equal(t, 0, b.KineticIntake())

	b.Update(2.6)
	assert.False(t, b.IsFatigued())
	assert.Equal(t, 3, b.Count())
	assert.Equal(t, 0.0, b.RegenTimer())
	assert.True(t, b.Activate())
}

func TestBlockRecoveryAfterFullChainDuration(t *testing.T) {
	b := NewBlockSystem(1, nil)
	b.Activate()
	b.ProcessAttack(nil, 0)
	b.ProcessAttack(nil, 0.1)
	require.True(t, b.IsBroken())

	stepFor(b.Update, BlockStunLockDuration+3.75+BlockFatigueDuration)

	assert.False(t, b.IsBroken())
	assert.False(t, b.IsFatigued())
	assert.Equal(t, 1, b.Count())
}

func TestBlockDebounce(t *testing.T) {
	b := NewBlockSystem(5, nil)
	b.Activate()

	assert.True(t, b.ProcessAttack(nil, 0))
	assert.True(t, b.ProcessAttack(nil, 0.05), "debounced hit is still absorbed")
	assert.True(t, b.ProcessAttack(nil, 0.099))
	assert.Equal(t, 4, b.Count())

	assert.True(t, b.ProcessAttack(nil, 0.1))
	assert.Equal(t, 3, b.Count())
}

func TestBlockDebounceToleratesFloatDrift(t *testing.T) {
	b := NewBlockSystem(10, nil)
	b.Activate()
	for i := 0; i < 8; i++ {
		b.ProcessAttack(nil, float64(i)*0.1)
	}
	assert.Equal(t, 2, b.Count())
}

func TestBlockHitSoundThrottle(t *testing.T) {
	sounds := &soundRecorder{}
	b := NewBlockSystem(10, sounds)
	b.Activate()

	b.ProcessAttack(nil, 0)
	b.ProcessAttack(nil, 0.1)
	assert.Equal(t, 1, sounds.count(SoundBlockHit), "no update between hits keeps the sound throttled")

	b.Update(0.1)
	b.ProcessAttack(nil, 0.2)
	assert.Equal(t, 2, sounds.count(SoundBlockHit))
}

func TestBlockHitSoundIgnoresDebounce(t *testing.T) {
	sounds := &soundRecorder{}
	b := NewBlockSystem(10, sounds)
	b.Activate()

	b.ProcessAttack(nil, 0)
	b.Update(0.1)
	assert.True(t, b.ProcessAttack(nil, 0.05))
	assert.Equal(t, 9, b.Count(), "debounced hit costs nothing")
	assert.Equal(t, 2, sounds.count(SoundBlockHit), "sound throttle runs on its own timer")
}

func TestBlockPressWhileFatigued(t *testing.T) {
	b := NewBlockSystem(1, nil)
	require.True(t, b.Press())
	drain(b, nil, 0, 2)
	require.True(t, b.IsBroken())
	b.Update(b.VulnerabilityTimer() + 0.01)
	require.True(t, b.IsFatigued())

	assert.False(t, b.Press(), "fatigue refuses activation")
	assert.True(t, b.IsHeld(), "button stays held")
	assert.False(t, b.IsActive())

	b.Deactivate()
	assert.False(t, b.IsHeld())

	stepFor(b.Update, BlockFatigueDuration+0.1)
	require.False(t, b.IsFatigued())
	assert.True(t, b.Press())
	assert.True(t, b.IsActive())
}

func TestBlockSoundFailureIsNotFatal(t *testing.T) {
	sounds := &soundRecorder{err: errNoDevice}
	b := NewBlockSystem(2, sounds)

	assert.True(t, b.Activate())
	assert.True(t, b.ProcessAttack(nil, 0))
	assert.Equal(t, 1, b.Count())
}

func TestBlockBreakWhileMountedRequestsDismount(t *testing.T) {
	rider := NewFighter(ArchetypeKnight, ArchetypeRules{}, 100, 10, 0, nil)
	rider.SetMount(OnVehicle)

	rider.Block.Activate()
	rider.Block.ProcessAttack(rider, 0)
	require.True(t, rider.Block.IsBroken())

	assert.True(t, rider.Block.ConsumeDismount())
	assert.False(t, rider.Block.ConsumeDismount(), "dismount signal is one-shot")
}

func TestBlockBreakOnFootNoDismount(t *testing.T) {
	f := NewFighter(ArchetypeKnight, ArchetypeRules{}, 100, 10, 0, nil)
	f.Block.Activate()
	f.Block.ProcessAttack(f, 0)
	require.True(t, f.Block.IsBroken())
	assert.False(t, f.Block.ConsumeDismount())
}

func TestBlockPassiveRegen(t *testing.T) {
	b := NewBlockSystem(10, nil)
	b.Activate()
	drain(b, nil, 0, 3)
	require.Equal(t, 7, b.Count())
	assert.Equal(t, 3, b.KineticIntake())

	b.Update(1.0)
	assert.Equal(t, 7, b.Count(), "no regen while holding block")

	b.Deactivate()
	b.Update(1.0)
	assert.Equal(t, 7, b.Count(), "regen delay")
	b.Update(0.25)
	assert.Equal(t, 7, b.Count())
	assert.Equal(t, 0.0, b.RegenTimer())

	b.Update(0.2)
	assert.Equal(t, 8, b.Count())
	assert.Equal(t, 2, b.KineticIntake())

	b.Update(1.0)
	assert.Equal(t, 10, b.Count())
	assert.Equal(t, 10.0, b.CountFloat())
	assert.Equal(t, 0, b.KineticIntake())
}

func TestKineticEffectivenessTable(t *testing.T) {
	assert.Equal(t, 0.0, KineticEffectiveness(0))
	assert.Equal(t, 0.0, KineticEffectiveness(21))
	assert.Equal(t, 1.15, KineticEffectiveness(1))
	assert.Equal(t, 5.75, KineticEffectiveness(20))

	prev := 0.0
	for c := 1; c <= MaxKineticCharge; c++ {
		eff := KineticEffectiveness(c)
		assert.Greater(t, eff, prev, "charge %d", c)
		prev = eff
	}
}

func TestKineticRadiusTiers(t *testing.T) {
	tests := []struct {
		charge int
		want   float64
	}{
		{1, CollisionThreshold},
		{10, CollisionThreshold},
		{11, 3 * CollisionThreshold},
		{17, 3 * CollisionThreshold},
		{18, 5 * CollisionThreshold},
		{20, 5 * CollisionThreshold},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KineticRadius(tt.charge), "charge %d", tt.charge)
	}
}

func TestKineticStrikeMinimumCharge(t *testing.T) {
	f := NewFighter(ArchetypeKnight, ArchetypeRules{}, 100, 10, 20, nil)
	f.Block.Activate()
	f.Block.ProcessAttack(f, 0)
	require.Equal(t, 1, f.Block.KineticIntake())

	near := newDummy(0, 0, 100)
	edge := newDummy(CollisionThreshold, 0, 100)
	far := newDummy(CollisionThreshold+1, 0, 100)

	res, ok := f.Block.PerformKineticStrike(0, 0, f, []Target{near, edge, far}, f.Combo)
	require.True(t, ok)
	assert.Equal(t, 1, res.Charge)
	assert.Equal(t, 1.15, res.Effectiveness)
	assert.Len(t, res.Hits, 2)

	assert.InDelta(t, 100-11.5, near.hp, 1e-9)
	assert.InDelta(t, 100-11.5, edge.hp, 1e-9)
	assert.Equal(t, 100.0, far.hp)
	require.Len(t, near.knockbacks, 1)
	assert.InDelta(t, 1150.0, near.knockbacks[0], 1e-9)
	assert.Empty(t, far.knockbacks)
}

func TestKineticStrikeMaximumCharge(t *testing.T) {
	f := NewFighter(ArchetypeKnight, ArchetypeRules{}, 100, 10, 20, nil)
	f.Block.Activate()
	drain(f.Block, f, 0, 20)
	require.False(t, f.Block.IsBroken())
	require.Equal(t, 20, f.Block.KineticIntake())

	in := newDummy(5*CollisionThreshold, 0, 1000)
	out := newDummy(5*CollisionThreshold+1, 0, 1000)

	res, ok := f.Block.PerformKineticStrike(0, 0, f, []Target{in, out}, f.Combo)
	require.True(t, ok)
	assert.Equal(t, 5.75, res.Effectiveness)
	assert.Equal(t, 5*CollisionThreshold, res.Radius)
	assert.InDelta(t, 1000-57.5, in.hp, 1e-9)
	assert.Equal(t, 1000.0, out.hp)
}

func TestKineticStrikeAftermath(t *testing.T) {
	sounds := &soundRecorder{}
	f := NewFighter(ArchetypeKnight, ArchetypeRules{}, 100, 10, 10, sounds)
	f.Block.Activate()
	drain(f.Block, f, 0, 4)

	_, ok := f.Block.PerformKineticStrike(0, 0, f, nil, f.Combo)
	require.True(t, ok)

	assert.True(t, f.Block.IsFatigued())
	assert.False(t, f.Block.IsBroken())
	assert.False(t, f.Block.IsActive())
	assert.False(t, f.Block.IsHeld())
	assert.Equal(t, 0, f.Block.Count())
	assert.Equal(t, BlockFatigueDuration, f.Block.FatigueTimer())
	assert.Equal(t, BlockRegenDelay, f.Block.RegenTimer())
	assert.True(t, f.Block.IsImmuneToDamage())
	assert.True(t, f.Block.IsKineticStrikeGlowing())
	assert.Equal(t, KineticImmunityDuration, f.InvincibleTimer)
	assert.Equal(t, 1, sounds.count(SoundKineticStrike))

	// the meter reads full right after the strike even though the fighter is fatigued
	assert.Equal(t, 10, f.Block.KineticIntake())

	assert.Equal(t, TierTwoHit, f.Combo.Tier())
	assert.True(t, f.Combo.InRestPeriod())
	assert.Equal(t, 2, f.Combo.StrikeCount())

	_, ok = f.Block.PerformKineticStrike(0, 0, f, nil, f.Combo)
	assert.False(t, ok, "fatigue blocks a second strike")

	f.Update(0.3)
	assert.False(t, f.Block.IsImmuneToDamage())
	assert.Equal(t, TierTwoHit, f.Combo.Tier())
	f.Update(0.4)
	assert.Equal(t, TierThreeHit, f.Combo.Tier())
}

func TestKineticStrikeSkipsKnockbackOnKill(t *testing.T) {
	f := NewFighter(ArchetypeKnight, ArchetypeRules{}, 100, 10, 10, nil)
	f.Block.Activate()
	f.Block.ProcessAttack(f, 0)

	weak := newDummy(0, 0, 5)
	dead := newDummy(0, 0, 0)
	res, ok := f.Block.PerformKineticStrike(0, 0, f, []Target{weak, dead}, f.Combo)
	require.True(t, ok)
	require.Len(t, res.Hits, 1)
	assert.True(t, res.Hits[0].Killed)
	assert.Equal(t, 0.0, weak.hp)
	assert.Empty(t, weak.knockbacks)
}

func TestKineticStrikeGuards(t *testing.T) {
	t.Run("no charge", func(t *testing.T) {
		b := NewBlockSystem(10, nil)
		_, ok := b.PerformKineticStrike(0, 0, nil, nil, nil)
		assert.False(t, ok)
		assert.False(t, b.IsFatigued())
	})

	t.Run("broken", func(t *testing.T) {
		b := NewBlockSystem(1, nil)
		b.Activate()
		drain(b, nil, 0, 2)
		require.True(t, b.IsBroken())
		_, ok := b.PerformKineticStrike(0, 0, nil, nil, nil)
		assert.False(t, ok)
		assert.True(t, b.IsBroken())
	})

	t.Run("fatigued", func(t *testing.T) {
		b := NewBlockSystem(1, nil)
		b.Activate()
		drain(b, nil, 0, 2)
		b.Update(3.8)
		require.True(t, b.IsFatigued())
		_, ok := b.PerformKineticStrike(0, 0, nil, nil, nil)
		assert.False(t, ok)
	})
}

func TestBlockBreakThenKineticStrikeScenario(t *testing.T) {
	f := NewFighter(ArchetypeKnight, ArchetypeRules{}, 100, 10, 10, nil)
	require.True(t, f.Block.Activate())

	now := 0.0
	for i := 0; i < 10; i++ {
		require.True(t, f.Block.ProcessAttack(f, now), "hit %d absorbed", i+1)
		now += 0.1
	}
	assert.Equal(t, 0, f.Block.Count())
	assert.Equal(t, 10, f.Block.KineticIntake())

	assert.False(t, f.Block.ProcessAttack(f, now), "eleventh hit breaks the block")
	require.True(t, f.Block.IsBroken())

	_, ok := f.Block.PerformKineticStrike(f.X, f.Y, f, nil, f.Combo)
	assert.False(t, ok, "broken block cannot strike")

	stepFor(f.Update, 7.5)
	require.False(t, f.Block.IsBroken())
	require.False(t, f.Block.IsFatigued())
	assert.Equal(t, 10, f.Block.Count())
	assert.Equal(t, 0, f.Block.KineticIntake(), "a refilled meter holds no charge")

	_, ok = f.Block.PerformKineticStrike(f.X, f.Y, f, nil, f.Combo)
	assert.False(t, ok)

	require.True(t, f.Block.Activate())
	require.True(t, f.Block.ProcessAttack(f, 100))
	target := newDummy(0, 0, 100)
	res, ok := f.Block.PerformKineticStrike(f.X, f.Y, f, []Target{target}, f.Combo)
	require.True(t, ok)
	assert.Equal(t, 1.15, res.Effectiveness)
	assert.InDelta(t, 100-11.5, target.hp, 1e-9)
}
