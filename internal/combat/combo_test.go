package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComboTwoHitFinisher(t *testing.T) {
	c := NewComboSystem()

	first, ok := c.HandleStrike()
	require.True(t, ok)
	assert.False(t, first.Finisher)
	assert.Equal(t, 1.0, first.DamageMultiplier)

	c.Update(0.1)
	second, ok := c.HandleStrike()
	require.True(t, ok)
	assert.True(t, second.Finisher)
	assert.Equal(t, 1.25, second.DamageMultiplier)
	assert.Equal(t, 250.0, second.KnockbackForce)
	assert.True(t, second.Knockback)
	assert.False(t, second.ApplyStun)
	assert.Equal(t, 1, second.SlashCount)
	assert.Equal(t, 2, second.HitCount)
	assert.True(t, c.InRestPeriod())
	assert.True(t, c.IsComboStrikeActive())
}

func TestComboFailureResets(t *testing.T) {
	c := NewComboSystem()
	c.HandleStrike()
	c.Update(0.70)

	assert.Equal(t, TierTwoHit, c.Tier())
	assert.Equal(t, 0.0, c.Timer())
	assert.Equal(t, 0, c.StrikeCount())

	res, ok := c.HandleStrike()
	require.True(t, ok)
	assert.Equal(t, TierTwoHit, res.Tier)
	assert.Equal(t, 1.0, res.DamageMultiplier)
	assert.False(t, res.Finisher)
}

func TestComboPromotesThroughTiers(t *testing.T) {
	c := NewComboSystem()
	finishTier(c)
	require.Equal(t, TierThreeHit, c.Tier())

	res, _ := c.HandleStrike()
	assert.Equal(t, 1.25, res.DamageMultiplier)
	c.Update(0.1)
	c.HandleStrike()
	c.Update(0.1)
	fin, ok := c.HandleStrike()
	require.True(t, ok)
	assert.True(t, fin.Finisher)
	assert.Equal(t, 1.75, fin.DamageMultiplier)
	assert.Equal(t, 1000.0, fin.KnockbackForce)
	assert.True(t, fin.ApplyStun)
	assert.Equal(t, 2, fin.SlashCount)
	assert.Equal(t, 3, fin.HitCount)

	c.Update(StrikeTimerDuration)
	require.Equal(t, TierFiveHit, c.Tier())

	var last StrikeResult
	for i := 0; i < 5; i++ {
		if i > 0 {
			c.Update(0.1)
		}
		last, ok = c.HandleStrike()
		require.True(t, ok)
		if i < 4 {
			assert.Equal(t, 2.0, last.DamageMultiplier)
			assert.False(t, last.Finisher)
		}
	}
	assert.True(t, last.Finisher)
	assert.Equal(t, 2.5, last.DamageMultiplier)
	assert.Equal(t, 2250.0, last.KnockbackForce)
	assert.False(t, last.ApplyStun)
	assert.Equal(t, 3, last.SlashCount)
	assert.Equal(t, 5, last.HitCount)
}

func TestComboWrapAppliesMeleeCooldown(t *testing.T) {
	c := NewComboSystem()
	finishTier(c)
	finishTier(c)
	finishTier(c)

	assert.Equal(t, TierTwoHit, c.Tier())
	assert.Equal(t, ComboWrapCooldown, c.MeleeCooldown())

	_, ok := c.HandleStrike()
	assert.False(t, ok, "strike during melee cooldown must be rejected")
	assert.Equal(t, 0, c.StrikeCount())

	c.Update(0.3)
	assert.Equal(t, 0.0, c.MeleeCooldown())
	_, ok = c.HandleStrike()
	assert.True(t, ok)
}

func TestComboLateStrikeRestarts(t *testing.T) {
	c := NewComboSystem()
	c.HandleStrike()
	c.Update(0.3) // past the 0.20s zone, window still open

	res, ok := c.HandleStrike()
	require.True(t, ok)
	assert.False(t, res.Finisher)
	assert.Equal(t, 1.0, res.DamageMultiplier)
	assert.Equal(t, 1, c.StrikeCount())
	assert.Equal(t, StrikeTimerDuration, c.Timer())
}

func TestComboExtraHitRestarts(t *testing.T) {
	c := NewComboSystem()
	c.HandleStrike()
	c.Update(0.05)
	c.HandleStrike() // finisher
	c.Update(0.05)

	res, ok := c.HandleStrike()
	require.True(t, ok)
	assert.False(t, res.Finisher)
	assert.Equal(t, TierTwoHit, res.Tier)
	assert.False(t, c.InRestPeriod())
	assert.Equal(t, 1, c.StrikeCount())
}

func TestComboExternalFinisherChain(t *testing.T) {
	c := NewComboSystem()
	finishTier(c)
	c.HandleStrike()

	c.OnExternalFinisherChain()
	assert.Equal(t, TierTwoHit, c.Tier())
	assert.Equal(t, StrikeTimerDuration, c.Timer())
	assert.Equal(t, 2, c.StrikeCount())
	assert.True(t, c.InRestPeriod())
	assert.Equal(t, 0.0, c.MeleeCooldown())

	c.Update(StrikeTimerDuration + 0.01)
	assert.Equal(t, TierThreeHit, c.Tier())
}

func TestComboDamageIntakeMultiplier(t *testing.T) {
	c := NewComboSystem()
	assert.Equal(t, 1.0, c.DamageIntakeMultiplier(), "idle")

	c.HandleStrike()
	assert.InDelta(t, 0.5, c.DamageIntakeMultiplier(), 1e-9)

	c.Update(0.05)
	c.HandleStrike()
	assert.Equal(t, 1.0, c.DamageIntakeMultiplier(), "rest period")

	c.Update(StrikeTimerDuration)
	c.HandleStrike()
	assert.InDelta(t, 0.25, c.DamageIntakeMultiplier(), 1e-9)

	c = NewComboSystem()
	finishTier(c)
	finishTier(c)
	c.HandleStrike()
	assert.InDelta(t, 0.05, c.DamageIntakeMultiplier(), 1e-9)
}

func TestComboStrikeZoneBoundaryAtTickRate(t *testing.T) {
	tests := []struct {
		name  string
		dt    float64
		steps int
	}{
		{"60 tps", 1.0 / 60, 12},
		{"20 tps", 0.05, 4},
		{"single step", 0.2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewComboSystem()
			c.HandleStrike()
			for i := 0; i < tt.steps; i++ {
				c.Update(tt.dt)
			}
			res, ok := c.HandleStrike()
			require.True(t, ok)
			assert.True(t, res.Finisher, "strike at the end of the zone counts")
			assert.Equal(t, 1.25, res.DamageMultiplier)
		})
	}
}

func TestComboStunGateDroppedWithChain(t *testing.T) {
	t.Run("failed tier", func(t *testing.T) {
		c := NewComboSystem()
		finishTier(c)
		require.Equal(t, TierThreeHit, c.Tier())
		c.HandleStrike()
		c.SuppressNextFinisherStun()

		c.Update(StrikeTimerDuration)
		assert.Equal(t, TierTwoHit, c.Tier())
		assert.False(t, c.IsFinisherStunSuppressed())
	})

	t.Run("late restart", func(t *testing.T) {
		c := NewComboSystem()
		finishTier(c)
		c.HandleStrike()
		c.SuppressNextFinisherStun()

		c.Update(0.5)
		c.HandleStrike()
		assert.False(t, c.IsFinisherStunSuppressed())
	})
}

func TestComboFinisherStunGate(t *testing.T) {
	c := NewComboSystem()
	finishTier(c)
	c.SuppressNextFinisherStun()

	c.HandleStrike()
	c.Update(0.05)
	c.HandleStrike()
	c.Update(0.05)
	fin, _ := c.HandleStrike()

	assert.True(t, fin.Finisher)
	assert.False(t, fin.ApplyStun)
	assert.False(t, c.IsFinisherStunSuppressed(), "gate is one-shot")
}

func TestComboArchetypeRules(t *testing.T) {
	rules := DefaultRules()

	t.Run("soldier cannot use the five-hit tier", func(t *testing.T) {
		c := NewComboSystem()
		finishTier(c)
		finishTier(c)
		require.Equal(t, TierFiveHit, c.Tier())

		res, ok := c.HandleStrikeFor(rules[ArchetypeSoldier])
		require.True(t, ok)
		assert.Equal(t, TierTwoHit, res.Tier)
		assert.Equal(t, 1.0, res.DamageMultiplier)
		assert.Equal(t, TierTwoHit, c.Tier())
	})

	t.Run("soldier keeps the three-hit tier", func(t *testing.T) {
		c := NewComboSystem()
		finishTier(c)

		res, ok := c.HandleStrikeFor(rules[ArchetypeSoldier])
		require.True(t, ok)
		assert.Equal(t, TierThreeHit, res.Tier)
		assert.Equal(t, 1.25, res.DamageMultiplier)
	})

	t.Run("raptor restarts above two hits", func(t *testing.T) {
		c := NewComboSystem()
		finishTier(c)

		res, ok := c.HandleStrikeFor(rules[ArchetypeRaptor])
		require.True(t, ok)
		assert.Equal(t, TierTwoHit, res.Tier)
		assert.Equal(t, 3, res.SlashCount)
	})

	t.Run("raptor reports three slashes on basic hits", func(t *testing.T) {
		c := NewComboSystem()
		res, ok := c.HandleStrikeFor(rules[ArchetypeRaptor])
		require.True(t, ok)
		assert.Equal(t, 1.0, res.DamageMultiplier)
		assert.Equal(t, 3, res.SlashCount)
	})

	t.Run("knight reaches every tier", func(t *testing.T) {
		c := NewComboSystem()
		finishTier(c)
		finishTier(c)
		res, ok := c.HandleStrikeFor(rules[ArchetypeKnight])
		require.True(t, ok)
		assert.Equal(t, TierFiveHit, res.Tier)
		assert.Equal(t, 2.0, res.DamageMultiplier)
	})

	t.Run("cooldown still rejects", func(t *testing.T) {
		c := NewComboSystem()
		finishTier(c)
		finishTier(c)
		finishTier(c)
		_, ok := c.HandleStrikeFor(rules[ArchetypeRaptor])
		assert.False(t, ok)
	})
}
