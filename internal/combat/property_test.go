package combat

import (
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/require"
)

// applyBlockOp drives a block system with one pseudo-random operation and
// returns the new clock.
func applyBlockOp(b *BlockSystem, combo *ComboSystem, op uint8, now float64) float64 {
	switch op % 7 {
	case 0:
		b.Activate()
	case 1:
		b.Deactivate()
	case 2:
		b.ProcessAttack(nil, now)
	case 3:
		b.ProcessProjectileBlock(nil, now)
	case 4:
		b.Update(0.05)
		combo.Update(0.05)
		return now + 0.05
	case 5:
		b.Update(0.7)
		combo.Update(0.7)
		return now + 0.7
	case 6:
		b.PerformKineticStrike(0, 0, nil, nil, combo)
	}
	return now
}

func TestBlockInvariantsHoldForRandomSequences(t *testing.T) {
	check := func(ops []uint8, maxRaw uint8) bool {
		maxCount := int(maxRaw%20) + 1
		b := NewBlockSystem(maxCount, nil)
		combo := NewComboSystem()
		now := 0.0
		for _, op := range ops {
			now = applyBlockOp(b, combo, op, now)

			if b.Count() < 0 || b.Count() > maxCount {
				return false
			}
			if b.CountFloat() < 0 || b.CountFloat() > float64(maxCount) {
				return false
			}
			if b.IsBroken() && b.IsFatigued() {
				return false
			}
			intake := b.KineticIntake()
			if intake < 0 || intake > maxCount {
				return false
			}
			if !b.IsBroken() && !b.IsFatigued() && intake != maxCount-b.Count() {
				return false
			}
			if b.IsActive() && (b.IsBroken() || b.IsFatigued()) {
				return false
			}
		}
		return true
	}
	require.NoError(t, quick.Check(check, &quick.Config{MaxCount: 500}))
}

func TestDeactivateIdempotentForRandomStates(t *testing.T) {
	check := func(ops []uint8) bool {
		b := NewBlockSystem(10, nil)
		combo := NewComboSystem()
		now := 0.0
		for _, op := range ops {
			now = applyBlockOp(b, combo, op, now)
		}
		b.Deactivate()
		once := *b
		b.Deactivate()
		return once == *b
	}
	require.NoError(t, quick.Check(check, nil))
}

func TestComboInvariantsHoldForRandomSequences(t *testing.T) {
	rules := DefaultRules()
	archetypes := rules.Names()

	check := func(ops []uint8, pick uint8) bool {
		r := rules[archetypes[int(pick)%len(archetypes)]]
		c := NewComboSystem()
		for _, op := range ops {
			switch op % 5 {
			case 0:
				c.HandleStrike()
			case 1:
				c.HandleStrikeFor(r)
			case 2:
				c.Update(float64(op%40) / 100)
			case 3:
				c.OnExternalFinisherChain()
			case 4:
				if res, ok := c.HandleStrike(); ok && res.DamageMultiplier <= 0 {
					return false
				}
			}

			if c.StrikeCount() > c.Tier().Spec().AcceptedHits {
				return false
			}
			if c.Timer() < 0 || c.Timer() > StrikeTimerDuration {
				return false
			}
			if c.MeleeCooldown() < 0 {
				return false
			}
			m := c.DamageIntakeMultiplier()
			if m <= 0 || m > 1 {
				return false
			}
		}
		return true
	}
	require.NoError(t, quick.Check(check, &quick.Config{MaxCount: 500}))
}

func TestSkillCooldownNeverNegative(t *testing.T) {
	check := func(steps []uint8) bool {
		m := NewSkillManager(SkillTeleportStrike, SkillRangedOrb)
		for i, s := range steps {
			if i%3 == 0 && m.IsReady(SkillRangedOrb) {
				m.Trigger(SkillRangedOrb)
			}
			m.Update(float64(s) / 100)
			for _, sk := range m.Skills() {
				if sk.CooldownTimer < 0 || sk.CooldownTimer > sk.CooldownDuration {
					return false
				}
			}
		}
		return true
	}
	require.NoError(t, quick.Check(check, nil))
}
