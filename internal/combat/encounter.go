package combat

import (
	"fmt"
	"math"
)

// HitOutcome describes how an incoming attack was resolved.
type HitOutcome struct {
	Ignored  bool    // defender immune, nothing happened
	Absorbed bool    // block took the hit
	Broke    bool    // block broke on this hit
	Damage   float64 // HP lost by the defender
}

// StrikeOutcome describes a landed outgoing strike.
type StrikeOutcome struct {
	StrikeResult
	Damage float64
	Killed bool
	Bleed  bool
}

// Encounter resolves hits between fighters and CPU targets. Texts and Visual
// are optional outputs.
type Encounter struct {
	Texts  TextSink
	Visual StrikeVisual
}

// ReceiveHit resolves an attack of baseDamage landing on a fighter at time now.
// Projectile hits are routed through ProcessProjectileBlock.
func (e *Encounter) ReceiveHit(defender *Fighter, baseDamage, now float64, projectile bool) HitOutcome {
	if defender.IsImmune() {
		return HitOutcome{Ignored: true}
	}

	var out HitOutcome
	if defender.Block.IsActive() {
		var absorbed bool
		if projectile {
			absorbed = defender.Block.ProcessProjectileBlock(defender, now)
		} else {
			absorbed = defender.Block.ProcessAttack(defender, now)
		}
		if absorbed {
			e.text(DamageText{Text: "BLOCK", X: defender.X, Y: defender.Y, Color: ColorBlock, Lifetime: DamageTextLifetime})
			return HitOutcome{Absorbed: true}
		}
		out.Broke = defender.Block.IsBroken()
		if out.Broke {
			e.text(DamageText{Text: "BROKEN", X: defender.X, Y: defender.Y, Color: ColorBlockBroken, Lifetime: FinisherTextLifetime})
		}
	}

	dmg := baseDamage * defender.Combo.DamageIntakeMultiplier() * defender.Block.DamageMultiplier()
	defender.HP = math.Max(0, defender.HP-dmg)
	out.Damage = dmg
	e.text(DamageText{Text: formatDamage(dmg), X: defender.X, Y: defender.Y, Color: ColorDamageTaken, Lifetime: DamageTextLifetime})
	return out
}

// DeliverStrike lands a melee strike from attacker on target. It returns false
// when the strike is rejected (melee cooldown, dead target) and nothing changed.
func (e *Encounter) DeliverStrike(attacker *Fighter, target Target) (StrikeOutcome, bool) {
	if target == nil || target.IsDead() {
		return StrikeOutcome{}, false
	}
	// no chained stuns: the gate follows the target of the current swing
	if attacker.Combo.Tier() == TierThreeHit {
		attacker.Combo.combo3StunDisable = target.StunTimer() > 0
	}

	res, ok := attacker.Combo.HandleStrikeFor(attacker.Rules)
	if !ok {
		return StrikeOutcome{}, false
	}

	out := StrikeOutcome{StrikeResult: res, Damage: attacker.Melee * res.DamageMultiplier}
	hp := target.HP() - out.Damage
	tx, ty := target.Position()
	if hp <= 0 {
		target.SetHP(0)
		out.Killed = true
	} else {
		target.SetHP(hp)
	}

	color, lifetime := ColorDamageDealt, DamageTextLifetime
	if res.Finisher {
		color, lifetime = ColorFinisher, FinisherTextLifetime
		if e.Visual != nil {
			e.Visual.Trigger(tx, ty)
		}
		if !out.Killed {
			e.applyFinisher(attacker, target, &out)
		}
	}
	e.text(DamageText{Text: formatDamage(out.Damage), X: tx, Y: ty, Color: color, Lifetime: lifetime})
	return out, true
}

func (e *Encounter) applyFinisher(attacker *Fighter, target Target, out *StrikeOutcome) {
	if out.Knockback {
		target.ApplyKnockback(attacker.X, attacker.Y, out.KnockbackForce)
	}
	if out.ApplyStun && target.StunTimer() < FinisherStunDuration {
		target.SetStunTimer(FinisherStunDuration)
	}
	if out.Tier == TierFiveHit {
		target.SetBleed(NewBleedEffect(out.Damage*BleedShare, BleedDuration, BleedTickRate))
		out.Bleed = true
	}
}

// KineticStrike performs the fighter's kinetic strike against targets.
func (e *Encounter) KineticStrike(f *Fighter, targets []Target) (KineticStrikeResult, bool) {
	res, ok := f.Block.PerformKineticStrike(f.X, f.Y, f, targets, f.Combo)
	if !ok {
		return res, false
	}
	for _, h := range res.Hits {
		x, y := h.Target.Position()
		e.text(DamageText{Text: formatDamage(h.Damage), X: x, Y: y, Color: ColorKineticStrike, Lifetime: FinisherTextLifetime})
	}
	return res, true
}

// TickBleed advances a target's bleed and applies the damage due. The effect
// is cleared once spent. Returns the damage dealt.
func (e *Encounter) TickBleed(t Target, dt float64) float64 {
	b := t.Bleed()
	if b == nil {
		return 0
	}
	if t.IsDead() {
		t.SetBleed(nil)
		return 0
	}
	dmg := b.Tick(dt)
	if dmg > 0 {
		t.SetHP(math.Max(0, t.HP()-dmg))
		x, y := t.Position()
		e.text(DamageText{Text: formatDamage(dmg), X: x, Y: y, Color: ColorFinisher, Lifetime: DamageTextLifetime})
	}
	if b.Done() {
		t.SetBleed(nil)
	}
	return dmg
}

func (e *Encounter) text(t DamageText) {
	if e.Texts != nil {
		e.Texts.AddDamageText(t)
	}
}

func formatDamage(d float64) string {
	return fmt.Sprintf("%.0f", d)
}
