package combat

import "errors"

type dummyTarget struct {
	x, y       float64
	hp         float64
	stun       float64
	bleed      *BleedEffect
	knockbacks []float64
}

func newDummy(x, y, hp float64) *dummyTarget {
	return &dummyTarget{x: x, y: y, hp: hp}
}

func (d *dummyTarget) Position() (float64, float64) { return d.x, d.y }
func (d *dummyTarget) HP() float64                  { return d.hp }
func (d *dummyTarget) SetHP(hp float64)             { d.hp = hp }
func (d *dummyTarget) IsDead() bool                 { return d.hp <= 0 }
func (d *dummyTarget) StunTimer() float64           { return d.stun }
func (d *dummyTarget) SetStunTimer(t float64)       { d.stun = t }
func (d *dummyTarget) Bleed() *BleedEffect          { return d.bleed }
func (d *dummyTarget) SetBleed(b *BleedEffect)      { d.bleed = b }

func (d *dummyTarget) ApplyKnockback(_, _, force float64) {
	d.knockbacks = append(d.knockbacks, force)
}

type soundRecorder struct {
	played []string
	err    error
}

func (s *soundRecorder) PlaySoundEffect(name string) error {
	s.played = append(s.played, name)
	return s.err
}

func (s *soundRecorder) count(name string) int {
	n := 0
	for _, p := range s.played {
		if p == name {
			n++
		}
	}
	return n
}

var errNoDevice = errors.New("no audio device")

type textRecorder struct {
	texts []DamageText
}

func (r *textRecorder) AddDamageText(t DamageText) { r.texts = append(r.texts, t) }

func (r *textRecorder) last() DamageText {
	if len(r.texts) == 0 {
		return DamageText{}
	}
	return r.texts[len(r.texts)-1]
}

type visualRecorder struct {
	triggers int
}

func (v *visualRecorder) Trigger(_, _ float64) { v.triggers++ }

// stepFor advances the system in 1/60s steps for roughly d seconds.
func stepFor(update func(dt float64), d float64) {
	const dt = 1.0 / 60.0
	for n := int(d / dt); n > 0; n-- {
		update(dt)
	}
}

// finishTier lands exactly the accepted hits of the current tier and lets the
// timer expire, promoting the combo.
func finishTier(c *ComboSystem) {
	hits := c.Tier().Spec().AcceptedHits
	for i := 0; i < hits; i++ {
		if i > 0 {
			c.Update(0.05)
		}
		c.HandleStrike()
	}
	c.Update(StrikeTimerDuration)
}

// drain consumes n block points with distinct attacks starting at start.
func drain(b *BlockSystem, holder Actor, start float64, n int) float64 {
	now := start
	for i := 0; i < n; i++ {
		b.ProcessAttack(holder, now)
		now += MinTimeBetweenBlocks
	}
	return now
}
