package game

import (
	"math"

	"field-fighter/internal/combat"
)

// Creature tuning
const (
	CreatureRadius           = 20.0
	KnockbackDrag            = 8.0   // exponential decay rate of knockback velocity, 1/s
	TeleportMinRange         = 220.0 // creatures blink only to fighters farther than this
	TeleportDamageMultiplier = 1.5
	OrbMinRange              = 140.0
	OrbMaxRange              = 600.0
	CreatureRespawnTime      = 3.0
)

// Creature is a CPU-controlled combat target.
type Creature struct {
	ID     string
	X, Y   float64
	VX, VY float64 // knockback velocity

	hp, MaxHP      float64
	Damage         float64
	Reach          float64
	Speed          float64
	AttackCooldown float64
	attackTimer    float64

	stun   float64
	bleed  *combat.BleedEffect
	Skills *combat.SkillManager

	lastHitBy string // fighter credited for bleed kills
}

// creatureStats are the balance numbers a creature is built from
type creatureStats struct {
	hp, damage, reach, speed, cooldown float64
}

func newCreature(id string, x, y float64, st creatureStats) *Creature {
	return &Creature{
		ID:             id,
		X:              x,
		Y:              y,
		hp:             st.hp,
		MaxHP:          st.hp,
		Damage:         st.damage,
		Reach:          st.reach,
		Speed:          st.speed,
		AttackCooldown: st.cooldown,
		Skills:         combat.NewSkillManager(combat.SkillTeleportStrike, combat.SkillRangedOrb),
	}
}

func (c *Creature) Position() (float64, float64) { return c.X, c.Y }
func (c *Creature) HP() float64                  { return c.hp }
func (c *Creature) SetHP(hp float64)             { c.hp = math.Max(0, hp) }
func (c *Creature) IsDead() bool                 { return c.hp <= 0 }
func (c *Creature) StunTimer() float64           { return c.stun }
func (c *Creature) SetStunTimer(t float64)       { c.stun = t }
func (c *Creature) Bleed() *combat.BleedEffect   { return c.bleed }
func (c *Creature) SetBleed(b *combat.BleedEffect) {
	c.bleed = b
}

// ApplyKnockback pushes the creature away from the source point.
func (c *Creature) ApplyKnockback(sourceX, sourceY, force float64) {
	dx, dy := c.X-sourceX, c.Y-sourceY
	dist := math.Hypot(dx, dy)
	if dist < 1e-6 {
		dx, dy, dist = 1, 0, 1
	}
	c.VX += dx / dist * force
	c.VY += dy / dist * force
}

// IsStunned reports whether the creature's AI is suspended.
func (c *Creature) IsStunned() bool { return c.stun > 0 }

// CanAttack reports whether the melee cooldown has elapsed.
func (c *Creature) CanAttack() bool { return c.attackTimer <= 0 }

// Update advances timers and knockback motion, clamped to the arena.
func (c *Creature) Update(dt, width, height float64) {
	c.Skills.Update(dt)
	c.attackTimer = math.Max(0, c.attackTimer-dt)
	c.stun = math.Max(0, c.stun-dt)

	if c.VX != 0 || c.VY != 0 {
		c.X += c.VX * dt
		c.Y += c.VY * dt
		damp := math.Exp(-KnockbackDrag * dt)
		c.VX *= damp
		c.VY *= damp
		if math.Hypot(c.VX, c.VY) < 1 {
			c.VX, c.VY = 0, 0
		}
	}
	c.X = clamp(c.X, CreatureRadius, width-CreatureRadius)
	c.Y = clamp(c.Y, CreatureRadius, height-CreatureRadius)
}

// moveToward walks toward (x, y) at the creature's speed, stopping short by stop.
func (c *Creature) moveToward(x, y, stop, dt float64) {
	dx, dy := x-c.X, y-c.Y
	dist := math.Hypot(dx, dy)
	if dist <= stop || dist < 1e-6 {
		return
	}
	step := math.Min(c.Speed*dt, dist-stop)
	c.X += dx / dist * step
	c.Y += dy / dist * step
}

// blinkTo places the creature next to (x, y) on the side it came from.
func (c *Creature) blinkTo(x, y float64) {
	dx, dy := c.X-x, c.Y-y
	dist := math.Hypot(dx, dy)
	if dist < 1e-6 {
		dx, dy, dist = 1, 0, 1
	}
	gap := c.Reach * 0.8
	c.X = x + dx/dist*gap
	c.Y = y + dy/dist*gap
}

func (c *Creature) startAttackCooldown() {
	c.attackTimer = c.AttackCooldown
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
