package game

import (
	"math"
)

// Orb system constants
const (
	OrbLifetime = 3.0 // seconds
	OrbRadius   = 8.0 // collision radius
	orbMargin   = 50.0
)

// Orb is a ranged creature attack travelling toward a fighter.
// Orbs move every tick and test collision against fighters.
type Orb struct {
	ID      string
	OwnerID string // Creature that fired this orb

	X, Y   float64
	VX, VY float64 // units per second

	Damage   float64
	Rotation float64 // Angle of travel (radians)
	Timer    float64 // Remaining lifetime in seconds
}

// NewOrb creates an orb fired from (x, y) toward (targetX, targetY)
func NewOrb(id, ownerID string, x, y, targetX, targetY, speed, damage float64) *Orb {
	dx := targetX - x
	dy := targetY - y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		dist = 1
	}
	dirX, dirY := dx/dist, dy/dist

	// Start at the owner's edge in the direction of fire
	return &Orb{
		ID:       id,
		OwnerID:  ownerID,
		X:        x + dirX*CreatureRadius,
		Y:        y + dirY*CreatureRadius,
		VX:       dirX * speed,
		VY:       dirY * speed,
		Damage:   damage,
		Rotation: math.Atan2(dy, dx),
		Timer:    OrbLifetime,
	}
}

// Update moves the orb and ages it.
// Returns false once it expires or leaves the arena.
func (o *Orb) Update(dt, width, height float64) bool {
	o.X += o.VX * dt
	o.Y += o.VY * dt
	o.Timer -= dt

	if o.X < -orbMargin || o.X > width+orbMargin || o.Y < -orbMargin || o.Y > height+orbMargin {
		return false
	}
	return o.Timer > 0
}

// CheckHit tests the orb against a fighter
func (o *Orb) CheckHit(f *Fighter) bool {
	if f.IsDead() {
		return false
	}
	return math.Hypot(f.X-o.X, f.Y-o.Y) <= OrbRadius+FighterRadius
}
