package game

import (
	"field-fighter/internal/combat"
)

// FloatingText is a damage number rising above a hit.
type FloatingText struct {
	combat.DamageText
	Age float64
}

// Alpha fades the text over its lifetime
func (t *FloatingText) Alpha() float64 {
	if t.Lifetime <= 0 {
		return 0
	}
	return clamp(1-t.Age/t.Lifetime, 0, 1)
}

// Update ages the text. Returns false once expired.
func (t *FloatingText) Update(dt float64) bool {
	t.Age += dt
	t.Y -= 30 * dt
	return t.Age < t.Lifetime
}

// ImpactFlash creates a burst effect on a finisher.
type ImpactFlash struct {
	X, Y      float64
	Radius    float64
	MaxRadius float64
	Color     string
	Timer     float64 // remaining seconds
	Duration  float64
}

// NewImpactFlash creates a new impact flash effect.
func NewImpactFlash(x, y float64, color string, intensity float64) *ImpactFlash {
	return &ImpactFlash{
		X:         x,
		Y:         y,
		Radius:    3.0,
		MaxRadius: 10.0 + intensity*5.0,
		Color:     color,
		Timer:     combat.ComboStrikeVisualDuration,
		Duration:  combat.ComboStrikeVisualDuration,
	}
}

// Update expands and fades the flash. Returns false once expired.
func (f *ImpactFlash) Update(dt float64) bool {
	f.Timer -= dt
	if f.Timer <= 0 {
		return false
	}
	// Expand rapidly then slow down
	progress := 1.0 - f.Timer/f.Duration
	f.Radius = f.MaxRadius * (1.0 - (1.0-progress)*(1.0-progress))
	return true
}

// Intensity returns the current opacity.
func (f *ImpactFlash) Intensity() float64 {
	if f.Duration <= 0 {
		return 0
	}
	return clamp(f.Timer/f.Duration, 0, 1)
}

// textFeed routes combat damage texts into the engine. The engine lock is held
// by the caller.
type textFeed struct{ e *Engine }

func (t textFeed) AddDamageText(d combat.DamageText) {
	t.e.addText(d)
}

// slashFeed spawns a finisher flash in the engine.
type slashFeed struct{ e *Engine }

func (s slashFeed) Trigger(x, y float64) {
	s.e.addFlash(NewImpactFlash(x, y, combat.ColorFinisher, 1.0))
}
