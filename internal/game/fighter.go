package game

import (
	"field-fighter/internal/combat"
)

// Progression numbers
const (
	XPPerKill          = 50
	XPPerLevel         = 100
	FighterRadius      = 24.0
	FighterRespawnTime = 3.0 // seconds dead before respawning
)

// Fighter is a player-controlled combatant hosted by the engine.
type Fighter struct {
	*combat.Fighter

	ID    string
	Name  string
	XP    int
	Kills int
	Level int

	SpawnX, SpawnY float64
	respawnTimer   float64
	maxBlock       int
	sounds         combat.SoundPlayer
}

func newFighter(id, name string, archetype combat.Archetype, rules combat.ArchetypeRules, cfg fighterStats, sounds combat.SoundPlayer) *Fighter {
	return &Fighter{
		Fighter:  combat.NewFighter(archetype, rules, cfg.hp, cfg.melee, cfg.maxBlock, sounds),
		ID:       id,
		Name:     name,
		Level:    1,
		maxBlock: cfg.maxBlock,
		sounds:   sounds,
	}
}

// fighterStats are the balance numbers a fighter is built from
type fighterStats struct {
	hp       float64
	melee    float64
	maxBlock int
}

// awardKill credits a creature kill and recomputes the level
func (f *Fighter) awardKill() {
	f.Kills++
	f.XP += XPPerKill
	f.Level = 1 + f.XP/XPPerLevel
}

// respawn rebuilds the combat state at the spawn point, keeping progression
func (f *Fighter) respawn() {
	f.Fighter = combat.NewFighter(f.Archetype, f.Rules, f.MaxHP, f.Melee, f.maxBlock, f.sounds)
	f.X, f.Y = f.SpawnX, f.SpawnY
	f.respawnTimer = 0
}
