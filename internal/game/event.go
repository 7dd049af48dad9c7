package game

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeTick              // Tick boundary with RNG seed
	EventTypeFighterJoin
	EventTypeFighterLeave
	EventTypeStrike
	EventTypeHit
	EventTypeBlockBreak
	EventTypeKineticStrike
	EventTypeCreatureSpawn
	EventTypeCreatureKill
	EventTypeSkill
	EventTypeFighterDeath
	EventTypeDismount
	EventTypePause
	EventTypeRulesReload
	eventTypeCount
)

// EventVersion for backwards compatibility in replay
const EventVersion uint8 = 2

var eventTypeNames = [eventTypeCount]string{
	EventTypeUnknown:       "unknown",
	EventTypeTick:          "tick",
	EventTypeFighterJoin:   "fighter_join",
	EventTypeFighterLeave:  "fighter_leave",
	EventTypeStrike:        "strike",
	EventTypeHit:           "hit",
	EventTypeBlockBreak:    "block_break",
	EventTypeKineticStrike: "kinetic_strike",
	EventTypeCreatureSpawn: "creature_spawn",
	EventTypeCreatureKill:  "creature_kill",
	EventTypeSkill:         "skill",
	EventTypeFighterDeath:  "fighter_death",
	EventTypeDismount:      "dismount",
	EventTypePause:         "pause",
	EventTypeRulesReload:   "rules_reload",
}

// Event is the core event structure for the event log
type Event struct {
	Version   uint8           `json:"version"`           // Schema version
	Type      EventType       `json:"type"`              // Event type
	Timestamp int64           `json:"timestamp"`         // Unix nano
	Sequence  uint64          `json:"sequence"`          // Monotonic sequence
	TickNum   uint64          `json:"tickNum"`           // Simulation tick this occurred in
	ActorID   string          `json:"actorId,omitempty"` // Source fighter or creature (for rate limiting)
	Payload   json.RawMessage `json:"payload,omitempty"` // JSON-encoded payload
}

// String returns human-readable event type
func (t EventType) String() string {
	if t < eventTypeCount {
		return eventTypeNames[t]
	}
	return "unknown"
}

// MarshalText writes the event type by name so JSONL logs stay readable.
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses an event type name.
func (t *EventType) UnmarshalText(text []byte) error {
	for i, name := range eventTypeNames {
		if name == string(text) {
			*t = EventType(i)
			return nil
		}
	}
	return fmt.Errorf("game: unknown event type %q", text)
}

// Typed payloads for different event types

// TickPayload contains tick boundary information for replay
type TickPayload struct {
	RNGSeed       int64 `json:"rngSeed"`
	FighterCount  int   `json:"fighterCount"`
	CreatureCount int   `json:"creatureCount"`
	DeltaTimeNs   int64 `json:"deltaTimeNs"`
	Paused        bool  `json:"paused,omitempty"`
}

// FighterJoinPayload contains fighter join details
type FighterJoinPayload struct {
	FighterID string  `json:"fighterId"`
	Name      string  `json:"name"`
	Archetype string  `json:"archetype"`
	SpawnX    float64 `json:"spawnX"`
	SpawnY    float64 `json:"spawnY"`
}

// StrikePayload is a landed melee strike
type StrikePayload struct {
	FighterID  string  `json:"fighterId"`
	CreatureID string  `json:"creatureId"`
	Tier       string  `json:"tier"`
	HitCount   int     `json:"hitCount"`
	Multiplier float64 `json:"multiplier"`
	Damage     float64 `json:"damage"`
	Finisher   bool    `json:"finisher,omitempty"`
	Stun       bool    `json:"stun,omitempty"`
	Bleed      bool    `json:"bleed,omitempty"`
	Killed     bool    `json:"killed,omitempty"`
}

// HitPayload is an attack landing on a fighter
type HitPayload struct {
	FighterID  string  `json:"fighterId"`
	SourceID   string  `json:"sourceId"`
	Projectile bool    `json:"projectile,omitempty"`
	Ignored    bool    `json:"ignored,omitempty"`
	Absorbed   bool    `json:"absorbed,omitempty"`
	Broke      bool    `json:"broke,omitempty"`
	Damage     float64 `json:"damage"`
	FighterHP  float64 `json:"fighterHp"`
	BlockCount int     `json:"blockCount"`
}

// KineticStrikePayload is a spent kinetic charge
type KineticStrikePayload struct {
	FighterID     string  `json:"fighterId"`
	Charge        int     `json:"charge"`
	Effectiveness float64 `json:"effectiveness"`
	Radius        float64 `json:"radius"`
	Damage        float64 `json:"damage"`
	Hits          int     `json:"hits"`
	Kills         int     `json:"kills"`
}

// CreaturePayload contains creature spawn or kill details
type CreaturePayload struct {
	CreatureID string  `json:"creatureId"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	KillerID   string  `json:"killerId,omitempty"`
	Cause      string  `json:"cause,omitempty"`
}

// SkillPayload is a creature skill activation
type SkillPayload struct {
	CreatureID string `json:"creatureId"`
	Skill      string `json:"skill"`
	TargetID   string `json:"targetId"`
}

// FighterPayload identifies a fighter for state-change events
type FighterPayload struct {
	FighterID string `json:"fighterId"`
}

// PausePayload records a pause toggle
type PausePayload struct {
	Paused bool `json:"paused"`
}

// RulesReloadPayload lists the archetypes in a reloaded rule table
type RulesReloadPayload struct {
	Archetypes []string `json:"archetypes"`
}

// EncodePayload marshals a payload to JSON bytes
func EncodePayload(payload interface{}) json.RawMessage {
	if payload == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, tickNum uint64, actorID string, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		TickNum:   tickNum,
		ActorID:   actorID,
		Payload:   EncodePayload(payload),
	}
}
