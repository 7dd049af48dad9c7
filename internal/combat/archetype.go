package combat

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownArchetype is returned when a rule table has no entry for a fighter type.
var ErrUnknownArchetype = errors.New("combat: unknown archetype")

// ErrUnknownTier is returned when a tier name cannot be parsed.
var ErrUnknownTier = errors.New("combat: unknown combo tier")

// Archetype names a fighter type.
type Archetype string

const (
	ArchetypeKnight  Archetype = "knight"
	ArchetypeSoldier Archetype = "soldier"
	ArchetypeRaptor  Archetype = "raptor"
)

// TierSet is a bit set of combo tiers.
type TierSet uint8

// NewTierSet builds a set from the given tiers.
func NewTierSet(tiers ...ComboTier) TierSet {
	var s TierSet
	for _, t := range tiers {
		s |= 1 << uint(t)
	}
	return s
}

// Has reports whether the set contains the tier.
func (s TierSet) Has(t ComboTier) bool {
	return s&(1<<uint(t)) != 0
}

// Tiers lists the members in ascending order.
func (s TierSet) Tiers() []ComboTier {
	out := make([]ComboTier, 0, comboTierCount)
	for t := TierTwoHit; t < comboTierCount; t++ {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

// ArchetypeRules holds the combo restrictions of one fighter type.
// The combo state machine only sees these rules, never the archetype itself.
type ArchetypeRules struct {
	// Forbidden tiers: any strike made while the combo sits in one of these
	// tiers restarts the two-hit tier instead.
	Forbidden TierSet
	// AlwaysTripleSlash reports three slash visuals on every hit. Cosmetic only.
	AlwaysTripleSlash bool
}

// RuleTable maps archetypes to their rules.
type RuleTable map[Archetype]ArchetypeRules

// DefaultRules returns the built-in archetype table.
func DefaultRules() RuleTable {
	return RuleTable{
		ArchetypeKnight:  {},
		ArchetypeSoldier: {Forbidden: NewTierSet(TierFiveHit)},
		ArchetypeRaptor: {
			Forbidden:         NewTierSet(TierThreeHit, TierFiveHit),
			AlwaysTripleSlash: true,
		},
	}
}

// Lookup returns the rules of an archetype.
func (rt RuleTable) Lookup(a Archetype) (ArchetypeRules, error) {
	r, ok := rt[a]
	if !ok {
		return ArchetypeRules{}, fmt.Errorf("%w: %q", ErrUnknownArchetype, a)
	}
	return r, nil
}

// Names returns the archetypes in the table, sorted.
func (rt RuleTable) Names() []Archetype {
	names := make([]Archetype, 0, len(rt))
	for a := range rt {
		names = append(names, a)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// ParseTier parses a tier name ("two_hit", "three_hit", "five_hit").
func ParseTier(name string) (ComboTier, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "two_hit", "timer1":
		return TierTwoHit, nil
	case "three_hit", "timer2":
		return TierThreeHit, nil
	case "five_hit", "timer3":
		return TierFiveHit, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownTier, name)
	}
}
