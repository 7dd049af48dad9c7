package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"field-fighter/internal/combat"
)

//go:embed archetypes.yaml
var defaultArchetypes []byte

// ArchetypeSpec is one entry of the archetype rule file.
type ArchetypeSpec struct {
	Name              string   `yaml:"name"`
	Forbidden         []string `yaml:"forbidden"`
	AlwaysTripleSlash bool     `yaml:"always_triple_slash"`
}

// ArchetypeFile is the archetype rule file layout.
type ArchetypeFile struct {
	Archetypes []ArchetypeSpec `yaml:"archetypes"`
}

// DefaultArchetypeRules parses the embedded rule file.
func DefaultArchetypeRules() (combat.RuleTable, error) {
	return ParseArchetypes(defaultArchetypes)
}

// LoadArchetypes reads a rule file from disk. An empty path returns the
// embedded defaults.
func LoadArchetypes(path string) (combat.RuleTable, error) {
	if path == "" {
		return DefaultArchetypeRules()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	rules, err := ParseArchetypes(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return rules, nil
}

// ParseArchetypes decodes a YAML rule file into a rule table.
func ParseArchetypes(data []byte) (combat.RuleTable, error) {
	var file ArchetypeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("config: unmarshal archetypes: %w", err)
	}
	if len(file.Archetypes) == 0 {
		return nil, fmt.Errorf("config: archetype file defines no archetypes")
	}

	rules := make(combat.RuleTable, len(file.Archetypes))
	for _, spec := range file.Archetypes {
		name := combat.Archetype(strings.ToLower(strings.TrimSpace(spec.Name)))
		if name == "" {
			return nil, fmt.Errorf("config: archetype with empty name")
		}
		if _, dup := rules[name]; dup {
			return nil, fmt.Errorf("config: duplicate archetype %q", name)
		}

		tiers := make([]combat.ComboTier, 0, len(spec.Forbidden))
		for _, t := range spec.Forbidden {
			tier, err := combat.ParseTier(t)
			if err != nil {
				return nil, fmt.Errorf("config: archetype %q: %w", name, err)
			}
			tiers = append(tiers, tier)
		}
		rules[name] = combat.ArchetypeRules{
			Forbidden:         combat.NewTierSet(tiers...),
			AlwaysTripleSlash: spec.AlwaysTripleSlash,
		}
	}
	return rules, nil
}
