package combat

import (
	"errors"
	"testing"
)

func TestSkillCooldownDurations(t *testing.T) {
	tests := []struct {
		kind SkillKind
		want float64
	}{
		{SkillTeleportStrike, 3.25},
		{SkillRangedOrb, 2.0},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			s := NewSkillCooldown(tt.kind)
			if s.CooldownDuration != tt.want {
				t.Errorf("Expected cooldown %.2f, got %.2f", tt.want, s.CooldownDuration)
			}
			if !s.IsReady() {
				t.Error("New skill should be ready")
			}
		})
	}
}

func TestSkillCooldownTriggerAndUpdate(t *testing.T) {
	s := NewSkillCooldown(SkillRangedOrb)
	s.Trigger()
	if s.IsReady() {
		t.Fatal("Skill should not be ready right after trigger")
	}

	s.Update(1.5)
	if s.IsReady() {
		t.Error("Skill should still be cooling down")
	}

	s.Update(1.0)
	if !s.IsReady() {
		t.Error("Skill should be ready after cooldown")
	}
	if s.CooldownTimer != 0 {
		t.Errorf("Expected timer floored at 0, got %f", s.CooldownTimer)
	}
}

func TestSkillTriggerDoesNotSelfGuard(t *testing.T) {
	s := NewSkillCooldown(SkillTeleportStrike)
	s.Trigger()
	s.Update(3.0)
	s.Trigger()
	if s.CooldownTimer != s.CooldownDuration {
		t.Errorf("Expected re-trigger to restart the cooldown, got %f", s.CooldownTimer)
	}
}

func TestSkillManager(t *testing.T) {
	m := NewSkillManager(SkillTeleportStrike, SkillRangedOrb, SkillRangedOrb)
	if len(m.Skills()) != 2 {
		t.Fatalf("Expected duplicate kinds to collapse, got %d skills", len(m.Skills()))
	}

	m.Trigger(SkillTeleportStrike)
	if m.IsReady(SkillTeleportStrike) {
		t.Error("Teleport strike should be cooling down")
	}
	if !m.IsReady(SkillRangedOrb) {
		t.Error("Ranged orb should be unaffected")
	}

	m.Update(3.25)
	if !m.IsReady(SkillTeleportStrike) {
		t.Error("Teleport strike should be ready after 3.25s")
	}

	only := NewSkillManager(SkillRangedOrb)
	if only.Has(SkillTeleportStrike) || only.IsReady(SkillTeleportStrike) {
		t.Error("Unowned skill must never be ready")
	}
	only.Trigger(SkillTeleportStrike)
	if only.Get(SkillTeleportStrike) != nil {
		t.Error("Triggering an unowned skill must not add it")
	}
}

func TestParseTier(t *testing.T) {
	tests := []struct {
		in      string
		want    ComboTier
		wantErr bool
	}{
		{"two_hit", TierTwoHit, false},
		{" THREE_HIT ", TierThreeHit, false},
		{"timer3", TierFiveHit, false},
		{"four_hit", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseTier(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownTier) {
				t.Errorf("ParseTier(%q): expected ErrUnknownTier, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseTier(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestRuleTable(t *testing.T) {
	rules := DefaultRules()

	if _, err := rules.Lookup("wizard"); !errors.Is(err, ErrUnknownArchetype) {
		t.Errorf("Expected ErrUnknownArchetype, got %v", err)
	}

	raptor, err := rules.Lookup(ArchetypeRaptor)
	if err != nil {
		t.Fatalf("Lookup raptor: %v", err)
	}
	got := raptor.Forbidden.Tiers()
	if len(got) != 2 || got[0] != TierThreeHit || got[1] != TierFiveHit {
		t.Errorf("Expected raptor to forbid three_hit and five_hit, got %v", got)
	}

	names := rules.Names()
	if len(names) != 3 || names[0] != ArchetypeKnight {
		t.Errorf("Expected sorted names starting with knight, got %v", names)
	}
}
