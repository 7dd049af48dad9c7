package combat

// SkillKind identifies a CPU special attack.
type SkillKind int

const (
	// SkillTeleportStrike blinks next to the target and strikes
	SkillTeleportStrike SkillKind = iota
	// SkillRangedOrb fires a slow orb projectile
	SkillRangedOrb
)

// String returns a human-readable skill name.
func (k SkillKind) String() string {
	switch k {
	case SkillTeleportStrike:
		return "teleport_strike"
	case SkillRangedOrb:
		return "ranged_orb"
	default:
		return "unknown"
	}
}

// CooldownDuration returns the fixed cooldown of a skill kind in seconds.
func (k SkillKind) CooldownDuration() float64 {
	switch k {
	case SkillTeleportStrike:
		return 3.25
	case SkillRangedOrb:
		return 2.0
	default:
		return 0
	}
}

// SkillCooldown is a single ability with a cooldown timer.
// Trigger does not guard against triggering while not ready; callers check
// IsReady first.
type SkillCooldown struct {
	Kind             SkillKind
	CooldownDuration float64
	CooldownTimer    float64
}

// NewSkillCooldown creates a ready skill of the given kind.
func NewSkillCooldown(kind SkillKind) *SkillCooldown {
	return &SkillCooldown{
		Kind:             kind,
		CooldownDuration: kind.CooldownDuration(),
	}
}

// IsReady reports whether the cooldown has elapsed.
func (s *SkillCooldown) IsReady() bool {
	return s.CooldownTimer <= 0
}

// Trigger restarts the cooldown.
func (s *SkillCooldown) Trigger() {
	s.CooldownTimer = s.CooldownDuration
}

// Update decrements the cooldown, floored at zero.
func (s *SkillCooldown) Update(dt float64) {
	if s.CooldownTimer <= 0 {
		return
	}
	s.CooldownTimer -= dt
	if s.CooldownTimer < 0 {
		s.CooldownTimer = 0
	}
}

// SkillManager tracks the cooldowns of every skill a CPU entity owns.
type SkillManager struct {
	skills []*SkillCooldown
}

// NewSkillManager creates a manager owning one cooldown per kind.
func NewSkillManager(kinds ...SkillKind) *SkillManager {
	m := &SkillManager{skills: make([]*SkillCooldown, 0, len(kinds))}
	for _, k := range kinds {
		if m.Get(k) != nil {
			continue
		}
		m.skills = append(m.skills, NewSkillCooldown(k))
	}
	return m
}

// Get returns the cooldown for a kind, or nil if the entity lacks the skill.
func (m *SkillManager) Get(kind SkillKind) *SkillCooldown {
	for _, s := range m.skills {
		if s.Kind == kind {
			return s
		}
	}
	return nil
}

// Has reports whether the manager owns the skill.
func (m *SkillManager) Has(kind SkillKind) bool {
	return m.Get(kind) != nil
}

// IsReady reports whether an owned skill is off cooldown.
// Unowned skills are never ready.
func (m *SkillManager) IsReady(kind SkillKind) bool {
	s := m.Get(kind)
	return s != nil && s.IsReady()
}

// Trigger starts the cooldown of an owned skill. Unowned skills are ignored.
func (m *SkillManager) Trigger(kind SkillKind) {
	if s := m.Get(kind); s != nil {
		s.Trigger()
	}
}

// Update advances every tracked cooldown.
func (m *SkillManager) Update(dt float64) {
	for _, s := range m.skills {
		s.Update(dt)
	}
}

// Skills returns the tracked cooldowns in insertion order.
func (m *SkillManager) Skills() []*SkillCooldown {
	return m.skills
}
