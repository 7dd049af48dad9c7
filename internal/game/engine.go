package game

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"field-fighter/internal/audio"
	"field-fighter/internal/combat"
	"field-fighter/internal/config"
	"field-fighter/internal/game/spatial"
	"field-fighter/internal/telemetry"
)

// Hooks receive combat notifications from the tick goroutine. They run with
// the engine lock held and must not call back into the engine. Nil fields
// are skipped.
type Hooks struct {
	OnTick          func(d time.Duration)
	OnStrike        func(f *Fighter, out combat.StrikeOutcome)
	OnHit           func(f *Fighter, out combat.HitOutcome)
	OnBlockBreak    func(f *Fighter)
	OnKineticStrike func(f *Fighter, res combat.KineticStrikeResult)
	OnKill          func(f *Fighter, c *Creature) // f is nil for uncredited kills
	OnDeath         func(f *Fighter)
}

// Option configures an Engine
type Option func(*Engine)

// WithSeed makes spawn positions and IDs reproducible.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.rngSeed = seed }
}

// WithEventLog replaces the default rate-limited event log.
func WithEventLog(el *EventLog) Option {
	return func(e *Engine) { e.eventLog = el }
}

// Engine is the frame-stepped simulation hosting fighters, creatures and orbs
type Engine struct {
	mu           sync.RWMutex
	fighters     map[string]*Fighter
	fighterOrder []*Fighter // join order, iterated every tick
	creatures    []*Creature
	orbs         []*Orb
	texts        []*FloatingText
	flashes      []*ImpactFlash
	inputs       []Input

	encounter combat.Encounter
	rules     combat.RuleTable
	sounds    combat.SoundPlayer

	// Creatures indexed for melee and kinetic radius queries
	grid          *spatial.Grid
	gridCreatures []*Creature

	sim       config.SimConfig
	combatCfg config.CombatConfig
	limits    config.ResourceLimits

	paused   bool
	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}

	dt               float64
	tickCount        uint64
	totalKills       int
	creatureRespawns []float64

	hooks        []Hooks
	snapshotPool *SnapshotPool
	eventLog     *EventLog

	// Deterministic RNG for replay consistency
	rng     *rand.Rand
	rngSeed int64

	ctx context.Context
}

// NewEngine creates an engine and spawns the configured creature population.
func NewEngine(cfg config.AppConfig, rules combat.RuleTable, sounds combat.SoundPlayer, opts ...Option) *Engine {
	if rules == nil {
		rules = combat.DefaultRules()
	}
	tickRate := cfg.Sim.TickRate
	if tickRate <= 0 {
		tickRate = config.DefaultSim().TickRate
	}
	cellSize := float64(cfg.Spatial.GridCellSize)
	if cellSize <= 0 {
		cellSize = float64(config.DefaultSpatial().GridCellSize)
	}
	limits := cfg.Limits

	e := &Engine{
		fighters:     make(map[string]*Fighter),
		fighterOrder: make([]*Fighter, 0, limits.MaxFighters),
		creatures:    make([]*Creature, 0, limits.MaxCreatures),
		orbs:         make([]*Orb, 0, limits.MaxOrbs),
		texts:        make([]*FloatingText, 0, limits.MaxTexts),
		flashes:      make([]*ImpactFlash, 0, MaxFlashes),
		inputs:       make([]Input, 0, limits.MaxInputs),
		rules:        rules,
		sounds:       sounds,
		grid:         spatial.NewGrid(cfg.Sim.ArenaWidth, cfg.Sim.ArenaHeight, cellSize, limits.MaxCreatures),
		sim:          cfg.Sim,
		combatCfg:    cfg.Combat,
		limits:       limits,
		paused:       cfg.Sim.StartPaused,
		dt:           1.0 / float64(tickRate),
		snapshotPool: NewSnapshotPool(limits.MaxFighters, limits.MaxCreatures, limits.MaxOrbs, limits.MaxTexts),
		rngSeed:      time.Now().UnixNano(),
		ctx:          context.Background(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.eventLog == nil {
		e.eventLog = NewEventLog()
	}
	e.rng = rand.New(rand.NewSource(e.rngSeed))
	e.encounter = combat.Encounter{Texts: textFeed{e}, Visual: slashFeed{e}}

	for i := 0; i < cfg.Sim.CreatureCount && i < limits.MaxCreatures; i++ {
		x, y := e.randomSpawn()
		e.spawnCreature(x, y)
	}
	e.produceSnapshot()
	return e
}

// Start begins the tick loop
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.stopChan = make(chan struct{})
	e.ticker = time.NewTicker(time.Duration(float64(time.Second) * e.dt))
	ticker, stop := e.ticker, e.stopChan
	e.mu.Unlock()

	go func() {
		for {
			select {
			case <-ticker.C:
				e.tick()
			case <-stop:
				return
			}
		}
	}()

	log.Printf("🎮 Simulation started at %.0f TPS", 1/e.dt)
}

// Stop stops the tick loop
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}

	e.running = false
	e.ticker.Stop()
	close(e.stopChan)
	log.Println("🛑 Simulation stopped")
}

// Step advances the simulation by exactly one tick.
func (e *Engine) Step() {
	e.tick()
}

// tick runs one frame: timers first, then this tick's events.
func (e *Engine) tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	e.tickCount++
	now := e.simTime()

	e.eventLog.EmitSimple(EventTypeTick, e.tickCount, "",
		TickPayload{
			RNGSeed:       e.rngSeed,
			FighterCount:  len(e.fighterOrder),
			CreatureCount: len(e.creatures),
			DeltaTimeNs:   int64(e.dt * 1e9),
			Paused:        e.paused,
		})

	// Advance RNG seed deterministically for next tick
	e.rngSeed = e.rng.Int63()
	e.rng.Seed(e.rngSeed)

	// Fighter timers run even while paused
	for _, f := range e.fighterOrder {
		f.Update(e.dt)
	}

	if e.paused {
		e.applyInputs(now, true)
	} else {
		e.rebuildGrid()
		e.applyInputs(now, false)
		e.updateCreatures(now)
		e.updateOrbs(now)
		e.updateBleeds()
		e.updateDismounts()
		e.reapCreatures()
		e.updateRespawns()
	}

	e.updateEffects()
	e.produceSnapshot()

	elapsed := time.Since(start)
	for _, h := range e.hooks {
		if h.OnTick != nil {
			h.OnTick(elapsed)
		}
	}
}

// simTime is the simulation clock in seconds. Caller holds the lock.
func (e *Engine) simTime() float64 {
	return float64(e.tickCount) * e.dt
}

// =============================================================================
// FIGHTERS AND INPUTS
// =============================================================================

// AddFighter joins a fighter of the given archetype. An empty archetype uses
// the configured default.
func (e *Engine) AddFighter(name, archetype string) (FighterSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if archetype == "" {
		archetype = e.combatCfg.DefaultArchetype
	}
	arch := combat.Archetype(archetype)
	rules, err := e.rules.Lookup(arch)
	if err != nil {
		return FighterSnapshot{}, err
	}
	if len(e.fighterOrder) >= e.limits.MaxFighters {
		log.Printf("⚠️ Fighter limit reached (%d), rejecting: %s", e.limits.MaxFighters, name)
		return FighterSnapshot{}, ErrFighterLimit
	}

	stats := fighterStats{hp: e.combatCfg.FighterHP, melee: e.combatCfg.MeleeDamage, maxBlock: e.combatCfg.MaxBlockCount}
	f := newFighter(e.newID(), name, arch, rules, stats, e.sounds)

	n := len(e.fighterOrder)
	f.SpawnX = clamp(e.sim.ArenaWidth/2+float64(n%4)*80-120, FighterRadius, e.sim.ArenaWidth-FighterRadius)
	f.SpawnY = clamp(e.sim.ArenaHeight/2+float64(n/4)*80, FighterRadius, e.sim.ArenaHeight-FighterRadius)
	f.X, f.Y = f.SpawnX, f.SpawnY

	e.fighters[f.ID] = f
	e.fighterOrder = append(e.fighterOrder, f)

	e.eventLog.EmitSimple(EventTypeFighterJoin, e.tickCount, f.ID,
		FighterJoinPayload{
			FighterID: f.ID,
			Name:      name,
			Archetype: archetype,
			SpawnX:    f.X,
			SpawnY:    f.Y,
		})
	log.Printf("👤 Fighter joined: %s (%s)", name, archetype)

	return fighterSnapshot(f), nil
}

// RemoveFighter removes a fighter and its queued inputs stop applying.
func (e *Engine) RemoveFighter(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	f, ok := e.fighters[id]
	if !ok {
		return ErrUnknownFighter
	}
	delete(e.fighters, id)
	for i, other := range e.fighterOrder {
		if other == f {
			e.fighterOrder = append(e.fighterOrder[:i], e.fighterOrder[i+1:]...)
			break
		}
	}
	e.eventLog.EmitSimple(EventTypeFighterLeave, e.tickCount, id, FighterPayload{FighterID: id})
	log.Printf("👋 Fighter left: %s", f.Name)
	return nil
}

// Submit queues an input for the next tick.
func (e *Engine) Submit(in Input) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.fighters[in.FighterID]; !ok {
		return ErrUnknownFighter
	}
	if _, ok := inputNames[in.Kind]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownInput, in.Kind)
	}
	if len(e.inputs) >= e.limits.MaxInputs {
		return ErrInputQueueFull
	}
	e.inputs = append(e.inputs, in)
	return nil
}

// applyInputs drains the queue in arrival order. While paused only block
// press and release apply; the rest are dropped.
func (e *Engine) applyInputs(now float64, paused bool) {
	for _, in := range e.inputs {
		f, ok := e.fighters[in.FighterID]
		if !ok || f.IsDead() {
			continue
		}
		if paused && !in.Kind.appliesWhilePaused() {
			continue
		}

		switch in.Kind {
		case InputStrike:
			e.strike(f)
		case InputBlockPress:
			f.Block.Press()
		case InputBlockRelease:
			f.Block.Deactivate()
		case InputKinetic:
			e.kineticStrike(f)
		case InputMount:
			f.SetMount(combat.OnVehicle)
		case InputDismount:
			f.SetMount(combat.OnFoot)
		case InputMove:
			f.X = clamp(in.X, FighterRadius, e.sim.ArenaWidth-FighterRadius)
			f.Y = clamp(in.Y, FighterRadius, e.sim.ArenaHeight-FighterRadius)
		}
	}
	e.inputs = e.inputs[:0]
}

// strike lands a melee hit on the nearest creature in reach. Whiffs and
// stun-locked fighters do nothing.
func (e *Engine) strike(f *Fighter) {
	if f.Block.IsStunLocked() {
		return
	}
	c := e.nearestCreature(f.X, f.Y, e.combatCfg.MeleeRange+CreatureRadius)
	if c == nil {
		return
	}

	out, ok := e.encounter.DeliverStrike(f.Fighter, c)
	if !ok {
		return
	}
	c.lastHitBy = f.ID
	e.play(audio.SoundCreatureHit)

	e.eventLog.EmitSimple(EventTypeStrike, e.tickCount, f.ID,
		StrikePayload{
			FighterID:  f.ID,
			CreatureID: c.ID,
			Tier:       out.Tier.String(),
			HitCount:   out.HitCount,
			Multiplier: out.DamageMultiplier,
			Damage:     out.Damage,
			Finisher:   out.Finisher,
			Stun:       out.ApplyStun,
			Bleed:      out.Bleed,
			Killed:     out.Killed,
		})
	for _, h := range e.hooks {
		if h.OnStrike != nil {
			h.OnStrike(f, out)
		}
	}
	if out.Finisher {
		log.Printf("⚔️ %s %s finisher on %s for %.0f", f.Name, out.Tier, shortID(c.ID), out.Damage)
	}
	if out.Killed {
		e.creatureKilled(c, f, "strike")
	}
}

// kineticStrike spends the fighter's stored charge on creatures in radius.
func (e *Engine) kineticStrike(f *Fighter) {
	if !f.Block.CanKineticStrike() {
		return
	}
	radius := combat.KineticRadius(f.Block.KineticIntake())
	targets := e.creaturesWithin(f.X, f.Y, radius)

	res, ok := e.encounter.KineticStrike(f.Fighter, targets)
	if !ok {
		return
	}

	_, span := telemetry.Tracer("combat").Start(e.ctx, "kinetic.strike")
	kills := 0
	for _, hit := range res.Hits {
		c := hit.Target.(*Creature)
		c.lastHitBy = f.ID
		if hit.Killed {
			kills++
			e.creatureKilled(c, f, "kinetic")
		}
	}
	span.SetAttributes(
		attribute.String("fighter.id", f.ID),
		attribute.String("fighter.archetype", string(f.Archetype)),
		attribute.Int("kinetic.charge", res.Charge),
		attribute.Float64("kinetic.effectiveness", res.Effectiveness),
		attribute.Float64("kinetic.radius", res.Radius),
		attribute.Int("kinetic.hits", len(res.Hits)),
		attribute.Int("kinetic.kills", kills),
	)
	span.End()

	e.eventLog.EmitSimple(EventTypeKineticStrike, e.tickCount, f.ID,
		KineticStrikePayload{
			FighterID:     f.ID,
			Charge:        res.Charge,
			Effectiveness: res.Effectiveness,
			Radius:        res.Radius,
			Damage:        res.Damage,
			Hits:          len(res.Hits),
			Kills:         kills,
		})
	for _, h := range e.hooks {
		if h.OnKineticStrike != nil {
			h.OnKineticStrike(f, res)
		}
	}
	log.Printf("💥 %s kinetic strike: charge %d x%.2f, %d hit", f.Name, res.Charge, res.Effectiveness, len(res.Hits))
}

// fighterHit resolves an attack from sourceID landing on f.
func (e *Engine) fighterHit(sourceID string, f *Fighter, damage, now float64, projectile bool) {
	out := e.encounter.ReceiveHit(f.Fighter, damage, now, projectile)

	e.eventLog.EmitSimple(EventTypeHit, e.tickCount, sourceID,
		HitPayload{
			FighterID:  f.ID,
			SourceID:   sourceID,
			Projectile: projectile,
			Ignored:    out.Ignored,
			Absorbed:   out.Absorbed,
			Broke:      out.Broke,
			Damage:     out.Damage,
			FighterHP:  f.HP,
			BlockCount: f.Block.Count(),
		})
	for _, h := range e.hooks {
		if h.OnHit != nil {
			h.OnHit(f, out)
		}
	}

	if out.Broke {
		e.blockBroken(f)
	}
	if out.Damage > 0 && f.IsDead() {
		e.fighterDied(f, sourceID)
	}
}

func (e *Engine) blockBroken(f *Fighter) {
	_, span := telemetry.Tracer("combat").Start(e.ctx, "block.break")
	span.SetAttributes(
		attribute.String("fighter.id", f.ID),
		attribute.String("fighter.archetype", string(f.Archetype)),
		attribute.String("fighter.mount", f.Mount.String()),
		attribute.Float64("fighter.hp", f.HP),
	)
	span.End()

	e.eventLog.EmitSimple(EventTypeBlockBreak, e.tickCount, f.ID, FighterPayload{FighterID: f.ID})
	for _, h := range e.hooks {
		if h.OnBlockBreak != nil {
			h.OnBlockBreak(f)
		}
	}
	log.Printf("🛡️ %s block broken", f.Name)
}

func (e *Engine) fighterDied(f *Fighter, killerID string) {
	f.respawnTimer = FighterRespawnTime
	e.eventLog.EmitSimple(EventTypeFighterDeath, e.tickCount, killerID, FighterPayload{FighterID: f.ID})
	for _, h := range e.hooks {
		if h.OnDeath != nil {
			h.OnDeath(f)
		}
	}
	log.Printf("💀 %s was defeated", f.Name)
}

// updateDismounts applies dismount requests raised by block breaks.
func (e *Engine) updateDismounts() {
	for _, f := range e.fighterOrder {
		if f.Block.ConsumeDismount() {
			f.SetMount(combat.OnFoot)
			e.eventLog.EmitSimple(EventTypeDismount, e.tickCount, f.ID, FighterPayload{FighterID: f.ID})
			log.Printf("🐎 %s knocked off their mount", f.Name)
		}
	}
}

// =============================================================================
// CREATURES
// =============================================================================

// SpawnCreature adds a creature at (x, y).
func (e *Engine) SpawnCreature(x, y float64) (CreatureSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.creatures) >= e.limits.MaxCreatures {
		return CreatureSnapshot{}, ErrCreatureLimit
	}
	c := e.spawnCreature(
		clamp(x, CreatureRadius, e.sim.ArenaWidth-CreatureRadius),
		clamp(y, CreatureRadius, e.sim.ArenaHeight-CreatureRadius),
	)
	return creatureSnapshot(c), nil
}

func (e *Engine) spawnCreature(x, y float64) *Creature {
	c := newCreature(e.newID(), x, y, creatureStats{
		hp:       e.combatCfg.CreatureHP,
		damage:   e.combatCfg.CreatureDamage,
		reach:    e.combatCfg.CreatureReach,
		speed:    e.combatCfg.CreatureSpeed,
		cooldown: e.combatCfg.CreatureCooldown,
	})
	e.creatures = append(e.creatures, c)
	e.eventLog.EmitSimple(EventTypeCreatureSpawn, e.tickCount, "", CreaturePayload{CreatureID: c.ID, X: x, Y: y})
	return c
}

// updateCreatures runs creature timers and AI: melee in reach, blink with a
// teleport strike when far, fire an orb at mid range, otherwise chase.
func (e *Engine) updateCreatures(now float64) {
	for _, c := range e.creatures {
		if c.IsDead() {
			continue
		}
		c.Update(e.dt, e.sim.ArenaWidth, e.sim.ArenaHeight)
		if c.IsStunned() {
			continue
		}

		f, dist := e.nearestFighter(c.X, c.Y)
		if f == nil {
			continue
		}
		reach := c.Reach + FighterRadius

		switch {
		case dist <= reach:
			if c.CanAttack() {
				c.startAttackCooldown()
				e.fighterHit(c.ID, f, c.Damage, now, false)
			}

		case dist > TeleportMinRange && c.Skills.IsReady(combat.SkillTeleportStrike):
			c.Skills.Trigger(combat.SkillTeleportStrike)
			c.blinkTo(f.X, f.Y)
			c.startAttackCooldown()
			e.play(audio.SoundTeleport)
			e.emitSkill(c, combat.SkillTeleportStrike, f)
			e.fighterHit(c.ID, f, c.Damage*TeleportDamageMultiplier, now, false)

		case dist >= OrbMinRange && dist <= OrbMaxRange &&
			c.Skills.IsReady(combat.SkillRangedOrb) && len(e.orbs) < e.limits.MaxOrbs:
			c.Skills.Trigger(combat.SkillRangedOrb)
			e.orbs = append(e.orbs, NewOrb(e.newID(), c.ID, c.X, c.Y, f.X, f.Y, e.combatCfg.OrbSpeed, e.combatCfg.OrbDamage))
			e.play(audio.SoundOrbFire)
			e.emitSkill(c, combat.SkillRangedOrb, f)

		default:
			c.moveToward(f.X, f.Y, reach*0.9, e.dt)
		}
	}
}

func (e *Engine) emitSkill(c *Creature, kind combat.SkillKind, target *Fighter) {
	e.eventLog.EmitSimple(EventTypeSkill, e.tickCount, c.ID,
		SkillPayload{CreatureID: c.ID, Skill: kind.String(), TargetID: target.ID})
}

// updateOrbs moves orbs and resolves fighter hits as projectile blocks.
func (e *Engine) updateOrbs(now float64) {
	alive := e.orbs[:0]
	for _, o := range e.orbs {
		if !o.Update(e.dt, e.sim.ArenaWidth, e.sim.ArenaHeight) {
			continue
		}
		hit := false
		for _, f := range e.fighterOrder {
			if o.CheckHit(f) {
				e.fighterHit(o.OwnerID, f, o.Damage, now, true)
				hit = true
				break
			}
		}
		if !hit {
			alive = append(alive, o)
		}
	}
	clear(e.orbs[len(alive):])
	e.orbs = alive
}

// updateBleeds ticks five-hit finisher bleeds. Bleed kills are credited to
// the last fighter who struck the creature.
func (e *Engine) updateBleeds() {
	for _, c := range e.creatures {
		if c.Bleed() == nil || c.IsDead() {
			continue
		}
		if dmg := e.encounter.TickBleed(c, e.dt); dmg > 0 && c.IsDead() {
			e.creatureKilled(c, e.fighters[c.lastHitBy], "bleed")
		}
	}
}

func (e *Engine) creatureKilled(c *Creature, by *Fighter, cause string) {
	e.totalKills++
	killerID := ""
	if by != nil {
		by.awardKill()
		killerID = by.ID
		log.Printf("☠️ %s defeated a creature by %s (kills: %d, level %d)", by.Name, cause, by.Kills, by.Level)
	}
	e.eventLog.EmitSimple(EventTypeCreatureKill, e.tickCount, killerID,
		CreaturePayload{CreatureID: c.ID, X: c.X, Y: c.Y, KillerID: killerID, Cause: cause})
	for _, h := range e.hooks {
		if h.OnKill != nil {
			h.OnKill(by, c)
		}
	}
}

// reapCreatures removes dead creatures and queues replacements up to the
// configured population.
func (e *Engine) reapCreatures() {
	alive := e.creatures[:0]
	for _, c := range e.creatures {
		if !c.IsDead() {
			alive = append(alive, c)
		}
	}
	clear(e.creatures[len(alive):])
	e.creatures = alive

	for len(e.creatures)+len(e.creatureRespawns) < e.sim.CreatureCount {
		e.creatureRespawns = append(e.creatureRespawns, CreatureRespawnTime)
	}
}

// updateRespawns counts down creature replacements and dead fighters.
func (e *Engine) updateRespawns() {
	pending := e.creatureRespawns[:0]
	for _, t := range e.creatureRespawns {
		t -= e.dt
		if t > 0 {
			pending = append(pending, t)
			continue
		}
		if len(e.creatures) < e.limits.MaxCreatures {
			x, y := e.randomSpawn()
			e.spawnCreature(x, y)
		}
	}
	e.creatureRespawns = pending

	for _, f := range e.fighterOrder {
		if !f.IsDead() {
			continue
		}
		f.respawnTimer -= e.dt
		if f.respawnTimer <= 0 {
			f.respawn()
			log.Printf("✨ %s respawned", f.Name)
		}
	}
}

// =============================================================================
// SPATIAL QUERIES
// =============================================================================

func (e *Engine) rebuildGrid() {
	e.grid.Clear()
	e.gridCreatures = e.gridCreatures[:0]
	for _, c := range e.creatures {
		if c.IsDead() {
			continue
		}
		e.grid.Insert(uint32(len(e.gridCreatures)), c.X, c.Y)
		e.gridCreatures = append(e.gridCreatures, c)
	}
}

// nearestCreature returns the closest live creature within radius, or nil.
func (e *Engine) nearestCreature(x, y, radius float64) *Creature {
	id, ok := e.grid.Nearest(x, y, radius, func(id uint32) bool {
		return !e.gridCreatures[id].IsDead()
	})
	if !ok {
		return nil
	}
	return e.gridCreatures[id]
}

// creaturesWithin returns live creatures whose centers lie within radius.
func (e *Engine) creaturesWithin(x, y, radius float64) []combat.Target {
	ids := e.grid.Within(x, y, radius)
	out := make([]combat.Target, 0, len(ids))
	for _, id := range ids {
		if c := e.gridCreatures[id]; !c.IsDead() {
			out = append(out, c)
		}
	}
	return out
}

// nearestFighter returns the closest live fighter and its distance.
func (e *Engine) nearestFighter(x, y float64) (*Fighter, float64) {
	var best *Fighter
	bestDist := math.Inf(1)
	for _, f := range e.fighterOrder {
		if f.IsDead() {
			continue
		}
		if d := math.Hypot(f.X-x, f.Y-y); d < bestDist {
			best, bestDist = f, d
		}
	}
	return best, bestDist
}

func (e *Engine) randomSpawn() (float64, float64) {
	x := CreatureRadius + e.rng.Float64()*(e.sim.ArenaWidth-2*CreatureRadius)
	y := CreatureRadius + e.rng.Float64()*(e.sim.ArenaHeight-2*CreatureRadius)
	return x, y
}

// =============================================================================
// EFFECTS
// =============================================================================

// addText appends a damage text, dropping the oldest at the cap.
func (e *Engine) addText(d combat.DamageText) {
	if e.limits.MaxTexts <= 0 {
		return
	}
	if len(e.texts) >= e.limits.MaxTexts {
		copy(e.texts, e.texts[1:])
		e.texts = e.texts[:len(e.texts)-1]
	}
	e.texts = append(e.texts, &FloatingText{DamageText: d})
}

func (e *Engine) addFlash(f *ImpactFlash) {
	if len(e.flashes) >= MaxFlashes {
		copy(e.flashes, e.flashes[1:])
		e.flashes = e.flashes[:len(e.flashes)-1]
	}
	e.flashes = append(e.flashes, f)
}

func (e *Engine) updateEffects() {
	texts := e.texts[:0]
	for _, t := range e.texts {
		if t.Update(e.dt) {
			texts = append(texts, t)
		}
	}
	clear(e.texts[len(texts):])
	e.texts = texts

	flashes := e.flashes[:0]
	for _, f := range e.flashes {
		if f.Update(e.dt) {
			flashes = append(flashes, f)
		}
	}
	clear(e.flashes[len(flashes):])
	e.flashes = flashes
}

// =============================================================================
// CONTROL AND SNAPSHOTS
// =============================================================================

// SetPaused pauses or resumes the simulation. Fighter timers keep running.
func (e *Engine) SetPaused(paused bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.paused == paused {
		return
	}
	e.paused = paused
	e.eventLog.EmitSimple(EventTypePause, e.tickCount, "", PausePayload{Paused: paused})
	if paused {
		log.Println("⏸️ Simulation paused")
	} else {
		log.Println("▶️ Simulation resumed")
	}
}

// IsPaused reports whether the simulation is paused.
func (e *Engine) IsPaused() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.paused
}

// SetRules swaps the archetype rule table. Fighters whose archetype vanished
// keep their previous rules.
func (e *Engine) SetRules(rules combat.RuleTable) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rules = rules
	for _, f := range e.fighterOrder {
		r, err := rules.Lookup(f.Archetype)
		if err != nil {
			log.Printf("⚠️ %s keeps old rules: %v", f.Name, err)
			continue
		}
		f.Rules = r
	}

	names := make([]string, 0, len(rules))
	for _, a := range rules.Names() {
		names = append(names, string(a))
	}
	e.eventLog.EmitSimple(EventTypeRulesReload, e.tickCount, "", RulesReloadPayload{Archetypes: names})
	log.Printf("📜 Archetype rules reloaded: %v", names)
}

// Rules returns a copy of the active archetype rule table.
func (e *Engine) Rules() combat.RuleTable {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make(combat.RuleTable, len(e.rules))
	for k, v := range e.rules {
		out[k] = v
	}
	return out
}

// AddHooks registers combat notifications.
func (e *Engine) AddHooks(h Hooks) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hooks = append(e.hooks, h)
}

// TickCount returns the number of ticks run.
func (e *Engine) TickCount() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tickCount
}

// Now returns the simulation clock in seconds.
func (e *Engine) Now() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.simTime()
}

// TickInterval returns the fixed timestep in seconds.
func (e *Engine) TickInterval() float64 {
	return e.dt
}

// Snapshot returns a copy of the last published state.
func (e *Engine) Snapshot() GameSnapshot {
	return e.snapshotPool.Latest()
}

// produceSnapshot fills the next snapshot slot. Caller holds the lock.
func (e *Engine) produceSnapshot() {
	snap := e.snapshotPool.AcquireWrite()
	snap.TickNumber = e.tickCount
	snap.SimTime = e.simTime()
	snap.Paused = e.paused

	for _, f := range e.fighterOrder {
		snap.Fighters = append(snap.Fighters, fighterSnapshot(f))
	}
	for _, c := range e.creatures {
		snap.Creatures = append(snap.Creatures, creatureSnapshot(c))
	}
	for _, o := range e.orbs {
		snap.Orbs = append(snap.Orbs, OrbSnapshot{ID: o.ID, X: o.X, Y: o.Y, Rotation: o.Rotation})
	}
	for _, t := range e.texts {
		snap.Texts = append(snap.Texts, TextSnapshot{X: t.X, Y: t.Y, Text: t.Text, Color: t.Color, Alpha: t.Alpha()})
	}
	for _, f := range e.flashes {
		snap.Flashes = append(snap.Flashes, FlashSnapshot{X: f.X, Y: f.Y, Radius: f.Radius, Color: f.Color, Intensity: f.Intensity()})
	}

	snap.FighterCount = len(e.fighterOrder)
	snap.CreatureCount = len(e.creatures)
	snap.TotalKills = e.totalKills

	e.snapshotPool.PublishWrite()
}

func fighterSnapshot(f *Fighter) FighterSnapshot {
	b, c := f.Block, f.Combo
	return FighterSnapshot{
		ID:            f.ID,
		Name:          f.Name,
		Archetype:     string(f.Archetype),
		X:             f.X,
		Y:             f.Y,
		HP:            f.HP,
		MaxHP:         f.MaxHP,
		Dead:          f.IsDead(),
		Mounted:       f.Mount == combat.OnVehicle,
		Level:         f.Level,
		XP:            f.XP,
		Kills:         f.Kills,
		Invincible:    f.IsImmune(),
		BlockActive:   b.IsActive(),
		BlockHeld:     b.IsHeld(),
		BlockCount:    b.Count(),
		MaxBlockCount: b.MaxCount(),
		BlockBroken:   b.IsBroken(),
		StunLocked:    b.IsStunLocked(),
		Vulnerable:    b.IsVulnerable(),
		Fatigued:      b.IsFatigued(),
		KineticIntake: b.KineticIntake(),
		KineticGlow:   b.IsKineticStrikeGlowing(),
		RegenTimer:    b.RegenTimer(),
		ComboTier:     c.Tier().String(),
		ComboTimer:    c.Timer(),
		ComboHits:     c.StrikeCount(),
		ComboRest:     c.InRestPeriod(),
		ComboStrike:   c.IsComboStrikeActive(),
		MeleeCooldown: c.MeleeCooldown(),
		IntakeFactor:  c.DamageIntakeMultiplier(),
	}
}

func creatureSnapshot(c *Creature) CreatureSnapshot {
	return CreatureSnapshot{
		ID:            c.ID,
		X:             c.X,
		Y:             c.Y,
		HP:            c.HP(),
		MaxHP:         c.MaxHP,
		Stunned:       c.IsStunned(),
		Bleeding:      c.Bleed() != nil,
		TeleportReady: c.Skills.IsReady(combat.SkillTeleportStrike),
		OrbReady:      c.Skills.IsReady(combat.SkillRangedOrb),
	}
}

// =============================================================================
// EVENT LOG
// =============================================================================

// StartEventLog begins writing events to filePath as JSONL.
func (e *Engine) StartEventLog(filePath string) error {
	return e.eventLog.Start(filePath)
}

// StopEventLog flushes and closes the event log.
func (e *Engine) StopEventLog() {
	e.eventLog.Stop()
}

// EventLogStats returns the event log counters.
func (e *Engine) EventLogStats() EventLogStats {
	return e.eventLog.Stats()
}

// FlushEventLog writes pending events synchronously.
func (e *Engine) FlushEventLog() {
	e.eventLog.Flush()
}

// =============================================================================
// HELPERS
// =============================================================================

// newID draws a UUID from the engine RNG so seeded runs are reproducible.
func (e *Engine) newID() string {
	id, err := uuid.NewRandomFromReader(e.rng)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (e *Engine) play(name string) {
	if e.sounds == nil {
		return
	}
	if err := e.sounds.PlaySoundEffect(name); err != nil {
		log.Printf("⚠️ sound effect %s: %v", name, err)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
