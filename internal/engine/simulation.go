package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/CodeConiglietto/diggdrasil-sub000/internal/domain"
	"github.com/CodeConiglietto/diggdrasil-sub000/internal/infrastructure/storage"
	"github.com/CodeConiglietto/diggdrasil-sub000/internal/systems"
	"github.com/CodeConiglietto/diggdrasil-sub000/internal/world"
	"github.com/CodeConiglietto/diggdrasil-sub000/pkg/dungeon"
	"github.com/CodeConiglietto/diggdrasil-sub000/pkg/logger"
	"github.com/sirupsen/logrus"
)

// followChance - шанс, что существо, видящее отслеживаемого, пойдёт за ним.
const followChance = 4

// StepReport summarises one tick.
type StepReport struct {
	Tick       int
	Acted      int
	Moved      int
	Relocation world.RelocationReport
}

// Simulation owns the world and runs the tick pipeline:
// perception, planning, action, movement, world maintenance.
// It is single-threaded; GameService serialises access to it.
type Simulation struct {
	cfg   Config
	store storage.Store
	meta  *storage.Meta
	alloc *storage.StableIDAllocator
	reg   *domain.Registry
	world *world.TileWorld
	turns *TurnManager
	maint *Maintenance

	// Scratch FOV per perceiving entity.
	casters map[domain.EntityID]*systems.Shadowcaster

	rng  *rand.Rand
	tick int
	log  *logrus.Entry
}

// NewSimulation resumes the save held by store, or starts a new one when the
// store has no metadata yet.
func NewSimulation(cfg Config, store storage.Store) (*Simulation, error) {
	log := logger.Log.WithField("component", "simulation")

	meta, err := store.LoadMeta()
	resumed := true
	switch {
	case errors.Is(err, storage.ErrNotFound):
		meta = storage.NewMeta(cfg.Seed)
		resumed = false
	case err != nil:
		return nil, fmt.Errorf("load meta: %w", err)
	}

	gen := dungeon.NewGenerator(meta.Seed)
	if cfg.ScatterCount > 0 {
		gen.ScatterCount = cfg.ScatterCount
	}
	if cfg.ScatterAttempts > 0 {
		gen.ScatterAttempts = cfg.ScatterAttempts
	}

	reg := domain.NewRegistry()
	alloc := storage.NewStableIDAllocator(meta.NextStableID)
	center := domain.Pos(0, 0)
	if resumed {
		center = meta.Offset.Add(domain.Pos(world.RingSize/2, world.RingSize/2)).Mul(domain.ChunkSize)
	}

	w, err := world.New(world.TileWorldContext{
		Registry:  reg,
		Store:     store,
		Allocator: alloc,
		Generator: gen,
	}, center)
	if err != nil {
		return nil, fmt.Errorf("build world: %w", err)
	}

	s := &Simulation{
		cfg:     cfg,
		store:   store,
		meta:    meta,
		alloc:   alloc,
		reg:     reg,
		world:   w,
		turns:   NewTurnManager(),
		casters: make(map[domain.EntityID]*systems.Shadowcaster),
		rng:     rand.New(rand.NewSource(meta.Seed ^ int64(meta.Tick))),
		tick:    meta.Tick,
		log:     log,
	}
	s.maint = NewMaintenance(w, reg)

	reg.Each(func(e *domain.Entity) { s.admit(e.ID) })

	if resumed {
		reg.Each(func(e *domain.Entity) {
			if e.Save != nil && e.Save.ID == meta.Tracked {
				s.maint.Track(e.ID)
			}
		})
	}
	if s.reg.Get(s.maint.Tracked()) == nil {
		if err := s.spawnPopulation(center); err != nil {
			return nil, err
		}
	}

	log.WithFields(logrus.Fields{
		"save_id":  meta.SaveID,
		"seed":     meta.Seed,
		"resumed":  resumed,
		"tick":     s.tick,
		"entities": reg.Len(),
	}).Info("Simulation ready")
	return s, nil
}

// spawnPopulation places the tracked explorer and a few creatures in the
// centre chunk.
func (s *Simulation) spawnPopulation(center domain.Position) error {
	chunk, _ := domain.GlobalToLocal(center, domain.ChunkSize)
	c := s.world.Ring().ChunkAt(chunk)

	spawn := func(tmpl dungeon.EntityTemplate, near domain.UPosition) (domain.EntityID, error) {
		local, ok := dungeon.FindFreeGround(c, near)
		if !ok {
			return domain.NilEntityID, fmt.Errorf("spawn %s: no free ground in chunk %v", tmpl.Name, chunk)
		}
		id, err := s.world.SpawnEntity(tmpl.Build(s.rng), c.Global(local))
		if err != nil {
			return domain.NilEntityID, err
		}
		s.admit(id)
		return id, nil
	}

	mid := domain.UPos(domain.ChunkSize/2, domain.ChunkSize/2)
	id, err := spawn(dungeon.Digger, mid)
	if err != nil {
		return err
	}
	digger := s.reg.MustGet(id)
	digger.AI.Goal = s.exploreGoal()
	if s.cfg.VisionRadius > 0 {
		digger.Vision.Radius = s.cfg.VisionRadius
	}
	s.maint.Track(id)

	for i := 0; i < s.cfg.Creatures; i++ {
		near := domain.UPos(uint(s.rng.Intn(domain.ChunkSize)), uint(s.rng.Intn(domain.ChunkSize)))
		if _, err := spawn(dungeon.Pick(s.rng, dungeon.CreatureTable), near); err != nil {
			s.log.WithError(err).Warn("Creature not spawned")
		}
	}
	return nil
}

// admit registers a resident entity with the per-tick systems.
func (s *Simulation) admit(id domain.EntityID) {
	e := s.reg.Get(id)
	if e == nil || e.AI == nil {
		return
	}
	if e.Vision != nil && e.Memory == nil {
		e.Memory = domain.NewMemoryComponent()
	}
	if e.AI.NextActionTick < s.tick {
		e.AI.NextActionTick = s.tick
	}
	s.turns.AddEntity(e)
}

// release drops everything the systems hold for an entity that left the window.
func (s *Simulation) release(id domain.EntityID) {
	s.turns.RemoveEntity(id)
	delete(s.casters, id)
}

func (s *Simulation) caster(e *domain.Entity) *systems.Shadowcaster {
	c, ok := s.casters[e.ID]
	if !ok || c.Radius() != e.Vision.Radius {
		c = systems.NewShadowcaster(e.Vision.Radius)
		s.casters[e.ID] = c
	}
	return c
}

// Step runs one tick. A maintenance error leaves the window where it was;
// the relocation is retried on the next tick.
func (s *Simulation) Step() (StepReport, error) {
	report := StepReport{Tick: s.tick}

	s.perceive()
	s.plan()
	movers, acted := s.act()
	report.Acted = acted
	report.Moved = s.move(movers)

	reloc, err := s.maint.Update()
	s.tick++
	if err != nil {
		return report, fmt.Errorf("tick %d: %w", report.Tick, err)
	}
	report.Relocation = reloc
	for _, id := range reloc.Removed {
		s.release(id)
	}
	for _, id := range reloc.Added {
		s.admit(id)
	}
	if len(reloc.Evicted) > 0 {
		// Счётчик стабильных ID должен пережить падение процесса.
		if err := s.saveMeta(); err != nil {
			return report, fmt.Errorf("tick %d: %w", report.Tick, err)
		}
	}

	// FOV отслеживаемого после движения, для наблюдателей.
	if e := s.reg.Get(s.maint.Tracked()); e != nil && e.Vision != nil {
		systems.ComputePerception(systems.PerceptionContext{World: s.world, Registry: s.reg, Entity: e, Caster: s.caster(e)})
	}
	return report, nil
}

func (s *Simulation) perceive() {
	s.reg.Each(func(e *domain.Entity) {
		if e.Vision == nil || e.Pos == nil {
			return
		}
		systems.ComputePerception(systems.PerceptionContext{
			World:    s.world,
			Registry: s.reg,
			Entity:   e,
			Caster:   s.caster(e),
		})
	})
}

func (s *Simulation) plan() {
	s.reg.Each(func(e *domain.Entity) {
		if e.AI == nil || e.Pos == nil || !e.AI.IsReady(s.tick) {
			return
		}
		if e.AI.Goal.Done() {
			e.AI.Goal = s.nextGoal(e)
			e.AI.Blocked = 0
		}
		systems.ResolveGoal(s.goalContext(e))
	})
}

func (s *Simulation) goalContext(e *domain.Entity) systems.GoalResolutionContext {
	return systems.GoalResolutionContext{World: s.world, Registry: s.reg, Entity: e, Rand: s.rng}
}

// nextGoal replaces a finished goal. The tracked entity keeps exploring;
// others wander, sometimes following the tracked entity when they see it.
func (s *Simulation) nextGoal(e *domain.Entity) domain.Goal {
	tracked := s.maint.Tracked()
	if e.ID == tracked {
		return s.exploreGoal()
	}
	if e.Vision != nil && s.rng.Intn(followChance) == 0 {
		for _, id := range e.Vision.Visible {
			if id == tracked {
				return domain.FollowGoal(tracked)
			}
		}
	}
	return domain.WanderGoal()
}

func (s *Simulation) exploreGoal() domain.Goal {
	return domain.ExploreGoal(domain.Neighbours8[s.rng.Intn(len(domain.Neighbours8))])
}

// act gives every due entity its turn. Returns the entities with a pending
// step and the number of turns taken.
func (s *Simulation) act() ([]domain.EntityID, int) {
	var movers []domain.EntityID
	acted := 0
	for {
		id, ok := s.turns.NextReady(s.tick)
		if !ok {
			break
		}
		e := s.reg.Get(id)
		if e == nil || e.Pos == nil {
			s.turns.RemoveEntity(id)
			continue
		}
		acted++
		cost := domain.TimeCostWait
		if systems.PlanStep(s.goalContext(e)) {
			movers = append(movers, id)
			cost = max(e.AI.ActionCost, 1)
		}
		e.AI.Wait(cost)
		s.turns.UpdatePriority(id, e.AI.NextActionTick)
	}
	return movers, acted
}

// move applies pending steps in turn order. A step taken by an earlier mover
// can block a later one; that one simply stays.
func (s *Simulation) move(movers []domain.EntityID) int {
	moved := 0
	for _, id := range movers {
		e := s.reg.Get(id)
		if e == nil || e.AI == nil || e.AI.Pending == nil {
			continue
		}
		target := *e.AI.Pending
		e.AI.Pending = nil
		pos := e.MustPos()
		if res := systems.CalculateMove(s.world, s.reg, e, target.X-pos.X, target.Y-pos.Y); !res.HasMoved {
			s.log.WithFields(logrus.Fields{"entity_id": id, "target": target}).Debug("Step lost to another mover")
			continue
		}
		if err := s.world.MoveEntity(id, target); err != nil {
			s.log.WithError(err).WithField("entity_id", id).Debug("Move rejected")
			continue
		}
		if e.Vision != nil {
			e.Vision.IsDirty = true
		}
		moved++
	}
	return moved
}

// Save flushes every resident chunk and the save metadata.
func (s *Simulation) Save() error {
	if err := s.world.PersistAll(); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return s.saveMeta()
}

func (s *Simulation) saveMeta() error {
	s.meta.NextStableID = s.alloc.Next()
	s.meta.Offset = s.world.Offset()
	s.meta.Tick = s.tick
	if e := s.reg.Get(s.maint.Tracked()); e != nil && e.Save != nil {
		s.meta.Tracked = e.Save.ID
	}
	s.meta.SavedAt = time.Now().UTC()
	if err := s.store.SaveMeta(s.meta); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	return nil
}

func (s *Simulation) Tick() int { return s.tick }

func (s *Simulation) World() *world.TileWorld { return s.world }

func (s *Simulation) Registry() *domain.Registry { return s.reg }

func (s *Simulation) Turns() *TurnManager { return s.turns }

func (s *Simulation) Meta() storage.Meta { return *s.meta }

func (s *Simulation) Tracked() domain.EntityID { return s.maint.Tracked() }

func (s *Simulation) Allocator() *storage.StableIDAllocator { return s.alloc }

// FOV returns the last field of view computed for id.
func (s *Simulation) FOV(id domain.EntityID) (systems.FOV, bool) {
	c, ok := s.casters[id]
	if !ok {
		return systems.FOV{}, false
	}
	return c.FOV(), true
}
