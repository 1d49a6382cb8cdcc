package systems

import (
	"math/rand"

	"github.com/CodeConiglietto/diggdrasil-sub000/internal/domain"
	"github.com/CodeConiglietto/diggdrasil-sub000/pkg/logger"
	"github.com/sirupsen/logrus"
)

const (
	wanderRadius   = 6
	wanderAttempts = 8
	exploreStride  = 12
	exploreSearch  = 3

	// maxBlockedSteps - после стольких упоров подряд цель проваливается.
	maxBlockedSteps = 3
)

// GoalResolutionContext bundles what goal resolution may read and write.
type GoalResolutionContext struct {
	World    Navigator
	Registry *domain.Registry
	Entity   *domain.Entity
	Rand     *rand.Rand
}

func (ctx GoalResolutionContext) log() *logrus.Entry {
	return logger.Log.WithFields(logrus.Fields{
		"component": "ai_system",
		"entity":    ctx.Entity.ID,
		"name":      ctx.Entity.Name,
	})
}

// ResolveGoal advances the entity's goal state machine by one step and
// (re)plans its path. It returns the state of the root goal.
func ResolveGoal(ctx GoalResolutionContext) domain.GoalState {
	ai := ctx.Entity.AI
	if ai == nil || ctx.Entity.Pos == nil {
		return domain.GoalFailed
	}
	root := &ai.Goal
	root.Settle()
	if root.Done() {
		return root.State
	}

	g := root.Current()
	pos := ctx.Entity.MustPos()

	switch g.Kind {
	case domain.GoalIdle:
		g.State = domain.GoalResolving
		ai.Path = nil

	case domain.GoalWander:
		target, ok := pickWanderTarget(ctx, pos)
		if !ok {
			g.State = domain.GoalFailed
			break
		}
		g.Expand(domain.MoveToGoal(target))
		resolveMoveTo(ctx, g.Current(), pos)

	case domain.GoalExplore:
		target, ok := pickExploreTarget(ctx, pos.Add(g.Heading.Mul(exploreStride)))
		if !ok {
			g.State = domain.GoalFailed
			break
		}
		g.Expand(domain.MoveToGoal(target))
		resolveMoveTo(ctx, g.Current(), pos)

	case domain.GoalMoveTo:
		resolveMoveTo(ctx, g, pos)

	case domain.GoalFollow:
		resolveFollow(ctx, g, pos)
	}

	root.Settle()
	if root.State == domain.GoalFailed {
		ai.Path = nil
		ctx.log().WithField("goal", root.Kind).Debug("Goal failed")
	}
	return root.State
}

func resolveMoveTo(ctx GoalResolutionContext, g *domain.Goal, pos domain.Position) {
	ai := ctx.Entity.AI
	if pos == g.Target {
		g.State = domain.GoalSucceeded
		ai.Path = nil
		return
	}
	if g.State == domain.GoalResolving && pathLeadsTo(ai.Path, pos, g.Target) {
		return
	}
	path, ok := ctx.World.Pathfind(pos, g.Target)
	if !ok {
		ctx.log().WithField("target", g.Target).Debug("No path to target")
		g.State = domain.GoalFailed
		return
	}
	ai.Path = path
	g.State = domain.GoalResolving
}

func resolveFollow(ctx GoalResolutionContext, g *domain.Goal, pos domain.Position) {
	ai := ctx.Entity.AI
	target := ctx.Registry.Get(g.TargetEntity)
	if target == nil || target.Pos == nil {
		g.State = domain.GoalFailed
		return
	}
	tp := target.MustPos()

	// Если не видим цель, считаем её потерянной.
	if !HasLineOfSight(ctx.World, pos, tp) {
		g.State = domain.GoalFailed
		return
	}
	g.State = domain.GoalResolving
	if pos.IsAdjacentOrSame(tp) {
		ai.Path = nil
		return
	}
	if n := len(ai.Path); n > 0 && ai.Path[0].IsAdjacent(pos) && ai.Path[n-1].IsAdjacent(tp) {
		return
	}
	path, ok := ctx.World.Pathfind(pos, tp)
	if !ok {
		g.State = domain.GoalFailed
		return
	}
	// Клетку цели занимает она сама.
	ai.Path = path[:len(path)-1]
}

func pathLeadsTo(path []domain.Position, pos, target domain.Position) bool {
	return len(path) > 0 && path[0].IsAdjacent(pos) && path[len(path)-1] == target
}

func pickWanderTarget(ctx GoalResolutionContext, pos domain.Position) (domain.Position, bool) {
	for i := 0; i < wanderAttempts; i++ {
		p := pos.Shift(
			ctx.Rand.Intn(2*wanderRadius+1)-wanderRadius,
			ctx.Rand.Intn(2*wanderRadius+1)-wanderRadius,
		)
		if p != pos && standable(ctx, p) {
			return p, true
		}
	}
	return domain.Position{}, false
}

// standable: клетка, куда вообще можно встать.
func standable(ctx GoalResolutionContext, p domain.Position) bool {
	return !ctx.World.Collides(p) && !HasObstacle(ctx.World, ctx.Registry, p)
}

// pickExploreTarget ищет проходимую клетку рядом с желаемой точкой, кольцами.
func pickExploreTarget(ctx GoalResolutionContext, want domain.Position) (domain.Position, bool) {
	for r := 0; r <= exploreSearch; r++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if max(abs(dx), abs(dy)) != r {
					continue
				}
				if p := want.Shift(dx, dy); standable(ctx, p) {
					return p, true
				}
			}
		}
	}
	return domain.Position{}, false
}

// PlanStep takes the next step of the planned path, if it is still
// walkable, and stores it as the entity's pending move. A blocked step
// drops the path so the next resolution replans; maxBlockedSteps blocked
// steps in a row fail the current goal.
func PlanStep(ctx GoalResolutionContext) bool {
	e := ctx.Entity
	ai := e.AI
	ai.Pending = nil
	if len(ai.Path) == 0 || e.Pos == nil {
		return false
	}
	pos := e.MustPos()
	next := ai.Path[0]
	if !next.IsAdjacent(pos) {
		ai.Path = nil
		return false
	}
	res := CalculateMove(ctx.World, ctx.Registry, e, next.X-pos.X, next.Y-pos.Y)
	if !res.HasMoved {
		ctx.log().WithFields(logrus.Fields{
			"step":       next,
			"wall":       res.IsWall,
			"blocked_by": res.BlockedBy,
		}).Debug("Step blocked, replanning")
		ai.Path = nil
		ai.Blocked++
		cur := ai.Goal.Current()
		switch {
		case ai.Blocked >= maxBlockedSteps:
			ctx.log().WithField("blocked", ai.Blocked).Debug("Giving up on goal")
			ai.Blocked = 0
			cur.State = domain.GoalFailed
		case cur.State == domain.GoalResolving:
			cur.State = domain.GoalPending
		}
		return false
	}
	ai.Blocked = 0
	ai.Path = ai.Path[1:]
	ai.Pending = &res.Target
	return true
}
