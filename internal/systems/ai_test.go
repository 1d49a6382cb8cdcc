package systems

import (
	"math/rand"
	"testing"

	"github.com/CodeConiglietto/diggdrasil-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCreature(goal domain.Goal) *domain.Entity {
	return &domain.Entity{
		Kind: domain.KindCreature,
		Name: "Goblin",
		AI:   &domain.AIComponent{ActionCost: domain.TimeCostMove, Goal: goal},
	}
}

// runGoal крутит цикл "решить цель -> шаг -> движение", как это делает симуляция.
func runGoal(t *testing.T, ctx GoalResolutionContext, w *testWorld, maxTicks int) domain.GoalState {
	t.Helper()
	state := domain.GoalPending
	for i := 0; i < maxTicks; i++ {
		state = ResolveGoal(ctx)
		if state == domain.GoalSucceeded || state == domain.GoalFailed {
			return state
		}
		if PlanStep(ctx) {
			w.move(ctx.Entity, *ctx.Entity.AI.Pending)
		}
	}
	return state
}

func TestResolveGoal_MoveTo(t *testing.T) {
	w := createTestWorld(8, 4)
	w.setWall(3, 0)
	w.setWall(3, 1)
	w.setWall(3, 2)
	reg := domain.NewRegistry()
	npc := newCreature(domain.MoveToGoal(domain.Pos(5, 1)))
	w.place(reg, npc, domain.Pos(1, 1))
	ctx := GoalResolutionContext{World: w, Registry: reg, Entity: npc, Rand: rand.New(rand.NewSource(1))}

	require.Equal(t, domain.GoalResolving, ResolveGoal(ctx))
	path := npc.AI.Path
	require.NotEmpty(t, path)
	assert.True(t, path[0].IsAdjacent(domain.Pos(1, 1)))
	assert.Equal(t, domain.Pos(5, 1), path[len(path)-1])

	assert.Equal(t, domain.GoalSucceeded, runGoal(t, ctx, w, 20))
	assert.Equal(t, domain.Pos(5, 1), npc.MustPos())
	assert.Empty(t, npc.AI.Path)
}

func TestResolveGoal_MoveToUnreachable(t *testing.T) {
	w := createTestWorld(6, 6)
	for _, d := range domain.Neighbours8 {
		p := domain.Pos(4, 4).Add(d)
		w.setWall(p.X, p.Y)
	}
	reg := domain.NewRegistry()
	npc := newCreature(domain.MoveToGoal(domain.Pos(4, 4)))
	w.place(reg, npc, domain.Pos(0, 0))
	ctx := GoalResolutionContext{World: w, Registry: reg, Entity: npc}

	assert.Equal(t, domain.GoalFailed, ResolveGoal(ctx))
	assert.Nil(t, npc.AI.Path)
	assert.Equal(t, domain.GoalFailed, ResolveGoal(ctx), "failed goals stay failed")
}

func TestResolveGoal_WanderExpandsIntoMoveTo(t *testing.T) {
	w := createTestWorld(20, 20)
	reg := domain.NewRegistry()
	npc := newCreature(domain.WanderGoal())
	w.place(reg, npc, domain.Pos(10, 10))
	ctx := GoalResolutionContext{World: w, Registry: reg, Entity: npc, Rand: rand.New(rand.NewSource(99))}

	ResolveGoal(ctx)
	require.Equal(t, domain.GoalExpanded, npc.AI.Goal.State)
	cur := npc.AI.Goal.Current()
	assert.Equal(t, domain.GoalMoveTo, cur.Kind)
	assert.Equal(t, domain.GoalResolving, cur.State)
	assert.LessOrEqual(t, cur.Target.Chebyshev(domain.Pos(10, 10)), wanderRadius)

	target := cur.Target
	assert.Equal(t, domain.GoalSucceeded, runGoal(t, ctx, w, 30))
	assert.Equal(t, target, npc.MustPos())
}

func TestResolveGoal_Explore(t *testing.T) {
	w := createTestWorld(30, 5)
	reg := domain.NewRegistry()
	npc := newCreature(domain.ExploreGoal(domain.Pos(1, 0)))
	w.place(reg, npc, domain.Pos(1, 2))
	ctx := GoalResolutionContext{World: w, Registry: reg, Entity: npc}

	ResolveGoal(ctx)
	cur := npc.AI.Goal.Current()
	require.Equal(t, domain.GoalMoveTo, cur.Kind)
	assert.Equal(t, domain.Pos(1+exploreStride, 2), cur.Target)
}

func TestResolveGoal_Follow(t *testing.T) {
	w := createTestWorld(12, 5)
	reg := domain.NewRegistry()
	leader := &domain.Entity{Kind: domain.KindCreature, Name: "Player"}
	leaderID := w.place(reg, leader, domain.Pos(9, 2))
	npc := newCreature(domain.FollowGoal(leaderID))
	w.place(reg, npc, domain.Pos(1, 2))
	ctx := GoalResolutionContext{World: w, Registry: reg, Entity: npc}

	runGoal(t, ctx, w, 15)
	assert.True(t, npc.MustPos().IsAdjacent(leader.MustPos()), "follower at %v", npc.MustPos())
	assert.Equal(t, domain.GoalResolving, npc.AI.Goal.State, "follow never finishes on its own")

	t.Run("Lost sight", func(t *testing.T) {
		w.move(leader, domain.Pos(11, 4))
		w.move(npc, domain.Pos(1, 0))
		for y := 0; y < 5; y++ {
			w.setWall(6, y)
		}
		npc.AI.Goal = domain.FollowGoal(leaderID)
		assert.Equal(t, domain.GoalFailed, ResolveGoal(ctx))
	})

	t.Run("Target gone", func(t *testing.T) {
		npc.AI.Goal = domain.FollowGoal(domain.PackEntityID(domain.KindCreature, 7, 99))
		assert.Equal(t, domain.GoalFailed, ResolveGoal(ctx))
	})
}

func TestPlanStep_BlockedReplans(t *testing.T) {
	w := createTestWorld(6, 3)
	reg := domain.NewRegistry()
	npc := newCreature(domain.MoveToGoal(domain.Pos(5, 1)))
	w.place(reg, npc, domain.Pos(0, 1))
	ctx := GoalResolutionContext{World: w, Registry: reg, Entity: npc}

	require.Equal(t, domain.GoalResolving, ResolveGoal(ctx))
	next := npc.AI.Path[0]
	w.place(reg, &domain.Entity{Kind: domain.KindCreature, Name: "Rat"}, next)

	assert.False(t, PlanStep(ctx))
	assert.Nil(t, npc.AI.Pending)
	assert.Nil(t, npc.AI.Path)
	assert.Equal(t, domain.GoalPending, npc.AI.Goal.State)

	// Следующее решение строит путь заново.
	assert.Equal(t, domain.GoalResolving, ResolveGoal(ctx))
	assert.NotEmpty(t, npc.AI.Path)
}

func TestPlanStep_TreeOnPathIsRoutedAround(t *testing.T) {
	w := createTestWorld(6, 3)
	reg := domain.NewRegistry()
	npc := newCreature(domain.MoveToGoal(domain.Pos(5, 1)))
	w.place(reg, npc, domain.Pos(0, 1))
	ctx := GoalResolutionContext{World: w, Registry: reg, Entity: npc}

	require.Equal(t, domain.GoalResolving, ResolveGoal(ctx))
	blocked := npc.AI.Path[0]
	w.place(reg, tree(), blocked)

	// Дерево никуда не уходит: путь должен его обойти.
	assert.False(t, PlanStep(ctx))
	require.Equal(t, domain.GoalResolving, ResolveGoal(ctx))
	assert.NotContains(t, npc.AI.Path, blocked)

	assert.Equal(t, domain.GoalSucceeded, runGoal(t, ctx, w, 20))
	assert.Equal(t, domain.Pos(5, 1), npc.MustPos())
	assert.Zero(t, npc.AI.Blocked)
}

func TestPlanStep_FailsAfterRepeatedBlocks(t *testing.T) {
	// Коридор в одну клетку, в нём стоит существо, которое не уходит.
	w := createTestWorld(6, 1)
	reg := domain.NewRegistry()
	npc := newCreature(domain.MoveToGoal(domain.Pos(5, 0)))
	w.place(reg, npc, domain.Pos(0, 0))
	w.place(reg, &domain.Entity{Kind: domain.KindCreature, Name: "Rat"}, domain.Pos(2, 0))
	ctx := GoalResolutionContext{World: w, Registry: reg, Entity: npc}

	assert.Equal(t, domain.GoalFailed, runGoal(t, ctx, w, 50))
	assert.Equal(t, domain.Pos(1, 0), npc.MustPos())
	assert.Empty(t, npc.AI.Path)
	assert.Zero(t, npc.AI.Blocked)
}

func TestPickTarget_SkipsObstacles(t *testing.T) {
	tests := []struct {
		name  string
		trees []domain.Position
	}{
		{name: "Free target"},
		{name: "Tree on target", trees: []domain.Position{domain.Pos(3, 3)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := createTestWorld(7, 7)
			reg := domain.NewRegistry()
			npc := newCreature(domain.ExploreGoal(domain.Pos(1, 0)))
			w.place(reg, npc, domain.Pos(0, 3))
			for _, p := range tt.trees {
				w.place(reg, tree(), p)
			}
			ctx := GoalResolutionContext{World: w, Registry: reg, Entity: npc}

			got, ok := pickExploreTarget(ctx, domain.Pos(3, 3))
			require.True(t, ok)
			assert.True(t, standable(ctx, got))
			if len(tt.trees) == 0 {
				assert.Equal(t, domain.Pos(3, 3), got)
			} else {
				assert.NotContains(t, tt.trees, got)
				assert.True(t, got.IsAdjacent(domain.Pos(3, 3)))
			}
		})
	}
}

func TestPickWanderTarget_OnlyTreesAround(t *testing.T) {
	w := createTestWorld(3, 1)
	reg := domain.NewRegistry()
	npc := newCreature(domain.WanderGoal())
	w.place(reg, npc, domain.Pos(0, 0))
	w.place(reg, tree(), domain.Pos(1, 0))
	w.place(reg, tree(), domain.Pos(2, 0))
	ctx := GoalResolutionContext{World: w, Registry: reg, Entity: npc, Rand: rand.New(rand.NewSource(7))}

	_, ok := pickWanderTarget(ctx, domain.Pos(0, 0))
	assert.False(t, ok)
	assert.Equal(t, domain.GoalFailed, ResolveGoal(ctx))
}
