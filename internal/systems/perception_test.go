package systems

import (
	"testing"

	"github.com/CodeConiglietto/diggdrasil-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePerception(t *testing.T) {
	// Наблюдатель слева, за стеной справа прячется куст.
	w := createTestWorld(12, 7)
	for y := 0; y < 7; y++ {
		w.setWall(6, y)
	}
	reg := domain.NewRegistry()
	observer := &domain.Entity{
		Kind:   domain.KindCreature,
		Vision: &domain.VisionComponent{Radius: domain.VisionRadius, IsDirty: true},
		Memory: domain.NewMemoryComponent(),
	}
	w.place(reg, observer, domain.Pos(3, 3))
	near := w.place(reg, &domain.Entity{Kind: domain.KindItem, Item: &domain.ItemComponent{Kind: domain.ItemStone, Count: 1}}, domain.Pos(4, 4))
	w.place(reg, &domain.Entity{Kind: domain.KindPlant, Vegetation: &domain.VegetationComponent{Species: "bush"}}, domain.Pos(9, 3))

	sc := NewShadowcaster(observer.Vision.Radius)
	n := ComputePerception(PerceptionContext{World: w, Registry: reg, Entity: observer, Caster: sc})

	require.Positive(t, n)
	assert.Equal(t, sc.Count(), n)
	assert.Equal(t, []domain.EntityID{near}, observer.Vision.Visible)
	assert.False(t, observer.Vision.IsDirty)

	explored := observer.Memory.Explored
	assert.True(t, explored.Has(domain.Pos(3, 3)))
	assert.True(t, explored.Has(domain.Pos(6, 3)), "walls are remembered")
	assert.False(t, explored.Has(domain.Pos(9, 3)))
	assert.Equal(t, n, explored.Size())
}

func TestComputePerception_Blind(t *testing.T) {
	w := createTestWorld(3, 3)
	reg := domain.NewRegistry()
	e := &domain.Entity{Kind: domain.KindPlant}
	w.place(reg, e, domain.Pos(1, 1))

	assert.Zero(t, ComputePerception(PerceptionContext{World: w, Registry: reg, Entity: e, Caster: NewShadowcaster(4)}))
}
