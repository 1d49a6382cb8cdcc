package systems

import (
	"github.com/CodeConiglietto/diggdrasil-sub000/internal/domain"
	"github.com/CodeConiglietto/diggdrasil-sub000/pkg/logger"
	"github.com/sirupsen/logrus"
)

// PerceptionContext bundles what one perception pass may touch. Caster is
// the scratch state owned by the observing entity.
type PerceptionContext struct {
	World    TileSource
	Registry *domain.Registry
	Entity   *domain.Entity
	Caster   *Shadowcaster
}

// ComputePerception recomputes the observer's field of view, refreshes its
// visible entity list and adds every seen tile to its memory. It returns the
// number of visible cells.
func ComputePerception(ctx PerceptionContext) int {
	e := ctx.Entity
	if e.Vision == nil || e.Pos == nil {
		return 0
	}
	origin := e.MustPos()

	visible := e.Vision.Visible[:0]
	ctx.Caster.Shadowcast(ShadowcastCallbacks{
		IsTransparent: func(rel domain.Position) bool {
			return !ctx.World.Opaque(origin.Add(rel))
		},
		OnVisible: func(rel domain.Position) {
			p := origin.Add(rel)
			if e.Memory != nil {
				e.Memory.Explored.Put(p)
			}
			for _, id := range ctx.World.EntitiesAt(p) {
				if id != e.ID {
					visible = append(visible, id)
				}
			}
		},
	})
	e.Vision.Visible = visible
	e.Vision.IsDirty = false

	logger.Log.WithFields(logrus.Fields{
		"component":      "perception_system",
		"entity":         e.ID,
		"visible_tiles":  ctx.Caster.Count(),
		"visible_actors": len(visible),
	}).Trace("FOV calculation complete.")

	return ctx.Caster.Count()
}
