package engine

import (
	"github.com/CodeConiglietto/diggdrasil-sub000/internal/domain"
	"github.com/CodeConiglietto/diggdrasil-sub000/pkg/api"
)

// BuildSnapshot собирает то, что видит отслеживаемая сущность: тайлы в
// квадрате её радиуса зрения (видимые и исследованные) и видимых соседей.
// Без отслеживаемой сущности в снимке остаются только окно и тик.
func BuildSnapshot(sim *Simulation, logs []api.LogEntry) api.Snapshot {
	meta := sim.Meta()
	lo, hi := sim.World().Bounds()
	off := sim.World().Offset()

	snap := api.Snapshot{
		Type:   "SNAPSHOT",
		Tick:   sim.Tick(),
		SaveID: meta.SaveID,
		Window: api.WindowMeta{
			OffsetX: off.X,
			OffsetY: off.Y,
			MinX:    lo.X,
			MinY:    lo.Y,
			MaxX:    hi.X,
			MaxY:    hi.Y,
		},
		Logs: logs,
	}

	e := sim.Registry().Get(sim.Tracked())
	if e == nil || e.Pos == nil {
		return snap
	}
	snap.TrackedEntityID = e.ID.String()
	origin := e.MustPos()

	radius := 0
	if e.Vision != nil {
		radius = e.Vision.Radius
	}
	snap.Grid = &api.GridMeta{
		X:      origin.X - radius,
		Y:      origin.Y - radius,
		Width:  2*radius + 1,
		Height: 2*radius + 1,
	}

	fov, hasFOV := sim.FOV(e.ID)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			rel := domain.Pos(dx, dy)
			p := origin.Add(rel)
			visible := hasFOV && fov.Visible(rel)
			explored := e.Memory != nil && e.Memory.Explored.Has(p)
			if !visible && !explored {
				continue
			}
			tile, ok := sim.World().Tile(p)
			if !ok {
				continue
			}
			snap.Map = append(snap.Map, tileView(p, tile, visible, explored))
		}
	}

	snap.Entities = append(snap.Entities, entityView(e))
	if e.Vision != nil {
		for _, id := range e.Vision.Visible {
			if other := sim.Registry().Get(id); other != nil && other.Pos != nil {
				snap.Entities = append(snap.Entities, entityView(other))
			}
		}
	}
	return snap
}

func tileView(p domain.Position, t domain.Tile, visible, explored bool) api.TileView {
	g := t.Type.Glyph()
	return api.TileView{
		X:          p.X,
		Y:          p.Y,
		Symbol:     string(rune(g.Char())),
		Color:      g.HexColor(),
		Variant:    uint8(t.Variant),
		IsWall:     t.Type.Collides(),
		IsVisible:  visible,
		IsExplored: visible || explored,
	}
}

func entityView(e *domain.Entity) api.EntityView {
	v := api.EntityView{
		ID:   e.ID.String(),
		Kind: e.Kind.String(),
		Name: e.Name,
	}
	pos := e.MustPos()
	v.Pos.X = pos.X
	v.Pos.Y = pos.Y
	if e.Render != nil {
		v.Render.Symbol = string(rune(e.Render.Symbol))
		v.Render.Color = e.Render.Color
	}
	if e.AI != nil {
		v.Goal = e.AI.Goal.Current().Kind.String()
	}
	if e.Item != nil {
		v.Count = e.Item.Count
	}
	return v
}
