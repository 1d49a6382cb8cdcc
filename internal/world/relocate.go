package world

import (
	"fmt"

	"github.com/CodeConiglietto/diggdrasil-sub000/internal/domain"
	"github.com/sirupsen/logrus"
)

// RelocationReport describes what one Recenter did to the window.
type RelocationReport struct {
	From, To domain.Position

	Evicted   []domain.Position
	Loaded    []domain.Position
	Generated []domain.Position

	// Removed are the handles that died with the evicted chunks, Added the
	// handles created for loaded and generated ones.
	Removed []domain.EntityID
	Added   []domain.EntityID
}

// Moved reports whether the window offset changed.
func (r RelocationReport) Moved() bool { return r.From != r.To }

// Recenter moves the window so that the chunk of center is the middle slot.
//
// The relocation is transactional. Every chunk leaving the window is
// persisted first; the only state this touches is save markers on the
// evicted entities. Entering chunks are then loaded or generated, and
// chunks present in both windows are shuffled rather than reloaded. Only
// after everything succeeded are evicted chunks unloaded and the new slots
// installed. On error the window is exactly as before.
func (w *TileWorld) Recenter(center domain.Position) (RelocationReport, error) {
	from := w.ring.Offset()
	to := windowOffset(center)
	report := RelocationReport{From: from, To: to}
	if from == to {
		return report, nil
	}

	log := w.log.WithFields(logrus.Fields{"from": from, "to": to})

	// 1. persist
	var evicted []*domain.Chunk
	w.ring.Each(func(_ domain.UPosition, c *domain.Chunk) {
		if _, ok := slotIn(to, c.Coord); !ok {
			evicted = append(evicted, c)
		}
	})
	for _, c := range evicted {
		if err := w.persistChunk(c); err != nil {
			log.WithError(err).WithField("chunk", c.Coord).Error("Relocation aborted: persist failed")
			return RelocationReport{From: from, To: from}, fmt.Errorf("recenter: persist chunk %v: %w", c.Coord, err)
		}
		report.Evicted = append(report.Evicted, c.Coord)
	}

	// 2. shuffle, load, generate
	var slots [RingSize][RingSize]*domain.Chunk
	var entering []*domain.Chunk
	for y := 0; y < RingSize; y++ {
		for x := 0; x < RingSize; x++ {
			coord := to.Add(domain.Pos(x, y))
			if c := w.ring.ChunkAt(coord); c != nil {
				slots[y][x] = c
				continue
			}
			c, ok, err := w.loadChunk(coord)
			if err != nil {
				w.discard(entering)
				log.WithError(err).WithField("chunk", coord).Error("Relocation aborted: load failed")
				return RelocationReport{From: from, To: from}, fmt.Errorf("recenter: load chunk %v: %w", coord, err)
			}
			if ok {
				report.Loaded = append(report.Loaded, coord)
			} else {
				c = w.ctx.Generator.Generate(coord, w.ctx.Registry)
				report.Generated = append(report.Generated, coord)
			}
			entering = append(entering, c)
			slots[y][x] = c
		}
	}

	// 3. commit
	for _, c := range evicted {
		report.Removed = append(report.Removed, c.Entities()...)
		c.Unload(w.ctx.Registry)
	}
	for _, c := range entering {
		report.Added = append(report.Added, c.Entities()...)
	}
	w.ring.install(slots, to)
	w.RefreshAllVariants()

	log.WithFields(logrus.Fields{
		"evicted":   len(report.Evicted),
		"loaded":    len(report.Loaded),
		"generated": len(report.Generated),
		"entities":  w.EntityCount(),
	}).Info("Window relocated")
	return report, nil
}
