package engine

import (
	"github.com/CodeConiglietto/diggdrasil-sub000/internal/domain"
	"github.com/CodeConiglietto/diggdrasil-sub000/internal/world"
	"github.com/CodeConiglietto/diggdrasil-sub000/pkg/logger"
	"github.com/sirupsen/logrus"
)

// Maintenance keeps the resident window centred on the tracked entity. It
// runs last in every tick, after movement.
type Maintenance struct {
	world   *world.TileWorld
	reg     *domain.Registry
	tracked domain.EntityID
	log     *logrus.Entry
}

func NewMaintenance(w *world.TileWorld, reg *domain.Registry) *Maintenance {
	return &Maintenance{
		world: w,
		reg:   reg,
		log:   logger.Log.WithField("component", "world_maintenance"),
	}
}

// Track makes id the entity the window follows.
func (m *Maintenance) Track(id domain.EntityID) {
	m.tracked = id
	m.log.WithField("entity_id", id).Info("Tracking entity")
}

func (m *Maintenance) Tracked() domain.EntityID {
	return m.tracked
}

// Update recentres the window when the tracked entity left the centre
// chunk. Without a live, positioned tracked entity the window stays put.
func (m *Maintenance) Update() (world.RelocationReport, error) {
	e := m.reg.Get(m.tracked)
	if e == nil || e.Pos == nil {
		off := m.world.Offset()
		return world.RelocationReport{From: off, To: off}, nil
	}
	return m.world.Recenter(e.MustPos())
}
