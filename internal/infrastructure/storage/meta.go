package storage

import (
	"time"

	"github.com/CodeConiglietto/diggdrasil-sub000/internal/domain"
	"github.com/google/uuid"
)

// Meta is the per-save bookkeeping record: identity, world seed, the stable
// id counter and where the window was when the save was last flushed.
type Meta struct {
	SaveID       string          `msgpack:"id"`
	Seed         int64           `msgpack:"seed"`
	NextStableID domain.StableID `msgpack:"next"`
	Tick         int             `msgpack:"tick"`
	Offset       domain.Position `msgpack:"offset"`
	Tracked      domain.StableID `msgpack:"tracked"`
	CreatedAt    time.Time       `msgpack:"created"`
	SavedAt      time.Time       `msgpack:"saved"`
}

// NewMeta starts a fresh save with a random identity.
func NewMeta(seed int64) *Meta {
	now := time.Now().UTC()
	return &Meta{
		SaveID:       uuid.NewString(),
		Seed:         seed,
		NextStableID: 1,
		CreatedAt:    now,
		SavedAt:      now,
	}
}
