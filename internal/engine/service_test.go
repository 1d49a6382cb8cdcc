package engine

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/CodeConiglietto/diggdrasil-sub000/internal/domain"
	"github.com/CodeConiglietto/diggdrasil-sub000/internal/infrastructure/storage"
	"github.com/CodeConiglietto/diggdrasil-sub000/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameService_RunPublishesSnapshots(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTicks = 5
	store := storage.NewMemoryStore()

	svc, err := NewService(cfg, store)
	require.NoError(t, err)
	sub := svc.Hub.Register("observer")

	require.NoError(t, svc.Run(context.Background()))
	assert.Equal(t, 5, svc.Tick())

	require.Len(t, sub, 5)
	first := <-sub
	assert.Equal(t, "SNAPSHOT", first.Type)
	assert.Equal(t, 1, first.Tick)
	assert.NotEmpty(t, first.TrackedEntityID)
	assert.NotEmpty(t, first.Map)
	require.NotEmpty(t, first.Entities)
	assert.Equal(t, first.TrackedEntityID, first.Entities[0].ID)
	require.NotEmpty(t, first.Logs)
	assert.Equal(t, LogInfo, first.Logs[0].Type)

	var last api.Snapshot
	for len(sub) > 0 {
		last = <-sub
	}
	assert.Equal(t, 5, last.Tick)
	assert.Empty(t, last.Logs)

	// Run сохраняет мир на выходе.
	meta, err := store.LoadMeta()
	require.NoError(t, err)
	assert.Equal(t, 5, meta.Tick)
	assert.Equal(t, 9, store.ChunkCount())

	require.NoError(t, svc.Close())
}

func TestGameService_Commands(t *testing.T) {
	cfg := testConfig()
	cfg.TickInterval = time.Hour

	svc, err := NewService(cfg, storage.NewMemoryStore())
	require.NoError(t, err)

	assert.Error(t, svc.ProcessCommand(api.ClientCommand{Action: "JUMP"}))
	require.NoError(t, svc.ProcessCommand(api.ClientCommand{Action: api.ActionPause}))
	require.NoError(t, svc.ProcessCommand(api.ClientCommand{
		Action:  api.ActionStep,
		Payload: json.RawMessage(`{"ticks":3}`),
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	require.Eventually(t, func() bool { return svc.Tick() == 3 }, 5*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestGameService_GivesUpAfterRepeatedFailures(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPersistFailures = 2
	store := storage.NewMemoryStore()

	svc, err := NewService(cfg, store)
	require.NoError(t, err)
	moveTrackedTo(t, svc.sim, domain.Pos(1, 0))
	store.FailWrites = assert.AnError

	err = svc.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooManyFailures)
	assert.Equal(t, 2, svc.Tick())
}

func TestGameService_Debug(t *testing.T) {
	svc, err := NewService(testConfig(), storage.NewMemoryStore())
	require.NoError(t, err)

	win := svc.DebugWindow()
	assert.Len(t, win.Chunks, 9)
	assert.Equal(t, svc.sim.Tracked().String(), win.Tracked)

	total := 0
	for _, c := range win.Chunks {
		total += c.Entities
	}
	assert.Equal(t, win.Entities, total)
	assert.Len(t, svc.DebugEntities(), win.Entities)
	assert.Equal(t, svc.sim.Turns().Len(), len(svc.DebugQueue()))

	snap := svc.Snapshot()
	assert.Equal(t, 0, snap.Tick)
	assert.Equal(t, win.SaveID, snap.SaveID)
}
