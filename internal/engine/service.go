package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CodeConiglietto/diggdrasil-sub000/internal/domain"
	"github.com/CodeConiglietto/diggdrasil-sub000/internal/infrastructure/storage"
	"github.com/CodeConiglietto/diggdrasil-sub000/internal/network"
	"github.com/CodeConiglietto/diggdrasil-sub000/pkg/api"
	"github.com/CodeConiglietto/diggdrasil-sub000/pkg/logger"
	"github.com/google/uuid"
	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"
)

// ErrTooManyFailures останавливает цикл, когда окно не удаётся сдвинуть
// MaxPersistFailures тиков подряд.
var ErrTooManyFailures = errors.New("too many consecutive relocation failures")

// Типы записей лога для наблюдателей
const (
	LogInfo  = "INFO"
	LogWorld = "WORLD"
	LogError = "ERROR"
)

// GameService - это "Сервер". Владеет симуляцией, гоняет тики по таймеру
// и раздаёт снимки наблюдателям через Hub.
type GameService struct {
	cfg   Config
	store storage.Store

	mu  deadlock.RWMutex
	sim *Simulation

	Hub         *network.Broadcaster
	CommandChan chan api.ClientCommand

	// Состояние цикла, трогается только из Run.
	paused   bool
	failures int
	ran      int

	logMu deadlock.Mutex
	logs  []api.LogEntry

	log *logrus.Entry
}

// NewService поднимает симуляцию поверх store. Сервис владеет store и
// закрывает его в Close.
func NewService(cfg Config, store storage.Store) (*GameService, error) {
	sim, err := NewSimulation(cfg, store)
	if err != nil {
		return nil, err
	}
	s := &GameService{
		cfg:         cfg,
		store:       store,
		sim:         sim,
		Hub:         network.NewBroadcaster(),
		CommandChan: make(chan api.ClientCommand, 100),
		log:         logger.Log.WithField("component", "game_service"),
	}
	s.AddLog(fmt.Sprintf("Мир %s, тик %d.", sim.Meta().SaveID, sim.Tick()), LogInfo)
	return s, nil
}

// ProcessCommand ставит команду в очередь цикла. Невалидные команды и
// переполненная очередь отбрасываются.
func (s *GameService) ProcessCommand(cmd api.ClientCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("command rejected: %w", err)
	}
	select {
	case s.CommandChan <- cmd:
		return nil
	default:
		s.log.WithField("action", cmd.Action).Warn("Command queue full")
		return errors.New("command queue full")
	}
}

// --- ГЛАВНЫЙ ЦИКЛ ---

// Run гоняет тики до отмены ctx, MaxTicks или ErrTooManyFailures. При любом
// выходе мир сохраняется.
func (s *GameService) Run(ctx context.Context) error {
	interval := s.cfg.TickInterval
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.WithFields(logrus.Fields{
		"interval":  interval,
		"max_ticks": s.cfg.MaxTicks,
	}).Info("Game loop started")

	runErr := s.loop(ctx, ticker.C)

	if err := s.Save(); err != nil {
		s.log.WithError(err).Error("Final save failed")
		runErr = errors.Join(runErr, err)
	}
	s.log.WithField("ticks", s.ran).Info("Game loop stopped")
	return runErr
}

func (s *GameService) loop(ctx context.Context, tick <-chan time.Time) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case cmd := <-s.CommandChan:
			if err := s.execute(cmd); err != nil {
				return err
			}

		case <-tick:
			if s.paused {
				continue
			}
			if err := s.step(); err != nil {
				return err
			}
		}
		if s.cfg.MaxTicks > 0 && s.ran >= s.cfg.MaxTicks {
			return nil
		}
	}
}

func (s *GameService) execute(cmd api.ClientCommand) error {
	log := s.log.WithField("action", cmd.Action)
	switch cmd.Action {
	case api.ActionPause:
		s.paused = true
		log.Info("Simulation paused")
	case api.ActionResume:
		s.paused = false
		log.Info("Simulation resumed")
	case api.ActionStep:
		for i := cmd.StepTicks(); i > 0; i-- {
			if err := s.step(); err != nil {
				return err
			}
			if s.cfg.MaxTicks > 0 && s.ran >= s.cfg.MaxTicks {
				break
			}
		}
	case api.ActionSave:
		if err := s.Save(); err != nil {
			log.WithError(err).Error("Save failed")
			s.AddLog("Сохранение не удалось.", LogError)
			return nil
		}
		s.AddLog("Мир сохранён.", LogInfo)
	}
	return nil
}

// step прогоняет один тик и рассылает снимок. Неудачная релокация не
// останавливает мир, пока неудач подряд меньше MaxPersistFailures.
func (s *GameService) step() error {
	s.mu.Lock()
	report, err := s.sim.Step()
	s.ran++
	if err != nil {
		s.failures++
		s.log.WithError(err).WithField("failures", s.failures).Error("Tick failed")
		s.AddLog("Не удалось сдвинуть окно мира.", LogError)
		if s.cfg.MaxPersistFailures > 0 && s.failures >= s.cfg.MaxPersistFailures {
			s.mu.Unlock()
			return fmt.Errorf("%w: %w", ErrTooManyFailures, err)
		}
	} else {
		s.failures = 0
		if reloc := report.Relocation; reloc.Moved() {
			s.AddLog(fmt.Sprintf("Окно сдвинулось в %v: %d загружено, %d создано.",
				reloc.To, len(reloc.Loaded), len(reloc.Generated)), LogWorld)
		}
	}
	snap := BuildSnapshot(s.sim, s.drainLogs())
	s.mu.Unlock()

	s.Hub.Broadcast(snap)
	return nil
}

// Save сбрасывает все резидентные чанки и метаданные.
func (s *GameService) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Save()
}

// Close закрывает хранилище. Вызывается после Run.
func (s *GameService) Close() error {
	s.Hub.Close()
	return s.store.Close()
}

// Snapshot - текущий снимок для только что подключившегося наблюдателя.
func (s *GameService) Snapshot() api.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return BuildSnapshot(s.sim, nil)
}

func (s *GameService) Tick() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sim.Tick()
}

// AddLog добавляет запись, которая уйдёт со следующим снимком.
func (s *GameService) AddLog(text, logType string) {
	s.logMu.Lock()
	defer s.logMu.Unlock()
	s.logs = append(s.logs, api.LogEntry{
		ID:        uuid.NewString(),
		Text:      text,
		Type:      logType,
		Timestamp: time.Now().UnixMilli(),
	})
}

func (s *GameService) drainLogs() []api.LogEntry {
	s.logMu.Lock()
	defer s.logMu.Unlock()
	logs := s.logs
	s.logs = nil
	return logs
}

// --- DEBUG ---

// ChunkSummary - строка отладочного дампа окна.
type ChunkSummary struct {
	Coord    domain.Position  `json:"coord"`
	Slot     domain.UPosition `json:"slot"`
	Entities int              `json:"entities"`
}

// WindowDump - отладочное состояние окна.
type WindowDump struct {
	Tick     int             `json:"tick"`
	SaveID   string          `json:"save_id"`
	Offset   domain.Position `json:"offset"`
	Min      domain.Position `json:"min"`
	Max      domain.Position `json:"max"`
	Tracked  string          `json:"tracked"`
	Entities int             `json:"entities"`
	Chunks   []ChunkSummary  `json:"chunks"`
}

func (s *GameService) DebugWindow() WindowDump {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w := s.sim.World()
	lo, hi := w.Bounds()
	dump := WindowDump{
		Tick:     s.sim.Tick(),
		SaveID:   s.sim.Meta().SaveID,
		Offset:   w.Offset(),
		Min:      lo,
		Max:      hi,
		Tracked:  s.sim.Tracked().String(),
		Entities: s.sim.Registry().Len(),
	}
	w.Ring().Each(func(slot domain.UPosition, c *domain.Chunk) {
		dump.Chunks = append(dump.Chunks, ChunkSummary{Coord: c.Coord, Slot: slot, Entities: c.EntityCount()})
	})
	return dump
}

// EntityDump - отладочный вид сущности со скрытым состоянием ИИ.
type EntityDump struct {
	api.EntityView
	StableID   domain.StableID `json:"stable_id,omitempty"`
	NextAction int             `json:"next_action,omitempty"`
	GoalState  string          `json:"goal_state,omitempty"`
	PathLen    int             `json:"path_len,omitempty"`
}

func (s *GameService) DebugEntities() []EntityDump {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]EntityDump, 0, s.sim.Registry().Len())
	s.sim.Registry().Each(func(e *domain.Entity) {
		if e.Pos == nil {
			return
		}
		d := EntityDump{EntityView: entityView(e)}
		if e.Save != nil {
			d.StableID = e.Save.ID
		}
		if e.AI != nil {
			d.NextAction = e.AI.NextActionTick
			d.GoalState = e.AI.Goal.State.String()
			d.PathLen = len(e.AI.Path)
		}
		result = append(result, d)
	})
	return result
}

func (s *GameService) DebugQueue() []QueueEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sim.Turns().DebugDump(s.sim.Registry())
}
