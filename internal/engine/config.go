package engine

import "time"

// Бэкенды хранилища
const (
	BackendFile    = "file"
	BackendLevelDB = "leveldb"
	BackendMemory  = "memory"
)

// Config хранит параметры запуска движка
type Config struct {
	// Seed - мастер-зерно. От него зависит генерация каждого чанка.
	// Для продолженного сохранения используется сид из его Meta.
	Seed int64

	SaveDir string
	Backend string
	// PersistWorkers - сколько файлов сущностей пишется параллельно.
	PersistWorkers int

	TickInterval time.Duration
	// MaxTicks - остановиться после N тиков (0 = бесконечно).
	MaxTicks int
	// MaxPersistFailures - сколько неудачных релокаций подряд терпим.
	MaxPersistFailures int

	Creatures       int
	VisionRadius    int
	ScatterCount    int
	ScatterAttempts int
}

// NewConfig создает конфиг по умолчанию (случайный сид)
func NewConfig() Config {
	return Config{
		Seed:               time.Now().UnixNano(),
		SaveDir:            "./saves",
		Backend:            BackendFile,
		PersistWorkers:     4,
		TickInterval:       200 * time.Millisecond,
		MaxPersistFailures: 5,
		Creatures:          4,
		VisionRadius:       8,
		ScatterCount:       12,
		ScatterAttempts:    16,
	}
}
