package network

import (
	"github.com/CodeConiglietto/diggdrasil-sub000/pkg/api"
	"github.com/CodeConiglietto/diggdrasil-sub000/pkg/logger"
	"github.com/sasha-s/go-deadlock"
)

// subscriberBuffer - сколько снимков может отстать медленный наблюдатель.
const subscriberBuffer = 16

// Broadcaster занимается только рассылкой снимков подписчикам
type Broadcaster struct {
	mu deadlock.RWMutex
	// Мапа: ID сессии -> Личный канал
	subscribers map[string]chan api.Snapshot
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]chan api.Snapshot),
	}
}

// Register создает личный канал для сессии наблюдателя
func (b *Broadcaster) Register(sessionID string) chan api.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Если канал был, закрываем
	if old, ok := b.subscribers[sessionID]; ok {
		close(old)
	}

	ch := make(chan api.Snapshot, subscriberBuffer)
	b.subscribers[sessionID] = ch
	return ch
}

// Unregister удаляет подписчика
func (b *Broadcaster) Unregister(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[sessionID]; ok {
		close(ch)
		delete(b.subscribers, sessionID)
	}
}

// SendTo отправляет снимок конкретной сессии (Unicast)
func (b *Broadcaster) SendTo(sessionID string, msg api.Snapshot) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ch, ok := b.subscribers[sessionID]
	if !ok {
		return false
	}
	select {
	case ch <- msg:
		return true
	default:
		logger.Log.WithField("session_id", sessionID).Debug("Hub: channel full, snapshot dropped")
		return false
	}
}

// Broadcast отправляет всем. Медленные наблюдатели пропускают снимок.
func (b *Broadcaster) Broadcast(msg api.Snapshot) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (b *Broadcaster) HasSubscriber(sessionID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.subscribers[sessionID]
	return ok
}

// SubscriberCount возвращает количество активных подписчиков.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close отписывает всех; каналы закрываются, writePump'ы завершаются.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
