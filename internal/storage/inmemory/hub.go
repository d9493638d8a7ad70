package inmemory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/UkralStul/apexmed-interactions/internal/storage"
)

type subscriber struct {
	origin string
	fn     func(storage.Event)
}

// Hub - широковещательная рассылка внутри одного процесса.
// Несколько контекстов выполнения (вкладок) делят один Hub, как вкладки браузера делят localStorage.
type Hub struct {
	mu sync.RWMutex
	//   map[key] map[subscriberID] subscriber
	subs map[string]map[string]subscriber
}

// NewHub - конструктор для хаба.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[string]subscriber),
	}
}

// Publish синхронно вызывает всех подписчиков ключа, кроме подписчиков отправителя.
// Колбэки выполняются без удержания блокировки, поэтому могут читать хранилище и публиковать снова.
func (h *Hub) Publish(ctx context.Context, ev storage.Event) error {
	h.mu.RLock()
	targets := make([]subscriber, 0, len(h.subs[ev.Key]))
	for _, sub := range h.subs[ev.Key] {
		if storage.Deliverable(ev, ev.Key, sub.origin) {
			targets = append(targets, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range targets {
		sub.fn(ev)
	}
	return nil
}

func (h *Hub) Subscribe(ctx context.Context, key, origin string, fn func(storage.Event)) error {
	subID := uuid.NewString()

	h.mu.Lock()
	if h.subs[key] == nil {
		h.subs[key] = make(map[string]subscriber)
	}
	h.subs[key][subID] = subscriber{origin: origin, fn: fn}
	h.mu.Unlock()

	// Горутина для очистки при отмене контекста
	go func() {
		<-ctx.Done()
		h.mu.Lock()
		if keySubs, ok := h.subs[key]; ok {
			delete(keySubs, subID)
			if len(keySubs) == 0 {
				delete(h.subs, key)
			}
		}
		h.mu.Unlock()
	}()

	return nil
}

// Subscribers возвращает число активных подписчиков ключа.
func (h *Hub) Subscribers(key string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[key])
}
