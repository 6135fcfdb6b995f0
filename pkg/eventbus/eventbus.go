package eventbus

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event - любое событие портала (списание, перемещение, эскалация...).
type Event interface {
	Name() string
}

type Listener func(ctx context.Context, event Event) error

// Bus вызывает слушателей асинхронно, каждого в своей горутине с таймаутом.
type Bus struct {
	listeners map[string][]Listener
	mu        sync.RWMutex
	inflight  sync.WaitGroup
	timeout   time.Duration
	logger    *zap.Logger
}

func New(logger *zap.Logger) *Bus {
	return &Bus{
		listeners: make(map[string][]Listener),
		timeout:   time.Minute,
		logger:    logger.Named("eventbus"),
	}
}

func (b *Bus) Subscribe(eventName string, listener Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[eventName] = append(b.listeners[eventName], listener)
}

// SubscribeMany подписывает одного слушателя на несколько событий.
func (b *Bus) SubscribeMany(listener Listener, eventNames ...string) {
	for _, name := range eventNames {
		b.Subscribe(name, listener)
	}
}

// Publish не ждёт слушателей. Контекст запроса не передаётся: он может
// завершиться раньше, чем слушатель.
func (b *Bus) Publish(_ context.Context, event Event) {
	b.mu.RLock()
	listeners := append([]Listener(nil), b.listeners[event.Name()]...)
	b.mu.RUnlock()

	for _, listener := range listeners {
		b.inflight.Add(1)
		go func(l Listener) {
			defer b.inflight.Done()
			ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
			defer cancel()

			if err := l(ctx, event); err != nil {
				b.logger.Error("Ошибка в обработчике события",
					zap.String("event", event.Name()),
					zap.Error(err),
				)
			}
		}(listener)
	}
}

// Wait дожидается завершения уже запущенных слушателей (при остановке сервера и в тестах).
func (b *Bus) Wait() {
	b.inflight.Wait()
}
