package realtime

import (
	"sync"

	"go.uber.org/zap"
)

const defaultSubscriberBuffer = 16

type subscriber struct {
	ch   chan Change
	once sync.Once
}

// Broker - внутрипроцессная рассылка изменений. Publish никогда не блокируется:
// если подписчик не успевает, уведомление теряется, что безопасно, т.к. следующее
// уведомление всё равно приведёт к полной перезагрузке.
type Broker struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscriber]struct{}
	buffer int
	logger *zap.Logger
}

func NewBroker(buffer int, logger *zap.Logger) *Broker {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	return &Broker{
		subs:   make(map[string]map[*subscriber]struct{}),
		buffer: buffer,
		logger: logger,
	}
}

// Subscribe возвращает канал изменений таблицы и функцию отписки. Отписка закрывает канал
// и безопасна при повторном вызове.
func (b *Broker) Subscribe(table string) (<-chan Change, func()) {
	sub := &subscriber{ch: make(chan Change, b.buffer)}

	b.mu.Lock()
	if b.subs[table] == nil {
		b.subs[table] = make(map[*subscriber]struct{})
	}
	b.subs[table][sub] = struct{}{}
	b.mu.Unlock()

	unsubscribe := func() {
		sub.once.Do(func() {
			b.mu.Lock()
			delete(b.subs[table], sub)
			if len(b.subs[table]) == 0 {
				delete(b.subs, table)
			}
			close(sub.ch)
			b.mu.Unlock()
		})
	}
	return sub.ch, unsubscribe
}

func (b *Broker) Publish(c Change) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	b.deliver(b.subs[c.Table], c)
	if c.Table != AnyTable {
		b.deliver(b.subs[AnyTable], c)
	}
}

func (b *Broker) deliver(subs map[*subscriber]struct{}, c Change) {
	for sub := range subs {
		select {
		case sub.ch <- c:
		default:
			b.logger.Debug("Подписчик не успевает, уведомление пропущено",
				zap.String("table", c.Table),
				zap.Uint64("rowID", c.RowID),
			)
		}
	}
}

// Subscribers возвращает число подписчиков таблицы.
func (b *Broker) Subscribers(table string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[table])
}
