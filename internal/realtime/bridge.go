package realtime

import (
	"context"

	"go.uber.org/zap"
)

type ReloadFunc func(ctx context.Context) error

// Bridge перезапускает reload на каждое изменение в отслеживаемых таблицах.
// Пачка уведомлений, пришедших во время загрузки, схлопывается в одну перезагрузку.
type Bridge struct {
	feed   Feed
	tables []string
	reload ReloadFunc
	logger *zap.Logger
}

func NewBridge(feed Feed, reload ReloadFunc, logger *zap.Logger, tables ...string) *Bridge {
	if len(tables) == 0 {
		tables = []string{TableOrders}
	}
	return &Bridge{feed: feed, tables: tables, reload: reload, logger: logger}
}

// Run блокируется до отмены ctx. Подписки снимаются перед возвратом.
func (b *Bridge) Run(ctx context.Context) error {
	signal := make(chan struct{}, 1)

	for _, table := range b.tables {
		ch, unsubscribe := b.feed.Subscribe(table)
		defer unsubscribe()

		go func(ch <-chan Change) {
			for range ch {
				select {
				case signal <- struct{}{}:
				default:
				}
			}
		}(ch)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-signal:
			if err := b.reload(ctx); err != nil && ctx.Err() == nil {
				b.logger.Warn("Bridge: ошибка перезагрузки после изменения", zap.Error(err))
			}
		}
	}
}
