package listeners

import (
	"context"

	"go.uber.org/zap"

	"factory-ops/internal/realtime"
	"factory-ops/pkg/constants"
)

// Broadcaster - то, куда рассылаются изменения (в рабочем коде это websocket.Hub).
type Broadcaster interface {
	Broadcast(ctx context.Context, messageType string, payload interface{}) error
}

// ChangePayload - тело конверта "orders.changed". Браузер по нему перезапрашивает данные.
type ChangePayload struct {
	Table  string `json:"table"`
	Action string `json:"action"`
	ID     uint64 `json:"id"`
}

// ChangeBroadcaster пересылает все изменения из ленты во все WebSocket-соединения.
type ChangeBroadcaster struct {
	feed   realtime.Feed
	out    Broadcaster
	logger *zap.Logger
}

func NewChangeBroadcaster(feed realtime.Feed, out Broadcaster, logger *zap.Logger) *ChangeBroadcaster {
	return &ChangeBroadcaster{feed: feed, out: out, logger: logger}
}

// Run блокируется до отмены ctx.
func (b *ChangeBroadcaster) Run(ctx context.Context) {
	changes, unsubscribe := b.feed.Subscribe(realtime.AnyTable)
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			payload := ChangePayload{Table: change.Table, Action: change.Action, ID: change.RowID}
			if err := b.out.Broadcast(ctx, constants.EnvelopeOrdersChanged, payload); err != nil && ctx.Err() == nil {
				b.logger.Warn("Не удалось разослать изменение", zap.String("table", change.Table), zap.Error(err))
			}
		}
	}
}
