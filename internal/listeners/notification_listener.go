package listeners

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"factory-ops/internal/events"
	"factory-ops/internal/services"
	"factory-ops/pkg/constants"
	"factory-ops/pkg/eventbus"
	"factory-ops/pkg/websocket"
)

// NotificationListener превращает доменные события в персональные уведомления ("колокольчик").
type NotificationListener struct {
	wsNotificationService services.WebSocketNotificationServiceInterface
	logger                *zap.Logger
}

func NewNotificationListener(
	wsNotificationService services.WebSocketNotificationServiceInterface,
	logger *zap.Logger,
) *NotificationListener {
	return &NotificationListener{
		wsNotificationService: wsNotificationService,
		logger:                logger,
	}
}

func (l *NotificationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.OrderCommittedName, l.handleOrderCommitted)
	bus.Subscribe(events.OrderStatusChangedName, l.handleOrderStatusChanged)
	l.logger.Info("NotificationListener подписан на события заявок")
}

func (l *NotificationListener) handleOrderCommitted(_ context.Context, event eventbus.Event) error {
	e, ok := event.(events.OrderCommittedEvent)
	if !ok {
		return nil
	}

	payload := websocket.NotificationPayload{
		EventID:   uuid.NewString(),
		Type:      events.OrderCommittedName,
		Message:   fmt.Sprintf("Заявка №%d создана, строк: %d", e.OrderID, e.PartsCount),
		OrderID:   e.OrderID,
		Actor:     websocket.ActorInfo{ID: e.Actor.ID, Name: e.Actor.Name},
		Link:      orderLink(e.OrderID),
		CreatedAt: time.Now().UTC(),
	}
	if e.Order.MachineID != nil {
		payload.MachineID = *e.Order.MachineID
	}
	return l.wsNotificationService.SendNotification(e.Actor.ID, payload, constants.EnvelopeNotification)
}

// handleOrderStatusChanged уведомляет автора заявки, если статус сменил кто-то другой.
func (l *NotificationListener) handleOrderStatusChanged(_ context.Context, event eventbus.Event) error {
	e, ok := event.(events.OrderStatusChangedEvent)
	if !ok || e.CreatorID == 0 || e.CreatorID == e.Actor.ID {
		return nil
	}

	payload := websocket.NotificationPayload{
		EventID:   uuid.NewString(),
		Type:      events.OrderStatusChangedName,
		Message:   fmt.Sprintf("%s: заявка №%d переведена из %q в %q", e.Actor.Name, e.OrderID, e.FromStatus, e.ToStatus),
		OrderID:   e.OrderID,
		Actor:     websocket.ActorInfo{ID: e.Actor.ID, Name: e.Actor.Name},
		Link:      orderLink(e.OrderID),
		CreatedAt: time.Now().UTC(),
	}
	return l.wsNotificationService.SendNotification(e.CreatorID, payload, constants.EnvelopeNotification)
}

func orderLink(orderID uint64) string {
	return fmt.Sprintf("/orders/%d", orderID)
}
