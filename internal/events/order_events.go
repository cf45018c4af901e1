package events

import (
	"factory-ops/internal/entities"
)

const (
	OrderCommittedName       = "order.committed"
	OrderStatusChangedName   = "order.status.changed"
	MachineMarkedRunningName = "machine.marked.running"
)

// OrderCommittedEvent - заявка и её строки записаны одной транзакцией.
type OrderCommittedEvent struct {
	OrderID    uint64
	Order      entities.Order
	PartsCount int
	Actor      entities.Profile
}

func (e OrderCommittedEvent) Name() string { return OrderCommittedName }

// OrderStatusChangedEvent - в журнал статусов добавлена запись и обновлён текущий статус.
type OrderStatusChangedEvent struct {
	OrderID    uint64
	CreatorID  uint64
	FromStatus string
	ToStatus   string
	Actor      entities.Profile
}

func (e OrderStatusChangedEvent) Name() string { return OrderStatusChangedName }

// MachineMarkedRunningEvent - станок помечен работающим при открытии, т.к. на него нет открытых заявок.
type MachineMarkedRunningEvent struct {
	MachineID uint64
	Actor     entities.Profile
}

func (e MachineMarkedRunningEvent) Name() string { return MachineMarkedRunningName }
