package realtime

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Таблицы, изменения которых публикуются триггером notify_table_change.
const (
	TableOrders        = "orders"
	TableOrderParts    = "order_parts"
	TableStatusTracker = "status_tracker"
	TableMachines      = "machines"

	// AnyTable подписывает на изменения всех таблиц.
	AnyTable = "*"
)

// Change - сигнал "данные устарели". Он не несёт новых данных: получатель перечитывает всё сам.
type Change struct {
	Table  string    `json:"table"`
	Action string    `json:"action"`
	RowID  uint64    `json:"id"`
	At     time.Time `json:"at"`
}

// Feed - источник уведомлений об изменениях.
type Feed interface {
	Subscribe(table string) (<-chan Change, func())
}

type notificationPayload struct {
	Table  string `json:"table"`
	Action string `json:"action"`
	ID     uint64 `json:"id"`
}

// DecodeNotification разбирает payload pg_notify из триггера.
func DecodeNotification(payload string, at time.Time) (Change, error) {
	var p notificationPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return Change{}, fmt.Errorf("неверный payload уведомления: %w", err)
	}
	if p.Table == "" {
		return Change{}, fmt.Errorf("в уведомлении нет имени таблицы: %s", payload)
	}
	return Change{
		Table:  p.Table,
		Action: strings.ToUpper(p.Action),
		RowID:  p.ID,
		At:     at,
	}, nil
}
