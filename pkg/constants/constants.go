// pkg/constants/constants.go
package constants

//============== PERMISSIONS ==============

// Значения profiles.permission.
const (
	PermissionAdmin      = "admin"
	PermissionDepartment = "department"
	PermissionOffice     = "office"
	PermissionFactory    = "factory"
)

//============== SEARCH ==============

const (
	SearchModeID   = "id"
	SearchModeDate = "date"
)

//============== WEBSOCKET ==============

const (
	EnvelopeOrdersChanged = "orders.changed"
	EnvelopeOrderState    = "order.state"
	EnvelopeOrderList     = "orders.state"
	EnvelopeNotification  = "notification"
	EnvelopeError         = "error"
)

// Команды браузера по WebSocket.
const (
	CommandWatchOrder  = "watch_order"
	CommandWatchOrders = "watch_orders"
	CommandUnwatch     = "unwatch"
)

// DateLayout - формат даты в query-параметрах (?date=2024-05-01).
const DateLayout = "2006-01-02"
