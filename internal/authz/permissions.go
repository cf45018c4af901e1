// internal/authz/permissions.go
package authz

// --- ДЕЙСТВИЯ, КОТОРЫЕ ПРОВЕРЯЕТ Gatekeeper ---

const (
	// Заявки (Orders)
	OrdersView   = "orders:view"
	OrdersCreate = "orders:create"
	OrdersManage = "orders:manage"
	OrdersDelete = "orders:delete"
	OrdersExport = "orders:export"

	// Станки (Machines)
	MachinesView   = "machines:view"
	MachinesUpdate = "machines:update"

	// Справочники
	CatalogsView = "catalogs:view"
)
