package authz

import (
	"factory-ops/internal/entities"
	"factory-ops/pkg/constants"
)

// ManageTarget - заявка, для которой проверяется право смены статуса.
type ManageTarget struct {
	StatusName string
}

// Gatekeeper - точка входа для проверок прав в сервисах.
type Gatekeeper struct{}

func NewGatekeeper() *Gatekeeper {
	return &Gatekeeper{}
}

func (g *Gatekeeper) Can(actor entities.Profile, action string, target interface{}) bool {
	if actor.ID == 0 || actor.Permission == "" {
		return false
	}

	switch action {
	case OrdersView, OrdersCreate, OrdersExport, MachinesView, CatalogsView:
		return true
	case OrdersDelete:
		return actor.Permission == constants.PermissionAdmin
	case MachinesUpdate:
		return actor.Permission == constants.PermissionAdmin || actor.Permission == constants.PermissionFactory
	case OrdersManage:
		t, ok := target.(ManageTarget)
		if !ok {
			return false
		}
		return CanManage(t.StatusName, actor.Permission)
	}

	return false
}
