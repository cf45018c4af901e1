package authz

import "factory-ops/pkg/constants"

// managePolicy: статус заявки → права, которым разрешено перевести её дальше.
// Финальные и неизвестные статусы сюда не входят.
var managePolicy = map[string][]string{
	constants.StatusPending:    {constants.PermissionAdmin, constants.PermissionDepartment},
	constants.StatusApproved:   {constants.PermissionAdmin, constants.PermissionOffice},
	constants.StatusProcessing: {constants.PermissionAdmin, constants.PermissionOffice},
	constants.StatusPartsSent:  {constants.PermissionAdmin, constants.PermissionFactory},
}

// CanManage решает, может ли актор с правом permission сменить статус заявки,
// находящейся в статусе statusName. Неизвестный статус всегда даёт false.
func CanManage(statusName, permission string) bool {
	for _, allowed := range managePolicy[statusName] {
		if allowed == permission {
			return true
		}
	}
	return false
}
