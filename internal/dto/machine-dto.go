package dto

import "github.com/aarondl/null/v8"

type MachineDTO struct {
	ID             uint64          `json:"id"`
	Name           string          `json:"name"`
	IsRunning      bool            `json:"is_running"`
	FactorySection ShortDTO        `json:"factory_section"`
	Factory        ShortFactoryDTO `json:"factory"`
}

type MachinePartDTO struct {
	ID        uint64   `json:"id"`
	MachineID uint64   `json:"machine_id"`
	Part      ShortDTO `json:"part"`
	Qty       int      `json:"qty"`
	ReqQty    null.Int `json:"req_qty"`
}

type MachineMetricsDTO struct {
	Running    uint64 `json:"running"`
	NotRunning uint64 `json:"not_running"`
	Total      uint64 `json:"total"`
}

// MachineOverviewDTO - всё, что показывает страница станка.
type MachineOverviewDTO struct {
	Machine       MachineDTO       `json:"machine"`
	Parts         []MachinePartDTO `json:"parts"`
	RunningOrders []OrderDTO       `json:"running_orders"`
	MarkedRunning bool             `json:"marked_running"`
}

type SetMachineRunningDTO struct {
	IsRunning *bool `json:"is_running" validate:"required"`
}
