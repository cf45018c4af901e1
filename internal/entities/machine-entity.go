package entities

type Machine struct {
	ID               uint64 `json:"id"`
	Name             string `json:"name"`
	IsRunning        bool   `json:"is_running"`
	FactorySectionID uint64 `json:"factory_section_id"`
}

// MachinePart - складской остаток детали на станке.
type MachinePart struct {
	ID        uint64 `json:"id"`
	MachineID uint64 `json:"machine_id"`
	PartID    uint64 `json:"part_id"`
	Qty       int    `json:"qty"`
	ReqQty    *int   `json:"req_qty"`
}
