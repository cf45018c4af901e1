package entities

import "time"

type Order struct {
	ID               uint64    `json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	OrderNote        string    `json:"order_note"`
	CreatedByUserID  uint64    `json:"created_by_user_id"`
	DepartmentID     uint64    `json:"department_id"`
	CurrentStatusID  uint64    `json:"current_status_id"`
	FactoryID        uint64    `json:"factory_id"`
	FactorySectionID *uint64   `json:"factory_section_id"`
	MachineID        *uint64   `json:"machine_id"`
	OrderType        string    `json:"order_type"`
}

// OrderedPart - строка заявки. Для назначения "Storage" участок и станок пустые.
type OrderedPart struct {
	ID                   uint64  `json:"id"`
	OrderID              uint64  `json:"order_id"`
	PartID               uint64  `json:"part_id"`
	Qty                  int     `json:"qty"`
	FactoryID            uint64  `json:"factory_id"`
	FactorySectionID     *uint64 `json:"factory_section_id"`
	MachineID            *uint64 `json:"machine_id"`
	IsSampleSentToOffice bool    `json:"is_sample_sent_to_office"`
	Note                 *string `json:"note"`
}

func (p OrderedPart) IsMachineDestined() bool {
	return p.FactorySectionID != nil && p.MachineID != nil
}

// StatusTracker - запись журнала смены статусов. Только вставка.
type StatusTracker struct {
	ID        uint64    `json:"id"`
	OrderID   uint64    `json:"order_id"`
	StatusID  uint64    `json:"status_id"`
	ProfileID uint64    `json:"profile_id"`
	CreatedAt time.Time `json:"created_at"`
}
