package dto

import (
	"github.com/aarondl/null/v8"

	"factory-ops/internal/lifecycle"
)

type UpdateDraftHeaderDTO struct {
	FactoryID    null.Uint64 `json:"factory_id"`
	DepartmentID null.Uint64 `json:"department_id"`
	OrderType    string      `json:"order_type" validate:"omitempty,order_type"`
	Description  string      `json:"description" validate:"max=2000"`
}

func (d UpdateDraftHeaderDTO) ToHeader() lifecycle.Header {
	return lifecycle.Header{
		FactoryID:    d.FactoryID.Ptr(),
		DepartmentID: d.DepartmentID.Ptr(),
		OrderType:    d.OrderType,
		Description:  d.Description,
	}
}

// DraftPartDTO - состояние формы строки. Qty проверяется guard'ом черновика, а не валидатором,
// чтобы незаполненная форма возвращала единый ответ.
type DraftPartDTO struct {
	PartID               null.Uint64 `json:"part_id"`
	Qty                  int         `json:"qty"`
	FactorySectionID     null.Uint64 `json:"factory_section_id"`
	MachineID            null.Uint64 `json:"machine_id"`
	IsSampleSentToOffice bool        `json:"is_sample_sent_to_office"`
	Note                 null.String `json:"note" validate:"omitempty"`
}

func (d DraftPartDTO) ToSelector() lifecycle.PartSelector {
	return lifecycle.PartSelector{
		PartID:               d.PartID.Ptr(),
		Qty:                  d.Qty,
		FactorySectionID:     d.FactorySectionID.Ptr(),
		MachineID:            d.MachineID.Ptr(),
		IsSampleSentToOffice: d.IsSampleSentToOffice,
		Note:                 d.Note.String,
	}
}

// DraftDTO - черновик вместе с результатами guard'ов для включения кнопок на фронте.
type DraftDTO struct {
	*lifecycle.Draft
	IsOrderFormComplete   bool `json:"is_order_form_complete"`
	IsAddPartFormComplete bool `json:"is_add_part_form_complete"`
}

func NewDraftDTO(d *lifecycle.Draft) DraftDTO {
	return DraftDTO{
		Draft:                 d,
		IsOrderFormComplete:   d.IsOrderFormComplete(),
		IsAddPartFormComplete: d.IsAddPartFormComplete(),
	}
}
