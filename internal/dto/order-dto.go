package dto

import (
	"fmt"
	"time"

	"github.com/aarondl/null/v8"
)

// OrderDTO - строка списка заявок со всеми справочными именами.
type OrderDTO struct {
	ID             uint64          `json:"id"`
	CreatedAt      time.Time       `json:"created_at"`
	OrderNote      string          `json:"order_note"`
	OrderType      string          `json:"order_type"`
	Creator        ShortProfileDTO `json:"creator"`
	Department     ShortDTO        `json:"department"`
	Status         ShortDTO        `json:"status"`
	Factory        ShortFactoryDTO `json:"factory"`
	FactorySection *ShortDTO       `json:"factory_section"`
	Machine        *ShortDTO       `json:"machine"`
	Location       string          `json:"location"`
}

// DescribeLocation собирает подпись "ABBR - участок - станок" или "ABBR - Storage".
func (o *OrderDTO) DescribeLocation() string {
	if o.FactorySection != nil && o.Machine != nil {
		return fmt.Sprintf("%s - %s - %s", o.Factory.Abbreviation, o.FactorySection.Name, o.Machine.Name)
	}
	return fmt.Sprintf("%s - Storage", o.Factory.Abbreviation)
}

type OrderedPartDTO struct {
	ID                   uint64          `json:"id"`
	OrderID              uint64          `json:"order_id"`
	Part                 ShortDTO        `json:"part"`
	Qty                  int             `json:"qty"`
	Factory              ShortFactoryDTO `json:"factory"`
	FactorySection       *ShortDTO       `json:"factory_section"`
	Machine              *ShortDTO       `json:"machine"`
	IsSampleSentToOffice bool            `json:"is_sample_sent_to_office"`
	Note                 null.String     `json:"note"`
}

// LinkedOrderedPartDTO - строка заявки, найденная по детали, с данными самой заявки.
type LinkedOrderedPartDTO struct {
	OrderedPartDTO
	OrderCreatedAt time.Time `json:"order_created_at"`
	OrderStatus    ShortDTO  `json:"order_status"`
	OrderType      string    `json:"order_type"`
}

type StatusTrackerDTO struct {
	ID        uint64          `json:"id"`
	OrderID   uint64          `json:"order_id"`
	Status    ShortDTO        `json:"status"`
	Profile   ShortProfileDTO `json:"profile"`
	CreatedAt time.Time       `json:"created_at"`
}

// OrderDetailsDTO - заявка со строками, историей и флагами для текущего пользователя.
type OrderDetailsDTO struct {
	OrderDTO
	Parts     []OrderedPartDTO   `json:"parts"`
	History   []StatusTrackerDTO `json:"history"`
	CanManage bool               `json:"can_manage"`
	CanDelete bool               `json:"can_delete"`
}

type OrderPage struct {
	Rows       []OrderDTO `json:"rows"`
	TotalCount uint64     `json:"total_count"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}

type TransitionOrderDTO struct {
	StatusID uint64 `json:"status_id" validate:"required,gt=0"`
}
