package services

import (
	"context"
	"sync"

	"factory-ops/internal/dto"
	"factory-ops/internal/entities"
	"factory-ops/internal/filters"
	"factory-ops/internal/realtime"
)

// OrderListView держит текущий фильтр и страницу списка и последний удачный результат.
// Reload подходит как realtime.ReloadFunc: каждое изменение перезагружает всю страницу.
type OrderListView struct {
	query    OrderQueryServiceInterface
	gen      realtime.Generation
	onUpdate func(page *dto.OrderPage, err error)

	mu       sync.RWMutex
	filter   filters.OrderFilter
	page     int
	pageSize int
	last     *dto.OrderPage
}

func NewOrderListView(query OrderQueryServiceInterface, filter filters.OrderFilter, page, pageSize int, onUpdate func(*dto.OrderPage, error)) *OrderListView {
	if onUpdate == nil {
		onUpdate = func(*dto.OrderPage, error) {}
	}
	return &OrderListView{query: query, filter: filter, page: page, pageSize: pageSize, onUpdate: onUpdate}
}

// SetSelection меняет фильтр и страницу. Следующий Reload использует новые значения.
func (v *OrderListView) SetSelection(filter filters.OrderFilter, page int) {
	v.mu.Lock()
	v.filter = filter
	v.page = page
	v.mu.Unlock()
}

func (v *OrderListView) Reload(ctx context.Context) error {
	ticket := v.gen.Next()

	v.mu.RLock()
	filter, page, pageSize := v.filter, v.page, v.pageSize
	v.mu.RUnlock()

	result, err := v.query.Query(ctx, filter, page, pageSize)
	// Подписка снята, пока шёл запрос: результат никому не нужен.
	if ctx.Err() != nil {
		return ctx.Err()
	}

	v.mu.Lock()
	if !v.gen.IsCurrent(ticket) {
		v.mu.Unlock()
		return nil
	}
	if err == nil {
		v.last = result
	}
	last := v.last
	v.mu.Unlock()

	v.onUpdate(last, err)
	return err
}

// Current - последний удачно загруженный результат или nil.
func (v *OrderListView) Current() *dto.OrderPage {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.last
}

// OrderView держит открытую карточку заявки. CanManage пересчитывается при каждой перезагрузке.
type OrderView struct {
	query    OrderQueryServiceInterface
	actor    entities.Profile
	orderID  uint64
	gen      realtime.Generation
	onUpdate func(order *dto.OrderDetailsDTO, err error)

	mu   sync.RWMutex
	last *dto.OrderDetailsDTO
}

func NewOrderView(query OrderQueryServiceInterface, actor entities.Profile, orderID uint64, onUpdate func(*dto.OrderDetailsDTO, error)) *OrderView {
	if onUpdate == nil {
		onUpdate = func(*dto.OrderDetailsDTO, error) {}
	}
	return &OrderView{query: query, actor: actor, orderID: orderID, onUpdate: onUpdate}
}

func (v *OrderView) OrderID() uint64 { return v.orderID }

func (v *OrderView) Reload(ctx context.Context) error {
	ticket := v.gen.Next()

	result, err := v.query.FindOrder(ctx, v.actor, v.orderID)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	v.mu.Lock()
	if !v.gen.IsCurrent(ticket) {
		v.mu.Unlock()
		return nil
	}
	if err == nil {
		v.last = result
	}
	last := v.last
	v.mu.Unlock()

	v.onUpdate(last, err)
	return err
}

func (v *OrderView) Current() *dto.OrderDetailsDTO {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.last
}

// CanManage - право текущего пользователя по последней загруженной версии заявки.
func (v *OrderView) CanManage() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.last != nil && v.last.CanManage
}
