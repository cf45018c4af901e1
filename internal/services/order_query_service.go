package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"factory-ops/internal/authz"
	"factory-ops/internal/dto"
	"factory-ops/internal/entities"
	"factory-ops/internal/filters"
	"factory-ops/internal/repositories"
	"factory-ops/pkg/utils"
)

type OrderQueryServiceInterface interface {
	Query(ctx context.Context, filter filters.OrderFilter, page, pageSize int) (*dto.OrderPage, error)
	FindOrder(ctx context.Context, actor entities.Profile, id uint64) (*dto.OrderDetailsDTO, error)
	LinkedOrderedParts(ctx context.Context, partID uint64, filter filters.OrderFilter) ([]dto.LinkedOrderedPartDTO, error)
}

type OrderQueryService struct {
	orderRepo   repositories.OrderRepositoryInterface
	trackerRepo repositories.StatusTrackerRepositoryInterface
	gatekeeper  *authz.Gatekeeper
	logger      *zap.Logger
}

func NewOrderQueryService(
	orderRepo repositories.OrderRepositoryInterface,
	trackerRepo repositories.StatusTrackerRepositoryInterface,
	gatekeeper *authz.Gatekeeper,
	logger *zap.Logger,
) *OrderQueryService {
	return &OrderQueryService{
		orderRepo:   orderRepo,
		trackerRepo: trackerRepo,
		gatekeeper:  gatekeeper,
		logger:      logger,
	}
}

// Query возвращает страницу заявок. page < 1 считается первой страницей, pageSize зажимается в [1, MaxLimit].
func (s *OrderQueryService) Query(ctx context.Context, filter filters.OrderFilter, page, pageSize int) (*dto.OrderPage, error) {
	page = utils.NormalizePage(page)
	pageSize = utils.ClampLimit(pageSize)

	rows, total, err := s.orderRepo.GetOrders(ctx, filter, page, pageSize)
	if err != nil {
		s.logger.Error("Ошибка получения списка заявок", zap.Any("filter", filter), zap.Int("page", page), zap.Error(err))
		return nil, fmt.Errorf("не удалось получить список заявок: %w", err)
	}

	return &dto.OrderPage{
		Rows:       rows,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: utils.TotalPages(total, pageSize),
	}, nil
}

// FindOrder собирает карточку заявки: шапку, строки, историю и права текущего пользователя.
func (s *OrderQueryService) FindOrder(ctx context.Context, actor entities.Profile, id uint64) (*dto.OrderDetailsDTO, error) {
	order, err := s.orderRepo.FindOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	parts, err := s.orderRepo.FindOrderParts(ctx, id)
	if err != nil {
		s.logger.Error("Ошибка получения строк заявки", zap.Uint64("orderID", id), zap.Error(err))
		return nil, err
	}

	history, err := s.trackerRepo.ListByOrder(ctx, id)
	if err != nil {
		s.logger.Error("Ошибка получения истории заявки", zap.Uint64("orderID", id), zap.Error(err))
		return nil, err
	}

	return &dto.OrderDetailsDTO{
		OrderDTO:  *order,
		Parts:     parts,
		History:   history,
		CanManage: s.gatekeeper.Can(actor, authz.OrdersManage, authz.ManageTarget{StatusName: order.Status.Name}),
		CanDelete: s.gatekeeper.Can(actor, authz.OrdersDelete, nil),
	}, nil
}

func (s *OrderQueryService) LinkedOrderedParts(ctx context.Context, partID uint64, filter filters.OrderFilter) ([]dto.LinkedOrderedPartDTO, error) {
	lines, err := s.orderRepo.LinkedOrderedParts(ctx, partID, filter)
	if err != nil {
		s.logger.Error("Ошибка получения связанных заявок детали", zap.Uint64("partID", partID), zap.Error(err))
		return nil, err
	}
	return lines, nil
}
