package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"factory-ops/internal/authz"
	"factory-ops/internal/dto"
	"factory-ops/internal/entities"
	"factory-ops/internal/events"
	"factory-ops/internal/filters"
	"factory-ops/internal/repositories"
	apperrors "factory-ops/pkg/errors"
	"factory-ops/pkg/eventbus"
	"factory-ops/pkg/utils"
)

type MachineServiceInterface interface {
	ListMachines(ctx context.Context, selection filters.Hierarchy, sortRunning string, page, limit int) ([]dto.MachineDTO, uint64, error)
	MachineParts(ctx context.Context, machineID uint64, partID *uint64, partName string) ([]dto.MachinePartDTO, error)
	RunningOrders(ctx context.Context, machineID uint64) ([]dto.OrderDTO, error)
	OpenMachine(ctx context.Context, actor entities.Profile, machineID uint64) (*dto.MachineOverviewDTO, error)
	SetMachineRunning(ctx context.Context, actor entities.Profile, machineID uint64, running bool) (*dto.MachineDTO, error)
	MachineMetrics(ctx context.Context) (*dto.MachineMetricsDTO, error)
}

type MachineService struct {
	machineRepo repositories.MachineRepositoryInterface
	orderRepo   repositories.OrderRepositoryInterface
	gatekeeper  *authz.Gatekeeper
	bus         *eventbus.Bus
	logger      *zap.Logger
}

func NewMachineService(
	machineRepo repositories.MachineRepositoryInterface,
	orderRepo repositories.OrderRepositoryInterface,
	gatekeeper *authz.Gatekeeper,
	bus *eventbus.Bus,
	logger *zap.Logger,
) *MachineService {
	return &MachineService{
		machineRepo: machineRepo,
		orderRepo:   orderRepo,
		gatekeeper:  gatekeeper,
		bus:         bus,
		logger:      logger,
	}
}

// ListMachines - список станков по каскадному выбору фабрика -> участок. Участок важнее фабрики.
func (s *MachineService) ListMachines(ctx context.Context, selection filters.Hierarchy, sortRunning string, page, limit int) ([]dto.MachineDTO, uint64, error) {
	machines, total, err := s.machineRepo.GetMachines(ctx, repositories.MachineFilter{
		FactoryID:        selection.FactoryID,
		FactorySectionID: selection.FactorySectionID,
		SortRunning:      sortRunning,
	}, utils.NormalizePage(page), utils.ClampLimit(limit))
	if err != nil {
		s.logger.Error("Ошибка получения списка станков", zap.Error(err))
		return nil, 0, err
	}
	return machines, total, nil
}

func (s *MachineService) MachineParts(ctx context.Context, machineID uint64, partID *uint64, partName string) ([]dto.MachinePartDTO, error) {
	return s.machineRepo.MachineParts(ctx, machineID, partID, partName)
}

func (s *MachineService) RunningOrders(ctx context.Context, machineID uint64) ([]dto.OrderDTO, error) {
	return s.orderRepo.RunningOrdersByMachine(ctx, machineID)
}

// OpenMachine загружает страницу станка. Если открытых заявок на станок нет, он помечается работающим.
// Обратного перехода здесь нет: остановить станок можно только явным SetMachineRunning.
func (s *MachineService) OpenMachine(ctx context.Context, actor entities.Profile, machineID uint64) (*dto.MachineOverviewDTO, error) {
	machine, err := s.machineRepo.FindMachine(ctx, machineID)
	if err != nil {
		return nil, err
	}

	parts, err := s.machineRepo.MachineParts(ctx, machineID, nil, "")
	if err != nil {
		s.logger.Error("Ошибка получения деталей станка", zap.Uint64("machineID", machineID), zap.Error(err))
		return nil, err
	}

	running, err := s.orderRepo.RunningOrdersByMachine(ctx, machineID)
	if err != nil {
		s.logger.Error("Ошибка получения открытых заявок станка", zap.Uint64("machineID", machineID), zap.Error(err))
		return nil, err
	}

	overview := &dto.MachineOverviewDTO{Machine: *machine, Parts: parts, RunningOrders: running}

	if len(running) == 0 && !machine.IsRunning {
		if err := s.machineRepo.SetRunning(ctx, machineID, true); err != nil {
			s.logger.Warn("Не удалось пометить станок работающим", zap.Uint64("machineID", machineID), zap.Error(err))
			return overview, nil
		}
		overview.Machine.IsRunning = true
		overview.MarkedRunning = true
		s.bus.Publish(ctx, events.MachineMarkedRunningEvent{MachineID: machineID, Actor: actor})
		s.logger.Info("Станок помечен работающим: открытых заявок нет", zap.Uint64("machineID", machineID))
	}

	return overview, nil
}

func (s *MachineService) SetMachineRunning(ctx context.Context, actor entities.Profile, machineID uint64, running bool) (*dto.MachineDTO, error) {
	if !s.gatekeeper.Can(actor, authz.MachinesUpdate, nil) {
		return nil, apperrors.ErrForbidden
	}
	if err := s.machineRepo.SetRunning(ctx, machineID, running); err != nil {
		return nil, err
	}
	s.logger.Info("Состояние станка изменено",
		zap.Uint64("machineID", machineID), zap.Bool("running", running), zap.Uint64("actorID", actor.ID))
	return s.machineRepo.FindMachine(ctx, machineID)
}

func (s *MachineService) MachineMetrics(ctx context.Context) (*dto.MachineMetricsDTO, error) {
	running, notRunning, err := s.machineRepo.CountByRunning(ctx)
	if err != nil {
		return nil, fmt.Errorf("метрики станков: %w", err)
	}
	return &dto.MachineMetricsDTO{Running: running, NotRunning: notRunning, Total: running + notRunning}, nil
}
