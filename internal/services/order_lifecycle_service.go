package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"factory-ops/internal/authz"
	"factory-ops/internal/entities"
	"factory-ops/internal/events"
	"factory-ops/internal/lifecycle"
	"factory-ops/internal/repositories"
	"factory-ops/pkg/constants"
	apperrors "factory-ops/pkg/errors"
	"factory-ops/pkg/eventbus"
)

type OrderLifecycleServiceInterface interface {
	StartDraft(ctx context.Context, actor entities.Profile) (*lifecycle.Draft, error)
	GetDraft(ctx context.Context, actor entities.Profile, draftID string) (*lifecycle.Draft, error)
	UpdateHeader(ctx context.Context, actor entities.Profile, draftID string, header lifecycle.Header) (*lifecycle.Draft, error)
	ConfirmHeader(ctx context.Context, actor entities.Profile, draftID string) (*lifecycle.Draft, error)
	AddPart(ctx context.Context, actor entities.Profile, draftID string, selector lifecycle.PartSelector) (*lifecycle.Draft, error)
	RemovePart(ctx context.Context, actor entities.Profile, draftID string, index int) (*lifecycle.Draft, error)
	Commit(ctx context.Context, actor entities.Profile, draftID string) (*lifecycle.Draft, error)
	CancelDraft(ctx context.Context, actor entities.Profile, draftID string) error

	TransitionOrder(ctx context.Context, actor entities.Profile, orderID, statusID uint64) error
	DeleteOrder(ctx context.Context, actor entities.Profile, orderID uint64) error
}

type OrderLifecycleService struct {
	drafts      lifecycle.DraftStore
	txManager   repositories.TxManagerInterface
	orderRepo   repositories.OrderRepositoryInterface
	trackerRepo repositories.StatusTrackerRepositoryInterface
	statusRepo  repositories.StatusRepositoryInterface
	profileRepo repositories.ProfileRepositoryInterface
	machineRepo repositories.MachineRepositoryInterface
	gatekeeper  *authz.Gatekeeper
	bus         *eventbus.Bus
	logger      *zap.Logger

	locks sync.Map
	now   func() time.Time
}

func NewOrderLifecycleService(
	drafts lifecycle.DraftStore,
	txManager repositories.TxManagerInterface,
	orderRepo repositories.OrderRepositoryInterface,
	trackerRepo repositories.StatusTrackerRepositoryInterface,
	statusRepo repositories.StatusRepositoryInterface,
	profileRepo repositories.ProfileRepositoryInterface,
	machineRepo repositories.MachineRepositoryInterface,
	gatekeeper *authz.Gatekeeper,
	bus *eventbus.Bus,
	logger *zap.Logger,
) *OrderLifecycleService {
	return &OrderLifecycleService{
		drafts:      drafts,
		txManager:   txManager,
		orderRepo:   orderRepo,
		trackerRepo: trackerRepo,
		statusRepo:  statusRepo,
		profileRepo: profileRepo,
		machineRepo: machineRepo,
		gatekeeper:  gatekeeper,
		bus:         bus,
		logger:      logger,
		now:         time.Now,
	}
}

// lock сериализует изменения одного черновика в пределах процесса.
func (s *OrderLifecycleService) lock(draftID string) func() {
	m, _ := s.locks.LoadOrStore(draftID, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *OrderLifecycleService) load(ctx context.Context, actor entities.Profile, draftID string) (*lifecycle.Draft, error) {
	d, err := s.drafts.Load(ctx, draftID)
	if err != nil {
		// Черновик истёк по TTL или не существовал: мьютекс для него больше не нужен.
		if errors.Is(err, apperrors.ErrNotFound) {
			s.locks.Delete(draftID)
		}
		return nil, err
	}
	if d.OwnerID != actor.ID {
		return nil, lifecycle.ErrDraftNotFound
	}
	return d, nil
}

// draftError переводит ошибки шагов мастера в ошибки ввода (400), остальные пропускает как есть.
func draftError(err error) error {
	switch {
	case errors.Is(err, lifecycle.ErrInvalidTransition),
		errors.Is(err, lifecycle.ErrHeaderIncomplete),
		errors.Is(err, lifecycle.ErrPartIncomplete),
		errors.Is(err, lifecycle.ErrNoParts),
		errors.Is(err, lifecycle.ErrPartIndexOutOfRange):
		return apperrors.WrapInvalidInput(err)
	}
	return err
}

// mutate загружает черновик, применяет шаг и сохраняет результат.
func (s *OrderLifecycleService) mutate(ctx context.Context, actor entities.Profile, draftID string, step func(d *lifecycle.Draft, now time.Time) error) (*lifecycle.Draft, error) {
	unlock := s.lock(draftID)
	defer unlock()

	d, err := s.load(ctx, actor, draftID)
	if err != nil {
		return nil, err
	}
	if err := step(d, s.now()); err != nil {
		return nil, draftError(err)
	}
	if err := s.drafts.Save(ctx, d); err != nil {
		s.logger.Error("Не удалось сохранить черновик", zap.String("draftID", draftID), zap.Error(err))
		return nil, err
	}
	return d, nil
}

func (s *OrderLifecycleService) StartDraft(ctx context.Context, actor entities.Profile) (*lifecycle.Draft, error) {
	if !s.gatekeeper.Can(actor, authz.OrdersCreate, nil) {
		return nil, apperrors.ErrForbidden
	}
	d := lifecycle.Start(actor.ID, s.now())
	if err := s.drafts.Save(ctx, d); err != nil {
		s.logger.Error("Не удалось сохранить новый черновик", zap.Uint64("actorID", actor.ID), zap.Error(err))
		return nil, err
	}
	s.logger.Debug("Черновик заявки создан", zap.String("draftID", d.ID), zap.Uint64("actorID", actor.ID))
	return d, nil
}

func (s *OrderLifecycleService) GetDraft(ctx context.Context, actor entities.Profile, draftID string) (*lifecycle.Draft, error) {
	return s.load(ctx, actor, draftID)
}

func (s *OrderLifecycleService) UpdateHeader(ctx context.Context, actor entities.Profile, draftID string, header lifecycle.Header) (*lifecycle.Draft, error) {
	return s.mutate(ctx, actor, draftID, func(d *lifecycle.Draft, now time.Time) error {
		return d.SetHeader(header, now)
	})
}

func (s *OrderLifecycleService) ConfirmHeader(ctx context.Context, actor entities.Profile, draftID string) (*lifecycle.Draft, error) {
	return s.mutate(ctx, actor, draftID, func(d *lifecycle.Draft, now time.Time) error {
		return d.ConfirmHeader(now)
	})
}

// AddPart заполняет форму строки и сразу переносит её в список.
func (s *OrderLifecycleService) AddPart(ctx context.Context, actor entities.Profile, draftID string, selector lifecycle.PartSelector) (*lifecycle.Draft, error) {
	return s.mutate(ctx, actor, draftID, func(d *lifecycle.Draft, now time.Time) error {
		if err := d.SetSelector(selector, now); err != nil {
			return err
		}
		_, err := d.AddPart(now)
		return err
	})
}

func (s *OrderLifecycleService) RemovePart(ctx context.Context, actor entities.Profile, draftID string, index int) (*lifecycle.Draft, error) {
	return s.mutate(ctx, actor, draftID, func(d *lifecycle.Draft, now time.Time) error {
		return d.RemovePart(index, now)
	})
}

func (s *OrderLifecycleService) CancelDraft(ctx context.Context, actor entities.Profile, draftID string) error {
	unlock := s.lock(draftID)
	defer unlock()

	d, err := s.load(ctx, actor, draftID)
	if err != nil {
		return err
	}
	if err := d.Cancel(s.now()); err != nil {
		return draftError(err)
	}
	if err := s.drafts.Delete(ctx, draftID); err != nil {
		return err
	}
	s.locks.Delete(draftID)
	return nil
}

// Commit записывает шапку, строки и первую запись истории одной транзакцией.
// При ошибке черновик возвращается к добавлению строк, строки сохраняются.
func (s *OrderLifecycleService) Commit(ctx context.Context, actor entities.Profile, draftID string) (*lifecycle.Draft, error) {
	unlock := s.lock(draftID)
	defer unlock()

	d, err := s.load(ctx, actor, draftID)
	if err != nil {
		return nil, err
	}
	if err := d.BeginCommit(s.now()); err != nil {
		return nil, draftError(err)
	}

	order, parts := d.BuildOrder(actor.ID, constants.InitialStatusID)

	var orderID uint64
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.profileRepo.EnsureProfileInTx(ctx, tx, actor); err != nil {
			return err
		}
		if err := s.checkLocations(ctx, tx, order.FactoryID, parts); err != nil {
			return err
		}

		id, err := s.orderRepo.CreateOrderInTx(ctx, tx, order)
		if err != nil {
			return err
		}
		if err := s.orderRepo.CreateOrderPartsInTx(ctx, tx, id, parts); err != nil {
			return err
		}
		if err := s.trackerRepo.CreateInTx(ctx, tx, id, order.CurrentStatusID, actor.ID); err != nil {
			return err
		}
		orderID = id
		return nil
	})
	if err != nil {
		s.logger.Error("Не удалось записать заявку, черновик возвращён к строкам",
			zap.String("draftID", draftID), zap.Uint64("actorID", actor.ID), zap.Error(err))
		_ = d.AbortCommit(err, s.now())
		if saveErr := s.drafts.Save(ctx, d); saveErr != nil {
			s.logger.Error("Не удалось сохранить черновик после отката", zap.String("draftID", draftID), zap.Error(saveErr))
		}
		return nil, err
	}

	_ = d.CompleteCommit(orderID, s.now())
	if err := s.drafts.Delete(ctx, draftID); err != nil {
		// Черновик в состоянии Done не пройдёт BeginCommit, повторная запись невозможна.
		s.logger.Warn("Не удалось удалить завершённый черновик, сохраняем его как завершённый",
			zap.String("draftID", draftID), zap.Error(err))
		if saveErr := s.drafts.Save(ctx, d); saveErr != nil {
			s.logger.Error("Не удалось сохранить завершённый черновик", zap.String("draftID", draftID), zap.Error(saveErr))
		}
	} else {
		s.locks.Delete(draftID)
	}

	order.ID = orderID
	s.bus.Publish(ctx, events.OrderCommittedEvent{OrderID: orderID, Order: order, PartsCount: len(parts), Actor: actor})
	s.logger.Info("Заявка создана",
		zap.Uint64("orderID", orderID), zap.Int("parts", len(parts)), zap.Uint64("actorID", actor.ID))
	return d, nil
}

// checkLocations проверяет, что станки строк стоят на указанных участках этой фабрики.
func (s *OrderLifecycleService) checkLocations(ctx context.Context, tx pgx.Tx, factoryID uint64, parts []entities.OrderedPart) error {
	type location struct{ section, machine uint64 }
	checked := make(map[location]struct{})

	for _, p := range parts {
		if !p.IsMachineDestined() {
			continue
		}
		loc := location{section: *p.FactorySectionID, machine: *p.MachineID}
		if _, ok := checked[loc]; ok {
			continue
		}
		ok, err := s.machineRepo.CheckLocationInTx(ctx, tx, factoryID, loc.section, loc.machine)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.NewInvalidInputError("станок %d не относится к участку %d выбранной фабрики", loc.machine, loc.section)
		}
		checked[loc] = struct{}{}
	}
	return nil
}

// TransitionOrder меняет статус заявки под блокировкой строки. Право проверяется по текущему статусу.
func (s *OrderLifecycleService) TransitionOrder(ctx context.Context, actor entities.Profile, orderID, statusID uint64) error {
	target, err := s.statusRepo.FindStatus(ctx, statusID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewInvalidInputError("статус %d не существует", statusID)
		}
		return err
	}

	var changed events.OrderStatusChangedEvent
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		order, currentStatus, err := s.orderRepo.FindOrderForUpdateInTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if constants.IsFinalStatus(currentStatus) {
			return apperrors.ErrOrderCompleted
		}
		if !s.gatekeeper.Can(actor, authz.OrdersManage, authz.ManageTarget{StatusName: currentStatus}) {
			return apperrors.ErrForbidden
		}
		if order.CurrentStatusID == target.ID {
			return apperrors.NewInvalidInputError("заявка уже в статусе %q", target.Name)
		}

		if err := s.profileRepo.EnsureProfileInTx(ctx, tx, actor); err != nil {
			return err
		}
		if err := s.trackerRepo.CreateInTx(ctx, tx, orderID, target.ID, actor.ID); err != nil {
			return err
		}
		if err := s.orderRepo.UpdateStatusInTx(ctx, tx, orderID, target.ID); err != nil {
			return err
		}

		changed = events.OrderStatusChangedEvent{
			OrderID:    orderID,
			CreatorID:  order.CreatedByUserID,
			FromStatus: currentStatus,
			ToStatus:   target.Name,
			Actor:      actor,
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("Смена статуса заявки отклонена",
			zap.Uint64("orderID", orderID), zap.Uint64("statusID", statusID), zap.Uint64("actorID", actor.ID), zap.Error(err))
		return err
	}

	s.bus.Publish(ctx, changed)
	s.logger.Info("Статус заявки изменён",
		zap.Uint64("orderID", orderID), zap.String("from", changed.FromStatus), zap.String("to", changed.ToStatus))
	return nil
}

func (s *OrderLifecycleService) DeleteOrder(ctx context.Context, actor entities.Profile, orderID uint64) error {
	if !s.gatekeeper.Can(actor, authz.OrdersDelete, nil) {
		return apperrors.ErrForbidden
	}
	if err := s.orderRepo.DeleteOrder(ctx, orderID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Error("Ошибка удаления заявки", zap.Uint64("orderID", orderID), zap.Error(err))
		}
		return fmt.Errorf("удаление заявки %d: %w", orderID, err)
	}
	return nil
}
