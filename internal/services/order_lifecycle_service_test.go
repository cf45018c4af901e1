package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"factory-ops/internal/authz"
	"factory-ops/internal/entities"
	"factory-ops/internal/events"
	"factory-ops/internal/lifecycle"
	"factory-ops/pkg/constants"
	apperrors "factory-ops/pkg/errors"
	"factory-ops/pkg/eventbus"
)

type lifecycleFixture struct {
	svc      *OrderLifecycleService
	orders   *fakeOrderRepo
	machines *fakeMachineRepo
	profiles *fakeProfileRepo
	drafts   *lifecycle.MemoryDraftStore
	bus      *eventbus.Bus
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()
	logger := zap.NewNop()
	orders := newFakeOrderRepo()
	machines := newFakeMachineRepo()
	profiles := &fakeProfileRepo{}
	drafts := lifecycle.NewMemoryDraftStore()
	bus := eventbus.New(logger)

	svc := NewOrderLifecycleService(
		drafts,
		&fakeTxManager{orders: orders},
		orders,
		&fakeTrackerRepo{orders: orders},
		&fakeStatusRepo{statuses: orders.statuses},
		profiles,
		machines,
		authz.NewGatekeeper(),
		bus,
		logger,
	)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }

	return &lifecycleFixture{svc: svc, orders: orders, machines: machines, profiles: profiles, drafts: drafts, bus: bus}
}

func id(v uint64) *uint64 { return &v }

var (
	deptUser    = entities.Profile{ID: 7, Name: "Dept User", Permission: constants.PermissionDepartment}
	officeUser  = entities.Profile{ID: 8, Name: "Office User", Permission: constants.PermissionOffice}
	factoryUser = entities.Profile{ID: 9, Name: "Factory User", Permission: constants.PermissionFactory}
	adminUser   = entities.Profile{ID: 1, Name: "Admin", Permission: constants.PermissionAdmin}
)

func storageHeader() lifecycle.Header {
	return lifecycle.Header{FactoryID: id(1), DepartmentID: id(2), OrderType: constants.OrderTypeStorage, Description: "test"}
}

func (f *lifecycleFixture) draftWithParts(t *testing.T, actor entities.Profile, header lifecycle.Header, selectors ...lifecycle.PartSelector) string {
	t.Helper()
	ctx := context.Background()

	d, err := f.svc.StartDraft(ctx, actor)
	require.NoError(t, err)
	_, err = f.svc.UpdateHeader(ctx, actor, d.ID, header)
	require.NoError(t, err)
	_, err = f.svc.ConfirmHeader(ctx, actor, d.ID)
	require.NoError(t, err)
	for _, sel := range selectors {
		_, err = f.svc.AddPart(ctx, actor, d.ID, sel)
		require.NoError(t, err)
	}
	return d.ID
}

func TestCommit_WritesHeaderLinesAndHistoryAtomically(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	committed := make(chan events.OrderCommittedEvent, 1)
	f.bus.Subscribe(events.OrderCommittedName, func(_ context.Context, e eventbus.Event) error {
		committed <- e.(events.OrderCommittedEvent)
		return nil
	})

	draftID := f.draftWithParts(t, deptUser, storageHeader(),
		lifecycle.PartSelector{PartID: id(11), Qty: 2},
		lifecycle.PartSelector{PartID: id(12), Qty: 3, Note: "  проверить  "},
	)

	d, err := f.svc.Commit(ctx, deptUser, draftID)
	require.NoError(t, err)
	require.NotNil(t, d.OrderID)
	assert.Equal(t, lifecycle.StateDone, d.State)
	assert.Empty(t, d.Parts)

	orderID := *d.OrderID
	order := f.orders.orders[orderID]
	assert.Equal(t, "test", order.OrderNote)
	assert.Equal(t, uint64(2), order.DepartmentID)
	assert.Equal(t, constants.InitialStatusID, order.CurrentStatusID)
	assert.Nil(t, order.MachineID)
	assert.Len(t, f.orders.parts[orderID], 2)
	require.Len(t, f.orders.tracker, 1)
	assert.Equal(t, deptUser.ID, f.orders.tracker[0].ProfileID)
	assert.Equal(t, []uint64{deptUser.ID}, f.profiles.ensured)

	_, err = f.drafts.Load(ctx, draftID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	select {
	case e := <-committed:
		assert.Equal(t, orderID, e.OrderID)
		assert.Equal(t, 2, e.PartsCount)
	case <-time.After(time.Second):
		t.Fatal("событие OrderCommitted не опубликовано")
	}
}

func TestCommit_RoundTripThroughQueryService(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	draftID := f.draftWithParts(t, deptUser, storageHeader(),
		lifecycle.PartSelector{PartID: id(11), Qty: 1},
		lifecycle.PartSelector{PartID: id(12), Qty: 1},
		lifecycle.PartSelector{PartID: id(13), Qty: 1},
	)
	d, err := f.svc.Commit(ctx, deptUser, draftID)
	require.NoError(t, err)

	query := NewOrderQueryService(f.orders, &fakeTrackerRepo{orders: f.orders}, authz.NewGatekeeper(), zap.NewNop())
	details, err := query.FindOrder(ctx, deptUser, *d.OrderID)
	require.NoError(t, err)

	assert.Equal(t, "test", details.OrderNote)
	assert.Equal(t, uint64(2), details.Department.ID)
	assert.Equal(t, constants.StatusPending, details.Status.Name)
	assert.Len(t, details.Parts, 3)
	assert.Len(t, details.History, 1)
	assert.True(t, details.CanManage)
	assert.False(t, details.CanDelete)
}

func TestCommit_FailureRollsBackAndKeepsLines(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	f.orders.failParts = errors.New("нарушение ограничения")

	draftID := f.draftWithParts(t, deptUser, storageHeader(), lifecycle.PartSelector{PartID: id(11), Qty: 2})

	_, err := f.svc.Commit(ctx, deptUser, draftID)
	require.Error(t, err)

	assert.Empty(t, f.orders.orders)
	assert.Empty(t, f.orders.tracker)

	d, err := f.svc.GetDraft(ctx, deptUser, draftID)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StateAwaitingParts, d.State)
	assert.Len(t, d.Parts, 1)
	assert.NotEmpty(t, d.LastError)

	f.orders.failParts = nil
	d, err = f.svc.Commit(ctx, deptUser, draftID)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StateDone, d.State)
}

func TestCommit_ZeroLinesIsRejected(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	draftID := f.draftWithParts(t, deptUser, storageHeader())

	_, err := f.svc.Commit(ctx, deptUser, draftID)
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidInput(err))
	assert.ErrorIs(t, err, lifecycle.ErrNoParts)

	d, err := f.svc.GetDraft(ctx, deptUser, draftID)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StateAwaitingParts, d.State)
	assert.Empty(t, f.orders.orders)
}

func TestCommit_MachineLineMustBelongToFactory(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	header := lifecycle.Header{FactoryID: id(1), DepartmentID: id(2), OrderType: constants.OrderTypeMachine, Description: "loom"}
	draftID := f.draftWithParts(t, deptUser, header,
		lifecycle.PartSelector{PartID: id(11), Qty: 1, FactorySectionID: id(10), MachineID: id(100)})

	_, err := f.svc.Commit(ctx, deptUser, draftID)
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidInput(err))
	assert.Empty(t, f.orders.orders)

	f.machines.locations[[3]uint64{1, 10, 100}] = true
	d, err := f.svc.Commit(ctx, deptUser, draftID)
	require.NoError(t, err)

	order := f.orders.orders[*d.OrderID]
	require.NotNil(t, order.MachineID)
	assert.Equal(t, uint64(100), *order.MachineID)
	assert.Equal(t, uint64(10), *order.FactorySectionID)
}

func TestAddPart_IncompleteMachineLineIsInvalidInput(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	header := lifecycle.Header{FactoryID: id(1), DepartmentID: id(2), OrderType: constants.OrderTypeMachine, Description: "loom"}
	draftID := f.draftWithParts(t, deptUser, header)

	_, err := f.svc.AddPart(ctx, deptUser, draftID, lifecycle.PartSelector{PartID: id(11), Qty: 5})
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidInput(err))
	assert.ErrorIs(t, err, lifecycle.ErrPartIncomplete)
}

func TestDraft_OtherActorGetsNotFound(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	d, err := f.svc.StartDraft(ctx, deptUser)
	require.NoError(t, err)

	_, err = f.svc.GetDraft(ctx, officeUser, d.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.svc.UpdateHeader(ctx, officeUser, d.ID, storageHeader())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCancelDraft_RemovesDraftWithoutSideEffects(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	draftID := f.draftWithParts(t, deptUser, storageHeader(), lifecycle.PartSelector{PartID: id(11), Qty: 1})
	require.NoError(t, f.svc.CancelDraft(ctx, deptUser, draftID))

	_, err := f.svc.GetDraft(ctx, deptUser, draftID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Empty(t, f.orders.orders)
	assert.Empty(t, f.profiles.ensured)
}

func commitStorageOrder(t *testing.T, f *lifecycleFixture) uint64 {
	t.Helper()
	draftID := f.draftWithParts(t, deptUser, storageHeader(), lifecycle.PartSelector{PartID: id(11), Qty: 1})
	d, err := f.svc.Commit(context.Background(), deptUser, draftID)
	require.NoError(t, err)
	return *d.OrderID
}

func TestTransitionOrder_FollowsManagePolicy(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	orderID := commitStorageOrder(t, f)

	changed := make(chan events.OrderStatusChangedEvent, 4)
	f.bus.Subscribe(events.OrderStatusChangedName, func(_ context.Context, e eventbus.Event) error {
		changed <- e.(events.OrderStatusChangedEvent)
		return nil
	})

	// Pending: только admin или department.
	err := f.svc.TransitionOrder(ctx, officeUser, orderID, 2)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	require.NoError(t, f.svc.TransitionOrder(ctx, deptUser, orderID, 2))
	assert.Equal(t, uint64(2), f.orders.orders[orderID].CurrentStatusID)

	// Approved: office.
	err = f.svc.TransitionOrder(ctx, factoryUser, orderID, 3)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	require.NoError(t, f.svc.TransitionOrder(ctx, officeUser, orderID, 3))
	require.NoError(t, f.svc.TransitionOrder(ctx, officeUser, orderID, 4))

	// Parts Sent: factory.
	require.NoError(t, f.svc.TransitionOrder(ctx, factoryUser, orderID, 5))

	// Parts Received - финальный статус.
	err = f.svc.TransitionOrder(ctx, adminUser, orderID, 6)
	assert.ErrorIs(t, err, apperrors.ErrOrderCompleted)

	assert.Len(t, f.orders.tracker, 5)

	select {
	case e := <-changed:
		assert.Equal(t, orderID, e.OrderID)
		assert.Equal(t, deptUser.ID, e.CreatorID)
	case <-time.After(time.Second):
		t.Fatal("событие OrderStatusChanged не опубликовано")
	}
}

func TestTransitionOrder_UnknownStatusIsInvalidInput(t *testing.T) {
	f := newLifecycleFixture(t)
	orderID := commitStorageOrder(t, f)

	err := f.svc.TransitionOrder(context.Background(), adminUser, orderID, 99)
	assert.True(t, apperrors.IsInvalidInput(err))
}

func TestDeleteOrder_AdminOnly(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	orderID := commitStorageOrder(t, f)

	err := f.svc.DeleteOrder(ctx, deptUser, orderID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	require.NoError(t, f.svc.DeleteOrder(ctx, adminUser, orderID))
	assert.Equal(t, []uint64{orderID}, f.orders.deleted)

	err = f.svc.DeleteOrder(ctx, adminUser, orderID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// deleteFailingStore не умеет удалять черновики, как Redis при обрыве соединения.
type deleteFailingStore struct {
	lifecycle.DraftStore
}

func (s deleteFailingStore) Delete(_ context.Context, _ string) error {
	return errors.New("redis: connection refused")
}

func TestCommit_FailedDraftDeleteDoesNotAllowSecondOrder(t *testing.T) {
	f := newLifecycleFixture(t)
	f.svc.drafts = deleteFailingStore{DraftStore: f.drafts}
	ctx := context.Background()

	draftID := f.draftWithParts(t, deptUser, storageHeader(), lifecycle.PartSelector{PartID: id(11), Qty: 1})

	d, err := f.svc.Commit(ctx, deptUser, draftID)
	require.NoError(t, err)
	require.NotNil(t, d.OrderID)

	stored, err := f.drafts.Load(ctx, draftID)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StateDone, stored.State)
	assert.Empty(t, stored.Parts)

	_, err = f.svc.Commit(ctx, deptUser, draftID)
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
	assert.Len(t, f.orders.orders, 1)
}

func TestDraft_ExpiredDraftReleasesItsLock(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	d, err := f.svc.StartDraft(ctx, deptUser)
	require.NoError(t, err)
	_, err = f.svc.UpdateHeader(ctx, deptUser, d.ID, storageHeader())
	require.NoError(t, err)
	_, held := f.svc.locks.Load(d.ID)
	require.True(t, held)

	// Истечение TTL: хранилище забыло черновик.
	require.NoError(t, f.drafts.Delete(ctx, d.ID))

	_, err = f.svc.ConfirmHeader(ctx, deptUser, d.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, held = f.svc.locks.Load(d.ID)
	assert.False(t, held)
}
