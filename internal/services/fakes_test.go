package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"factory-ops/internal/dto"
	"factory-ops/internal/entities"
	"factory-ops/internal/filters"
	"factory-ops/internal/repositories"
	apperrors "factory-ops/pkg/errors"
)

// fakeTxManager выполняет fn без настоящей транзакции. При ошибке откатывает изменения fakeOrderRepo.
type fakeTxManager struct {
	orders *fakeOrderRepo
}

func (m *fakeTxManager) RunInTransaction(_ context.Context, fn func(tx pgx.Tx) error) error {
	var snapshot fakeOrderState
	if m.orders != nil {
		snapshot = m.orders.snapshot()
	}
	err := fn(nil)
	if err != nil && m.orders != nil {
		m.orders.restore(snapshot)
	}
	return err
}

type fakeOrderState struct {
	orders  map[uint64]entities.Order
	parts   map[uint64][]entities.OrderedPart
	tracker []entities.StatusTracker
	nextID  uint64
}

type fakeOrderRepo struct {
	mu sync.Mutex
	fakeOrderState

	statuses    map[uint64]string
	failParts   error
	listResult  []dto.OrderDTO
	listTotal   uint64
	listErr     error
	lastFilter  filters.OrderFilter
	lastPage    int
	lastLimit   int
	running     map[uint64][]dto.OrderDTO
	deleted     []uint64
	listCalls   int
	findDelay   time.Duration
	findResults map[uint64]*dto.OrderDTO
	exportLimit int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		fakeOrderState: fakeOrderState{
			orders: make(map[uint64]entities.Order),
			parts:  make(map[uint64][]entities.OrderedPart),
		},
		statuses: map[uint64]string{
			1: "Pending", 2: "Approved", 3: "Processing", 4: "Parts Sent", 5: "Parts Received", 6: "Rejected",
		},
		running:     make(map[uint64][]dto.OrderDTO),
		findResults: make(map[uint64]*dto.OrderDTO),
	}
}

func (r *fakeOrderRepo) snapshot() fakeOrderState {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := fakeOrderState{
		orders:  make(map[uint64]entities.Order, len(r.orders)),
		parts:   make(map[uint64][]entities.OrderedPart, len(r.parts)),
		tracker: append([]entities.StatusTracker(nil), r.tracker...),
		nextID:  r.nextID,
	}
	for k, v := range r.orders {
		s.orders[k] = v
	}
	for k, v := range r.parts {
		s.parts[k] = append([]entities.OrderedPart(nil), v...)
	}
	return s
}

func (r *fakeOrderRepo) restore(s fakeOrderState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fakeOrderState = s
}

func (r *fakeOrderRepo) GetOrders(_ context.Context, filter filters.OrderFilter, page, limit int) ([]dto.OrderDTO, uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	r.lastFilter, r.lastPage, r.lastLimit = filter, page, limit
	return r.listResult, r.listTotal, r.listErr
}

func (r *fakeOrderRepo) ExportOrders(_ context.Context, filter filters.OrderFilter, limit int) ([]dto.OrderDTO, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFilter, r.exportLimit = filter, limit
	return r.listResult, r.listErr
}

func (r *fakeOrderRepo) FindOrder(_ context.Context, id uint64) (*dto.OrderDTO, error) {
	if r.findDelay > 0 {
		time.Sleep(r.findDelay)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.findResults[id]; ok {
		c := *o
		return &c, nil
	}
	o, ok := r.orders[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &dto.OrderDTO{
		ID:         o.ID,
		OrderNote:  o.OrderNote,
		OrderType:  o.OrderType,
		Department: dto.ShortDTO{ID: o.DepartmentID},
		Status:     dto.ShortDTO{ID: o.CurrentStatusID, Name: r.statuses[o.CurrentStatusID]},
		Creator:    dto.ShortProfileDTO{ID: o.CreatedByUserID},
	}, nil
}

func (r *fakeOrderRepo) FindOrderParts(_ context.Context, orderID uint64) ([]dto.OrderedPartDTO, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]dto.OrderedPartDTO, 0)
	for i, p := range r.parts[orderID] {
		out = append(out, dto.OrderedPartDTO{ID: uint64(i + 1), OrderID: orderID, Part: dto.ShortDTO{ID: p.PartID}, Qty: p.Qty})
	}
	return out, nil
}

func (r *fakeOrderRepo) RunningOrdersByMachine(_ context.Context, machineID uint64) ([]dto.OrderDTO, error) {
	return r.running[machineID], nil
}

func (r *fakeOrderRepo) LinkedOrderedParts(_ context.Context, _ uint64, _ filters.OrderFilter) ([]dto.LinkedOrderedPartDTO, error) {
	return []dto.LinkedOrderedPartDTO{}, nil
}

func (r *fakeOrderRepo) CreateOrderInTx(_ context.Context, _ pgx.Tx, order entities.Order) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	order.ID = r.nextID
	r.orders[order.ID] = order
	return order.ID, nil
}

func (r *fakeOrderRepo) CreateOrderPartsInTx(_ context.Context, _ pgx.Tx, orderID uint64, parts []entities.OrderedPart) error {
	if r.failParts != nil {
		return r.failParts
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parts[orderID] = append(r.parts[orderID], parts...)
	return nil
}

func (r *fakeOrderRepo) FindOrderForUpdateInTx(_ context.Context, _ pgx.Tx, id uint64) (*entities.Order, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, "", apperrors.ErrNotFound
	}
	return &o, r.statuses[o.CurrentStatusID], nil
}

func (r *fakeOrderRepo) UpdateStatusInTx(_ context.Context, _ pgx.Tx, orderID, statusID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return apperrors.ErrNotFound
	}
	o.CurrentStatusID = statusID
	r.orders[orderID] = o
	return nil
}

func (r *fakeOrderRepo) DeleteOrder(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.orders, id)
	delete(r.parts, id)
	r.deleted = append(r.deleted, id)
	return nil
}

// fakeTrackerRepo пишет историю в fakeOrderRepo, чтобы откат транзакции затрагивал и её.
type fakeTrackerRepo struct {
	orders *fakeOrderRepo
}

func (r *fakeTrackerRepo) CreateInTx(_ context.Context, _ pgx.Tx, orderID, statusID, profileID uint64) error {
	r.orders.mu.Lock()
	defer r.orders.mu.Unlock()
	r.orders.tracker = append(r.orders.tracker, entities.StatusTracker{
		ID: uint64(len(r.orders.tracker) + 1), OrderID: orderID, StatusID: statusID, ProfileID: profileID,
	})
	return nil
}

func (r *fakeTrackerRepo) ListByOrder(_ context.Context, orderID uint64) ([]dto.StatusTrackerDTO, error) {
	r.orders.mu.Lock()
	defer r.orders.mu.Unlock()
	out := make([]dto.StatusTrackerDTO, 0)
	for _, t := range r.orders.tracker {
		if t.OrderID == orderID {
			out = append(out, dto.StatusTrackerDTO{ID: t.ID, OrderID: orderID, Status: dto.ShortDTO{ID: t.StatusID}, Profile: dto.ShortProfileDTO{ID: t.ProfileID}})
		}
	}
	return out, nil
}

type fakeStatusRepo struct {
	statuses map[uint64]string
}

func (r *fakeStatusRepo) GetStatuses(_ context.Context) ([]entities.Status, error) {
	out := make([]entities.Status, 0, len(r.statuses))
	for id := uint64(1); id <= uint64(len(r.statuses)); id++ {
		out = append(out, entities.Status{ID: id, Name: r.statuses[id]})
	}
	return out, nil
}

func (r *fakeStatusRepo) FindStatus(_ context.Context, id uint64) (*entities.Status, error) {
	name, ok := r.statuses[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &entities.Status{ID: id, Name: name}, nil
}

func (r *fakeStatusRepo) FindByName(_ context.Context, name string) (*entities.Status, error) {
	for id, n := range r.statuses {
		if n == name {
			return &entities.Status{ID: id, Name: n}, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

type fakeProfileRepo struct {
	mu      sync.Mutex
	ensured []uint64
}

func (r *fakeProfileRepo) EnsureProfileInTx(_ context.Context, _ pgx.Tx, p entities.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensured = append(r.ensured, p.ID)
	return nil
}

type fakeMachineRepo struct {
	mu        sync.Mutex
	machines  map[uint64]*dto.MachineDTO
	parts     map[uint64][]dto.MachinePartDTO
	locations map[[3]uint64]bool
	lastList  repositories.MachineFilter
	setCalls  int
}

func newFakeMachineRepo() *fakeMachineRepo {
	return &fakeMachineRepo{
		machines:  make(map[uint64]*dto.MachineDTO),
		parts:     make(map[uint64][]dto.MachinePartDTO),
		locations: make(map[[3]uint64]bool),
	}
}

func (r *fakeMachineRepo) GetMachines(_ context.Context, filter repositories.MachineFilter, _, _ int) ([]dto.MachineDTO, uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastList = filter
	out := make([]dto.MachineDTO, 0)
	for _, m := range r.machines {
		out = append(out, *m)
	}
	return out, uint64(len(out)), nil
}

func (r *fakeMachineRepo) FindMachine(_ context.Context, id uint64) (*dto.MachineDTO, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.machines[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	c := *m
	return &c, nil
}

func (r *fakeMachineRepo) MachinesBySection(_ context.Context, sectionID uint64) ([]entities.Machine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entities.Machine, 0)
	for _, m := range r.machines {
		if m.FactorySection.ID == sectionID {
			out = append(out, entities.Machine{ID: m.ID, Name: m.Name, IsRunning: m.IsRunning, FactorySectionID: sectionID})
		}
	}
	return out, nil
}

func (r *fakeMachineRepo) MachineParts(_ context.Context, machineID uint64, _ *uint64, _ string) ([]dto.MachinePartDTO, error) {
	return r.parts[machineID], nil
}

func (r *fakeMachineRepo) SetRunning(_ context.Context, id uint64, running bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.machines[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	r.setCalls++
	m.IsRunning = running
	return nil
}

func (r *fakeMachineRepo) CountByRunning(_ context.Context) (uint64, uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var running, stopped uint64
	for _, m := range r.machines {
		if m.IsRunning {
			running++
		} else {
			stopped++
		}
	}
	return running, stopped, nil
}

func (r *fakeMachineRepo) CheckLocationInTx(_ context.Context, _ pgx.Tx, factoryID, sectionID, machineID uint64) (bool, error) {
	return r.locations[[3]uint64{factoryID, sectionID, machineID}], nil
}

type fakeCache struct {
	mu     sync.Mutex
	values map[string]string
	err    error
	gets   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.err != nil {
		return "", c.err
	}
	v, ok := c.values[key]
	if !ok {
		return "", repositories.ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	switch v := value.(type) {
	case []byte:
		c.values[key] = string(v)
	case string:
		c.values[key] = v
	default:
		return errors.New("неподдерживаемый тип значения")
	}
	return nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.values, k)
	}
	return nil
}

type fakeFactoryRepo struct {
	calls int
}

func (r *fakeFactoryRepo) GetFactories(_ context.Context) ([]entities.Factory, error) {
	r.calls++
	return []entities.Factory{{ID: 1, Name: "Factory A", Abbreviation: "FA"}}, nil
}

func (r *fakeFactoryRepo) GetSections(_ context.Context, factoryID uint64) ([]entities.FactorySection, error) {
	r.calls++
	return []entities.FactorySection{{ID: 10, Name: "Weaving", FactoryID: factoryID}}, nil
}

func (r *fakeFactoryRepo) FindSection(_ context.Context, id uint64) (*entities.FactorySection, error) {
	return &entities.FactorySection{ID: id}, nil
}

type fakeDepartmentRepo struct{}

func (fakeDepartmentRepo) GetDepartments(_ context.Context) ([]entities.Department, error) {
	return []entities.Department{{ID: 2, Name: "Maintenance"}}, nil
}

type fakePartRepo struct {
	searches []string
}

func (r *fakePartRepo) GetParts(_ context.Context, search string) ([]entities.Part, error) {
	r.searches = append(r.searches, search)
	return []entities.Part{{ID: 1, Name: "Bearing"}}, nil
}

func (r *fakePartRepo) FindPart(_ context.Context, id uint64) (*entities.Part, error) {
	return &entities.Part{ID: id}, nil
}
