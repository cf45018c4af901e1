package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"factory-ops/internal/dto"
	"factory-ops/internal/entities"
	"factory-ops/internal/filters"
	"factory-ops/internal/lifecycle"
	"factory-ops/pkg/constants"
	"factory-ops/pkg/customvalidator"
	apperrors "factory-ops/pkg/errors"
	"factory-ops/pkg/utils"
)

var testActor = entities.Profile{ID: 7, Name: "Dept User", Permission: constants.PermissionDepartment}

type fakeQueryService struct {
	lastFilter filters.OrderFilter
	lastPage   int
	lastLimit  int
	findErr    error
}

func (f *fakeQueryService) Query(_ context.Context, filter filters.OrderFilter, page, pageSize int) (*dto.OrderPage, error) {
	f.lastFilter, f.lastPage, f.lastLimit = filter, page, pageSize
	return &dto.OrderPage{Rows: []dto.OrderDTO{{ID: 15}}, TotalCount: 11, Page: page, PageSize: pageSize, TotalPages: 3}, nil
}

func (f *fakeQueryService) FindOrder(_ context.Context, _ entities.Profile, id uint64) (*dto.OrderDetailsDTO, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return &dto.OrderDetailsDTO{OrderDTO: dto.OrderDTO{ID: id}, CanManage: true}, nil
}

func (f *fakeQueryService) LinkedOrderedParts(_ context.Context, _ uint64, _ filters.OrderFilter) ([]dto.LinkedOrderedPartDTO, error) {
	return []dto.LinkedOrderedPartDTO{}, nil
}

type fakeLifecycleService struct {
	transitionErr error
	commitErr     error
	transitioned  []uint64
}

func (f *fakeLifecycleService) StartDraft(_ context.Context, actor entities.Profile) (*lifecycle.Draft, error) {
	return lifecycle.Start(actor.ID, time.Now()), nil
}

func (f *fakeLifecycleService) GetDraft(_ context.Context, actor entities.Profile, _ string) (*lifecycle.Draft, error) {
	return lifecycle.Start(actor.ID, time.Now()), nil
}

func (f *fakeLifecycleService) UpdateHeader(_ context.Context, actor entities.Profile, _ string, header lifecycle.Header) (*lifecycle.Draft, error) {
	d := lifecycle.Start(actor.ID, time.Now())
	d.Header = header
	return d, nil
}

func (f *fakeLifecycleService) ConfirmHeader(_ context.Context, _ entities.Profile, _ string) (*lifecycle.Draft, error) {
	return nil, apperrors.WrapInvalidInput(lifecycle.ErrHeaderIncomplete)
}

func (f *fakeLifecycleService) AddPart(_ context.Context, actor entities.Profile, _ string, _ lifecycle.PartSelector) (*lifecycle.Draft, error) {
	return lifecycle.Start(actor.ID, time.Now()), nil
}

func (f *fakeLifecycleService) RemovePart(_ context.Context, actor entities.Profile, _ string, _ int) (*lifecycle.Draft, error) {
	return lifecycle.Start(actor.ID, time.Now()), nil
}

func (f *fakeLifecycleService) Commit(_ context.Context, actor entities.Profile, _ string) (*lifecycle.Draft, error) {
	if f.commitErr != nil {
		return nil, f.commitErr
	}
	d := lifecycle.Start(actor.ID, time.Now())
	orderID := uint64(15)
	d.State = lifecycle.StateDone
	d.OrderID = &orderID
	return d, nil
}

func (f *fakeLifecycleService) CancelDraft(_ context.Context, _ entities.Profile, _ string) error {
	return nil
}

func (f *fakeLifecycleService) TransitionOrder(_ context.Context, _ entities.Profile, orderID, _ uint64) error {
	if f.transitionErr != nil {
		return f.transitionErr
	}
	f.transitioned = append(f.transitioned, orderID)
	return nil
}

func (f *fakeLifecycleService) DeleteOrder(_ context.Context, _ entities.Profile, _ uint64) error {
	return apperrors.ErrForbidden
}

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	v := validator.New()
	require.NoError(t, customvalidator.RegisterCustomValidations(v))
	e.Validator = utils.NewValidator(v)
	return e
}

// serve выполняет запрос через маршрут с подставленным актором.
func serve(e *echo.Echo, method, path, route string, handler echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	withActor := func(c echo.Context) error {
		c.SetRequest(c.Request().WithContext(utils.WithActor(c.Request().Context(), testActor)))
		return handler(c)
	}
	e.Add(method, route, withActor)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func newOrderController(q *fakeQueryService, l *fakeLifecycleService) *OrderController {
	return NewOrderController(q, l, nil, time.UTC, 5, zap.NewNop())
}

func TestGetOrders_ParsesFilterAndReturnsListEnvelope(t *testing.T) {
	q := &fakeQueryService{}
	ctrl := newOrderController(q, &fakeLifecycleService{})

	rec := serve(newTestEcho(t), http.MethodGet,
		"/orders?factory_id=1&factory_section_id=10&status_id=all&page=2&limit=500", "/orders", ctrl.GetOrders, "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, q.lastFilter.FactoryID)
	assert.Equal(t, uint64(1), *q.lastFilter.FactoryID)
	require.NotNil(t, q.lastFilter.FactorySectionID)
	assert.Nil(t, q.lastFilter.StatusID)
	assert.Equal(t, 2, q.lastPage)
	assert.Equal(t, utils.MaxLimit, q.lastLimit)

	body := decode(t, rec)
	assert.Equal(t, true, body["status"])
	list := body["body"].(map[string]interface{})
	assert.Len(t, list["list"], 1)
	pagination := list["pagination"].(map[string]interface{})
	assert.Equal(t, float64(11), pagination["total_count"])
}

func TestFindOrder_NotFoundIs404(t *testing.T) {
	q := &fakeQueryService{findErr: apperrors.ErrNotFound}
	ctrl := newOrderController(q, &fakeLifecycleService{})

	rec := serve(newTestEcho(t), http.MethodGet, "/orders/42", "/orders/:id", ctrl.FindOrder, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFindOrder_BadIDIs400(t *testing.T) {
	ctrl := newOrderController(&fakeQueryService{}, &fakeLifecycleService{})

	rec := serve(newTestEcho(t), http.MethodGet, "/orders/abc", "/orders/:id", ctrl.FindOrder, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatus(t *testing.T) {
	t.Run("missing status is a validation error", func(t *testing.T) {
		l := &fakeLifecycleService{}
		ctrl := newOrderController(&fakeQueryService{}, l)

		rec := serve(newTestEcho(t), http.MethodPut, "/orders/42/status", "/orders/:id/status", ctrl.UpdateStatus, `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, l.transitioned)
	})

	t.Run("gate refusal is 403", func(t *testing.T) {
		l := &fakeLifecycleService{transitionErr: apperrors.ErrForbidden}
		ctrl := newOrderController(&fakeQueryService{}, l)

		rec := serve(newTestEcho(t), http.MethodPut, "/orders/42/status", "/orders/:id/status", ctrl.UpdateStatus, `{"status_id":3}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("final status is 409", func(t *testing.T) {
		l := &fakeLifecycleService{transitionErr: apperrors.ErrOrderCompleted}
		ctrl := newOrderController(&fakeQueryService{}, l)

		rec := serve(newTestEcho(t), http.MethodPut, "/orders/42/status", "/orders/:id/status", ctrl.UpdateStatus, `{"status_id":3}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("success returns fresh details", func(t *testing.T) {
		l := &fakeLifecycleService{}
		ctrl := newOrderController(&fakeQueryService{}, l)

		rec := serve(newTestEcho(t), http.MethodPut, "/orders/42/status", "/orders/:id/status", ctrl.UpdateStatus, `{"status_id":2}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []uint64{42}, l.transitioned)

		details := decode(t, rec)["body"].(map[string]interface{})
		assert.Equal(t, float64(42), details["id"])
		assert.Equal(t, true, details["can_manage"])
	})
}

func TestDeleteOrder_NonAdminIs403(t *testing.T) {
	ctrl := newOrderController(&fakeQueryService{}, &fakeLifecycleService{})

	rec := serve(newTestEcho(t), http.MethodDelete, "/orders/42", "/orders/:id", ctrl.DeleteOrder, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDraft_GuardFailureIs400(t *testing.T) {
	ctrl := NewOrderDraftController(&fakeLifecycleService{}, zap.NewNop())

	rec := serve(newTestEcho(t), http.MethodPost, "/order-drafts/x/confirm", "/order-drafts/:id/confirm", ctrl.ConfirmHeader, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, decode(t, rec)["status"])
}

func TestDraft_HeaderRejectsUnknownOrderType(t *testing.T) {
	ctrl := NewOrderDraftController(&fakeLifecycleService{}, zap.NewNop())

	rec := serve(newTestEcho(t), http.MethodPut, "/order-drafts/x/header", "/order-drafts/:id/header", ctrl.UpdateHeader,
		`{"factory_id":1,"department_id":2,"order_type":"Teleport","description":"test"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDraft_HeaderReportsGuards(t *testing.T) {
	ctrl := NewOrderDraftController(&fakeLifecycleService{}, zap.NewNop())

	rec := serve(newTestEcho(t), http.MethodPut, "/order-drafts/x/header", "/order-drafts/:id/header", ctrl.UpdateHeader,
		`{"factory_id":1,"department_id":2,"order_type":"Storage","description":"test"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)["body"].(map[string]interface{})
	assert.Equal(t, true, body["is_order_form_complete"])
	assert.Equal(t, false, body["is_add_part_form_complete"])
}

func TestDraft_BadLineIndexIs400(t *testing.T) {
	ctrl := NewOrderDraftController(&fakeLifecycleService{}, zap.NewNop())

	rec := serve(newTestEcho(t), http.MethodDelete, "/order-drafts/x/parts/-1", "/order-drafts/:id/parts/:index", ctrl.RemovePart, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDraft_CommitReturnsCreated(t *testing.T) {
	ctrl := NewOrderDraftController(&fakeLifecycleService{}, zap.NewNop())

	rec := serve(newTestEcho(t), http.MethodPost, "/order-drafts/x/commit", "/order-drafts/:id/commit", ctrl.Commit, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decode(t, rec)["body"].(map[string]interface{})
	assert.Equal(t, float64(15), body["order_id"])
	assert.Equal(t, string(lifecycle.StateDone), body["state"])
}
