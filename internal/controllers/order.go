package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"factory-ops/internal/dto"
	"factory-ops/internal/filters"
	"factory-ops/internal/services"
	"factory-ops/pkg/api"
	apperrors "factory-ops/pkg/errors"
	"factory-ops/pkg/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type OrderController struct {
	queryService     services.OrderQueryServiceInterface
	lifecycleService services.OrderLifecycleServiceInterface
	exportService    services.OrderExportServiceInterface
	location         *time.Location
	defaultLimit     int
	logger           *zap.Logger
}

func NewOrderController(
	queryService services.OrderQueryServiceInterface,
	lifecycleService services.OrderLifecycleServiceInterface,
	exportService services.OrderExportServiceInterface,
	location *time.Location,
	defaultLimit int,
	logger *zap.Logger,
) *OrderController {
	return &OrderController{
		queryService:     queryService,
		lifecycleService: lifecycleService,
		exportService:    exportService,
		location:         location,
		defaultLimit:     defaultLimit,
		logger:           logger,
	}
}

func (c *OrderController) GetOrders(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	filter := filters.FromQuery(ctx.QueryParams(), c.location)
	page, limit := utils.ParsePaginationParams(ctx.QueryParams(), c.defaultLimit)

	res, err := c.queryService.Query(reqCtx, filter, page, limit)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return api.SuccessList(ctx, "Заявки успешно получены", res.Rows, res.TotalCount, res.Page, res.PageSize)
}

func (c *OrderController) ExportOrders(ctx echo.Context) error {
	filter := filters.FromQuery(ctx.QueryParams(), c.location)

	buf, filename, err := c.exportService.Export(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (c *OrderController) FindOrder(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	actor, err := utils.GetActorFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.queryService.FindOrder(reqCtx, actor, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Заявка успешно получена", http.StatusOK)
}

// UpdateStatus меняет статус и возвращает свежую карточку, чтобы фронт сразу получил новый can_manage.
func (c *OrderController) UpdateStatus(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	actor, err := utils.GetActorFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var body dto.TransitionOrderDTO
	if err := ctx.Bind(&body); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&body); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.lifecycleService.TransitionOrder(reqCtx, actor, id, body.StatusID); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.queryService.FindOrder(reqCtx, actor, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Статус заявки обновлён", http.StatusOK)
}

func (c *OrderController) DeleteOrder(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	actor, err := utils.GetActorFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.lifecycleService.DeleteOrder(reqCtx, actor, id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Заявка удалена", http.StatusOK)
}

// GetPartOrders - строки заявок, в которых заказывалась деталь, с учётом фильтра списка.
func (c *OrderController) GetPartOrders(ctx echo.Context) error {
	partID, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	filter := filters.FromQuery(ctx.QueryParams(), c.location)
	res, err := c.queryService.LinkedOrderedParts(ctx.Request().Context(), partID, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Заявки по детали получены", http.StatusOK)
}
