package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"factory-ops/internal/dto"
	"factory-ops/internal/lifecycle"
	"factory-ops/internal/services"
	apperrors "factory-ops/pkg/errors"
	"factory-ops/pkg/utils"
)

// OrderDraftController - пошаговое создание заявки: шапка, строки, фиксация.
type OrderDraftController struct {
	lifecycleService services.OrderLifecycleServiceInterface
	logger           *zap.Logger
}

func NewOrderDraftController(lifecycleService services.OrderLifecycleServiceInterface, logger *zap.Logger) *OrderDraftController {
	return &OrderDraftController{lifecycleService: lifecycleService, logger: logger}
}

func (c *OrderDraftController) respond(ctx echo.Context, d *lifecycle.Draft, err error, message string, code int) error {
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, dto.NewDraftDTO(d), message, code)
}

func (c *OrderDraftController) StartDraft(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	actor, err := utils.GetActorFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	d, err := c.lifecycleService.StartDraft(reqCtx, actor)
	return c.respond(ctx, d, err, "Черновик заявки создан", http.StatusCreated)
}

func (c *OrderDraftController) GetDraft(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	actor, err := utils.GetActorFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	d, err := c.lifecycleService.GetDraft(reqCtx, actor, ctx.Param("id"))
	return c.respond(ctx, d, err, "Черновик получен", http.StatusOK)
}

func (c *OrderDraftController) UpdateHeader(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	actor, err := utils.GetActorFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var body dto.UpdateDraftHeaderDTO
	if err := ctx.Bind(&body); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&body); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	d, err := c.lifecycleService.UpdateHeader(reqCtx, actor, ctx.Param("id"), body.ToHeader())
	return c.respond(ctx, d, err, "Шапка заявки обновлена", http.StatusOK)
}

func (c *OrderDraftController) ConfirmHeader(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	actor, err := utils.GetActorFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	d, err := c.lifecycleService.ConfirmHeader(reqCtx, actor, ctx.Param("id"))
	return c.respond(ctx, d, err, "Шапка заявки подтверждена", http.StatusOK)
}

func (c *OrderDraftController) AddPart(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	actor, err := utils.GetActorFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var body dto.DraftPartDTO
	if err := ctx.Bind(&body); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&body); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	d, err := c.lifecycleService.AddPart(reqCtx, actor, ctx.Param("id"), body.ToSelector())
	return c.respond(ctx, d, err, "Строка добавлена", http.StatusOK)
}

func (c *OrderDraftController) RemovePart(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	actor, err := utils.GetActorFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil || index < 0 {
		return utils.ErrorResponse(ctx, apperrors.NewInvalidInputError("неверный номер строки: %q", ctx.Param("index")), c.logger)
	}

	d, err := c.lifecycleService.RemovePart(reqCtx, actor, ctx.Param("id"), index)
	return c.respond(ctx, d, err, "Строка удалена", http.StatusOK)
}

// Commit фиксирует заявку. При ошибке черновик со строками остаётся доступен для повтора.
func (c *OrderDraftController) Commit(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	actor, err := utils.GetActorFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	d, err := c.lifecycleService.Commit(reqCtx, actor, ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	c.logger.Info("Заявка создана", zap.Uint64("orderID", *d.OrderID), zap.Uint64("actorID", actor.ID))
	return utils.SuccessResponse(ctx, dto.NewDraftDTO(d), "Заявка успешно создана", http.StatusCreated)
}

func (c *OrderDraftController) CancelDraft(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	actor, err := utils.GetActorFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.lifecycleService.CancelDraft(reqCtx, actor, ctx.Param("id")); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Черновик отменён", http.StatusOK)
}
