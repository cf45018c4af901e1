package controllers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"factory-ops/internal/dto"
	"factory-ops/internal/filters"
	"factory-ops/internal/services"
	"factory-ops/pkg/api"
	apperrors "factory-ops/pkg/errors"
	"factory-ops/pkg/utils"
)

type MachineController struct {
	machineService services.MachineServiceInterface
	defaultLimit   int
	logger         *zap.Logger
}

func NewMachineController(machineService services.MachineServiceInterface, defaultLimit int, logger *zap.Logger) *MachineController {
	return &MachineController{machineService: machineService, defaultLimit: defaultLimit, logger: logger}
}

// GetMachines - список станков. factory_id/factory_section_id проходят через тот же редьюсер,
// что и фильтр заявок, поэтому смена фабрики сбрасывает участок.
func (c *MachineController) GetMachines(ctx echo.Context) error {
	values := ctx.QueryParams()
	page, limit := utils.ParsePaginationParams(values, c.defaultLimit)

	selection := filters.Reduce(filters.Selection{}, filters.SelectFactory(filters.ParseID(values.Get("factory_id"))))
	selection = filters.Reduce(selection, filters.SelectSection(filters.ParseID(values.Get("factory_section_id"))))

	sortRunning := strings.ToLower(values.Get("sort_running"))

	res, total, err := c.machineService.ListMachines(ctx.Request().Context(), selection.Hierarchy, sortRunning, page, limit)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessList(ctx, "Станки получены", res, total, page, limit)
}

func (c *MachineController) GetMetrics(ctx echo.Context) error {
	res, err := c.machineService.MachineMetrics(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Метрики станков получены", http.StatusOK)
}

// OpenMachine - страница станка. Станок без открытых заявок при открытии помечается работающим.
func (c *MachineController) OpenMachine(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	actor, err := utils.GetActorFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.machineService.OpenMachine(reqCtx, actor, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Станок получен", http.StatusOK)
}

func (c *MachineController) GetMachineParts(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	partID := filters.ParseID(ctx.QueryParam("part_id"))
	res, err := c.machineService.MachineParts(ctx.Request().Context(), id, partID, strings.TrimSpace(ctx.QueryParam("part_name")))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Детали станка получены", http.StatusOK)
}

func (c *MachineController) GetRunningOrders(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.machineService.RunningOrders(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Открытые заявки станка получены", http.StatusOK)
}

func (c *MachineController) SetRunning(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	actor, err := utils.GetActorFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var body dto.SetMachineRunningDTO
	if err := ctx.Bind(&body); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&body); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.machineService.SetMachineRunning(reqCtx, actor, id, *body.IsRunning)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Состояние станка обновлено", http.StatusOK)
}
