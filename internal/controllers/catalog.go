package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"factory-ops/internal/services"
	"factory-ops/pkg/utils"
)

// CatalogController отдаёт справочники для выпадающих списков.
type CatalogController struct {
	catalogService services.CatalogServiceInterface
	logger         *zap.Logger
}

func NewCatalogController(catalogService services.CatalogServiceInterface, logger *zap.Logger) *CatalogController {
	return &CatalogController{catalogService: catalogService, logger: logger}
}

func (c *CatalogController) GetCatalog(ctx echo.Context) error {
	res, err := c.catalogService.Catalog(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Справочники получены", http.StatusOK)
}

func (c *CatalogController) GetFactories(ctx echo.Context) error {
	res, err := c.catalogService.Factories(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Фабрики получены", http.StatusOK)
}

func (c *CatalogController) GetSections(ctx echo.Context) error {
	factoryID, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.catalogService.Sections(ctx.Request().Context(), factoryID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Участки получены", http.StatusOK)
}

func (c *CatalogController) GetSectionMachines(ctx echo.Context) error {
	sectionID, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.catalogService.MachinesBySection(ctx.Request().Context(), sectionID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Станки участка получены", http.StatusOK)
}

func (c *CatalogController) GetDepartments(ctx echo.Context) error {
	res, err := c.catalogService.Departments(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Отделы получены", http.StatusOK)
}

func (c *CatalogController) GetStatuses(ctx echo.Context) error {
	res, err := c.catalogService.Statuses(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Статусы получены", http.StatusOK)
}

func (c *CatalogController) GetParts(ctx echo.Context) error {
	res, err := c.catalogService.Parts(ctx.Request().Context(), ctx.QueryParam("search"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Детали получены", http.StatusOK)
}
