package routes

import (
	"github.com/labstack/echo/v4"

	"factory-ops/internal/controllers"
)

func runCatalogRouter(secureGroup *echo.Group, catalogCtrl *controllers.CatalogController, orderCtrl *controllers.OrderController) {
	secureGroup.GET("/catalog", catalogCtrl.GetCatalog)
	secureGroup.GET("/factories", catalogCtrl.GetFactories)
	secureGroup.GET("/factories/:id/sections", catalogCtrl.GetSections)
	secureGroup.GET("/factory-sections/:id/machines", catalogCtrl.GetSectionMachines)
	secureGroup.GET("/departments", catalogCtrl.GetDepartments)
	secureGroup.GET("/statuses", catalogCtrl.GetStatuses)
	secureGroup.GET("/parts", catalogCtrl.GetParts)
	secureGroup.GET("/parts/:id/orders", orderCtrl.GetPartOrders)
}
