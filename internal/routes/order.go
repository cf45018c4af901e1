package routes

import (
	"github.com/labstack/echo/v4"

	"factory-ops/internal/controllers"
	"factory-ops/pkg/constants"
	"factory-ops/pkg/middleware"
)

func runOrderRouter(secureGroup *echo.Group, orderCtrl *controllers.OrderController, authMW *middleware.AuthMiddleware) {
	orders := secureGroup.Group("/orders")
	orders.GET("", orderCtrl.GetOrders)
	orders.GET("/export", orderCtrl.ExportOrders)
	orders.GET("/:id", orderCtrl.FindOrder)
	orders.PUT("/:id/status", orderCtrl.UpdateStatus)
	orders.DELETE("/:id", orderCtrl.DeleteOrder, authMW.RequirePermission(constants.PermissionAdmin))
}

func runOrderDraftRouter(secureGroup *echo.Group, draftCtrl *controllers.OrderDraftController) {
	drafts := secureGroup.Group("/order-drafts")
	drafts.POST("", draftCtrl.StartDraft)
	drafts.GET("/:id", draftCtrl.GetDraft)
	drafts.PUT("/:id/header", draftCtrl.UpdateHeader)
	drafts.POST("/:id/confirm", draftCtrl.ConfirmHeader)
	drafts.POST("/:id/parts", draftCtrl.AddPart)
	drafts.DELETE("/:id/parts/:index", draftCtrl.RemovePart)
	drafts.POST("/:id/commit", draftCtrl.Commit)
	drafts.DELETE("/:id", draftCtrl.CancelDraft)
}
