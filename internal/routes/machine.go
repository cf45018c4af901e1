package routes

import (
	"github.com/labstack/echo/v4"

	"factory-ops/internal/controllers"
	"factory-ops/pkg/constants"
	"factory-ops/pkg/middleware"
)

func runMachineRouter(secureGroup *echo.Group, machineCtrl *controllers.MachineController, authMW *middleware.AuthMiddleware) {
	machines := secureGroup.Group("/machines")
	machines.GET("", machineCtrl.GetMachines)
	machines.GET("/metrics", machineCtrl.GetMetrics)
	machines.GET("/:id", machineCtrl.OpenMachine)
	machines.GET("/:id/parts", machineCtrl.GetMachineParts)
	machines.GET("/:id/orders", machineCtrl.GetRunningOrders)
	machines.PUT("/:id/running", machineCtrl.SetRunning,
		authMW.RequirePermission(constants.PermissionAdmin, constants.PermissionFactory))
}

func runWebSocketRouter(e *echo.Echo, wsCtrl *controllers.WebSocketController) {
	e.GET("/ws", wsCtrl.ServeWs)
}
