package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"factory-ops/internal/authz"
	"factory-ops/internal/controllers"
	"factory-ops/internal/lifecycle"
	"factory-ops/internal/realtime"
	"factory-ops/internal/repositories"
	"factory-ops/internal/services"
	"factory-ops/pkg/config"
	"factory-ops/pkg/eventbus"
	"factory-ops/pkg/middleware"
	"factory-ops/pkg/service"
	"factory-ops/pkg/websocket"
)

type Loggers struct {
	Main     *zap.Logger
	Auth     *zap.Logger
	Order    *zap.Logger
	Machine  *zap.Logger
	Realtime *zap.Logger
}

// Deps - то, что создаётся в main и живёт дольше маршрутов.
type Deps struct {
	DB     *pgxpool.Pool
	Redis  *redis.Client
	JWT    service.JWTService
	Hub    *websocket.Hub
	Feed   realtime.Feed
	Bus    *eventbus.Bus
	Config *config.Config
}

func InitRouter(e *echo.Echo, deps Deps, loggers *Loggers) {
	loggers.Main.Info("InitRouter: Начало создания маршрутов")
	cfg := deps.Config

	// --- 0. ОБЩИЕ КОМПОНЕНТЫ ---
	authMW := middleware.NewAuthMiddleware(deps.JWT, loggers.Auth)
	txManager := repositories.NewTxManager(deps.DB)
	gatekeeper := authz.NewGatekeeper()
	draftStore := lifecycle.NewRedisDraftStore(deps.Redis, cfg.Orders.DraftTTL)

	// --- 1. РЕПОЗИТОРИИ ---
	orderRepo := repositories.NewOrderRepository(deps.DB, loggers.Order)
	trackerRepo := repositories.NewStatusTrackerRepository(deps.DB)
	statusRepo := repositories.NewStatusRepository(deps.DB)
	profileRepo := repositories.NewProfileRepository(deps.DB)
	machineRepo := repositories.NewMachineRepository(deps.DB)
	factoryRepo := repositories.NewFactoryRepository(deps.DB)
	departmentRepo := repositories.NewDepartmentRepository(deps.DB)
	partRepo := repositories.NewPartRepository(deps.DB)
	cacheRepo := repositories.NewRedisCacheRepository(deps.Redis)

	// --- 2. СЕРВИСЫ ---
	queryService := services.NewOrderQueryService(orderRepo, trackerRepo, gatekeeper, loggers.Order)
	exportService := services.NewOrderExportService(orderRepo, cfg.Orders.Location, loggers.Order)
	lifecycleService := services.NewOrderLifecycleService(
		draftStore, txManager, orderRepo, trackerRepo, statusRepo, profileRepo, machineRepo,
		gatekeeper, deps.Bus, loggers.Order,
	)
	machineService := services.NewMachineService(machineRepo, orderRepo, gatekeeper, deps.Bus, loggers.Machine)
	catalogService := services.NewCatalogService(
		cacheRepo, factoryRepo, departmentRepo, statusRepo, partRepo, machineRepo,
		cfg.Orders.CatalogCacheTTL, loggers.Main,
	)

	// --- 3. КОНТРОЛЛЕРЫ ---
	orderCtrl := controllers.NewOrderController(
		queryService, lifecycleService, exportService, cfg.Orders.Location, cfg.Orders.DefaultPageSize, loggers.Order,
	)
	draftCtrl := controllers.NewOrderDraftController(lifecycleService, loggers.Order)
	catalogCtrl := controllers.NewCatalogController(catalogService, loggers.Main)
	machineCtrl := controllers.NewMachineController(machineService, cfg.Orders.DefaultPageSize, loggers.Machine)
	wsCtrl := controllers.NewWebSocketController(
		deps.Hub, deps.JWT, queryService, deps.Feed, cfg.Orders.Location, cfg.Orders.DefaultPageSize, loggers.Realtime,
	)

	// --- 4. РОУТЕРЫ ---
	api := e.Group("/api")
	secureGroup := api.Group("", authMW.Auth)

	runOrderRouter(secureGroup, orderCtrl, authMW)
	runOrderDraftRouter(secureGroup, draftCtrl)
	runCatalogRouter(secureGroup, catalogCtrl, orderCtrl)
	runMachineRouter(secureGroup, machineCtrl, authMW)
	runWebSocketRouter(e, wsCtrl)

	loggers.Main.Info("InitRouter: Создание маршрутов завершено")
}
