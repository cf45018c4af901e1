// Файл: main.go

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"factory-ops/internal/listeners"
	"factory-ops/internal/realtime"
	"factory-ops/internal/routes"
	"factory-ops/internal/services"
	"factory-ops/pkg/config"
	"factory-ops/pkg/customvalidator"
	"factory-ops/pkg/database/migrations"
	"factory-ops/pkg/database/postgresql"
	apperrors "factory-ops/pkg/errors"
	"factory-ops/pkg/eventbus"
	applogger "factory-ops/pkg/logger"
	appmiddleware "factory-ops/pkg/middleware"
	"factory-ops/pkg/service"
	"factory-ops/pkg/utils"
	"factory-ops/pkg/websocket"
)

const accessTokenTTL = 24 * time.Hour

func main() {
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err, nil)
				_ = utils.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		ExposeHeaders:    []string{echo.HeaderContentDisposition},
	}))
	e.Use(appmiddleware.RequestLogger(logger.Named("http")))

	v := validator.New()
	if err := customvalidator.RegisterCustomValidations(v); err != nil {
		logger.Fatal("Ошибка регистрации кастомных правил валидации", zap.Error(err))
	}
	e.Validator = utils.NewValidator(v)

	// Базы данных
	dbConn := postgresql.ConnectDB(cfg.Postgres)
	defer dbConn.Close()

	if err := migrations.Up(ctx, dbConn, logger); err != nil {
		logger.Fatal("Не удалось применить миграции", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		logger.Fatal("не удалось подключиться к Redis", zap.Error(err), zap.String("address", cfg.Redis.Address))
	}
	defer redisClient.Close()

	loggers := &routes.Loggers{
		Main:     logger,
		Auth:     logger.Named("auth"),
		Order:    logger.Named("order"),
		Machine:  logger.Named("machine"),
		Realtime: logger.Named("realtime"),
	}

	// Realtime: LISTEN в Postgres -> брокер -> мосты и WebSocket-хаб
	hub := websocket.NewHub(loggers.Realtime)
	go hub.Run(ctx)

	broker := realtime.NewBroker(0, loggers.Realtime)
	go realtime.NewPGListener(dbConn, broker, loggers.Realtime).Run(ctx)
	go listeners.NewChangeBroadcaster(broker, hub, loggers.Realtime).Run(ctx)

	bus := eventbus.New(logger.Named("events"))
	wsNotificationService := services.NewWebSocketNotificationService(hub, loggers.Realtime)
	listeners.NewNotificationListener(wsNotificationService, loggers.Realtime).Register(bus)

	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, accessTokenTTL, loggers.Auth)

	routes.InitRouter(e, routes.Deps{
		DB:     dbConn,
		Redis:  redisClient,
		JWT:    jwtSvc,
		Hub:    hub,
		Feed:   broker,
		Bus:    bus,
		Config: cfg,
	}, loggers)

	go func() {
		logger.Info("🚀 Сервер запущен", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Получен сигнал остановки, завершаем работу")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки сервера", zap.Error(err))
	}
	bus.Wait()
	<-hub.Stopped()
}
