package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"equipment-portal/internal/entities"
	"equipment-portal/internal/integrations/backend"
	"equipment-portal/internal/integrations/iot"
	"equipment-portal/internal/listeners"
	"equipment-portal/internal/repositories"
	"equipment-portal/internal/routes"
	"equipment-portal/internal/scheduler"
	"equipment-portal/internal/services"
	"equipment-portal/pkg/apiclient"
	"equipment-portal/pkg/config"
	"equipment-portal/pkg/customvalidator"
	"equipment-portal/pkg/database/postgresql"
	apperrors "equipment-portal/pkg/errors"
	"equipment-portal/pkg/eventbus"
	"equipment-portal/pkg/filestorage"
	applogger "equipment-portal/pkg/logger"
	"equipment-portal/pkg/metrics"
	"equipment-portal/pkg/middleware"
	"equipment-portal/pkg/service"
	"equipment-portal/pkg/telegram"
	"equipment-portal/pkg/utils"
	"equipment-portal/pkg/websocket"
)

func main() {
	cfg := config.New()
	logger := applogger.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
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
	e.Use(middleware.InjectLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		ExposeHeaders:    []string{echo.HeaderContentDisposition, echo.HeaderXRequestID, "X-Export-Archive"},
	}))

	v := validator.New()
	if err := customvalidator.RegisterCustomValidations(v); err != nil {
		logger.Fatal("Ошибка регистрации кастомных правил валидации", zap.Error(err))
	}
	e.Validator = utils.NewValidator(v)

	// --- ХРАНИЛИЩА ---
	dbConn, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		logger.Fatal("не удалось подключиться к PostgreSQL", zap.Error(err))
	}
	defer dbConn.Close()
	if err := postgresql.Migrate(ctx, dbConn, logger); err != nil {
		logger.Fatal("не удалось применить миграции", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		logger.Fatal("не удалось подключиться к Redis", zap.Error(err), zap.String("address", cfg.Redis.Address))
	}

	fileStorage, err := newFileStorage(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("не удалось создать файловое хранилище", zap.Error(err))
	}

	// --- МЕТРИКИ, HUB, ШИНА ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	hub := websocket.NewHub(logger, appMetrics)
	go hub.Run(ctx)

	bus := eventbus.New(logger)

	// --- ВНЕШНИЕ ИСТОЧНИКИ ---
	client := apiclient.New(cfg.Backend.BaseURL, cfg.Backend.Timeout, logger, apiclient.WithMetrics(appMetrics))
	api := backend.New(client)

	consumer := iot.NewConsumer(cfg.IoT, logger, appMetrics)
	consumer.OnTelemetry(func(t entities.Telemetry) {
		if err := hub.Broadcast(websocket.TypeTelemetry, t); err != nil {
			logger.Warn("не удалось разослать телеметрию", zap.Error(err))
		}
	})
	consumer.OnAlert(func(a entities.IoTAlert) {
		if err := hub.Broadcast(websocket.TypeIoTAlert, a); err != nil {
			logger.Warn("не удалось разослать тревогу датчика", zap.Error(err))
		}
	})
	var iotSource services.IoTAlertSource
	if cfg.IoT.URL != "" {
		iotSource = consumer
		go func() {
			if err := consumer.Run(ctx); err != nil {
				logger.Error("IoT consumer остановлен", zap.Error(err))
			}
		}()
	} else {
		logger.Info("IOT_URL не задан, телеметрия отключена")
	}

	// --- СЕРВИСЫ ---
	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, logger)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)
	sessionRepo := repositories.NewSessionRepository(cacheRepo)
	activityRepo := repositories.NewActivityRepository(dbConn, logger)

	authService := services.NewAuthService(api.Auth, sessionRepo, jwtSvc, cfg.Session.TTL, logger)
	alertService := services.NewAlertService(api.Equipment, api.Tracking, iotSource, cfg.Alerts.LookAheadDays, appMetrics, logger)
	activityService := services.NewActivityService(activityRepo, logger)

	svc := routes.Services{
		Auth:        authService,
		Equipment:   services.NewEquipmentService(api.Equipment, bus, logger),
		Maintenance: services.NewMaintenanceService(api.Tracking, bus, logger),
		Schedule:    services.NewScheduleService(api.Tracking, bus, logger),
		Incident:    services.NewIncidentService(api.Tracking, bus, logger),
		Transfer:    services.NewTransferService(api.Transfers, api.Equipment, bus, logger),
		Branch:      services.NewBranchService(api.Branches, cacheRepo, logger),
		User:        services.NewUserService(api.Users, logger),
		Dashboard: services.NewDashboardService(
			api.Equipment, api.Tracking, api.Tracking, api.Transfers, api.Users, api.Branches, alertService, logger,
		),
		Alert:    alertService,
		Report:   services.NewReportService(api.Reports, fileStorage, bus, logger),
		Activity: activityService,
	}

	// --- СЛУШАТЕЛИ ---
	notificationListener := listeners.NewNotificationListener(hub, 0, logger)
	notificationListener.Register(bus)
	listeners.NewActivityListener(activityService, logger).Register(bus)
	listeners.NewEscalationListener(telegram.NewService(cfg.Telegram.BotToken), cfg.Telegram.AdminChatID, logger).Register(bus)

	// --- ФОНОВЫЕ ЗАДАЧИ ---
	jobs := scheduler.New(logger)
	jobs.Add(scheduler.AlertWatcherJob(alertService, hub, cfg.Backend.ServiceToken, cfg.Alerts.WatchInterval, logger))
	jobs.Add(scheduler.ActivityPruneJob(activityService, cfg.Activity.Retention))
	jobs.Start(ctx)

	// --- РОУТЫ ---
	routes.InitRouter(e, routes.Deps{
		Config:   cfg,
		Logger:   logger,
		AuthMW:   middleware.NewAuthMiddleware(jwtSvc, authService, cfg.Session.CookieName, logger).WithTokenVerifier(authService),
		Hub:      hub,
		Gatherer: registry,
		Health:   healthCheck(dbConn, redisClient),
		Services: svc,
	})

	go func() {
		logger.Info("🚀 Сервер запущен", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Остановка сервера...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("сервер остановлен принудительно", zap.Error(err))
	}
	jobs.Stop()
	bus.Wait()
	notificationListener.Flush()
	logger.Info("Сервер остановлен")
}

func newFileStorage(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (filestorage.FileStorageInterface, error) {
	if cfg.Driver == "s3" {
		return filestorage.NewS3FileStorage(ctx, cfg, logger)
	}
	return filestorage.NewLocalFileStorage(cfg.LocalPath, routes.ArchivePublicPath)
}

// IoT в проверку не входит: шлюз работает и без телеметрии.
func healthCheck(db *pgxpool.Pool, rdb *redis.Client) routes.HealthCheck {
	return func(ctx context.Context) map[string]string {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		checks := map[string]string{"postgres": "ok", "redis": "ok"}
		if err := db.Ping(ctx); err != nil {
			checks["postgres"] = err.Error()
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			checks["redis"] = err.Error()
		}
		return checks
	}
}
