package routes

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"equipment-portal/internal/controllers"
	"equipment-portal/internal/services"
	"equipment-portal/pkg/config"
	"equipment-portal/pkg/middleware"
	"equipment-portal/pkg/utils"
	"equipment-portal/pkg/websocket"
)

// ArchivePublicPath - адрес локального архива выгрузок.
const ArchivePublicPath = "/api/archive"

// Services - всё, что нужно контроллерам. Собирается в main.
type Services struct {
	Auth        services.AuthServiceInterface
	Equipment   services.EquipmentServiceInterface
	Maintenance services.MaintenanceServiceInterface
	Schedule    services.ScheduleServiceInterface
	Incident    services.IncidentServiceInterface
	Transfer    services.TransferServiceInterface
	Branch      services.BranchServiceInterface
	User        services.UserServiceInterface
	Dashboard   services.DashboardServiceInterface
	Alert       services.AlertServiceInterface
	Report      services.ReportServiceInterface
	Activity    services.ActivityServiceInterface
}

// HealthCheck возвращает состояние зависимостей: имя -> "ok" или текст ошибки.
type HealthCheck func(ctx context.Context) map[string]string

type Deps struct {
	Config   *config.Config
	Logger   *zap.Logger
	AuthMW   *middleware.AuthMiddleware
	Hub      *websocket.Hub
	Gatherer prometheus.Gatherer
	Health   HealthCheck
	Services Services
}

func InitRouter(e *echo.Echo, deps Deps) {
	logger := deps.Logger
	logger.Info("InitRouter: Начало создания маршрутов")

	e.GET("/health", healthHandler(deps.Health))
	if deps.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := e.Group("/api")
	secureGroup := api.Group("", deps.AuthMW.Auth)

	runAuthRouter(api, secureGroup, controllers.NewAuthController(deps.Services.Auth, deps.Config.Session, logger.Named("auth_ctrl")))
	runDashboardRouter(secureGroup, controllers.NewDashboardController(deps.Services.Dashboard, deps.Services.Alert, logger.Named("dashboard_ctrl")))
	runEquipmentRouter(secureGroup, controllers.NewEquipmentController(deps.Services.Equipment, logger.Named("equipment_ctrl")))
	runMaintenanceRouter(secureGroup, controllers.NewMaintenanceController(deps.Services.Maintenance, logger.Named("maintenance_ctrl")))
	runScheduleRouter(secureGroup, controllers.NewScheduleController(deps.Services.Schedule, logger.Named("schedule_ctrl")))
	runIncidentRouter(secureGroup, controllers.NewIncidentController(deps.Services.Incident, logger.Named("incident_ctrl")))
	runTransferRouter(secureGroup, controllers.NewTransferController(deps.Services.Transfer, logger.Named("transfer_ctrl")))
	runBranchRouter(secureGroup, controllers.NewBranchController(deps.Services.Branch, logger.Named("branch_ctrl")))
	runUserRouter(secureGroup, controllers.NewUserController(deps.Services.User, logger.Named("user_ctrl")))
	runReportRouter(secureGroup, controllers.NewReportController(deps.Services.Report, logger.Named("report_ctrl")))
	runActivityRouter(secureGroup, controllers.NewActivityController(deps.Services.Activity, logger.Named("activity_ctrl")), logger)

	if deps.Config.Storage.Driver != "s3" && deps.Config.Storage.LocalPath != "" {
		archiveCtrl := controllers.NewArchiveController(deps.Config.Storage.LocalPath, logger.Named("archive_ctrl"))
		secureGroup.GET("/archive/*", archiveCtrl.Download,
			middleware.RequireRoles(logger, utils.RoleAdmin, utils.RoleManager))
	}

	if deps.Hub != nil {
		wsCtrl := controllers.NewWebSocketController(deps.Hub, deps.Config.Server.AllowedOrigins, logger.Named("ws_ctrl"))
		e.GET("/ws", wsCtrl.ServeWs, deps.AuthMW.Auth)
	}

	logger.Info("INIT_ROUTER: Создание маршрутов завершено")
}

func healthHandler(check HealthCheck) echo.HandlerFunc {
	return func(c echo.Context) error {
		checks := map[string]string{}
		if check != nil {
			checks = check(c.Request().Context())
		}
		code := http.StatusOK
		for _, state := range checks {
			if state != "ok" {
				code = http.StatusServiceUnavailable
				break
			}
		}
		return c.JSON(code, map[string]interface{}{"status": code == http.StatusOK, "checks": checks})
	}
}

func runAuthRouter(api, secureGroup *echo.Group, authCtrl *controllers.AuthController) {
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", authCtrl.Login)
		authGroup.POST("/logout", authCtrl.Logout)
		authGroup.POST("/refresh", authCtrl.Refresh)
	}
	secureGroup.GET("/auth/me", authCtrl.Me)
}

func runDashboardRouter(secureGroup *echo.Group, ctrl *controllers.DashboardController) {
	secureGroup.GET("/dashboard", ctrl.GetDashboard)
	secureGroup.GET("/alerts", ctrl.GetAlerts)
}

func runActivityRouter(secureGroup *echo.Group, ctrl *controllers.ActivityController, logger *zap.Logger) {
	secureGroup.GET("/activity", ctrl.GetActivity, middleware.RequireRoles(logger, utils.RoleAdmin))
}
