package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-portal/internal/services"
	apperrors "equipment-portal/pkg/errors"
	"equipment-portal/pkg/types"
	"equipment-portal/pkg/utils"
)

type DashboardController struct {
	dashboardService services.DashboardServiceInterface
	alertService     services.AlertServiceInterface
	logger           *zap.Logger
}

func NewDashboardController(
	dashboardService services.DashboardServiceInterface,
	alertService services.AlertServiceInterface,
	logger *zap.Logger,
) *DashboardController {
	return &DashboardController{
		dashboardService: dashboardService,
		alertService:     alertService,
		logger:           logger,
	}
}

func (c *DashboardController) GetDashboard(ctx echo.Context) error {
	data, err := c.dashboardService.GetDashboard(ctx.Request().Context())
	if err != nil {
		c.logger.Error("GetDashboard: ошибка при сборке дашборда", zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось получить данные дашборда", err, nil),
			c.logger)
	}
	return utils.SuccessResponse(ctx, data, "Данные для дашборда успешно получены", http.StatusOK)
}

// GetAlerts: менеджер и ресепшен видят алерты только своего филиала.
func (c *DashboardController) GetAlerts(ctx echo.Context) error {
	filter := services.AlertFilter{
		BranchID: types.ID(ctx.QueryParam("branchId")),
		Severity: ctx.QueryParam("severity"),
	}
	if raw := ctx.QueryParam("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if p, err := utils.GetPrincipalFromCtx(ctx.Request().Context()); err == nil &&
		p.HasRole(utils.RoleManager, utils.RoleReceptionist) && !p.BranchID.IsZero() {
		filter.BranchID = p.BranchID
	}

	feed, err := c.alertService.GetAlerts(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Error("GetAlerts: ошибка при сборке ленты алертов", zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось получить алерты", err, nil),
			c.logger)
	}
	return utils.SuccessResponse(ctx, feed, "Алерты успешно получены", http.StatusOK)
}
