package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-portal/internal/services"
	apperrors "equipment-portal/pkg/errors"
	"equipment-portal/pkg/utils"
)

type ActivityController struct {
	activityService services.ActivityServiceInterface
	logger          *zap.Logger
}

func NewActivityController(service services.ActivityServiceInterface, logger *zap.Logger) *ActivityController {
	return &ActivityController{activityService: service, logger: logger}
}

func (c *ActivityController) GetActivity(ctx echo.Context) error {
	res, pagination, err := c.activityService.List(ctx.Request().Context(), listFilter(ctx))
	if err != nil {
		c.logger.Error("GetActivity: ошибка чтения журнала действий", zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось получить журнал действий", err, nil),
			c.logger)
	}
	return utils.SuccessListResponse(ctx, res, pagination, "Журнал действий успешно получен")
}
