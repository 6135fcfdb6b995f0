package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-portal/internal/dto"
	"equipment-portal/internal/services"
	apperrors "equipment-portal/pkg/errors"
	"equipment-portal/pkg/utils"
)

type MaintenanceController struct {
	maintenanceService services.MaintenanceServiceInterface
	logger             *zap.Logger
}

func NewMaintenanceController(service services.MaintenanceServiceInterface, logger *zap.Logger) *MaintenanceController {
	return &MaintenanceController{maintenanceService: service, logger: logger}
}

func (c *MaintenanceController) GetRecords(ctx echo.Context) error {
	res, pagination, err := c.maintenanceService.List(ctx.Request().Context(), listFilter(ctx))
	if err != nil {
		c.logger.Error("GetRecords: ошибка при получении записей обслуживания", zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось получить записи обслуживания", err, nil),
			c.logger)
	}
	return utils.SuccessListResponse(ctx, res, pagination, "Записи обслуживания успешно получены")
}

func (c *MaintenanceController) FindRecord(ctx echo.Context) error {
	id, err := pathID(ctx, c.logger, "FindRecord")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.maintenanceService.Find(ctx.Request().Context(), id)
	if err != nil {
		c.logger.Error("FindRecord: ошибка при поиске записи", zap.String("id", id.String()), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось найти запись обслуживания", err, nil),
			c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Запись обслуживания найдена", http.StatusOK)
}

func (c *MaintenanceController) CreateRecord(ctx echo.Context) error {
	var body dto.CreateMaintenanceDTO
	if err := bindBody(ctx, c.logger, "CreateRecord", &body); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.maintenanceService.Create(ctx.Request().Context(), body)
	if err != nil {
		c.logger.Error("CreateRecord: ошибка при создании записи", zap.String("equipmentID", body.EquipmentID.String()), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось запланировать обслуживание", err, nil),
			c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Обслуживание запланировано", http.StatusCreated)
}

func (c *MaintenanceController) UpdateRecord(ctx echo.Context) error {
	id, err := pathID(ctx, c.logger, "UpdateRecord")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var body dto.UpdateMaintenanceDTO
	if err := bindBody(ctx, c.logger, "UpdateRecord", &body); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.maintenanceService.Update(ctx.Request().Context(), id, body)
	if err != nil {
		c.logger.Error("UpdateRecord: ошибка при обновлении записи", zap.String("id", id.String()), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось обновить запись обслуживания", err, nil),
			c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Запись обслуживания обновлена", http.StatusOK)
}

func (c *MaintenanceController) ChangeStatus(ctx echo.Context) error {
	id, err := pathID(ctx, c.logger, "ChangeMaintenanceStatus")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var body dto.ChangeMaintenanceStatusDTO
	if err := bindBody(ctx, c.logger, "ChangeMaintenanceStatus", &body); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.maintenanceService.ChangeStatus(ctx.Request().Context(), id, body)
	if err != nil {
		c.logger.Error("ChangeMaintenanceStatus: ошибка смены статуса",
			zap.String("id", id.String()), zap.String("status", body.Status), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось изменить статус обслуживания", err, nil),
			c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Статус обслуживания изменён", http.StatusOK)
}

func (c *MaintenanceController) SubmitFeedback(ctx echo.Context) error {
	id, err := pathID(ctx, c.logger, "SubmitFeedback")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var body dto.MaintenanceFeedbackDTO
	if err := bindBody(ctx, c.logger, "SubmitFeedback", &body); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.maintenanceService.SubmitFeedback(ctx.Request().Context(), id, body)
	if err != nil {
		c.logger.Error("SubmitFeedback: ошибка сохранения отзыва", zap.String("id", id.String()), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось сохранить отзыв", err, nil),
			c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Отзыв сохранён", http.StatusOK)
}

func (c *MaintenanceController) Cancel(ctx echo.Context) error {
	id, err := pathID(ctx, c.logger, "CancelMaintenance")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var body dto.CancelMaintenanceDTO
	if err := bindBody(ctx, c.logger, "CancelMaintenance", &body); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.maintenanceService.Cancel(ctx.Request().Context(), id, body)
	if err != nil {
		c.logger.Error("CancelMaintenance: ошибка отмены", zap.String("id", id.String()), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось отменить обслуживание", err, nil),
			c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Обслуживание отменено", http.StatusOK)
}
