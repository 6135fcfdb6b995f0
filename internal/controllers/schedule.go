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

type ScheduleController struct {
	scheduleService services.ScheduleServiceInterface
	logger          *zap.Logger
}

func NewScheduleController(service services.ScheduleServiceInterface, logger *zap.Logger) *ScheduleController {
	return &ScheduleController{scheduleService: service, logger: logger}
}

func (c *ScheduleController) GetSchedules(ctx echo.Context) error {
	res, pagination, err := c.scheduleService.List(ctx.Request().Context(), listFilter(ctx))
	if err != nil {
		c.logger.Error("GetSchedules: ошибка при получении графиков", zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось получить графики обслуживания", err, nil),
			c.logger)
	}
	return utils.SuccessListResponse(ctx, res, pagination, "Графики обслуживания успешно получены")
}

func (c *ScheduleController) FindSchedule(ctx echo.Context) error {
	id, err := pathID(ctx, c.logger, "FindSchedule")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.scheduleService.Find(ctx.Request().Context(), id)
	if err != nil {
		c.logger.Error("FindSchedule: ошибка при поиске графика", zap.String("id", id.String()), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось найти график", err, nil),
			c.logger)
	}
	return utils.SuccessResponse(ctx, res, "График найден", http.StatusOK)
}

func (c *ScheduleController) CreateSchedule(ctx echo.Context) error {
	var body dto.ScheduleDTO
	if err := bindBody(ctx, c.logger, "CreateSchedule", &body); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.scheduleService.Create(ctx.Request().Context(), body)
	if err != nil {
		c.logger.Error("CreateSchedule: ошибка при создании графика", zap.String("scope", body.Scope), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось создать график", err, nil),
			c.logger)
	}
	return utils.SuccessResponse(ctx, res, "График создан", http.StatusCreated)
}

func (c *ScheduleController) UpdateSchedule(ctx echo.Context) error {
	id, err := pathID(ctx, c.logger, "UpdateSchedule")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var body dto.ScheduleDTO
	if err := bindBody(ctx, c.logger, "UpdateSchedule", &body); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.scheduleService.Update(ctx.Request().Context(), id, body)
	if err != nil {
		c.logger.Error("UpdateSchedule: ошибка при обновлении графика", zap.String("id", id.String()), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось обновить график", err, nil),
			c.logger)
	}
	return utils.SuccessResponse(ctx, res, "График обновлён", http.StatusOK)
}

func (c *ScheduleController) DeleteSchedule(ctx echo.Context) error {
	id, err := pathID(ctx, c.logger, "DeleteSchedule")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.scheduleService.Delete(ctx.Request().Context(), id); err != nil {
		c.logger.Error("DeleteSchedule: ошибка при удалении графика", zap.String("id", id.String()), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось удалить график", err, nil),
			c.logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "График удалён", http.StatusOK)
}

func (c *ScheduleController) Generate(ctx echo.Context) error {
	id, err := pathID(ctx, c.logger, "GenerateFromSchedule")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.scheduleService.Generate(ctx.Request().Context(), id)
	if err != nil {
		c.logger.Error("GenerateFromSchedule: ошибка генерации записей", zap.String("id", id.String()), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось сгенерировать записи обслуживания", err, nil),
			c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Записи обслуживания сгенерированы", http.StatusOK)
}

func (c *ScheduleController) AutoSchedule(ctx echo.Context) error {
	var body dto.AutoScheduleDTO
	if err := bindBody(ctx, c.logger, "AutoSchedule", &body); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.scheduleService.AutoSchedule(ctx.Request().Context(), body)
	if err != nil {
		c.logger.Error("AutoSchedule: ошибка автопланирования", zap.String("branchID", body.BranchID.String()), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось выполнить автопланирование", err, nil),
			c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Автопланирование выполнено", http.StatusOK)
}
