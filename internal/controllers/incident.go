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

type IncidentController struct {
	incidentService services.IncidentServiceInterface
	logger          *zap.Logger
}

func NewIncidentController(service services.IncidentServiceInterface, logger *zap.Logger) *IncidentController {
	return &IncidentController{incidentService: service, logger: logger}
}

func (c *IncidentController) GetIncidents(ctx echo.Context) error {
	res, pagination, err := c.incidentService.List(ctx.Request().Context(), listFilter(ctx))
	if err != nil {
		c.logger.Error("GetIncidents: ошибка при получении инцидентов", zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось получить список инцидентов", err, nil),
			c.logger)
	}
	return utils.SuccessListResponse(ctx, res, pagination, "Список инцидентов успешно получен")
}

func (c *IncidentController) FindIncident(ctx echo.Context) error {
	id, err := pathID(ctx, c.logger, "FindIncident")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.incidentService.Find(ctx.Request().Context(), id)
	if err != nil {
		c.logger.Error("FindIncident: ошибка при поиске инцидента", zap.String("id", id.String()), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось найти инцидент", err, nil),
			c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Инцидент найден", http.StatusOK)
}

func (c *IncidentController) ReportIncident(ctx echo.Context) error {
	var body dto.CreateIncidentDTO
	if err := bindBody(ctx, c.logger, "ReportIncident", &body); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.incidentService.Report(ctx.Request().Context(), body)
	if err != nil {
		c.logger.Error("ReportIncident: ошибка регистрации инцидента", zap.String("equipmentID", body.EquipmentID.String()), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось зарегистрировать инцидент", err, nil),
			c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Инцидент зарегистрирован", http.StatusCreated)
}

func (c *IncidentController) ChangeStatus(ctx echo.Context) error {
	id, err := pathID(ctx, c.logger, "ChangeIncidentStatus")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var body dto.ChangeIncidentStatusDTO
	if err := bindBody(ctx, c.logger, "ChangeIncidentStatus", &body); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.incidentService.ChangeStatus(ctx.Request().Context(), id, body)
	if err != nil {
		c.logger.Error("ChangeIncidentStatus: ошибка смены статуса",
			zap.String("id", id.String()), zap.String("status", body.Status), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось изменить статус инцидента", err, nil),
			c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Статус инцидента изменён", http.StatusOK)
}

func (c *IncidentController) Escalate(ctx echo.Context) error {
	id, err := pathID(ctx, c.logger, "EscalateIncident")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var body dto.EscalateIncidentDTO
	if err := ctx.Bind(&body); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат данных в теле запроса", err, nil), c.logger)
	}
	res, err := c.incidentService.Escalate(ctx.Request().Context(), id, body)
	if err != nil {
		c.logger.Error("EscalateIncident: ошибка эскалации", zap.String("id", id.String()), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось эскалировать инцидент", err, nil),
			c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Инцидент эскалирован", http.StatusOK)
}
