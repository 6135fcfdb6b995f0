package controllers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-portal/internal/dto"
	"equipment-portal/internal/services"
	apperrors "equipment-portal/pkg/errors"
	"equipment-portal/pkg/utils"
)

type EquipmentController struct {
	equipmentService services.EquipmentServiceInterface
	logger           *zap.Logger
}

func NewEquipmentController(service services.EquipmentServiceInterface, logger *zap.Logger) *EquipmentController {
	return &EquipmentController{
		equipmentService: service,
		logger:           logger,
	}
}

func (c *EquipmentController) GetEquipments(ctx echo.Context) error {
	filter := listFilter(ctx)

	res, pagination, err := c.equipmentService.List(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Error("GetEquipments: ошибка при получении списка оборудования", zap.Error(err))
		return utils.ErrorResponse(
			ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось получить список оборудования", err, nil),
			c.logger,
		)
	}

	return utils.SuccessListResponse(ctx, res, pagination, "Список оборудования успешно получен")
}

func (c *EquipmentController) FindEquipment(ctx echo.Context) error {
	id, err := pathID(ctx, c.logger, "FindEquipment")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.equipmentService.Find(ctx.Request().Context(), id)
	if err != nil {
		c.logger.Error("FindEquipment: ошибка при поиске оборудования", zap.String("id", id.String()), zap.Error(err))
		return utils.ErrorResponse(
			ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось найти оборудование", err, nil),
			c.logger,
		)
	}

	return utils.SuccessResponse(ctx, res, "Оборудование успешно найдено", http.StatusOK)
}

// FindByQR - поиск по коду со сканера на ресепшене.
func (c *EquipmentController) FindByQR(ctx echo.Context) error {
	code := strings.TrimSpace(ctx.Param("code"))
	if code == "" {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Не указан QR-код", nil, nil), c.logger)
	}

	res, err := c.equipmentService.FindByQR(ctx.Request().Context(), code)
	if err != nil {
		c.logger.Error("FindByQR: ошибка поиска по QR-коду", zap.String("code", code), zap.Error(err))
		return utils.ErrorResponse(
			ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось найти оборудование по QR-коду", err, nil),
			c.logger,
		)
	}

	return utils.SuccessResponse(ctx, res, "Оборудование успешно найдено", http.StatusOK)
}

func (c *EquipmentController) CreateEquipment(ctx echo.Context) error {
	var body dto.CreateEquipmentDTO
	if err := bindBody(ctx, c.logger, "CreateEquipment", &body); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.equipmentService.Create(ctx.Request().Context(), body)
	if err != nil {
		c.logger.Error("CreateEquipment: ошибка при создании оборудования", zap.Any("payload", body), zap.Error(err))
		return utils.ErrorResponse(
			ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось создать оборудование", err, nil),
			c.logger,
		)
	}

	return utils.SuccessResponse(ctx, res, "Оборудование успешно создано", http.StatusCreated)
}

func (c *EquipmentController) UpdateEquipment(ctx echo.Context) error {
	id, err := pathID(ctx, c.logger, "UpdateEquipment")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var body dto.UpdateEquipmentDTO
	if err := bindBody(ctx, c.logger, "UpdateEquipment", &body); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.equipmentService.Update(ctx.Request().Context(), id, body)
	if err != nil {
		c.logger.Error("UpdateEquipment: ошибка при обновлении оборудования", zap.String("id", id.String()), zap.Error(err))
		return utils.ErrorResponse(
			ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось обновить оборудование", err, nil),
			c.logger,
		)
	}

	return utils.SuccessResponse(ctx, res, "Оборудование успешно обновлено", http.StatusOK)
}

func (c *EquipmentController) DeleteEquipment(ctx echo.Context) error {
	id, err := pathID(ctx, c.logger, "DeleteEquipment")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.equipmentService.Delete(ctx.Request().Context(), id); err != nil {
		c.logger.Error("DeleteEquipment: ошибка при удалении оборудования", zap.String("id", id.String()), zap.Error(err))
		return utils.ErrorResponse(
			ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось удалить оборудование", err, nil),
			c.logger,
		)
	}

	return utils.SuccessResponse(ctx, struct{}{}, "Оборудование успешно удалено", http.StatusOK)
}

func (c *EquipmentController) ChangeStatus(ctx echo.Context) error {
	id, err := pathID(ctx, c.logger, "ChangeEquipmentStatus")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var body dto.ChangeEquipmentStatusDTO
	if err := bindBody(ctx, c.logger, "ChangeEquipmentStatus", &body); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.equipmentService.ChangeStatus(ctx.Request().Context(), id, body)
	if err != nil {
		c.logger.Error("ChangeEquipmentStatus: ошибка смены статуса",
			zap.String("id", id.String()), zap.String("status", body.Status), zap.Error(err))
		return utils.ErrorResponse(
			ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось изменить статус оборудования", err, nil),
			c.logger,
		)
	}

	return utils.SuccessResponse(ctx, res, "Статус оборудования изменён", http.StatusOK)
}

func (c *EquipmentController) Dispose(ctx echo.Context) error {
	id, err := pathID(ctx, c.logger, "DisposeEquipment")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var body dto.DisposeEquipmentDTO
	if err := ctx.Bind(&body); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат данных в теле запроса", err, nil), c.logger)
	}

	// длину причины проверяет сервис, чтобы текст ошибки был единым
	res, err := c.equipmentService.Dispose(ctx.Request().Context(), id, body)
	if err != nil {
		c.logger.Error("DisposeEquipment: ошибка списания", zap.String("id", id.String()), zap.Error(err))
		return utils.ErrorResponse(
			ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось списать оборудование", err, nil),
			c.logger,
		)
	}

	return utils.SuccessResponse(ctx, res, "Оборудование передано на списание", http.StatusOK)
}

// BulkDispose отвечает 200 и при частичном успехе: ошибки по каждой единице в body.failed.
func (c *EquipmentController) BulkDispose(ctx echo.Context) error {
	var body dto.BulkDisposeDTO
	if err := ctx.Bind(&body); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат данных в теле запроса", err, nil), c.logger)
	}

	res, err := c.equipmentService.BulkDispose(ctx.Request().Context(), body)
	if err != nil {
		c.logger.Error("BulkDispose: ошибка массового списания", zap.Int("count", len(body.EquipmentIDs)), zap.Error(err))
		return utils.ErrorResponse(
			ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось выполнить массовое списание", err, nil),
			c.logger,
		)
	}

	message := "Оборудование передано на списание"
	if len(res.Failed) > 0 {
		message = "Часть оборудования не удалось списать"
	}
	return utils.SuccessResponse(ctx, res, message, http.StatusOK)
}
