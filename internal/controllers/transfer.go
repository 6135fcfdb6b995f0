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

type TransferController struct {
	transferService services.TransferServiceInterface
	logger          *zap.Logger
}

func NewTransferController(service services.TransferServiceInterface, logger *zap.Logger) *TransferController {
	return &TransferController{transferService: service, logger: logger}
}

func (c *TransferController) GetTransfers(ctx echo.Context) error {
	res, pagination, err := c.transferService.List(ctx.Request().Context(), listFilter(ctx))
	if err != nil {
		c.logger.Error("GetTransfers: ошибка при получении перемещений", zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось получить список перемещений", err, nil),
			c.logger)
	}
	return utils.SuccessListResponse(ctx, res, pagination, "Список перемещений успешно получен")
}

func (c *TransferController) CreateTransfer(ctx echo.Context) error {
	var body dto.CreateTransferDTO
	if err := bindBody(ctx, c.logger, "CreateTransfer", &body); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.transferService.Create(ctx.Request().Context(), body)
	if err != nil {
		c.logger.Error("CreateTransfer: ошибка создания перемещения",
			zap.String("equipmentID", body.EquipmentID.String()), zap.String("to", body.ToBranchID.String()), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось создать заявку на перемещение", err, nil),
			c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Заявка на перемещение создана", http.StatusCreated)
}

func (c *TransferController) Approve(ctx echo.Context) error {
	id, err := pathID(ctx, c.logger, "ApproveTransfer")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var body dto.TransferDecisionDTO
	if err := bindBody(ctx, c.logger, "ApproveTransfer", &body); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.transferService.Approve(ctx.Request().Context(), id, body)
	if err != nil {
		c.logger.Error("ApproveTransfer: ошибка согласования", zap.String("id", id.String()), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось согласовать перемещение", err, nil),
			c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Перемещение согласовано", http.StatusOK)
}

func (c *TransferController) Reject(ctx echo.Context) error {
	id, err := pathID(ctx, c.logger, "RejectTransfer")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var body dto.RejectTransferDTO
	if err := bindBody(ctx, c.logger, "RejectTransfer", &body); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.transferService.Reject(ctx.Request().Context(), id, body)
	if err != nil {
		c.logger.Error("RejectTransfer: ошибка отклонения", zap.String("id", id.String()), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось отклонить перемещение", err, nil),
			c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Перемещение отклонено", http.StatusOK)
}

func (c *TransferController) Complete(ctx echo.Context) error {
	id, err := pathID(ctx, c.logger, "CompleteTransfer")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.transferService.Complete(ctx.Request().Context(), id)
	if err != nil {
		c.logger.Error("CompleteTransfer: ошибка завершения", zap.String("id", id.String()), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось завершить перемещение", err, nil),
			c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Перемещение завершено", http.StatusOK)
}
