package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"equipment-portal/internal/dto"
	"equipment-portal/internal/entities"
	"equipment-portal/internal/events"
	apperrors "equipment-portal/pkg/errors"
	"equipment-portal/pkg/types"
	"equipment-portal/pkg/utils"
)

type TransferServiceInterface interface {
	List(ctx context.Context, filter types.Filter) ([]entities.EquipmentTransfer, *types.Pagination, error)
	Create(ctx context.Context, body dto.CreateTransferDTO) (*entities.EquipmentTransfer, error)
	Approve(ctx context.Context, id types.ID, body dto.TransferDecisionDTO) (*entities.EquipmentTransfer, error)
	Reject(ctx context.Context, id types.ID, body dto.RejectTransferDTO) (*entities.EquipmentTransfer, error)
	Complete(ctx context.Context, id types.ID) (*entities.EquipmentTransfer, error)
}

type TransferService struct {
	api       TransferBackend
	equipment EquipmentBackend
	bus       EventPublisher
	logger    *zap.Logger
}

func NewTransferService(api TransferBackend, equipment EquipmentBackend, bus EventPublisher, logger *zap.Logger) *TransferService {
	return &TransferService{api: api, equipment: equipment, bus: publisherOrNop(bus), logger: logger.Named("transfers")}
}

func (s *TransferService) publish(ctx context.Context, action string, t *entities.EquipmentTransfer, message string) {
	s.bus.Publish(ctx, events.EntityChanged{
		EntityType: events.EntityTransfer,
		Action:     action,
		EntityID:   t.ID,
		BranchID:   t.ToBranchID,
		Actor:      actorFromCtx(ctx),
		Message:    message,
		Payload:    t,
	})
}

func (s *TransferService) List(ctx context.Context, filter types.Filter) ([]entities.EquipmentTransfer, *types.Pagination, error) {
	list, pagination, err := s.api.List(ctx, utils.FilterToQuery(filter))
	if err != nil {
		logBackendError(s.logger, "Ошибка при получении перемещений", err)
		return nil, nil, err
	}
	return list, pagination, nil
}

// Create: филиал назначения обязателен и должен отличаться от текущего.
// Если клиент не прислал текущий филиал, он берётся из карточки оборудования.
func (s *TransferService) Create(ctx context.Context, body dto.CreateTransferDTO) (*entities.EquipmentTransfer, error) {
	if body.ToBranchID.IsZero() {
		return nil, apperrors.NewInvalidInputError("не указан филиал назначения")
	}
	if err := requireID(body.EquipmentID, "оборудование"); err != nil {
		return nil, err
	}

	if body.FromBranchID.IsZero() && s.equipment != nil {
		eq, err := s.equipment.Get(ctx, body.EquipmentID)
		if err != nil {
			logBackendError(s.logger, "Не удалось получить оборудование для перемещения", err, zap.String("equipmentID", body.EquipmentID.String()))
			return nil, err
		}
		if eq.Status == entities.EquipmentDisposed {
			return nil, apperrors.NewInvalidInputError("списанное оборудование нельзя перемещать")
		}
		body.FromBranchID = eq.BranchID
	}
	if !body.FromBranchID.IsZero() && body.FromBranchID == body.ToBranchID {
		return nil, apperrors.WrapInvalidInput(apperrors.ErrSameBranchTransfer)
	}

	t, err := s.api.Create(ctx, body)
	if err != nil {
		logBackendError(s.logger, "Ошибка при создании перемещения", err, zap.String("equipmentID", body.EquipmentID.String()))
		return nil, err
	}
	s.publish(ctx, events.ActionCreated, t, fmt.Sprintf("Запрошено перемещение оборудования #%s в филиал #%s", t.EquipmentID, t.ToBranchID))
	return t, nil
}

func (s *TransferService) Approve(ctx context.Context, id types.ID, body dto.TransferDecisionDTO) (*entities.EquipmentTransfer, error) {
	t, err := s.api.Approve(ctx, id, body)
	if err != nil {
		logBackendError(s.logger, "Ошибка при одобрении перемещения", err, zap.String("id", id.String()))
		return nil, err
	}
	s.publish(ctx, events.ActionApproved, t, "Перемещение одобрено")
	return t, nil
}

func (s *TransferService) Reject(ctx context.Context, id types.ID, body dto.RejectTransferDTO) (*entities.EquipmentTransfer, error) {
	body.Note = strings.TrimSpace(body.Note)
	if body.Note == "" {
		return nil, apperrors.NewInvalidInputError("укажите причину отказа")
	}
	t, err := s.api.Reject(ctx, id, body)
	if err != nil {
		logBackendError(s.logger, "Ошибка при отклонении перемещения", err, zap.String("id", id.String()))
		return nil, err
	}
	s.publish(ctx, events.ActionRejected, t, "Перемещение отклонено: "+body.Note)
	return t, nil
}

func (s *TransferService) Complete(ctx context.Context, id types.ID) (*entities.EquipmentTransfer, error) {
	t, err := s.api.Complete(ctx, id)
	if err != nil {
		logBackendError(s.logger, "Ошибка при завершении перемещения", err, zap.String("id", id.String()))
		return nil, err
	}
	s.publish(ctx, events.ActionCompleted, t, "Перемещение завершено")
	return t, nil
}
