package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"equipment-portal/internal/dto"
	"equipment-portal/internal/entities"
	"equipment-portal/internal/events"
	apperrors "equipment-portal/pkg/errors"
	"equipment-portal/pkg/types"
	"equipment-portal/pkg/utils"
)

type MaintenanceServiceInterface interface {
	List(ctx context.Context, filter types.Filter) ([]entities.MaintenanceRecord, *types.Pagination, error)
	Find(ctx context.Context, id types.ID) (*entities.MaintenanceRecord, error)
	Create(ctx context.Context, body dto.CreateMaintenanceDTO) (*entities.MaintenanceRecord, error)
	Update(ctx context.Context, id types.ID, body dto.UpdateMaintenanceDTO) (*entities.MaintenanceRecord, error)
	ChangeStatus(ctx context.Context, id types.ID, body dto.ChangeMaintenanceStatusDTO) (*entities.MaintenanceRecord, error)
	SubmitFeedback(ctx context.Context, id types.ID, body dto.MaintenanceFeedbackDTO) (*entities.MaintenanceRecord, error)
	Cancel(ctx context.Context, id types.ID, body dto.CancelMaintenanceDTO) (*entities.MaintenanceRecord, error)
}

type MaintenanceService struct {
	api    MaintenanceBackend
	bus    EventPublisher
	logger *zap.Logger
}

func NewMaintenanceService(api MaintenanceBackend, bus EventPublisher, logger *zap.Logger) *MaintenanceService {
	return &MaintenanceService{api: api, bus: publisherOrNop(bus), logger: logger.Named("maintenance")}
}

func (s *MaintenanceService) publish(ctx context.Context, action string, rec *entities.MaintenanceRecord, message string) {
	s.bus.Publish(ctx, events.EntityChanged{
		EntityType: events.EntityMaintenance,
		Action:     action,
		EntityID:   rec.ID,
		BranchID:   rec.BranchID,
		Actor:      actorFromCtx(ctx),
		Message:    message,
		Payload:    rec,
	})
}

// List: фильтры status, equipmentId, assignedTo, from, to уходят в backend.
func (s *MaintenanceService) List(ctx context.Context, filter types.Filter) ([]entities.MaintenanceRecord, *types.Pagination, error) {
	list, pagination, err := s.api.ListMaintenance(ctx, utils.FilterToQuery(filter))
	if err != nil {
		logBackendError(s.logger, "Ошибка при получении списка обслуживания", err)
		return nil, nil, err
	}
	return list, pagination, nil
}

func (s *MaintenanceService) Find(ctx context.Context, id types.ID) (*entities.MaintenanceRecord, error) {
	rec, err := s.api.GetMaintenance(ctx, id)
	if err != nil {
		logBackendError(s.logger, "Ошибка при поиске записи обслуживания", err, zap.String("id", id.String()))
		return nil, err
	}
	return rec, nil
}

func (s *MaintenanceService) Create(ctx context.Context, body dto.CreateMaintenanceDTO) (*entities.MaintenanceRecord, error) {
	if !body.ScheduledDate.Valid {
		return nil, apperrors.NewInvalidInputError("не указана дата обслуживания")
	}
	rec, err := s.api.CreateMaintenance(ctx, body)
	if err != nil {
		logBackendError(s.logger, "Ошибка при создании обслуживания", err, zap.String("equipmentID", body.EquipmentID.String()))
		return nil, err
	}
	s.publish(ctx, events.ActionCreated, rec, fmt.Sprintf("Запланировано обслуживание оборудования #%s", rec.EquipmentID))
	return rec, nil
}

func (s *MaintenanceService) Update(ctx context.Context, id types.ID, body dto.UpdateMaintenanceDTO) (*entities.MaintenanceRecord, error) {
	rec, err := s.api.UpdateMaintenance(ctx, id, body)
	if err != nil {
		logBackendError(s.logger, "Ошибка при обновлении обслуживания", err, zap.String("id", id.String()))
		return nil, err
	}
	s.publish(ctx, events.ActionUpdated, rec, "Запись обслуживания изменена")
	return rec, nil
}

func (s *MaintenanceService) ChangeStatus(ctx context.Context, id types.ID, body dto.ChangeMaintenanceStatusDTO) (*entities.MaintenanceRecord, error) {
	rec, err := s.api.UpdateMaintenanceStatus(ctx, id, body)
	if err != nil {
		logBackendError(s.logger, "Ошибка при смене статуса обслуживания", err,
			zap.String("id", id.String()), zap.String("status", body.Status))
		return nil, err
	}
	s.publish(ctx, events.ActionStatusChanged, rec, fmt.Sprintf("Статус обслуживания: %s", rec.Status))
	return rec, nil
}

func (s *MaintenanceService) SubmitFeedback(ctx context.Context, id types.ID, body dto.MaintenanceFeedbackDTO) (*entities.MaintenanceRecord, error) {
	if body.Rating < 1 || body.Rating > 5 {
		return nil, apperrors.NewInvalidInputError("оценка должна быть от 1 до 5")
	}
	rec, err := s.api.SubmitFeedback(ctx, id, body)
	if err != nil {
		logBackendError(s.logger, "Ошибка при отправке отзыва об обслуживании", err, zap.String("id", id.String()))
		return nil, err
	}
	s.publish(ctx, events.ActionFeedback, rec, fmt.Sprintf("Оценка обслуживания: %d", body.Rating))
	return rec, nil
}

func (s *MaintenanceService) Cancel(ctx context.Context, id types.ID, body dto.CancelMaintenanceDTO) (*entities.MaintenanceRecord, error) {
	rec, err := s.api.CancelMaintenance(ctx, id, body)
	if err != nil {
		logBackendError(s.logger, "Ошибка при отмене обслуживания", err, zap.String("id", id.String()))
		return nil, err
	}
	s.publish(ctx, events.ActionCancelled, rec, "Обслуживание отменено")
	return rec, nil
}
