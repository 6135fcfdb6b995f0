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

type ScheduleServiceInterface interface {
	List(ctx context.Context, filter types.Filter) ([]entities.MaintenanceSchedule, *types.Pagination, error)
	Find(ctx context.Context, id types.ID) (*entities.MaintenanceSchedule, error)
	Create(ctx context.Context, body dto.ScheduleDTO) (*entities.MaintenanceSchedule, error)
	Update(ctx context.Context, id types.ID, body dto.ScheduleDTO) (*entities.MaintenanceSchedule, error)
	Delete(ctx context.Context, id types.ID) error
	Generate(ctx context.Context, id types.ID) (*entities.GenerateResult, error)
	AutoSchedule(ctx context.Context, body dto.AutoScheduleDTO) (*entities.GenerateResult, error)
}

// ScheduleService - шаблоны повторяющегося обслуживания. Следующую дату
// считает backend, шлюз только проверяет форму и пересылает.
type ScheduleService struct {
	api    ScheduleBackend
	bus    EventPublisher
	logger *zap.Logger
}

func NewScheduleService(api ScheduleBackend, bus EventPublisher, logger *zap.Logger) *ScheduleService {
	return &ScheduleService{api: api, bus: publisherOrNop(bus), logger: logger.Named("schedules")}
}

// ValidateSchedule: цель должна соответствовать области, интервал не меньше дня.
func ValidateSchedule(body dto.ScheduleDTO) error {
	if body.RecurrenceInterval < 1 {
		return apperrors.NewInvalidInputError("интервал повторения должен быть не меньше 1 дня")
	}
	switch body.Scope {
	case entities.ScopeEquipment:
		if body.EquipmentID.IsZero() {
			return apperrors.NewInvalidInputError("для области «equipment» нужно указать оборудование")
		}
	case entities.ScopeType:
		if body.EquipmentType == "" {
			return apperrors.NewInvalidInputError("для области «type» нужно указать тип оборудования")
		}
	case entities.ScopeBranch:
		if body.BranchID.IsZero() {
			return apperrors.NewInvalidInputError("для области «branch» нужно указать филиал")
		}
	default:
		return apperrors.NewInvalidInputError("неизвестная область расписания: %q", body.Scope)
	}
	return nil
}

func (s *ScheduleService) publish(ctx context.Context, action string, id, branchID types.ID, message string, payload interface{}) {
	s.bus.Publish(ctx, events.EntityChanged{
		EntityType: events.EntitySchedule,
		Action:     action,
		EntityID:   id,
		BranchID:   branchID,
		Actor:      actorFromCtx(ctx),
		Message:    message,
		Payload:    payload,
	})
}

func (s *ScheduleService) List(ctx context.Context, filter types.Filter) ([]entities.MaintenanceSchedule, *types.Pagination, error) {
	list, pagination, err := s.api.ListSchedules(ctx, utils.FilterToQuery(filter))
	if err != nil {
		logBackendError(s.logger, "Ошибка при получении расписаний", err)
		return nil, nil, err
	}
	return list, pagination, nil
}

func (s *ScheduleService) Find(ctx context.Context, id types.ID) (*entities.MaintenanceSchedule, error) {
	sch, err := s.api.GetSchedule(ctx, id)
	if err != nil {
		logBackendError(s.logger, "Ошибка при поиске расписания", err, zap.String("id", id.String()))
		return nil, err
	}
	return sch, nil
}

func (s *ScheduleService) Create(ctx context.Context, body dto.ScheduleDTO) (*entities.MaintenanceSchedule, error) {
	if err := ValidateSchedule(body); err != nil {
		return nil, err
	}
	sch, err := s.api.CreateSchedule(ctx, body)
	if err != nil {
		logBackendError(s.logger, "Ошибка при создании расписания", err, zap.String("title", body.Title))
		return nil, err
	}
	s.publish(ctx, events.ActionCreated, sch.ID, sch.BranchID, fmt.Sprintf("Создано расписание «%s»", sch.Title), sch)
	return sch, nil
}

func (s *ScheduleService) Update(ctx context.Context, id types.ID, body dto.ScheduleDTO) (*entities.MaintenanceSchedule, error) {
	if err := ValidateSchedule(body); err != nil {
		return nil, err
	}
	sch, err := s.api.UpdateSchedule(ctx, id, body)
	if err != nil {
		logBackendError(s.logger, "Ошибка при обновлении расписания", err, zap.String("id", id.String()))
		return nil, err
	}
	s.publish(ctx, events.ActionUpdated, sch.ID, sch.BranchID, fmt.Sprintf("Изменено расписание «%s»", sch.Title), sch)
	return sch, nil
}

func (s *ScheduleService) Delete(ctx context.Context, id types.ID) error {
	if err := s.api.DeleteSchedule(ctx, id); err != nil {
		logBackendError(s.logger, "Ошибка при удалении расписания", err, zap.String("id", id.String()))
		return err
	}
	s.publish(ctx, events.ActionDeleted, id, "", "Расписание удалено", nil)
	return nil
}

// Generate - "сгенерировать сейчас" по одному шаблону.
func (s *ScheduleService) Generate(ctx context.Context, id types.ID) (*entities.GenerateResult, error) {
	res, err := s.api.GenerateFromSchedule(ctx, id)
	if err != nil {
		logBackendError(s.logger, "Ошибка при генерации обслуживания по расписанию", err, zap.String("id", id.String()))
		return nil, err
	}
	s.publish(ctx, events.ActionGenerated, id, "", fmt.Sprintf("По расписанию создано записей: %d", res.Created), res)
	return res, nil
}

func (s *ScheduleService) AutoSchedule(ctx context.Context, body dto.AutoScheduleDTO) (*entities.GenerateResult, error) {
	res, err := s.api.AutoSchedule(ctx, body)
	if err != nil {
		logBackendError(s.logger, "Ошибка авто-планирования", err)
		return nil, err
	}
	s.publish(ctx, events.ActionGenerated, "", body.BranchID, fmt.Sprintf("Авто-планирование: создано записей %d", res.Created), res)
	return res, nil
}
