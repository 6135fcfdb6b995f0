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

type IncidentServiceInterface interface {
	List(ctx context.Context, filter types.Filter) ([]entities.IncidentReport, *types.Pagination, error)
	Find(ctx context.Context, id types.ID) (*entities.IncidentReport, error)
	Report(ctx context.Context, body dto.CreateIncidentDTO) (*entities.IncidentReport, error)
	ChangeStatus(ctx context.Context, id types.ID, body dto.ChangeIncidentStatusDTO) (*entities.IncidentReport, error)
	Escalate(ctx context.Context, id types.ID, body dto.EscalateIncidentDTO) (*entities.IncidentReport, error)
}

type IncidentService struct {
	api    IncidentBackend
	bus    EventPublisher
	logger *zap.Logger
}

func NewIncidentService(api IncidentBackend, bus EventPublisher, logger *zap.Logger) *IncidentService {
	return &IncidentService{api: api, bus: publisherOrNop(bus), logger: logger.Named("incidents")}
}

func (s *IncidentService) List(ctx context.Context, filter types.Filter) ([]entities.IncidentReport, *types.Pagination, error) {
	list, pagination, err := s.api.ListIncidents(ctx, utils.FilterToQuery(filter))
	if err != nil {
		logBackendError(s.logger, "Ошибка при получении инцидентов", err)
		return nil, nil, err
	}
	return list, pagination, nil
}

func (s *IncidentService) Find(ctx context.Context, id types.ID) (*entities.IncidentReport, error) {
	inc, err := s.api.GetIncident(ctx, id)
	if err != nil {
		logBackendError(s.logger, "Ошибка при поиске инцидента", err, zap.String("id", id.String()))
		return nil, err
	}
	return inc, nil
}

func (s *IncidentService) Report(ctx context.Context, body dto.CreateIncidentDTO) (*entities.IncidentReport, error) {
	inc, err := s.api.CreateIncident(ctx, body)
	if err != nil {
		logBackendError(s.logger, "Ошибка при регистрации инцидента", err, zap.String("equipmentID", body.EquipmentID.String()))
		return nil, err
	}
	s.bus.Publish(ctx, events.EntityChanged{
		EntityType: events.EntityIncident,
		Action:     events.ActionCreated,
		EntityID:   inc.ID,
		BranchID:   inc.BranchID,
		Actor:      actorFromCtx(ctx),
		Message:    fmt.Sprintf("Новый инцидент «%s» (%s)", inc.Title, inc.Severity),
		Payload:    inc,
	})
	return inc, nil
}

func (s *IncidentService) ChangeStatus(ctx context.Context, id types.ID, body dto.ChangeIncidentStatusDTO) (*entities.IncidentReport, error) {
	inc, err := s.api.UpdateIncidentStatus(ctx, id, body)
	if err != nil {
		logBackendError(s.logger, "Ошибка при смене статуса инцидента", err,
			zap.String("id", id.String()), zap.String("status", body.Status))
		return nil, err
	}
	s.bus.Publish(ctx, events.EntityChanged{
		EntityType: events.EntityIncident,
		Action:     events.ActionStatusChanged,
		EntityID:   inc.ID,
		BranchID:   inc.BranchID,
		Actor:      actorFromCtx(ctx),
		Message:    fmt.Sprintf("Статус инцидента: %s", inc.Status),
		Payload:    inc,
	})
	return inc, nil
}

// Escalate передаёт инцидент администратору. Причина обязательна.
func (s *IncidentService) Escalate(ctx context.Context, id types.ID, body dto.EscalateIncidentDTO) (*entities.IncidentReport, error) {
	reason, err := checkReason(body.Reason, apperrors.ErrEscalationReason)
	if err != nil {
		return nil, err
	}
	inc, err := s.api.EscalateIncident(ctx, id, reason)
	if err != nil {
		logBackendError(s.logger, "Ошибка при эскалации инцидента", err, zap.String("id", id.String()))
		return nil, err
	}
	if inc.ID.IsZero() {
		inc.ID = id
	}
	s.bus.Publish(ctx, events.IncidentEscalated{Incident: *inc, Reason: reason, Actor: actorFromCtx(ctx)})
	return inc, nil
}
