package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"equipment-portal/internal/dto"
	"equipment-portal/internal/entities"
	"equipment-portal/internal/events"
	apperrors "equipment-portal/pkg/errors"
	"equipment-portal/pkg/types"
	"equipment-portal/pkg/utils"
)

// transitions - какие статусы показывать кнопками. Backend проверяет
// переходы сам, шлюз запросы не блокирует.
var transitions = map[string][]string{
	entities.EquipmentActive:               {entities.EquipmentMaintenance, entities.EquipmentInactive, entities.EquipmentDisposed},
	entities.EquipmentMaintenance:          {entities.EquipmentActive},
	entities.EquipmentInactive:             {entities.EquipmentActive, entities.EquipmentDisposed},
	entities.EquipmentPreparingLiquidation: {entities.EquipmentPendingLiquidation},
	entities.EquipmentPendingLiquidation:   {entities.EquipmentDisposed},
	entities.EquipmentDisposed:             {},
}

func AvailableActions(status string) []string {
	next, ok := transitions[status]
	if !ok {
		return []string{}
	}
	return append([]string{}, next...)
}

type EquipmentServiceInterface interface {
	List(ctx context.Context, filter types.Filter) ([]entities.EquipmentView, *types.Pagination, error)
	Find(ctx context.Context, id types.ID) (*entities.EquipmentView, error)
	FindByQR(ctx context.Context, code string) (*entities.EquipmentView, error)
	Create(ctx context.Context, body dto.CreateEquipmentDTO) (*entities.EquipmentView, error)
	Update(ctx context.Context, id types.ID, body dto.UpdateEquipmentDTO) (*entities.EquipmentView, error)
	Delete(ctx context.Context, id types.ID) error
	ChangeStatus(ctx context.Context, id types.ID, body dto.ChangeEquipmentStatusDTO) (*entities.EquipmentView, error)
	Dispose(ctx context.Context, id types.ID, body dto.DisposeEquipmentDTO) (*entities.EquipmentView, error)
	BulkDispose(ctx context.Context, body dto.BulkDisposeDTO) (*dto.BulkDisposeResultDTO, error)
}

type EquipmentService struct {
	api    EquipmentBackend
	bus    EventPublisher
	logger *zap.Logger
	now    func() time.Time
}

func NewEquipmentService(api EquipmentBackend, bus EventPublisher, logger *zap.Logger) *EquipmentService {
	return &EquipmentService{api: api, bus: publisherOrNop(bus), logger: logger.Named("equipment"), now: time.Now}
}

func (s *EquipmentService) view(eq entities.Equipment) entities.EquipmentView {
	return entities.EquipmentView{
		Equipment:        eq,
		AvailableActions: AvailableActions(eq.Status),
		IsOverdue:        IsOverdue(eq, s.now()),
	}
}

func (s *EquipmentService) publish(ctx context.Context, action string, eq *entities.Equipment, message string) {
	s.bus.Publish(ctx, events.EntityChanged{
		EntityType: events.EntityEquipment,
		Action:     action,
		EntityID:   eq.ID,
		BranchID:   eq.BranchID,
		Actor:      actorFromCtx(ctx),
		Message:    message,
		Payload:    eq,
	})
}

// List пробрасывает фильтры, сортировку и пагинацию в backend как есть.
func (s *EquipmentService) List(ctx context.Context, filter types.Filter) ([]entities.EquipmentView, *types.Pagination, error) {
	list, pagination, err := s.api.List(ctx, utils.FilterToQuery(filter))
	if err != nil {
		logBackendError(s.logger, "Ошибка при получении списка оборудования", err)
		return nil, nil, err
	}
	views := make([]entities.EquipmentView, 0, len(list))
	for _, eq := range list {
		views = append(views, s.view(eq))
	}
	return views, pagination, nil
}

func (s *EquipmentService) Find(ctx context.Context, id types.ID) (*entities.EquipmentView, error) {
	eq, err := s.api.Get(ctx, id)
	if err != nil {
		logBackendError(s.logger, "Ошибка при поиске оборудования", err, zap.String("id", id.String()))
		return nil, err
	}
	v := s.view(*eq)
	return &v, nil
}

func (s *EquipmentService) FindByQR(ctx context.Context, code string) (*entities.EquipmentView, error) {
	if code == "" {
		return nil, apperrors.NewInvalidInputError("не указан QR-код")
	}
	eq, err := s.api.GetByQR(ctx, code)
	if err != nil {
		logBackendError(s.logger, "Ошибка при поиске оборудования по QR-коду", err, zap.String("code", code))
		return nil, err
	}
	v := s.view(*eq)
	return &v, nil
}

func (s *EquipmentService) Create(ctx context.Context, body dto.CreateEquipmentDTO) (*entities.EquipmentView, error) {
	eq, err := s.api.Create(ctx, body)
	if err != nil {
		logBackendError(s.logger, "Ошибка при создании оборудования", err, zap.String("name", body.Name))
		return nil, err
	}
	s.publish(ctx, events.ActionCreated, eq, fmt.Sprintf("Добавлено оборудование «%s»", eq.Name))
	v := s.view(*eq)
	return &v, nil
}

func (s *EquipmentService) Update(ctx context.Context, id types.ID, body dto.UpdateEquipmentDTO) (*entities.EquipmentView, error) {
	eq, err := s.api.Update(ctx, id, body)
	if err != nil {
		logBackendError(s.logger, "Ошибка при обновлении оборудования", err, zap.String("id", id.String()))
		return nil, err
	}
	s.publish(ctx, events.ActionUpdated, eq, fmt.Sprintf("Изменено оборудование «%s»", eq.Name))
	v := s.view(*eq)
	return &v, nil
}

func (s *EquipmentService) Delete(ctx context.Context, id types.ID) error {
	if err := s.api.Delete(ctx, id); err != nil {
		logBackendError(s.logger, "Ошибка при удалении оборудования", err, zap.String("id", id.String()))
		return err
	}
	s.publish(ctx, events.ActionDeleted, &entities.Equipment{ID: id}, "Оборудование удалено")
	return nil
}

func (s *EquipmentService) ChangeStatus(ctx context.Context, id types.ID, body dto.ChangeEquipmentStatusDTO) (*entities.EquipmentView, error) {
	eq, err := s.api.UpdateStatus(ctx, id, body)
	if err != nil {
		logBackendError(s.logger, "Ошибка при смене статуса оборудования", err,
			zap.String("id", id.String()), zap.String("status", body.Status))
		return nil, err
	}
	s.publish(ctx, events.ActionStatusChanged, eq, fmt.Sprintf("«%s»: статус изменён на %s", eq.Name, eq.Status))
	v := s.view(*eq)
	return &v, nil
}

// Dispose проверяет причину до обращения к backend.
func (s *EquipmentService) Dispose(ctx context.Context, id types.ID, body dto.DisposeEquipmentDTO) (*entities.EquipmentView, error) {
	reason, err := checkReason(body.Reason, apperrors.ErrDisposalReasonTooShort)
	if err != nil {
		return nil, err
	}
	if err := requireID(id, "оборудование"); err != nil {
		return nil, err
	}

	eq, err := s.api.Dispose(ctx, id, reason)
	if err != nil {
		logBackendError(s.logger, "Ошибка при списании оборудования", err, zap.String("id", id.String()))
		return nil, err
	}
	s.publish(ctx, events.ActionDisposed, eq, fmt.Sprintf("Оборудование «%s» списано: %s", eq.Name, reason))
	v := s.view(*eq)
	return &v, nil
}

// BulkDispose списывает по одной единице. Ошибка по одной не останавливает остальные.
func (s *EquipmentService) BulkDispose(ctx context.Context, body dto.BulkDisposeDTO) (*dto.BulkDisposeResultDTO, error) {
	ids := uniqueIDs(body.EquipmentIDs)
	if len(ids) == 0 {
		return nil, apperrors.WrapInvalidInput(apperrors.ErrNothingSelected)
	}
	reason, err := checkReason(body.Reason, apperrors.ErrDisposalReasonTooShort)
	if err != nil {
		return nil, err
	}

	result := &dto.BulkDisposeResultDTO{Disposed: make([]types.ID, 0, len(ids))}
	var firstErr error
	for _, id := range ids {
		eq, err := s.api.Dispose(ctx, id, reason)
		if err != nil {
			logBackendError(s.logger, "Ошибка при массовом списании", err, zap.String("id", id.String()))
			if firstErr == nil {
				firstErr = err
			}
			result.Failed = append(result.Failed, dto.BulkDisposeError{EquipmentID: id, Message: err.Error()})
			continue
		}
		result.Disposed = append(result.Disposed, id)
		s.publish(ctx, events.ActionDisposed, eq, fmt.Sprintf("Оборудование «%s» списано: %s", eq.Name, reason))
	}

	if len(result.Disposed) == 0 {
		return nil, firstErr
	}
	s.logger.Info("массовое списание выполнено",
		zap.Int("disposed", len(result.Disposed)),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

func uniqueIDs(ids []types.ID) []types.ID {
	seen := make(map[types.ID]struct{}, len(ids))
	out := make([]types.ID, 0, len(ids))
	for _, id := range ids {
		if id.IsZero() {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
