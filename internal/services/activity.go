package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"equipment-portal/internal/entities"
	"equipment-portal/internal/repositories"
	"equipment-portal/pkg/types"
)

type ActivityServiceInterface interface {
	Record(ctx context.Context, entry entities.ActivityEntry) error
	List(ctx context.Context, filter types.Filter) ([]entities.ActivityEntry, *types.Pagination, error)
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

// ActivityService - журнал действий пользователей через шлюз.
type ActivityService struct {
	repo   repositories.ActivityRepositoryInterface
	logger *zap.Logger
	now    func() time.Time
}

func NewActivityService(repo repositories.ActivityRepositoryInterface, logger *zap.Logger) *ActivityService {
	return &ActivityService{repo: repo, logger: logger.Named("activity"), now: time.Now}
}

func (s *ActivityService) Record(ctx context.Context, entry entities.ActivityEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	id, err := s.repo.Insert(ctx, entry)
	if err != nil {
		s.logger.Error("не удалось записать действие в журнал",
			zap.String("action", entry.Action),
			zap.String("entityType", entry.EntityType),
			zap.String("entityID", entry.EntityID),
			zap.Error(err),
		)
		return err
	}
	s.logger.Debug("действие записано в журнал", zap.Int64("id", id), zap.String("action", entry.Action))
	return nil
}

func (s *ActivityService) List(ctx context.Context, filter types.Filter) ([]entities.ActivityEntry, *types.Pagination, error) {
	list, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка чтения журнала действий", zap.Error(err))
		return nil, nil, err
	}
	pagination := &types.Pagination{TotalCount: total, Page: filter.Page, Limit: filter.Limit}
	if filter.Limit > 0 {
		pagination.TotalPages = int((total + uint64(filter.Limit) - 1) / uint64(filter.Limit))
	}
	return list, pagination, nil
}

// Prune удаляет записи старше retention. Нулевой retention - хранить всё.
func (s *ActivityService) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	return s.repo.DeleteOlderThan(ctx, s.now().Add(-retention))
}
