package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"equipment-portal/internal/entities"
	"equipment-portal/internal/repositories"
	"equipment-portal/pkg/types"
	"equipment-portal/pkg/utils"
)

const branchCacheTTL = 5 * time.Minute

type BranchServiceInterface interface {
	List(ctx context.Context, filter types.Filter) ([]entities.Branch, *types.Pagination, error)
	Find(ctx context.Context, id types.ID) (*entities.Branch, error)
}

// BranchService кеширует справочник филиалов в Redis. Без кеша работает напрямую.
type BranchService struct {
	api    BranchBackend
	cache  repositories.CacheRepositoryInterface
	ttl    time.Duration
	logger *zap.Logger
}

func NewBranchService(api BranchBackend, cache repositories.CacheRepositoryInterface, logger *zap.Logger) *BranchService {
	return &BranchService{api: api, cache: cache, ttl: branchCacheTTL, logger: logger.Named("branches")}
}

type cachedBranches struct {
	List       []entities.Branch `json:"list"`
	Pagination *types.Pagination `json:"pagination,omitempty"`
}

func (s *BranchService) readCache(ctx context.Context, key string, out interface{}) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, repositories.ErrCacheMiss) {
			s.logger.Warn("кеш филиалов недоступен", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.logger.Warn("повреждённая запись кеша", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *BranchService) writeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		s.logger.Warn("не удалось записать кеш филиалов", zap.String("key", key), zap.Error(err))
	}
}

func (s *BranchService) List(ctx context.Context, filter types.Filter) ([]entities.Branch, *types.Pagination, error) {
	q := utils.FilterToQuery(filter)
	key := "branches:list:" + q.Encode()

	var cached cachedBranches
	if s.readCache(ctx, key, &cached) {
		return cached.List, cached.Pagination, nil
	}

	list, pagination, err := s.api.List(ctx, q)
	if err != nil {
		logBackendError(s.logger, "Ошибка при получении филиалов", err)
		return nil, nil, err
	}
	s.writeCache(ctx, key, cachedBranches{List: list, Pagination: pagination})
	return list, pagination, nil
}

func (s *BranchService) Find(ctx context.Context, id types.ID) (*entities.Branch, error) {
	key := "branches:" + id.String()

	var cached entities.Branch
	if s.readCache(ctx, key, &cached) {
		return &cached, nil
	}

	branch, err := s.api.Get(ctx, id)
	if err != nil {
		logBackendError(s.logger, "Ошибка при поиске филиала", err, zap.String("id", id.String()))
		return nil, err
	}
	s.writeCache(ctx, key, branch)
	return branch, nil
}

type UserServiceInterface interface {
	List(ctx context.Context, filter types.Filter) ([]entities.User, *types.Pagination, error)
	Find(ctx context.Context, id types.ID) (*entities.User, error)
	Technicians(ctx context.Context, branchID types.ID) ([]entities.User, error)
}

type UserService struct {
	api    UserBackend
	logger *zap.Logger
}

func NewUserService(api UserBackend, logger *zap.Logger) *UserService {
	return &UserService{api: api, logger: logger.Named("users")}
}

func (s *UserService) List(ctx context.Context, filter types.Filter) ([]entities.User, *types.Pagination, error) {
	list, pagination, err := s.api.List(ctx, utils.FilterToQuery(filter))
	if err != nil {
		logBackendError(s.logger, "Ошибка при получении пользователей", err)
		return nil, nil, err
	}
	return list, pagination, nil
}

func (s *UserService) Find(ctx context.Context, id types.ID) (*entities.User, error) {
	user, err := s.api.Get(ctx, id)
	if err != nil {
		logBackendError(s.logger, "Ошибка при поиске пользователя", err, zap.String("id", id.String()))
		return nil, err
	}
	return user, nil
}

// Technicians - активные техники для назначения на обслуживание.
// Роль проверяется и на стороне шлюза: старый backend игнорирует filter[role].
func (s *UserService) Technicians(ctx context.Context, branchID types.ID) ([]entities.User, error) {
	f := map[string]string{"role": utils.RoleTechnician}
	if !branchID.IsZero() {
		f["branchId"] = branchID.String()
	}
	list, _, err := s.api.List(ctx, listAll(utils.FilterToQuery(types.Filter{Filter: f})))
	if err != nil {
		logBackendError(s.logger, "Ошибка при получении техников", err)
		return nil, err
	}

	out := make([]entities.User, 0, len(list))
	for _, u := range list {
		if u.Role != utils.RoleTechnician || !u.IsActive {
			continue
		}
		if !branchID.IsZero() && u.BranchID != branchID {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}
