package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"equipment-portal/internal/entities"
	apperrors "equipment-portal/pkg/errors"
)

const sessionKeyPrefix = "session:"

type SessionRepositoryInterface interface {
	Save(ctx context.Context, session entities.Session, ttl time.Duration) error
	Find(ctx context.Context, id string) (*entities.Session, error)
	Touch(ctx context.Context, id string, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// SessionRepository хранит сессии в кеше как JSON.
type SessionRepository struct {
	cache CacheRepositoryInterface
}

func NewSessionRepository(cache CacheRepositoryInterface) SessionRepositoryInterface {
	return &SessionRepository{cache: cache}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (r *SessionRepository) Save(ctx context.Context, session entities.Session, ttl time.Duration) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("ошибка сериализации сессии: %w", err)
	}
	if err := r.cache.Set(ctx, sessionKey(session.ID), raw, ttl); err != nil {
		return fmt.Errorf("не удалось сохранить сессию: %w", err)
	}
	return nil
}

// Find возвращает ErrSessionNotFound для неизвестного или истёкшего id.
func (r *SessionRepository) Find(ctx context.Context, id string) (*entities.Session, error) {
	if id == "" {
		return nil, apperrors.ErrSessionNotFound
	}
	raw, err := r.cache.Get(ctx, sessionKey(id))
	if errors.Is(err, ErrCacheMiss) {
		return nil, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать сессию: %w", err)
	}
	var session entities.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("повреждённая сессия %s: %w", id, err)
	}
	return &session, nil
}

func (r *SessionRepository) Touch(ctx context.Context, id string, ttl time.Duration) error {
	ok, err := r.cache.Expire(ctx, sessionKey(id), ttl)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.cache.Del(ctx, sessionKey(id))
}
