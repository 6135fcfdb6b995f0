package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"equipment-portal/internal/dto"
	"equipment-portal/internal/entities"
	"equipment-portal/internal/repositories"
	"equipment-portal/pkg/apiclient"
	apperrors "equipment-portal/pkg/errors"
	"equipment-portal/pkg/service"
	"equipment-portal/pkg/utils"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, creds dto.LoginDTO) (*entities.Session, error)
	Refresh(ctx context.Context, sessionID string) (*entities.Session, error)
	Logout(ctx context.Context, sessionID string) error
	Me(ctx context.Context) (*entities.User, error)
	ResolveSession(ctx context.Context, sessionID string) (*utils.Principal, error)
	InvalidateSession(ctx context.Context, sessionID string) error
}

// AuthService держит сессии браузера. Сами учётные данные проверяет backend,
// шлюз только хранит выданные им токены.
type AuthService struct {
	api      AuthBackend
	sessions repositories.SessionRepositoryInterface
	jwt      service.JWTService
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

func NewAuthService(
	api AuthBackend,
	sessions repositories.SessionRepositoryInterface,
	jwtSvc service.JWTService,
	ttl time.Duration,
	logger *zap.Logger,
) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		api:      api,
		sessions: sessions,
		jwt:      jwtSvc,
		ttl:      ttl,
		logger:   logger.Named("auth"),
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

// fillFromClaims дополняет пользователя данными токена, если backend их не прислал.
func (s *AuthService) fillFromClaims(user *entities.User, token string) {
	if s.jwt == nil || (!user.ID.IsZero() && user.Role != "") {
		return
	}
	claims, err := s.jwt.ParseClaims(token)
	if err != nil {
		s.logger.Debug("не удалось разобрать токен backend", zap.Error(err))
		return
	}
	if user.ID.IsZero() {
		user.ID = claims.PrincipalID()
	}
	if user.Role == "" {
		user.Role = claims.Role
	}
	if user.BranchID.IsZero() {
		user.BranchID = claims.BranchID
	}
	if user.Name == "" {
		user.Name = claims.Name
	}
}

func (s *AuthService) Login(ctx context.Context, creds dto.LoginDTO) (*entities.Session, error) {
	resp, err := s.api.Login(ctx, creds)
	if err != nil {
		// 401 на логине - неверный пароль, а не истёкшая сессия
		if errors.Is(err, apiclient.ErrUnauthorized) {
			s.logger.Warn("неудачная попытка входа", zap.String("email", creds.Email))
			return nil, apperrors.NewHttpError(http.StatusUnauthorized, "Неверный email или пароль", nil, nil)
		}
		logBackendError(s.logger, "Ошибка входа", err, zap.String("email", creds.Email))
		return nil, err
	}
	token := resp.Access()
	if token == "" {
		return nil, fmt.Errorf("backend не вернул токен доступа")
	}

	user := resp.User
	s.fillFromClaims(&user, token)

	now := s.now()
	session := entities.Session{
		ID:           s.newID(),
		AccessToken:  token,
		RefreshToken: resp.RefreshToken,
		User:         user,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
	}
	if err := s.sessions.Save(ctx, session, s.ttl); err != nil {
		s.logger.Error("не удалось сохранить сессию", zap.Error(err))
		return nil, err
	}
	s.logger.Info("пользователь вошёл",
		zap.String("userID", user.ID.String()),
		zap.String("role", user.Role),
	)
	return &session, nil
}

func (s *AuthService) Refresh(ctx context.Context, sessionID string) (*entities.Session, error) {
	session, err := s.sessions.Find(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.RefreshToken == "" {
		return nil, apperrors.ErrRefreshUnavailable
	}

	resp, err := s.api.Refresh(ctx, session.RefreshToken)
	if err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			_ = s.sessions.Delete(context.WithoutCancel(ctx), sessionID)
		}
		logBackendError(s.logger, "Ошибка обновления токена", err, zap.String("userID", session.User.ID.String()))
		return nil, err
	}
	if token := resp.Access(); token != "" {
		session.AccessToken = token
	}
	if resp.RefreshToken != "" {
		session.RefreshToken = resp.RefreshToken
	}
	if !resp.User.ID.IsZero() {
		session.User = resp.User
	}
	session.ExpiresAt = s.now().Add(s.ttl)

	if err := s.sessions.Save(ctx, *session, s.ttl); err != nil {
		return nil, err
	}
	return session, nil
}

// Logout закрывает сессию даже если backend не ответил.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	session, err := s.sessions.Find(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionNotFound) {
			return nil
		}
		return err
	}
	if err := s.api.Logout(apiclient.WithToken(ctx, session.AccessToken)); err != nil {
		s.logger.Warn("backend не принял logout", zap.Error(err))
	}
	return s.sessions.Delete(ctx, sessionID)
}

func (s *AuthService) Me(ctx context.Context) (*entities.User, error) {
	user, err := s.api.Me(ctx)
	if err != nil {
		logBackendError(s.logger, "Ошибка получения профиля", err)
		return nil, err
	}
	return user, nil
}

func (s *AuthService) ResolveSession(ctx context.Context, sessionID string) (*utils.Principal, error) {
	session, err := s.sessions.Find(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &utils.Principal{
		SessionID: session.ID,
		UserID:    session.User.ID,
		Name:      session.User.Name,
		Role:      session.User.Role,
		BranchID:  session.User.BranchID,
		Token:     session.AccessToken,
		Verified:  true,
	}, nil
}

// VerifyToken спрашивает у backend, чей это токен. Раз backend его принял,
// недостающие поля можно взять из claims.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*utils.Principal, error) {
	user, err := s.api.Me(apiclient.WithToken(ctx, token))
	if err != nil {
		if !errors.Is(err, apiclient.ErrUnauthorized) {
			logBackendError(s.logger, "Ошибка проверки токена", err)
		}
		return nil, err
	}
	s.fillFromClaims(user, token)
	return &utils.Principal{
		UserID:   user.ID,
		Name:     user.Name,
		Role:     user.Role,
		BranchID: user.BranchID,
		Token:    token,
		Verified: true,
	}, nil
}

func (s *AuthService) InvalidateSession(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}
