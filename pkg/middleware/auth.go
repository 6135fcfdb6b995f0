package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-portal/pkg/apiclient"
	apperrors "equipment-portal/pkg/errors"
	"equipment-portal/pkg/service"
	"equipment-portal/pkg/utils"
)

// SessionStore - откуда middleware берёт пользователя по cookie сессии.
type SessionStore interface {
	ResolveSession(ctx context.Context, sessionID string) (*utils.Principal, error)
	InvalidateSession(ctx context.Context, sessionID string) error
}

// TokenVerifier подтверждает bearer-токен у backend, когда подпись проверить нечем.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*utils.Principal, error)
}

type AuthMiddleware struct {
	jwtService service.JWTService
	sessions   SessionStore
	verifier   TokenVerifier
	cookieName string
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, sessions SessionStore, cookieName string, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		sessions:   sessions,
		cookieName: cookieName,
		logger:     logger.Named("auth_mw"),
	}
}

// WithTokenVerifier включает проверку непроверенных токенов через backend.
func (m *AuthMiddleware) WithTokenVerifier(v TokenVerifier) *AuthMiddleware {
	m.verifier = v
	return m
}

// Auth принимает cookie сессии или bearer-токен backend. Токен пользователя
// кладётся в контекст и уходит во все запросы к backend.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		principal, err := m.authenticate(c)
		if err != nil {
			m.logger.Warn("AuthMiddleware: запрос отклонён", zap.String("uri", c.Request().RequestURI), zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}

		ctx = utils.WithPrincipal(ctx, principal)
		ctx = apiclient.WithToken(ctx, principal.Token)
		c.SetRequest(c.Request().WithContext(ctx))

		handlerErr := next(c)

		if flagged, _ := c.Get(utils.UpstreamUnauthorizedKey).(bool); flagged && principal.SessionID != "" {
			if err := m.sessions.InvalidateSession(context.WithoutCancel(ctx), principal.SessionID); err != nil {
				m.logger.Error("не удалось удалить сессию после 401 backend", zap.Error(err))
			}
			m.clearCookie(c)
			m.logger.Info("сессия закрыта: backend отклонил токен", zap.String("userID", principal.UserID.String()))
		}
		return handlerErr
	}
}

func (m *AuthMiddleware) authenticate(c echo.Context) (*utils.Principal, error) {
	if cookie, err := c.Cookie(m.cookieName); err == nil && cookie.Value != "" {
		return m.sessions.ResolveSession(c.Request().Context(), cookie.Value)
	}

	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		// браузерный websocket не умеет слать заголовки
		if token := c.QueryParam("token"); token != "" && c.IsWebSocket() {
			authHeader = "Bearer " + token
		} else {
			return nil, apperrors.ErrEmptyAuthHeader
		}
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return nil, apperrors.ErrInvalidAuthHeader
	}

	claims, err := m.jwtService.ParseClaims(parts[1])
	if err != nil {
		return nil, err
	}
	principal := &utils.Principal{
		UserID:   claims.PrincipalID(),
		Name:     claims.Name,
		Role:     claims.Role,
		BranchID: claims.BranchID,
		Token:    parts[1],
		Verified: claims.Verified,
	}
	if principal.Verified || m.verifier == nil {
		return principal, nil
	}

	confirmed, err := m.verifier.VerifyToken(c.Request().Context(), parts[1])
	if err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, err
	}
	confirmed.Token = parts[1]
	confirmed.Verified = true
	return confirmed, nil
}

func (m *AuthMiddleware) clearCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// RequireRoles пропускает только перечисленные роли и только с подтверждённой
// личностью: роль из непроверенного токена ничего не значит.
func RequireRoles(logger *zap.Logger, roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, err := utils.GetPrincipalFromCtx(c.Request().Context())
			if err != nil {
				return utils.ErrorResponse(c, apperrors.ErrUnauthorized, logger)
			}
			if !principal.Verified {
				logger.Warn("доступ запрещён: личность не подтверждена",
					zap.String("userID", principal.UserID.String()),
					zap.String("role", principal.Role),
				)
				return utils.ErrorResponse(c, apperrors.ErrUnauthorized, logger)
			}
			if !principal.HasRole(roles...) {
				logger.Warn("доступ запрещён",
					zap.String("userID", principal.UserID.String()),
					zap.String("role", principal.Role),
					zap.Strings("required", roles),
				)
				return utils.ErrorResponse(c, apperrors.ErrForbidden, logger)
			}
			return next(c)
		}
	}
}
