package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-portal/internal/dto"
	"equipment-portal/internal/entities"
	"equipment-portal/internal/services"
	"equipment-portal/pkg/apiclient"
	"equipment-portal/pkg/config"
	apperrors "equipment-portal/pkg/errors"
	"equipment-portal/pkg/utils"
)

type AuthController struct {
	authService services.AuthServiceInterface
	session     config.SessionConfig
	logger      *zap.Logger
}

func NewAuthController(authService services.AuthServiceInterface, session config.SessionConfig, logger *zap.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		session:     session,
		logger:      logger,
	}
}

func (ctrl *AuthController) errorResponse(c echo.Context, err error) error {
	return utils.ErrorResponse(c, err, ctrl.logger)
}

func (ctrl *AuthController) Login(c echo.Context) error {
	var payload dto.LoginDTO
	if err := bindBody(c, ctrl.logger, "Login", &payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	session, err := ctrl.authService.Login(c.Request().Context(), payload)
	if err != nil {
		ctrl.logger.Warn("Login: ошибка авторизации", zap.String("email", payload.Email), zap.Error(err))
		return ctrl.errorResponse(c, err)
	}

	ctrl.setSessionCookie(c, session)
	return utils.SuccessResponse(c, sessionResponse(session), "Авторизация прошла успешно", http.StatusOK)
}

func (ctrl *AuthController) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(ctrl.session.CookieName); err == nil && cookie.Value != "" {
		if err := ctrl.authService.Logout(c.Request().Context(), cookie.Value); err != nil {
			ctrl.logger.Error("Logout: не удалось удалить сессию", zap.Error(err))
		}
	}
	ctrl.clearSessionCookie(c)
	return utils.SuccessResponse(c, nil, "Вы успешно вышли из системы.", http.StatusOK)
}

func (ctrl *AuthController) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(ctrl.session.CookieName)
	if err != nil || cookie.Value == "" {
		return ctrl.errorResponse(c, apperrors.ErrUnauthorized)
	}

	session, err := ctrl.authService.Refresh(c.Request().Context(), cookie.Value)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrRefreshUnavailable):
			return ctrl.errorResponse(c, apperrors.NewHttpError(http.StatusUnauthorized, err.Error(), nil, nil))
		case errors.Is(err, apiclient.ErrUnauthorized), errors.Is(err, apperrors.ErrSessionNotFound):
			ctrl.clearSessionCookie(c)
		}
		ctrl.logger.Warn("Refresh: не удалось обновить сессию", zap.Error(err))
		return ctrl.errorResponse(c, err)
	}

	ctrl.setSessionCookie(c, session)
	return utils.SuccessResponse(c, sessionResponse(session), "Сессия обновлена", http.StatusOK)
}

func (ctrl *AuthController) Me(c echo.Context) error {
	user, err := ctrl.authService.Me(c.Request().Context())
	if err != nil {
		ctrl.logger.Error("Me: ошибка получения профиля", zap.Error(err))
		return ctrl.errorResponse(c, apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось получить профиль", err, nil))
	}
	return utils.SuccessResponse(c, user, "Профиль получен", http.StatusOK)
}

func (ctrl *AuthController) setSessionCookie(c echo.Context, session *entities.Session) {
	c.SetCookie(&http.Cookie{
		Name:     ctrl.session.CookieName,
		Value:    session.ID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   ctrl.session.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (ctrl *AuthController) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     ctrl.session.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   ctrl.session.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// токены остаются в Redis, браузер их не видит
func sessionResponse(session *entities.Session) dto.SessionDTO {
	return dto.SessionDTO{User: session.User, ExpiresAt: session.ExpiresAt.Format(time.RFC3339)}
}
