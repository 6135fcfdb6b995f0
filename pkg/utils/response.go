package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-portal/pkg/apiclient"
	apperrors "equipment-portal/pkg/errors"
	"equipment-portal/pkg/types"
)

type HTTPResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int) error {
	return ctx.JSON(code, &HTTPResponse{Status: true, Body: body, Message: message})
}

// SuccessListResponse отдаёт список в формате {list, pagination}.
func SuccessListResponse[T any](ctx echo.Context, list []T, pagination *types.Pagination, message string) error {
	if list == nil {
		list = make([]T, 0)
	}
	return ctx.JSON(http.StatusOK, &HTTPResponse{
		Status:  true,
		Message: message,
		Body:    types.Page[T]{List: list, Pagination: pagination},
	})
}

// UpstreamUnauthorizedKey выставляется, когда backend ответил 401:
// auth-middleware по нему закрывает сессию.
const UpstreamUnauthorizedKey = "upstream_unauthorized"

func ErrorResponse(c echo.Context, err error, logger *zap.Logger) error {
	if errors.Is(err, apiclient.ErrUnauthorized) {
		c.Set(UpstreamUnauthorizedKey, true)
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{"status": false, "message": "Сессия истекла, войдите снова"})
	}

	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		if httpErr.Err != nil {
			logger.Error("HTTP Error",
				zap.Int("code", httpErr.Code),
				zap.String("message", httpErr.Message),
				zap.Error(httpErr.Err),
				zap.Any("context", httpErr.Context),
			)
		}

		// Сообщение backend важнее нашего общего текста.
		message := httpErr.Message
		code := httpErr.Code
		var apiErr *apiclient.APIError
		if errors.As(httpErr.Err, &apiErr) {
			if apiErr.Message != "" {
				message = apiErr.Message
			}
			if apiErr.Status >= 400 && apiErr.Status < 500 {
				code = apiErr.Status
			}
		}
		if apperrors.IsInvalidInput(httpErr.Err) {
			code = http.StatusBadRequest
			message = httpErr.Err.Error()
		}

		response := map[string]interface{}{
			"status":  false,
			"message": message,
		}
		if httpErr.Details != nil {
			response["body"] = httpErr.Details
		}
		return c.JSON(code, response)
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var msgs []string
		for _, e := range validationErrors {
			msgs = append(msgs, fmt.Sprintf("Поле '%s' не прошло проверку '%s'", e.Field(), e.Tag()))
		}
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"status": false, "message": "Ошибка валидации: " + strings.Join(msgs, "; ")})
	}

	if apperrors.IsInvalidInput(err) {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"status": false, "message": err.Error()})
	}

	switch {
	case errors.Is(err, apperrors.ErrUnauthorized),
		errors.Is(err, apperrors.ErrSessionNotFound),
		errors.Is(err, apperrors.ErrEmptyAuthHeader),
		errors.Is(err, apperrors.ErrInvalidAuthHeader),
		errors.Is(err, apperrors.ErrInvalidToken),
		errors.Is(err, apperrors.ErrTokenExpired):
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{"status": false, "message": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		return c.JSON(http.StatusForbidden, map[string]interface{}{"status": false, "message": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]interface{}{"status": false, "message": err.Error()})
	}

	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		code := http.StatusBadGateway
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			code = apiErr.Status
		}
		message := apiErr.Message
		if message == "" {
			message = "Ошибка backend-сервиса"
		}
		return c.JSON(code, map[string]interface{}{"status": false, "message": message})
	}

	logger.Error("Unexpected Error", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"status":  false,
		"message": "Внутренняя ошибка сервера",
	})
}
