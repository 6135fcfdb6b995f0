package controllers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "equipment-portal/pkg/errors"
	"equipment-portal/pkg/types"
	"equipment-portal/pkg/utils"
)

// pathID достаёт :id из пути. Формат id проверяет backend.
func pathID(ctx echo.Context, logger *zap.Logger, op string) (types.ID, error) {
	raw := strings.TrimSpace(ctx.Param("id"))
	if raw == "" {
		logger.Warn(op+": пустой ID в пути", zap.String("uri", ctx.Request().RequestURI))
		return "", apperrors.NewHttpError(
			http.StatusBadRequest,
			"Не указан идентификатор",
			nil,
			map[string]interface{}{"param": "id"},
		)
	}
	return types.ID(raw), nil
}

// bindBody разбирает и валидирует тело запроса.
func bindBody(ctx echo.Context, logger *zap.Logger, op string, body interface{}) error {
	if err := ctx.Bind(body); err != nil {
		logger.Error(op+": ошибка привязки данных", zap.Error(err))
		return apperrors.NewHttpError(
			http.StatusBadRequest,
			"Неверный формат данных в теле запроса",
			err,
			nil,
		)
	}
	if err := ctx.Validate(body); err != nil {
		logger.Warn(op+": ошибка валидации данных", zap.Error(err))
		return err
	}
	return nil
}

func listFilter(ctx echo.Context) types.Filter {
	return utils.ParseFilterFromQuery(ctx.Request().URL.Query())
}
