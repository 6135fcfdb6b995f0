package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"equipment-portal/internal/events"
	apperrors "equipment-portal/pkg/errors"
	"equipment-portal/pkg/eventbus"
	"equipment-portal/pkg/types"
	"equipment-portal/pkg/utils"
)

// MinReasonLength - минимальная длина причины списания и эскалации.
const MinReasonLength = 10

// EventPublisher - то, что сервисам нужно от eventbus.Bus.
type EventPublisher interface {
	Publish(ctx context.Context, event eventbus.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, eventbus.Event) {}

func publisherOrNop(p EventPublisher) EventPublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

func actorFromCtx(ctx context.Context) events.Actor {
	p, _ := utils.GetPrincipalFromCtx(ctx)
	return events.ActorFrom(p)
}

// checkReason обрезает пробелы и проверяет длину в символах.
func checkReason(reason string, tooShort error) (string, error) {
	trimmed := strings.TrimSpace(reason)
	if utf8.RuneCountInString(trimmed) < MinReasonLength {
		return "", apperrors.WrapInvalidInput(tooShort)
	}
	return trimmed, nil
}

func requireID(id types.ID, what string) error {
	if strings.TrimSpace(id.String()) == "" {
		return apperrors.NewInvalidInputError("не указан идентификатор: %s", what)
	}
	return nil
}

func logBackendError(logger *zap.Logger, msg string, err error, fields ...zap.Field) {
	logger.Error(msg, append(fields, zap.Error(err))...)
}
