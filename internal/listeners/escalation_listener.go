package listeners

import (
	"context"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"

	"equipment-portal/internal/events"
	"equipment-portal/pkg/eventbus"
	"equipment-portal/pkg/telegram"
)

// EscalationListener сообщает в чат администраторов об эскалации инцидента.
type EscalationListener struct {
	telegram telegram.ServiceInterface
	chatID   int64
	logger   *zap.Logger
}

func NewEscalationListener(tg telegram.ServiceInterface, adminChatID int64, logger *zap.Logger) *EscalationListener {
	return &EscalationListener{telegram: tg, chatID: adminChatID, logger: logger.Named("escalation_listener")}
}

// Register ничего не подписывает, если бот или чат не настроены.
func (l *EscalationListener) Register(bus *eventbus.Bus) {
	if l.telegram == nil || !l.telegram.Enabled() || l.chatID == 0 {
		l.logger.Info("Telegram не настроен, эскалации уходят только в веб-уведомления")
		return
	}
	bus.Subscribe(events.IncidentEscalated{}.Name(), l.handle)
}

func (l *EscalationListener) handle(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.IncidentEscalated)
	if !ok {
		return nil
	}
	if err := l.telegram.SendMessage(ctx, l.chatID, formatEscalation(e)); err != nil {
		l.logger.Error("не удалось отправить эскалацию в Telegram",
			zap.String("incidentID", e.Incident.ID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func formatEscalation(e events.IncidentEscalated) string {
	var sb strings.Builder
	sb.WriteString("🚨 <b>Эскалация инцидента</b>\n")
	fmt.Fprintf(&sb, "<b>%s</b> (#%s)\n", html.EscapeString(e.Incident.Title), html.EscapeString(e.Incident.ID.String()))
	if e.Incident.EquipmentName != "" {
		fmt.Fprintf(&sb, "Оборудование: %s\n", html.EscapeString(e.Incident.EquipmentName))
	}
	if e.Incident.Severity != "" {
		fmt.Fprintf(&sb, "Важность: %s\n", html.EscapeString(e.Incident.Severity))
	}
	fmt.Fprintf(&sb, "Причина: %s\n", html.EscapeString(e.Reason))
	if e.Actor.Name != "" {
		fmt.Fprintf(&sb, "Передал: %s", html.EscapeString(e.Actor.Name))
	}
	return strings.TrimRight(sb.String(), "\n")
}
