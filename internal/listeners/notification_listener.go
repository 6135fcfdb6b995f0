package listeners

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"equipment-portal/internal/events"
	"equipment-portal/pkg/eventbus"
	"equipment-portal/pkg/utils"
	"equipment-portal/pkg/websocket"
)

const defaultGroupWindow = 2 * time.Second

// Notifier - часть websocket.Hub, нужная слушателю.
type Notifier interface {
	SendToRoles(messageType string, payload interface{}, roles ...string) error
}

// Одинаковые действия одного пользователя за короткое окно (массовое
// списание, серия смен статуса) склеиваются в одно уведомление.
type eventGroupKey struct {
	Name    string
	ActorID string
}

type eventGroup struct {
	events []events.EntityChanged
	timer  *time.Timer
}

type NotificationListener struct {
	notifier Notifier
	window   time.Duration
	logger   *zap.Logger
	groups   map[eventGroupKey]*eventGroup
	groupsMu sync.Mutex
	pending  sync.WaitGroup
}

func NewNotificationListener(notifier Notifier, window time.Duration, logger *zap.Logger) *NotificationListener {
	if window <= 0 {
		window = defaultGroupWindow
	}
	return &NotificationListener{
		notifier: notifier,
		window:   window,
		logger:   logger.Named("notifications"),
		groups:   make(map[eventGroupKey]*eventGroup),
	}
}

func (l *NotificationListener) Register(bus *eventbus.Bus) {
	names := events.EntityChangedNames()
	bus.SubscribeMany(l.handleEntityChanged, names...)
	bus.Subscribe(events.IncidentEscalated{}.Name(), l.handleEscalated)
	l.logger.Info("NotificationListener подписан на события", zap.Int("count", len(names)+1))
}

func (l *NotificationListener) handleEntityChanged(_ context.Context, event eventbus.Event) error {
	e, ok := event.(events.EntityChanged)
	if !ok {
		return nil
	}

	key := eventGroupKey{Name: e.Name(), ActorID: e.Actor.ID.String()}

	l.groupsMu.Lock()
	defer l.groupsMu.Unlock()

	group, exists := l.groups[key]
	if !exists {
		group = &eventGroup{}
		l.groups[key] = group
		l.pending.Add(1)
		group.timer = time.AfterFunc(l.window, func() {
			defer l.pending.Done()
			l.flush(key)
		})
	}
	group.events = append(group.events, e)
	return nil
}

func (l *NotificationListener) flush(key eventGroupKey) {
	l.groupsMu.Lock()
	group, exists := l.groups[key]
	delete(l.groups, key)
	l.groupsMu.Unlock()

	if !exists || len(group.events) == 0 {
		return
	}

	payload := groupPayload(group.events)
	roles := recipientsFor(group.events[0])
	if err := l.notifier.SendToRoles(websocket.TypeNotification, payload, roles...); err != nil {
		l.logger.Error("Не удалось отправить WebSocket-уведомление", zap.String("event", key.Name), zap.Error(err))
		return
	}
	l.logger.Debug("уведомление отправлено",
		zap.String("event", key.Name),
		zap.Int("grouped", len(group.events)),
		zap.Strings("roles", roles),
	)
}

func (l *NotificationListener) handleEscalated(_ context.Context, event eventbus.Event) error {
	e, ok := event.(events.IncidentEscalated)
	if !ok {
		return nil
	}
	payload := websocket.NotificationPayload{
		EventID:    uuid.NewString(),
		Event:      e.Name(),
		Message:    fmt.Sprintf("Инцидент «%s» передан администратору: %s", e.Incident.Title, e.Reason),
		EntityType: events.EntityIncident,
		EntityID:   e.Incident.ID.String(),
		Link:       entityLink(events.EntityIncident, e.Incident.ID.String()),
		ActorName:  e.Actor.Name,
		CreatedAt:  time.Now(),
	}
	return l.notifier.SendToRoles(websocket.TypeNotification, payload, utils.RoleAdmin)
}

// Flush отправляет накопленные группы сразу, не дожидаясь таймеров.
func (l *NotificationListener) Flush() {
	l.groupsMu.Lock()
	keys := make([]eventGroupKey, 0, len(l.groups))
	for key, group := range l.groups {
		if group.timer.Stop() {
			l.pending.Done()
			keys = append(keys, key)
		}
	}
	l.groupsMu.Unlock()

	for _, key := range keys {
		l.flush(key)
	}
	l.pending.Wait()
}

func groupPayload(list []events.EntityChanged) websocket.NotificationPayload {
	first := list[0]
	payload := websocket.NotificationPayload{
		EventID:    uuid.NewString(),
		Event:      first.Name(),
		Message:    first.Message,
		EntityType: first.EntityType,
		EntityID:   first.EntityID.String(),
		Link:       entityLink(first.EntityType, first.EntityID.String()),
		ActorName:  first.Actor.Name,
		CreatedAt:  time.Now(),
	}
	if len(list) > 1 {
		payload.Message = fmt.Sprintf("%s (и ещё %d)", first.Message, len(list)-1)
		payload.EntityID = ""
		payload.Link = entityLink(first.EntityType, "")
	}
	return payload
}

// recipientsFor: админ и менеджер видят всё, техники - обслуживание и инциденты.
func recipientsFor(e events.EntityChanged) []string {
	roles := []string{utils.RoleAdmin, utils.RoleManager}
	switch e.EntityType {
	case events.EntityMaintenance, events.EntitySchedule, events.EntityIncident:
		roles = append(roles, utils.RoleTechnician)
	case events.EntityTransfer, events.EntityEquipment:
		roles = append(roles, utils.RoleReceptionist)
	}
	return roles
}

func entityLink(entityType, id string) string {
	var base string
	switch entityType {
	case events.EntityEquipment:
		base = "/equipment"
	case events.EntityMaintenance:
		base = "/maintenance"
	case events.EntitySchedule:
		base = "/schedules"
	case events.EntityIncident:
		base = "/incidents"
	case events.EntityTransfer:
		return "/transfers"
	default:
		return ""
	}
	if id == "" {
		return base
	}
	return base + "/" + id
}
