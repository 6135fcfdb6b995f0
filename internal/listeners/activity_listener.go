package listeners

import (
	"context"
	"encoding/json"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"

	"equipment-portal/internal/entities"
	"equipment-portal/internal/events"
	"equipment-portal/pkg/eventbus"
)

type ActivityRecorder interface {
	Record(ctx context.Context, entry entities.ActivityEntry) error
}

// ActivityListener пишет каждое принятое backend изменение в журнал.
type ActivityListener struct {
	recorder ActivityRecorder
	logger   *zap.Logger
}

func NewActivityListener(recorder ActivityRecorder, logger *zap.Logger) *ActivityListener {
	return &ActivityListener{recorder: recorder, logger: logger.Named("activity_listener")}
}

func (l *ActivityListener) Register(bus *eventbus.Bus) {
	names := append(events.EntityChangedNames(),
		events.IncidentEscalated{}.Name(),
		events.ReportExported{}.Name(),
	)
	bus.SubscribeMany(l.handle, names...)
}

func (l *ActivityListener) handle(ctx context.Context, event eventbus.Event) error {
	entry, ok := l.toEntry(event)
	if !ok {
		return nil
	}
	return l.recorder.Record(ctx, entry)
}

func (l *ActivityListener) toEntry(event eventbus.Event) (entities.ActivityEntry, bool) {
	switch e := event.(type) {
	case events.EntityChanged:
		return entities.ActivityEntry{
			ActorID:    e.Actor.ID.String(),
			ActorRole:  e.Actor.Role,
			Action:     e.Action,
			EntityType: e.EntityType,
			EntityID:   e.EntityID.String(),
			Payload:    l.marshal(map[string]interface{}{"message": e.Message, "branchId": e.BranchID, "data": e.Payload}),
		}, true
	case events.IncidentEscalated:
		return entities.ActivityEntry{
			ActorID:    e.Actor.ID.String(),
			ActorRole:  e.Actor.Role,
			Action:     events.ActionEscalated,
			EntityType: events.EntityIncident,
			EntityID:   e.Incident.ID.String(),
			Payload:    l.marshal(map[string]interface{}{"reason": e.Reason, "title": e.Incident.Title}),
		}, true
	case events.ReportExported:
		entry := entities.ActivityEntry{
			ActorID:    e.Actor.ID.String(),
			ActorRole:  e.Actor.Role,
			Action:     events.ActionExported,
			EntityType: events.EntityReport,
			EntityID:   e.Kind,
			Payload:    l.marshal(map[string]interface{}{"format": e.Format, "fileName": e.FileName, "rows": e.Rows}),
		}
		if e.ArchiveKey != "" {
			entry.ArchiveKey = null.StringFrom(e.ArchiveKey)
		}
		return entry, true
	}
	return entities.ActivityEntry{}, false
}

func (l *ActivityListener) marshal(v interface{}) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		l.logger.Warn("не удалось сериализовать данные события", zap.Error(err))
		return nil
	}
	return raw
}
