package events

import (
	"equipment-portal/internal/entities"
	"equipment-portal/pkg/types"
	"equipment-portal/pkg/utils"
)

// Типы сущностей.
const (
	EntityEquipment   = "equipment"
	EntityMaintenance = "maintenance"
	EntitySchedule    = "schedule"
	EntityIncident    = "incident"
	EntityTransfer    = "transfer"
	EntityReport      = "report"
)

// Действия.
const (
	ActionCreated       = "created"
	ActionUpdated       = "updated"
	ActionDeleted       = "deleted"
	ActionStatusChanged = "status_changed"
	ActionDisposed      = "disposed"
	ActionFeedback      = "feedback"
	ActionCancelled     = "cancelled"
	ActionGenerated     = "generated"
	ActionEscalated     = "escalated"
	ActionApproved      = "approved"
	ActionRejected      = "rejected"
	ActionCompleted     = "completed"
	ActionExported      = "exported"
)

// Actor - кто совершил действие.
type Actor struct {
	ID   types.ID
	Name string
	Role string
}

func ActorFrom(p *utils.Principal) Actor {
	if p == nil {
		return Actor{}
	}
	return Actor{ID: p.UserID, Name: p.Name, Role: p.Role}
}

// EntityChanged - изменение, успешно принятое backend.
type EntityChanged struct {
	EntityType string
	Action     string
	EntityID   types.ID
	BranchID   types.ID
	Actor      Actor
	Message    string
	Payload    interface{}
}

func (e EntityChanged) Name() string {
	return e.EntityType + "." + e.Action
}

// IncidentEscalated уходит отдельным событием: на него подписан Telegram.
type IncidentEscalated struct {
	Incident entities.IncidentReport
	Reason   string
	Actor    Actor
}

func (e IncidentEscalated) Name() string { return "incident.escalated" }

// ReportExported - выгрузка отчёта, возможно сохранённая в архив.
type ReportExported struct {
	Kind       string
	Format     string
	FileName   string
	ArchiveKey string
	Rows       int
	Actor      Actor
}

func (e ReportExported) Name() string { return "report.exported" }

// EntityChangedNames - все имена EntityChanged, на которые подписываются слушатели.
func EntityChangedNames() []string {
	pairs := map[string][]string{
		EntityEquipment:   {ActionCreated, ActionUpdated, ActionDeleted, ActionStatusChanged, ActionDisposed},
		EntityMaintenance: {ActionCreated, ActionUpdated, ActionStatusChanged, ActionFeedback, ActionCancelled},
		EntitySchedule:    {ActionCreated, ActionUpdated, ActionDeleted, ActionGenerated},
		EntityIncident:    {ActionCreated, ActionStatusChanged},
		EntityTransfer:    {ActionCreated, ActionApproved, ActionRejected, ActionCompleted},
	}
	order := []string{EntityEquipment, EntityMaintenance, EntitySchedule, EntityIncident, EntityTransfer}
	var names []string
	for _, entity := range order {
		for _, action := range pairs[entity] {
			names = append(names, entity+"."+action)
		}
	}
	return names
}
