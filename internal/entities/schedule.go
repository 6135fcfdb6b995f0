package entities

import "equipment-portal/pkg/types"

const (
	ScopeEquipment = "equipment"
	ScopeType      = "type"
	ScopeBranch    = "branch"
)

// MaintenanceSchedule - шаблон повторяющегося обслуживания.
type MaintenanceSchedule struct {
	ID                 types.ID        `json:"id"`
	Title              string          `json:"title"`
	Description        string          `json:"description,omitempty"`
	Scope              string          `json:"scope"`
	EquipmentID        types.ID        `json:"equipmentId,omitempty"`
	EquipmentType      string          `json:"equipmentType,omitempty"`
	BranchID           types.ID        `json:"branchId,omitempty"`
	RecurrenceInterval int             `json:"recurrenceInterval"`
	NextScheduledDate  types.Timestamp `json:"nextScheduledDate"`
	Priority           string          `json:"priority"`
	AssignedTo         types.ID        `json:"assignedTo,omitempty"`
	IsActive           bool            `json:"isActive"`
}

// GenerateResult - ответ backend на "сгенерировать сейчас" и авто-планирование.
type GenerateResult struct {
	Created int                 `json:"created"`
	Records []MaintenanceRecord `json:"records,omitempty"`
}
