package dto

import "equipment-portal/pkg/types"

type ScheduleDTO struct {
	Title              string          `json:"title"                   validate:"required,max=255"`
	Description        string          `json:"description,omitempty"   validate:"omitempty,max=2000"`
	Scope              string          `json:"scope"                   validate:"required,schedule_scope"`
	EquipmentID        types.ID        `json:"equipmentId,omitempty"`
	EquipmentType      string          `json:"equipmentType,omitempty"`
	BranchID           types.ID        `json:"branchId,omitempty"`
	RecurrenceInterval int             `json:"recurrenceInterval"      validate:"required,min=1"`
	NextScheduledDate  types.Timestamp `json:"nextScheduledDate"`
	Priority           string          `json:"priority"                validate:"required,priority"`
	AssignedTo         types.ID        `json:"assignedTo,omitempty"`
	IsActive           *bool           `json:"isActive,omitempty"`
}

type AutoScheduleDTO struct {
	BranchID types.ID `json:"branchId,omitempty"`
	Days     int      `json:"days,omitempty" validate:"omitempty,min=1,max=365"`
}
