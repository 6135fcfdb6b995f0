package dto

import "equipment-portal/pkg/types"

type CreateMaintenanceDTO struct {
	EquipmentID   types.ID        `json:"equipmentId"   validate:"required"`
	Type          string          `json:"type,omitempty" validate:"omitempty,max=100"`
	Description   string          `json:"description,omitempty" validate:"omitempty,max=2000"`
	Priority      string          `json:"priority"      validate:"required,priority"`
	ScheduledDate types.Timestamp `json:"scheduledDate"`
	AssignedTo    types.ID        `json:"assignedTo,omitempty"`
}

type UpdateMaintenanceDTO struct {
	Type          *string          `json:"type,omitempty"          validate:"omitempty,max=100"`
	Description   *string          `json:"description,omitempty"   validate:"omitempty,max=2000"`
	Priority      *string          `json:"priority,omitempty"      validate:"omitempty,priority"`
	ScheduledDate *types.Timestamp `json:"scheduledDate,omitempty"`
	AssignedTo    *types.ID        `json:"assignedTo,omitempty"`
}

type ChangeMaintenanceStatusDTO struct {
	Status          string `json:"status"                    validate:"required,maintenance_status"`
	TechnicianNotes string `json:"technicianNotes,omitempty" validate:"omitempty,max=2000"`
}

type MaintenanceFeedbackDTO struct {
	Rating  int    `json:"rating"            validate:"required,min=1,max=5"`
	Comment string `json:"comment,omitempty" validate:"omitempty,max=2000"`
}

type CancelMaintenanceDTO struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=1000"`
}
