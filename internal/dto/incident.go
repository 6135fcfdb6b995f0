package dto

import "equipment-portal/pkg/types"

type CreateIncidentDTO struct {
	EquipmentID types.ID `json:"equipmentId" validate:"required"`
	Title       string   `json:"title"       validate:"required,max=255"`
	Description string   `json:"description" validate:"required,max=5000"`
	Severity    string   `json:"severity"    validate:"required,severity"`
}

type ChangeIncidentStatusDTO struct {
	Status string `json:"status"          validate:"required,incident_status"`
	Note   string `json:"note,omitempty"  validate:"omitempty,max=2000"`
}

type EscalateIncidentDTO struct {
	Reason string `json:"reason" validate:"required,trimmed_min=10,max=2000"`
}
