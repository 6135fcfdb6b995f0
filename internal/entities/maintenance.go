package entities

import (
	"github.com/aarondl/null/v8"

	"equipment-portal/pkg/types"
)

const (
	MaintenanceScheduled  = "scheduled"
	MaintenanceInProgress = "in_progress"
	MaintenanceCompleted  = "completed"
	MaintenanceCancelled  = "cancelled"
)

const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

type MaintenanceRecord struct {
	ID              types.ID        `json:"id"`
	EquipmentID     types.ID        `json:"equipmentId"`
	EquipmentName   string          `json:"equipmentName,omitempty"`
	BranchID        types.ID        `json:"branchId"`
	Status          string          `json:"status"`
	Type            string          `json:"type,omitempty"`
	Description     string          `json:"description,omitempty"`
	Priority        string          `json:"priority"`
	ScheduledDate   types.Timestamp `json:"scheduledDate"`
	CompletedDate   types.Timestamp `json:"completedDate"`
	AssignedTo      types.ID        `json:"assignedTo"`
	AssignedToName  string          `json:"assignedToName,omitempty"`
	ScheduleID      types.ID        `json:"scheduleId,omitempty"`
	Rating          null.Int        `json:"rating"`
	FeedbackComment null.String     `json:"feedbackComment"`
	TechnicianNotes null.String     `json:"technicianNotes"`
	CreatedAt       types.Timestamp `json:"createdAt"`
}

// IsOpen - запись ещё не завершена и не отменена.
func (m MaintenanceRecord) IsOpen() bool {
	return m.Status == MaintenanceScheduled || m.Status == MaintenanceInProgress
}
