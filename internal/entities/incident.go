package entities

import (
	"github.com/aarondl/null/v8"

	"equipment-portal/pkg/types"
)

const (
	IncidentReported      = "reported"
	IncidentInvestigating = "investigating"
	IncidentResolved      = "resolved"
	IncidentClosed        = "closed"
)

type IncidentReport struct {
	ID               types.ID        `json:"id"`
	EquipmentID      types.ID        `json:"equipmentId"`
	EquipmentName    string          `json:"equipmentName,omitempty"`
	BranchID         types.ID        `json:"branchId"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Severity         string          `json:"severity"`
	Status           string          `json:"status"`
	ReportedBy       types.ID        `json:"reportedBy"`
	ReportedByName   string          `json:"reportedByName,omitempty"`
	Escalated        bool            `json:"escalated"`
	EscalationReason null.String     `json:"escalationReason"`
	CreatedAt        types.Timestamp `json:"createdAt"`
	UpdatedAt        types.Timestamp `json:"updatedAt"`
}

func (i IncidentReport) IsOpen() bool {
	return i.Status == IncidentReported || i.Status == IncidentInvestigating
}
