package entities

import "equipment-portal/pkg/types"

// Виды отчётов.
const (
	ReportKindEquipment   = "equipment"
	ReportKindMaintenance = "maintenance"
	ReportKindIncidents   = "incidents"
	ReportKindSummary     = "summary"
)

type ReportSummary struct {
	TotalEquipment       int             `json:"totalEquipment"`
	EquipmentByStatus    map[string]int  `json:"equipmentByStatus"`
	MaintenanceCompleted int             `json:"maintenanceCompleted"`
	MaintenanceOverdue   int             `json:"maintenanceOverdue"`
	IncidentsOpen        int             `json:"incidentsOpen"`
	IncidentsBySeverity  map[string]int  `json:"incidentsBySeverity"`
	TotalCost            float64         `json:"totalCost"`
	BranchID             types.ID        `json:"branchId,omitempty"`
	From                 types.Timestamp `json:"from"`
	To                   types.Timestamp `json:"to"`
}
