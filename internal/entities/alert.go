package entities

import (
	"time"

	"equipment-portal/pkg/types"
)

const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Виды алертов.
const (
	AlertUpcomingMaintenance = "upcoming_maintenance"
	AlertOverdueMaintenance  = "overdue_maintenance"
	AlertInactiveEquipment   = "inactive_equipment"
	AlertInMaintenance       = "in_maintenance"
	AlertIoT                 = "iot"
)

// Источники данных ленты.
const (
	SourceEquipment   = "equipment"
	SourceMaintenance = "maintenance"
	SourceIoT         = "iot"
)

type Alert struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Severity    string    `json:"severity"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	EquipmentID types.ID  `json:"equipmentId,omitempty"`
	BranchID    types.ID  `json:"branchId,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Link        string    `json:"link"`
}

// AlertFeed - лента алертов и источники, которые не ответили.
type AlertFeed struct {
	Alerts             []Alert        `json:"alerts"`
	BySeverity         map[string]int `json:"bySeverity"`
	UnavailableSources []string       `json:"unavailableSources,omitempty"`
	GeneratedAt        time.Time      `json:"generatedAt"`
}
