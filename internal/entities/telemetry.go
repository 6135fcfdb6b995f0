package entities

import (
	"time"

	"equipment-portal/pkg/types"
)

// Уровни IoT-событий.
const (
	IoTLevelInfo     = "info"
	IoTLevelWarning  = "warning"
	IoTLevelCritical = "critical"
)

type Telemetry struct {
	DeviceID    string    `json:"deviceId"`
	EquipmentID types.ID  `json:"equipmentId"`
	BranchID    types.ID  `json:"branchId,omitempty"`
	Metric      string    `json:"metric"`
	Value       float64   `json:"value"`
	Unit        string    `json:"unit,omitempty"`
	Level       string    `json:"level,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// IoTAlert - тревога, присланная датчиком.
type IoTAlert struct {
	ID          string    `json:"id"`
	DeviceID    string    `json:"deviceId"`
	EquipmentID types.ID  `json:"equipmentId"`
	BranchID    types.ID  `json:"branchId,omitempty"`
	Level       string    `json:"level"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
}
