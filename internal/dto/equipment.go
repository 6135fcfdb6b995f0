package dto

import (
	"github.com/aarondl/null/v8"

	"equipment-portal/pkg/types"
)

type CreateEquipmentDTO struct {
	Name                string          `json:"name"                validate:"required,max=255"`
	Type                string          `json:"type"                validate:"required,max=100"`
	Status              string          `json:"status,omitempty"    validate:"omitempty,equipment_status"`
	BranchID            types.ID        `json:"branchId"            validate:"required"`
	SerialNumber        string          `json:"serialNumber,omitempty"`
	QRCode              string          `json:"qrCode,omitempty"`
	Location            string          `json:"location,omitempty"`
	PurchaseDate        types.Timestamp `json:"purchaseDate"`
	LastMaintenanceDate types.Timestamp `json:"lastMaintenanceDate"`
	MaintenanceInterval null.Int        `json:"maintenanceInterval"`
}

type UpdateEquipmentDTO struct {
	Name                *string          `json:"name,omitempty"                validate:"omitempty,max=255"`
	Type                *string          `json:"type,omitempty"                validate:"omitempty,max=100"`
	SerialNumber        *string          `json:"serialNumber,omitempty"`
	QRCode              *string          `json:"qrCode,omitempty"`
	Location            *string          `json:"location,omitempty"`
	PurchaseDate        *types.Timestamp `json:"purchaseDate,omitempty"`
	LastMaintenanceDate *types.Timestamp `json:"lastMaintenanceDate,omitempty"`
	NextMaintenanceDate *types.Timestamp `json:"nextMaintenanceDate,omitempty"`
	MaintenanceInterval *int             `json:"maintenanceInterval,omitempty" validate:"omitempty,gt=0"`
}

type ChangeEquipmentStatusDTO struct {
	Status string `json:"status" validate:"required,equipment_status"`
	Note   string `json:"note,omitempty" validate:"omitempty,max=1000"`
}

// DisposeEquipmentDTO - списание одной единицы.
type DisposeEquipmentDTO struct {
	Reason string `json:"reason" validate:"required,trimmed_min=10,max=2000"`
}

// BulkDisposeDTO - массовое списание. Пустой список отклоняется сервисом.
type BulkDisposeDTO struct {
	EquipmentIDs []types.ID `json:"equipmentIds"`
	Reason       string     `json:"reason" validate:"required,trimmed_min=10,max=2000"`
}

type BulkDisposeResultDTO struct {
	Disposed []types.ID         `json:"disposed"`
	Failed   []BulkDisposeError `json:"failed,omitempty"`
}

type BulkDisposeError struct {
	EquipmentID types.ID `json:"equipmentId"`
	Message     string   `json:"message"`
}
