package entities

import (
	"github.com/aarondl/null/v8"

	"equipment-portal/pkg/types"
)

// Статусы жизненного цикла оборудования.
const (
	EquipmentActive               = "active"
	EquipmentMaintenance          = "maintenance"
	EquipmentInactive             = "inactive"
	EquipmentPreparingLiquidation = "preparing_liquidation"
	EquipmentPendingLiquidation   = "pending_liquidation"
	EquipmentDisposed             = "disposed"
)

type Equipment struct {
	ID                  types.ID        `json:"id"`
	Name                string          `json:"name"`
	Type                string          `json:"type"`
	Status              string          `json:"status"`
	BranchID            types.ID        `json:"branchId"`
	BranchName          string          `json:"branchName,omitempty"`
	QRCode              string          `json:"qrCode,omitempty"`
	SerialNumber        string          `json:"serialNumber,omitempty"`
	Location            string          `json:"location,omitempty"`
	PurchaseDate        types.Timestamp `json:"purchaseDate"`
	CreatedAt           types.Timestamp `json:"createdAt"`
	LastMaintenanceDate types.Timestamp `json:"lastMaintenanceDate"`
	NextMaintenanceDate types.Timestamp `json:"nextMaintenanceDate"`
	MaintenanceInterval null.Int        `json:"maintenanceInterval"`
	DisposalReason      null.String     `json:"disposalReason,omitempty"`
}

// EquipmentView - оборудование с действиями, которые можно показать пользователю.
type EquipmentView struct {
	Equipment
	AvailableActions []string `json:"availableActions"`
	IsOverdue        bool     `json:"isOverdue"`
}
