package entities

import (
	"github.com/aarondl/null/v8"

	"equipment-portal/pkg/types"
)

const (
	TransferPending   = "pending"
	TransferApproved  = "approved"
	TransferRejected  = "rejected"
	TransferCompleted = "completed"
)

type EquipmentTransfer struct {
	ID            types.ID        `json:"id"`
	EquipmentID   types.ID        `json:"equipmentId"`
	EquipmentName string          `json:"equipmentName,omitempty"`
	FromBranchID  types.ID        `json:"fromBranchId"`
	ToBranchID    types.ID        `json:"toBranchId"`
	Status        string          `json:"status"`
	Reason        string          `json:"reason,omitempty"`
	RequestedBy   types.ID        `json:"requestedBy"`
	DecisionNote  null.String     `json:"decisionNote"`
	CreatedAt     types.Timestamp `json:"createdAt"`
}

// Touches - перемещение затрагивает филиал (уходит из него или приходит в него).
func (t EquipmentTransfer) Touches(branchID types.ID) bool {
	return t.FromBranchID == branchID || t.ToBranchID == branchID
}
