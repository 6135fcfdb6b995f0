package dto

import "equipment-portal/pkg/types"

type CreateTransferDTO struct {
	EquipmentID  types.ID `json:"equipmentId"            validate:"required"`
	FromBranchID types.ID `json:"fromBranchId,omitempty"`
	ToBranchID   types.ID `json:"toBranchId"             validate:"required"`
	Reason       string   `json:"reason,omitempty"       validate:"omitempty,max=2000"`
}

type TransferDecisionDTO struct {
	Note string `json:"note,omitempty" validate:"omitempty,max=2000"`
}

// RejectTransferDTO - отказ без причины не принимается.
type RejectTransferDTO struct {
	Note string `json:"note" validate:"required,trimmed_min=3,max=2000"`
}
