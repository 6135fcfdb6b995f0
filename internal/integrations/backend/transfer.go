package backend

import (
	"context"
	"net/url"

	"equipment-portal/internal/dto"
	"equipment-portal/internal/entities"
	"equipment-portal/pkg/apiclient"
	"equipment-portal/pkg/types"
)

// TransferAPI - equipmentTransferService.
type TransferAPI struct {
	client *apiclient.Client
}

func transferPath(parts ...string) string {
	return apiclient.Path(append([]string{"equipment-transfers"}, parts...)...)
}

func (a *TransferAPI) List(ctx context.Context, q url.Values) ([]entities.EquipmentTransfer, *types.Pagination, error) {
	return getList[entities.EquipmentTransfer](ctx, a.client, transferPath(), q)
}

func (a *TransferAPI) Create(ctx context.Context, body dto.CreateTransferDTO) (*entities.EquipmentTransfer, error) {
	return post[entities.EquipmentTransfer](ctx, a.client, transferPath(), body)
}

func (a *TransferAPI) Approve(ctx context.Context, id types.ID, body dto.TransferDecisionDTO) (*entities.EquipmentTransfer, error) {
	return post[entities.EquipmentTransfer](ctx, a.client, transferPath(id.String(), "approve"), body)
}

func (a *TransferAPI) Reject(ctx context.Context, id types.ID, body dto.RejectTransferDTO) (*entities.EquipmentTransfer, error) {
	return post[entities.EquipmentTransfer](ctx, a.client, transferPath(id.String(), "reject"), body)
}

func (a *TransferAPI) Complete(ctx context.Context, id types.ID) (*entities.EquipmentTransfer, error) {
	return post[entities.EquipmentTransfer](ctx, a.client, transferPath(id.String(), "complete"), struct{}{})
}
