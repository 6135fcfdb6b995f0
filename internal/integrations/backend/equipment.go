package backend

import (
	"context"
	"net/http"
	"net/url"

	"equipment-portal/internal/dto"
	"equipment-portal/internal/entities"
	"equipment-portal/pkg/apiclient"
	"equipment-portal/pkg/types"
)

// EquipmentAPI - equipmentService.
type EquipmentAPI struct {
	client *apiclient.Client
}

func (a *EquipmentAPI) List(ctx context.Context, q url.Values) ([]entities.Equipment, *types.Pagination, error) {
	return getList[entities.Equipment](ctx, a.client, "/equipment", q)
}

func (a *EquipmentAPI) Get(ctx context.Context, id types.ID) (*entities.Equipment, error) {
	return getOne[entities.Equipment](ctx, a.client, apiclient.Path("equipment", id.String()), nil)
}

func (a *EquipmentAPI) GetByQR(ctx context.Context, code string) (*entities.Equipment, error) {
	return getOne[entities.Equipment](ctx, a.client, apiclient.Path("equipment", "qr", code), nil)
}

func (a *EquipmentAPI) Create(ctx context.Context, body dto.CreateEquipmentDTO) (*entities.Equipment, error) {
	return post[entities.Equipment](ctx, a.client, "/equipment", body)
}

func (a *EquipmentAPI) Update(ctx context.Context, id types.ID, body dto.UpdateEquipmentDTO) (*entities.Equipment, error) {
	return send[entities.Equipment](ctx, a.client, http.MethodPut, apiclient.Path("equipment", id.String()), body)
}

func (a *EquipmentAPI) Delete(ctx context.Context, id types.ID) error {
	return a.client.Delete(ctx, apiclient.Path("equipment", id.String()))
}

func (a *EquipmentAPI) UpdateStatus(ctx context.Context, id types.ID, body dto.ChangeEquipmentStatusDTO) (*entities.Equipment, error) {
	return send[entities.Equipment](ctx, a.client, http.MethodPatch, apiclient.Path("equipment", id.String(), "status"), body)
}

func (a *EquipmentAPI) Dispose(ctx context.Context, id types.ID, reason string) (*entities.Equipment, error) {
	return post[entities.Equipment](ctx, a.client, apiclient.Path("equipment", id.String(), "dispose"), map[string]string{"reason": reason})
}
