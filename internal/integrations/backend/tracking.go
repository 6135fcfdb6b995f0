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

// TrackingAPI - trackingService: обслуживание, расписания, инциденты.
type TrackingAPI struct {
	client *apiclient.Client
}

func maintenancePath(parts ...string) string {
	return apiclient.Path(append([]string{"tracking", "maintenance"}, parts...)...)
}

func schedulePath(parts ...string) string {
	return apiclient.Path(append([]string{"tracking", "schedules"}, parts...)...)
}

func incidentPath(parts ...string) string {
	return apiclient.Path(append([]string{"tracking", "incidents"}, parts...)...)
}

func (a *TrackingAPI) ListMaintenance(ctx context.Context, q url.Values) ([]entities.MaintenanceRecord, *types.Pagination, error) {
	return getList[entities.MaintenanceRecord](ctx, a.client, maintenancePath(), q)
}

func (a *TrackingAPI) GetMaintenance(ctx context.Context, id types.ID) (*entities.MaintenanceRecord, error) {
	return getOne[entities.MaintenanceRecord](ctx, a.client, maintenancePath(id.String()), nil)
}

func (a *TrackingAPI) CreateMaintenance(ctx context.Context, body dto.CreateMaintenanceDTO) (*entities.MaintenanceRecord, error) {
	return post[entities.MaintenanceRecord](ctx, a.client, maintenancePath(), body)
}

func (a *TrackingAPI) UpdateMaintenance(ctx context.Context, id types.ID, body dto.UpdateMaintenanceDTO) (*entities.MaintenanceRecord, error) {
	return send[entities.MaintenanceRecord](ctx, a.client, http.MethodPut, maintenancePath(id.String()), body)
}

func (a *TrackingAPI) UpdateMaintenanceStatus(ctx context.Context, id types.ID, body dto.ChangeMaintenanceStatusDTO) (*entities.MaintenanceRecord, error) {
	return send[entities.MaintenanceRecord](ctx, a.client, http.MethodPatch, maintenancePath(id.String(), "status"), body)
}

func (a *TrackingAPI) SubmitFeedback(ctx context.Context, id types.ID, body dto.MaintenanceFeedbackDTO) (*entities.MaintenanceRecord, error) {
	return post[entities.MaintenanceRecord](ctx, a.client, maintenancePath(id.String(), "feedback"), body)
}

func (a *TrackingAPI) CancelMaintenance(ctx context.Context, id types.ID, body dto.CancelMaintenanceDTO) (*entities.MaintenanceRecord, error) {
	return post[entities.MaintenanceRecord](ctx, a.client, maintenancePath(id.String(), "cancel"), body)
}

func (a *TrackingAPI) ListSchedules(ctx context.Context, q url.Values) ([]entities.MaintenanceSchedule, *types.Pagination, error) {
	return getList[entities.MaintenanceSchedule](ctx, a.client, schedulePath(), q)
}

func (a *TrackingAPI) GetSchedule(ctx context.Context, id types.ID) (*entities.MaintenanceSchedule, error) {
	return getOne[entities.MaintenanceSchedule](ctx, a.client, schedulePath(id.String()), nil)
}

func (a *TrackingAPI) CreateSchedule(ctx context.Context, body dto.ScheduleDTO) (*entities.MaintenanceSchedule, error) {
	return post[entities.MaintenanceSchedule](ctx, a.client, schedulePath(), body)
}

func (a *TrackingAPI) UpdateSchedule(ctx context.Context, id types.ID, body dto.ScheduleDTO) (*entities.MaintenanceSchedule, error) {
	return send[entities.MaintenanceSchedule](ctx, a.client, http.MethodPut, schedulePath(id.String()), body)
}

func (a *TrackingAPI) DeleteSchedule(ctx context.Context, id types.ID) error {
	return a.client.Delete(ctx, schedulePath(id.String()))
}

func (a *TrackingAPI) GenerateFromSchedule(ctx context.Context, id types.ID) (*entities.GenerateResult, error) {
	return post[entities.GenerateResult](ctx, a.client, schedulePath(id.String(), "generate"), struct{}{})
}

func (a *TrackingAPI) AutoSchedule(ctx context.Context, body dto.AutoScheduleDTO) (*entities.GenerateResult, error) {
	return post[entities.GenerateResult](ctx, a.client, schedulePath("auto-schedule"), body)
}

func (a *TrackingAPI) ListIncidents(ctx context.Context, q url.Values) ([]entities.IncidentReport, *types.Pagination, error) {
	return getList[entities.IncidentReport](ctx, a.client, incidentPath(), q)
}

func (a *TrackingAPI) GetIncident(ctx context.Context, id types.ID) (*entities.IncidentReport, error) {
	return getOne[entities.IncidentReport](ctx, a.client, incidentPath(id.String()), nil)
}

func (a *TrackingAPI) CreateIncident(ctx context.Context, body dto.CreateIncidentDTO) (*entities.IncidentReport, error) {
	return post[entities.IncidentReport](ctx, a.client, incidentPath(), body)
}

func (a *TrackingAPI) UpdateIncidentStatus(ctx context.Context, id types.ID, body dto.ChangeIncidentStatusDTO) (*entities.IncidentReport, error) {
	return send[entities.IncidentReport](ctx, a.client, http.MethodPatch, incidentPath(id.String(), "status"), body)
}

func (a *TrackingAPI) EscalateIncident(ctx context.Context, id types.ID, reason string) (*entities.IncidentReport, error) {
	return post[entities.IncidentReport](ctx, a.client, incidentPath(id.String(), "escalate"), map[string]string{"reason": reason})
}
