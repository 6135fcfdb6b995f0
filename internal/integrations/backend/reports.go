package backend

import (
	"context"
	"net/url"

	"equipment-portal/internal/entities"
	"equipment-portal/pkg/apiclient"
)

// ReportsAPI - reportsService.
type ReportsAPI struct {
	client *apiclient.Client
}

func (a *ReportsAPI) Equipment(ctx context.Context, q url.Values) ([]entities.Equipment, error) {
	list, _, err := getList[entities.Equipment](ctx, a.client, "/reports/equipment", q)
	return list, err
}

func (a *ReportsAPI) Maintenance(ctx context.Context, q url.Values) ([]entities.MaintenanceRecord, error) {
	list, _, err := getList[entities.MaintenanceRecord](ctx, a.client, "/reports/maintenance", q)
	return list, err
}

func (a *ReportsAPI) Incidents(ctx context.Context, q url.Values) ([]entities.IncidentReport, error) {
	list, _, err := getList[entities.IncidentReport](ctx, a.client, "/reports/incidents", q)
	return list, err
}

func (a *ReportsAPI) Summary(ctx context.Context, q url.Values) (*entities.ReportSummary, error) {
	return getOne[entities.ReportSummary](ctx, a.client, "/reports/summary", q)
}
