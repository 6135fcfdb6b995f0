package services

import (
	"context"
	"net/url"

	"equipment-portal/internal/dto"
	"equipment-portal/internal/entities"
	"equipment-portal/pkg/types"
)

// Интерфейсы backend, от которых зависят сервисы. Реализации -
// internal/integrations/backend, в тестах - фейки.

type EquipmentBackend interface {
	List(ctx context.Context, q url.Values) ([]entities.Equipment, *types.Pagination, error)
	Get(ctx context.Context, id types.ID) (*entities.Equipment, error)
	GetByQR(ctx context.Context, code string) (*entities.Equipment, error)
	Create(ctx context.Context, body dto.CreateEquipmentDTO) (*entities.Equipment, error)
	Update(ctx context.Context, id types.ID, body dto.UpdateEquipmentDTO) (*entities.Equipment, error)
	Delete(ctx context.Context, id types.ID) error
	UpdateStatus(ctx context.Context, id types.ID, body dto.ChangeEquipmentStatusDTO) (*entities.Equipment, error)
	Dispose(ctx context.Context, id types.ID, reason string) (*entities.Equipment, error)
}

type MaintenanceBackend interface {
	ListMaintenance(ctx context.Context, q url.Values) ([]entities.MaintenanceRecord, *types.Pagination, error)
	GetMaintenance(ctx context.Context, id types.ID) (*entities.MaintenanceRecord, error)
	CreateMaintenance(ctx context.Context, body dto.CreateMaintenanceDTO) (*entities.MaintenanceRecord, error)
	UpdateMaintenance(ctx context.Context, id types.ID, body dto.UpdateMaintenanceDTO) (*entities.MaintenanceRecord, error)
	UpdateMaintenanceStatus(ctx context.Context, id types.ID, body dto.ChangeMaintenanceStatusDTO) (*entities.MaintenanceRecord, error)
	SubmitFeedback(ctx context.Context, id types.ID, body dto.MaintenanceFeedbackDTO) (*entities.MaintenanceRecord, error)
	CancelMaintenance(ctx context.Context, id types.ID, body dto.CancelMaintenanceDTO) (*entities.MaintenanceRecord, error)
}

type ScheduleBackend interface {
	ListSchedules(ctx context.Context, q url.Values) ([]entities.MaintenanceSchedule, *types.Pagination, error)
	GetSchedule(ctx context.Context, id types.ID) (*entities.MaintenanceSchedule, error)
	CreateSchedule(ctx context.Context, body dto.ScheduleDTO) (*entities.MaintenanceSchedule, error)
	UpdateSchedule(ctx context.Context, id types.ID, body dto.ScheduleDTO) (*entities.MaintenanceSchedule, error)
	DeleteSchedule(ctx context.Context, id types.ID) error
	GenerateFromSchedule(ctx context.Context, id types.ID) (*entities.GenerateResult, error)
	AutoSchedule(ctx context.Context, body dto.AutoScheduleDTO) (*entities.GenerateResult, error)
}

type IncidentBackend interface {
	ListIncidents(ctx context.Context, q url.Values) ([]entities.IncidentReport, *types.Pagination, error)
	GetIncident(ctx context.Context, id types.ID) (*entities.IncidentReport, error)
	CreateIncident(ctx context.Context, body dto.CreateIncidentDTO) (*entities.IncidentReport, error)
	UpdateIncidentStatus(ctx context.Context, id types.ID, body dto.ChangeIncidentStatusDTO) (*entities.IncidentReport, error)
	EscalateIncident(ctx context.Context, id types.ID, reason string) (*entities.IncidentReport, error)
}

type TransferBackend interface {
	List(ctx context.Context, q url.Values) ([]entities.EquipmentTransfer, *types.Pagination, error)
	Create(ctx context.Context, body dto.CreateTransferDTO) (*entities.EquipmentTransfer, error)
	Approve(ctx context.Context, id types.ID, body dto.TransferDecisionDTO) (*entities.EquipmentTransfer, error)
	Reject(ctx context.Context, id types.ID, body dto.RejectTransferDTO) (*entities.EquipmentTransfer, error)
	Complete(ctx context.Context, id types.ID) (*entities.EquipmentTransfer, error)
}

type UserBackend interface {
	List(ctx context.Context, q url.Values) ([]entities.User, *types.Pagination, error)
	Get(ctx context.Context, id types.ID) (*entities.User, error)
}

type BranchBackend interface {
	List(ctx context.Context, q url.Values) ([]entities.Branch, *types.Pagination, error)
	Get(ctx context.Context, id types.ID) (*entities.Branch, error)
}

type ReportsBackend interface {
	Equipment(ctx context.Context, q url.Values) ([]entities.Equipment, error)
	Maintenance(ctx context.Context, q url.Values) ([]entities.MaintenanceRecord, error)
	Incidents(ctx context.Context, q url.Values) ([]entities.IncidentReport, error)
	Summary(ctx context.Context, q url.Values) (*entities.ReportSummary, error)
}

type AuthBackend interface {
	Login(ctx context.Context, creds dto.LoginDTO) (*dto.UpstreamAuthDTO, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.UpstreamAuthDTO, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*entities.User, error)
}

// IoTAlertSource - последние тревоги датчиков.
type IoTAlertSource interface {
	RecentAlerts(ctx context.Context) ([]entities.IoTAlert, error)
}

// listAll - выборка без пагинации для расчётов на стороне шлюза.
func listAll(extra url.Values) url.Values {
	q := url.Values{"limit": {"500"}, "page": {"1"}}
	for k, v := range extra {
		q[k] = v
	}
	return q
}
