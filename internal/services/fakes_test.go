package services

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/aarondl/null/v8"

	"equipment-portal/internal/dto"
	"equipment-portal/internal/entities"
	"equipment-portal/internal/repositories"
	"equipment-portal/pkg/apiclient"
	"equipment-portal/pkg/eventbus"
	"equipment-portal/pkg/types"
)

var errBackendDown = errors.New("backend down")

// fakeEquipment записывает каждый вызов, чтобы тесты могли проверить,
// что запрос в backend не уходил.
type fakeEquipment struct {
	mu       sync.Mutex
	items    []entities.Equipment
	listErr  error
	calls    []string
	queries  []url.Values
	disposed []types.ID
	failIDs  map[types.ID]bool
}

func (f *fakeEquipment) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeEquipment) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeEquipment) find(id types.ID) (*entities.Equipment, error) {
	for _, eq := range f.items {
		if eq.ID == id {
			e := eq
			return &e, nil
		}
	}
	return nil, &apiclient.APIError{Status: 404, Message: "Equipment not found"}
}

func (f *fakeEquipment) List(_ context.Context, q url.Values) ([]entities.Equipment, *types.Pagination, error) {
	f.record("List")
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if f.listErr != nil {
		return nil, nil, f.listErr
	}
	return f.items, &types.Pagination{TotalCount: uint64(len(f.items)), Page: 1, Limit: 20, TotalPages: 1}, nil
}

func (f *fakeEquipment) Get(_ context.Context, id types.ID) (*entities.Equipment, error) {
	f.record("Get")
	return f.find(id)
}

func (f *fakeEquipment) GetByQR(_ context.Context, code string) (*entities.Equipment, error) {
	f.record("GetByQR")
	for _, eq := range f.items {
		if eq.QRCode == code {
			e := eq
			return &e, nil
		}
	}
	return nil, &apiclient.APIError{Status: 404}
}

func (f *fakeEquipment) Create(_ context.Context, body dto.CreateEquipmentDTO) (*entities.Equipment, error) {
	f.record("Create")
	return &entities.Equipment{ID: "100", Name: body.Name, Type: body.Type, Status: entities.EquipmentActive, BranchID: body.BranchID}, nil
}

func (f *fakeEquipment) Update(_ context.Context, id types.ID, body dto.UpdateEquipmentDTO) (*entities.Equipment, error) {
	f.record("Update")
	eq, err := f.find(id)
	if err != nil {
		return nil, err
	}
	if body.Name != nil {
		eq.Name = *body.Name
	}
	return eq, nil
}

func (f *fakeEquipment) Delete(_ context.Context, id types.ID) error {
	f.record("Delete")
	_, err := f.find(id)
	return err
}

func (f *fakeEquipment) UpdateStatus(_ context.Context, id types.ID, body dto.ChangeEquipmentStatusDTO) (*entities.Equipment, error) {
	f.record("UpdateStatus")
	eq, err := f.find(id)
	if err != nil {
		return nil, err
	}
	eq.Status = body.Status
	return eq, nil
}

func (f *fakeEquipment) Dispose(_ context.Context, id types.ID, reason string) (*entities.Equipment, error) {
	f.record("Dispose")
	if f.failIDs[id] {
		return nil, &apiclient.APIError{Status: 409, Message: "Equipment already disposed"}
	}
	f.mu.Lock()
	f.disposed = append(f.disposed, id)
	f.mu.Unlock()
	return &entities.Equipment{ID: id, Status: entities.EquipmentDisposed, DisposalReason: null.StringFrom(reason)}, nil
}

type fakeTracking struct {
	mu          sync.Mutex
	maintenance []entities.MaintenanceRecord
	incidents   []entities.IncidentReport
	schedules   []entities.MaintenanceSchedule
	listErr     error
	incidentErr error
	calls       []string
	queries     []url.Values
}

func (f *fakeTracking) record(call string, q url.Values) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	if q != nil {
		f.queries = append(f.queries, q)
	}
	f.mu.Unlock()
}

func (f *fakeTracking) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeTracking) ListMaintenance(_ context.Context, q url.Values) ([]entities.MaintenanceRecord, *types.Pagination, error) {
	f.record("ListMaintenance", q)
	if f.listErr != nil {
		return nil, nil, f.listErr
	}
	return f.maintenance, nil, nil
}

func (f *fakeTracking) GetMaintenance(_ context.Context, id types.ID) (*entities.MaintenanceRecord, error) {
	f.record("GetMaintenance", nil)
	for _, m := range f.maintenance {
		if m.ID == id {
			r := m
			return &r, nil
		}
	}
	return nil, &apiclient.APIError{Status: 404}
}

func (f *fakeTracking) CreateMaintenance(_ context.Context, body dto.CreateMaintenanceDTO) (*entities.MaintenanceRecord, error) {
	f.record("CreateMaintenance", nil)
	return &entities.MaintenanceRecord{ID: "50", EquipmentID: body.EquipmentID, Status: entities.MaintenanceScheduled, Priority: body.Priority, AssignedTo: body.AssignedTo}, nil
}

func (f *fakeTracking) UpdateMaintenance(_ context.Context, id types.ID, _ dto.UpdateMaintenanceDTO) (*entities.MaintenanceRecord, error) {
	f.record("UpdateMaintenance", nil)
	return &entities.MaintenanceRecord{ID: id}, nil
}

func (f *fakeTracking) UpdateMaintenanceStatus(_ context.Context, id types.ID, body dto.ChangeMaintenanceStatusDTO) (*entities.MaintenanceRecord, error) {
	f.record("UpdateMaintenanceStatus", nil)
	return &entities.MaintenanceRecord{ID: id, Status: body.Status}, nil
}

func (f *fakeTracking) SubmitFeedback(_ context.Context, id types.ID, body dto.MaintenanceFeedbackDTO) (*entities.MaintenanceRecord, error) {
	f.record("SubmitFeedback", nil)
	return &entities.MaintenanceRecord{ID: id, Status: entities.MaintenanceCompleted}, nil
}

func (f *fakeTracking) CancelMaintenance(_ context.Context, id types.ID, _ dto.CancelMaintenanceDTO) (*entities.MaintenanceRecord, error) {
	f.record("CancelMaintenance", nil)
	return &entities.MaintenanceRecord{ID: id, Status: entities.MaintenanceCancelled}, nil
}

func (f *fakeTracking) ListSchedules(_ context.Context, q url.Values) ([]entities.MaintenanceSchedule, *types.Pagination, error) {
	f.record("ListSchedules", q)
	return f.schedules, nil, nil
}

func (f *fakeTracking) GetSchedule(_ context.Context, id types.ID) (*entities.MaintenanceSchedule, error) {
	f.record("GetSchedule", nil)
	return &entities.MaintenanceSchedule{ID: id}, nil
}

func (f *fakeTracking) CreateSchedule(_ context.Context, body dto.ScheduleDTO) (*entities.MaintenanceSchedule, error) {
	f.record("CreateSchedule", nil)
	return &entities.MaintenanceSchedule{ID: "70", Title: body.Title, Scope: body.Scope, RecurrenceInterval: body.RecurrenceInterval, IsActive: true}, nil
}

func (f *fakeTracking) UpdateSchedule(_ context.Context, id types.ID, body dto.ScheduleDTO) (*entities.MaintenanceSchedule, error) {
	f.record("UpdateSchedule", nil)
	return &entities.MaintenanceSchedule{ID: id, Title: body.Title}, nil
}

func (f *fakeTracking) DeleteSchedule(_ context.Context, _ types.ID) error {
	f.record("DeleteSchedule", nil)
	return nil
}

func (f *fakeTracking) GenerateFromSchedule(_ context.Context, _ types.ID) (*entities.GenerateResult, error) {
	f.record("GenerateFromSchedule", nil)
	return &entities.GenerateResult{Created: 1}, nil
}

func (f *fakeTracking) AutoSchedule(_ context.Context, _ dto.AutoScheduleDTO) (*entities.GenerateResult, error) {
	f.record("AutoSchedule", nil)
	return &entities.GenerateResult{Created: 3}, nil
}

func (f *fakeTracking) ListIncidents(_ context.Context, q url.Values) ([]entities.IncidentReport, *types.Pagination, error) {
	f.record("ListIncidents", q)
	if f.incidentErr != nil {
		return nil, nil, f.incidentErr
	}
	return f.incidents, nil, nil
}

func (f *fakeTracking) GetIncident(_ context.Context, id types.ID) (*entities.IncidentReport, error) {
	f.record("GetIncident", nil)
	for _, i := range f.incidents {
		if i.ID == id {
			r := i
			return &r, nil
		}
	}
	return nil, &apiclient.APIError{Status: 404}
}

func (f *fakeTracking) CreateIncident(_ context.Context, body dto.CreateIncidentDTO) (*entities.IncidentReport, error) {
	f.record("CreateIncident", nil)
	return &entities.IncidentReport{ID: "30", EquipmentID: body.EquipmentID, Title: body.Title, Severity: body.Severity, Status: entities.IncidentReported}, nil
}

func (f *fakeTracking) UpdateIncidentStatus(_ context.Context, id types.ID, body dto.ChangeIncidentStatusDTO) (*entities.IncidentReport, error) {
	f.record("UpdateIncidentStatus", nil)
	return &entities.IncidentReport{ID: id, Status: body.Status}, nil
}

func (f *fakeTracking) EscalateIncident(_ context.Context, id types.ID, reason string) (*entities.IncidentReport, error) {
	f.record("EscalateIncident", nil)
	return &entities.IncidentReport{ID: id, Title: "Broken belt", Severity: entities.PriorityHigh, Escalated: true, EscalationReason: null.StringFrom(reason)}, nil
}

type fakeIoT struct {
	alerts []entities.IoTAlert
	err    error
}

func (f *fakeIoT) RecentAlerts(context.Context) ([]entities.IoTAlert, error) {
	return f.alerts, f.err
}

// recordingBus собирает события вместо асинхронной рассылки.
type recordingBus struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (b *recordingBus) Publish(_ context.Context, e eventbus.Event) {
	b.mu.Lock()
	b.events = append(b.events, e)
	b.mu.Unlock()
}

func (b *recordingBus) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.Name())
	}
	return out
}

type fakeTransfers struct {
	mu    sync.Mutex
	calls []string
	last  dto.CreateTransferDTO
}

func (f *fakeTransfers) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeTransfers) List(_ context.Context, _ url.Values) ([]entities.EquipmentTransfer, *types.Pagination, error) {
	f.record("List")
	return []entities.EquipmentTransfer{{ID: "1", Status: entities.TransferPending}}, nil, nil
}

func (f *fakeTransfers) Create(_ context.Context, body dto.CreateTransferDTO) (*entities.EquipmentTransfer, error) {
	f.record("Create")
	f.last = body
	return &entities.EquipmentTransfer{ID: "9", EquipmentID: body.EquipmentID, FromBranchID: body.FromBranchID, ToBranchID: body.ToBranchID, Status: entities.TransferPending}, nil
}

func (f *fakeTransfers) Approve(_ context.Context, id types.ID, _ dto.TransferDecisionDTO) (*entities.EquipmentTransfer, error) {
	f.record("Approve")
	return &entities.EquipmentTransfer{ID: id, Status: entities.TransferApproved}, nil
}

func (f *fakeTransfers) Reject(_ context.Context, id types.ID, body dto.RejectTransferDTO) (*entities.EquipmentTransfer, error) {
	f.record("Reject")
	return &entities.EquipmentTransfer{ID: id, Status: entities.TransferRejected, DecisionNote: null.StringFrom(body.Note)}, nil
}

func (f *fakeTransfers) Complete(_ context.Context, id types.ID) (*entities.EquipmentTransfer, error) {
	f.record("Complete")
	return &entities.EquipmentTransfer{ID: id, Status: entities.TransferCompleted}, nil
}

// mapCache - кеш в памяти для сервисов.
type mapCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMapCache() *mapCache { return &mapCache{data: map[string]string{}} }

func (m *mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	return nil
}

func (m *mapCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", repositories.ErrCacheMiss
	}
	return v, nil
}

func (m *mapCache) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *mapCache) Incr(context.Context, string) (int64, error) { return 0, nil }

func (m *mapCache) Expire(_ context.Context, key string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}
