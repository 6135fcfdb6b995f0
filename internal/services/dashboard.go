package services

import (
	"context"
	"net/url"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"equipment-portal/internal/entities"
	apperrors "equipment-portal/pkg/errors"
	"equipment-portal/pkg/types"
	"equipment-portal/pkg/utils"
)

// Имена секций дашборда.
const (
	SectionEquipment        = "equipment"
	SectionBranches         = "branches"
	SectionUsers            = "users"
	SectionPendingTransfers = "pendingTransfers"
	SectionOpenIncidents    = "openIncidents"
	SectionAlerts           = "alerts"
	SectionMaintenanceWeek  = "maintenanceDueThisWeek"
	SectionMyMaintenance    = "myMaintenance"
	SectionInMaintenance    = "inMaintenanceEquipment"
	SectionRecentIncidents  = "recentIncidents"
	SectionMyIncidents      = "myIncidents"
	SectionActiveEquipment  = "activeEquipment"
)

const (
	dashboardTopAlerts    = 5
	dashboardRecentLimit  = 10
	dashboardPreviewLimit = 5
)

type EquipmentStats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
	Overdue  int            `json:"overdue"`
}

type CountWithItems[T any] struct {
	Count int `json:"count"`
	Items []T `json:"items"`
}

type TechnicianMaintenance struct {
	Today    []entities.MaintenanceRecord `json:"today"`
	Upcoming []entities.MaintenanceRecord `json:"upcoming"`
	Overdue  []entities.MaintenanceRecord `json:"overdue"`
}

// Dashboard - набор секций под роль. Упавшая секция не попадает в Sections,
// а её имя оказывается в Warnings.
type Dashboard struct {
	Role        string                 `json:"role"`
	Sections    map[string]interface{} `json:"sections"`
	Warnings    []string               `json:"warnings"`
	GeneratedAt time.Time              `json:"generatedAt"`
}

type DashboardServiceInterface interface {
	GetDashboard(ctx context.Context) (*Dashboard, error)
}

type DashboardService struct {
	equipment   EquipmentBackend
	maintenance MaintenanceBackend
	incidents   IncidentBackend
	transfers   TransferBackend
	users       UserBackend
	branches    BranchBackend
	alerts      AlertServiceInterface
	logger      *zap.Logger
	now         func() time.Time
}

func NewDashboardService(
	equipment EquipmentBackend,
	maintenance MaintenanceBackend,
	incidents IncidentBackend,
	transfers TransferBackend,
	users UserBackend,
	branches BranchBackend,
	alerts AlertServiceInterface,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		equipment:   equipment,
		maintenance: maintenance,
		incidents:   incidents,
		transfers:   transfers,
		users:       users,
		branches:    branches,
		alerts:      alerts,
		logger:      logger.Named("dashboard"),
		now:         time.Now,
	}
}

func scopedQuery(filter map[string]string) url.Values {
	return listAll(utils.FilterToQuery(types.Filter{Filter: filter}))
}

func branchScope(branchID types.ID) map[string]string {
	f := map[string]string{}
	if !branchID.IsZero() {
		f["branchId"] = branchID.String()
	}
	return f
}

func (s *DashboardService) GetDashboard(ctx context.Context) (*Dashboard, error) {
	principal, err := utils.GetPrincipalFromCtx(ctx)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		sections = map[string]interface{}{}
		warnings = []string{}
		now      = s.now()
	)

	addTask := func(name string, fn func() (interface{}, error)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, err := fn()
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Warn("секция дашборда недоступна",
					zap.String("section", name),
					zap.String("role", principal.Role),
					zap.Error(err),
				)
				warnings = append(warnings, name)
				return
			}
			sections[name] = value
		}()
	}

	switch principal.Role {
	case utils.RoleAdmin:
		addTask(SectionEquipment, func() (interface{}, error) { return s.equipmentStats(ctx, nil, now) })
		addTask(SectionBranches, func() (interface{}, error) { return s.branchCount(ctx) })
		addTask(SectionUsers, func() (interface{}, error) { return s.userCount(ctx) })
		addTask(SectionPendingTransfers, func() (interface{}, error) { return s.pendingTransfers(ctx, "") })
		addTask(SectionOpenIncidents, func() (interface{}, error) { return s.openIncidents(ctx, "") })
		addTask(SectionAlerts, func() (interface{}, error) { return s.topAlerts(ctx, "") })
	case utils.RoleManager:
		branch := principal.BranchID
		addTask(SectionEquipment, func() (interface{}, error) { return s.equipmentStats(ctx, branchScope(branch), now) })
		addTask(SectionPendingTransfers, func() (interface{}, error) { return s.pendingTransfers(ctx, branch) })
		addTask(SectionMaintenanceWeek, func() (interface{}, error) { return s.maintenanceDueThisWeek(ctx, branch, now) })
		addTask(SectionOpenIncidents, func() (interface{}, error) { return s.openIncidents(ctx, branch) })
		addTask(SectionAlerts, func() (interface{}, error) { return s.topAlerts(ctx, branch) })
	case utils.RoleTechnician:
		addTask(SectionMyMaintenance, func() (interface{}, error) { return s.technicianMaintenance(ctx, principal.UserID, now) })
		addTask(SectionInMaintenance, func() (interface{}, error) { return s.inMaintenance(ctx, principal.BranchID) })
	case utils.RoleReceptionist:
		branch := principal.BranchID
		addTask(SectionEquipment, func() (interface{}, error) { return s.equipmentStats(ctx, branchScope(branch), now) })
		addTask(SectionRecentIncidents, func() (interface{}, error) { return s.recentIncidents(ctx, branch) })
	default:
		addTask(SectionMyIncidents, func() (interface{}, error) { return s.myIncidents(ctx, principal.UserID) })
		addTask(SectionActiveEquipment, func() (interface{}, error) { return s.activeEquipment(ctx, principal.BranchID) })
	}

	wg.Wait()
	sort.Strings(warnings)

	return &Dashboard{Role: principal.Role, Sections: sections, Warnings: warnings, GeneratedAt: now}, nil
}

func (s *DashboardService) equipmentStats(ctx context.Context, filter map[string]string, now time.Time) (*EquipmentStats, error) {
	list, _, err := s.equipment.List(ctx, scopedQuery(filter))
	if err != nil {
		return nil, err
	}
	stats := &EquipmentStats{Total: len(list), ByStatus: map[string]int{}}
	for _, eq := range list {
		stats.ByStatus[eq.Status]++
		if IsOverdue(eq, now) {
			stats.Overdue++
		}
	}
	return stats, nil
}

func total(pagination *types.Pagination, n int) int {
	if pagination != nil && pagination.TotalCount > 0 {
		return int(pagination.TotalCount)
	}
	return n
}

func (s *DashboardService) branchCount(ctx context.Context) (int, error) {
	list, pagination, err := s.branches.List(ctx, listAll(nil))
	if err != nil {
		return 0, err
	}
	return total(pagination, len(list)), nil
}

func (s *DashboardService) userCount(ctx context.Context) (int, error) {
	list, pagination, err := s.users.List(ctx, listAll(nil))
	if err != nil {
		return 0, err
	}
	return total(pagination, len(list)), nil
}

func preview[T any](items []T) CountWithItems[T] {
	out := CountWithItems[T]{Count: len(items), Items: items}
	if len(out.Items) > dashboardPreviewLimit {
		out.Items = out.Items[:dashboardPreviewLimit]
	}
	if out.Items == nil {
		out.Items = []T{}
	}
	return out
}

func (s *DashboardService) pendingTransfers(ctx context.Context, branchID types.ID) (CountWithItems[entities.EquipmentTransfer], error) {
	list, _, err := s.transfers.List(ctx, scopedQuery(map[string]string{"status": entities.TransferPending}))
	if err != nil {
		return CountWithItems[entities.EquipmentTransfer]{}, err
	}
	var out []entities.EquipmentTransfer
	for _, t := range list {
		if t.Status != entities.TransferPending {
			continue
		}
		if !branchID.IsZero() && !t.Touches(branchID) {
			continue
		}
		out = append(out, t)
	}
	return preview(out), nil
}

func (s *DashboardService) openIncidents(ctx context.Context, branchID types.ID) (CountWithItems[entities.IncidentReport], error) {
	list, _, err := s.incidents.ListIncidents(ctx, scopedQuery(branchScope(branchID)))
	if err != nil {
		return CountWithItems[entities.IncidentReport]{}, err
	}
	var out []entities.IncidentReport
	for _, inc := range list {
		if inc.IsOpen() {
			out = append(out, inc)
		}
	}
	return preview(out), nil
}

func (s *DashboardService) topAlerts(ctx context.Context, branchID types.ID) ([]entities.Alert, error) {
	feed, err := s.alerts.GetAlerts(ctx, AlertFilter{BranchID: branchID, Limit: dashboardTopAlerts})
	if err != nil {
		return nil, err
	}
	return feed.Alerts, nil
}

func (s *DashboardService) maintenanceDueThisWeek(ctx context.Context, branchID types.ID, now time.Time) ([]entities.MaintenanceRecord, error) {
	f := branchScope(branchID)
	f["status"] = entities.MaintenanceScheduled
	list, _, err := s.maintenance.ListMaintenance(ctx, scopedQuery(f))
	if err != nil {
		return nil, err
	}
	out := []entities.MaintenanceRecord{}
	for _, rec := range list {
		if rec.Status != entities.MaintenanceScheduled || !rec.ScheduledDate.Valid {
			continue
		}
		days := utils.DaysBetween(now, rec.ScheduledDate.Time.Time)
		if days >= 0 && days < 7 {
			out = append(out, rec)
		}
	}
	sortByScheduledDate(out)
	return out, nil
}

// technicianMaintenance раскладывает открытые записи техника на сегодня, будущие и просроченные.
func (s *DashboardService) technicianMaintenance(ctx context.Context, userID types.ID, now time.Time) (*TechnicianMaintenance, error) {
	list, _, err := s.maintenance.ListMaintenance(ctx, scopedQuery(map[string]string{"assignedTo": userID.String()}))
	if err != nil {
		return nil, err
	}
	out := &TechnicianMaintenance{
		Today:    []entities.MaintenanceRecord{},
		Upcoming: []entities.MaintenanceRecord{},
		Overdue:  []entities.MaintenanceRecord{},
	}
	for _, rec := range list {
		if !rec.IsOpen() || rec.AssignedTo != userID || !rec.ScheduledDate.Valid {
			continue
		}
		switch days := utils.DaysBetween(now, rec.ScheduledDate.Time.Time); {
		case days < 0:
			out.Overdue = append(out.Overdue, rec)
		case days == 0:
			out.Today = append(out.Today, rec)
		default:
			out.Upcoming = append(out.Upcoming, rec)
		}
	}
	sortByScheduledDate(out.Today)
	sortByScheduledDate(out.Upcoming)
	sortByScheduledDate(out.Overdue)
	return out, nil
}

func sortByScheduledDate(list []entities.MaintenanceRecord) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].ScheduledDate.Time.Time.Before(list[j].ScheduledDate.Time.Time)
	})
}

func (s *DashboardService) inMaintenance(ctx context.Context, branchID types.ID) ([]entities.Equipment, error) {
	f := branchScope(branchID)
	f["status"] = entities.EquipmentMaintenance
	list, _, err := s.equipment.List(ctx, scopedQuery(f))
	if err != nil {
		return nil, err
	}
	out := []entities.Equipment{}
	for _, eq := range list {
		if eq.Status == entities.EquipmentMaintenance {
			out = append(out, eq)
		}
	}
	return out, nil
}

func (s *DashboardService) recentIncidents(ctx context.Context, branchID types.ID) ([]entities.IncidentReport, error) {
	list, _, err := s.incidents.ListIncidents(ctx, scopedQuery(branchScope(branchID)))
	if err != nil {
		return nil, err
	}
	sortIncidentsNewestFirst(list)
	if len(list) > dashboardRecentLimit {
		list = list[:dashboardRecentLimit]
	}
	if list == nil {
		list = []entities.IncidentReport{}
	}
	return list, nil
}

func sortIncidentsNewestFirst(list []entities.IncidentReport) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.Time.Time.After(list[j].CreatedAt.Time.Time)
	})
}

func (s *DashboardService) myIncidents(ctx context.Context, userID types.ID) ([]entities.IncidentReport, error) {
	list, _, err := s.incidents.ListIncidents(ctx, scopedQuery(map[string]string{"reportedBy": userID.String()}))
	if err != nil {
		return nil, err
	}
	out := []entities.IncidentReport{}
	for _, inc := range list {
		if inc.ReportedBy == userID {
			out = append(out, inc)
		}
	}
	sortIncidentsNewestFirst(out)
	return out, nil
}

func (s *DashboardService) activeEquipment(ctx context.Context, branchID types.ID) (int, error) {
	f := branchScope(branchID)
	f["status"] = entities.EquipmentActive
	list, _, err := s.equipment.List(ctx, scopedQuery(f))
	if err != nil {
		return 0, err
	}
	n := 0
	for _, eq := range list {
		if eq.Status == entities.EquipmentActive {
			n++
		}
	}
	return n, nil
}
