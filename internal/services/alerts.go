package services

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"equipment-portal/internal/entities"
	"equipment-portal/pkg/metrics"
	"equipment-portal/pkg/types"
	"equipment-portal/pkg/utils"
)

const DefaultLookAheadDays = 7

var severityRank = map[string]int{
	entities.SeverityHigh:   3,
	entities.SeverityMedium: 2,
	entities.SeverityLow:    1,
}

// AlertInput - уже загруженные данные. MaintenanceLoaded=false значит, что
// записи обслуживания получить не удалось.
type AlertInput struct {
	Equipment         []entities.Equipment
	Maintenance       []entities.MaintenanceRecord
	MaintenanceLoaded bool
	IoT               []entities.IoTAlert
}

// DeriveAlerts строит ленту из загруженных списков. Чистая функция.
func DeriveAlerts(in AlertInput, now time.Time, lookAheadDays int) []entities.Alert {
	if lookAheadDays <= 0 {
		lookAheadDays = DefaultLookAheadDays
	}

	openByEquipment := make(map[types.ID]bool)
	// coveredByRecord: по оборудованию уже есть алерт заявки или работа идёт,
	// алерт по расчётной дате был бы дублем.
	coveredByRecord := make(map[types.ID]bool)
	alerts := make([]entities.Alert, 0)
	for _, rec := range in.Maintenance {
		if rec.IsOpen() {
			openByEquipment[rec.EquipmentID] = true
		}
		if rec.Status == entities.MaintenanceInProgress {
			coveredByRecord[rec.EquipmentID] = true
		}
		if a, ok := maintenanceAlert(rec, now, lookAheadDays); ok {
			alerts = append(alerts, a)
			coveredByRecord[rec.EquipmentID] = true
		}
	}

	for _, eq := range in.Equipment {
		if eq.Status == entities.EquipmentActive && coveredByRecord[eq.ID] {
			continue
		}
		if a, ok := equipmentAlert(eq, now, lookAheadDays, in.MaintenanceLoaded, openByEquipment[eq.ID]); ok {
			alerts = append(alerts, a)
		}
	}
	for _, ia := range in.IoT {
		alerts = append(alerts, iotAlert(ia))
	}

	SortAlerts(alerts)
	return alerts
}

func equipmentAlert(eq entities.Equipment, now time.Time, lookAhead int, recordsKnown, hasOpenRecord bool) (entities.Alert, bool) {
	base := entities.Alert{
		EquipmentID: eq.ID,
		BranchID:    eq.BranchID,
		Link:        "/equipment/" + eq.ID.String(),
	}

	switch eq.Status {
	case entities.EquipmentActive:
		next, ok := NextMaintenanceDate(eq)
		if !ok {
			return entities.Alert{}, false
		}
		days := utils.DaysBetween(now, next)
		base.Timestamp = next
		switch {
		case days < 0:
			base.ID = "overdue-eq-" + eq.ID.String()
			base.Kind = entities.AlertOverdueMaintenance
			base.Severity = entities.SeverityHigh
			base.Title = "Просрочено обслуживание"
			base.Message = fmt.Sprintf("%s: обслуживание просрочено на %d дн.", eq.Name, -days)
		case days <= lookAhead:
			base.ID = "upcoming-eq-" + eq.ID.String()
			base.Kind = entities.AlertUpcomingMaintenance
			base.Severity = entities.SeverityMedium
			if days <= 2 {
				base.Severity = entities.SeverityHigh
			}
			base.Title = "Скоро обслуживание"
			base.Message = fmt.Sprintf("%s: обслуживание через %d дн. (%s)", eq.Name, days, next.Format("02.01.2006"))
		default:
			return entities.Alert{}, false
		}
		return base, true

	case entities.EquipmentInactive:
		base.ID = "inactive-eq-" + eq.ID.String()
		base.Kind = entities.AlertInactiveEquipment
		base.Severity = entities.SeverityLow
		base.Title = "Оборудование неактивно"
		base.Message = fmt.Sprintf("%s выведено из работы", eq.Name)
		base.Timestamp = now
		return base, true

	case entities.EquipmentMaintenance:
		base.ID = "in-maintenance-eq-" + eq.ID.String()
		base.Kind = entities.AlertInMaintenance
		base.Severity = entities.SeverityLow
		base.Title = "Оборудование на обслуживании"
		base.Message = fmt.Sprintf("%s находится на обслуживании", eq.Name)
		if recordsKnown && !hasOpenRecord {
			base.Severity = entities.SeverityMedium
			base.Message = fmt.Sprintf("%s на обслуживании, но открытой заявки нет", eq.Name)
		}
		base.Timestamp = now
		return base, true
	}
	return entities.Alert{}, false
}

func maintenanceAlert(rec entities.MaintenanceRecord, now time.Time, lookAhead int) (entities.Alert, bool) {
	if rec.Status != entities.MaintenanceScheduled || !rec.ScheduledDate.Valid {
		return entities.Alert{}, false
	}
	scheduled := rec.ScheduledDate.Time.Time
	days := utils.DaysBetween(now, scheduled)
	name := rec.EquipmentName
	if name == "" {
		name = "Оборудование #" + rec.EquipmentID.String()
	}

	a := entities.Alert{
		EquipmentID: rec.EquipmentID,
		BranchID:    rec.BranchID,
		Timestamp:   scheduled,
		Link:        "/maintenance/" + rec.ID.String(),
	}
	switch {
	case days < 0:
		a.ID = "overdue-mr-" + rec.ID.String()
		a.Kind = entities.AlertOverdueMaintenance
		a.Severity = entities.SeverityHigh
		a.Title = "Просрочена плановая заявка"
		a.Message = fmt.Sprintf("%s: заявка на %s не выполнена", name, scheduled.Format("02.01.2006"))
	case days <= lookAhead:
		a.ID = "upcoming-mr-" + rec.ID.String()
		a.Kind = entities.AlertUpcomingMaintenance
		a.Severity = severityForPriority(rec.Priority)
		a.Title = "Запланировано обслуживание"
		a.Message = fmt.Sprintf("%s: обслуживание %s", name, scheduled.Format("02.01.2006"))
	default:
		return entities.Alert{}, false
	}
	return a, true
}

func severityForPriority(priority string) string {
	switch priority {
	case entities.PriorityHigh, entities.PriorityCritical:
		return entities.SeverityHigh
	case entities.PriorityMedium:
		return entities.SeverityMedium
	}
	return entities.SeverityLow
}

func iotAlert(ia entities.IoTAlert) entities.Alert {
	severity := entities.SeverityLow
	switch ia.Level {
	case entities.IoTLevelCritical:
		severity = entities.SeverityHigh
	case entities.IoTLevelWarning:
		severity = entities.SeverityMedium
	}
	link := "/equipment"
	if !ia.EquipmentID.IsZero() {
		link = "/equipment/" + ia.EquipmentID.String()
	}
	return entities.Alert{
		ID:          "iot-" + ia.ID,
		Kind:        entities.AlertIoT,
		Severity:    severity,
		Title:       "Сигнал датчика",
		Message:     ia.Message,
		EquipmentID: ia.EquipmentID,
		BranchID:    ia.BranchID,
		Timestamp:   ia.Timestamp,
		Link:        link,
	}
}

// SortAlerts: важность по убыванию, затем время по убыванию, затем id.
func SortAlerts(alerts []entities.Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		ri, rj := severityRank[alerts[i].Severity], severityRank[alerts[j].Severity]
		if ri != rj {
			return ri > rj
		}
		if !alerts[i].Timestamp.Equal(alerts[j].Timestamp) {
			return alerts[i].Timestamp.After(alerts[j].Timestamp)
		}
		return alerts[i].ID < alerts[j].ID
	})
}

type AlertFilter struct {
	BranchID types.ID
	Severity string
	Limit    int
}

func applyAlertFilter(alerts []entities.Alert, f AlertFilter) []entities.Alert {
	out := make([]entities.Alert, 0, len(alerts))
	for _, a := range alerts {
		if !f.BranchID.IsZero() && a.BranchID != f.BranchID {
			continue
		}
		if f.Severity != "" && a.Severity != f.Severity {
			continue
		}
		out = append(out, a)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out
}

// FilterFeed - копия ленты, отфильтрованная и с пересчитанными счётчиками.
func FilterFeed(feed *entities.AlertFeed, f AlertFilter) *entities.AlertFeed {
	alerts := applyAlertFilter(feed.Alerts, f)
	return &entities.AlertFeed{
		Alerts:             alerts,
		BySeverity:         countBySeverity(alerts),
		UnavailableSources: feed.UnavailableSources,
		GeneratedAt:        feed.GeneratedAt,
	}
}

func countBySeverity(alerts []entities.Alert) map[string]int {
	counts := map[string]int{entities.SeverityHigh: 0, entities.SeverityMedium: 0, entities.SeverityLow: 0}
	for _, a := range alerts {
		counts[a.Severity]++
	}
	return counts
}

type AlertServiceInterface interface {
	GetAlerts(ctx context.Context, filter AlertFilter) (*entities.AlertFeed, error)
}

// AlertService собирает ленту из трёх независимых источников.
// Упавший источник логируется и пропускается, без повторов.
type AlertService struct {
	equipment   EquipmentBackend
	maintenance MaintenanceBackend
	iot         IoTAlertSource
	lookAhead   int
	metrics     *metrics.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

func NewAlertService(
	equipment EquipmentBackend,
	maintenance MaintenanceBackend,
	iot IoTAlertSource,
	lookAheadDays int,
	m *metrics.Metrics,
	logger *zap.Logger,
) *AlertService {
	return &AlertService{
		equipment:   equipment,
		maintenance: maintenance,
		iot:         iot,
		lookAhead:   lookAheadDays,
		metrics:     m,
		logger:      logger.Named("alerts"),
		now:         time.Now,
	}
}

func (s *AlertService) GetAlerts(ctx context.Context, filter AlertFilter) (*entities.AlertFeed, error) {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed []string
		in     AlertInput
	)

	scope := url.Values{}
	if !filter.BranchID.IsZero() {
		scope.Set("filter[branchId]", filter.BranchID.String())
	}

	fail := func(source string, err error) {
		s.logger.Warn("источник алертов недоступен", zap.String("source", source), zap.Error(err))
		s.metrics.AlertSourceFailed(source)
		mu.Lock()
		failed = append(failed, source)
		mu.Unlock()
	}

	addTask := func(source string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				fail(source, err)
			}
		}()
	}

	addTask(entities.SourceEquipment, func() error {
		list, _, err := s.equipment.List(ctx, listAll(scope))
		if err != nil {
			return err
		}
		mu.Lock()
		in.Equipment = list
		mu.Unlock()
		return nil
	})
	addTask(entities.SourceMaintenance, func() error {
		q := listAll(scope)
		q.Set("filter[status]", entities.MaintenanceScheduled+","+entities.MaintenanceInProgress)
		list, _, err := s.maintenance.ListMaintenance(ctx, q)
		if err != nil {
			return err
		}
		mu.Lock()
		in.Maintenance = list
		in.MaintenanceLoaded = true
		mu.Unlock()
		return nil
	})
	if s.iot != nil {
		addTask(entities.SourceIoT, func() error {
			list, err := s.iot.RecentAlerts(ctx)
			if err != nil {
				return err
			}
			mu.Lock()
			in.IoT = list
			mu.Unlock()
			return nil
		})
	}

	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	all := DeriveAlerts(in, s.now(), s.lookAhead)
	s.metrics.SetAlerts(countBySeverity(all))

	alerts := applyAlertFilter(all, filter)
	sort.Strings(failed)
	return &entities.AlertFeed{
		Alerts:             alerts,
		BySeverity:         countBySeverity(alerts),
		UnavailableSources: failed,
		GeneratedAt:        s.now().UTC(),
	}, nil
}
