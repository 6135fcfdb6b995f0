package services

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"equipment-portal/internal/entities"
	"equipment-portal/pkg/metrics"
	"equipment-portal/pkg/types"
)

// Даты в тестах построены в UTC: фиксируем пояс сервера.
func TestMain(m *testing.M) {
	time.Local = time.UTC
	os.Exit(m.Run())
}

func useLocal(t *testing.T, loc *time.Location) {
	t.Helper()
	prev := time.Local
	time.Local = loc
	t.Cleanup(func() { time.Local = prev })
}

func alertIDs(alerts []entities.Alert) []string {
	ids := make([]string, 0, len(alerts))
	for _, a := range alerts {
		ids = append(ids, a.ID)
	}
	return ids
}

func severities(alerts []entities.Alert) []string {
	out := make([]string, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, a.Severity)
	}
	return out
}

func TestSortAlerts_BySeverity(t *testing.T) {
	alerts := []entities.Alert{
		{ID: "a", Severity: entities.SeverityLow, Timestamp: testNow},
		{ID: "b", Severity: entities.SeverityHigh, Timestamp: testNow},
		{ID: "c", Severity: entities.SeverityMedium, Timestamp: testNow},
	}

	SortAlerts(alerts)

	assert.Equal(t, []string{"high", "medium", "low"}, severities(alerts))
}

func TestSortAlerts_TieBreakByTimestampDesc(t *testing.T) {
	alerts := []entities.Alert{
		{ID: "old", Severity: entities.SeverityHigh, Timestamp: testNow.Add(-time.Hour)},
		{ID: "new", Severity: entities.SeverityHigh, Timestamp: testNow},
		{ID: "b-same", Severity: entities.SeverityHigh, Timestamp: testNow.Add(-2 * time.Hour)},
		{ID: "a-same", Severity: entities.SeverityHigh, Timestamp: testNow.Add(-2 * time.Hour)},
	}

	SortAlerts(alerts)

	assert.Equal(t, []string{"new", "old", "a-same", "b-same"}, alertIDs(alerts))
}

func fleet() []entities.Equipment {
	return []entities.Equipment{
		{ID: "1", Name: "Treadmill", Status: entities.EquipmentActive, BranchID: "10", MaintenanceInterval: null.IntFrom(30), LastMaintenanceDate: daysAgo(35)},
		{ID: "2", Name: "Rower", Status: entities.EquipmentActive, BranchID: "10", MaintenanceInterval: null.IntFrom(30), LastMaintenanceDate: daysAgo(25)},
		{ID: "3", Name: "Bike", Status: entities.EquipmentActive, BranchID: "20", MaintenanceInterval: null.IntFrom(30), LastMaintenanceDate: daysAgo(29)},
		{ID: "4", Name: "Press", Status: entities.EquipmentInactive, BranchID: "20"},
		{ID: "5", Name: "Cable", Status: entities.EquipmentMaintenance, BranchID: "10"},
		{ID: "6", Name: "Old bench", Status: entities.EquipmentDisposed, BranchID: "10", NextMaintenanceDate: daysAgo(100)},
		{ID: "7", Name: "Far", Status: entities.EquipmentActive, BranchID: "10", MaintenanceInterval: null.IntFrom(90), LastMaintenanceDate: daysAgo(1)},
		{ID: "8", Name: "Unknown dates", Status: entities.EquipmentActive, BranchID: "10", MaintenanceInterval: null.IntFrom(30)},
	}
}

func TestDeriveAlerts_EquipmentSources(t *testing.T) {
	alerts := DeriveAlerts(AlertInput{Equipment: fleet()}, testNow, 7)

	byID := make(map[string]entities.Alert)
	for _, a := range alerts {
		byID[a.ID] = a
	}

	require.Contains(t, byID, "overdue-eq-1")
	assert.Equal(t, entities.SeverityHigh, byID["overdue-eq-1"].Severity)
	assert.Equal(t, "/equipment/1", byID["overdue-eq-1"].Link)

	require.Contains(t, byID, "upcoming-eq-2")
	assert.Equal(t, entities.SeverityMedium, byID["upcoming-eq-2"].Severity, "5 days ahead")

	require.Contains(t, byID, "upcoming-eq-3")
	assert.Equal(t, entities.SeverityHigh, byID["upcoming-eq-3"].Severity, "1 day ahead")

	assert.Equal(t, entities.SeverityLow, byID["inactive-eq-4"].Severity)
	assert.Equal(t, entities.SeverityLow, byID["in-maintenance-eq-5"].Severity, "records unknown")

	assert.NotContains(t, byID, "overdue-eq-6", "disposed is never overdue")
	assert.NotContains(t, byID, "upcoming-eq-7", "outside the look-ahead window")
	assert.NotContains(t, byID, "upcoming-eq-8")
	assert.NotContains(t, byID, "overdue-eq-8")
	assert.Len(t, alerts, 5)
}

func TestDeriveAlerts_InMaintenanceWithoutOpenRecord(t *testing.T) {
	eq := []entities.Equipment{
		{ID: "5", Name: "Cable", Status: entities.EquipmentMaintenance},
		{ID: "9", Name: "Smith", Status: entities.EquipmentMaintenance},
	}
	records := []entities.MaintenanceRecord{
		{ID: "m1", EquipmentID: "9", Status: entities.MaintenanceInProgress},
	}

	alerts := DeriveAlerts(AlertInput{Equipment: eq, Maintenance: records, MaintenanceLoaded: true}, testNow, 7)

	require.Len(t, alerts, 2)
	assert.Equal(t, "in-maintenance-eq-5", alerts[0].ID)
	assert.Equal(t, entities.SeverityMedium, alerts[0].Severity)
	assert.Equal(t, entities.SeverityLow, alerts[1].Severity)
}

func TestDeriveAlerts_MaintenanceRecords(t *testing.T) {
	records := []entities.MaintenanceRecord{
		{ID: "m1", EquipmentID: "1", Status: entities.MaintenanceScheduled, Priority: entities.PriorityLow, ScheduledDate: daysAgo(3)},
		{ID: "m2", EquipmentID: "2", Status: entities.MaintenanceScheduled, Priority: entities.PriorityCritical, ScheduledDate: daysAgo(-4)},
		{ID: "m3", EquipmentID: "3", Status: entities.MaintenanceScheduled, Priority: entities.PriorityLow, ScheduledDate: daysAgo(-6)},
		{ID: "m4", EquipmentID: "4", Status: entities.MaintenanceScheduled, Priority: entities.PriorityMedium, ScheduledDate: daysAgo(-30)},
		{ID: "m5", EquipmentID: "5", Status: entities.MaintenanceCompleted, ScheduledDate: daysAgo(10)},
		{ID: "m6", EquipmentID: "6", Status: entities.MaintenanceScheduled},
	}

	alerts := DeriveAlerts(AlertInput{Maintenance: records, MaintenanceLoaded: true}, testNow, 7)

	assert.Equal(t, []string{"upcoming-mr-m2", "overdue-mr-m1", "upcoming-mr-m3"}, alertIDs(alerts))
	assert.Equal(t, []string{"high", "high", "low"}, severities(alerts))
	assert.Equal(t, "/maintenance/m1", alerts[1].Link)
}

func TestDeriveAlerts_IoT(t *testing.T) {
	iot := []entities.IoTAlert{
		{ID: "x", EquipmentID: "1", Level: entities.IoTLevelWarning, Message: "vibration", Timestamp: testNow},
		{ID: "y", EquipmentID: "2", Level: entities.IoTLevelCritical, Message: "overheat", Timestamp: testNow.Add(-time.Minute)},
		{ID: "z", Level: entities.IoTLevelInfo, Timestamp: testNow},
	}

	alerts := DeriveAlerts(AlertInput{IoT: iot}, testNow, 7)

	assert.Equal(t, []string{"iot-y", "iot-x", "iot-z"}, alertIDs(alerts))
	assert.Equal(t, []string{"high", "medium", "low"}, severities(alerts))
	assert.Equal(t, "/equipment", alerts[2].Link)
}

func newAlertService(eq *fakeEquipment, tr *fakeTracking, iot IoTAlertSource, m *metrics.Metrics) *AlertService {
	s := NewAlertService(eq, tr, iot, 7, m, zap.NewNop())
	s.now = func() time.Time { return testNow }
	return s
}

func TestAlertService_AllSources(t *testing.T) {
	eq := &fakeEquipment{items: fleet()}
	tr := &fakeTracking{maintenance: []entities.MaintenanceRecord{
		{ID: "m1", EquipmentID: "2", Status: entities.MaintenanceScheduled, Priority: entities.PriorityHigh, ScheduledDate: daysAgo(-1)},
	}}
	iot := &fakeIoT{alerts: []entities.IoTAlert{{ID: "i1", Level: entities.IoTLevelCritical, Timestamp: testNow}}}

	feed, err := newAlertService(eq, tr, iot, nil).GetAlerts(context.Background(), AlertFilter{})

	require.NoError(t, err)
	assert.Empty(t, feed.UnavailableSources)
	assert.Len(t, feed.Alerts, 6)
	assert.NotContains(t, alertIDs(feed.Alerts), "upcoming-eq-2", "covered by the scheduled record")
	assert.Equal(t, entities.SeverityHigh, feed.Alerts[0].Severity)
	assert.Equal(t, 4, feed.BySeverity[entities.SeverityHigh])
	assert.Equal(t, "scheduled,in_progress", tr.queries[0].Get("filter[status]"))
}

func TestAlertService_PartialFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	eq := &fakeEquipment{listErr: errBackendDown}
	tr := &fakeTracking{maintenance: []entities.MaintenanceRecord{
		{ID: "m1", EquipmentID: "2", Status: entities.MaintenanceScheduled, Priority: entities.PriorityLow, ScheduledDate: daysAgo(2)},
	}}
	iot := &fakeIoT{alerts: []entities.IoTAlert{{ID: "i1", Level: entities.IoTLevelWarning, Timestamp: testNow}}}

	feed, err := newAlertService(eq, tr, iot, m).GetAlerts(context.Background(), AlertFilter{})

	require.NoError(t, err)
	assert.Equal(t, []string{entities.SourceEquipment}, feed.UnavailableSources)
	assert.ElementsMatch(t, []string{"overdue-mr-m1", "iot-i1"}, alertIDs(feed.Alerts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AlertSourceFails.WithLabelValues(entities.SourceEquipment)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AlertsCurrent.WithLabelValues(entities.SeverityHigh)))
}

func TestAlertService_AllSourcesDown(t *testing.T) {
	eq := &fakeEquipment{listErr: errBackendDown}
	tr := &fakeTracking{listErr: errBackendDown}
	iot := &fakeIoT{err: errBackendDown}

	feed, err := newAlertService(eq, tr, iot, nil).GetAlerts(context.Background(), AlertFilter{})

	require.NoError(t, err)
	assert.Empty(t, feed.Alerts)
	assert.Equal(t, []string{"equipment", "iot", "maintenance"}, feed.UnavailableSources)
}

func TestAlertService_Filter(t *testing.T) {
	eq := &fakeEquipment{items: fleet()}
	tr := &fakeTracking{}

	feed, err := newAlertService(eq, tr, nil, nil).GetAlerts(context.Background(), AlertFilter{
		BranchID: types.ID("10"),
		Severity: entities.SeverityHigh,
		Limit:    1,
	})

	require.NoError(t, err)
	require.Len(t, feed.Alerts, 1)
	assert.Equal(t, "overdue-eq-1", feed.Alerts[0].ID)
	assert.Equal(t, "10", eq.queries[0].Get("filter[branchId]"))
}

func TestDeriveAlerts_RecordSuppressesEquipmentDateAlert(t *testing.T) {
	eq := []entities.Equipment{
		{ID: "1", Name: "Treadmill", Status: entities.EquipmentActive, NextMaintenanceDate: daysAgo(-3)},
		{ID: "2", Name: "Rower", Status: entities.EquipmentActive, NextMaintenanceDate: daysAgo(2)},
		{ID: "3", Name: "Bike", Status: entities.EquipmentActive, NextMaintenanceDate: daysAgo(1)},
	}
	records := []entities.MaintenanceRecord{
		{ID: "m1", EquipmentID: "1", Status: entities.MaintenanceScheduled, Priority: entities.PriorityMedium, ScheduledDate: daysAgo(-3)},
		{ID: "m2", EquipmentID: "2", Status: entities.MaintenanceInProgress},
		{ID: "m3", EquipmentID: "3", Status: entities.MaintenanceScheduled, ScheduledDate: daysAgo(-60)},
	}

	alerts := DeriveAlerts(AlertInput{Equipment: eq, Maintenance: records, MaintenanceLoaded: true}, testNow, 7)

	assert.ElementsMatch(t, []string{"upcoming-mr-m1", "overdue-eq-3"}, alertIDs(alerts),
		"a record far outside the window does not hide an overdue date")
}

func TestOverdueAgreesWithAlertFeed_WestOfUTC(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	useLocal(t, est)

	var eq entities.Equipment
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","name":"Treadmill","status":"active","nextMaintenanceDate":"2026-10-19"}`), &eq))

	dueDay := time.Date(2026, 10, 19, 10, 0, 0, 0, est)
	assert.False(t, IsOverdue(eq, dueDay))
	alerts := DeriveAlerts(AlertInput{Equipment: []entities.Equipment{eq}}, dueDay, 7)
	require.Len(t, alerts, 1)
	assert.Equal(t, entities.AlertUpcomingMaintenance, alerts[0].Kind)

	nextDay := dueDay.AddDate(0, 0, 1)
	assert.True(t, IsOverdue(eq, nextDay))
	alerts = DeriveAlerts(AlertInput{Equipment: []entities.Equipment{eq}}, nextDay, 7)
	require.Len(t, alerts, 1)
	assert.Equal(t, entities.AlertOverdueMaintenance, alerts[0].Kind)
}
