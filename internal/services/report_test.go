package services

import (
	"bytes"
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"equipment-portal/internal/dto"
	"equipment-portal/internal/entities"
	"equipment-portal/internal/events"
	apperrors "equipment-portal/pkg/errors"
	"equipment-portal/pkg/filestorage"
	"equipment-portal/pkg/types"
)

type fakeReports struct {
	calls   int
	queries []url.Values
}

func (f *fakeReports) Equipment(_ context.Context, q url.Values) ([]entities.Equipment, error) {
	f.calls++
	f.queries = append(f.queries, q)
	return []entities.Equipment{
		{ID: "1", Name: "Беговая дорожка", Status: entities.EquipmentActive, MaintenanceInterval: null.IntFrom(30), LastMaintenanceDate: daysAgo(35)},
		{ID: "2", Name: "Гребной тренажёр", Status: entities.EquipmentDisposed},
	}, nil
}

func (f *fakeReports) Maintenance(context.Context, url.Values) ([]entities.MaintenanceRecord, error) {
	f.calls++
	return []entities.MaintenanceRecord{{ID: "1", Rating: null.IntFrom(4)}}, nil
}

func (f *fakeReports) Incidents(context.Context, url.Values) ([]entities.IncidentReport, error) {
	f.calls++
	return nil, nil
}

func (f *fakeReports) Summary(context.Context, url.Values) (*entities.ReportSummary, error) {
	f.calls++
	return &entities.ReportSummary{TotalEquipment: 2, EquipmentByStatus: map[string]int{"active": 1, "disposed": 1}}, nil
}

func newReportService(t *testing.T, api *fakeReports, bus *recordingBus) (*ReportService, string) {
	t.Helper()
	dir := t.TempDir()
	storage, err := filestorage.NewLocalFileStorage(dir, "/exports")
	require.NoError(t, err)
	s := NewReportService(api, storage, bus, zap.NewNop())
	s.now = func() time.Time { return testNow }
	return s, dir
}

func TestReport_UnknownKindAndBadRange(t *testing.T) {
	api := &fakeReports{}
	s, _ := newReportService(t, api, &recordingBus{})

	_, err := s.Get(context.Background(), "finance", dto.ReportQueryDTO{})
	assert.True(t, apperrors.IsInvalidInput(err))

	from := testNow
	to := testNow.AddDate(0, 0, -1)
	_, err = s.Get(context.Background(), entities.ReportKindEquipment, dto.ReportQueryDTO{From: &from, To: &to})
	assert.True(t, apperrors.IsInvalidInput(err))
	assert.Zero(t, api.calls)
}

func TestReport_GetPassesFilters(t *testing.T) {
	api := &fakeReports{}
	s, _ := newReportService(t, api, nil)
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := s.Get(context.Background(), entities.ReportKindEquipment, dto.ReportQueryDTO{From: &from, BranchID: types.ID("3")})

	require.NoError(t, err)
	require.Len(t, api.queries, 1)
	assert.Equal(t, "2024-06-01", api.queries[0].Get("from"))
	assert.Equal(t, "3", api.queries[0].Get("branchId"))
}

func TestReport_ExportCSV(t *testing.T) {
	bus := &recordingBus{}
	s, _ := newReportService(t, &fakeReports{}, bus)

	file, err := s.Export(context.Background(), entities.ReportKindEquipment, dto.ReportQueryDTO{}, "", false)

	require.NoError(t, err)
	assert.Equal(t, "equipment_report_2024-06-15.csv", file.FileName)
	assert.Equal(t, ContentTypeCSV, file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Data, utf8BOM))
	assert.Equal(t, 2, file.Rows)
	assert.Contains(t, string(file.Data), "Беговая дорожка")
	assert.Empty(t, file.ArchiveKey)

	lines := strings.Split(strings.TrimSpace(string(file.Data[len(utf8BOM):])), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[1], ",да"), "first row is overdue")
	assert.True(t, strings.HasSuffix(lines[2], ",нет"), "disposed is never overdue")
	assert.Equal(t, []string{"report.exported"}, bus.names())
}

func TestReport_ExportArchived(t *testing.T) {
	bus := &recordingBus{}
	s, dir := newReportService(t, &fakeReports{}, bus)

	file, err := s.Export(context.Background(), entities.ReportKindSummary, dto.ReportQueryDTO{}, "XLSX", true)

	require.NoError(t, err)
	assert.Equal(t, ContentTypeXLSX, file.ContentType)
	require.NotEmpty(t, file.ArchiveKey)
	assert.True(t, strings.HasPrefix(file.ArchiveKey, "exports/all/"), "unscoped export goes to the shared folder")
	assert.Equal(t, "/exports/"+file.ArchiveKey, file.URL)

	saved, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(file.ArchiveKey)))
	require.NoError(t, err)
	assert.Equal(t, file.Data, saved)

	require.Len(t, bus.events, 1)
	ev := bus.events[0].(events.ReportExported)
	assert.Equal(t, file.ArchiveKey, ev.ArchiveKey)
	assert.Equal(t, FormatXLSX, ev.Format)
}

func TestReport_ExportUnsupportedFormat(t *testing.T) {
	api := &fakeReports{}
	s, _ := newReportService(t, api, nil)

	_, err := s.Export(context.Background(), entities.ReportKindEquipment, dto.ReportQueryDTO{}, "pdf", false)

	assert.True(t, apperrors.IsInvalidInput(err))
	assert.Zero(t, api.calls)
}

func TestSummaryTable(t *testing.T) {
	table := summaryTable(&entities.ReportSummary{
		TotalEquipment:      3,
		EquipmentByStatus:   map[string]int{"maintenance": 1, "active": 2},
		IncidentsBySeverity: map[string]int{"high": 1},
		TotalCost:           1500.5,
	})

	assert.Contains(t, table.Rows, []string{"Оборудование: active", "2"})
	assert.Contains(t, table.Rows, []string{"Инциденты: high", "1"})
	assert.Contains(t, table.Rows, []string{"Затраты", "1500.50"})
}

func TestReport_ExportArchivedUnderBranch(t *testing.T) {
	s, _ := newReportService(t, &fakeReports{}, &recordingBus{})

	file, err := s.Export(context.Background(), entities.ReportKindEquipment, dto.ReportQueryDTO{BranchID: types.ID("3")}, "csv", true)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(file.ArchiveKey, ArchivePrefix("3")+"/"))
	assert.Equal(t, "exports/3", ArchivePrefix("3"))
	assert.Equal(t, "exports/all", ArchivePrefix(""))
}
