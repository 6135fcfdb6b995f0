package services

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"equipment-portal/internal/dto"
	"equipment-portal/internal/entities"
	"equipment-portal/internal/events"
	apperrors "equipment-portal/pkg/errors"
	"equipment-portal/pkg/filestorage"
	"equipment-portal/pkg/types"
)

const (
	exportArchivePrefix = "exports"
	// выгрузки без фильтра по филиалу
	exportArchiveAllBranches = "all"
)

// ArchivePrefix - каталог архива для выгрузок филиала: exports/<branchId>.
// По нему же проверяется доступ к скачиванию.
func ArchivePrefix(branchID types.ID) string {
	scope := exportArchiveAllBranches
	if !branchID.IsZero() {
		scope = url.PathEscape(branchID.String())
	}
	return exportArchivePrefix + "/" + scope
}

// ExportFile - готовый файл отчёта для ответа клиенту.
type ExportFile struct {
	dto.ExportResultDTO
	ContentType string
	Data        []byte
	Rows        int
}

type ReportServiceInterface interface {
	Get(ctx context.Context, kind string, query dto.ReportQueryDTO) (interface{}, error)
	Export(ctx context.Context, kind string, query dto.ReportQueryDTO, format string, archive bool) (*ExportFile, error)
}

type ReportService struct {
	api     ReportsBackend
	storage filestorage.FileStorageInterface
	bus     EventPublisher
	logger  *zap.Logger
	now     func() time.Time
}

func NewReportService(api ReportsBackend, storage filestorage.FileStorageInterface, bus EventPublisher, logger *zap.Logger) *ReportService {
	return &ReportService{api: api, storage: storage, bus: publisherOrNop(bus), logger: logger.Named("reports"), now: time.Now}
}

func validateRange(q dto.ReportQueryDTO) error {
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return apperrors.NewInvalidInputError("дата окончания раньше даты начала")
	}
	return nil
}

func (s *ReportService) Get(ctx context.Context, kind string, query dto.ReportQueryDTO) (interface{}, error) {
	if err := validateRange(query); err != nil {
		return nil, err
	}
	var (
		data interface{}
		err  error
	)
	switch kind {
	case entities.ReportKindEquipment:
		data, err = s.api.Equipment(ctx, query.Values())
	case entities.ReportKindMaintenance:
		data, err = s.api.Maintenance(ctx, query.Values())
	case entities.ReportKindIncidents:
		data, err = s.api.Incidents(ctx, query.Values())
	case entities.ReportKindSummary:
		data, err = s.api.Summary(ctx, query.Values())
	default:
		return nil, apperrors.NewInvalidInputError("неизвестный вид отчёта: %q", kind)
	}
	if err != nil {
		logBackendError(s.logger, "Ошибка при получении отчёта", err, zap.String("kind", kind))
		return nil, err
	}
	return data, nil
}

// Export строит файл на стороне шлюза. С archive=true файл также сохраняется
// в хранилище, ключ попадает в событие и журнал.
func (s *ReportService) Export(ctx context.Context, kind string, query dto.ReportQueryDTO, format string, archive bool) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatXLSX {
		return nil, apperrors.NewInvalidInputError("неподдерживаемый формат выгрузки: %q", format)
	}

	data, err := s.Get(ctx, kind, query)
	if err != nil {
		return nil, err
	}
	table := s.buildTable(kind, data)

	out := &ExportFile{Rows: len(table.Rows)}
	switch format {
	case FormatXLSX:
		out.Data, err = WriteXLSX(table)
		out.ContentType = ContentTypeXLSX
	default:
		out.Data, err = WriteCSV(table)
		out.ContentType = ContentTypeCSV
	}
	if err != nil {
		s.logger.Error("не удалось сформировать файл отчёта", zap.String("kind", kind), zap.String("format", format), zap.Error(err))
		return nil, err
	}
	out.FileName = fmt.Sprintf("%s_report_%s.%s", kind, s.now().Format("2006-01-02"), format)

	if archive && s.storage != nil {
		key, err := s.storage.Save(ctx, bytes.NewReader(out.Data), out.FileName, ArchivePrefix(query.BranchID), out.ContentType)
		if err != nil {
			// файл всё равно отдаём, архив вторичен
			s.logger.Error("не удалось сохранить выгрузку в архив", zap.String("file", out.FileName), zap.Error(err))
		} else {
			out.ArchiveKey = key
			if u, err := s.storage.URL(ctx, key); err == nil {
				out.URL = u
			}
		}
	}

	s.bus.Publish(ctx, events.ReportExported{
		Kind:       kind,
		Format:     format,
		FileName:   out.FileName,
		ArchiveKey: out.ArchiveKey,
		Rows:       out.Rows,
		Actor:      actorFromCtx(ctx),
	})
	return out, nil
}

func (s *ReportService) buildTable(kind string, data interface{}) Table {
	switch v := data.(type) {
	case []entities.Equipment:
		return equipmentTable(v, s.now())
	case []entities.MaintenanceRecord:
		return maintenanceTable(v)
	case []entities.IncidentReport:
		return incidentTable(v)
	case *entities.ReportSummary:
		return summaryTable(v)
	}
	return Table{Title: kind}
}

const dateLayout = "02.01.2006"

func formatDate(ts types.Timestamp) string {
	if !ts.Valid {
		return ""
	}
	return ts.Time.Time.Format(dateLayout)
}

func yesNo(b bool) string {
	if b {
		return "да"
	}
	return "нет"
}

func equipmentTable(list []entities.Equipment, now time.Time) Table {
	t := Table{
		Title: "Оборудование",
		Headers: []string{"ID", "Название", "Тип", "Статус", "Филиал", "Серийный номер",
			"Дата покупки", "Последнее ТО", "Следующее ТО", "Просрочено"},
	}
	for _, eq := range list {
		next := ""
		if d, ok := NextMaintenanceDate(eq); ok {
			next = d.Format(dateLayout)
		}
		t.Rows = append(t.Rows, []string{
			eq.ID.String(), eq.Name, eq.Type, eq.Status, eq.BranchName, eq.SerialNumber,
			formatDate(eq.PurchaseDate), formatDate(eq.LastMaintenanceDate), next, yesNo(IsOverdue(eq, now)),
		})
	}
	return t
}

func maintenanceTable(list []entities.MaintenanceRecord) Table {
	t := Table{
		Title: "Обслуживание",
		Headers: []string{"ID", "Оборудование", "Тип", "Статус", "Приоритет",
			"Дата", "Завершено", "Исполнитель", "Оценка"},
	}
	for _, m := range list {
		rating := ""
		if m.Rating.Valid {
			rating = strconv.Itoa(m.Rating.Int)
		}
		t.Rows = append(t.Rows, []string{
			m.ID.String(), m.EquipmentName, m.Type, m.Status, m.Priority,
			formatDate(m.ScheduledDate), formatDate(m.CompletedDate), m.AssignedToName, rating,
		})
	}
	return t
}

func incidentTable(list []entities.IncidentReport) Table {
	t := Table{
		Title:   "Инциденты",
		Headers: []string{"ID", "Оборудование", "Заголовок", "Важность", "Статус", "Сообщил", "Эскалация", "Создан"},
	}
	for _, i := range list {
		t.Rows = append(t.Rows, []string{
			i.ID.String(), i.EquipmentName, i.Title, i.Severity, i.Status, i.ReportedByName,
			yesNo(i.Escalated), formatDate(i.CreatedAt),
		})
	}
	return t
}

func summaryTable(s *entities.ReportSummary) Table {
	t := Table{Title: "Сводка", Headers: []string{"Показатель", "Значение"}}
	if s == nil {
		return t
	}
	add := func(name, value string) { t.Rows = append(t.Rows, []string{name, value}) }

	add("Период с", formatDate(s.From))
	add("Период по", formatDate(s.To))
	add("Всего оборудования", strconv.Itoa(s.TotalEquipment))
	for _, k := range sortedCountKeys(s.EquipmentByStatus) {
		add("Оборудование: "+k, strconv.Itoa(s.EquipmentByStatus[k]))
	}
	add("Обслуживаний завершено", strconv.Itoa(s.MaintenanceCompleted))
	add("Обслуживаний просрочено", strconv.Itoa(s.MaintenanceOverdue))
	add("Открытых инцидентов", strconv.Itoa(s.IncidentsOpen))
	for _, k := range sortedCountKeys(s.IncidentsBySeverity) {
		add("Инциденты: "+k, strconv.Itoa(s.IncidentsBySeverity[k]))
	}
	add("Затраты", strconv.FormatFloat(s.TotalCost, 'f', 2, 64))
	return t
}

func sortedCountKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
