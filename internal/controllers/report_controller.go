package controllers

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-portal/internal/dto"
	"equipment-portal/internal/services"
	apperrors "equipment-portal/pkg/errors"
	"equipment-portal/pkg/types"
	"equipment-portal/pkg/utils"
)

// Заголовок с ключом архива, если выгрузка была сохранена.
const headerExportArchive = "X-Export-Archive"

type ReportController struct {
	reportService services.ReportServiceInterface
	logger        *zap.Logger
}

func NewReportController(reportService services.ReportServiceInterface, logger *zap.Logger) *ReportController {
	return &ReportController{reportService: reportService, logger: logger}
}

func (c *ReportController) GetReport(ctx echo.Context) error {
	kind := ctx.Param("kind")
	query, err := c.parseQuery(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	c.logger.Debug("Запрос на отчет с фильтрами", zap.String("kind", kind), zap.Any("query", query))

	data, err := c.reportService.Get(ctx.Request().Context(), kind, query)
	if err != nil {
		c.logger.Error("GetReport: ошибка при получении отчёта", zap.String("kind", kind), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось сформировать отчёт", err, nil),
			c.logger)
	}
	return utils.SuccessResponse(ctx, data, "Отчет успешно сформирован", http.StatusOK)
}

// ExportReport отдаёт файл: ?format=csv|xlsx, ?archive=true дополнительно сохраняет его в хранилище.
func (c *ReportController) ExportReport(ctx echo.Context) error {
	kind := ctx.Param("kind")
	query, err := c.parseQuery(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	archive, _ := strconv.ParseBool(ctx.QueryParam("archive"))

	file, err := c.reportService.Export(ctx.Request().Context(), kind, query, ctx.QueryParam("format"), archive)
	if err != nil {
		c.logger.Error("ExportReport: ошибка выгрузки отчёта",
			zap.String("kind", kind), zap.String("format", ctx.QueryParam("format")), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось выгрузить отчёт", err, nil),
			c.logger)
	}

	header := ctx.Response().Header()
	header.Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, file.FileName))
	if file.ArchiveKey != "" {
		header.Set(headerExportArchive, file.ArchiveKey)
	}
	c.logger.Info("отчёт выгружен", zap.String("file", file.FileName), zap.Int("rows", file.Rows))
	return ctx.Blob(http.StatusOK, file.ContentType, file.Data)
}

func (c *ReportController) parseQuery(ctx echo.Context) (dto.ReportQueryDTO, error) {
	query := dto.ReportQueryDTO{
		BranchID: types.ID(ctx.QueryParam("branchId")),
		Status:   ctx.QueryParam("status"),
	}
	var err error
	if query.From, err = parseDateParam(ctx, "from"); err != nil {
		return query, err
	}
	if query.To, err = parseDateParam(ctx, "to"); err != nil {
		return query, err
	}

	// менеджер не видит чужие филиалы
	if p, perr := utils.GetPrincipalFromCtx(ctx.Request().Context()); perr == nil && p.Role == utils.RoleManager && !p.BranchID.IsZero() {
		query.BranchID = p.BranchID
	}
	return query, nil
}

// parseDateParam принимает YYYY-MM-DD или RFC3339.
func parseDateParam(ctx echo.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(ctx.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, apperrors.NewInvalidInputError("неверный формат даты в параметре %s: %s", name, raw)
}

// ArchiveController раздаёт архив выгрузок с локального диска. Для S3 не нужен:
// там ссылки подписаны.
type ArchiveController struct {
	root   string
	logger *zap.Logger
}

func NewArchiveController(root string, logger *zap.Logger) *ArchiveController {
	return &ArchiveController{root: root, logger: logger}
}

// Download: администратор скачивает любой файл, остальные - только из
// каталога своего филиала.
func (c *ArchiveController) Download(ctx echo.Context) error {
	key := path.Clean("/" + ctx.Param("*"))
	if key == "/" {
		return utils.ErrorResponse(ctx, apperrors.ErrNotFound, c.logger)
	}
	p, err := utils.GetPrincipalFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.ErrUnauthorized, c.logger)
	}
	if !p.HasRole(utils.RoleAdmin) {
		if p.BranchID.IsZero() || !strings.HasPrefix(key, "/"+services.ArchivePrefix(p.BranchID)+"/") {
			c.logger.Warn("Download: файл чужого филиала",
				zap.String("key", key),
				zap.String("userID", p.UserID.String()),
				zap.String("branchID", p.BranchID.String()),
			)
			return utils.ErrorResponse(ctx, apperrors.ErrForbidden, c.logger)
		}
	}
	full := filepath.Join(c.root, filepath.FromSlash(key))
	if _, err := os.Stat(full); err != nil {
		c.logger.Warn("Download: файл архива не найден", zap.String("key", key))
		return utils.ErrorResponse(ctx, apperrors.ErrNotFound, c.logger)
	}
	return ctx.Attachment(full, path.Base(key))
}
