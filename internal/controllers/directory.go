package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-portal/internal/services"
	apperrors "equipment-portal/pkg/errors"
	"equipment-portal/pkg/types"
	"equipment-portal/pkg/utils"
)

type BranchController struct {
	branchService services.BranchServiceInterface
	logger        *zap.Logger
}

func NewBranchController(service services.BranchServiceInterface, logger *zap.Logger) *BranchController {
	return &BranchController{branchService: service, logger: logger}
}

func (c *BranchController) GetBranches(ctx echo.Context) error {
	res, pagination, err := c.branchService.List(ctx.Request().Context(), listFilter(ctx))
	if err != nil {
		c.logger.Error("GetBranches: ошибка при получении филиалов", zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось получить список филиалов", err, nil),
			c.logger)
	}
	return utils.SuccessListResponse(ctx, res, pagination, "Список филиалов успешно получен")
}

func (c *BranchController) FindBranch(ctx echo.Context) error {
	id, err := pathID(ctx, c.logger, "FindBranch")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.branchService.Find(ctx.Request().Context(), id)
	if err != nil {
		c.logger.Error("FindBranch: ошибка при поиске филиала", zap.String("id", id.String()), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось найти филиал", err, nil),
			c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Филиал найден", http.StatusOK)
}

type UserController struct {
	userService services.UserServiceInterface
	logger      *zap.Logger
}

func NewUserController(service services.UserServiceInterface, logger *zap.Logger) *UserController {
	return &UserController{userService: service, logger: logger}
}

func (c *UserController) GetUsers(ctx echo.Context) error {
	res, pagination, err := c.userService.List(ctx.Request().Context(), listFilter(ctx))
	if err != nil {
		c.logger.Error("GetUsers: ошибка при получении пользователей", zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось получить список пользователей", err, nil),
			c.logger)
	}
	return utils.SuccessListResponse(ctx, res, pagination, "Список пользователей успешно получен")
}

func (c *UserController) FindUser(ctx echo.Context) error {
	id, err := pathID(ctx, c.logger, "FindUser")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.userService.Find(ctx.Request().Context(), id)
	if err != nil {
		c.logger.Error("FindUser: ошибка при поиске пользователя", zap.String("id", id.String()), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось найти пользователя", err, nil),
			c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Пользователь найден", http.StatusOK)
}

// GetTechnicians: менеджер видит только техников своего филиала.
func (c *UserController) GetTechnicians(ctx echo.Context) error {
	branchID := types.ID(ctx.QueryParam("branchId"))
	if p, err := utils.GetPrincipalFromCtx(ctx.Request().Context()); err == nil && p.Role == utils.RoleManager && !p.BranchID.IsZero() {
		branchID = p.BranchID
	}

	res, err := c.userService.Technicians(ctx.Request().Context(), branchID)
	if err != nil {
		c.logger.Error("GetTechnicians: ошибка при получении техников", zap.String("branchID", branchID.String()), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось получить список техников", err, nil),
			c.logger)
	}
	return utils.SuccessListResponse(ctx, res, nil, "Список техников успешно получен")
}
