package routes

import (
	"github.com/labstack/echo/v4"

	"equipment-portal/internal/controllers"
)

func runBranchRouter(secureGroup *echo.Group, ctrl *controllers.BranchController) {
	secureGroup.GET("/branches", ctrl.GetBranches)
	secureGroup.GET("/branches/:id", ctrl.FindBranch)
}

func runUserRouter(secureGroup *echo.Group, ctrl *controllers.UserController) {
	secureGroup.GET("/users", ctrl.GetUsers)
	secureGroup.GET("/users/technicians", ctrl.GetTechnicians)
	secureGroup.GET("/users/:id", ctrl.FindUser)
}

func runReportRouter(secureGroup *echo.Group, ctrl *controllers.ReportController) {
	secureGroup.GET("/reports/:kind", ctrl.GetReport)
	secureGroup.GET("/reports/:kind/export", ctrl.ExportReport)
}
