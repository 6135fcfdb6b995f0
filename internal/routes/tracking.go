package routes

import (
	"github.com/labstack/echo/v4"

	"equipment-portal/internal/controllers"
)

func runMaintenanceRouter(secureGroup *echo.Group, ctrl *controllers.MaintenanceController) {
	maintenance := secureGroup.Group("/maintenance")
	{
		maintenance.GET("", ctrl.GetRecords)
		maintenance.POST("", ctrl.CreateRecord)
		maintenance.GET("/:id", ctrl.FindRecord)
		maintenance.PUT("/:id", ctrl.UpdateRecord)
		maintenance.PATCH("/:id/status", ctrl.ChangeStatus)
		maintenance.POST("/:id/feedback", ctrl.SubmitFeedback)
		maintenance.POST("/:id/cancel", ctrl.Cancel)
	}
}

func runScheduleRouter(secureGroup *echo.Group, ctrl *controllers.ScheduleController) {
	schedules := secureGroup.Group("/schedules")
	{
		schedules.GET("", ctrl.GetSchedules)
		schedules.POST("", ctrl.CreateSchedule)
		schedules.POST("/auto-schedule", ctrl.AutoSchedule)
		schedules.GET("/:id", ctrl.FindSchedule)
		schedules.PUT("/:id", ctrl.UpdateSchedule)
		schedules.DELETE("/:id", ctrl.DeleteSchedule)
		schedules.POST("/:id/generate", ctrl.Generate)
	}
}

func runIncidentRouter(secureGroup *echo.Group, ctrl *controllers.IncidentController) {
	incidents := secureGroup.Group("/incidents")
	{
		incidents.GET("", ctrl.GetIncidents)
		incidents.POST("", ctrl.ReportIncident)
		incidents.GET("/:id", ctrl.FindIncident)
		incidents.PATCH("/:id/status", ctrl.ChangeStatus)
		incidents.POST("/:id/escalate", ctrl.Escalate)
	}
}

func runTransferRouter(secureGroup *echo.Group, ctrl *controllers.TransferController) {
	transfers := secureGroup.Group("/transfers")
	{
		transfers.GET("", ctrl.GetTransfers)
		transfers.POST("", ctrl.CreateTransfer)
		transfers.POST("/:id/approve", ctrl.Approve)
		transfers.POST("/:id/reject", ctrl.Reject)
		transfers.POST("/:id/complete", ctrl.Complete)
	}
}
