package routes

import (
	"github.com/labstack/echo/v4"

	"equipment-portal/internal/controllers"
)

func runEquipmentRouter(secureGroup *echo.Group, ctrl *controllers.EquipmentController) {
	equipment := secureGroup.Group("/equipment")
	{
		equipment.GET("", ctrl.GetEquipments)
		equipment.GET("/qr/:code", ctrl.FindByQR)
		equipment.POST("", ctrl.CreateEquipment)
		equipment.POST("/bulk-dispose", ctrl.BulkDispose)
		equipment.GET("/:id", ctrl.FindEquipment)
		equipment.PUT("/:id", ctrl.UpdateEquipment)
		equipment.DELETE("/:id", ctrl.DeleteEquipment)
		equipment.PATCH("/:id/status", ctrl.ChangeStatus)
		equipment.POST("/:id/dispose", ctrl.Dispose)
	}
}
