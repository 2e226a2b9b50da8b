package routes

import (
	"github.com/gin-gonic/gin"

	"tourguard/controllers"
)

// SetupAlertRoutes configures alert lifecycle routes
func SetupAlertRoutes(router *gin.RouterGroup, alertController *controllers.AlertController) {
	alerts := router.Group("/alerts")
	{
		alerts.POST("", alertController.CreateAlert)
		alerts.GET("", alertController.ListAlerts)
		alerts.POST("/panic", alertController.TriggerPanic)
		alerts.GET("/:alertId", alertController.GetAlert)
		alerts.PATCH("/:alertId/status", alertController.UpdateAlertStatus)
	}
}
