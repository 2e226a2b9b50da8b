package routes

import (
	"github.com/gin-gonic/gin"

	"tourguard/controllers"
)

// SetupSensorRoutes configures sensor classification routes behind limiter.
func SetupSensorRoutes(router *gin.RouterGroup, sensorController *controllers.SensorController, limiter gin.HandlerFunc) {
	sensors := router.Group("/sensors")
	sensors.Use(limiter)
	{
		sensors.POST("/activity", sensorController.CheckActivity)
		sensors.POST("/audio", sensorController.CheckAudio)
	}
}
