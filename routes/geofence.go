package routes

import (
	"github.com/gin-gonic/gin"

	"tourguard/controllers"
)

func SetupGeofenceRoutes(router *gin.RouterGroup, geofenceController *controllers.GeofenceController) {
	geofences := router.Group("/geofences")
	{
		geofences.POST("", geofenceController.CreateGeofence)
		geofences.GET("", geofenceController.ListGeofences)
	}

	router.GET("/safety-score", geofenceController.GetSafetyScore)
}
