package routes

import (
	"github.com/gin-gonic/gin"

	"tourguard/controllers"
)

// SetupLocationRoutes configures location tracking routes. Sample ingestion
// goes through limiter; history reads do not.
func SetupLocationRoutes(router *gin.RouterGroup, locationController *controllers.LocationController, limiter gin.HandlerFunc) {
	location := router.Group("/location")

	tracking := location.Group("")
	tracking.Use(limiter)
	{
		tracking.POST("", locationController.UpdateLocation)
		tracking.POST("/nmea", locationController.UpdateLocationNMEA)
	}

	location.GET("/history", locationController.GetLocationHistory)
}
