package routes

import (
	"github.com/gin-gonic/gin"

	"tourguard/controllers"
	"tourguard/middleware"
)

// SetupWebSocketRoutes configures the authority alert feed. It is the only
// route that accepts ?token=.
func SetupWebSocketRoutes(router *gin.Engine, api *gin.RouterGroup, wsController *controllers.WebSocketController, auth *middleware.AuthMiddleware) {
	router.GET("/ws/alerts", auth.RequireUpgradeAuth(), auth.RequireAuthority(), wsController.HandleAlertFeed)

	ws := api.Group("/ws")
	ws.Use(auth.RequireAuthority())
	{
		ws.GET("/stats", wsController.GetFeedStats)
	}
}
