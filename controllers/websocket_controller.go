package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"tourguard/utils"
	"tourguard/websocket"
)

type WebSocketController struct {
	hub    *websocket.Hub
	logger logrus.FieldLogger
}

func NewWebSocketController(hub *websocket.Hub, logger logrus.FieldLogger) *WebSocketController {
	return &WebSocketController{
		hub:    hub,
		logger: logger,
	}
}

// HandleAlertFeed upgrades an authority connection onto the live alert feed.
// Authentication and the role check run as middleware before the upgrade.
func (wsc *WebSocketController) HandleAlertFeed(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	// The upgrader writes its own HTTP error on failure.
	if err := websocket.ServeWS(wsc.hub, c.Writer, c.Request, identity); err != nil {
		wsc.logger.WithError(err).WithField("user_id", identity.ID).Warn("Failed to upgrade WebSocket connection")
		return
	}
}

// GetFeedStats reports hub connection counters
func (wsc *WebSocketController) GetFeedStats(c *gin.Context) {
	utils.SuccessResponse(c, "Alert feed statistics retrieved successfully", wsc.hub.GetStats())
}
