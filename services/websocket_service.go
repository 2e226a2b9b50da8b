package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"tourguard/interfaces"
	"tourguard/models"
)

// WebSocketService forwards every alert event to connected authority clients.
type WebSocketService struct {
	broadcaster interfaces.AlertBroadcaster
	logger      logrus.FieldLogger
}

func NewWebSocketService(broadcaster interfaces.AlertBroadcaster, logger logrus.FieldLogger) *WebSocketService {
	return &WebSocketService{
		broadcaster: broadcaster,
		logger:      logger,
	}
}

func (ws *WebSocketService) Name() string { return "websocket" }

func (ws *WebSocketService) Deliver(_ context.Context, eventType string, alert *models.Alert) error {
	delivered := ws.broadcaster.BroadcastAlert(eventType, alert)
	ws.logger.WithFields(logrus.Fields{
		"alert_id":   alert.ID.Hex(),
		"event_type": eventType,
		"clients":    delivered,
	}).Debug("Broadcast alert event")
	return nil
}
