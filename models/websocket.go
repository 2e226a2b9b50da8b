// models/websocket.go
package models

import (
	"time"
)

// WebSocket message types pushed to authority clients
const (
	WSTypeAlertCreated       = "alert_created"
	WSTypeAlertStatusChanged = "alert_status_changed"
	WSTypePong               = "pong"
	WSTypeError              = "error"
)

type WSMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"requestId,omitempty"`
}

type WSAlertEvent struct {
	AlertID    string        `json:"alertId"`
	SubjectID  string        `json:"subjectId"`
	Type       AlertType     `json:"type"`
	Severity   AlertSeverity `json:"severity"`
	Status     AlertStatus   `json:"status"`
	Message    string        `json:"message"`
	Location   AlertLocation `json:"location"`
	AssignedTo string        `json:"assignedTo,omitempty"`
}

func NewWSAlertEvent(alert *Alert) WSAlertEvent {
	return WSAlertEvent{
		AlertID:    alert.ID.Hex(),
		SubjectID:  alert.SubjectID,
		Type:       alert.Type,
		Severity:   alert.Severity,
		Status:     alert.Status,
		Message:    alert.Message,
		Location:   alert.Location,
		AssignedTo: alert.AssignedTo,
	}
}
