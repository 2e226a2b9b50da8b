package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"tourguard/interfaces"
	"tourguard/models"
)

// PushService notifies the authorities' FCM topic about new alerts.
type PushService struct {
	sender interfaces.PushSender
	topic  string
}

func NewPushService(sender interfaces.PushSender, topic string) *PushService {
	return &PushService{
		sender: sender,
		topic:  topic,
	}
}

func (ps *PushService) Name() string { return "fcm" }

func (ps *PushService) Deliver(ctx context.Context, eventType string, alert *models.Alert) error {
	if eventType != models.WSTypeAlertCreated {
		return nil
	}

	title := fmt.Sprintf("%s alert: %s", strings.ToUpper(string(alert.Severity)), strings.ReplaceAll(string(alert.Type), "_", " "))
	data := map[string]string{
		"alertId":   alert.ID.Hex(),
		"subjectId": alert.SubjectID,
		"type":      string(alert.Type),
		"severity":  string(alert.Severity),
		"latitude":  strconv.FormatFloat(alert.Location.Latitude, 'f', 6, 64),
		"longitude": strconv.FormatFloat(alert.Location.Longitude, 'f', 6, 64),
	}

	_, err := ps.sender.SendToTopic(ctx, ps.topic, title, alert.Message, data)
	return err
}
