// services/sms_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"

	"tourguard/interfaces"
	"tourguard/models"
)

// SMSService texts the configured authority numbers about urgent alerts.
type SMSService struct {
	sender     interfaces.SMSSender
	recipients []string
	limiter    *rate.Limiter
}

// NewSMSService throttles outgoing messages to perMinute across all recipients.
func NewSMSService(sender interfaces.SMSSender, recipients []string, perMinute int) *SMSService {
	if perMinute <= 0 {
		perMinute = 60
	}
	return &SMSService{
		sender:     sender,
		recipients: recipients,
		limiter:    rate.NewLimiter(rate.Limit(float64(perMinute)/60), perMinute),
	}
}

func (ss *SMSService) Name() string { return "sms" }

func (ss *SMSService) Deliver(ctx context.Context, eventType string, alert *models.Alert) error {
	if eventType != models.WSTypeAlertCreated || !alert.Severity.Urgent() {
		return nil
	}

	body := formatAlertSMS(alert)
	var errs []error
	for _, to := range ss.recipients {
		if err := ss.limiter.Wait(ctx); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := ss.sender.SendSMS(ctx, to, body); err != nil {
			errs = append(errs, fmt.Errorf("sms to %s: %w", to, err))
		}
	}
	return errors.Join(errs...)
}

func formatAlertSMS(alert *models.Alert) string {
	location := fmt.Sprintf("%.5f,%.5f", alert.Location.Latitude, alert.Location.Longitude)
	if alert.Location.Address != "" {
		location = alert.Location.Address + " (" + location + ")"
	}
	return fmt.Sprintf("[%s] %s alert for tourist %s at %s: %s (ref %s)",
		alert.Severity, alert.Type, alert.SubjectID, location, alert.Message, alert.ID.Hex())
}
