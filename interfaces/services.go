package interfaces

import (
	"context"

	"tourguard/models"
)

// IdentityProvider resolves a bearer credential to the caller.
type IdentityProvider interface {
	Authenticate(token string) (*models.UserIdentity, error)
}

// AlertBroadcaster pushes alert events to connected authority clients.
type AlertBroadcaster interface {
	BroadcastAlert(eventType string, alert *models.Alert) int
}

type PushSender interface {
	SendToTopic(ctx context.Context, topic string, title, body string, data map[string]string) (string, error)
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) (string, error)
}

// Geocoder turns a coordinate into a human readable address.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, coordinate models.Coordinate) (string, error)
}

// RiskPredictor returns a risk score in [0, 100] for a location.
type RiskPredictor interface {
	PredictRisk(ctx context.Context, coordinate models.Coordinate, year int) (float64, error)
}

// SensorClassifier labels raw phone sensor data.
type SensorClassifier interface {
	ClassifyActivity(ctx context.Context, window [][]float64) (string, error)
	DetectKeyword(ctx context.Context, audio []float64) (detected bool, confidence float64, err error)
}
