package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Alert struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SubjectID      string             `json:"subjectId" bson:"subjectId"`
	Type           AlertType          `json:"type" bson:"type"`
	Severity       AlertSeverity      `json:"severity" bson:"severity"`
	Location       AlertLocation      `json:"location" bson:"location"`
	Message        string             `json:"message" bson:"message"`
	AdditionalData map[string]Value   `json:"additionalData,omitempty" bson:"additionalData,omitempty"`
	Status         AlertStatus        `json:"status" bson:"status"`
	AssignedTo     string             `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`
	Responses      []AlertResponse    `json:"responses" bson:"responses"`
	AutoGenerated  bool               `json:"autoGenerated" bson:"autoGenerated"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
	ResolvedAt     *time.Time         `json:"resolvedAt,omitempty" bson:"resolvedAt,omitempty"`
}

type AlertLocation struct {
	Coordinate `bson:",inline"`
	Address    string `json:"address,omitempty" bson:"address,omitempty"`
}

// AlertResponse is one audit entry; entries are never rewritten.
type AlertResponse struct {
	ResponderID string    `json:"responderId" bson:"responderId"`
	Action      string    `json:"action" bson:"action"`
	Timestamp   time.Time `json:"timestamp" bson:"timestamp"`
	Notes       string    `json:"notes,omitempty" bson:"notes,omitempty"`
}

type AlertType string

const (
	AlertTypePanic              AlertType = "panic"
	AlertTypeGeofenceViolation  AlertType = "geofence_violation"
	AlertTypeLowSafetyScore     AlertType = "low_safety_score"
	AlertTypeMissing            AlertType = "missing"
	AlertTypeHealthEmergency    AlertType = "health_emergency"
	AlertTypeSuspiciousActivity AlertType = "suspicious_activity"
)

func (t AlertType) Valid() bool {
	switch t {
	case AlertTypePanic, AlertTypeGeofenceViolation, AlertTypeLowSafetyScore,
		AlertTypeMissing, AlertTypeHealthEmergency, AlertTypeSuspiciousActivity:
		return true
	}
	return false
}

type AlertSeverity string

const (
	AlertSeverityLow      AlertSeverity = "low"
	AlertSeverityMedium   AlertSeverity = "medium"
	AlertSeverityHigh     AlertSeverity = "high"
	AlertSeverityCritical AlertSeverity = "critical"
)

func (s AlertSeverity) Valid() bool {
	switch s {
	case AlertSeverityLow, AlertSeverityMedium, AlertSeverityHigh, AlertSeverityCritical:
		return true
	}
	return false
}

// Urgent severities are escalated over SMS.
func (s AlertSeverity) Urgent() bool {
	return s == AlertSeverityHigh || s == AlertSeverityCritical
}

type AlertStatus string

const (
	AlertStatusActive       AlertStatus = "active"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusResolved     AlertStatus = "resolved"
	AlertStatusFalseAlarm   AlertStatus = "false_alarm"
)

var alertTransitions = map[AlertStatus][]AlertStatus{
	AlertStatusActive:       {AlertStatusAcknowledged, AlertStatusResolved, AlertStatusFalseAlarm},
	AlertStatusAcknowledged: {AlertStatusResolved, AlertStatusFalseAlarm},
	AlertStatusResolved:     nil,
	AlertStatusFalseAlarm:   nil,
}

func (s AlertStatus) Valid() bool {
	_, ok := alertTransitions[s]
	return ok
}

func (s AlertStatus) Terminal() bool {
	return s.Valid() && len(alertTransitions[s]) == 0
}

func (s AlertStatus) CanTransitionTo(next AlertStatus) bool {
	for _, allowed := range alertTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AlertStatusesLeadingTo lists every status from which next is reachable in
// one step.
func AlertStatusesLeadingTo(next AlertStatus) []AlertStatus {
	var from []AlertStatus
	for _, status := range []AlertStatus{AlertStatusActive, AlertStatusAcknowledged, AlertStatusResolved, AlertStatusFalseAlarm} {
		if status.CanTransitionTo(next) {
			from = append(from, status)
		}
	}
	return from
}

func StatusChangeAction(status AlertStatus) string {
	return "Status changed to " + string(status)
}

// AlertTransition is applied to a stored alert as one atomic update.
type AlertTransition struct {
	Status     AlertStatus
	Response   AlertResponse
	At         time.Time
	ClaimantID string        // claims the alert if it is unassigned
	From       []AlertStatus // required current status; empty means any
}

type AlertFilter struct {
	SubjectID string
	Status    AlertStatus
	Type      AlertType
	Severity  AlertSeverity
}

type AlertPage struct {
	Alerts []Alert `json:"alerts"`
	Total  int64   `json:"total"`
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
	Pages  int     `json:"pages"`
}

// Request DTOs
type CoordinateInput struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	Address   string   `json:"address,omitempty" validate:"max=500"`
}

func (in CoordinateInput) AlertLocation() AlertLocation {
	loc := AlertLocation{Address: in.Address}
	if in.Latitude != nil {
		loc.Latitude = *in.Latitude
	}
	if in.Longitude != nil {
		loc.Longitude = *in.Longitude
	}
	return loc
}

type CreateAlertRequest struct {
	Type           AlertType        `json:"type" validate:"required,alert_type"`
	Severity       AlertSeverity    `json:"severity,omitempty" validate:"omitempty,alert_severity"`
	Location       CoordinateInput  `json:"location"`
	Message        string           `json:"message" validate:"required,min=1,max=1000"`
	AdditionalData map[string]Value `json:"additionalData,omitempty"`
}

type PanicAlertRequest struct {
	Location CoordinateInput `json:"location"`
	Message  string          `json:"message,omitempty" validate:"max=1000"`
}

type UpdateAlertStatusRequest struct {
	Status AlertStatus `json:"status"`
	Notes  string      `json:"notes,omitempty" validate:"max=1000"`
}

type AlertListQuery struct {
	SubjectID string        `form:"subjectId"`
	Status    AlertStatus   `form:"status"`
	Type      AlertType     `form:"type"`
	Severity  AlertSeverity `form:"severity"`
	Page      int           `form:"page"`
	Limit     int           `form:"limit"`
}
