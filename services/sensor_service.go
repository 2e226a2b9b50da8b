package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"tourguard/interfaces"
	"tourguard/models"
	"tourguard/utils"
)

// SensorService forwards phone sensor data to the classifiers and raises an
// alert when a result is alarming. A nil classifier disables both checks.
type SensorService struct {
	classifier      interfaces.SensorClassifier
	alerts          AlertCreator
	validator       *utils.ValidationService
	alarmActivities map[string]bool
	minConfidence   float64
	logger          logrus.FieldLogger
}

func NewSensorService(
	classifier interfaces.SensorClassifier,
	alerts AlertCreator,
	alarmActivities []string,
	minConfidence float64,
	logger logrus.FieldLogger,
) *SensorService {
	alarming := make(map[string]bool, len(alarmActivities))
	for _, activity := range alarmActivities {
		alarming[strings.ToLower(strings.TrimSpace(activity))] = true
	}

	return &SensorService{
		classifier:      classifier,
		alerts:          alerts,
		validator:       utils.NewValidationService(),
		alarmActivities: alarming,
		minConfidence:   minConfidence,
		logger:          logger,
	}
}

// CheckActivity classifies a motion window and raises a health emergency for
// alarming activities such as a fall.
func (ss *SensorService) CheckActivity(ctx context.Context, subjectID string, req models.ActivityCheckRequest) (*models.ActivityCheckResult, error) {
	if ss.classifier == nil {
		return nil, utils.NewServiceUnavailableError("Sensor classification is not configured")
	}
	if err := ss.validator.Validate(req); err != nil {
		return nil, err
	}

	activity, err := ss.classifier.ClassifyActivity(ctx, req.Samples)
	if err != nil {
		ss.logger.WithError(err).WithField("subject_id", subjectID).Warn("Activity classification failed")
		return nil, utils.NewExternalServiceError("Activity classification failed", err)
	}

	result := &models.ActivityCheckResult{Activity: activity}
	if !ss.alarmActivities[strings.ToLower(activity)] {
		return result, nil
	}

	alert, err := ss.alerts.CreateSystemAlert(ctx, &models.Alert{
		SubjectID: subjectID,
		Type:      models.AlertTypeHealthEmergency,
		Severity:  models.AlertSeverityHigh,
		Location:  req.Location.AlertLocation(),
		Message:   fmt.Sprintf("Possible %s detected from motion sensors", activity),
		AdditionalData: map[string]models.Value{
			"activity": models.StringValue(activity),
			"detector": models.StringValue("activity_classifier"),
		},
	})
	if err != nil {
		return nil, err
	}

	ss.logger.WithFields(logrus.Fields{
		"subject_id": subjectID,
		"activity":   activity,
		"alert_id":   alert.ID.Hex(),
	}).Warn("Alarming activity detected")

	result.Alert = alert
	return result, nil
}

// CheckAudio runs keyword spotting and raises a suspicious activity alert when
// the distress keyword is heard with enough confidence.
func (ss *SensorService) CheckAudio(ctx context.Context, subjectID string, req models.AudioCheckRequest) (*models.AudioCheckResult, error) {
	if ss.classifier == nil {
		return nil, utils.NewServiceUnavailableError("Sensor classification is not configured")
	}
	if err := ss.validator.Validate(req); err != nil {
		return nil, err
	}

	detected, confidence, err := ss.classifier.DetectKeyword(ctx, req.Samples)
	if err != nil {
		ss.logger.WithError(err).WithField("subject_id", subjectID).Warn("Keyword detection failed")
		return nil, utils.NewExternalServiceError("Keyword detection failed", err)
	}

	result := &models.AudioCheckResult{KeywordDetected: detected, Confidence: confidence}
	if !detected || confidence < ss.minConfidence {
		return result, nil
	}

	alert, err := ss.alerts.CreateSystemAlert(ctx, &models.Alert{
		SubjectID: subjectID,
		Type:      models.AlertTypeSuspiciousActivity,
		Severity:  models.AlertSeverityHigh,
		Location:  req.Location.AlertLocation(),
		Message:   "Distress keyword detected in ambient audio",
		AdditionalData: map[string]models.Value{
			"confidence": models.NumberValue(confidence),
			"detector":   models.StringValue("keyword_spotter"),
		},
	})
	if err != nil {
		return nil, err
	}

	ss.logger.WithFields(logrus.Fields{
		"subject_id": subjectID,
		"confidence": confidence,
		"alert_id":   alert.ID.Hex(),
	}).Warn("Distress keyword detected")

	result.Alert = alert
	return result, nil
}
