package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tourguard/metrics"
	"tourguard/models"
	"tourguard/repositories"
	"tourguard/utils"
)

// AlertCreator is the part of AlertService the detector needs.
type AlertCreator interface {
	CreateSystemAlert(ctx context.Context, alert *models.Alert) (*models.Alert, error)
}

type GeofenceService struct {
	profiles  repositories.ProfileStore
	alerts    AlertCreator
	visits    VisitTracker
	policy    ViolationPolicy
	validator *utils.ValidationService
	logger    logrus.FieldLogger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewGeofenceService(
	profiles repositories.ProfileStore,
	alerts AlertCreator,
	visits VisitTracker,
	policy ViolationPolicy,
	logger logrus.FieldLogger,
	m *metrics.Metrics,
) *GeofenceService {
	if !policy.Valid() {
		policy = ViolationPolicyPerVisit
	}
	return &GeofenceService{
		profiles:  profiles,
		alerts:    alerts,
		visits:    visits,
		policy:    policy,
		validator: utils.NewValidationService(),
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
}

func (gs *GeofenceService) CreateGeofence(ctx context.Context, userID string, req models.CreateGeofenceRequest) (*models.Geofence, error) {
	if err := gs.validator.Validate(req); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, utils.NewInternalError("Failed to generate geofence id", err)
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	geofence := models.Geofence{
		ID:   id.String(),
		Name: req.Name,
		Center: models.Coordinate{
			Latitude:  *req.Latitude,
			Longitude: *req.Longitude,
		},
		Radius:    req.Radius,
		Type:      req.Type,
		Active:    active,
		CreatedBy: userID,
		CreatedAt: gs.now(),
	}

	if err := gs.profiles.AppendGeofence(ctx, userID, geofence); err != nil {
		return nil, utils.NewStorageError("create geofence", err)
	}

	gs.logger.WithFields(logrus.Fields{
		"user_id":     userID,
		"geofence_id": geofence.ID,
		"type":        geofence.Type,
		"radius":      geofence.Radius,
	}).Info("Geofence created")

	return &geofence, nil
}

func (gs *GeofenceService) ListGeofences(ctx context.Context, userID string) ([]models.Geofence, error) {
	geofences, err := gs.profiles.ListGeofences(ctx, userID)
	if err != nil {
		return nil, utils.NewStorageError("list geofences", err)
	}
	if geofences == nil {
		geofences = []models.Geofence{}
	}
	return geofences, nil
}

// CheckViolations raises a geofence_violation alert for every active danger
// zone containing coordinate. Warning and safe zones never alert.
func (gs *GeofenceService) CheckViolations(ctx context.Context, userID string, coordinate models.Coordinate) ([]models.Alert, error) {
	geofences, err := gs.profiles.ListGeofences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load geofences: %w", err)
	}

	var (
		raised []models.Alert
		errs   []error
	)
	for _, geofence := range geofences {
		if !geofence.Active {
			continue
		}

		inside, distance := utils.IsWithinGeofence(coordinate, geofence)
		log := gs.logger.WithFields(logrus.Fields{
			"user_id":     userID,
			"geofence_id": geofence.ID,
			"type":        geofence.Type,
			"distance":    utils.FormatDistance(distance),
		})

		if geofence.Type != models.GeofenceTypeDanger {
			if inside {
				log.Debug("Inside non-danger geofence")
			}
			continue
		}

		if !inside {
			if gs.policy == ViolationPolicyPerVisit {
				if err := gs.visits.Leave(ctx, userID, geofence.ID); err != nil {
					log.WithError(err).Warn("Failed to clear geofence visit")
				}
			}
			continue
		}

		if gs.policy == ViolationPolicyPerVisit {
			first, err := gs.visits.Enter(ctx, userID, geofence.ID)
			if err != nil {
				log.WithError(err).Warn("Visit tracker unavailable, raising violation anyway")
			} else if !first {
				gs.metrics.RecordSuppressedViolation()
				log.Debug("Still inside danger zone, violation already raised")
				continue
			}
		}

		alert, err := gs.alerts.CreateSystemAlert(ctx, violationAlert(userID, coordinate, geofence, distance))
		if err != nil {
			// The next sample inside the zone must retry the alert.
			if gs.policy == ViolationPolicyPerVisit {
				if leaveErr := gs.visits.Leave(ctx, userID, geofence.ID); leaveErr != nil {
					log.WithError(leaveErr).Warn("Failed to clear geofence visit")
				}
			}
			errs = append(errs, fmt.Errorf("raise violation for geofence %s: %w", geofence.ID, err))
			continue
		}

		gs.metrics.RecordViolation()
		log.WithField("alert_id", alert.ID.Hex()).Warn("Danger zone violation")
		raised = append(raised, *alert)
	}

	return raised, errors.Join(errs...)
}

func violationAlert(userID string, coordinate models.Coordinate, geofence models.Geofence, distance float64) *models.Alert {
	return &models.Alert{
		SubjectID: userID,
		Type:      models.AlertTypeGeofenceViolation,
		Severity:  models.AlertSeverityHigh,
		Location:  models.AlertLocation{Coordinate: coordinate},
		Message:   fmt.Sprintf("Tourist entered danger zone: %s", geofence.Name),
		AdditionalData: map[string]models.Value{
			"geofenceId":     models.StringValue(geofence.ID),
			"geofenceName":   models.StringValue(geofence.Name),
			"distanceMeters": models.NumberValue(distance),
			"radiusMeters":   models.NumberValue(float64(geofence.Radius)),
		},
	}
}
