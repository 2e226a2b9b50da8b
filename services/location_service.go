package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"tourguard/interfaces"
	"tourguard/metrics"
	"tourguard/models"
	"tourguard/repositories"
	"tourguard/utils"
)

// ViolationDetector checks a fresh sample against the user's zones.
type ViolationDetector interface {
	CheckViolations(ctx context.Context, userID string, coordinate models.Coordinate) ([]models.Alert, error)
}

type LocationService struct {
	profiles  repositories.ProfileStore
	detector  ViolationDetector
	geocoder  interfaces.Geocoder
	validator *utils.ValidationService
	logger    logrus.FieldLogger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewLocationService wires the tracker. geocoder may be nil.
func NewLocationService(
	profiles repositories.ProfileStore,
	detector ViolationDetector,
	geocoder interfaces.Geocoder,
	logger logrus.FieldLogger,
	m *metrics.Metrics,
) *LocationService {
	return &LocationService{
		profiles:  profiles,
		detector:  detector,
		geocoder:  geocoder,
		validator: utils.NewValidationService(),
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
}

func (ls *LocationService) RecordLocation(ctx context.Context, userID string, req models.UpdateLocationRequest) (models.LocationHistory, error) {
	if err := ls.validator.Validate(req); err != nil {
		return nil, err
	}

	sample := models.LocationSample{
		Coordinate: models.Coordinate{
			Latitude:  *req.Latitude,
			Longitude: *req.Longitude,
		},
		Accuracy: req.Accuracy,
		Address:  req.Address,
		Source:   req.Source,
	}
	if req.Timestamp != nil {
		sample.Timestamp = *req.Timestamp
	}

	return ls.record(ctx, userID, sample)
}

// RecordNMEA ingests a raw GGA or RMC sentence from a GPS receiver.
func (ls *LocationService) RecordNMEA(ctx context.Context, userID string, req models.NMEALocationRequest) (models.LocationHistory, error) {
	if err := ls.validator.Validate(req); err != nil {
		return nil, err
	}

	sample, err := utils.ParseNMEALocation(req.Sentence)
	if err != nil {
		if errors.Is(err, utils.ErrNoFix) {
			return nil, utils.NewValidationError("NMEA sentence carries no position fix")
		}
		return nil, utils.NewValidationError("Invalid NMEA sentence: " + err.Error())
	}
	if !utils.IsValidCoordinate(sample.Latitude, sample.Longitude) {
		return nil, utils.NewValidationError("NMEA sentence position is out of range")
	}

	return ls.record(ctx, userID, sample)
}

func (ls *LocationService) record(ctx context.Context, userID string, sample models.LocationSample) (models.LocationHistory, error) {
	if sample.Timestamp.IsZero() {
		sample.Timestamp = ls.now()
	}
	if sample.Source == "" {
		sample.Source = models.LocationSourceGPS
	}

	log := ls.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"source":  sample.Source,
	})

	if sample.Address == "" && ls.geocoder != nil {
		address, err := ls.geocoder.ReverseGeocode(ctx, sample.Coordinate)
		if err != nil {
			log.WithError(err).Debug("Reverse geocoding failed")
		} else {
			sample.Address = address
		}
	}

	history, err := ls.profiles.AppendLocation(ctx, userID, sample, models.MaxLocationHistory)
	if err != nil {
		return nil, utils.NewStorageError("append location", err)
	}
	ls.metrics.RecordLocationUpdate(string(sample.Source))

	if alerts, err := ls.detector.CheckViolations(ctx, userID, sample.Coordinate); err != nil {
		log.WithError(err).Error("Geofence violation check failed")
	} else if len(alerts) > 0 {
		log.WithField("violations", len(alerts)).Info("Location update raised geofence violations")
	}

	return history, nil
}

func (ls *LocationService) GetLocationHistory(ctx context.Context, actor models.UserIdentity, userID string) (*models.LocationHistoryResponse, error) {
	if userID == "" {
		userID = actor.ID
	}
	if !CanRead(actor, userID) {
		return nil, utils.NewForbiddenError("You can only access your own location history")
	}

	history, err := ls.profiles.GetLocationHistory(ctx, userID)
	if err != nil {
		return nil, utils.NewStorageError("load location history", err)
	}
	if history == nil {
		history = models.LocationHistory{}
	}

	return &models.LocationHistoryResponse{
		UserID:  userID,
		History: history,
		Count:   len(history),
	}, nil
}
