package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"tourguard/interfaces"
	"tourguard/models"
	"tourguard/repositories"
	"tourguard/utils"
)

const FactorPredictedRisk = "predicted_risk"

type SafetyScoreService struct {
	profiles  repositories.ProfileStore
	predictor interfaces.RiskPredictor
	logger    logrus.FieldLogger
	now       func() time.Time
}

// NewSafetyScoreService builds the score reader. predictor may be nil, in
// which case stored or default scores are returned unchanged.
func NewSafetyScoreService(profiles repositories.ProfileStore, predictor interfaces.RiskPredictor, logger logrus.FieldLogger) *SafetyScoreService {
	return &SafetyScoreService{
		profiles:  profiles,
		predictor: predictor,
		logger:    logger,
		now:       time.Now,
	}
}

func (ss *SafetyScoreService) GetSafetyScore(ctx context.Context, actor models.UserIdentity, userID string) (*models.SafetyScore, error) {
	if userID == "" {
		userID = actor.ID
	}
	if !CanRead(actor, userID) {
		return nil, utils.NewForbiddenError("You can only access your own safety score")
	}

	stored, err := ss.profiles.GetSafetyScore(ctx, userID)
	if err != nil {
		return nil, utils.NewStorageError("load safety score", err)
	}
	score := models.NewDefaultSafetyScore(ss.now())
	if stored != nil {
		score = *stored
	}

	if ss.predictor == nil {
		return &score, nil
	}

	history, err := ss.profiles.GetLocationHistory(ctx, userID)
	if err != nil {
		return nil, utils.NewStorageError("load location history", err)
	}
	latest, ok := history.Latest()
	if !ok {
		return &score, nil
	}

	now := ss.now()
	risk, err := ss.predictor.PredictRisk(ctx, latest.Coordinate, now.Year())
	if err != nil {
		ss.logger.WithError(err).WithField("user_id", userID).Warn("Risk prediction failed, returning stored safety score")
		return &score, nil
	}

	derived := models.SafetyScore{
		Value:     utils.ClampFloat64(100-risk, 0, 100),
		Factors:   map[string]float64{FactorPredictedRisk: risk},
		UpdatedAt: now,
	}
	for name, value := range score.Factors {
		if name != FactorPredictedRisk {
			derived.Factors[name] = value
		}
	}

	if err := ss.profiles.UpdateSafetyScore(ctx, userID, derived); err != nil {
		return nil, utils.NewStorageError("update safety score", err)
	}

	ss.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"risk":    risk,
		"score":   derived.Value,
	}).Debug("Safety score derived")

	return &derived, nil
}
