package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tourguard/models"
	"tourguard/repositories"
	"tourguard/utils"
)

type mockRiskPredictor struct {
	mock.Mock
}

func (m *mockRiskPredictor) PredictRisk(ctx context.Context, coordinate models.Coordinate, year int) (float64, error) {
	args := m.Called(ctx, coordinate, year)
	return args.Get(0).(float64), args.Error(1)
}

func TestGetSafetyScoreDefault(t *testing.T) {
	logger, _ := newTestLogger()
	svc := NewSafetyScoreService(repositories.NewMemoryProfileStore(), nil, logger)

	score, err := svc.GetSafetyScore(context.Background(), tourist, "")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSafetyScore, score.Value)
	assert.Empty(t, score.Factors)
}

func TestGetSafetyScoreFromPredictor(t *testing.T) {
	ctx := context.Background()
	logger, _ := newTestLogger()
	profiles := repositories.NewMemoryProfileStore()
	now := time.Date(2025, 2, 10, 15, 0, 0, 0, time.UTC)

	last := models.LocationSample{Coordinate: models.Coordinate{Latitude: 28.61, Longitude: 77.2}, Timestamp: now, Source: models.LocationSourceGPS}
	_, err := profiles.AppendLocation(ctx, tourist.ID, last, models.MaxLocationHistory)
	require.NoError(t, err)

	predictor := &mockRiskPredictor{}
	predictor.On("PredictRisk", mock.Anything, last.Coordinate, 2025).Return(35.5, nil).Once()

	svc := NewSafetyScoreService(profiles, predictor, logger)
	svc.now = fixedClock(now)

	score, err := svc.GetSafetyScore(ctx, police, tourist.ID)
	require.NoError(t, err)
	assert.InDelta(t, 64.5, score.Value, 1e-9)
	assert.Equal(t, 35.5, score.Factors[FactorPredictedRisk])
	assert.Equal(t, now, score.UpdatedAt)

	stored, err := profiles.GetSafetyScore(ctx, tourist.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.InDelta(t, 64.5, stored.Value, 1e-9)
	predictor.AssertExpectations(t)
}

func TestGetSafetyScoreClampsAndFallsBack(t *testing.T) {
	ctx := context.Background()
	logger, _ := newTestLogger()
	profiles := repositories.NewMemoryProfileStore()
	_, err := profiles.AppendLocation(ctx, tourist.ID, models.LocationSample{Coordinate: models.Coordinate{Latitude: 1, Longitude: 1}}, models.MaxLocationHistory)
	require.NoError(t, err)

	predictor := &mockRiskPredictor{}
	predictor.On("PredictRisk", mock.Anything, mock.Anything, mock.Anything).Return(140.0, nil).Once()
	predictor.On("PredictRisk", mock.Anything, mock.Anything, mock.Anything).Return(0.0, errors.New("model offline")).Once()

	svc := NewSafetyScoreService(profiles, predictor, logger)

	score, err := svc.GetSafetyScore(ctx, tourist, tourist.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, score.Value)

	score, err = svc.GetSafetyScore(ctx, tourist, tourist.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, score.Value, "stored score returned when prediction fails")
	assert.Equal(t, 140.0, score.Factors[FactorPredictedRisk])
}

func TestGetSafetyScoreGuard(t *testing.T) {
	logger, _ := newTestLogger()
	svc := NewSafetyScoreService(repositories.NewMemoryProfileStore(), nil, logger)

	_, err := svc.GetSafetyScore(context.Background(), otherTourist, tourist.ID)
	assert.True(t, utils.HasErrorCode(err, models.ErrCodeAuthorization), err)
}
