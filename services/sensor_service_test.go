package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tourguard/models"
	"tourguard/utils"
)

type mockSensorClassifier struct {
	mock.Mock
}

func (m *mockSensorClassifier) ClassifyActivity(ctx context.Context, window [][]float64) (string, error) {
	args := m.Called(ctx, window)
	return args.String(0), args.Error(1)
}

func (m *mockSensorClassifier) DetectKeyword(ctx context.Context, audio []float64) (bool, float64, error) {
	args := m.Called(ctx, audio)
	return args.Bool(0), args.Get(1).(float64), args.Error(2)
}

func motionWindow() [][]float64 {
	window := make([][]float64, models.ActivityWindowLength)
	for i := range window {
		window[i] = make([]float64, models.ActivityChannels)
	}
	window[len(window)-1] = []float64{20, 20, 20, 20, 20, 20}
	return window
}

func newTestSensorService(classifier *mockSensorClassifier) (*SensorService, *recordingNotifier) {
	logger, _ := newTestLogger()
	alerts, notifier := newTestAlertService(true)
	if classifier == nil {
		return NewSensorService(nil, alerts, []string{"fall"}, 0.8, logger), notifier
	}
	return NewSensorService(classifier, alerts, []string{" Fall "}, 0.8, logger), notifier
}

func TestCheckActivityRaisesHealthEmergency(t *testing.T) {
	classifier := &mockSensorClassifier{}
	svc, _ := newTestSensorService(classifier)
	window := motionWindow()
	classifier.On("ClassifyActivity", mock.Anything, window).Return("fall", nil).Once()

	result, err := svc.CheckActivity(context.Background(), tourist.ID, models.ActivityCheckRequest{
		Location: coordinateInput(12.97, 77.59),
		Samples:  window,
	})
	require.NoError(t, err)
	assert.Equal(t, "fall", result.Activity)
	require.NotNil(t, result.Alert)
	assert.Equal(t, models.AlertTypeHealthEmergency, result.Alert.Type)
	assert.Equal(t, models.AlertSeverityHigh, result.Alert.Severity)
	assert.Equal(t, tourist.ID, result.Alert.SubjectID)
	assert.True(t, result.Alert.AutoGenerated)
	assert.Equal(t, models.StringValue("fall"), result.Alert.AdditionalData["activity"])
	classifier.AssertExpectations(t)
}

func TestCheckActivityNormalActivity(t *testing.T) {
	classifier := &mockSensorClassifier{}
	svc, notifier := newTestSensorService(classifier)
	classifier.On("ClassifyActivity", mock.Anything, mock.Anything).Return("walking", nil).Once()

	result, err := svc.CheckActivity(context.Background(), tourist.ID, models.ActivityCheckRequest{
		Location: coordinateInput(12.97, 77.59),
		Samples:  motionWindow(),
	})
	require.NoError(t, err)
	assert.Equal(t, "walking", result.Activity)
	assert.Nil(t, result.Alert)
	assert.Empty(t, notifier.created)
}

func TestCheckActivityRejectsMalformedWindow(t *testing.T) {
	classifier := &mockSensorClassifier{}
	svc, _ := newTestSensorService(classifier)

	window := motionWindow()
	window[3] = []float64{1, 2, 3}
	_, err := svc.CheckActivity(context.Background(), tourist.ID, models.ActivityCheckRequest{
		Location: coordinateInput(12.97, 77.59),
		Samples:  window,
	})
	assert.True(t, utils.HasErrorCode(err, models.ErrCodeValidation))

	_, err = svc.CheckActivity(context.Background(), tourist.ID, models.ActivityCheckRequest{
		Location: coordinateInput(12.97, 77.59),
		Samples:  window[:10],
	})
	assert.True(t, utils.HasErrorCode(err, models.ErrCodeValidation))
	classifier.AssertNotCalled(t, "ClassifyActivity", mock.Anything, mock.Anything)
}

func TestCheckActivityClassifierFailure(t *testing.T) {
	classifier := &mockSensorClassifier{}
	svc, _ := newTestSensorService(classifier)
	classifier.On("ClassifyActivity", mock.Anything, mock.Anything).Return("", errors.New("model offline")).Once()

	_, err := svc.CheckActivity(context.Background(), tourist.ID, models.ActivityCheckRequest{
		Location: coordinateInput(12.97, 77.59),
		Samples:  motionWindow(),
	})
	serviceErr, ok := utils.GetServiceError(err)
	require.True(t, ok)
	assert.Equal(t, models.ErrCodeExternal, serviceErr.Code)
	assert.Equal(t, 502, serviceErr.StatusCode)
}

func TestCheckAudioConfidenceThreshold(t *testing.T) {
	classifier := &mockSensorClassifier{}
	svc, notifier := newTestSensorService(classifier)
	clip := []float64{0.01, -0.4, 0.3}
	classifier.On("DetectKeyword", mock.Anything, clip).Return(true, 0.55, nil).Once()
	classifier.On("DetectKeyword", mock.Anything, clip).Return(true, 0.93, nil).Once()

	req := models.AudioCheckRequest{Location: coordinateInput(12.97, 77.59), Samples: clip}

	result, err := svc.CheckAudio(context.Background(), tourist.ID, req)
	require.NoError(t, err)
	assert.True(t, result.KeywordDetected)
	assert.Nil(t, result.Alert, "low confidence detections do not alert")

	result, err = svc.CheckAudio(context.Background(), tourist.ID, req)
	require.NoError(t, err)
	require.NotNil(t, result.Alert)
	assert.Equal(t, models.AlertTypeSuspiciousActivity, result.Alert.Type)
	assert.Equal(t, models.NumberValue(0.93), result.Alert.AdditionalData["confidence"])
	assert.Len(t, notifier.created, 1)
	classifier.AssertExpectations(t)
}

func TestSensorChecksWithoutClassifier(t *testing.T) {
	svc, _ := newTestSensorService(nil)

	_, err := svc.CheckActivity(context.Background(), tourist.ID, models.ActivityCheckRequest{})
	serviceErr, ok := utils.GetServiceError(err)
	require.True(t, ok)
	assert.Equal(t, 503, serviceErr.StatusCode)

	_, err = svc.CheckAudio(context.Background(), tourist.ID, models.AudioCheckRequest{})
	assert.True(t, utils.HasErrorCode(err, models.ErrCodeExternal))
}
