package utils

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourguard/models"
)

func TestNewInvalidTransitionError(t *testing.T) {
	err := NewInvalidTransitionError(models.AlertStatusAcknowledged, models.AlertStatusActive)
	serviceErr, ok := GetServiceError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, serviceErr.StatusCode)
	assert.Equal(t, "Cannot change alert status from acknowledged to active", serviceErr.Message)

	err = NewInvalidTransitionError(models.AlertStatusFalseAlarm, models.AlertStatusResolved)
	serviceErr, ok = GetServiceError(err)
	require.True(t, ok)
	assert.Equal(t, models.ErrCodeTransition, serviceErr.Code)
	assert.Equal(t, "Alert is closed as false_alarm and cannot change to resolved", serviceErr.Message)
}

func TestNewRateLimitError(t *testing.T) {
	serviceErr, ok := GetServiceError(NewRateLimitError("slow down"))
	require.True(t, ok)
	assert.Equal(t, models.ErrCodeRateLimit, serviceErr.Code)
	assert.Equal(t, http.StatusTooManyRequests, serviceErr.StatusCode)
}
