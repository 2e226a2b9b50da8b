package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourguard/models"
	"tourguard/utils"
)

func TestCreatePanicAlert(t *testing.T) {
	ctx := context.Background()
	svc, notifier := newTestAlertService(true)
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	svc.now = fixedClock(now)

	alert, err := svc.CreatePanicAlert(ctx, tourist.ID, models.PanicAlertRequest{Location: coordinateInput(1, 1)})
	require.NoError(t, err)

	assert.False(t, alert.ID.IsZero())
	assert.Equal(t, tourist.ID, alert.SubjectID)
	assert.Equal(t, models.AlertTypePanic, alert.Type)
	assert.Equal(t, models.AlertSeverityCritical, alert.Severity)
	assert.Equal(t, models.AlertStatusActive, alert.Status)
	assert.Equal(t, DefaultPanicMessage, alert.Message)
	assert.Equal(t, models.Coordinate{Latitude: 1, Longitude: 1}, alert.Location.Coordinate)
	assert.Equal(t, models.BoolValue(true), alert.AdditionalData["panic"])
	assert.Equal(t, models.TimeValue(now), alert.AdditionalData["triggeredAt"])
	assert.Empty(t, alert.Responses)
	assert.False(t, alert.AutoGenerated)

	require.Len(t, notifier.created, 1)
	assert.Equal(t, alert.ID, notifier.created[0].ID)
}

func TestCreateAlert(t *testing.T) {
	ctx := context.Background()

	t.Run("severity defaults to medium", func(t *testing.T) {
		svc, _ := newTestAlertService(true)
		alert, err := svc.CreateAlert(ctx, tourist.ID, models.CreateAlertRequest{
			Type:     models.AlertTypeMissing,
			Location: coordinateInput(12.97, 77.59),
			Message:  "Lost contact with group",
		})
		require.NoError(t, err)
		assert.Equal(t, models.AlertSeverityMedium, alert.Severity)
		assert.Equal(t, models.AlertStatusActive, alert.Status)
	})

	t.Run("panic type forces critical", func(t *testing.T) {
		svc, _ := newTestAlertService(true)
		alert, err := svc.CreateAlert(ctx, tourist.ID, models.CreateAlertRequest{
			Type:     models.AlertTypePanic,
			Severity: models.AlertSeverityLow,
			Location: coordinateInput(0, 0),
			Message:  "help",
		})
		require.NoError(t, err)
		assert.Equal(t, models.AlertSeverityCritical, alert.Severity)
	})

	invalid := map[string]models.CreateAlertRequest{
		"unknown type": {
			Type: "earthquake", Location: coordinateInput(0, 0), Message: "x",
		},
		"unknown severity": {
			Type: models.AlertTypeMissing, Severity: "extreme", Location: coordinateInput(0, 0), Message: "x",
		},
		"latitude out of range": {
			Type: models.AlertTypeMissing, Location: coordinateInput(91, 0), Message: "x",
		},
		"missing location": {
			Type: models.AlertTypeMissing, Message: "x",
		},
		"empty message": {
			Type: models.AlertTypeMissing, Location: coordinateInput(0, 0),
		},
	}
	for name, req := range invalid {
		t.Run(name, func(t *testing.T) {
			svc, notifier := newTestAlertService(true)
			_, err := svc.CreateAlert(ctx, tourist.ID, req)
			require.Error(t, err)
			assert.True(t, utils.HasErrorCode(err, models.ErrCodeValidation), err)
			assert.Empty(t, notifier.created)
		})
	}
}

func TestTransitionStatusTouristResolvesOwnAlert(t *testing.T) {
	ctx := context.Background()
	svc, notifier := newTestAlertService(true)

	alert, err := svc.CreatePanicAlert(ctx, tourist.ID, models.PanicAlertRequest{Location: coordinateInput(1, 1)})
	require.NoError(t, err)

	updated, err := svc.TransitionStatus(ctx, tourist, alert.ID.Hex(), models.UpdateAlertStatusRequest{
		Status: models.AlertStatusResolved,
		Notes:  "handled",
	})
	require.NoError(t, err)

	assert.Equal(t, models.AlertStatusResolved, updated.Status)
	require.NotNil(t, updated.ResolvedAt)
	assert.Empty(t, updated.AssignedTo)
	require.Len(t, updated.Responses, 1)
	assert.Equal(t, tourist.ID, updated.Responses[0].ResponderID)
	assert.Equal(t, "Status changed to resolved", updated.Responses[0].Action)
	assert.Equal(t, "handled", updated.Responses[0].Notes)

	require.Len(t, notifier.changed, 1)
	assert.Equal(t, models.AlertStatusResolved, notifier.changed[0].Status)
}

func TestTransitionStatusFirstResponderClaims(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAlertService(true)

	alert, err := svc.CreatePanicAlert(ctx, tourist.ID, models.PanicAlertRequest{Location: coordinateInput(1, 1)})
	require.NoError(t, err)

	acked, err := svc.TransitionStatus(ctx, police, alert.ID.Hex(), models.UpdateAlertStatusRequest{Status: models.AlertStatusAcknowledged})
	require.NoError(t, err)
	assert.Equal(t, police.ID, acked.AssignedTo)
	assert.Nil(t, acked.ResolvedAt)

	resolved, err := svc.TransitionStatus(ctx, police2, alert.ID.Hex(), models.UpdateAlertStatusRequest{Status: models.AlertStatusResolved})
	require.NoError(t, err)
	assert.Equal(t, police.ID, resolved.AssignedTo)
	require.Len(t, resolved.Responses, 2)
	assert.Equal(t, police.ID, resolved.Responses[0].ResponderID)
	assert.Equal(t, police2.ID, resolved.Responses[1].ResponderID)
}

func TestTransitionStatusRejections(t *testing.T) {
	ctx := context.Background()
	svc, notifier := newTestAlertService(true)

	alert, err := svc.CreatePanicAlert(ctx, tourist.ID, models.PanicAlertRequest{Location: coordinateInput(1, 1)})
	require.NoError(t, err)
	id := alert.ID.Hex()

	_, err = svc.TransitionStatus(ctx, otherTourist, id, models.UpdateAlertStatusRequest{Status: models.AlertStatusResolved})
	assert.True(t, utils.HasErrorCode(err, models.ErrCodeAuthorization), err)

	_, err = svc.TransitionStatus(ctx, police, id, models.UpdateAlertStatusRequest{Status: "closed"})
	assert.True(t, utils.HasErrorCode(err, models.ErrCodeValidation), err)

	_, err = svc.TransitionStatus(ctx, police, "6650f0c2a1b2c3d4e5f60718", models.UpdateAlertStatusRequest{Status: models.AlertStatusResolved})
	assert.True(t, utils.HasErrorCode(err, models.ErrCodeNotFound), err)

	_, err = svc.TransitionStatus(ctx, police, id, models.UpdateAlertStatusRequest{Status: models.AlertStatusActive})
	assert.True(t, utils.HasErrorCode(err, models.ErrCodeTransition), "active to active is not a transition")

	_, err = svc.TransitionStatus(ctx, police, id, models.UpdateAlertStatusRequest{Status: models.AlertStatusFalseAlarm})
	require.NoError(t, err)

	_, err = svc.TransitionStatus(ctx, police, id, models.UpdateAlertStatusRequest{Status: models.AlertStatusResolved})
	serviceErr, ok := utils.GetServiceError(err)
	require.True(t, ok, err)
	assert.Equal(t, models.ErrCodeTransition, serviceErr.Code)
	assert.Equal(t, 409, serviceErr.StatusCode)

	stored, err := svc.GetAlert(ctx, admin, id)
	require.NoError(t, err)
	assert.Equal(t, models.AlertStatusFalseAlarm, stored.Status)
	assert.Len(t, stored.Responses, 1)
	assert.Len(t, notifier.changed, 1)
}

func TestTransitionStatusLooseMode(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAlertService(false)

	alert, err := svc.CreatePanicAlert(ctx, tourist.ID, models.PanicAlertRequest{Location: coordinateInput(1, 1)})
	require.NoError(t, err)
	id := alert.ID.Hex()

	_, err = svc.TransitionStatus(ctx, police, id, models.UpdateAlertStatusRequest{Status: models.AlertStatusResolved})
	require.NoError(t, err)

	reopened, err := svc.TransitionStatus(ctx, police, id, models.UpdateAlertStatusRequest{Status: models.AlertStatusAcknowledged})
	require.NoError(t, err)
	assert.Equal(t, models.AlertStatusAcknowledged, reopened.Status)
	assert.Len(t, reopened.Responses, 2)

	_, err = svc.TransitionStatus(ctx, police, id, models.UpdateAlertStatusRequest{Status: "reopened"})
	assert.True(t, utils.HasErrorCode(err, models.ErrCodeValidation), err)
}

func TestGetAlertGuard(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAlertService(true)

	alert, err := svc.CreatePanicAlert(ctx, tourist.ID, models.PanicAlertRequest{Location: coordinateInput(1, 1)})
	require.NoError(t, err)

	_, err = svc.GetAlert(ctx, tourist, alert.ID.Hex())
	assert.NoError(t, err)
	_, err = svc.GetAlert(ctx, police, alert.ID.Hex())
	assert.NoError(t, err)
	_, err = svc.GetAlert(ctx, otherTourist, alert.ID.Hex())
	assert.True(t, utils.HasErrorCode(err, models.ErrCodeAuthorization), err)
}

func TestListAlerts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAlertService(true)
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		svc.now = fixedClock(base.Add(time.Duration(i) * time.Minute))
		_, err := svc.CreatePanicAlert(ctx, tourist.ID, models.PanicAlertRequest{Location: coordinateInput(1, 1)})
		require.NoError(t, err)
	}
	svc.now = fixedClock(base.Add(10 * time.Minute))
	_, err := svc.CreateAlert(ctx, otherTourist.ID, models.CreateAlertRequest{
		Type: models.AlertTypeHealthEmergency, Severity: models.AlertSeverityHigh,
		Location: coordinateInput(2, 2), Message: "fainted",
	})
	require.NoError(t, err)

	t.Run("tourist is scoped to own alerts", func(t *testing.T) {
		page, err := svc.ListAlerts(ctx, tourist, models.AlertListQuery{SubjectID: otherTourist.ID, Page: 1, Limit: 20})
		require.NoError(t, err)
		assert.EqualValues(t, 3, page.Total)
		for _, alert := range page.Alerts {
			assert.Equal(t, tourist.ID, alert.SubjectID)
		}
	})

	t.Run("authority sees everything newest first", func(t *testing.T) {
		page, err := svc.ListAlerts(ctx, police, models.AlertListQuery{Page: 1, Limit: 20})
		require.NoError(t, err)
		assert.EqualValues(t, 4, page.Total)
		require.Len(t, page.Alerts, 4)
		assert.Equal(t, otherTourist.ID, page.Alerts[0].SubjectID)
	})

	t.Run("filters combine", func(t *testing.T) {
		page, err := svc.ListAlerts(ctx, admin, models.AlertListQuery{
			Type: models.AlertTypeHealthEmergency, Severity: models.AlertSeverityHigh, Page: 1, Limit: 20,
		})
		require.NoError(t, err)
		assert.EqualValues(t, 1, page.Total)

		page, err = svc.ListAlerts(ctx, admin, models.AlertListQuery{
			Type: models.AlertTypeHealthEmergency, Severity: models.AlertSeverityLow, Page: 1, Limit: 20,
		})
		require.NoError(t, err)
		assert.EqualValues(t, 0, page.Total)
		assert.Empty(t, page.Alerts)
	})

	t.Run("pagination", func(t *testing.T) {
		page, err := svc.ListAlerts(ctx, police, models.AlertListQuery{Page: 2, Limit: 3})
		require.NoError(t, err)
		assert.EqualValues(t, 4, page.Total)
		assert.Equal(t, 2, page.Pages)
		assert.Len(t, page.Alerts, 1)

		page, err = svc.ListAlerts(ctx, police, models.AlertListQuery{Page: 5, Limit: 3})
		require.NoError(t, err)
		assert.Empty(t, page.Alerts)
	})

	for name, query := range map[string]models.AlertListQuery{
		"page zero":      {Page: 0, Limit: 10},
		"limit zero":     {Page: 1, Limit: 0},
		"limit too big":  {Page: 1, Limit: 101},
		"unknown status": {Page: 1, Limit: 10, Status: "open"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ListAlerts(ctx, police, query)
			assert.True(t, utils.HasErrorCode(err, models.ErrCodeValidation), err)
		})
	}
}
