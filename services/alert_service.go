package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"tourguard/metrics"
	"tourguard/models"
	"tourguard/repositories"
	"tourguard/utils"
)

const (
	DefaultPanicMessage = "Emergency! Tourist needs immediate assistance."
	MaxAlertPageLimit   = 100
)

type AlertService struct {
	store             repositories.AlertStore
	notifier          AlertNotifier
	validator         *utils.ValidationService
	logger            logrus.FieldLogger
	metrics           *metrics.Metrics
	strictTransitions bool
	now               func() time.Time
}

// NewAlertService builds the alert state machine. With strictTransitions
// off, any enumerated status is accepted from any current status.
func NewAlertService(
	store repositories.AlertStore,
	notifier AlertNotifier,
	logger logrus.FieldLogger,
	m *metrics.Metrics,
	strictTransitions bool,
) *AlertService {
	return &AlertService{
		store:             store,
		notifier:          notifier,
		validator:         utils.NewValidationService(),
		logger:            logger,
		metrics:           m,
		strictTransitions: strictTransitions,
		now:               time.Now,
	}
}

// =================== CREATION ===================

func (as *AlertService) CreateAlert(ctx context.Context, subjectID string, req models.CreateAlertRequest) (*models.Alert, error) {
	if err := as.validator.Validate(req); err != nil {
		return nil, err
	}

	severity := req.Severity
	if severity == "" {
		severity = models.AlertSeverityMedium
	}
	if req.Type == models.AlertTypePanic {
		severity = models.AlertSeverityCritical
	}

	alert := &models.Alert{
		SubjectID:      subjectID,
		Type:           req.Type,
		Severity:       severity,
		Location:       req.Location.AlertLocation(),
		Message:        req.Message,
		AdditionalData: req.AdditionalData,
	}

	return as.persist(ctx, alert)
}

func (as *AlertService) CreatePanicAlert(ctx context.Context, subjectID string, req models.PanicAlertRequest) (*models.Alert, error) {
	if err := as.validator.Validate(req); err != nil {
		return nil, err
	}

	message := req.Message
	if message == "" {
		message = DefaultPanicMessage
	}

	alert := &models.Alert{
		SubjectID: subjectID,
		Type:      models.AlertTypePanic,
		Severity:  models.AlertSeverityCritical,
		Location:  req.Location.AlertLocation(),
		Message:   message,
		AdditionalData: map[string]models.Value{
			"panic":       models.BoolValue(true),
			"triggeredAt": models.TimeValue(as.now()),
		},
	}

	return as.persist(ctx, alert)
}

// CreateSystemAlert stores an alert raised by the platform itself.
func (as *AlertService) CreateSystemAlert(ctx context.Context, alert *models.Alert) (*models.Alert, error) {
	if !alert.Type.Valid() || !alert.Severity.Valid() {
		return nil, utils.NewInternalError("system alert has an invalid type or severity", nil)
	}
	alert.AutoGenerated = true
	return as.persist(ctx, alert)
}

func (as *AlertService) persist(ctx context.Context, alert *models.Alert) (*models.Alert, error) {
	now := as.now()
	alert.Status = models.AlertStatusActive
	alert.AssignedTo = ""
	alert.Responses = []models.AlertResponse{}
	alert.ResolvedAt = nil
	alert.CreatedAt = now
	alert.UpdatedAt = now

	if err := as.store.Create(ctx, alert); err != nil {
		return nil, utils.NewStorageError("create alert", err)
	}

	as.metrics.RecordAlertCreated(string(alert.Type), string(alert.Severity), alert.AutoGenerated)
	as.logger.WithFields(logrus.Fields{
		"alert_id":   alert.ID.Hex(),
		"subject_id": alert.SubjectID,
		"type":       alert.Type,
		"severity":   alert.Severity,
		"auto":       alert.AutoGenerated,
	}).Info("Alert created")

	as.notifier.AlertCreated(alert)
	return alert, nil
}

// =================== READS ===================

func (as *AlertService) GetAlert(ctx context.Context, actor models.UserIdentity, alertID string) (*models.Alert, error) {
	alert, err := as.load(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if !CanRead(actor, alert.SubjectID) {
		return nil, utils.NewAlertAccessDeniedError()
	}
	return alert, nil
}

func (as *AlertService) ListAlerts(ctx context.Context, actor models.UserIdentity, query models.AlertListQuery) (*models.AlertPage, error) {
	if query.Page < 1 {
		return nil, utils.NewValidationError("page must be at least 1")
	}
	if query.Limit < 1 || query.Limit > MaxAlertPageLimit {
		return nil, utils.NewValidationError(fmt.Sprintf("limit must be between 1 and %d", MaxAlertPageLimit))
	}
	if query.Status != "" && !query.Status.Valid() {
		return nil, utils.NewValidationError(fmt.Sprintf("Invalid status filter: %s", query.Status))
	}
	if query.Type != "" && !query.Type.Valid() {
		return nil, utils.NewValidationError(fmt.Sprintf("Invalid type filter: %s", query.Type))
	}
	if query.Severity != "" && !query.Severity.Valid() {
		return nil, utils.NewValidationError(fmt.Sprintf("Invalid severity filter: %s", query.Severity))
	}

	filter := models.AlertFilter{
		SubjectID: query.SubjectID,
		Status:    query.Status,
		Type:      query.Type,
		Severity:  query.Severity,
	}
	if actor.Role == models.RoleTourist {
		filter.SubjectID = actor.ID
	}

	alerts, total, err := as.store.List(ctx, filter, utils.CalculateOffset(query.Page, query.Limit), query.Limit)
	if err != nil {
		return nil, utils.NewStorageError("list alerts", err)
	}

	return &models.AlertPage{
		Alerts: alerts,
		Total:  total,
		Page:   query.Page,
		Limit:  query.Limit,
		Pages:  utils.CalculateTotalPages(total, query.Limit),
	}, nil
}

// =================== STATE MACHINE ===================

// TransitionStatus moves an alert to newStatus on behalf of actor, claiming it
// for authority roles when unassigned and appending one audit response.
func (as *AlertService) TransitionStatus(ctx context.Context, actor models.UserIdentity, alertID string, req models.UpdateAlertStatusRequest) (*models.Alert, error) {
	alert, err := as.load(ctx, alertID)
	if err != nil {
		return nil, err
	}

	if !CanWrite(actor, alert.SubjectID) {
		return nil, utils.NewAlertAccessDeniedError()
	}

	if !req.Status.Valid() {
		return nil, utils.NewValidationError(fmt.Sprintf("Invalid status: %q", req.Status))
	}
	if err := as.validator.Validate(req); err != nil {
		return nil, err
	}

	var from []models.AlertStatus
	if as.strictTransitions {
		if !alert.Status.CanTransitionTo(req.Status) {
			return nil, utils.NewInvalidTransitionError(alert.Status, req.Status)
		}
		from = models.AlertStatusesLeadingTo(req.Status)
	}

	now := as.now()
	transition := models.AlertTransition{
		Status: req.Status,
		At:     now,
		From:   from,
		Response: models.AlertResponse{
			ResponderID: actor.ID,
			Action:      models.StatusChangeAction(req.Status),
			Timestamp:   now,
			Notes:       req.Notes,
		},
	}
	if CanClaim(actor.Role) {
		transition.ClaimantID = actor.ID
	}

	updated, err := as.store.ApplyTransition(ctx, alertID, transition)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, utils.NewAlertNotFoundError()
		case errors.Is(err, repositories.ErrStatusChanged):
			return nil, utils.NewConcurrentTransitionError()
		default:
			return nil, utils.NewStorageError("update alert status", err)
		}
	}

	as.metrics.RecordTransition(string(updated.Status))
	as.logger.WithFields(logrus.Fields{
		"alert_id":    alertID,
		"actor_id":    actor.ID,
		"actor_role":  actor.Role,
		"from":        alert.Status,
		"to":          updated.Status,
		"assigned_to": updated.AssignedTo,
	}).Info("Alert status changed")

	as.notifier.AlertStatusChanged(updated)
	return updated, nil
}

func (as *AlertService) load(ctx context.Context, alertID string) (*models.Alert, error) {
	alert, err := as.store.GetByID(ctx, alertID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NewAlertNotFoundError()
		}
		return nil, utils.NewStorageError("load alert", err)
	}
	return alert, nil
}
