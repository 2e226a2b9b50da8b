package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"tourguard/metrics"
	"tourguard/models"
)

// AlertNotifier receives alert lifecycle events. Calls return immediately;
// delivery is best effort.
type AlertNotifier interface {
	AlertCreated(alert *models.Alert)
	AlertStatusChanged(alert *models.Alert)
}

// AlertSink is one delivery channel. A sink ignores event types it does not
// handle.
type AlertSink interface {
	Name() string
	Deliver(ctx context.Context, eventType string, alert *models.Alert) error
}

type NotificationService struct {
	sinks   []AlertSink
	timeout time.Duration
	logger  logrus.FieldLogger
	metrics *metrics.Metrics
	wg      sync.WaitGroup
}

func NewNotificationService(sinks []AlertSink, timeout time.Duration, logger logrus.FieldLogger, m *metrics.Metrics) *NotificationService {
	return &NotificationService{
		sinks:   sinks,
		timeout: timeout,
		logger:  logger,
		metrics: m,
	}
}

func (ns *NotificationService) AlertCreated(alert *models.Alert) {
	ns.dispatch(models.WSTypeAlertCreated, alert)
}

func (ns *NotificationService) AlertStatusChanged(alert *models.Alert) {
	ns.dispatch(models.WSTypeAlertStatusChanged, alert)
}

// Wait blocks until in-flight deliveries finish.
func (ns *NotificationService) Wait() {
	ns.wg.Wait()
}

func (ns *NotificationService) dispatch(eventType string, alert *models.Alert) {
	if len(ns.sinks) == 0 {
		return
	}

	snapshot := *alert
	ns.wg.Add(1)
	go func() {
		defer ns.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), ns.timeout)
		defer cancel()

		if err := ns.Deliver(ctx, eventType, &snapshot); err != nil {
			ns.logger.WithError(err).WithFields(logrus.Fields{
				"alert_id":   snapshot.ID.Hex(),
				"event_type": eventType,
			}).Warn("Alert notification incomplete")
		}
	}()
}

// Deliver fans the event out to every sink concurrently. One failing sink
// does not cancel the others.
func (ns *NotificationService) Deliver(ctx context.Context, eventType string, alert *models.Alert) error {
	var g errgroup.Group

	for _, sink := range ns.sinks {
		sink := sink
		g.Go(func() error {
			if err := sink.Deliver(ctx, eventType, alert); err != nil {
				ns.metrics.RecordNotificationFailure(sink.Name())
				ns.logger.WithError(err).WithFields(logrus.Fields{
					"sink":     sink.Name(),
					"alert_id": alert.ID.Hex(),
				}).Error("Failed to deliver alert notification")
				return fmt.Errorf("%s: %w", sink.Name(), err)
			}
			return nil
		})
	}

	return g.Wait()
}
