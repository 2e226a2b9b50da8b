package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tourguard"

// Metrics holds the collectors registered on one registry. Construct it once
// in main and pass it down; tests use a throwaway registry.
type Metrics struct {
	Registry *prometheus.Registry

	// Request metrics
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	// Domain metrics
	alertsCreated        *prometheus.CounterVec
	alertTransitions     *prometheus.CounterVec
	locationUpdates      *prometheus.CounterVec
	geofenceViolations   prometheus.Counter
	violationsSuppressed prometheus.Counter
	notificationFailures *prometheus.CounterVec
}

func New(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		Registry: registry,

		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		alertsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_created_total",
			Help:      "Alerts created by type, severity and origin",
		}, []string{"type", "severity", "origin"}),
		alertTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_transitions_total",
			Help:      "Alert status transitions by target status",
		}, []string{"status"}),
		locationUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "location_updates_total",
			Help:      "Location samples recorded by source",
		}, []string{"source"}),
		geofenceViolations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geofence_violations_total",
			Help:      "Danger-zone violations that raised an alert",
		}),
		violationsSuppressed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geofence_violations_suppressed_total",
			Help:      "Danger-zone samples that fell inside an already alerted visit",
		}),
		notificationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "Failed alert deliveries by sink",
		}, []string{"sink"}),
	}
}

func (m *Metrics) RecordRequest(method, route, status string, seconds float64) {
	m.requestsTotal.WithLabelValues(method, route, status).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(seconds)
}

func (m *Metrics) RecordAlertCreated(alertType, severity string, autoGenerated bool) {
	origin := "manual"
	if autoGenerated {
		origin = "system"
	}
	m.alertsCreated.WithLabelValues(alertType, severity, origin).Inc()
}

func (m *Metrics) RecordTransition(status string) {
	m.alertTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordLocationUpdate(source string) {
	m.locationUpdates.WithLabelValues(source).Inc()
}

func (m *Metrics) RecordViolation() {
	m.geofenceViolations.Inc()
}

func (m *Metrics) RecordSuppressedViolation() {
	m.violationsSuppressed.Inc()
}

func (m *Metrics) RecordNotificationFailure(sink string) {
	m.notificationFailures.WithLabelValues(sink).Inc()
}
