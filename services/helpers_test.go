package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"tourguard/metrics"
	"tourguard/models"
	"tourguard/repositories"
	"tourguard/utils"
)

var (
	tourist      = models.UserIdentity{ID: "tourist-1", Role: models.RoleTourist, Name: "Asha"}
	otherTourist = models.UserIdentity{ID: "tourist-2", Role: models.RoleTourist}
	police       = models.UserIdentity{ID: "police-1", Role: models.RolePolice}
	police2      = models.UserIdentity{ID: "police-2", Role: models.RolePolice}
	admin        = models.UserIdentity{ID: "admin-1", Role: models.RoleAdmin}
)

func newTestMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

func newTestLogger() (*logrus.Logger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logger, hook
}

type recordingNotifier struct {
	mu      sync.Mutex
	created []models.Alert
	changed []models.Alert
}

func (n *recordingNotifier) AlertCreated(alert *models.Alert) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, *alert)
}

func (n *recordingNotifier) AlertStatusChanged(alert *models.Alert) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, *alert)
}

func newTestAlertService(strict bool) (*AlertService, *recordingNotifier) {
	logger, _ := newTestLogger()
	notifier := &recordingNotifier{}
	return NewAlertService(repositories.NewMemoryAlertStore(), notifier, logger, newTestMetrics(), strict), notifier
}

// failingProfileStore fails every call.
type failingProfileStore struct{}

var errStoreDown = errors.New("store down")

func (failingProfileStore) AppendLocation(context.Context, string, models.LocationSample, int) (models.LocationHistory, error) {
	return nil, errStoreDown
}
func (failingProfileStore) GetLocationHistory(context.Context, string) (models.LocationHistory, error) {
	return nil, errStoreDown
}
func (failingProfileStore) AppendGeofence(context.Context, string, models.Geofence) error {
	return errStoreDown
}
func (failingProfileStore) ListGeofences(context.Context, string) ([]models.Geofence, error) {
	return nil, errStoreDown
}
func (failingProfileStore) GetSafetyScore(context.Context, string) (*models.SafetyScore, error) {
	return nil, errStoreDown
}
func (failingProfileStore) UpdateSafetyScore(context.Context, string, models.SafetyScore) error {
	return errStoreDown
}

type failingDetector struct{}

func (failingDetector) CheckViolations(context.Context, string, models.Coordinate) ([]models.Alert, error) {
	return nil, errors.New("detector exploded")
}

type brokenVisitTracker struct{}

func (brokenVisitTracker) Enter(context.Context, string, string) (bool, error) {
	return false, errors.New("redis unreachable")
}
func (brokenVisitTracker) Leave(context.Context, string, string) error {
	return errors.New("redis unreachable")
}

func coordinateInput(lat, lon float64) models.CoordinateInput {
	return models.CoordinateInput{Latitude: utils.Float64Ptr(lat), Longitude: utils.Float64Ptr(lon)}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
