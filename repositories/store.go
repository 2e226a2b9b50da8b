package repositories

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"tourguard/database"
	"tourguard/models"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrStatusChanged means the alert left the expected status between the
	// caller's read and the conditional update.
	ErrStatusChanged = errors.New("alert status changed concurrently")
)

// AlertStore persists alerts. Implementations apply every AlertTransition as
// a single atomic update so concurrent transitions never lose a response.
type AlertStore interface {
	Create(ctx context.Context, alert *models.Alert) error
	GetByID(ctx context.Context, id string) (*models.Alert, error)
	List(ctx context.Context, filter models.AlertFilter, offset, limit int) ([]models.Alert, int64, error)
	ApplyTransition(ctx context.Context, id string, transition models.AlertTransition) (*models.Alert, error)
}

// ProfileStore persists per-tourist records. Appends are atomic and create
// the profile on first use.
type ProfileStore interface {
	AppendLocation(ctx context.Context, userID string, sample models.LocationSample, keep int) (models.LocationHistory, error)
	GetLocationHistory(ctx context.Context, userID string) (models.LocationHistory, error)
	AppendGeofence(ctx context.Context, userID string, geofence models.Geofence) error
	ListGeofences(ctx context.Context, userID string) ([]models.Geofence, error)
	GetSafetyScore(ctx context.Context, userID string) (*models.SafetyScore, error)
	UpdateSafetyScore(ctx context.Context, userID string, score models.SafetyScore) error
}

// Store bundles the record stores behind one storage driver.
type Store struct {
	Alerts   AlertStore
	Profiles ProfileStore
	Ping     func(ctx context.Context) error
}

// NewMongoStore backs both stores with conn's database.
func NewMongoStore(conn *database.Connection, logger logrus.FieldLogger) *Store {
	return &Store{
		Alerts:   NewAlertRepository(conn.Database(), logger),
		Profiles: NewProfileRepository(conn.Database(), logger),
		Ping:     conn.Ping,
	}
}

// NewMemoryStore keeps all records in process memory.
func NewMemoryStore() *Store {
	return &Store{
		Alerts:   NewMemoryAlertStore(),
		Profiles: NewMemoryProfileStore(),
		Ping:     func(context.Context) error { return nil },
	}
}
