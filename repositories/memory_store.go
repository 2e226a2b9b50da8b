package repositories

import (
	"context"
	"sort"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tourguard/models"
)

// MemoryAlertStore keeps alerts in a sharded concurrent map. Every mutation
// goes through Upsert, which runs the callback under the shard lock.
type MemoryAlertStore struct {
	alerts cmap.ConcurrentMap[string, models.Alert]
}

func NewMemoryAlertStore() *MemoryAlertStore {
	return &MemoryAlertStore{alerts: cmap.New[models.Alert]()}
}

func (m *MemoryAlertStore) Create(_ context.Context, alert *models.Alert) error {
	if alert.ID.IsZero() {
		alert.ID = primitive.NewObjectID()
	}
	if alert.Responses == nil {
		alert.Responses = []models.AlertResponse{}
	}
	m.alerts.Set(alert.ID.Hex(), copyAlert(*alert))
	return nil
}

func (m *MemoryAlertStore) GetByID(_ context.Context, id string) (*models.Alert, error) {
	alert, ok := m.alerts.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	result := copyAlert(alert)
	return &result, nil
}

func (m *MemoryAlertStore) List(_ context.Context, filter models.AlertFilter, offset, limit int) ([]models.Alert, int64, error) {
	var matched []models.Alert
	for _, alert := range m.alerts.Items() {
		if matchesAlertFilter(alert, filter) {
			matched = append(matched, alert)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.Hex() > matched[j].ID.Hex()
	})

	total := int64(len(matched))
	page := []models.Alert{}
	if offset < len(matched) {
		end := offset + limit
		if end > len(matched) {
			end = len(matched)
		}
		for _, alert := range matched[offset:end] {
			page = append(page, copyAlert(alert))
		}
	}

	return page, total, nil
}

func (m *MemoryAlertStore) ApplyTransition(_ context.Context, id string, transition models.AlertTransition) (*models.Alert, error) {
	// Alerts are never removed, so a key seen here is still present inside Upsert.
	if !m.alerts.Has(id) {
		return nil, ErrNotFound
	}

	var stale bool
	updated := m.alerts.Upsert(id, models.Alert{}, func(exist bool, current, _ models.Alert) models.Alert {
		if len(transition.From) > 0 && !containsStatus(transition.From, current.Status) {
			stale = true
			return current
		}

		next := copyAlert(current)
		next.Status = transition.Status
		next.UpdatedAt = transition.At
		if transition.Status == models.AlertStatusResolved {
			next.ResolvedAt = timePtr(transition.At)
		}
		if transition.ClaimantID != "" && next.AssignedTo == "" {
			next.AssignedTo = transition.ClaimantID
		}
		next.Responses = append(next.Responses, transition.Response)
		return next
	})

	if stale {
		return nil, ErrStatusChanged
	}
	result := copyAlert(updated)
	return &result, nil
}

func matchesAlertFilter(alert models.Alert, filter models.AlertFilter) bool {
	if filter.SubjectID != "" && alert.SubjectID != filter.SubjectID {
		return false
	}
	if filter.Status != "" && alert.Status != filter.Status {
		return false
	}
	if filter.Type != "" && alert.Type != filter.Type {
		return false
	}
	if filter.Severity != "" && alert.Severity != filter.Severity {
		return false
	}
	return true
}

func containsStatus(statuses []models.AlertStatus, status models.AlertStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func copyAlert(alert models.Alert) models.Alert {
	out := alert
	out.Responses = append([]models.AlertResponse{}, alert.Responses...)
	if alert.AdditionalData != nil {
		out.AdditionalData = make(map[string]models.Value, len(alert.AdditionalData))
		for k, v := range alert.AdditionalData {
			out.AdditionalData[k] = v
		}
	}
	if alert.ResolvedAt != nil {
		out.ResolvedAt = timePtr(*alert.ResolvedAt)
	}
	return out
}

// MemoryProfileStore is the in-process counterpart of ProfileRepository.
type MemoryProfileStore struct {
	profiles cmap.ConcurrentMap[string, models.TouristProfile]
}

func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: cmap.New[models.TouristProfile]()}
}

func (m *MemoryProfileStore) upsert(userID string, mutate func(*models.TouristProfile)) models.TouristProfile {
	now := time.Now()
	return m.profiles.Upsert(userID, models.TouristProfile{}, func(exist bool, current, _ models.TouristProfile) models.TouristProfile {
		next := copyProfile(current)
		if !exist {
			next = models.TouristProfile{
				UserID:          userID,
				LocationHistory: models.LocationHistory{},
				Geofences:       []models.Geofence{},
				CreatedAt:       now,
			}
		}
		mutate(&next)
		next.UpdatedAt = now
		return next
	})
}

func (m *MemoryProfileStore) AppendLocation(_ context.Context, userID string, sample models.LocationSample, keep int) (models.LocationHistory, error) {
	profile := m.upsert(userID, func(p *models.TouristProfile) {
		p.LocationHistory = append(p.LocationHistory, sample)
		if overflow := len(p.LocationHistory) - keep; overflow > 0 {
			p.LocationHistory = append(models.LocationHistory{}, p.LocationHistory[overflow:]...)
		}
	})
	return append(models.LocationHistory{}, profile.LocationHistory...), nil
}

func (m *MemoryProfileStore) GetLocationHistory(_ context.Context, userID string) (models.LocationHistory, error) {
	profile, ok := m.profiles.Get(userID)
	if !ok {
		return models.LocationHistory{}, nil
	}
	return append(models.LocationHistory{}, profile.LocationHistory...), nil
}

func (m *MemoryProfileStore) AppendGeofence(_ context.Context, userID string, geofence models.Geofence) error {
	m.upsert(userID, func(p *models.TouristProfile) {
		p.Geofences = append(p.Geofences, geofence)
	})
	return nil
}

func (m *MemoryProfileStore) ListGeofences(_ context.Context, userID string) ([]models.Geofence, error) {
	profile, ok := m.profiles.Get(userID)
	if !ok {
		return []models.Geofence{}, nil
	}
	return append([]models.Geofence{}, profile.Geofences...), nil
}

func (m *MemoryProfileStore) GetSafetyScore(_ context.Context, userID string) (*models.SafetyScore, error) {
	profile, ok := m.profiles.Get(userID)
	if !ok || profile.SafetyScore == nil {
		return nil, nil
	}
	score := copySafetyScore(*profile.SafetyScore)
	return &score, nil
}

func (m *MemoryProfileStore) UpdateSafetyScore(_ context.Context, userID string, score models.SafetyScore) error {
	stored := copySafetyScore(score)
	m.upsert(userID, func(p *models.TouristProfile) {
		p.SafetyScore = &stored
	})
	return nil
}

func copyProfile(profile models.TouristProfile) models.TouristProfile {
	out := profile
	out.LocationHistory = append(models.LocationHistory{}, profile.LocationHistory...)
	out.Geofences = append([]models.Geofence{}, profile.Geofences...)
	if profile.SafetyScore != nil {
		score := copySafetyScore(*profile.SafetyScore)
		out.SafetyScore = &score
	}
	return out
}

func copySafetyScore(score models.SafetyScore) models.SafetyScore {
	out := score
	out.Factors = make(map[string]float64, len(score.Factors))
	for k, v := range score.Factors {
		out.Factors[k] = v
	}
	return out
}

func timePtr(t time.Time) *time.Time {
	return &t
}
