package models

import (
	"time"
)

// DefaultSafetyScore applies until a score has been derived for the user.
const DefaultSafetyScore = 100.0

// TouristProfile is keyed by the identity provider's user id.
type TouristProfile struct {
	UserID          string          `json:"userId" bson:"_id"`
	LocationHistory LocationHistory `json:"locationHistory" bson:"locationHistory"`
	Geofences       []Geofence      `json:"geofences" bson:"geofences"`
	SafetyScore     *SafetyScore    `json:"safetyScore,omitempty" bson:"safetyScore,omitempty"`
	CreatedAt       time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt" bson:"updatedAt"`
}

type SafetyScore struct {
	Value     float64            `json:"value" bson:"value"`
	Factors   map[string]float64 `json:"factors" bson:"factors"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func NewDefaultSafetyScore(now time.Time) SafetyScore {
	return SafetyScore{
		Value:     DefaultSafetyScore,
		Factors:   map[string]float64{},
		UpdatedAt: now,
	}
}
