// models/location.go
package models

import (
	"time"
)

// MaxLocationHistory bounds the per-user history; older samples are dropped.
const MaxLocationHistory = 50

type Coordinate struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

type LocationSource string

const (
	LocationSourceGPS     LocationSource = "gps"
	LocationSourceNetwork LocationSource = "network"
	LocationSourceManual  LocationSource = "manual"
	LocationSourceNMEA    LocationSource = "nmea"
)

func (s LocationSource) Valid() bool {
	switch s {
	case LocationSourceGPS, LocationSourceNetwork, LocationSourceManual, LocationSourceNMEA:
		return true
	}
	return false
}

type LocationSample struct {
	Coordinate `bson:",inline"`
	Accuracy   *float64       `json:"accuracy,omitempty" bson:"accuracy,omitempty"` // meters
	Address    string         `json:"address,omitempty" bson:"address,omitempty"`
	Timestamp  time.Time      `json:"timestamp" bson:"timestamp"`
	Source     LocationSource `json:"source" bson:"source"`
}

// LocationHistory is ordered oldest first.
type LocationHistory []LocationSample

// Latest returns the most recent sample.
func (h LocationHistory) Latest() (LocationSample, bool) {
	if len(h) == 0 {
		return LocationSample{}, false
	}
	return h[len(h)-1], true
}

// Request DTOs
type UpdateLocationRequest struct {
	Latitude  *float64       `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64       `json:"longitude" validate:"required,gte=-180,lte=180"`
	Accuracy  *float64       `json:"accuracy,omitempty" validate:"omitempty,gte=0"`
	Address   string         `json:"address,omitempty" validate:"max=500"`
	Timestamp *time.Time     `json:"timestamp,omitempty"`
	Source    LocationSource `json:"source,omitempty" validate:"omitempty,location_source"`
}

type NMEALocationRequest struct {
	Sentence string `json:"sentence" validate:"required,max=256"`
}

type LocationHistoryResponse struct {
	UserID  string          `json:"userId"`
	History LocationHistory `json:"history"`
	Count   int             `json:"count"`
}
