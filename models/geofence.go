package models

import (
	"time"
)

type GeofenceType string

const (
	GeofenceTypeSafe    GeofenceType = "safe"
	GeofenceTypeWarning GeofenceType = "warning"
	GeofenceTypeDanger  GeofenceType = "danger"
)

func (t GeofenceType) Valid() bool {
	switch t {
	case GeofenceTypeSafe, GeofenceTypeWarning, GeofenceTypeDanger:
		return true
	}
	return false
}

// Geofence is a named circular zone owned by a tourist profile.
type Geofence struct {
	ID        string       `json:"id" bson:"id"`
	Name      string       `json:"name" bson:"name"`
	Center    Coordinate   `json:"center" bson:"center"`
	Radius    int          `json:"radius" bson:"radius"` // meters
	Type      GeofenceType `json:"type" bson:"type"`
	Active    bool         `json:"active" bson:"active"`
	CreatedBy string       `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	CreatedAt time.Time    `json:"createdAt" bson:"createdAt"`
}

type CreateGeofenceRequest struct {
	Name      string       `json:"name" validate:"required,min=1,max=100"`
	Latitude  *float64     `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64     `json:"longitude" validate:"required,gte=-180,lte=180"`
	Radius    int          `json:"radius" validate:"required,gt=0,lte=100000"`
	Type      GeofenceType `json:"type" validate:"required,geofence_type"`
	Active    *bool        `json:"active,omitempty"`
}
