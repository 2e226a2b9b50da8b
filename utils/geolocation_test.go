package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"tourguard/models"
)

func TestDistance(t *testing.T) {
	bangalore := models.Coordinate{Latitude: 12.97, Longitude: 77.59}

	t.Run("same point is zero", func(t *testing.T) {
		assert.Equal(t, 0.0, Distance(bangalore, bangalore))
	})

	t.Run("symmetric", func(t *testing.T) {
		other := models.Coordinate{Latitude: 40.6892, Longitude: -74.0445}
		assert.InDelta(t, Distance(bangalore, other), Distance(other, bangalore), 1e-6)
	})

	t.Run("one degree along the equator", func(t *testing.T) {
		d := Distance(models.Coordinate{}, models.Coordinate{Longitude: 1})
		assert.InDelta(t, EarthRadiusM*math.Pi/180, d, 1e-6)
	})

	t.Run("nearby sample", func(t *testing.T) {
		d := Distance(bangalore, models.Coordinate{Latitude: 12.9705, Longitude: 77.5905})
		assert.InDelta(t, 77.63, d, 0.05)
	})

	t.Run("long haul", func(t *testing.T) {
		london := models.Coordinate{Latitude: 51.5007, Longitude: -0.1246}
		newYork := models.Coordinate{Latitude: 40.6892, Longitude: -74.0445}
		assert.InDelta(t, 5574840, Distance(london, newYork), 1)
	})

	t.Run("triangle inequality over short spans", func(t *testing.T) {
		a := bangalore
		b := models.Coordinate{Latitude: 12.98, Longitude: 77.595}
		c := models.Coordinate{Latitude: 12.99, Longitude: 77.59}
		assert.LessOrEqual(t, Distance(a, c), Distance(a, b)+Distance(b, c)+1e-6)
	})
}

func TestIsWithinGeofence(t *testing.T) {
	fence := models.Geofence{
		Center: models.Coordinate{Latitude: 12.97, Longitude: 77.59},
		Radius: 500,
		Type:   models.GeofenceTypeDanger,
	}

	inside, distance := IsWithinGeofence(models.Coordinate{Latitude: 12.9705, Longitude: 77.5905}, fence)
	assert.True(t, inside)
	assert.Less(t, distance, 500.0)

	// ~556m north of the center
	inside, _ = IsWithinGeofence(models.Coordinate{Latitude: 12.975, Longitude: 77.59}, fence)
	assert.False(t, inside)

	inside, distance = IsWithinGeofence(fence.Center, fence)
	assert.True(t, inside)
	assert.Zero(t, distance)
}

func TestIsValidCoordinate(t *testing.T) {
	cases := []struct {
		lat, lon float64
		valid    bool
	}{
		{0, 0, true},
		{90, 180, true},
		{-90, -180, true},
		{90.0001, 0, false},
		{0, -180.5, false},
		{math.NaN(), 0, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.valid, IsValidCoordinate(tc.lat, tc.lon), "lat=%v lon=%v", tc.lat, tc.lon)
	}
}
