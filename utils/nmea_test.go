package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourguard/models"
)

func TestParseNMEALocation(t *testing.T) {
	t.Run("GGA fix", func(t *testing.T) {
		sample, err := ParseNMEALocation("$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47")
		require.NoError(t, err)

		assert.InDelta(t, 48.1173, sample.Latitude, 1e-4)
		assert.InDelta(t, 11.516667, sample.Longitude, 1e-4)
		assert.Equal(t, models.LocationSourceNMEA, sample.Source)
		require.NotNil(t, sample.Accuracy)
		assert.InDelta(t, 4.5, *sample.Accuracy, 1e-9)
		assert.True(t, sample.Timestamp.IsZero())
	})

	t.Run("RMC fix carries its timestamp", func(t *testing.T) {
		sample, err := ParseNMEALocation("$GPRMC,220516,A,5133.82,N,00042.24,W,173.8,231.8,130694,004.2,W*70")
		require.NoError(t, err)

		assert.InDelta(t, 51.563667, sample.Latitude, 1e-4)
		assert.InDelta(t, -0.704, sample.Longitude, 1e-4)
		assert.Equal(t, time.Date(1994, time.June, 13, 22, 5, 16, 0, time.UTC), sample.Timestamp)
	})

	t.Run("bad checksum", func(t *testing.T) {
		_, err := ParseNMEALocation("$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*48")
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseNMEALocation("not a sentence")
		assert.Error(t, err)
	})
}
