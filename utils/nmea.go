package utils

import (
	"errors"
	"strings"
	"time"

	"github.com/adrianmo/go-nmea"

	"tourguard/models"
)

// rangeErrorM converts HDOP into an approximate horizontal error in meters.
const rangeErrorM = 5.0

var (
	ErrNoFix               = errors.New("sentence carries no valid position fix")
	ErrUnsupportedSentence = errors.New("only GGA and RMC sentences are supported")
)

// ParseNMEALocation turns a GGA or RMC sentence from a GPS receiver into a
// location sample. RMC sentences carry their own UTC timestamp; GGA samples
// are stamped by the caller.
func ParseNMEALocation(raw string) (models.LocationSample, error) {
	sentence, err := nmea.Parse(strings.TrimSpace(raw))
	if err != nil {
		return models.LocationSample{}, err
	}

	sample := models.LocationSample{Source: models.LocationSourceNMEA}

	switch s := sentence.(type) {
	case nmea.GGA:
		if s.FixQuality == nmea.Invalid {
			return models.LocationSample{}, ErrNoFix
		}
		sample.Latitude = s.Latitude
		sample.Longitude = s.Longitude
		if s.HDOP > 0 {
			sample.Accuracy = Float64Ptr(s.HDOP * rangeErrorM)
		}
	case nmea.RMC:
		if s.Validity != nmea.ValidRMC {
			return models.LocationSample{}, ErrNoFix
		}
		sample.Latitude = s.Latitude
		sample.Longitude = s.Longitude
		if s.Date.Valid && s.Time.Valid {
			sample.Timestamp = rmcTimestamp(s.Date, s.Time)
		}
	default:
		return models.LocationSample{}, ErrUnsupportedSentence
	}

	if !IsValidCoordinate(sample.Latitude, sample.Longitude) {
		return models.LocationSample{}, ErrNoFix
	}
	return sample, nil
}

func rmcTimestamp(d nmea.Date, t nmea.Time) time.Time {
	year := 2000 + d.YY
	if d.YY >= 80 {
		year = 1900 + d.YY
	}
	return time.Date(year, time.Month(d.MM), d.DD, t.Hour, t.Minute, t.Second, t.Millisecond*int(time.Millisecond), time.UTC)
}
