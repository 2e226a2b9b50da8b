package utils

import (
	"context"
	"errors"
	"fmt"

	"googlemaps.github.io/maps"

	"tourguard/models"
)

var ErrNoAddress = errors.New("no address found for coordinate")

// GoogleGeocoder reverse geocodes coordinates with the Google Maps API.
type GoogleGeocoder struct {
	client *maps.Client
}

func NewGoogleGeocoder(apiKey string) (*GoogleGeocoder, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleGeocoder{client: client}, nil
}

func (g *GoogleGeocoder) ReverseGeocode(ctx context.Context, coordinate models.Coordinate) (string, error) {
	results, err := g.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: coordinate.Latitude, Lng: coordinate.Longitude},
	})
	if err != nil {
		return "", err
	}
	if len(results) == 0 || results[0].FormattedAddress == "" {
		return "", ErrNoAddress
	}
	return results[0].FormattedAddress, nil
}
