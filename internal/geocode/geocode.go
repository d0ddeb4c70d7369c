// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package geocode defines the reverse geocoding contract and a caching decorator for it.
package geocode

import (
	"context"
	"errors"

	"github.com/wneessen/motoguide/internal/geobus"
)

// ErrNoPlacemark is returned when a geocoder answered but had no placemark for a coordinate.
var ErrNoPlacemark = errors.New("no placemarks found")

// Placemark is a best-effort reverse geocoding result. Every field is optional and empty when
// the service did not return it.
type Placemark struct {
	Found    bool
	CacheHit bool

	Latitude    float64
	Longitude   float64
	DisplayName string

	// Thoroughfare is the street name
	Thoroughfare string
	// Locality is the city, town or village
	Locality string
	// SubAdministrativeArea is the county or district
	SubAdministrativeArea string
	// AdministrativeArea is the state or region
	AdministrativeArea string
	Country            string
	Postcode           string
}

// Geocoder resolves a coordinate into a Placemark.
type Geocoder interface {
	Name() string
	Reverse(ctx context.Context, coords geobus.Coordinate) (Placemark, error)
}
