// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package geocodeearth implements reverse geocoding through the geocode.earth API.
package geocodeearth

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/text/language"

	"github.com/wneessen/motoguide/internal/geobus"
	"github.com/wneessen/motoguide/internal/geocode"
	"github.com/wneessen/motoguide/internal/http"
)

const (
	APIEndpoint = "https://api.geocode.earth/v1/reverse"
	APITimeout  = time.Second * 10
	name        = "geocode-earth"
)

type GeocodeEarth struct {
	apikey   string
	endpoint string
	http     *http.Client
	lang     language.Tag
}

type Response struct {
	Features []Feature `json:"features"`
	Type     string    `json:"type"`
}

type Feature struct {
	Properties Properties `json:"properties"`
	Type       string     `json:"type"`
}

type Properties struct {
	DisplayName string `json:"label"`
	Locality    string `json:"locality"`
	LocalAdmin  string `json:"localadmin"`
	County      string `json:"county"`
	Country     string `json:"country"`
	Postcode    string `json:"postalcode"`
	Street      string `json:"street"`
	Region      string `json:"region"`
}

func New(client *http.Client, lang language.Tag, apikey string) *GeocodeEarth {
	return &GeocodeEarth{
		apikey:   apikey,
		endpoint: APIEndpoint,
		lang:     lang,
		http:     client,
	}
}

func (g *GeocodeEarth) Name() string {
	return name
}

// Reverse returns the nearest placemark for coords. An empty feature list is not an error but
// yields a placemark that was not found.
func (g *GeocodeEarth) Reverse(ctx context.Context, coords geobus.Coordinate) (geocode.Placemark, error) {
	var response Response

	query := url.Values{}
	query.Set("api_key", g.apikey)
	query.Set("point.lat", fmt.Sprintf("%f", coords.Lat))
	query.Set("point.lon", fmt.Sprintf("%f", coords.Lon))
	query.Set("size", "1")
	query.Set("lang", g.lang.String())

	if _, err := g.http.GetWithTimeout(ctx, g.endpoint, &response, query, nil, APITimeout); err != nil {
		return geocode.Placemark{}, fmt.Errorf("failed to retrieve address details from geocode.earth API: %w", err)
	}
	if len(response.Features) < 1 {
		return geocode.Placemark{Latitude: coords.Lat, Longitude: coords.Lon}, nil
	}

	result := response.Features[0].Properties
	placemark := geocode.Placemark{
		Found:                 true,
		Latitude:              coords.Lat,
		Longitude:             coords.Lon,
		DisplayName:           result.DisplayName,
		Thoroughfare:          result.Street,
		Locality:              result.Locality,
		SubAdministrativeArea: result.County,
		AdministrativeArea:    result.Region,
		Country:               result.Country,
		Postcode:              result.Postcode,
	}
	if placemark.Locality == "" {
		placemark.Locality = result.LocalAdmin
	}

	return placemark, nil
}
