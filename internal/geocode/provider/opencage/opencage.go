// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package opencage implements reverse geocoding through the OpenCage geocoding API.
package opencage

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
	APIEndpoint = "https://api.opencagedata.com/geocode/v1/json"
	APITimeout  = time.Second * 10
	name        = "opencage"
)

type OpenCage struct {
	apikey   string
	endpoint string
	http     *http.Client
	lang     language.Tag
}

type Response struct {
	Results      []Result `json:"results"`
	TotalResults int      `json:"total_results"`
}

type Result struct {
	Components  Components `json:"components"`
	DisplayName string     `json:"formatted"`
	Geometry    Geometry   `json:"geometry"`
}

type Components struct {
	NomalizedCity string `json:"_normalized_city"`
	City          string `json:"city"`
	CityDistrict  string `json:"city_district"`
	Country       string `json:"country"`
	County        string `json:"county"`
	Municipality  string `json:"municipality"`
	Postcode      string `json:"postcode"`
	Road          string `json:"road"`
	State         string `json:"state"`
	StateDistrict string `json:"state_district"`
	Town          string `json:"town"`
	Village       string `json:"village"`
}

type Geometry struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lng"`
}

func New(client *http.Client, lang language.Tag, apikey string) *OpenCage {
	return &OpenCage{
		apikey:   apikey,
		endpoint: APIEndpoint,
		lang:     lang,
		http:     client,
	}
}

func (o *OpenCage) Name() string {
	return name
}

func (o *OpenCage) Reverse(ctx context.Context, coords geobus.Coordinate) (geocode.Placemark, error) {
	var response Response

	query := url.Values{}
	query.Set("key", o.apikey)
	query.Set("q", fmt.Sprintf("%f,%f", coords.Lat, coords.Lon))
	query.Set("no_annotations", "1")
	query.Set("no_record", "1")
	query.Set("language", o.lang.String())

	if _, err := o.http.GetWithTimeout(ctx, o.endpoint, &response, query, nil, APITimeout); err != nil {
		return geocode.Placemark{}, fmt.Errorf("failed to retrieve address details from OpenCage API: %w", err)
	}
	switch {
	case response.TotalResults == 0 || len(response.Results) == 0:
		return geocode.Placemark{Latitude: coords.Lat, Longitude: coords.Lon}, nil
	case response.TotalResults > 1:
		return geocode.Placemark{}, fmt.Errorf("unambigous amount of results returned for coordinates: %d",
			response.TotalResults)
	}

	result := response.Results[0]
	placemark := geocode.Placemark{
		Found:                 true,
		Latitude:              result.Geometry.Lat,
		Longitude:             result.Geometry.Lon,
		DisplayName:           result.DisplayName,
		Thoroughfare:          result.Components.Road,
		Locality:              result.Components.NomalizedCity,
		SubAdministrativeArea: result.Components.County,
		AdministrativeArea:    result.Components.State,
		Country:               result.Components.Country,
		Postcode:              result.Components.Postcode,
	}
	if placemark.Locality == "" {
		placemark.Locality = result.Components.City
	}
	if result.Components.Town != "" {
		placemark.Locality = result.Components.Town
	}
	if result.Components.Village != "" {
		placemark.Locality = result.Components.Village
	}
	if placemark.SubAdministrativeArea == "" {
		placemark.SubAdministrativeArea = result.Components.StateDistrict
	}

	return placemark, nil
}
