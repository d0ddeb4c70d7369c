// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package nominatim implements reverse geocoding through the OpenStreetMap Nominatim API.
package nominatim

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/text/language"

	"github.com/wneessen/motoguide/internal/geobus"
	"github.com/wneessen/motoguide/internal/geocode"
	"github.com/wneessen/motoguide/internal/http"
)

const (
	APIReverseEndpoint = "https://nominatim.openstreetmap.org/reverse"
	APITimeout         = time.Second * 10
	// zoomStreet asks Nominatim for street level detail
	zoomStreet = "17"
	name       = "osm-nominatim"
)

type Nominatim struct {
	endpoint string
	http     *http.Client
	lang     language.Tag
}

type ReverseResult struct {
	Error       string  `json:"error"`
	APILat      string  `json:"lat"`
	APILon      string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Address     Address `json:"address"`
}

type Address struct {
	Road         string `json:"road"`
	Pedestrian   string `json:"pedestrian"`
	Suburb       string `json:"suburb"`
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Hamlet       string `json:"hamlet"`
	County       string `json:"county"`
	StateDistict string `json:"state_district"`
	State        string `json:"state"`
	Postcode     string `json:"postcode"`
	Country      string `json:"country"`
}

func New(client *http.Client, lang language.Tag) *Nominatim {
	return &Nominatim{
		endpoint: APIReverseEndpoint,
		lang:     lang,
		http:     client,
	}
}

func (n *Nominatim) Name() string {
	return name
}

// Reverse resolves coords into a Placemark. A coordinate Nominatim has no data for yields a
// Placemark with Found set to false.
func (n *Nominatim) Reverse(ctx context.Context, coords geobus.Coordinate) (geocode.Placemark, error) {
	var result ReverseResult
	var err error

	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("lat", strconv.FormatFloat(coords.Lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(coords.Lon, 'f', -1, 64))
	query.Set("zoom", zoomStreet)
	query.Set("addressdetails", "1")
	query.Set("accept-language", n.lang.String())

	if _, err = n.http.GetWithTimeout(ctx, n.endpoint, &result, query, nil, APITimeout); err != nil {
		return geocode.Placemark{}, fmt.Errorf("failed to fetch reverse address details from Nominatim API: %w", err)
	}
	if result.Error != "" {
		return geocode.Placemark{Latitude: coords.Lat, Longitude: coords.Lon}, nil
	}

	placemark := geocode.Placemark{
		Found:                 true,
		DisplayName:           result.DisplayName,
		Thoroughfare:          firstOf(result.Address.Road, result.Address.Pedestrian),
		Locality:              firstOf(result.Address.City, result.Address.Town, result.Address.Village, result.Address.Hamlet),
		SubAdministrativeArea: firstOf(result.Address.County, result.Address.StateDistict),
		AdministrativeArea:    result.Address.State,
		Country:               result.Address.Country,
		Postcode:              result.Address.Postcode,
	}
	placemark.Latitude, err = strconv.ParseFloat(result.APILat, 64)
	if err != nil {
		return geocode.Placemark{}, fmt.Errorf("failed to parse latitude from Nominatim API response: %w", err)
	}
	placemark.Longitude, err = strconv.ParseFloat(result.APILon, 64)
	if err != nil {
		return geocode.Placemark{}, fmt.Errorf("failed to parse longitude from Nominatim API response: %w", err)
	}

	return placemark, nil
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
