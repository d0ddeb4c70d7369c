// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package address holds the four component address that is announced and logged, and renders
// it for speech and display.
package address

import (
	"encoding/json"
	"strings"

	"github.com/wneessen/motoguide/internal/geocode"
)

// NotAvailable is the value of every component the geocoder could not resolve.
const NotAvailable = "N/A"

const separator = ", "

// Address is a resolved postal address. Two addresses are equal if all components are equal.
type Address struct {
	Street             string `json:"street"`
	Town               string `json:"town"`
	County             string `json:"county"`
	AdministrativeArea string `json:"administrativeArea"`
}

// Inclusion selects the components that Format renders.
type Inclusion struct {
	Street             bool
	Town               bool
	County             bool
	AdministrativeArea bool
}

// All includes every component.
var All = Inclusion{Street: true, Town: true, County: true, AdministrativeArea: true}

// FromPlacemark maps a geocoding result onto an Address. The country stands in for a missing
// administrative area, other missing fields become NotAvailable.
func FromPlacemark(p geocode.Placemark) Address {
	area := p.AdministrativeArea
	if strings.TrimSpace(area) == "" {
		area = p.Country
	}
	return Address{
		Street:             orNotAvailable(p.Thoroughfare),
		Town:               orNotAvailable(p.Locality),
		County:             orNotAvailable(p.SubAdministrativeArea),
		AdministrativeArea: orNotAvailable(area),
	}
}

// Format joins the included, non-empty components in the order street, town, county and
// administrative area.
func (a Address) Format(inc Inclusion) string {
	components := make([]string, 0, 4)
	add := func(include bool, value string) {
		if include && value != "" {
			components = append(components, value)
		}
	}
	add(inc.Street, a.Street)
	add(inc.Town, a.Town)
	add(inc.County, a.County)
	add(inc.AdministrativeArea, a.AdministrativeArea)
	return strings.Join(components, separator)
}

func (a Address) String() string {
	return a.Format(All)
}

// JSON returns the address as indented JSON. It is meant for diagnostic output only.
func (a Address) JSON() string {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return NotAvailable
	}
	return string(data)
}

func orNotAvailable(value string) string {
	if strings.TrimSpace(value) == "" {
		return NotAvailable
	}
	return value
}
