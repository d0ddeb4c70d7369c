// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geobus

import (
	"fmt"
	"math"

	geo "github.com/kellydunn/golang-geo"
)

const (
	// DistanceThreshold is the distance in meters a position has to move to be considered a new
	// position. Streets are short, so this is kept close to consumer GPS accuracy.
	DistanceThreshold = 20.0
	AccuracyThreshold = 50.0
)

// Coordinate represents a geographic coordinate.
type Coordinate struct {
	Lat float64
	Lon float64
	Acc float64
}

// DistanceTo returns the great-circle distance between c and other in meters.
func (c Coordinate) DistanceTo(other Coordinate) float64 {
	return geo.NewPoint(c.Lat, c.Lon).GreatCircleDistance(geo.NewPoint(other.Lat, other.Lon)) * 1000
}

// PosHasSignificantChange checks if the geographic position differs significantly from
// another based on the distance threshold.
func (c Coordinate) PosHasSignificantChange(other Coordinate) bool {
	// Higher accuracy always trumps the distance threshold.
	if c.Acc < other.Acc && math.Abs(c.Acc-other.Acc) > AccuracyThreshold {
		return true
	}
	return c.DistanceTo(other) > DistanceThreshold
}

// Valid checks if the coordinate is valid according to the EPSG logic
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%f, %f", c.Lat, c.Lon)
}
