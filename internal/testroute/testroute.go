// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package testroute replays a fixed route through Lydney, Gloucestershire for offline testing.
package testroute

import (
	"sync"

	"github.com/wneessen/motoguide/internal/geobus"
)

var route = [...]geobus.Coordinate{
	{Lat: 51.697100524640355, Lon: -2.5829796037672668},
	{Lat: 51.67516332778249, Lon: -2.62098520043736},
	{Lat: 51.67516332778248, Lon: -2.62098520043735},
	{Lat: 51.64924416101017, Lon: -2.6660494148164005},
	{Lat: 51.645541521767775, Lon: -2.6659134575167327},
	{Lat: 51.6441810900248, Lon: -2.6622519048050606},
	{Lat: 51.644251133248034, Lon: -2.6658230544736745},
	{Lat: 51.6434797750484, Lon: -2.6681738532921466},
	{Lat: 51.645606290328224, Lon: -2.690032591865103},
	{Lat: 51.645954265539636, Lon: -2.71116900134705},
	{Lat: 51.64533789808418, Lon: -2.747411725394253},
}

// Replayer cycles through the route. The zero value starts at the first point.
type Replayer struct {
	mu     sync.Mutex
	cursor int
}

// Next returns the coordinate at the cursor and advances it, wrapping after the last point.
func (r *Replayer) Next() geobus.Coordinate {
	r.mu.Lock()
	defer r.mu.Unlock()
	coord := route[r.cursor]
	r.cursor = (r.cursor + 1) % len(route)
	return coord
}

// Len returns the number of points in the route.
func (r *Replayer) Len() int {
	return len(route)
}

// Reset moves the cursor back to the first point.
func (r *Replayer) Reset() {
	r.mu.Lock()
	r.cursor = 0
	r.mu.Unlock()
}
