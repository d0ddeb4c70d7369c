// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package gpsd implements a streaming geobus provider backed by a gpsd daemon.
package gpsd

import (
	"context"
	"log/slog"
	"math"
	"net"
	"sync"
	"time"

	"github.com/stratoberry/go-gpsd"

	"github.com/wneessen/motoguide/internal/geobus"
	"github.com/wneessen/motoguide/internal/logger"
)

const (
	name = "gpsd"

	fallbackAccuracy3DFix = 10
	fallbackAccuracy2DFix = 25
)

type GeolocationGPSDProvider struct {
	name   string
	addr   string
	period time.Duration
	ttl    time.Duration
	logger *logger.Logger
}

func NewGeolocationGPSDProvider(host, port string, log *logger.Logger) *GeolocationGPSDProvider {
	return &GeolocationGPSDProvider{
		name:   name,
		addr:   net.JoinHostPort(host, port),
		period: time.Second * 30,
		ttl:    time.Minute * 2,
		logger: log,
	}
}

func (p *GeolocationGPSDProvider) Name() string {
	return p.name
}

// LookupStream watches gpsd for TPV reports and emits a result for every position that moved
// significantly. Lost connections are re-established after the provider period.
func (p *GeolocationGPSDProvider) LookupStream(ctx context.Context, key string) <-chan geobus.Result {
	out := make(chan geobus.Result)

	// filters run on the go-gpsd watch goroutine and may outlive the loop below
	var mu sync.Mutex
	closed := false

	go func() {
		defer func() {
			mu.Lock()
			closed = true
			close(out)
			mu.Unlock()
		}()
		state := &geobus.GeolocationState{}

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			session, err := gpsd.Dial(p.addr)
			if err != nil {
				p.logger.Warn("failed to connect to gpsd", logger.Err(err), slog.String("addr", p.addr))
				if !geobus.SleepOrDone(ctx, p.period) {
					return
				}
				continue
			}

			session.AddFilter("TPV", func(r interface{}) {
				tpv, ok := r.(*gpsd.TPVReport)
				if !ok {
					return
				}
				mu.Lock()
				defer mu.Unlock()
				if closed {
					return
				}
				res, ok := p.handleTPV(key, tpv, state)
				if !ok {
					return
				}
				select {
				case <-ctx.Done():
				case out <- res:
				}
			})

			// go-gpsd has no Close(), the connection is torn down with the process
			done := session.Watch()
			select {
			case <-ctx.Done():
				return
			case <-done:
				p.logger.Debug("gpsd watch ended, reconnecting", slog.String("addr", p.addr))
			}

			if !geobus.SleepOrDone(ctx, p.period) {
				return
			}
		}
	}()

	return out
}

// handleTPV converts a TPV report into a result. Reports without a 2D fix or without a
// significant position change are dropped.
func (p *GeolocationGPSDProvider) handleTPV(key string, tpv *gpsd.TPVReport, state *geobus.GeolocationState) (geobus.Result, bool) {
	if tpv.Mode < gpsd.Mode2D {
		return geobus.Result{}, false
	}
	coords := geobus.Coordinate{
		Lat: geobus.Truncate(tpv.Lat, geobus.TruncPrecision),
		Lon: geobus.Truncate(tpv.Lon, geobus.TruncPrecision),
		Acc: accuracy(tpv),
	}
	if !coords.Valid() || !state.HasChanged(coords) {
		return geobus.Result{}, false
	}
	state.Update(coords)
	return p.createResult(key, coords), true
}

// createResult composes and returns a Result using provided geolocation data and metadata.
func (p *GeolocationGPSDProvider) createResult(key string, coords geobus.Coordinate) geobus.Result {
	return geobus.Result{
		Key:            key,
		Lat:            coords.Lat,
		Lon:            coords.Lon,
		AccuracyMeters: coords.Acc,
		Source:         p.name,
		At:             time.Now(),
		TTL:            p.ttl,
	}
}

func accuracy(tpv *gpsd.TPVReport) float64 {
	if tpv.Epx > 0 && tpv.Epy > 0 {
		return math.Hypot(tpv.Epx, tpv.Epy)
	}
	if tpv.Mode == gpsd.Mode3D {
		return fallbackAccuracy3DFix
	}
	return fallbackAccuracy2DFix
}
