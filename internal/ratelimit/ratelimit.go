// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package ratelimit drops location updates that arrive sooner than a configured interval after
// the last accepted one.
package ratelimit

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/wneessen/motoguide/internal/vartype"
)

// ErrInvalidInterval is returned for intervals that are not part of Intervals.
var ErrInvalidInterval = errors.New("invalid location check interval")

// Intervals lists the supported location check intervals.
var Intervals = []time.Duration{
	time.Second,
	time.Second * 2,
	time.Second * 5,
	time.Second * 10,
	time.Second * 15,
	time.Second * 30,
	time.Minute,
	time.Minute * 2,
	time.Minute * 5,
}

// DefaultInterval is used when no interval is configured.
const DefaultInterval = time.Second * 10

// ValidInterval reports whether interval is one of Intervals.
func ValidInterval(interval time.Duration) bool {
	return slices.Contains(Intervals, interval)
}

// Limiter accepts an update if at least the interval passed since the last accepted update.
type Limiter struct {
	mu         sync.Mutex
	clock      clock.Clock
	interval   time.Duration
	lastUpdate vartype.VarTime
}

// New returns a Limiter for the given interval using the wall clock.
func New(interval time.Duration) (*Limiter, error) {
	return NewWithClock(interval, clock.New())
}

// NewWithClock returns a Limiter that reads the time from clk.
func NewWithClock(interval time.Duration, clk clock.Clock) (*Limiter, error) {
	if !ValidInterval(interval) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInterval, interval)
	}
	return &Limiter{clock: clk, interval: interval}, nil
}

// Allow reports whether an update arriving now is processed. An accepted update resets the
// timer, a rejected one has no effect. The first update is always accepted.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if last, ok := l.lastUpdate.Get(); ok && now.Sub(last) < l.interval {
		return false
	}
	l.lastUpdate.Set(now)
	return true
}

// SetInterval changes the interval. The time of the last accepted update is kept.
func (l *Limiter) SetInterval(interval time.Duration) error {
	if !ValidInterval(interval) {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, interval)
	}
	l.mu.Lock()
	l.interval = interval
	l.mu.Unlock()
	return nil
}

// Interval returns the current interval.
func (l *Limiter) Interval() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.interval
}

// LastUpdate returns the time of the last accepted update.
func (l *Limiter) LastUpdate() (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastUpdate.Get()
}
