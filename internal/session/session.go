// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package session turns location updates into address announcements and keeps the history of
// logged locations.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/wneessen/motoguide/internal/address"
	"github.com/wneessen/motoguide/internal/announce"
	"github.com/wneessen/motoguide/internal/geobus"
	"github.com/wneessen/motoguide/internal/geocode"
	"github.com/wneessen/motoguide/internal/logger"
	"github.com/wneessen/motoguide/internal/ratelimit"
	"github.com/wneessen/motoguide/internal/speech"
	"github.com/wneessen/motoguide/internal/testroute"
	"github.com/wneessen/motoguide/internal/vartype"
)

var (
	// ErrNotAvailable is returned by Log when no location or address is known yet.
	ErrNotAvailable = errors.New("location or address not available")
	// ErrNoLocator is returned by RequestLocation when the session has no Locator.
	ErrNoLocator = errors.New("no locator configured")
)

// DefaultLanguage is the speech language used when Settings.Language is undefined.
var DefaultLanguage = language.BritishEnglish

// Locator returns the current position on request.
type Locator interface {
	Locate(ctx context.Context) (geobus.Coordinate, error)
}

// LocatorFunc adapts a function to the Locator interface.
type LocatorFunc func(ctx context.Context) (geobus.Coordinate, error)

func (f LocatorFunc) Locate(ctx context.Context) (geobus.Coordinate, error) {
	return f(ctx)
}

// Settings are the user controlled options of a Session.
type Settings struct {
	Announce              announce.Settings
	LocationCheckInterval time.Duration
	TestMode              bool
	SpeakEveryGeocode     bool
	Language              language.Tag
}

// LogEntry is a logged location and the address it resolved to.
type LogEntry struct {
	ID         uuid.UUID
	Timestamp  time.Time
	Coordinate geobus.Coordinate
	Address    address.Address
}

// Session is the announcement orchestrator. All methods are safe for concurrent use.
type Session struct {
	clock    clock.Clock
	geocoder geocode.Geocoder
	speaker  speech.Speaker
	locator  Locator
	logger   *logger.Logger
	limiter  *ratelimit.Limiter
	replayer *testroute.Replayer

	mu           sync.Mutex
	settings     Settings
	detector     announce.Detector
	lastLocation vartype.Variable[geobus.Coordinate]
	lastAddress  vartype.Variable[address.Address]
	history      []LogEntry
	// seq numbers accepted updates, applied is the newest one whose geocode result was applied
	seq     uint64
	applied uint64

	subMu       sync.RWMutex
	subscribers map[chan Event]struct{}
}

// Option configures optional collaborators of a Session.
type Option func(*Session)

// WithClock replaces the wall clock.
func WithClock(clk clock.Clock) Option {
	return func(s *Session) {
		s.clock = clk
	}
}

// WithLocator sets the Locator used by RequestLocation.
func WithLocator(locator Locator) Option {
	return func(s *Session) {
		s.locator = locator
	}
}

// New returns a Session. It fails if the location check interval is not supported.
func New(geocoder geocode.Geocoder, speaker speech.Speaker, settings Settings, log *logger.Logger,
	opts ...Option,
) (*Session, error) {
	if geocoder == nil {
		return nil, errors.New("geocoder is required")
	}
	if speaker == nil {
		return nil, errors.New("speaker is required")
	}
	if settings.LocationCheckInterval == 0 {
		settings.LocationCheckInterval = ratelimit.DefaultInterval
	}
	if settings.Language == language.Und {
		settings.Language = DefaultLanguage
	}

	s := &Session{
		clock:       clock.New(),
		geocoder:    geocoder,
		speaker:     speaker,
		logger:      log,
		replayer:    &testroute.Replayer{},
		settings:    settings,
		subscribers: make(map[chan Event]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	limiter, err := ratelimit.NewWithClock(settings.LocationCheckInterval, s.clock)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limiter: %w", err)
	}
	s.limiter = limiter
	return s, nil
}

// HandleLocation processes a live location update. Updates are ignored in test mode and
// dropped if they arrive before the location check interval passed. It reports whether the
// update was accepted.
func (s *Session) HandleLocation(ctx context.Context, coord geobus.Coordinate) bool {
	s.mu.Lock()
	if s.settings.TestMode {
		s.mu.Unlock()
		return false
	}
	if !s.limiter.Allow() {
		s.mu.Unlock()
		s.logger.Debug("location update within check interval, skipping", slog.String("coordinate", coord.String()))
		return false
	}
	s.lastLocation.Set(coord)
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	s.logger.Debug("location updated", slog.String("coordinate", coord.String()))
	s.resolve(ctx, seq, coord, false)
	return true
}

// LogTestLocation processes the next point of the test route. The location check interval
// does not apply.
func (s *Session) LogTestLocation(ctx context.Context) {
	coord := s.replayer.Next()

	s.mu.Lock()
	s.lastLocation.Set(coord)
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	s.logger.Debug("test location logged", slog.String("coordinate", coord.String()))
	s.resolve(ctx, seq, coord, true)
}

// RequestLocation asks the Locator for the current position once and processes it like a live
// update.
func (s *Session) RequestLocation(ctx context.Context) (bool, error) {
	if s.locator == nil {
		return false, ErrNoLocator
	}
	coord, err := s.locator.Locate(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get user location: %w", err)
	}
	return s.HandleLocation(ctx, coord), nil
}

// Log samples the location once and appends the last known location and address to the
// history. If the sample itself was announced and logged, that entry is returned instead of
// recording the same location twice.
func (s *Session) Log(ctx context.Context) (LogEntry, error) {
	s.mu.Lock()
	logged := len(s.history)
	s.mu.Unlock()

	if s.Settings().TestMode {
		s.LogTestLocation(ctx)
	} else if _, err := s.RequestLocation(ctx); err != nil {
		s.logger.Warn("location request failed", logger.Err(err))
	}

	s.mu.Lock()
	location, hasLocation := s.lastLocation.Get()
	addr, hasAddress := s.lastAddress.Get()
	if !hasLocation || !hasAddress {
		s.mu.Unlock()
		s.logger.Info("location or address not available")
		return LogEntry{}, ErrNotAvailable
	}
	if len(s.history) > logged {
		last := s.history[len(s.history)-1]
		if last.Coordinate == location && last.Address == addr {
			s.mu.Unlock()
			return last, nil
		}
	}
	entry := s.appendLocked(location, addr)
	s.mu.Unlock()

	s.logger.Info("log added", slog.String("coordinate", location.String()),
		slog.String("address", addr.JSON()))
	s.emit(Event{Type: EventLogEntryAppended, Address: addr, Entry: entry})
	return entry, nil
}

// HandleInterruption stops a running announcement when the audio output is interrupted and
// repeats the last known address once it may resume.
func (s *Session) HandleInterruption(ctx context.Context, interruption speech.Interruption) {
	switch interruption.Type {
	case speech.InterruptionBegan:
		if s.speaker.Speaking() {
			s.logger.Info("speech interrupted, stopping immediately")
			s.speaker.Stop()
		}
	case speech.InterruptionEnded:
		if !interruption.ShouldResume {
			return
		}
		s.mu.Lock()
		addr, ok := s.lastAddress.Get()
		settings := s.settings
		s.mu.Unlock()
		if !ok {
			return
		}
		s.logger.Info("speech interruption ended, resuming")
		s.speak(ctx, addr.Format(settings.Announce.Inclusion()), settings.Language)
	}
}

// Settings returns the current settings.
func (s *Session) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings replaces the settings. An unsupported location check interval is rejected
// and leaves the settings unchanged. The interval only changes the rate limiter; whoever
// schedules sampling at that interval has to reschedule on its own.
func (s *Session) UpdateSettings(settings Settings) error {
	if settings.LocationCheckInterval == 0 {
		settings.LocationCheckInterval = ratelimit.DefaultInterval
	}
	if settings.Language == language.Und {
		settings.Language = DefaultLanguage
	}
	if err := s.limiter.SetInterval(settings.LocationCheckInterval); err != nil {
		return err
	}
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
	return nil
}

// ToggleTestMode switches test mode and returns the new state.
func (s *Session) ToggleTestMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.TestMode = !s.settings.TestMode
	return s.settings.TestMode
}

// History returns a copy of the logged entries in insertion order.
func (s *Session) History() []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LogEntry(nil), s.history...)
}

// LastKnown returns the last known location and address.
func (s *Session) LastKnown() (vartype.Variable[geobus.Coordinate], vartype.Variable[address.Address]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastLocation, s.lastAddress
}

// resolve reverse geocodes coord and announces the result. Failures and results superseded by
// a newer update are logged and dropped without touching the session state.
func (s *Session) resolve(ctx context.Context, seq uint64, coord geobus.Coordinate, testMode bool) {
	placemark, err := s.geocoder.Reverse(ctx, coord)
	if err != nil {
		s.logger.Warn("failed to reverse geocode location", logger.Err(err),
			slog.String("coordinate", coord.String()))
		return
	}
	if !placemark.Found {
		s.logger.Warn("failed to reverse geocode location", logger.Err(geocode.ErrNoPlacemark),
			slog.String("coordinate", coord.String()))
		return
	}
	addr := address.FromPlacemark(placemark)

	s.mu.Lock()
	if seq < s.applied {
		s.mu.Unlock()
		s.logger.Debug("discarding superseded geocode result", slog.Uint64("seq", seq),
			slog.String("coordinate", coord.String()))
		return
	}
	s.applied = seq
	s.lastAddress.Set(addr)
	settings := s.settings

	if settings.SpeakEveryGeocode && !testMode {
		s.mu.Unlock()
		s.logger.Debug("resolved address", slog.String("address", addr.JSON()),
			slog.Bool("cache_hit", placemark.CacheHit))
		s.speak(ctx, addr.Format(settings.Announce.Inclusion()), settings.Language)
		return
	}

	decision := s.detector.Evaluate(addr, settings.Announce)
	var entry LogEntry
	location, hasLocation := s.lastLocation.Get()
	if decision.Announce && hasLocation {
		entry = s.appendLocked(location, addr)
	}
	s.mu.Unlock()

	s.logger.Debug("resolved address", slog.String("address", addr.JSON()),
		slog.Bool("cache_hit", placemark.CacheHit))
	if !decision.Announce {
		s.logger.Debug("address has not changed")
		return
	}

	s.emit(Event{Type: EventAddressChanged, Address: addr})
	if hasLocation {
		s.logger.Info("auto log added", slog.String("coordinate", location.String()),
			slog.String("address", addr.String()))
		s.emit(Event{Type: EventLogEntryAppended, Address: addr, Entry: entry})
	}
	s.speak(ctx, addr.Format(decision.Inclusion), settings.Language)
}

func (s *Session) speak(ctx context.Context, text string, lang language.Tag) {
	if text == "" {
		s.logger.Debug("nothing to announce")
		return
	}
	if err := s.speaker.Speak(ctx, text, lang); err != nil {
		if errors.Is(err, speech.ErrNoVoice) {
			s.logger.Warn("no available voices")
			return
		}
		s.logger.Error("failed to speak address", logger.Err(err))
		return
	}
	s.logger.Info("speaking address", slog.String("text", text))
}

// appendLocked adds a history entry. The caller must hold s.mu.
func (s *Session) appendLocked(coord geobus.Coordinate, addr address.Address) LogEntry {
	entry := LogEntry{
		ID:         uuid.New(),
		Timestamp:  s.clock.Now(),
		Coordinate: coord,
		Address:    addr,
	}
	s.history = append(s.history, entry)
	return entry
}
