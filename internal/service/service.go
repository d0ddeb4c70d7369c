// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package service wires location providers, the geocoder, speech output and the presenter to a
// location session and runs them until the context is cancelled.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/vorlif/spreak"

	"github.com/wneessen/motoguide/internal/config"
	"github.com/wneessen/motoguide/internal/geobus"
	"github.com/wneessen/motoguide/internal/geocode"
	"github.com/wneessen/motoguide/internal/gpspoll"
	"github.com/wneessen/motoguide/internal/logger"
	"github.com/wneessen/motoguide/internal/presenter"
	"github.com/wneessen/motoguide/internal/session"
	"github.com/wneessen/motoguide/internal/speech"
)

const (
	DeviceKey     = "motoguide"
	sampleJobName = "location_sample_job"

	subscriberBuffer = 32
	cacheHitTTL      = time.Hour
	cacheMissTTL     = time.Minute * 5
)

var ErrNoLocation = errors.New("no location available")

type Service struct {
	config    *config.Config
	geobus    *geobus.GeoBus
	geocoder  geocode.Geocoder
	gpsClient *gpspoll.Client
	logger    *logger.Logger
	presenter *presenter.Presenter
	scheduler gocron.Scheduler
	session   *session.Session
	speaker   speech.Speaker
	t         *spreak.Localizer

	jobMu     sync.Mutex
	sampleJob gocron.Job
	stopOnce  sync.Once
	stopErr   error

	output       io.Writer
	monitorSleep func(context.Context)
	SignalSrc    signalSource
}

func New(conf *config.Config, log *logger.Logger, t *spreak.Localizer) (*Service, error) {
	return newService(conf, log, t, os.Stdout)
}

func newService(conf *config.Config, log *logger.Logger, t *spreak.Localizer, output io.Writer) (*Service, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	service := &Service{
		config:    conf,
		geobus:    geobus.New(log),
		logger:    log,
		scheduler: scheduler,
		t:         t,
		output:    output,
		SignalSrc: stdLibSignalSource{},
	}
	service.monitorSleep = service.monitorSleepResume

	service.presenter, err = presenter.New(conf.Templates.Entry, t, service.output)
	if err != nil {
		_ = service.shutdownScheduler()
		return nil, fmt.Errorf("failed to create presenter: %w", err)
	}
	service.geocoder, err = service.selectGeocodeProvider(conf, log, conf.SpeechLanguage())
	if err != nil {
		_ = service.shutdownScheduler()
		return nil, fmt.Errorf("failed to create geocode provider: %w", err)
	}
	service.speaker = service.selectSpeaker()
	if !conf.GeoLocation.DisableGPSD {
		service.gpsClient = gpspoll.New(conf.GeoLocation.GPSDHost, conf.GeoLocation.GPSDPort)
	}

	settings := session.Settings{
		Announce:              conf.AnnouncementSettings(),
		LocationCheckInterval: conf.Intervals.LocationCheck,
		TestMode:              conf.TestMode,
		SpeakEveryGeocode:     conf.Announce.SpeakEveryGeocode,
		Language:              conf.SpeechLanguage(),
	}
	service.session, err = session.New(service.geocoder, service.speaker, settings, log,
		session.WithLocator(session.LocatorFunc(service.locate)))
	if err != nil {
		_ = service.shutdownScheduler()
		return nil, fmt.Errorf("failed to create location session: %w", err)
	}

	return service, nil
}

func (s *Service) Run(ctx context.Context) error {
	provider, err := s.selectGeobusProviders()
	if err != nil {
		_ = s.shutdownScheduler()
		return fmt.Errorf("failed to create geobus orchestrator: %w", err)
	}
	orchestrator := s.geobus.NewOrchestrator(provider)

	// Start scheduled jobs
	job, err := s.createScheduledJob(ctx, s.session.Settings().LocationCheckInterval, s.sampleLocation,
		sampleJobName)
	if err != nil {
		_ = s.shutdownScheduler()
		return err
	}
	s.jobMu.Lock()
	s.sampleJob = job
	s.jobMu.Unlock()
	s.scheduler.Start()

	// Subscribe to session events and geolocation updates
	events, unsubEvents := s.session.Subscribe(subscriberBuffer)
	go s.processSessionEvents(ctx, events)
	sub, unsub := s.geobus.Subscribe(DeviceKey, subscriberBuffer)
	go s.processLocationUpdates(ctx, sub)
	go orchestrator.Track(ctx, DeviceKey)
	go s.monitorSleep(ctx)

	sigChan := make(chan os.Signal, 1)
	s.SignalSrc.Notify(sigChan, syscall.SIGUSR1, syscall.SIGUSR2)
	go s.HandleSignals(ctx, sigChan)

	// Wait for the context to cancel
	<-ctx.Done()
	s.SignalSrc.Stop(sigChan)
	unsub()
	unsubEvents()
	return s.shutdownScheduler()
}

// UpdateSettings applies new session settings. A changed location check interval also
// reschedules the sampling job.
func (s *Service) UpdateSettings(ctx context.Context, settings session.Settings) error {
	previous := s.session.Settings().LocationCheckInterval
	if err := s.session.UpdateSettings(settings); err != nil {
		return fmt.Errorf("failed to update session settings: %w", err)
	}
	interval := s.session.Settings().LocationCheckInterval

	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	if s.sampleJob == nil || interval == previous {
		return nil
	}
	job, err := s.scheduler.Update(s.sampleJob.ID(), gocron.DurationJob(interval), gocron.NewTask(s.sampleLocation),
		jobOptions(ctx, sampleJobName)...)
	if err != nil {
		return fmt.Errorf("failed to reschedule %s: %w", sampleJobName, err)
	}
	s.sampleJob = job
	s.logger.Debug("location sampling rescheduled", slog.Duration("interval", interval))
	return nil
}

func (s *Service) createScheduledJob(ctx context.Context, interval time.Duration, task func(context.Context),
	jobName string,
) (gocron.Job, error) {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		jobOptions(ctx, jobName)...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", jobName, err)
	}
	return job, nil
}

func jobOptions(ctx context.Context, jobName string) []gocron.JobOption {
	return []gocron.JobOption{
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(jobName),
	}
}

// shutdownScheduler stops the scheduler once. Later calls return the first result.
func (s *Service) shutdownScheduler() error {
	s.stopOnce.Do(func() {
		s.stopErr = s.scheduler.Shutdown()
		if s.stopErr != nil {
			s.logger.Error("failed to shut down scheduler", logger.Err(s.stopErr))
		}
	})
	return s.stopErr
}

// sampleLocation replays the next test route point in test mode and requests the current
// location otherwise.
func (s *Service) sampleLocation(ctx context.Context) {
	if s.session.Settings().TestMode {
		s.session.LogTestLocation(ctx)
		return
	}
	if _, err := s.session.RequestLocation(ctx); err != nil {
		s.logger.Debug("location sample failed", logger.Err(err))
	}
}

// locate asks gpsd for a fix and falls back to the best location the geobus has seen.
func (s *Service) locate(ctx context.Context) (geobus.Coordinate, error) {
	if s.gpsClient != nil {
		coord, err := s.gpsClient.Locate(ctx)
		if err == nil {
			return coord, nil
		}
		s.logger.Debug("gpsd location request failed, using geobus result", logger.Err(err))
	}
	best, ok := s.geobus.Best(DeviceKey)
	if !ok {
		return geobus.Coordinate{}, ErrNoLocation
	}
	return best.Coordinate(), nil
}

// processLocationUpdates feeds geolocation updates from the geobus into the session.
func (s *Service) processLocationUpdates(ctx context.Context, sub <-chan geobus.Result) {
	for {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-sub:
			if !ok {
				return
			}
			s.logger.Debug("received geolocation update",
				slog.Float64("lat", r.Lat), slog.Float64("lon", r.Lon), slog.String("source", r.Source))
			s.session.HandleLocation(ctx, r.Coordinate())
		}
	}
}

// processSessionEvents prints appended log entries and logs address changes.
func (s *Service) processSessionEvents(ctx context.Context, events <-chan session.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			switch event.Type {
			case session.EventAddressChanged:
				s.logger.Info("address changed", slog.String("address", event.Address.String()))
				s.logger.Debug("resolved address", slog.String("address", event.Address.JSON()))
			case session.EventLogEntryAppended:
				if err := s.presenter.PrintEntry(event.Entry); err != nil {
					s.logger.Error("failed to print log entry", logger.Err(err))
				}
			}
		}
	}
}
