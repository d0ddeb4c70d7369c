// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/bep/debounce"
	"github.com/godbus/dbus/v5"

	"github.com/wneessen/motoguide/internal/geobus"
	"github.com/wneessen/motoguide/internal/logger"
	"github.com/wneessen/motoguide/internal/speech"
)

const (
	dbusInterface   = "org.freedesktop.login1.Manager"
	dbusWatchMember = "PrepareForSleep"

	debounceWindow   = 2 * time.Second
	signalBufferSize = 8

	busReconnectDelay   = 5 * time.Second
	reconnectDelay      = 2 * time.Second
	subscribeRetryDelay = 10 * time.Second
)

// monitorSleepResume watches logind sleep and resume signals and turns them into speech
// interruptions. It reconnects to the system bus until ctx is cancelled.
func (s *Service) monitorSleepResume(ctx context.Context) {
	resume := debounce.New(debounceWindow)

	for {
		conn := s.connectToSystemBus(ctx)
		if conn == nil {
			return // the context was cancelled, exit
		}

		// try to reconnect or exit if we can't if the context was cancelled
		if !s.setupSleepMonitoring(ctx, conn) {
			continue
		}

		sigCh := make(chan *dbus.Signal, signalBufferSize)
		conn.Signal(sigCh)
		s.logger.Debug("subscribed to dbus signal", slog.String("interface", dbusInterface),
			slog.String("member", dbusWatchMember))

		s.handleSleepSignals(ctx, sigCh, resume)

		// Clean up before reconnect
		conn.RemoveSignal(sigCh)
		if err := conn.Close(); err != nil {
			s.logger.Error("failed to close system bus connection", logger.Err(err))
		}

		if !geobus.SleepOrDone(ctx, reconnectDelay) {
			return
		}
	}
}

// connectToSystemBus connects to the system bus, retrying until ctx is cancelled. The
// connection is closed once ctx is done.
func (s *Service) connectToSystemBus(ctx context.Context) *dbus.Conn {
	for {
		conn, err := dbus.ConnectSystemBus()
		if err != nil {
			s.logger.Debug("failed to connect to system bus", logger.Err(err))
			if !geobus.SleepOrDone(ctx, busReconnectDelay) {
				return nil
			}
			continue
		}

		context.AfterFunc(ctx, func() {
			if err := conn.Close(); err != nil {
				s.logger.Error("failed to close system bus connection", logger.Err(err))
			}
		})

		return conn
	}
}

func (s *Service) setupSleepMonitoring(ctx context.Context, conn *dbus.Conn) bool {
	if err := conn.AddMatchSignal(dbus.WithMatchInterface(dbusInterface),
		dbus.WithMatchMember(dbusWatchMember),
	); err != nil {
		s.logger.Error("failed to subscribe to dbus signal", slog.String("interface", dbusInterface),
			slog.String("member", dbusWatchMember), logger.Err(err))
		if err = conn.Close(); err != nil {
			s.logger.Error("failed to close system bus connection", logger.Err(err))
		}
		geobus.SleepOrDone(ctx, subscribeRetryDelay)
		return false
	}
	return true
}

func (s *Service) handleSleepSignals(ctx context.Context, sigCh chan *dbus.Signal, resume func(func())) {
	for {
		select {
		case <-ctx.Done():
			return
		case sgn, ok := <-sigCh:
			if !ok {
				// connection likely closed; try to reconnect
				return
			}
			s.processSleepSignal(ctx, sgn, resume)
		}
	}
}

// processSleepSignal stops speech right away when the system goes to sleep. Resume events are
// debounced and repeat the last known address.
func (s *Service) processSleepSignal(ctx context.Context, sgn *dbus.Signal, resume func(func())) {
	if len(sgn.Body) != 1 {
		return
	}
	sleeping, ok := sgn.Body[0].(bool)
	if !ok {
		return
	}
	if sleeping {
		s.session.HandleInterruption(ctx, speech.Interruption{Type: speech.InterruptionBegan})
		return
	}
	resume(func() {
		if ctx.Err() != nil {
			return
		}
		s.logger.Debug("resuming from sleep")
		s.session.HandleInterruption(ctx, speech.Interruption{Type: speech.InterruptionEnded, ShouldResume: true})
	})
}
