// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/wneessen/motoguide/internal/logger"
	"github.com/wneessen/motoguide/internal/session"
)

type signalSource interface {
	Notify(c chan<- os.Signal, sig ...os.Signal)
	Stop(c chan<- os.Signal)
}

// stdLibSignalSource is the production implementation.
type stdLibSignalSource struct{}

func (stdLibSignalSource) Notify(c chan<- os.Signal, sig ...os.Signal) {
	signal.Notify(c, sig...)
}

func (stdLibSignalSource) Stop(c chan<- os.Signal) {
	signal.Stop(c)
}

// HandleSignals runs the Log action on SIGUSR1 and toggles test mode on SIGUSR2.
func (s *Service) HandleSignals(ctx context.Context, sigChan chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigChan:
			switch sig {
			case syscall.SIGUSR1:
				s.logLocation(ctx)
			case syscall.SIGUSR2:
				enabled := s.session.ToggleTestMode()
				s.logger.Info("test mode toggled", slog.Bool("enabled", enabled))
				if err := s.presenter.PrintTestMode(enabled); err != nil {
					s.logger.Error("failed to print test mode status", logger.Err(err))
				}
			}
		}
	}
}

func (s *Service) logLocation(ctx context.Context) {
	_, err := s.session.Log(ctx)
	if err != nil && !errors.Is(err, session.ErrNotAvailable) {
		s.logger.Error("failed to log location", logger.Err(err))
	}
}
