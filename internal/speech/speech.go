// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package speech renders announcements as audio.
package speech

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/text/language"

	"github.com/wneessen/motoguide/internal/logger"
)

// ErrNoVoice is returned when no speech synthesizer is available.
var ErrNoVoice = errors.New("no speech voice available")

// Speaker renders text as speech. Speak returns once the utterance has been started, it does not
// wait for it to finish.
type Speaker interface {
	Speak(ctx context.Context, text string, lang language.Tag) error
	Stop()
	Speaking() bool
}

// InterruptionType tells whether an interruption of the audio output began or ended.
type InterruptionType int

const (
	InterruptionBegan InterruptionType = iota
	InterruptionEnded
)

func (t InterruptionType) String() string {
	switch t {
	case InterruptionBegan:
		return "began"
	case InterruptionEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Interruption notifies about audio output being taken away and given back. ShouldResume is
// only meaningful for ended interruptions.
type Interruption struct {
	Type         InterruptionType
	ShouldResume bool
}

// LogSpeaker writes announcements to the log instead of speaking them.
type LogSpeaker struct {
	logger *logger.Logger

	mu     sync.Mutex
	spoken []string
}

func NewLogSpeaker(log *logger.Logger) *LogSpeaker {
	return &LogSpeaker{logger: log}
}

func (s *LogSpeaker) Speak(_ context.Context, text string, lang language.Tag) error {
	s.mu.Lock()
	s.spoken = append(s.spoken, text)
	s.mu.Unlock()
	s.logger.Info("announcement", slog.String("text", text), slog.String("language", lang.String()))
	return nil
}

func (s *LogSpeaker) Stop() {}

func (s *LogSpeaker) Speaking() bool {
	return false
}

// Spoken returns all texts passed to Speak so far.
func (s *LogSpeaker) Spoken() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.spoken...)
}
