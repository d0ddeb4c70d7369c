// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"golang.org/x/text/language"

	"github.com/wneessen/motoguide/internal/logger"
)

const (
	PlaceholderText  = "{text}"
	PlaceholderVoice = "{voice}"

	DefaultCommand = "espeak-ng -v {voice}"
)

// CommandSpeaker speaks by running an external text-to-speech program. The command line may
// contain {voice} and {text} placeholders. Without a {text} placeholder the text is appended as
// the last argument, after a "--" so it is never parsed as an option. A new utterance stops
// the one currently playing.
type CommandSpeaker struct {
	path   string
	args   []string
	logger *logger.Logger

	speakMu sync.Mutex
	mu      sync.Mutex
	cmd     *exec.Cmd
	done    chan struct{}
}

// NewCommandSpeaker parses command and looks up its program in PATH. A missing program
// yields ErrNoVoice.
func NewCommandSpeaker(command string, log *logger.Logger) (*CommandSpeaker, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty speech command", ErrNoVoice)
	}
	path, err := exec.LookPath(fields[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoVoice, err)
	}
	return newCommandSpeaker(path, fields[1:], log), nil
}

func newCommandSpeaker(path string, args []string, log *logger.Logger) *CommandSpeaker {
	return &CommandSpeaker{path: path, args: args, logger: log}
}

func (s *CommandSpeaker) Speak(ctx context.Context, text string, lang language.Tag) error {
	if text == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.speakMu.Lock()
	defer s.speakMu.Unlock()
	s.Stop()

	// the utterance outlives the caller's context, Stop ends it
	cmd := exec.Command(s.path, s.render(text, lang)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start speech command: %w", err)
	}
	done := make(chan struct{})

	s.mu.Lock()
	s.cmd = cmd
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		err := cmd.Wait()
		s.mu.Lock()
		if s.cmd == cmd {
			s.cmd = nil
		}
		s.mu.Unlock()

		var exitErr *exec.ExitError
		if err != nil && !(errors.As(err, &exitErr) && !exitErr.Exited()) {
			s.logger.Warn("speech command failed", logger.Err(err), slog.String("command", s.path))
		}
	}()
	return nil
}

// Stop kills the utterance currently playing and waits for the program to exit.
func (s *CommandSpeaker) Stop() {
	s.mu.Lock()
	cmd, done := s.cmd, s.done
	s.mu.Unlock()
	if cmd == nil {
		return
	}
	if err := cmd.Process.Kill(); err != nil {
		s.logger.Debug("failed to stop speech command", logger.Err(err))
	}
	<-done
}

func (s *CommandSpeaker) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cmd != nil
}

// Wait blocks until the current utterance finished.
func (s *CommandSpeaker) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (s *CommandSpeaker) render(text string, lang language.Tag) []string {
	voice := strings.ToLower(lang.String())
	args := make([]string, 0, len(s.args)+2)
	hasText := false
	for _, arg := range s.args {
		if strings.Contains(arg, PlaceholderText) {
			hasText = true
		}
		arg = strings.ReplaceAll(arg, PlaceholderVoice, voice)
		arg = strings.ReplaceAll(arg, PlaceholderText, text)
		args = append(args, arg)
	}
	if !hasText {
		args = append(args, "--", text)
	}
	return args
}
