// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package speech

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/wneessen/motoguide/internal/logger"
)

var britishEnglish = language.MustParse("en-GB")

func TestLogSpeaker(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	speaker := NewLogSpeaker(logger.NewLogger(slog.LevelInfo, buf))
	if err := speaker.Speak(t.Context(), "High Street, Lydney", britishEnglish); err != nil {
		t.Fatalf("failed to speak: %s", err)
	}
	speaker.Stop()
	if speaker.Speaking() {
		t.Error("expected log speaker to never be speaking")
	}
	if !slices.Equal(speaker.Spoken(), []string{"High Street, Lydney"}) {
		t.Errorf("expected spoken texts to be recorded, got %v", speaker.Spoken())
	}
	if !strings.Contains(buf.String(), `text="High Street, Lydney"`) {
		t.Errorf("expected announcement to be logged, got: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "language=en-GB") {
		t.Errorf("expected language to be logged, got: %s", buf.String())
	}
}

func TestInterruptionType_String(t *testing.T) {
	tests := []struct {
		typ  InterruptionType
		want string
	}{
		{InterruptionBegan, "began"},
		{InterruptionEnded, "ended"},
		{InterruptionType(99), "unknown"},
	}
	for _, tc := range tests {
		if tc.typ.String() != tc.want {
			t.Errorf("expected %q, got %q", tc.want, tc.typ.String())
		}
	}
}

func TestNewCommandSpeaker(t *testing.T) {
	t.Run("missing program fails", func(t *testing.T) {
		_, err := NewCommandSpeaker("this-tts-program-does-not-exist -v {voice}", testLogger())
		if !errors.Is(err, ErrNoVoice) {
			t.Errorf("expected error to be %s, got %s", ErrNoVoice, err)
		}
	})
	t.Run("empty command fails", func(t *testing.T) {
		_, err := NewCommandSpeaker("   ", testLogger())
		if !errors.Is(err, ErrNoVoice) {
			t.Errorf("expected error to be %s, got %s", ErrNoVoice, err)
		}
	})
	t.Run("existing program succeeds", func(t *testing.T) {
		requireProgram(t, "sh")
		speaker, err := NewCommandSpeaker("sh -c true", testLogger())
		if err != nil {
			t.Fatalf("failed to create speaker: %s", err)
		}
		if !slices.Equal(speaker.args, []string{"-c", "true"}) {
			t.Errorf("expected arguments to be parsed, got %v", speaker.args)
		}
	})
}

func TestCommandSpeaker_render(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"text appended", []string{"-v", "{voice}"}, []string{"-v", "en-gb", "--", "Lydney"}},
		{"text placeholder", []string{"--text={text}", "-l", "{voice}"}, []string{"--text=Lydney", "-l", "en-gb"}},
		{"no arguments", nil, []string{"--", "Lydney"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			speaker := newCommandSpeaker("espeak-ng", tc.args, testLogger())
			if got := speaker.render("Lydney", britishEnglish); !slices.Equal(got, tc.want) {
				t.Errorf("expected arguments %v, got %v", tc.want, got)
			}
		})
	}
	t.Run("text starting with a dash is not an option", func(t *testing.T) {
		speaker := newCommandSpeaker("espeak-ng", []string{"-v", "{voice}"}, testLogger())
		got := speaker.render("-5 degrees", britishEnglish)
		want := []string{"-v", "en-gb", "--", "-5 degrees"}
		if !slices.Equal(got, want) {
			t.Errorf("expected arguments %v, got %v", want, got)
		}
	})
}

func TestCommandSpeaker_Speak(t *testing.T) {
	sh := requireProgram(t, "sh")

	t.Run("utterance is passed to the program", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "spoken")
		speaker := newCommandSpeaker(sh, []string{"-c", `printf '%s' "$1" > ` + out, "sh", "{voice}: {text}"}, testLogger())
		if err := speaker.Speak(t.Context(), "High Street", britishEnglish); err != nil {
			t.Fatalf("failed to speak: %s", err)
		}
		speaker.Wait()
		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("failed to read program output: %s", err)
		}
		if string(data) != "en-gb: High Street" {
			t.Errorf("expected program to receive %q, got %q", "en-gb: High Street", string(data))
		}
		if speaker.Speaking() {
			t.Error("expected speaker to be idle after the program finished")
		}
	})
	t.Run("empty text is not spoken", func(t *testing.T) {
		speaker := newCommandSpeaker(sh, []string{"-c", "sleep 10", "{text}"}, testLogger())
		if err := speaker.Speak(t.Context(), "", britishEnglish); err != nil {
			t.Fatalf("failed to speak: %s", err)
		}
		if speaker.Speaking() {
			t.Error("expected empty text to not start the program")
		}
	})
	t.Run("canceled context is not spoken", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		speaker := newCommandSpeaker(sh, []string{"-c", "sleep 10", "{text}"}, testLogger())
		if err := speaker.Speak(ctx, "Lydney", britishEnglish); !errors.Is(err, context.Canceled) {
			t.Errorf("expected error to be %s, got %s", context.Canceled, err)
		}
	})
	t.Run("stop ends the utterance", func(t *testing.T) {
		speaker := newCommandSpeaker(sh, []string{"-c", "sleep 10", "{text}"}, testLogger())
		if err := speaker.Speak(t.Context(), "Lydney", britishEnglish); err != nil {
			t.Fatalf("failed to speak: %s", err)
		}
		if !speaker.Speaking() {
			t.Fatal("expected speaker to be speaking")
		}
		start := time.Now()
		speaker.Stop()
		if speaker.Speaking() {
			t.Error("expected speaker to be idle after stop")
		}
		if time.Since(start) > time.Second*5 {
			t.Error("expected stop to kill the program")
		}
	})
	t.Run("new utterance replaces the current one", func(t *testing.T) {
		speaker := newCommandSpeaker(sh, []string{"-c", "sleep 10", "{text}"}, testLogger())
		if err := speaker.Speak(t.Context(), "Lydney", britishEnglish); err != nil {
			t.Fatalf("failed to speak: %s", err)
		}
		speaker.mu.Lock()
		first := speaker.cmd
		speaker.mu.Unlock()
		if err := speaker.Speak(t.Context(), "Aylburton", britishEnglish); err != nil {
			t.Fatalf("failed to speak: %s", err)
		}
		if first.ProcessState == nil {
			t.Error("expected first utterance to be stopped")
		}
		speaker.Stop()
	})
	t.Run("failing program start", func(t *testing.T) {
		speaker := newCommandSpeaker(filepath.Join(t.TempDir(), "missing"), nil, testLogger())
		if err := speaker.Speak(t.Context(), "Lydney", britishEnglish); err == nil {
			t.Error("expected speak to fail for a missing program")
		}
	})
}

func requireProgram(t *testing.T, name string) string {
	t.Helper()
	path, err := exec.LookPath(name)
	if err != nil {
		t.Skipf("%s not available, skipping", name)
	}
	return path
}

func testLogger() *logger.Logger {
	return logger.NewLogger(slog.LevelDebug, bytes.NewBuffer(nil))
}
