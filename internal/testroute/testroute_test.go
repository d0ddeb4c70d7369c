// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package testroute

import (
	"testing"
)

func TestReplayer_Next(t *testing.T) {
	t.Run("12th call returns the first point", func(t *testing.T) {
		replayer := &Replayer{}
		first := replayer.Next()
		for i := 1; i < replayer.Len(); i++ {
			replayer.Next()
		}
		if twelfth := replayer.Next(); twelfth != first {
			t.Errorf("expected 12th coordinate to be %s, got %s", first, twelfth)
		}
	})
	t.Run("route is replayed in order", func(t *testing.T) {
		replayer := &Replayer{}
		for cycle := 0; cycle < 3; cycle++ {
			for i, want := range route {
				if got := replayer.Next(); got != want {
					t.Errorf("cycle %d, point %d: expected %s, got %s", cycle, i, want, got)
				}
			}
		}
	})
	t.Run("all route points are valid", func(t *testing.T) {
		for i, coord := range route {
			if !coord.Valid() {
				t.Errorf("expected point %d to be valid, got %s", i, coord)
			}
		}
	})
}

func TestReplayer_Len(t *testing.T) {
	replayer := &Replayer{}
	if replayer.Len() != 11 {
		t.Errorf("expected route length to be 11, got %d", replayer.Len())
	}
}

func TestReplayer_Reset(t *testing.T) {
	replayer := &Replayer{}
	first := replayer.Next()
	replayer.Next()
	replayer.Next()
	replayer.Reset()
	if got := replayer.Next(); got != first {
		t.Errorf("expected first coordinate after reset, got %s", got)
	}
}
