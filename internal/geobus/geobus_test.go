// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geobus

import (
	"context"
	"testing"
	"testing/synctest"
)

func TestGeolocationState_HasChanged(t *testing.T) {
	t.Run("empty state always returns true", func(t *testing.T) {
		state := GeolocationState{}
		if !state.HasChanged(Coordinate{Lat: 1, Lon: 1, Acc: AccuracyZip}) {
			t.Error("expected state to have changed")
		}
	})
	t.Run("same coordinate return false", func(t *testing.T) {
		state := GeolocationState{}
		state.Update(Coordinate{Lat: 1, Lon: 1, Acc: AccuracyZip})
		if state.HasChanged(Coordinate{Lat: 1, Lon: 1, Acc: AccuracyZip}) {
			t.Error("expected state to not have changed")
		}
	})
	t.Run("different coordinate return true", func(t *testing.T) {
		tests := []struct {
			name    string
			lat     float64
			lon     float64
			acc     float64
			changed bool
		}{
			{"lat changes", 2, 1, AccuracyZip, true},
			{"lon changes", 1, 2, AccuracyZip, true},
			// an accuracy change is not considered a significant positional change
			{"acc changes", 1, 1, AccuracyCity, false},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				state := GeolocationState{}
				state.Update(Coordinate{Lat: 1, Lon: 1, Acc: AccuracyZip})
				if state.HasChanged(Coordinate{Lat: tc.lat, Lon: tc.lon, Acc: tc.acc}) != tc.changed {
					t.Error("expected state change to be", tc.changed, "but it wasn't")
				}
			})
		}
	})
}

func TestCoordinate_DistanceTo(t *testing.T) {
	t.Run("same coordinate has zero distance", func(t *testing.T) {
		c := Coordinate{Lat: 51.6451, Lon: -2.6660}
		if d := c.DistanceTo(c); d != 0 {
			t.Errorf("expected distance to be 0, got %f", d)
		}
	})
	t.Run("one degree of latitude is roughly 111km", func(t *testing.T) {
		a := Coordinate{Lat: 1, Lon: 1}
		b := Coordinate{Lat: 2, Lon: 1}
		d := a.DistanceTo(b)
		if d < 110000 || d > 112500 {
			t.Errorf("expected distance to be about 111km, got %f", d)
		}
	})
}

func TestCoordinate_Valid(t *testing.T) {
	tests := []struct {
		name  string
		coord Coordinate
		valid bool
	}{
		{"equator", Coordinate{}, true},
		{"north east", Coordinate{Lat: 90, Lon: 180}, true},
		{"latitude too large", Coordinate{Lat: 91}, false},
		{"longitude too small", Coordinate{Lon: -181}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.coord.Valid() != tc.valid {
				t.Errorf("expected valid to be %t", tc.valid)
			}
		})
	}
}

func TestGeoBus_Publish(t *testing.T) {
	t.Run("first result is broadcast", func(t *testing.T) {
		bus := New(nil)
		sub, unsub := bus.Subscribe("test", 4)
		defer unsub()

		bus.Publish(Result{Key: "test", Lat: 1, Lon: 1, AccuracyMeters: 10, Source: "a"})
		select {
		case r := <-sub:
			if r.Lat != 1 || r.Lon != 1 {
				t.Errorf("unexpected result: %+v", r)
			}
		default:
			t.Fatal("expected a result to be broadcast")
		}
	})
	t.Run("results without accuracy are ignored", func(t *testing.T) {
		bus := New(nil)
		bus.Publish(Result{Key: "test", Lat: 1, Lon: 1})
		if _, ok := bus.Best("test"); ok {
			t.Error("expected no best result")
		}
	})
	t.Run("insignificant movement is not broadcast", func(t *testing.T) {
		bus := New(nil)
		sub, unsub := bus.Subscribe("test", 4)
		defer unsub()

		bus.Publish(Result{Key: "test", Lat: 51.645541, Lon: -2.665913, AccuracyMeters: 10, Source: "a"})
		bus.Publish(Result{Key: "test", Lat: 51.645542, Lon: -2.665913, AccuracyMeters: 10, Source: "a"})
		if len(sub) != 1 {
			t.Errorf("expected exactly one broadcast, got %d", len(sub))
		}
	})
	t.Run("a moving position with same accuracy is broadcast", func(t *testing.T) {
		bus := New(nil)
		sub, unsub := bus.Subscribe("test", 4)
		defer unsub()

		bus.Publish(Result{Key: "test", Lat: 51.645541, Lon: -2.665913, AccuracyMeters: 10, Source: "a"})
		bus.Publish(Result{Key: "test", Lat: 51.644181, Lon: -2.662251, AccuracyMeters: 10, Source: "a"})
		if len(sub) != 2 {
			t.Errorf("expected two broadcasts, got %d", len(sub))
		}
		best, ok := bus.Best("test")
		if !ok {
			t.Fatal("expected a best result")
		}
		if best.Lat != 51.644181 {
			t.Errorf("expected best latitude to be updated, got %f", best.Lat)
		}
	})
	t.Run("subscribing late delivers the best result", func(t *testing.T) {
		bus := New(nil)
		bus.Publish(Result{Key: "test", Lat: 1, Lon: 1, AccuracyMeters: 10, Source: "a"})
		sub, unsub := bus.Subscribe("test", 1)
		defer unsub()
		if len(sub) != 1 {
			t.Error("expected best result to be delivered on subscribe")
		}
	})
	t.Run("unsubscribe closes the channel", func(t *testing.T) {
		bus := New(nil)
		sub, unsub := bus.Subscribe("test", 1)
		unsub()
		unsub()
		if _, ok := <-sub; ok {
			t.Error("expected channel to be closed")
		}
	})
}

func TestOrchestrator_Track(t *testing.T) {
	t.Run("results of all providers are published", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			ctx, cancel := context.WithCancel(t.Context())
			bus := New(nil)
			sub, unsub := bus.Subscribe("test", 4)
			defer unsub()

			orch := bus.NewOrchestrator([]Provider{
				&staticProvider{name: "static", result: Result{Lat: 1, Lon: 1, AccuracyMeters: 10}},
				&panicProvider{},
			})
			go orch.Track(ctx, "test")
			synctest.Wait()

			if len(sub) != 1 {
				t.Errorf("expected one published result, got %d", len(sub))
			}
			cancel()
			synctest.Wait()
		})
	})
}

type (
	staticProvider struct {
		name   string
		result Result
	}
	panicProvider struct{}
)

func (p *staticProvider) Name() string { return p.name }

func (p *staticProvider) LookupStream(ctx context.Context, key string) <-chan Result {
	out := make(chan Result, 1)
	r := p.result
	r.Key = key
	r.Source = p.name
	out <- r
	go func() {
		<-ctx.Done()
		close(out)
	}()
	return out
}

func (p *panicProvider) Name() string { return "panic" }

func (p *panicProvider) LookupStream(context.Context, string) <-chan Result {
	panic("intentionally panicking")
}
