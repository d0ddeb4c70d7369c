// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geobus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/wneessen/motoguide/internal/logger"
)

// Orchestrator runs a set of providers and publishes everything they emit to a GeoBus.
type Orchestrator struct {
	Bus       *GeoBus
	Providers []Provider
}

// Track runs all providers for the given key until ctx is cancelled.
func (o *Orchestrator) Track(ctx context.Context, key string) {
	var wg sync.WaitGroup
	for _, p := range o.Providers {
		wg.Go(func() {
			o.trackProvider(ctx, p, key)
		})
	}
	<-ctx.Done()
	wg.Wait()
}

// trackProvider keeps a provider stream open, restarting it with exponential backoff whenever
// the stream ends or could not be opened.
func (o *Orchestrator) trackProvider(ctx context.Context, p Provider, key string) {
	backoff := initialBackoff
	for {
		if ctx.Err() != nil {
			return
		}

		stream, err := o.safeLookup(ctx, p, key)
		if err != nil && o.Bus.logger != nil {
			o.Bus.logger.Error("location provider failed", slog.String("provider", p.Name()), logger.Err(err))
		}
		if stream != nil {
			for r := range stream {
				o.Bus.Publish(r)
				backoff = initialBackoff
			}
		}

		if !SleepOrDone(ctx, backoff) {
			return
		}
		backoff = nextBackoff(backoff)
	}
}

// safeLookup invokes LookupStream and turns a provider panic into an error.
func (o *Orchestrator) safeLookup(ctx context.Context, provider Provider, key string) (ch <-chan Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider %s panicked: %v", provider.Name(), r)
		}
	}()
	return provider.LookupStream(ctx, key), nil
}
