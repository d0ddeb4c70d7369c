// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/wneessen/motoguide/internal/config"
	"github.com/wneessen/motoguide/internal/geobus"
	"github.com/wneessen/motoguide/internal/geobus/provider/geolocation_file"
	"github.com/wneessen/motoguide/internal/geobus/provider/gpsd"
	"github.com/wneessen/motoguide/internal/geobus/provider/ichnaea"
	"github.com/wneessen/motoguide/internal/geocode"
	geocodeearth "github.com/wneessen/motoguide/internal/geocode/provider/geocode-earth"
	"github.com/wneessen/motoguide/internal/geocode/provider/opencage"
	nominatim "github.com/wneessen/motoguide/internal/geocode/provider/osm-nominatim"
	"github.com/wneessen/motoguide/internal/http"
	"github.com/wneessen/motoguide/internal/logger"
	"github.com/wneessen/motoguide/internal/speech"
)

func (s *Service) selectGeobusProviders() ([]geobus.Provider, error) {
	httpClient := http.New(s.logger)
	var provider []geobus.Provider

	if !s.config.GeoLocation.DisableGeolocationFile {
		provider = append(provider, geolocation_file.NewGeolocationFileProvider(s.config.GeoLocation.File))
	}

	if !s.config.GeoLocation.DisableGPSD {
		provider = append(provider, gpsd.NewGeolocationGPSDProvider(s.config.GeoLocation.GPSDHost,
			s.config.GeoLocation.GPSDPort, s.logger))
	}

	if !s.config.GeoLocation.DisableICHNAEA {
		mls, err := ichnaea.NewGeolocationICHNAEAProvider(httpClient, s.logger)
		if err != nil {
			s.logger.Error("failed to create ICHNAEA provider", logger.Err(err))
		} else {
			provider = append(provider, mls)
		}
	}
	if len(provider) == 0 {
		return nil, fmt.Errorf("no geolocation providers enabled")
	}

	return provider, nil
}

func (s *Service) selectGeocodeProvider(conf *config.Config, log *logger.Logger, lang language.Tag) (geocode.Geocoder, error) {
	var geocoder geocode.Geocoder

	switch strings.ToLower(conf.Geocoder.Provider) {
	case config.ProviderNominatim:
		geocoder = geocode.NewCachedGeocoder(nominatim.New(http.New(log), lang), cacheHitTTL, cacheMissTTL)
	case config.ProviderOpenCage:
		if conf.Geocoder.APIKey == "" {
			return nil, fmt.Errorf("opencage geocoder requires an API key")
		}
		geocoder = geocode.NewCachedGeocoder(opencage.New(http.New(log), lang, conf.Geocoder.APIKey),
			cacheHitTTL, cacheMissTTL)
	case config.ProviderGeocodeEarth:
		if conf.Geocoder.APIKey == "" {
			return nil, fmt.Errorf("geocode-earth geocoder requires an API key")
		}
		geocoder = geocode.NewCachedGeocoder(geocodeearth.New(http.New(log), lang, conf.Geocoder.APIKey),
			cacheHitTTL, cacheMissTTL)
	default:
		return nil, fmt.Errorf("unsupported geocoder type: %s", conf.Geocoder.Provider)
	}

	return geocoder, nil
}

// selectSpeaker returns the external TTS command speaker. Announcements are only logged if
// speech is disabled or the command is not installed.
func (s *Service) selectSpeaker() speech.Speaker {
	if s.config.Speech.Disable {
		return speech.NewLogSpeaker(s.logger)
	}
	speaker, err := speech.NewCommandSpeaker(s.config.Speech.Command, s.logger)
	if err != nil {
		if errors.Is(err, speech.ErrNoVoice) {
			s.logger.Warn("speech command not available, announcements are logged only", logger.Err(err))
		} else {
			s.logger.Error("failed to create speech command", logger.Err(err))
		}
		return speech.NewLogSpeaker(s.logger)
	}
	return speaker
}
