// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kkyr/fig"
	"golang.org/x/text/language"

	"github.com/wneessen/motoguide/internal/announce"
	"github.com/wneessen/motoguide/internal/ratelimit"
)

const (
	configEnv       = "MOTOGUIDE"
	DefaultEntryTpl = `{{pad (loc "Timestamp") 10}} {{localizedTime .Timestamp}}` + "\n" +
		`{{pad (loc "Location") 10}} {{floatFormat .Coordinate.Lat 6}}, {{floatFormat .Coordinate.Lon 6}}` + "\n" +
		`{{pad (loc "Street") 10}} {{.Address.Street}}` + "\n" +
		`{{pad (loc "Town") 10}} {{.Address.Town}}` + "\n" +
		`{{pad (loc "County") 10}} {{.Address.County}}` + "\n" +
		`{{pad (loc "Country") 10}} {{.Address.AdministrativeArea}}` + "\n"

	ProviderNominatim    = "osm-nominatim"
	ProviderOpenCage     = "opencage"
	ProviderGeocodeEarth = "geocode-earth"
)

var ErrMissingAPIKey = errors.New("geocoder requires an API key")

// Config represents the application's configuration structure.
type Config struct {
	Locale   string     `fig:"locale"`
	LogLevel slog.Level `fig:"loglevel" default:"0"`
	LogFile  string     `fig:"logfile"`
	TestMode bool       `fig:"test_mode"`

	Intervals struct {
		// Allowed values: 1s, 2s, 5s, 10s, 15s, 30s, 1m, 2m, 5m
		LocationCheck time.Duration `fig:"location_check" default:"10s"`
	} `fig:"intervals"`

	Announce struct {
		SpeakEveryGeocode bool `fig:"speak_every_geocode"`
		SuppressUnchanged struct {
			Street             bool `fig:"street"`
			Town               bool `fig:"town"`
			County             bool `fig:"county"`
			AdministrativeArea bool `fig:"administrative_area"`
		} `fig:"suppress_unchanged"`
	} `fig:"announce"`

	Speech struct {
		Disable  bool   `fig:"disable"`
		Command  string `fig:"command" default:"espeak-ng -v {voice}"`
		Language string `fig:"language" default:"en-GB"`
	} `fig:"speech"`

	Templates struct {
		Entry string `fig:"entry"`
	} `fig:"templates"`

	GeoLocation struct {
		File                   string `fig:"file"`
		GPSDHost               string `fig:"gpsd_host" default:"localhost"`
		GPSDPort               string `fig:"gpsd_port" default:"2947"`
		DisableGPSD            bool   `fig:"disable_gpsd"`
		DisableGeolocationFile bool   `fig:"disable_geolocation_file"`
		DisableICHNAEA         bool   `fig:"disable_ichnaea"`
	} `fig:"geolocation"`

	Geocoder struct {
		// Allowed values: osm-nominatim, opencage
		Provider string `fig:"provider" default:"osm-nominatim"`
		APIKey   string `fig:"apikey"`
	} `fig:"geocoder"`
}

func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func (c *Config) Validate() error {
	if c.Locale == "" {
		c.Locale = getLocale()
	}
	if !ratelimit.ValidInterval(c.Intervals.LocationCheck) {
		return fmt.Errorf("%w: %s", ratelimit.ErrInvalidInterval, c.Intervals.LocationCheck)
	}
	switch c.Geocoder.Provider {
	case ProviderNominatim:
	case ProviderOpenCage, ProviderGeocodeEarth:
		if c.Geocoder.APIKey == "" {
			return fmt.Errorf("%w: %s", ErrMissingAPIKey, c.Geocoder.Provider)
		}
	default:
		return fmt.Errorf("invalid geocoder provider: %s", c.Geocoder.Provider)
	}
	if _, err := language.Parse(c.Speech.Language); err != nil {
		return fmt.Errorf("invalid speech language %q: %w", c.Speech.Language, err)
	}
	if c.Templates.Entry == "" {
		c.Templates.Entry = DefaultEntryTpl
	}
	if c.GeoLocation.File == "" {
		home, _ := os.UserHomeDir()
		c.GeoLocation.File = filepath.Join(home, ".config", "motoguide", "geolocation")
	}

	return nil
}

// AnnouncementSettings translates the suppress flags into the repeat flags of the change detector.
func (c *Config) AnnouncementSettings() announce.Settings {
	return announce.Settings{
		RepeatStreet:             !c.Announce.SuppressUnchanged.Street,
		RepeatTown:               !c.Announce.SuppressUnchanged.Town,
		RepeatCounty:             !c.Announce.SuppressUnchanged.County,
		RepeatAdministrativeArea: !c.Announce.SuppressUnchanged.AdministrativeArea,
	}
}

// SpeechLanguage returns the parsed speech language. Validate guarantees it parses.
func (c *Config) SpeechLanguage() language.Tag {
	tag, err := language.Parse(c.Speech.Language)
	if err != nil {
		return language.BritishEnglish
	}
	return tag
}

func getLocale() string {
	locale := os.Getenv("LC_MESSAGES")
	if idx := strings.Index(locale, "."); idx != -1 {
		lang := locale[:idx]
		return strings.ReplaceAll(lang, "_", "-")
	}
	return locale
}
