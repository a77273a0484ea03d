// Package config loads and normalises the site server configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/Its-donkey/gbpl-site/internal/ui/maploader"
)

const (
	defaultAddr            = "127.0.0.1"
	defaultPort            = ":4173"
	defaultAssetsDir       = "web"
	defaultSiteName        = "GBPL"
	defaultSiteDescription = "GBPL takes medical AI solutions abroad through validated global pilots."
	defaultLocale          = "ko"
	defaultMarkerLabel     = "GBPL HQ"
	defaultCenterLat       = 37.5665
	defaultCenterLng       = 126.9780
	placeholderMapsKey     = "YOUR_GOOGLE_MAPS_API_KEY_HERE"
	minZoom, maxZoom       = 1, 21
	defaultMetricsInterval = 60
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr   string `json:"addr"`
	Port   string `json:"port"`
	Listen string `json:"listen"`
}

// SiteConfig carries the public identity used in page metadata.
type SiteConfig struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PrimaryHost string `json:"primary_host"`
}

// AppConfig locates runtime assets and logs.
type AppConfig struct {
	Assets        string `json:"assets"`
	Logs          string `json:"logs"`
	DefaultLocale string `json:"default_locale"`
}

// MapsConfig configures the contact map. A blank APIKey is valid and makes
// every map render the static fallback.
type MapsConfig struct {
	APIKey      string           `json:"api_key"`
	Mode        string           `json:"mode"`
	ScriptBase  string           `json:"script_base"`
	Center      maploader.LatLng `json:"center"`
	Zoom        int              `json:"zoom"`
	MarkerLabel string           `json:"marker_label"`
}

// TelemetryConfig switches on metric export. Metrics are written as JSON to
// metrics.log in the log directory, or to stdout without one.
type TelemetryConfig struct {
	Metrics         bool `json:"metrics"`
	IntervalSeconds int  `json:"interval_seconds"`
}

// Config represents the runtime settings parsed from config.json and the
// environment.
type Config struct {
	Server    ServerConfig    `json:"server"`
	Site      SiteConfig      `json:"site"`
	App       AppConfig       `json:"app"`
	Maps      MapsConfig      `json:"maps"`
	Telemetry TelemetryConfig `json:"telemetry"`
}

// envConfig lists the environment fallbacks. Each one fills its field only
// when the config file leaves it blank.
type envConfig struct {
	MapsAPIKey    string `env:"GBPL_MAPS_API_KEY"`
	Listen        string `env:"GBPL_LISTEN"`
	MapMode       string `env:"GBPL_MAP_MODE"`
	LogDir        string `env:"GBPL_LOG_DIR"`
	DefaultLocale string `env:"GBPL_DEFAULT_LOCALE"`
	Metrics       bool   `env:"GBPL_METRICS"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: defaultAddr, Port: defaultPort},
		Site:   SiteConfig{Name: defaultSiteName, Description: defaultSiteDescription},
		App:    AppConfig{Assets: defaultAssetsDir, DefaultLocale: defaultLocale},
		Maps: MapsConfig{
			Mode:        string(maploader.ModeAuto),
			Center:      maploader.LatLng{Lat: defaultCenterLat, Lng: defaultCenterLng},
			Zoom:        maploader.DefaultZoom,
			MarkerLabel: defaultMarkerLabel,
		},
		Telemetry: TelemetryConfig{IntervalSeconds: defaultMetricsInterval},
	}
}

// Load reads the JSON config at path, applies environment fallbacks and
// defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	var cfg Config
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := json.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("decode config: %w", err)
			}
		}
	}

	var fromEnv envConfig
	if err := env.Parse(&fromEnv); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.applyEnv(fromEnv)
	cfg.applyDefaults()

	if _, err := maploader.ParseMode(cfg.Maps.Mode); err != nil {
		return Config{}, fmt.Errorf("maps config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(e envConfig) {
	key := strings.TrimSpace(c.Maps.APIKey)
	if key == "" || key == placeholderMapsKey {
		c.Maps.APIKey = strings.TrimSpace(e.MapsAPIKey)
	}
	if strings.TrimSpace(c.Server.Listen) == "" {
		c.Server.Listen = strings.TrimSpace(e.Listen)
	}
	if strings.TrimSpace(c.Maps.Mode) == "" {
		c.Maps.Mode = strings.TrimSpace(e.MapMode)
	}
	if strings.TrimSpace(c.App.Logs) == "" {
		c.App.Logs = strings.TrimSpace(e.LogDir)
	}
	if strings.TrimSpace(c.App.DefaultLocale) == "" {
		c.App.DefaultLocale = strings.TrimSpace(e.DefaultLocale)
	}
	if !c.Telemetry.Metrics {
		c.Telemetry.Metrics = e.Metrics
	}
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Server.Port == "" {
		c.Server.Port = def.Server.Port
	}
	if c.Site.Name == "" {
		c.Site.Name = def.Site.Name
	}
	if c.Site.Description == "" {
		c.Site.Description = def.Site.Description
	}
	if c.App.Assets == "" {
		c.App.Assets = def.App.Assets
	}
	if c.App.DefaultLocale == "" {
		c.App.DefaultLocale = def.App.DefaultLocale
	}
	if strings.TrimSpace(c.Maps.APIKey) == placeholderMapsKey {
		c.Maps.APIKey = ""
	}
	if c.Maps.Mode == "" {
		c.Maps.Mode = def.Maps.Mode
	}
	if c.Maps.Center == (maploader.LatLng{}) {
		c.Maps.Center = def.Maps.Center
	}
	if c.Maps.Zoom < minZoom || c.Maps.Zoom > maxZoom {
		c.Maps.Zoom = def.Maps.Zoom
	}
	if strings.TrimSpace(c.Maps.MarkerLabel) == "" {
		c.Maps.MarkerLabel = def.Maps.MarkerLabel
	}
	if c.Telemetry.IntervalSeconds <= 0 {
		c.Telemetry.IntervalSeconds = def.Telemetry.IntervalSeconds
	}
}

// ListenAddr returns the address the server binds to. An explicit listen
// value wins over addr and port.
func (c Config) ListenAddr() string {
	if listen := strings.TrimSpace(c.Server.Listen); listen != "" {
		return listen
	}
	addr := strings.TrimSpace(c.Server.Addr)
	port := strings.TrimSpace(c.Server.Port)
	if port != "" && !strings.HasPrefix(port, ":") {
		return addr + ":" + port
	}
	return addr + port
}

// MetricsInterval is the export period for metrics.
func (c Config) MetricsInterval() time.Duration {
	if c.Telemetry.IntervalSeconds <= 0 {
		return defaultMetricsInterval * time.Second
	}
	return time.Duration(c.Telemetry.IntervalSeconds) * time.Second
}

// MapMode returns the parsed map mode.
func (c Config) MapMode() maploader.Mode {
	mode, err := maploader.ParseMode(c.Maps.Mode)
	if err != nil {
		return maploader.ModeAuto
	}
	return mode
}

// MapCredential is the credential handed to the loader under the configured
// mode. It is blank in vector mode or when no key is configured.
func (c Config) MapCredential() string {
	return c.MapMode().Credential(c.Maps.APIKey)
}
