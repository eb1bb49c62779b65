// Package config holds the map, API and UI settings shared by every component.
package config

import (
	"fmt"
	"math"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config is the full service configuration, read from the environment.
type Config struct {
	Map    MapConfig
	API    APIConfig
	Search SearchConfig
	Data   DataConfig
	UI     UIConfig
	Server ServerConfig
}

// MapConfig describes the initial map view and tile source.
type MapConfig struct {
	CenterLat   float64 `env:"WM_MAP_CENTER_LAT" envDefault:"39.8283"`
	CenterLng   float64 `env:"WM_MAP_CENTER_LNG" envDefault:"-98.5795"`
	Zoom        int     `env:"WM_MAP_ZOOM" envDefault:"4"`
	MinZoom     int     `env:"WM_MAP_MIN_ZOOM" envDefault:"3"`
	MaxZoom     int     `env:"WM_MAP_MAX_ZOOM" envDefault:"18"`
	TileURL     string  `env:"WM_MAP_TILE_URL" envDefault:"https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"`
	Attribution string  `env:"WM_MAP_ATTRIBUTION" envDefault:"&copy; OpenStreetMap contributors"`

	// FitPadding is the pixel padding used whenever the viewport is fit to markers.
	FitPadding int `env:"WM_MAP_FIT_PADDING" envDefault:"50"`
	// FocusZoom is used when a single property row is selected.
	FocusZoom int `env:"WM_MAP_FOCUS_ZOOM" envDefault:"16"`
}

// APIConfig holds the RapidAPI credentials and endpoints.
type APIConfig struct {
	RapidAPIKey string `env:"RAPIDAPI_KEY"`

	GeocodeURL  string `env:"WM_GEOCODE_URL" envDefault:"https://maps-data.p.rapidapi.com/geocoding.php"`
	GeocodeHost string `env:"WM_GEOCODE_HOST" envDefault:"maps-data.p.rapidapi.com"`
	ListingURL  string `env:"WM_LISTING_URL" envDefault:"https://zillow-working-api.p.rapidapi.com/search/bycoordinates"`
	ListingHost string `env:"WM_LISTING_HOST" envDefault:"zillow-working-api.p.rapidapi.com"`

	Timeout  time.Duration `env:"WM_API_TIMEOUT" envDefault:"15s"`
	CacheTTL time.Duration `env:"WM_API_CACHE_TTL" envDefault:"5m"`
}

// SearchConfig tunes the search flow and the stored history.
type SearchConfig struct {
	RadiusMiles  float64 `env:"WM_SEARCH_RADIUS_MILES" envDefault:"0.5"`
	HistoryLimit int     `env:"WM_SEARCH_HISTORY_LIMIT" envDefault:"20"`
	RecentViews  int     `env:"WM_RECENT_VIEWS_LIMIT" envDefault:"10"`
}

// DataConfig locates the wealthy-individuals document.
// An empty Source selects the embedded sample document.
type DataConfig struct {
	Source string `env:"WM_DATASET"`
}

// UIConfig holds marker colors. WealthColors has one entry per wealth band,
// lowest band first.
type UIConfig struct {
	WealthColors []string `env:"WM_WEALTH_COLORS" envSeparator:"," envDefault:"#FFEB3B,#FFC107,#FF9800,#FF5722,#E91E63,#9C27B0"`
	MarkerColor  string   `env:"WM_MARKER_COLOR" envDefault:"#3498db"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int    `env:"WM_PORT" envDefault:"8080"`
	DevMode     bool   `env:"WM_DEV"`
	DBPath      string `env:"WM_DB"`
	RequireKeys bool   `env:"WM_REQUIRE_API_KEY"`
}

// Load parses the configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration with every default applied and no
// environment overrides.
func Default() *Config {
	cfg := &Config{}
	// Defaults only; parsing an empty environment cannot fail.
	_ = env.Parse(cfg, env.Options{Environment: map[string]string{}})
	return cfg
}

// Validate rejects settings the map or search flow cannot work with.
func (c *Config) Validate() error {
	m := c.Map
	if m.MinZoom < 0 || m.MinZoom > m.MaxZoom {
		return fmt.Errorf("invalid zoom range %d-%d", m.MinZoom, m.MaxZoom)
	}
	if m.Zoom < m.MinZoom || m.Zoom > m.MaxZoom {
		return fmt.Errorf("zoom %d outside range %d-%d", m.Zoom, m.MinZoom, m.MaxZoom)
	}
	if math.Abs(m.CenterLat) > 90 || math.Abs(m.CenterLng) > 180 {
		return fmt.Errorf("map center %v,%v out of range", m.CenterLat, m.CenterLng)
	}
	if m.FitPadding < 0 {
		return fmt.Errorf("fit padding must not be negative, got %d", m.FitPadding)
	}
	if c.Search.RadiusMiles <= 0 {
		return fmt.Errorf("search radius must be positive, got %v", c.Search.RadiusMiles)
	}
	if c.Search.HistoryLimit < 1 {
		return fmt.Errorf("history limit must be at least 1, got %d", c.Search.HistoryLimit)
	}
	if c.Search.RecentViews < 1 {
		return fmt.Errorf("recent views limit must be at least 1, got %d", c.Search.RecentViews)
	}
	if len(c.UI.WealthColors) == 0 {
		return fmt.Errorf("at least one wealth color is required")
	}
	return nil
}

// HasRapidAPI reports whether network lookups are configured.
func (c *Config) HasRapidAPI() bool {
	return c.API.RapidAPIKey != ""
}
