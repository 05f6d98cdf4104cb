package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Geocoder  GeocoderConfig  `mapstructure:"geocoder"`
	Map       MapConfig       `mapstructure:"map"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr      string `mapstructure:"addr"`
	Namespace string `mapstructure:"namespace"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type TemporalConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

// GeocoderConfig configures the Nominatim client and its circuit breaker.
type GeocoderConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	UserAgent        string        `mapstructure:"user_agent"`
	AcceptLanguage   string        `mapstructure:"accept_language"`
	ResultsLimit     int           `mapstructure:"results_limit"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
	OpenTimeout      time.Duration `mapstructure:"open_timeout"`
}

// MapConfig is presentation configuration for rendered layers. None of it
// affects geometry; it is attached to the features handed to map clients.
type MapConfig struct {
	Layers    LayerNames `mapstructure:"layers"`
	RideColor string     `mapstructure:"ride_color"`
	ZoneColor string     `mapstructure:"zone_color"`
	MaskColor string     `mapstructure:"mask_color"`

	MaskOpacity float64 `mapstructure:"mask_opacity"`

	RideOpacity        float64 `mapstructure:"ride_opacity"`
	RideDimmedOpacity  float64 `mapstructure:"ride_dimmed_opacity"`
	ZoneFillOpacity    float64 `mapstructure:"zone_fill_opacity"`
	ZoneFillDimmed     float64 `mapstructure:"zone_fill_dimmed_opacity"`
	ZoneOutlineOpacity float64 `mapstructure:"zone_outline_opacity"`
	ZoneOutlineDimmed  float64 `mapstructure:"zone_outline_dimmed_opacity"`

	FitPadding Padding `mapstructure:"fit_padding"`
	FitMaxZoom float64 `mapstructure:"fit_max_zoom"`
}

// LayerNames are the map layer ids each rendered feature is tagged with.
type LayerNames struct {
	DraftLine       string `mapstructure:"draft_line"`
	DraftPolygon    string `mapstructure:"draft_polygon"`
	DraftMarkers    string `mapstructure:"draft_markers"`
	Mask            string `mapstructure:"mask"`
	BoundaryOutline string `mapstructure:"boundary_outline"`
	SelectedRide    string `mapstructure:"selected_ride"`
	SelectedZone    string `mapstructure:"selected_zone"`
}

type Padding struct {
	Top    int `mapstructure:"top" json:"top"`
	Bottom int `mapstructure:"bottom" json:"bottom"`
	Left   int `mapstructure:"left" json:"left"`
	Right  int `mapstructure:"right" json:"right"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "ridemycity")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "ridemycity")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.namespace", "ridemycity")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("temporal.enabled", false)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "shape-cleanup")
	v.SetDefault("geocoder.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocoder.user_agent", "RideMyCity/1.0")
	v.SetDefault("geocoder.accept_language", "es")
	v.SetDefault("geocoder.results_limit", 5)
	v.SetDefault("geocoder.timeout", 10*time.Second)
	v.SetDefault("geocoder.failure_threshold", 5)
	v.SetDefault("geocoder.open_timeout", 30*time.Second)
	setMapDefaults(v)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: RIDEMYCITY_DATABASE_HOST → database.host
	v.SetEnvPrefix("RIDEMYCITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Geocoder.BaseURL == "" {
		errs = append(errs, "geocoder.base_url is required")
	}
	if c.Geocoder.UserAgent == "" {
		errs = append(errs, "geocoder.user_agent is required (Nominatim rejects anonymous clients)")
	}
	if c.Geocoder.ResultsLimit <= 0 || c.Geocoder.ResultsLimit > 50 {
		errs = append(errs, fmt.Sprintf("geocoder.results_limit must be 1-50, got %d", c.Geocoder.ResultsLimit))
	}
	if c.Geocoder.Timeout <= 0 {
		errs = append(errs, "geocoder.timeout must be positive")
	}
	if c.Temporal.Enabled && c.Temporal.HostPort == "" {
		errs = append(errs, "temporal.host_port is required when temporal is enabled")
	}
	for name, o := range map[string]float64{
		"map.mask_opacity":                c.Map.MaskOpacity,
		"map.ride_opacity":                c.Map.RideOpacity,
		"map.ride_dimmed_opacity":         c.Map.RideDimmedOpacity,
		"map.zone_fill_opacity":           c.Map.ZoneFillOpacity,
		"map.zone_fill_dimmed_opacity":    c.Map.ZoneFillDimmed,
		"map.zone_outline_opacity":        c.Map.ZoneOutlineOpacity,
		"map.zone_outline_dimmed_opacity": c.Map.ZoneOutlineDimmed,
	} {
		if o < 0 || o > 1 {
			errs = append(errs, fmt.Sprintf("%s must be within 0-1, got %g", name, o))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// setMapDefaults installs the stock layer ids, colors and opacities.
func setMapDefaults(v *viper.Viper) {
	v.SetDefault("map.layers.draft_line", "draw-line")
	v.SetDefault("map.layers.draft_polygon", "draw-polygon")
	v.SetDefault("map.layers.draft_markers", "draw-markers")
	v.SetDefault("map.layers.mask", "city-mask")
	v.SetDefault("map.layers.boundary_outline", "city-boundary")
	v.SetDefault("map.layers.selected_ride", "selected-ride")
	v.SetDefault("map.layers.selected_zone", "selected-zone")
	v.SetDefault("map.ride_color", "#2563eb")
	v.SetDefault("map.zone_color", "#dc2626")
	v.SetDefault("map.mask_color", "#0f172a")
	v.SetDefault("map.mask_opacity", 0.45)
	v.SetDefault("map.ride_opacity", 0.72)
	v.SetDefault("map.ride_dimmed_opacity", 0.15)
	v.SetDefault("map.zone_fill_opacity", 0.18)
	v.SetDefault("map.zone_fill_dimmed_opacity", 0.05)
	v.SetDefault("map.zone_outline_opacity", 1.0)
	v.SetDefault("map.zone_outline_dimmed_opacity", 0.15)
	v.SetDefault("map.fit_padding.top", 80)
	v.SetDefault("map.fit_padding.bottom", 80)
	v.SetDefault("map.fit_padding.left", 360)
	v.SetDefault("map.fit_padding.right", 80)
	v.SetDefault("map.fit_max_zoom", 16)
}
