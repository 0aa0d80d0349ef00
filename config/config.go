package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

// ErrMissingAPIKey is returned when no OpenWeatherMap credential is configured
var ErrMissingAPIKey = errors.New("openWeatherMap.apiKey is required")

// Config represents the application configuration
type Config struct {
	Mode string `mapstructure:"mode"`

	Server struct {
		Port            int           `mapstructure:"port"`
		ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
		StaticDir       string        `mapstructure:"staticDir"` // holds video/ and images/
		AllowedOrigins  []string      `mapstructure:"allowedOrigins"`
	} `mapstructure:"server"`

	OpenWeatherMap struct {
		APIKey  string        `mapstructure:"apiKey"`
		BaseURL string        `mapstructure:"baseURL"`
		GeoURL  string        `mapstructure:"geoURL"`
		Timeout time.Duration `mapstructure:"timeout"` // 0 disables the client timeout
	} `mapstructure:"openWeatherMap"`

	Widget struct {
		TargetCountry   string `mapstructure:"targetCountry"`
		CountryLabel    string `mapstructure:"countryLabel"`
		DefaultCity     string `mapstructure:"defaultCity"`
		SuggestionLimit int    `mapstructure:"suggestionLimit"`
		ForecastLimit   int    `mapstructure:"forecastLimit"`
		MiddayMarker    string `mapstructure:"middayMarker"`
	} `mapstructure:"widget"`

	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"metrics"`
}

// Load reads the configuration from path, or from the embedded defaults when
// path is empty or missing. Environment variables prefixed with WIDGET_
// override file values (WIDGET_OPENWEATHERMAP_APIKEY, WIDGET_SERVER_PORT, ...).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yml")
	if err := v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
		return nil, fmt.Errorf("failed to read embedded config: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	v.SetEnvPrefix("WIDGET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// OPENWEATHERMAP_API_KEY is accepted too, matching existing .env files
	_ = v.BindEnv("openWeatherMap.apiKey", "WIDGET_OPENWEATHERMAP_APIKEY", "OPENWEATHERMAP_API_KEY")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &config, nil
}

// DefaultConfig returns the embedded configuration without file or
// environment overrides
func DefaultConfig() *Config {
	v := viper.New()
	v.SetConfigType("yml")
	var config Config
	if err := v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
		panic(fmt.Sprintf("embedded config is invalid: %v", err))
	}
	if err := v.Unmarshal(&config); err != nil {
		panic(fmt.Sprintf("embedded config is invalid: %v", err))
	}
	return &config
}

// Validate checks the settings the widget cannot run without
func (c *Config) Validate() error {
	if c.OpenWeatherMap.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Widget.TargetCountry == "" {
		return errors.New("widget.targetCountry is required")
	}
	if c.Widget.DefaultCity == "" {
		return errors.New("widget.defaultCity is required")
	}
	if c.Widget.SuggestionLimit <= 0 {
		return fmt.Errorf("widget.suggestionLimit must be positive, got %d", c.Widget.SuggestionLimit)
	}
	if c.Widget.MiddayMarker == "" {
		return errors.New("widget.middayMarker is required")
	}
	if c.Widget.ForecastLimit <= 0 {
		return fmt.Errorf("widget.forecastLimit must be positive, got %d", c.Widget.ForecastLimit)
	}
	return nil
}
