package datasource

import (
	"context"
	"errors"

	"github.com/Zeyadhatem391/Weather/models"
)

var (
	// ErrUpstreamStatus wraps any non-200 answer from the provider
	ErrUpstreamStatus = errors.New("upstream returned non-200 status")
	// ErrEmptyWeather marks a current-weather response without a weather entry
	ErrEmptyWeather = errors.New("response has no weather entry")
)

// Geocoder resolves partial city names to candidate places
type Geocoder interface {
	// SearchCities returns at most limit matches in provider order
	SearchCities(ctx context.Context, text string, limit int) ([]models.CityCandidate, error)

	// Name returns the geocoder's name
	Name() string
}

// WeatherProvider is an interface for services that can fetch current weather data
type WeatherProvider interface {
	// GetCurrent fetches current conditions for a city in a country
	GetCurrent(ctx context.Context, city, country string) (models.CurrentConditions, error)

	// Name returns the provider's name
	Name() string
}

// ForecastSource is an interface for services that can fetch weather forecasts
type ForecastSource interface {
	// FetchForecast fetches the raw 3-hour samples for a city in a country
	FetchForecast(ctx context.Context, city, country string) ([]models.ForecastSample, error)

	// Name returns the source's name
	Name() string
}
