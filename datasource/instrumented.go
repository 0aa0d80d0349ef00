package datasource

import (
	"context"
	"fmt"
	"time"

	"github.com/Zeyadhatem391/Weather/metrics"
	"github.com/Zeyadhatem391/Weather/models"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Provider is the full set of calls the widget needs from one upstream
type Provider interface {
	Geocoder
	WeatherProvider
	ForecastSource
}

// InstrumentedProvider wraps a Provider and records call counts and latency
type InstrumentedProvider struct {
	provider Provider
	metrics  *metrics.AppMetrics
	name     string
}

// NewInstrumentedProvider creates a provider that reports every upstream call
func NewInstrumentedProvider(provider Provider, m *metrics.AppMetrics) *InstrumentedProvider {
	return &InstrumentedProvider{
		provider: provider,
		metrics:  m,
		name:     fmt.Sprintf("%s [Instrumented]", provider.Name()),
	}
}

// SearchCities implements Geocoder
func (i *InstrumentedProvider) SearchCities(ctx context.Context, text string, limit int) ([]models.CityCandidate, error) {
	start := time.Now()
	candidates, err := i.provider.SearchCities(ctx, text, limit)
	i.record(ctx, "geocode", start, err)
	return candidates, err
}

// GetCurrent implements WeatherProvider
func (i *InstrumentedProvider) GetCurrent(ctx context.Context, city, country string) (models.CurrentConditions, error) {
	start := time.Now()
	current, err := i.provider.GetCurrent(ctx, city, country)
	i.record(ctx, "current", start, err)
	return current, err
}

// FetchForecast implements ForecastSource
func (i *InstrumentedProvider) FetchForecast(ctx context.Context, city, country string) ([]models.ForecastSample, error) {
	start := time.Now()
	samples, err := i.provider.FetchForecast(ctx, city, country)
	i.record(ctx, "forecast", start, err)
	return samples, err
}

// Name returns the provider name
func (i *InstrumentedProvider) Name() string {
	return i.name
}

func (i *InstrumentedProvider) record(ctx context.Context, operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("provider", i.provider.Name()),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)
	i.metrics.UpstreamRequestsTotal.Add(ctx, 1, attrs)
	i.metrics.UpstreamDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
}

var (
	_ Provider = (*OpenWeatherMapProvider)(nil)
	_ Provider = (*InstrumentedProvider)(nil)
)
