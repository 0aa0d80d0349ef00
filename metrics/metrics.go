package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "weather-widget"

// AppMetrics holds the application's metric instruments
type AppMetrics struct {
	UpstreamRequestsTotal   metric.Int64Counter
	UpstreamDurationSeconds metric.Float64Histogram
	StaleResultsTotal       metric.Int64Counter
	RendersTotal            metric.Int64Counter
}

// New creates the instruments on the given meter
func New(meter metric.Meter) (*AppMetrics, error) {
	var err error
	m := &AppMetrics{}

	m.UpstreamRequestsTotal, err = meter.Int64Counter(
		"upstream_requests_total",
		metric.WithDescription("Weather provider calls by operation and outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("upstream_requests_total: %w", err)
	}

	m.UpstreamDurationSeconds, err = meter.Float64Histogram(
		"upstream_duration_seconds",
		metric.WithDescription("Duration of weather provider calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("upstream_duration_seconds: %w", err)
	}

	m.StaleResultsTotal, err = meter.Int64Counter(
		"stale_results_total",
		metric.WithDescription("Lookup results discarded because a newer request superseded them"),
		metric.WithUnit("{result}"),
	)
	if err != nil {
		return nil, fmt.Errorf("stale_results_total: %w", err)
	}

	m.RendersTotal, err = meter.Int64Counter(
		"view_renders_total",
		metric.WithDescription("View state notifications delivered to renderers"),
		metric.WithUnit("{render}"),
	)
	if err != nil {
		return nil, fmt.Errorf("view_renders_total: %w", err)
	}

	return m, nil
}

// Noop returns instruments backed by the global meter provider. Before
// Setup is called that provider discards everything, which is what tests want.
func Noop() *AppMetrics {
	m, err := New(otel.GetMeterProvider().Meter(meterName))
	if err != nil {
		// the global no-op meter never fails
		panic(err)
	}
	return m
}

// Setup installs a Prometheus-backed meter provider as the global provider
// and returns the instruments plus the /metrics handler.
func Setup() (*AppMetrics, http.Handler, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	m, err := New(provider.Meter(meterName))
	if err != nil {
		return nil, nil, err
	}
	return m, promhttp.Handler(), nil
}
