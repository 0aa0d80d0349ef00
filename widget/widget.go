// Package widget implements the city search and weather display pipeline:
// geocoding suggestions, current conditions, the daily forecast and the
// background theme, all published through a Store.
package widget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Zeyadhatem391/Weather/datasource"
	"github.com/Zeyadhatem391/Weather/metrics"
	"github.com/Zeyadhatem391/Weather/models"
	"github.com/Zeyadhatem391/Weather/theme"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// errNotFetched marks a forecast that was never requested because the
// current conditions for the same lookup were not applied
var errNotFetched = errors.New("forecast not fetched")

// Config holds the widget's fixed parameters
type Config struct {
	TargetCountry   string // only candidates from this country are suggested
	DefaultCity     string // fetched once at startup
	SuggestionLimit int
	ForecastLimit   int
	MiddayMarker    string
}

// Widget drives the pipeline and writes every outcome into its Store
type Widget struct {
	provider  datasource.Provider
	store     *Store
	themes    theme.Table
	config    Config
	logger    *slog.Logger
	metrics   *metrics.AppMetrics
	startOnce sync.Once
}

// New creates a widget publishing into store
func New(provider datasource.Provider, store *Store, themes theme.Table, cfg Config, logger *slog.Logger, m *metrics.AppMetrics) *Widget {
	return &Widget{
		provider: provider,
		store:    store,
		themes:   themes,
		config:   cfg,
		logger:   logger,
		metrics:  m,
	}
}

// Store returns the view state the widget publishes into
func (w *Widget) Store() *Store {
	return w.store
}

// Config returns the widget's parameters
func (w *Widget) Config() Config {
	return w.config
}

// Start fetches the default city. Only the first call does anything.
func (w *Widget) Start(ctx context.Context) {
	w.StartLookup()(ctx)
}

// StartLookup reserves the default-city lookup and returns the function that
// performs it. Any lookup begun after StartLookup returns supersedes the
// default city. Only the first call reserves; later calls return a no-op.
func (w *Widget) StartLookup() func(context.Context) {
	run := func(context.Context) {}
	w.startOnce.Do(func() {
		token := w.store.BeginLookup(nil)
		run = func(ctx context.Context) {
			w.logger.InfoContext(ctx, "Loading default city",
				slog.String("city", w.config.DefaultCity),
				slog.String("country", w.config.TargetCountry),
			)
			w.fetchWeather(ctx, token, w.config.DefaultCity, w.config.TargetCountry)
		}
	})
	return run
}

// Search records text as the query and, unless it is empty, replaces the
// suggestions with the geocoding matches from the target country. On failure
// the previous suggestions stay.
func (w *Widget) Search(ctx context.Context, text string) Result[[]models.CityCandidate] {
	if len(text) == 0 {
		w.store.BeginSearch(func(st *State) {
			st.Query = text
			st.Suggestions = nil
		})
		return Ok([]models.CityCandidate{})
	}

	token := w.store.BeginSearch(func(st *State) {
		st.Query = text
	})

	result := w.lookupCandidates(ctx, text)
	if result.OK() {
		applied := w.store.CommitSearch(token, func(st *State) {
			st.Suggestions = result.Value()
		})
		if !applied {
			result = stale(ctx, w.metrics, "geocode", result)
		}
	}
	discard(ctx, w.logger, "geocode", result)
	return result
}

// Select takes a suggestion: it becomes the query, the suggestion list is
// closed, and the weather for that city is fetched.
func (w *Widget) Select(ctx context.Context, candidate models.CityCandidate) (Result[models.CurrentConditions], Result[[]models.ForecastEntry]) {
	w.store.BeginSearch(func(st *State) {
		st.Query = candidate.Name
		st.Suggestions = nil
	})
	return w.FetchWeather(ctx, candidate.Name, w.config.TargetCountry)
}

// FetchWeather loads current conditions for city and, once they are applied,
// the daily forecast for the same city. A failed forecast leaves the freshly
// applied conditions in place.
func (w *Widget) FetchWeather(ctx context.Context, city, country string) (Result[models.CurrentConditions], Result[[]models.ForecastEntry]) {
	return w.fetchWeather(ctx, w.store.BeginLookup(nil), city, country)
}

func (w *Widget) fetchWeather(ctx context.Context, token uint64, city, country string) (Result[models.CurrentConditions], Result[[]models.ForecastEntry]) {
	logger := w.logger.With(
		slog.String("cycle", uuid.NewString()),
		slog.String("city", city),
		slog.String("country", country),
	)

	current := w.fetchConditions(ctx, city, country)
	if current.OK() {
		conditions := current.Value()
		background := w.themes.Resolve(conditions.ConditionCode)
		applied := w.store.CommitLookup(token, func(st *State) {
			st.Current = &conditions
			st.Theme = background
		})
		if !applied {
			current = stale(ctx, w.metrics, "current", current)
		}
	}
	if !discard(ctx, logger, "current", current) {
		return current, Fail[[]models.ForecastEntry](errNotFetched)
	}
	logger.DebugContext(ctx, "Applied current conditions", slog.String("condition", current.Value().ConditionCode))

	forecast := w.fetchForecast(ctx, city, country)
	if forecast.OK() {
		// conditions of a newer lookup may not have landed yet; until they
		// do, this forecast belongs with what is on screen
		applied := w.store.CommitFollowUp(token, func(st *State) {
			st.Forecast = forecast.Value()
		})
		if !applied {
			forecast = stale(ctx, w.metrics, "forecast", forecast)
		}
	}
	if discard(ctx, logger, "forecast", forecast) {
		logger.DebugContext(ctx, "Applied forecast", slog.Int("days", len(forecast.Value())))
	}
	return current, forecast
}

func (w *Widget) lookupCandidates(ctx context.Context, text string) Result[[]models.CityCandidate] {
	raw, err := w.provider.SearchCities(ctx, text, w.config.SuggestionLimit)
	if err != nil {
		return Fail[[]models.CityCandidate](fmt.Errorf("geocoding %q: %w", text, err))
	}

	matches := make([]models.CityCandidate, 0, len(raw))
	for _, candidate := range raw {
		if candidate.InCountry(w.config.TargetCountry) {
			matches = append(matches, candidate)
		}
	}
	return Ok(matches)
}

func (w *Widget) fetchConditions(ctx context.Context, city, country string) Result[models.CurrentConditions] {
	conditions, err := w.provider.GetCurrent(ctx, city, country)
	if err != nil {
		return Fail[models.CurrentConditions](fmt.Errorf("current weather for %s,%s: %w", city, country, err))
	}
	return Ok(conditions)
}

func (w *Widget) fetchForecast(ctx context.Context, city, country string) Result[[]models.ForecastEntry] {
	samples, err := w.provider.FetchForecast(ctx, city, country)
	if err != nil {
		return Fail[[]models.ForecastEntry](fmt.Errorf("forecast for %s,%s: %w", city, country, err))
	}
	return Ok(DailyForecast(samples, w.config.MiddayMarker, w.config.ForecastLimit))
}

// stale turns a result that lost the race into a failure
func stale[T any](ctx context.Context, m *metrics.AppMetrics, operation string, _ Result[T]) Result[T] {
	m.StaleResultsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
	return Fail[T](fmt.Errorf("%s: %w", operation, ErrSuperseded))
}
