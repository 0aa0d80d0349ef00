package datasource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/Zeyadhatem391/Weather/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const currentCairo = `{
	"name": "Cairo",
	"weather": [{"id": 800, "main": "Clear", "description": "clear sky", "icon": "01d"}],
	"main": {"temp": 31.4, "humidity": 28, "pressure": 1012},
	"wind": {"speed": 4.63, "deg": 20},
	"sys": {"country": "EG"}
}`

const forecastCairo = `{
	"city": {"name": "Cairo", "country": "EG"},
	"list": [
		{"dt_txt": "2026-10-18 09:00:00", "main": {"temp": 27.1}, "weather": [{"icon": "01d"}]},
		{"dt_txt": "2026-10-18 12:00:00", "main": {"temp": 30.6}, "weather": [{"icon": "02d"}]},
		{"dt_txt": "2026-10-19 12:00:00", "main": {"temp": 29.2}, "weather": []}
	]
}`

type recordedRequest struct {
	path  string
	query url.Values
}

// fakeOWM serves canned bodies per path and records what was asked
type fakeOWM struct {
	mu       sync.Mutex
	requests []recordedRequest
	bodies   map[string]string
	status   int
}

func (f *fakeOWM) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{path: r.URL.Path, query: r.URL.Query()})
	f.mu.Unlock()

	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(`{"cod":"404","message":"city not found"}`))
		return
	}
	body, ok := f.bodies[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func newTestProvider(t *testing.T, fake *fakeOWM) *OpenWeatherMapProvider {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return NewOpenWeatherMapProvider(OpenWeatherMapConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL + "/data/2.5",
		GeoURL:  srv.URL + "/geo/1.0",
	})
}

func TestSearchCities(t *testing.T) {
	fake := &fakeOWM{bodies: map[string]string{
		"/geo/1.0/direct": `[
			{"name": "Cairo", "country": "EG", "lat": 30.04, "lon": 31.23},
			{"name": "Cairo", "country": "US", "state": "Georgia", "lat": 30.87, "lon": -84.2},
			{"name": "Nowhere", "lat": 1, "lon": 2}
		]`,
	}}
	p := newTestProvider(t, fake)

	candidates, err := p.SearchCities(context.Background(), "Cai", 5)
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	assert.Equal(t, "Cairo", candidates[0].Name)
	require.NotNil(t, candidates[0].Country)
	assert.Equal(t, "EG", *candidates[0].Country)
	assert.InDelta(t, 30.04, candidates[0].Latitude, 1e-9)
	assert.Nil(t, candidates[2].Country)

	require.Len(t, fake.requests, 1)
	q := fake.requests[0].query
	assert.Equal(t, "Cai", q.Get("q"))
	assert.Equal(t, "5", q.Get("limit"))
	assert.Equal(t, "test-key", q.Get("appid"))
}

func TestGetCurrent(t *testing.T) {
	fake := &fakeOWM{bodies: map[string]string{"/data/2.5/weather": currentCairo}}
	p := newTestProvider(t, fake)

	current, err := p.GetCurrent(context.Background(), "Cairo", "EG")
	require.NoError(t, err)

	assert.Equal(t, "Cairo", current.LocationName)
	assert.Equal(t, "Clear", current.ConditionCode)
	assert.Equal(t, "clear sky", current.ConditionDescription)
	assert.Equal(t, "01d", current.IconID)
	assert.InDelta(t, 31.4, current.TemperatureC, 1e-9)
	assert.Equal(t, 28, current.HumidityPercent)
	assert.InDelta(t, 4.63, current.WindSpeedMS, 1e-9)

	require.Len(t, fake.requests, 1)
	q := fake.requests[0].query
	assert.Equal(t, "Cairo,EG", q.Get("q"))
	assert.Equal(t, "metric", q.Get("units"))
	assert.Equal(t, "test-key", q.Get("appid"))
}

func TestGetCurrent_EmptyWeather(t *testing.T) {
	fake := &fakeOWM{bodies: map[string]string{
		"/data/2.5/weather": `{"name": "Cairo", "weather": [], "main": {"temp": 1}}`,
	}}
	p := newTestProvider(t, fake)

	_, err := p.GetCurrent(context.Background(), "Cairo", "EG")
	assert.ErrorIs(t, err, ErrEmptyWeather)
}

func TestGetCurrent_Non200(t *testing.T) {
	fake := &fakeOWM{status: http.StatusNotFound}
	p := newTestProvider(t, fake)

	_, err := p.GetCurrent(context.Background(), "Atlantis", "EG")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamStatus)
	assert.Contains(t, err.Error(), "404")
}

func TestGetCurrent_Malformed(t *testing.T) {
	fake := &fakeOWM{bodies: map[string]string{"/data/2.5/weather": `{"name": `}}
	p := newTestProvider(t, fake)

	_, err := p.GetCurrent(context.Background(), "Cairo", "EG")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse response")
}

func TestFetchForecast(t *testing.T) {
	fake := &fakeOWM{bodies: map[string]string{"/data/2.5/forecast": forecastCairo}}
	p := newTestProvider(t, fake)

	samples, err := p.FetchForecast(context.Background(), "Cairo", "EG")
	require.NoError(t, err)
	require.Len(t, samples, 3)

	assert.Equal(t, "2026-10-18 12:00:00", samples[1].TimestampText)
	assert.InDelta(t, 30.6, samples[1].TemperatureC, 1e-9)
	assert.Equal(t, "02d", samples[1].IconID)
	assert.Empty(t, samples[2].IconID)

	q := fake.requests[0].query
	assert.Equal(t, "Cairo,EG", q.Get("q"))
	assert.Equal(t, "metric", q.Get("units"))
}

func TestInstrumentedProvider_Delegates(t *testing.T) {
	fake := &fakeOWM{bodies: map[string]string{
		"/data/2.5/weather":  currentCairo,
		"/data/2.5/forecast": forecastCairo,
		"/geo/1.0/direct":    `[]`,
	}}
	p := NewInstrumentedProvider(newTestProvider(t, fake), metrics.Noop())

	assert.Equal(t, "OpenWeatherMap [Instrumented]", p.Name())

	current, err := p.GetCurrent(context.Background(), "Cairo", "EG")
	require.NoError(t, err)
	assert.Equal(t, "Cairo", current.LocationName)

	samples, err := p.FetchForecast(context.Background(), "Cairo", "EG")
	require.NoError(t, err)
	assert.Len(t, samples, 3)

	candidates, err := p.SearchCities(context.Background(), "x", 5)
	require.NoError(t, err)
	assert.Empty(t, candidates)

	assert.Len(t, fake.requests, 3)
}
