package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Zeyadhatem391/Weather/models"
)

const (
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"
	DefaultGeoURL  = "https://api.openweathermap.org/geo/1.0"
)

// OpenWeatherMapConfig configures the OpenWeatherMap client
type OpenWeatherMapConfig struct {
	APIKey  string
	BaseURL string        // data/2.5 root, DefaultBaseURL when empty
	GeoURL  string        // geo/1.0 root, DefaultGeoURL when empty
	Timeout time.Duration // 0 means no client timeout
}

// OpenWeatherMapProvider implements Geocoder, WeatherProvider and ForecastSource
type OpenWeatherMapProvider struct {
	apiKey     string
	baseURL    string
	geoURL     string
	httpClient *http.Client
}

// NewOpenWeatherMapProvider creates a new OpenWeatherMap provider
func NewOpenWeatherMapProvider(cfg OpenWeatherMapConfig) *OpenWeatherMapProvider {
	p := &OpenWeatherMapProvider{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		geoURL:  cfg.GeoURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
	if p.baseURL == "" {
		p.baseURL = DefaultBaseURL
	}
	if p.geoURL == "" {
		p.geoURL = DefaultGeoURL
	}
	return p
}

// Name returns the provider name
func (p *OpenWeatherMapProvider) Name() string {
	return "OpenWeatherMap"
}

// SearchCities calls the direct geocoding endpoint
func (p *OpenWeatherMapProvider) SearchCities(ctx context.Context, text string, limit int) ([]models.CityCandidate, error) {
	params := url.Values{}
	params.Add("q", text)
	params.Add("limit", strconv.Itoa(limit))

	var response []struct {
		Name    string  `json:"name"`
		Country *string `json:"country"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := p.getJSON(ctx, p.geoURL+"/direct", params, &response); err != nil {
		return nil, err
	}

	candidates := make([]models.CityCandidate, 0, len(response))
	for _, item := range response {
		candidates = append(candidates, models.CityCandidate{
			Name:      item.Name,
			Country:   item.Country,
			Latitude:  item.Lat,
			Longitude: item.Lon,
		})
	}
	return candidates, nil
}

// GetCurrent fetches current weather for a city
func (p *OpenWeatherMapProvider) GetCurrent(ctx context.Context, city, country string) (models.CurrentConditions, error) {
	params := url.Values{}
	params.Add("q", location(city, country))
	params.Add("units", "metric")

	var response struct {
		Name    string `json:"name"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity int     `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
	}
	if err := p.getJSON(ctx, p.baseURL+"/weather", params, &response); err != nil {
		return models.CurrentConditions{}, err
	}

	if len(response.Weather) == 0 {
		return models.CurrentConditions{}, fmt.Errorf("current weather for %s: %w", location(city, country), ErrEmptyWeather)
	}

	return models.CurrentConditions{
		LocationName:         response.Name,
		ConditionCode:        response.Weather[0].Main,
		ConditionDescription: response.Weather[0].Description,
		IconID:               response.Weather[0].Icon,
		TemperatureC:         response.Main.Temp,
		HumidityPercent:      response.Main.Humidity,
		WindSpeedMS:          response.Wind.Speed,
	}, nil
}

// FetchForecast fetches the 5-day forecast, which comes in 3-hour steps
func (p *OpenWeatherMapProvider) FetchForecast(ctx context.Context, city, country string) ([]models.ForecastSample, error) {
	params := url.Values{}
	params.Add("q", location(city, country))
	params.Add("units", "metric")

	var response struct {
		List []struct {
			DtTxt string `json:"dt_txt"`
			Main  struct {
				Temp float64 `json:"temp"`
			} `json:"main"`
			Weather []struct {
				Icon string `json:"icon"`
			} `json:"weather"`
		} `json:"list"`
	}
	if err := p.getJSON(ctx, p.baseURL+"/forecast", params, &response); err != nil {
		return nil, err
	}

	samples := make([]models.ForecastSample, 0, len(response.List))
	for _, item := range response.List {
		icon := ""
		if len(item.Weather) > 0 {
			icon = item.Weather[0].Icon
		}
		samples = append(samples, models.ForecastSample{
			TimestampText: item.DtTxt,
			TemperatureC:  item.Main.Temp,
			IconID:        icon,
		})
	}
	return samples, nil
}

// getJSON performs a GET against endpoint with the credential appended and
// decodes the body into out
func (p *OpenWeatherMapProvider) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	params.Set("appid", p.apiKey)

	// Create request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Execute request
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d: %s", ErrUpstreamStatus, resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func location(city, country string) string {
	if country == "" {
		return city
	}
	return fmt.Sprintf("%s,%s", city, country)
}

var (
	_ Geocoder        = (*OpenWeatherMapProvider)(nil)
	_ WeatherProvider = (*OpenWeatherMapProvider)(nil)
	_ ForecastSource  = (*OpenWeatherMapProvider)(nil)
)
