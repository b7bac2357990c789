package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"agro-advisor/config"
	"agro-advisor/internal/apperr"
	"agro-advisor/pkg/observe"
)

const diagnosticLimit = 150

type OpenMeteoRepository struct {
	baseURL      string
	forecastDays int
	timeout      time.Duration
	httpClient   HTTPClient
	l            *observe.Logger
}

func NewOpenMeteoRepository(cfg config.WeatherConfig, l *observe.Logger, httpClient HTTPClient) *OpenMeteoRepository {
	return &OpenMeteoRepository{
		baseURL:      cfg.BaseURL,
		forecastDays: cfg.ForecastDays,
		timeout:      cfg.Timeout,
		httpClient:   httpClient,
		l:            l,
	}
}

func (o *OpenMeteoRepository) Name() string {
	return "open-meteo"
}

// OpenMeteoDaily mirrors the provider's parallel daily arrays; all four are
// the same length on a healthy response.
type OpenMeteoDaily struct {
	Time             []string  `json:"time"`
	Temperature2mMax []float64 `json:"temperature_2m_max"`
	Temperature2mMin []float64 `json:"temperature_2m_min"`
	PrecipitationSum []float64 `json:"precipitation_sum"`
}

// OpenMeteoForecast is the subset of the forecast response the advisor
// consumes. Elevation is optional upstream.
type OpenMeteoForecast struct {
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Elevation *float64       `json:"elevation"`
	Daily     OpenMeteoDaily `json:"daily"`
}

func (o *OpenMeteoRepository) FetchForecast(ctx context.Context, lat, lon float64) (*OpenMeteoForecast, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("current", "temperature_2m,wind_speed_10m")
	params.Set("hourly", "temperature_2m,relative_humidity_2m,precipitation_probability")
	params.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_sum")
	params.Set("timezone", "auto")
	params.Set("forecast_days", strconv.Itoa(o.forecastDays))

	requestURL := o.baseURL + "?" + params.Encode()

	o.l.Info("making openmeteo API request", map[string]any{
		"lat": lat, "lon": lon, "days": o.forecastDays,
	})

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to do request: %w", err)
	}
	defer resp.Body.Close()

	o.l.Info("received openmeteo API response", map[string]any{
		"status":     resp.StatusCode,
		"statusText": resp.Status,
	})

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &apperr.UpstreamError{
			Provider:   o.Name(),
			StatusCode: resp.StatusCode,
			Body:       apperr.Truncate(string(body), diagnosticLimit),
		}
	}

	var forecast OpenMeteoForecast
	if err = json.Unmarshal(body, &forecast); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	o.l.Info("parsed forecast response", map[string]any{
		"days": len(forecast.Daily.Time),
	})

	return &forecast, nil
}
