// Package weather provides a credential-free weather adapter backed by
// the Open-Meteo geocoding and forecast APIs.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/agriassist/agriassist/internal/domain/entities"
	"github.com/agriassist/agriassist/internal/domain/ports"
)

// OpenMeteoClient implements ports.WeatherProvider. Geocoding results
// are cached because a location's coordinates do not move; forecast
// responses are never cached so every query sees current conditions.
type OpenMeteoClient struct {
	geocodeURL  string
	forecastURL string
	client      *http.Client
	geoCache    *cache.Cache
	logger      *zap.Logger
}

// NewOpenMeteoClient creates a new Open-Meteo weather client.
func NewOpenMeteoClient(geocodeURL, forecastURL string, timeout time.Duration, logger *zap.Logger) *OpenMeteoClient {
	if geocodeURL == "" {
		geocodeURL = "https://geocoding-api.open-meteo.com"
	}
	if forecastURL == "" {
		forecastURL = "https://api.open-meteo.com"
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenMeteoClient{
		geocodeURL:  geocodeURL,
		forecastURL: forecastURL,
		client:      &http.Client{Timeout: timeout},
		geoCache:    cache.New(24*time.Hour, time.Hour),
		logger:      logger,
	}
}

type geoPoint struct {
	Latitude  float64
	Longitude float64
	Name      string
}

type geocodeResponse struct {
	Results []struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Name      string  `json:"name"`
	} `json:"results"`
}

type forecastResponse struct {
	Current struct {
		Temperature   float64 `json:"temperature_2m"`
		Precipitation float64 `json:"precipitation"`
		WeatherCode   int     `json:"weather_code"`
	} `json:"current"`
}

// Current resolves the location and returns a snapshot of current
// conditions. Any failure is reported as ports.ErrWeatherUnavailable
// so callers can degrade rather than fail the query.
func (c *OpenMeteoClient) Current(ctx context.Context, location string) (*entities.WeatherSnapshot, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("%w: no location given", ports.ErrWeatherUnavailable)
	}

	point, err := c.geocode(ctx, location)
	if err != nil {
		c.logger.Warn("geocoding failed", zap.String("location", location), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ports.ErrWeatherUnavailable, err)
	}

	snapshot, err := c.forecast(ctx, point)
	if err != nil {
		c.logger.Warn("forecast failed", zap.String("location", location), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ports.ErrWeatherUnavailable, err)
	}
	return snapshot, nil
}

func (c *OpenMeteoClient) geocode(ctx context.Context, location string) (geoPoint, error) {
	key := strings.ToLower(location)
	if cached, ok := c.geoCache.Get(key); ok {
		return cached.(geoPoint), nil
	}

	endpoint := fmt.Sprintf("%s/v1/search?name=%s&count=1", c.geocodeURL, url.QueryEscape(location))
	point, err := retry.DoWithData(func() (geoPoint, error) {
		var resp geocodeResponse
		if err := c.getJSON(ctx, endpoint, &resp); err != nil {
			return geoPoint{}, err
		}
		if len(resp.Results) == 0 {
			return geoPoint{}, retry.Unrecoverable(fmt.Errorf("location %q not found", location))
		}
		r := resp.Results[0]
		return geoPoint{Latitude: r.Latitude, Longitude: r.Longitude, Name: r.Name}, nil
	}, weatherRetryOptions(ctx)...)
	if err != nil {
		return geoPoint{}, err
	}

	c.geoCache.Set(key, point, cache.DefaultExpiration)
	return point, nil
}

func (c *OpenMeteoClient) forecast(ctx context.Context, point geoPoint) (*entities.WeatherSnapshot, error) {
	endpoint := fmt.Sprintf(
		"%s/v1/forecast?latitude=%.4f&longitude=%.4f&current=temperature_2m,precipitation,weather_code",
		c.forecastURL, point.Latitude, point.Longitude,
	)
	resp, err := retry.DoWithData(func() (forecastResponse, error) {
		var r forecastResponse
		err := c.getJSON(ctx, endpoint, &r)
		return r, err
	}, weatherRetryOptions(ctx)...)
	if err != nil {
		return nil, err
	}

	return &entities.WeatherSnapshot{
		Location:        point.Name,
		TemperatureC:    resp.Current.Temperature,
		Conditions:      describeWeatherCode(resp.Current.WeatherCode),
		PrecipitationMM: resp.Current.Precipitation,
		FetchedAt:       time.Now(),
	}, nil
}

func (c *OpenMeteoClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling weather service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather service returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func weatherRetryOptions(ctx context.Context) []retry.Option {
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(2),
		retry.Delay(200 * time.Millisecond),
		retry.LastErrorOnly(true),
	}
}

// describeWeatherCode maps WMO weather interpretation codes to a short
// human-readable description.
func describeWeatherCode(code int) string {
	switch {
	case code == 0:
		return "Clear sky"
	case code >= 1 && code <= 3:
		return "Partly cloudy"
	case code == 45 || code == 48:
		return "Fog"
	case code >= 51 && code <= 57:
		return "Drizzle"
	case code >= 61 && code <= 67:
		return "Rain"
	case code >= 71 && code <= 77:
		return "Snow"
	case code >= 80 && code <= 82:
		return "Rain showers"
	case code == 85 || code == 86:
		return "Snow showers"
	case code >= 95 && code <= 99:
		return "Thunderstorm"
	default:
		return fmt.Sprintf("Unknown conditions (code %d)", code)
	}
}
