package weather

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agriassist/agriassist/internal/domain/ports"
)

func newTestServers(t *testing.T, geoCalls, forecastCalls *int) (*httptest.Server, *httptest.Server) {
	t.Helper()
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*geoCalls++
		if r.URL.Path != "/v1/search" {
			t.Errorf("unexpected geocode path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("name"); got != "Delhi" {
			t.Errorf("unexpected location %q", got)
		}
		fmt.Fprint(w, `{"results":[{"latitude":28.65,"longitude":77.22,"name":"Delhi"}]}`)
	}))
	t.Cleanup(geo.Close)

	forecast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*forecastCalls++
		if r.URL.Path != "/v1/forecast" {
			t.Errorf("unexpected forecast path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("current"); got != "temperature_2m,precipitation,weather_code" {
			t.Errorf("unexpected current fields %q", got)
		}
		fmt.Fprint(w, `{"current":{"temperature_2m":31.4,"precipitation":0.2,"weather_code":2}}`)
	}))
	t.Cleanup(forecast.Close)
	return geo, forecast
}

func TestCurrent(t *testing.T) {
	var geoCalls, forecastCalls int
	geo, forecast := newTestServers(t, &geoCalls, &forecastCalls)

	client := NewOpenMeteoClient(geo.URL, forecast.URL, 0, nil)
	snap, err := client.Current(context.Background(), "Delhi")
	if err != nil {
		t.Fatalf("current failed: %v", err)
	}
	if snap.Location != "Delhi" {
		t.Errorf("location = %q", snap.Location)
	}
	if snap.TemperatureC != 31.4 {
		t.Errorf("temperature = %v", snap.TemperatureC)
	}
	if snap.Conditions != "Partly cloudy" {
		t.Errorf("conditions = %q", snap.Conditions)
	}
	if snap.PrecipitationMM != 0.2 {
		t.Errorf("precipitation = %v", snap.PrecipitationMM)
	}
	if snap.FetchedAt.IsZero() {
		t.Error("FetchedAt not set")
	}
}

func TestCurrent_GeocodeCachedForecastNot(t *testing.T) {
	var geoCalls, forecastCalls int
	geo, forecast := newTestServers(t, &geoCalls, &forecastCalls)

	client := NewOpenMeteoClient(geo.URL, forecast.URL, 0, nil)
	for i := 0; i < 3; i++ {
		if _, err := client.Current(context.Background(), "Delhi"); err != nil {
			t.Fatal(err)
		}
	}
	if geoCalls != 1 {
		t.Errorf("geocode calls = %d, want 1 (cached after first)", geoCalls)
	}
	if forecastCalls != 3 {
		t.Errorf("forecast calls = %d, want 3 (never cached)", forecastCalls)
	}
}

func TestCurrent_UnknownLocation(t *testing.T) {
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[]}`)
	}))
	defer geo.Close()

	client := NewOpenMeteoClient(geo.URL, "http://unused.invalid", 0, nil)
	_, err := client.Current(context.Background(), "Atlantis")
	if !errors.Is(err, ports.ErrWeatherUnavailable) {
		t.Errorf("expected ErrWeatherUnavailable, got %v", err)
	}
}

func TestCurrent_ForecastFailure(t *testing.T) {
	var geoCalls, forecastCalls int
	geo, _ := newTestServers(t, &geoCalls, &forecastCalls)
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	client := NewOpenMeteoClient(geo.URL, broken.URL, 0, nil)
	_, err := client.Current(context.Background(), "Delhi")
	if !errors.Is(err, ports.ErrWeatherUnavailable) {
		t.Errorf("expected ErrWeatherUnavailable, got %v", err)
	}
}

func TestCurrent_EmptyLocation(t *testing.T) {
	client := NewOpenMeteoClient("http://unused.invalid", "http://unused.invalid", 0, nil)
	_, err := client.Current(context.Background(), "   ")
	if !errors.Is(err, ports.ErrWeatherUnavailable) {
		t.Errorf("expected ErrWeatherUnavailable, got %v", err)
	}
}

func TestDescribeWeatherCode(t *testing.T) {
	cases := map[int]string{
		0:   "Clear sky",
		2:   "Partly cloudy",
		48:  "Fog",
		55:  "Drizzle",
		63:  "Rain",
		73:  "Snow",
		81:  "Rain showers",
		86:  "Snow showers",
		96:  "Thunderstorm",
		200: "Unknown conditions (code 200)",
	}
	for code, want := range cases {
		if got := describeWeatherCode(code); got != want {
			t.Errorf("code %d = %q, want %q", code, got, want)
		}
	}
}
