// Package client holds the opaque external collaborators: the weather
// API and the generative-AI backend. Both are consumed at their
// interface boundary only.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultWeatherBaseURL = "https://api.open-meteo.com"

// WeatherData is the current-conditions snapshot the home screen shows
type WeatherData struct {
	Temperature float64 `json:"temperature"`
	WeatherCode int     `json:"weatherCode"`
	WindSpeed   float64 `json:"windSpeed"`
	IsDay       int     `json:"isDay"`
}

// WeatherClient fetches current conditions from Open-Meteo
type WeatherClient struct {
	baseURL string
	http    *http.Client
}

func NewWeatherClient(baseURL string) *WeatherClient {
	if baseURL == "" {
		baseURL = defaultWeatherBaseURL
	}
	return &WeatherClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type openMeteoResponse struct {
	CurrentWeather struct {
		Temperature float64 `json:"temperature"`
		WeatherCode int     `json:"weathercode"`
		WindSpeed   float64 `json:"windspeed"`
		IsDay       int     `json:"is_day"`
	} `json:"current_weather"`
}

// Current fetches the current weather for the given coordinates
func (c *WeatherClient) Current(ctx context.Context, latitude, longitude float64) (*WeatherData, error) {
	url := fmt.Sprintf("%s/v1/forecast?latitude=%f&longitude=%f&current_weather=true",
		c.baseURL, latitude, longitude)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather request failed with status %d", resp.StatusCode)
	}

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}

	return &WeatherData{
		Temperature: payload.CurrentWeather.Temperature,
		WeatherCode: payload.CurrentWeather.WeatherCode,
		WindSpeed:   payload.CurrentWeather.WindSpeed,
		IsDay:       payload.CurrentWeather.IsDay,
	}, nil
}

// WeatherDescription maps simplified WMO weather codes to display text
func WeatherDescription(code int) string {
	switch {
	case code == 0:
		return "Clear Sky"
	case code >= 1 && code <= 3:
		return "Partly Cloudy"
	case code >= 45 && code <= 48:
		return "Foggy"
	case code >= 51 && code <= 67:
		return "Drizzle/Rain"
	case code >= 71 && code <= 79:
		return "Snow"
	case code >= 80 && code <= 99:
		return "Thunderstorm"
	default:
		return "Unknown"
	}
}
