package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeatherClient_Current(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("current_weather"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"current_weather":{"temperature":31.4,"weathercode":2,"windspeed":12.5,"is_day":1}}`))
	}))
	defer server.Close()

	weather, err := NewWeatherClient(server.URL).Current(context.Background(), 23.81, 90.41)
	require.NoError(t, err)

	assert.InDelta(t, 31.4, weather.Temperature, 0.001)
	assert.Equal(t, 2, weather.WeatherCode)
	assert.InDelta(t, 12.5, weather.WindSpeed, 0.001)
	assert.Equal(t, 1, weather.IsDay)
}

func TestWeatherClient_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewWeatherClient(server.URL).Current(context.Background(), 23.81, 90.41)
	assert.Error(t, err)
}

func TestWeatherDescription(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{0, "Clear Sky"},
		{2, "Partly Cloudy"},
		{45, "Foggy"},
		{61, "Drizzle/Rain"},
		{71, "Snow"},
		{95, "Thunderstorm"},
		{40, "Unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, WeatherDescription(tt.code))
	}
}
