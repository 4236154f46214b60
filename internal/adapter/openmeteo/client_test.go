package openmeteo

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/weather-lookup/internal/domain"
	"github.com/couchcryptid/weather-lookup/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string, timeout time.Duration) *Client {
	return NewClient(Options{
		GeocodeURL: baseURL + "/v1/search",
		WeatherURL: baseURL + "/v1/forecast",
		Language:   "id",
		Timeout:    timeout,
	}, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set(headerContentType, contentTypeJSON)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestClient_Search_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search", r.URL.Path)
		assert.Equal(t, "Jakarta", r.URL.Query().Get("name"))
		assert.Equal(t, "6", r.URL.Query().Get("count"))
		assert.Equal(t, "id", r.URL.Query().Get("language"))

		writeJSON(t, w, geocodeResponse{Results: []geocodeResult{
			{Name: "Jakarta", Admin1: "DKI Jakarta", Country: "Indonesia", Latitude: -6.2, Longitude: 106.8},
			{Name: "Jakarta Utara", Country: "Indonesia", Latitude: -6.13, Longitude: 106.88},
		}})
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	got, err := c.Search(context.Background(), "Jakarta", 6)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, domain.PlaceCandidate{Name: "Jakarta", Admin1: "DKI Jakarta", Country: "Indonesia", Latitude: -6.2, Longitude: 106.8}, got[0])
	assert.Equal(t, "Jakarta Utara, Indonesia", got[1].Label())
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.UpstreamRequests.WithLabelValues(endpointSearch, "success")))
}

func TestClient_Search_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// Open-Meteo omits "results" entirely when nothing matches.
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"generationtime_ms":0.4}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	got, err := c.Search(context.Background(), "Xyzzyx123", 1)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.UpstreamRequests.WithLabelValues(endpointSearch, "empty")))
}

func TestClient_Search_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":true,"reason":"Parameter count must be between 1 and 100."}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	_, err := c.Search(context.Background(), "Jakarta", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.Contains(t, err.Error(), "400")
}

func TestClient_Search_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results": [`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	_, err := c.Search(context.Background(), "Jakarta", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_Search_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL, 50*time.Millisecond)
	_, err := c.Search(context.Background(), "Jakarta", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransport)
}

func TestClient_Reverse_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "-6.2", q.Get("latitude"))
		assert.Equal(t, "106.8", q.Get("longitude"))
		assert.Equal(t, "1", q.Get("count"))
		assert.Empty(t, q.Get("name"))

		writeJSON(t, w, geocodeResponse{Results: []geocodeResult{
			{Name: "Jakarta", Country: "Indonesia", Latitude: -6.2, Longitude: 106.8},
		}})
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	got, err := c.Reverse(context.Background(), -6.2, 106.8)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Jakarta, Indonesia", got[0].ShortLabel())
}

func TestClient_Current_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "-6.2", q.Get("latitude"))
		assert.Equal(t, "106.8", q.Get("longitude"))
		assert.Equal(t, "true", q.Get("current_weather"))

		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"latitude":-6.2,"longitude":106.8,"current_weather":{"temperature":30.1,"windspeed":10.4,"winddirection":200,"weathercode":1,"time":"2024-04-26T15:00"}}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	got, err := c.Current(context.Background(), -6.2, 106.8)
	require.NoError(t, err)

	assert.Equal(t, 30.1, got.TemperatureC)
	assert.Equal(t, 10.4, got.WindSpeedKmh)
	assert.Equal(t, 1, got.ConditionCode)
	assert.Equal(t, time.Date(2024, 4, 26, 15, 0, 0, 0, time.UTC), got.ObservedAt)
}

func TestClient_Current_MissingPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"absent", `{"latitude":-6.2,"longitude":106.8}`},
		{"null", `{"latitude":-6.2,"current_weather":null}`},
		{"empty object", `{"latitude":-6.2,"current_weather":{}}`},
		{"no temperature", `{"current_weather":{"windspeed":10.4,"weathercode":1}}`},
		{"no windspeed", `{"current_weather":{"temperature":30.1,"weathercode":1}}`},
		{"no weathercode", `{"current_weather":{"temperature":30.1,"windspeed":10.4}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set(headerContentType, contentTypeJSON)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := testClient(srv.URL, 5*time.Second)
			snap, err := c.Current(context.Background(), -6.2, 106.8)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrEmptyData)
			assert.NotErrorIs(t, err, domain.ErrTransport)
			assert.Zero(t, snap)
		})
	}
}

func TestClient_Current_ZeroReadingsAreValid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"current_weather":{"temperature":0,"windspeed":0,"weathercode":0,"time":"2024-01-01T00:00"}}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	snap, err := c.Current(context.Background(), 61.2, 25.0)
	require.NoError(t, err)
	assert.Zero(t, snap.TemperatureC)
	assert.Equal(t, 0, snap.ConditionCode)
}

func TestClient_Current_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	_, err := c.Current(context.Background(), -6.2, 106.8)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.Contains(t, err.Error(), "503")
}

func TestClient_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	for range 5 {
		_, err := c.Current(context.Background(), 1, 2)
		require.Error(t, err)
	}

	_, err := c.Current(context.Background(), 1, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.Contains(t, err.Error(), "circuit open")
	assert.Equal(t, int32(5), hits.Load(), "open breaker must not reach upstream")
	assert.Equal(t, 2.0, testutil.ToFloat64(c.metrics.BreakerState.WithLabelValues(endpointWeather)))
	assert.EqualError(t, c.CheckReadiness(context.Background()), "circuit open: weather")

	// Breakers are per endpoint: geocoding is unaffected.
	_, err = c.Search(context.Background(), "Jakarta", 1)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "circuit open")
}

func TestClient_CancelledRequestsDoNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, geocodeResponse{})
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for range 10 {
		_, err := c.Search(ctx, "Jak", 6)
		require.Error(t, err)
	}

	_, err := c.Search(context.Background(), "Jakarta", 6)
	require.NoError(t, err)
	require.NoError(t, c.CheckReadiness(context.Background()))
}
