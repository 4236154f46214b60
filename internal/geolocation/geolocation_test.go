package geolocation

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/weather-lookup/internal/domain"
	"github.com/couchcryptid/weather-lookup/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLocator(endpoint string) *IPLocator {
	return NewIPLocator(endpoint, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestIPLocator_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "status,message,lat,lon", r.URL.Query().Get("fields"))
		_, _ = w.Write([]byte(`{"status":"success","lat":-6.2,"lon":106.8}`))
	}))
	defer srv.Close()

	pos, err := testLocator(srv.URL).Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Position{Latitude: -6.2, Longitude: 106.8}, pos)
}

func TestIPLocator_Refused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"fail","message":"private range"}`))
	}))
	defer srv.Close()

	_, err := testLocator(srv.URL).Locate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGeolocationDenied)
	assert.Contains(t, err.Error(), "private range")
}

func TestIPLocator_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testLocator(srv.URL).Locate(context.Background())
	assert.ErrorIs(t, err, domain.ErrGeolocationDenied)
}

func TestIPLocator_HonoursDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := testLocator(srv.URL).Locate(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFixed(t *testing.T) {
	pos, err := NewFixed(1.5, 2.5).Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Position{Latitude: 1.5, Longitude: 2.5}, pos)
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Locate(context.Background())
	assert.ErrorIs(t, err, domain.ErrGeolocationUnavailable)
}
