package trackstore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/aew-track-map/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTemplate = "aew_tracks_{year}_interactive.json"
	testDocument = `{"features":[{"geometry":{"coordinates":[[1,2],[3,4]]},"properties":{"months":[8],"point_data":[{"time":"2012-08-01 00:00","strength":1e-5},{"time":"2012-08-01 06:00","strength":2e-5}]}}]}`
)

func testClient(baseURL string, timeout time.Duration) *Client {
	return NewClient(baseURL, testTemplate, timeout, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_URL(t *testing.T) {
	c := testClient("http://example.org/data/", time.Second)
	assert.Equal(t, "http://example.org/data/aew_tracks_1995_interactive.json", c.URL("1995"))
}

func TestClient_FetchYear_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/aew_tracks_2012_interactive.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(testDocument))
	}))
	defer srv.Close()

	tracks, err := testClient(srv.URL, 5*time.Second).FetchYear(context.Background(), "2012")
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, 2, tracks[0].Len())
	assert.Equal(t, []int{8}, tracks[0].Months)
}

func TestClient_FetchYear_MissingFeatures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"type":"FeatureCollection"}`))
	}))
	defer srv.Close()

	tracks, err := testClient(srv.URL, 5*time.Second).FetchYear(context.Background(), "2012")
	require.NoError(t, err)
	assert.Empty(t, tracks)
}

func TestClient_FetchYear_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := testClient(srv.URL, 5*time.Second).FetchYear(context.Background(), "1999")
	require.ErrorIs(t, err, domain.ErrYearNotFound)
}

func TestClient_FetchYear_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 5*time.Second).FetchYear(context.Background(), "2012")
	require.Error(t, err)

	var statusErr *domain.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	assert.Equal(t, "HTTP 500", err.Error())
}

func TestClient_FetchYear_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := testClient(url, time.Second).FetchYear(context.Background(), "2012")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrYearNotFound)
	assert.Contains(t, err.Error(), "fetch 2012")
}

func TestClient_FetchYear_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 50*time.Millisecond).FetchYear(context.Background(), "2012")
	require.Error(t, err)
}

func TestClient_FetchYear_NoCaching(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(testDocument))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	_, err := c.FetchYear(context.Background(), "2012")
	require.NoError(t, err)
	_, err = c.FetchYear(context.Background(), "2012")
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
}
