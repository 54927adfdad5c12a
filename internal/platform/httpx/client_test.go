package httpx_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alejandrodnm/forecastbot/internal/platform/httpx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastClient() *httpx.Client {
	return httpx.New(httpx.Options{
		RatePerSec:     1000,
		Burst:          10,
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
	})
}

func TestGetJSON_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{"symbol":"GOOGL"}`))
	}))
	defer srv.Close()

	var out struct {
		Symbol string `json:"symbol"`
	}
	require.NoError(t, fastClient().GetJSON(context.Background(), srv.URL, &out))
	assert.Equal(t, "GOOGL", out.Symbol)
}

func TestGet_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := fastClient().Get(context.Background(), srv.URL, "")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestGet_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("no such symbol"))
	}))
	defer srv.Close()

	_, err := fastClient().Get(context.Background(), srv.URL+"?apikey=secret", "")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	var se *httpx.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Contains(t, se.Body, "no such symbol")
	assert.NotContains(t, err.Error(), "secret")
}

func TestGet_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := fastClient().Get(context.Background(), srv.URL, "")
	require.Error(t, err)
	assert.Equal(t, int32(4), calls.Load()) // 1 + 3 retries
}

func TestGet_TransportErrorHidesAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close() // conexión rechazada

	_, err := fastClient().Get(context.Background(), base+"/time_series?symbol=GOOGL&apikey=SUPERSECRET", "")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SUPERSECRET")
	assert.Contains(t, err.Error(), "REDACTED")
}
