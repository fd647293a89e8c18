package irontelemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func testTransport(baseURL string) *httpTransport {
	return newHTTPTransport(baseURL, "pk_test_key", 5*time.Second, zerolog.Nop())
}

func TestHTTPTransport_Send(t *testing.T) {
	var gotBody map[string]any
	var gotKey, gotContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/events", r.URL.Path)
		gotKey = r.Header.Get("X-Public-Key")
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"eventId": "server-assigned-id"})
	}))
	defer server.Close()

	tr := testTransport(server.URL)
	defer tr.Close()

	event := queueEvent("local-id")
	result := tr.Send(context.Background(), &event)

	require.True(t, result.Success)
	require.Empty(t, result.Error)
	require.False(t, result.Queued)
	// The server's id overrides the local one.
	require.Equal(t, "server-assigned-id", result.EventID)

	require.Equal(t, "pk_test_key", gotKey)
	require.Equal(t, "application/json", gotContentType)
	require.Equal(t, "local-id", gotBody["eventId"])
}

func TestHTTPTransport_SendNoServerID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	tr := testTransport(server.URL)
	defer tr.Close()

	event := queueEvent("local-id")
	result := tr.Send(context.Background(), &event)

	require.True(t, result.Success)
	require.Equal(t, "local-id", result.EventID)
}

func TestHTTPTransport_SendClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown public key", http.StatusUnauthorized)
	}))
	defer server.Close()

	tr := testTransport(server.URL)
	defer tr.Close()

	event := queueEvent("e-1")
	result := tr.Send(context.Background(), &event)

	require.False(t, result.Success)
	require.Contains(t, result.Error, "401")
	require.Contains(t, result.Error, "unknown public key")
	require.Equal(t, "e-1", result.EventID)
}

func TestHTTPTransport_SendServerErrorAfterRetries(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, "try later", http.StatusInternalServerError)
	}))
	defer server.Close()

	tr := testTransport(server.URL)
	defer tr.Close()

	event := queueEvent("e-1")
	result := tr.Send(context.Background(), &event)

	require.False(t, result.Success)
	require.NotEmpty(t, result.Error)
	// Initial attempt plus the configured retries.
	require.Equal(t, int32(3), attempts.Load())
}

func TestHTTPTransport_SendUnreachable(t *testing.T) {
	tr := newHTTPTransport("http://127.0.0.1:1", "pk_test_key", time.Second, zerolog.Nop())
	defer tr.Close()

	event := queueEvent("e-1")
	result := tr.Send(context.Background(), &event)

	require.False(t, result.Success)
	require.NotEmpty(t, result.Error)
}

func TestHTTPTransport_IsOnline(t *testing.T) {
	var gotKey string
	healthy := atomic.Bool{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/health", r.URL.Path)
		gotKey = r.Header.Get("X-Public-Key")
		if healthy.Load() {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer server.Close()

	tr := testTransport(server.URL)
	defer tr.Close()

	require.False(t, tr.IsOnline(context.Background()))

	healthy.Store(true)
	require.True(t, tr.IsOnline(context.Background()))
	require.Equal(t, "pk_test_key", gotKey)
}

func TestHTTPTransport_IsOnlineUnreachable(t *testing.T) {
	tr := newHTTPTransport("http://127.0.0.1:1", "pk_test_key", time.Second, zerolog.Nop())
	defer tr.Close()

	require.False(t, tr.IsOnline(context.Background()))
}

func TestHTTPTransport_CloseIsRepeatable(t *testing.T) {
	tr := testTransport("http://example.com")
	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())
}
