// transport.go defines the Transport interface and its HTTP implementation.

package irontelemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

const (
	eventsPath = "/api/v1/events"
	healthPath = "/api/v1/health"

	publicKeyHeader = "X-Public-Key"

	// Cap on how much of an error response body ends up in SendResult.Error.
	maxErrorBodySize = 4096
)

// Transport delivers events to the collection endpoint. It is the only
// component that talks to the network. Implementations must be safe for
// concurrent use.
type Transport interface {
	// Send delivers a single event. Expected failures (network errors,
	// HTTP >= 400) are reported in the result, never panicked or returned
	// as Go errors.
	Send(ctx context.Context, event *Event) SendResult

	// IsOnline reports whether the collection endpoint is reachable. It is
	// a best-effort liveness probe used to gate offline queue drains; a
	// subsequent Send can still fail.
	IsOnline(ctx context.Context) bool

	// Close releases held connection resources. Safe to call repeatedly.
	Close() error
}

// httpTransport posts JSON events to the collection API, authenticating with
// the DSN public key. Transient failures are retried with backoff before
// being reported as a failed SendResult.
type httpTransport struct {
	baseURL   string
	publicKey string
	client    *retryablehttp.Client
	log       zerolog.Logger
}

func newHTTPTransport(baseURL, publicKey string, timeout time.Duration, log zerolog.Logger) *httpTransport {
	client := retryablehttp.NewClient()
	client.HTTPClient.Timeout = timeout
	client.RetryMax = 2
	client.RetryWaitMin = 100 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.Logger = retryLogger{log}

	return &httpTransport{
		baseURL:   baseURL,
		publicKey: publicKey,
		client:    client,
		log:       log,
	}
}

// Send posts the event to {baseURL}/api/v1/events. On success the server's
// returned event id, if present, replaces the local one in the result.
func (t *httpTransport) Send(ctx context.Context, event *Event) SendResult {
	body, err := json.Marshal(event)
	if err != nil {
		return SendResult{EventID: event.EventID, Error: "serialize event: " + err.Error()}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+eventsPath, bytes.NewReader(body))
	if err != nil {
		return SendResult{EventID: event.EventID, Error: "build request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(publicKeyHeader, t.publicKey)

	resp, err := t.client.Do(req)
	if err != nil {
		t.log.Debug().Err(err).Str("event_id", event.EventID).Msg("failed to send event")
		return SendResult{EventID: event.EventID, Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg := readErrorBody(resp.Body)
		t.log.Debug().Int("status", resp.StatusCode).Str("event_id", event.EventID).Msg("failed to send event")
		return SendResult{
			EventID: event.EventID,
			Error:   fmt.Sprintf("HTTP %d: %s", resp.StatusCode, msg),
		}
	}

	eventID := event.EventID
	var ack struct {
		EventID string `json:"eventId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ack); err == nil && ack.EventID != "" {
		eventID = ack.EventID
	}

	t.log.Debug().Str("event_id", eventID).Msg("event sent")
	return SendResult{Success: true, EventID: eventID}
}

// IsOnline probes {baseURL}/api/v1/health; only HTTP 200 counts as online.
func (t *httpTransport) IsOnline(ctx context.Context) bool {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+healthPath, nil)
	if err != nil {
		return false
	}
	req.Header.Set(publicKeyHeader, t.publicKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

// Close drops idle connections. Safe to call multiple times.
func (t *httpTransport) Close() error {
	t.client.HTTPClient.CloseIdleConnections()
	return nil
}

func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return ""
	}
	return string(bytes.TrimSpace(data))
}

// retryLogger adapts the SDK logger onto retryablehttp's leveled logger.
type retryLogger struct {
	log zerolog.Logger
}

func (l retryLogger) Error(msg string, keysAndValues ...any) {
	l.log.Error().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Info(msg string, keysAndValues ...any) {
	l.log.Info().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Debug(msg string, keysAndValues ...any) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Warn(msg string, keysAndValues ...any) {
	l.log.Warn().Fields(keysAndValues).Msg(msg)
}
