// telemetry.go provides the package-level default client and its thin
// convenience wrappers.

package irontelemetry

import (
	"context"
	"sync"
)

// errNotInitialized is the result state for wrapper calls before Init.
const errNotInitialized = "client not initialized; call Init first"

var (
	defaultMu     sync.RWMutex
	defaultClient *Client
)

// Init creates a client and installs it as the package default used by the
// top-level convenience functions. The client is also returned so callers
// can hold an explicit handle instead.
func Init(dsn string, opts ...Option) (*Client, error) {
	client, err := NewClient(dsn, opts...)
	if err != nil {
		return nil, err
	}

	defaultMu.Lock()
	defaultClient = client
	defaultMu.Unlock()
	return client, nil
}

// CurrentClient returns the package default client, or nil before Init.
func CurrentClient() *Client {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultClient
}

// CaptureException captures err with the default client. Before Init it
// returns a failed result rather than panicking.
func CaptureException(ctx context.Context, err error, extra map[string]any) SendResult {
	c := CurrentClient()
	if c == nil {
		return SendResult{Error: errNotInitialized}
	}
	return c.CaptureException(ctx, err, extra)
}

// CaptureMessage captures a message with the default client.
func CaptureMessage(ctx context.Context, message string, level Severity) SendResult {
	c := CurrentClient()
	if c == nil {
		return SendResult{Error: errNotInitialized}
	}
	return c.CaptureMessage(ctx, message, level)
}

// AddBreadcrumb records a breadcrumb on the default client. A no-op before Init.
func AddBreadcrumb(message string, category BreadcrumbCategory, level Severity, data map[string]any) {
	if c := CurrentClient(); c != nil {
		c.AddBreadcrumb(message, category, level, data)
	}
}

// SetUser sets user context on the default client. A no-op before Init.
func SetUser(id, email string, data map[string]any) {
	if c := CurrentClient(); c != nil {
		c.SetUser(id, email, data)
	}
}

// ClearUser clears user context on the default client.
func ClearUser() {
	if c := CurrentClient(); c != nil {
		c.ClearUser()
	}
}

// SetTag sets a tag on the default client. A no-op before Init.
func SetTag(key, value string) {
	if c := CurrentClient(); c != nil {
		c.SetTag(key, value)
	}
}

// SetExtra sets an extra value on the default client. A no-op before Init.
func SetExtra(key string, value any) {
	if c := CurrentClient(); c != nil {
		c.SetExtra(key, value)
	}
}

// StartJourney starts a journey on the default client. It returns nil before
// Init; Journey methods on a nil receiver are not safe, so callers that may
// run uninitialized should check the result.
func StartJourney(name string) *Journey {
	c := CurrentClient()
	if c == nil {
		return nil
	}
	return c.StartJourney(name)
}

// StartStep starts a step in the default client's current journey.
func StartStep(name, category string) (*Step, error) {
	c := CurrentClient()
	if c == nil {
		return nil, ErrNoActiveJourney
	}
	return c.StartStep(name, category)
}

// Flush drains the default client's offline queue. A no-op before Init.
func Flush(ctx context.Context) error {
	c := CurrentClient()
	if c == nil {
		return nil
	}
	return c.Flush(ctx)
}

// Close closes and uninstalls the default client.
func Close() error {
	defaultMu.Lock()
	c := defaultClient
	defaultClient = nil
	defaultMu.Unlock()

	if c == nil {
		return nil
	}
	return c.Close()
}
