// client.go provides the Client, the SDK's capture-and-delivery pipeline.

package irontelemetry

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ErrNoActiveJourney is returned by StartStep when no journey is active.
// This is a usage error, not a delivery failure.
var ErrNoActiveJourney = errors.New("no active journey; call StartJourney first")

// Client captures exceptions and messages, enriches them with ambient
// context (breadcrumbs, user, tags, journey), and delivers them to the
// collection endpoint. Events that fail delivery are held on a bounded
// persistent offline queue and retried by Flush.
//
// All methods are safe for concurrent use.
type Client struct {
	cfg       *clientConfig
	dsn       ParsedDSN
	transport Transport
	queue     *offlineQueue
	crumbs    *breadcrumbRecorder
	log       zerolog.Logger

	mu      sync.Mutex
	tags    map[string]string
	extra   map[string]any
	user    *User
	journey *Journey
}

// NewClient creates a client for the given DSN. An unparseable DSN is the
// only construction failure.
func NewClient(dsn string, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	parsed, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}

	baseURL := cfg.apiBaseURL
	if baseURL == "" {
		baseURL = parsed.APIBaseURL
	}

	log := newLogger(cfg.debug)

	transport := cfg.transport
	if transport == nil {
		transport = newHTTPTransport(baseURL, parsed.PublicKey, cfg.timeout, log)
	}

	c := &Client{
		cfg:       cfg,
		dsn:       parsed,
		transport: transport,
		crumbs:    newBreadcrumbRecorder(cfg.maxBreadcrumbs),
		log:       log,
		tags:      make(map[string]string),
		extra:     make(map[string]any),
	}
	if cfg.offlineQueue {
		c.queue = newOfflineQueue(cfg.maxQueueSize, cfg.storageDir, log)
	}

	log.Debug().Str("host", parsed.Host).Str("environment", cfg.environment).Msg("client initialized")
	return c, nil
}

// CaptureException captures err as an error-level event. The extra map, if
// given, is merged over the client's ambient extra for this event only.
// Delivery failures never surface as Go errors; they are described in the
// returned SendResult.
func (c *Client) CaptureException(ctx context.Context, err error, extra map[string]any) SendResult {
	if err == nil {
		return SendResult{Error: "cannot capture nil error"}
	}

	exc := parseException(err)
	event := c.buildEvent(SeverityError, exc.Message, exc)
	for k, v := range extra {
		event.Extra[k] = v
	}
	return c.deliver(ctx, event)
}

// CaptureExceptionAsync is CaptureException with delivery moved off the
// calling goroutine. The event is built synchronously, so it snapshots
// breadcrumbs and journey state as of the call; the returned channel yields
// the single SendResult once delivery finishes.
func (c *Client) CaptureExceptionAsync(ctx context.Context, err error, extra map[string]any) <-chan SendResult {
	out := make(chan SendResult, 1)
	if err == nil {
		out <- SendResult{Error: "cannot capture nil error"}
		close(out)
		return out
	}

	exc := parseException(err)
	event := c.buildEvent(SeverityError, exc.Message, exc)
	for k, v := range extra {
		event.Extra[k] = v
	}

	go func() {
		out <- c.deliver(ctx, event)
		close(out)
	}()
	return out
}

// CaptureMessage captures a message event at the given level. An empty level
// defaults to info.
func (c *Client) CaptureMessage(ctx context.Context, message string, level Severity) SendResult {
	if level == "" {
		level = SeverityInfo
	}
	event := c.buildEvent(level, message, nil)
	return c.deliver(ctx, event)
}

// CaptureMessageAsync is CaptureMessage with delivery moved off the calling
// goroutine. See CaptureExceptionAsync.
func (c *Client) CaptureMessageAsync(ctx context.Context, message string, level Severity) <-chan SendResult {
	if level == "" {
		level = SeverityInfo
	}
	event := c.buildEvent(level, message, nil)

	out := make(chan SendResult, 1)
	go func() {
		out <- c.deliver(ctx, event)
		close(out)
	}()
	return out
}

// AddBreadcrumb records a breadcrumb stamped with the current time. An empty
// category defaults to custom, an empty level to info.
func (c *Client) AddBreadcrumb(message string, category BreadcrumbCategory, level Severity, data map[string]any) {
	if category == "" {
		category = CategoryCustom
	}
	if level == "" {
		level = SeverityInfo
	}
	c.crumbs.add(message, category, level, data)
}

// RecordBreadcrumb records a fully formed breadcrumb. A zero timestamp is
// replaced with the current time.
func (c *Client) RecordBreadcrumb(crumb Breadcrumb) {
	if crumb.Timestamp.IsZero() {
		crumb.Timestamp = time.Now()
	}
	c.crumbs.record(crumb)
}

// ClearBreadcrumbs empties the breadcrumb buffer.
func (c *Client) ClearBreadcrumbs() {
	c.crumbs.clear()
}

// SetUser sets the client-wide user context.
func (c *Client) SetUser(id, email string, data map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = &User{ID: id, Email: email, Data: data}
}

// ClearUser removes the client-wide user context.
func (c *Client) ClearUser() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = nil
}

// SetTag sets an ambient tag attached to every event built afterward.
func (c *Client) SetTag(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tags[key] = value
}

// SetExtra sets an ambient extra value attached to every event built afterward.
func (c *Client) SetExtra(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.extra[key] = value
}

// StartJourney begins a new journey, silently replacing any journey that is
// still active (the prior journey is not completed; it just stops being
// attached to new events). The client's user, if set, is copied into the
// journey. Finish the journey with End.
func (c *Client) StartJourney(name string) *Journey {
	j := newJourney(name)
	j.onEnd = func() {
		c.mu.Lock()
		if c.journey == j {
			c.journey = nil
		}
		c.mu.Unlock()
	}

	c.mu.Lock()
	if c.user != nil {
		j.SetUser(c.user.ID, c.user.Email, c.user.Data)
	}
	c.journey = j
	c.mu.Unlock()

	return j
}

// StartStep starts a step in the current journey. It returns
// ErrNoActiveJourney when no journey is active.
func (c *Client) StartStep(name, category string) (*Step, error) {
	c.mu.Lock()
	j := c.journey
	c.mu.Unlock()

	if j == nil {
		return nil, ErrNoActiveJourney
	}
	return j.StartStep(name, category), nil
}

// CurrentJourney returns the active journey, or nil.
func (c *Client) CurrentJourney() *Journey {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.journey
}

// Flush attempts redelivery of queued events. It is a no-op when the queue
// is empty or disabled, and when the health probe reports the endpoint
// unreachable. Events that deliver are removed from the queue in order;
// events that fail again stay queued for a future Flush. The only returned
// error is the context's.
func (c *Client) Flush(ctx context.Context) error {
	if c.queue == nil || c.queue.isEmpty() {
		return nil
	}

	if !c.transport.IsOnline(ctx) {
		c.log.Debug().Msg("endpoint unreachable, leaving queue intact")
		return nil
	}

	for _, event := range c.queue.snapshot() {
		if err := ctx.Err(); err != nil {
			return err
		}
		result := c.transport.Send(ctx, &event)
		if result.Success {
			c.queue.remove(event.EventID)
		}
	}
	return nil
}

// FlushAsync runs Flush off the calling goroutine. The returned channel
// yields Flush's result.
func (c *Client) FlushAsync(ctx context.Context) <-chan error {
	out := make(chan error, 1)
	go func() {
		out <- c.Flush(ctx)
		close(out)
	}()
	return out
}

// QueuedEvents returns a snapshot of the offline queue in insertion order,
// or nil when the queue is disabled or empty.
func (c *Client) QueuedEvents() []Event {
	if c.queue == nil {
		return nil
	}
	return c.queue.snapshot()
}

// Close releases transport resources. It does not flush; call Flush first
// if queued events should be retried before shutdown.
func (c *Client) Close() error {
	return c.transport.Close()
}

// buildEvent assembles an event from the ambient context. The breadcrumb
// and journey snapshots are taken here, synchronously, so async delivery
// observes the state as of the capture call.
func (c *Client) buildEvent(level Severity, message string, exc *ExceptionInfo) *Event {
	c.mu.Lock()
	tags := make(map[string]string, len(c.tags))
	for k, v := range c.tags {
		tags[k] = v
	}
	extra := make(map[string]any, len(c.extra))
	for k, v := range c.extra {
		extra[k] = v
	}

	user := c.user
	var journeyCtx *JourneyContext
	if c.journey != nil {
		if ju := c.journey.User(); ju != nil {
			user = ju
		}
		snapshot := c.journey.Context()
		journeyCtx = &snapshot
	}
	c.mu.Unlock()

	return &Event{
		EventID:     uuid.NewString(),
		Timestamp:   time.Now(),
		Level:       level,
		Message:     message,
		Exception:   exc,
		User:        user,
		Tags:        tags,
		Extra:       extra,
		Breadcrumbs: c.crumbs.snapshot(),
		Journey:     journeyCtx,
		Environment: c.cfg.environment,
		AppVersion:  c.cfg.appVersion,
		Platform:    platformInfo(),
	}
}

// deliver runs the send pipeline: sampling, the BeforeSend hook, the
// transport, and on failure the offline queue. Intentional drops (sampling,
// hook) are successes with no network call.
func (c *Client) deliver(ctx context.Context, event *Event) SendResult {
	if rand.Float64() >= c.cfg.sampleRate {
		c.log.Debug().Str("event_id", event.EventID).Msg("event dropped by sample rate")
		return SendResult{Success: true, EventID: event.EventID}
	}

	if c.cfg.beforeSend != nil {
		filtered := c.cfg.beforeSend(event)
		if filtered == nil {
			c.log.Debug().Str("event_id", event.EventID).Msg("event dropped by BeforeSend hook")
			return SendResult{Success: true, EventID: event.EventID}
		}
		event = filtered
	}

	result := c.transport.Send(ctx, event)
	if !result.Success && c.queue != nil {
		c.queue.enqueue(*event)
		return SendResult{
			EventID: event.EventID,
			Error:   result.Error,
			Queued:  true,
		}
	}
	return result
}
