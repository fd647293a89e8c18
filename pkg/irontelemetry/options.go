// options.go provides client configuration options and their defaults.

package irontelemetry

import "time"

// Defaults applied when the corresponding option is not given.
const (
	defaultEnvironment    = "production"
	defaultAppVersion     = "0.0.0"
	defaultSampleRate     = 1.0
	defaultMaxBreadcrumbs = 100
	defaultMaxQueueSize   = 500
	defaultTimeout        = 30 * time.Second
)

// BeforeSendFunc inspects an event just before delivery. It may return the
// event (possibly modified) to continue, or nil to drop it. A dropped event
// produces a successful SendResult and no network call.
type BeforeSendFunc func(event *Event) *Event

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	environment    string
	appVersion     string
	sampleRate     float64
	maxBreadcrumbs int
	debug          bool
	beforeSend     BeforeSendFunc
	offlineQueue   bool
	maxQueueSize   int
	apiBaseURL     string
	storageDir     string
	timeout        time.Duration
	transport      Transport
}

func defaultConfig() *clientConfig {
	return &clientConfig{
		environment:    defaultEnvironment,
		appVersion:     defaultAppVersion,
		sampleRate:     defaultSampleRate,
		maxBreadcrumbs: defaultMaxBreadcrumbs,
		offlineQueue:   true,
		maxQueueSize:   defaultMaxQueueSize,
		timeout:        defaultTimeout,
	}
}

// WithEnvironment sets the environment reported on events (default "production").
func WithEnvironment(env string) Option {
	return func(c *clientConfig) {
		c.environment = env
	}
}

// WithAppVersion sets the application version reported on events (default "0.0.0").
func WithAppVersion(version string) Option {
	return func(c *clientConfig) {
		c.appVersion = version
	}
}

// WithSampleRate sets the fraction of events delivered, clamped to [0, 1].
// 1.0 (the default) delivers every event; 0.0 drops every event before the
// transport is reached.
func WithSampleRate(rate float64) Option {
	return func(c *clientConfig) {
		if rate < 0 {
			rate = 0
		}
		if rate > 1 {
			rate = 1
		}
		c.sampleRate = rate
	}
}

// WithMaxBreadcrumbs sets how many breadcrumbs the ring buffer retains
// (default 100).
func WithMaxBreadcrumbs(max int) Option {
	return func(c *clientConfig) {
		if max > 0 {
			c.maxBreadcrumbs = max
		}
	}
}

// WithDebug enables diagnostic logging to stderr.
func WithDebug() Option {
	return func(c *clientConfig) {
		c.debug = true
	}
}

// WithBeforeSend installs a filter hook run on every event after sampling and
// before the transport.
func WithBeforeSend(fn BeforeSendFunc) Option {
	return func(c *clientConfig) {
		c.beforeSend = fn
	}
}

// WithoutOfflineQueue disables the persistent offline queue. Delivery
// failures are then reported in the SendResult and the event is lost.
func WithoutOfflineQueue() Option {
	return func(c *clientConfig) {
		c.offlineQueue = false
	}
}

// WithMaxQueueSize bounds the offline queue (default 500). When full, the
// oldest queued event is evicted to make room.
func WithMaxQueueSize(max int) Option {
	return func(c *clientConfig) {
		if max > 0 {
			c.maxQueueSize = max
		}
	}
}

// WithAPIBaseURL overrides the API base URL derived from the DSN.
func WithAPIBaseURL(baseURL string) Option {
	return func(c *clientConfig) {
		c.apiBaseURL = baseURL
	}
}

// WithStorageDir overrides the directory holding the offline queue file.
// The default is a per-user application data directory.
func WithStorageDir(dir string) Option {
	return func(c *clientConfig) {
		c.storageDir = dir
	}
}

// WithTimeout bounds each network operation (default 30s). There is no other
// cancellation mechanism for an in-flight send beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithTransport replaces the HTTP transport. Intended for tests and for
// hosts that need custom delivery behavior.
func WithTransport(t Transport) Option {
	return func(c *clientConfig) {
		c.transport = t
	}
}
