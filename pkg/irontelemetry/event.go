// event.go defines the canonical telemetry event data structure.

package irontelemetry

import "time"

// Severity indicates the severity level of an event.
type Severity string

const (
	// SeverityDebug indicates diagnostic information.
	SeverityDebug Severity = "debug"

	// SeverityInfo indicates an informational event.
	SeverityInfo Severity = "info"

	// SeverityWarning indicates a non-fatal issue that may need attention.
	SeverityWarning Severity = "warning"

	// SeverityError indicates a recoverable error that caused an operation to fail.
	SeverityError Severity = "error"

	// SeverityFatal indicates an unrecoverable error such as a panic.
	SeverityFatal Severity = "fatal"
)

// BreadcrumbCategory classifies the application area a breadcrumb came from.
type BreadcrumbCategory string

const (
	CategoryUI           BreadcrumbCategory = "ui"
	CategoryHTTP         BreadcrumbCategory = "http"
	CategoryNavigation   BreadcrumbCategory = "navigation"
	CategoryConsole      BreadcrumbCategory = "console"
	CategoryAuth         BreadcrumbCategory = "auth"
	CategoryBusiness     BreadcrumbCategory = "business"
	CategoryNotification BreadcrumbCategory = "notification"
	CategoryCustom       BreadcrumbCategory = "custom"
)

// Breadcrumb is a timestamped note of an application event preceding a
// capture. Breadcrumbs live in the client's ring buffer and are copied by
// value into every event built afterward.
type Breadcrumb struct {
	Timestamp time.Time          `json:"timestamp"`
	Category  BreadcrumbCategory `json:"category"`
	Message   string             `json:"message"`
	Level     Severity           `json:"level"`
	Data      map[string]any     `json:"data,omitempty"`
}

// User identifies the end user on whose behalf the application was running.
type User struct {
	// ID is the only required field.
	ID    string         `json:"id"`
	Email string         `json:"email,omitempty"`
	Name  string         `json:"name,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}

// StackFrame is a single frame of a captured stack trace.
type StackFrame struct {
	Function string   `json:"function,omitempty"`
	Filename string   `json:"filename,omitempty"`
	Lineno   int      `json:"lineno,omitempty"`
	Colno    int      `json:"colno,omitempty"`
	Context  []string `json:"context,omitempty"`
}

// ExceptionInfo describes a captured error: its type name, message, and
// stack trace ordered outermost-call first. Built once per capture, never
// mutated afterward.
type ExceptionInfo struct {
	Type       string       `json:"type"`
	Message    string       `json:"message"`
	Stacktrace []StackFrame `json:"stacktrace,omitempty"`
}

// PlatformInfo describes the runtime the event was captured on.
type PlatformInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	OS      string `json:"os,omitempty"`
}

// JourneyContext is a point-in-time snapshot of an active journey, taken when
// an event is built. It is not a live reference to the Journey.
type JourneyContext struct {
	JourneyID   string         `json:"journeyId"`
	Name        string         `json:"name"`
	CurrentStep string         `json:"currentStep,omitempty"`
	StartedAt   time.Time      `json:"startedAt"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Event is the payload delivered to the collection endpoint. All fields are
// populated by the client before the event reaches the transport or the
// offline queue; an event is immutable once built.
//
// The JSON encoding is the wire format: camelCase keys, RFC 3339 timestamps.
// The offline queue persists events with the same codec so a queued event
// round-trips exactly.
type Event struct {
	// EventID is a unique identifier for this event (UUID). It is stable
	// once assigned and serves as the offline queue's removal key.
	EventID string `json:"eventId"`

	// Timestamp is when the event was captured.
	Timestamp time.Time `json:"timestamp"`

	// Level is the event severity.
	Level Severity `json:"level"`

	// Message is the captured message, or the error message for exceptions.
	Message string `json:"message,omitempty"`

	// Exception carries error details for exception captures.
	Exception *ExceptionInfo `json:"exception,omitempty"`

	// User is the journey's user if one is set, otherwise the client's.
	User *User `json:"user,omitempty"`

	Tags  map[string]string `json:"tags,omitempty"`
	Extra map[string]any    `json:"extra,omitempty"`

	// Breadcrumbs is the ring buffer snapshot taken at build time.
	Breadcrumbs []Breadcrumb `json:"breadcrumbs,omitempty"`

	// Journey is the active journey snapshot, if any.
	Journey *JourneyContext `json:"journey,omitempty"`

	Environment string `json:"environment,omitempty"`
	AppVersion  string `json:"appVersion,omitempty"`

	// Platform identifies the runtime (name "go", runtime version, GOOS).
	Platform PlatformInfo `json:"platform"`
}

// SendResult reports the outcome of a capture or delivery attempt. Expected
// failure modes (network errors, HTTP errors, sampling, filtering) are folded
// into the result rather than returned as errors.
type SendResult struct {
	// Success is true when the event was delivered, or intentionally
	// dropped by sampling or the BeforeSend hook.
	Success bool

	// EventID is the event's identifier. On successful delivery the
	// server's id, if it returned one, replaces the locally generated id.
	EventID string

	// Error is a human-readable description of a delivery failure.
	Error string

	// Queued is true when delivery failed and the event was placed on the
	// offline queue for a later Flush.
	Queued bool
}
