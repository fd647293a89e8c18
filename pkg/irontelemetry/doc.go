// Package irontelemetry is the Go client for the IronTelemetry error
// monitoring service.
//
// The client captures exceptions and messages from a host application,
// enriches them with contextual metadata (breadcrumbs, user, tags,
// journeys), and delivers them to the collection endpoint. Events that
// cannot be delivered are held on a bounded persistent offline queue and
// retried when connectivity returns.
//
// # Core Components
//
// The library is organized around these concepts:
//
//   - Event: the canonical telemetry payload with severity, context, and metadata
//   - Client: builds events from ambient context, applies sampling and the
//     BeforeSend hook, and routes them through the transport
//   - Transport: the only component that talks to the network
//   - Offline queue: bounded, disk-backed holding area for failed deliveries,
//     drained by Flush
//   - Journey/Step: application-defined flows attached to events for
//     correlating failures to business logic position
//
// # Quick Start
//
//	client, err := irontelemetry.NewClient("https://pk_live_abc@irontelemetry.com",
//	    irontelemetry.WithEnvironment("staging"),
//	    irontelemetry.WithAppVersion("1.4.2"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.AddBreadcrumb("user clicked checkout", irontelemetry.CategoryUI, irontelemetry.SeverityInfo, nil)
//	result := client.CaptureException(ctx, err, nil)
//	if result.Queued {
//	    // delivery failed; the event is on the offline queue
//	}
//
// Or with the package-level default client:
//
//	irontelemetry.Init("https://pk_live_abc@irontelemetry.com")
//	defer irontelemetry.Close()
//	irontelemetry.CaptureMessage(ctx, "cache warmed", irontelemetry.SeverityInfo)
//
// # Design Principles
//
//   - Capture never fails the caller: delivery, serialization, and storage
//     errors are folded into the SendResult, not returned or panicked
//   - Bounded resources: the breadcrumb buffer and offline queue both drop
//     their oldest entries at capacity
//   - Best-effort delivery: Flush is gated on a health probe and leaves
//     still-failing events queued; there is no guaranteed or exactly-once
//     delivery
package irontelemetry
