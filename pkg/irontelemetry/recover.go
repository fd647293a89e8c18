// recover.go provides panic capture for use in defer.

package irontelemetry

import (
	"context"
	"fmt"
)

// Recover captures an in-flight panic as a fatal event, flushes the client,
// and returns the recovered value. It does NOT re-panic.
//
// It must be deferred directly, not called from inside a deferred closure;
// recover only stops unwinding when called by the deferred function itself:
//
//	func handler(ctx context.Context) {
//	    defer irontelemetry.Recover(ctx, client)
//	    // code that might panic
//	}
func Recover(ctx context.Context, client *Client) any {
	r := recover()
	if r == nil || client == nil {
		return r
	}

	exc := &ExceptionInfo{
		Type:    "panic",
		Message: formatRecovered(r),
		// Skip runtime.Callers, captureStack, and Recover itself. The
		// runtime's panic machinery stays in the trace; it marks the
		// boundary between the handler and the panic site.
		Stacktrace: captureStack(3),
	}
	event := client.buildEvent(SeverityFatal, exc.Message, exc)

	// The result is deliberately discarded: a panic handler must not fail.
	_ = client.deliver(ctx, event)
	_ = client.Flush(ctx)

	return r
}

// formatRecovered formats a recovered panic value as a string.
func formatRecovered(recovered any) string {
	if recovered == nil {
		return "<nil>"
	}
	if err, ok := recovered.(error); ok {
		return err.Error()
	}
	return fmt.Sprintf("%v", recovered)
}

// TrackStep runs fn inside a step of the client's current journey. The step
// fails when fn returns an error and completes otherwise; fn's error is
// returned either way. When no journey is active, fn runs without tracking.
func TrackStep(client *Client, name, category string, fn func() error) error {
	step, err := client.StartStep(name, category)
	if err != nil {
		return fn()
	}
	defer step.End()

	if err := fn(); err != nil {
		step.Fail()
		return err
	}
	return nil
}
