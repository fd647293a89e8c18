// stacktrace.go builds ExceptionInfo from captured errors.

package irontelemetry

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

const maxStackFrames = 64

// stackTracer is the interface produced by github.com/pkg/errors. Errors
// created or wrapped with that package carry the stack of their origin,
// which is more useful than the stack of the capture site.
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// parseException builds ExceptionInfo for err. The stack trace comes from
// the deepest stackTracer in the error chain when one exists, otherwise from
// the capture call site with SDK frames skipped.
func parseException(err error) *ExceptionInfo {
	info := &ExceptionInfo{
		Type:    errorTypeName(err),
		Message: err.Error(),
	}

	if tracer := deepestStackTracer(err); tracer != nil {
		info.Stacktrace = framesFromTracer(tracer)
	}
	if len(info.Stacktrace) == 0 {
		// Skip runtime.Callers, captureStack, and parseException; the SDK
		// frame filter drops the exported capture method above us.
		info.Stacktrace = captureStack(3)
	}
	return info
}

// errorTypeName names the error's concrete type, without the pointer marker.
func errorTypeName(err error) string {
	name := fmt.Sprintf("%T", err)
	return strings.TrimPrefix(name, "*")
}

// deepestStackTracer returns the last stackTracer in the unwrap chain, the
// one closest to where the error originated.
func deepestStackTracer(err error) stackTracer {
	var deepest stackTracer
	for err != nil {
		if tracer, ok := err.(stackTracer); ok {
			deepest = tracer
		}
		err = errors.Unwrap(err)
	}
	return deepest
}

func framesFromTracer(tracer stackTracer) []StackFrame {
	trace := tracer.StackTrace()
	if len(trace) > maxStackFrames {
		trace = trace[:maxStackFrames]
	}

	frames := make([]StackFrame, 0, len(trace))
	for _, f := range trace {
		// A pkg/errors Frame is the program counter plus one.
		pc := uintptr(f) - 1
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}
		file, line := fn.FileLine(pc)
		frames = append(frames, StackFrame{
			Function: fn.Name(),
			Filename: file,
			Lineno:   line,
		})
	}
	return frames
}

// captureStack records the current goroutine's stack, skipping the given
// number of frames and any remaining SDK-internal frames at the top.
func captureStack(skip int) []StackFrame {
	pcs := make([]uintptr, maxStackFrames)
	n := runtime.Callers(skip, pcs)
	if n == 0 {
		return nil
	}

	var frames []StackFrame
	iter := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := iter.Next()
		if !isSDKFrame(frame.Function) {
			frames = append(frames, StackFrame{
				Function: frame.Function,
				Filename: frame.File,
				Lineno:   frame.Line,
			})
		}
		if !more {
			break
		}
	}
	return frames
}

func isSDKFrame(function string) bool {
	return strings.HasPrefix(function, "github.com/irontelemetry/irontelemetry-go/pkg/irontelemetry.")
}
