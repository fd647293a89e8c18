// platform.go reports runtime information attached to events.

package irontelemetry

import (
	"runtime"
	"strings"
)

// platformInfo describes the Go runtime the event was captured on.
func platformInfo() PlatformInfo {
	return PlatformInfo{
		Name:    "go",
		Version: strings.TrimPrefix(runtime.Version(), "go"),
		OS:      runtime.GOOS,
	}
}
