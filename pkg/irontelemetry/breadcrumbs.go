// breadcrumbs.go implements the bounded, insertion-ordered breadcrumb buffer.

package irontelemetry

import (
	"sync"
	"time"
)

// breadcrumbRecorder keeps the most recent maxSize breadcrumbs in insertion
// order. All operations are total; overflow silently drops the oldest
// entries. Safe for concurrent use.
type breadcrumbRecorder struct {
	mu      sync.Mutex
	maxSize int
	crumbs  []Breadcrumb
}

func newBreadcrumbRecorder(maxSize int) *breadcrumbRecorder {
	if maxSize <= 0 {
		maxSize = defaultMaxBreadcrumbs
	}
	return &breadcrumbRecorder{maxSize: maxSize}
}

// add appends a breadcrumb stamped with the current time.
func (r *breadcrumbRecorder) add(message string, category BreadcrumbCategory, level Severity, data map[string]any) {
	r.record(Breadcrumb{
		Timestamp: time.Now(),
		Category:  category,
		Message:   message,
		Level:     level,
		Data:      data,
	})
}

// record appends a fully formed breadcrumb, trimming to the newest maxSize.
func (r *breadcrumbRecorder) record(crumb Breadcrumb) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.crumbs = append(r.crumbs, crumb)
	if len(r.crumbs) > r.maxSize {
		// Copy rather than re-slice so dropped entries are freed.
		trimmed := make([]Breadcrumb, r.maxSize)
		copy(trimmed, r.crumbs[len(r.crumbs)-r.maxSize:])
		r.crumbs = trimmed
	}
}

// snapshot returns a defensive copy in insertion order. Later mutations of
// the recorder are not observable through the returned slice.
func (r *breadcrumbRecorder) snapshot() []Breadcrumb {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.crumbs) == 0 {
		return nil
	}
	out := make([]Breadcrumb, len(r.crumbs))
	copy(out, r.crumbs)
	return out
}

func (r *breadcrumbRecorder) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.crumbs = nil
}

func (r *breadcrumbRecorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.crumbs)
}
