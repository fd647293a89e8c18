// queue.go implements the bounded, disk-backed offline event queue.

package irontelemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const queueFileName = "queue.json"

// offlineQueue is a bounded FIFO of events whose delivery failed. Every
// mutation is persisted to a JSON file so queued events survive a restart.
// The in-memory slice stays authoritative: a persistence failure is logged
// and swallowed, and the queue keeps operating for the process lifetime.
//
// The file is written with a temp-file-and-rename so a crash mid-write
// leaves the previous contents intact. The file is not locked against other
// processes; only single-process use is supported.
type offlineQueue struct {
	mu      sync.Mutex
	maxSize int
	events  []Event
	path    string
	log     zerolog.Logger
}

// newOfflineQueue loads any previously persisted queue from dir. A missing,
// unreadable, or corrupt file is treated as an empty queue.
func newOfflineQueue(maxSize int, dir string, log zerolog.Logger) *offlineQueue {
	if maxSize <= 0 {
		maxSize = defaultMaxQueueSize
	}
	if dir == "" {
		dir = defaultStorageDir()
	}

	q := &offlineQueue{
		maxSize: maxSize,
		path:    filepath.Join(dir, queueFileName),
		log:     log,
	}
	q.load()
	return q
}

// defaultStorageDir resolves the per-user directory holding the queue file.
func defaultStorageDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "irontelemetry")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".irontelemetry")
	}
	return ".irontelemetry"
}

// enqueue appends an event, evicting the oldest entry first when the queue
// is at capacity, then persists.
func (q *offlineQueue) enqueue(event Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) >= q.maxSize {
		q.events = q.events[1:]
		q.log.Debug().Str("event_id", event.EventID).Msg("queue full, dropping oldest event")
	}
	q.events = append(q.events, event)
	q.persistLocked()

	q.log.Debug().Str("event_id", event.EventID).Int("size", len(q.events)).Msg("event queued")
}

// snapshot returns a copy of the queued events in insertion order.
func (q *offlineQueue) snapshot() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return nil
	}
	out := make([]Event, len(q.events))
	copy(out, q.events)
	return out
}

// remove drops every entry with the given event id and persists. Removing
// an absent id is a no-op.
func (q *offlineQueue) remove(eventID string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.events[:0]
	for _, e := range q.events {
		if e.EventID != eventID {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(q.events) {
		return
	}
	q.events = kept
	q.persistLocked()
}

// clear empties the queue and persists.
func (q *offlineQueue) clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = nil
	q.persistLocked()
}

func (q *offlineQueue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

func (q *offlineQueue) isEmpty() bool {
	return q.size() == 0
}

// load reads the persisted queue. Any failure leaves the queue empty.
func (q *offlineQueue) load() {
	data, err := os.ReadFile(q.path)
	if err != nil {
		if !os.IsNotExist(err) {
			q.log.Debug().Err(err).Str("path", q.path).Msg("failed to load queue from storage")
		}
		return
	}

	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		q.log.Debug().Err(err).Str("path", q.path).Msg("corrupt queue file, starting empty")
		return
	}
	if len(events) > q.maxSize {
		events = events[len(events)-q.maxSize:]
	}
	q.events = events
}

// persistLocked writes the queue to disk. Callers must hold q.mu. Failures
// are logged and swallowed; in-memory state remains authoritative.
func (q *offlineQueue) persistLocked() {
	if err := q.writeFile(); err != nil {
		q.log.Debug().Err(err).Str("path", q.path).Msg("failed to save queue to storage")
	}
}

// writeFile serializes the queue and atomically replaces the queue file.
func (q *offlineQueue) writeFile() error {
	if err := os.MkdirAll(filepath.Dir(q.path), 0o700); err != nil {
		return errors.Wrap(err, "create storage directory")
	}

	events := q.events
	if events == nil {
		events = []Event{}
	}
	data, err := json.Marshal(events)
	if err != nil {
		return errors.Wrap(err, "serialize queue")
	}

	tmp := q.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "write queue file")
	}
	if err := os.Rename(tmp, q.path); err != nil {
		return errors.Wrap(err, "replace queue file")
	}
	return nil
}
