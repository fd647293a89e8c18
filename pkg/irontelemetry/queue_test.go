package irontelemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func testQueue(t *testing.T, maxSize int) *offlineQueue {
	t.Helper()
	return newOfflineQueue(maxSize, t.TempDir(), zerolog.Nop())
}

func queueEvent(id string) Event {
	return Event{
		EventID:   id,
		Timestamp: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
		Level:     SeverityError,
		Message:   "boom " + id,
		Platform:  PlatformInfo{Name: "go"},
	}
}

func TestOfflineQueue_EvictsOldestAtCapacity(t *testing.T) {
	q := testQueue(t, 3)

	for i := 0; i < 5; i++ {
		q.enqueue(queueEvent(fmt.Sprintf("e-%d", i)))
	}

	got := q.snapshot()
	require.Len(t, got, 3)
	// The last maxSize inserted, in insertion order.
	require.Equal(t, "e-2", got[0].EventID)
	require.Equal(t, "e-3", got[1].EventID)
	require.Equal(t, "e-4", got[2].EventID)
}

func TestOfflineQueue_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	q := newOfflineQueue(10, dir, zerolog.Nop())
	q.enqueue(queueEvent("e-1"))
	q.enqueue(queueEvent("e-2"))

	reloaded := newOfflineQueue(10, dir, zerolog.Nop())
	got := reloaded.snapshot()
	require.Len(t, got, 2)
	require.Equal(t, "e-1", got[0].EventID)
	require.Equal(t, "e-2", got[1].EventID)
	require.Equal(t, "boom e-1", got[0].Message)
}

func TestOfflineQueue_CorruptFileLoadsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, queueFileName), []byte("{not json"), 0o600))

	q := newOfflineQueue(10, dir, zerolog.Nop())
	require.Equal(t, 0, q.size())
	require.True(t, q.isEmpty())
}

func TestOfflineQueue_MissingFileLoadsEmpty(t *testing.T) {
	q := testQueue(t, 10)
	require.True(t, q.isEmpty())
}

func TestOfflineQueue_RemoveIsIdempotent(t *testing.T) {
	q := testQueue(t, 10)
	q.enqueue(queueEvent("e-1"))
	q.enqueue(queueEvent("e-2"))
	q.enqueue(queueEvent("e-3"))

	q.remove("e-2")
	q.remove("e-2") // absent id, no-op
	q.remove("never-existed")

	got := q.snapshot()
	require.Len(t, got, 2)
	require.Equal(t, "e-1", got[0].EventID)
	require.Equal(t, "e-3", got[1].EventID)
}

func TestOfflineQueue_RemovePersists(t *testing.T) {
	dir := t.TempDir()

	q := newOfflineQueue(10, dir, zerolog.Nop())
	q.enqueue(queueEvent("e-1"))
	q.enqueue(queueEvent("e-2"))
	q.remove("e-1")

	reloaded := newOfflineQueue(10, dir, zerolog.Nop())
	got := reloaded.snapshot()
	require.Len(t, got, 1)
	require.Equal(t, "e-2", got[0].EventID)
}

func TestOfflineQueue_Clear(t *testing.T) {
	dir := t.TempDir()

	q := newOfflineQueue(10, dir, zerolog.Nop())
	q.enqueue(queueEvent("e-1"))
	q.clear()
	require.True(t, q.isEmpty())

	reloaded := newOfflineQueue(10, dir, zerolog.Nop())
	require.True(t, reloaded.isEmpty())
}

func TestOfflineQueue_FileIsJSONArray(t *testing.T) {
	dir := t.TempDir()

	q := newOfflineQueue(10, dir, zerolog.Nop())
	q.enqueue(queueEvent("e-1"))

	data, err := os.ReadFile(filepath.Join(dir, queueFileName))
	require.NoError(t, err)

	var events []map[string]any
	require.NoError(t, json.Unmarshal(data, &events))
	require.Len(t, events, 1)
	require.Equal(t, "e-1", events[0]["eventId"])
}

func TestOfflineQueue_UnwritableStorageKeepsOperatingInMemory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "blocked")
	require.NoError(t, os.MkdirAll(dir, 0o500))
	t.Cleanup(func() { os.Chmod(dir, 0o700) })

	q := newOfflineQueue(10, dir, zerolog.Nop())
	q.enqueue(queueEvent("e-1"))

	// Persistence failed silently; in-memory state is authoritative.
	got := q.snapshot()
	require.Len(t, got, 1)
	require.Equal(t, "e-1", got[0].EventID)
}
