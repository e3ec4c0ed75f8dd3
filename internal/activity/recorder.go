package activity

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/nerrad567/homesim/internal/device"
)

const storeTimeout = 2 * time.Second

// Recorder turns device events into history entries and, when a store is
// set, persisted rows. It also implements sensor.Subscriber so readings
// reach the store.
//
// The source attached to each entry is whatever was last passed to
// SetSource. The console sets it before each operation.
type Recorder struct {
	history *History
	store   Store

	// readings mirrors recent sensor readings for when there is no store.
	readingsMu sync.RWMutex
	readings   []Reading

	source  string
	now     func() time.Time
	logger  Logger
}

// NewRecorder creates a recorder writing to history. store may be nil.
func NewRecorder(history *History, store Store) *Recorder {
	return &Recorder{
		history: history,
		store:   store,
		source:  SourceConsole,
		now:     time.Now,
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for store failures.
func (r *Recorder) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	r.logger = logger
}

// SetSource sets the source recorded on subsequent entries.
func (r *Recorder) SetSource(source string) {
	r.source = source
}

// Source returns the current source.
func (r *Recorder) Source() string {
	return r.source
}

// History returns the in-memory history.
func (r *Recorder) History() *History {
	return r.history
}

// DeviceChanged implements device.Listener.
func (r *Recorder) DeviceChanged(e device.Event) {
	entry := Entry{
		Device: e.Device,
		Kind:   e.Kind,
		On:     e.On,
		Source: r.source,
		At:     r.now().UTC(),
	}
	r.history.Add(entry)

	if r.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := r.store.Record(ctx, entry); err != nil {
		r.logger.Error("recording activity", "device", e.Device, "error", err)
	}
}

// ReactToSensor keeps a broadcast reading in memory and persists it.
func (r *Recorder) ReactToSensor(value int) {
	at := r.now().UTC()

	r.readingsMu.Lock()
	if len(r.readings) == r.history.Limit() {
		r.readings = slices.Delete(r.readings, 0, 1)
	}
	r.readings = append(r.readings, Reading{Value: value, At: at})
	r.readingsMu.Unlock()

	if r.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := r.store.RecordReading(ctx, value, at); err != nil {
		r.logger.Error("recording sensor reading", "value", value, "error", err)
	}
}

// Recent returns up to n entries, newest last. The store is preferred
// when present because it survives restarts; on a store error the
// in-memory history is used.
func (r *Recorder) Recent(ctx context.Context, n int) []Entry {
	if r.store != nil {
		entries, err := r.store.Recent(ctx, n)
		if err == nil {
			return entries
		}
		r.logger.Warn("reading activity store, using memory", "error", err)
	}
	return r.history.Recent(n)
}

// ForDevice returns up to n entries for one device, newest last, from the
// store when present and otherwise from memory.
func (r *Recorder) ForDevice(ctx context.Context, name string, n int) []Entry {
	if r.store != nil {
		entries, err := r.store.ForDevice(ctx, name, n)
		if err == nil {
			return entries
		}
		r.logger.Warn("reading device activity from store, using memory", "device", name, "error", err)
	}
	return r.history.ForDevice(name, n)
}

// Readings returns up to n sensor readings, newest last, from the store
// when present and otherwise from memory.
func (r *Recorder) Readings(ctx context.Context, n int) []Reading {
	if r.store != nil {
		readings, err := r.store.Readings(ctx, n)
		if err == nil {
			return readings
		}
		r.logger.Warn("reading sensor readings from store, using memory", "error", err)
	}

	r.readingsMu.RLock()
	defer r.readingsMu.RUnlock()
	start := 0
	if n > 0 && n < len(r.readings) {
		start = len(r.readings) - n
	}
	return slices.Clone(r.readings[start:])
}
