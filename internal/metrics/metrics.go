package metrics

import (
	"sync"
	"time"
)

type storageStats struct {
	calls         int
	errors        int
	lastLatency   time.Duration
	lastErrorText string
}

// Recorder captures lightweight, in-memory metrics about storage calls and game activity,
// mirrored into OpenTelemetry instruments when Setup enabled them.
type Recorder struct {
	mu          sync.Mutex
	stats       map[string]*storageStats
	submitted   int
	correct     int
	subscribers int
	otel        *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats: make(map[string]*storageStats),
		otel:  otel,
	}
}

func statsKey(backend, op string) string {
	return backend + "/" + op
}

// RecordStorageOp counts a storage call and stores its latency.
func (r *Recorder) RecordStorageOp(backend, op string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStatsLocked(statsKey(backend, op))
	stats.calls++
	stats.lastLatency = duration
	if err != nil {
		stats.errors++
		stats.lastErrorText = err.Error()
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordStorageOp(backend, op, duration, err)
	}
}

// RecordGuessSubmitted counts an accepted submission.
func (r *Recorder) RecordGuessSubmitted(correct bool) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.submitted++
	if correct {
		r.correct++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordGuess(correct)
	}
}

// RecordSubscribers adjusts the live websocket subscriber count by delta.
func (r *Recorder) RecordSubscribers(delta int) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.subscribers += delta
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordSubscribers(delta)
	}
}

// Snapshot is a copy of the stats for one backend operation.
type Snapshot struct {
	Calls         int
	Errors        int
	LastLatency   time.Duration
	LastErrorText string
}

// Storage returns the current stats for a backend operation.
func (r *Recorder) Storage(backend, op string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stats, ok := r.stats[statsKey(backend, op)]
	if !ok || stats == nil {
		return Snapshot{}
	}
	return Snapshot{
		Calls:         stats.calls,
		Errors:        stats.errors,
		LastLatency:   stats.lastLatency,
		LastErrorText: stats.lastErrorText,
	}
}

// GuessCounts returns submitted and correct totals.
func (r *Recorder) GuessCounts() (submitted, correct int) {
	if r == nil {
		return 0, 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.submitted, r.correct
}

// Subscribers returns the live websocket subscriber count.
func (r *Recorder) Subscribers() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.subscribers
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// RecordPollerCycle tracks poller cycles and errors.
func (r *Recorder) RecordPollerCycle(duration time.Duration, err error) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordPoller(duration, err)
}

func (r *Recorder) ensureStatsLocked(key string) *storageStats {
	stats, ok := r.stats[key]
	if !ok {
		stats = &storageStats{}
		r.stats[key] = stats
	}
	return stats
}
