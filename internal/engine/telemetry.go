package engine

import (
	"sync"
	"time"

	"github.com/coder/quartz"
)

// Counters aggregate all runs of one game type over the process lifetime.
type Counters struct {
	Runs            int
	TotalSamples    int
	TotalDurationMs int64
}

// RunRecord is one entry in the bounded run history.
type RunRecord struct {
	Type       GameType
	Samples    int
	DurationMs int64
	Reason     string
	Timestamp  time.Time
}

// Metrics is a read-only snapshot of the telemetry state.
type Metrics struct {
	PerGameType map[GameType]Counters
	History     []RunRecord
}

// Telemetry records completed calculation runs. It is purely
// observational and never influences calculation results. The mutex
// makes appends safe if calls overlap at yield points.
type Telemetry struct {
	mu      sync.Mutex
	clock   quartz.Clock
	window  int
	perType map[GameType]Counters
	history []RunRecord
}

// DefaultTelemetryWindow is the number of run records kept when no
// window is configured.
const DefaultTelemetryWindow = 20

// NewTelemetry creates a telemetry store keeping at most window history
// entries. A nil clock falls back to the real clock.
func NewTelemetry(window int, clock quartz.Clock) *Telemetry {
	if window <= 0 {
		window = DefaultTelemetryWindow
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Telemetry{
		clock:   clock,
		window:  window,
		perType: make(map[GameType]Counters),
	}
}

// Record appends one completed run, evicting the oldest history entry
// past the window.
func (t *Telemetry) Record(gameType GameType, samples int, duration time.Duration, reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c := t.perType[gameType]
	c.Runs++
	c.TotalSamples += samples
	c.TotalDurationMs += duration.Milliseconds()
	t.perType[gameType] = c

	t.history = append(t.history, RunRecord{
		Type:       gameType,
		Samples:    samples,
		DurationMs: duration.Milliseconds(),
		Reason:     reason,
		Timestamp:  t.clock.Now(),
	})
	if len(t.history) > t.window {
		t.history = t.history[len(t.history)-t.window:]
	}
}

// Snapshot returns a copy of the current telemetry state.
func (t *Telemetry) Snapshot() Metrics {
	t.mu.Lock()
	defer t.mu.Unlock()

	m := Metrics{
		PerGameType: make(map[GameType]Counters, len(t.perType)),
		History:     make([]RunRecord, len(t.history)),
	}
	for k, v := range t.perType {
		m.PerGameType[k] = v
	}
	copy(m.History, t.history)
	return m
}

// Reset clears all counters and history, for test isolation.
func (t *Telemetry) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.perType = make(map[GameType]Counters)
	t.history = nil
}
