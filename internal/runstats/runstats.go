// Package runstats collects wall-time and memory figures for parity runs.
package runstats

import (
	"fmt"
	"runtime"
	"time"
)

// Timer measures the wall time of one case run.
type Timer struct {
	name     string
	start    time.Time
	duration time.Duration
}

// Start begins timing under the given name.
func Start(name string) *Timer {
	return &Timer{name: name, start: time.Now()}
}

// Stop freezes the timer and returns the elapsed duration.
func (t *Timer) Stop() time.Duration {
	t.duration = time.Since(t.start)
	return t.duration
}

// Duration returns the recorded duration, valid after Stop.
func (t *Timer) Duration() time.Duration {
	return t.duration
}

// Name returns the timer name.
func (t *Timer) Name() string {
	return t.name
}

func (t *Timer) String() string {
	if t.name != "" {
		return fmt.Sprintf("%s: %v", t.name, t.duration)
	}
	return t.duration.String()
}

// MemoryStats is a snapshot of the allocator counters that matter for a
// parity run report.
type MemoryStats struct {
	Alloc      uint64
	TotalAlloc uint64
	Sys        uint64
	NumGC      uint32
}

// ReadMemoryStats snapshots the current allocator counters.
func ReadMemoryStats() MemoryStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemoryStats{
		Alloc:      m.Alloc,
		TotalAlloc: m.TotalAlloc,
		Sys:        m.Sys,
		NumGC:      m.NumGC,
	}
}

func (s MemoryStats) String() string {
	return fmt.Sprintf("Alloc: %d KB, TotalAlloc: %d KB, Sys: %d KB, GC runs: %d",
		s.Alloc/1024, s.TotalAlloc/1024, s.Sys/1024, s.NumGC)
}
