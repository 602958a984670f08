package wal

import (
	"sync/atomic"
	"time"
)

// LatencyBuckets are the histogram boundaries (in nanoseconds) Metrics
// sorts append latencies into.
var LatencyBuckets = []time.Duration{
	time.Microsecond,
	10 * time.Microsecond,
	100 * time.Microsecond,
	time.Millisecond,
	10 * time.Millisecond,
	100 * time.Millisecond,
	time.Second,
	10 * time.Second,
}

// Metrics accumulates atomic counters for WAL operations. Safe for
// concurrent use, though in practice only the WAL's own goroutine and a
// drain goroutine touch it.
type Metrics struct {
	Appends       atomic.Uint64
	AppendErrors  atomic.Uint64
	AppendBytes   atomic.Uint64
	Drains        atomic.Uint64
	Completions   atomic.Uint64
	RecoveryScans atomic.Uint64
	BlocksScanned atomic.Uint64
	Iterates      atomic.Uint64
	IterateErrors atomic.Uint64

	latencyBuckets [len(LatencyBuckets) + 1]atomic.Uint64
}

// NewMetrics returns a zeroed Metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) recordLatency(latencyNs uint64) {
	d := time.Duration(latencyNs)
	for i, bucket := range LatencyBuckets {
		if d <= bucket {
			m.latencyBuckets[i].Add(1)
			return
		}
	}
	m.latencyBuckets[len(LatencyBuckets)].Add(1)
}

func (m *Metrics) ObserveAppend(bytes uint64, latencyNs uint64, success bool) {
	m.Appends.Add(1)
	if !success {
		m.AppendErrors.Add(1)
		return
	}
	m.AppendBytes.Add(bytes)
	m.recordLatency(latencyNs)
}

func (m *Metrics) ObserveDrain(count int, latencyNs uint64) {
	m.Drains.Add(1)
	m.Completions.Add(uint64(count))
}

func (m *Metrics) ObserveRecoveryScan(blocksScanned int, latencyNs uint64) {
	m.RecoveryScans.Add(1)
	m.BlocksScanned.Add(uint64(blocksScanned))
}

func (m *Metrics) ObserveIterate(entries int, success bool) {
	m.Iterates.Add(1)
	if !success {
		m.IterateErrors.Add(1)
	}
}

var _ Observer = (*Metrics)(nil)

// NoOpObserver discards every observation. It is the default Observer when
// Options.Observer is nil.
type NoOpObserver struct{}

func (NoOpObserver) ObserveAppend(bytes uint64, latencyNs uint64, success bool) {}
func (NoOpObserver) ObserveDrain(count int, latencyNs uint64)                   {}
func (NoOpObserver) ObserveRecoveryScan(blocksScanned int, latencyNs uint64)    {}
func (NoOpObserver) ObserveIterate(entries int, success bool)                  {}

var _ Observer = NoOpObserver{}
