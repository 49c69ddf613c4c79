// Package metrics implements the ledger's rolling performance monitor: a
// fixed-size window of recent batch durations used to report a windowed
// average batch time, alongside lifetime throughput and the all-time peak
// throughput (kept as running totals, not in the window), optionally
// mirrored onto a Prometheus registry for scraping.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/RomainGratier/prod-testing-bc/params"
)

// Stats is a synchronous snapshot of the monitor's state.
type Stats struct {
	TotalTransactions     uint64
	BatchesProcessed      uint64
	TransactionsPerSecond float64
	AverageBatchTime      time.Duration
	PeakTPS               float64
}

// Monitor records per-batch throughput and exposes rolling-window
// statistics. All methods are safe for concurrent use from arbitrary
// goroutines: Record is called by the processor after sealing each block,
// Stats may be called synchronously from any caller without blocking on the
// processor.
type Monitor struct {
	mu sync.Mutex

	window      int
	createdAt   time.Time
	totalTxs    uint64
	batches     uint64
	peakTPS     float64
	nextInRing  int // index of the next slot Record will overwrite
	filledRing  bool
	ringStorage []time.Duration

	collector *prometheusCollector
}

// NewMonitor builds a Monitor with the default rolling-window size
// (params.MonitorWindowSize). If reg is non-nil, counters and gauges
// mirroring Stats are registered on it; registration failures (e.g. a name collision) are
// surfaced to the caller rather than silently ignored, since a host process
// wiring observability wants to know its scrape target is incomplete.
func NewMonitor(reg prometheus.Registerer) (*Monitor, error) {
	m := &Monitor{
		window:      params.MonitorWindowSize,
		createdAt:   time.Now(),
		ringStorage: make([]time.Duration, params.MonitorWindowSize),
	}
	if reg != nil {
		c := newPrometheusCollector(m)
		if err := reg.Register(c); err != nil {
			return nil, err
		}
		m.collector = c
	}
	return m, nil
}

// Record appends a batch observation, evicting the oldest once the window
// is full, and updates the lifetime total and all-time peak. A zero
// duration batch (e.g. an empty drain, which the processor never records,
// or a clock that didn't advance) is skipped for the peak calculation but
// still counted toward the total.
func (m *Monitor) Record(size int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalTxs += uint64(size)
	m.batches++
	m.ringStorage[m.nextInRing] = duration
	m.nextInRing = (m.nextInRing + 1) % m.window
	if m.nextInRing == 0 {
		m.filledRing = true
	}

	if duration > 0 {
		tps := float64(size) / duration.Seconds()
		if tps > m.peakTPS {
			m.peakTPS = tps
		}
	}
}

// Stats returns a consistent synchronous snapshot. It never suspends the
// caller on the processor's activity.
func (m *Monitor) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	elapsed := time.Since(m.createdAt).Seconds()
	var tps float64
	if elapsed > 0 {
		tps = float64(m.totalTxs) / elapsed
	}

	n := m.nextInRing
	if m.filledRing {
		n = m.window
	}
	var sum time.Duration
	for i := 0; i < n; i++ {
		sum += m.ringStorage[i]
	}
	var avg time.Duration
	if n > 0 {
		avg = sum / time.Duration(n)
	}

	return Stats{
		TotalTransactions:     m.totalTxs,
		BatchesProcessed:      m.batches,
		TransactionsPerSecond: tps,
		AverageBatchTime:      avg,
		PeakTPS:               m.peakTPS,
	}
}
