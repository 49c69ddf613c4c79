package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestRecordAccumulatesTotals(t *testing.T) {
	m, err := NewMonitor(nil)
	require.NoError(t, err)

	m.Record(100, 10*time.Millisecond)
	m.Record(200, 20*time.Millisecond)

	stats := m.Stats()
	require.EqualValues(t, 300, stats.TotalTransactions)
	require.EqualValues(t, 2, stats.BatchesProcessed)
	require.Greater(t, stats.TransactionsPerSecond, 0.0)
}

func TestPeakTPSNeverDecreases(t *testing.T) {
	m, err := NewMonitor(nil)
	require.NoError(t, err)

	// Each batch's duration is first spent in wall-clock time, as the
	// processor would, so lifetime TPS covers at least the recorded work.
	time.Sleep(10 * time.Millisecond)
	m.Record(1000, 10*time.Millisecond) // 100,000 tx/s
	first := m.Stats().PeakTPS

	time.Sleep(10 * time.Millisecond)
	m.Record(10, 10*time.Millisecond) // 1,000 tx/s, much slower batch
	second := m.Stats().PeakTPS

	require.Equal(t, first, second)
	require.GreaterOrEqual(t, second, m.Stats().TransactionsPerSecond)
}

func TestZeroDurationBatchIsSkippedForPeakButCountsToTotal(t *testing.T) {
	m, err := NewMonitor(nil)
	require.NoError(t, err)

	m.Record(500, 0)
	stats := m.Stats()
	require.EqualValues(t, 500, stats.TotalTransactions)
	require.Equal(t, 0.0, stats.PeakTPS)
}

func TestWindowEvictsOldestBatch(t *testing.T) {
	m, err := NewMonitor(nil)
	require.NoError(t, err)

	// The first 50 batches are slow (10ms), the last 100 fast (1ms).
	for i := 0; i < 150; i++ {
		d := time.Millisecond
		if i < 50 {
			d = 10 * time.Millisecond
		}
		m.Record(1, d)
	}
	// after 150 records only the last `window` (100) remain, so the rolling
	// average is 1ms, not the 4ms an average over all 150 samples would give.
	stats := m.Stats()
	require.Equal(t, time.Millisecond, stats.AverageBatchTime)
}

func TestConcurrentRecordAndStatsDoNotRace(t *testing.T) {
	m, err := NewMonitor(nil)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			m.Record(1, time.Microsecond)
		}
		close(done)
	}()
	for i := 0; i < 1000; i++ {
		_ = m.Stats()
	}
	<-done
}

func TestPrometheusRegistrationExportsGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMonitor(reg)
	require.NoError(t, err)

	m.Record(42, 5*time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	var foundTotal, foundBatches bool
	for _, f := range families {
		switch f.GetName() {
		case "ledger_total_transactions":
			foundTotal = true
			require.Len(t, f.Metric, 1)
			require.Equal(t, float64(42), f.Metric[0].Counter.GetValue())
		case "ledger_batches_processed":
			foundBatches = true
			require.Len(t, f.Metric, 1)
			require.Equal(t, float64(1), f.Metric[0].Counter.GetValue())
		}
	}
	require.True(t, foundTotal, "expected ledger_total_transactions to be exported")
	require.True(t, foundBatches, "expected ledger_batches_processed to be exported")
}

func TestDuplicateRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMonitor(reg)
	require.NoError(t, err)

	_, err = NewMonitor(reg)
	require.Error(t, err, "a second monitor on the same registry must collide on metric names")
}
