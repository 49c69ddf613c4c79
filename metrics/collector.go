package metrics

import "github.com/prometheus/client_golang/prometheus"

// prometheusCollector adapts Monitor.Stats to the prometheus.Collector
// interface so a host process can scrape lifetime throughput alongside its
// own metrics, without the windowed-average bookkeeping living in
// Prometheus's own (differently-shaped) histogram/summary types.
type prometheusCollector struct {
	monitor *Monitor

	totalTransactions  *prometheus.Desc
	batchesProcessed   *prometheus.Desc
	transactionsPerSec *prometheus.Desc
	peakTPS            *prometheus.Desc
	avgBatchTimeMillis *prometheus.Desc
}

func newPrometheusCollector(m *Monitor) *prometheusCollector {
	return &prometheusCollector{
		monitor: m,
		totalTransactions: prometheus.NewDesc(
			"ledger_total_transactions",
			"Lifetime count of transactions sealed into a block.",
			nil, nil,
		),
		batchesProcessed: prometheus.NewDesc(
			"ledger_batches_processed",
			"Lifetime count of batches sealed into a block.",
			nil, nil,
		),
		transactionsPerSec: prometheus.NewDesc(
			"ledger_transactions_per_second",
			"Lifetime average transactions processed per second.",
			nil, nil,
		),
		peakTPS: prometheus.NewDesc(
			"ledger_peak_transactions_per_second",
			"All-time peak single-batch transactions per second.",
			nil, nil,
		),
		avgBatchTimeMillis: prometheus.NewDesc(
			"ledger_average_batch_time_milliseconds",
			"Rolling-window average batch processing time, in milliseconds.",
			nil, nil,
		),
	}
}

func (c *prometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalTransactions
	ch <- c.batchesProcessed
	ch <- c.transactionsPerSec
	ch <- c.peakTPS
	ch <- c.avgBatchTimeMillis
}

func (c *prometheusCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.monitor.Stats()
	ch <- prometheus.MustNewConstMetric(c.totalTransactions, prometheus.CounterValue, float64(stats.TotalTransactions))
	ch <- prometheus.MustNewConstMetric(c.batchesProcessed, prometheus.CounterValue, float64(stats.BatchesProcessed))
	ch <- prometheus.MustNewConstMetric(c.transactionsPerSec, prometheus.GaugeValue, stats.TransactionsPerSecond)
	ch <- prometheus.MustNewConstMetric(c.peakTPS, prometheus.GaugeValue, stats.PeakTPS)
	ch <- prometheus.MustNewConstMetric(c.avgBatchTimeMillis, prometheus.GaugeValue, float64(stats.AverageBatchTime.Milliseconds()))
}
