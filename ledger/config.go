package ledger

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/RomainGratier/prod-testing-bc/log"
	"github.com/RomainGratier/prod-testing-bc/params"
)

// Config tunes a Ledger at construction. The zero value reproduces the
// source's hard-coded defaults exactly (queue capacity 100000, batch size
// 1000, 10ms tick, difficulty 2).
type Config struct {
	// QueueCapacity bounds the submission channel. Zero means
	// params.SubmissionQueueCapacity.
	QueueCapacity int

	// BatchSize is the default batch size StartBackgroundProcessor uses
	// on every tick. Zero means params.DefaultBatchSize. An explicit
	// batch size may still be passed to Process per call.
	BatchSize int

	// TickInterval is how often the background processor wakes up.
	// Zero means params.ProcessorTickInterval.
	TickInterval time.Duration

	// Difficulty is the number of leading hex-zero characters a mined
	// block's hash must carry. Zero means params.DefaultDifficulty.
	Difficulty int

	// Registerer, if non-nil, receives the Prometheus collector backing
	// the performance monitor. Leave nil in tests to avoid colliding on
	// the default registry.
	Registerer prometheus.Registerer

	// Logger receives structured events from ingestion and processing.
	// Nil means log.Default().
	Logger log.Logger
}

func (c Config) withDefaults() Config {
	if c.QueueCapacity == 0 {
		c.QueueCapacity = params.SubmissionQueueCapacity
	}
	if c.BatchSize == 0 {
		c.BatchSize = params.DefaultBatchSize
	}
	if c.TickInterval == 0 {
		c.TickInterval = params.ProcessorTickInterval
	}
	if c.Difficulty == 0 {
		c.Difficulty = params.DefaultDifficulty
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	return c
}
