// Package params holds the tunable constants of the ledger: one named
// constant per knob, with its default spelled out in a doc comment.
package params

import "time"

const (
	// SubmissionQueueCapacity bounds the number of transactions that may
	// be pending processing at once. Submit fails with a backpressure
	// error once this many transactions are queued and undrained.
	SubmissionQueueCapacity = 100_000

	// DefaultBatchSize is the number of transactions the processor drains
	// from the queue per tick, absent an explicit override.
	DefaultBatchSize = 1000

	// ProcessorTickInterval is how often the background processor wakes
	// up to drain the queue and seal a block.
	ProcessorTickInterval = 10 * time.Millisecond

	// DefaultDifficulty is the number of leading hex-zero characters a
	// mined block's hash must have.
	DefaultDifficulty = 2

	// MonitorWindowSize is the number of most recent batches the
	// performance monitor keeps for its rolling average.
	MonitorWindowSize = 100
)
