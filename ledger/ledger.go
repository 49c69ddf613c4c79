// Package ledger implements the ledger state described by the system: the
// hash-linked chain, the balance map, the pending-transaction pool, and the
// bounded submission queue, plus the concurrent ingestion path (Submit)
// that validates, deduplicates, prechecks balance, and admits transactions
// into the queue the background processor (package miner) drains.
package ledger

import (
	"sync"
	"time"

	"github.com/RomainGratier/prod-testing-bc/internal/runtimeinit"
	"github.com/RomainGratier/prod-testing-bc/ledgererr"
	"github.com/RomainGratier/prod-testing-bc/log"
	"github.com/RomainGratier/prod-testing-bc/metrics"
	"github.com/RomainGratier/prod-testing-bc/miner"
	"github.com/RomainGratier/prod-testing-bc/types"
)

// Ledger is the process-wide ledger state. It is created once via New and
// lives for the host process's lifetime, shared across arbitrary
// concurrent producers and the single background processor. Methods are
// safe for concurrent use.
type Ledger struct {
	cfg     Config
	logger  log.Logger
	monitor *metrics.Monitor

	chainMu sync.RWMutex
	chain   []types.Block

	balances *balances
	pool     *pool

	queue chan types.Transaction

	worker *miner.Worker
}

// New constructs a Ledger with an empty chain save for the genesis block,
// empty balances and pool, and a bounded submission queue. The background
// processor is not started; call StartBackgroundProcessor for that.
func New(cfg Config) (*Ledger, error) {
	cfg = cfg.withDefaults()

	runtimeinit.Init()

	monitor, err := metrics.NewMonitor(cfg.Registerer)
	if err != nil {
		return nil, ledgererr.NewInternal(err)
	}

	l := &Ledger{
		cfg:      cfg,
		logger:   cfg.Logger,
		monitor:  monitor,
		chain:    []types.Block{types.NewGenesisBlock()},
		balances: newBalances(),
		pool:     newPool(),
		queue:    make(chan types.Transaction, cfg.QueueCapacity),
	}
	l.worker = miner.NewWorker(l, cfg.Difficulty, cfg.BatchSize, cfg.TickInterval, l.logger)
	return l, nil
}

// Submit validates tx, rejects duplicates and (for non-genesis transfers)
// insufficient balances, then admits it into the processing queue.
//
// The balance check is optimistic: no lock is held between it and the
// processor's later apply, so a race can still admit an overspending
// transaction (see balances.DebitSaturating). This is a documented
// trade-off, not a bug.
func (l *Ledger) Submit(tx types.Transaction) error {
	if err := tx.Validate(); err != nil {
		l.logger.Debug("rejected transaction", "reason", err)
		return err
	}

	if !l.pool.InsertIfAbsent(tx) {
		l.logger.Debug("rejected transaction", "reason", "duplicate", "id", tx.ID)
		return ledgererr.ErrDuplicateTransaction
	}

	if !tx.IsGenesisIssuance() {
		if l.balances.Get(tx.From) < tx.Amount {
			l.pool.Delete(tx.ID)
			l.logger.Debug("rejected transaction", "reason", "insufficient balance", "from", tx.From, "amount", tx.Amount)
			return ledgererr.ErrInsufficientBalance
		}
	}

	select {
	case l.queue <- tx:
		return nil
	default:
		// The pool entry is intentionally left in place: a known minor
		// leak, acceptable in trade for never blocking a producer on a
		// full queue.
		l.logger.Warn("submission queue full", "capacity", cap(l.queue))
		return ledgererr.NewPerformanceLimitExceeded("submission queue is full")
	}
}

// StartBackgroundProcessor launches the single background task that drains
// the queue on a fixed tick and seals blocks. It is idempotent; callers
// should invoke it exactly once; a second call is a no-op.
func (l *Ledger) StartBackgroundProcessor() {
	l.worker.Start()
}

// Stop halts the background processor, if running. It is not part of the
// documented external interface (the source runs until process exit) but
// lets tests and embedding hosts shut down cleanly.
func (l *Ledger) Stop() {
	l.worker.Stop()
}

// Process drains up to batchSize transactions from the queue and, if any
// were drained, applies their balance effects and seals a new block. An
// empty drain is a no-op. This is the same operation the background
// processor invokes every tick; callers may also invoke it directly (for
// example in tests, with the background processor not started).
func (l *Ledger) Process(batchSize int) error {
	return l.worker.Process(batchSize)
}

// Balance returns addr's current balance, or 0 if it has never been
// credited.
func (l *Ledger) Balance(addr string) uint64 {
	return l.balances.Get(addr)
}

// TransactionCount returns the sum of transaction counts across every
// block in the chain, genesis included (which contributes zero).
func (l *Ledger) TransactionCount() int {
	l.chainMu.RLock()
	defer l.chainMu.RUnlock()
	total := 0
	for _, b := range l.chain {
		total += len(b.Transactions)
	}
	return total
}

// LatestBlock returns a copy of the chain tip.
func (l *Ledger) LatestBlock() types.Block {
	return l.Tip()
}

// Stats returns a synchronous performance snapshot; it never suspends the
// caller on the processor's activity.
func (l *Ledger) Stats() metrics.Stats {
	return l.monitor.Stats()
}

// The methods below implement miner.LedgerState.

// DequeueBatch pops up to max items from the queue non-blockingly, stopping
// early once the queue is observed empty.
func (l *Ledger) DequeueBatch(max int) []types.Transaction {
	batch := make([]types.Transaction, 0, max)
	for i := 0; i < max; i++ {
		select {
		case tx := <-l.queue:
			batch = append(batch, tx)
		default:
			return batch
		}
	}
	return batch
}

// ApplyBalances mutates the balance map for each transaction in drain
// order: debit From (saturating at zero), credit To.
func (l *Ledger) ApplyBalances(txs []types.Transaction) {
	for _, tx := range txs {
		if !tx.IsGenesisIssuance() {
			l.balances.DebitSaturating(tx.From, tx.Amount)
		}
		l.balances.Credit(tx.To, tx.Amount)
	}
}

// Tip returns a copy of the current chain tip. Readers may proceed
// concurrently with each other; only Append excludes them.
func (l *Ledger) Tip() types.Block {
	l.chainMu.RLock()
	defer l.chainMu.RUnlock()
	return l.chain[len(l.chain)-1]
}

// Height returns the number of blocks currently on the chain, genesis
// included. The index a block about to be appended will occupy equals
// the Height observed just before the Append call.
func (l *Ledger) Height() int {
	l.chainMu.RLock()
	defer l.chainMu.RUnlock()
	return len(l.chain)
}

// Append pushes a block onto the chain. The caller (miner.Worker) is
// responsible for validating it first; Append itself only holds the write
// lock across the push, never doing expensive work while excluding
// readers.
func (l *Ledger) Append(b types.Block) {
	l.chainMu.Lock()
	defer l.chainMu.Unlock()
	l.chain = append(l.chain, b)
}

// Record reports a processed batch's size and elapsed wall-clock time to
// the performance monitor.
func (l *Ledger) Record(size int, dur time.Duration) {
	l.monitor.Record(size, dur)
}
