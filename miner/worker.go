// Copyright 2015 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package miner implements the batch processor: it drains the ledger's
// submission queue on a fixed tick, applies balance effects, seals a new
// block on top of the chain tip, and records the round's performance.
package miner

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/RomainGratier/prod-testing-bc/ledgererr"
	"github.com/RomainGratier/prod-testing-bc/log"
	"github.com/RomainGratier/prod-testing-bc/types"
)

// LedgerState is the slice of Ledger the worker needs to drain the queue,
// apply balance effects, and extend the chain. It exists so this package
// does not import package ledger, which owns and constructs a Worker.
type LedgerState interface {
	DequeueBatch(max int) []types.Transaction
	ApplyBalances(txs []types.Transaction)
	Tip() types.Block
	Height() int
	Append(b types.Block)
	Record(size int, dur time.Duration)
}

// Worker is the background batch processor. A Worker is constructed once
// per Ledger; Start and Stop are idempotent, and a stopped Worker may be
// started again. Process may additionally be called directly; it does not
// touch Worker's own state, but it is not serialized against the
// background loop or other Process calls, so two rounds running at once
// can both seal a block on the same tip.
type Worker struct {
	state      LedgerState
	difficulty int
	batchSize  int
	tick       time.Duration
	log        log.Logger

	mu      sync.Mutex
	running int32
	stopper chan struct{}
	done    chan struct{}
}

// NewWorker constructs a Worker bound to state. It does not start the
// background loop; call Start for that.
func NewWorker(state LedgerState, difficulty, batchSize int, tick time.Duration, logger log.Logger) *Worker {
	return &Worker{
		state:      state,
		difficulty: difficulty,
		batchSize:  batchSize,
		tick:       tick,
		log:        logger,
	}
}

// Start launches the background loop if it is not already running. A
// second call while running is a no-op.
func (w *Worker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !atomic.CompareAndSwapInt32(&w.running, 0, 1) {
		return
	}
	w.stopper = make(chan struct{})
	w.done = make(chan struct{})
	go w.loop(w.stopper, w.done)
	w.log.Info("processor started")
}

// Stop halts the background loop if running and waits for it to exit. A
// call while not running is a no-op.
func (w *Worker) Stop() {
	w.mu.Lock()
	stopper, done := w.stopper, w.done
	running := atomic.CompareAndSwapInt32(&w.running, 1, 0)
	w.mu.Unlock()
	if !running {
		return
	}
	close(stopper)
	<-done
	w.log.Info("processor stopped")
}

func (w *Worker) loop(stopper, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			// Process logs its own outcome; the tick simply continues
			// regardless of error, matching the documented "logs and
			// continues" behavior of the background processor.
			_ = w.Process(w.batchSize)
		case <-stopper:
			return
		}
	}
}

// Process drains up to batchSize transactions from the queue. An empty
// drain is a no-op: no block is sealed and nothing is recorded. Otherwise
// it applies the batch's balance effects, seals a new block linked to the
// current tip, mines it to the configured difficulty, and appends it —
// recording the batch's size and elapsed wall-clock time regardless of
// outcome once mining has started.
func (w *Worker) Process(batchSize int) error {
	batch := w.state.DequeueBatch(batchSize)
	if len(batch) == 0 {
		return nil
	}

	start := time.Now()

	w.state.ApplyBalances(batch)

	tip := w.state.Tip()
	index := w.state.Height()
	block := types.NewBlock(tip.Hash, batch)
	block.Mine(w.difficulty)

	if err := block.Validate(&tip); err != nil {
		elapsed := time.Since(start)
		w.state.Record(len(batch), elapsed)
		w.log.Error("block validation failed", "batch_size", len(batch), "index", index, "elapsed", elapsed, "err", err)
		return ledgererr.NewBlockValidationFailed(err.Error())
	}
	if !block.HasValidProofOfWork(w.difficulty) {
		elapsed := time.Since(start)
		w.state.Record(len(batch), elapsed)
		err := ledgererr.NewBlockValidationFailed("mined block does not satisfy configured difficulty")
		w.log.Error("block validation failed", "batch_size", len(batch), "index", index, "elapsed", elapsed, "err", err)
		return err
	}

	w.state.Append(block)
	elapsed := time.Since(start)
	w.state.Record(len(batch), elapsed)
	w.log.Info("sealed block", "batch_size", len(batch), "index", index, "elapsed", elapsed)
	return nil
}
