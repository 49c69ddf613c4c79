package ledger

import (
	"fmt"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/RomainGratier/prod-testing-bc/ledgererr"
	"github.com/RomainGratier/prod-testing-bc/types"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := New(Config{})
	require.NoError(t, err)
	return l
}

func TestGenesisCredit(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.Submit(types.NewTransaction("", "alice", 1_000_000)))
	require.NoError(t, l.Process(10))

	require.EqualValues(t, 1_000_000, l.Balance("alice"))
	require.Equal(t, 2, len(l.chain))
	require.Len(t, l.chain[1].Transactions, 1)
	require.Equal(t, l.chain[0].Hash, l.LatestBlock().PreviousHash)
}

func TestTransferAfterGenesisCredit(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.Submit(types.NewTransaction("", "alice", 1_000_000)))
	require.NoError(t, l.Process(10))

	require.NoError(t, l.Submit(types.NewTransaction("alice", "bob", 250)))
	require.NoError(t, l.Process(10))

	require.EqualValues(t, 999_750, l.Balance("alice"))
	require.EqualValues(t, 250, l.Balance("bob"))
	require.Equal(t, 3, len(l.chain))
}

func TestInsufficientBalanceLeavesPoolAndChainUntouched(t *testing.T) {
	l := newTestLedger(t)

	err := l.Submit(types.NewTransaction("alice", "bob", 1))
	require.ErrorIs(t, err, ledgererr.ErrInsufficientBalance)

	require.Equal(t, 1, len(l.chain))
	require.Empty(t, l.pool.m)
}

func TestDuplicateSubmissionIsRejected(t *testing.T) {
	l := newTestLedger(t)

	tx := types.NewTransaction("", "alice", 1_000_000)
	require.NoError(t, l.Submit(tx))

	err := l.Submit(tx)
	require.ErrorIs(t, err, ledgererr.ErrDuplicateTransaction)
}

func TestZeroAmountSubmissionIsInvalid(t *testing.T) {
	l := newTestLedger(t)

	err := l.Submit(types.NewTransaction("alice", "bob", 0))
	var invalid *ledgererr.InvalidTransactionError
	require.ErrorAs(t, err, &invalid)
}

func TestSelfTransferSubmissionIsInvalid(t *testing.T) {
	l := newTestLedger(t)

	err := l.Submit(types.NewTransaction("alice", "alice", 10))
	var invalid *ledgererr.InvalidTransactionError
	require.ErrorAs(t, err, &invalid)
}

func TestBackpressureRejectsOnceQueueIsFull(t *testing.T) {
	l, err := New(Config{QueueCapacity: 100_000})
	require.NoError(t, err)

	for i := 0; i < 100_000; i++ {
		tx := types.NewTransaction("", "recipient", uint64(i+1))
		require.NoError(t, l.Submit(tx), "submission %d should succeed", i)
	}

	overflow := types.NewTransaction("", "recipient", 1)
	err = l.Submit(overflow)
	var limit *ledgererr.PerformanceLimitError
	require.ErrorAs(t, err, &limit)
}

func TestProcessWithEmptyQueueIsNoOp(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.Process(10))
	require.Equal(t, 1, len(l.chain))
}

// TestConcurrentProducersAgreeOnBalances drives many concurrent Submit
// callers crediting distinct addresses, then drains and applies the whole
// batch in one Process call. The sharded balance map and the
// insert-if-absent pool must leave every submission accounted for exactly
// once, with no lost or duplicated credit.
func TestConcurrentProducersAgreeOnBalances(t *testing.T) {
	l, err := New(Config{QueueCapacity: 1000})
	require.NoError(t, err)

	const producers = 200
	var g errgroup.Group
	for i := 0; i < producers; i++ {
		i := i
		g.Go(func() error {
			addr := fmt.Sprintf("addr-%d", i)
			return l.Submit(types.NewTransaction("", addr, uint64(i+1)))
		})
	}
	require.NoError(t, g.Wait())

	require.NoError(t, l.Process(producers))

	for i := 0; i < producers; i++ {
		addr := fmt.Sprintf("addr-%d", i)
		require.EqualValuesf(t, i+1, l.Balance(addr), "balance mismatch for %s: %s", addr, spew.Sdump(l.Stats()))
	}
}
