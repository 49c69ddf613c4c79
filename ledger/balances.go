package ledger

import (
	"hash/fnv"
	"sync"
)

// numBalanceShards bounds the contention a sharded balance map suffers
// under concurrent producers. Each shard is an independently-locked map;
// per-key mutation is atomic, cross-key mutation (a transfer touches two
// keys) is not.
const numBalanceShards = 32

type balanceShard struct {
	mu sync.Mutex
	m  map[string]uint64
}

// balances is a sharded concurrent map from account label to balance. A
// missing key is balance 0, never an error.
type balances struct {
	shards [numBalanceShards]*balanceShard
}

func newBalances() *balances {
	b := &balances{}
	for i := range b.shards {
		b.shards[i] = &balanceShard{m: make(map[string]uint64)}
	}
	return b
}

func (b *balances) shardFor(addr string) *balanceShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(addr))
	return b.shards[h.Sum32()%numBalanceShards]
}

// Get returns addr's current balance, or 0 if it has never been credited.
func (b *balances) Get(addr string) uint64 {
	s := b.shardFor(addr)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[addr]
}

// Credit adds amount to addr's balance, creating the entry if absent.
func (b *balances) Credit(addr string, amount uint64) {
	s := b.shardFor(addr)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[addr] += amount
}

// DebitSaturating subtracts amount from addr's balance, flooring at zero
// rather than underflowing. The optimistic precheck in Submit cannot be
// fenced against this without a global lock; saturating here is the
// chosen, throughput-favoring policy for the resulting race.
func (b *balances) DebitSaturating(addr string, amount uint64) {
	s := b.shardFor(addr)
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur := s.m[addr]; cur >= amount {
		s.m[addr] = cur - amount
	} else {
		s.m[addr] = 0
	}
}
