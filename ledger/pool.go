package ledger

import (
	"sync"

	"github.com/google/uuid"

	"github.com/RomainGratier/prod-testing-bc/types"
)

// pool is the id-indexed map of submitted transactions, used for duplicate
// suppression and to track pending/admitted transactions. InsertIfAbsent
// folds the membership check and the insert into one locked operation so
// two concurrent submits of the same id can never both observe "absent".
type pool struct {
	mu sync.Mutex
	m  map[uuid.UUID]types.Transaction
}

func newPool() *pool {
	return &pool{m: make(map[uuid.UUID]types.Transaction)}
}

// InsertIfAbsent inserts tx and reports true, or reports false without
// modifying the pool if tx.ID is already present.
func (p *pool) InsertIfAbsent(tx types.Transaction) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.m[tx.ID]; exists {
		return false
	}
	p.m[tx.ID] = tx
	return true
}

// Delete removes id from the pool. Used only to undo a tentative
// InsertIfAbsent when a later Submit check (the balance precheck) rejects
// the transaction — the queue-full rejection deliberately does NOT call
// this, leaving a (documented, acceptable) entry behind in that case.
func (p *pool) Delete(id uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.m, id)
}
