package types

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RomainGratier/prod-testing-bc/ledgererr"
)

// Block is an immutable, hash-linked container binding an ordered batch of
// transactions to the chain tip. Nonce and Hash are fixed once Mine
// terminates; a Block is never mutated after being appended to a chain.
type Block struct {
	ID           uuid.UUID     `json:"id"`
	PreviousHash string        `json:"previous_hash"`
	Transactions []Transaction `json:"transactions"`
	Timestamp    time.Time     `json:"timestamp"`
	Nonce        uint64        `json:"nonce"`
	Hash         string        `json:"hash"`
}

// NewBlock constructs a Block with nonce 0 and a hash computed over its
// current fields. The hash will not yet satisfy any proof-of-work
// difficulty; call Mine for that.
func NewBlock(previousHash string, transactions []Transaction) Block {
	b := Block{
		ID:           uuid.New(),
		PreviousHash: previousHash,
		Transactions: transactions,
		Timestamp:    time.Now(),
		Nonce:        0,
	}
	b.Hash = b.calculateHash()
	return b
}

// NewGenesisBlock returns the chain's root block: empty previous hash, no
// transactions, never mined.
func NewGenesisBlock() Block {
	return NewBlock("", nil)
}

func (b Block) calculateHash() string {
	h := sha256.New()
	h.Write(b.ID[:])
	h.Write([]byte(b.PreviousHash))
	var tsLE [8]byte
	binary.LittleEndian.PutUint64(tsLE[:], uint64(b.Timestamp.Unix()))
	h.Write(tsLE[:])
	var nonceLE [8]byte
	binary.LittleEndian.PutUint64(nonceLE[:], b.Nonce)
	h.Write(nonceLE[:])
	for _, tx := range b.Transactions {
		h.Write([]byte(tx.Hash()))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Mine searches for a nonce, starting from its current value and
// incrementing monotonically, that makes Hash satisfy the given
// proof-of-work difficulty (difficulty leading hex-zero characters). It is
// deterministic given the block's other fields and terminates almost
// surely: the expected number of attempts is 16^difficulty.
func (b *Block) Mine(difficulty int) {
	target := strings.Repeat("0", difficulty)
	for !strings.HasPrefix(b.Hash, target) {
		b.Nonce++
		b.Hash = b.calculateHash()
	}
}

// Validate checks hash consistency, previous-hash linkage against prev (nil
// for genesis), and that every contained transaction individually
// validates. It does not re-check the proof-of-work difficulty; that is the
// processor's responsibility immediately after mining (see miner.Worker).
func (b Block) Validate(prev *Block) error {
	if b.Hash != b.calculateHash() {
		return ledgererr.NewBlockValidationFailed("invalid block hash")
	}
	if prev != nil {
		if b.PreviousHash != prev.Hash {
			return ledgererr.NewBlockValidationFailed("invalid previous hash")
		}
	} else if b.PreviousHash != "" {
		return ledgererr.NewBlockValidationFailed("genesis block must have empty previous hash")
	}
	for _, tx := range b.Transactions {
		if err := tx.Validate(); err != nil {
			return ledgererr.NewBlockValidationFailed(err.Error())
		}
	}
	return nil
}

// HasValidProofOfWork reports whether Hash carries the required number of
// leading hex-zero characters for difficulty.
func (b Block) HasValidProofOfWork(difficulty int) bool {
	return strings.HasPrefix(b.Hash, strings.Repeat("0", difficulty))
}
