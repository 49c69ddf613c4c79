// Package types defines the ledger's two immutable on-chain records,
// Transaction and Block, and their content-hashing and validation rules.
package types

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/RomainGratier/prod-testing-bc/ledgererr"
)

// Transaction is an immutable transfer record. It is constructed once via
// NewTransaction and never mutated afterward; every field including
// Signature is fixed at construction time.
type Transaction struct {
	ID        uuid.UUID `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Amount    uint64    `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
	Signature string    `json:"signature"`
}

// NewTransaction builds a Transaction with a fresh id, the current wall
// clock as timestamp, and a signature binding the other fields. From == ""
// denotes genesis issuance (minting balance into To from nothing); it never
// fails to construct, only to validate.
func NewTransaction(from, to string, amount uint64) Transaction {
	id := uuid.New()
	timestamp := time.Now()
	return Transaction{
		ID:        id,
		From:      from,
		To:        to,
		Amount:    amount,
		Timestamp: timestamp,
		Signature: calculateSignature(id, from, to, amount, timestamp),
	}
}

// calculateSignature is a deterministic content digest, not an
// authentication token: it binds id, from, to, amount and timestamp (second
// resolution) so that tampering with any of them is detectable.
func calculateSignature(id uuid.UUID, from, to string, amount uint64, timestamp time.Time) string {
	h := sha256.New()
	h.Write(id[:])
	h.Write([]byte(from))
	h.Write([]byte(to))
	var amountLE [8]byte
	binary.LittleEndian.PutUint64(amountLE[:], amount)
	h.Write(amountLE[:])
	var tsLE [8]byte
	binary.LittleEndian.PutUint64(tsLE[:], uint64(timestamp.Unix()))
	h.Write(tsLE[:])
	return hex.EncodeToString(h.Sum(nil))
}

// Validate enforces the invariants of a Transaction. Empty From is legal
// exactly for genesis issuance (From == "" and To non-empty and Amount >
// 0): this is a deliberate asymmetric contract, not an oversight — a plain
// transfer with From == To == "" would otherwise slip through as "self
// transfer" and is rejected below by the emptiness check on To.
func (t Transaction) Validate() error {
	if t.Amount == 0 {
		return ledgererr.NewInvalidTransaction("amount must be greater than zero")
	}
	if t.To == "" {
		return ledgererr.NewInvalidTransaction("to address cannot be empty")
	}
	if t.From == t.To {
		return ledgererr.NewInvalidTransaction("sender and receiver cannot be the same")
	}
	expected := calculateSignature(t.ID, t.From, t.To, t.Amount, t.Timestamp)
	if t.Signature != expected {
		return ledgererr.NewInvalidTransaction("invalid transaction signature")
	}
	return nil
}

// IsGenesisIssuance reports whether t mints balance into To rather than
// debiting an existing account.
func (t Transaction) IsGenesisIssuance() bool {
	return t.From == ""
}

// Hash returns the hex-encoded SHA-256 of the transaction's canonical JSON
// encoding, including the signature. Block hashing folds these together in
// order to bind the whole batch into the block digest.
func (t Transaction) Hash() string {
	// json.Marshal never fails for this struct: every field is a
	// primitive, a string, a fixed-size array (uuid.UUID) or time.Time.
	b, _ := json.Marshal(t)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
