// Package models defines the values passed between the steps of a storage
// order: who pays, what was published, what it costs and what the ledger
// confirmed.
package models

import (
	"crypto/ed25519"
	"fmt"
	"log/slog"
	"time"
)

// Identity is the signing account of a run. It is resolved once from a
// keystore and read-only afterwards.
type Identity struct {
	// Address is the account's public Algorand address.
	Address string

	// SecretKey is the 64-byte Ed25519 key (seed followed by public key).
	// It must never be logged or printed.
	SecretKey ed25519.PrivateKey

	// Balance is the balance in microalgos observed while resolving.
	Balance uint64
}

// String hides the secret key from fmt verbs.
func (i Identity) String() string {
	return fmt.Sprintf("Identity{Address: %s, Balance: %d}", i.Address, i.Balance)
}

// GoString hides the secret key from %#v.
func (i Identity) GoString() string {
	return i.String()
}

// LogValue hides the secret key from slog.
func (i Identity) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("address", i.Address),
		slog.Uint64("balance", i.Balance),
	)
}

// UploadResult is what the content gateway returned for one publish call.
// The same Size must be used for the price quote and the order.
type UploadResult struct {
	CID  string
	Size uint64
}

// PriceQuote is a point-in-time price for storing Size bytes.
type PriceQuote struct {
	Size      uint64
	Permanent bool
	Amount    uint64
}

// Confirmation describes an order group accepted by the ledger.
type Confirmation struct {
	Round   uint64
	TxIDs   []string
	GroupID string
}

// Receipt is the locally persisted record of a confirmed order.
type Receipt struct {
	ID        string
	Network   string
	AppID     uint64
	Sender    string
	CID       string
	Size      uint64
	Permanent bool
	Node      string
	Amount    uint64
	Round     uint64
	TxIDs     []string
	GroupID   string
	CreatedAt time.Time
}
