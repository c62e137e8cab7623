// Package ledger describes what the order workflow needs from the ledger:
// read-only simulated contract calls, balances, fresh transaction
// parameters and atomic submission of a payment + application call group.
//
// The workflow only sees the Reader and Writer interfaces; the algod
// subpackage implements them against an Algorand node and ledgertest
// provides an in-memory contract for tests.
package ledger

import (
	"context"

	"github.com/dmitrijs2005/storageorder/internal/models"
)

// Reader performs calls that never mutate ledger state.
type Reader interface {
	// Balance returns the current balance of address in microalgos.
	Balance(ctx context.Context, address string) (uint64, error)

	// Simulate evaluates call without broadcasting it and returns the
	// decoded ABI return value.
	Simulate(ctx context.Context, call MethodCall) (any, error)
}

// Writer builds on fresh network parameters and submits atomic groups.
type Writer interface {
	// SuggestedParams returns the fee and validity window to use for
	// transactions built right now. They expire within a few rounds.
	SuggestedParams(ctx context.Context) (Params, error)

	// Execute signs every transaction of g with signer's key, submits the
	// group and waits for confirmation. A rejected group is reported as a
	// *RejectionError and leaves no trace on the ledger.
	Execute(ctx context.Context, g Group, signer *models.Identity) (models.Confirmation, error)
}

// Params are network transaction parameters.
type Params struct {
	Fee         uint64
	MinFee      uint64
	FlatFee     bool
	FirstValid  uint64
	LastValid   uint64
	GenesisID   string
	GenesisHash []byte
}

// Address marks an ABI argument of type address. Plain strings are encoded
// as ABI strings.
type Address string

// MethodCall is an unsigned application call.
type MethodCall struct {
	AppID uint64

	// Method is the ABI signature, e.g. "getPrice(uint64,bool)uint64".
	Method string

	// Args are the ABI arguments after any grouped transaction arguments.
	Args []any

	// Sender of the call. Simulations may leave it empty, in which case the
	// application's own address is used.
	Sender string

	// Boxes lists the names of the application's boxes the call reads.
	Boxes []string
}

// Payment is an unsigned escrow transfer.
type Payment struct {
	From   string
	To     string
	Amount uint64
	Params Params
}

// Group is an atomic order: Payment is placed first and passed to Call as
// its leading transaction argument; the ledger applies both or neither.
type Group struct {
	Payment Payment
	Call    MethodCall
}
