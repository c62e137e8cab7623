// Package ledgertest provides an in-memory ledger running the storage order
// contract, for tests of everything above the ledger adapter.
//
// It enforces what the real network enforces for an order group: matching
// signer and senders, validity window, the escrow amount equal to the
// current price, a registered node, no duplicate content identifier and a
// sufficient balance. A group is applied completely or not at all.
package ledgertest

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/storageorder/internal/ledger"
	"github.com/dmitrijs2005/storageorder/internal/models"
)

// Default pricing, in microalgos.
const (
	DefaultBasePrice      = 1000
	DefaultPricePerKiB    = 500
	DefaultPermanentTimes = 10
	DefaultFee            = 1000
)

// Order is a placed order as the contract stores it.
type Order struct {
	Sender    string
	CID       string
	Size      uint64
	Permanent bool
	Node      string
	Amount    uint64
}

// Ledger is a single-application in-memory ledger. Safe for concurrent use.
type Ledger struct {
	mu sync.Mutex

	appID    uint64
	appAddr  string
	round    uint64
	balances map[string]uint64
	nodes    []string
	nextNode int
	orders   map[string]Order

	basePrice      uint64
	pricePerKiB    uint64
	permanentTimes uint64

	// BeforeExecute, when set, runs at the start of Execute with the lock
	// released. Tests use it to move prices between quote and submission.
	BeforeExecute func(l *Ledger)

	// Failure injection.
	BalanceErr  error
	SimulateErr error
	ParamsErr   error

	// Call counters and the groups handed to Execute, in order.
	BalanceCalls  int
	SimulateCalls int
	ParamsCalls   int
	Submitted     []ledger.Group
}

// New returns a ledger hosting application appID at round 1000.
func New(appID uint64) *Ledger {
	return &Ledger{
		appID:          appID,
		appAddr:        ledger.ApplicationAddress(appID),
		round:          1000,
		balances:       make(map[string]uint64),
		orders:         make(map[string]Order),
		basePrice:      DefaultBasePrice,
		pricePerKiB:    DefaultPricePerKiB,
		permanentTimes: DefaultPermanentTimes,
	}
}

// AppAddress returns the application's custodial address.
func (l *Ledger) AppAddress() string { return l.appAddr }

// Fund credits amount to address.
func (l *Ledger) Fund(address string, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[address] += amount
}

// RegisterNode adds a storage node to the contract's node box.
func (l *Ledger) RegisterNode(address string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nodes = append(l.nodes, address)
}

// SetPricing replaces the pricing function's parameters.
func (l *Ledger) SetPricing(base, perKiB uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.basePrice = base
	l.pricePerKiB = perKiB
}

// AdvanceRounds moves the ledger forward n rounds.
func (l *Ledger) AdvanceRounds(n uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.round += n
}

// Price is the contract's current price for size bytes.
func (l *Ledger) Price(size uint64, permanent bool) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.price(size, permanent)
}

func (l *Ledger) price(size uint64, permanent bool) uint64 {
	kib := (size + 1023) / 1024
	p := l.basePrice + kib*l.pricePerKiB
	if permanent {
		p *= l.permanentTimes
	}
	return p
}

// Orders returns a copy of the placed orders keyed by content identifier.
func (l *Ledger) Orders() map[string]Order {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]Order, len(l.orders))
	for k, v := range l.orders {
		out[k] = v
	}
	return out
}

// BalanceOf returns address's balance without counting as a call.
func (l *Ledger) BalanceOf(address string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[address]
}

func (l *Ledger) Balance(ctx context.Context, address string) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.BalanceCalls++
	if l.BalanceErr != nil {
		return 0, l.BalanceErr
	}
	return l.balances[address], nil
}

func (l *Ledger) Simulate(ctx context.Context, call ledger.MethodCall) (any, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.SimulateCalls++

	if l.SimulateErr != nil {
		return nil, l.SimulateErr
	}
	if call.AppID != l.appID {
		return nil, fmt.Errorf("application %d does not exist", call.AppID)
	}

	switch call.Method {
	case ledger.MethodGetPrice:
		if len(call.Args) != 2 {
			return nil, fmt.Errorf("getPrice: want 2 args, got %d", len(call.Args))
		}
		size, ok1 := call.Args[0].(uint64)
		permanent, ok2 := call.Args[1].(bool)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("getPrice: bad argument types %T, %T", call.Args[0], call.Args[1])
		}
		return l.price(size, permanent), nil

	case ledger.MethodGetRandomOrderNode:
		if !hasBox(call.Boxes, ledger.NodesBox) {
			return nil, fmt.Errorf("logic eval error: invalid Box reference %s", ledger.NodesBox)
		}
		if len(l.nodes) == 0 {
			return nil, fmt.Errorf("logic eval error: assert failed: no nodes registered")
		}
		node := l.nodes[l.nextNode%len(l.nodes)]
		l.nextNode++
		return node, nil

	default:
		return nil, fmt.Errorf("unknown method %s", call.Method)
	}
}

func (l *Ledger) SuggestedParams(ctx context.Context) (ledger.Params, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ParamsCalls++
	if l.ParamsErr != nil {
		return ledger.Params{}, l.ParamsErr
	}
	return ledger.Params{
		Fee:         DefaultFee,
		MinFee:      DefaultFee,
		FirstValid:  l.round,
		LastValid:   l.round + 1000,
		GenesisID:   "ledgertest-v1",
		GenesisHash: []byte("ledgertest-genesis-hash-32-bytes"),
	}, nil
}

func (l *Ledger) Execute(ctx context.Context, g ledger.Group, signer *models.Identity) (models.Confirmation, error) {
	if hook := l.BeforeExecute; hook != nil {
		hook(l)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.Submitted = append(l.Submitted, g)

	order, err := l.check(g, signer)
	if err != nil {
		return models.Confirmation{}, err
	}

	fees := uint64(2 * DefaultFee)
	l.balances[order.Sender] -= order.Amount + fees
	l.balances[l.appAddr] += order.Amount
	l.orders[order.CID] = order
	l.round++

	groupID := fmt.Sprintf("group-%d", l.round)
	return models.Confirmation{
		Round:   l.round,
		TxIDs:   []string{fmt.Sprintf("%s-pay", groupID), fmt.Sprintf("%s-call", groupID)},
		GroupID: groupID,
	}, nil
}

// check validates g against ledger and contract rules without mutating
// anything and returns the order it would place.
func (l *Ledger) check(g ledger.Group, signer *models.Identity) (Order, error) {
	p, call := g.Payment, g.Call

	if signer == nil || signer.Address != p.From || signer.Address != call.Sender {
		return Order{}, ledger.Reject("signature does not match sender")
	}
	if l.round < p.Params.FirstValid || l.round > p.Params.LastValid {
		return Order{}, ledger.Reject(fmt.Sprintf("txn dead: round %d outside of %d--%d", l.round, p.Params.FirstValid, p.Params.LastValid))
	}
	if call.AppID != l.appID || call.Method != ledger.MethodPlaceOrder {
		return Order{}, ledger.Reject(fmt.Sprintf("logic eval error: unexpected call %d/%s", call.AppID, call.Method))
	}
	if len(call.Args) != 4 {
		return Order{}, ledger.Reject(fmt.Sprintf("logic eval error: placeOrder wants 4 args after payment, got %d", len(call.Args)))
	}

	cid, ok1 := call.Args[0].(string)
	size, ok2 := call.Args[1].(uint64)
	permanent, ok3 := call.Args[2].(bool)
	node, ok4 := call.Args[3].(ledger.Address)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return Order{}, ledger.Reject("logic eval error: bad argument types")
	}

	if p.To != l.appAddr {
		return Order{}, ledger.Reject("logic eval error: assert failed: payment receiver is not the application")
	}
	if price := l.price(size, permanent); p.Amount != price {
		return Order{}, ledger.Reject(fmt.Sprintf("logic eval error: assert failed: payment %d does not match price %d", p.Amount, price))
	}
	if !contains(l.nodes, string(node)) {
		return Order{}, ledger.Reject("logic eval error: assert failed: unknown node")
	}
	if !hasBox(call.Boxes, ledger.NodesBox) {
		return Order{}, ledger.Reject("logic eval error: invalid Box reference nodes")
	}
	if _, dup := l.orders[cid]; dup {
		return Order{}, ledger.Reject("logic eval error: assert failed: order already exists")
	}
	if need := p.Amount + 2*DefaultFee; l.balances[p.From] < need {
		return Order{}, ledger.Reject(fmt.Sprintf("overspend (account %s, balance %d, need %d)", p.From, l.balances[p.From], need))
	}

	return Order{Sender: p.From, CID: cid, Size: size, Permanent: permanent, Node: string(node), Amount: p.Amount}, nil
}

func hasBox(boxes []string, name string) bool {
	return contains(boxes, name)
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
