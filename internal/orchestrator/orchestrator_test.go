package orchestrator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/storageorder/internal/common"
	"github.com/dmitrijs2005/storageorder/internal/gateway"
	"github.com/dmitrijs2005/storageorder/internal/ledger"
	"github.com/dmitrijs2005/storageorder/internal/ledger/ledgertest"
	"github.com/dmitrijs2005/storageorder/internal/models"
	"github.com/dmitrijs2005/storageorder/internal/nodes"
	"github.com/dmitrijs2005/storageorder/internal/oracle"
	"github.com/dmitrijs2005/storageorder/internal/order"
)

const (
	appID   = 507867511
	nodeAdr = "NODE_ADDR"
	testCID = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"
)

// ledgerIdentity resolves a fixed account, reading its balance from the
// ledger the way real providers do.
type ledgerIdentity struct {
	acc    crypto.Account
	ledger *ledgertest.Ledger
}

func (p *ledgerIdentity) Resolve(ctx context.Context) (*models.Identity, error) {
	addr := p.acc.Address.String()
	balance, err := p.ledger.Balance(ctx, addr)
	if err != nil {
		return nil, err
	}
	if balance == 0 {
		return nil, common.ErrNoFunds
	}
	return &models.Identity{Address: addr, SecretKey: p.acc.PrivateKey, Balance: balance}, nil
}

type fakePublisher struct {
	res   models.UploadResult
	err   error
	calls int
}

func (f *fakePublisher) Publish(ctx context.Context, id *models.Identity, data []byte, filename string) (models.UploadResult, error) {
	f.calls++
	return f.res, f.err
}

type fakeRecorder struct {
	got []models.Receipt
	err error
}

func (f *fakeRecorder) Insert(ctx context.Context, r models.Receipt) error {
	f.got = append(f.got, r)
	return f.err
}

type env struct {
	ledger   *ledgertest.Ledger
	identity *ledgerIdentity
	uploads  *atomic.Int32
	deps     Deps
}

// newEnv wires real components against an in-memory ledger and an httptest
// gateway answering with testCID.
func newEnv(t *testing.T, funds uint64) *env {
	t.Helper()

	l := ledgertest.New(appID)
	l.RegisterNode(nodeAdr)

	acc := crypto.GenerateAccount()
	if funds > 0 {
		l.Fund(acc.Address.String(), funds)
	}

	uploads := &atomic.Int32{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uploads.Add(1)
		_, _ = w.Write([]byte(`{"Name":"README.md","Hash":"` + testCID + `","Size":"1024"}`))
	}))
	t.Cleanup(ts.Close)

	id := &ledgerIdentity{acc: acc, ledger: l}
	return &env{
		ledger:   l,
		identity: id,
		uploads:  uploads,
		deps: Deps{
			Identity:  id,
			Publisher: gateway.New(ts.URL, ts.Client(), nil),
			Quoter:    oracle.New(l, appID, "", nil),
			Selector:  nodes.New(l, appID, "", nil),
			Submitter: order.New(l, appID, nil),
		},
	}
}

func TestRun_ConfirmedOrder(t *testing.T) {
	l := ledgertest.New(appID)
	l.RegisterNode(nodeAdr)
	acc := crypto.GenerateAccount()
	sender := acc.Address.String()
	l.Fund(sender, 5_000_000)

	pub := &fakePublisher{res: models.UploadResult{CID: "Qm123", Size: 1024}}
	rec := &fakeRecorder{}

	o := New(Deps{
		Identity:  &ledgerIdentity{acc: acc, ledger: l},
		Publisher: pub,
		Quoter:    oracle.New(l, appID, "", nil),
		Selector:  nodes.New(l, appID, "", nil),
		Submitter: order.New(l, appID, nil),
		Recorder:  rec,
	}, Options{Network: "testnet", AppID: appID}, nil)

	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	o.now = func() time.Time { return at }

	res, err := o.Run(context.Background(), []byte("# crust-examples\n"), "README.md")
	require.NoError(t, err)

	assert.Equal(t, uint64(5_000_000), res.Identity.Balance)
	assert.Equal(t, models.UploadResult{CID: "Qm123", Size: 1024}, res.Upload)
	assert.Equal(t, models.PriceQuote{Size: 1024, Permanent: false, Amount: 1500}, res.Quote)
	assert.Equal(t, nodeAdr, res.Node)
	assert.Len(t, res.Confirmation.TxIDs, 2)
	assert.NotEmpty(t, res.RunID)

	// The order on the ledger carries exactly what the run produced.
	orders := l.Orders()
	require.Contains(t, orders, "Qm123")
	assert.Equal(t, ledgertest.Order{Sender: sender, CID: "Qm123", Size: 1024, Node: nodeAdr, Amount: 1500}, orders["Qm123"])
	assert.Equal(t, uint64(1500), l.BalanceOf(l.AppAddress()))

	require.Len(t, rec.got, 1)
	assert.Equal(t, res.Receipt, rec.got[0])
	assert.Equal(t, models.Receipt{
		ID: res.RunID, Network: "testnet", AppID: appID, Sender: sender, CID: "Qm123", Size: 1024,
		Node: nodeAdr, Amount: 1500, Round: res.Confirmation.Round, TxIDs: res.Confirmation.TxIDs,
		GroupID: res.Confirmation.GroupID, CreatedAt: at,
	}, res.Receipt)
}

func TestRun_ThroughGateway(t *testing.T) {
	e := newEnv(t, 5_000_000)

	res, err := New(e.deps, Options{Permanent: true}, nil).Run(context.Background(), []byte("data"), "README.md")
	require.NoError(t, err)

	assert.Equal(t, testCID, res.Upload.CID)
	assert.Equal(t, int32(1), e.uploads.Load())
	assert.Equal(t, e.ledger.Price(1024, true), res.Quote.Amount)
	assert.True(t, e.ledger.Orders()[testCID].Permanent)
}

func TestRun_NoFundsStopsBeforeAnyNetworkCall(t *testing.T) {
	e := newEnv(t, 0)

	res, err := New(e.deps, Options{}, nil).Run(context.Background(), []byte("data"), "README.md")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, common.ErrNoFunds)

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, Idle, se.State)
	assert.Empty(t, se.OrphanedCID)

	assert.Zero(t, e.uploads.Load(), "gateway must not be called")
	assert.Zero(t, e.ledger.SimulateCalls)
	assert.Zero(t, e.ledger.ParamsCalls)
	assert.Empty(t, e.ledger.Submitted)
}

func TestRun_PriceMovedIsRejectedAtomically(t *testing.T) {
	e := newEnv(t, 5_000_000)
	e.ledger.BeforeExecute = func(l *ledgertest.Ledger) {
		l.SetPricing(ledgertest.DefaultBasePrice*2, ledgertest.DefaultPricePerKiB*2)
	}
	sender := e.identity.acc.Address.String()

	_, err := New(e.deps, Options{}, nil).Run(context.Background(), []byte("data"), "README.md")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrSubmission)

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, NodeSelected, se.State)
	assert.Equal(t, testCID, se.OrphanedCID, "content stays published")

	var rej *ledger.RejectionError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, ledger.ReasonContractAssert, rej.Reason)

	assert.Equal(t, int32(1), e.uploads.Load())
	assert.Empty(t, e.ledger.Orders())
	assert.Equal(t, uint64(5_000_000), e.ledger.BalanceOf(sender), "no funds move")
	assert.Zero(t, e.ledger.BalanceOf(e.ledger.AppAddress()))
}

func TestRun_FailureStates(t *testing.T) {
	tests := []struct {
		name     string
		breakIt  func(e *env)
		state    State
		sentinel error
		orphaned bool
	}{
		{
			name:     "upload",
			breakIt:  func(e *env) { e.deps.Publisher = &fakePublisher{err: common.ErrUpload} },
			state:    IdentityResolved,
			sentinel: common.ErrUpload,
		},
		{
			name:     "quote",
			breakIt:  func(e *env) { e.ledger.SimulateErr = errors.New("logic eval error") },
			state:    ContentPublished,
			sentinel: common.ErrSimulation,
			orphaned: true,
		},
		{
			name: "node selection",
			breakIt: func(e *env) {
				e.deps.Selector = nodes.New(ledgertest.New(appID), appID, "", nil)
			},
			state:    PriceQuoted,
			sentinel: common.ErrSimulation,
			orphaned: true,
		},
		{
			name:     "submission",
			breakIt:  func(e *env) { e.ledger.ParamsErr = errors.New("algod down") },
			state:    NodeSelected,
			sentinel: common.ErrSubmission,
			orphaned: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, 5_000_000)
			tt.breakIt(e)

			_, err := New(e.deps, Options{}, nil).Run(context.Background(), []byte("data"), "f")
			assert.ErrorIs(t, err, tt.sentinel)

			var se *StageError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.state, se.State)
			if tt.orphaned {
				assert.Equal(t, testCID, se.OrphanedCID)
			} else {
				assert.Empty(t, se.OrphanedCID)
			}
			assert.Empty(t, e.ledger.Orders())
		})
	}
}

func TestRun_RecorderFailureKeepsSuccess(t *testing.T) {
	e := newEnv(t, 5_000_000)
	rec := &fakeRecorder{err: errors.New("disk full")}
	e.deps.Recorder = rec

	res, err := New(e.deps, Options{}, nil).Run(context.Background(), []byte("data"), "f")
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Len(t, rec.got, 1)
}

func TestRun_EachRunHasOwnID(t *testing.T) {
	l := ledgertest.New(appID)
	l.RegisterNode(nodeAdr)
	acc := crypto.GenerateAccount()
	l.Fund(acc.Address.String(), 5_000_000)

	n := 0
	pub := publisherFunc(func() models.UploadResult {
		n++
		return models.UploadResult{CID: "cid-" + string(rune('a'+n)), Size: 10}
	})

	o := New(Deps{
		Identity:  &ledgerIdentity{acc: acc, ledger: l},
		Publisher: pub,
		Quoter:    oracle.New(l, appID, "", nil),
		Selector:  nodes.New(l, appID, "", nil),
		Submitter: order.New(l, appID, nil),
	}, Options{}, nil)

	a, err := o.Run(context.Background(), []byte("1"), "f")
	require.NoError(t, err)
	b, err := o.Run(context.Background(), []byte("2"), "f")
	require.NoError(t, err)

	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Len(t, l.Orders(), 2)
}

type publisherFunc func() models.UploadResult

func (f publisherFunc) Publish(ctx context.Context, id *models.Identity, data []byte, filename string) (models.UploadResult, error) {
	return f(), nil
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "order_submitted", OrderSubmitted.String())
	assert.Equal(t, "state(99)", State(99).String())
	assert.Equal(t, "state(6)", (OrderSubmitted + 1).String())
}

func TestStageError(t *testing.T) {
	err := &StageError{State: PriceQuoted, Err: common.ErrSimulation}

	assert.Equal(t, "order failed after price_quoted: simulation failed", err.Error())
	assert.ErrorIs(t, err, common.ErrSimulation)
}
