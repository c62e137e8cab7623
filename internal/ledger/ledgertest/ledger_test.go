package ledgertest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/storageorder/internal/ledger"
	"github.com/dmitrijs2005/storageorder/internal/models"
)

const appID = 42

func group(l *Ledger, from string, amount uint64, cid string) ledger.Group {
	p, _ := l.SuggestedParams(context.Background())
	return ledger.Group{
		Payment: ledger.Payment{From: from, To: l.AppAddress(), Amount: amount, Params: p},
		Call: ledger.MethodCall{
			AppID:  appID,
			Method: ledger.MethodPlaceOrder,
			Args:   []any{cid, uint64(1024), false, ledger.Address("NODE")},
			Sender: from,
			Boxes:  []string{ledger.NodesBox},
		},
	}
}

func TestPrice(t *testing.T) {
	l := New(appID)

	assert.Equal(t, uint64(1500), l.Price(1, false))
	assert.Equal(t, uint64(1500), l.Price(1024, false))
	assert.Equal(t, uint64(2000), l.Price(1025, false))
	assert.Equal(t, uint64(15000), l.Price(1024, true))

	l.SetPricing(0, 1)
	assert.Equal(t, uint64(4), l.Price(4096, false))
}

func TestSimulate(t *testing.T) {
	l := New(appID)
	ctx := context.Background()

	v, err := l.Simulate(ctx, ledger.MethodCall{AppID: appID, Method: ledger.MethodGetPrice, Args: []any{uint64(1024), false}})
	require.NoError(t, err)
	assert.Equal(t, uint64(1500), v)

	_, err = l.Simulate(ctx, ledger.MethodCall{AppID: appID + 1, Method: ledger.MethodGetPrice, Args: []any{uint64(1), false}})
	assert.Error(t, err)

	nodeCall := ledger.MethodCall{AppID: appID, Method: ledger.MethodGetRandomOrderNode, Boxes: []string{ledger.NodesBox}}
	_, err = l.Simulate(ctx, nodeCall)
	assert.Error(t, err, "no nodes registered")

	l.RegisterNode("A")
	l.RegisterNode("B")
	var got []any
	for range 3 {
		v, err := l.Simulate(ctx, nodeCall)
		require.NoError(t, err)
		got = append(got, v)
	}
	assert.Equal(t, []any{"A", "B", "A"}, got)

	_, err = l.Simulate(ctx, ledger.MethodCall{AppID: appID, Method: ledger.MethodGetRandomOrderNode})
	assert.Error(t, err, "box reference is required")

	assert.Equal(t, 7, l.SimulateCalls)
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	signer := &models.Identity{Address: "ALICE"}

	t.Run("applies", func(t *testing.T) {
		l := New(appID)
		l.RegisterNode("NODE")
		l.Fund("ALICE", 10_000)

		conf, err := l.Execute(ctx, group(l, "ALICE", 1500, "cid"), signer)
		require.NoError(t, err)

		assert.Equal(t, uint64(1001), conf.Round)
		assert.Equal(t, []string{"group-1001-pay", "group-1001-call"}, conf.TxIDs)
		assert.Equal(t, uint64(10_000-1500-2*DefaultFee), l.BalanceOf("ALICE"))
		assert.Equal(t, uint64(1500), l.BalanceOf(l.AppAddress()))
		assert.Len(t, l.Orders(), 1)
	})

	tests := []struct {
		name   string
		mutate func(l *Ledger, g *ledger.Group)
		signer *models.Identity
		reason ledger.RejectReason
	}{
		{name: "wrong signer", signer: &models.Identity{Address: "MALLORY"}, reason: ledger.ReasonUnknown},
		{name: "expired", mutate: func(l *Ledger, g *ledger.Group) { l.AdvanceRounds(2000) }, reason: ledger.ReasonExpired},
		{name: "wrong receiver", mutate: func(l *Ledger, g *ledger.Group) { g.Payment.To = "ELSEWHERE" }, reason: ledger.ReasonContractAssert},
		{name: "wrong amount", mutate: func(l *Ledger, g *ledger.Group) { g.Payment.Amount++ }, reason: ledger.ReasonContractAssert},
		{name: "missing box", mutate: func(l *Ledger, g *ledger.Group) { g.Call.Boxes = nil }, reason: ledger.ReasonContractAssert},
		{name: "overspend", mutate: func(l *Ledger, g *ledger.Group) { l.SetPricing(9_000, 0); g.Payment.Amount = 9_000 }, reason: ledger.ReasonInsufficientFunds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(appID)
			l.RegisterNode("NODE")
			l.Fund("ALICE", 10_000)

			g := group(l, "ALICE", 1500, "cid")
			if tt.mutate != nil {
				tt.mutate(l, &g)
			}
			s := signer
			if tt.signer != nil {
				s = tt.signer
			}

			_, err := l.Execute(ctx, g, s)

			var rej *ledger.RejectionError
			require.True(t, errors.As(err, &rej), "got %v", err)
			assert.Equal(t, tt.reason, rej.Reason)
			assert.Equal(t, uint64(10_000), l.BalanceOf("ALICE"))
			assert.Empty(t, l.Orders())
		})
	}
}

func TestFailureInjection(t *testing.T) {
	l := New(appID)
	boom := errors.New("boom")
	l.BalanceErr, l.SimulateErr, l.ParamsErr = boom, boom, boom
	ctx := context.Background()

	_, err := l.Balance(ctx, "X")
	assert.ErrorIs(t, err, boom)
	_, err = l.Simulate(ctx, ledger.MethodCall{})
	assert.ErrorIs(t, err, boom)
	_, err = l.SuggestedParams(ctx)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, 1, l.BalanceCalls)
}
