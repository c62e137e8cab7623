package ledger

import (
	"math/big"
	"testing"

	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationAddress(t *testing.T) {
	a := ApplicationAddress(507867511)
	b := ApplicationAddress(507867511)
	c := ApplicationAddress(1275319623)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	_, err := types.DecodeAddress(a)
	assert.NoError(t, err, "application address must be a valid checksummed address")
}

func TestAsUint64(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    uint64
		wantErr bool
	}{
		{name: "uint64", in: uint64(1500), want: 1500},
		{name: "uint32", in: uint32(7), want: 7},
		{name: "uint8", in: uint8(1), want: 1},
		{name: "int", in: 42, want: 42},
		{name: "negative int", in: -1, wantErr: true},
		{name: "big int", in: big.NewInt(99), want: 99},
		{name: "huge big int", in: new(big.Int).Lsh(big.NewInt(1), 70), wantErr: true},
		{name: "nil", in: nil, wantErr: true},
		{name: "string", in: "1500", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AsUint64(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAsAddress(t *testing.T) {
	var raw types.Address
	raw[0] = 1
	want := raw.String()

	tests := []struct {
		name    string
		in      any
		want    string
		wantErr bool
	}{
		{name: "bytes", in: raw[:], want: want},
		{name: "array", in: [32]byte(raw), want: want},
		{name: "sdk address", in: raw, want: want},
		{name: "string passthrough", in: "NODE_ADDR", want: "NODE_ADDR"},
		{name: "typed string", in: Address("NODE_ADDR"), want: "NODE_ADDR"},
		{name: "empty string", in: "", wantErr: true},
		{name: "short bytes", in: []byte{1, 2, 3}, wantErr: true},
		{name: "nil", in: nil, wantErr: true},
		{name: "number", in: uint64(3), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AsAddress(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		msg  string
		want RejectReason
	}{
		{"TransactionPool.Remember: transaction ABC: overspend (account X, data {...})", ReasonInsufficientFunds},
		{"account X balance 0 below min 100000", ReasonInsufficientFunds},
		{"txn dead: round 100 outside of 200--1200", ReasonExpired},
		{"transaction rejected by ApprovalProgram: logic eval error: assert failed pc=412", ReasonContractAssert},
		{"something else entirely", ReasonUnknown},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.msg))
		})
	}
}

func TestRejectionError(t *testing.T) {
	err := Reject("logic eval error: assert failed")

	assert.Equal(t, ReasonContractAssert, err.Reason)
	assert.Contains(t, err.Error(), "contract_assert")
	assert.Contains(t, err.Error(), "assert failed")
}
