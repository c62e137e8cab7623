// Package algod implements ledger.Reader and ledger.Writer on top of an
// Algorand node using the go-algorand-sdk atomic transaction composer.
package algod

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/algorand/go-algorand-sdk/v2/abi"
	sdk "github.com/algorand/go-algorand-sdk/v2/client/v2/algod"
	"github.com/algorand/go-algorand-sdk/v2/client/v2/common/models"
	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/algorand/go-algorand-sdk/v2/types"

	"github.com/dmitrijs2005/storageorder/internal/ledger"
	"github.com/dmitrijs2005/storageorder/internal/logging"
	domain "github.com/dmitrijs2005/storageorder/internal/models"
)

// Client talks to one algod endpoint. Each read request is bounded by the
// configured timeout; Execute is bounded by waitRounds instead.
type Client struct {
	algod      *sdk.Client
	timeout    time.Duration
	waitRounds uint64
	logger     logging.Logger
}

// New connects a Client to the algod REST API at addr.
func New(addr, token string, timeout time.Duration, waitRounds uint64, logger logging.Logger) (*Client, error) {
	c, err := sdk.MakeClient(addr, token)
	if err != nil {
		return nil, fmt.Errorf("algod client: %w", err)
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Client{algod: c, timeout: timeout, waitRounds: waitRounds, logger: logger}, nil
}

func (c *Client) Balance(ctx context.Context, address string) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	info, err := c.algod.AccountInformation(address).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("account %s: %w", address, err)
	}
	return info.Amount, nil
}

func (c *Client) SuggestedParams(ctx context.Context) (ledger.Params, error) {
	sp, err := c.suggestedParams(ctx)
	if err != nil {
		return ledger.Params{}, err
	}
	return fromSDKParams(sp), nil
}

func (c *Client) suggestedParams(ctx context.Context) (types.SuggestedParams, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	sp, err := c.algod.SuggestedParams().Do(ctx)
	if err != nil {
		return types.SuggestedParams{}, fmt.Errorf("suggested params: %w", err)
	}
	return sp, nil
}

// Simulate evaluates call through the node's simulate endpoint with empty
// signatures, so no key is needed and nothing is broadcast.
func (c *Client) Simulate(ctx context.Context, call ledger.MethodCall) (any, error) {
	sp, err := c.suggestedParams(ctx)
	if err != nil {
		return nil, err
	}

	if call.Sender == "" {
		call.Sender = ledger.ApplicationAddress(call.AppID)
	}

	var atc transaction.AtomicTransactionComposer
	if err := addMethodCall(&atc, call, nil, sp, transaction.EmptyTransactionSigner{}); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := atc.Simulate(ctx, c.algod, models.SimulateRequest{
		AllowEmptySignatures:  true,
		AllowUnnamedResources: true,
	})
	if err != nil {
		return nil, fmt.Errorf("simulate %s: %w", call.Method, err)
	}

	groups := resp.SimulateResponse.TxnGroups
	if len(groups) > 0 && groups[0].FailureMessage != "" {
		return nil, fmt.Errorf("simulate %s: %s", call.Method, groups[0].FailureMessage)
	}
	if len(resp.MethodResults) == 0 {
		return nil, fmt.Errorf("simulate %s: no method result", call.Method)
	}

	result := resp.MethodResults[0]
	if result.DecodeError != nil {
		return nil, fmt.Errorf("simulate %s: decode return value: %w", call.Method, result.DecodeError)
	}

	c.logger.Debug(ctx, "simulated call", "method", call.Method, "return", result.ReturnValue)
	return result.ReturnValue, nil
}

// Execute builds the payment and the application call as one group, signs
// both with signer's key and waits for confirmation.
func (c *Client) Execute(ctx context.Context, g ledger.Group, signer *domain.Identity) (domain.Confirmation, error) {
	account, err := crypto.AccountFromPrivateKey(signer.SecretKey)
	if err != nil {
		return domain.Confirmation{}, fmt.Errorf("signing key: %w", err)
	}
	txnSigner := transaction.BasicAccountTransactionSigner{Account: account}

	sp := toSDKParams(g.Payment.Params)

	payTxn, err := transaction.MakePaymentTxn(g.Payment.From, g.Payment.To, g.Payment.Amount, nil, "", sp)
	if err != nil {
		return domain.Confirmation{}, fmt.Errorf("payment txn: %w", err)
	}

	var atc transaction.AtomicTransactionComposer
	pay := transaction.TransactionWithSigner{Txn: payTxn, Signer: txnSigner}
	if err := addMethodCall(&atc, g.Call, []any{pay}, sp, txnSigner); err != nil {
		return domain.Confirmation{}, err
	}

	built, err := atc.BuildGroup()
	if err != nil {
		return domain.Confirmation{}, fmt.Errorf("build group: %w", err)
	}
	groupID := base64.StdEncoding.EncodeToString(built[0].Txn.Group[:])

	res, err := atc.Execute(c.algod, ctx, c.waitRounds)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return domain.Confirmation{}, err
		}
		return domain.Confirmation{}, ledger.Reject(err.Error())
	}

	return domain.Confirmation{Round: res.ConfirmedRound, TxIDs: res.TxIDs, GroupID: groupID}, nil
}

func addMethodCall(atc *transaction.AtomicTransactionComposer, call ledger.MethodCall, leading []any, sp types.SuggestedParams, signer transaction.TransactionSigner) error {
	method, err := abi.MethodFromSignature(call.Method)
	if err != nil {
		return fmt.Errorf("method %s: %w", call.Method, err)
	}

	sender, err := types.DecodeAddress(call.Sender)
	if err != nil {
		return fmt.Errorf("sender %q: %w", call.Sender, err)
	}

	args := make([]any, 0, len(leading)+len(call.Args))
	args = append(args, leading...)
	for _, a := range call.Args {
		encoded, err := encodeArg(a)
		if err != nil {
			return fmt.Errorf("method %s: %w", call.Method, err)
		}
		args = append(args, encoded)
	}

	boxes := make([]types.AppBoxReference, 0, len(call.Boxes))
	for _, name := range call.Boxes {
		boxes = append(boxes, types.AppBoxReference{AppID: call.AppID, Name: []byte(name)})
	}

	err = atc.AddMethodCall(transaction.AddMethodCallParams{
		AppID:           call.AppID,
		Method:          method,
		MethodArgs:      args,
		Sender:          sender,
		SuggestedParams: sp,
		OnComplete:      types.NoOpOC,
		Signer:          signer,
		BoxReferences:   boxes,
	})
	if err != nil {
		return fmt.Errorf("method %s: %w", call.Method, err)
	}
	return nil
}

// encodeArg converts ledger argument types to what the ABI encoder accepts.
func encodeArg(a any) (any, error) {
	if addr, ok := a.(ledger.Address); ok {
		decoded, err := types.DecodeAddress(string(addr))
		if err != nil {
			return nil, fmt.Errorf("address argument %q: %w", addr, err)
		}
		return decoded[:], nil
	}
	return a, nil
}

func fromSDKParams(sp types.SuggestedParams) ledger.Params {
	return ledger.Params{
		Fee:         uint64(sp.Fee),
		MinFee:      sp.MinFee,
		FlatFee:     sp.FlatFee,
		FirstValid:  uint64(sp.FirstRoundValid),
		LastValid:   uint64(sp.LastRoundValid),
		GenesisID:   sp.GenesisID,
		GenesisHash: sp.GenesisHash,
	}
}

func toSDKParams(p ledger.Params) types.SuggestedParams {
	return types.SuggestedParams{
		Fee:             types.MicroAlgos(p.Fee),
		MinFee:          p.MinFee,
		FlatFee:         p.FlatFee,
		FirstRoundValid: types.Round(p.FirstValid),
		LastRoundValid:  types.Round(p.LastValid),
		GenesisID:       p.GenesisID,
		GenesisHash:     p.GenesisHash,
	}
}
