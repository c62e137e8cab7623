// Package identity resolves the funded account that pays for storage
// orders. Providers may create a key on first use but never fund it: a
// fresh account resolves to common.ErrNoFunds until someone sends it algos.
package identity

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/storageorder/internal/common"
	"github.com/dmitrijs2005/storageorder/internal/models"
)

// DefaultName is the well-known keystore entry used for orders.
const DefaultName = "uploader"

// BalanceReader is the part of ledger.Reader providers need.
type BalanceReader interface {
	Balance(ctx context.Context, address string) (uint64, error)
}

// withBalance fills id.Balance and refuses unfunded accounts.
func withBalance(ctx context.Context, br BalanceReader, id *models.Identity) (*models.Identity, error) {
	balance, err := br.Balance(ctx, id.Address)
	if err != nil {
		return nil, fmt.Errorf("balance of %s: %w", id.Address, err)
	}
	if balance == 0 {
		return nil, fmt.Errorf("%w: send algos to %s", common.ErrNoFunds, id.Address)
	}

	id.Balance = balance
	return id, nil
}
