// Package oracle quotes storage prices from the on-chain pricing function.
package oracle

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/storageorder/internal/common"
	"github.com/dmitrijs2005/storageorder/internal/ledger"
	"github.com/dmitrijs2005/storageorder/internal/logging"
)

// Client quotes prices through a read-only simulated call. A quote is a
// point-in-time estimate: it is never cached and only justifies the order
// submitted right after it.
type Client struct {
	reader ledger.Reader
	appID  uint64
	sender string
	logger logging.Logger
}

// New returns a Client for application appID. sender may be empty.
func New(reader ledger.Reader, appID uint64, sender string, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Client{reader: reader, appID: appID, sender: sender, logger: logger}
}

// Quote returns the price in microalgos of storing size bytes.
func (c *Client) Quote(ctx context.Context, size uint64, isPermanent bool) (uint64, error) {
	if size == 0 {
		return 0, fmt.Errorf("%w: size must be positive", common.ErrSimulation)
	}

	v, err := c.reader.Simulate(ctx, ledger.MethodCall{
		AppID:  c.appID,
		Method: ledger.MethodGetPrice,
		Args:   []any{size, isPermanent},
		Sender: c.sender,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: get price: %w", common.ErrSimulation, err)
	}

	amount, err := ledger.AsUint64(v)
	if err != nil {
		return 0, fmt.Errorf("%w: get price: %w", common.ErrSimulation, err)
	}

	c.logger.Debug(ctx, "price quoted", "size", size, "permanent", isPermanent, "amount", amount)
	return amount, nil
}
