// Package nodes picks the storage node that will serve an order.
package nodes

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/storageorder/internal/common"
	"github.com/dmitrijs2005/storageorder/internal/ledger"
	"github.com/dmitrijs2005/storageorder/internal/logging"
)

// Selector asks the contract's node registry for a node. The selection
// policy belongs to the contract.
type Selector struct {
	reader ledger.Reader
	appID  uint64
	sender string
	logger logging.Logger
}

func New(reader ledger.Reader, appID uint64, sender string, logger logging.Logger) *Selector {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Selector{reader: reader, appID: appID, sender: sender, logger: logger}
}

// Select returns the address of a registered storage node.
func (s *Selector) Select(ctx context.Context) (string, error) {
	v, err := s.reader.Simulate(ctx, ledger.MethodCall{
		AppID:  s.appID,
		Method: ledger.MethodGetRandomOrderNode,
		Sender: s.sender,
		Boxes:  []string{ledger.NodesBox},
	})
	if err != nil {
		return "", fmt.Errorf("%w: select node: %w", common.ErrSimulation, err)
	}

	node, err := ledger.AsAddress(v)
	if err != nil {
		return "", fmt.Errorf("%w: select node: %w", common.ErrSimulation, err)
	}
	if node == ledger.ZeroAddress {
		return "", fmt.Errorf("%w: select node: no node registered", common.ErrSimulation)
	}

	s.logger.Debug(ctx, "node selected", "node", node)
	return node, nil
}
