// Package order places storage orders on the ledger.
package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/storageorder/internal/common"
	"github.com/dmitrijs2005/storageorder/internal/ledger"
	"github.com/dmitrijs2005/storageorder/internal/logging"
	"github.com/dmitrijs2005/storageorder/internal/models"
)

// Submitter builds and submits the two-transaction order group: an escrow
// payment of the quoted price to the application, followed by the
// placeOrder call that consumes it.
type Submitter struct {
	writer ledger.Writer
	appID  uint64
	logger logging.Logger
}

func New(writer ledger.Writer, appID uint64, logger logging.Logger) *Submitter {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Submitter{writer: writer, appID: appID, logger: logger}
}

// Submit places an order for upload on node, paying quote into escrow.
// Transaction parameters are fetched immediately before building the group
// so they are never stale. The quote is not re-checked: if the contract
// price moved, the ledger rejects the group and nothing is applied.
func (s *Submitter) Submit(ctx context.Context, id *models.Identity, upload models.UploadResult, quote uint64, node string, isPermanent bool) (models.Confirmation, error) {
	if err := validate(id, upload, node); err != nil {
		return models.Confirmation{}, fmt.Errorf("%w: %w", common.ErrSubmission, err)
	}

	params, err := s.writer.SuggestedParams(ctx)
	if err != nil {
		return models.Confirmation{}, fmt.Errorf("%w: suggested params: %w", common.ErrSubmission, err)
	}

	g := ledger.Group{
		Payment: ledger.Payment{
			From:   id.Address,
			To:     ledger.ApplicationAddress(s.appID),
			Amount: quote,
			Params: params,
		},
		Call: ledger.MethodCall{
			AppID:  s.appID,
			Method: ledger.MethodPlaceOrder,
			Args:   []any{upload.CID, upload.Size, isPermanent, ledger.Address(node)},
			Sender: id.Address,
			Boxes:  []string{ledger.NodesBox},
		},
	}

	conf, err := s.writer.Execute(ctx, g, id)
	if err != nil {
		var rej *ledger.RejectionError
		if errors.As(err, &rej) {
			s.logger.Warn(ctx, "order rejected", "cid", upload.CID, "reason", string(rej.Reason), "error", rej.Message)
		}
		return models.Confirmation{}, fmt.Errorf("%w: %w", common.ErrSubmission, err)
	}

	s.logger.Info(ctx, "order confirmed",
		"cid", upload.CID,
		"node", node,
		"amount", quote,
		"round", conf.Round,
		"group", conf.GroupID,
	)
	return conf, nil
}

func validate(id *models.Identity, upload models.UploadResult, node string) error {
	switch {
	case id == nil || id.Address == "":
		return errors.New("identity without address")
	case upload.CID == "":
		return errors.New("empty content identifier")
	case upload.Size == 0:
		return errors.New("size must be positive")
	case node == "":
		return errors.New("empty node address")
	}
	return nil
}
