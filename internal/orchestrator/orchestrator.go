// Package orchestrator runs one storage order end to end: resolve the
// paying identity, publish the content, quote its price, select a node and
// submit the order. Steps run strictly in that order and a failure stops
// the run; nothing is retried.
package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/storageorder/internal/logging"
	"github.com/dmitrijs2005/storageorder/internal/models"
)

type IdentityProvider interface {
	Resolve(ctx context.Context) (*models.Identity, error)
}

type Publisher interface {
	Publish(ctx context.Context, id *models.Identity, data []byte, filename string) (models.UploadResult, error)
}

type Quoter interface {
	Quote(ctx context.Context, size uint64, isPermanent bool) (uint64, error)
}

type NodeSelector interface {
	Select(ctx context.Context) (string, error)
}

type Submitter interface {
	Submit(ctx context.Context, id *models.Identity, upload models.UploadResult, quote uint64, node string, isPermanent bool) (models.Confirmation, error)
}

// Recorder persists receipts of confirmed orders.
type Recorder interface {
	Insert(ctx context.Context, r models.Receipt) error
}

// Deps are the collaborators of an Orchestrator. Recorder may be nil.
type Deps struct {
	Identity  IdentityProvider
	Publisher Publisher
	Quoter    Quoter
	Selector  NodeSelector
	Submitter Submitter
	Recorder  Recorder
}

// Options describe the orders an Orchestrator places.
type Options struct {
	Network   string
	AppID     uint64
	Permanent bool
}

type Orchestrator struct {
	deps   Deps
	opts   Options
	logger logging.Logger
	now    func() time.Time
}

func New(deps Deps, opts Options, logger logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Orchestrator{deps: deps, opts: opts, logger: logger, now: time.Now}
}

// Result describes a confirmed order.
type Result struct {
	RunID        string
	Identity     *models.Identity
	Upload       models.UploadResult
	Quote        models.PriceQuote
	Node         string
	Confirmation models.Confirmation
	Receipt      models.Receipt
}

// run is the state of a single Run call.
type run struct {
	state  State
	logger logging.Logger
	cid    string
}

func (r *run) advance(ctx context.Context, to State, args ...any) {
	r.state = to
	r.logger.Info(ctx, "state changed", append([]any{"state", to.String()}, args...)...)
}

func (r *run) fail(ctx context.Context, err error) error {
	r.logger.Error(ctx, "order failed", "state", r.state.String(), "error", err)
	return &StageError{State: r.state, Err: err, OrphanedCID: r.cid}
}

// Run places an order for data published under filename. Failures are
// returned as *StageError. Once the order is confirmed, Run reports success
// even if recording the receipt fails.
func (o *Orchestrator) Run(ctx context.Context, data []byte, filename string) (*Result, error) {
	runID := uuid.NewString()
	r := &run{state: Idle, logger: o.logger.With("run_id", runID)}
	r.logger.Info(ctx, "order started", "file", filename, "bytes", len(data), "permanent", o.opts.Permanent)

	id, err := o.deps.Identity.Resolve(ctx)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	r.advance(ctx, IdentityResolved, "address", id.Address, "balance", id.Balance)

	upload, err := o.deps.Publisher.Publish(ctx, id, data, filename)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	r.cid = upload.CID
	r.advance(ctx, ContentPublished, "cid", upload.CID, "size", upload.Size)

	amount, err := o.deps.Quoter.Quote(ctx, upload.Size, o.opts.Permanent)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	quote := models.PriceQuote{Size: upload.Size, Permanent: o.opts.Permanent, Amount: amount}
	r.advance(ctx, PriceQuoted, "amount", amount)

	node, err := o.deps.Selector.Select(ctx)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	r.advance(ctx, NodeSelected, "node", node)

	conf, err := o.deps.Submitter.Submit(ctx, id, upload, quote.Amount, node, o.opts.Permanent)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	r.advance(ctx, OrderSubmitted, "round", conf.Round, "txids", conf.TxIDs, "group", conf.GroupID)

	res := &Result{
		RunID:        runID,
		Identity:     id,
		Upload:       upload,
		Quote:        quote,
		Node:         node,
		Confirmation: conf,
		Receipt: models.Receipt{
			ID:        runID,
			Network:   o.opts.Network,
			AppID:     o.opts.AppID,
			Sender:    id.Address,
			CID:       upload.CID,
			Size:      upload.Size,
			Permanent: o.opts.Permanent,
			Node:      node,
			Amount:    quote.Amount,
			Round:     conf.Round,
			TxIDs:     conf.TxIDs,
			GroupID:   conf.GroupID,
			CreatedAt: o.now().UTC(),
		},
	}

	if o.deps.Recorder != nil {
		if err := o.deps.Recorder.Insert(ctx, res.Receipt); err != nil {
			r.logger.Warn(ctx, "receipt not recorded", "cid", upload.CID, "error", err)
		}
	}

	return res, nil
}
