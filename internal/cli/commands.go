package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/dmitrijs2005/storageorder/internal/orchestrator"
)

// Order publishes the file at path and places a storage order for it.
func (a *App) Order(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	id, err := a.newIdentity(ctx)
	if err != nil {
		return err
	}

	res, err := a.orchestrator(id).Run(ctx, data, filepath.Base(path))
	if err != nil {
		var se *orchestrator.StageError
		if errors.As(err, &se) && se.OrphanedCID != "" {
			fmt.Fprintf(a.out, "Content %s was published but no order was placed.\n", se.OrphanedCID)
		}
		return err
	}

	fmt.Fprintf(a.out, "Order placed on %s (app %d)\n", a.config.Network, a.config.AppID)
	fmt.Fprintf(a.out, "  CID:       %s\n", res.Upload.CID)
	fmt.Fprintf(a.out, "  Size:      %s\n", formatSize(res.Upload.Size))
	fmt.Fprintf(a.out, "  Permanent: %t\n", res.Quote.Permanent)
	fmt.Fprintf(a.out, "  Price:     %s\n", formatAmount(res.Quote.Amount))
	fmt.Fprintf(a.out, "  Node:      %s\n", res.Node)
	fmt.Fprintf(a.out, "  Round:     %s\n", humanize.Comma(int64(res.Confirmation.Round)))
	fmt.Fprintf(a.out, "  Txns:      %s\n", strings.Join(res.Confirmation.TxIDs, ", "))
	return nil
}

// Quote prints the current price of storing size bytes.
func (a *App) Quote(ctx context.Context, size string) error {
	n, err := parseSize(size)
	if err != nil {
		return err
	}

	amount, err := a.quoter().Quote(ctx, n, a.config.Permanent)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Storing %s (permanent: %t) costs %s\n", formatSize(n), a.config.Permanent, formatAmount(amount))
	return nil
}

// Node prints one node chosen by the contract.
func (a *App) Node(ctx context.Context) error {
	node, err := a.selector().Select(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, node)
	return nil
}

// Address prints the paying account. An unfunded account is reported as
// an error naming the address to fund.
func (a *App) Address(ctx context.Context) error {
	p, err := a.newIdentity(ctx)
	if err != nil {
		return err
	}

	id, err := p.Resolve(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Address: %s\n", id.Address)
	fmt.Fprintf(a.out, "Balance: %s\n", formatAmount(id.Balance))
	return nil
}

// History lists the receipts of confirmed orders, oldest first.
func (a *App) History(ctx context.Context) error {
	receipts, err := a.repos.Orders.List(ctx)
	if err != nil {
		return err
	}
	if len(receipts) == 0 {
		fmt.Fprintln(a.out, "No orders yet.")
		return nil
	}

	for _, r := range receipts {
		fmt.Fprintf(a.out, "%s  %s  %s  %s  node %s  round %d  (%s, %s)\n",
			r.ID, r.CID, humanize.IBytes(r.Size), formatAmount(r.Amount), r.Node, r.Round,
			r.Network, humanize.Time(r.CreatedAt),
		)
	}
	return nil
}
