package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dmitrijs2005/storageorder/internal/common"
	"github.com/dmitrijs2005/storageorder/internal/config"
	"github.com/dmitrijs2005/storageorder/internal/flagx"
	"github.com/dmitrijs2005/storageorder/internal/gateway"
	"github.com/dmitrijs2005/storageorder/internal/identity"
	"github.com/dmitrijs2005/storageorder/internal/ledger"
	"github.com/dmitrijs2005/storageorder/internal/ledger/algod"
	"github.com/dmitrijs2005/storageorder/internal/logging"
	"github.com/dmitrijs2005/storageorder/internal/nodes"
	"github.com/dmitrijs2005/storageorder/internal/oracle"
	"github.com/dmitrijs2005/storageorder/internal/orchestrator"
	"github.com/dmitrijs2005/storageorder/internal/order"
	"github.com/dmitrijs2005/storageorder/internal/storage"
)

// Ledger is what the CLI needs from the ledger adapter.
type Ledger interface {
	ledger.Reader
	ledger.Writer
}

type App struct {
	config    *config.Config
	out       io.Writer
	logger    logging.Logger
	ledger    Ledger
	publisher orchestrator.Publisher
	repos     *storage.Repositories

	// passphrase is the keystore passphrase in use; Close wipes it.
	passphrase []byte

	// newIdentity builds the identity provider on first use, so commands
	// that do not sign never prompt for a passphrase.
	newIdentity func(ctx context.Context) (orchestrator.IdentityProvider, error)
}

// NewApp wires the production adapters described by c.
func NewApp(ctx context.Context, c *config.Config, out io.Writer, logger logging.Logger) (*App, error) {
	repos, err := storage.InitDatabase(ctx, c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	algodClient, err := algod.New(c.AlgodAddr, c.AlgodToken, c.RequestTimeout, c.WaitRounds, logger)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	a := &App{
		config:    c,
		out:       out,
		logger:    logger,
		ledger:    algodClient,
		publisher: gateway.New(c.GatewayURL, &http.Client{Timeout: c.RequestTimeout}, logger),
		repos:     repos,
	}
	a.newIdentity = a.productionIdentity
	return a, nil
}

func (a *App) productionIdentity(ctx context.Context) (orchestrator.IdentityProvider, error) {
	switch a.config.Keystore {
	case config.KeystoreLocal:
		pass := []byte(a.config.KeystorePassphrase)
		if len(pass) == 0 {
			var err error
			if pass, err = GetPassphrase(os.Stderr, "Keystore passphrase: "); err != nil {
				return nil, fmt.Errorf("%w: %w", common.ErrKeystoreLocked, err)
			}
		}
		a.passphrase = pass
		return identity.NewLocal(a.repos.Keys, a.ledger, a.config.WalletName, pass, a.logger), nil

	default:
		wallets, err := identity.NewKMDClient(a.config.KMDAddr, a.config.KMDToken)
		if err != nil {
			return nil, fmt.Errorf("kmd client: %w", err)
		}
		return identity.NewKMD(wallets, a.ledger, a.config.WalletName, a.logger), nil
	}
}

func (a *App) Close() error {
	common.WipeByteArray(a.passphrase)
	a.passphrase = nil
	if a.repos == nil {
		return nil
	}
	return a.repos.Close()
}

func (a *App) quoter() *oracle.Client {
	return oracle.New(a.ledger, a.config.AppID, "", a.logger)
}

func (a *App) selector() *nodes.Selector {
	return nodes.New(a.ledger, a.config.AppID, "", a.logger)
}

func (a *App) orchestrator(id orchestrator.IdentityProvider) *orchestrator.Orchestrator {
	var rec orchestrator.Recorder
	if a.repos != nil {
		rec = a.repos.Orders
	}
	return orchestrator.New(orchestrator.Deps{
		Identity:  id,
		Publisher: a.publisher,
		Quoter:    a.quoter(),
		Selector:  a.selector(),
		Submitter: order.New(a.ledger, a.config.AppID, a.logger),
		Recorder:  rec,
	}, orchestrator.Options{
		Network:   string(a.config.Network),
		AppID:     a.config.AppID,
		Permanent: a.config.Permanent,
	}, a.logger)
}

var errUsage = errors.New("usage: storageorder [flags] order <file> | quote <size> | node | address | history")

// Run executes the command found among args (flags are skipped).
func (a *App) Run(ctx context.Context, args []string) error {
	pos := flagx.Positional(args, config.Flags)
	if len(pos) == 0 {
		return errUsage
	}

	cmd, rest := pos[0], pos[1:]
	switch cmd {
	case "order":
		if len(rest) != 1 {
			return errUsage
		}
		return a.Order(ctx, rest[0])
	case "quote":
		if len(rest) != 1 {
			return errUsage
		}
		return a.Quote(ctx, rest[0])
	case "node":
		return a.Node(ctx)
	case "address":
		return a.Address(ctx)
	case "history":
		return a.History(ctx)
	default:
		return fmt.Errorf("unknown command %q\n%w", cmd, errUsage)
	}
}
