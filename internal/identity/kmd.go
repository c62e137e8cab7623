package identity

import (
	"context"
	"crypto/ed25519"
	"fmt"

	"github.com/dmitrijs2005/storageorder/internal/logging"
	"github.com/dmitrijs2005/storageorder/internal/models"
)

// Wallets is the subset of a KMD daemon used to hold the order account.
type Wallets interface {
	// WalletID returns the id of the wallet called name, or "" if none.
	WalletID(name string) (string, error)
	CreateWallet(name, password string) (string, error)

	Open(walletID, password string) (handle string, err error)
	Close(handle string) error

	Keys(handle string) ([]string, error)
	GenerateKey(handle string) (string, error)
	ExportKey(handle, password, address string) (ed25519.PrivateKey, error)
}

// KMD resolves the first account of a named KMD wallet, creating the wallet
// and its first key if needed. The wallet password is empty.
type KMD struct {
	wallets Wallets
	reader  BalanceReader
	name    string
	logger  logging.Logger
}

func NewKMD(wallets Wallets, reader BalanceReader, name string, logger logging.Logger) *KMD {
	if name == "" {
		name = DefaultName
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &KMD{wallets: wallets, reader: reader, name: name, logger: logger}
}

func (k *KMD) Resolve(ctx context.Context) (*models.Identity, error) {
	const password = ""

	walletID, err := k.wallets.WalletID(k.name)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	if walletID == "" {
		if walletID, err = k.wallets.CreateWallet(k.name, password); err != nil {
			return nil, fmt.Errorf("create wallet %q: %w", k.name, err)
		}
		k.logger.Info(ctx, "wallet created", "wallet", k.name)
	}

	handle, err := k.wallets.Open(walletID, password)
	if err != nil {
		return nil, fmt.Errorf("open wallet %q: %w", k.name, err)
	}
	defer func() {
		if err := k.wallets.Close(handle); err != nil {
			k.logger.Warn(ctx, "release wallet handle", "wallet", k.name, "error", err)
		}
	}()

	addrs, err := k.wallets.Keys(handle)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}

	var addr string
	if len(addrs) > 0 {
		addr = addrs[0]
	} else {
		if addr, err = k.wallets.GenerateKey(handle); err != nil {
			return nil, fmt.Errorf("generate key: %w", err)
		}
		k.logger.Info(ctx, "account created", "wallet", k.name, "address", addr)
	}

	sk, err := k.wallets.ExportKey(handle, password, addr)
	if err != nil {
		return nil, fmt.Errorf("export key: %w", err)
	}

	return withBalance(ctx, k.reader, &models.Identity{Address: addr, SecretKey: sk})
}
