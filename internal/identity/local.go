package identity

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/algorand/go-algorand-sdk/v2/crypto"

	"github.com/dmitrijs2005/storageorder/internal/common"
	"github.com/dmitrijs2005/storageorder/internal/cryptox"
	"github.com/dmitrijs2005/storageorder/internal/logging"
	"github.com/dmitrijs2005/storageorder/internal/models"
	"github.com/dmitrijs2005/storageorder/internal/repositories/keys"
)

// Local keeps the order account in the local database, sealed with a
// passphrase.
type Local struct {
	keys       keys.Repository
	reader     BalanceReader
	name       string
	passphrase []byte
	logger     logging.Logger

	// generate is replaced in tests.
	generate func() crypto.Account
}

func NewLocal(repo keys.Repository, reader BalanceReader, name string, passphrase []byte, logger logging.Logger) *Local {
	if name == "" {
		name = DefaultName
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Local{
		keys:       repo,
		reader:     reader,
		name:       name,
		passphrase: passphrase,
		logger:     logger,
		generate:   crypto.GenerateAccount,
	}
}

func (l *Local) Resolve(ctx context.Context) (*models.Identity, error) {
	if len(l.passphrase) == 0 {
		return nil, fmt.Errorf("%w: empty passphrase", common.ErrKeystoreLocked)
	}

	k, created, err := l.keys.GetOrCreate(ctx, l.name, l.newKey)
	if err != nil {
		return nil, err
	}
	if created {
		l.logger.Info(ctx, "account created", "key", l.name, "address", k.Address)
	}

	sk, err := cryptox.Open(&cryptox.Sealed{Salt: k.Salt, Nonce: k.Nonce, Ciphertext: k.Ciphertext}, l.passphrase)
	if err != nil {
		if errors.Is(err, cryptox.ErrDecrypt) {
			return nil, fmt.Errorf("%w: key %q", common.ErrKeystoreLocked, l.name)
		}
		return nil, err
	}

	acc, err := crypto.AccountFromPrivateKey(ed25519.PrivateKey(sk))
	if err != nil {
		return nil, fmt.Errorf("key %q: %w", l.name, err)
	}
	if addr := acc.Address.String(); addr != k.Address {
		return nil, fmt.Errorf("key %q: stored address %s does not match key address %s", l.name, k.Address, addr)
	}

	return withBalance(ctx, l.reader, &models.Identity{Address: k.Address, SecretKey: acc.PrivateKey})
}

func (l *Local) newKey() (keys.Key, error) {
	acc := l.generate()

	sealed, err := cryptox.Seal(acc.PrivateKey, l.passphrase)
	if err != nil {
		return keys.Key{}, err
	}

	return keys.Key{
		Address:    acc.Address.String(),
		Salt:       sealed.Salt,
		Nonce:      sealed.Nonce,
		Ciphertext: sealed.Ciphertext,
	}, nil
}
