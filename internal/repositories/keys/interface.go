// Package keys stores sealed signing keys of the local keystore.
package keys

import "context"

// Key is a signing key sealed with a passphrase. Only the address is stored
// in the clear.
type Key struct {
	Name       string
	Address    string
	Salt       []byte
	Nonce      []byte
	Ciphertext []byte
}

type Repository interface {
	// Get returns common.ErrorNotFound when no key is stored under name.
	Get(ctx context.Context, name string) (*Key, error)
	Create(ctx context.Context, k Key) error

	// GetOrCreate returns the key stored under name, calling generate and
	// storing its result only when there is none. created reports which
	// case happened. Concurrent callers observe a single key.
	GetOrCreate(ctx context.Context, name string, generate func() (Key, error)) (k *Key, created bool, err error)
}
