package identity

import (
	"crypto/ed25519"

	"github.com/algorand/go-algorand-sdk/v2/client/kmd"
	"github.com/algorand/go-algorand-sdk/v2/types"
)

// walletDriver is the KMD backend new wallets are created with.
const walletDriver = "sqlite"

// KMDClient adapts the SDK's KMD client to Wallets.
type KMDClient struct {
	c kmd.Client
}

func NewKMDClient(addr, token string) (*KMDClient, error) {
	c, err := kmd.MakeClient(addr, token)
	if err != nil {
		return nil, err
	}
	return &KMDClient{c: c}, nil
}

func (k *KMDClient) WalletID(name string) (string, error) {
	resp, err := k.c.ListWallets()
	if err != nil {
		return "", err
	}
	for _, w := range resp.Wallets {
		if w.Name == name {
			return w.ID, nil
		}
	}
	return "", nil
}

func (k *KMDClient) CreateWallet(name, password string) (string, error) {
	resp, err := k.c.CreateWallet(name, password, walletDriver, types.MasterDerivationKey{})
	if err != nil {
		return "", err
	}
	return resp.Wallet.ID, nil
}

func (k *KMDClient) Open(walletID, password string) (string, error) {
	resp, err := k.c.InitWalletHandle(walletID, password)
	if err != nil {
		return "", err
	}
	return resp.WalletHandleToken, nil
}

func (k *KMDClient) Close(handle string) error {
	_, err := k.c.ReleaseWalletHandle(handle)
	return err
}

func (k *KMDClient) Keys(handle string) ([]string, error) {
	resp, err := k.c.ListKeys(handle)
	if err != nil {
		return nil, err
	}
	return resp.Addresses, nil
}

func (k *KMDClient) GenerateKey(handle string) (string, error) {
	resp, err := k.c.GenerateKey(handle)
	if err != nil {
		return "", err
	}
	return resp.Address, nil
}

func (k *KMDClient) ExportKey(handle, password, address string) (ed25519.PrivateKey, error) {
	resp, err := k.c.ExportKey(handle, password, address)
	if err != nil {
		return nil, err
	}
	return resp.PrivateKey, nil
}
