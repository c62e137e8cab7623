// Package cryptox holds the cryptography of the order workflow: the gateway
// request credential and sealing of locally stored secret keys.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"

	"golang.org/x/crypto/argon2"

	"github.com/dmitrijs2005/storageorder/internal/common"
)

// SaltSize is the length of the random salt fed to DeriveKey.
const SaltSize = 16

// ErrDecrypt is returned by Open when the key is wrong or the data was
// tampered with.
var ErrDecrypt = errors.New("decryption failed")

// DeriveKey stretches passphrase into a 32-byte AES-256 key with Argon2id.
func DeriveKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)
}

// Sealed is an AES-GCM ciphertext together with what is needed to open it.
type Sealed struct {
	Salt       []byte
	Nonce      []byte
	Ciphertext []byte
}

// Seal encrypts plaintext with a key derived from passphrase and a fresh
// random salt and nonce.
func Seal(plaintext, passphrase []byte) (*Sealed, error) {
	salt := common.GenerateRandByteArray(SaltSize)
	key := DeriveKey(passphrase, salt)
	defer common.WipeByteArray(key)

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(aesgcm.NonceSize())

	return &Sealed{
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: aesgcm.Seal(nil, nonce, plaintext, nil),
	}, nil
}

// Open reverses Seal. A wrong passphrase yields ErrDecrypt.
func Open(s *Sealed, passphrase []byte) ([]byte, error) {
	key := DeriveKey(passphrase, s.Salt)
	defer common.WipeByteArray(key)

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(s.Nonce) != aesgcm.NonceSize() {
		return nil, ErrDecrypt
	}

	plaintext, err := aesgcm.Open(nil, s.Nonce, s.Ciphertext, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
