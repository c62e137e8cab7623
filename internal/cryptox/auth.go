package cryptox

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/storageorder/internal/models"
)

// AuthCredential builds the bearer credential the content gateway expects
// for id: the Ed25519 key derived from the first 32 bytes of the secret key
// signs the address bytes, and the result is embedded as
//
//	base64("sub-<address>:0x<hex(signature[:64])>")
//
// The credential is deterministic for a given key and address but is bound
// to that address, so it is rebuilt for every request instead of cached.
func AuthCredential(id *models.Identity) (string, error) {
	if id == nil || id.Address == "" {
		return "", errors.New("identity without address")
	}
	if len(id.SecretKey) < ed25519.SeedSize {
		return "", fmt.Errorf("secret key too short: %d bytes", len(id.SecretKey))
	}

	signingKey := ed25519.NewKeyFromSeed(id.SecretKey[:ed25519.SeedSize])
	sig := ed25519.Sign(signingKey, []byte(id.Address))

	authStr := fmt.Sprintf("sub-%s:0x%s", id.Address, hex.EncodeToString(sig[:ed25519.SignatureSize]))
	return base64.StdEncoding.EncodeToString([]byte(authStr)), nil
}
