package ledger

import (
	"fmt"
	"math/big"

	"github.com/algorand/go-algorand-sdk/v2/types"
)

// AsUint64 converts a decoded ABI uint return value to uint64.
func AsUint64(v any) (uint64, error) {
	switch n := v.(type) {
	case uint64:
		return n, nil
	case uint32:
		return uint64(n), nil
	case uint16:
		return uint64(n), nil
	case uint8:
		return uint64(n), nil
	case int:
		if n < 0 {
			return 0, fmt.Errorf("negative value %d", n)
		}
		return uint64(n), nil
	case *big.Int:
		if n == nil || n.Sign() < 0 || !n.IsUint64() {
			return 0, fmt.Errorf("value %v out of uint64 range", n)
		}
		return n.Uint64(), nil
	case nil:
		return 0, fmt.Errorf("no return value")
	default:
		return 0, fmt.Errorf("unexpected return type %T", v)
	}
}

// AsAddress converts a decoded ABI address return value to its string form.
// Strings are passed through unchanged.
func AsAddress(v any) (string, error) {
	switch a := v.(type) {
	case string:
		if a == "" {
			return "", fmt.Errorf("empty address")
		}
		return a, nil
	case Address:
		return AsAddress(string(a))
	case []byte:
		if len(a) != len(types.Address{}) {
			return "", fmt.Errorf("address must be %d bytes, got %d", len(types.Address{}), len(a))
		}
		var addr types.Address
		copy(addr[:], a)
		return addr.String(), nil
	case [32]byte:
		return types.Address(a).String(), nil
	case types.Address:
		return a.String(), nil
	case nil:
		return "", fmt.Errorf("no return value")
	default:
		return "", fmt.Errorf("unexpected return type %T", v)
	}
}

// ZeroAddress is the string form of the all-zero address, which a contract
// returns when a lookup found nothing.
var ZeroAddress = types.ZeroAddress.String()
